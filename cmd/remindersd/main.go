// Command remindersd serves the tithe reminder dispatch API.
//
// It wires the SES transport, the per-sender daily quota and the bulk
// dispatcher behind two HTTP endpoints: POST /dispatch and
// GET /unsubscribe. All configuration comes from the environment; see
// the Config types in the imported packages for the variable names.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/yossi-weinberger/ten10/pkg/config"
	"github.com/yossi-weinberger/ten10/pkg/httpserver"
	"github.com/yossi-weinberger/ten10/pkg/logger"
	"github.com/yossi-weinberger/ten10/pkg/mailer"
	"github.com/yossi-weinberger/ten10/pkg/pg"
	"github.com/yossi-weinberger/ten10/pkg/quota"
	redisconn "github.com/yossi-weinberger/ten10/pkg/redis"
	"github.com/yossi-weinberger/ten10/pkg/ses"
	"github.com/yossi-weinberger/ten10/pkg/unsubtoken"
	"github.com/yossi-weinberger/ten10/svc/reminders"
)

type appConfig struct {
	Transport         string `env:"EMAIL_TRANSPORT" envDefault:"ses"`    // "ses" or "dev"
	DevMailDir        string `env:"DEV_MAIL_DIR" envDefault:"./maildir"` // where the dev transport drops .eml files
	QuotaStore        string `env:"QUOTA_STORE" envDefault:"memory"`     // "memory", "redis" or "postgres"
	DailySendLimit    int64  `env:"DAILY_SEND_LIMIT" envDefault:"200"`
	UnsubscribeSecret string `env:"UNSUBSCRIBE_SECRET,required,unset"`
}

func main() {
	ctx := context.Background()

	var appCfg appConfig
	config.MustLoad(&appCfg)

	log := logger.New(logger.WithService("remindersd"))

	if err := run(ctx, appCfg, log); err != nil {
		log.ErrorContext(ctx, "remindersd exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, appCfg appConfig, log *slog.Logger) error {
	store, err := newQuotaStore(ctx, appCfg.QuotaStore)
	if err != nil {
		return fmt.Errorf("quota store: %w", err)
	}

	limiter, err := quota.New(store, appCfg.DailySendLimit)
	if err != nil {
		return fmt.Errorf("quota limiter: %w", err)
	}

	transport, err := newTransport(ctx, appCfg)
	if err != nil {
		return fmt.Errorf("transport: %w", err)
	}

	tokens, err := unsubtoken.New([]byte(appCfg.UnsubscribeSecret))
	if err != nil {
		return fmt.Errorf("unsubscribe tokens: %w", err)
	}

	var svcCfg reminders.Config
	config.MustLoad(&svcCfg)

	svc, err := reminders.New(svcCfg, transport, limiter, tokens, reminders.DefaultTemplates,
		[]mailer.Option{mailer.WithLogger(log)},
		reminders.WithLogger(log),
		reminders.WithUnsubscribeFunc(func(ctx context.Context, claims unsubtoken.Claims) error {
			// Persisting the opt-out belongs to the account service;
			// here we only acknowledge and log it.
			log.InfoContext(ctx, "unsubscribe recorded",
				slog.String("recipient_id", claims.RecipientID),
				slog.String("scope", string(claims.Scope)))
			return nil
		}),
	)
	if err != nil {
		return fmt.Errorf("reminders service: %w", err)
	}

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Mount("/", svc.Router())

	var httpCfg httpserver.Config
	config.MustLoad(&httpCfg)

	srv := httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log))
	return srv.Run(ctx, r)
}

// newQuotaStore selects the send-counter backend. The counter must
// survive restarts in production, so "memory" is only for local runs.
func newQuotaStore(ctx context.Context, kind string) (quota.Store, error) {
	switch kind {
	case "memory":
		return quota.NewMemoryStore(), nil
	case "redis":
		var cfg redisconn.Config
		config.MustLoad(&cfg)
		client, err := redisconn.Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return quota.NewRedisStore(client), nil
	case "postgres":
		var cfg pg.Config
		config.MustLoad(&cfg)
		pool, err := pg.Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return quota.NewPostgresStore(pool), nil
	default:
		return nil, fmt.Errorf("unknown quota store %q", kind)
	}
}

func newTransport(ctx context.Context, appCfg appConfig) (mailer.Transport, error) {
	switch appCfg.Transport {
	case "dev":
		return mailer.NewDevTransport(appCfg.DevMailDir), nil
	case "ses":
		var cfg ses.Config
		config.MustLoad(&cfg)
		return ses.New(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown email transport %q", appCfg.Transport)
	}
}
