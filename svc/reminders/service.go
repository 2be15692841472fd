package reminders

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"log/slog"
	"net/url"
	texttemplate "text/template"
	"time"

	"github.com/yossi-weinberger/ten10/pkg/email"
	"github.com/yossi-weinberger/ten10/pkg/mailer"
	"github.com/yossi-weinberger/ten10/pkg/quota"
	"github.com/yossi-weinberger/ten10/pkg/unsubtoken"
)

// Config holds the reminder service settings.
type Config struct {
	SenderEmail        string        `env:"SENDER_EMAIL,required"`                                     // SenderEmail is the From address and the quota identity.
	ReplyToEmail       string        `env:"REPLY_TO_EMAIL"`                                            // ReplyToEmail routes user responses, e.g. a support inbox.
	UnsubscribeBaseURL string        `env:"UNSUBSCRIBE_BASE_URL" envDefault:"/unsubscribe"`            // UnsubscribeBaseURL is where the token link points.
	UnsubscribeTTL     time.Duration `env:"UNSUBSCRIBE_TOKEN_TTL" envDefault:"720h"`                   // UnsubscribeTTL bounds token validity; default 30 days.
}

// Templates are the reminder message templates. Subject and Text use
// text/template, HTML uses html/template for escaping. Template data is
// the recipient's personalization map.
type Templates struct {
	Subject string
	Text    string
	HTML    string
}

// DefaultTemplates is the stock monthly tithe reminder.
var DefaultTemplates = Templates{
	Subject: `Tithe reminder for {{.Month}}`,
	Text: `Hi {{.Name}},

Your tithe balance for {{.Month}} is {{.Balance}}.

Open your Ten10 dashboard to review your transactions.`,
	HTML: `<p>Hi {{.Name}},</p>
<p>Your tithe balance for {{.Month}} is <strong>{{.Balance}}</strong>.</p>
<p>Open your <a href="https://ten10.app">Ten10 dashboard</a> to review your transactions.</p>`,
}

// Service renders personalized reminder emails and exposes the
// HTTP-triggered dispatch endpoint.
type Service struct {
	cfg        Config
	dispatcher *mailer.Dispatcher
	tokens     *unsubtoken.Service
	subjectTpl *texttemplate.Template
	textTpl    *texttemplate.Template
	htmlTpl    *htmltemplate.Template
	log        *slog.Logger

	// unsubscribe, when set, records a verified unsubscribe request.
	unsubscribe UnsubscribeFunc
}

// Option configures a Service.
type Option func(*Service)

// WithLogger attaches a structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithUnsubscribeFunc registers the callback invoked for verified
// unsubscribe tokens.
func WithUnsubscribeFunc(fn UnsubscribeFunc) Option {
	return func(s *Service) { s.unsubscribe = fn }
}

// New creates the service and its dispatcher. Extra dispatcher options
// (pacing, logging) are forwarded as given.
func New(cfg Config, transport mailer.Transport, limiter *quota.Limiter, tokens *unsubtoken.Service, tmpl Templates, dispatcherOpts []mailer.Option, opts ...Option) (*Service, error) {
	if tokens == nil {
		return nil, ErrNilTokenService
	}

	s := &Service{
		cfg:    cfg,
		tokens: tokens,
		log:    slog.New(slog.DiscardHandler),
	}

	var err error
	if s.subjectTpl, err = texttemplate.New("subject").Parse(tmpl.Subject); err != nil {
		return nil, fmt.Errorf("%w: subject: %v", ErrInvalidTemplate, err)
	}
	if s.textTpl, err = texttemplate.New("text").Parse(tmpl.Text); err != nil {
		return nil, fmt.Errorf("%w: text: %v", ErrInvalidTemplate, err)
	}
	if s.htmlTpl, err = htmltemplate.New("html").Parse(tmpl.HTML); err != nil {
		return nil, fmt.Errorf("%w: html: %v", ErrInvalidTemplate, err)
	}

	for _, opt := range opts {
		opt(s)
	}

	s.dispatcher, err = mailer.New(transport, limiter, cfg.SenderEmail, s.render, dispatcherOpts...)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// render builds the personalized message for one recipient, including
// the signed unsubscribe link. Raw MIME mode follows automatically from
// the List-Unsubscribe requirement.
func (s *Service) render(r mailer.Recipient) (email.Message, error) {
	data := r.Data
	if data == nil {
		data = map[string]string{}
	}

	var subject, text, html bytes.Buffer
	if err := s.subjectTpl.Execute(&subject, data); err != nil {
		return email.Message{}, fmt.Errorf("rendering subject: %w", err)
	}
	if err := s.textTpl.Execute(&text, data); err != nil {
		return email.Message{}, fmt.Errorf("rendering text body: %w", err)
	}
	if err := s.htmlTpl.Execute(&html, data); err != nil {
		return email.Message{}, fmt.Errorf("rendering html body: %w", err)
	}

	token, err := s.tokens.Generate(r.ID, r.Email, unsubtoken.ScopeReminder, s.cfg.UnsubscribeTTL)
	if err != nil {
		return email.Message{}, fmt.Errorf("generating unsubscribe token: %w", err)
	}

	return email.Message{
		From:           s.cfg.SenderEmail,
		ReplyTo:        s.cfg.ReplyToEmail,
		To:             []string{r.Email},
		Subject:        subject.String(),
		TextBody:       text.String(),
		HTMLBody:       html.String(),
		Tags:           map[string]string{"category": "tithe-reminder"},
		UnsubscribeURL: s.cfg.UnsubscribeBaseURL + "?token=" + url.QueryEscape(token),
	}, nil
}
