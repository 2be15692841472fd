package ses

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"

	"github.com/yossi-weinberger/ten10/pkg/email"
	"github.com/yossi-weinberger/ten10/pkg/sigv4"
)

const (
	v2SendPath      = "/v2/email/outbound-emails"
	maxResponseSize = 1 << 20
)

// Client issues signed HTTPS requests against the email API. It sends
// exactly one request per call and never retries; retry policy belongs
// to the dispatcher, where it is explicit.
type Client struct {
	httpClient *http.Client
	signer     *sigv4.Signer
	endpoint   string
	apiVersion APIVersion
}

type clientOptions struct {
	httpClient *http.Client
	creds      *aws.Credentials
	clock      func() time.Time
}

// Option configures a Client.
type Option func(*clientOptions)

// WithHTTPClient overrides the HTTP client used for API calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *clientOptions) {
		if hc != nil {
			o.httpClient = hc
		}
	}
}

// WithCredentials bypasses both the static config fields and the SDK
// default chain.
func WithCredentials(creds aws.Credentials) Option {
	return func(o *clientOptions) { o.creds = &creds }
}

// WithClock overrides the signing clock; used by tests to pin signatures.
func WithClock(now func() time.Time) Option {
	return func(o *clientOptions) { o.clock = now }
}

// New creates a Client. Credential precedence: WithCredentials option,
// then static keys from cfg, then the SDK default chain.
func New(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	if cfg.Region == "" {
		return nil, ErrMissingRegion
	}
	if err := cfg.APIVersion.validate(); err != nil {
		return nil, err
	}
	if cfg.SigningService == "" {
		cfg.SigningService = "ses"
	}

	o := &clientOptions{
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(o)
	}

	creds, err := resolveCredentials(ctx, cfg, o)
	if err != nil {
		return nil, err
	}

	signerOpts := []sigv4.Option{}
	if o.clock != nil {
		signerOpts = append(signerOpts, sigv4.WithClock(o.clock))
	}
	signer, err := sigv4.New(creds, cfg.Region, cfg.SigningService, signerOpts...)
	if err != nil {
		return nil, err
	}

	return &Client{
		httpClient: o.httpClient,
		signer:     signer,
		endpoint:   cfg.endpoint(),
		apiVersion: cfg.APIVersion,
	}, nil
}

func resolveCredentials(ctx context.Context, cfg Config, o *clientOptions) (aws.Credentials, error) {
	if o.creds != nil {
		return *o.creds, nil
	}
	if cfg.AccessKeyID != "" {
		provider := credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")
		return provider.Retrieve(ctx)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return aws.Credentials{}, errors.Join(ErrNoCredentials, err)
	}
	creds, err := awsCfg.Credentials.Retrieve(ctx)
	if err != nil {
		return aws.Credentials{}, errors.Join(ErrNoCredentials, err)
	}
	return creds, nil
}

// Send dispatches one message and returns the provider message ID. The
// message is serialized in structured mode unless it needs raw MIME
// (CC or List-Unsubscribe headers). Any non-2xx response is returned as
// an *APIError carrying the raw body.
func (c *Client) Send(ctx context.Context, msg email.Message) (string, error) {
	if err := msg.Validate(); err != nil {
		return "", err
	}

	var (
		body        []byte
		path        string
		contentType string
		err         error
	)
	switch c.apiVersion {
	case APIVersionV2:
		path = v2SendPath
		contentType = "application/json"
		body, err = c.v2Body(msg)
	case APIVersionQuery:
		path = "/"
		contentType = "application/x-www-form-urlencoded"
		body, err = c.queryBody(msg)
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidAPIVersion, string(c.apiVersion))
	}
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return "", errors.Join(ErrRequestFailed, err)
	}
	req.Header.Set("Content-Type", contentType)

	if err := c.signer.Sign(req, body); err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Join(ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", errors.Join(ErrRequestFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	return parseMessageID(c.apiVersion, respBody)
}

func (c *Client) v2Body(msg email.Message) ([]byte, error) {
	if !msg.NeedsRaw() {
		return msg.Payload()
	}
	raw, err := msg.RawMIME()
	if err != nil {
		return nil, err
	}
	return v2RawPayload(msg, raw)
}

func (c *Client) queryBody(msg email.Message) ([]byte, error) {
	var values url.Values
	var err error
	if msg.NeedsRaw() {
		values, err = rawQueryValues(msg)
	} else {
		values, err = msg.QueryValues()
	}
	if err != nil {
		return nil, err
	}
	return []byte(values.Encode()), nil
}

// rawQueryValues builds the legacy SendRawEmail form for messages that
// need raw MIME mode.
func rawQueryValues(msg email.Message) (url.Values, error) {
	raw, err := msg.RawMIME()
	if err != nil {
		return nil, err
	}

	v := url.Values{}
	v.Set("Action", "SendRawEmail")
	v.Set("Version", "2010-12-01")
	v.Set("Source", msg.From)
	i := 1
	for _, to := range msg.To {
		v.Set("Destinations.member."+strconv.Itoa(i), to)
		i++
	}
	for _, cc := range msg.CC {
		v.Set("Destinations.member."+strconv.Itoa(i), cc)
		i++
	}
	v.Set("RawMessage.Data", base64.StdEncoding.EncodeToString(raw))
	return v, nil
}
