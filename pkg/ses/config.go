package ses

import "fmt"

// APIVersion selects the wire protocol and therefore the response
// parser. It is fixed by configuration; the response shape is never
// sniffed.
type APIVersion string

const (
	// APIVersionV2 targets the JSON send endpoint
	// (/v2/email/outbound-emails) and parses JSON responses.
	APIVersionV2 APIVersion = "v2"

	// APIVersionQuery targets the legacy query endpoint
	// (Action=SendEmail&Version=2010-12-01) and parses XML responses.
	APIVersionQuery APIVersion = "query"
)

func (v APIVersion) validate() error {
	switch v {
	case APIVersionV2, APIVersionQuery:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidAPIVersion, string(v))
	}
}

// Config holds transport configuration. Credentials left empty are
// resolved through the SDK default chain (environment, shared config).
type Config struct {
	Region          string     `env:"SES_REGION" envDefault:"us-east-1"`            // Region is the API region and part of the credential scope.
	APIVersion      APIVersion `env:"SES_API_VERSION" envDefault:"v2"`              // APIVersion selects the wire protocol: "v2" or "query".
	SigningService  string     `env:"SES_SIGNING_SERVICE" envDefault:"ses"`         // SigningService is the service name in the credential scope.
	Endpoint        string     `env:"SES_ENDPOINT"`                                 // Endpoint overrides the derived endpoint URL; used by tests.
	AccessKeyID     string     `env:"AWS_ACCESS_KEY_ID"`                            // AccessKeyID for static credentials; empty defers to the SDK chain.
	SecretAccessKey string     `env:"AWS_SECRET_ACCESS_KEY,unset"`                  // SecretAccessKey for static credentials; never logged.
}

func (c Config) endpoint() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	return "https://email." + c.Region + ".amazonaws.com"
}
