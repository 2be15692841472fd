package sigv4_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yossi-weinberger/ten10/pkg/sigv4"
)

var testCreds = aws.Credentials{
	AccessKeyID:     "AKIDEXAMPLE",
	SecretAccessKey: "wJalrXUtnFEMI/K7MDENG+bPxRfiCYEXAMPLEKEY",
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestSigner_KnownAnswer(t *testing.T) {
	t.Parallel()

	// The documented AWS example request: GET ListUsers against IAM at
	// 2015-08-30T12:36:00Z with an empty body. The expected signature is
	// published in the signing walkthrough, which makes it a byte-exact
	// regression anchor for the whole canonicalization chain.
	signer, err := sigv4.New(testCreds, "us-east-1", "iam", sigv4.WithClock(
		fixedClock(time.Date(2015, 8, 30, 12, 36, 0, 0, time.UTC)),
	))
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, "https://iam.amazonaws.com/?Action=ListUsers&Version=2010-05-08", nil)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=utf-8")

	require.NoError(t, signer.Sign(req, nil))

	assert.Equal(t, "20150830T123600Z", req.Header.Get("X-Amz-Date"))
	assert.Equal(t,
		"AWS4-HMAC-SHA256 Credential=AKIDEXAMPLE/20150830/us-east-1/iam/aws4_request, "+
			"SignedHeaders=content-type;host;x-amz-date, "+
			"Signature=5d672d79c15b13162d9279b0855cfba6789a8edb4c82c400e06b5924a6f2b5d7",
		req.Header.Get("Authorization"),
	)
}

func TestSigner_Deterministic(t *testing.T) {
	t.Parallel()

	clock := fixedClock(time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC))

	sign := func() string {
		signer, err := sigv4.New(testCreds, "us-east-1", "ses", sigv4.WithClock(clock))
		require.NoError(t, err)

		req, err := http.NewRequest(http.MethodPost, "https://email.us-east-1.amazonaws.com/v2/email/outbound-emails", nil)
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")

		require.NoError(t, signer.Sign(req, []byte(`{"FromEmailAddress":"tithe@ten10.app"}`)))
		return req.Header.Get("Authorization")
	}

	assert.Equal(t, sign(), sign())
}

func TestSigner_HeaderOrderIndependence(t *testing.T) {
	t.Parallel()

	clock := fixedClock(time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC))

	sign := func(names []string) string {
		signer, err := sigv4.New(testCreds, "eu-west-1", "ses", sigv4.WithClock(clock))
		require.NoError(t, err)

		req, err := http.NewRequest(http.MethodPost, "https://email.eu-west-1.amazonaws.com/", nil)
		require.NoError(t, err)
		values := map[string]string{
			"Content-Type":    "application/x-www-form-urlencoded",
			"X-Custom-Header": "a",
			"X-Other-Header":  "b",
		}
		for _, name := range names {
			req.Header.Set(name, values[name])
		}

		require.NoError(t, signer.Sign(req, []byte("Action=SendEmail")))
		return req.Header.Get("Authorization")
	}

	forward := sign([]string{"Content-Type", "X-Custom-Header", "X-Other-Header"})
	reverse := sign([]string{"X-Other-Header", "X-Custom-Header", "Content-Type"})
	assert.Equal(t, forward, reverse)
}

func TestSigner_BodyAffectsSignature(t *testing.T) {
	t.Parallel()

	clock := fixedClock(time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC))
	signer, err := sigv4.New(testCreds, "us-east-1", "ses", sigv4.WithClock(clock))
	require.NoError(t, err)

	sign := func(body []byte) string {
		req, err := http.NewRequest(http.MethodPost, "https://email.us-east-1.amazonaws.com/", nil)
		require.NoError(t, err)
		require.NoError(t, signer.Sign(req, body))
		return req.Header.Get("Authorization")
	}

	assert.NotEqual(t, sign([]byte("a")), sign([]byte("b")))
}

func TestSigner_QueryOrderIndependence(t *testing.T) {
	t.Parallel()

	clock := fixedClock(time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC))
	signer, err := sigv4.New(testCreds, "us-east-1", "ses", sigv4.WithClock(clock))
	require.NoError(t, err)

	sign := func(rawQuery string) string {
		req, err := http.NewRequest(http.MethodGet, "https://email.us-east-1.amazonaws.com/?"+rawQuery, nil)
		require.NoError(t, err)
		require.NoError(t, signer.Sign(req, nil))
		return req.Header.Get("Authorization")
	}

	// Same parameters, different wire order: the canonical query string
	// is sorted, so the signatures must match.
	assert.Equal(t, sign("Action=SendEmail&Version=2010-12-01"), sign("Version=2010-12-01&Action=SendEmail"))
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		creds   aws.Credentials
		region  string
		service string
		wantErr error
	}{
		{
			name:    "missing access key",
			creds:   aws.Credentials{SecretAccessKey: "secret"},
			region:  "us-east-1",
			service: "ses",
			wantErr: sigv4.ErrMissingCredentials,
		},
		{
			name:    "missing secret",
			creds:   aws.Credentials{AccessKeyID: "AKID"},
			region:  "us-east-1",
			service: "ses",
			wantErr: sigv4.ErrMissingCredentials,
		},
		{
			name:    "missing region",
			creds:   testCreds,
			service: "ses",
			wantErr: sigv4.ErrMissingRegion,
		},
		{
			name:    "missing service",
			creds:   testCreds,
			region:  "us-east-1",
			wantErr: sigv4.ErrMissingService,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := sigv4.New(tt.creds, tt.region, tt.service)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSigner_NilRequest(t *testing.T) {
	t.Parallel()

	signer, err := sigv4.New(testCreds, "us-east-1", "ses")
	require.NoError(t, err)

	assert.ErrorIs(t, signer.Sign(nil, nil), sigv4.ErrNilRequest)
}
