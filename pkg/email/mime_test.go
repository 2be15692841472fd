package email_test

import (
	"bytes"
	"encoding/base64"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yossi-weinberger/ten10/pkg/email"
)

// decodePart reads a base64 multipart body part back into its original text.
func decodePart(t *testing.T, part *multipart.Part) string {
	t.Helper()

	raw, err := io.ReadAll(part)
	require.NoError(t, err)

	compact := strings.NewReplacer("\r", "", "\n", "").Replace(string(raw))
	decoded, err := base64.StdEncoding.DecodeString(compact)
	require.NoError(t, err)
	return string(decoded)
}

func TestMessage_RawMIME_RoundTrip(t *testing.T) {
	t.Parallel()

	m := email.Message{
		From:     "tithe@ten10.app",
		To:       []string{"user@example.com"},
		CC:       []string{"accountant@example.com"},
		ReplyTo:  "support@ten10.app",
		Subject:  "תזכורת מעשר חודשית", // non-ASCII, forces RFC 2047 encoding
		TextBody: "Your tithe balance is 120 ILS.",
		HTMLBody: "<p>Your tithe balance is <b>120 ILS</b>.</p>",
	}

	raw, err := m.RawMIME()
	require.NoError(t, err)

	parsed, err := mail.ReadMessage(bytes.NewReader(raw))
	require.NoError(t, err)

	assert.Equal(t, "tithe@ten10.app", parsed.Header.Get("From"))
	assert.Equal(t, "user@example.com", parsed.Header.Get("To"))
	assert.Equal(t, "accountant@example.com", parsed.Header.Get("Cc"))
	assert.Equal(t, "support@ten10.app", parsed.Header.Get("Reply-To"))
	assert.Equal(t, "1.0", parsed.Header.Get("MIME-Version"))

	// Subject must survive an RFC 2047 decode byte-for-byte.
	rawSubject := parsed.Header.Get("Subject")
	assert.True(t, strings.HasPrefix(rawSubject, "=?UTF-8?"), "subject should be RFC 2047 encoded, got %q", rawSubject)
	dec := new(mime.WordDecoder)
	subject, err := dec.DecodeHeader(rawSubject)
	require.NoError(t, err)
	assert.Equal(t, "תזכורת מעשר חודשית", subject)

	mediaType, params, err := mime.ParseMediaType(parsed.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/alternative", mediaType)
	require.NotEmpty(t, params["boundary"])

	mr := multipart.NewReader(parsed.Body, params["boundary"])

	textPart, err := mr.NextPart()
	require.NoError(t, err)
	textType, _, err := mime.ParseMediaType(textPart.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "text/plain", textType)
	assert.Equal(t, "base64", textPart.Header.Get("Content-Transfer-Encoding"))
	assert.Equal(t, "Your tithe balance is 120 ILS.", decodePart(t, textPart))

	htmlPart, err := mr.NextPart()
	require.NoError(t, err)
	htmlType, _, err := mime.ParseMediaType(htmlPart.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "text/html", htmlType)
	assert.Equal(t, "<p>Your tithe balance is <b>120 ILS</b>.</p>", decodePart(t, htmlPart))

	_, err = mr.NextPart()
	assert.Equal(t, io.EOF, err)
}

func TestMessage_RawMIME_ASCIISubjectNotEncoded(t *testing.T) {
	t.Parallel()

	m := validMessage()
	raw, err := m.RawMIME()
	require.NoError(t, err)

	parsed, err := mail.ReadMessage(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "Monthly tithe reminder", parsed.Header.Get("Subject"))
}

func TestMessage_RawMIME_ListUnsubscribeHeaders(t *testing.T) {
	t.Parallel()

	m := validMessage()
	m.UnsubscribeURL = "https://ten10.app/unsubscribe?token=abc123"

	raw, err := m.RawMIME()
	require.NoError(t, err)

	parsed, err := mail.ReadMessage(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "<https://ten10.app/unsubscribe?token=abc123>", parsed.Header.Get("List-Unsubscribe"))
	assert.Equal(t, "List-Unsubscribe=One-Click", parsed.Header.Get("List-Unsubscribe-Post"))
}

func TestMessage_RawMIME_UniqueBoundaries(t *testing.T) {
	t.Parallel()

	boundary := func() string {
		raw, err := validMessage().RawMIME()
		require.NoError(t, err)

		parsed, err := mail.ReadMessage(bytes.NewReader(raw))
		require.NoError(t, err)
		_, params, err := mime.ParseMediaType(parsed.Header.Get("Content-Type"))
		require.NoError(t, err)
		return params["boundary"]
	}

	assert.NotEqual(t, boundary(), boundary())
}

func TestMessage_RawMIME_EmptyBodyRejected(t *testing.T) {
	t.Parallel()

	m := validMessage()
	m.TextBody = ""
	m.HTMLBody = ""

	_, err := m.RawMIME()
	assert.ErrorIs(t, err, email.ErrEmptyBody)
}
