package email

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime"
	"mime/multipart"
	"net/textproto"
	"strings"
	"unicode"
)

// RawMIME assembles the message as a multipart/alternative byte stream,
// used when header-level features (List-Unsubscribe, CC) exceed what the
// structured API exposes. The boundary token is random and unguessable
// per message, which is how boundary collisions with body content are
// mitigated; the content itself is never scanned.
func (m Message) RawMIME() ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	writeHeader := func(name, value string) {
		buf.WriteString(name)
		buf.WriteString(": ")
		buf.WriteString(value)
		buf.WriteString("\r\n")
	}

	writeHeader("From", m.From)
	writeHeader("To", strings.Join(m.To, ", "))
	if len(m.CC) > 0 {
		writeHeader("Cc", strings.Join(m.CC, ", "))
	}
	if m.ReplyTo != "" {
		writeHeader("Reply-To", m.ReplyTo)
	}
	writeHeader("Subject", encodeWord(m.Subject))
	if m.UnsubscribeURL != "" {
		writeHeader("List-Unsubscribe", "<"+m.UnsubscribeURL+">")
		writeHeader("List-Unsubscribe-Post", "List-Unsubscribe=One-Click")
	}
	writeHeader("MIME-Version", "1.0")
	writeHeader("Content-Type", `multipart/alternative; boundary="`+w.Boundary()+`"`)
	buf.WriteString("\r\n")

	// text/plain first, then text/html: mail clients render the last
	// alternative they understand.
	if m.TextBody != "" {
		if err := writePart(w, "text/plain", m.TextBody); err != nil {
			return nil, err
		}
	}
	if m.HTMLBody != "" {
		if err := writePart(w, "text/html", m.HTMLBody); err != nil {
			return nil, err
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%w: closing multipart writer: %v", ErrBuildFailed, err)
	}
	return buf.Bytes(), nil
}

func writePart(w *multipart.Writer, contentType, body string) error {
	header := textproto.MIMEHeader{
		"Content-Type":              {contentType + `; charset="UTF-8"`},
		"Content-Transfer-Encoding": {"base64"},
	}
	part, err := w.CreatePart(header)
	if err != nil {
		return fmt.Errorf("%w: creating %s part: %v", ErrBuildFailed, contentType, err)
	}
	if _, err := part.Write(wrapBase64([]byte(body))); err != nil {
		return fmt.Errorf("%w: writing %s part: %v", ErrBuildFailed, contentType, err)
	}
	return nil
}

// wrapBase64 encodes data and folds the output at 76 characters per
// RFC 2045 line-length limits.
func wrapBase64(data []byte) []byte {
	encoded := base64.StdEncoding.EncodeToString(data)

	const lineLen = 76
	var b bytes.Buffer
	for len(encoded) > lineLen {
		b.WriteString(encoded[:lineLen])
		b.WriteString("\r\n")
		encoded = encoded[lineLen:]
	}
	b.WriteString(encoded)
	return b.Bytes()
}

// encodeWord applies RFC 2047 B-encoding (=?UTF-8?B?...?=) to header
// values containing non-ASCII bytes; pure ASCII passes through.
func encodeWord(s string) string {
	if isASCII(s) {
		return s
	}
	return mime.BEncoding.Encode("UTF-8", s)
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}
