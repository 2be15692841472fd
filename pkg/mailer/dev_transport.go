package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yossi-weinberger/ten10/pkg/email"
)

// DevTransport implements Transport for local development. Instead of
// calling the email API it writes each message to a directory as a raw
// .eml file plus a .json metadata file, and fabricates a message ID.
type DevTransport struct {
	dir string
}

// NewDevTransport creates a development transport writing into dir.
// The directory is created on first send if missing.
func NewDevTransport(dir string) *DevTransport {
	return &DevTransport{dir: dir}
}

type devMetadata struct {
	Timestamp string   `json:"timestamp"`
	MessageID string   `json:"message_id"`
	From      string   `json:"from"`
	To        []string `json:"to"`
	Subject   string   `json:"subject"`
}

func (d *DevTransport) Send(ctx context.Context, msg email.Message) (string, error) {
	raw, err := msg.RawMIME()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return "", fmt.Errorf("mailer: creating dev output dir: %w", err)
	}

	messageID := "dev-" + uuid.NewString()
	now := time.Now()
	base := fmt.Sprintf("%s_%s", now.Format("2006_01_02_150405"), sanitizeFilename(msg.Subject))

	if err := os.WriteFile(filepath.Join(d.dir, base+".eml"), raw, 0o644); err != nil {
		return "", fmt.Errorf("mailer: writing eml file: %w", err)
	}

	meta, err := json.MarshalIndent(devMetadata{
		Timestamp: now.Format(time.RFC3339),
		MessageID: messageID,
		From:      msg.From,
		To:        msg.To,
		Subject:   msg.Subject,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("mailer: marshaling metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(d.dir, base+".json"), meta, 0o644); err != nil {
		return "", fmt.Errorf("mailer: writing metadata file: %w", err)
	}

	return messageID, nil
}

var sanitizeRegex = regexp.MustCompile(`[^a-zA-Z0-9\-_.]`)

func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = sanitizeRegex.ReplaceAllString(s, "")

	const maxLength = 100
	if len(s) > maxLength {
		s = s[:maxLength]
	}
	if s == "" {
		s = "email"
	}
	return strings.ToLower(s)
}
