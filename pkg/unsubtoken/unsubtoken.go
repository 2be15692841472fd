package unsubtoken

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Scope limits what an unsubscribe token may turn off.
type Scope string

const (
	// ScopeReminder unsubscribes from tithe reminder emails only.
	ScopeReminder Scope = "reminder"
	// ScopeAll unsubscribes from all outbound email.
	ScopeAll Scope = "all"
)

func (s Scope) valid() bool {
	return s == ScopeReminder || s == ScopeAll
}

// Claims are the signed contents of an unsubscribe token.
type Claims struct {
	ID          string `json:"jti"`
	RecipientID string `json:"rid"`
	Email       string `json:"eml"`
	Scope       Scope  `json:"scp"`
	ExpiresAt   int64  `json:"exp"`
}

// Service generates and verifies unsubscribe tokens embedded in
// outbound email links. Tokens are a base64url-encoded JSON claims
// object followed by an HMAC-SHA256 signature, so they can be verified
// statelessly by the unsubscribe endpoint.
type Service struct {
	secret []byte
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the wall clock used for expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a token service. The secret should be at least 32 bytes.
func New(secret []byte, opts ...Option) (*Service, error) {
	if len(secret) == 0 {
		return nil, ErrMissingSecret
	}

	s := &Service{secret: secret, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Generate creates a token for the recipient, valid for ttl.
func (s *Service) Generate(recipientID, email string, scope Scope, ttl time.Duration) (string, error) {
	if recipientID == "" || email == "" {
		return "", ErrMissingRecipient
	}
	if !scope.valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidScope, string(scope))
	}
	if ttl <= 0 {
		return "", ErrInvalidTTL
	}

	payload, err := json.Marshal(Claims{
		ID:          uuid.NewString(),
		RecipientID: recipientID,
		Email:       email,
		Scope:       scope,
		ExpiresAt:   s.now().Add(ttl).Unix(),
	})
	if err != nil {
		return "", fmt.Errorf("unsubtoken: marshaling claims: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(payload) + "." + s.sign(payload), nil
}

// Verify checks the signature and expiry and returns the claims.
func (s *Service) Verify(token string) (Claims, error) {
	payloadEnc, sigEnc, ok := strings.Cut(token, ".")
	if !ok {
		return Claims{}, ErrInvalidToken
	}

	payload, err := base64.RawURLEncoding.DecodeString(payloadEnc)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}

	// Constant-time comparison prevents timing attacks on the signature.
	if subtle.ConstantTimeCompare([]byte(sigEnc), []byte(s.sign(payload))) != 1 {
		return Claims{}, ErrInvalidSignature
	}

	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return Claims{}, ErrInvalidToken
	}
	if !claims.Scope.valid() {
		return Claims{}, ErrInvalidToken
	}
	if claims.ExpiresAt <= s.now().Unix() {
		return Claims{}, ErrExpiredToken
	}
	return claims, nil
}

func (s *Service) sign(payload []byte) string {
	h := hmac.New(sha256.New, s.secret)
	h.Write(payload)
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}
