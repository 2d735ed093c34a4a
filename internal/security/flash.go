package security

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// FlashCookieName carries the one-shot confirmation shown after a redirect.
	FlashCookieName = "wellness_flash"
	// DefaultFlashTTL bounds how long a flash survives if never shown.
	DefaultFlashTTL = time.Minute

	flashIssuer = "wellnesstracker"
)

type flashClaims struct {
	Message string `json:"msg"`
	jwt.RegisteredClaims
}

// FlashSigner stores one-shot messages in an HS256-signed cookie so they
// survive the redirect that follows a successful POST.
type FlashSigner struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewFlashSigner creates a signer keyed by secret
func NewFlashSigner(secret string, ttl time.Duration) *FlashSigner {
	if ttl <= 0 {
		ttl = DefaultFlashTTL
	}
	return &FlashSigner{key: []byte(secret), ttl: ttl, now: time.Now}
}

// Sign returns a token carrying message.
func (s *FlashSigner) Sign(message string) (string, error) {
	now := s.now()
	claims := flashClaims{
		Message: message,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        NewTokenID(),
			Issuer:    flashIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign flash: %w", err)
	}
	return token, nil
}

// Verify checks the signature, issuer and expiry of token and returns its
// message.
func (s *FlashSigner) Verify(token string) (string, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(flashIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)

	claims := &flashClaims{}
	parsed, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.key, nil
	})
	if err != nil {
		return "", fmt.Errorf("invalid flash: %w", err)
	}
	if !parsed.Valid {
		return "", errors.New("invalid flash")
	}
	return claims.Message, nil
}

// SetFlash attaches message to the response.
func (s *FlashSigner) SetFlash(w http.ResponseWriter, r *http.Request, message string) error {
	token, err := s.Sign(message)
	if err != nil {
		return err
	}
	http.SetCookie(w, CreateCookie(r, FlashCookieName, token, s.ttl))
	return nil
}

// ConsumeFlash returns the pending message, if any, and clears the cookie.
// Tampered or expired cookies are dropped silently.
func (s *FlashSigner) ConsumeFlash(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(FlashCookieName)
	if err != nil {
		return ""
	}
	http.SetCookie(w, CreateDeleteCookie(r, FlashCookieName))

	message, err := s.Verify(cookie.Value)
	if err != nil {
		return ""
	}
	return message
}
