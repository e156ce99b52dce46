package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/ygarasab/acaimar-api/internal/models"
)

const (
	// DefaultTokenTTL is the token lifetime when none is configured
	DefaultTokenTTL = 24 * time.Hour

	bearerPrefix = "Bearer "
)

// TokenCodec issues and decodes the API's HS256 access tokens
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenCodec creates a codec signing with secret. A non-positive ttl
// falls back to DefaultTokenTTL.
func NewTokenCodec(secret string, ttl time.Duration) *TokenCodec {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenCodec{secret: []byte(secret), ttl: ttl}
}

// Issue builds a signed token carrying user_id, email and role, expiring
// after the configured TTL.
func (c *TokenCodec) Issue(userID, email, role string) (string, error) {
	now := time.Now()
	tok, err := jwt.NewBuilder().
		Claim("user_id", userID).
		Claim("email", email).
		Claim("role", role).
		IssuedAt(now).
		Expiration(now.Add(c.ttl)).
		Build()
	if err != nil {
		return "", fmt.Errorf("failed to build token: %w", err)
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, c.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return string(signed), nil
}

// Decode parses and verifies a token and extracts its claims. Malformed
// tokens, bad signatures, expired tokens and missing identity claims all
// come back as a plain error; callers log the cause but must not branch on
// it.
func (c *TokenCodec) Decode(tokenString string) (*models.Claims, error) {
	token, err := jwt.Parse([]byte(tokenString), jwt.WithKey(jwa.HS256, c.secret), jwt.WithValidate(true))
	if err != nil {
		return nil, fmt.Errorf("failed to parse/verify token: %w", err)
	}

	claims := &models.Claims{}

	if v, ok := token.Get("user_id"); ok {
		if s, ok := v.(string); ok {
			claims.UserID = s
		}
	}
	if v, ok := token.Get("email"); ok {
		if s, ok := v.(string); ok {
			claims.Email = s
		}
	}
	if v, ok := token.Get("role"); ok {
		if s, ok := v.(string); ok {
			claims.Role = s
		}
	}

	if claims.UserID == "" || claims.Email == "" {
		return nil, fmt.Errorf("token missing identity claims")
	}

	return claims, nil
}

// TokenFromRequest extracts the access token from the Authorization header.
// Returns "" when the header is absent or empty. Exactly one "Bearer "
// prefix (case-sensitive, single space) is stripped; any other value is
// returned verbatim.
func TokenFromRequest(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, bearerPrefix) {
		return header[len(bearerPrefix):]
	}
	return header
}
