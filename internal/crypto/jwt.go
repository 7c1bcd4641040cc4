package crypto

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/bookshelf/bookshelf-go/internal/model"
	"github.com/golang-jwt/jwt/v5"
)

const issuer = "bookshelf"

var (
	ErrMissingSecret  = errors.New("token signing secret is not configured")
	ErrMissingExpiry  = errors.New("token validity duration is not configured")
	ErrTokenMalformed = errors.New("malformed token")
	ErrTokenSignature = errors.New("invalid token signature")
	ErrTokenExpired   = errors.New("token expired")
)

// Claims represents the JWT claims for Bookshelf sessions.
type Claims struct {
	jwt.RegisteredClaims
	Data model.Identity `json:"data"`
}

// TokenService issues and verifies HS256 session tokens.
type TokenService struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// NewTokenService creates a TokenService. The secret and expiry are mandatory.
func NewTokenService(secret string, expiry time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if expiry <= 0 {
		return nil, ErrMissingExpiry
	}
	return &TokenService{secret: []byte(secret), expiry: expiry, now: time.Now}, nil
}

// Issue creates a signed token for the given identity, expiring after the configured validity.
func (s *TokenService) Issue(id model.Identity) (string, error) {
	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   id.UserID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Data: id,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks structure, then signature, then expiry, and returns the embedded identity.
// A token is still valid at the exact second of its expiry.
func (s *TokenService) Verify(tokenString string) (model.Identity, error) {
	if _, err := DecodeUnverified(tokenString); err != nil {
		return model.Identity{}, err
	}

	claims := &Claims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithStrictDecoding(),
		jwt.WithoutClaimsValidation(),
	)
	_, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		// Header and payload already decoded, so anything left is the signature segment.
		return model.Identity{}, ErrTokenSignature
	}

	if s.now().After(claims.ExpiresAt.Time) {
		return model.Identity{}, ErrTokenExpired
	}

	return claims.Data, nil
}

// DecodeUnverified decodes the payload of a token without checking its signature.
// It fails with ErrTokenMalformed unless the token has three segments, decodable
// JSON header and payload, and an expiry.
func DecodeUnverified(tokenString string) (Claims, error) {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return Claims{}, ErrTokenMalformed
	}

	var header map[string]any
	if err := decodeSegment(parts[0], &header); err != nil {
		return Claims{}, ErrTokenMalformed
	}

	var claims Claims
	if err := decodeSegment(parts[1], &claims); err != nil {
		return Claims{}, ErrTokenMalformed
	}
	if claims.ExpiresAt == nil {
		return Claims{}, ErrTokenMalformed
	}

	return claims, nil
}

// Expiry returns the expiry embedded in the claims.
func (c Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

func decodeSegment(seg string, v any) error {
	raw, err := base64.RawURLEncoding.DecodeString(seg)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}
