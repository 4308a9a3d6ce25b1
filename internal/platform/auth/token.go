package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/caretrack/caretrack/internal/platform/apperr"
)

// Claims are the JWT claims carried by access tokens.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"userId"`
	UserType string `json:"userType"`
}

// Tokens issues and verifies HS256 access tokens. The signing secret is
// supplied at construction, never read from ambient state.
type Tokens struct {
	secret []byte
	ttl    time.Duration
}

// NewTokens creates a token issuer/verifier with the given secret and
// token lifetime.
func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token for the user valid for the configured lifetime.
func (t *Tokens) Issue(userID uuid.UUID, userType string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
		UserID:   userID.String(),
		UserType: userType,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token string. Expired tokens are reported
// distinctly from malformed or forged ones.
func (t *Tokens) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperr.ErrTokenExpired
		}
		return nil, apperr.ErrInvalidToken
	}
	if !token.Valid {
		return nil, apperr.ErrInvalidToken
	}
	return claims, nil
}
