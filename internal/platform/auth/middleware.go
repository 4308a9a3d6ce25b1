package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/caretrack/caretrack/internal/platform/apperr"
)

// IdentityResolver loads the live identity for a user ID. Implementations
// return apperr.ErrNotFound when the user no longer exists and
// apperr.ErrAccountDeactivated when the account has been disabled.
type IdentityResolver interface {
	Resolve(ctx context.Context, userID uuid.UUID) (*Identity, error)
}

// Authenticate returns middleware that requires a valid bearer token and
// attaches the caller's live identity to the request context. The identity
// is re-fetched on every request so deactivating or deleting a user revokes
// access immediately, regardless of outstanding tokens.
func Authenticate(tokens *Tokens, resolver IdentityResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ident, err := resolveRequest(c, tokens, resolver)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, authMessage(err))
			}

			c.SetRequest(c.Request().WithContext(
				WithIdentity(c.Request().Context(), ident)))
			return next(c)
		}
	}
}

// OptionalAuth attaches the identity when a valid token for an active
// account is presented and otherwise continues anonymously. It never
// rejects a request.
func OptionalAuth(tokens *Tokens, resolver IdentityResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if ident, err := resolveRequest(c, tokens, resolver); err == nil {
				c.SetRequest(c.Request().WithContext(
					WithIdentity(c.Request().Context(), ident)))
			}
			return next(c)
		}
	}
}

func resolveRequest(c echo.Context, tokens *Tokens, resolver IdentityResolver) (*Identity, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return nil, apperr.ErrInvalidToken
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return nil, apperr.ErrInvalidToken
	}

	claims, err := tokens.Verify(parts[1])
	if err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, apperr.ErrInvalidToken
	}

	ident, err := resolver.Resolve(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.ErrInvalidToken
		}
		return nil, err
	}
	return ident, nil
}

func authMessage(err error) string {
	switch {
	case errors.Is(err, apperr.ErrTokenExpired):
		return "token expired"
	case errors.Is(err, apperr.ErrAccountDeactivated):
		return "account deactivated"
	default:
		return "invalid or missing token"
	}
}
