package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// RequireRole returns middleware that checks the authenticated caller's
// user type against the allowed set. Must run after Authenticate.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ident := IdentityFromContext(c.Request().Context())
			if ident == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token")
			}
			for _, role := range roles {
				if ident.UserType == role {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden,
				fmt.Sprintf("required role: %s", strings.Join(roles, " or ")))
		}
	}
}

// RequireAdmin restricts a route to admin users.
func RequireAdmin() echo.MiddlewareFunc {
	return RequireRole(UserTypeAdmin)
}

// RequirePatient restricts a route to patient users.
func RequirePatient() echo.MiddlewareFunc {
	return RequireRole(UserTypePatient)
}

// RequirePatientAccess guards routes carrying a :patientId parameter.
// Admins pass for any patient; patients pass only for their own records.
func RequirePatientAccess() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ident := IdentityFromContext(c.Request().Context())
			if ident == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token")
			}
			if !ident.OwnsPatient(c.Param("patientId")) {
				return echo.NewHTTPError(http.StatusForbidden, "access to this patient's records is not allowed")
			}
			return next(c)
		}
	}
}
