package apperr

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// HTTPStatus returns the response status for an error kind.
func HTTPStatus(err error) int {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, ErrDuplicateEmail):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrTokenExpired),
		errors.Is(err, ErrAccountDeactivated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// WriteJSON maps err to its HTTP status and writes the error envelope.
// Validation errors include the per-field list; storage and unknown errors
// get a generic message so internals never reach clients.
func WriteJSON(c echo.Context, err error) error {
	status := HTTPStatus(err)

	if verr, ok := AsValidation(err); ok {
		return c.JSON(status, map[string]interface{}{
			"message": "validation failed",
			"errors":  verr.Fields,
		})
	}

	if status == http.StatusInternalServerError {
		return c.JSON(status, map[string]interface{}{
			"message": "internal server error",
		})
	}

	return c.JSON(status, map[string]interface{}{
		"message": err.Error(),
	})
}
