package user

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/caretrack/caretrack/internal/platform/apperr"
	"github.com/caretrack/caretrack/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the auth endpoints on g. Register and login are
// public; profile, password and validate require a bearer token.
func (h *Handler) RegisterRoutes(g *echo.Group, authn echo.MiddlewareFunc) {
	g.POST("/patient/register", h.PatientRegister)
	g.POST("/patient/login", h.PatientLogin)
	g.POST("/admin/register", h.AdminRegister)
	g.POST("/admin/login", h.AdminLogin)

	protected := g.Group("", authn)
	protected.PUT("/profile", h.UpdateProfile)
	protected.PUT("/change-password", h.ChangePassword)
	protected.GET("/validate", h.Validate)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (h *Handler) PatientRegister(c echo.Context) error {
	var in RegisterPatientInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	u, token, err := h.svc.RegisterPatient(c.Request().Context(), &in)
	if err != nil {
		return apperr.WriteJSON(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "patient registered successfully",
		"user":    u,
		"token":   token,
	})
}

func (h *Handler) AdminRegister(c echo.Context) error {
	var in RegisterAdminInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	u, token, err := h.svc.RegisterAdmin(c.Request().Context(), &in)
	if err != nil {
		return apperr.WriteJSON(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "admin registered successfully",
		"user":    u,
		"token":   token,
	})
}

func (h *Handler) PatientLogin(c echo.Context) error {
	return h.login(c, auth.UserTypePatient)
}

func (h *Handler) AdminLogin(c echo.Context) error {
	return h.login(c, auth.UserTypeAdmin)
}

func (h *Handler) login(c echo.Context, userType string) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	u, token, err := h.svc.Login(c.Request().Context(), userType, req.Email, req.Password)
	if err != nil {
		return apperr.WriteJSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "login successful",
		"user":    u,
		"token":   token,
	})
}

func (h *Handler) UpdateProfile(c echo.Context) error {
	ident := auth.IdentityFromContext(c.Request().Context())
	if ident == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var upd ProfileUpdate
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	u, err := h.svc.UpdateProfile(c.Request().Context(), ident.ID, &upd)
	if err != nil {
		return apperr.WriteJSON(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) ChangePassword(c echo.Context) error {
	ident := auth.IdentityFromContext(c.Request().Context())
	if ident == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.ChangePassword(c.Request().Context(), ident.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return apperr.WriteJSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "password changed successfully",
	})
}

func (h *Handler) Validate(c echo.Context) error {
	ident := auth.IdentityFromContext(c.Request().Context())
	if ident == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	u, err := h.svc.Validate(c.Request().Context(), ident.ID)
	if err != nil {
		return apperr.WriteJSON(c, err)
	}
	return c.JSON(http.StatusOK, u)
}
