package careplan

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/caretrack/caretrack/internal/platform/apperr"
	"github.com/caretrack/caretrack/internal/platform/auth"
	"github.com/caretrack/caretrack/pkg/pagination"
)

// Handler serves one kind's care-plan routes. Both kinds mount the same
// surface; obstetrics additionally exposes the breastfeeding log append.
type Handler struct {
	svc  *Service
	kind Kind
}

func NewHandler(svc *Service, kind Kind) *Handler {
	return &Handler{svc: svc, kind: kind}
}

// RegisterRoutes mounts the care-plan endpoints on g (the kind's route
// group). All routes require authentication; writes and the unscoped list
// are admin-only, patient-scoped reads pass the ownership gate.
func (h *Handler) RegisterRoutes(g *echo.Group, authn echo.MiddlewareFunc) {
	plans := g.Group("/care-plans", authn)
	plans.POST("", h.Create, auth.RequireAdmin())
	plans.GET("", h.List, auth.RequireAdmin())
	plans.GET("/:id", h.Get)
	plans.PUT("/:id", h.Update, auth.RequireAdmin())
	plans.DELETE("/:id", h.Delete, auth.RequireAdmin())

	g.GET("/patients/:patientId/care-plans", h.ListByPatient, authn, auth.RequirePatientAccess())

	if h.kind == KindObstetrics {
		plans.POST("/:id/breastfeeding-logs", h.AppendBreastfeedingLog)
	}
}

func (h *Handler) Create(c echo.Context) error {
	var p Plan
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	created, err := h.svc.Create(c.Request().Context(), h.kind, &p)
	if err != nil {
		return apperr.WriteJSON(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) List(c echo.Context) error {
	f := Filter{
		PatientID: c.QueryParam("patientId"),
		DoctorID:  c.QueryParam("doctorId"),
		Variant:   c.QueryParam(h.variantParam()),
		Status:    c.QueryParam("status"),
		Priority:  c.QueryParam("priority"),
	}
	pg := pagination.FromContext(c)

	plans, total, err := h.svc.List(c.Request().Context(), h.kind, f,
		c.QueryParam("sortBy"), c.QueryParam("sortOrder"), pg.Limit, pg.Offset())
	if err != nil {
		return apperr.WriteJSON(c, err)
	}
	if plans == nil {
		plans = []*Plan{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(plans, total, pg))
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid care plan id")
	}

	p, err := h.svc.Get(c.Request().Context(), h.kind, id)
	if err != nil {
		return apperr.WriteJSON(c, err)
	}

	// A patient may only read plans tagged with their own identifier.
	ident := auth.IdentityFromContext(c.Request().Context())
	if !ident.OwnsPatient(p.PatientID) {
		return apperr.WriteJSON(c, apperr.ErrForbidden)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid care plan id")
	}
	var upd Update
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p, err := h.svc.Update(c.Request().Context(), h.kind, id, &upd)
	if err != nil {
		return apperr.WriteJSON(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid care plan id")
	}
	p, err := h.svc.Delete(c.Request().Context(), h.kind, id)
	if err != nil {
		return apperr.WriteJSON(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListByPatient(c echo.Context) error {
	plans, err := h.svc.ListByPatient(c.Request().Context(), h.kind, c.Param("patientId"))
	if err != nil {
		return apperr.WriteJSON(c, err)
	}
	if plans == nil {
		plans = []*Plan{}
	}
	return c.JSON(http.StatusOK, plans)
}

type breastfeedingLogRequest struct {
	Duration int    `json:"duration"`
	Side     string `json:"side"`
	Notes    string `json:"notes"`
}

func (h *Handler) AppendBreastfeedingLog(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid care plan id")
	}
	var req breastfeedingLogRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	// Patients may log feedings on their own plan; admins on any.
	existing, err := h.svc.Get(c.Request().Context(), h.kind, id)
	if err != nil {
		return apperr.WriteJSON(c, err)
	}
	ident := auth.IdentityFromContext(c.Request().Context())
	if !ident.OwnsPatient(existing.PatientID) {
		return apperr.WriteJSON(c, apperr.ErrForbidden)
	}

	p, err := h.svc.AppendBreastfeedingLog(c.Request().Context(), id, req.Duration, req.Side, req.Notes)
	if err != nil {
		return apperr.WriteJSON(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) variantParam() string {
	if h.kind == KindObstetrics {
		return "careType"
	}
	return "operationType"
}
