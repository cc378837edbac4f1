package patient

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ssegota/daignostics/internal/platform/auth"
	"github.com/ssegota/daignostics/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	doctors := api.Group("", auth.RequireRole("doctor"))
	doctors.GET("/patients", h.ListPatients)
	doctors.POST("/patients", h.CreatePatient)
	doctors.GET("/patients/:id", h.GetPatient)
	doctors.PUT("/patients/:id", h.UpdatePatient)
	doctors.POST("/patients/:id/transfer", h.TransferPatient)
	doctors.DELETE("/patients/:id", h.DeletePatient)

	self := api.Group("", auth.RequireRole("patient"))
	self.GET("/patients/me", h.GetCurrentPatient)
}

// doctorScope returns the doctor ID the session acts as. Admin sessions may
// act on behalf of any doctor via the doctor_id query parameter.
func doctorScope(c echo.Context) (uuid.UUID, error) {
	ctx := c.Request().Context()
	if auth.RoleFromContext(ctx) == auth.RoleAdmin {
		if did := c.QueryParam("doctor_id"); did != "" {
			return uuid.Parse(did)
		}
	}
	return uuid.Parse(auth.OwnerIDFromContext(ctx))
}

func (h *Handler) CreatePatient(c echo.Context) error {
	doctorID, err := doctorScope(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusForbidden, "no doctor profile for this session")
	}
	var p Patient
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p.DoctorID = doctorID
	if err := h.svc.CreatePatient(c.Request().Context(), &p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetPatient(c echo.Context) error {
	doctorID, err := doctorScope(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusForbidden, "no doctor profile for this session")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := h.svc.GetPatient(c.Request().Context(), id)
	if err != nil || p.DoctorID != doctorID {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}
	return c.JSON(http.StatusOK, p)
}

// GetCurrentPatient returns the patient profile behind the session. Tokens
// from an external identity provider carry no profile claim, so the lookup
// falls back to the account link.
func (h *Handler) GetCurrentPatient(c echo.Context) error {
	ctx := c.Request().Context()

	if id, err := uuid.Parse(auth.OwnerIDFromContext(ctx)); err == nil {
		p, err := h.svc.GetPatient(ctx, id)
		if err != nil {
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}
		return c.JSON(http.StatusOK, p)
	}

	accountID, err := uuid.Parse(auth.AccountIDFromContext(ctx))
	if err != nil {
		return echo.NewHTTPError(http.StatusForbidden, "no patient profile for this session")
	}
	p, err := h.svc.GetPatientByAccountID(ctx, accountID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdatePatient(c echo.Context) error {
	doctorID, err := doctorScope(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusForbidden, "no doctor profile for this session")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	existing, err := h.svc.GetPatient(c.Request().Context(), id)
	if err != nil || existing.DoctorID != doctorID {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}
	var p Patient
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p.ID = id
	if err := h.svc.UpdatePatient(c.Request().Context(), &p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) DeletePatient(c echo.Context) error {
	doctorID, err := doctorScope(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusForbidden, "no doctor profile for this session")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	existing, err := h.svc.GetPatient(c.Request().Context(), id)
	if err != nil || existing.DoctorID != doctorID {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}
	if err := h.svc.DeletePatient(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

type transferRequest struct {
	DoctorID uuid.UUID `json:"doctor_id"`
}

func (h *Handler) TransferPatient(c echo.Context) error {
	doctorID, err := doctorScope(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusForbidden, "no doctor profile for this session")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req transferRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.TransferPatient(c.Request().Context(), id, doctorID, req.DoctorID); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListPatients(c echo.Context) error {
	doctorID, err := doctorScope(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusForbidden, "no doctor profile for this session")
	}

	f := Filter{
		Name:   c.QueryParam("name"),
		Gender: c.QueryParam("gender"),
	}
	if v := c.QueryParam("min_age"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid min_age")
		}
		f.MinAge = &n
	}
	if v := c.QueryParam("max_age"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid max_age")
		}
		f.MaxAge = &n
	}

	sortBy := SortField(c.QueryParam("sort"))
	switch sortBy {
	case "", SortByName:
		sortBy = SortByName
	case SortByAge, SortByCreated:
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "invalid sort field")
	}
	desc := c.QueryParam("order") == "desc"

	items, err := h.svc.ListPatients(c.Request().Context(), doctorID, f, sortBy, desc)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	pg := pagination.FromContext(c)
	total := len(items)
	start := pg.Offset
	if start > total {
		start = total
	}
	end := start + pg.Limit
	if end > total {
		end = total
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items[start:end], total, pg.Limit, pg.Offset))
}
