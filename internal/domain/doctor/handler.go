package doctor

import (
	"net/http"

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
	doctors.GET("/doctors/me", h.GetCurrentDoctor)
	doctors.GET("/doctors/:id", h.GetDoctor)
	doctors.PUT("/doctors/:id", h.UpdateDoctor)

	admin := api.Group("", auth.RequireRole("admin"))
	admin.GET("/doctors", h.ListDoctors)
	admin.POST("/doctors", h.CreateDoctor)
}

func (h *Handler) CreateDoctor(c echo.Context) error {
	var d Doctor
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateDoctor(c.Request().Context(), &d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) GetDoctor(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	d, err := h.svc.GetDoctor(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "doctor not found")
	}
	return c.JSON(http.StatusOK, d)
}

// GetCurrentDoctor returns the doctor profile behind the session. Tokens
// from an external identity provider carry no profile claim, so the lookup
// falls back to the account link.
func (h *Handler) GetCurrentDoctor(c echo.Context) error {
	ctx := c.Request().Context()

	if id, err := uuid.Parse(auth.OwnerIDFromContext(ctx)); err == nil {
		d, err := h.svc.GetDoctor(ctx, id)
		if err != nil {
			return echo.NewHTTPError(http.StatusNotFound, "doctor not found")
		}
		return c.JSON(http.StatusOK, d)
	}

	accountID, err := uuid.Parse(auth.AccountIDFromContext(ctx))
	if err != nil {
		return echo.NewHTTPError(http.StatusForbidden, "no doctor profile for this session")
	}
	d, err := h.svc.GetDoctorByAccountID(ctx, accountID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "doctor not found")
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) UpdateDoctor(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var d Doctor
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d.ID = id
	if err := h.svc.UpdateDoctor(c.Request().Context(), &d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) ListDoctors(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListDoctors(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
