package report

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
	readers := api.Group("", auth.RequireRole("doctor", "patient"))
	readers.POST("/reports", h.GenerateReport)
	readers.GET("/reports", h.ListReports)
	readers.GET("/reports/:id", h.GetReport)
	readers.GET("/reports/:id/download", h.DownloadReport)
}

// authorize checks the session may see a report for the given patient and
// doctor: the owning doctor, the patient themselves, or an admin.
func authorize(c echo.Context, patientID, doctorID uuid.UUID) error {
	ctx := c.Request().Context()
	switch auth.RoleFromContext(ctx) {
	case auth.RoleAdmin:
		return nil
	case auth.RoleDoctor:
		if doctorID.String() == auth.OwnerIDFromContext(ctx) {
			return nil
		}
	case auth.RolePatient:
		if patientID.String() == auth.OwnerIDFromContext(ctx) {
			return nil
		}
	}
	return echo.NewHTTPError(http.StatusNotFound, "report not found")
}

type generateRequest struct {
	ExperimentID uuid.UUID `json:"experiment_id"`
}

func (h *Handler) GenerateReport(c echo.Context) error {
	var req generateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.ExperimentID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "experiment_id is required")
	}

	ctx := c.Request().Context()
	exp, err := h.svc.experiments.GetExperiment(ctx, req.ExperimentID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "experiment not found")
	}
	p, err := h.svc.patients.GetPatient(ctx, exp.PatientID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}
	if err := authorize(c, p.ID, p.DoctorID); err != nil {
		return err
	}

	rep, err := h.svc.Generate(ctx, req.ExperimentID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, rep)
}

func (h *Handler) GetReport(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	rep, err := h.svc.GetReport(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "report not found")
	}
	if err := authorize(c, rep.PatientID, rep.DoctorID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rep)
}

func (h *Handler) DownloadReport(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	rep, err := h.svc.GetReport(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "report not found")
	}
	if err := authorize(c, rep.PatientID, rep.DoctorID); err != nil {
		return err
	}
	rc, err := h.svc.Open(c.Request().Context(), rep)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "report file not found")
	}
	defer rc.Close()
	c.Response().Header().Set("Content-Disposition", `attachment; filename="`+rep.FileName+`"`)
	return c.Stream(http.StatusOK, rep.ContentType, rc)
}

func (h *Handler) ListReports(c echo.Context) error {
	ctx := c.Request().Context()

	var patientID uuid.UUID
	if auth.RoleFromContext(ctx) == auth.RolePatient {
		id, err := uuid.Parse(auth.OwnerIDFromContext(ctx))
		if err != nil {
			return echo.NewHTTPError(http.StatusForbidden, "no patient profile for this session")
		}
		patientID = id
	} else {
		id, err := uuid.Parse(c.QueryParam("patient_id"))
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "patient_id is required")
		}
		patientID = id
	}

	p, err := h.svc.patients.GetPatient(ctx, patientID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}
	if err := authorize(c, p.ID, p.DoctorID); err != nil {
		return err
	}

	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListReportsByPatient(ctx, patientID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
