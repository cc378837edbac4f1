package experiment

import (
	"context"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ssegota/daignostics/internal/domain/patient"
	"github.com/ssegota/daignostics/internal/platform/auth"
	"github.com/ssegota/daignostics/pkg/pagination"
)

// maxUploadBytes bounds measurement CSV uploads. Real exports are two lines.
const maxUploadBytes = 1 << 20

// PatientDirectory resolves patients for ownership checks.
type PatientDirectory interface {
	GetPatient(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
}

type Handler struct {
	svc      *Service
	patients PatientDirectory
}

func NewHandler(svc *Service, patients PatientDirectory) *Handler {
	return &Handler{svc: svc, patients: patients}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	doctors := api.Group("", auth.RequireRole("doctor"))
	doctors.POST("/experiments", h.CreateExperiment)
	doctors.POST("/experiments/upload", h.UploadExperiment)

	readers := api.Group("", auth.RequireRole("doctor", "patient"))
	readers.GET("/experiments", h.ListExperiments)
	readers.GET("/experiments/:id", h.GetExperiment)
}

// resolvePatient loads the patient and checks the session may see their
// records: doctors see their own patients, patients see only themselves.
func (h *Handler) resolvePatient(c echo.Context, patientID uuid.UUID) (*patient.Patient, error) {
	ctx := c.Request().Context()
	p, err := h.patients.GetPatient(ctx, patientID)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}

	switch auth.RoleFromContext(ctx) {
	case auth.RoleAdmin:
		return p, nil
	case auth.RoleDoctor:
		if p.DoctorID.String() != auth.OwnerIDFromContext(ctx) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}
	case auth.RolePatient:
		if p.ID.String() != auth.OwnerIDFromContext(ctx) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}
	default:
		return nil, echo.NewHTTPError(http.StatusForbidden, "access denied")
	}
	return p, nil
}

func (h *Handler) CreateExperiment(c echo.Context) error {
	var e Experiment
	if err := c.Bind(&e); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if _, err := h.resolvePatient(c, e.PatientID); err != nil {
		return err
	}
	runPrediction := c.QueryParam("predict") == "true"
	if err := h.svc.CreateExperiment(c.Request().Context(), &e, runPrediction); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, e)
}

func (h *Handler) UploadExperiment(c echo.Context) error {
	patientID, err := uuid.Parse(c.FormValue("patient_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
	}
	if _, err := h.resolvePatient(c, patientID); err != nil {
		return err
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	if fh.Size > maxUploadBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "file too large")
	}
	f, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read file")
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read file")
	}

	runPrediction := c.FormValue("predict") == "true"
	e, err := h.svc.CreateFromCSV(c.Request().Context(), patientID, data, runPrediction)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, e)
}

func (h *Handler) GetExperiment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	e, err := h.svc.GetExperiment(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "experiment not found")
	}
	if _, err := h.resolvePatient(c, e.PatientID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) ListExperiments(c echo.Context) error {
	ctx := c.Request().Context()

	var patientID uuid.UUID
	if auth.RoleFromContext(ctx) == auth.RolePatient {
		// Patients only ever see their own results.
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

	if _, err := h.resolvePatient(c, patientID); err != nil {
		return err
	}

	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListExperimentsByPatient(ctx, patientID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
