package experiment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ssegota/daignostics/internal/platform/metrics"
	"github.com/ssegota/daignostics/internal/platform/predict"
)

// Predictor abstracts the external model-inference API.
type Predictor interface {
	Predict(ctx context.Context, features map[string]float64) (*predict.Result, error)
}

type Service struct {
	experiments ExperimentRepository
	predictor   Predictor
	metrics     *metrics.Metrics
}

func NewService(experiments ExperimentRepository, predictor Predictor) *Service {
	return &Service{experiments: experiments, predictor: predictor}
}

// SetMetrics attaches optional Prometheus collectors to the service.
func (s *Service) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// CreateExperiment persists a new measurement snapshot. When runPrediction
// is set the external model API is consulted first and its consensus is
// stored alongside the measurements; a prediction failure fails the create
// so callers never end up with a half-classified record.
func (s *Service) CreateExperiment(ctx context.Context, e *Experiment, runPrediction bool) error {
	if e.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if e.GenerationDate.IsZero() {
		e.GenerationDate = time.Now().UTC()
	}

	if runPrediction {
		if s.predictor == nil {
			return fmt.Errorf("prediction service not configured")
		}
		result, err := s.predictor.Predict(ctx, e.Features())
		if err != nil {
			if s.metrics != nil {
				s.metrics.PredictionsTotal.WithLabelValues("error").Inc()
			}
			return fmt.Errorf("prediction failed: %w", err)
		}
		e.Prediction = &result.Prediction
		e.Confidence = &result.Confidence
		e.ModelCount = &result.ModelCount
		if len(result.Results) > 0 {
			raw, err := json.Marshal(result.Results)
			if err == nil {
				e.ModelResults = raw
			}
		}
		if s.metrics != nil {
			s.metrics.PredictionsTotal.WithLabelValues("ok").Inc()
		}
	}

	return s.experiments.Create(ctx, e)
}

// CreateFromCSV parses an uploaded measurement CSV and persists it for the
// patient. The CSV's generation date must be RFC 3339; an empty date falls
// back to the upload time.
func (s *Service) CreateFromCSV(ctx context.Context, patientID uuid.UUID, data []byte, runPrediction bool) (*Experiment, error) {
	parsed, err := ParseMeasurementsCSV(data)
	if err != nil {
		return nil, err
	}

	e := &Experiment{
		PatientID:    patientID,
		Measurements: parsed.Measurements,
	}
	if parsed.GenerationDate != "" {
		ts, err := time.Parse(time.RFC3339, parsed.GenerationDate)
		if err != nil {
			return nil, fmt.Errorf("invalid generationDate %q: expected RFC 3339 timestamp", parsed.GenerationDate)
		}
		e.GenerationDate = ts
	}

	if err := s.CreateExperiment(ctx, e, runPrediction); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) GetExperiment(ctx context.Context, id uuid.UUID) (*Experiment, error) {
	return s.experiments.GetByID(ctx, id)
}

func (s *Service) ListExperimentsByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Experiment, int, error) {
	return s.experiments.ListByPatient(ctx, patientID, limit, offset)
}
