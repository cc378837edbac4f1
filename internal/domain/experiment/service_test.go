package experiment

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ssegota/daignostics/internal/platform/predict"
)

// -- Mock Repository --

type mockExperimentRepo struct {
	store map[uuid.UUID]*Experiment
}

func newMockExperimentRepo() *mockExperimentRepo {
	return &mockExperimentRepo{store: make(map[uuid.UUID]*Experiment)}
}

func (m *mockExperimentRepo) Create(_ context.Context, e *Experiment) error {
	e.ID = uuid.New()
	e.CreatedAt = time.Now()
	m.store[e.ID] = e
	return nil
}

func (m *mockExperimentRepo) GetByID(_ context.Context, id uuid.UUID) (*Experiment, error) {
	e, ok := m.store[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return e, nil
}

func (m *mockExperimentRepo) ListByPatient(_ context.Context, pid uuid.UUID, limit, offset int) ([]*Experiment, int, error) {
	var r []*Experiment
	for _, e := range m.store {
		if e.PatientID == pid {
			r = append(r, e)
		}
	}
	return r, len(r), nil
}

type mockPredictor struct {
	result *predict.Result
	err    error
	calls  int
}

func (m *mockPredictor) Predict(_ context.Context, features map[string]float64) (*predict.Result, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func sampleMeasurements() Measurements {
	return Measurements{
		PeakCounts: 12, Amplitude: 0.45, AUC: 3.2, FWHM: 18.5,
		Frequency: 1.2, SNR: 24.1, Skewness: -0.3, Kurtosis: 2.9,
	}
}

// -- Service Tests --

func TestCreateExperiment_WithoutPrediction(t *testing.T) {
	repo := newMockExperimentRepo()
	svc := NewService(repo, nil)

	e := &Experiment{PatientID: uuid.New(), Measurements: sampleMeasurements()}
	if err := svc.CreateExperiment(context.Background(), e, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.ID == uuid.Nil {
		t.Error("expected ID to be set")
	}
	if e.GenerationDate.IsZero() {
		t.Error("expected generation date to default to now")
	}
	if e.Prediction != nil {
		t.Error("no prediction was requested")
	}
}

func TestCreateExperiment_MissingPatient(t *testing.T) {
	svc := NewService(newMockExperimentRepo(), nil)
	e := &Experiment{Measurements: sampleMeasurements()}
	if err := svc.CreateExperiment(context.Background(), e, false); err == nil {
		t.Fatal("expected error for missing patient_id")
	}
}

func TestCreateExperiment_WithPrediction(t *testing.T) {
	repo := newMockExperimentRepo()
	pred := &mockPredictor{result: &predict.Result{
		Prediction: 1,
		Confidence: 0.91,
		ModelCount: 3,
		Results: []predict.ModelResult{
			{Model: "rf", Prediction: 1, Confidence: 0.9},
			{Model: "xgb", Prediction: 1, Confidence: 0.92},
		},
	}}
	svc := NewService(repo, pred)

	e := &Experiment{PatientID: uuid.New(), Measurements: sampleMeasurements()}
	if err := svc.CreateExperiment(context.Background(), e, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pred.calls != 1 {
		t.Errorf("predictor called %d times, want 1", pred.calls)
	}
	if e.Prediction == nil || *e.Prediction != 1 {
		t.Error("consensus prediction should be stored")
	}
	if e.Confidence == nil || *e.Confidence != 0.91 {
		t.Error("consensus confidence should be stored")
	}
	if e.ModelCount == nil || *e.ModelCount != 3 {
		t.Error("model count should be stored")
	}
	if len(e.ModelResults) == 0 {
		t.Error("per-model results should be stored as JSON")
	}
}

func TestCreateExperiment_PredictionFailureFailsCreate(t *testing.T) {
	repo := newMockExperimentRepo()
	pred := &mockPredictor{err: fmt.Errorf("inference API unreachable")}
	svc := NewService(repo, pred)

	e := &Experiment{PatientID: uuid.New(), Measurements: sampleMeasurements()}
	if err := svc.CreateExperiment(context.Background(), e, true); err == nil {
		t.Fatal("expected error when prediction fails")
	}
	if len(repo.store) != 0 {
		t.Error("no record should be persisted when prediction fails")
	}
}

func TestCreateExperiment_NoPredictorConfigured(t *testing.T) {
	svc := NewService(newMockExperimentRepo(), nil)
	e := &Experiment{PatientID: uuid.New(), Measurements: sampleMeasurements()}
	if err := svc.CreateExperiment(context.Background(), e, true); err == nil {
		t.Fatal("expected error when no predictor is configured")
	}
}

func TestCreateFromCSV_Success(t *testing.T) {
	repo := newMockExperimentRepo()
	svc := NewService(repo, nil)
	pid := uuid.New()

	e, err := svc.CreateFromCSV(context.Background(), pid, []byte(validCSV), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.PatientID != pid {
		t.Error("experiment should belong to the uploading patient")
	}
	want := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	if !e.GenerationDate.Equal(want) {
		t.Errorf("GenerationDate = %v, want %v", e.GenerationDate, want)
	}
	if e.Amplitude != 0.45 {
		t.Errorf("Amplitude = %v, want 0.45", e.Amplitude)
	}
}

func TestCreateFromCSV_BadDate(t *testing.T) {
	svc := NewService(newMockExperimentRepo(), nil)
	csv := "peakCounts,amplitude,auc,fwhm,frequency,snr,skewness,kurtosis,generationDate\n" +
		"12,0.45,3.2,18.5,1.2,24.1,-0.3,2.9,yesterday\n"
	if _, err := svc.CreateFromCSV(context.Background(), uuid.New(), []byte(csv), false); err == nil {
		t.Fatal("expected error for non-RFC3339 generation date")
	}
}

func TestCreateFromCSV_ParseErrorDoesNotPersist(t *testing.T) {
	repo := newMockExperimentRepo()
	svc := NewService(repo, nil)
	csv := "peakCounts,amplitude\n12\n"
	if _, err := svc.CreateFromCSV(context.Background(), uuid.New(), []byte(csv), false); err == nil {
		t.Fatal("expected parse error")
	}
	if len(repo.store) != 0 {
		t.Error("nothing should be persisted on a parse error")
	}
}

func TestListExperimentsByPatient(t *testing.T) {
	repo := newMockExperimentRepo()
	svc := NewService(repo, nil)
	pid := uuid.New()

	for i := 0; i < 3; i++ {
		e := &Experiment{PatientID: pid, Measurements: sampleMeasurements()}
		if err := svc.CreateExperiment(context.Background(), e, false); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	svc.CreateExperiment(context.Background(),
		&Experiment{PatientID: uuid.New(), Measurements: sampleMeasurements()}, false)

	items, total, err := svc.ListExperimentsByPatient(context.Background(), pid, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 3 || len(items) != 3 {
		t.Errorf("expected 3 experiments, got total=%d len=%d", total, len(items))
	}
}

func TestMeasurements_Features(t *testing.T) {
	f := sampleMeasurements().Features()
	if len(f) != 8 {
		t.Fatalf("expected 8 features, got %d", len(f))
	}
	if f["peakCounts"] != 12 || f["snr"] != 24.1 {
		t.Error("feature map should use camelCase measurement keys")
	}
}
