package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ssegota/daignostics/internal/domain/doctor"
	"github.com/ssegota/daignostics/internal/domain/experiment"
	"github.com/ssegota/daignostics/internal/domain/patient"
	"github.com/ssegota/daignostics/internal/platform/ai"
	"github.com/ssegota/daignostics/internal/platform/blobstore"
	"github.com/ssegota/daignostics/internal/platform/metrics"
)

// Analyzer produces the clinical interpretation text for one experiment.
type Analyzer interface {
	Analyze(ctx context.Context, features map[string]float64) (string, error)
}

// ExperimentGetter resolves experiments for report generation.
type ExperimentGetter interface {
	GetExperiment(ctx context.Context, id uuid.UUID) (*experiment.Experiment, error)
}

// PatientGetter resolves patients for report generation.
type PatientGetter interface {
	GetPatient(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
}

// DoctorGetter resolves doctors for report generation.
type DoctorGetter interface {
	GetDoctor(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error)
}

type Service struct {
	reports     ReportRepository
	experiments ExperimentGetter
	patients    PatientGetter
	doctors     DoctorGetter
	analyzer    Analyzer
	store       blobstore.Store
	prefix      string
	urlTTL      time.Duration
	logger      zerolog.Logger
	metrics     *metrics.Metrics
}

func NewService(reports ReportRepository, experiments ExperimentGetter, patients PatientGetter,
	doctors DoctorGetter, analyzer Analyzer, store blobstore.Store,
	prefix string, urlTTL time.Duration, logger zerolog.Logger) *Service {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Service{
		reports:     reports,
		experiments: experiments,
		patients:    patients,
		doctors:     doctors,
		analyzer:    analyzer,
		store:       store,
		prefix:      prefix,
		urlTTL:      urlTTL,
		logger:      logger,
	}
}

// SetMetrics attaches optional Prometheus collectors to the service.
func (s *Service) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// Generate builds a report for the experiment: model analysis (with a
// static fallback when the model is unreachable), text rendering, blob
// upload, and a persisted record with a fresh download URL.
func (s *Service) Generate(ctx context.Context, experimentID uuid.UUID) (*Report, error) {
	exp, err := s.experiments.GetExperiment(ctx, experimentID)
	if err != nil {
		return nil, fmt.Errorf("experiment not found")
	}
	p, err := s.patients.GetPatient(ctx, exp.PatientID)
	if err != nil {
		return nil, fmt.Errorf("patient not found")
	}
	d, err := s.doctors.GetDoctor(ctx, p.DoctorID)
	if err != nil {
		return nil, fmt.Errorf("doctor not found")
	}

	source := SourceAI
	analysis, err := s.analyzer.Analyze(ctx, exp.Features())
	if err != nil {
		s.logger.Warn().Err(err).Str("experiment_id", experimentID.String()).
			Msg("AI analysis failed, using fallback text")
		analysis = ai.FallbackAnalysis
		source = SourceFallback
	}

	now := time.Now()
	fileName := reportFileName(p.FullName(), now)
	body := renderText(d.FullName, p.FullName(), exp, analysis, now)

	key := s.prefix + fileName
	if _, err := s.store.Put(ctx, key, "text/plain; charset=utf-8", strings.NewReader(body)); err != nil {
		// Record the failed attempt so it shows up in the patient's history.
		failed := &Report{
			ExperimentID: exp.ID,
			PatientID:    p.ID,
			DoctorID:     d.ID,
			Analysis:     analysis,
			Source:       source,
			FileName:     fileName,
			ContentType:  "text/plain; charset=utf-8",
			Status:       StatusFailed,
		}
		if cerr := s.reports.Create(ctx, failed); cerr != nil {
			s.logger.Error().Err(cerr).Str("experiment_id", experimentID.String()).
				Msg("could not record failed report")
		}
		return nil, fmt.Errorf("store report: %w", err)
	}

	rep := &Report{
		ExperimentID: exp.ID,
		PatientID:    p.ID,
		DoctorID:     d.ID,
		Analysis:     analysis,
		Source:       source,
		FileName:     fileName,
		StorageKey:   key,
		ContentType:  "text/plain; charset=utf-8",
		Status:       StatusCompleted,
	}
	if err := s.reports.Create(ctx, rep); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ReportsGeneratedTotal.WithLabelValues(source).Inc()
	}

	s.attachDownloadURL(ctx, rep)
	return rep, nil
}

func (s *Service) GetReport(ctx context.Context, id uuid.UUID) (*Report, error) {
	rep, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.attachDownloadURL(ctx, rep)
	return rep, nil
}

func (s *Service) ListReportsByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Report, int, error) {
	items, total, err := s.reports.ListByPatient(ctx, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	for _, rep := range items {
		s.attachDownloadURL(ctx, rep)
	}
	return items, total, nil
}

// Open streams the stored report file, for backends without presigned URLs.
func (s *Service) Open(ctx context.Context, rep *Report) (io.ReadCloser, error) {
	rc, _, err := s.store.Get(ctx, rep.StorageKey)
	return rc, err
}

// attachDownloadURL mints a time-limited URL when the backend supports it;
// otherwise it points at the API's streaming download route.
func (s *Service) attachDownloadURL(ctx context.Context, rep *Report) {
	url, err := s.store.PresignGet(ctx, rep.StorageKey, s.urlTTL)
	if err != nil {
		if !errors.Is(err, blobstore.ErrPresignNotSupported) {
			s.logger.Warn().Err(err).Str("report_id", rep.ID.String()).Msg("presign failed")
		}
		rep.DownloadURL = "/api/v1/reports/" + rep.ID.String() + "/download"
		return
	}
	rep.DownloadURL = url
}
