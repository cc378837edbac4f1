package experiment

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ssegota/daignostics/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type experimentRepoPG struct{ pool *pgxpool.Pool }

func NewExperimentRepoPG(pool *pgxpool.Pool) ExperimentRepository {
	return &experimentRepoPG{pool: pool}
}

func (r *experimentRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const experimentCols = `id, patient_id, peak_counts, amplitude, auc, fwhm, frequency, snr,
	skewness, kurtosis, generation_date, prediction, confidence, model_count, model_results, created_at`

func (r *experimentRepoPG) scanExperiment(row pgx.Row) (*Experiment, error) {
	var e Experiment
	err := row.Scan(&e.ID, &e.PatientID, &e.PeakCounts, &e.Amplitude, &e.AUC,
		&e.FWHM, &e.Frequency, &e.SNR, &e.Skewness, &e.Kurtosis,
		&e.GenerationDate, &e.Prediction, &e.Confidence, &e.ModelCount,
		&e.ModelResults, &e.CreatedAt)
	return &e, err
}

func (r *experimentRepoPG) Create(ctx context.Context, e *Experiment) error {
	e.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO experiment (id, patient_id, peak_counts, amplitude, auc, fwhm, frequency, snr,
			skewness, kurtosis, generation_date, prediction, confidence, model_count, model_results)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		e.ID, e.PatientID, e.PeakCounts, e.Amplitude, e.AUC, e.FWHM, e.Frequency, e.SNR,
		e.Skewness, e.Kurtosis, e.GenerationDate, e.Prediction, e.Confidence, e.ModelCount, e.ModelResults)
	return err
}

func (r *experimentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Experiment, error) {
	return r.scanExperiment(r.conn(ctx).QueryRow(ctx, `SELECT `+experimentCols+` FROM experiment WHERE id = $1`, id))
}

func (r *experimentRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Experiment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM experiment WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+experimentCols+` FROM experiment WHERE patient_id = $1 ORDER BY generation_date DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Experiment
	for rows.Next() {
		e, err := r.scanExperiment(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, e)
	}
	return items, total, nil
}
