package experiment

import (
	"context"

	"github.com/google/uuid"
)

// ExperimentRepository is append-only: experiments are immutable once
// written, so there is no update or delete.
type ExperimentRepository interface {
	Create(ctx context.Context, e *Experiment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Experiment, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Experiment, int, error)
}
