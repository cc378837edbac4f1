package report

import (
	"time"

	"github.com/google/uuid"
)

// Report statuses.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Analysis sources: whether the interpretation came from the model or the
// static fallback text.
const (
	SourceAI       = "ai"
	SourceFallback = "fallback"
)

// Report maps to the report table. DownloadURL is minted per request and
// never persisted.
type Report struct {
	ID           uuid.UUID `db:"id" json:"id"`
	ExperimentID uuid.UUID `db:"experiment_id" json:"experiment_id"`
	PatientID    uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID     uuid.UUID `db:"doctor_id" json:"doctor_id"`
	Analysis     string    `db:"analysis" json:"analysis"`
	Source       string    `db:"source" json:"source"`
	FileName     string    `db:"file_name" json:"file_name"`
	StorageKey   string    `db:"storage_key" json:"-"`
	ContentType  string    `db:"content_type" json:"content_type"`
	Status       string    `db:"status" json:"status"`
	DownloadURL  string    `db:"-" json:"download_url,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
