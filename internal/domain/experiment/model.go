package experiment

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Measurements holds the eight Ca²⁺ transient signal statistics extracted
// from one imaging run.
type Measurements struct {
	PeakCounts float64 `db:"peak_counts" json:"peakCounts"`
	Amplitude  float64 `db:"amplitude" json:"amplitude"`
	AUC        float64 `db:"auc" json:"auc"`
	FWHM       float64 `db:"fwhm" json:"fwhm"`
	Frequency  float64 `db:"frequency" json:"frequency"`
	SNR        float64 `db:"snr" json:"snr"`
	Skewness   float64 `db:"skewness" json:"skewness"`
	Kurtosis   float64 `db:"kurtosis" json:"kurtosis"`
}

// Features returns the measurements as the feature map the prediction and
// report services consume.
func (m Measurements) Features() map[string]float64 {
	return map[string]float64{
		"peakCounts": m.PeakCounts,
		"amplitude":  m.Amplitude,
		"auc":        m.AUC,
		"fwhm":       m.FWHM,
		"frequency":  m.Frequency,
		"snr":        m.SNR,
		"skewness":   m.Skewness,
		"kurtosis":   m.Kurtosis,
	}
}

// Experiment maps to the experiment table. Records are immutable once
// created; prediction fields are nil when no model call was made.
type Experiment struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	Measurements
	GenerationDate time.Time       `db:"generation_date" json:"generation_date"`
	Prediction     *int            `db:"prediction" json:"prediction,omitempty"`
	Confidence     *float64        `db:"confidence" json:"confidence,omitempty"`
	ModelCount     *int            `db:"model_count" json:"model_count,omitempty"`
	ModelResults   json.RawMessage `db:"model_results" json:"model_results,omitempty"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}
