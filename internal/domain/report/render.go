package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/ssegota/daignostics/internal/domain/experiment"
)

// measurementRow pairs a display label and unit with a measurement value.
type measurementRow struct {
	label string
	unit  string
	value float64
}

// renderText lays out the report as plain text: header, measurement table,
// clinical interpretation, and the review disclaimer.
func renderText(doctorName, patientName string, exp *experiment.Experiment, analysis string, now time.Time) string {
	rows := []measurementRow{
		{"Peak Counts", "", exp.PeakCounts},
		{"Amplitude", "mV", exp.Amplitude},
		{"Area Under Curve", "", exp.AUC},
		{"FWHM", "ms", exp.FWHM},
		{"Frequency", "Hz", exp.Frequency},
		{"Signal-to-Noise Ratio", "dB", exp.SNR},
		{"Skewness", "", exp.Skewness},
		{"Kurtosis", "", exp.Kurtosis},
	}

	var b strings.Builder
	b.WriteString("dAIgnostics\n")
	b.WriteString("Neurological Analysis Report\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	fmt.Fprintf(&b, "Report Date: %s\n", now.Format("January 2, 2006 at 3:04 PM"))
	fmt.Fprintf(&b, "Physician:   Dr. %s\n", doctorName)
	fmt.Fprintf(&b, "Patient:     %s\n\n", patientName)

	b.WriteString("Measurement Results\n")
	b.WriteString(strings.Repeat("-", 60) + "\n")
	fmt.Fprintf(&b, "%-28s %12s %6s\n", "Measurement", "Value", "Unit")
	for _, row := range rows {
		fmt.Fprintf(&b, "%-28s %12.2f %6s\n", row.label, row.value, row.unit)
	}
	fmt.Fprintf(&b, "%-28s %12s\n", "Test Date", exp.GenerationDate.Format("2006-01-02 15:04"))

	if exp.Prediction != nil {
		b.WriteString("\nModel Classification\n")
		b.WriteString(strings.Repeat("-", 60) + "\n")
		verdict := "no pathological pattern detected"
		if *exp.Prediction == 1 {
			verdict = "pathological pattern detected"
		}
		fmt.Fprintf(&b, "Consensus: %s", verdict)
		if exp.Confidence != nil {
			fmt.Fprintf(&b, " (confidence %.1f%%)", *exp.Confidence*100)
		}
		if exp.ModelCount != nil {
			fmt.Fprintf(&b, ", %d model(s)", *exp.ModelCount)
		}
		b.WriteString("\n")
	}

	b.WriteString("\nClinical Interpretation\n")
	b.WriteString(strings.Repeat("-", 60) + "\n")
	b.WriteString(analysis + "\n\n")

	b.WriteString("This report was generated using AI-assisted analysis and should be\n")
	b.WriteString("reviewed by a qualified medical professional.\n")

	return b.String()
}

// reportFileName builds the stored file name: report_{patient}_{timestamp}.txt
// with spaces in the patient name replaced by underscores.
func reportFileName(patientName string, now time.Time) string {
	return fmt.Sprintf("report_%s_%s.txt",
		strings.ReplaceAll(patientName, " ", "_"),
		now.Format("20060102_150405"))
}
