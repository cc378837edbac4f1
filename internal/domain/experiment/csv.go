package experiment

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
)

// ParsedUpload is the result of parsing one measurement CSV: the eight
// recognized numeric fields coerced to floats, and the generation date
// passed through exactly as it appeared in the file.
type ParsedUpload struct {
	Measurements   Measurements
	GenerationDate string
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Header aliases accepted case-insensitively. Exports from the acquisition
// software use camelCase; hand-edited files tend to use snake_case.
var headerFields = map[string]string{
	"peakcounts":      "peakCounts",
	"peak_counts":     "peakCounts",
	"amplitude":       "amplitude",
	"auc":             "auc",
	"fwhm":            "fwhm",
	"frequency":       "frequency",
	"snr":             "snr",
	"skewness":        "skewness",
	"kurtosis":        "kurtosis",
	"generationdate":  "generationDate",
	"generation_date": "generationDate",
}

// ParseMeasurementsCSV parses a two-line CSV (header row, value row) into a
// measurement set. A header/value count mismatch or an unparseable numeric
// value yields a nil result and a descriptive error.
func ParseMeasurementsCSV(data []byte) (*ParsedUpload, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("malformed CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("CSV must contain a header row and a value row, got %d row(s)", len(records))
	}

	header, values := records[0], records[1]
	if len(header) != len(values) {
		return nil, fmt.Errorf("header/value count mismatch: %d header field(s), %d value(s)", len(header), len(values))
	}

	var out ParsedUpload
	seen := make(map[string]bool, len(header))
	for i, raw := range header {
		key := strings.ToLower(strings.TrimSpace(raw))
		field, ok := headerFields[key]
		if !ok {
			return nil, fmt.Errorf("unrecognized column %q", strings.TrimSpace(raw))
		}
		if seen[field] {
			return nil, fmt.Errorf("duplicate column %q", strings.TrimSpace(raw))
		}
		seen[field] = true

		val := strings.TrimSpace(values[i])
		if field == "generationDate" {
			out.GenerationDate = val
			continue
		}
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil, fmt.Errorf("column %q: cannot parse %q as a number", strings.TrimSpace(raw), val)
		}
		switch field {
		case "peakCounts":
			out.Measurements.PeakCounts = f
		case "amplitude":
			out.Measurements.Amplitude = f
		case "auc":
			out.Measurements.AUC = f
		case "fwhm":
			out.Measurements.FWHM = f
		case "frequency":
			out.Measurements.Frequency = f
		case "snr":
			out.Measurements.SNR = f
		case "skewness":
			out.Measurements.Skewness = f
		case "kurtosis":
			out.Measurements.Kurtosis = f
		}
	}

	for _, field := range []string{"peakCounts", "amplitude", "auc", "fwhm", "frequency", "snr", "skewness", "kurtosis"} {
		if !seen[field] {
			return nil, fmt.Errorf("missing required column %q", field)
		}
	}

	return &out, nil
}
