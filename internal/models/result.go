// internal/models/result.go
package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Decision labels returned by the prediction service.
const (
	StatusApproved    = "Approved"
	StatusNotApproved = "Not Approved"
)

// PredictionResult is the parsed body of a successful /predict response.
type PredictionResult struct {
	Prediction            int    `json:"prediction"`
	Status                string `json:"status"`
	ConfidenceProbability string `json:"confidence_probability"`
}

// Confidence strips the trailing "%" from ConfidenceProbability and returns
// the chart-ready numeric value. The service formats it as e.g. "82.50%".
func (r *PredictionResult) Confidence() (float64, error) {
	trimmed := strings.TrimSpace(r.ConfidenceProbability)
	if !strings.HasSuffix(trimmed, "%") {
		return 0, fmt.Errorf("confidence_probability %q missing %% suffix", r.ConfidenceProbability)
	}
	raw := strings.TrimSuffix(trimmed, "%")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("confidence_probability %q is not numeric: %w", r.ConfidenceProbability, err)
	}
	if v < 0 || v > 100 {
		return 0, fmt.Errorf("confidence_probability %q outside [0,100]", r.ConfidenceProbability)
	}
	return v, nil
}

// Approved reports whether the decision label is the approval label.
func (r *PredictionResult) Approved() bool {
	return r.Status == StatusApproved
}
