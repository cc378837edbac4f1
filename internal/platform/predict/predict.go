// Package predict calls the external model-inference API that classifies
// Ca²⁺ transient measurements.
package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ModelResult is one model's vote within the ensemble.
type ModelResult struct {
	Model      string  `json:"model"`
	Prediction int     `json:"prediction"`
	Confidence float64 `json:"confidence"`
}

// Result is the consensus classification for one set of measurements.
// Prediction is 1 when the ensemble flags the sample as pathological.
type Result struct {
	Prediction int           `json:"prediction"`
	Confidence float64       `json:"confidence"`
	Results    []ModelResult `json:"results"`
	ModelCount int           `json:"model_count"`
}

type predictRequest struct {
	Features map[string]float64 `json:"features"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Client talks to the prediction service over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Predict submits a feature map and returns the ensemble's consensus.
func (c *Client) Predict(ctx context.Context, features map[string]float64) (*Result, error) {
	body, err := json.Marshal(predictRequest{Features: features})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("prediction request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		data, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("prediction service: %s", apiErr.Error)
		}
		return nil, fmt.Errorf("prediction service returned status %d", resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode prediction response: %w", err)
	}
	return &result, nil
}
