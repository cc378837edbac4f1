// Package ai generates clinical analysis text for diagnostic reports using
// an Anthropic-messages-compatible model endpoint.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"
)

const systemPrompt = "You are a clinical laboratory specialist report system. " +
	"Write concise, formal medical reports of Ca²⁺ imaging findings in astrocytes."

// FallbackAnalysis is used in reports when the model endpoint cannot be
// reached, so report generation never fails outright.
const FallbackAnalysis = "AI analysis temporarily unavailable. Please review measurements manually."

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	System      string    `json:"system"`
	Messages    []message `json:"messages"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Client calls the model endpoint for report analysis.
type Client struct {
	endpoint string
	model    string
	apiKey   string
	http     *http.Client
}

func NewClient(endpoint, model, apiKey string) *Client {
	return &Client{
		endpoint: endpoint,
		model:    model,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 60 * time.Second},
	}
}

// Analyze asks the model for a clinical interpretation of one experiment's
// measurements. The returned text goes verbatim into the report body.
func (c *Client) Analyze(ctx context.Context, features map[string]float64) (string, error) {
	reqBody := messagesRequest{
		Model:       c.model,
		MaxTokens:   1000,
		Temperature: 0.7,
		System:      systemPrompt,
		Messages: []message{
			{Role: "user", Content: buildPrompt(features)},
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("model request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("model endpoint returned status %d", resp.StatusCode)
	}

	var out messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode model response: %w", err)
	}
	if len(out.Content) == 0 || out.Content[0].Text == "" {
		return "", fmt.Errorf("model returned no analysis")
	}
	return out.Content[0].Text, nil
}

// buildPrompt embeds the measurements in the ALS Ca²⁺ transient context the
// model needs to interpret them.
func buildPrompt(features map[string]float64) string {
	keys := make([]string, 0, len(features))
	for k := range features {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var metrics strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&metrics, "- %s: %g\n", k, features[k])
	}

	return "Context: Astrocytes treated with sporadic ALS patient IgG exhibit three Ca²⁺ transient patterns:\n\n" +
		"• Single: solitary, rapid transient (time_to_peak ≈ 20 s), driven by ER IP₃R release with minimal extracellular Ca²⁺ involvement.\n" +
		"• Bursting: high-frequency repetitive transients (dominant_freq ≈ 0.11 Hz; intervals ≈ 9 s), reflecting cycles of ER release and partial store-operated Ca²⁺ entry.\n" +
		"• Repetitive: isolated transients (>20 s apart), consistent with episodic IP₃ production and delayed ER refill.\n\n" +
		"Classification is based on event count, inter-event interval, and dominant frequency within the first 50 s post-onset.\n\n" +
		"Please generate a medical-style report (findings, interpretation, and brief diagnostic comment). " +
		"Be concise and give final judgement if the patient has possibility of ALS.\n\n" +
		"Metrics:\n" + metrics.String()
}
