package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAnalyze_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("x-api-key"); got != "test-key" {
			t.Errorf("x-api-key = %q, want test-key", got)
		}
		var req messagesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "claude-test" {
			t.Errorf("model = %q, want claude-test", req.Model)
		}
		if req.MaxTokens != 1000 {
			t.Errorf("max_tokens = %d, want 1000", req.MaxTokens)
		}
		if req.System == "" {
			t.Error("expected a system prompt")
		}
		if len(req.Messages) != 1 || !strings.Contains(req.Messages[0].Content, "snr: 24.1") {
			t.Error("prompt should embed the measurement metrics")
		}
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{{"type": "text", "text": "Findings: normal transients."}},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "claude-test", "test-key")
	got, err := c.Analyze(context.Background(), map[string]float64{"snr": 24.1, "amplitude": 0.45})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Findings: normal transients." {
		t.Errorf("analysis = %q", got)
	}
}

func TestAnalyze_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "claude-test", "")
	if _, err := c.Analyze(context.Background(), nil); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}

func TestAnalyze_EmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"content": []map[string]string{}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "claude-test", "")
	if _, err := c.Analyze(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty model response")
	}
}

func TestBuildPrompt_SortedMetrics(t *testing.T) {
	got := buildPrompt(map[string]float64{"snr": 24.1, "amplitude": 0.45, "kurtosis": 2.9})
	ai := strings.Index(got, "- amplitude:")
	ki := strings.Index(got, "- kurtosis:")
	si := strings.Index(got, "- snr:")
	if ai < 0 || ki < 0 || si < 0 {
		t.Fatalf("prompt missing metric lines:\n%s", got)
	}
	if !(ai < ki && ki < si) {
		t.Error("metric lines should be sorted by key for stable prompts")
	}
	if !strings.Contains(got, "ALS") {
		t.Error("prompt should carry the clinical context")
	}
}
