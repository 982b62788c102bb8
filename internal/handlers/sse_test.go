package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"salesinsights/internal/models"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestNewSSEHandlers(t *testing.T) {
	dashboard := createTestDashboard()
	logger := quietLogger()

	handlers := NewSSEHandlers(dashboard, logger)

	if handlers == nil {
		t.Fatal("NewSSEHandlers() returned nil")
	}
	if handlers.dashboard != dashboard {
		t.Error("NewSSEHandlers() should set dashboard field")
	}
	if handlers.logger != logger {
		t.Error("NewSSEHandlers() should set logger field")
	}
}

func TestSSEHandlers_renderSummary(t *testing.T) {
	dashboard := createTestDashboard()
	handlers := NewSSEHandlers(dashboard, quietLogger())

	html, err := handlers.renderSummary(dashboard.Insights())
	if err != nil {
		t.Fatalf("renderSummary() failed: %v", err)
	}

	expectedContent := []string{
		`<div id="summary-content">`,
		`<table class="modern-table">`,
		"$300.00",
		"$70.00",
		"23.33%",
		"$150.00",
		"15.00%",
		"2016-01-05 to 2016-03-01",
		"West, East",
		"50.00%",
	}

	for _, content := range expectedContent {
		if !strings.Contains(html, content) {
			t.Errorf("expected HTML to contain %q", content)
		}
	}
}

func TestSSEHandlers_renderBreakdown(t *testing.T) {
	handlers := NewSSEHandlers(createTestDashboard(), quietLogger())

	groups := []models.GroupTotal{
		{Key: "Furniture", Sales: 741999.8, Count: 2121},
		{Key: "Office <Supplies>", Sales: 719047.03, Count: 6026},
	}

	html, err := handlers.renderBreakdown(models.DimensionCategory, groups)
	if err != nil {
		t.Fatalf("renderBreakdown() failed: %v", err)
	}

	expectedContent := []string{
		`<div id="category-content">`,
		"<th>Category</th>",
		"<th>Sales</th>",
		"<th>Orders</th>",
		"Furniture",
		"$741,999.80",
		"2121",
		"Office &lt;Supplies&gt;",
	}

	for _, content := range expectedContent {
		if !strings.Contains(html, content) {
			t.Errorf("expected HTML to contain %q", content)
		}
	}

	if rows := strings.Count(html, "<tr>") - 1; rows != len(groups) {
		t.Errorf("expected %d body rows, got %d", len(groups), rows)
	}
}

func TestSSEHandlers_HandleSummary(t *testing.T) {
	handlers := NewSSEHandlers(createTestDashboard(), quietLogger())

	req := httptest.NewRequest(http.MethodGet, "/sse/summary", nil)
	w := httptest.NewRecorder()

	handlers.HandleSummary(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	// Check SSE headers (DataStar sets these)
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
		t.Errorf("expected content-type to contain 'text/event-stream', got %q", ct)
	}

	body := w.Body.String()
	if !strings.Contains(body, "summary-content") {
		t.Error("response should contain the summary fragment")
	}
	if !strings.Contains(body, "<table") {
		t.Error("response should contain HTML table")
	}
}

func TestSSEHandlers_HandleBreakdown(t *testing.T) {
	handlers := NewSSEHandlers(createTestDashboard(), quietLogger())

	tests := []struct {
		dimension string
		signal    string
		fragment  string
		contains  string
	}{
		{"category", "categoryData", "category-content", "Technology"},
		{"region", "regionData", "region-content", "West"},
		{"segment", "segmentData", "segment-content", "Consumer"},
	}

	for _, tt := range tests {
		t.Run(tt.dimension, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/sse/breakdown/"+tt.dimension, nil)
			req.SetPathValue("dimension", tt.dimension)
			w := httptest.NewRecorder()

			handlers.HandleBreakdown(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", w.Code)
			}

			body := w.Body.String()
			for _, want := range []string{tt.signal, tt.fragment, tt.contains} {
				if !strings.Contains(body, want) {
					t.Errorf("response should contain %q", want)
				}
			}
		})
	}
}

func TestSSEHandlers_HandleBreakdown_UnknownDimension(t *testing.T) {
	handlers := NewSSEHandlers(createTestDashboard(), quietLogger())

	req := httptest.NewRequest(http.MethodGet, "/sse/breakdown/country", nil)
	req.SetPathValue("dimension", "country")
	w := httptest.NewRecorder()

	handlers.HandleBreakdown(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); strings.Contains(ct, "text/event-stream") {
		t.Error("unknown dimension should not open an event stream")
	}
}

func TestSSEHandlers_HandleRefreshAll(t *testing.T) {
	handlers := NewSSEHandlers(createTestDashboard(), quietLogger())

	req := httptest.NewRequest(http.MethodGet, "/sse/refresh-all", nil)
	w := httptest.NewRecorder()

	handlers.HandleRefreshAll(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	body := w.Body.String()

	expected := []string{
		"summary-content",
		"category-content",
		"region-content",
		"segment-content",
		"categoryData",
		"regionData",
		"segmentData",
	}

	for _, want := range expected {
		if !strings.Contains(body, want) {
			t.Errorf("response should contain %q", want)
		}
	}
}

// Test SSE headers consistency
func TestSSEHandlers_HeaderConsistency(t *testing.T) {
	handlers := NewSSEHandlers(createTestDashboard(), quietLogger())

	sseEndpoints := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"summary", handlers.HandleSummary},
		{"breakdown", handlers.HandleBreakdown},
		{"refresh-all", handlers.HandleRefreshAll},
	}

	for _, endpoint := range sseEndpoints {
		t.Run(endpoint.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.SetPathValue("dimension", "region")
			w := httptest.NewRecorder()

			endpoint.handler(w, req)

			if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
				t.Errorf("expected content-type to contain 'text/event-stream', got %q", ct)
			}

			if cc := w.Header().Get("Cache-Control"); cc != "no-cache" {
				t.Errorf("expected cache-control 'no-cache', got %q", cc)
			}

			body := w.Body.String()
			if !strings.Contains(body, "event:") || !strings.Contains(body, "data:") {
				t.Error("response should contain SSE event format")
			}
		})
	}
}

func TestSSEHandlers_LogsPatchFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler func(*SSEHandlers) http.HandlerFunc
		message string
	}{
		{"summary", func(h *SSEHandlers) http.HandlerFunc { return h.HandleSummary }, "patch summary"},
		{"breakdown", func(h *SSEHandlers) http.HandlerFunc { return h.HandleBreakdown }, "patch breakdown"},
		{"refresh-all", func(h *SSEHandlers) http.HandlerFunc { return h.HandleRefreshAll }, "patch summary"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs strings.Builder
			logger := slog.New(slog.NewTextHandler(&logs, nil))
			handlers := NewSSEHandlers(createTestDashboard(), logger)

			// A gone client cancels the request context before anything is sent.
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			req := httptest.NewRequest(http.MethodGet, "/sse/"+tt.name, nil).WithContext(ctx)
			req.SetPathValue("dimension", "region")
			w := httptest.NewRecorder()

			tt.handler(handlers)(w, req)

			if !strings.Contains(logs.String(), tt.message) {
				t.Errorf("expected %q to be logged, got %s", tt.message, logs.String())
			}
			if strings.Contains(w.Body.String(), "datastar-patch-elements") {
				t.Error("no event should be written after the client went away")
			}
		})
	}
}
