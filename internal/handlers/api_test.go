package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"salesinsights/internal/models"
	"salesinsights/internal/services"
)

func createTestDashboard() *services.Dashboard {
	d := services.NewDashboard(nil, slog.Default(), "")
	d.SetInsights(&models.Insights{
		Orders: models.OrdersSummary{
			Records:         2,
			DistinctOrders:  2,
			TotalSales:      300,
			TotalProfit:     70,
			ProfitMargin:    70.0 / 300.0 * 100,
			AverageSales:    150,
			TotalQuantity:   5,
			AverageDiscount: 15,
			FirstOrderDate:  "2016-01-05",
			LastOrderDate:   "2016-03-01",
		},
		People: models.PeopleSummary{
			Records: 2,
			Regions: []string{"West", "East"},
		},
		Returns: models.ReturnsSummary{
			Records:    1,
			ReturnRate: 50,
		},
		ByCategory: []models.GroupTotal{
			{Key: "Furniture", Sales: 100, Count: 1},
			{Key: "Technology", Sales: 200, Count: 1},
		},
		ByRegion: []models.GroupTotal{
			{Key: "East", Sales: 100, Count: 1},
			{Key: "West", Sales: 200, Count: 1},
		},
		BySegment: []models.GroupTotal{
			{Key: "Consumer", Sales: 300, Count: 2},
		},
		ComputedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	})
	return d
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var response map[string]any
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
	return response
}

func TestNewAPIHandlers(t *testing.T) {
	dashboard := createTestDashboard()
	handlers := NewAPIHandlers(dashboard, slog.Default())

	if handlers == nil {
		t.Fatal("NewAPIHandlers() returned nil")
	}
	if handlers.dashboard != dashboard {
		t.Error("NewAPIHandlers() should set dashboard field")
	}
}

func TestAPIHandlers_HandleSummary(t *testing.T) {
	handlers := NewAPIHandlers(createTestDashboard(), slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/api/summary", nil)
	w := httptest.NewRecorder()

	handlers.HandleSummary(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected content-type 'application/json', got %q", ct)
	}
	if cc := w.Header().Get("Cache-Control"); cc != "public, max-age=300" {
		t.Errorf("expected cache-control 'public, max-age=300', got %q", cc)
	}

	response := decodeResponse(t, w)
	if success, ok := response["success"].(bool); !ok || !success {
		t.Error("expected success=true in response")
	}

	data, ok := response["data"].(map[string]any)
	if !ok {
		t.Fatal("expected data object in response")
	}
	orders, ok := data["orders"].(map[string]any)
	if !ok {
		t.Fatal("expected orders object in data")
	}
	if sales, _ := orders["total_sales"].(float64); sales != 300 {
		t.Errorf("total_sales = %v, want 300", orders["total_sales"])
	}
	returns, _ := data["returns"].(map[string]any)
	if rate, _ := returns["return_rate"].(float64); rate != 50 {
		t.Errorf("return_rate = %v, want 50", returns["return_rate"])
	}
}

func TestAPIHandlers_HandleBreakdown(t *testing.T) {
	handlers := NewAPIHandlers(createTestDashboard(), slog.Default())

	tests := []struct {
		dimension  string
		wantStatus int
		wantKeys   []string
	}{
		{"category", http.StatusOK, []string{"Furniture", "Technology"}},
		{"region", http.StatusOK, []string{"East", "West"}},
		{"segment", http.StatusOK, []string{"Consumer"}},
		{"country", http.StatusNotFound, nil},
	}

	for _, tt := range tests {
		t.Run(tt.dimension, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/breakdown/"+tt.dimension, nil)
			req.SetPathValue("dimension", tt.dimension)
			w := httptest.NewRecorder()

			handlers.HandleBreakdown(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, w.Code)
			}

			response := decodeResponse(t, w)
			if tt.wantStatus != http.StatusOK {
				if success, _ := response["success"].(bool); success {
					t.Error("expected success=false for unknown dimension")
				}
				errObj, _ := response["error"].(map[string]any)
				if code, _ := errObj["code"].(string); code != "NOT_FOUND" {
					t.Errorf("error code = %q, want NOT_FOUND", code)
				}
				return
			}

			if cc := w.Header().Get("Cache-Control"); cc != "public, max-age=300" {
				t.Errorf("expected cache-control 'public, max-age=300', got %q", cc)
			}

			data, ok := response["data"].([]any)
			if !ok {
				t.Fatal("expected data array in response")
			}
			if len(data) != len(tt.wantKeys) {
				t.Fatalf("got %d groups, want %d", len(data), len(tt.wantKeys))
			}
			for i, want := range tt.wantKeys {
				row, _ := data[i].(map[string]any)
				if key, _ := row["key"].(string); key != want {
					t.Errorf("group %d key = %q, want %q", i, key, want)
				}
			}
		})
	}
}

func TestAPIHandlers_HandleBreakdown_Empty(t *testing.T) {
	handlers := NewAPIHandlers(services.NewDashboard(nil, nil, ""), slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/api/breakdown/region", nil)
	req.SetPathValue("dimension", "region")
	w := httptest.NewRecorder()

	handlers.HandleBreakdown(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if body := w.Body.String(); !strings.Contains(body, `"data":[]`) {
		t.Errorf("expected empty data array, got %s", body)
	}
}

func TestAPIHandlers_HandleHealth(t *testing.T) {
	handlers := NewAPIHandlers(createTestDashboard(), slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	handlers.HandleHealth(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	// Health endpoint should NOT have cache-control header
	if cc := w.Header().Get("Cache-Control"); cc != "" {
		t.Errorf("health endpoint should not set cache-control, got %q", cc)
	}

	response := decodeResponse(t, w)
	data, ok := response["data"].(map[string]any)
	if !ok {
		t.Fatal("expected health data in response")
	}
	if status, _ := data["status"].(string); status != "healthy" {
		t.Errorf("expected status 'healthy', got %q", status)
	}
	timestamp, _ := data["timestamp"].(string)
	if _, err := time.Parse(time.RFC3339, timestamp); err != nil {
		t.Errorf("invalid timestamp format: %v", err)
	}
}

func TestAPIHandlers_HandleStats(t *testing.T) {
	handlers := NewAPIHandlers(createTestDashboard(), slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	w := httptest.NewRecorder()

	handlers.HandleStats(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	response := decodeResponse(t, w)
	data, ok := response["data"].(map[string]any)
	if !ok {
		t.Fatal("expected stats data in response")
	}
	if orders, _ := data["orders"].(float64); orders != 2 {
		t.Errorf("orders = %v, want 2", data["orders"])
	}
	if categories, _ := data["categories"].(float64); categories != 2 {
		t.Errorf("categories = %v, want 2", data["categories"])
	}
	if loads, _ := data["loads"].(float64); loads != 1 {
		t.Errorf("loads = %v, want 1", data["loads"])
	}
}
