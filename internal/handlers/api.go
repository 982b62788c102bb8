package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"salesinsights/internal/errors"
	"salesinsights/internal/models"
	"salesinsights/internal/observability"
	"salesinsights/internal/services"
)

const cacheControl = "public, max-age=300"

type APIHandlers struct {
	dashboard *services.Dashboard
	logger    *slog.Logger
}

func NewAPIHandlers(dashboard *services.Dashboard, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		dashboard: dashboard,
		logger:    logger,
	}
}

type summaryResponse struct {
	Orders     models.OrdersSummary  `json:"orders"`
	People     models.PeopleSummary  `json:"people"`
	Returns    models.ReturnsSummary `json:"returns"`
	ComputedAt time.Time             `json:"computed_at"`
}

func (h *APIHandlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	in := h.dashboard.Insights()

	data := summaryResponse{
		Orders:     in.Orders,
		People:     in.People,
		Returns:    in.Returns,
		ComputedAt: in.ComputedAt,
	}

	errors.WriteSuccessWithHeaders(w, data, map[string]string{
		"Cache-Control": cacheControl,
	})
}

func (h *APIHandlers) HandleBreakdown(w http.ResponseWriter, r *http.Request) {
	dim := models.Dimension(r.PathValue("dimension"))

	data, ok := h.dashboard.Breakdown(dim)
	if !ok {
		requestID := observability.GetRequestID(r.Context())
		errors.WriteError(w, h.logger, errors.NotFound("unknown dimension "+string(dim)), requestID)
		return
	}

	errors.WriteSuccessWithHeaders(w, data, map[string]string{
		"Cache-Control": cacheControl,
	})
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.dashboard.Stats())
}
