package handlers

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/starfederation/datastar-go/datastar"

	"salesinsights/internal/models"
	"salesinsights/internal/report"
	"salesinsights/internal/services"
)

var funcs = template.FuncMap{
	"currency": report.Currency,
	"count":    report.Count,
	"percent":  report.Percent,
	"join":     strings.Join,
}

var summaryTemplate = template.Must(template.New("summary").Funcs(funcs).Parse(`
<div id="summary-content">
<table class="modern-table">
<tbody>
<tr><th>Total Records</th><td>{{count .Orders.Records}}</td></tr>
<tr><th>Total Sales</th><td><strong>{{currency .Orders.TotalSales}}</strong></td></tr>
<tr><th>Total Profit</th><td>{{currency .Orders.TotalProfit}}</td></tr>
<tr><th>Profit Margin</th><td>{{percent .Orders.ProfitMargin}}</td></tr>
<tr><th>Average Order Value</th><td>{{currency .Orders.AverageSales}}</td></tr>
<tr><th>Total Quantity</th><td>{{.Orders.TotalQuantity}}</td></tr>
<tr><th>Average Discount</th><td>{{percent .Orders.AverageDiscount}}</td></tr>
<tr><th>Date Range</th><td>{{.Orders.FirstOrderDate}} to {{.Orders.LastOrderDate}}</td></tr>
<tr><th>Regional Managers</th><td>{{.People.Records}}</td></tr>
<tr><th>Regions</th><td>{{join .People.Regions ", "}}</td></tr>
<tr><th>Total Returns</th><td>{{count .Returns.Records}}</td></tr>
<tr><th>Return Rate</th><td>{{percent .Returns.ReturnRate}}</td></tr>
</tbody>
</table>
</div>`))

var breakdownTemplate = template.Must(template.New("breakdown").Funcs(funcs).Parse(`
<div id="{{.ID}}">
<table class="modern-table">
<thead><tr><th>{{.Label}}</th><th>Sales</th><th>Orders</th></tr></thead>
<tbody>
{{range .Groups}}<tr>
<td><span class="category-badge">{{.Key}}</span></td>
<td><strong>{{currency .Sales}}</strong></td>
<td>{{.Count}}</td>
</tr>{{end}}
</tbody>
</table>
</div>`))

type SSEHandlers struct {
	dashboard *services.Dashboard
	logger    *slog.Logger
}

func NewSSEHandlers(dashboard *services.Dashboard, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		dashboard: dashboard,
		logger:    logger,
	}
}

type breakdownData struct {
	ID     string
	Label  string
	Groups []models.GroupTotal
}

func (h *SSEHandlers) renderSummary(in models.Insights) (string, error) {
	var buf strings.Builder
	err := summaryTemplate.Execute(&buf, in)
	return buf.String(), err
}

func (h *SSEHandlers) renderBreakdown(dim models.Dimension, groups []models.GroupTotal) (string, error) {
	var buf strings.Builder
	label := string(dim)
	if label != "" {
		label = strings.ToUpper(label[:1]) + label[1:]
	}
	err := breakdownTemplate.Execute(&buf, breakdownData{
		ID:     string(dim) + "-content",
		Label:  label,
		Groups: groups,
	})
	return buf.String(), err
}

func (h *SSEHandlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	html, err := h.renderSummary(h.dashboard.Insights())
	if err != nil {
		h.logger.Error("render summary", "error", err)
		return
	}

	if err := sse.PatchElements(html); err != nil {
		h.logger.Warn("patch summary", "error", err)
	}

	flush(w)
}

func (h *SSEHandlers) HandleBreakdown(w http.ResponseWriter, r *http.Request) {
	dim := models.Dimension(r.PathValue("dimension"))
	groups, ok := h.dashboard.Breakdown(dim)
	if !ok {
		http.NotFound(w, r)
		return
	}

	sse := datastar.NewSSE(w, r)

	html, err := h.renderBreakdown(dim, groups)
	if err != nil {
		h.logger.Error("render breakdown", "dimension", dim, "error", err)
		return
	}
	if err := sse.PatchElements(html); err != nil {
		h.logger.Warn("patch breakdown", "dimension", dim, "error", err)
		return
	}

	jsonData, err := json.Marshal(map[string]any{
		string(dim) + "Data": groups,
	})
	if err != nil {
		h.logger.Error("marshal breakdown data", "dimension", dim, "error", err)
		return
	}
	if err := sse.PatchSignals(jsonData); err != nil {
		h.logger.Warn("patch breakdown signals", "dimension", dim, "error", err)
		return
	}

	flush(w)
}

func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	in := h.dashboard.Insights()
	html, err := h.renderSummary(in)
	if err != nil {
		h.logger.Error("render summary", "error", err)
		return
	}
	if err := sse.PatchElements(html); err != nil {
		h.logger.Warn("patch summary", "error", err)
		return
	}

	signals := make(map[string]any, len(models.Dimensions))
	for _, dim := range models.Dimensions {
		groups, _ := in.Breakdown(dim)
		html, err := h.renderBreakdown(dim, groups)
		if err != nil {
			h.logger.Error("render breakdown", "dimension", dim, "error", err)
			return
		}
		if err := sse.PatchElements(html); err != nil {
			h.logger.Warn("patch breakdown", "dimension", dim, "error", err)
			return
		}
		signals[string(dim)+"Data"] = groups
	}

	// Send all signals in one call
	allSignals, err := json.Marshal(signals)
	if err != nil {
		h.logger.Error("marshal all signals data", "error", err)
		return
	}
	if err := sse.PatchSignals(allSignals); err != nil {
		h.logger.Warn("patch all signals", "error", err)
		return
	}

	flush(w)
}

func flush(w http.ResponseWriter) {
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
