// Package ui renders the HTML shell of the insights dashboard.
package ui

//go:generate templ generate

const (
	Title    = "Sales Insights Dashboard"
	Subtitle = "Orders, returns and regional breakdowns"
)

// section is one dashboard panel. Its content is patched in over SSE.
type section struct {
	ID    string
	Title string
	URL   string
}

var sections = []section{
	{ID: "summary-content", Title: "Orders, People and Returns", URL: "/sse/summary"},
	{ID: "category-content", Title: "Sales by Category", URL: "/sse/breakdown/category"},
	{ID: "region-content", Title: "Sales by Region", URL: "/sse/breakdown/region"},
	{ID: "segment-content", Title: "Sales by Segment", URL: "/sse/breakdown/segment"},
}
