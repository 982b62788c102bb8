package models

import "time"

type OrdersSummary struct {
	Records         int     `json:"records"`
	DistinctOrders  int     `json:"distinct_orders"`
	TotalSales      float64 `json:"total_sales"`
	TotalProfit     float64 `json:"total_profit"`
	ProfitMargin    float64 `json:"profit_margin"`
	AverageSales    float64 `json:"average_sales"`
	TotalQuantity   int64   `json:"total_quantity"`
	AverageDiscount float64 `json:"average_discount"`
	FirstOrderDate  string  `json:"first_order_date"`
	LastOrderDate   string  `json:"last_order_date"`
}

type PeopleSummary struct {
	Records int      `json:"records"`
	Regions []string `json:"regions"`
}

type ReturnsSummary struct {
	Records    int     `json:"records"`
	ReturnRate float64 `json:"return_rate"`
}

// GroupTotal is one row of a group-by breakdown: total Sales and row count per key.
type GroupTotal struct {
	Key   string  `json:"key"`
	Sales float64 `json:"sales"`
	Count int     `json:"count"`
}

type Dimension string

const (
	DimensionCategory Dimension = "category"
	DimensionRegion   Dimension = "region"
	DimensionSegment  Dimension = "segment"
)

var Dimensions = []Dimension{DimensionCategory, DimensionRegion, DimensionSegment}

type Insights struct {
	Orders     OrdersSummary  `json:"orders"`
	People     PeopleSummary  `json:"people"`
	Returns    ReturnsSummary `json:"returns"`
	ByCategory []GroupTotal   `json:"by_category"`
	ByRegion   []GroupTotal   `json:"by_region"`
	BySegment  []GroupTotal   `json:"by_segment"`
	ComputedAt time.Time      `json:"computed_at"`
}

func (i *Insights) Breakdown(dim Dimension) ([]GroupTotal, bool) {
	switch dim {
	case DimensionCategory:
		return i.ByCategory, true
	case DimensionRegion:
		return i.ByRegion, true
	case DimensionSegment:
		return i.BySegment, true
	default:
		return nil, false
	}
}
