package services

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/samber/lo"

	apperrors "salesinsights/internal/errors"
	"salesinsights/internal/loader"
	"salesinsights/internal/models"
)

var breakdownColumns = map[models.Dimension]string{
	models.DimensionCategory: loader.ColCategory,
	models.DimensionRegion:   loader.ColRegion,
	models.DimensionSegment:  loader.ColSegment,
}

// Summarize computes every statistic and breakdown reported for a dataset.
func Summarize(ds *loader.Dataset) (*models.Insights, error) {
	orders, err := summarizeOrders(ds.Orders)
	if err != nil {
		return nil, err
	}

	returns, err := summarizeReturns(ds.Returns, orders.DistinctOrders)
	if err != nil {
		return nil, err
	}

	insights := &models.Insights{
		Orders:     orders,
		People:     summarizePeople(ds.People),
		Returns:    returns,
		ComputedAt: time.Now(),
	}

	for _, dim := range models.Dimensions {
		groups, err := GroupSales(ds.Orders, breakdownColumns[dim])
		if err != nil {
			return nil, err
		}
		switch dim {
		case models.DimensionCategory:
			insights.ByCategory = groups
		case models.DimensionRegion:
			insights.ByRegion = groups
		case models.DimensionSegment:
			insights.BySegment = groups
		}
	}

	return insights, nil
}

func summarizeOrders(df dataframe.DataFrame) (models.OrdersSummary, error) {
	totalSales, salesCount := sum(df.Col(loader.ColSales))
	totalProfit, _ := sum(df.Col(loader.ColProfit))
	totalQuantity, _ := sum(df.Col(loader.ColQuantity))
	totalDiscount, discountCount := sum(df.Col(loader.ColDiscount))

	if totalSales == 0 {
		return models.OrdersSummary{}, apperrors.ArithmeticFault("profit margin undefined: total sales is zero")
	}

	first, last := DateRange(df.Col(loader.ColOrderDate))

	return models.OrdersSummary{
		Records:         df.Nrow(),
		DistinctOrders:  len(distinct(df.Col(loader.ColOrderID))),
		TotalSales:      totalSales,
		TotalProfit:     totalProfit,
		ProfitMargin:    totalProfit / totalSales * 100,
		AverageSales:    mean(totalSales, salesCount),
		TotalQuantity:   int64(totalQuantity),
		AverageDiscount: mean(totalDiscount, discountCount) * 100,
		FirstOrderDate:  first,
		LastOrderDate:   last,
	}, nil
}

func summarizePeople(df dataframe.DataFrame) models.PeopleSummary {
	return models.PeopleSummary{
		Records: df.Nrow(),
		Regions: distinct(df.Col(loader.ColRegion)),
	}
}

func summarizeReturns(df dataframe.DataFrame, distinctOrders int) (models.ReturnsSummary, error) {
	if distinctOrders == 0 {
		return models.ReturnsSummary{}, apperrors.ArithmeticFault("return rate undefined: no distinct order ids")
	}
	return models.ReturnsSummary{
		Records:    df.Nrow(),
		ReturnRate: float64(df.Nrow()) / float64(distinctOrders) * 100,
	}, nil
}

// GroupSales partitions orders by column and totals Sales per partition.
// Rows with a missing key are dropped. Groups are sorted by key.
func GroupSales(df dataframe.DataFrame, column string) ([]models.GroupTotal, error) {
	df = df.Select([]string{column, loader.ColSales})
	if df.Err != nil {
		return nil, apperrors.Parse(df.Err, column)
	}

	if keep := present(df.Col(column)); len(keep) != df.Nrow() {
		if len(keep) == 0 {
			return []models.GroupTotal{}, nil
		}
		df = df.Subset(keep)
	}

	groups := df.GroupBy(column)
	if groups.Err != nil {
		return nil, apperrors.Parse(fmt.Errorf("group by %s: %w", column, groups.Err), column)
	}

	parts := groups.GetGroups()
	result := make([]models.GroupTotal, 0, len(parts))
	for key, part := range parts {
		total, _ := sum(part.Col(loader.ColSales))
		result = append(result, models.GroupTotal{
			Key:   key,
			Sales: total,
			Count: part.Nrow(),
		})
	}

	slices.SortFunc(result, func(a, b models.GroupTotal) int {
		return strings.Compare(a.Key, b.Key)
	})
	return result, nil
}

// sum adds the non-missing values of s and reports how many there were.
func sum(s series.Series) (float64, int) {
	var total float64
	var n int
	for _, v := range s.Float() {
		if math.IsNaN(v) {
			continue
		}
		total += v
		n++
	}
	return total, n
}

func mean(total float64, n int) float64 {
	if n == 0 {
		return math.NaN()
	}
	return total / float64(n)
}

// distinct returns the non-missing values of s in first-seen order.
func distinct(s series.Series) []string {
	nan := s.IsNaN()
	return lo.Uniq(lo.Filter(s.Records(), func(_ string, i int) bool {
		return !nan[i]
	}))
}

func present(s series.Series) []int {
	return lo.FilterMap(s.IsNaN(), func(isNaN bool, i int) (int, bool) {
		return i, !isNaN
	})
}
