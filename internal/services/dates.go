package services

import (
	"slices"

	"github.com/go-gota/gota/series"
)

// DateRange returns the smallest and largest non-missing values of a date
// column. The column holds text, so values compare as strings.
func DateRange(s series.Series) (string, string) {
	nan := s.IsNaN()
	values := make([]string, 0, s.Len())
	for i, v := range s.Records() {
		if !nan[i] {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return "", ""
	}
	return slices.Min(values), slices.Max(values)
}
