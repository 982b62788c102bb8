package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const lineWidth = 80

var (
	printer = message.NewPrinter(language.English)

	doubleRule = strings.Repeat("=", lineWidth)
	singleRule = strings.Repeat("-", lineWidth)
)

// Currency renders v as dollars with thousands separators and two decimals.
// The sign of a value that rounds to zero is kept.
func Currency(v float64) string {
	if s, ok := nonFinite(v); ok {
		return "$" + s
	}
	r := round2(v)
	digits := printer.Sprintf("%.2f", math.Abs(r))
	if math.Signbit(r) {
		return "$-" + digits
	}
	return "$" + digits
}

// Count renders n with thousands separators.
func Count(n int) string {
	return printer.Sprintf("%d", n)
}

// Percent renders an already scaled percentage with two decimals.
func Percent(v float64) string {
	if s, ok := nonFinite(v); ok {
		return s + "%"
	}
	return fmt.Sprintf("%.2f%%", v)
}

// nonFinite spells NaN and infinities in lower case, as report readers expect.
func nonFinite(v float64) (string, bool) {
	switch {
	case math.IsNaN(v):
		return "nan", true
	case math.IsInf(v, 1):
		return "inf", true
	case math.IsInf(v, -1):
		return "-inf", true
	}
	return "", false
}

// round2 rounds v to the nearest two-decimal float the same way strconv
// does, so the printer never sees a tie it might resolve differently.
func round2(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	if err != nil {
		return v
	}
	return r
}
