package widget

import (
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatNumber groups thousands for whole numbers ("2,847") and prints
// fractions without trailing zeros ("98.7").
func FormatNumber(n float64) string {
	if n == math.Trunc(n) && math.Abs(n) < 1e15 {
		return message.NewPrinter(language.English).Sprintf("%d", int64(n))
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// FormatCurrency renders whole dollars, e.g. "$1,234,567".
func FormatCurrency(n float64) string {
	return message.NewPrinter(language.English).Sprintf("$%d", int64(math.Round(n)))
}

// FormatPercent renders a percentage with at most one decimal.
func FormatPercent(n float64) string {
	return strconv.FormatFloat(math.Round(n*10)/10, 'f', -1, 64) + "%"
}
