// Package format renders metric values for human-readable output.
package format

import (
	"math"

	"github.com/iwvelando/strategy-compare/pkg/mathutil"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Currency returns a currency string with a dollar sign and thousands separators (e.g., "-$1,234.56").
func Currency(amount float64) string {
	formatted := printer.Sprintf("%.2f", math.Abs(amount))
	if amount < 0 {
		return "-$" + formatted
	}
	return "$" + formatted
}

// PercentagePoints renders a fractional difference (0.05) as "5.0 percentage points".
// The sign is dropped; callers phrase direction in words.
func PercentagePoints(fraction float64) string {
	points := mathutil.ToPercent(math.Abs(fraction))
	unit := "percentage points"
	if points == 1 {
		unit = "percentage point"
	}
	return printer.Sprintf("%.1f %s", points, unit)
}

// Percent renders a fraction as a percentage (0.953 -> "95.3%").
func Percent(fraction float64) string {
	return printer.Sprintf("%.1f%%", mathutil.ToPercent(fraction))
}

// SignedPercent renders an already-scaled percent change with an explicit sign ("+12.5%").
func SignedPercent(percent float64) string {
	if percent > 0 {
		return printer.Sprintf("+%.1f%%", percent)
	}
	return printer.Sprintf("%.1f%%", percent)
}

// SignedPoints renders a fractional difference as signed percentage points ("+5.0 pp").
func SignedPoints(fraction float64) string {
	points := mathutil.ToPercent(fraction)
	if points > 0 {
		return printer.Sprintf("+%.1f pp", points)
	}
	return printer.Sprintf("%.1f pp", points)
}

// SignedCurrency renders a currency difference with an explicit sign ("+$1,000.00").
func SignedCurrency(amount float64) string {
	if amount > 0 {
		return "+" + Currency(amount)
	}
	return Currency(amount)
}
