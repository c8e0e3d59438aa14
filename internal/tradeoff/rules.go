package tradeoff

import (
	"fmt"
	"math"

	"github.com/iwvelando/strategy-compare/pkg/constants"
	"github.com/iwvelando/strategy-compare/pkg/delta"
	"github.com/iwvelando/strategy-compare/pkg/format"
)

// Unit controls how a metric's difference is rendered and ranked.
type Unit string

const (
	// UnitCurrency values are rendered as dollars and ranked as-is.
	UnitCurrency Unit = "currency"

	// UnitFraction values (rates, probabilities) are rendered as percentage
	// points and ranked after multiplying by the probability scale.
	UnitFraction Unit = "fraction"
)

// Rule is the scoring and wording policy for one metric.
type Rule struct {
	Key      string
	Label    string
	Weight   float64
	UpFavors delta.Side
	Unit     Unit

	// Phrase is a format string taking the favoured strategy name and the
	// formatted amount. Empty means a generic phrase built from Label.
	Phrase string
}

// DefaultRules returns the standard rule table. Lower margin call probability
// is better, so an upward move there favours the previous strategy.
func DefaultRules() []Rule {
	return []Rule{
		{
			Key:      constants.MetricFinalValue,
			Label:    "final value",
			Weight:   2,
			UpFavors: delta.Current,
			Unit:     UnitCurrency,
			Phrase:   "%s ends with %s more in final portfolio value",
		},
		{
			Key:      constants.MetricSuccessRate,
			Label:    "success rate",
			Weight:   1,
			UpFavors: delta.Current,
			Unit:     UnitFraction,
			Phrase:   "%s has a higher success rate by %s",
		},
		{
			Key:      constants.MetricMarginCallProbability,
			Label:    "margin call probability",
			Weight:   1,
			UpFavors: delta.Previous,
			Unit:     UnitFraction,
			Phrase:   "%s has a lower margin call probability by %s",
		},
		{
			Key:      constants.MetricCAGR,
			Label:    "CAGR",
			Weight:   1,
			UpFavors: delta.Current,
			Unit:     UnitFraction,
			Phrase:   "%s compounds faster, with CAGR higher by %s",
		},
	}
}

func (r Rule) amount(d delta.Record) string {
	if r.Unit == UnitCurrency {
		return format.Currency(math.Abs(d.Absolute))
	}
	return format.PercentagePoints(d.Absolute)
}

func (r Rule) describe(name string, d delta.Record) string {
	if r.Phrase != "" {
		return fmt.Sprintf(r.Phrase, name, r.amount(d))
	}
	label := r.Label
	if label == "" {
		label = r.Key
	}
	return fmt.Sprintf("%s leads on %s by %s", name, label, r.amount(d))
}

func (r Rule) magnitude(d delta.Record, probabilityScale float64) float64 {
	m := math.Abs(d.Absolute)
	if r.Unit == UnitFraction {
		m *= probabilityScale
	}
	return m
}

// ParseSide accepts the configuration spellings of a Side.
func ParseSide(value string) (delta.Side, error) {
	switch delta.Side(value) {
	case delta.Previous, delta.Current:
		return delta.Side(value), nil
	case "":
		return delta.Current, nil
	}
	return delta.None, fmt.Errorf("unknown side %q: expected %s or %s", value, delta.Previous, delta.Current)
}

// ParseUnit accepts the configuration spellings of a Unit.
func ParseUnit(value string) (Unit, error) {
	switch Unit(value) {
	case UnitCurrency, UnitFraction:
		return Unit(value), nil
	case "":
		return UnitFraction, nil
	}
	return "", fmt.Errorf("unknown unit %q: expected %s or %s", value, UnitCurrency, UnitFraction)
}
