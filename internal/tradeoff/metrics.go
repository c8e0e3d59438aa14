package tradeoff

import (
	"strings"

	"github.com/iwvelando/strategy-compare/pkg/constants"
	"github.com/iwvelando/strategy-compare/pkg/delta"
)

// Result holds the raw outputs of one simulation run. Rates and probabilities
// are fractions (0.95 is 95%).
type Result struct {
	FinalValue            float64            `json:"finalValue" yaml:"finalValue" mapstructure:"finalValue"`
	SuccessRate           float64            `json:"successRate" yaml:"successRate" mapstructure:"successRate"`
	MarginCallProbability *float64           `json:"marginCallProbability,omitempty" yaml:"marginCallProbability,omitempty" mapstructure:"marginCallProbability"`
	CAGR                  *float64           `json:"cagr,omitempty" yaml:"cagr,omitempty" mapstructure:"cagr"`
	Extra                 map[string]float64 `json:"extra,omitempty" yaml:"extra,omitempty" mapstructure:"extra"`
}

// Metrics is the bundle of per-metric deltas between a previous and a current
// run. FinalValue and SuccessRate are always present; the pointer fields are
// nil when the compared strategies do not report them.
type Metrics struct {
	FinalValue            delta.Record            `json:"finalValue"`
	SuccessRate           delta.Record            `json:"successRate"`
	MarginCallProbability *delta.Record           `json:"marginCallProbability,omitempty"`
	CAGR                  *delta.Record           `json:"cagr,omitempty"`
	Extra                 map[string]delta.Record `json:"extra,omitempty"`
}

// Compare builds the delta bundle for two simulation results. Optional and
// extra metrics are only compared when both runs report them.
func Compare(previous, current Result) *Metrics {
	m := &Metrics{
		FinalValue:  delta.Compute(previous.FinalValue, current.FinalValue),
		SuccessRate: delta.Compute(previous.SuccessRate, current.SuccessRate),
	}

	if previous.MarginCallProbability != nil && current.MarginCallProbability != nil {
		d := delta.Compute(*previous.MarginCallProbability, *current.MarginCallProbability)
		m.MarginCallProbability = &d
	}
	if previous.CAGR != nil && current.CAGR != nil {
		d := delta.Compute(*previous.CAGR, *current.CAGR)
		m.CAGR = &d
	}

	for key, prev := range previous.Extra {
		cur, ok := current.Extra[key]
		if !ok {
			continue
		}
		if m.Extra == nil {
			m.Extra = make(map[string]delta.Record)
		}
		m.Extra[key] = delta.Compute(prev, cur)
	}

	return m
}

// Lookup returns the delta for a metric key and whether it is present.
func (m *Metrics) Lookup(key string) (delta.Record, bool) {
	if m == nil {
		return delta.Record{}, false
	}
	switch key {
	case constants.MetricFinalValue:
		return m.FinalValue, true
	case constants.MetricSuccessRate:
		return m.SuccessRate, true
	case constants.MetricMarginCallProbability:
		if m.MarginCallProbability == nil {
			return delta.Record{}, false
		}
		return *m.MarginCallProbability, true
	case constants.MetricCAGR:
		if m.CAGR == nil {
			return delta.Record{}, false
		}
		return *m.CAGR, true
	}
	if d, ok := m.Extra[key]; ok {
		return d, true
	}
	// Keys that passed through viper arrive lowercased.
	return foldLookup(m.Extra, key)
}

// Value returns the raw value a run reported for a metric key.
func (r *Result) Value(key string) (float64, bool) {
	if r == nil {
		return 0, false
	}
	switch key {
	case constants.MetricFinalValue:
		return r.FinalValue, true
	case constants.MetricSuccessRate:
		return r.SuccessRate, true
	case constants.MetricMarginCallProbability:
		if r.MarginCallProbability == nil {
			return 0, false
		}
		return *r.MarginCallProbability, true
	case constants.MetricCAGR:
		if r.CAGR == nil {
			return 0, false
		}
		return *r.CAGR, true
	}
	if v, ok := r.Extra[key]; ok {
		return v, true
	}
	return foldLookup(r.Extra, key)
}

// foldLookup matches key against m ignoring case. When several keys match,
// the lexically smallest one wins.
func foldLookup[V any](m map[string]V, key string) (V, bool) {
	var (
		best  string
		value V
		found bool
	)
	for k, v := range m {
		if !strings.EqualFold(k, key) {
			continue
		}
		if !found || k < best {
			best, value, found = k, v, true
		}
	}
	return value, found
}
