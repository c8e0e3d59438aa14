package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/iwvelando/strategy-compare/internal/tradeoff"
	"github.com/iwvelando/strategy-compare/pkg/constants"
	"github.com/iwvelando/strategy-compare/pkg/validation"
)

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	for _, s := range []struct {
		label    string
		strategy Strategy
	}{
		{"previous", c.Comparison.Previous},
		{"current", c.Comparison.Current},
	} {
		if w := validation.ValidateName(s.label, s.strategy.Name); w != "" {
			warnings = append(warnings, w)
		}
		if s.strategy.Results == nil {
			warnings = append(warnings, fmt.Sprintf("%s strategy has no results; the comparison will report no data", s.label))
			continue
		}
		warnings = append(warnings, ResultWarnings(s.label, *s.strategy.Results)...)
	}

	known := make(map[string]struct{})
	for _, r := range tradeoff.DefaultRules() {
		known[strings.ToLower(r.Key)] = struct{}{}
	}
	for _, m := range c.Metrics {
		known[strings.ToLower(m.Key)] = struct{}{}
	}
	for key := range c.Weights {
		if _, ok := known[strings.ToLower(key)]; !ok {
			warnings = append(warnings, fmt.Sprintf("weight for unknown metric '%s' is ignored", key))
		}
	}

	if c.Ranking.ProbabilityScale < 0 {
		warnings = append(warnings, "ranking.probabilityScale is negative; the default will be used")
	}
	if c.Ranking.MaxDifferences < 0 {
		warnings = append(warnings, "ranking.maxDifferences is negative; the default will be used")
	}

	return warnings
}

// Validate rejects configurations the comparison engine cannot accept.
func (c *Configuration) Validate() error {
	if c.Comparison.Previous.Results != nil {
		if err := ValidateResult("previous", *c.Comparison.Previous.Results); err != nil {
			return err
		}
	}
	if c.Comparison.Current.Results != nil {
		if err := ValidateResult("current", *c.Comparison.Current.Results); err != nil {
			return err
		}
	}
	if _, err := c.EngineOptions(); err != nil {
		return err
	}
	return nil
}

// ValidateResult checks that every reported value is finite.
func ValidateResult(label string, r tradeoff.Result) error {
	values := map[string]*float64{
		constants.MetricFinalValue:            &r.FinalValue,
		constants.MetricSuccessRate:           &r.SuccessRate,
		constants.MetricMarginCallProbability: r.MarginCallProbability,
		constants.MetricCAGR:                  r.CAGR,
	}
	for k, v := range r.Extra {
		v := v
		values[k] = &v
	}
	if err := validateExtraKeys(label, r.Extra); err != nil {
		return err
	}
	return validation.ValidateFinite(label, values)
}

// validateExtraKeys rejects extra metric keys that collide once case is
// ignored, since lookups by key are case-insensitive.
func validateExtraKeys(label string, extra map[string]float64) error {
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	seen := make(map[string]string, len(keys))
	for _, k := range keys {
		folded := strings.ToLower(k)
		if other, ok := seen[folded]; ok {
			return fmt.Errorf("%s strategy: extra metrics %q and %q differ only in case", label, other, k)
		}
		seen[folded] = k
	}
	return nil
}

// ResultWarnings flags values that look like percentages instead of fractions.
func ResultWarnings(label string, r tradeoff.Result) []string {
	var warnings []string
	if w := validation.ValidateProbability(label, constants.MetricSuccessRate, &r.SuccessRate); w != "" {
		warnings = append(warnings, w)
	}
	if w := validation.ValidateProbability(label, constants.MetricMarginCallProbability, r.MarginCallProbability); w != "" {
		warnings = append(warnings, w)
	}
	return warnings
}
