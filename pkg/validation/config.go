package validation

import (
	"fmt"
	"sort"

	"github.com/iwvelando/strategy-compare/pkg/mathutil"
)

// ValidateFinite returns an error naming the first non-finite value. The
// comparison engine assumes finite inputs, so callers check here first.
func ValidateFinite(label string, values map[string]*float64) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := values[k]
		if v == nil {
			continue
		}
		if !mathutil.IsFinite(*v) {
			return fmt.Errorf("%s: %s must be a finite number, got %v", label, k, *v)
		}
	}
	return nil
}

// ValidateProbability warns when a fraction falls outside [0, 1], which
// usually means the value was entered as a percentage.
func ValidateProbability(label, metric string, value *float64) string {
	if value == nil {
		return ""
	}
	if *value < 0 || *value > 1 {
		return fmt.Sprintf("%s: %s is %v; rates and probabilities are expected as fractions between 0 and 1",
			label, metric, *value)
	}
	return ""
}

// ValidateName warns when a strategy has no display name.
func ValidateName(label, name string) string {
	if name == "" {
		return fmt.Sprintf("%s strategy has no name; a generic label will be used", label)
	}
	return ""
}
