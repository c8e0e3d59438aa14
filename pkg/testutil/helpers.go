// Package testutil provides common utility functions for testing.
package testutil

import (
	"path/filepath"
	"runtime"

	"github.com/iwvelando/strategy-compare/internal/tradeoff"
)

// Float returns a pointer to v for optional metric fields.
func Float(v float64) *float64 {
	return &v
}

// FindDifference finds a ranked difference by metric key in the summary.
// Returns a pointer to the difference if found, nil otherwise.
func FindDifference(summary tradeoff.Summary, metric string) *tradeoff.Difference {
	for i := range summary.Differences {
		if summary.Differences[i].Metric == metric {
			return &summary.Differences[i]
		}
	}
	return nil
}

// RepoPath resolves a path relative to the repository root, independent of
// the package directory the test runs from.
func RepoPath(parts ...string) string {
	_, file, _, _ := runtime.Caller(0)
	root := filepath.Join(filepath.Dir(file), "..", "..")
	return filepath.Join(append([]string{root}, parts...)...)
}
