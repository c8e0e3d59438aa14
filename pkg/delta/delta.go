// Package delta converts a previous/current value pair into a signed delta
// record.
package delta

import (
	"math"

	"github.com/iwvelando/strategy-compare/pkg/mathutil"
)

// Direction is the categorical sign of a delta.
type Direction string

const (
	Up      Direction = "up"
	Down    Direction = "down"
	Neutral Direction = "neutral"
)

// Side names one of the two compared strategies.
type Side string

const (
	Previous Side = "previous"
	Current  Side = "current"
	None     Side = "none"
)

// Opposite returns the other strategy. None maps to None.
func (s Side) Opposite() Side {
	switch s {
	case Previous:
		return Current
	case Current:
		return Previous
	default:
		return None
	}
}

// Record is the result of comparing a previous value to a current value for
// one metric.
type Record struct {
	Absolute      float64   `json:"absolute" yaml:"absolute"`
	PercentChange float64   `json:"percentChange" yaml:"percentChange"`
	Direction     Direction `json:"direction" yaml:"direction"`
}

// Compute returns the delta from previous to current. The absolute change is
// exact. The percent change is taken against |previous| so its sign always
// follows the direction. When previous is zero, or the ratio overflows a
// float64, the percent change is undefined and is reported as 0.
func Compute(previous, current float64) Record {
	absolute := current - previous

	percent := mathutil.CalculatePercentage(absolute, math.Abs(previous))
	if !mathutil.IsFinite(percent) {
		percent = 0
	}

	return Record{
		Absolute:      absolute,
		PercentChange: percent,
		Direction:     DirectionOf(absolute),
	}
}

// DirectionOf maps the sign of a value onto a Direction.
func DirectionOf(value float64) Direction {
	switch {
	case value > 0:
		return Up
	case value < 0:
		return Down
	default:
		return Neutral
	}
}

// Favors returns the side that a record favours given which side an upward
// move favours.
func (r Record) Favors(up Side) Side {
	switch r.Direction {
	case Up:
		return up
	case Down:
		return up.Opposite()
	default:
		return None
	}
}
