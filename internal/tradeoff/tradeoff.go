// Package tradeoff scores two strategy runs against each other and turns the
// result into a short verdict: a headline, the largest differences and a
// recommendation.
package tradeoff

import (
	"fmt"
	"sort"

	"github.com/iwvelando/strategy-compare/pkg/constants"
	"github.com/iwvelando/strategy-compare/pkg/delta"
	"github.com/iwvelando/strategy-compare/pkg/notify"
	"go.uber.org/zap"
)

// Assessment is the overall verdict of a comparison.
type Assessment string

const (
	PreviousBetter Assessment = "previous-better"
	CurrentBetter  Assessment = "current-better"
	Similar        Assessment = "similar"
)

const (
	noDataHeadline       = "No comparison available"
	noDataRecommendation = "Run both the previous and current simulations to see how the strategies compare."
)

// Difference is one ranked, human-readable difference between the runs.
type Difference struct {
	Metric    string     `json:"metric"`
	Favors    delta.Side `json:"favors"`
	Magnitude float64    `json:"magnitude"`
	Text      string     `json:"text"`
}

// Summary is the verdict produced by GenerateSummary.
type Summary struct {
	Headline       string       `json:"headline"`
	Assessment     Assessment   `json:"assessment"`
	KeyDifferences []string     `json:"keyDifferences"`
	Recommendation string       `json:"recommendation"`
	PreviousScore  float64      `json:"previousScore"`
	CurrentScore   float64      `json:"currentScore"`
	Differences    []Difference `json:"differences,omitempty"`
}

// Engine holds the scoring policy. It carries no per-call state and is safe
// for concurrent use.
type Engine struct {
	logger           *zap.Logger
	notifier         notify.Notifier
	rules            []Rule
	probabilityScale float64
	maxDifferences   int
}

// Option configures an Engine.
type Option func(*Engine)

// WithNotifier sets the surface that receives user-facing notices.
func WithNotifier(n notify.Notifier) Option {
	return func(e *Engine) {
		if n != nil {
			e.notifier = n
		}
	}
}

// WithProbabilityScale sets the multiplier applied to fraction-unit
// differences before ranking. Non-positive values are ignored.
func WithProbabilityScale(scale float64) Option {
	return func(e *Engine) {
		if scale > 0 {
			e.probabilityScale = scale
		}
	}
}

// WithMaxDifferences caps the number of key differences. Non-positive values
// are ignored.
func WithMaxDifferences(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxDifferences = n
		}
	}
}

// WithWeights overrides the weight of existing rules by metric key.
func WithWeights(weights map[string]float64) Option {
	return func(e *Engine) {
		for i := range e.rules {
			if w, ok := weights[e.rules[i].Key]; ok {
				e.rules[i].Weight = w
			}
		}
	}
}

// WithRules adds rules, replacing any existing rule with the same key.
func WithRules(rules ...Rule) Option {
	return func(e *Engine) {
		for _, r := range rules {
			replaced := false
			for i := range e.rules {
				if e.rules[i].Key == r.Key {
					e.rules[i] = r
					replaced = true
					break
				}
			}
			if !replaced {
				e.rules = append(e.rules, r)
			}
		}
	}
}

// NewEngine creates an engine with the default rule table.
// If logger is nil, it will use a no-op logger to prevent panics.
func NewEngine(logger *zap.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		logger:           logger,
		notifier:         notify.Nop(),
		rules:            DefaultRules(),
		probabilityScale: constants.DefaultProbabilityScale,
		maxDifferences:   constants.MaxKeyDifferences,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rules returns a copy of the engine's rule table.
func (e *Engine) Rules() []Rule {
	return append([]Rule(nil), e.rules...)
}

// GenerateSummary compares two runs. A nil metrics bundle means no comparison
// has been run yet and yields the canned no-data summary.
func (e *Engine) GenerateSummary(metrics *Metrics, previousName, currentName string) Summary {
	if metrics == nil {
		e.notifier.Notify(notify.Warning, "No comparison data available yet")
		return Summary{
			Headline:       noDataHeadline,
			Assessment:     Similar,
			KeyDifferences: []string{},
			Recommendation: noDataRecommendation,
		}
	}

	if previousName == "" {
		previousName = "Previous"
	}
	if currentName == "" {
		currentName = "Current"
	}

	previousScore, currentScore := e.score(metrics)
	assessment := assess(previousScore, currentScore)
	differences := e.rank(metrics, previousName, currentName)

	keyDifferences := make([]string, 0, len(differences))
	for _, d := range differences {
		keyDifferences = append(keyDifferences, d.Text)
	}

	summary := Summary{
		Headline:       headline(assessment, previousName, currentName),
		Assessment:     assessment,
		KeyDifferences: keyDifferences,
		Recommendation: recommendation(assessment, previousName, currentName),
		PreviousScore:  previousScore,
		CurrentScore:   currentScore,
		Differences:    differences,
	}

	e.logger.Debug("trade-off summary generated",
		zap.String("op", "tradeoff.GenerateSummary"),
		zap.String("assessment", string(assessment)),
		zap.Float64("previousScore", previousScore),
		zap.Float64("currentScore", currentScore),
		zap.Int("differences", len(keyDifferences)),
	)
	e.notifier.Notify(notify.Info, summary.Headline)

	return summary
}

// score adds each present metric's weight to the side it favours.
func (e *Engine) score(metrics *Metrics) (previousScore, currentScore float64) {
	for _, rule := range e.rules {
		d, ok := metrics.Lookup(rule.Key)
		if !ok {
			continue
		}
		switch d.Favors(rule.UpFavors) {
		case delta.Previous:
			previousScore += rule.Weight
		case delta.Current:
			currentScore += rule.Weight
		}
	}
	return previousScore, currentScore
}

func assess(previousScore, currentScore float64) Assessment {
	switch {
	case currentScore > previousScore:
		return CurrentBetter
	case previousScore > currentScore:
		return PreviousBetter
	default:
		return Similar
	}
}

// rank describes every non-neutral metric and keeps the largest ones. Equal
// magnitudes keep rule-table order.
func (e *Engine) rank(metrics *Metrics, previousName, currentName string) []Difference {
	var differences []Difference
	for _, rule := range e.rules {
		d, ok := metrics.Lookup(rule.Key)
		if !ok {
			continue
		}
		side := d.Favors(rule.UpFavors)
		if side == delta.None {
			continue
		}
		name := currentName
		if side == delta.Previous {
			name = previousName
		}
		differences = append(differences, Difference{
			Metric:    rule.Key,
			Favors:    side,
			Magnitude: rule.magnitude(d, e.probabilityScale),
			Text:      rule.describe(name, d),
		})
	}

	sort.SliceStable(differences, func(i, j int) bool {
		return differences[i].Magnitude > differences[j].Magnitude
	})

	if len(differences) > e.maxDifferences {
		differences = differences[:e.maxDifferences]
	}
	return differences
}

func headline(a Assessment, previousName, currentName string) string {
	switch a {
	case CurrentBetter:
		return fmt.Sprintf("%s strategy outperforms", currentName)
	case PreviousBetter:
		return fmt.Sprintf("%s strategy outperforms", previousName)
	default:
		return "Strategies produce similar outcomes"
	}
}

func recommendation(a Assessment, previousName, currentName string) string {
	switch a {
	case CurrentBetter:
		return fmt.Sprintf("The %s parameters come out ahead of %s on the weighted metrics. "+
			"Adopting them is a sound next step.", currentName, previousName)
	case PreviousBetter:
		return fmt.Sprintf("%s scores below %s. Review which metrics regressed before switching "+
			"away from the %s parameters.", currentName, previousName, previousName)
	default:
		return "Neither strategy has a clear edge on the weighted metrics. " +
			"Let your personal risk tolerance decide between them."
	}
}
