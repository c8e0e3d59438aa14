// Package output provides utilities for formatting and displaying comparison results.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/iwvelando/strategy-compare/internal/tradeoff"
	"github.com/iwvelando/strategy-compare/pkg/constants"
	"github.com/iwvelando/strategy-compare/pkg/delta"
	"github.com/iwvelando/strategy-compare/pkg/format"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// NoDifferencesPlaceholder is shown when a summary has no key differences.
const NoDifferencesPlaceholder = "No significant differences between the strategies"

// Report is everything needed to render one comparison.
type Report struct {
	PreviousName string           `json:"previousName"`
	CurrentName  string           `json:"currentName"`
	Rows         []Row            `json:"rows"`
	Summary      tradeoff.Summary `json:"summary"`
}

// Row is one metric line of the comparison table.
type Row struct {
	Metric   string        `json:"metric"`
	Label    string        `json:"label"`
	Unit     tradeoff.Unit `json:"unit"`
	Previous float64       `json:"previous"`
	Current  float64       `json:"current"`
	Delta    delta.Record  `json:"delta"`
	Favors   delta.Side    `json:"favors"`
}

// BuildReport assembles a report from raw results, their deltas and the
// generated summary. Rows follow rule order and skip metrics that are absent
// from the delta bundle.
func BuildReport(previousName, currentName string, previous, current *tradeoff.Result, metrics *tradeoff.Metrics, summary tradeoff.Summary, rules []tradeoff.Rule) Report {
	report := Report{
		PreviousName: previousName,
		CurrentName:  currentName,
		Rows:         []Row{},
		Summary:      summary,
	}
	for _, rule := range rules {
		d, ok := metrics.Lookup(rule.Key)
		if !ok {
			continue
		}
		prev, _ := previous.Value(rule.Key)
		cur, _ := current.Value(rule.Key)
		label := rule.Label
		if label == "" {
			label = rule.Key
		}
		report.Rows = append(report.Rows, Row{
			Metric:   rule.Key,
			Label:    label,
			Unit:     rule.Unit,
			Previous: prev,
			Current:  cur,
			Delta:    d,
			Favors:   d.Favors(rule.UpFavors),
		})
	}
	return report
}

// Write renders the report in the requested format.
func Write(w io.Writer, outputFormat string, report Report, useColors bool) error {
	switch outputFormat {
	case constants.OutputFormatJSON:
		if err := writeJSON(w, report); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case constants.OutputFormatCSV:
		if err := writeCSV(w, report); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		if err := writePretty(w, report, useColors); err != nil {
			return fmt.Errorf("error writing table output: %w", err)
		}
	}
	return nil
}

func writeJSON(w io.Writer, report Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

func writeCSV(w io.Writer, report Report) error {
	csvWriter := csv.NewWriter(w)

	header := []string{
		"metric",
		fmt.Sprintf("previous (%s)", report.PreviousName),
		fmt.Sprintf("current (%s)", report.CurrentName),
		"absolute",
		"percent_change",
		"direction",
		"favors",
	}
	if err := csvWriter.Write(header); err != nil {
		return err
	}

	for _, r := range report.Rows {
		row := []string{
			r.Metric,
			strconv.FormatFloat(r.Previous, 'f', -1, 64),
			strconv.FormatFloat(r.Current, 'f', -1, 64),
			strconv.FormatFloat(r.Delta.Absolute, 'f', -1, 64),
			strconv.FormatFloat(r.Delta.PercentChange, 'f', 4, 64),
			string(r.Delta.Direction),
			string(r.Favors),
		}
		if err := csvWriter.Write(row); err != nil {
			return err
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

func writePretty(w io.Writer, report Report, useColors bool) error {
	previousName, currentName := report.PreviousName, report.CurrentName
	if previousName == "" {
		previousName = "Previous"
	}
	if currentName == "" {
		currentName = "Current"
	}

	green, red, yellow := fmt.Sprint, fmt.Sprint, fmt.Sprint
	bold := fmt.Sprint
	if useColors {
		green = color.New(color.FgGreen).SprintFunc()
		red = color.New(color.FgRed).SprintFunc()
		yellow = color.New(color.FgYellow).SprintFunc()
		bold = color.New(color.Bold).SprintFunc()
	}

	if _, err := fmt.Fprintf(w, "--- %s vs %s ---\n", previousName, currentName); err != nil {
		return err
	}

	if len(report.Rows) > 0 {
		table := tablewriter.NewWriter(w)
		table.Header([]string{"Metric", previousName, currentName, "Change", "% Change", "Favors"})
		table.Configure(func(cfg *tablewriter.Config) {
			cfg.Row.Alignment.Global = tw.AlignRight
		})

		data := make([][]string, 0, len(report.Rows))
		for _, r := range report.Rows {
			favors := yellow("-")
			switch r.Favors {
			case delta.Current:
				favors = green(currentName)
			case delta.Previous:
				favors = red(previousName)
			}
			data = append(data, []string{
				r.Label,
				formatValue(r.Unit, r.Previous),
				formatValue(r.Unit, r.Current),
				formatChange(r.Unit, r.Delta.Absolute),
				format.SignedPercent(r.Delta.PercentChange),
				favors,
			})
		}
		if err := table.Bulk(data); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}
	}

	s := report.Summary
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s (%s, score %s vs %s)\n", bold(s.Headline), s.Assessment,
		strconv.FormatFloat(s.PreviousScore, 'f', -1, 64), strconv.FormatFloat(s.CurrentScore, 'f', -1, 64))
	b.WriteString("\nKey differences:\n")
	if len(s.KeyDifferences) == 0 {
		fmt.Fprintf(&b, "  %s\n", NoDifferencesPlaceholder)
	}
	for i, d := range s.KeyDifferences {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, d)
	}
	fmt.Fprintf(&b, "\nRecommendation: %s\n", s.Recommendation)

	_, err := io.WriteString(w, b.String())
	return err
}

func formatValue(unit tradeoff.Unit, v float64) string {
	if unit == tradeoff.UnitCurrency {
		return format.Currency(v)
	}
	return format.Percent(v)
}

func formatChange(unit tradeoff.Unit, v float64) string {
	if unit == tradeoff.UnitCurrency {
		return format.SignedCurrency(v)
	}
	return format.SignedPoints(v)
}
