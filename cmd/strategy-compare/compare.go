package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/iwvelando/strategy-compare/internal/config"
	"github.com/iwvelando/strategy-compare/internal/tradeoff"
	"github.com/iwvelando/strategy-compare/pkg/constants"
	"github.com/iwvelando/strategy-compare/pkg/dialog"
	"github.com/iwvelando/strategy-compare/pkg/notify"
	"github.com/iwvelando/strategy-compare/pkg/output"
	"github.com/iwvelando/strategy-compare/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type compareOptions struct {
	configPath   string
	outputFormat string
	logLevel     string
	confirm      bool
}

func newCompareCmd() *cobra.Command {
	opts := compareOptions{}
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare the previous and current runs from a configuration file.",
		Long: `Load a comparison file, print the per-metric deltas and the trade-off summary.

With --confirm the command asks whether to keep the previous parameters or
switch to the current ones once the summary has been printed.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.logLevel = cmd.Flag("log-level").Value.String()
			return runCompare(cmd.Context(), opts, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", constants.DefaultConfigFile, "path to configuration file")
	cmd.Flags().StringVar(&opts.outputFormat, "output-format", "", "type of output override: pretty, csv, json")
	cmd.Flags().BoolVar(&opts.confirm, "confirm", false, "ask which strategy to adopt after the summary")
	return cmd
}

// runCompare writes the report to out. The adoption prompt and its answer go
// to prompt so that csv and json reports on out stay machine readable.
func runCompare(ctx context.Context, opts compareOptions, in io.Reader, out, prompt io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	conf, err := config.LoadConfiguration(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration at %s: %w", opts.configPath, err)
	}

	logger, err := initializeLogger(conf.Logging, opts.logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if opts.outputFormat != "" {
		outputFormat = opts.outputFormat
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		return err
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main.compare"),
		)
	}

	if err := conf.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	engineOpts, err := conf.EngineOptions()
	if err != nil {
		return err
	}
	engineOpts = append(engineOpts, tradeoff.WithNotifier(notify.NewZapNotifier(logger)))
	engine := tradeoff.NewEngine(logger, engineOpts...)

	previous, current := conf.Comparison.Previous, conf.Comparison.Current
	metrics := conf.ComparisonMetrics()
	summary := engine.GenerateSummary(metrics, previous.Name, current.Name)
	report := output.BuildReport(previous.Name, current.Name, previous.Results, current.Results, metrics, summary, engine.Rules())

	if err := output.Write(out, outputFormat, report, !conf.Output.NoColor); err != nil {
		return err
	}

	if !opts.confirm || metrics == nil {
		return nil
	}

	previousName, currentName := displayName(previous.Name, "Previous"), displayName(current.Name, "Current")
	choice, err := confirmAdoption(ctx, in, prompt, previousName, currentName)
	if err != nil {
		return err
	}

	logger.Info("strategy choice recorded",
		zap.String("op", "main.compare"),
		zap.String("choice", string(choice)),
	)

	switch choice {
	case dialog.Keep:
		_, err = fmt.Fprintf(prompt, "Keeping the %s parameters.\n", previousName)
	case dialog.Switch:
		_, err = fmt.Fprintf(prompt, "Adopting the %s parameters.\n", currentName)
	default:
		_, err = fmt.Fprintln(prompt, "No change made.")
	}
	return err
}

// confirmAdoption asks on out and reads one answer line from in. A closed
// input resolves to Cancel.
func confirmAdoption(ctx context.Context, in io.Reader, out io.Writer, previousName, currentName string) (dialog.Choice, error) {
	req := dialog.New[dialog.Choice]()

	if _, err := fmt.Fprintf(out, "\nKeep %s or switch to %s? [k/s] ", previousName, currentName); err != nil {
		return dialog.Cancel, err
	}

	go func() {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			req.Resolve(dialog.Cancel)
			return
		}
		req.Resolve(dialog.ParseChoice(line))
	}()

	choice, err := req.Wait(ctx)
	if err != nil {
		return dialog.Cancel, fmt.Errorf("waiting for strategy choice: %w", err)
	}
	return choice, nil
}

func displayName(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}
