// Package cli wires the harness into a cobra command: flag parsing,
// configuration defaults from .pbbt.yaml, exit code mapping and the
// optional run ledger.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/prometheusresearch/pbbt/internal/cases"
	"github.com/prometheusresearch/pbbt/internal/history"
	"github.com/prometheusresearch/pbbt/internal/run"
)

// Options holds the root command flags.
type Options struct {
	Quiet     bool
	Train     bool
	Purge     bool
	MaxErrors int
	Define    []string
	Suites    []string
	History   string
	Verbose   bool
}

// NewRootCommand creates the pbbt command.
func NewRootCommand() *cobra.Command {
	opts := &Options{}

	cmd := &cobra.Command{
		Use:   "pbbt [flags] INPUT [OUTPUT]",
		Short: "pluggable black-box testing harness",
		Long: `pbbt runs the test cases described by the INPUT document and compares
what they produce against recorded expected output.

In check mode (the default) a case whose output differs from the
recorded expectation fails. In training mode differences are shown
interactively and, once accepted, written back to the output document.

The OUTPUT argument names the expected output document of the root
case; suites that declare their own output file manage it themselves.

Flag defaults may be placed in a .pbbt.yaml file in the working
directory.

Example:
  pbbt test/input.yaml
  pbbt --train test/input.yaml
  pbbt -S demo/edge-cases -M 1 test/input.yaml test/output.yaml`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHarness(opts, cmd, args)
		},
	}

	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "display warnings and errors only")
	cmd.Flags().BoolVarP(&opts.Train, "train", "T", false, "run in training mode")
	cmd.Flags().BoolVarP(&opts.Purge, "purge", "P", false, "purge stale output data (training mode)")
	cmd.Flags().IntVarP(&opts.MaxErrors, "max-errors", "M", 0, "halt after N failures (0 means never)")
	cmd.Flags().StringArrayVarP(&opts.Define, "define", "D", nil, "set a configuration variable VAR[=VALUE]")
	cmd.Flags().StringArrayVarP(&opts.Suites, "suite", "S", nil, "run only the selected suite PATH")
	cmd.Flags().StringVar(&opts.History, "history", "", "record the run in a SQLite ledger at PATH")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose logging")

	return cmd
}

func runHarness(opts *Options, cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read .pbbt.yaml", err)
	}

	logLevel := slog.LevelWarn
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	variables := make(map[string]any)
	for name, value := range cfg.GetStringMap("define") {
		variables[name] = value
	}
	for _, def := range opts.Define {
		name, value, err := parseDefine(def)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --define", err)
		}
		variables[name] = value
	}

	suites := append(cfg.GetStringSlice("suite"), opts.Suites...)

	ctl := run.New(run.Config{
		Registry:  cases.DefaultRegistry(),
		Quiet:     boolSetting(cmd, cfg, "quiet", opts.Quiet),
		Variables: variables,
		Suites:    suites,
		Train:     boolSetting(cmd, cfg, "train", opts.Train),
		Purge:     boolSetting(cmd, cfg, "purge", opts.Purge),
		MaxErrors: intSetting(cmd, cfg, "max-errors", opts.MaxErrors),
		Logger:    logger,
		Context:   cmd.Context(),
	})

	inputPath := args[0]
	outputPath := ""
	if len(args) > 1 {
		outputPath = args[1]
	}

	startedAt := time.Now()
	ok, err := ctl.Run(inputPath, outputPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "", err)
	}

	if ledger := stringSetting(cmd, cfg, "history", opts.History); ledger != "" {
		if err := recordRun(ctl, ledger, inputPath, startedAt); err != nil {
			logger.Warn("failed to record run", slog.String("error", err.Error()))
		}
	}

	if !ok {
		return NewExitError(ExitFailure, "")
	}
	return nil
}

// loadConfig reads flag defaults from .pbbt.yaml in the working
// directory. A missing file is not an error.
func loadConfig() (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigName(".pbbt")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, err
	}
	return v, nil
}

// boolSetting resolves a flag against the config file: an explicit
// flag wins, then the config value, then the flag default.
func boolSetting(cmd *cobra.Command, cfg *viper.Viper, name string, flagValue bool) bool {
	if cmd.Flags().Changed(name) || !cfg.IsSet(name) {
		return flagValue
	}
	return cfg.GetBool(name)
}

func intSetting(cmd *cobra.Command, cfg *viper.Viper, name string, flagValue int) int {
	if cmd.Flags().Changed(name) || !cfg.IsSet(name) {
		return flagValue
	}
	return cfg.GetInt(name)
}

func stringSetting(cmd *cobra.Command, cfg *viper.Viper, name string, flagValue string) string {
	if cmd.Flags().Changed(name) || !cfg.IsSet(name) {
		return flagValue
	}
	return cfg.GetString(name)
}

// parseDefine splits a VAR[=VALUE] definition; a bare name becomes a
// true flag.
func parseDefine(def string) (string, any, error) {
	name, value, found := strings.Cut(def, "=")
	if name == "" {
		return "", nil, fmt.Errorf("empty variable name in %q", def)
	}
	if !found {
		return name, true, nil
	}
	return name, value, nil
}

// recordRun appends the run's tallies to the ledger.
func recordRun(ctl *run.Control, path, input string, startedAt time.Time) error {
	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	mode := "check"
	if ctl.Training() {
		mode = "train"
	}
	passed, updated, failed := ctl.Counts()
	_, err = store.Record(ctl.Context(), history.Run{
		StartedAt: startedAt,
		Input:     input,
		Mode:      mode,
		Passed:    passed,
		Updated:   updated,
		Failed:    failed,
	})
	return err
}
