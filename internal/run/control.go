package run

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/prometheusresearch/pbbt/internal/load"
	"github.com/prometheusresearch/pbbt/internal/schema"
	"github.com/prometheusresearch/pbbt/internal/ui"
)

// Config assembles a Control. Registry is required; everything else
// has a usable default.
type Config struct {
	Registry *Registry

	// Report renders progress and prompts; defaults to an interactive
	// console on stdin/stdout. Quiet wraps it to suppress everything
	// but warnings, errors and prompts.
	Report ui.Report
	Quiet  bool

	// Variables seed the run state and ${NAME} substitution.
	Variables map[string]any

	// Suites restricts the run to matching suite paths.
	Suites []string

	Train     bool
	Purge     bool
	MaxErrors int

	Logger  *slog.Logger
	Context context.Context
}

// Control threads the shared machinery of a run through the case tree:
// the registry, the reporting boundary, selection, state, counters and
// the halt flag.
type Control struct {
	registry  *Registry
	report    ui.Report
	logger    *slog.Logger
	ctx       context.Context
	selection *Selection
	state     *State
	locs      load.Locations

	training  bool
	purging   bool
	maxErrors int

	successNum int
	failureNum int
	updateNum  int
	halted     bool
}

// New builds a Control from the given configuration.
func New(cfg Config) *Control {
	report := cfg.Report
	if report == nil {
		report = ui.NewConsole(nil, nil)
	}
	if cfg.Quiet {
		report = ui.NewQuiet(report)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}
	return &Control{
		registry:  cfg.Registry,
		report:    report,
		logger:    logger,
		ctx:       ctx,
		selection: NewSelection(cfg.Suites),
		state:     NewState(cfg.Variables),
		locs:      make(load.Locations),
		training:  cfg.Train,
		purging:   cfg.Purge,
		maxErrors: cfg.MaxErrors,
	}
}

// Report returns the reporting boundary.
func (ctl *Control) Report() ui.Report { return ctl.report }

// Logger returns the run logger.
func (ctl *Control) Logger() *slog.Logger { return ctl.logger }

// Context returns the run context, used by cases that spawn
// subprocesses or other cancelable work.
func (ctl *Control) Context() context.Context { return ctl.ctx }

// Selection returns the suite selection of the run.
func (ctl *Control) Selection() *Selection { return ctl.selection }

// State returns the mutable variable table of the run.
func (ctl *Control) State() *State { return ctl.state }

// Registry returns the case kind registry.
func (ctl *Control) Registry() *Registry { return ctl.registry }

// Training reports whether the run records new expected output.
func (ctl *Control) Training() bool { return ctl.training }

// Purging reports whether stale output entries are dropped on save.
func (ctl *Control) Purging() bool { return ctl.purging }

// Halted reports whether the run stopped early.
func (ctl *Control) Halted() bool { return ctl.halted }

// Halt stops the run after the current case, printing the given lines.
func (ctl *Control) Halt(lines ...string) {
	for _, line := range lines {
		ctl.report.Notice(line)
	}
	ctl.halted = true
}

// Passed counts a successful case.
func (ctl *Control) Passed(lines ...string) {
	for _, line := range lines {
		ctl.report.Notice(line)
	}
	ctl.successNum++
}

// Failed counts a failed case and halts the run once the failure
// budget is exhausted.
func (ctl *Control) Failed(lines ...string) {
	for _, line := range lines {
		ctl.report.Error(line)
	}
	ctl.failureNum++
	if ctl.maxErrors > 0 && ctl.failureNum >= ctl.maxErrors {
		ctl.halted = true
	}
}

// Updated counts a case whose expected output was re-recorded.
func (ctl *Control) Updated(lines ...string) {
	for _, line := range lines {
		ctl.report.Notice(line)
	}
	ctl.updateNum++
}

// Counts returns the pass, update and failure tallies of the run.
func (ctl *Control) Counts() (passed, updated, failed int) {
	return ctl.successNum, ctl.updateNum, ctl.failureNum
}

// Locate returns the source position of a record loaded by this run.
func (ctl *Control) Locate(r *schema.Record) (load.Location, bool) {
	return ctl.locs.Locate(r)
}

// LoadInput parses an input document, resolving ${NAME} substitution
// against the current state.
func (ctl *Control) LoadInput(path string) (*schema.Record, error) {
	loader := load.NewLoader(ctl.registry.InputTypes(), ctl.state.Vars(), ctl.locs)
	return loader.LoadFile(path)
}

// LoadOutput parses an output document.
func (ctl *Control) LoadOutput(path string) (*schema.Record, error) {
	loader := load.NewLoader(ctl.registry.OutputTypes(), nil, ctl.locs)
	return loader.LoadFile(path)
}

// DumpOutput serializes an output record to path.
func (ctl *Control) DumpOutput(path string, record *schema.Record) error {
	return load.Dump(path, record)
}

// Make constructs the case bound to an input record, paired with the
// given prior output.
func (ctl *Control) Make(input, output *schema.Record) (Case, error) {
	kind, ok := ctl.registry.KindOf(input)
	if !ok {
		return nil, fmt.Errorf("no case kind registered for %q", input.Schema().Owner())
	}
	return kind.New(ctl, input, output), nil
}

// Play runs one case under the current mode and returns the output
// record to reconcile. A halted run, a deselected scope or a satisfied
// skip condition all short-circuit to the prior output.
func (ctl *Control) Play(c Case) *schema.Record {
	if ctl.halted {
		return c.PriorOutput()
	}
	if scoped, ok := c.(Scoped); ok {
		if !scoped.Enter() {
			return c.PriorOutput()
		}
		defer scoped.Leave()
	}
	if ctl.skipped(c.Input()) {
		return c.PriorOutput()
	}
	c.Header()
	if ctl.training {
		return c.Train()
	}
	return c.Check()
}

// skipped evaluates the common skip, if and unless fields of an input
// record against the run state.
func (ctl *Control) skipped(input *schema.Record) bool {
	if input.Has("skip") && input.GetBool("skip") {
		return true
	}
	if input.Has("if_") {
		if cond := input.Get("if_"); cond != nil {
			met, ok := ctl.condition(cond)
			if !ok || !met {
				return true
			}
		}
	}
	if input.Has("unless") {
		if cond := input.Get("unless"); cond != nil {
			met, ok := ctl.condition(cond)
			if !ok || met {
				return true
			}
		}
	}
	return false
}

var identifierRe = regexp.MustCompile(`^[A-Za-z_][0-9A-Za-z_]*$`)

func isIdentifier(s string) bool {
	return identifierRe.MatchString(s)
}

// condition reports whether a state key, or any key of a list, is
// bound to a truthy value. A string condition must be a plain
// identifier; anything else is an expression the run cannot
// evaluate, which halts the run and skips the case (ok is false).
func (ctl *Control) condition(cond any) (met, ok bool) {
	switch cond := cond.(type) {
	case string:
		if !isIdentifier(cond) {
			ctl.Halt(fmt.Sprintf("cannot evaluate condition %q", cond))
			return false, false
		}
		return ctl.state.Truthy(cond), true
	case []any:
		for _, item := range cond {
			if name, good := item.(string); good && ctl.state.Truthy(name) {
				return true, true
			}
		}
		return false, true
	default:
		return false, true
	}
}

// Run drives a whole run from an input document path. When outputPath
// is non-empty it supplies the expected output of the root case; in
// training mode a changed root output is offered for saving there.
// The boolean result reports whether all cases passed.
func (ctl *Control) Run(inputPath, outputPath string) (bool, error) {
	input, err := ctl.LoadInput(inputPath)
	if err != nil {
		return false, err
	}
	var output *schema.Record
	if outputPath != "" {
		if _, statErr := os.Stat(outputPath); statErr == nil {
			out, err := ctl.LoadOutput(outputPath)
			if err != nil {
				return false, err
			}
			if input.Complements(out) {
				output = out
			}
		}
	}
	c, err := ctl.Make(input, output)
	if err != nil {
		return false, err
	}
	ctl.logger.Debug("run started",
		slog.String("input", inputPath),
		slog.Bool("train", ctl.training))

	result := ctl.Play(c)

	if ctl.training && outputPath != "" && result != nil && !result.Equal(output) {
		reply := ctl.report.Pick("",
			ui.Choice{Shortcut: "", Help: "save test output"},
			ui.Choice{Shortcut: "d", Help: "discard test output"})
		if reply == "" {
			ctl.report.Notice(fmt.Sprintf("saving test output to %q", outputPath))
			if err := ctl.DumpOutput(outputPath, result); err != nil {
				return false, err
			}
		}
	}

	ctl.report.Part()
	ctl.report.Notice(ctl.summary())
	ctl.logger.Debug("run finished",
		slog.Int("passed", ctl.successNum),
		slog.Int("updated", ctl.updateNum),
		slog.Int("failed", ctl.failureNum))
	return ctl.failureNum == 0, nil
}

func (ctl *Control) summary() string {
	var parts []string
	if ctl.successNum > 0 {
		parts = append(parts, fmt.Sprintf("%d passed", ctl.successNum))
	}
	if ctl.updateNum > 0 {
		parts = append(parts, fmt.Sprintf("%d updated", ctl.updateNum))
	}
	if ctl.failureNum > 0 {
		parts = append(parts, fmt.Sprintf("%d FAILED!", ctl.failureNum))
	}
	if len(parts) == 0 {
		return "TESTS: none executed"
	}
	return "TESTS: " + strings.Join(parts, ", ")
}
