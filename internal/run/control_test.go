package run

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prometheusresearch/pbbt/internal/schema"
	"github.com/prometheusresearch/pbbt/internal/ui"
)

func TestControlSkip(t *testing.T) {
	tests := []struct {
		name    string
		extra   map[string]any
		vars    map[string]any
		skipped bool
	}{
		{"plain", nil, nil, false},
		{"skip", map[string]any{"skip": true}, nil, true},
		{"if unmet", map[string]any{"if_": "flag"}, nil, true},
		{"if met", map[string]any{"if_": "flag"}, map[string]any{"flag": true}, false},
		{"if falsy", map[string]any{"if_": "flag"}, map[string]any{"flag": ""}, true},
		{"unless met", map[string]any{"unless": "flag"}, map[string]any{"flag": true}, true},
		{"unless unmet", map[string]any{"unless": "flag"}, nil, false},
		{"if any of list", map[string]any{"if_": []any{"a", "b"}}, map[string]any{"b": 1}, false},
		{"if none of list", map[string]any{"if_": []any{"a", "b"}}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctl := New(Config{Registry: echoRegistry(nil), Report: ui.NewLog(), Variables: tt.vars})
			assert.Equal(t, tt.skipped, ctl.skipped(echoIn("x", tt.extra)))
		})
	}
}

func TestControlConditionExpressionHalts(t *testing.T) {
	// A string condition that is not a plain state key is an
	// expression the run cannot evaluate: the case is skipped and the
	// whole run halts with a notice.
	for _, field := range []string{"if_", "unless"} {
		t.Run(field, func(t *testing.T) {
			log := ui.NewLog()
			ctl := New(Config{Registry: echoRegistry(nil), Report: log})

			assert.True(t, ctl.skipped(echoIn("x", map[string]any{field: "flag and other"})))
			assert.True(t, ctl.Halted())
			assert.True(t, log.Contains(`cannot evaluate condition "flag and other"`))
		})
	}
}

func TestIsIdentifier(t *testing.T) {
	for _, s := range []string{"flag", "_x", "CamelCase", "a1"} {
		assert.True(t, isIdentifier(s), s)
	}
	for _, s := range []string{"", "1x", "with space", "with-dash", "a.b"} {
		assert.False(t, isIdentifier(s), s)
	}
}

func TestControlPlaySkippedKeepsPrior(t *testing.T) {
	log := ui.NewLog()
	ctl := testControl(echoRegistry(nil), log, false)
	prior := echoOut("x", "old")
	c := newEchoCase(ctl, echoIn("x", map[string]any{"skip": true}), prior, nil)

	out := ctl.Play(c)

	assert.Same(t, prior, out)
	assert.Empty(t, log.Lines)
}

func TestControlPlayHalted(t *testing.T) {
	log := ui.NewLog()
	ctl := testControl(echoRegistry(nil), log, false)
	ctl.Halt("stopping")
	prior := echoOut("x", "old")
	c := newEchoCase(ctl, echoIn("x", nil), prior, echoOut("x", "new"))

	out := ctl.Play(c)

	assert.Same(t, prior, out)
	assert.True(t, ctl.Halted())
}

func TestControlMaxErrors(t *testing.T) {
	ctl := New(Config{Registry: echoRegistry(nil), Report: ui.NewLog(), MaxErrors: 2})

	ctl.Failed()
	assert.False(t, ctl.Halted())
	ctl.Failed()
	assert.True(t, ctl.Halted())
}

func TestControlSummary(t *testing.T) {
	ctl := testControl(echoRegistry(nil), ui.NewLog(), false)
	ctl.Passed()
	ctl.Passed()
	ctl.Updated()
	ctl.Failed()

	assert.Equal(t, "TESTS: 2 passed, 1 updated, 1 FAILED!", ctl.summary())
}

func TestControlSummaryEmpty(t *testing.T) {
	ctl := testControl(echoRegistry(nil), ui.NewLog(), false)
	assert.Equal(t, "TESTS: none executed", ctl.summary())
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestControlRunCheck(t *testing.T) {
	dir := t.TempDir()
	inputPath := writeFile(t, dir, "input.yaml", "echo: greet\n")
	outputPath := writeFile(t, dir, "output.yaml", "echo: greet\nout: hello\n")

	produced := map[string]*schema.Record{"greet": echoOut("greet", "hello")}
	log := ui.NewLog()
	ctl := testControl(echoRegistry(produced), log, false)

	ok, err := ctl.Run(inputPath, outputPath)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, log.Contains("TESTS: 1 passed"))
}

func TestControlRunCheckFailure(t *testing.T) {
	dir := t.TempDir()
	inputPath := writeFile(t, dir, "input.yaml", "echo: greet\n")
	outputPath := writeFile(t, dir, "output.yaml", "echo: greet\nout: hello\n")

	produced := map[string]*schema.Record{"greet": echoOut("greet", "goodbye")}
	log := ui.NewLog()
	ctl := testControl(echoRegistry(produced), log, false)

	ok, err := ctl.Run(inputPath, outputPath)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, log.Contains("unexpected test output"))
	assert.True(t, log.Contains("TESTS: 1 FAILED!"))
}

func TestControlRunTrainSaves(t *testing.T) {
	dir := t.TempDir()
	inputPath := writeFile(t, dir, "input.yaml", "echo: greet\n")
	outputPath := filepath.Join(dir, "output.yaml")

	produced := map[string]*schema.Record{"greet": echoOut("greet", "hello")}
	log := ui.NewLog() // answers all prompts with the default: record, save
	ctl := testControl(echoRegistry(produced), log, true)

	ok, err := ctl.Run(inputPath, outputPath)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, log.Contains("1 updated"))

	data, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "echo: greet")
	assert.Contains(t, string(data), "out: hello")

	// A check run against the freshly trained output passes.
	log = ui.NewLog()
	ctl = testControl(echoRegistry(produced), log, false)
	ok, err = ctl.Run(inputPath, outputPath)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, log.Contains("TESTS: 1 passed"))
}

func TestControlRunTrainDiscard(t *testing.T) {
	dir := t.TempDir()
	inputPath := writeFile(t, dir, "input.yaml", "echo: greet\n")
	outputPath := filepath.Join(dir, "output.yaml")

	produced := map[string]*schema.Record{"greet": echoOut("greet", "hello")}
	log := ui.NewLog("", "d") // record the case, discard the document
	ctl := testControl(echoRegistry(produced), log, true)

	ok, err := ctl.Run(inputPath, outputPath)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoFileExists(t, outputPath)
}

func TestControlRunMissingInput(t *testing.T) {
	ctl := testControl(echoRegistry(nil), ui.NewLog(), false)
	_, err := ctl.Run(filepath.Join(t.TempDir(), "absent.yaml"), "")
	assert.Error(t, err)
}
