package cases

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prometheusresearch/pbbt/internal/run"
	"github.com/prometheusresearch/pbbt/internal/ui"
)

func makeScript(t *testing.T, ctl *run.Control, args map[string]any) *scriptCase {
	t.Helper()
	input, err := scriptInput.Make(args)
	require.NoError(t, err)
	return newScript(ctl, input, nil).(*scriptCase)
}

func TestScriptExecute(t *testing.T) {
	log := ui.NewLog()
	c := makeScript(t, testCtl(log, false), map[string]any{
		"script": "print(\"hello\")\nprint(1 + 2)",
	})

	out := c.Execute()

	require.NotNil(t, out)
	assert.Equal(t, "hello\n3\n", out.GetString("stdout"))
}

func TestScriptFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.star")
	require.NoError(t, os.WriteFile(path, []byte("print(\"from file\")\n"), 0o644))

	log := ui.NewLog()
	c := makeScript(t, testCtl(log, false), map[string]any{"script": path})

	out := c.Execute()

	require.NotNil(t, out)
	assert.Equal(t, "from file\n", out.GetString("stdout"))
	assert.Equal(t, path, out.GetString("script"))
}

func TestScriptFailure(t *testing.T) {
	log := ui.NewLog()
	c := makeScript(t, testCtl(log, false), map[string]any{
		"script": "fail(\"boom\")",
	})

	out := c.Execute()

	assert.Nil(t, out)
	assert.True(t, log.Contains("boom"))
}

func TestScriptExpectedFailure(t *testing.T) {
	log := ui.NewLog()
	c := makeScript(t, testCtl(log, false), map[string]any{
		"script":  "fail(\"boom\")",
		"except_": "boom",
	})

	out := c.Execute()

	require.NotNil(t, out)
	assert.Contains(t, out.GetString("stdout"), "boom")
}

func TestScriptExpectedFailureMissing(t *testing.T) {
	log := ui.NewLog()
	c := makeScript(t, testCtl(log, false), map[string]any{
		"script":  "print(\"fine\")",
		"except_": "boom",
	})

	out := c.Execute()

	assert.Nil(t, out)
	assert.True(t, log.Contains("expected an error"))
}

func TestScriptWrongFailure(t *testing.T) {
	log := ui.NewLog()
	c := makeScript(t, testCtl(log, false), map[string]any{
		"script":  "fail(\"other\")",
		"except_": "boom",
	})

	out := c.Execute()

	assert.Nil(t, out)
	assert.True(t, log.Contains("expected an error"))
}

func TestScriptSyntaxError(t *testing.T) {
	log := ui.NewLog()
	c := makeScript(t, testCtl(log, false), map[string]any{
		"script": "def broken(",
	})

	out := c.Execute()

	assert.Nil(t, out)
	assert.Equal(t, 0, len(log.Prompts))
}

func TestScriptMissingFile(t *testing.T) {
	log := ui.NewLog()
	c := makeScript(t, testCtl(log, false), map[string]any{
		"script": filepath.Join(t.TempDir(), "absent.star"),
	})

	out := c.Execute()

	assert.Nil(t, out)
}
