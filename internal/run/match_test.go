package run

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prometheusresearch/pbbt/internal/ui"
)

func TestMatchCheckMissingOutput(t *testing.T) {
	log := ui.NewLog()
	ctl := testControl(echoRegistry(nil), log, false)
	c := newEchoCase(ctl, echoIn("x", nil), nil, echoOut("x", "new"))

	out := c.Check()

	assert.Nil(t, out)
	assert.True(t, log.Contains("cannot find expected test output"))
}

func TestMatchCheckExecutionFailure(t *testing.T) {
	log := ui.NewLog()
	ctl := testControl(echoRegistry(nil), log, false)
	prior := echoOut("x", "old")
	c := newEchoCase(ctl, echoIn("x", nil), prior, nil)

	out := c.Check()

	assert.Same(t, prior, out)
	assert.False(t, ctl.Halted())
	assert.Equal(t, 1, ctl.failureNum)
}

func TestMatchCheckDiff(t *testing.T) {
	log := ui.NewLog()
	ctl := testControl(echoRegistry(nil), log, false)
	prior := echoOut("x", "line one\nline two\n")
	c := newEchoCase(ctl, echoIn("x", nil), prior, echoOut("x", "line one\nline 2\n"))

	c.Check()

	assert.True(t, log.Contains("-line two"))
	assert.True(t, log.Contains("+line 2"))
	assert.False(t, log.Contains("+++"))
}

func TestMatchCheckIgnoreAll(t *testing.T) {
	log := ui.NewLog()
	ctl := testControl(echoRegistry(nil), log, false)
	input := echoIn("x", map[string]any{"ignore": true})
	prior := echoOut("x", "anything")
	c := newEchoCase(ctl, input, prior, echoOut("x", "something else"))

	out := c.Check()

	assert.Same(t, prior, out)
	assert.Equal(t, 1, ctl.successNum)
}

func TestMatchCheckIgnorePattern(t *testing.T) {
	log := ui.NewLog()
	ctl := testControl(echoRegistry(nil), log, false)
	input := echoIn("x", map[string]any{"ignore": `t=\d+`})
	prior := echoOut("x", "done t=100\n")
	c := newEchoCase(ctl, input, prior, echoOut("x", "done t=250\n"))

	c.Check()

	assert.Equal(t, 1, ctl.successNum)
	assert.Equal(t, 0, ctl.failureNum)
	_ = log
}

func TestMatchTrainRecord(t *testing.T) {
	log := ui.NewLog()
	ctl := testControl(echoRegistry(nil), log, true)
	prior := echoOut("x", "old")
	newOut := echoOut("x", "new")
	c := newEchoCase(ctl, echoIn("x", nil), prior, newOut)

	out := c.Train()

	assert.Same(t, newOut, out)
	assert.Equal(t, 1, ctl.updateNum)
}

func TestMatchTrainSkip(t *testing.T) {
	log := ui.NewLog("s")
	ctl := testControl(echoRegistry(nil), log, true)
	prior := echoOut("x", "old")
	c := newEchoCase(ctl, echoIn("x", nil), prior, echoOut("x", "new"))

	out := c.Train()

	assert.Same(t, prior, out)
	assert.Equal(t, 1, ctl.failureNum)
	assert.False(t, ctl.Halted())
}

func TestMatchTrainHalt(t *testing.T) {
	log := ui.NewLog("h")
	ctl := testControl(echoRegistry(nil), log, true)
	prior := echoOut("x", "old")
	c := newEchoCase(ctl, echoIn("x", nil), prior, echoOut("x", "new"))

	out := c.Train()

	assert.Same(t, prior, out)
	assert.True(t, ctl.Halted())
	assert.Equal(t, 1, ctl.failureNum)
}

func TestMatchTrainUnchanged(t *testing.T) {
	log := ui.NewLog()
	ctl := testControl(echoRegistry(nil), log, true)
	prior := echoOut("x", "same")
	c := newEchoCase(ctl, echoIn("x", nil), prior, echoOut("x", "same"))

	out := c.Train()

	assert.Same(t, prior, out)
	assert.Equal(t, 1, ctl.successNum)
	assert.Empty(t, log.Prompts)
}

func TestMatchTrainExecutionFailureHalts(t *testing.T) {
	log := ui.NewLog() // default reply halts
	ctl := testControl(echoRegistry(nil), log, true)
	prior := echoOut("x", "old")
	c := newEchoCase(ctl, echoIn("x", nil), prior, nil)

	out := c.Train()

	assert.Same(t, prior, out)
	assert.True(t, ctl.Halted())
}

func TestMatchTrainExecutionFailureContinues(t *testing.T) {
	log := ui.NewLog("c")
	ctl := testControl(echoRegistry(nil), log, true)
	c := newEchoCase(ctl, echoIn("x", nil), nil, nil)

	out := c.Train()

	assert.Nil(t, out)
	assert.False(t, ctl.Halted())
}

func TestEraseMatches(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		text    string
		want    string
	}{
		{"no groups", `\d+`, "a1b22c", "abc"},
		{"group only", `t=(\d+)s`, "run t=15s done", "run t=s done"},
		{"two groups", `(\d+)m(\d+)s`, "took 3m20s", "took ms"},
		{"multiline anchor", `^pid: .*$`, "pid: 42\nok\n", "\nok\n"},
		{"no match", `zzz`, "abc", "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			re, err := compileIgnore(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, eraseMatches(re, tt.text))
		})
	}
}

func TestEraseMatchesOptionalGroup(t *testing.T) {
	re := regexp.MustCompile(`a(x)?b`)
	assert.Equal(t, "ab ab", eraseMatches(re, "axb ab"))
}
