package cases

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"go.starlark.net/starlark"

	"github.com/prometheusresearch/pbbt/internal/run"
	"github.com/prometheusresearch/pbbt/internal/schema"
)

// A script case executes a Starlark program and records everything it
// prints. The script field names a file or carries inline source; the
// except field turns an expected failure into a passing case whose
// recorded output is the error text.
var (
	scriptInput = schema.New("script.input", "script", schema.Input,
		inputFields(
			schema.Field("script", schema.String, schema.Required()),
			schema.Field("except_", schema.String, schema.Key("except")),
			ignoreField(),
		),
		schema.Prepare(validateIgnore),
	)

	scriptOutput = schema.New("script.output", "script", schema.Output,
		[]schema.FieldSpec{
			schema.Field("script", schema.String, schema.Required()),
			schema.Field("stdout", schema.String, schema.Required()),
		})
)

type scriptCase struct {
	run.Match
}

func newScript(ctl *run.Control, input, output *schema.Record) run.Case {
	c := &scriptCase{}
	c.Ctl, c.In, c.Out = ctl, input, output
	c.Body = c
	return c
}

// key normalizes the script field for the output record: a file path
// stays as is, inline source collapses to an identifier.
func (c *scriptCase) key() string {
	script := c.In.GetString("script")
	if looksLikeFile(script) {
		return script
	}
	return toIdentifier(script)
}

// source resolves the program text and the name execution errors are
// reported under.
func (c *scriptCase) source() (name, src string, err error) {
	script := c.In.GetString("script")
	if !looksLikeFile(script) {
		return "<script>", script, nil
	}
	data, err := os.ReadFile(script)
	if err != nil {
		return "", "", err
	}
	return script, string(data), nil
}

func (c *scriptCase) Execute() *schema.Record {
	name, src, err := c.source()
	if err != nil {
		c.Ctl.Report().Error(err.Error())
		return nil
	}

	var buf strings.Builder
	thread := &starlark.Thread{
		Name: c.key(),
		Print: func(_ *starlark.Thread, msg string) {
			buf.WriteString(msg)
			buf.WriteString("\n")
		},
	}
	_, execErr := starlark.ExecFile(thread, name, src, nil)

	expected := c.In.GetString("except_")
	switch {
	case execErr != nil && expected == "":
		c.Ctl.Report().Error(scriptError(execErr))
		return nil
	case execErr != nil:
		if !strings.Contains(execErr.Error(), expected) {
			c.Ctl.Report().Error(scriptError(execErr))
			c.Ctl.Report().Warning(fmt.Sprintf("expected an error matching %q", expected))
			return nil
		}
		buf.WriteString(execErr.Error())
		buf.WriteString("\n")
	case expected != "":
		if out := buf.String(); out != "" {
			c.Ctl.Report().Literal(out)
		}
		c.Ctl.Report().Warning(fmt.Sprintf("expected an error matching %q", expected))
		return nil
	}

	// The output mirrors the input's script field verbatim so the two
	// records pair up on the next run.
	return scriptOutput.MustMake(map[string]any{
		"script": c.In.GetString("script"),
		"stdout": buf.String(),
	})
}

func (c *scriptCase) Render(output *schema.Record) string {
	return output.GetString("stdout")
}

// scriptError renders a Starlark failure with its backtrace when one
// is available.
func scriptError(err error) string {
	var evalErr *starlark.EvalError
	if errors.As(err, &evalErr) {
		return evalErr.Backtrace()
	}
	return err.Error()
}
