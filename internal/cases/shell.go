package cases

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/prometheusresearch/pbbt/internal/run"
	"github.com/prometheusresearch/pbbt/internal/schema"
)

// A shell case runs a command and records its combined stdout and
// stderr. The command is either a string, split on whitespace, or an
// argument list; no shell interpretation happens either way.
var (
	shellCommand = schema.OneOf(schema.String, schema.ListOf(schema.String))

	shellInput = schema.New("sh.input", "sh", schema.Input,
		inputFields(
			schema.Field("sh", shellCommand, schema.Required()),
			schema.Field("cd", schema.String),
			schema.Field("environ", schema.MapOf(schema.String, schema.String)),
			schema.Field("stdin", schema.String, schema.Default("")),
			schema.Field("exit", schema.Int, schema.Default(0)),
			ignoreField(),
		),
		schema.Prepare(validateIgnore),
	)

	shellOutput = schema.New("sh.output", "sh", schema.Output,
		[]schema.FieldSpec{
			schema.Field("sh", shellCommand, schema.Required()),
			schema.Field("stdout", schema.String, schema.Required()),
		})
)

type shellCase struct {
	run.Match
}

func newShell(ctl *run.Control, input, output *schema.Record) run.Case {
	c := &shellCase{}
	c.Ctl, c.In, c.Out = ctl, input, output
	c.Body = c
	return c
}

func (c *shellCase) command() []string {
	switch sh := c.In.Get("sh").(type) {
	case string:
		return strings.Fields(sh)
	case []any:
		args := make([]string, 0, len(sh))
		for _, item := range sh {
			if s, ok := item.(string); ok {
				args = append(args, s)
			}
		}
		return args
	}
	return nil
}

func (c *shellCase) Execute() *schema.Record {
	args := c.command()
	if len(args) == 0 {
		c.Ctl.Report().Error("missing command")
		return nil
	}
	cmd := exec.CommandContext(c.Ctl.Context(), args[0], args[1:]...)
	cmd.Dir = c.In.GetString("cd")
	if environ, ok := c.In.Get("environ").(map[string]any); ok && len(environ) > 0 {
		env := os.Environ()
		for name, value := range environ {
			env = append(env, fmt.Sprintf("%s=%v", name, value))
		}
		cmd.Env = env
	}
	if stdin := c.In.GetString("stdin"); stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			c.Ctl.Report().Error(err.Error())
			return nil
		}
		exitCode = exitErr.ExitCode()
	}

	stdout := buf.String()
	expected, _ := c.In.Get("exit").(int)
	if exitCode != expected {
		if stdout != "" {
			c.Ctl.Report().Literal(stdout)
		}
		c.Ctl.Report().Warning(fmt.Sprintf("unexpected exit code (%d)", exitCode))
		return nil
	}
	return shellOutput.MustMake(map[string]any{
		"sh":     c.In.Get("sh"),
		"stdout": stdout,
	})
}

func (c *shellCase) Render(output *schema.Record) string {
	return output.GetString("stdout")
}
