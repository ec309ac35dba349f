package run

import (
	"github.com/prometheusresearch/pbbt/internal/schema"
	"github.com/prometheusresearch/pbbt/internal/ui"
)

// The echo kind used by these tests: a case that "produces" whatever
// output its constructor was handed, so the control machinery can be
// exercised without real behaviors.
var (
	echoInput = schema.New("echoInput", "echo", schema.Input, []schema.FieldSpec{
		schema.Field("echo", schema.String, schema.Required()),
		schema.Field("skip", schema.Bool),
		schema.Field("if_", schema.OneOf(schema.String, schema.ListOf(schema.String)), schema.Key("if")),
		schema.Field("unless", schema.OneOf(schema.String, schema.ListOf(schema.String))),
		schema.Field("ignore", schema.OneOf(schema.Bool, schema.String)),
	})
	echoOutput = schema.New("echoOutput", "echo", schema.Output, []schema.FieldSpec{
		schema.Field("echo", schema.String, schema.Required()),
		schema.Field("out", schema.String, schema.Required()),
	})
)

func echoIn(text string, extra map[string]any) *schema.Record {
	args := map[string]any{"echo": text}
	for k, v := range extra {
		args[k] = v
	}
	return echoInput.MustMake(args)
}

func echoOut(text, out string) *schema.Record {
	return echoOutput.MustMake(map[string]any{"echo": text, "out": out})
}

// echoCase produces the record in produced (which may be nil) when
// executed and renders outputs as their out field.
type echoCase struct {
	Match
	produced *schema.Record
}

func newEchoCase(ctl *Control, input, output, produced *schema.Record) *echoCase {
	c := &echoCase{produced: produced}
	c.Ctl = ctl
	c.In = input
	c.Out = output
	c.Body = c
	return c
}

func (c *echoCase) Execute() *schema.Record { return c.produced }

func (c *echoCase) Render(output *schema.Record) string {
	return output.GetString("out")
}

func echoRegistry(produced map[string]*schema.Record) *Registry {
	reg, err := NewRegistry(&Kind{
		Name:   "echo",
		Input:  echoInput,
		Output: echoOutput,
		New: func(ctl *Control, input, output *schema.Record) Case {
			return newEchoCase(ctl, input, output, produced[input.GetString("echo")])
		},
	})
	if err != nil {
		panic(err)
	}
	return reg
}

func testControl(reg *Registry, log *ui.Log, train bool) *Control {
	return New(Config{Registry: reg, Report: log, Train: train})
}
