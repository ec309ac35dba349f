package cases

import (
	"github.com/prometheusresearch/pbbt/internal/run"
	"github.com/prometheusresearch/pbbt/internal/schema"
)

// An include case splices another input document into the run. Its
// output wraps whatever the included case records, so a trained
// include round-trips through the parent suite's output document.
var (
	includeInput = schema.New("include.input", "include", schema.Input,
		inputFields(
			schema.Field("include", schema.String, schema.Required()),
		))

	includeOutput = schema.New("include.output", "include", schema.Output,
		[]schema.FieldSpec{
			schema.Field("include", schema.String, schema.Required()),
			schema.Field("output", schema.AnyRecord, schema.Required()),
		})
)

type includeCase struct {
	run.Base
}

func newInclude(ctl *run.Control, input, output *schema.Record) run.Case {
	c := &includeCase{}
	c.Ctl, c.In, c.Out = ctl, input, output
	return c
}

// Header is silent: the included case renders its own.
func (c *includeCase) Header() {}

// inner loads the included document and binds it to the wrapped prior
// output, when one was recorded and still matches.
func (c *includeCase) inner() (run.Case, *schema.Record, bool) {
	input, err := c.Ctl.LoadInput(c.In.GetString("include"))
	if err != nil {
		c.Ctl.Failed(err.Error())
		return nil, nil, false
	}
	var prior *schema.Record
	if c.Out != nil {
		if wrapped, ok := c.Out.Get("output").(*schema.Record); ok && input.Complements(wrapped) {
			prior = wrapped
		}
	}
	nested, err := c.Ctl.Make(input, prior)
	if err != nil {
		c.Ctl.Failed(err.Error())
		return nil, nil, false
	}
	return nested, prior, true
}

func (c *includeCase) Check() *schema.Record {
	nested, _, ok := c.inner()
	if !ok {
		return c.Out
	}
	c.Ctl.Play(nested)
	return c.Out
}

func (c *includeCase) Train() *schema.Record {
	nested, prior, ok := c.inner()
	if !ok {
		return c.Out
	}
	result := c.Ctl.Play(nested)
	if result == nil {
		return nil
	}
	if c.Out != nil && result.Equal(prior) {
		return c.Out
	}
	return includeOutput.MustMake(map[string]any{
		"include": c.In.GetString("include"),
		"output":  result,
	})
}
