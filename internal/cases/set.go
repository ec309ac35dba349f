package cases

import (
	"github.com/prometheusresearch/pbbt/internal/run"
	"github.com/prometheusresearch/pbbt/internal/schema"
)

// A set case mutates the run state: a bare name becomes a true flag,
// a mapping merges its bindings. Mutations stay scoped to the
// enclosing suite. Set cases record no output.
var setInput = schema.New("set.input", "set", schema.Input,
	inputFields(
		schema.Field("set_", schema.OneOf(schema.String, schema.MapOf(schema.String, schema.Any)),
			schema.Required(), schema.Key("set")),
	))

type setCase struct {
	run.Base
}

func newSet(ctl *run.Control, input, output *schema.Record) run.Case {
	c := &setCase{}
	c.Ctl, c.In, c.Out = ctl, input, output
	return c
}

func (c *setCase) apply() {
	switch v := c.In.Get("set_").(type) {
	case string:
		c.Ctl.State().Set(v, true)
	case map[string]any:
		c.Ctl.State().Update(v)
	}
}

func (c *setCase) Check() *schema.Record {
	c.apply()
	return nil
}

func (c *setCase) Train() *schema.Record {
	c.apply()
	return nil
}
