package cases

import (
	"os"

	"github.com/prometheusresearch/pbbt/internal/run"
	"github.com/prometheusresearch/pbbt/internal/schema"
)

// Filesystem fixture cases: write a file, read one back as matched
// output, remove files, create and remove directory trees. Only the
// read case records output.
var (
	writeInput = schema.New("write.input", "write", schema.Input,
		inputFields(
			schema.Field("write", schema.String, schema.Required()),
			schema.Field("data", schema.String, schema.Required()),
		))

	readInput = schema.New("read.input", "read", schema.Input,
		inputFields(
			schema.Field("read", schema.String, schema.Required()),
			ignoreField(),
		),
		schema.Prepare(validateIgnore),
	)

	readOutput = schema.New("read.output", "read", schema.Output,
		[]schema.FieldSpec{
			schema.Field("read", schema.String, schema.Required()),
			schema.Field("data", schema.String, schema.Required()),
		})

	rmInput = schema.New("rm.input", "rm", schema.Input,
		inputFields(
			schema.Field("rm", schema.OneOf(schema.String, schema.ListOf(schema.String)),
				schema.Required()),
		))

	mkdirInput = schema.New("mkdir.input", "mkdir", schema.Input,
		inputFields(
			schema.Field("mkdir", schema.String, schema.Required()),
		))

	rmdirInput = schema.New("rmdir.input", "rmdir", schema.Input,
		inputFields(
			schema.Field("rmdir", schema.String, schema.Required()),
		))
)

type writeCase struct {
	run.Base
}

func newWrite(ctl *run.Control, input, output *schema.Record) run.Case {
	c := &writeCase{}
	c.Ctl, c.In, c.Out = ctl, input, output
	return c
}

func (c *writeCase) apply() {
	path := c.In.GetString("write")
	if err := os.WriteFile(path, []byte(c.In.GetString("data")), 0o644); err != nil {
		c.Ctl.Failed(err.Error())
	}
}

func (c *writeCase) Check() *schema.Record { c.apply(); return nil }
func (c *writeCase) Train() *schema.Record { c.apply(); return nil }

type readCase struct {
	run.Match
}

func newRead(ctl *run.Control, input, output *schema.Record) run.Case {
	c := &readCase{}
	c.Ctl, c.In, c.Out = ctl, input, output
	c.Body = c
	return c
}

func (c *readCase) Execute() *schema.Record {
	path := c.In.GetString("read")
	data, err := os.ReadFile(path)
	if err != nil {
		c.Ctl.Report().Error(err.Error())
		return nil
	}
	return readOutput.MustMake(map[string]any{
		"read": path,
		"data": string(data),
	})
}

func (c *readCase) Render(output *schema.Record) string {
	return output.GetString("data")
}

type rmCase struct {
	run.Base
}

func newRm(ctl *run.Control, input, output *schema.Record) run.Case {
	c := &rmCase{}
	c.Ctl, c.In, c.Out = ctl, input, output
	return c
}

func (c *rmCase) apply() {
	var paths []string
	switch rm := c.In.Get("rm").(type) {
	case string:
		paths = []string{rm}
	case []any:
		for _, item := range rm {
			if s, ok := item.(string); ok {
				paths = append(paths, s)
			}
		}
	}
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			c.Ctl.Failed(err.Error())
		}
	}
}

func (c *rmCase) Check() *schema.Record { c.apply(); return nil }
func (c *rmCase) Train() *schema.Record { c.apply(); return nil }

type mkdirCase struct {
	run.Base
}

func newMkdir(ctl *run.Control, input, output *schema.Record) run.Case {
	c := &mkdirCase{}
	c.Ctl, c.In, c.Out = ctl, input, output
	return c
}

func (c *mkdirCase) apply() {
	if err := os.MkdirAll(c.In.GetString("mkdir"), 0o755); err != nil {
		c.Ctl.Failed(err.Error())
	}
}

func (c *mkdirCase) Check() *schema.Record { c.apply(); return nil }
func (c *mkdirCase) Train() *schema.Record { c.apply(); return nil }

type rmdirCase struct {
	run.Base
}

func newRmdir(ctl *run.Control, input, output *schema.Record) run.Case {
	c := &rmdirCase{}
	c.Ctl, c.In, c.Out = ctl, input, output
	return c
}

func (c *rmdirCase) apply() {
	if err := os.RemoveAll(c.In.GetString("rmdir")); err != nil {
		c.Ctl.Failed(err.Error())
	}
}

func (c *rmdirCase) Check() *schema.Record { c.apply(); return nil }
func (c *rmdirCase) Train() *schema.Record { c.apply(); return nil }
