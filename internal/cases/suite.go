package cases

import (
	"fmt"
	"os"

	"github.com/prometheusresearch/pbbt/internal/run"
	"github.com/prometheusresearch/pbbt/internal/schema"
)

// A suite groups nested cases under a selection identifier and an
// optional dedicated output document. Its input is recognized by the
// presence of the tests key alone, so partially filled suites still
// parse to a useful diagnostic.
var (
	suiteInput = schema.New("suite.input", "suite", schema.Input,
		inputFields(
			schema.Field("title", schema.String, schema.Required()),
			schema.Field("suite", schema.String),
			schema.Field("output", schema.String),
			schema.Field("tests", schema.ListOf(schema.AnyRecord), schema.Required()),
		),
		schema.Recognize(func(keys []string) bool {
			for _, key := range keys {
				if key == "tests" {
					return true
				}
			}
			return false
		}),
		schema.Prepare(func(mapping map[string]any) error {
			if _, ok := mapping["suite"]; ok {
				return nil
			}
			title, _ := mapping["title"].(string)
			if id := toIdentifier(title); id != "" {
				mapping["suite"] = id
			}
			return nil
		}),
		schema.Complement(suiteComplement),
	)

	suiteOutput = schema.New("suite.output", "suite", schema.Output,
		[]schema.FieldSpec{
			schema.Field("suite", schema.String, schema.Required()),
			schema.Field("tests", schema.ListOf(schema.AnyRecord), schema.Required()),
		},
		schema.Complement(suiteComplement),
	)
)

// suiteComplement pairs suite input and output on the suite
// identifier; the default rule would compare the tests lists.
func suiteComplement(r, other *schema.Record) bool {
	if r.Schema().Owner() != other.Schema().Owner() ||
		r.Schema().Role() == other.Schema().Role() {
		return false
	}
	return r.GetString("suite") == other.GetString("suite")
}

type suiteCase struct {
	run.Base
}

func newSuite(ctl *run.Control, input, output *schema.Record) run.Case {
	c := &suiteCase{}
	c.Ctl, c.In, c.Out = ctl, input, output
	return c
}

func (c *suiteCase) id() string { return c.In.GetString("suite") }

// Enter binds the suite's selection segment and state scope. A suite
// outside the current selection does not run at all.
func (c *suiteCase) Enter() bool {
	if !c.Ctl.Selection().Contains(c.id()) {
		return false
	}
	c.Ctl.Selection().Descend(c.id())
	c.Ctl.State().Save()
	return true
}

func (c *suiteCase) Leave() {
	c.Ctl.State().Restore()
	c.Ctl.Selection().Ascend()
}

func (c *suiteCase) Header() {
	text := fmt.Sprintf("%s [%s]", c.In.GetString("title"), c.Ctl.Selection().Identify())
	if loc, ok := c.Ctl.Locate(c.In); ok {
		text += "\n(" + loc.String() + ")"
	}
	c.Ctl.Report().Part()
	c.Ctl.Report().Header(text)
}

// loadOutput resolves the suite's expected output: the dedicated
// output document when the suite declares one and it parses to a
// complementary record, otherwise whatever the parent matched.
func (c *suiteCase) loadOutput() (output *schema.Record, path string, fromFile bool) {
	path = c.In.GetString("output")
	if path == "" {
		return c.Out, "", false
	}
	if _, err := os.Stat(path); err != nil {
		return c.Out, path, false
	}
	out, err := c.Ctl.LoadOutput(path)
	if err != nil {
		c.Ctl.Report().Error(err.Error())
		c.Ctl.Halt()
		return c.Out, path, false
	}
	if !c.In.Complements(out) {
		return c.Out, path, false
	}
	return out, path, true
}

// build pairs the suite's test inputs with the prior output list and
// constructs their cases.
func (c *suiteCase) build(output *schema.Record) ([]run.Case, []*schema.Record) {
	inputs := recordList(c.In.Get("tests"))
	var prior []*schema.Record
	if output != nil {
		prior = recordList(output.Get("tests"))
	}
	paired := run.PairOutputs(inputs, prior)
	cases := make([]run.Case, 0, len(inputs))
	for i, input := range inputs {
		nested, err := c.Ctl.Make(input, paired[i])
		if err != nil {
			c.Ctl.Report().Error(err.Error())
			c.Ctl.Halt()
			continue
		}
		cases = append(cases, nested)
	}
	return cases, prior
}

func (c *suiteCase) Check() *schema.Record {
	output, _, _ := c.loadOutput()
	cases, _ := c.build(output)
	for _, nested := range cases {
		c.Ctl.Play(nested)
	}
	return c.Out
}

// Train runs the nested cases and reconciles their outputs into a new
// output document. Cases skipped after a halt contribute unchanged
// entries, so the reconciled list keeps their prior records in place.
func (c *suiteCase) Train() *schema.Record {
	output, path, fromFile := c.loadOutput()
	cases, prior := c.build(output)

	entries := make([]run.Entry, 0, len(cases))
	for _, nested := range cases {
		result := c.Ctl.Play(nested)
		entries = append(entries, run.Entry{
			Prior:   nested.PriorOutput(),
			New:     result,
			Changed: !result.Equal(nested.PriorOutput()),
		})
	}

	purge := c.Ctl.Purging() && !c.Ctl.Halted()
	merged := run.Merge(prior, entries, purge)

	var newOutput *schema.Record
	switch {
	case len(merged) == 0:
		newOutput = nil
	case output != nil && sameRecords(merged, recordList(output.Get("tests"))):
		newOutput = output
	default:
		newOutput = suiteOutput.MustMake(map[string]any{
			"suite": c.id(),
			"tests": anyList(merged),
		})
	}

	if path == "" {
		return newOutput
	}
	if fromFile && newOutput.Equal(output) {
		return nil
	}
	if !fromFile && newOutput == nil {
		return nil
	}
	reply := c.Ctl.Report().Pick("",
		choice("", "save test output"),
		choice("d", "discard test output"))
	if reply == "d" {
		return c.Out
	}
	c.Ctl.Report().Notice(fmt.Sprintf("saving test output to %q", path))
	if newOutput == nil {
		if err := os.Remove(path); err != nil {
			c.Ctl.Report().Error(err.Error())
		}
		return nil
	}
	if err := c.Ctl.DumpOutput(path, newOutput); err != nil {
		c.Ctl.Report().Error(err.Error())
		c.Ctl.Halt()
	}
	return nil
}

func recordList(v any) []*schema.Record {
	items, _ := v.([]any)
	records := make([]*schema.Record, 0, len(items))
	for _, item := range items {
		if r, ok := item.(*schema.Record); ok {
			records = append(records, r)
		}
	}
	return records
}

func anyList(records []*schema.Record) []any {
	items := make([]any, len(records))
	for i, r := range records {
		items[i] = r
	}
	return items
}

func sameRecords(a, b []*schema.Record) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
