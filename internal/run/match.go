package run

import (
	"regexp"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/prometheusresearch/pbbt/internal/schema"
	"github.com/prometheusresearch/pbbt/internal/ui"
)

// Producer is the behavior side of a matching case: it runs the case
// and renders an output record to comparable text. Execute returns nil
// when the behavior itself failed.
type Producer interface {
	Execute() *schema.Record
	Render(output *schema.Record) string
}

// Match implements the check and train state machines shared by every
// case kind that records output: run the behavior, render old and new
// output, compare the sanitized texts, and in training mode let the
// operator record, skip or halt on a difference.
type Match struct {
	Base
	Body Producer
}

// Check compares the produced output against the recorded expectation.
func (m *Match) Check() *schema.Record {
	if m.Out == nil {
		m.Ctl.Failed("cannot find expected test output")
		return nil
	}
	newOut := m.Body.Execute()
	if newOut == nil {
		m.Ctl.Failed()
		return m.Out
	}
	text := m.Body.Render(m.Out)
	newText := m.Body.Render(newOut)
	if m.sanitize(text) != m.sanitize(newText) {
		m.display(text, newText)
		m.Ctl.Failed("unexpected test output")
		return m.Out
	}
	m.Ctl.Passed()
	return m.Out
}

// Train runs the behavior and, when the output is new or different,
// asks the operator whether to record it.
func (m *Match) Train() *schema.Record {
	newOut := m.Body.Execute()
	if newOut == nil {
		m.Ctl.Failed()
		reply := m.Ctl.Report().Pick("",
			ui.Choice{Shortcut: "", Help: "halt"},
			ui.Choice{Shortcut: "c", Help: "continue"})
		if reply == "" {
			m.Ctl.Halt()
		}
		return m.Out
	}
	newText := m.Body.Render(newOut)
	if m.Out != nil {
		text := m.Body.Render(m.Out)
		if m.sanitize(text) == m.sanitize(newText) {
			m.Ctl.Passed()
			return m.Out
		}
		m.display(text, newText)
	} else {
		m.Ctl.Report().Notice("new test output")
		m.Ctl.Report().Literal(newText)
	}
	reply := m.Ctl.Report().Pick("",
		ui.Choice{Shortcut: "", Help: "record test output"},
		ui.Choice{Shortcut: "s", Help: "skip"},
		ui.Choice{Shortcut: "h", Help: "halt"})
	switch reply {
	case "":
		m.Ctl.Updated()
		return newOut
	case "h":
		m.Ctl.Halt()
	}
	m.Ctl.Failed()
	return m.Out
}

// sanitize applies the case's ignore field before comparison: true
// wipes the whole text, a regular expression erases every match (or,
// when the expression captures groups, just the captured spans).
func (m *Match) sanitize(text string) string {
	if !m.In.Has("ignore") {
		return text
	}
	switch ignore := m.In.Get("ignore").(type) {
	case bool:
		if ignore {
			return ""
		}
	case string:
		re, err := compileIgnore(ignore)
		if err != nil {
			return text
		}
		return eraseMatches(re, text)
	}
	return text
}

// compileIgnore compiles an ignore pattern in multi-line mode, so ^
// and $ anchor on each line of the rendered output.
func compileIgnore(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile("(?m)" + pattern)
}

// eraseMatches removes the matched spans from text: whole matches for
// group-free expressions, captured groups otherwise.
func eraseMatches(re *regexp.Regexp, text string) string {
	matches := re.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}
	type span struct{ lo, hi int }
	var cuts []span
	for _, match := range matches {
		if re.NumSubexp() == 0 {
			cuts = append(cuts, span{match[0], match[1]})
			continue
		}
		for g := 1; g <= re.NumSubexp(); g++ {
			lo, hi := match[2*g], match[2*g+1]
			if lo >= 0 && lo < hi {
				cuts = append(cuts, span{lo, hi})
			}
		}
	}
	if len(cuts) == 0 {
		return text
	}
	var b strings.Builder
	pos := 0
	for _, cut := range cuts {
		if cut.lo > pos {
			b.WriteString(text[pos:cut.lo])
		}
		if cut.hi > pos {
			pos = cut.hi
		}
	}
	b.WriteString(text[pos:])
	return b.String()
}

// display renders a unified diff of the expected and observed output.
func (m *Match) display(text, newText string) {
	diff := difflib.UnifiedDiff{
		A:       difflib.SplitLines(text),
		B:       difflib.SplitLines(newText),
		Context: 2,
	}
	rendered, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		m.Ctl.Report().Literal(newText)
		return
	}
	// Drop the file header lines; there are no files to name.
	lines := strings.SplitN(rendered, "\n", 3)
	if len(lines) == 3 {
		rendered = lines[2]
	}
	m.Ctl.Report().Notice("expected test output differs from the actual output")
	m.Ctl.Report().Literal(strings.TrimRight(rendered, "\n"))
}
