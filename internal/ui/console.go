package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

const ruleWidth = 72

// Console renders reports as plain text and reads operator choices one
// line at a time. It is the standard interactive renderer.
type Console struct {
	in  *bufio.Reader
	out io.Writer
}

// NewConsole builds a console over the given streams; nil streams
// default to stdin/stdout.
func NewConsole(in io.Reader, out io.Writer) *Console {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &Console{in: bufio.NewReader(in), out: out}
}

func (c *Console) Part() {
	fmt.Fprintln(c.out, strings.Repeat("=", ruleWidth))
}

func (c *Console) Section() {
	fmt.Fprintln(c.out, strings.Repeat("-", ruleWidth))
}

func (c *Console) Header(text string) { c.prefixed("  ", text) }

func (c *Console) Notice(text string) { c.prefixed("- ", text) }

func (c *Console) Warning(text string) { c.prefixed("* ", text) }

func (c *Console) Error(text string) { c.prefixed("! ", text) }

func (c *Console) Literal(text string) { c.prefixed("  ", text) }

func (c *Console) prefixed(prefix, text string) {
	for _, line := range strings.Split(strings.TrimSuffix(text, "\n"), "\n") {
		fmt.Fprintln(c.out, prefix+line)
	}
}

// Pick prompts with the available choices and loops until the operator
// enters one of the shortcuts (the empty line selects the default).
func (c *Console) Pick(text string, choices ...Choice) string {
	if text != "" {
		c.prefixed("> ", text)
	}
	shortcuts := make(map[string]bool, len(choices))
	var question strings.Builder
	question.WriteString("Press")
	for i, choice := range choices {
		shortcuts[choice.Shortcut] = true
		if i > 0 {
			question.WriteString(",")
		}
		if choice.Shortcut != "" {
			fmt.Fprintf(&question, " %q+ENTER", choice.Shortcut)
		} else {
			question.WriteString(" ENTER")
		}
		question.WriteString(" to " + choice.Help)
	}
	fmt.Fprintln(c.out, "> "+question.String())
	for {
		fmt.Fprint(c.out, "> ")
		line, err := c.in.ReadString('\n')
		if err != nil && line == "" {
			// Input exhausted; fall back to the default choice.
			return ""
		}
		line = strings.ToLower(strings.TrimSpace(line))
		if shortcuts[line] {
			return line
		}
		if err != nil {
			return ""
		}
	}
}
