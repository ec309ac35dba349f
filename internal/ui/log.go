package ui

import (
	"fmt"
	"strings"
)

// Log is a scripted report for tests: it records everything it is told
// and answers prompts from a canned list of replies.
type Log struct {
	// Lines collects every rendered line, tagged with its kind.
	Lines []string

	// Replies are consumed in order by Pick; when exhausted, Pick
	// returns the default (empty) shortcut.
	Replies []string

	// Prompts collects the option sets offered to the operator.
	Prompts [][]Choice
}

// NewLog builds a scripted report that will answer prompts with the
// given replies.
func NewLog(replies ...string) *Log {
	return &Log{Replies: replies}
}

func (l *Log) add(kind, text string) {
	l.Lines = append(l.Lines, fmt.Sprintf("%s: %s", kind, text))
}

func (l *Log) Part()               { l.Lines = append(l.Lines, "part") }
func (l *Log) Section()            { l.Lines = append(l.Lines, "section") }
func (l *Log) Header(text string)  { l.add("header", text) }
func (l *Log) Notice(text string)  { l.add("notice", text) }
func (l *Log) Warning(text string) { l.add("warning", text) }
func (l *Log) Error(text string)   { l.add("error", text) }
func (l *Log) Literal(text string) { l.add("literal", text) }

func (l *Log) Pick(text string, choices ...Choice) string {
	l.Prompts = append(l.Prompts, choices)
	if len(l.Replies) == 0 {
		return ""
	}
	reply := l.Replies[0]
	l.Replies = l.Replies[1:]
	return reply
}

// Contains reports whether any recorded line contains the substring.
func (l *Log) Contains(substr string) bool {
	for _, line := range l.Lines {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}
