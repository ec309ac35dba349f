package load

import "fmt"

// ParseError reports a malformed document: bad structure, an
// unrecognized key set, or a field that fails its schema. It carries
// the originating file and line when available.
type ParseError struct {
	Message string
	File    string
	Line    int // 1-based; 0 when unknown
	Err     error
}

func (e *ParseError) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s (%q, line %d)", msg, e.File, e.Line)
	}
	if e.File != "" {
		return fmt.Sprintf("%s (%q)", msg, e.File)
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

func parseErr(file string, line int, format string, args ...any) *ParseError {
	return &ParseError{Message: fmt.Sprintf(format, args...), File: file, Line: line}
}
