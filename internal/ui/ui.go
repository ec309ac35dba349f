// Package ui defines the reporting boundary between the harness core
// and whatever renders it: an interactive console, a quiet console, or
// a scripted double in tests. The core calls this fixed set of
// operations and nothing else for user-facing output.
package ui

// Choice is one option offered by an interactive prompt. The empty
// shortcut means "just press ENTER" and is conventionally the default
// action.
type Choice struct {
	Shortcut string
	Help     string
}

// Report renders harness progress and collects operator decisions.
type Report interface {
	// Part starts a major section (a suite).
	Part()

	// Section starts a minor section (a single case).
	Section()

	// Header prints an emphasized block identifying the current case.
	Header(text string)

	// Notice prints an informational line.
	Notice(text string)

	// Warning prints a warning line.
	Warning(text string)

	// Error prints an error line.
	Error(text string)

	// Literal prints verbatim text, e.g. captured output or a diff.
	Literal(text string)

	// Pick blocks for a single line of operator input and returns the
	// shortcut of the selected choice.
	Pick(text string, choices ...Choice) string
}
