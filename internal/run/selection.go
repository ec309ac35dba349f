package run

import (
	"path"
	"strings"
)

// Selection restricts a run to the suites named on the command line.
// Patterns are slash-separated segment paths; each segment may use
// shell-style wildcards, with * standing for any single segment. The
// selection tracks the suite nesting of the run as a stack of frames:
// descending into a suite strips the matched leading segment from
// every live pattern, and a pattern that runs out of segments makes
// the whole subtree unrestricted.
type Selection struct {
	frames []frame
	path   []string
}

type frame struct {
	all      bool
	patterns [][]string
}

// NewSelection builds a selection from command-line suite patterns.
// An empty pattern list selects everything.
func NewSelection(patterns []string) *Selection {
	top := frame{all: len(patterns) == 0}
	for _, p := range patterns {
		segments := strings.Split(strings.Trim(p, "/"), "/")
		if len(segments) == 1 && segments[0] == "" {
			top.all = true
			continue
		}
		top.patterns = append(top.patterns, segments)
	}
	return &Selection{frames: []frame{top}}
}

func (s *Selection) top() frame { return s.frames[len(s.frames)-1] }

// Contains reports whether a suite with the given identifier should
// run at the current nesting level.
func (s *Selection) Contains(id string) bool {
	t := s.top()
	if t.all {
		return true
	}
	for _, p := range t.patterns {
		if matchSegment(p[0], id) {
			return true
		}
	}
	return false
}

// Descend enters the named suite, pushing a frame with the surviving
// patterns stripped of their matched first segment.
func (s *Selection) Descend(id string) {
	t := s.top()
	next := frame{all: t.all}
	if !t.all {
		for _, p := range t.patterns {
			if !matchSegment(p[0], id) {
				continue
			}
			rest := p[1:]
			if len(rest) == 0 {
				next.all = true
				continue
			}
			next.patterns = append(next.patterns, rest)
		}
	}
	s.frames = append(s.frames, next)
	s.path = append(s.path, id)
}

// Ascend leaves the current suite.
func (s *Selection) Ascend() {
	s.frames = s.frames[:len(s.frames)-1]
	s.path = s.path[:len(s.path)-1]
}

// Identify returns the slash-joined path of the suites entered so far.
func (s *Selection) Identify() string {
	return strings.Join(s.path, "/")
}

func matchSegment(pattern, id string) bool {
	ok, err := path.Match(pattern, id)
	return err == nil && ok
}
