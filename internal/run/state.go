package run

// State is the mutable variable table of a run. It seeds substitution
// in input documents and feeds the skip conditions of cases. Suites
// scope their mutations: Save snapshots the table on entry, Restore
// discards everything the subtree changed on exit.
type State struct {
	vars  map[string]any
	saved []map[string]any
}

// NewState builds a state table seeded with the given variables.
func NewState(initial map[string]any) *State {
	vars := make(map[string]any, len(initial))
	for k, v := range initial {
		vars[k] = v
	}
	return &State{vars: vars}
}

// Vars returns the live variable table.
func (s *State) Vars() map[string]any { return s.vars }

// Get returns the value bound to name, or nil.
func (s *State) Get(name string) any { return s.vars[name] }

// Set binds name to value in the current scope.
func (s *State) Set(name string, value any) { s.vars[name] = value }

// Update merges the given bindings into the current scope.
func (s *State) Update(vars map[string]any) {
	for k, v := range vars {
		s.vars[k] = v
	}
}

// Truthy reports whether the value bound to name counts as true: any
// binding other than nil, false, zero, or an empty string.
func (s *State) Truthy(name string) bool {
	switch v := s.vars[name].(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	default:
		return true
	}
}

// Save pushes a snapshot of the variable table.
func (s *State) Save() {
	snapshot := make(map[string]any, len(s.vars))
	for k, v := range s.vars {
		snapshot[k] = v
	}
	s.saved = append(s.saved, snapshot)
}

// Restore replaces the variable table with the last snapshot. Save and
// Restore are always paired, even when a run halts midway.
func (s *State) Restore() {
	last := len(s.saved) - 1
	s.vars = s.saved[last]
	s.saved = s.saved[:last]
}
