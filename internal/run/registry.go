package run

import (
	"fmt"

	"github.com/prometheusresearch/pbbt/internal/schema"
)

// Constructor builds a case instance from its input record and the
// prior output record matched to it (nil when none was recorded).
type Constructor func(ctl *Control, input, output *schema.Record) Case

// Kind describes one registered case kind: its name, the schemas of
// its input and output data, and the constructor that binds them into
// a runnable case. Output is nil for kinds that never record output.
type Kind struct {
	Name   string
	Input  *schema.Schema
	Output *schema.Schema
	New    Constructor
}

// Registry holds the known case kinds in registration order. Order is
// significant: when several input schemas recognize the same set of
// document keys, the kind registered first wins.
type Registry struct {
	kinds  []*Kind
	byName map[string]*Kind
}

// NewRegistry registers the given kinds. Kind names must be unique and
// every kind needs an input schema and a constructor.
func NewRegistry(kinds ...*Kind) (*Registry, error) {
	r := &Registry{byName: make(map[string]*Kind, len(kinds))}
	for _, k := range kinds {
		if k.Name == "" || k.Input == nil || k.New == nil {
			return nil, fmt.Errorf("registry: kind %q is incomplete", k.Name)
		}
		if _, dup := r.byName[k.Name]; dup {
			return nil, fmt.Errorf("registry: duplicate kind %q", k.Name)
		}
		r.kinds = append(r.kinds, k)
		r.byName[k.Name] = k
	}
	return r, nil
}

// Kinds returns the registered kinds in registration order.
func (r *Registry) Kinds() []*Kind { return r.kinds }

// Lookup returns the kind with the given name.
func (r *Registry) Lookup(name string) (*Kind, bool) {
	k, ok := r.byName[name]
	return k, ok
}

// InputTypes returns the input schemas in registration order, the
// detection order used by the document loader.
func (r *Registry) InputTypes() []*schema.Schema {
	types := make([]*schema.Schema, 0, len(r.kinds))
	for _, k := range r.kinds {
		types = append(types, k.Input)
	}
	return types
}

// OutputTypes returns the output schemas of kinds that record output,
// in registration order.
func (r *Registry) OutputTypes() []*schema.Schema {
	var types []*schema.Schema
	for _, k := range r.kinds {
		if k.Output != nil {
			types = append(types, k.Output)
		}
	}
	return types
}

// KindOf resolves the kind owning the given input record.
func (r *Registry) KindOf(input *schema.Record) (*Kind, bool) {
	k, ok := r.byName[input.Schema().Owner()]
	return k, ok
}
