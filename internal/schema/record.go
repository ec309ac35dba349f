package schema

import (
	"fmt"
	"strings"
)

// Record is an immutable instance of a schema: a tuple of field values
// addressable by attribute name. Records are created during document
// loading or case execution and never mutated afterwards.
type Record struct {
	schema *Schema
	values []any
}

// Schema returns the record's type.
func (r *Record) Schema() *Schema { return r.schema }

// Get returns the value of the named field. Asking for an undeclared
// attribute is a programming error and panics.
func (r *Record) Get(attr string) any {
	idx := r.schema.fieldIndex(attr)
	if idx < 0 {
		panic(fmt.Sprintf("record %s: no field %q", r.schema.name, attr))
	}
	return r.values[idx]
}

// Has reports whether the schema declares the named attribute.
func (r *Record) Has(attr string) bool {
	return r.schema.fieldIndex(attr) >= 0
}

// GetString returns the named field as a string; nil and non-string
// values yield "".
func (r *Record) GetString(attr string) string {
	s, _ := r.Get(attr).(string)
	return s
}

// GetBool returns the named field as a bool; nil and non-bool values
// yield false.
func (r *Record) GetBool(attr string) bool {
	b, _ := r.Get(attr).(bool)
	return b
}

// Clone returns a copy with the given fields replaced. Unknown
// attributes panic.
func (r *Record) Clone(overrides map[string]any) *Record {
	if len(overrides) == 0 {
		return r
	}
	values := make([]any, len(r.values))
	copy(values, r.values)
	for attr, v := range overrides {
		idx := r.schema.fieldIndex(attr)
		if idx < 0 {
			panic(fmt.Sprintf("record %s: no field %q", r.schema.name, attr))
		}
		values[idx] = v
	}
	return &Record{schema: r.schema, values: values}
}

// Equal reports structural equality: same schema and element-wise equal
// value tuples. Source locations never participate.
func (r *Record) Equal(other *Record) bool {
	if r == nil || other == nil {
		return r == other
	}
	if r.schema != other.schema || len(r.values) != len(other.values) {
		return false
	}
	for i, v := range r.values {
		if !valueEqual(v, other.values[i]) {
			return false
		}
	}
	return true
}

// Complements reports whether r and other are paired input and output
// data for the same logical test: they share an owning case kind,
// belong to different roles, and agree on the value of the first
// required field (by attribute) declared by both schemas. A schema may
// install a custom pairing test via the Complement option.
func (r *Record) Complements(other *Record) bool {
	if r == nil || other == nil {
		return false
	}
	if r.schema.complement != nil {
		return r.schema.complement(r, other)
	}
	if r.schema.owner == "" || r.schema.owner != other.schema.owner ||
		r.schema.role == other.schema.role {
		return false
	}
	otherRequired := other.schema.requiredAttrs()
	for _, f := range r.schema.fields {
		if !f.Required || !otherRequired[f.Attr] {
			continue
		}
		return valueEqual(r.Get(f.Attr), other.Get(f.Attr))
	}
	return false
}

// String renders the record as "KEY: value" using the first required
// field, for section headers and diagnostics.
func (r *Record) String() string {
	if r.schema.title != nil {
		return r.schema.title(r)
	}
	f := r.schema.firstRequired()
	if f == nil {
		return r.schema.name
	}
	return fmt.Sprintf("%s: %v", strings.ToUpper(f.Key), r.Get(f.Attr))
}

// Dump returns the ordered (key, value) pairs of fields whose value
// differs from the default, in declaration order. Omitting defaulted
// fields keeps serialized documents terse and diff-friendly.
func (r *Record) Dump() []Pair {
	var pairs []Pair
	for i, f := range r.schema.fields {
		v := r.values[i]
		if !f.Required && valueEqual(v, f.Default) {
			continue
		}
		pairs = append(pairs, Pair{Key: f.Key, Value: v})
	}
	return pairs
}

// Pair is one serialized field.
type Pair struct {
	Key   string
	Value any
}
