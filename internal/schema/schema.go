package schema

import (
	"fmt"
	"sort"
	"strings"
)

// Role distinguishes input schemas (test definitions) from output
// schemas (expected or produced results).
type Role string

const (
	Input  Role = "input"
	Output Role = "output"
)

// FieldSpec describes one record field. Specs are immutable once the
// owning schema is built.
type FieldSpec struct {
	// Attr is the attribute name used to address the field in code.
	Attr string

	// Key is the document key; derived from Attr unless overridden.
	Key string

	// Check validates the field value. A nil check accepts anything.
	Check Check

	// Default is the value used when the key is absent.
	Default any

	// Required marks the field as mandatory. Required fields form the
	// schema signature used for record type detection.
	Required bool

	// Hint is a one-line description.
	Hint string
}

// FieldOption customizes a field spec.
type FieldOption func(*FieldSpec)

// Required marks the field mandatory; mandatory fields have no default.
func Required() FieldOption {
	return func(f *FieldSpec) { f.Required = true }
}

// Default sets the value used when the field key is absent.
func Default(v any) FieldOption {
	return func(f *FieldSpec) { f.Default = v }
}

// Key overrides the document key derived from the attribute name.
func Key(key string) FieldOption {
	return func(f *FieldSpec) { f.Key = key }
}

// Hint attaches a one-line description.
func Hint(hint string) FieldOption {
	return func(f *FieldSpec) { f.Hint = hint }
}

// Field builds a field spec. The document key is the kebab-cased
// attribute name: a trailing underscore (used to dodge keyword clashes)
// is stripped and remaining underscores become dashes.
func Field(attr string, check Check, opts ...FieldOption) FieldSpec {
	f := FieldSpec{Attr: attr, Check: check, Key: keyFor(attr)}
	for _, opt := range opts {
		opt(&f)
	}
	return f
}

func keyFor(attr string) string {
	attr = strings.TrimSuffix(attr, "_")
	return strings.ReplaceAll(attr, "_", "-")
}

// Schema is an ordered, fixed set of field specs with an owning case
// kind and a role. Schemas are built once at registration time and are
// immutable afterwards.
type Schema struct {
	name   string
	owner  string
	role   Role
	fields []FieldSpec

	recognize  func(keys []string) bool
	prepare    func(mapping map[string]any) error
	complement func(r, other *Record) bool
	title      func(r *Record) string
}

// Option customizes schema behavior beyond the field list.
type Option func(*Schema)

// Recognize replaces the default signature test (all required keys
// present) with a custom one.
func Recognize(f func(keys []string) bool) Option {
	return func(s *Schema) { s.recognize = f }
}

// Prepare installs a hook run against the raw mapping before field
// consumption; it may normalize keys or reject the mapping outright.
func Prepare(f func(mapping map[string]any) error) Option {
	return func(s *Schema) { s.prepare = f }
}

// Complement replaces the default input/output pairing test.
func Complement(f func(r, other *Record) bool) Option {
	return func(s *Schema) { s.complement = f }
}

// Title replaces the default one-line record description.
func Title(f func(r *Record) string) Option {
	return func(s *Schema) { s.title = f }
}

// New builds a schema from an ordered field list. Field order is
// declaration order; merge inherited fields by concatenating slices.
// Duplicate keys are a programming error and panic at build time.
func New(name, owner string, role Role, fields []FieldSpec, opts ...Option) *Schema {
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if seen[f.Key] {
			panic(fmt.Sprintf("schema %s: duplicate field %q", name, f.Key))
		}
		seen[f.Key] = true
	}
	s := &Schema{name: name, owner: owner, role: role, fields: fields}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the schema name, e.g. "suite.input".
func (s *Schema) Name() string { return s.name }

// Owner returns the name of the case kind that declares the schema.
func (s *Schema) Owner() string { return s.owner }

// Role returns Input or Output.
func (s *Schema) Role() Role { return s.role }

// Fields returns the ordered field specs. Callers must not mutate the
// returned slice.
func (s *Schema) Fields() []FieldSpec { return s.fields }

// Recognizes reports whether a mapping with the given keys is an
// instance of this schema: at least one field is required and every
// required field key is present. This is the signature test driving
// dynamic type detection during document parsing.
func (s *Schema) Recognizes(keys []string) bool {
	if s.recognize != nil {
		return s.recognize(keys)
	}
	keySet := make(map[string]bool, len(keys))
	for _, key := range keys {
		keySet[key] = true
	}
	required := false
	for _, f := range s.fields {
		if !f.Required {
			continue
		}
		required = true
		if !keySet[f.Key] {
			return false
		}
	}
	return required
}

// Load constructs a record from a mapping of field keys to values.
// Every key must be consumed by a field; a leftover key fails the load
// naming the lexicographically smallest one so diagnostics are stable.
func (s *Schema) Load(mapping map[string]any) (*Record, error) {
	if s.prepare != nil {
		if err := s.prepare(mapping); err != nil {
			return nil, err
		}
	}
	values := make([]any, len(s.fields))
	consumed := make(map[string]bool, len(mapping))
	for i, f := range s.fields {
		v, ok := mapping[f.Key]
		if !ok {
			if f.Required {
				return nil, missingField(s.name, f.Key)
			}
			values[i] = f.Default
			continue
		}
		if f.Check != nil && !f.Check.Accepts(v) {
			return nil, badField(s.name, f.Key, f.Check.Shape(), v)
		}
		values[i] = v
		consumed[f.Key] = true
	}
	var leftover []string
	for key := range mapping {
		if !consumed[key] {
			leftover = append(leftover, key)
		}
	}
	if len(leftover) > 0 {
		sort.Strings(leftover)
		return nil, unknownField(s.name, leftover[0])
	}
	return &Record{schema: s, values: values}, nil
}

// Make constructs a record from attribute names, applying defaults and
// enforcing required fields. Used by case kinds building output records
// in code; document loading goes through Load.
func (s *Schema) Make(args map[string]any) (*Record, error) {
	values := make([]any, len(s.fields))
	for i, f := range s.fields {
		v, ok := args[f.Attr]
		if !ok {
			if f.Required {
				return nil, missingField(s.name, f.Key)
			}
			v = f.Default
		}
		values[i] = v
	}
	for attr := range args {
		if s.fieldIndex(attr) < 0 {
			return nil, unknownField(s.name, attr)
		}
	}
	return &Record{schema: s, values: values}, nil
}

// MustMake is Make for statically known field sets; it panics on error.
func (s *Schema) MustMake(args map[string]any) *Record {
	r, err := s.Make(args)
	if err != nil {
		panic(fmt.Sprintf("schema %s: %v", s.name, err))
	}
	return r
}

func (s *Schema) fieldIndex(attr string) int {
	for i, f := range s.fields {
		if f.Attr == attr {
			return i
		}
	}
	return -1
}

// firstRequired returns the first required field spec, or nil.
func (s *Schema) firstRequired() *FieldSpec {
	for i := range s.fields {
		if s.fields[i].Required {
			return &s.fields[i]
		}
	}
	return nil
}

// requiredAttrs returns the set of required attribute names.
func (s *Schema) requiredAttrs() map[string]bool {
	attrs := make(map[string]bool)
	for _, f := range s.fields {
		if f.Required {
			attrs[f.Attr] = true
		}
	}
	return attrs
}
