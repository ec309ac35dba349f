package schema

import (
	"fmt"
	"strings"
)

// Check validates a generic document value against an expected shape.
//
// The set of checks is closed: exact scalar types, Maybe (value or
// absent), OneOf (union), ChoiceOf (literal set), ListOf, TupleOf,
// MapOf, and the two record shapes AnyRecord and ListOf(AnyRecord).
// There is no open extension point; case kinds compose their field
// shapes from these combinators only.
type Check interface {
	// Accepts reports whether the value matches the expected shape.
	Accepts(v any) bool

	// Shape returns a human-readable name for diagnostics,
	// e.g. "oneof(str, listof(str))".
	Shape() string
}

// Scalar type checks.
var (
	String Check = stringCheck{}
	Int    Check = intCheck{}
	Bool   Check = boolCheck{}

	// Any accepts every value, absence included.
	Any Check = anyCheck{}

	// AnyRecord matches a nested record of any registered schema.
	// Fields carrying this check (or ListOf(AnyRecord)) make the loader
	// switch into record-detection context while descending.
	AnyRecord Check = recordCheck{}
)

type anyCheck struct{}

func (anyCheck) Accepts(v any) bool { return true }
func (anyCheck) Shape() string      { return "any" }

type stringCheck struct{}

func (stringCheck) Accepts(v any) bool { _, ok := v.(string); return ok }
func (stringCheck) Shape() string      { return "str" }

type intCheck struct{}

func (intCheck) Accepts(v any) bool { _, ok := v.(int); return ok }
func (intCheck) Shape() string      { return "int" }

type boolCheck struct{}

func (boolCheck) Accepts(v any) bool { _, ok := v.(bool); return ok }
func (boolCheck) Shape() string      { return "bool" }

type recordCheck struct{}

func (recordCheck) Accepts(v any) bool { _, ok := v.(*Record); return ok }
func (recordCheck) Shape() string      { return "record" }

// Maybe accepts a nil value or a value matching the inner check.
// Used for fields whose absence is meaningful.
func Maybe(inner Check) Check { return maybeCheck{inner} }

type maybeCheck struct{ inner Check }

func (c maybeCheck) Accepts(v any) bool { return v == nil || c.inner.Accepts(v) }
func (c maybeCheck) Shape() string      { return fmt.Sprintf("maybe(%s)", c.inner.Shape()) }

// OneOf accepts a value matching any of the given checks.
func OneOf(checks ...Check) Check { return oneOfCheck{checks} }

type oneOfCheck struct{ checks []Check }

func (c oneOfCheck) Accepts(v any) bool {
	for _, check := range c.checks {
		if check.Accepts(v) {
			return true
		}
	}
	return false
}

func (c oneOfCheck) Shape() string {
	names := make([]string, len(c.checks))
	for i, check := range c.checks {
		names[i] = check.Shape()
	}
	return fmt.Sprintf("oneof(%s)", strings.Join(names, ", "))
}

// ChoiceOf accepts only the given literal values.
func ChoiceOf(values ...any) Check { return choiceCheck{values} }

type choiceCheck struct{ values []any }

func (c choiceCheck) Accepts(v any) bool {
	for _, value := range c.values {
		if valueEqual(v, value) {
			return true
		}
	}
	return false
}

func (c choiceCheck) Shape() string {
	names := make([]string, len(c.values))
	for i, value := range c.values {
		names[i] = fmt.Sprintf("%v", value)
	}
	return fmt.Sprintf("choiceof(%s)", strings.Join(names, ", "))
}

// ListOf accepts a homogeneous sequence whose items all match the item
// check.
func ListOf(item Check) Check { return listCheck{item} }

type listCheck struct{ item Check }

func (c listCheck) Accepts(v any) bool {
	items, ok := v.([]any)
	if !ok {
		return false
	}
	for _, item := range items {
		if !c.item.Accepts(item) {
			return false
		}
	}
	return true
}

func (c listCheck) Shape() string { return fmt.Sprintf("listof(%s)", c.item.Shape()) }

// TupleOf accepts a sequence of exactly len(items) values, each matching
// the check at its position.
func TupleOf(items ...Check) Check { return tupleCheck{items} }

type tupleCheck struct{ items []Check }

func (c tupleCheck) Accepts(v any) bool {
	values, ok := v.([]any)
	if !ok || len(values) != len(c.items) {
		return false
	}
	for i, item := range c.items {
		if !item.Accepts(values[i]) {
			return false
		}
	}
	return true
}

func (c tupleCheck) Shape() string {
	names := make([]string, len(c.items))
	for i, item := range c.items {
		names[i] = item.Shape()
	}
	return fmt.Sprintf("tupleof(%s)", strings.Join(names, ", "))
}

// MapOf accepts a string-keyed mapping whose keys and values match the
// given checks.
func MapOf(key, value Check) Check { return mapCheck{key, value} }

type mapCheck struct{ key, value Check }

func (c mapCheck) Accepts(v any) bool {
	mapping, ok := v.(map[string]any)
	if !ok {
		return false
	}
	for k, item := range mapping {
		if !c.key.Accepts(k) || !c.value.Accepts(item) {
			return false
		}
	}
	return true
}

func (c mapCheck) Shape() string {
	return fmt.Sprintf("dictof(%s, %s)", c.key.Shape(), c.value.Shape())
}

// IsRecord reports whether the check requires a single nested record.
func IsRecord(c Check) bool { return c == AnyRecord }

// IsRecordList reports whether the check requires a sequence of nested
// records.
func IsRecordList(c Check) bool {
	lc, ok := c.(listCheck)
	return ok && lc.item == AnyRecord
}
