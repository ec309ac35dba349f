// Package schema implements the record and field type system for test
// input and output data.
//
// A Schema is a named, ordered list of field specifications built once at
// kind-registration time. Records are immutable field-value tuples cut to
// a schema; equality is structural over the value tuple so that "has the
// output changed" decisions are cheap and exact.
//
// Schemas double as document signatures: Recognizes reports whether a set
// of mapping keys covers every required field, which is how the loader
// detects record types while walking a YAML document.
//
// All other internal packages import schema; schema imports nothing
// internal. It is the foundational layer of the harness.
package schema
