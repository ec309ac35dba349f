package schema

import "fmt"

// ErrorCode categorizes schema errors raised during record construction.
type ErrorCode string

const (
	// ErrCodeMissingField indicates a required field key was absent.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"

	// ErrCodeUnknownField indicates a mapping key no field consumes.
	ErrCodeUnknownField ErrorCode = "UNKNOWN_FIELD"

	// ErrCodeBadField indicates a field value that fails its check.
	ErrCodeBadField ErrorCode = "BAD_FIELD"
)

// Error reports a failure to construct a record from a mapping.
// A load either yields a fully valid record or an *Error; records are
// never partially constructed.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Schema is the name of the schema being loaded.
	Schema string

	// Field is the offending field key.
	Field string

	// Shape is the expected value shape (for ErrCodeBadField).
	Shape string

	// Value is the offending value (for ErrCodeBadField).
	Value any
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeMissingField:
		return fmt.Sprintf("missing field %q", e.Field)
	case ErrCodeUnknownField:
		return fmt.Sprintf("unknown field %q", e.Field)
	default:
		return fmt.Sprintf("invalid field %q: expected %s, got %#v",
			e.Field, e.Shape, e.Value)
	}
}

func missingField(schema, field string) *Error {
	return &Error{Code: ErrCodeMissingField, Schema: schema, Field: field}
}

func unknownField(schema, field string) *Error {
	return &Error{Code: ErrCodeUnknownField, Schema: schema, Field: field}
}

func badField(schema, field, shape string, value any) *Error {
	return &Error{Code: ErrCodeBadField, Schema: schema, Field: field, Shape: shape, Value: value}
}
