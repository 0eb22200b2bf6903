package codec

import (
	"errors"
	"fmt"

	"github.com/glimte/iac-go/schema"
)

var (
	ErrInvalidSchemaType    = errors.New("codec: invalid schema type")
	ErrInvalidStringFraming = errors.New("codec: invalid string framing")
	ErrInvalidPayload       = errors.New("codec: invalid payload")
	ErrPropertyEmpty        = errors.New("codec: property empty")
)

// SchemaTypeError reports a value whose runtime kind does not match the schema
type SchemaTypeError struct {
	Key      string
	Expected schema.Kind
	Actual   interface{}
}

func (e *SchemaTypeError) Error() string {
	return fmt.Sprintf("codec: invalid schema type for %q: expected %s, got %s (%s)",
		e.Key, e.Expected, kindOf(e.Actual), describe(e.Actual))
}

func (e *SchemaTypeError) Unwrap() error {
	return ErrInvalidSchemaType
}

// StringFramingError reports a string that cannot be framed or unframed
type StringFramingError struct {
	Key    string
	Value  string
	Reason string
}

func (e *StringFramingError) Error() string {
	return fmt.Sprintf("codec: invalid string framing for %q (%q): %s", e.Key, e.Value, e.Reason)
}

func (e *StringFramingError) Unwrap() error {
	return ErrInvalidStringFraming
}

// PayloadError reports a required value that is missing from the payload
type PayloadError struct {
	Key    string
	Reason string
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("codec: invalid payload at %q: %s", e.Key, e.Reason)
}

func (e *PayloadError) Unwrap() error {
	return ErrInvalidPayload
}

// PropertyEmptyError reports a positional field missing from the wire form
type PropertyEmptyError struct {
	Key      string
	Index    int
	Expected int
	Actual   int
}

func (e *PropertyEmptyError) Error() string {
	return fmt.Sprintf("codec: property empty at %q: field %d missing (expected %d fields, got %d)",
		e.Key, e.Index, e.Expected, e.Actual)
}

func (e *PropertyEmptyError) Unwrap() error {
	return ErrPropertyEmpty
}

func typeError(key string, expected schema.Kind, actual interface{}) error {
	return &SchemaTypeError{Key: key, Expected: expected, Actual: actual}
}
