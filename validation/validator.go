package validation

import (
	"context"
	"fmt"
)

// Error codes reported by the built-in validators
const (
	CodeRequired      = "REQUIRED_FIELD_MISSING"
	CodeTypeMismatch  = "TYPE_MISMATCH"
	CodeMinLength     = "MIN_LENGTH_VIOLATION"
	CodeMaxLength     = "MAX_LENGTH_VIOLATION"
	CodeMinimum       = "MINIMUM_VIOLATION"
	CodeMaximum       = "MAXIMUM_VIOLATION"
	CodeEnum          = "ENUM_VIOLATION"
	CodePattern       = "PATTERN_VIOLATION"
	CodeConversion    = "CONVERSION_ERROR"
	CodeChainMismatch = "CHAIN_ID_MISMATCH"
	CodeDecode        = "DECODE_ERROR"
)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Code    string      `json:"code"`
	Value   interface{} `json:"value,omitempty"`
}

// Error implements the error interface for ValidationError
func (ve ValidationError) Error() string {
	return fmt.Sprintf("validation error in field '%s': %s", ve.Field, ve.Message)
}

// Validator checks transaction payloads of one protocol. Both methods return
// nil when the payload is acceptable.
type Validator interface {
	ValidateUnsigned(ctx context.Context, payload interface{}) []ValidationError
	ValidateSigned(ctx context.Context, payload interface{}) []ValidationError
}

// Factory creates a validator
type Factory func() Validator
