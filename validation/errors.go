package validation

import "errors"

var (
	ErrValidatorExists   = errors.New("validation: validator already registered")
	ErrInvalidIdentifier = errors.New("validation: invalid protocol identifier")
	ErrNilFactory        = errors.New("validation: factory cannot be nil")
	ErrInvalidRule       = errors.New("validation: invalid rule")
)
