package schema

import (
	"errors"
	"fmt"

	"github.com/glimte/iac-go/contracts"
)

var (
	// Registry errors
	ErrSchemaAlreadyExists = errors.New("schema: schema already exists")
	ErrSchemaNotFound      = errors.New("schema: schema does not exist")
	ErrRegistrySealed      = errors.New("schema: registry is sealed")

	// Definition errors
	ErrInvalidDefinition = errors.New("schema: invalid definition")
	ErrUnsupportedType   = errors.New("schema: unsupported Go type")
)

// LookupError reports a failed resolution with every key that was tried
type LookupError struct {
	Type     contracts.MessageType
	Protocol string
	Keys     []string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("schema: schema does not exist for type %s protocol %q (tried %v)", e.Type, e.Protocol, e.Keys)
}

func (e *LookupError) Unwrap() error {
	return ErrSchemaNotFound
}
