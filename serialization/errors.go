package serialization

import (
	"errors"
	"fmt"

	"github.com/glimte/iac-go/contracts"
)

var (
	// Message errors
	ErrUnsupportedVersion = errors.New("serialization: unsupported version")
	ErrInvalidProtocol    = errors.New("serialization: invalid protocol")
	ErrInvalidID          = errors.New("serialization: invalid message id")
	ErrNoSchemaFound      = errors.New("serialization: no schema found")
	ErrNoSchemaMatched    = errors.New("serialization: no schema matched")

	// Envelope errors
	ErrMalformedEnvelope   = errors.New("serialization: malformed envelope")
	ErrPayloadTypeMismatch = errors.New("serialization: payload type mismatch")
	ErrPayloadTypeUnknown  = errors.New("serialization: payload type unknown")
	ErrMixedVersions       = errors.New("serialization: batch mixes envelope versions")
	ErrEmptyBatch          = errors.New("serialization: nothing to decode")

	// Chunk errors
	ErrChunkMismatch    = errors.New("serialization: inconsistent chunks")
	ErrInvalidChunkSize = errors.New("serialization: invalid chunk size")
)

// MessageError reports a failure for one message of a batch
type MessageError struct {
	Index    int
	Type     contracts.MessageType
	Protocol string
	Err      error
}

func (e *MessageError) Error() string {
	return fmt.Sprintf("serialization: message %d (type %s, protocol %q): %v", e.Index, e.Type, e.Protocol, e.Err)
}

func (e *MessageError) Unwrap() error {
	return e.Err
}
