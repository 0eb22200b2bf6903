package serialization

import (
	"fmt"
	"log/slog"

	"github.com/glimte/iac-go/codec"
	"github.com/glimte/iac-go/contracts"
	"github.com/glimte/iac-go/schema"
)

// payloadKey names the root of every payload in codec errors
const payloadKey = "payload"

// Option configures a format
type Option func(*formatConfig)

type formatConfig struct {
	protocols       contracts.ProtocolSet
	logger          *slog.Logger
	singleChunkSize int
	multiChunkSize  int
}

const (
	DefaultSingleChunkSize = 350
	DefaultMultiChunkSize  = 100
)

func newFormatConfig(opts []Option) *formatConfig {
	cfg := &formatConfig{
		protocols:       contracts.DefaultProtocols(),
		logger:          slog.Default(),
		singleChunkSize: DefaultSingleChunkSize,
		multiChunkSize:  DefaultMultiChunkSize,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithProtocols sets the main protocols accepted when decoding
func WithProtocols(protocols contracts.ProtocolSet) Option {
	return func(cfg *formatConfig) {
		cfg.protocols = protocols
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *formatConfig) {
		cfg.logger = logger
	}
}

// WithChunkSizes sets the v2 chunking thresholds. Payloads longer than
// single bytes are split into chunks of at most multi bytes; a single size of
// zero disables chunking. The v3 format ignores this option.
func WithChunkSizes(single, multi int) Option {
	return func(cfg *formatConfig) {
		cfg.singleChunkSize = single
		cfg.multiChunkSize = multi
	}
}

// messageLayer is the part shared by both envelope formats: schema
// resolution, candidate fallthrough and protocol validation.
type messageLayer struct {
	registry  *schema.Registry
	codec     *codec.Codec
	protocols contracts.ProtocolSet
}

// prepare checks every message before any bytes are produced, so a batch
// either encodes completely or fails. Messages without an id receive one.
func (l *messageLayer) prepare(messages []contracts.Message, newID func() string, validateID func(string) error) ([]contracts.Message, error) {
	prepared := make([]contracts.Message, len(messages))
	for idx, msg := range messages {
		if !l.protocols.Accepts(msg.Protocol) {
			return nil, &MessageError{Index: idx, Type: msg.Type, Protocol: msg.Protocol, Err: fmt.Errorf("%w: %q", ErrInvalidProtocol, msg.Protocol)}
		}
		if _, err := l.registry.Resolve(msg.Type, msg.Protocol); err != nil {
			return nil, &MessageError{Index: idx, Type: msg.Type, Protocol: msg.Protocol, Err: fmt.Errorf("%w: %w", ErrNoSchemaFound, err)}
		}
		if msg.ID == "" {
			msg.ID = newID()
		}
		if err := validateID(msg.ID); err != nil {
			return nil, &MessageError{Index: idx, Type: msg.Type, Protocol: msg.Protocol, Err: err}
		}
		prepared[idx] = msg
	}
	return prepared, nil
}

// encodePayload encodes the payload with the first candidate schema that
// accepts it and returns the last error when none does.
func (l *messageLayer) encodePayload(msg contracts.Message) (interface{}, error) {
	entries, err := l.registry.Resolve(msg.Type, msg.Protocol)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoSchemaFound, err)
	}
	return firstSuccess(entries, func(entry *schema.Entry) (interface{}, error) {
		return l.codec.Encode(payloadKey, entry.Item, msg.Payload)
	})
}

// decodePayload decodes the fields with the first candidate schema that
// matches and applies that candidate's transformer.
func (l *messageLayer) decodePayload(messageType contracts.MessageType, protocol string, fields interface{}) (interface{}, error) {
	if !l.protocols.Accepts(protocol) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidProtocol, protocol)
	}
	entries, err := l.registry.Resolve(messageType, protocol)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoSchemaMatched, err)
	}
	payload, err := firstSuccess(entries, func(entry *schema.Entry) (interface{}, error) {
		value, err := l.codec.Decode(payloadKey, entry.Item, fields)
		if err != nil {
			return nil, err
		}
		if entry.Transform != nil {
			return entry.Transform(value)
		}
		return value, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoSchemaMatched, err)
	}
	return payload, nil
}

// firstSuccess tries each candidate in order, keeping the first success or
// else the last error.
func firstSuccess[T any](entries []*schema.Entry, try func(*schema.Entry) (T, error)) (T, error) {
	var zero T
	if len(entries) == 0 {
		return zero, ErrNoSchemaFound
	}

	var lastErr error
	for _, entry := range entries {
		value, err := try(entry)
		if err == nil {
			return value, nil
		}
		lastErr = err
	}
	return zero, lastErr
}
