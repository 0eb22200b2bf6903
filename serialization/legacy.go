package serialization

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/glimte/iac-go/codec"
	"github.com/glimte/iac-go/contracts"
	"github.com/glimte/iac-go/internal/base58check"
	"github.com/glimte/iac-go/schema"
)

const (
	legacyEnvelopeVersion = "2"

	// tuple versions: 0 predates message ids, 1 carries one
	legacyTupleVersionNoID = "0"
	legacyTupleVersion     = "1"
)

// LegacyFormat is the v2 envelope: RLP encoded tuples wrapped in
// Base58Check, split into chunks when the payload is too large for a single
// frame.
type LegacyFormat struct {
	layer           messageLayer
	logger          *slog.Logger
	singleChunkSize int
	multiChunkSize  int
}

// NewLegacyFormat creates the v2 envelope format
func NewLegacyFormat(registry *schema.Registry, opts ...Option) *LegacyFormat {
	cfg := newFormatConfig(opts)
	return &LegacyFormat{
		layer: messageLayer{
			registry:  registry,
			codec:     codec.Legacy,
			protocols: cfg.protocols,
		},
		logger:          cfg.logger,
		singleChunkSize: cfg.singleChunkSize,
		multiChunkSize:  cfg.multiChunkSize,
	}
}

func (f *LegacyFormat) Version() contracts.EnvelopeVersion {
	return contracts.EnvelopeV2
}

type legacyEnvelope struct {
	Version string
	Kind    string
	Body    rlp.RawValue
}

type legacyChunk struct {
	Page  string
	Total string
	Data  []byte
}

// Serialize encodes the messages into one envelope string, or one per chunk
// when the encoded payload exceeds the single chunk size.
func (f *LegacyFormat) Serialize(messages []contracts.Message) ([]string, error) {
	if len(messages) == 0 {
		return nil, ErrEmptyBatch
	}
	prepared, err := f.layer.prepare(messages, NewLegacyID, validateLegacyID)
	if err != nil {
		return nil, err
	}

	tuples := make([]interface{}, 0, len(prepared))
	for idx, msg := range prepared {
		fields, err := f.layer.encodePayload(msg)
		if err != nil {
			return nil, &MessageError{Index: idx, Type: msg.Type, Protocol: msg.Protocol, Err: err}
		}
		tuples = append(tuples, []interface{}{
			legacyTupleVersion,
			strconv.FormatUint(uint64(msg.Type), 10),
			msg.Protocol,
			fields,
			msg.ID,
		})
	}

	body, err := rlp.EncodeToBytes(tuples)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	chunks, err := SplitChunks(body, f.singleChunkSize, f.multiChunkSize)
	if err != nil {
		return nil, err
	}
	if chunks == nil {
		envelope, err := f.wrap(contracts.PayloadFull, body)
		if err != nil {
			return nil, err
		}
		return []string{envelope}, nil
	}

	f.logger.Debug("Splitting payload into chunks",
		"bytes", len(body),
		"chunks", len(chunks),
		"multiChunkSize", f.multiChunkSize)

	envelopes := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		chunkBody, err := rlp.EncodeToBytes(legacyChunk{
			Page:  strconv.FormatUint(uint64(chunk.Page), 10),
			Total: strconv.FormatUint(uint64(chunk.Total), 10),
			Data:  chunk.Data,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to encode chunk %d: %w", chunk.Page, err)
		}
		envelope, err := f.wrap(contracts.PayloadChunked, chunkBody)
		if err != nil {
			return nil, err
		}
		envelopes = append(envelopes, envelope)
	}
	return envelopes, nil
}

func (f *LegacyFormat) wrap(kind contracts.PayloadKind, body []byte) (string, error) {
	raw, err := rlp.EncodeToBytes(legacyEnvelope{
		Version: legacyEnvelopeVersion,
		Kind:    strconv.FormatUint(uint64(kind), 10),
		Body:    body,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode envelope: %w", err)
	}
	return base58check.Encode(raw), nil
}

// Deserialize decodes a batch of envelope strings. All envelopes must share
// one payload kind. A chunk set with missing pages yields a Result carrying
// Incomplete and no messages.
func (f *LegacyFormat) Deserialize(data []string) (*Result, error) {
	if len(data) == 0 {
		return nil, ErrEmptyBatch
	}

	var (
		kind   contracts.PayloadKind
		bodies [][]byte
	)
	for idx, s := range data {
		envelopeKind, body, err := f.unwrap(s)
		if err != nil {
			return nil, fmt.Errorf("envelope %d: %w", idx, err)
		}
		if idx > 0 && envelopeKind != kind {
			return nil, fmt.Errorf("%w: envelope %d is %s, expected %s", ErrPayloadTypeMismatch, idx, envelopeKind, kind)
		}
		kind = envelopeKind
		bodies = append(bodies, body)
	}

	result := &Result{Version: contracts.EnvelopeV2}
	if kind == contracts.PayloadFull {
		for _, body := range bodies {
			messages, err := f.decodeTuples(body, len(result.Messages))
			if err != nil {
				return nil, err
			}
			result.Messages = append(result.Messages, messages...)
		}
		return result, nil
	}

	chunks := make([]Chunk, 0, len(bodies))
	for idx, body := range bodies {
		chunk, err := decodeLegacyChunk(body)
		if err != nil {
			return nil, fmt.Errorf("envelope %d: %w", idx, err)
		}
		chunks = append(chunks, chunk)
	}

	payload, incomplete, err := ReassembleChunks(chunks)
	if err != nil {
		return nil, err
	}
	if incomplete != nil {
		f.logger.Info("Chunk set incomplete",
			"available", len(incomplete.AvailablePages),
			"total", incomplete.TotalPages)
		result.Incomplete = incomplete
		return result, nil
	}

	messages, err := f.decodeTuples(payload, 0)
	if err != nil {
		return nil, err
	}
	result.Messages = messages
	return result, nil
}

func (f *LegacyFormat) unwrap(s string) (contracts.PayloadKind, []byte, error) {
	raw, err := base58check.Decode(s)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %w", ErrMalformedEnvelope, err)
	}

	var envelope legacyEnvelope
	if err := rlp.DecodeBytes(raw, &envelope); err != nil {
		return 0, nil, fmt.Errorf("%w: %w", ErrMalformedEnvelope, err)
	}
	if envelope.Version != legacyEnvelopeVersion {
		return 0, nil, fmt.Errorf("%w: envelope version %q", ErrUnsupportedVersion, envelope.Version)
	}

	switch envelope.Kind {
	case "0":
		return contracts.PayloadFull, envelope.Body, nil
	case "1":
		return contracts.PayloadChunked, envelope.Body, nil
	default:
		return 0, nil, fmt.Errorf("%w: %q", ErrPayloadTypeUnknown, envelope.Kind)
	}
}

func decodeLegacyChunk(body []byte) (Chunk, error) {
	var raw legacyChunk
	if err := rlp.DecodeBytes(body, &raw); err != nil {
		return Chunk{}, fmt.Errorf("%w: chunk: %w", ErrMalformedEnvelope, err)
	}
	page, err := parseDigits(raw.Page)
	if err != nil {
		return Chunk{}, fmt.Errorf("%w: chunk page: %w", ErrMalformedEnvelope, err)
	}
	total, err := parseDigits(raw.Total)
	if err != nil {
		return Chunk{}, fmt.Errorf("%w: chunk total: %w", ErrMalformedEnvelope, err)
	}
	if total == 0 || total > maxChunkPages {
		return Chunk{}, fmt.Errorf("%w: chunk total %d", ErrChunkMismatch, total)
	}
	return Chunk{Page: uint(page), Total: uint(total), Data: raw.Data}, nil
}

// decodeTuples decodes an RLP list of message tuples. offset numbers the
// messages within the whole batch for error reporting.
func (f *LegacyFormat) decodeTuples(body []byte, offset int) ([]contracts.Message, error) {
	var tuples []rlp.RawValue
	if err := rlp.DecodeBytes(body, &tuples); err != nil {
		return nil, fmt.Errorf("%w: payload: %w", ErrMalformedEnvelope, err)
	}

	messages := make([]contracts.Message, 0, len(tuples))
	for idx, raw := range tuples {
		msg, err := f.decodeTuple(raw)
		if err != nil {
			return nil, &MessageError{Index: offset + idx, Type: msg.Type, Protocol: msg.Protocol, Err: err}
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// decodeTuple returns whatever it managed to decode alongside an error so
// failures can name the message type and protocol.
func (f *LegacyFormat) decodeTuple(raw rlp.RawValue) (contracts.Message, error) {
	var msg contracts.Message

	var tuple []interface{}
	if err := rlp.DecodeBytes(raw, &tuple); err != nil {
		return msg, fmt.Errorf("%w: message tuple: %w", ErrMalformedEnvelope, err)
	}
	if len(tuple) == 0 {
		return msg, fmt.Errorf("%w: empty message tuple", ErrMalformedEnvelope)
	}

	version, ok := tuple[0].([]byte)
	if !ok {
		return msg, fmt.Errorf("%w: message version is a list", ErrMalformedEnvelope)
	}
	switch string(version) {
	case legacyTupleVersion:
		if len(tuple) != 5 {
			return msg, fmt.Errorf("%w: message tuple has %d elements, expected 5", ErrMalformedEnvelope, len(tuple))
		}
	case legacyTupleVersionNoID:
		if len(tuple) != 4 {
			return msg, fmt.Errorf("%w: message tuple has %d elements, expected 4", ErrMalformedEnvelope, len(tuple))
		}
	default:
		return msg, fmt.Errorf("%w: message version %q", ErrUnsupportedVersion, version)
	}

	typeDigits, ok := tuple[1].([]byte)
	if !ok {
		return msg, fmt.Errorf("%w: message type is a list", ErrMalformedEnvelope)
	}
	messageType, err := parseDigits(string(typeDigits))
	if err != nil || messageType > uint64(^uint32(0)) {
		return msg, fmt.Errorf("%w: message type %q", ErrMalformedEnvelope, typeDigits)
	}
	msg.Type = contracts.MessageType(messageType)

	protocol, ok := tuple[2].([]byte)
	if !ok {
		return msg, fmt.Errorf("%w: protocol is a list", ErrMalformedEnvelope)
	}
	msg.Protocol = string(protocol)

	if len(tuple) == 5 {
		id, ok := tuple[4].([]byte)
		if !ok {
			return msg, fmt.Errorf("%w: message id is a list", ErrMalformedEnvelope)
		}
		if err := validateLegacyID(string(id)); err != nil {
			return msg, err
		}
		msg.ID = string(id)
	} else {
		msg.ID = NewLegacyID()
	}

	payload, err := f.layer.decodePayload(msg.Type, msg.Protocol, tuple[3])
	if err != nil {
		return msg, err
	}
	msg.Payload = payload
	return msg, nil
}

// parseDigits parses a canonical unsigned decimal
func parseDigits(s string) (uint64, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if strconv.FormatUint(n, 10) != s {
		return 0, fmt.Errorf("non-canonical number %q", s)
	}
	return n, nil
}
