package serialization

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/fxamacker/cbor/v2"
	"github.com/glimte/iac-go/codec"
	"github.com/glimte/iac-go/contracts"
	"github.com/glimte/iac-go/internal/base58check"
	"github.com/glimte/iac-go/schema"
	"github.com/klauspost/compress/gzip"
)

const (
	compactEnvelopeVersion = 3
	compactTupleVersion    = 1

	// maxDecompressedSize bounds the inflated CBOR document
	maxDecompressedSize = 4 << 20
)

var (
	compactEncMode cbor.EncMode
	compactDecMode cbor.DecMode
)

func init() {
	var err error
	compactEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	compactDecMode, err = cbor.DecOptions{
		MaxNestedLevels:  64,
		MaxArrayElements: 1 << 16,
		MaxMapPairs:      1 << 10,
	}.DecMode()
	if err != nil {
		panic(err)
	}
}

// CompactFormat is the v3 envelope: a gzip compressed CBOR document wrapped
// in Base58Check. It never chunks; message tuples that fail to decode are
// reported as skipped instead of failing the batch.
type CompactFormat struct {
	layer  messageLayer
	logger *slog.Logger
}

// NewCompactFormat creates the v3 envelope format
func NewCompactFormat(registry *schema.Registry, opts ...Option) *CompactFormat {
	cfg := newFormatConfig(opts)
	return &CompactFormat{
		layer: messageLayer{
			registry:  registry,
			codec:     codec.Compact,
			protocols: cfg.protocols,
		},
		logger: cfg.logger,
	}
}

func (f *CompactFormat) Version() contracts.EnvelopeVersion {
	return contracts.EnvelopeV3
}

type compactEnvelope struct {
	_       struct{} `cbor:",toarray"`
	Version uint64
	Tuples  []cbor.RawMessage
}

type compactTuple struct {
	_        struct{} `cbor:",toarray"`
	Version  uint64
	Type     uint64
	Protocol string
	ID       uint64
	Fields   interface{}
}

// Serialize encodes all messages into a single envelope string
func (f *CompactFormat) Serialize(messages []contracts.Message) ([]string, error) {
	if len(messages) == 0 {
		return nil, ErrEmptyBatch
	}
	prepared, err := f.layer.prepare(messages, NewCompactID, func(id string) error {
		_, err := parseCompactID(id)
		return err
	})
	if err != nil {
		return nil, err
	}

	envelope := compactEnvelope{Version: compactEnvelopeVersion}
	for idx, msg := range prepared {
		fields, err := f.layer.encodePayload(msg)
		if err != nil {
			return nil, &MessageError{Index: idx, Type: msg.Type, Protocol: msg.Protocol, Err: err}
		}
		id, _ := parseCompactID(msg.ID)
		tuple, err := compactEncMode.Marshal(compactTuple{
			Version:  compactTupleVersion,
			Type:     uint64(msg.Type),
			Protocol: msg.Protocol,
			ID:       id,
			Fields:   fields,
		})
		if err != nil {
			return nil, &MessageError{Index: idx, Type: msg.Type, Protocol: msg.Protocol, Err: fmt.Errorf("failed to encode message: %w", err)}
		}
		envelope.Tuples = append(envelope.Tuples, tuple)
	}

	doc, err := compactEncMode.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("failed to encode envelope: %w", err)
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(doc); err != nil {
		return nil, fmt.Errorf("failed to compress envelope: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to compress envelope: %w", err)
	}
	return []string{base58check.Encode(buf.Bytes())}, nil
}

// Deserialize decodes every envelope of the batch. Envelope level failures
// abort the call; message tuples that fail to decode land in Result.Skipped.
func (f *CompactFormat) Deserialize(data []string) (*Result, error) {
	if len(data) == 0 {
		return nil, ErrEmptyBatch
	}

	result := &Result{Version: contracts.EnvelopeV3}
	index := 0
	for envelopeIdx, s := range data {
		envelope, err := f.unwrap(s)
		if err != nil {
			return nil, fmt.Errorf("envelope %d: %w", envelopeIdx, err)
		}

		for _, raw := range envelope.Tuples {
			msg, err := f.decodeTuple(raw)
			if err != nil {
				skipped := SkippedMessage{Index: index, Type: msg.Type, Protocol: msg.Protocol, ID: msg.ID, Err: err}
				f.logger.Warn("Skipping undecodable message",
					"index", index,
					"type", msg.Type,
					"protocol", msg.Protocol,
					"error", err)
				result.Skipped = append(result.Skipped, skipped)
			} else {
				result.Messages = append(result.Messages, msg)
			}
			index++
		}
	}
	return result, nil
}

func (f *CompactFormat) unwrap(s string) (*compactEnvelope, error) {
	raw, err := base58check.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedEnvelope, err)
	}

	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedEnvelope, err)
	}
	defer zr.Close()

	doc, err := io.ReadAll(io.LimitReader(zr, maxDecompressedSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedEnvelope, err)
	}
	if len(doc) > maxDecompressedSize {
		return nil, fmt.Errorf("%w: payload exceeds %d bytes", ErrMalformedEnvelope, maxDecompressedSize)
	}

	var envelope compactEnvelope
	if err := compactDecMode.Unmarshal(doc, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedEnvelope, err)
	}
	if envelope.Version != compactEnvelopeVersion {
		return nil, fmt.Errorf("%w: envelope version %d", ErrUnsupportedVersion, envelope.Version)
	}
	return &envelope, nil
}

func (f *CompactFormat) decodeTuple(raw cbor.RawMessage) (contracts.Message, error) {
	var msg contracts.Message

	var tuple compactTuple
	if err := compactDecMode.Unmarshal(raw, &tuple); err != nil {
		return msg, fmt.Errorf("%w: message tuple: %w", ErrMalformedEnvelope, err)
	}
	if tuple.Type > uint64(^uint32(0)) {
		return msg, fmt.Errorf("%w: message type %d", ErrMalformedEnvelope, tuple.Type)
	}
	msg.Type = contracts.MessageType(tuple.Type)
	msg.Protocol = tuple.Protocol

	if tuple.Version != compactTupleVersion {
		return msg, fmt.Errorf("%w: message version %d", ErrUnsupportedVersion, tuple.Version)
	}
	if tuple.ID >= compactIDLimit {
		return msg, fmt.Errorf("%w: %d", ErrInvalidID, tuple.ID)
	}
	msg.ID = strconv.FormatUint(tuple.ID, 10)

	payload, err := f.layer.decodePayload(msg.Type, msg.Protocol, tuple.Fields)
	if err != nil {
		return msg, err
	}
	msg.Payload = payload
	return msg, nil
}
