package serialization

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/glimte/iac-go/contracts"
	"github.com/glimte/iac-go/internal/base58check"
)

// Format is one wire envelope generation
type Format interface {
	Version() contracts.EnvelopeVersion
	Serialize(messages []contracts.Message) ([]string, error)
	Deserialize(data []string) (*Result, error)
}

// Result is the outcome of decoding a batch of envelope strings
type Result struct {
	Version  contracts.EnvelopeVersion
	Messages []contracts.Message
	// Skipped lists v3 message tuples that could not be decoded
	Skipped []SkippedMessage
	// Incomplete is set when a v2 chunk set is missing pages; Messages is
	// empty in that case
	Incomplete *Incomplete
}

// Complete reports whether every chunk was available
func (r *Result) Complete() bool {
	return r.Incomplete == nil
}

// SkippedMessage records a message tuple that failed to decode
type SkippedMessage struct {
	Index    int
	Type     contracts.MessageType
	Protocol string
	ID       string
	Err      error
}

func (s SkippedMessage) Error() string {
	return (&MessageError{Index: s.Index, Type: s.Type, Protocol: s.Protocol, Err: s.Err}).Error()
}

var gzipMagic = [2]byte{0x1f, 0x8b}

// DetectVersion inspects an envelope string and reports its format
func DetectVersion(data string) (contracts.EnvelopeVersion, error) {
	raw, err := base58check.Decode(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrMalformedEnvelope, err)
	}
	if len(raw) >= 2 && raw[0] == gzipMagic[0] && raw[1] == gzipMagic[1] {
		return contracts.EnvelopeV3, nil
	}

	var envelope []interface{}
	if err := rlp.DecodeBytes(raw, &envelope); err == nil && len(envelope) > 0 {
		if version, ok := envelope[0].([]byte); ok && string(version) == legacyEnvelopeVersion {
			return contracts.EnvelopeV2, nil
		}
	}
	return 0, ErrUnsupportedVersion
}
