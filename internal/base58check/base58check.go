// Package base58check implements the Base58Check text encoding used by the
// IAC envelopes: base58(payload || sha256(sha256(payload))[:4]).
package base58check

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

const checksumLength = 4

var (
	ErrInvalidFormat = errors.New("base58check: invalid format")
	ErrChecksum      = errors.New("base58check: checksum mismatch")
)

func checksum(payload []byte) []byte {
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	return second[:checksumLength]
}

// Encode appends the checksum and returns the base58 text
func Encode(payload []byte) string {
	buf := make([]byte, 0, len(payload)+checksumLength)
	buf = append(buf, payload...)
	buf = append(buf, checksum(payload)...)
	return base58.Encode(buf)
}

// Decode verifies the checksum and returns the payload
func Decode(s string) ([]byte, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if len(raw) < checksumLength {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the checksum", ErrInvalidFormat, len(raw))
	}

	payload, sum := raw[:len(raw)-checksumLength], raw[len(raw)-checksumLength:]
	if !bytes.Equal(checksum(payload), sum) {
		return nil, ErrChecksum
	}
	return payload, nil
}
