package serialization

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"

	"github.com/google/uuid"
)

const (
	legacyIDLength = 10
	compactIDLimit = 100_000_000
)

var legacyIDPattern = regexp.MustCompile(`^[a-zA-Z0-9]{1,10}$`)

// NewLegacyID returns a random alphanumeric id for the v2 envelope
func NewLegacyID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])[:legacyIDLength]
}

// NewCompactID returns a random id of at most eight decimal digits for the
// v3 envelope
func NewCompactID() string {
	id := uuid.New()
	return strconv.FormatUint(binary.BigEndian.Uint64(id[:8])%compactIDLimit, 10)
}

func validateLegacyID(id string) error {
	if !legacyIDPattern.MatchString(id) {
		return fmt.Errorf("%w: %q must be 1-%d alphanumeric characters", ErrInvalidID, id, legacyIDLength)
	}
	return nil
}

// parseCompactID accepts canonical decimal ids below 10^8 only, so that the
// integer wire form decodes back to the same text.
func parseCompactID(id string) (uint64, error) {
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil || n >= compactIDLimit || strconv.FormatUint(n, 10) != id {
		return 0, fmt.Errorf("%w: %q must be a decimal number below %d", ErrInvalidID, id, compactIDLimit)
	}
	return n, nil
}
