package codec

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// StringType is the tag byte prepended to a framed string. The values are
// protocol constants.
type StringType byte

const (
	// StringWithHexPrefix is a "0x"-prefixed string whose rest is not hex
	StringWithHexPrefix StringType = 0
	// HexWithPrefixEven is "0x" followed by an even number of hex digits
	HexWithPrefixEven StringType = 1
	// HexWithoutPrefixEven is an even number of hex digits
	HexWithoutPrefixEven StringType = 2
	// HexWithPrefixOdd is "0x" followed by an odd number of hex digits
	HexWithPrefixOdd StringType = 3
	// HexWithoutPrefixOdd is an odd number of hex digits
	HexWithoutPrefixOdd StringType = 4
)

const hexPrefix = "0x"

func (t StringType) String() string {
	switch t {
	case StringWithHexPrefix:
		return "string-with-hex-prefix"
	case HexWithPrefixEven:
		return "hex-with-prefix-even"
	case HexWithoutPrefixEven:
		return "hex-without-prefix-even"
	case HexWithPrefixOdd:
		return "hex-with-prefix-odd"
	case HexWithoutPrefixOdd:
		return "hex-without-prefix-odd"
	default:
		return fmt.Sprintf("unknown(%d)", byte(t))
	}
}

var (
	errEmptyFrame   = errors.New("empty framed string")
	errMissingPad   = errors.New("odd-length hex is missing its zero pad nibble")
	errEmptyHex     = errors.New("hex payload without prefix cannot be empty")
	errInvalidUTF8  = errors.New("value is not valid UTF-8")
	errUnknownFrame = errors.New("unknown string type tag")
)

// isHex reports whether s consists of lowercase hex digits only. Uppercase
// digits are left unframed so that decoding never changes letter case.
func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// ClassifyString returns the framing of s, or false for a plain string
func ClassifyString(s string) (StringType, bool) {
	if rest, ok := strings.CutPrefix(s, hexPrefix); ok {
		switch {
		case !isHex(rest):
			return StringWithHexPrefix, true
		case len(rest)%2 == 0:
			return HexWithPrefixEven, true
		default:
			return HexWithPrefixOdd, true
		}
	}
	if s == "" || !isHex(s) {
		return 0, false
	}
	if len(s)%2 == 0 {
		return HexWithoutPrefixEven, true
	}
	return HexWithoutPrefixOdd, true
}

// FrameString encodes s as tag byte plus payload. The second result is false
// when s is a plain string that travels unframed.
func FrameString(s string) ([]byte, bool, error) {
	if !utf8.ValidString(s) {
		return nil, false, errInvalidUTF8
	}
	st, framed := ClassifyString(s)
	if !framed {
		return nil, false, nil
	}

	digits := strings.TrimPrefix(s, hexPrefix)
	if st == StringWithHexPrefix {
		return append([]byte{byte(st)}, digits...), true, nil
	}
	if st == HexWithPrefixOdd || st == HexWithoutPrefixOdd {
		digits = "0" + digits
	}
	raw, err := hex.DecodeString(digits)
	if err != nil {
		return nil, false, err
	}
	return append([]byte{byte(st)}, raw...), true, nil
}

// UnframeString reverses FrameString
func UnframeString(frame []byte) (string, error) {
	if len(frame) == 0 {
		return "", errEmptyFrame
	}
	payload := frame[1:]

	switch StringType(frame[0]) {
	case StringWithHexPrefix:
		if !utf8.Valid(payload) {
			return "", errInvalidUTF8
		}
		return hexPrefix + string(payload), nil
	case HexWithPrefixEven:
		return hexPrefix + hex.EncodeToString(payload), nil
	case HexWithoutPrefixEven:
		if len(payload) == 0 {
			return "", errEmptyHex
		}
		return hex.EncodeToString(payload), nil
	case HexWithPrefixOdd, HexWithoutPrefixOdd:
		if len(payload) == 0 || payload[0]>>4 != 0 {
			return "", errMissingPad
		}
		digits := hex.EncodeToString(payload)[1:]
		if StringType(frame[0]) == HexWithPrefixOdd {
			return hexPrefix + digits, nil
		}
		return digits, nil
	default:
		return "", fmt.Errorf("%w %d", errUnknownFrame, frame[0])
	}
}
