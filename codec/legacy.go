package codec

import (
	"encoding/json"
	"strings"

	"github.com/glimte/iac-go/schema"
)

// LegacyFields writes every primitive as an RLP byte string. The legacy wire
// form has no string framing, so a "0x" value is only accepted when it is
// unambiguous lowercase hex containing at least one letter digit; decimal
// looking ("0x1234") and non-hex ("0xzz") literals are rejected.
type LegacyFields struct{}

const (
	legacyTrue  = "1"
	legacyFalse = "0"
)

func (LegacyFields) Name() string { return "legacy" }

func asText(field interface{}) (string, bool) {
	switch v := field.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	default:
		return "", false
	}
}

func (LegacyFields) EncodeString(key, value string) (interface{}, error) {
	if rest, ok := strings.CutPrefix(value, hexPrefix); ok {
		switch {
		case !isHex(rest):
			return nil, &StringFramingError{Key: key, Value: value, Reason: "0x-prefixed value is not hex"}
		case !strings.ContainsAny(rest, "abcdef"):
			return nil, &StringFramingError{Key: key, Value: value, Reason: "0x-prefixed value looks decimal"}
		}
	}
	return value, nil
}

func (LegacyFields) DecodeString(key string, field interface{}) (string, error) {
	s, ok := asText(field)
	if !ok {
		return "", typeError(key, schema.KindString, field)
	}
	return s, nil
}

func (LegacyFields) EncodeNumber(key string, value json.Number, integer bool) (interface{}, error) {
	if !numberPattern.MatchString(string(value)) {
		return nil, typeError(key, schema.KindNumber, value)
	}
	return string(value), nil
}

func (LegacyFields) DecodeNumber(key string, field interface{}, integer bool) (json.Number, error) {
	expected := schema.KindNumber
	if integer {
		expected = schema.KindInteger
	}

	s, ok := asText(field)
	if !ok || s == "" {
		return "", typeError(key, expected, field)
	}
	if integer && !integerPattern.MatchString(s) {
		return "", typeError(key, expected, s)
	}
	if !numberPattern.MatchString(s) {
		return "", typeError(key, expected, s)
	}
	return json.Number(s), nil
}

func (LegacyFields) EncodeBool(key string, value bool) (interface{}, error) {
	if value {
		return legacyTrue, nil
	}
	return legacyFalse, nil
}

func (LegacyFields) DecodeBool(key string, field interface{}) (bool, error) {
	s, _ := asText(field)
	switch s {
	case legacyTrue:
		return true, nil
	case legacyFalse:
		return false, nil
	default:
		return false, typeError(key, schema.KindBoolean, field)
	}
}

func (LegacyFields) EncodeNull(key string) (interface{}, error) {
	return "", nil
}

func (LegacyFields) DecodeNull(key string, field interface{}) error {
	s, ok := asText(field)
	if !ok || s != "" {
		return typeError(key, schema.KindNull, field)
	}
	return nil
}
