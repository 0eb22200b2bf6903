package codec

import (
	"encoding/json"
	"math"
	"math/big"
	"strconv"

	"github.com/glimte/iac-go/schema"
)

// CompactFields writes native CBOR primitives. Plain strings travel as CBOR
// text; hex-looking strings are framed into CBOR byte strings.
type CompactFields struct{}

func (CompactFields) Name() string { return "compact" }

func (CompactFields) EncodeString(key, value string) (interface{}, error) {
	frame, framed, err := FrameString(value)
	if err != nil {
		return nil, &StringFramingError{Key: key, Value: value, Reason: err.Error()}
	}
	if !framed {
		return value, nil
	}
	return frame, nil
}

func (CompactFields) DecodeString(key string, field interface{}) (string, error) {
	switch v := field.(type) {
	case string:
		return v, nil
	case []byte:
		s, err := UnframeString(v)
		if err != nil {
			return "", &StringFramingError{Key: key, Value: describe(v), Reason: err.Error()}
		}
		return s, nil
	default:
		return "", typeError(key, schema.KindString, field)
	}
}

// EncodeNumber picks the native CBOR form whose decoding reproduces the
// number's text exactly. Values no native form preserves, such as "1.0",
// "-0", "1e3" or fractions beyond float64 precision, travel as CBOR text.
func (CompactFields) EncodeNumber(key string, value json.Number, integer bool) (interface{}, error) {
	text := string(value)
	if i, err := value.Int64(); err == nil && strconv.FormatInt(i, 10) == text {
		return i, nil
	}
	if bi, ok := new(big.Int).SetString(text, 10); ok && bi.String() == text {
		return bi, nil
	}
	if !integer {
		if f, err := value.Float64(); err == nil && strconv.FormatFloat(f, 'f', -1, 64) == text {
			return f, nil
		}
	}
	if !numberText(text, integer) {
		expected := schema.KindNumber
		if integer {
			expected = schema.KindInteger
		}
		return nil, typeError(key, expected, value)
	}
	return text, nil
}

func numberText(s string, integer bool) bool {
	if integer {
		return integerPattern.MatchString(s)
	}
	return numberPattern.MatchString(s)
}

func (CompactFields) DecodeNumber(key string, field interface{}, integer bool) (json.Number, error) {
	expected := schema.KindNumber
	if integer {
		expected = schema.KindInteger
	}

	switch v := field.(type) {
	case uint64:
		return json.Number(strconv.FormatUint(v, 10)), nil
	case int64:
		return json.Number(strconv.FormatInt(v, 10)), nil
	case big.Int:
		return json.Number(v.String()), nil
	case *big.Int:
		return json.Number(v.String()), nil
	case float32:
		return formatFloat(key, float64(v), integer, expected)
	case float64:
		return formatFloat(key, v, integer, expected)
	case string:
		if !numberText(v, integer) {
			return "", typeError(key, expected, v)
		}
		return json.Number(v), nil
	default:
		return "", typeError(key, expected, field)
	}
}

func formatFloat(key string, f float64, integer bool, expected schema.Kind) (json.Number, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || (integer && f != math.Trunc(f)) {
		return "", typeError(key, expected, f)
	}
	return json.Number(strconv.FormatFloat(f, 'f', -1, 64)), nil
}

func (CompactFields) EncodeBool(key string, value bool) (interface{}, error) {
	return value, nil
}

func (CompactFields) DecodeBool(key string, field interface{}) (bool, error) {
	b, ok := field.(bool)
	if !ok {
		return false, typeError(key, schema.KindBoolean, field)
	}
	return b, nil
}

func (CompactFields) EncodeNull(key string) (interface{}, error) {
	return nil, nil
}

func (CompactFields) DecodeNull(key string, field interface{}) error {
	if field != nil {
		return typeError(key, schema.KindNull, field)
	}
	return nil
}
