package codec

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"

	"github.com/glimte/iac-go/schema"
)

// FieldCodec converts leaf values to and from one wire representation
type FieldCodec interface {
	Name() string

	EncodeString(key, value string) (interface{}, error)
	DecodeString(key string, field interface{}) (string, error)

	EncodeNumber(key string, value json.Number, integer bool) (interface{}, error)
	DecodeNumber(key string, field interface{}, integer bool) (json.Number, error)

	EncodeBool(key string, value bool) (interface{}, error)
	DecodeBool(key string, field interface{}) (bool, error)

	EncodeNull(key string) (interface{}, error)
	DecodeNull(key string, field interface{}) error
}

// Codec walks a schema item and delegates leaf values to a FieldCodec
type Codec struct {
	fields FieldCodec
}

// New creates a codec for the given leaf representation
func New(fields FieldCodec) *Codec {
	return &Codec{fields: fields}
}

var (
	// Legacy is the codec used by the RLP envelope
	Legacy = New(LegacyFields{})
	// Compact is the codec used by the CBOR envelope
	Compact = New(CompactFields{})
)

// Name returns the name of the leaf representation
func (c *Codec) Name() string {
	return c.fields.Name()
}

// Encode converts a payload into its positional wire form. The value may be
// any Go value that marshals to JSON; it is normalized first. A nil value is
// treated as absent. Strings that are not valid UTF-8 are rejected rather
// than repaired.
func (c *Codec) Encode(key string, item *schema.Item, value interface{}) (interface{}, error) {
	if err := checkUTF8(key, value); err != nil {
		return nil, err
	}
	normalized, err := Normalize(value)
	if err != nil {
		return nil, &PayloadError{Key: key, Reason: err.Error()}
	}
	return c.encode(key, item, normalized, normalized != nil)
}

// Decode converts a positional wire form back into a JSON-shaped value.
// NULL items decode to nil.
func (c *Codec) Decode(key string, item *schema.Item, field interface{}) (interface{}, error) {
	value, _, err := c.decode(key, item, field)
	return value, err
}

var (
	integerPattern = regexp.MustCompile(`^-?(0|[1-9][0-9]*)$`)
	numberPattern  = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)
)

func (c *Codec) encode(key string, item *schema.Item, value interface{}, present bool) (interface{}, error) {
	if item.Kind == schema.KindNull {
		if present {
			return nil, typeError(key, schema.KindNull, value)
		}
		return c.fields.EncodeNull(key)
	}
	if !present {
		return nil, &PayloadError{Key: key, Reason: fmt.Sprintf("missing %s value", item.Kind)}
	}

	switch item.Kind {
	case schema.KindString:
		s, ok := value.(string)
		if !ok {
			return nil, typeError(key, item.Kind, value)
		}
		return c.fields.EncodeString(key, s)

	case schema.KindNumber, schema.KindInteger:
		n, ok := value.(json.Number)
		if !ok {
			return nil, typeError(key, item.Kind, value)
		}
		integer := item.Kind == schema.KindInteger
		if integer && !integerPattern.MatchString(string(n)) {
			return nil, typeError(key, item.Kind, value)
		}
		return c.fields.EncodeNumber(key, n, integer)

	case schema.KindBoolean:
		b, ok := value.(bool)
		if !ok {
			return nil, typeError(key, item.Kind, value)
		}
		return c.fields.EncodeBool(key, b)

	case schema.KindArray:
		list, ok := value.([]interface{})
		if !ok {
			return nil, typeError(key, item.Kind, value)
		}
		return c.encodeArray(key, item, list)

	case schema.KindObject:
		obj, ok := value.(map[string]interface{})
		if !ok {
			return nil, typeError(key, item.Kind, value)
		}
		names := item.PropertyNames()
		out := make([]interface{}, 0, len(names))
		for _, name := range names {
			prop, present := obj[name]
			field, err := c.encode(name, item.Properties[name], prop, present)
			if err != nil {
				return nil, err
			}
			out = append(out, field)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("%w: unknown kind %d at %q", ErrInvalidSchemaType, item.Kind, key)
	}
}

func (c *Codec) encodeArray(key string, item *schema.Item, list []interface{}) (interface{}, error) {
	if item.IsTuple() && len(list) != len(item.Tuple) {
		return nil, &PayloadError{Key: key, Reason: fmt.Sprintf("expected %d tuple elements, got %d", len(item.Tuple), len(list))}
	}

	out := make([]interface{}, 0, len(list))
	for idx, elem := range list {
		elemItem := item.Items
		if item.IsTuple() {
			elemItem = item.Tuple[idx]
		}
		field, err := c.encode(elementKey(key, idx), elemItem, elem, true)
		if err != nil {
			return nil, err
		}
		out = append(out, field)
	}
	return out, nil
}

func (c *Codec) decode(key string, item *schema.Item, field interface{}) (interface{}, bool, error) {
	switch item.Kind {
	case schema.KindNull:
		if err := c.fields.DecodeNull(key, field); err != nil {
			return nil, false, err
		}
		return nil, false, nil

	case schema.KindString:
		s, err := c.fields.DecodeString(key, field)
		return s, true, err

	case schema.KindNumber, schema.KindInteger:
		n, err := c.fields.DecodeNumber(key, field, item.Kind == schema.KindInteger)
		return n, true, err

	case schema.KindBoolean:
		b, err := c.fields.DecodeBool(key, field)
		return b, true, err

	case schema.KindArray:
		list, ok := field.([]interface{})
		if !ok {
			return nil, false, typeError(key, item.Kind, field)
		}
		if item.IsTuple() {
			if err := checkFieldCount(key, len(item.Tuple), len(list)); err != nil {
				return nil, false, err
			}
		}
		out := make([]interface{}, 0, len(list))
		for idx, elem := range list {
			elemItem := item.Items
			if item.IsTuple() {
				elemItem = item.Tuple[idx]
			}
			value, _, err := c.decode(elementKey(key, idx), elemItem, elem)
			if err != nil {
				return nil, false, err
			}
			out = append(out, value)
		}
		return out, true, nil

	case schema.KindObject:
		list, ok := field.([]interface{})
		if !ok {
			return nil, false, typeError(key, item.Kind, field)
		}
		names := item.PropertyNames()
		if err := checkFieldCount(key, len(names), len(list)); err != nil {
			return nil, false, err
		}
		out := make(map[string]interface{}, len(names))
		for idx, name := range names {
			value, present, err := c.decode(name, item.Properties[name], list[idx])
			if err != nil {
				return nil, false, err
			}
			if present {
				out[name] = value
			}
		}
		return out, true, nil

	default:
		return nil, false, fmt.Errorf("%w: unknown kind %d at %q", ErrInvalidSchemaType, item.Kind, key)
	}
}

func checkFieldCount(key string, expected, actual int) error {
	if actual < expected {
		return &PropertyEmptyError{Key: key, Index: actual, Expected: expected, Actual: actual}
	}
	if actual > expected {
		return &PayloadError{Key: key, Reason: fmt.Sprintf("expected %d fields, got %d", expected, actual)}
	}
	return nil
}

func elementKey(key string, idx int) string {
	return key + "[" + strconv.Itoa(idx) + "]"
}

// Normalize converts any JSON-marshalable value into the JSON value model
// used by the codec: map[string]interface{}, []interface{}, string,
// json.Number, bool and nil.
func Normalize(value interface{}) (interface{}, error) {
	if value == nil {
		return nil, nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out interface{}
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to normalize payload: %w", err)
	}
	return out, nil
}

func kindOf(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case json.Number, float64, float32, int, int64, uint64:
		return "number"
	case bool:
		return "boolean"
	case []byte:
		return "bytes"
	case []interface{}:
		return "array"
	case map[string]interface{}:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

const maxDescribedLength = 64

func describe(v interface{}) string {
	var s string
	switch val := v.(type) {
	case []byte:
		s = "0x" + hex.EncodeToString(val)
	case string:
		s = strconv.Quote(val)
	default:
		s = fmt.Sprintf("%v", val)
	}
	if len(s) > maxDescribedLength {
		s = s[:maxDescribedLength] + "..."
	}
	return s
}
