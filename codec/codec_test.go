package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/fxamacker/cbor/v2"
	"github.com/glimte/iac-go/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseJSON(t *testing.T, text string) interface{} {
	t.Helper()
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.UseNumber()
	var v interface{}
	require.NoError(t, dec.Decode(&v))
	return v
}

// overTheWire passes an encoded value through the codec's real wire format
func overTheWire(t *testing.T, c *Codec, field interface{}) interface{} {
	t.Helper()
	var out interface{}
	if c == Legacy {
		data, err := rlp.EncodeToBytes(field)
		require.NoError(t, err)
		require.NoError(t, rlp.DecodeBytes(data, &out))
		return out
	}
	data, err := cbor.Marshal(field)
	require.NoError(t, err)
	require.NoError(t, cbor.Unmarshal(data, &out))
	return out
}

var everyKind = schema.Object(map[string]*schema.Item{
	"s":        schema.String(),
	"n":        schema.Number(),
	"i":        schema.Integer(),
	"b":        schema.Boolean(),
	"z":        schema.Null(),
	"arr":      schema.ArrayOf(schema.Integer()),
	"emptyArr": schema.ArrayOf(schema.String()),
	"tup":      schema.Tuple(schema.String(), schema.Boolean()),
	"obj":      schema.Object(map[string]*schema.Item{"inner": schema.String(), "t": schema.Boolean()}),
	"emptyObj": schema.Object(nil),
})

func TestRoundTrip(t *testing.T) {
	shared := []string{
		`{"s": "", "n": 0, "i": 0, "b": false, "arr": [], "emptyArr": [], "tup": ["", false], "obj": {"inner": "", "t": false}, "emptyObj": {}}`,
		`{"s": "str1", "n": -1.5, "i": -42, "b": true, "arr": [1, -2, 3], "emptyArr": [], "tup": ["x", true], "obj": {"inner": "hello world", "t": true}, "emptyObj": {}}`,
		`{"s": "héllo", "n": 123456.25, "i": 9007199254740993, "b": true, "arr": [0], "emptyArr": ["a", "b"], "tup": ["abc", false], "obj": {"inner": "DEADBEEF", "t": false}, "emptyObj": {}}`,
	}
	compactOnly := []string{
		`{"s": "0x", "n": 1, "i": 18446744073709551616, "b": true, "arr": [-18446744073709551617], "emptyArr": ["0x1234", "0xabc", "1234", "abc"], "tup": ["0xnothex", true], "obj": {"inner": "0x0", "t": true}, "emptyObj": {}}`,
		`{"s": "0x1234", "n": -0.001, "i": 18446744073709551615, "b": false, "arr": [], "emptyArr": ["0", "00", "0x00"], "tup": ["ab", false], "obj": {"inner": "0xABCD", "t": false}, "emptyObj": {}}`,
	}

	for _, c := range []*Codec{Legacy, Compact} {
		values := shared
		if c == Compact {
			values = append(append([]string{}, shared...), compactOnly...)
		}
		for _, text := range values {
			t.Run(c.Name()+" round trips "+text, func(t *testing.T) {
				value := parseJSON(t, text)

				field, err := c.Encode("payload", everyKind, value)
				require.NoError(t, err)

				decoded, err := c.Decode("payload", everyKind, overTheWire(t, c, field))
				require.NoError(t, err)
				assert.Equal(t, value, decoded)
			})
		}
	}

	t.Run("encodes properties in lexicographic order", func(t *testing.T) {
		item := schema.Object(map[string]*schema.Item{"b": schema.String(), "a": schema.String(), "c": schema.String()})
		field, err := Legacy.Encode("payload", item, map[string]interface{}{"c": "3", "a": "1", "b": "2"})
		require.NoError(t, err)
		assert.Equal(t, []interface{}{"1", "2", "3"}, field)
	})

	t.Run("normalizes Go values", func(t *testing.T) {
		type payload struct {
			Name  string `json:"s"`
			Count int    `json:"i"`
		}
		item := schema.Object(map[string]*schema.Item{"s": schema.String(), "i": schema.Integer()})
		field, err := Compact.Encode("payload", item, payload{Name: "x", Count: 7})
		require.NoError(t, err)
		assert.Equal(t, []interface{}{int64(7), "x"}, field)
	})

	t.Run("ignores extra keys", func(t *testing.T) {
		item := schema.Object(map[string]*schema.Item{"s": schema.String()})
		field, err := Legacy.Encode("payload", item, map[string]interface{}{"s": "x", "extra": 1})
		require.NoError(t, err)
		assert.Equal(t, []interface{}{"x"}, field)
	})

	t.Run("encodes top level primitives", func(t *testing.T) {
		field, err := Compact.Encode("payload", schema.String(), "0xab")
		require.NoError(t, err)
		assert.Equal(t, []byte{byte(HexWithPrefixEven), 0xab}, field)

		decoded, err := Compact.Decode("payload", schema.String(), field)
		require.NoError(t, err)
		assert.Equal(t, "0xab", decoded)
	})
}

func TestNumbersKeepTheirText(t *testing.T) {
	numbers := []string{
		"123456789012345678901234567890",
		"-123456789012345678901234567890.5",
		"0.1000000000000000055511151231257827",
		"1.0", "-0", "-0.0", "1e3", "1E+3", "2.5e-7", "0.25", "-7",
	}

	for _, c := range []*Codec{Legacy, Compact} {
		for _, text := range numbers {
			t.Run(c.Name()+" keeps "+text, func(t *testing.T) {
				field, err := c.Encode("payload", schema.Number(), json.Number(text))
				require.NoError(t, err)

				decoded, err := c.Decode("payload", schema.Number(), overTheWire(t, c, field))
				require.NoError(t, err)
				assert.Equal(t, json.Number(text), decoded)
			})
		}
	}

	t.Run("uses native CBOR numbers when they are exact", func(t *testing.T) {
		field, err := Compact.Encode("payload", schema.Number(), json.Number("-1.5"))
		require.NoError(t, err)
		assert.Equal(t, -1.5, field)

		field, err = Compact.Encode("payload", schema.Integer(), json.Number("-0"))
		require.NoError(t, err)
		assert.Equal(t, "-0", field)
	})

	t.Run("rejects malformed number text on the compact wire", func(t *testing.T) {
		_, err := Compact.Decode("payload", schema.Number(), "12abc")
		assert.ErrorIs(t, err, ErrInvalidSchemaType)

		_, err = Compact.Decode("payload", schema.Integer(), "1.5")
		assert.ErrorIs(t, err, ErrInvalidSchemaType)
	})
}

func TestEncodeErrors(t *testing.T) {
	item := schema.Object(map[string]*schema.Item{
		"s":   schema.String(),
		"i":   schema.Integer(),
		"z":   schema.Null(),
		"tup": schema.Tuple(schema.String(), schema.String()),
	})
	valid := func() map[string]interface{} {
		return map[string]interface{}{"s": "x", "i": 1, "tup": []interface{}{"a", "b"}}
	}

	t.Run("reports the key, expected kind and value of a type mismatch", func(t *testing.T) {
		value := valid()
		value["s"] = 12
		_, err := Compact.Encode("payload", item, value)
		require.ErrorIs(t, err, ErrInvalidSchemaType)

		var typeErr *SchemaTypeError
		require.True(t, errors.As(err, &typeErr))
		assert.Equal(t, "s", typeErr.Key)
		assert.Equal(t, schema.KindString, typeErr.Expected)
		assert.Contains(t, err.Error(), `expected string, got number (12)`)
	})

	t.Run("rejects fractional integers", func(t *testing.T) {
		value := valid()
		value["i"] = 1.5
		_, err := Legacy.Encode("payload", item, value)
		assert.ErrorIs(t, err, ErrInvalidSchemaType)
	})

	t.Run("rejects missing properties", func(t *testing.T) {
		value := valid()
		delete(value, "s")
		_, err := Compact.Encode("payload", item, value)
		assert.ErrorIs(t, err, ErrInvalidPayload)
	})

	t.Run("rejects values for null properties", func(t *testing.T) {
		value := valid()
		value["z"] = "x"
		_, err := Compact.Encode("payload", item, value)
		assert.ErrorIs(t, err, ErrInvalidSchemaType)

		value["z"] = nil
		_, err = Compact.Encode("payload", item, value)
		assert.ErrorIs(t, err, ErrInvalidSchemaType)
	})

	t.Run("rejects tuples of the wrong length", func(t *testing.T) {
		value := valid()
		value["tup"] = []interface{}{"a"}
		_, err := Legacy.Encode("payload", item, value)
		assert.ErrorIs(t, err, ErrInvalidPayload)
	})

	t.Run("rejects an absent payload", func(t *testing.T) {
		_, err := Legacy.Encode("payload", item, nil)
		assert.ErrorIs(t, err, ErrInvalidPayload)
	})

	t.Run("rejects ambiguous 0x strings in the legacy codec", func(t *testing.T) {
		for _, x := range []string{"0x1234", "0x", "0x0", "0xnothex", "0xABCD", "0x12 ab"} {
			value := valid()
			value["s"] = x
			_, err := Legacy.Encode("payload", item, value)
			assert.ErrorIs(t, err, ErrInvalidStringFraming, x)
		}
	})

	t.Run("accepts lowercase hex with letters in the legacy codec", func(t *testing.T) {
		for _, x := range []string{"0xabcd", "0xdeadbeef", "0x1a", "0xf", "0x5b38da6a701c568545dcfcb03fcb875f56beddc4"} {
			field, err := Legacy.Encode("payload", schema.String(), x)
			require.NoError(t, err, x)

			decoded, err := Legacy.Decode("payload", schema.String(), overTheWire(t, Legacy, field))
			require.NoError(t, err)
			assert.Equal(t, x, decoded)
		}
	})

	t.Run("rejects invalid UTF-8 instead of repairing it", func(t *testing.T) {
		type nested struct {
			Memo string `json:"memo"`
		}
		for _, c := range []*Codec{Legacy, Compact} {
			_, err := c.Encode("payload", schema.Object(map[string]*schema.Item{"x": schema.String()}),
				map[string]interface{}{"x": "a\xffb"})
			require.ErrorIs(t, err, ErrInvalidStringFraming, c.Name())

			var framingErr *StringFramingError
			require.True(t, errors.As(err, &framingErr))
			assert.Equal(t, "x", framingErr.Key)

			_, err = c.Encode("payload", schema.ArrayOf(schema.String()), []string{"ok", "\xfe"})
			assert.ErrorIs(t, err, ErrInvalidStringFraming, c.Name())

			_, err = c.Encode("payload", schema.Object(map[string]*schema.Item{"memo": schema.String()}),
				&nested{Memo: "\xc3("})
			assert.ErrorIs(t, err, ErrInvalidStringFraming, c.Name())
		}
	})

	t.Run("rejects values that cannot be normalized", func(t *testing.T) {
		_, err := Compact.Encode("payload", item, map[string]interface{}{"s": make(chan int)})
		assert.ErrorIs(t, err, ErrInvalidPayload)
	})
}

func TestDecodeErrors(t *testing.T) {
	item := schema.Object(map[string]*schema.Item{"a": schema.String(), "b": schema.Boolean()})

	t.Run("reports missing positional fields", func(t *testing.T) {
		_, err := Legacy.Decode("payload", item, []interface{}{[]byte("x")})
		require.ErrorIs(t, err, ErrPropertyEmpty)

		var emptyErr *PropertyEmptyError
		require.True(t, errors.As(err, &emptyErr))
		assert.Equal(t, 1, emptyErr.Index)
		assert.Equal(t, 2, emptyErr.Expected)
	})

	t.Run("rejects surplus fields", func(t *testing.T) {
		_, err := Compact.Decode("payload", item, []interface{}{"x", true, "y"})
		assert.ErrorIs(t, err, ErrInvalidPayload)
	})

	t.Run("rejects wire values of the wrong kind", func(t *testing.T) {
		_, err := Compact.Decode("payload", item, []interface{}{uint64(1), true})
		assert.ErrorIs(t, err, ErrInvalidSchemaType)

		_, err = Legacy.Decode("payload", item, []interface{}{[]byte("x"), []byte("2")})
		assert.ErrorIs(t, err, ErrInvalidSchemaType)

		_, err = Legacy.Decode("payload", item, []byte("not a list"))
		assert.ErrorIs(t, err, ErrInvalidSchemaType)
	})

	t.Run("rejects malformed string frames", func(t *testing.T) {
		_, err := Compact.Decode("payload", item, []interface{}{[]byte{9, 1}, true})
		assert.ErrorIs(t, err, ErrInvalidStringFraming)
	})

	t.Run("rejects malformed legacy numbers", func(t *testing.T) {
		for _, text := range []string{"", "1.5", "abc", "01", "inf"} {
			_, err := Legacy.Decode("payload", schema.Integer(), []byte(text))
			assert.ErrorIs(t, err, ErrInvalidSchemaType, text)
		}
		_, err := Legacy.Decode("payload", schema.Number(), []byte("NaN"))
		assert.ErrorIs(t, err, ErrInvalidSchemaType)
	})

	t.Run("rejects fractional compact integers", func(t *testing.T) {
		_, err := Compact.Decode("payload", schema.Integer(), 1.5)
		assert.ErrorIs(t, err, ErrInvalidSchemaType)
	})
}
