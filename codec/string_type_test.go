package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameString(t *testing.T) {
	cases := []struct {
		value  string
		frame  []byte
		framed bool
	}{
		{"", nil, false},
		{"hello", nil, false},
		{"DEADBEEF", nil, false},
		{"0x", []byte{byte(HexWithPrefixEven)}, true},
		{"0x1234", []byte{byte(HexWithPrefixEven), 0x12, 0x34}, true},
		{"0xabc", []byte{byte(HexWithPrefixOdd), 0x0a, 0xbc}, true},
		{"1234", []byte{byte(HexWithoutPrefixEven), 0x12, 0x34}, true},
		{"abc", []byte{byte(HexWithoutPrefixOdd), 0x0a, 0xbc}, true},
		{"0", []byte{byte(HexWithoutPrefixOdd), 0x00}, true},
		{"0xzz", []byte{byte(StringWithHexPrefix), 'z', 'z'}, true},
		{"0xABCD", []byte{byte(StringWithHexPrefix), 'A', 'B', 'C', 'D'}, true},
	}

	for _, tc := range cases {
		t.Run("frames "+tc.value, func(t *testing.T) {
			frame, framed, err := FrameString(tc.value)
			require.NoError(t, err)
			assert.Equal(t, tc.framed, framed)
			assert.Equal(t, tc.frame, frame)

			if framed {
				s, err := UnframeString(frame)
				require.NoError(t, err)
				assert.Equal(t, tc.value, s)
			}
		})
	}

	t.Run("rejects invalid UTF-8", func(t *testing.T) {
		_, _, err := FrameString("\xff\xfe")
		assert.Error(t, err)
	})
}

func TestUnframeString(t *testing.T) {
	t.Run("rejects malformed frames", func(t *testing.T) {
		for name, frame := range map[string][]byte{
			"empty frame":        {},
			"empty unprefixed":   {byte(HexWithoutPrefixEven)},
			"missing pad nibble": {byte(HexWithPrefixOdd), 0x1a},
			"empty odd payload":  {byte(HexWithoutPrefixOdd)},
			"unknown tag":        {9, 0x01},
			"invalid UTF-8 tail": {byte(StringWithHexPrefix), 0xff},
		} {
			_, err := UnframeString(frame)
			assert.Error(t, err, name)
		}
	})
}

func TestClassifyString(t *testing.T) {
	t.Run("names every tag", func(t *testing.T) {
		for st, name := range map[StringType]string{
			StringWithHexPrefix:  "string-with-hex-prefix",
			HexWithPrefixEven:    "hex-with-prefix-even",
			HexWithoutPrefixEven: "hex-without-prefix-even",
			HexWithPrefixOdd:     "hex-with-prefix-odd",
			HexWithoutPrefixOdd:  "hex-without-prefix-odd",
		} {
			assert.Equal(t, name, st.String())
		}
		assert.Equal(t, "unknown(7)", StringType(7).String())
	})
}
