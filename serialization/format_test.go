package serialization

import (
	"testing"

	"github.com/glimte/iac-go/contracts"
	"github.com/glimte/iac-go/internal/base58check"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectVersion(t *testing.T) {
	batch := []contracts.Message{stringMsg("1", "x")}

	t.Run("detects v2 envelopes", func(t *testing.T) {
		envelopes, err := NewLegacyFormat(newLegacyRegistry(t)).Serialize(batch)
		require.NoError(t, err)

		version, err := DetectVersion(envelopes[0])
		require.NoError(t, err)
		assert.Equal(t, contracts.EnvelopeV2, version)
	})

	t.Run("detects v2 chunks", func(t *testing.T) {
		envelopes, err := NewLegacyFormat(newLegacyRegistry(t), WithChunkSizes(10, 10)).Serialize(batch)
		require.NoError(t, err)
		require.Greater(t, len(envelopes), 1)

		version, err := DetectVersion(envelopes[1])
		require.NoError(t, err)
		assert.Equal(t, contracts.EnvelopeV2, version)
	})

	t.Run("detects v3 envelopes", func(t *testing.T) {
		envelopes, err := NewCompactFormat(newCompactRegistry(t)).Serialize(batch)
		require.NoError(t, err)

		version, err := DetectVersion(envelopes[0])
		require.NoError(t, err)
		assert.Equal(t, contracts.EnvelopeV3, version)
	})

	t.Run("rejects unknown payloads", func(t *testing.T) {
		_, err := DetectVersion(base58check.Encode([]byte("hello")))
		assert.ErrorIs(t, err, ErrUnsupportedVersion)
	})

	t.Run("rejects text that is not base58check", func(t *testing.T) {
		_, err := DetectVersion("abc")
		assert.ErrorIs(t, err, ErrMalformedEnvelope)
	})
}
