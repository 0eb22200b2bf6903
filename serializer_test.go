package iac

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/glimte/iac-go/codec"
	"github.com/glimte/iac-go/contracts"
	"github.com/glimte/iac-go/schema"
	"github.com/glimte/iac-go/serialization"
	"github.com/glimte/iac-go/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func messageSign(id, message string) contracts.Message {
	return contracts.Message{
		ID:       id,
		Type:     contracts.MessageSignRequest,
		Protocol: contracts.ProtocolEthereum,
		Payload: map[string]interface{}{
			"message":     message,
			"publicKey":   "03b1f2a5c4",
			"callbackURL": "",
		},
	}
}

func TestNewSerializer(t *testing.T) {
	t.Run("defaults to v3 with sealed builtin registries", func(t *testing.T) {
		s, err := NewSerializer()
		require.NoError(t, err)
		assert.Equal(t, contracts.EnvelopeV3, s.Version())

		for _, version := range []contracts.EnvelopeVersion{contracts.EnvelopeV2, contracts.EnvelopeV3} {
			r, err := s.Registry(version)
			require.NoError(t, err)
			assert.True(t, r.Sealed())
			assert.True(t, r.Has(contracts.AccountShareResponse, contracts.ProtocolBitcoin))
		}
	})

	t.Run("rejects unknown versions", func(t *testing.T) {
		_, err := NewSerializerWithOptions(WithVersion(7))
		assert.ErrorIs(t, err, serialization.ErrUnsupportedVersion)
	})

	t.Run("uses supplied registries", func(t *testing.T) {
		r := schema.NewRegistry()
		r.MustRegister(1008, "", schema.Object(map[string]*schema.Item{"x": schema.String()}))

		s, err := NewSerializerWithOptions(WithCompactRegistry(r))
		require.NoError(t, err)

		got, err := s.Registry(contracts.EnvelopeV3)
		require.NoError(t, err)
		assert.Same(t, r, got)
		assert.False(t, got.Has(contracts.AccountShareRequest, ""))
	})

	t.Run("loads schema files", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "schemas.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
schemas:
  - type: "1008"
    schema:
      type: object
      properties:
        x: {type: string}
`), 0644))

		s, err := NewSerializerWithOptions(WithSchemaFiles(path))
		require.NoError(t, err)

		msg := contracts.Message{ID: "12", Type: 1008, Protocol: contracts.ProtocolBitcoin, Payload: map[string]interface{}{"x": "0x1234"}}
		envelopes, err := s.Serialize(msg)
		require.NoError(t, err)

		result, err := s.Deserialize(envelopes...)
		require.NoError(t, err)
		assert.Equal(t, []contracts.Message{msg}, result.Messages)

		_, err = s.SerializeAs(contracts.EnvelopeV2, msg)
		assert.ErrorIs(t, err, codec.ErrInvalidStringFraming)
	})

	t.Run("fails on a missing schema file", func(t *testing.T) {
		_, err := NewSerializerWithOptions(WithSchemaFiles(filepath.Join(t.TempDir(), "missing.yaml")))
		assert.Error(t, err)
	})
}

func TestSerializerRoundTrip(t *testing.T) {
	s, err := NewSerializerWithOptions(WithChunkSizes(20, 16))
	require.NoError(t, err)

	batch := []contracts.Message{messageSign("1", "hello"), messageSign("2", "world")}

	for _, version := range []contracts.EnvelopeVersion{contracts.EnvelopeV2, contracts.EnvelopeV3} {
		t.Run("round trips "+version.String(), func(t *testing.T) {
			envelopes, err := s.SerializeAs(version, batch...)
			require.NoError(t, err)

			result, err := s.Deserialize(envelopes...)
			require.NoError(t, err)
			assert.Equal(t, version, result.Version)
			assert.True(t, result.Complete())
			assert.Equal(t, batch, result.Messages)
		})
	}

	t.Run("chunks v2 envelopes", func(t *testing.T) {
		envelopes, err := s.SerializeAs(contracts.EnvelopeV2, batch...)
		require.NoError(t, err)
		assert.Greater(t, len(envelopes), 1)

		result, err := s.Deserialize(envelopes[1:]...)
		require.NoError(t, err)
		assert.False(t, result.Complete())
		assert.Equal(t, []uint{0}, result.Incomplete.Missing())
	})

	t.Run("rejects batches mixing versions", func(t *testing.T) {
		v2, err := s.SerializeAs(contracts.EnvelopeV2, messageSign("1", "a"))
		require.NoError(t, err)
		v3, err := s.SerializeAs(contracts.EnvelopeV3, messageSign("1", "a"))
		require.NoError(t, err)

		_, err = s.Deserialize(v3[0], v2[0])
		assert.ErrorIs(t, err, serialization.ErrMixedVersions)
	})

	t.Run("rejects an empty batch", func(t *testing.T) {
		_, err := s.Deserialize()
		assert.ErrorIs(t, err, serialization.ErrEmptyBatch)
	})

	t.Run("rejects unknown versions explicitly requested", func(t *testing.T) {
		_, err := s.SerializeAs(4, batch...)
		assert.ErrorIs(t, err, serialization.ErrUnsupportedVersion)
		_, err = s.DeserializeAs(1, "x")
		assert.ErrorIs(t, err, serialization.ErrUnsupportedVersion)
	})
}

func TestSerializerValidator(t *testing.T) {
	t.Run("resolves builtin validators", func(t *testing.T) {
		s, err := NewSerializer()
		require.NoError(t, err)
		assert.IsType(t, &validation.EthereumValidator{}, s.Validator("eth-erc20-usdt"))
		assert.IsType(t, &validation.DefaultValidator{}, s.Validator("btc"))
	})

	t.Run("uses supplied validators", func(t *testing.T) {
		r := validation.NewRegistry()
		r.MustRegister("btc", func() validation.Validator { return validation.NewEthereumValidator(1) })

		s, err := NewSerializerWithOptions(WithValidators(r))
		require.NoError(t, err)
		assert.IsType(t, &validation.EthereumValidator{}, s.Validator("btc_segwit"))
	})
}
