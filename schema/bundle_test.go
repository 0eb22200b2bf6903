package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/glimte/iac-go/contracts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBundle(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestBundle(t *testing.T) {
	t.Run("registers YAML bundles", func(t *testing.T) {
		path := writeBundle(t, "schemas.yaml", `
schemas:
  - type: TransactionSignRequest
    protocol: xtz
    schema:
      type: object
      properties:
        transaction: {type: string}
        publicKey: {type: string}
  - type: "1008"
    schema: {type: string}
`)
		bundle, err := LoadBundle(path)
		require.NoError(t, err)
		require.Len(t, bundle.Schemas, 2)

		r := NewRegistry()
		require.NoError(t, bundle.RegisterInto(r))
		assert.True(t, r.Has(contracts.TransactionSignRequest, "xtz-btez"))
		assert.True(t, r.Has(1008, "eth"))
	})

	t.Run("registers JSON bundles", func(t *testing.T) {
		path := writeBundle(t, "schemas.json", `{"schemas": [{"type": "6", "protocol": "btc", "schema": {"type": "object", "properties": {"signed": {"type": "string"}}}}]}`)
		bundle, err := LoadBundle(path)
		require.NoError(t, err)

		r := NewRegistry()
		require.NoError(t, bundle.RegisterInto(r))
		assert.Equal(t, []string{"6-btc"}, r.Keys())
	})

	t.Run("rejects unknown extensions", func(t *testing.T) {
		_, err := LoadBundle(writeBundle(t, "schemas.toml", ""))
		assert.ErrorIs(t, err, ErrInvalidDefinition)
	})

	t.Run("rejects bad entries", func(t *testing.T) {
		r := NewRegistry()
		bad := &Bundle{Schemas: []BundleEntry{{Type: "Unknown", Schema: &Definition{Type: "string"}}}}
		assert.ErrorIs(t, bad.RegisterInto(r), ErrInvalidDefinition)

		missing := &Bundle{Schemas: []BundleEntry{{Type: "1008"}}}
		assert.ErrorIs(t, missing.RegisterInto(r), ErrInvalidDefinition)
	})
}
