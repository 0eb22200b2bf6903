package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefinitionCompile(t *testing.T) {
	t.Run("compiles a JSON document with references", func(t *testing.T) {
		def, err := ParseJSON([]byte(`{
			"$ref": "#/definitions/Request",
			"definitions": {
				"Request": {
					"type": "object",
					"properties": {
						"inputs": {"type": "array", "items": {"$ref": "#/definitions/Input"}},
						"pair": {"type": "array", "prefixItems": [{"type": "string"}, {"type": "integer"}]},
						"memo": {"type": "null"}
					},
					"required": ["inputs", "pair"]
				},
				"Input": {
					"type": "object",
					"properties": {"txHash": {"type": "string"}, "value": {"type": "number"}, "spent": {"type": "boolean"}}
				}
			}
		}`))
		require.NoError(t, err)

		item, err := def.Compile()
		require.NoError(t, err)
		assert.Equal(t, "{inputs:[{spent:boolean,txHash:string,value:number}],memo:null,pair:[string,integer;tuple]}", item.String())
	})

	t.Run("compiles a YAML document", func(t *testing.T) {
		def, err := ParseYAML([]byte(`
type: object
properties:
  transaction:
    type: object
    properties:
      amount: {type: string}
  publicKey: {type: string}
`))
		require.NoError(t, err)

		item, err := def.Compile()
		require.NoError(t, err)
		assert.Equal(t, "{publicKey:string,transaction:{amount:string}}", item.String())
	})

	t.Run("rejects invalid documents", func(t *testing.T) {
		cases := map[string]string{
			"unknown type":        `{"type": "date"}`,
			"missing type":        `{}`,
			"dangling reference":  `{"$ref": "#/definitions/Missing"}`,
			"external reference":  `{"$ref": "other.json#/x"}`,
			"recursive reference": `{"$ref": "#/definitions/A", "definitions": {"A": {"type": "array", "items": {"$ref": "#/definitions/A"}}}}`,
			"items and prefix":    `{"type": "array", "items": {"type": "string"}, "prefixItems": [{"type": "string"}]}`,
			"undefined required":  `{"type": "object", "properties": {}, "required": ["x"]}`,
		}
		for name, doc := range cases {
			def, err := ParseJSON([]byte(doc))
			require.NoError(t, err, name)
			_, err = def.Compile()
			assert.ErrorIs(t, err, ErrInvalidDefinition, name)
		}
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		_, err := ParseJSON([]byte(`{`))
		assert.ErrorIs(t, err, ErrInvalidDefinition)
		_, err = ParseYAML([]byte("type: [\n"))
		assert.ErrorIs(t, err, ErrInvalidDefinition)
	})
}

func TestDescribe(t *testing.T) {
	t.Run("compiles back to the same item", func(t *testing.T) {
		item := Object(map[string]*Item{
			"a": Tuple(String(), Null()),
			"b": ArrayOf(Object(map[string]*Item{"c": Number()})),
			"d": Null(),
		})
		def := Describe(item)
		assert.Equal(t, []string{"a", "b"}, def.Required)

		compiled, err := def.Compile()
		require.NoError(t, err)
		assert.True(t, item.Equal(compiled))
	})
}
