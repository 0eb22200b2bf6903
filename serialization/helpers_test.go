package serialization

import (
	"testing"

	"github.com/glimte/iac-go/contracts"
	"github.com/glimte/iac-go/schema"
	"github.com/stretchr/testify/require"
)

const (
	stringMessage  contracts.MessageType = 1008
	numericMessage contracts.MessageType = 1009
)

var stringSchema = schema.Object(map[string]*schema.Item{
	"x": schema.String(),
})

var numericSchema = schema.Object(map[string]*schema.Item{
	"amount": schema.Integer(),
	"fee":    schema.Number(),
	"memo":   schema.Null(),
})

func newLegacyRegistry(t *testing.T) *schema.Registry {
	t.Helper()
	r := schema.NewLegacyRegistry()
	require.NoError(t, schema.RegisterBuiltins(r))
	require.NoError(t, r.Register(stringMessage, "", stringSchema))
	require.NoError(t, r.Register(numericMessage, "", numericSchema))
	r.Seal()
	return r
}

func newCompactRegistry(t *testing.T) *schema.Registry {
	t.Helper()
	r := schema.NewRegistry()
	require.NoError(t, schema.RegisterBuiltins(r))
	require.NoError(t, r.Register(stringMessage, "", stringSchema))
	require.NoError(t, r.Register(numericMessage, "", numericSchema))
	r.Seal()
	return r
}

func stringMsg(id, x string) contracts.Message {
	return contracts.Message{
		ID:       id,
		Type:     stringMessage,
		Protocol: contracts.ProtocolEthereum,
		Payload:  map[string]interface{}{"x": x},
	}
}
