package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/glimte/iac-go/contracts"
)

var (
	accountShareRequestSchema  = MustGenerate(contracts.AccountShareRequestPayload{})
	legacyAccountShareSchema   = MustGenerate(contracts.LegacyAccountShareResponse{})
	accountShareResponseSchema = MustGenerate(contracts.AccountShareResponsePayload{})
	messageSignRequestSchema   = MustGenerate(contracts.MessageSignRequestPayload{})
	messageSignResponseSchema  = MustGenerate(contracts.MessageSignResponsePayload{})
	signedTransactionSchema    = MustGenerate(contracts.SignedTransactionPayload{})
	ethereumSignRequestSchema  = MustGenerate(contracts.EthereumSignRequestPayload{})
)

// RegisterBuiltins registers the protocol-agnostic message schemas. A
// multi-candidate registry additionally receives the current account share
// shape ahead of the legacy one, plus the Ethereum transaction request.
func RegisterBuiltins(r *Registry) error {
	type registration struct {
		messageType contracts.MessageType
		protocol    string
		item        *Item
		opts        []EntryOption
	}

	regs := []registration{
		{contracts.AccountShareRequest, "", accountShareRequestSchema, nil},
	}

	if r.Mode() == ModeMultiple {
		regs = append(regs,
			registration{contracts.AccountShareResponse, "", accountShareResponseSchema, nil},
			registration{contracts.AccountShareResponse, "", legacyAccountShareSchema, []EntryOption{WithTransformer(UpgradeAccountShare)}},
			registration{contracts.TransactionSignRequest, contracts.ProtocolEthereum, ethereumSignRequestSchema, nil},
			registration{contracts.TransactionSignRequest, contracts.ProtocolEthereum + "-erc20", ethereumSignRequestSchema, nil},
		)
	} else {
		regs = append(regs, registration{contracts.AccountShareResponse, "", legacyAccountShareSchema, nil})
	}

	regs = append(regs,
		registration{contracts.MessageSignRequest, "", messageSignRequestSchema, nil},
		registration{contracts.MessageSignResponse, "", messageSignResponseSchema, nil},
		registration{contracts.TransactionSignResponse, "", signedTransactionSchema, nil},
	)

	for _, reg := range regs {
		if err := r.Register(reg.messageType, reg.protocol, reg.item, reg.opts...); err != nil {
			return fmt.Errorf("failed to register builtin %s: %w", Key(reg.messageType, reg.protocol), err)
		}
	}
	return nil
}

// UpgradeAccountShare turns a decoded legacy account share into the current
// account share shape.
func UpgradeAccountShare(payload interface{}) (interface{}, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal account share: %w", err)
	}

	var legacy contracts.LegacyAccountShareResponse
	if err := json.Unmarshal(data, &legacy); err != nil {
		return nil, fmt.Errorf("failed to read legacy account share: %w", err)
	}

	upgraded, err := json.Marshal(legacy.Upgrade())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal upgraded account share: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(upgraded))
	dec.UseNumber()
	var out map[string]interface{}
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode upgraded account share: %w", err)
	}
	return out, nil
}
