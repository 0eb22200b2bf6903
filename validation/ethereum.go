package validation

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/rlp"
)

// EthereumChains maps EVM protocol identifiers to their chain ids
var EthereumChains = map[string]uint64{
	"eth":      1,
	"optimism": 10,
}

const (
	hexQuantityPattern = `^0x[0-9a-fA-F]+$`
	hexDataPattern     = `^0x([0-9a-fA-F]{2})*$`
	addressPattern     = `^0x[0-9a-fA-F]{40}$`

	// legacy transactions encode the chain id in v as chainID*2 + 35 or 36
	eip155Offset = 35
)

// EthereumValidator checks Ethereum transaction payloads and that they
// target the expected chain
type EthereumValidator struct {
	rules   *RuleValidator
	chainID *big.Int
}

// NewEthereumValidator creates a validator for the given chain id
func NewEthereumValidator(chainID uint64) *EthereumValidator {
	unsigned := &RuleSet{
		Required: []string{"transaction", "publicKey"},
		Properties: map[string]*PropertyDef{
			"publicKey": {Type: "string", MinLength: intPtr(1)},
			"transaction": {
				Type:     "object",
				Required: []string{"nonce", "gasPrice", "gasLimit", "to", "value", "chainId", "data"},
				Properties: map[string]*PropertyDef{
					"nonce":    {Type: "string", Pattern: hexQuantityPattern},
					"gasPrice": {Type: "string", Pattern: hexQuantityPattern},
					"gasLimit": {Type: "string", Pattern: hexQuantityPattern},
					"value":    {Type: "string", Pattern: hexQuantityPattern},
					"to":       {Type: "string", Pattern: addressPattern},
					"data":     {Type: "string", Pattern: hexDataPattern},
					"chainId":  {Type: "integer"},
				},
			},
		},
	}
	signed := &RuleSet{
		Required: []string{"transaction", "accountIdentifier"},
		Properties: map[string]*PropertyDef{
			"transaction":       {Type: "string", Pattern: hexDataPattern, MinLength: intPtr(4)},
			"accountIdentifier": {Type: "string", MinLength: intPtr(1)},
		},
	}

	return &EthereumValidator{
		rules:   MustRuleValidator(unsigned, signed),
		chainID: new(big.Int).SetUint64(chainID),
	}
}

func (v *EthereumValidator) ValidateUnsigned(ctx context.Context, payload interface{}) []ValidationError {
	errs := v.rules.ValidateUnsigned(ctx, payload)
	if len(errs) > 0 {
		return errs
	}

	data, _ := toObject(payload)
	tx, _ := data["transaction"].(map[string]interface{})
	chainID, _ := tx["chainId"].(json.Number)
	if claimed, ok := new(big.Int).SetString(string(chainID), 10); !ok || claimed.Cmp(v.chainID) != 0 {
		return []ValidationError{{
			Field:   "transaction.chainId",
			Message: fmt.Sprintf("transaction targets chain %s, expected %s", chainID, v.chainID),
			Code:    CodeChainMismatch,
			Value:   chainID,
		}}
	}
	return nil
}

func (v *EthereumValidator) ValidateSigned(ctx context.Context, payload interface{}) []ValidationError {
	errs := v.rules.ValidateSigned(ctx, payload)
	if len(errs) > 0 {
		return errs
	}

	data, _ := toObject(payload)
	encoded, _ := data["transaction"].(string)
	raw, err := hex.DecodeString(strings.TrimPrefix(encoded, "0x"))
	if err != nil {
		return []ValidationError{{Field: "transaction", Message: err.Error(), Code: CodeDecode}}
	}

	chainID, err := signedChainID(raw)
	if err != nil {
		return []ValidationError{{Field: "transaction", Message: err.Error(), Code: CodeDecode}}
	}
	if chainID == nil || chainID.Cmp(v.chainID) != 0 {
		return []ValidationError{{
			Field:   "transaction",
			Message: fmt.Sprintf("signed transaction targets chain %v, expected %s", chainID, v.chainID),
			Code:    CodeChainMismatch,
		}}
	}
	return nil
}

// signedChainID extracts the chain id from a signed legacy or typed
// transaction. It returns nil for legacy transactions without replay
// protection.
func signedChainID(raw []byte) (*big.Int, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty transaction")
	}

	// typed transactions start with a type byte below 0x7f followed by the
	// payload list, whose first element is the chain id
	if raw[0] < 0x7f {
		var fields []rlp.RawValue
		if err := rlp.DecodeBytes(raw[1:], &fields); err != nil {
			return nil, fmt.Errorf("failed to decode typed transaction: %w", err)
		}
		if len(fields) == 0 {
			return nil, fmt.Errorf("typed transaction has no fields")
		}
		chainID := new(big.Int)
		if err := rlp.DecodeBytes(fields[0], chainID); err != nil {
			return nil, fmt.Errorf("failed to decode chain id: %w", err)
		}
		return chainID, nil
	}

	var fields []rlp.RawValue
	if err := rlp.DecodeBytes(raw, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode transaction: %w", err)
	}
	if len(fields) != 9 {
		return nil, fmt.Errorf("legacy transaction has %d fields, expected 9", len(fields))
	}
	sigV := new(big.Int)
	if err := rlp.DecodeBytes(fields[6], sigV); err != nil {
		return nil, fmt.Errorf("failed to decode signature: %w", err)
	}
	if sigV.Cmp(big.NewInt(eip155Offset)) < 0 {
		return nil, nil
	}
	chainID := new(big.Int).Sub(sigV, big.NewInt(eip155Offset))
	return chainID.Rsh(chainID, 1), nil
}
