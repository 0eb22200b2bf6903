// Package validation holds the protocol validators that callers consult
// after deserialization.
//
// A Registry maps protocol identifiers to validator factories. Resolution
// tries the exact identifier, then the longest registered identifier that
// prefixes it (so "eth-erc20-usdt" falls back to "eth"), then the default
// validator.
//
//	registry := validation.NewRegistry()
//	registry.MustRegister("eth", func() validation.Validator {
//		return validation.NewEthereumValidator(1)
//	})
//	errs := registry.Resolve("eth-erc20-usdt").ValidateUnsigned(ctx, payload)
//
// Validators return every problem they find as a slice of ValidationError;
// an empty result means the payload passed.
package validation
