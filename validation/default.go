package validation

// DefaultValidator checks the shape every protocol shares: an unsigned
// request carries a transaction and the signing public key, a signed response
// carries the transaction and the account it belongs to.
type DefaultValidator struct {
	*RuleValidator
}

var (
	defaultUnsignedRules = &RuleSet{
		Required: []string{"transaction", "publicKey"},
		Properties: map[string]*PropertyDef{
			"publicKey":   {Type: "string", MinLength: intPtr(1)},
			"callbackURL": {Type: "string"},
		},
	}
	defaultSignedRules = &RuleSet{
		Required: []string{"transaction", "accountIdentifier"},
		Properties: map[string]*PropertyDef{
			"transaction":       {Type: "string", MinLength: intPtr(1)},
			"accountIdentifier": {Type: "string", MinLength: intPtr(1)},
		},
	}
)

// NewDefaultValidator creates the validator used when no protocol matches
func NewDefaultValidator() *DefaultValidator {
	return &DefaultValidator{RuleValidator: MustRuleValidator(defaultUnsignedRules, defaultSignedRules)}
}

func intPtr(i int) *int {
	return &i
}
