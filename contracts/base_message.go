package contracts

// Payloads of the protocol-agnostic message types. Protocol packages supply
// their own transaction payloads; the structs below cover the shapes shared
// by every protocol.

// AccountShareRequestPayload asks the signer to share an account
type AccountShareRequestPayload struct{}

// LegacyAccountShareResponse is the account share payload issued by older signers
type LegacyAccountShareResponse struct {
	PublicKey           string `json:"publicKey"`
	DerivationPath      string `json:"derivationPath"`
	IsExtendedPublicKey bool   `json:"isExtendedPublicKey"`
}

// AccountShareResponsePayload shares a public key and its wallet grouping
type AccountShareResponsePayload struct {
	PublicKey           string `json:"publicKey"`
	DerivationPath      string `json:"derivationPath"`
	IsExtendedPublicKey bool   `json:"isExtendedPublicKey"`
	MasterFingerprint   string `json:"masterFingerprint"`
	IsActive            bool   `json:"isActive"`
	GroupID             string `json:"groupId"`
	GroupLabel          string `json:"groupLabel"`
}

// Upgrade converts a legacy account share into the current shape
func (r LegacyAccountShareResponse) Upgrade() AccountShareResponsePayload {
	return AccountShareResponsePayload{
		PublicKey:           r.PublicKey,
		DerivationPath:      r.DerivationPath,
		IsExtendedPublicKey: r.IsExtendedPublicKey,
		IsActive:            true,
	}
}

// MessageSignRequestPayload asks the signer to sign an arbitrary message
type MessageSignRequestPayload struct {
	Message     string `json:"message"`
	PublicKey   string `json:"publicKey"`
	CallbackURL string `json:"callbackURL"`
}

// MessageSignResponsePayload carries a message signature
type MessageSignResponsePayload struct {
	Message   string `json:"message"`
	PublicKey string `json:"publicKey"`
	Signature string `json:"signature"`
}

// SignedTransactionPayload is the generic transaction sign response
type SignedTransactionPayload struct {
	Transaction       string `json:"transaction"`
	AccountIdentifier string `json:"accountIdentifier"`
}

// EthereumTransaction is the raw unsigned Ethereum transaction
type EthereumTransaction struct {
	Nonce    string `json:"nonce"`
	GasPrice string `json:"gasPrice"`
	GasLimit string `json:"gasLimit"`
	To       string `json:"to"`
	Value    string `json:"value"`
	ChainID  int64  `json:"chainId"`
	Data     string `json:"data"`
}

// EthereumSignRequestPayload asks the signer to sign an Ethereum transaction
type EthereumSignRequestPayload struct {
	Transaction EthereumTransaction `json:"transaction"`
	PublicKey   string              `json:"publicKey"`
	CallbackURL string              `json:"callbackURL"`
}
