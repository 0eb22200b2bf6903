package contracts

import (
	"sort"
	"strings"
)

// Main protocol identifiers accepted on the wire. A sub-protocol is written
// as "<main>-<suffix>", for example "eth-erc20" or "eth-erc20-usdt".
const (
	ProtocolAeternity     = "ae"
	ProtocolBitcoin       = "btc"
	ProtocolBitcoinSegwit = "btc_segwit"
	ProtocolEthereum      = "eth"
	ProtocolTezos         = "xtz"
	ProtocolTezosShielded = "xtz_shielded"
	ProtocolGroestlcoin   = "grs"
	ProtocolCosmos        = "cosmos"
	ProtocolPolkadot      = "polkadot"
	ProtocolKusama        = "kusama"
	ProtocolMoonbase      = "moonbase"
	ProtocolMoonriver     = "moonriver"
	ProtocolMoonbeam      = "moonbeam"
	ProtocolAstar         = "astar"
	ProtocolShiden        = "shiden"
	ProtocolICP           = "icp"
	ProtocolCoreum        = "coreum"
	ProtocolOptimism      = "optimism"
	ProtocolMina          = "mina"
)

// SubProtocolSeparator separates the main protocol from a sub-protocol suffix
const SubProtocolSeparator = "-"

// MainProtocol returns the leading segment of a protocol identifier
func MainProtocol(protocol string) string {
	main, _, _ := strings.Cut(protocol, SubProtocolSeparator)
	return main
}

// IsSubProtocol reports whether the identifier carries a sub-protocol suffix
func IsSubProtocol(protocol string) bool {
	return strings.Contains(protocol, SubProtocolSeparator)
}

// ProtocolSet is an immutable set of known main-protocol identifiers
type ProtocolSet struct {
	known map[string]struct{}
}

// NewProtocolSet creates a set from main-protocol identifiers
func NewProtocolSet(protocols ...string) ProtocolSet {
	known := make(map[string]struct{}, len(protocols))
	for _, p := range protocols {
		known[p] = struct{}{}
	}
	return ProtocolSet{known: known}
}

// DefaultProtocols returns the set of main protocols shipped with the library
func DefaultProtocols() ProtocolSet {
	return NewProtocolSet(
		ProtocolAeternity, ProtocolBitcoin, ProtocolBitcoinSegwit, ProtocolEthereum,
		ProtocolTezos, ProtocolTezosShielded, ProtocolGroestlcoin, ProtocolCosmos,
		ProtocolPolkadot, ProtocolKusama, ProtocolMoonbase, ProtocolMoonriver,
		ProtocolMoonbeam, ProtocolAstar, ProtocolShiden, ProtocolICP,
		ProtocolCoreum, ProtocolOptimism, ProtocolMina,
	)
}

// Accepts reports whether a protocol is empty or its main segment is known
func (s ProtocolSet) Accepts(protocol string) bool {
	if protocol == "" {
		return true
	}
	_, ok := s.known[MainProtocol(protocol)]
	return ok
}

// List returns the known identifiers in sorted order
func (s ProtocolSet) List() []string {
	out := make([]string, 0, len(s.known))
	for p := range s.known {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
