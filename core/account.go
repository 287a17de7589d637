package core

import "strings"

// ChainKind identifies the signing scheme an account authenticates with.
type ChainKind string

const (
	// ChainEVM covers accounts that prove ownership with an ECDSA
	// personal-sign signature (MetaMask style).
	ChainEVM ChainKind = "EVM"

	// ChainCardano covers accounts that prove ownership with a CIP-8
	// COSE_Sign1 envelope (Nami/Flint style).
	ChainCardano ChainKind = "CARDANO"
)

// Account is a registered principal. The address is stored in its canonical
// form: lowercased hex for EVM, lowercased hex-encoded raw address bytes for
// Cardano.
type Account struct {
	ID      string
	Chain   ChainKind
	Address string
}

// NormalizeAddress returns the canonical store key for an address. Hex is
// case-insensitive on both chains, so lowercasing preserves byte identity.
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
