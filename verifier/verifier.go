// Package verifier dispatches proof verification by chain kind.
package verifier

import (
	"fmt"

	"github.com/Iagonorg/login-with-cardano-demo/core"
	"github.com/Iagonorg/login-with-cardano-demo/internal/cardano"
	"github.com/Iagonorg/login-with-cardano-demo/internal/evm"
)

// Verifier checks scheme-specific proofs against a challenge and a claimed
// account. The chain dispatch is a closed set: adding a chain means adding a
// case here.
type Verifier struct {
	cardano *cardano.Verifier
}

// New creates a verifier. cardanoNetwork is the network id Cardano base
// addresses are reconstructed under.
func New(cardanoNetwork byte) *Verifier {
	return &Verifier{cardano: cardano.NewVerifier(cardanoNetwork)}
}

// Verify accepts iff the proof demonstrates possession of the key behind the
// claimed account's address for the given challenge. Any other outcome is a
// typed rejection from the core error set.
func (v *Verifier) Verify(acct core.Account, challenge []byte, proof core.Proof) error {
	switch acct.Chain {
	case core.ChainEVM:
		return evm.Verify(acct.Address, challenge, proof.Signature)
	case core.ChainCardano:
		return v.cardano.Verify(acct.Address, challenge, proof.Signature, proof.Key)
	default:
		return fmt.Errorf("%w: %q", core.ErrUnsupportedScheme, acct.Chain)
	}
}
