// Package evm verifies personal-sign proofs of address ownership.
package evm

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/Iagonorg/login-with-cardano-demo/core"
)

const signatureLength = 65

// Verify recovers the signer of a personal-sign signature over challenge and
// accepts iff it matches the claimed address. Address comparison is
// case-insensitive.
func Verify(claimedAddress string, challenge []byte, signatureHex string) error {
	sig, err := hexutil.Decode(signatureHex)
	if err != nil {
		return fmt.Errorf("%w: decoding signature: %v", core.ErrMalformedProof, err)
	}
	if len(sig) != signatureLength {
		return fmt.Errorf("%w: signature must be %d bytes, got %d", core.ErrMalformedProof, signatureLength, len(sig))
	}

	// Wallets emit the recovery id as 27/28, secp256k1 recovery wants 0/1.
	if sig[signatureLength-1] >= 27 {
		sig[signatureLength-1] -= 27
	}
	if sig[signatureLength-1] > 1 {
		return fmt.Errorf("%w: invalid recovery id", core.ErrMalformedProof)
	}

	pub, err := crypto.SigToPub(accounts.TextHash(challenge), sig)
	if err != nil {
		return fmt.Errorf("%w: recovering public key: %v", core.ErrMalformedProof, err)
	}

	if crypto.PubkeyToAddress(*pub) != common.HexToAddress(claimedAddress) {
		return core.ErrSignatureMismatch
	}
	return nil
}
