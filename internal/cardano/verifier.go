// Package cardano verifies CIP-8 signed-envelope proofs of address ownership.
package cardano

import (
	"bytes"
	"crypto/ed25519"
	"encoding/hex"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/Iagonorg/login-with-cardano-demo/core"
)

// Verifier validates COSE_Sign1 envelopes against claimed base addresses.
type Verifier struct {
	network byte
}

// NewVerifier creates a verifier for the given network id.
func NewVerifier(network byte) *Verifier {
	return &Verifier{network: network}
}

// Verify runs the full envelope check chain. Every check short-circuits with
// its own reason; the payload check deliberately precedes the signature
// check.
//
// The claimed address is the hex-encoded raw bytes of the account's base
// address. keyHex optionally carries a hex-encoded COSE_Key for envelopes
// that embed an address but no inline public key.
func (v *Verifier) Verify(claimedAddress string, challenge []byte, envelopeHex, keyHex string) error {
	raw, err := hex.DecodeString(envelopeHex)
	if err != nil {
		return fmt.Errorf("%w: decoding envelope: %v", core.ErrMalformedProof, err)
	}
	var env coseSign1
	if err := cbor.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("%w: decoding COSE_Sign1: %v", core.ErrMalformedProof, err)
	}

	if !bytes.Equal(env.Payload, challenge) {
		return core.ErrPayloadMismatch
	}

	var headers protectedHeaders
	if err := cbor.Unmarshal(env.Protected, &headers); err != nil {
		return fmt.Errorf("%w: decoding protected headers: %v", core.ErrMalformedProof, err)
	}
	if len(headers.KeyID) == 0 && len(headers.Address) == 0 {
		return fmt.Errorf("%w: envelope carries neither a key nor an address", core.ErrMissingKeyMaterial)
	}

	pub, err := resolvePublicKey(headers, keyHex)
	if err != nil {
		return err
	}

	if err := v.checkAddressBinding(claimedAddress, headers, pub); err != nil {
		return err
	}

	if len(env.Signature) != ed25519.SignatureSize {
		return fmt.Errorf("%w: signature must be %d bytes, got %d", core.ErrMalformedProof, ed25519.SignatureSize, len(env.Signature))
	}
	signedData, err := cbor.Marshal(newSigStructure(env.Protected, env.Payload))
	if err != nil {
		return fmt.Errorf("%w: encoding signed data: %v", core.ErrMalformedProof, err)
	}
	if !ed25519.Verify(pub, signedData, env.Signature) {
		return core.ErrSignatureMismatch
	}
	return nil
}

// resolvePublicKey extracts the signer's Ed25519 public key, either inline
// from the key-id header or from the caller-supplied COSE_Key.
func resolvePublicKey(headers protectedHeaders, keyHex string) (ed25519.PublicKey, error) {
	if len(headers.KeyID) > 0 {
		if len(headers.KeyID) != ed25519.PublicKeySize {
			return nil, fmt.Errorf("%w: key id is not an Ed25519 public key", core.ErrMalformedProof)
		}
		return ed25519.PublicKey(headers.KeyID), nil
	}
	if keyHex == "" {
		return nil, fmt.Errorf("%w: envelope has no inline key and no key was supplied", core.ErrMissingKeyMaterial)
	}
	raw, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding key: %v", core.ErrMalformedProof, err)
	}
	var key coseKey
	if err := cbor.Unmarshal(raw, &key); err != nil {
		return nil, fmt.Errorf("%w: decoding COSE_Key: %v", core.ErrMalformedProof, err)
	}
	if len(key.X) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%w: COSE_Key carries no Ed25519 public key", core.ErrMissingKeyMaterial)
	}
	return ed25519.PublicKey(key.X), nil
}

// checkAddressBinding ties the signing key to the claimed address: the
// payment credential is derived from the resolved public key, the staking
// credential comes from the claimed base address, and the reconstructed
// address must equal the claimed one in bech32 form. When the envelope embeds
// an address, that address must be the claimed one as well. Without this
// check a valid signature from an unrelated key could be replayed against any
// account.
func (v *Verifier) checkAddressBinding(claimedAddress string, headers protectedHeaders, pub ed25519.PublicKey) error {
	claimedRaw, err := hex.DecodeString(claimedAddress)
	if err != nil {
		return fmt.Errorf("%w: decoding claimed address: %v", core.ErrAddressDerivationFailed, err)
	}
	claimed, err := ParseBaseAddress(claimedRaw)
	if err != nil {
		return fmt.Errorf("%w: no staking credential: %v", core.ErrAddressDerivationFailed, err)
	}
	claimedText, err := claimed.Bech32()
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrAddressDerivationFailed, err)
	}

	paymentHash, err := KeyHash(pub)
	if err != nil {
		return fmt.Errorf("%w: hashing public key: %v", core.ErrAddressDerivationFailed, err)
	}
	reconstructed, err := NewBaseAddress(v.network, paymentHash, claimed.StakeHash).Bech32()
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrAddressDerivationFailed, err)
	}

	if reconstructed != claimedText {
		return core.ErrAddressMismatch
	}

	if len(headers.Address) > 0 {
		embedded, err := ParseBaseAddress(headers.Address)
		if err != nil {
			return fmt.Errorf("%w: embedded address: %v", core.ErrAddressMismatch, err)
		}
		embeddedText, err := embedded.Bech32()
		if err != nil {
			return fmt.Errorf("%w: %v", core.ErrAddressDerivationFailed, err)
		}
		if embeddedText != claimedText {
			return core.ErrAddressMismatch
		}
	}
	return nil
}
