package core

// Proof is the scheme-specific material a wallet presents at login. Its
// interpretation follows the account's chain kind:
//
//   - EVM: Signature holds a 0x-prefixed 65-byte r||s||v personal-sign
//     signature; Key is unused.
//   - Cardano: Signature holds a hex-encoded COSE_Sign1 envelope; Key
//     optionally holds a hex-encoded COSE_Key for envelopes that embed an
//     address but no inline public key.
type Proof struct {
	Signature string
	Key       string
}
