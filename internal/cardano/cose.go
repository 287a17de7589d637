package cardano

import "github.com/fxamacker/cbor/v2"

// coseSign1 is the COSE_Sign1 array shape (RFC 9052 section 4.2).
type coseSign1 struct {
	_           struct{} `cbor:",toarray"`
	Protected   []byte
	Unprotected cbor.RawMessage
	Payload     []byte
	Signature   []byte
}

// protectedHeaders is the decoded protected header map. CIP-8 wallets put
// the signing algorithm under label 1, optionally the public key under the
// key-id label 4, and the signer's raw address bytes under the text label
// "address".
type protectedHeaders struct {
	Algorithm int64  `cbor:"1,keyasint,omitempty"`
	KeyID     []byte `cbor:"4,keyasint,omitempty"`
	Address   []byte `cbor:"address,omitempty"`
}

// coseKey is the COSE_Key map (RFC 9052 section 7). For OKP keys label -2
// holds the public key bytes.
type coseKey struct {
	KeyType   int64  `cbor:"1,keyasint,omitempty"`
	Algorithm int64  `cbor:"3,keyasint,omitempty"`
	Curve     int64  `cbor:"-1,keyasint,omitempty"`
	X         []byte `cbor:"-2,keyasint,omitempty"`
}

// sigStructure is the to-be-signed Sig_structure for a COSE_Sign1
// ("Signature1" context, RFC 9052 section 4.4). The EdDSA signature covers
// its CBOR encoding.
type sigStructure struct {
	_           struct{} `cbor:",toarray"`
	Context     string
	Protected   []byte
	ExternalAAD []byte
	Payload     []byte
}

const algEdDSA = -8

func newSigStructure(protected, payload []byte) sigStructure {
	return sigStructure{
		Context:     "Signature1",
		Protected:   protected,
		ExternalAAD: []byte{},
		Payload:     payload,
	}
}
