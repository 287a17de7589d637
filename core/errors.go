package core

import "errors"

// Verification rejections. The service observes the precise reason; the HTTP
// boundary collapses all of them to one generic response.
var (
	ErrAccountNotFound         = errors.New("account not found")
	ErrMalformedProof          = errors.New("malformed proof")
	ErrPayloadMismatch         = errors.New("payload does not match challenge")
	ErrMissingKeyMaterial      = errors.New("no key material available")
	ErrAddressDerivationFailed = errors.New("address derivation failed")
	ErrAddressMismatch         = errors.New("address mismatch")
	ErrSignatureMismatch       = errors.New("signature mismatch")
	ErrUnsupportedScheme       = errors.New("unsupported signing scheme")
)

// Protocol and infrastructure failures.
var (
	// ErrNonceConflict means the stored nonce changed between read and
	// rotation; the whole attempt is safe to retry.
	ErrNonceConflict = errors.New("nonce changed during attempt")

	ErrStoreUnavailable = errors.New("store unavailable")
	ErrIssuanceFailed   = errors.New("credential issuance failed")
)

// Session token failures.
var (
	ErrTokenExpired     = errors.New("token has expired")
	ErrTokenInvalidated = errors.New("token has been invalidated")
	ErrInvalidToken     = errors.New("invalid token")
)

var rejections = []error{
	ErrMalformedProof,
	ErrPayloadMismatch,
	ErrMissingKeyMaterial,
	ErrAddressDerivationFailed,
	ErrAddressMismatch,
	ErrSignatureMismatch,
	ErrUnsupportedScheme,
}

// IsRejection reports whether err is a proof-verification rejection, as
// opposed to a lookup or infrastructure failure.
func IsRejection(err error) bool {
	for _, r := range rejections {
		if errors.Is(err, r) {
			return true
		}
	}
	return false
}
