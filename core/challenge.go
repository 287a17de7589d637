package core

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// challengePrefix must match what wallets present for signing, byte for byte.
const challengePrefix = "I am signing my one-time nonce: "

const nonceBytes = 16

// ChallengeMessage renders the canonical challenge for a nonce. It is never
// persisted; both sides recompute it from the nonce on demand.
func ChallengeMessage(nonce string) []byte {
	return []byte(challengePrefix + nonce)
}

// NewNonce returns a fresh 128-bit random nonce, hex-encoded.
func NewNonce() (string, error) {
	b := make([]byte, nonceBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	return hex.EncodeToString(b), nil
}
