package cardano

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"golang.org/x/crypto/blake2b"
)

// Network identifiers carried in the address header.
const (
	TestnetID byte = 0
	MainnetID byte = 1
)

const (
	keyHashLength     = 28
	baseAddressLength = 1 + 2*keyHashLength

	// Header high nibble 0b0000: base address with payment key hash and
	// stake key hash (Shelley address type 0).
	baseAddressKind byte = 0x0
)

// BaseAddress is a decoded Shelley base address: a payment key hash and a
// staking key hash under a network id.
type BaseAddress struct {
	Network     byte
	PaymentHash []byte
	StakeHash   []byte
}

// NewBaseAddress assembles a base address from its credentials.
func NewBaseAddress(network byte, paymentHash, stakeHash []byte) BaseAddress {
	return BaseAddress{Network: network, PaymentHash: paymentHash, StakeHash: stakeHash}
}

// ParseBaseAddress decodes the raw bytes of a key/key base address.
func ParseBaseAddress(raw []byte) (BaseAddress, error) {
	if len(raw) != baseAddressLength {
		return BaseAddress{}, fmt.Errorf("address must be %d bytes, got %d", baseAddressLength, len(raw))
	}
	if raw[0]>>4 != baseAddressKind {
		return BaseAddress{}, fmt.Errorf("not a key/key base address (header byte 0x%02x)", raw[0])
	}
	return BaseAddress{
		Network:     raw[0] & 0x0f,
		PaymentHash: raw[1 : 1+keyHashLength],
		StakeHash:   raw[1+keyHashLength:],
	}, nil
}

// Bytes returns the raw address encoding.
func (a BaseAddress) Bytes() []byte {
	out := make([]byte, 0, baseAddressLength)
	out = append(out, baseAddressKind<<4|a.Network&0x0f)
	out = append(out, a.PaymentHash...)
	out = append(out, a.StakeHash...)
	return out
}

// Bech32 returns the canonical textual form of the address.
func (a BaseAddress) Bech32() (string, error) {
	hrp := "addr_test"
	if a.Network == MainnetID {
		hrp = "addr"
	}
	converted, err := bech32.ConvertBits(a.Bytes(), 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("failed to convert address bits: %w", err)
	}
	encoded, err := bech32.Encode(hrp, converted)
	if err != nil {
		return "", fmt.Errorf("failed to encode address: %w", err)
	}
	return encoded, nil
}

// KeyHash returns the blake2b-224 digest of an Ed25519 public key, the hash
// credentials are built from.
func KeyHash(pub []byte) ([]byte, error) {
	h, err := blake2b.New(keyHashLength, nil)
	if err != nil {
		return nil, err
	}
	h.Write(pub)
	return h.Sum(nil), nil
}
