package evm

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/Iagonorg/login-with-cardano-demo/core"
)

const testKeyHex = "b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291"

func TestVerify(t *testing.T) {
	key, err := crypto.HexToECDSA(testKeyHex)
	require.NoError(t, err)
	address := crypto.PubkeyToAddress(key.PublicKey).Hex()

	challenge := core.ChallengeMessage("4821")
	sig, err := crypto.Sign(accounts.TextHash(challenge), key)
	require.NoError(t, err)
	// Wallets report the recovery id as 27/28
	sig[64] += 27
	sigHex := hexutil.Encode(sig)

	t.Run("accepts matching signer", func(t *testing.T) {
		require.NoError(t, Verify(address, challenge, sigHex))
	})

	t.Run("address comparison is case-insensitive", func(t *testing.T) {
		require.NoError(t, Verify(strings.ToLower(address), challenge, sigHex))
	})

	t.Run("accepts canonical recovery id", func(t *testing.T) {
		raw, err := crypto.Sign(accounts.TextHash(challenge), key)
		require.NoError(t, err)
		require.NoError(t, Verify(address, challenge, hexutil.Encode(raw)))
	})

	t.Run("flipped byte yields signature mismatch", func(t *testing.T) {
		tampered := make([]byte, len(sig))
		copy(tampered, sig)
		tampered[40] ^= 0x01
		err := Verify(address, challenge, hexutil.Encode(tampered))
		require.ErrorIs(t, err, core.ErrSignatureMismatch)
	})

	t.Run("wrong claimed address yields signature mismatch", func(t *testing.T) {
		err := Verify("0x0000000000000000000000000000000000000001", challenge, sigHex)
		require.ErrorIs(t, err, core.ErrSignatureMismatch)
	})

	t.Run("different challenge yields signature mismatch", func(t *testing.T) {
		err := Verify(address, core.ChallengeMessage("4822"), sigHex)
		require.ErrorIs(t, err, core.ErrSignatureMismatch)
	})

	t.Run("rejects malformed signatures", func(t *testing.T) {
		require.ErrorIs(t, Verify(address, challenge, "not-hex"), core.ErrMalformedProof)
		require.ErrorIs(t, Verify(address, challenge, "0xdead"), core.ErrMalformedProof)

		badRecovery := make([]byte, len(sig))
		copy(badRecovery, sig)
		badRecovery[64] = 5
		require.ErrorIs(t, Verify(address, challenge, hexutil.Encode(badRecovery)), core.ErrMalformedProof)
	})
}
