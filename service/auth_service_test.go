package service

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Iagonorg/login-with-cardano-demo/adapters/store"
	"github.com/Iagonorg/login-with-cardano-demo/adapters/tokenizer"
	"github.com/Iagonorg/login-with-cardano-demo/core"
	"github.com/Iagonorg/login-with-cardano-demo/internal/cardano"
	"github.com/Iagonorg/login-with-cardano-demo/verifier"
)

type fixture struct {
	svc    *AuthService
	store  *store.MemoryStore
	acct   core.Account
	signer *ecdsa.PrivateKey
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	signer, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	address := ethcrypto.PubkeyToAddress(signer.PublicKey).Hex()

	memStore := store.NewMemoryStore()
	acct := core.Account{ID: "acct-1", Chain: core.ChainEVM, Address: address}
	require.NoError(t, memStore.Put(context.Background(), acct))

	jwtKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	svc := NewAuthService(
		memStore,
		memStore,
		memStore,
		verifier.New(cardano.TestnetID),
		tokenizer.NewJWTTokenizer(jwtKey),
		nil,
		zap.NewNop(),
	)

	return &fixture{svc: svc, store: memStore, acct: acct, signer: signer}
}

// signChallenge produces the personal-sign proof a wallet would return for
// the given challenge text.
func (f *fixture) signChallenge(t *testing.T, challenge string) core.Proof {
	t.Helper()
	sig, err := ethcrypto.Sign(accounts.TextHash([]byte(challenge)), f.signer)
	require.NoError(t, err)
	sig[64] += 27
	return core.Proof{Signature: hexutil.Encode(sig)}
}

func TestLoginRotatesNonceAndIssuesTokens(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	before, err := f.store.Get(ctx, f.acct.ID)
	require.NoError(t, err)

	challenge, err := f.svc.Challenge(ctx, f.acct.Address)
	require.NoError(t, err)

	access, refresh, err := f.svc.Login(ctx, f.acct.Address, f.signChallenge(t, challenge))
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	after, err := f.store.Get(ctx, f.acct.ID)
	require.NoError(t, err)
	require.NotEqual(t, before, after)

	session, err := f.svc.ValidateAccessToken(ctx, access)
	require.NoError(t, err)
	require.Equal(t, f.acct.Address, session.Address)
	require.Equal(t, core.ChainEVM, session.Chain)
}

func TestRejectionLeavesNonceUnchanged(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	before, err := f.store.Get(ctx, f.acct.ID)
	require.NoError(t, err)

	challenge, err := f.svc.Challenge(ctx, f.acct.Address)
	require.NoError(t, err)
	proof := f.signChallenge(t, challenge+"tampered")

	_, _, err = f.svc.Login(ctx, f.acct.Address, proof)
	require.ErrorIs(t, err, core.ErrSignatureMismatch)

	after, err := f.store.Get(ctx, f.acct.ID)
	require.NoError(t, err)
	require.Equal(t, before, after)

	// Same proof, same nonce, same reason
	_, _, err = f.svc.Login(ctx, f.acct.Address, proof)
	require.ErrorIs(t, err, core.ErrSignatureMismatch)
}

func TestAcceptedProofCannotBeReplayed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	challenge, err := f.svc.Challenge(ctx, f.acct.Address)
	require.NoError(t, err)
	proof := f.signChallenge(t, challenge)

	_, _, err = f.svc.Login(ctx, f.acct.Address, proof)
	require.NoError(t, err)

	// The nonce rotated, so the same proof now targets a dead challenge
	_, _, err = f.svc.Login(ctx, f.acct.Address, proof)
	require.ErrorIs(t, err, core.ErrSignatureMismatch)
}

func TestLoginUnknownAccount(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.svc.Login(context.Background(), "0x0000000000000000000000000000000000000001", core.Proof{Signature: "0x00"})
	require.ErrorIs(t, err, core.ErrAccountNotFound)

	_, err = f.svc.Challenge(context.Background(), "0x0000000000000000000000000000000000000001")
	require.ErrorIs(t, err, core.ErrAccountNotFound)
}

func TestLoginUnsupportedChain(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	acct := core.Account{ID: "acct-2", Chain: core.ChainKind("SOLANA"), Address: "someaddress"}
	require.NoError(t, f.store.Put(ctx, acct))

	_, _, err := f.svc.Login(ctx, acct.Address, core.Proof{Signature: "00"})
	require.ErrorIs(t, err, core.ErrUnsupportedScheme)
	require.True(t, core.IsRejection(err))
}

func TestConcurrentLoginsAcceptExactlyOne(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	challenge, err := f.svc.Challenge(ctx, f.acct.Address)
	require.NoError(t, err)
	proof := f.signChallenge(t, challenge)

	var wg sync.WaitGroup
	start := make(chan struct{})
	errs := make([]error, 2)

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, _, errs[i] = f.svc.Login(ctx, f.acct.Address, proof)
		}(i)
	}
	close(start)
	wg.Wait()

	accepted := 0
	for _, err := range errs {
		if err == nil {
			accepted++
			continue
		}
		// The loser either lost the rotation race or read the already
		// rotated nonce and failed verification against the new
		// challenge.
		if !errors.Is(err, core.ErrNonceConflict) && !errors.Is(err, core.ErrSignatureMismatch) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, accepted)
}

func TestRefreshRotatesAndRevokesOldToken(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	challenge, err := f.svc.Challenge(ctx, f.acct.Address)
	require.NoError(t, err)
	_, refresh, err := f.svc.Login(ctx, f.acct.Address, f.signChallenge(t, challenge))
	require.NoError(t, err)

	newAccess, newRefresh, err := f.svc.Refresh(ctx, refresh)
	require.NoError(t, err)
	require.NotEmpty(t, newAccess)
	require.NotEqual(t, refresh, newRefresh)

	// The consumed refresh token is dead
	_, _, err = f.svc.Refresh(ctx, refresh)
	require.ErrorIs(t, err, core.ErrTokenInvalidated)

	// The new one still works
	_, _, err = f.svc.Refresh(ctx, newRefresh)
	require.NoError(t, err)
}

func TestLogoutInvalidatesSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	challenge, err := f.svc.Challenge(ctx, f.acct.Address)
	require.NoError(t, err)
	access, refresh, err := f.svc.Login(ctx, f.acct.Address, f.signChallenge(t, challenge))
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, refresh))

	_, err = f.svc.ValidateAccessToken(ctx, access)
	require.ErrorIs(t, err, core.ErrTokenInvalidated)
	_, _, err = f.svc.Refresh(ctx, refresh)
	require.ErrorIs(t, err, core.ErrTokenInvalidated)
}

func TestIsRetryable(t *testing.T) {
	require.True(t, IsRetryable(core.ErrNonceConflict))
	require.True(t, IsRetryable(core.ErrStoreUnavailable))
	require.False(t, IsRetryable(core.ErrSignatureMismatch))
	require.False(t, IsRetryable(core.ErrIssuanceFailed))
}
