package tokenizer

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Iagonorg/login-with-cardano-demo/core"
)

func newTokenizer(t *testing.T) *JWTTokenizer {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	return NewJWTTokenizer(key).(*JWTTokenizer)
}

func testSession() *core.Session {
	now := time.Now().Truncate(time.Second)
	return &core.Session{
		ID:            "session-1",
		Address:       "0xf17f52151ebef6c7334fad080c5704d77216b732",
		Chain:         core.ChainEVM,
		IssuedAt:      now,
		AccessExpiry:  now.Add(5 * time.Minute),
		RefreshExpiry: now.Add(120 * time.Hour),
		RefreshID:     "refresh-1",
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	j := newTokenizer(t)
	session := testSession()

	token, err := j.SessionToAccessToken(session)
	require.NoError(t, err)

	parsed, err := j.AccessTokenToSession(token)
	require.NoError(t, err)
	require.Equal(t, session.ID, parsed.ID)
	require.Equal(t, session.Address, parsed.Address)
	require.Equal(t, session.Chain, parsed.Chain)
	require.Equal(t, session.RefreshID, parsed.RefreshID)
	require.WithinDuration(t, session.AccessExpiry, parsed.AccessExpiry, time.Second)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	j := newTokenizer(t)
	session := testSession()

	token, err := j.SessionToRefreshToken(session)
	require.NoError(t, err)

	parsed, err := j.RefreshTokenToSession(token)
	require.NoError(t, err)
	require.Equal(t, session.Address, parsed.Address)
	require.Equal(t, session.Chain, parsed.Chain)
	require.Equal(t, session.RefreshID, parsed.RefreshID)
	require.WithinDuration(t, session.RefreshExpiry, parsed.RefreshExpiry, time.Second)
}

func TestAudienceIsEnforced(t *testing.T) {
	j := newTokenizer(t)
	session := testSession()

	access, err := j.SessionToAccessToken(session)
	require.NoError(t, err)
	refresh, err := j.SessionToRefreshToken(session)
	require.NoError(t, err)

	_, err = j.RefreshTokenToSession(access)
	require.Error(t, err)
	_, err = j.AccessTokenToSession(refresh)
	require.Error(t, err)
}

func TestForeignKeyIsRejected(t *testing.T) {
	session := testSession()

	token, err := newTokenizer(t).SessionToAccessToken(session)
	require.NoError(t, err)

	_, err = newTokenizer(t).AccessTokenToSession(token)
	require.Error(t, err)
}
