package ports

import (
	"context"
	"time"

	"github.com/Iagonorg/login-with-cardano-demo/core"
)

// AccountStore looks up registered principals by address. Registration itself
// happens elsewhere; Put exists for seeding and tests.
type AccountStore interface {
	FindByAddress(ctx context.Context, address string) (core.Account, error)
	Put(ctx context.Context, acct core.Account) error
}

// NonceStore holds the current one-time nonce per account id.
type NonceStore interface {
	Get(ctx context.Context, accountID string) (string, error)

	// CompareAndRotate replaces the nonce with a fresh one only if the
	// stored value still equals expected, and returns the new value. A
	// stale expected value fails with core.ErrNonceConflict; the whole
	// authentication attempt is then safe to retry.
	CompareAndRotate(ctx context.Context, accountID, expected string) (string, error)
}

// RevocationStore tracks invalidated refresh tokens.
type RevocationStore interface {
	InvalidateToken(ctx context.Context, tokenID string, expiry time.Duration) error
	IsTokenInvalidated(ctx context.Context, tokenID string) (bool, error)
}
