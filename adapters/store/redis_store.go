package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Iagonorg/login-with-cardano-demo/core"
)

// rotateNonceScript swaps the nonce only when the stored value still equals
// the one read at the start of the attempt, making read-verify-rotate safe
// across instances.
//
// KEYS[1]: nonce key
// ARGV[1]: expected nonce
// ARGV[2]: new nonce
// Returns: 1 rotated, 0 stale
const rotateNonceScript = `
if redis.call('GET', KEYS[1]) == ARGV[1] then
    redis.call('SET', KEYS[1], ARGV[2])
    return 1
else
    return 0
end
`

// RedisStore is a Redis implementation of the account, nonce and revocation
// stores.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a new Redis store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "walletauth:",
	}
}

func (s *RedisStore) accountKey(address string) string {
	return s.prefix + "account:" + core.NormalizeAddress(address)
}

func (s *RedisStore) nonceKey(accountID string) string {
	return s.prefix + "nonce:" + accountID
}

func (s *RedisStore) revokedKey(tokenID string) string {
	return s.prefix + "invalidated:" + tokenID
}

// FindByAddress looks up an account by its address.
func (s *RedisStore) FindByAddress(ctx context.Context, address string) (core.Account, error) {
	fields, err := s.client.HGetAll(ctx, s.accountKey(address)).Result()
	if err != nil {
		return core.Account{}, fmt.Errorf("%w: %v", core.ErrStoreUnavailable, err)
	}
	if len(fields) == 0 {
		return core.Account{}, core.ErrAccountNotFound
	}
	return core.Account{
		ID:      fields["id"],
		Chain:   core.ChainKind(fields["chain"]),
		Address: fields["address"],
	}, nil
}

// Put registers an account and seeds its first nonce.
func (s *RedisStore) Put(ctx context.Context, acct core.Account) error {
	nonce, err := core.NewNonce()
	if err != nil {
		return err
	}

	err = s.client.HSet(ctx, s.accountKey(acct.Address), map[string]interface{}{
		"id":      acct.ID,
		"chain":   string(acct.Chain),
		"address": acct.Address,
	}).Err()
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrStoreUnavailable, err)
	}

	// Keep an existing nonce; a re-registration must not reset the cycle.
	if err := s.client.SetNX(ctx, s.nonceKey(acct.ID), nonce, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", core.ErrStoreUnavailable, err)
	}
	return nil
}

// Get returns the account's current nonce.
func (s *RedisStore) Get(ctx context.Context, accountID string) (string, error) {
	nonce, err := s.client.Get(ctx, s.nonceKey(accountID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", core.ErrAccountNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrStoreUnavailable, err)
	}
	return nonce, nil
}

// CompareAndRotate atomically replaces the nonce if it still equals expected.
func (s *RedisStore) CompareAndRotate(ctx context.Context, accountID, expected string) (string, error) {
	nonce, err := core.NewNonce()
	if err != nil {
		return "", err
	}

	rotated, err := s.client.Eval(ctx, rotateNonceScript, []string{s.nonceKey(accountID)}, expected, nonce).Int64()
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrStoreUnavailable, err)
	}
	if rotated != 1 {
		return "", core.ErrNonceConflict
	}
	return nonce, nil
}

// InvalidateToken marks a token as invalidated in Redis.
func (s *RedisStore) InvalidateToken(ctx context.Context, tokenID string, expiry time.Duration) error {
	if err := s.client.Set(ctx, s.revokedKey(tokenID), "1", expiry).Err(); err != nil {
		return fmt.Errorf("failed to invalidate token: %w", err)
	}
	return nil
}

// IsTokenInvalidated checks if a token is invalidated in Redis.
func (s *RedisStore) IsTokenInvalidated(ctx context.Context, tokenID string) (bool, error) {
	val, err := s.client.Exists(ctx, s.revokedKey(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token invalidation: %w", err)
	}
	return val > 0, nil
}
