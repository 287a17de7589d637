package store

import (
	"context"
	"sync"
	"time"

	"github.com/Iagonorg/login-with-cardano-demo/core"
)

// MemoryStore is an in-memory implementation of the account, nonce and
// revocation stores, used by tests and single-instance deployments.
type MemoryStore struct {
	mu                sync.RWMutex
	accounts          map[string]core.Account // keyed by normalized address
	nonces            map[string]string       // keyed by account id
	invalidatedTokens map[string]time.Time
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts:          make(map[string]core.Account),
		nonces:            make(map[string]string),
		invalidatedTokens: make(map[string]time.Time),
	}
}

// FindByAddress looks up an account by its address.
func (s *MemoryStore) FindByAddress(ctx context.Context, address string) (core.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acct, ok := s.accounts[core.NormalizeAddress(address)]
	if !ok {
		return core.Account{}, core.ErrAccountNotFound
	}
	return acct, nil
}

// Put registers an account and seeds its first nonce.
func (s *MemoryStore) Put(ctx context.Context, acct core.Account) error {
	nonce, err := core.NewNonce()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts[core.NormalizeAddress(acct.Address)] = acct
	if _, ok := s.nonces[acct.ID]; !ok {
		s.nonces[acct.ID] = nonce
	}
	return nil
}

// Get returns the account's current nonce.
func (s *MemoryStore) Get(ctx context.Context, accountID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nonce, ok := s.nonces[accountID]
	if !ok {
		return "", core.ErrAccountNotFound
	}
	return nonce, nil
}

// CompareAndRotate replaces the nonce only if it still equals expected. The
// check and the write happen under one lock, so two attempts that read the
// same nonce cannot both rotate it.
func (s *MemoryStore) CompareAndRotate(ctx context.Context, accountID, expected string) (string, error) {
	nonce, err := core.NewNonce()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.nonces[accountID]
	if !ok {
		return "", core.ErrAccountNotFound
	}
	if current != expected {
		return "", core.ErrNonceConflict
	}
	s.nonces[accountID] = nonce
	return nonce, nil
}

// InvalidateToken marks a token as invalidated.
func (s *MemoryStore) InvalidateToken(ctx context.Context, tokenID string, expiry time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiryTime := time.Now().Add(expiry)
	s.invalidatedTokens[tokenID] = expiryTime

	// Start a cleanup goroutine
	go func() {
		time.Sleep(expiry)

		s.mu.Lock()
		defer s.mu.Unlock()

		// Only delete if the expiry time hasn't changed
		if storedExpiry, exists := s.invalidatedTokens[tokenID]; exists && !storedExpiry.After(expiryTime) {
			delete(s.invalidatedTokens, tokenID)
		}
	}()

	return nil
}

// IsTokenInvalidated checks if a token is invalidated.
func (s *MemoryStore) IsTokenInvalidated(ctx context.Context, tokenID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	expiryTime, exists := s.invalidatedTokens[tokenID]
	if !exists {
		return false, nil
	}

	// Check if the token invalidation has expired
	if time.Now().After(expiryTime) {
		return false, nil
	}

	return true, nil
}
