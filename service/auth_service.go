package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Iagonorg/login-with-cardano-demo/core"
	"github.com/Iagonorg/login-with-cardano-demo/ports"
	"github.com/Iagonorg/login-with-cardano-demo/verifier"
)

// AuthService sequences the authentication attempt: account lookup, challenge
// rendering, proof verification, nonce rotation, credential issuance. The
// nonce is rotated before tokens are minted, so a captured proof cannot be
// replayed even if the response is lost; on any failure the nonce is left
// untouched.
type AuthService struct {
	accounts  ports.AccountStore
	nonces    ports.NonceStore
	revoked   ports.RevocationStore
	verifier  *verifier.Verifier
	tokenizer ports.Tokenizer
	eventPub  ports.EventPublisher
	log       *zap.Logger

	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewAuthService creates a new authentication service. eventPub may be nil
// when no event transport is configured.
func NewAuthService(
	accounts ports.AccountStore,
	nonces ports.NonceStore,
	revoked ports.RevocationStore,
	v *verifier.Verifier,
	tokenizer ports.Tokenizer,
	eventPub ports.EventPublisher,
	log *zap.Logger,
) *AuthService {
	return &AuthService{
		accounts:   accounts,
		nonces:     nonces,
		revoked:    revoked,
		verifier:   v,
		tokenizer:  tokenizer,
		eventPub:   eventPub,
		log:        log,
		accessTTL:  5 * time.Minute,
		refreshTTL: 5 * 24 * time.Hour, // 5 days
	}
}

// Challenge returns the message the wallet behind address must sign for its
// next login.
func (s *AuthService) Challenge(ctx context.Context, address string) (string, error) {
	acct, err := s.accounts.FindByAddress(ctx, address)
	if err != nil {
		return "", err
	}
	nonce, err := s.nonces.Get(ctx, acct.ID)
	if err != nil {
		return "", err
	}
	return string(core.ChallengeMessage(nonce)), nil
}

// Login authenticates a wallet from its signed challenge and returns access
// and refresh tokens. Every failure is a typed error: rejections keep their
// precise reason for the log, but callers are expected to present them
// uniformly.
func (s *AuthService) Login(ctx context.Context, address string, proof core.Proof) (string, string, error) {
	acct, err := s.accounts.FindByAddress(ctx, address)
	if err != nil {
		return "", "", err
	}

	nonce, err := s.nonces.Get(ctx, acct.ID)
	if err != nil {
		return "", "", err
	}

	challenge := core.ChallengeMessage(nonce)

	if err := s.verifier.Verify(acct, challenge, proof); err != nil {
		s.log.Debug("login rejected",
			zap.String("address", acct.Address),
			zap.String("chain", string(acct.Chain)),
			zap.Error(err))
		return "", "", err
	}

	// Rotation must happen before issuance so the consumed challenge is
	// dead even if the response never reaches the client.
	if _, err := s.nonces.CompareAndRotate(ctx, acct.ID, nonce); err != nil {
		return "", "", err
	}

	now := time.Now()
	session := &core.Session{
		ID:            uuid.New().String(),
		Address:       acct.Address,
		Chain:         acct.Chain,
		IssuedAt:      now,
		RefreshExpiry: now.Add(s.refreshTTL),
		AccessExpiry:  now.Add(s.accessTTL),
		RefreshID:     uuid.New().String(),
	}

	accessToken, err := s.tokenizer.SessionToAccessToken(session)
	if err != nil {
		return "", "", fmt.Errorf("%w: access token: %v", core.ErrIssuanceFailed, err)
	}

	refreshToken, err := s.tokenizer.SessionToRefreshToken(session)
	if err != nil {
		return "", "", fmt.Errorf("%w: refresh token: %v", core.ErrIssuanceFailed, err)
	}

	if s.eventPub != nil {
		if err := s.eventPub.PublishLogin(ctx, acct.Address, session.ID); err != nil {
			// The session is already issued; losing the event is not
			// worth failing the login over.
			s.log.Warn("failed to publish login event", zap.Error(err))
		}
	}

	s.log.Info("login accepted",
		zap.String("address", acct.Address),
		zap.String("chain", string(acct.Chain)),
		zap.String("session_id", session.ID))

	return accessToken, refreshToken, nil
}

// Refresh rotates the refresh token and issues new access and refresh tokens
func (s *AuthService) Refresh(ctx context.Context, refreshTokenStr string) (string, string, error) {
	session, err := s.tokenizer.RefreshTokenToSession(refreshTokenStr)
	if err != nil {
		return "", "", fmt.Errorf("invalid refresh token: %w", err)
	}

	if time.Now().After(session.RefreshExpiry) {
		return "", "", core.ErrTokenExpired
	}

	invalidated, err := s.revoked.IsTokenInvalidated(ctx, session.RefreshID)
	if err != nil {
		return "", "", fmt.Errorf("failed to check token invalidation: %w", err)
	}
	if invalidated {
		return "", "", core.ErrTokenInvalidated
	}

	// Invalidate the old refresh token for the remainder of its lifetime.
	remainingTime := time.Until(session.RefreshExpiry)
	if err := s.revoked.InvalidateToken(ctx, session.RefreshID, remainingTime); err != nil {
		return "", "", fmt.Errorf("failed to invalidate old token: %w", err)
	}

	now := time.Now()
	newSession := &core.Session{
		ID:            uuid.New().String(),
		Address:       session.Address,
		Chain:         session.Chain,
		IssuedAt:      now,
		RefreshExpiry: now.Add(s.refreshTTL),
		AccessExpiry:  now.Add(s.accessTTL),
		RefreshID:     uuid.New().String(),
	}

	accessToken, err := s.tokenizer.SessionToAccessToken(newSession)
	if err != nil {
		return "", "", fmt.Errorf("%w: access token: %v", core.ErrIssuanceFailed, err)
	}

	refreshToken, err := s.tokenizer.SessionToRefreshToken(newSession)
	if err != nil {
		return "", "", fmt.Errorf("%w: refresh token: %v", core.ErrIssuanceFailed, err)
	}

	return accessToken, refreshToken, nil
}

// Logout invalidates a refresh token
func (s *AuthService) Logout(ctx context.Context, refreshTokenStr string) error {
	session, err := s.tokenizer.RefreshTokenToSession(refreshTokenStr)
	if err != nil {
		return fmt.Errorf("invalid refresh token: %w", err)
	}

	// Even an expired token gets an invalidation record, so it can't be
	// replayed under clock skew.
	remainingTime := time.Until(session.RefreshExpiry)
	if remainingTime <= 0 {
		remainingTime = time.Hour
	}

	if err := s.revoked.InvalidateToken(ctx, session.RefreshID, remainingTime); err != nil {
		return fmt.Errorf("failed to invalidate token: %w", err)
	}

	if s.eventPub != nil {
		if err := s.eventPub.PublishLogout(ctx, session.Address, session.RefreshID); err != nil {
			// The token is already invalidated in the store, which is
			// the part that matters.
			s.log.Warn("failed to publish logout event", zap.Error(err))
		}
	}

	return nil
}

// ValidateAccessToken parses an access token and checks it against the
// revocation list.
func (s *AuthService) ValidateAccessToken(ctx context.Context, accessToken string) (*core.Session, error) {
	session, err := s.tokenizer.AccessTokenToSession(accessToken)
	if err != nil {
		return nil, fmt.Errorf("invalid access token: %w", err)
	}

	if time.Now().After(session.AccessExpiry) {
		return nil, core.ErrTokenExpired
	}

	// Access tokens die with the refresh token they were issued against.
	if session.RefreshID != "" {
		invalidated, err := s.revoked.IsTokenInvalidated(ctx, session.RefreshID)
		if err != nil {
			return nil, fmt.Errorf("failed to check token invalidation: %w", err)
		}
		if invalidated {
			return nil, core.ErrTokenInvalidated
		}
	}

	return session, nil
}

// IsRetryable reports whether a failed login attempt may be retried from the
// start without user interaction.
func IsRetryable(err error) bool {
	return errors.Is(err, core.ErrNonceConflict) || errors.Is(err, core.ErrStoreUnavailable)
}
