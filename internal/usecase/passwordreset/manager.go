package passwordreset

import (
	"context"
	"time"

	domain "github.com/orthoflow/clinic-api/internal/domain/passwordreset"
	"github.com/orthoflow/clinic-api/internal/models"
	"github.com/orthoflow/clinic-api/internal/token"
)

// TokenTTL is how long an issued token stays redeemable.
const TokenTTL = time.Hour

const secretByteLength = 32

// ======================================================
// MANAGER
// ======================================================

// Manager issues and redeems single-use recovery tokens. Generator, hasher
// and clock are injected so the lifecycle is testable without storage or
// wall-clock time.
type Manager struct {
	store    domain.Store
	generate func(int) (string, error)
	hash     func(string) string
	now      func() time.Time
}

func NewManager(store domain.Store) *Manager {
	return &Manager{
		store:    store,
		generate: token.RandomURLSafe,
		hash:     token.Hash,
		now:      time.Now,
	}
}

// NewManagerWithClock is used by tests to control expiry.
func NewManagerWithClock(store domain.Store, now func() time.Time) *Manager {
	m := NewManager(store)
	m.now = now
	return m
}

// Issue invalidates every live token of the user, then stores the hash of a
// fresh secret and returns the secret itself. The secret is never persisted;
// losing the return value means issuing again.
func (m *Manager) Issue(ctx context.Context, userID string) (string, error) {
	now := m.now()

	if err := m.store.InvalidateActive(ctx, userID, now); err != nil {
		return "", err
	}

	raw, err := m.generate(secretByteLength)
	if err != nil {
		return "", err
	}

	t := &models.PasswordResetToken{
		UserID:    userID,
		TokenHash: m.hash(raw),
		ExpiresAt: now.Add(TokenTTL),
		Used:      false,
	}

	if err := m.store.Create(ctx, t); err != nil {
		return "", err
	}

	return raw, nil
}

// Validate resolves a raw token to its stored row. Unknown, expired and used
// tokens all come back as ErrInvalidToken; the caller learns nothing more.
func (m *Manager) Validate(ctx context.Context, rawToken string) (*models.PasswordResetToken, error) {
	return m.store.FindActive(ctx, m.hash(rawToken), m.now())
}

// Redeem consumes a token. Exactly one concurrent redemption can succeed for
// a given token.
func (m *Manager) Redeem(ctx context.Context, rawToken string) (*models.PasswordResetToken, error) {
	hash := m.hash(rawToken)
	now := m.now()

	t, err := m.store.FindActive(ctx, hash, now)
	if err != nil {
		return nil, err
	}

	ok, err := m.store.MarkUsed(ctx, hash, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost the race to another redeemer.
		return nil, domain.ErrInvalidToken
	}

	t.Used = true
	return t, nil
}

// ResetPassword redeems the token and writes the new password hash in one
// storage transaction. A failed write rolls the redemption back, so the token
// stays live and the caller can retry.
func (m *Manager) ResetPassword(
	ctx context.Context,
	rawToken string,
	passwordHash string,
) (*models.PasswordResetToken, error) {

	var redeemed *models.PasswordResetToken

	err := m.store.Transaction(ctx, func(s domain.Store) error {
		bound := *m
		bound.store = s

		t, err := bound.Redeem(ctx, rawToken)
		if err != nil {
			return err
		}

		if err := s.UpdatePassword(ctx, t.UserID, passwordHash); err != nil {
			return err
		}

		redeemed = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return redeemed, nil
}
