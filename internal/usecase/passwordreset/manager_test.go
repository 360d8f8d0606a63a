package passwordreset

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/orthoflow/clinic-api/internal/domain/passwordreset"
	"github.com/orthoflow/clinic-api/internal/models"
	"github.com/orthoflow/clinic-api/internal/token"
)

// fakeStore keeps tokens in a slice and applies the same liveness rules the
// SQL store does. Transaction snapshots the tokens and restores them when fn
// fails, mirroring a rollback.
type fakeStore struct {
	tokens    []*models.PasswordResetToken
	passwords map[string]string

	failPasswordWrite bool
}

func (s *fakeStore) InvalidateActive(_ context.Context, userID string, now time.Time) error {
	for _, t := range s.tokens {
		if t.UserID == userID && !t.Used && t.ExpiresAt.After(now) {
			t.Used = true
		}
	}
	return nil
}

func (s *fakeStore) Create(_ context.Context, t *models.PasswordResetToken) error {
	stored := *t
	s.tokens = append(s.tokens, &stored)
	return nil
}

func (s *fakeStore) FindActive(_ context.Context, tokenHash string, now time.Time) (*models.PasswordResetToken, error) {
	for _, t := range s.tokens {
		if t.TokenHash == tokenHash && !t.Used && t.ExpiresAt.After(now) {
			copied := *t
			return &copied, nil
		}
	}
	return nil, domain.ErrInvalidToken
}

func (s *fakeStore) MarkUsed(_ context.Context, tokenHash string, now time.Time) (bool, error) {
	for _, t := range s.tokens {
		if t.TokenHash == tokenHash && !t.Used && t.ExpiresAt.After(now) {
			t.Used = true
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) UpdatePassword(_ context.Context, userID, passwordHash string) error {
	if s.failPasswordWrite {
		return errors.New("password write failed")
	}
	if s.passwords == nil {
		s.passwords = map[string]string{}
	}
	s.passwords[userID] = passwordHash
	return nil
}

func (s *fakeStore) Transaction(_ context.Context, fn func(domain.Store) error) error {
	snapshot := make([]*models.PasswordResetToken, len(s.tokens))
	for i, t := range s.tokens {
		copied := *t
		snapshot[i] = &copied
	}

	if err := fn(s); err != nil {
		s.tokens = snapshot
		return err
	}
	return nil
}

// fakeClock lets tests move time forward between calls.
type fakeClock struct {
	current time.Time
}

func (c *fakeClock) now() time.Time { return c.current }

func (c *fakeClock) advance(d time.Duration) { c.current = c.current.Add(d) }

func newTestManager() (*Manager, *fakeStore, *fakeClock) {
	store := &fakeStore{}
	clock := &fakeClock{current: time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)}
	return NewManagerWithClock(store, clock.now), store, clock
}

func TestIssueReturnsSecretAndStoresOnlyHash(t *testing.T) {
	m, store, _ := newTestManager()

	raw, err := m.Issue(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if raw == "" {
		t.Fatal("expected a non-empty secret")
	}

	if len(store.tokens) != 1 {
		t.Fatalf("expected 1 stored token, got %d", len(store.tokens))
	}
	stored := store.tokens[0]
	if stored.TokenHash == raw {
		t.Fatal("raw secret must not be persisted")
	}
	if stored.TokenHash != token.Hash(raw) {
		t.Fatal("stored hash does not match the issued secret")
	}
	if stored.Used {
		t.Fatal("fresh token must start unused")
	}
}

func TestIssueSetsOneHourExpiry(t *testing.T) {
	m, store, clock := newTestManager()

	if _, err := m.Issue(context.Background(), "user-1"); err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	want := clock.current.Add(time.Hour)
	if !store.tokens[0].ExpiresAt.Equal(want) {
		t.Fatalf("expected expiry %v, got %v", want, store.tokens[0].ExpiresAt)
	}
}

func TestReissueInvalidatesPriorToken(t *testing.T) {
	m, _, _ := newTestManager()
	ctx := context.Background()

	first, err := m.Issue(ctx, "user-1")
	if err != nil {
		t.Fatalf("first issue failed: %v", err)
	}
	second, err := m.Issue(ctx, "user-1")
	if err != nil {
		t.Fatalf("second issue failed: %v", err)
	}

	if _, err := m.Validate(ctx, first); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("first token should be dead after reissue, got %v", err)
	}
	if _, err := m.Validate(ctx, second); err != nil {
		t.Fatalf("second token should stay live: %v", err)
	}
}

func TestReissueDoesNotTouchOtherUsers(t *testing.T) {
	m, _, _ := newTestManager()
	ctx := context.Background()

	other, err := m.Issue(ctx, "user-2")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := m.Issue(ctx, "user-1"); err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	if _, err := m.Validate(ctx, other); err != nil {
		t.Fatalf("another user's token must survive: %v", err)
	}
}

func TestRedeemIsSingleUse(t *testing.T) {
	m, _, _ := newTestManager()
	ctx := context.Background()

	raw, err := m.Issue(ctx, "user-1")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	redeemed, err := m.Redeem(ctx, raw)
	if err != nil {
		t.Fatalf("first redeem failed: %v", err)
	}
	if redeemed.UserID != "user-1" {
		t.Fatalf("wrong user: %q", redeemed.UserID)
	}
	if !redeemed.Used {
		t.Fatal("redeemed token should come back marked used")
	}

	if _, err := m.Redeem(ctx, raw); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("second redeem must fail with ErrInvalidToken, got %v", err)
	}
}

func TestRedeemBeforeExpiry(t *testing.T) {
	m, _, clock := newTestManager()
	ctx := context.Background()

	raw, err := m.Issue(ctx, "user-1")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	clock.advance(30 * time.Minute)

	if _, err := m.Redeem(ctx, raw); err != nil {
		t.Fatalf("redeem within TTL failed: %v", err)
	}
}

func TestRedeemAfterExpiry(t *testing.T) {
	m, _, clock := newTestManager()
	ctx := context.Background()

	raw, err := m.Issue(ctx, "user-1")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	clock.advance(61 * time.Minute)

	if _, err := m.Redeem(ctx, raw); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expired redeem must fail with ErrInvalidToken, got %v", err)
	}
	if _, err := m.Validate(ctx, raw); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expired validate must fail with ErrInvalidToken, got %v", err)
	}
}

func TestValidateUnknownToken(t *testing.T) {
	m, _, _ := newTestManager()

	if _, err := m.Validate(context.Background(), "never-issued"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("unknown token must fail with ErrInvalidToken, got %v", err)
	}
}

func TestResetPasswordWritesHashAndConsumesToken(t *testing.T) {
	m, store, _ := newTestManager()
	ctx := context.Background()

	raw, err := m.Issue(ctx, "user-1")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	redeemed, err := m.ResetPassword(ctx, raw, "new-hash")
	if err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if redeemed.UserID != "user-1" {
		t.Fatalf("wrong user: %q", redeemed.UserID)
	}
	if store.passwords["user-1"] != "new-hash" {
		t.Fatalf("password not written: %q", store.passwords["user-1"])
	}

	if _, err := m.ResetPassword(ctx, raw, "another-hash"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("token must be consumed after a successful reset, got %v", err)
	}
}

func TestResetPasswordFailedWriteKeepsTokenLive(t *testing.T) {
	m, store, _ := newTestManager()
	ctx := context.Background()

	raw, err := m.Issue(ctx, "user-1")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	store.failPasswordWrite = true
	if _, err := m.ResetPassword(ctx, raw, "new-hash"); err == nil {
		t.Fatal("expected the failed write to surface")
	}
	if len(store.passwords) != 0 {
		t.Fatalf("no password should be written: %v", store.passwords)
	}

	// The redemption rolled back with the write; the same token retries.
	store.failPasswordWrite = false
	if _, err := m.Validate(ctx, raw); err != nil {
		t.Fatalf("token must stay live after a failed write: %v", err)
	}
	if _, err := m.ResetPassword(ctx, raw, "new-hash"); err != nil {
		t.Fatalf("retry should succeed: %v", err)
	}
	if store.passwords["user-1"] != "new-hash" {
		t.Fatalf("password not written on retry: %q", store.passwords["user-1"])
	}
}

func TestValidateDoesNotConsume(t *testing.T) {
	m, _, _ := newTestManager()
	ctx := context.Background()

	raw, err := m.Issue(ctx, "user-1")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := m.Validate(ctx, raw); err != nil {
			t.Fatalf("validate #%d failed: %v", i+1, err)
		}
	}
	if _, err := m.Redeem(ctx, raw); err != nil {
		t.Fatalf("redeem after validations failed: %v", err)
	}
}
