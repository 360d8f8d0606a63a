package passwordreset

import (
	"context"
	"errors"
	"time"

	"github.com/orthoflow/clinic-api/internal/models"
)

// ErrInvalidToken is the single signal for every redemption failure: unknown,
// expired and already-used tokens are indistinguishable to the caller.
var ErrInvalidToken = errors.New("invalid or expired token")

type Store interface {
	// InvalidateActive marks every unused, unexpired token of the user as used.
	InvalidateActive(ctx context.Context, userID string, now time.Time) error

	Create(ctx context.Context, t *models.PasswordResetToken) error

	// FindActive looks up an unused, unexpired token by its hash.
	// Returns ErrInvalidToken when no such row exists.
	FindActive(ctx context.Context, tokenHash string, now time.Time) (*models.PasswordResetToken, error)

	// MarkUsed flips used on an active token. Returns false when the token was
	// already consumed, expired or never issued; at most one concurrent caller
	// observes true for a given hash.
	MarkUsed(ctx context.Context, tokenHash string, now time.Time) (bool, error)

	// UpdatePassword sets the password hash of the token's owner.
	UpdatePassword(ctx context.Context, userID string, passwordHash string) error

	// Transaction runs fn against a store bound to a single transaction; any
	// error rolls the whole sequence back.
	Transaction(ctx context.Context, fn func(Store) error) error
}
