package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	domain "github.com/orthoflow/clinic-api/internal/domain/passwordreset"
	"github.com/orthoflow/clinic-api/internal/models"
)

type ResetTokenGormStore struct {
	db *gorm.DB
}

func NewResetTokenGormStore(db *gorm.DB) *ResetTokenGormStore {
	return &ResetTokenGormStore{db: db}
}

func (s *ResetTokenGormStore) InvalidateActive(
	ctx context.Context,
	userID string,
	now time.Time,
) error {
	return s.db.WithContext(ctx).
		Model(&models.PasswordResetToken{}).
		Where("user_id = ? AND used = ? AND expires_at > ?", userID, false, now).
		Update("used", true).Error
}

func (s *ResetTokenGormStore) Create(
	ctx context.Context,
	t *models.PasswordResetToken,
) error {
	return s.db.WithContext(ctx).Create(t).Error
}

func (s *ResetTokenGormStore) FindActive(
	ctx context.Context,
	tokenHash string,
	now time.Time,
) (*models.PasswordResetToken, error) {

	var t models.PasswordResetToken
	err := s.db.WithContext(ctx).
		Where("token_hash = ? AND used = ? AND expires_at > ?", tokenHash, false, now).
		First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}
	return &t, nil
}

// MarkUsed is a single conditional UPDATE; of two concurrent redeemers only
// one sees a row flip.
func (s *ResetTokenGormStore) MarkUsed(
	ctx context.Context,
	tokenHash string,
	now time.Time,
) (bool, error) {

	res := s.db.WithContext(ctx).
		Model(&models.PasswordResetToken{}).
		Where("token_hash = ? AND used = ? AND expires_at > ?", tokenHash, false, now).
		Update("used", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *ResetTokenGormStore) UpdatePassword(
	ctx context.Context,
	userID string,
	passwordHash string,
) error {
	return s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("password_hash", passwordHash).Error
}

func (s *ResetTokenGormStore) Transaction(
	ctx context.Context,
	fn func(domain.Store) error,
) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ResetTokenGormStore{db: tx})
	})
}

// Compile-time check
var _ domain.Store = (*ResetTokenGormStore)(nil)
