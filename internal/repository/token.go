package repository

import (
	"context"
	"fmt"
	"time"

	"bitwise74/user-api/internal/model"

	"gorm.io/gorm"
)

// TokenLedger tracks issued bearer tokens so they can be revoked before
// they expire
type TokenLedger struct {
	db *gorm.DB
}

func NewTokenLedger(db *gorm.DB) *TokenLedger {
	return &TokenLedger{db: db}
}

// Record stores a freshly issued token as active
func (l *TokenLedger) Record(ctx context.Context, token string, userID uint) error {
	err := l.db.WithContext(ctx).Create(&model.Token{
		Token:    token,
		UserID:   userID,
		IsActive: true,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to record token, %w", err)
	}

	return nil
}

// IsActive reports whether token was recorded and hasn't been revoked
func (l *TokenLedger) IsActive(ctx context.Context, token string) (bool, error) {
	var n int64

	err := l.db.WithContext(ctx).
		Model(&model.Token{}).
		Where("token = ? AND is_active = ?", token, true).
		Count(&n).
		Error
	if err != nil {
		return false, fmt.Errorf("failed to look up token, %w", err)
	}

	return n > 0, nil
}

// Revoke blacklists token. Revoking an unknown or already revoked token is
// not an error.
func (l *TokenLedger) Revoke(ctx context.Context, token string) error {
	err := l.db.WithContext(ctx).
		Model(&model.Token{}).
		Where("token = ?", token).
		Update("is_active", false).
		Error
	if err != nil {
		return fmt.Errorf("failed to revoke token, %w", err)
	}

	return nil
}

// PurgeIssuedBefore deletes ledger rows for tokens issued before t. Callers
// pass now minus the token TTL so only naturally expired tokens go.
func (l *TokenLedger) PurgeIssuedBefore(ctx context.Context, t time.Time) (int64, error) {
	r := l.db.WithContext(ctx).
		Where("created_at < ?", t).
		Delete(&model.Token{})
	if r.Error != nil {
		return 0, fmt.Errorf("failed to purge tokens, %w", r.Error)
	}

	return r.RowsAffected, nil
}
