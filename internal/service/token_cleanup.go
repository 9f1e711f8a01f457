package service

import (
	"context"
	"time"

	"bitwise74/user-api/internal/repository"

	"go.uber.org/zap"
)

// TokenCleanup periodically drops ledger rows for tokens that are past their
// natural expiry. It stops when ctx is cancelled.
func TokenCleanup(ctx context.Context, t time.Duration, ttl time.Duration, l *repository.TokenLedger) {
	ticker := time.NewTicker(t)

	zap.L().Debug("Token cleanup attached", zap.Duration("tick_every", t))

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				PurgeExpiredTokens(ctx, ttl, l)
			}
		}
	}()
}

// PurgeExpiredTokens runs a single cleanup pass
func PurgeExpiredTokens(ctx context.Context, ttl time.Duration, l *repository.TokenLedger) int64 {
	n, err := l.PurgeIssuedBefore(ctx, time.Now().UTC().Add(-ttl))
	if err != nil {
		zap.L().Error("Failed to cleanup expired tokens", zap.Error(err))
		return 0
	}

	if n > 0 {
		zap.L().Debug("Cleaned up expired tokens", zap.Int64("count", n))
	}

	return n
}
