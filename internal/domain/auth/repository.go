package auth

import (
	"context"
	"time"
)

// RefreshTokenRepository persists issued refresh tokens by hash.
type RefreshTokenRepository interface {
	CreateRefreshToken(ctx context.Context, userID string, token string, expiresAt int64, sessionReq SessionTrackingRequest) error
	// IsRefreshTokenRevoked reports the owner and whether the token is revoked or expired
	IsRefreshTokenRevoked(ctx context.Context, token string) (userID string, revoked bool, err error)
	RevokeRefreshToken(ctx context.Context, token string) error
	// DeleteStaleRefreshTokens removes tokens that expired or were revoked before the cutoff.
	DeleteStaleRefreshTokens(ctx context.Context, before time.Time) (int64, error)
}
