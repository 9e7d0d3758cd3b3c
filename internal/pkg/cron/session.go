package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/presensi-app/attendance-backend-go/internal/domain/auth"
)

// SessionJobs keeps the refresh_tokens table from growing without bound.
type SessionJobs struct {
	tokens auth.RefreshTokenRepository
	// Retention keeps expired or revoked tokens around for auditing.
	Retention time.Duration
	now       func() time.Time
}

func NewSessionJobs(tokens auth.RefreshTokenRepository, retention time.Duration) *SessionJobs {
	return &SessionJobs{tokens: tokens, Retention: retention, now: time.Now}
}

func (j *SessionJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("purge_stale_refresh_tokens", time.Hour, j.PurgeStaleRefreshTokens)
}

func (j *SessionJobs) PurgeStaleRefreshTokens(ctx context.Context) error {
	cutoff := j.now().Add(-j.Retention)
	deleted, err := j.tokens.DeleteStaleRefreshTokens(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to purge refresh tokens: %w", err)
	}
	if deleted > 0 {
		slog.Info("Cron: purged stale refresh tokens", "deleted", deleted, "cutoff", cutoff)
	}
	return nil
}
