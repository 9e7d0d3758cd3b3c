package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/presensi-app/attendance-backend-go/internal/service/fake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionJobs_PurgeStaleRefreshTokens(t *testing.T) {
	ctx := context.Background()
	db := fake.NewDB()
	repo := fake.NewRefreshTokenRepository(db)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	db.Tokens["old"] = fake.Token{UserID: "u1", ExpiresAt: now.Add(-48 * time.Hour)}
	db.Tokens["recent"] = fake.Token{UserID: "u1", ExpiresAt: now.Add(-time.Hour)}
	db.Tokens["live"] = fake.Token{UserID: "u1", ExpiresAt: now.Add(time.Hour)}

	jobs := NewSessionJobs(repo, 24*time.Hour)
	jobs.now = func() time.Time { return now }

	require.NoError(t, jobs.PurgeStaleRefreshTokens(ctx))
	assert.NotContains(t, db.Tokens, "old")
	assert.Contains(t, db.Tokens, "recent")
	assert.Contains(t, db.Tokens, "live")
}

func TestScheduler_RunOnceKeepsGoingAfterFailure(t *testing.T) {
	s := NewScheduler()
	var calls atomic.Int32
	s.AddJob("fails", time.Hour, func(ctx context.Context) error {
		calls.Add(1)
		return errors.New("boom")
	})
	s.AddJob("succeeds", time.Hour, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	})

	s.RunOnce(context.Background())
	assert.Equal(t, int32(2), calls.Load())
}

func TestScheduler_StartRunsImmediatelyAndStops(t *testing.T) {
	s := NewScheduler()
	ran := make(chan struct{}, 1)
	s.AddJob("tick", time.Hour, func(ctx context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	})

	s.Start()
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("job did not run on start")
	}
	s.Stop()
}
