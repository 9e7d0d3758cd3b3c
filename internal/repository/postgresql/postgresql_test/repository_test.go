package postgresql_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/presensi-app/attendance-backend-go/internal/domain/attendance"
	"github.com/presensi-app/attendance-backend-go/internal/domain/auth"
	"github.com/presensi-app/attendance-backend-go/internal/domain/media"
	"github.com/presensi-app/attendance-backend-go/internal/domain/user"
	"github.com/presensi-app/attendance-backend-go/internal/pkg/database"
	"github.com/presensi-app/attendance-backend-go/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestUser(t *testing.T, db *database.DB, email string, role user.Role) user.User {
	t.Helper()
	u, err := postgresql.NewUserRepository(db).Create(context.Background(), user.User{
		Name:         "Test " + email,
		Email:        email,
		PasswordHash: "$2a$10$hash",
		Role:         role,
	})
	require.NoError(t, err)
	return u
}

func TestUserRepository(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewUserRepository(db)

	budi := createTestUser(t, db, "Budi@Example.com", user.RoleUser)
	assert.Equal(t, "budi@example.com", budi.Email)
	createTestUser(t, db, "admin@example.com", user.RoleAdmin)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := repo.Create(ctx, user.User{Name: "x", Email: "BUDI@example.com", PasswordHash: "h", Role: user.RoleUser})
		assert.ErrorIs(t, err, user.ErrUserEmailExists)
	})

	t.Run("get by email is case insensitive", func(t *testing.T) {
		got, err := repo.GetByEmail(ctx, "BUDI@EXAMPLE.COM")
		require.NoError(t, err)
		assert.Equal(t, budi.ID, got.ID)
	})

	t.Run("list by kind", func(t *testing.T) {
		users, total, err := repo.List(ctx, user.UserFilter{Kind: user.KindUser, Page: 1, Limit: 15})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, users, 1)
		assert.Equal(t, budi.ID, users[0].ID)

		admins, total, err := repo.List(ctx, user.UserFilter{Kind: user.KindAdmin, Page: 1, Limit: 15})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		assert.Equal(t, user.RoleAdmin, admins[0].Role)
	})

	t.Run("exists by email excludes self", func(t *testing.T) {
		exists, err := repo.ExistsByEmail(ctx, "budi@example.com", budi.ID)
		require.NoError(t, err)
		assert.False(t, exists)

		exists, err = repo.ExistsByEmail(ctx, "budi@example.com", "")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, budi.ID))
		assert.ErrorIs(t, repo.Delete(ctx, budi.ID), user.ErrUserNotFound)
		_, err := repo.GetByID(ctx, budi.ID)
		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})
}

func TestAttendanceRepository_OpenRecordLifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewAttendanceRepository(db)
	u := createTestUser(t, db, "siti@example.com", user.RoleUser)

	checkIn := time.Date(2025, 3, 3, 1, 0, 0, 0, time.UTC)
	open, err := repo.Create(ctx, attendance.Attendance{
		UserID:  u.ID,
		Date:    time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
		CheckIn: &checkIn,
	})
	require.NoError(t, err)
	assert.True(t, open.IsOpen())

	_, err = repo.Create(ctx, attendance.Attendance{UserID: u.ID, Date: open.Date, CheckIn: &checkIn})
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)

	got, err := repo.GetOpenByUserID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, open.ID, got.ID)

	other := createTestUser(t, db, "other@example.com", user.RoleUser)
	_, err = repo.Close(ctx, open.ID, other.ID, checkIn.Add(time.Hour))
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)

	closed, err := repo.Close(ctx, open.ID, u.ID, checkIn.Add(8*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, attendance.StateClosed, closed.State())

	_, err = repo.Close(ctx, open.ID, u.ID, checkIn.Add(9*time.Hour))
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedOut)

	none, err := repo.GetOpenByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, none)

	in, out := 0.28, 0.41
	annotated, err := repo.UpdateDistances(ctx, open.ID, &in, nil)
	require.NoError(t, err)
	assert.Nil(t, annotated.CheckOutPhotoDistance)
	assert.Equal(t, attendance.StateAnnotated, annotated.State())

	annotated, err = repo.UpdateDistances(ctx, open.ID, nil, &out)
	require.NoError(t, err)
	require.NotNil(t, annotated.CheckInPhotoDistance)
	assert.InDelta(t, 0.28, *annotated.CheckInPhotoDistance, 1e-9)
	assert.InDelta(t, 0.41, *annotated.CheckOutPhotoDistance, 1e-9)

	full, err := repo.GetByID(ctx, open.ID)
	require.NoError(t, err)
	require.NotNil(t, full.UserEmail)
	assert.Equal(t, "siti@example.com", *full.UserEmail)
}

func TestAttendanceRepository_ConcurrentCheckIn(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewAttendanceRepository(db)
	u := createTestUser(t, db, "race@example.com", user.RoleUser)

	now := time.Now().UTC()
	var wg sync.WaitGroup
	errs := make(chan error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Create(ctx, attendance.Attendance{UserID: u.ID, Date: now, CheckIn: &now})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok, conflicts int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn):
			conflicts++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 4, conflicts)
}

func TestAttendanceRepository_List(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewAttendanceRepository(db)
	u := createTestUser(t, db, "list@example.com", user.RoleUser)

	base := time.Date(2025, 3, 1, 1, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		in := base.AddDate(0, 0, i)
		out := in.Add(8 * time.Hour)
		_, err := repo.Create(ctx, attendance.Attendance{UserID: u.ID, Date: in, CheckIn: &in, CheckOut: &out})
		require.NoError(t, err)
	}

	since := base.AddDate(0, 0, 1)
	items, total, err := repo.List(ctx, attendance.AttendanceFilter{UserID: &u.ID, SinceTime: &since, Page: 1, Limit: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, items, 1)
}

func TestMediaRepository(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewMediaRepository(db)
	u := createTestUser(t, db, "media@example.com", user.RoleUser)

	for i := 2; i >= 0; i-- {
		_, err := repo.Create(ctx, media.Media{
			OwnerType:   media.OwnerUser,
			OwnerID:     u.ID,
			Collection:  media.CollectionFaceReference,
			Path:        "face-reference/x.jpg",
			FileName:    "x.jpg",
			ContentType: "image/jpeg",
			Size:        10,
			Position:    i,
		})
		require.NoError(t, err)
	}

	items, err := repo.ListByOwner(ctx, media.OwnerUser, u.ID, media.CollectionFaceReference)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, []int{0, 1, 2}, []int{items[0].Position, items[1].Position, items[2].Position})

	count, err := repo.CountByOwner(ctx, media.OwnerUser, u.ID, media.CollectionFaceReference)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	in := time.Now().UTC()
	att, err := postgresql.NewAttendanceRepository(db).Create(ctx, attendance.Attendance{UserID: u.ID, Date: in, CheckIn: &in})
	require.NoError(t, err)
	_, err = repo.Create(ctx, media.Media{
		OwnerType: media.OwnerAttendance, OwnerID: att.ID, Collection: media.CollectionCheckInPhoto,
		Path: "check-in-photo/y.jpg", FileName: "y.jpg", ContentType: "image/jpeg", Size: 5,
	})
	require.NoError(t, err)

	deleted, err := repo.DeleteByOwner(ctx, media.OwnerUser, u.ID)
	require.NoError(t, err)
	assert.Len(t, deleted, 4)
}

func TestJWTRepository(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewJWTRepository(db)
	u := createTestUser(t, db, "token@example.com", user.RoleUser)

	token := "refresh-token-value"
	exp := time.Now().Add(time.Hour).Unix()
	require.NoError(t, repo.CreateRefreshToken(ctx, u.ID, token, exp, auth.SessionTrackingRequest{UserAgent: "test"}))

	owner, revoked, err := repo.IsRefreshTokenRevoked(ctx, token)
	require.NoError(t, err)
	assert.False(t, revoked)
	assert.Equal(t, u.ID, owner)

	require.NoError(t, repo.RevokeRefreshToken(ctx, token))
	_, revoked, err = repo.IsRefreshTokenRevoked(ctx, token)
	require.NoError(t, err)
	assert.True(t, revoked)

	_, revoked, err = repo.IsRefreshTokenRevoked(ctx, "unknown")
	require.NoError(t, err)
	assert.True(t, revoked)

	live := "live-refresh-token"
	require.NoError(t, repo.CreateRefreshToken(ctx, u.ID, live, exp, auth.SessionTrackingRequest{}))
	deleted, err := repo.DeleteStaleRefreshTokens(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, revoked, err = repo.IsRefreshTokenRevoked(ctx, live)
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestTxManager_RollsBack(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	tx := postgresql.NewTxManager(db)
	repo := postgresql.NewUserRepository(db)

	err := tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		_, err := repo.Create(txCtx, user.User{Name: "a", Email: "tx@example.com", PasswordHash: "h", Role: user.RoleUser})
		require.NoError(t, err)
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	_, err = repo.GetByEmail(ctx, "tx@example.com")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}
