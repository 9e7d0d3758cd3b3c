package user_test

import (
	"context"
	"testing"

	"github.com/presensi-app/attendance-backend-go/internal/domain/attendance"
	"github.com/presensi-app/attendance-backend-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func addUserWithPassword(t *testing.T, f *fixture, email, password string) user.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return f.db.AddUser(user.User{Name: "Siti", Email: email, Role: user.RoleUser, PasswordHash: string(hash)})
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture()
	u := addUserWithPassword(t, f, "siti@example.com", "password123")
	f.db.AddUser(user.User{Name: "Other", Email: "taken@example.com", Role: user.RoleUser})

	_, err := f.service.UpdateProfile(context.Background(), user.UpdateProfileRequest{UserID: u.ID, Name: "", Email: "bad"})
	fields := fieldsOf(t, err)
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "email")

	_, err = f.service.UpdateProfile(context.Background(), user.UpdateProfileRequest{UserID: u.ID, Name: "Siti", Email: "taken@example.com"})
	assert.Equal(t, "email has already been taken", fieldsOf(t, err)["email"])

	got, err := f.service.UpdateProfile(context.Background(), user.UpdateProfileRequest{UserID: u.ID, Name: "Siti Aminah", Email: "siti.aminah@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Siti Aminah", got.Name)
	assert.Equal(t, "siti.aminah@example.com", f.db.Users[u.ID].Email)
	assert.Equal(t, user.RoleUser, f.db.Users[u.ID].Role)
}

func TestChangePassword(t *testing.T) {
	f := newFixture()
	u := addUserWithPassword(t, f, "siti@example.com", "password123")

	t.Run("wrong current password", func(t *testing.T) {
		err := f.service.ChangePassword(context.Background(), user.ChangePasswordRequest{
			UserID: u.ID, CurrentPassword: "nope12345", Password: "newpassword", PasswordConfirmation: "newpassword",
		})
		assert.Contains(t, fieldsOf(t, err), "current_password")
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(f.db.Users[u.ID].PasswordHash), []byte("password123")))
	})

	t.Run("missing current password and mismatched confirmation", func(t *testing.T) {
		err := f.service.ChangePassword(context.Background(), user.ChangePasswordRequest{
			UserID: u.ID, Password: "newpassword", PasswordConfirmation: "other",
		})
		fields := fieldsOf(t, err)
		assert.Contains(t, fields, "current_password")
		assert.Contains(t, fields, "password_confirmation")
	})

	t.Run("changes the password", func(t *testing.T) {
		err := f.service.ChangePassword(context.Background(), user.ChangePasswordRequest{
			UserID: u.ID, CurrentPassword: "password123", Password: "newpassword", PasswordConfirmation: "newpassword",
		})
		require.NoError(t, err)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(f.db.Users[u.ID].PasswordHash), []byte("newpassword")))
	})
}

func TestDeleteAccount(t *testing.T) {
	f := newFixture()
	u := addUserWithPassword(t, f, "siti@example.com", "password123")
	f.db.AddAttendance(attendance.Attendance{UserID: u.ID})

	err := f.service.DeleteAccount(context.Background(), user.DeleteAccountRequest{UserID: u.ID, Password: "wrongpass"})
	assert.Contains(t, fieldsOf(t, err), "password")
	assert.Contains(t, f.db.Users, u.ID)

	require.NoError(t, f.service.DeleteAccount(context.Background(), user.DeleteAccountRequest{UserID: u.ID, Password: "password123"}))
	assert.NotContains(t, f.db.Users, u.ID)
	assert.Zero(t, f.db.CountAttendances())
}
