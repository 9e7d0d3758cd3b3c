package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/presensi-app/attendance-backend-go/internal/domain/user"
)

// EnsureSuperAdmin creates the first super admin account unless the email is
// already registered. It reports whether an account was created.
func EnsureSuperAdmin(ctx context.Context, repo user.UserRepository, email, password string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false, nil
	}

	exists, err := repo.ExistsByEmail(ctx, email, "")
	if err != nil {
		return false, fmt.Errorf("failed to check super admin email: %w", err)
	}
	if exists {
		return false, nil
	}

	hash, err := hashPassword(password)
	if err != nil {
		return false, err
	}

	_, err = repo.Create(ctx, user.User{
		Name:         "Super Admin",
		Email:        email,
		PasswordHash: hash,
		Role:         user.RoleSuperAdmin,
	})
	if errors.Is(err, user.ErrUserEmailExists) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create super admin: %w", err)
	}
	return true, nil
}
