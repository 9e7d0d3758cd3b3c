package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/presensi-app/attendance-backend-go/internal/domain/user"
	"github.com/presensi-app/attendance-backend-go/internal/pkg/validator"
	"golang.org/x/crypto/bcrypt"
)

// checkPassword loads the caller and confirms password against the stored
// hash. A mismatch is reported on field.
func (s *UserServiceImpl) checkPassword(ctx context.Context, userID, password, field string) (user.User, error) {
	u, err := s.UserRepository.GetByID(ctx, userID)
	if err != nil {
		return user.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return user.User{}, validator.ValidationErrors{{
			Field:   field,
			Message: "the password is incorrect",
		}}
	}
	return u, nil
}

// UpdateProfile implements user.UserService.
func (s *UserServiceImpl) UpdateProfile(ctx context.Context, req user.UpdateProfileRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	existing, err := s.UserRepository.GetByID(ctx, req.UserID)
	if err != nil {
		return user.UserResponse{}, err
	}

	exists, err := s.UserRepository.ExistsByEmail(ctx, req.Email, existing.ID)
	if err != nil {
		return user.UserResponse{}, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return user.UserResponse{}, emailTaken()
	}

	existing.Name = req.Name
	existing.Email = req.Email
	updated, err := s.UserRepository.Update(ctx, existing)
	if err != nil {
		if errors.Is(err, user.ErrUserEmailExists) {
			return user.UserResponse{}, emailTaken()
		}
		if errors.Is(err, user.ErrUserNotFound) {
			return user.UserResponse{}, err
		}
		return user.UserResponse{}, fmt.Errorf("failed to update profile: %w", err)
	}

	return s.withPhotos(ctx, updated)
}

// ChangePassword implements user.UserService.
func (s *UserServiceImpl) ChangePassword(ctx context.Context, req user.ChangePasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if _, err := s.checkPassword(ctx, req.UserID, req.CurrentPassword, "current_password"); err != nil {
		return err
	}

	passwordHash, err := hashPassword(req.Password)
	if err != nil {
		return err
	}
	return s.UserRepository.UpdatePassword(ctx, req.UserID, passwordHash)
}

// DeleteAccount implements user.UserService. It follows Delete without the
// self-deletion guard.
func (s *UserServiceImpl) DeleteAccount(ctx context.Context, req user.DeleteAccountRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if _, err := s.checkPassword(ctx, req.UserID, req.Password, "password"); err != nil {
		return err
	}
	return s.remove(ctx, req.UserID)
}
