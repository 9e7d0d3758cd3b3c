package user

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/presensi-app/attendance-backend-go/internal/domain/media"
	"github.com/presensi-app/attendance-backend-go/internal/domain/photo"
	"github.com/presensi-app/attendance-backend-go/internal/domain/user"
	"github.com/presensi-app/attendance-backend-go/internal/pkg/validator"
	"github.com/presensi-app/attendance-backend-go/internal/repository/postgresql"
	"golang.org/x/crypto/bcrypt"
)

const photoURLExpiry = time.Hour

type UserServiceImpl struct {
	tx postgresql.TxManager
	user.UserRepository
	media  media.MediaService
	photos photo.PhotoService
}

func NewUserService(tx postgresql.TxManager, userRepo user.UserRepository, mediaService media.MediaService, photoService photo.PhotoService) user.UserService {
	return &UserServiceImpl{
		tx:             tx,
		UserRepository: userRepo,
		media:          mediaService,
		photos:         photoService,
	}
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func emailTaken() error {
	return validator.ValidationErrors{{
		Field:   "email",
		Message: "email has already been taken",
	}}
}

// find loads a user and hides accounts managed under another kind.
func (s *UserServiceImpl) find(ctx context.Context, kind user.Kind, id string) (user.User, error) {
	if !validator.IsValidUUID(id) {
		return user.User{}, user.ErrUserNotFound
	}
	u, err := s.UserRepository.GetByID(ctx, id)
	if err != nil {
		return user.User{}, err
	}
	if u.Role.Kind() != kind {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

// List implements user.UserService.
func (s *UserServiceImpl) List(ctx context.Context, filter user.UserFilter) (user.ListUserResponse, error) {
	if err := filter.Validate(); err != nil {
		return user.ListUserResponse{}, err
	}

	users, total, err := s.UserRepository.List(ctx, filter)
	if err != nil {
		return user.ListUserResponse{}, fmt.Errorf("failed to list users: %w", err)
	}

	responses := make([]user.UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, mapUserToResponse(u))
	}

	return user.ListUserResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Users:      responses,
	}, nil
}

// Get implements user.UserService.
func (s *UserServiceImpl) Get(ctx context.Context, kind user.Kind, id string) (user.UserResponse, error) {
	u, err := s.find(ctx, kind, id)
	if err != nil {
		return user.UserResponse{}, err
	}
	return s.withPhotos(ctx, u)
}

// Create implements user.UserService. A user account is created together
// with its reference photos after every photo passed the face check.
func (s *UserServiceImpl) Create(ctx context.Context, req user.CreateUserRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	exists, err := s.UserRepository.ExistsByEmail(ctx, req.Email, "")
	if err != nil {
		return user.UserResponse{}, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return user.UserResponse{}, emailTaken()
	}

	role := user.RoleUser
	if req.Kind == user.KindAdmin {
		role = user.Role(req.Role)
	}

	if req.Kind == user.KindUser {
		if err := s.photos.CheckFaces(ctx, req.Photos); err != nil {
			return user.UserResponse{}, err
		}
	}

	passwordHash, err := hashPassword(req.Password)
	if err != nil {
		return user.UserResponse{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return user.UserResponse{}, fmt.Errorf("failed to generate user id: %w", err)
	}

	var stored []media.Media
	if req.Kind == user.KindUser {
		stored, err = s.media.Store(ctx, media.OwnerUser, id.String(), media.CollectionFaceReference, req.Photos)
		if err != nil {
			return user.UserResponse{}, fmt.Errorf("failed to store reference photos: %w", err)
		}
	}

	var created user.User
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		created, err = s.UserRepository.Create(txCtx, user.User{
			ID:           id.String(),
			Name:         req.Name,
			Email:        req.Email,
			PasswordHash: passwordHash,
			Role:         role,
		})
		if err != nil {
			return err
		}
		return s.media.Attach(txCtx, stored)
	})
	if err != nil {
		s.media.Discard(ctx, stored)
		if errors.Is(err, user.ErrUserEmailExists) {
			return user.UserResponse{}, emailTaken()
		}
		return user.UserResponse{}, fmt.Errorf("failed to create user: %w", err)
	}

	return s.withPhotos(ctx, created)
}

// Update implements user.UserService.
func (s *UserServiceImpl) Update(ctx context.Context, req user.UpdateUserRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	existing, err := s.find(ctx, req.Kind, req.ID)
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
	if req.Kind == user.KindAdmin {
		existing.Role = user.Role(req.Role)
	}

	var passwordHash string
	if req.Password != "" {
		if passwordHash, err = hashPassword(req.Password); err != nil {
			return user.UserResponse{}, err
		}
	}

	var updated user.User
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		if updated, err = s.UserRepository.Update(txCtx, existing); err != nil {
			return err
		}
		if passwordHash != "" {
			return s.UserRepository.UpdatePassword(txCtx, existing.ID, passwordHash)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, user.ErrUserEmailExists) {
			return user.UserResponse{}, emailTaken()
		}
		if errors.Is(err, user.ErrUserNotFound) {
			return user.UserResponse{}, err
		}
		return user.UserResponse{}, fmt.Errorf("failed to update user: %w", err)
	}

	return s.withPhotos(ctx, updated)
}

// Delete implements user.UserService. Attendances go with the account and
// every stored photo is removed after the deletion commits.
func (s *UserServiceImpl) Delete(ctx context.Context, kind user.Kind, id string, actorID string) error {
	if id == actorID {
		return user.ErrCannotDeleteSelf
	}
	if _, err := s.find(ctx, kind, id); err != nil {
		return err
	}
	return s.remove(ctx, id)
}

func (s *UserServiceImpl) remove(ctx context.Context, id string) error {
	var detached []media.Media
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		if detached, err = s.media.DetachOwner(txCtx, media.OwnerUser, id); err != nil {
			return err
		}
		return s.UserRepository.Delete(txCtx, id)
	})
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.media.Discard(ctx, detached)
	return nil
}

// ResetPassword implements user.UserService.
func (s *UserServiceImpl) ResetPassword(ctx context.Context, req user.ResetPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if _, err := s.find(ctx, req.Kind, req.ID); err != nil {
		return err
	}

	passwordHash, err := hashPassword(req.Password)
	if err != nil {
		return err
	}
	return s.UserRepository.UpdatePassword(ctx, req.ID, passwordHash)
}

func (s *UserServiceImpl) withPhotos(ctx context.Context, u user.User) (user.UserResponse, error) {
	resp := mapUserToResponse(u)
	resp.Permissions = user.PermissionsForRole(u.Role)
	if u.IsAdmin() {
		return resp, nil
	}

	references, err := s.media.List(ctx, media.OwnerUser, u.ID, media.CollectionFaceReference)
	if err != nil {
		return user.UserResponse{}, fmt.Errorf("failed to load reference photos: %w", err)
	}
	for _, m := range references {
		url, err := s.media.URL(ctx, m, photoURLExpiry)
		if err != nil {
			return user.UserResponse{}, fmt.Errorf("failed to get photo url: %w", err)
		}
		resp.PhotoURLs = append(resp.PhotoURLs, url)
	}
	return resp, nil
}

func mapUserToResponse(u user.User) user.UserResponse {
	return user.UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt: u.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}
