package user

import "context"

type UserService interface {
	List(ctx context.Context, filter UserFilter) (ListUserResponse, error)
	Get(ctx context.Context, kind Kind, id string) (UserResponse, error)
	Create(ctx context.Context, req CreateUserRequest) (UserResponse, error)
	Update(ctx context.Context, req UpdateUserRequest) (UserResponse, error)
	Delete(ctx context.Context, kind Kind, id string, actorID string) error
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error

	UpdateProfile(ctx context.Context, req UpdateProfileRequest) (UserResponse, error)
	ChangePassword(ctx context.Context, req ChangePasswordRequest) error
	DeleteAccount(ctx context.Context, req DeleteAccountRequest) error
}
