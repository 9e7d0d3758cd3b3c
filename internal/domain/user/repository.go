package user

import (
	"context"
)

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	List(ctx context.Context, filter UserFilter) ([]User, int64, error)
	Create(ctx context.Context, newUser User) (User, error)
	Update(ctx context.Context, u User) (User, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	Delete(ctx context.Context, id string) error
	ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error)
}
