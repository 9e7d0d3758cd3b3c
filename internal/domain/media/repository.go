package media

import "context"

type MediaRepository interface {
	// ListByOwner returns the collection ordered by position.
	ListByOwner(ctx context.Context, ownerType OwnerType, ownerID string, collection Collection) ([]Media, error)
	ListByOwners(ctx context.Context, ownerType OwnerType, ownerIDs []string) ([]Media, error)
	CountByOwner(ctx context.Context, ownerType OwnerType, ownerID string, collection Collection) (int, error)
	Create(ctx context.Context, m Media) (Media, error)
	DeleteByIDs(ctx context.Context, ids []string) error
	DeleteByOwner(ctx context.Context, ownerType OwnerType, ownerID string) ([]Media, error)
}
