package media

import (
	"context"
	"io"
	"time"
)

type MediaService interface {
	// Store uploads blobs for owner without recording them. The returned rows
	// must be passed to Attach, or to Discard when the caller gives up.
	Store(ctx context.Context, ownerType OwnerType, ownerID string, collection Collection, uploads []Upload) ([]Media, error)
	Attach(ctx context.Context, items []Media) error
	Discard(ctx context.Context, items []Media)

	// ReplaceCollection stores uploads as owner's collection and removes the
	// previous set only after the new one is recorded.
	ReplaceCollection(ctx context.Context, ownerType OwnerType, ownerID string, collection Collection, uploads []Upload) ([]Media, error)
	// DetachOwner deletes every row owned by owner, including the photos of a
	// user's attendances, and returns them so the caller can Discard the
	// blobs once its transaction commits.
	DetachOwner(ctx context.Context, ownerType OwnerType, ownerID string) ([]Media, error)

	List(ctx context.Context, ownerType OwnerType, ownerID string, collection Collection) ([]Media, error)
	ListByOwners(ctx context.Context, ownerType OwnerType, ownerIDs []string) ([]Media, error)
	Count(ctx context.Context, ownerType OwnerType, ownerID string, collection Collection) (int, error)
	Open(ctx context.Context, m Media) (io.ReadCloser, error)
	URL(ctx context.Context, m Media, expiry time.Duration) (string, error)
}
