package postgresql

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/presensi-app/attendance-backend-go/internal/domain/media"
	"github.com/presensi-app/attendance-backend-go/internal/pkg/database"
)

type mediaRepositoryImpl struct {
	db *database.DB
}

func NewMediaRepository(db *database.DB) media.MediaRepository {
	return &mediaRepositoryImpl{db: db}
}

const mediaColumns = `id, owner_type, owner_id, collection, path, file_name, content_type, size, position, created_at`

func scanMedia(row pgx.Row) (media.Media, error) {
	var m media.Media
	err := row.Scan(
		&m.ID, &m.OwnerType, &m.OwnerID, &m.Collection,
		&m.Path, &m.FileName, &m.ContentType, &m.Size, &m.Position,
		&m.CreatedAt,
	)
	return m, err
}

func collectMedia(rows pgx.Rows) ([]media.Media, error) {
	defer rows.Close()

	var items []media.Media
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan media: %w", err)
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate media: %w", err)
	}
	return items, nil
}

// ListByOwner implements media.MediaRepository.
func (r *mediaRepositoryImpl) ListByOwner(ctx context.Context, ownerType media.OwnerType, ownerID string, collection media.Collection) ([]media.Media, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + mediaColumns + `
		FROM media
		WHERE owner_type = $1 AND owner_id = $2 AND collection = $3
		ORDER BY position ASC, created_at ASC
	`
	rows, err := q.Query(ctx, query, ownerType, ownerID, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to query media: %w", err)
	}
	return collectMedia(rows)
}

// ListByOwners implements media.MediaRepository.
func (r *mediaRepositoryImpl) ListByOwners(ctx context.Context, ownerType media.OwnerType, ownerIDs []string) ([]media.Media, error) {
	if len(ownerIDs) == 0 {
		return nil, nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + mediaColumns + `
		FROM media
		WHERE owner_type = $1 AND owner_id = ANY($2)
		ORDER BY owner_id, collection, position ASC
	`
	rows, err := q.Query(ctx, query, ownerType, ownerIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query media: %w", err)
	}
	return collectMedia(rows)
}

// CountByOwner implements media.MediaRepository.
func (r *mediaRepositoryImpl) CountByOwner(ctx context.Context, ownerType media.OwnerType, ownerID string, collection media.Collection) (int, error) {
	q := GetQuerier(ctx, r.db)

	var count int
	query := `SELECT COUNT(*) FROM media WHERE owner_type = $1 AND owner_id = $2 AND collection = $3`
	if err := q.QueryRow(ctx, query, ownerType, ownerID, collection).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count media: %w", err)
	}
	return count, nil
}

// Create implements media.MediaRepository.
func (r *mediaRepositoryImpl) Create(ctx context.Context, m media.Media) (media.Media, error) {
	q := GetQuerier(ctx, r.db)

	if m.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return media.Media{}, fmt.Errorf("failed to generate media id: %w", err)
		}
		m.ID = id.String()
	}

	query := `
		INSERT INTO media (id, owner_type, owner_id, collection, path, file_name, content_type, size, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + mediaColumns

	created, err := scanMedia(q.QueryRow(ctx, query,
		m.ID, m.OwnerType, m.OwnerID, m.Collection,
		m.Path, m.FileName, m.ContentType, m.Size, m.Position,
	))
	if err != nil {
		return media.Media{}, fmt.Errorf("failed to create media: %w", err)
	}
	return created, nil
}

// DeleteByIDs implements media.MediaRepository.
func (r *mediaRepositoryImpl) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM media WHERE id = ANY($1)`, ids); err != nil {
		return fmt.Errorf("failed to delete media: %w", err)
	}
	return nil
}

// DeleteByOwner implements media.MediaRepository. Deleting a user also
// drops the photos of that user's attendances.
func (r *mediaRepositoryImpl) DeleteByOwner(ctx context.Context, ownerType media.OwnerType, ownerID string) ([]media.Media, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		DELETE FROM media
		WHERE (owner_type = $1 AND owner_id = $2)
		   OR ($1 = 'user' AND owner_type = 'attendance'
		       AND owner_id IN (SELECT id FROM attendances WHERE user_id = $2))
		RETURNING ` + mediaColumns

	rows, err := q.Query(ctx, query, ownerType, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete media: %w", err)
	}
	return collectMedia(rows)
}
