package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/presensi-app/attendance-backend-go/internal/domain/user"
	"github.com/presensi-app/attendance-backend-go/internal/pkg/database"
)

const usersEmailKey = "users_email_key"

type userRepositoryImpl struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) user.UserRepository {
	return &userRepositoryImpl{db: db}
}

const userColumns = `id, name, email, password_hash, role, created_at, updated_at`

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

// GetByEmail implements user.UserRepository.
func (r *userRepositoryImpl) GetByEmail(ctx context.Context, email string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	u, err := scanUser(q.QueryRow(ctx, query, strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}
	return u, nil
}

// GetByID implements user.UserRepository.
func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}
	return u, nil
}

// List implements user.UserRepository.
func (r *userRepositoryImpl) List(ctx context.Context, filter user.UserFilter) ([]user.User, int64, error) {
	q := GetQuerier(ctx, r.db)

	roles := make([]string, 0, 2)
	for _, role := range filter.Kind.Roles() {
		roles = append(roles, string(role))
	}

	baseWhere := "role = ANY($1)"
	args := []interface{}{roles}
	argIdx := 2

	if search := strings.TrimSpace(filter.Search); search != "" {
		baseWhere += fmt.Sprintf(" AND (name ILIKE $%d OR email ILIKE $%d)", argIdx, argIdx)
		args = append(args, "%"+search+"%")
		argIdx++
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE `+baseWhere, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, userColumns, baseWhere, argIdx, argIdx+1)

	offset := (filter.Page - 1) * filter.Limit
	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, total, nil
}

// Create implements user.UserRepository.
func (r *userRepositoryImpl) Create(ctx context.Context, newUser user.User) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	if newUser.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return user.User{}, fmt.Errorf("failed to generate user id: %w", err)
		}
		newUser.ID = id.String()
	}

	query := `
		INSERT INTO users (id, name, email, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns

	created, err := scanUser(q.QueryRow(ctx, query,
		newUser.ID,
		strings.TrimSpace(newUser.Name),
		strings.ToLower(strings.TrimSpace(newUser.Email)),
		newUser.PasswordHash,
		newUser.Role,
	))
	if err != nil {
		if database.IsUniqueViolation(err, usersEmailKey) {
			return user.User{}, user.ErrUserEmailExists
		}
		return user.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return created, nil
}

// Update implements user.UserRepository.
func (r *userRepositoryImpl) Update(ctx context.Context, u user.User) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE users
		SET name = $1, email = $2, role = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING ` + userColumns

	updated, err := scanUser(q.QueryRow(ctx, query,
		strings.TrimSpace(u.Name),
		strings.ToLower(strings.TrimSpace(u.Email)),
		u.Role,
		u.ID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		if database.IsUniqueViolation(err, usersEmailKey) {
			return user.User{}, user.ErrUserEmailExists
		}
		return user.User{}, fmt.Errorf("failed to update user: %w", err)
	}
	return updated, nil
}

// UpdatePassword implements user.UserRepository.
func (r *userRepositoryImpl) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`, passwordHash, userID)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// Delete implements user.UserRepository. Attendances and refresh tokens
// cascade; media rows are removed by the caller together with their blobs.
func (r *userRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// ExistsByEmail implements user.UserRepository.
func (r *userRepositoryImpl) ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE lower(email) = lower($1) AND ($2 = '' OR id::text <> $2))`
	if err := q.QueryRow(ctx, query, strings.TrimSpace(email), excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}
