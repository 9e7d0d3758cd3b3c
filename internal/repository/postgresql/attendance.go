package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/presensi-app/attendance-backend-go/internal/domain/attendance"
	"github.com/presensi-app/attendance-backend-go/internal/pkg/database"
)

// oneOpenPerUserIndex is the partial unique index on attendances(user_id) WHERE check_out IS NULL.
const oneOpenPerUserIndex = "attendances_one_open_per_user"

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

const attendanceColumns = `
	a.id, a.user_id, a.date, a.check_in, a.check_out,
	a.check_in_photo_distance, a.check_out_photo_distance,
	a.created_at, a.updated_at`

func scanAttendance(row pgx.Row, withUser bool) (attendance.Attendance, error) {
	var att attendance.Attendance
	dest := []interface{}{
		&att.ID, &att.UserID, &att.Date, &att.CheckIn, &att.CheckOut,
		&att.CheckInPhotoDistance, &att.CheckOutPhotoDistance,
		&att.CreatedAt, &att.UpdatedAt,
	}
	if withUser {
		dest = append(dest, &att.UserName, &att.UserEmail)
	}
	err := row.Scan(dest...)
	return att, err
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, newAttendance attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	if newAttendance.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return attendance.Attendance{}, fmt.Errorf("failed to generate attendance id: %w", err)
		}
		newAttendance.ID = id.String()
	}

	query := `
		INSERT INTO attendances AS a (
			id, user_id, date, check_in, check_out,
			check_in_photo_distance, check_out_photo_distance
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		) RETURNING ` + attendanceColumns

	created, err := scanAttendance(q.QueryRow(ctx, query,
		newAttendance.ID,
		newAttendance.UserID,
		newAttendance.Date,
		newAttendance.CheckIn,
		newAttendance.CheckOut,
		newAttendance.CheckInPhotoDistance,
		newAttendance.CheckOutPhotoDistance,
	), false)
	if err != nil {
		if database.IsUniqueViolation(err, oneOpenPerUserIndex) {
			return attendance.Attendance{}, attendance.ErrAlreadyCheckedIn
		}
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	return created, nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `, u.name, u.email
		FROM attendances a
		JOIN users u ON u.id = a.user_id
		WHERE a.id = $1
	`
	att, err := scanAttendance(q.QueryRow(ctx, query, id), true)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance: %w", err)
	}
	return att, nil
}

// GetOpenByUserID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetOpenByUserID(ctx context.Context, userID string) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances a
		WHERE a.user_id = $1
		  AND a.check_out IS NULL
		ORDER BY a.check_in DESC
		LIMIT 1
	`
	att, err := scanAttendance(q.QueryRow(ctx, query, userID), false)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get open attendance: %w", err)
	}
	return &att, nil
}

// Close implements attendance.AttendanceRepository. The row is locked so a
// concurrent check-out of the same record waits and then sees it closed.
func (a *attendanceRepository) Close(ctx context.Context, id string, userID string, checkOut time.Time) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	var closedAt *time.Time
	err := q.QueryRow(ctx, `SELECT check_out FROM attendances WHERE id = $1 AND user_id = $2 FOR UPDATE`, id, userID).Scan(&closedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to lock attendance: %w", err)
	}
	if closedAt != nil {
		return attendance.Attendance{}, attendance.ErrAlreadyCheckedOut
	}

	query := `
		UPDATE attendances AS a
		SET check_out = $1, updated_at = NOW()
		WHERE a.id = $2 AND a.check_out IS NULL
		RETURNING ` + attendanceColumns

	updated, err := scanAttendance(q.QueryRow(ctx, query, checkOut, id), false)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAlreadyCheckedOut
		}
		return attendance.Attendance{}, fmt.Errorf("failed to close attendance: %w", err)
	}
	return updated, nil
}

// UpdateDistances implements attendance.AttendanceRepository.
func (a *attendanceRepository) UpdateDistances(ctx context.Context, id string, checkIn *float64, checkOut *float64) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendances AS a
		SET check_in_photo_distance = COALESCE($1, a.check_in_photo_distance),
		    check_out_photo_distance = COALESCE($2, a.check_out_photo_distance),
		    updated_at = NOW()
		WHERE a.id = $3
		RETURNING ` + attendanceColumns

	updated, err := scanAttendance(q.QueryRow(ctx, query, checkIn, checkOut, id), false)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to update distances: %w", err)
	}
	return updated, nil
}

// List implements attendance.AttendanceRepository.
func (a *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	q := GetQuerier(ctx, a.db)

	// Build WHERE clause
	baseWhere := "TRUE"
	args := []interface{}{}
	argIdx := 1

	// User ID filter
	if filter.UserID != nil && *filter.UserID != "" {
		baseWhere += fmt.Sprintf(" AND a.user_id = $%d", argIdx)
		args = append(args, *filter.UserID)
		argIdx++
	}

	// Time range filters on check_in
	if filter.SinceTime != nil {
		baseWhere += fmt.Sprintf(" AND a.check_in >= $%d", argIdx)
		args = append(args, *filter.SinceTime)
		argIdx++
	}
	if filter.UntilTime != nil {
		baseWhere += fmt.Sprintf(" AND a.check_in <= $%d", argIdx)
		args = append(args, *filter.UntilTime)
		argIdx++
	}

	countQuery := `SELECT COUNT(*) FROM attendances a WHERE ` + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendances: %w", err)
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s, u.name, u.email
		FROM attendances a
		JOIN users u ON u.id = a.user_id
		WHERE %s
		ORDER BY a.created_at DESC, a.id DESC
		LIMIT $%d OFFSET $%d
	`, attendanceColumns, baseWhere, argIdx, argIdx+1)

	limit := filter.Limit
	if limit == 0 {
		limit = 15
	}
	offset := (filter.Page - 1) * limit
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query attendances: %w", err)
	}
	defer rows.Close()

	var attendances []attendance.Attendance
	for rows.Next() {
		att, err := scanAttendance(rows, true)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance: %w", err)
		}
		attendances = append(attendances, att)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate attendances: %w", err)
	}

	return attendances, total, nil
}
