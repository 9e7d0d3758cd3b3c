package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access methods for attendance records.
type AttendanceRepository interface {
	// Create inserts a record. A second open record for the same user is
	// rejected with ErrAlreadyCheckedIn.
	Create(ctx context.Context, attendance Attendance) (Attendance, error)

	// GetByID retrieves attendance by ID joined with its user
	GetByID(ctx context.Context, id string) (Attendance, error)

	// GetOpenByUserID returns the user's open record, or nil when there is none
	GetOpenByUserID(ctx context.Context, userID string) (*Attendance, error)

	// Close sets check_out on an open record owned by userID
	Close(ctx context.Context, id string, userID string, checkOut time.Time) (Attendance, error)

	// UpdateDistances writes the non-nil distances and leaves the others unchanged
	UpdateDistances(ctx context.Context, id string, checkIn *float64, checkOut *float64) (Attendance, error)

	// List retrieves attendance records with filters and pagination
	List(ctx context.Context, filter AttendanceFilter) ([]Attendance, int64, error)
}
