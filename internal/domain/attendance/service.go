package attendance

import (
	"context"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// Submit checks the caller in, or out when AttendanceID is set, after the
	// probe photo matches the caller's reference photos
	Submit(ctx context.Context, req SubmitAttendanceRequest) (AttendanceResponse, error)

	// Current returns the caller's open record, nil when checked out
	Current(ctx context.Context, userID string) (*AttendanceResponse, error)

	// ListMyAttendance retrieves the caller's own records
	ListMyAttendance(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)

	// ListAttendance retrieves records of all users (supervisors)
	ListAttendance(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)

	// GetAttendance retrieves a single record with photo URLs
	GetAttendance(ctx context.Context, id string) (AttendanceResponse, error)

	// CreateSupervised records a closed attendance with both photos on behalf of a user
	CreateSupervised(ctx context.Context, req CreateSupervisedAttendanceRequest) (AttendanceResponse, error)

	// Validate compares stored event photos with the owner's references and
	// attaches the resulting distances
	Validate(ctx context.Context, id string) (ValidateAttendanceResponse, error)
}
