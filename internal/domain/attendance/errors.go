package attendance

import "errors"

// Attendance domain errors
var (
	// Self-service check-in/out
	ErrNoReferencePhoto  = errors.New("user has not added any photos yet")
	ErrFaceService       = errors.New("face recognition service error")
	ErrFaceNotVerified   = errors.New("face not verified")
	ErrAlreadyCheckedIn  = errors.New("you already have an open attendance, check out first")
	ErrAlreadyCheckedOut = errors.New("you have already checked out")
	ErrCheckInInProgress = errors.New("another attendance submission is in progress, please retry")
	ErrPhotoUnreadable   = errors.New("photo could not be read")

	// Retro-validation
	ErrNoReference  = errors.New("no face reference found for this user")
	ErrMissingPhoto = errors.New("check-in or check-out photo not found")

	// General errors
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrInvalidTimeRange   = errors.New("check_out must be after check_in")
)

const (
	// Fallback messages when the face service gives no detail.
	FallbackServiceMessage     = "Failed to detect face."
	FallbackNotVerifiedMessage = "Face verification failed."

	// Retro-validation result when the service verifies but sends no distance.
	NoDistanceMessage = "Face service returned no distance."
)

// FaceMatchError carries the message shown to the user for a face-service
// outcome. Kind is ErrFaceService or ErrFaceNotVerified.
type FaceMatchError struct {
	Kind    error
	Message string
}

func (e *FaceMatchError) Error() string {
	return e.Message
}

func (e *FaceMatchError) Unwrap() error {
	return e.Kind
}

// NewServiceError prefers the service's detail over the generic fallback.
func NewServiceError(detail string) *FaceMatchError {
	if detail == "" {
		detail = FallbackServiceMessage
	}
	return &FaceMatchError{Kind: ErrFaceService, Message: detail}
}

func NewNotVerifiedError(detail string) *FaceMatchError {
	if detail == "" {
		detail = FallbackNotVerifiedMessage
	}
	return &FaceMatchError{Kind: ErrFaceNotVerified, Message: detail}
}
