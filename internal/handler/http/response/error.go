package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/presensi-app/attendance-backend-go/internal/domain/attendance"
	"github.com/presensi-app/attendance-backend-go/internal/domain/auth"
	"github.com/presensi-app/attendance-backend-go/internal/domain/media"
	"github.com/presensi-app/attendance-backend-go/internal/domain/photo"
	"github.com/presensi-app/attendance-backend-go/internal/domain/user"
	"github.com/presensi-app/attendance-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Workflow failures pinned to a form field
	var fieldErr *validator.FieldError
	if errors.As(err, &fieldErr) {
		PhotoRejected(w, fieldErr.Field, fieldErr.Message)
		return
	}

	var noFace *photo.NoFaceDetectedError
	if errors.As(err, &noFace) {
		PhotoRejected(w, "photos", noFace.Error())
		return
	}

	var faceErr *attendance.FaceMatchError
	if errors.As(err, &faceErr) {
		if errors.Is(faceErr.Kind, attendance.ErrFaceService) {
			FaceServiceUnavailable(w, faceErr.Message)
			return
		}
		PhotoRejected(w, "photo", faceErr.Message)
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrRefreshTokenRevoked):
		Unauthorized(w, "Refresh token revoked")
	case errors.Is(err, auth.ErrUserNotFound):
		NotFound(w, "User not found")

	// User domain errors
	case errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, "You do not have permission to perform this action")
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrUserEmailExists):
		Conflict(w, "Email already registered")
	case errors.Is(err, user.ErrCannotDeleteSelf):
		BadRequest(w, err.Error(), nil)

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance not found")
	case errors.Is(err, attendance.ErrAlreadyCheckedIn),
		errors.Is(err, attendance.ErrAlreadyCheckedOut),
		errors.Is(err, attendance.ErrCheckInInProgress):
		Conflict(w, err.Error())
	case errors.Is(err, attendance.ErrNoReferencePhoto):
		PhotoRejected(w, "photo", err.Error())
	case errors.Is(err, attendance.ErrNoReference),
		errors.Is(err, attendance.ErrMissingPhoto):
		ValidationError(w, map[string]string{"error": err.Error()})

	// Media domain errors
	case errors.Is(err, media.ErrMediaNotFound):
		NotFound(w, "File not found")
	case errors.Is(err, media.ErrEmptyUpload):
		BadRequest(w, err.Error(), nil)

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
