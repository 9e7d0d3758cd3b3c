package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/presensi-app/attendance-backend-go/internal/domain/attendance"
	"github.com/presensi-app/attendance-backend-go/internal/domain/auth"
	"github.com/presensi-app/attendance-backend-go/internal/domain/photo"
	"github.com/presensi-app/attendance-backend-go/internal/domain/user"
	"github.com/presensi-app/attendance-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		code     string
		detailKV [2]string
	}{
		{"validation errors", validator.ValidationErrors{{Field: "email", Message: "email is required"}}, http.StatusUnprocessableEntity, "VALIDATION_ERROR", [2]string{"email", "email is required"}},
		{"field error", validator.NewFieldError("photo", attendance.NewNotVerifiedError("")), http.StatusUnprocessableEntity, "VALIDATION_ERROR", [2]string{"photo", "Face verification failed."}},
		{"no face detected", &photo.NoFaceDetectedError{Index: 2}, http.StatusUnprocessableEntity, "VALIDATION_ERROR", [2]string{"photos", "Image 3: Failed to detect face. Please resubmit."}},
		{"face service down", fmt.Errorf("verify: %w", attendance.NewServiceError("")), http.StatusBadGateway, "FACE_SERVICE_ERROR", [2]string{}},
		{"not verified", attendance.NewNotVerifiedError("Beda orang."), http.StatusUnprocessableEntity, "VALIDATION_ERROR", [2]string{"photo", "Beda orang."}},
		{"forbidden", user.ErrInsufficientPermissions, http.StatusForbidden, "FORBIDDEN", [2]string{}},
		{"bad credentials", auth.ErrInvalidCredentials, http.StatusUnauthorized, "UNAUTHORIZED", [2]string{}},
		{"attendance not found", fmt.Errorf("get: %w", attendance.ErrAttendanceNotFound), http.StatusNotFound, "NOT_FOUND", [2]string{}},
		{"already checked in", attendance.ErrAlreadyCheckedIn, http.StatusConflict, "CONFLICT", [2]string{}},
		{"missing photo", attendance.ErrMissingPhoto, http.StatusUnprocessableEntity, "VALIDATION_ERROR", [2]string{"error", attendance.ErrMissingPhoto.Error()}},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", [2]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)

			var body Response
			assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			if assert.NotNil(t, body.Error) {
				assert.Equal(t, tt.code, body.Error.Code)
				if tt.detailKV[0] != "" {
					assert.Equal(t, tt.detailKV[1], body.Error.Details[tt.detailKV[0]])
				}
			}
		})
	}
}

func TestFaceServiceUnavailable(t *testing.T) {
	rec := httptest.NewRecorder()
	FaceServiceUnavailable(rec, "")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	var body Response
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	if assert.NotNil(t, body.Error) {
		assert.Equal(t, "FACE_SERVICE_ERROR", body.Error.Code)
		assert.Equal(t, attendance.FallbackServiceMessage, body.Error.Message)
	}

	rec = httptest.NewRecorder()
	FaceServiceUnavailable(rec, "model offline")
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "model offline", body.Error.Message)
}

func TestPhotoRejected(t *testing.T) {
	rec := httptest.NewRecorder()
	PhotoRejected(rec, "photo", "Face verification failed.")

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body Response
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	if assert.NotNil(t, body.Error) {
		assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
		assert.Equal(t, map[string]string{"photo": "Face verification failed."}, body.Error.Details)
	}
}
