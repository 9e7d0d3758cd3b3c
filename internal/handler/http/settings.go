package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/presensi-app/attendance-backend-go/internal/domain/auth"
	"github.com/presensi-app/attendance-backend-go/internal/domain/photo"
	"github.com/presensi-app/attendance-backend-go/internal/domain/user"
	"github.com/presensi-app/attendance-backend-go/internal/handler/http/middleware"
	"github.com/presensi-app/attendance-backend-go/internal/handler/http/response"
)

// SettingsHandler lets any signed-in account manage its own profile and
// password, and a user manage their own reference photos.
type SettingsHandler interface {
	UpdateProfile(w http.ResponseWriter, r *http.Request)
	DeleteProfile(w http.ResponseWriter, r *http.Request)
	ChangePassword(w http.ResponseWriter, r *http.Request)
	ListPhotos(w http.ResponseWriter, r *http.Request)
	ReplacePhotos(w http.ResponseWriter, r *http.Request)
}

type settingsHandlerImpl struct {
	userService  user.UserService
	photoService photo.PhotoService
}

func NewSettingsHandler(userService user.UserService, photoService photo.PhotoService) SettingsHandler {
	return &settingsHandlerImpl{userService: userService, photoService: photoService}
}

// currentActor needs no capability, only a resolved account.
func currentActor(w http.ResponseWriter, r *http.Request) (*user.Actor, bool) {
	actor := middleware.ActorFromContext(r.Context())
	if actor == nil {
		response.HandleError(w, auth.ErrInvalidToken)
		return nil, false
	}
	return actor, true
}

// UpdateProfile implements SettingsHandler.
func (h *settingsHandlerImpl) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	var req user.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Update profile decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.UserID = actor.UserID

	result, err := h.userService.UpdateProfile(r.Context(), req)
	if err != nil {
		slog.Error("Update profile service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Profile updated successfully", result)
}

// DeleteProfile implements SettingsHandler.
func (h *settingsHandlerImpl) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	var req user.DeleteAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Delete profile decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.UserID = actor.UserID

	if err := h.userService.DeleteAccount(r.Context(), req); err != nil {
		slog.Error("Delete profile service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Account deleted successfully", nil)
}

// ChangePassword implements SettingsHandler.
func (h *settingsHandlerImpl) ChangePassword(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	var req user.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Change password decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.UserID = actor.UserID

	if err := h.userService.ChangePassword(r.Context(), req); err != nil {
		slog.Error("Change password service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Password updated successfully", nil)
}

// Reference photos only matter to accounts that check in themselves.
const ownPhotosPermission = user.PermissionAddAttendance

// ListPhotos implements SettingsHandler.
func (h *settingsHandlerImpl) ListPhotos(w http.ResponseWriter, r *http.Request) {
	actor, ok := authorize(w, r, ownPhotosPermission)
	if !ok {
		return
	}

	photos, err := h.photoService.ListReferencePhotos(r.Context(), actor.UserID)
	if err != nil {
		slog.Error("List photos service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, photos)
}

// ReplacePhotos implements SettingsHandler.
func (h *settingsHandlerImpl) ReplacePhotos(w http.ResponseWriter, r *http.Request) {
	actor, ok := authorize(w, r, ownPhotosPermission)
	if !ok {
		return
	}

	replaceReferencePhotos(w, r, h.photoService, actor.UserID)
}

func replaceReferencePhotos(w http.ResponseWriter, r *http.Request, photoService photo.PhotoService, userID string) {
	if err := parseMultipart(w, r); err != nil {
		slog.Error("Failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return
	}

	photos, err := formUploads(r, "photos")
	if err != nil {
		slog.Error("Failed to read photos", "error", err)
		response.BadRequest(w, "Invalid file upload", nil)
		return
	}

	result, err := photoService.ReplaceReferencePhotos(r.Context(), userID, photos)
	if err != nil {
		slog.Error("Replace photos service error", "error", err, "user_id", userID)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Photos updated successfully", result)
}
