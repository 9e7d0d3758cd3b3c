package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/presensi-app/attendance-backend-go/internal/domain/photo"
	"github.com/presensi-app/attendance-backend-go/internal/domain/user"
	"github.com/presensi-app/attendance-backend-go/internal/handler/http/response"
)

type UserHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	ResetPassword(w http.ResponseWriter, r *http.Request)
	ReplacePhotos(w http.ResponseWriter, r *http.Request)
}

// kindPermissions are the capabilities guarding one account surface.
type kindPermissions struct {
	browse, read, add, edit, remove user.Permission
}

type userHandlerImpl struct {
	kind         user.Kind
	permissions  kindPermissions
	userService  user.UserService
	photoService photo.PhotoService
}

// NewUserHandler manages accounts with role user, including their reference photos.
func NewUserHandler(userService user.UserService, photoService photo.PhotoService) UserHandler {
	return &userHandlerImpl{
		kind: user.KindUser,
		permissions: kindPermissions{
			browse: user.PermissionBrowseUsers,
			read:   user.PermissionReadUser,
			add:    user.PermissionAddUser,
			edit:   user.PermissionEditUser,
			remove: user.PermissionDeleteUser,
		},
		userService:  userService,
		photoService: photoService,
	}
}

// NewAdminHandler manages admin and super_admin accounts.
func NewAdminHandler(userService user.UserService) UserHandler {
	return &userHandlerImpl{
		kind: user.KindAdmin,
		permissions: kindPermissions{
			browse: user.PermissionBrowseAdmins,
			read:   user.PermissionReadAdmin,
			add:    user.PermissionAddAdmin,
			edit:   user.PermissionEditAdmin,
			remove: user.PermissionDeleteAdmin,
		},
		userService: userService,
	}
}

// List implements UserHandler.
func (h *userHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	if _, ok := authorize(w, r, h.permissions.browse); !ok {
		return
	}

	filter := user.UserFilter{
		Kind:   h.kind,
		Search: r.URL.Query().Get("search"),
		Page:   queryInt(r, "page"),
		Limit:  queryInt(r, "limit"),
	}

	results, err := h.userService.List(r.Context(), filter)
	if err != nil {
		slog.Error("List users service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, results.Users, &response.Meta{
		Page:       results.Page,
		Limit:      results.Limit,
		TotalItems: results.TotalCount,
		TotalPages: results.TotalPages,
	})
}

// Get implements UserHandler.
func (h *userHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	if _, ok := authorize(w, r, h.permissions.read); !ok {
		return
	}

	result, err := h.userService.Get(r.Context(), h.kind, chi.URLParam(r, "id"))
	if err != nil {
		slog.Error("Get user service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Create implements UserHandler. Users are created from a multipart form so the
// initial reference photos arrive with the account; admins may post JSON.
func (h *userHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	if _, ok := authorize(w, r, h.permissions.add); !ok {
		return
	}

	req := user.CreateUserRequest{Kind: h.kind}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := parseMultipart(w, r); err != nil {
			slog.Error("Failed to parse multipart form", "error", err)
			response.BadRequest(w, "Failed to parse form data", nil)
			return
		}
		req.Name = r.FormValue("name")
		req.Email = r.FormValue("email")
		req.Password = r.FormValue("password")
		req.PasswordConfirmation = r.FormValue("password_confirmation")
		req.Role = r.FormValue("role")

		photos, err := formUploads(r, "photos")
		if err != nil {
			slog.Error("Failed to read photos", "error", err)
			response.BadRequest(w, "Invalid file upload", nil)
			return
		}
		req.Photos = photos
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Create user decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.Kind = h.kind

	result, err := h.userService.Create(r.Context(), req)
	if err != nil {
		slog.Error("Create user service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "User created successfully", result)
}

// Update implements UserHandler.
func (h *userHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	if _, ok := authorize(w, r, h.permissions.edit); !ok {
		return
	}

	var req user.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Update user decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.Kind = h.kind
	req.ID = chi.URLParam(r, "id")

	result, err := h.userService.Update(r.Context(), req)
	if err != nil {
		slog.Error("Update user service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "User updated successfully", result)
}

// Delete implements UserHandler.
func (h *userHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := authorize(w, r, h.permissions.remove)
	if !ok {
		return
	}

	if err := h.userService.Delete(r.Context(), h.kind, chi.URLParam(r, "id"), actor.UserID); err != nil {
		slog.Error("Delete user service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "User deleted successfully", nil)
}

// ResetPassword implements UserHandler.
func (h *userHandlerImpl) ResetPassword(w http.ResponseWriter, r *http.Request) {
	if _, ok := authorize(w, r, h.permissions.edit); !ok {
		return
	}

	var req user.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Reset password decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.Kind = h.kind
	req.ID = chi.URLParam(r, "id")

	if err := h.userService.ResetPassword(r.Context(), req); err != nil {
		slog.Error("Reset password service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Password has been reset successfully", nil)
}

// ReplacePhotos implements UserHandler.
func (h *userHandlerImpl) ReplacePhotos(w http.ResponseWriter, r *http.Request) {
	if _, ok := authorize(w, r, h.permissions.edit); !ok {
		return
	}
	if h.photoService == nil {
		response.NotFound(w, "User not found")
		return
	}

	id := chi.URLParam(r, "id")
	if _, err := h.userService.Get(r.Context(), h.kind, id); err != nil {
		response.HandleError(w, err)
		return
	}

	replaceReferencePhotos(w, r, h.photoService, id)
}
