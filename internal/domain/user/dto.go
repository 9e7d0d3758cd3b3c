package user

import (
	"strings"

	"github.com/presensi-app/attendance-backend-go/internal/domain/media"
	"github.com/presensi-app/attendance-backend-go/internal/pkg/validator"
)

const (
	MinReferencePhotos = 1
	MaxReferencePhotos = 3
)

// UserResponse represents user data in API responses
type UserResponse struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Email       string       `json:"email"`
	Role        string       `json:"role"`
	Permissions []Permission `json:"permissions,omitempty"`
	PhotoURLs   []string     `json:"photo_urls,omitempty"`
	CreatedAt   string       `json:"created_at"`
	UpdatedAt   string       `json:"updated_at"`
}

type UserFilter struct {
	Kind   Kind
	Search string `json:"search"`
	Page   int    `json:"page"`
	Limit  int    `json:"limit"`
}

func (f *UserFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Kind != KindUser && f.Kind != KindAdmin {
		errs = append(errs, validator.ValidationError{
			Field:   "kind",
			Message: "invalid kind",
		})
	}
	if len(f.Search) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "search",
			Message: "search must not exceed 255 characters",
		})
	}

	// Page validation
	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be greater than 0",
		})
	}
	if f.Page == 0 {
		f.Page = 1 // Default page
	}

	// Limit validation
	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be greater than 0",
		})
	}
	if f.Limit == 0 {
		f.Limit = 15 // Default limit
	}
	if f.Limit > 100 {
		f.Limit = 100
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ListUserResponse struct {
	TotalCount int64          `json:"total_count"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
	Users      []UserResponse `json:"users"`
}

// CreateUserRequest creates a user (Kind user, with reference photos) or an
// admin account (Kind admin, with a role and no photos).
type CreateUserRequest struct {
	Kind                 Kind           `json:"-"`
	Name                 string         `json:"name"`
	Email                string         `json:"email"`
	Password             string         `json:"password"`
	PasswordConfirmation string         `json:"password_confirmation"`
	Role                 string         `json:"role"`
	Photos               []media.Upload `json:"-"`
}

func (r *CreateUserRequest) Validate() error {
	var errs validator.ValidationErrors

	errs = append(errs, validateIdentity(r.Name, r.Email)...)
	errs = append(errs, validatePassword(r.Password, r.PasswordConfirmation, true)...)

	switch r.Kind {
	case KindUser:
		errs = append(errs, ValidateReferencePhotos(r.Photos)...)
	case KindAdmin:
		errs = append(errs, validateAdminRole(r.Role)...)
	default:
		errs = append(errs, validator.ValidationError{
			Field:   "kind",
			Message: "invalid kind",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UpdateUserRequest represents request to update user
type UpdateUserRequest struct {
	Kind                 Kind   `json:"-"`
	ID                   string `json:"-"`
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
	Role                 string `json:"role"`
}

func (r *UpdateUserRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}
	errs = append(errs, validateIdentity(r.Name, r.Email)...)
	errs = append(errs, validatePassword(r.Password, r.PasswordConfirmation, false)...)
	if r.Kind == KindAdmin {
		errs = append(errs, validateAdminRole(r.Role)...)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ResetPasswordRequest struct {
	Kind                 Kind   `json:"-"`
	ID                   string `json:"-"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

func (r *ResetPasswordRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}
	errs = append(errs, validatePassword(r.Password, r.PasswordConfirmation, true)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UpdateProfileRequest edits the caller's own name and email.
type UpdateProfileRequest struct {
	UserID string `json:"-"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

func (r *UpdateProfileRequest) Validate() error {
	if errs := validateIdentity(r.Name, r.Email); len(errs) > 0 {
		return errs
	}
	return nil
}

type ChangePasswordRequest struct {
	UserID               string `json:"-"`
	CurrentPassword      string `json:"current_password"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

func (r *ChangePasswordRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.CurrentPassword == "" {
		errs = append(errs, validator.ValidationError{
			Field:   "current_password",
			Message: "current password is required",
		})
	}
	errs = append(errs, validatePassword(r.Password, r.PasswordConfirmation, true)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// DeleteAccountRequest removes the caller's own account once the password
// is confirmed.
type DeleteAccountRequest struct {
	UserID   string `json:"-"`
	Password string `json:"password"`
}

func (r *DeleteAccountRequest) Validate() error {
	if r.Password == "" {
		return validator.ValidationErrors{{
			Field:   "password",
			Message: "password is required",
		}}
	}
	return nil
}

// ValidateReferencePhotos checks the count, type and size of a reference set.
func ValidateReferencePhotos(photos []media.Upload) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if len(photos) < MinReferencePhotos {
		errs = append(errs, validator.ValidationError{
			Field:   "photos",
			Message: "at least 1 photo is required",
		})
		return errs
	}
	if len(photos) > MaxReferencePhotos {
		errs = append(errs, validator.ValidationError{
			Field:   "photos",
			Message: "a maximum of 3 photos is allowed",
		})
		return errs
	}

	for i, p := range photos {
		if msg := validator.ValidateImage(p.FileName, int64(len(p.Data)), validator.PhotoRule, "photo"); msg != "" {
			errs = append(errs, validator.ValidationError{
				Field:   "photos." + validator.Itoa(i),
				Message: msg,
			})
		}
	}
	return errs
}

func validateIdentity(name, email string) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if validator.IsEmpty(name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	} else if len(name) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not exceed 255 characters",
		})
	}

	if validator.IsEmpty(email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email is required",
		})
	} else if len(email) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email must not exceed 255 characters",
		})
	} else if !validator.IsValidEmail(strings.TrimSpace(email)) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "invalid email format",
		})
	}
	return errs
}

func validatePassword(password, confirmation string, required bool) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if password == "" {
		if required {
			errs = append(errs, validator.ValidationError{
				Field:   "password",
				Message: "password is required",
			})
		}
		return errs
	}
	if len(password) < 8 {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password must be at least 8 characters",
		})
	} else if len(password) > 72 {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password must not exceed 72 characters",
		})
	}
	if confirmation != password {
		errs = append(errs, validator.ValidationError{
			Field:   "password_confirmation",
			Message: "password confirmation does not match",
		})
	}
	return errs
}

func validateAdminRole(role string) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if validator.IsEmpty(role) {
		errs = append(errs, validator.ValidationError{
			Field:   "role",
			Message: "role is required",
		})
	} else if !validator.IsInSlice(role, []string{string(RoleSuperAdmin), string(RoleAdmin)}) {
		errs = append(errs, validator.ValidationError{
			Field:   "role",
			Message: "invalid role",
		})
	}
	return errs
}
