package attendance

import (
	"time"

	"github.com/presensi-app/attendance-backend-go/internal/domain/media"
	"github.com/presensi-app/attendance-backend-go/internal/pkg/validator"
)

// SubmitAttendanceRequest is a self-service check-in, or a check-out when
// AttendanceID names the caller's open record.
type SubmitAttendanceRequest struct {
	UserID       string       `json:"-"` // From JWT
	AttendanceID *string      `json:"attendance_id,omitempty"`
	Photo        media.Upload `json:"-"`
}

func (r *SubmitAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id is required",
		})
	}

	if r.AttendanceID != nil && !validator.IsEmpty(*r.AttendanceID) && !validator.IsValidUUID(*r.AttendanceID) {
		errs = append(errs, validator.ValidationError{
			Field:   "attendance_id",
			Message: "invalid attendance_id format",
		})
	}

	if msg := validator.ValidateImage(r.Photo.FileName, int64(len(r.Photo.Data)), validator.PhotoRule, "photo"); msg != "" {
		errs = append(errs, validator.ValidationError{
			Field:   "photo",
			Message: msg,
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// IsCheckOut reports whether the submission closes an existing record.
func (r *SubmitAttendanceRequest) IsCheckOut() bool {
	return r.AttendanceID != nil && !validator.IsEmpty(*r.AttendanceID)
}

// CreateSupervisedAttendanceRequest records a full attendance on behalf of a user.
type CreateSupervisedAttendanceRequest struct {
	UserID        string       `json:"user_id"`
	Date          string       `json:"date"`      // YYYY-MM-DD
	CheckIn       string       `json:"check_in"`  // RFC3339 or YYYY-MM-DD HH:MM:SS
	CheckOut      string       `json:"check_out"` // RFC3339 or YYYY-MM-DD HH:MM:SS
	CheckInPhoto  media.Upload `json:"-"`
	CheckOutPhoto media.Upload `json:"-"`

	// Parsed by Validate
	ParsedDate     time.Time `json:"-"`
	ParsedCheckIn  time.Time `json:"-"`
	ParsedCheckOut time.Time `json:"-"`
}

func (r *CreateSupervisedAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id is required",
		})
	} else if !validator.IsValidUUID(r.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "invalid user_id format",
		})
	}

	if date, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	} else {
		r.ParsedDate = date
	}

	checkIn, checkInOK := validator.IsValidDateTime(r.CheckIn)
	if !checkInOK {
		errs = append(errs, validator.ValidationError{
			Field:   "check_in",
			Message: "check_in must be a valid date time",
		})
	}
	checkOut, checkOutOK := validator.IsValidDateTime(r.CheckOut)
	if !checkOutOK {
		errs = append(errs, validator.ValidationError{
			Field:   "check_out",
			Message: "check_out must be a valid date time",
		})
	}
	if checkInOK && checkOutOK {
		if !checkOut.After(checkIn) {
			errs = append(errs, validator.ValidationError{
				Field:   "check_out",
				Message: ErrInvalidTimeRange.Error(),
			})
		}
		r.ParsedCheckIn = checkIn.UTC()
		r.ParsedCheckOut = checkOut.UTC()
	}

	if msg := validator.ValidateImage(r.CheckInPhoto.FileName, int64(len(r.CheckInPhoto.Data)), validator.EventPhotoRule, "check_in_photo"); msg != "" {
		errs = append(errs, validator.ValidationError{
			Field:   "check_in_photo",
			Message: msg,
		})
	}
	if msg := validator.ValidateImage(r.CheckOutPhoto.FileName, int64(len(r.CheckOutPhoto.Data)), validator.EventPhotoRule, "check_out_photo"); msg != "" {
		errs = append(errs, validator.ValidationError{
			Field:   "check_out_photo",
			Message: msg,
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type AttendanceResponse struct {
	ID                    string   `json:"id"`
	UserID                string   `json:"user_id"`
	UserName              *string  `json:"user_name,omitempty"`
	UserEmail             *string  `json:"user_email,omitempty"`
	UserPhotoURLs         []string `json:"user_photo_urls,omitempty"`
	Date                  string   `json:"date"`
	CheckIn               *string  `json:"check_in,omitempty"`
	CheckOut              *string  `json:"check_out,omitempty"`
	Time                  *string  `json:"time,omitempty"`
	CheckInPhotoURL       *string  `json:"check_in_photo_url,omitempty"`
	CheckOutPhotoURL      *string  `json:"check_out_photo_url,omitempty"`
	CheckInPhotoDistance  *float64 `json:"check_in_photo_distance,omitempty"`
	CheckOutPhotoDistance *float64 `json:"check_out_photo_distance,omitempty"`
	State                 string   `json:"state"`
	CreatedAt             string   `json:"created_at"`
	UpdatedAt             string   `json:"updated_at"`
}

// ValidateAttendanceResponse carries the updated record and, for each photo
// whose comparison failed, the reason.
type ValidateAttendanceResponse struct {
	Attendance    AttendanceResponse `json:"attendance"`
	CheckInError  *string            `json:"check_in_error,omitempty"`
	CheckOutError *string            `json:"check_out_error,omitempty"`
}

type AttendanceFilter struct {
	// Search & Filter
	UserID *string `json:"user_id,omitempty"`
	Since  *string `json:"since,omitempty"` // YYYY-MM-DD or date time, defaults to 30 days ago
	Until  *string `json:"until,omitempty"` // YYYY-MM-DD or date time, defaults to now

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Parsed by Validate, filled with defaults by the service
	SinceTime *time.Time `json:"-"`
	UntilTime *time.Time `json:"-"`
}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.UserID != nil && !validator.IsEmpty(*f.UserID) && !validator.IsValidUUID(*f.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "invalid user_id format",
		})
	}

	if f.Since != nil && !validator.IsEmpty(*f.Since) {
		if t, ok := parseBound(*f.Since, false); ok {
			f.SinceTime = &t
		} else {
			errs = append(errs, validator.ValidationError{
				Field:   "since",
				Message: "since must be in YYYY-MM-DD format or a valid date time",
			})
		}
	}
	if f.Until != nil && !validator.IsEmpty(*f.Until) {
		if t, ok := parseBound(*f.Until, true); ok {
			f.UntilTime = &t
		} else {
			errs = append(errs, validator.ValidationError{
				Field:   "until",
				Message: "until must be in YYYY-MM-DD format or a valid date time",
			})
		}
	}
	if f.SinceTime != nil && f.UntilTime != nil && f.UntilTime.Before(*f.SinceTime) {
		errs = append(errs, validator.ValidationError{
			Field:   "until",
			Message: "until must not be before since",
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

// parseBound accepts a date or a date time. A bare date used as an upper
// bound covers the whole day.
func parseBound(s string, upper bool) (time.Time, bool) {
	if d, ok := validator.IsValidDate(s); ok {
		if upper {
			return d.Add(24*time.Hour - time.Nanosecond), true
		}
		return d, true
	}
	return validator.IsValidDateTime(s)
}

type ListAttendanceResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Showing     string               `json:"showing"`
	Attendances []AttendanceResponse `json:"attendances"`
}
