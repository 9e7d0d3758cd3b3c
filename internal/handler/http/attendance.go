package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/presensi-app/attendance-backend-go/internal/domain/attendance"
	"github.com/presensi-app/attendance-backend-go/internal/domain/user"
	"github.com/presensi-app/attendance-backend-go/internal/handler/http/response"
	"github.com/presensi-app/attendance-backend-go/internal/pkg/validator"
)

type AttendanceHandler interface {
	Submit(w http.ResponseWriter, r *http.Request)
	Current(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// submissionErrors are reported to the submitter as a message on the photo field.
var submissionErrors = []error{
	attendance.ErrNoReferencePhoto,
	attendance.ErrAlreadyCheckedIn,
	attendance.ErrAlreadyCheckedOut,
	attendance.ErrCheckInInProgress,
	attendance.ErrAttendanceNotFound,
	attendance.ErrPhotoUnreadable,
}

func submissionError(err error) error {
	var faceErr *attendance.FaceMatchError
	if errors.As(err, &faceErr) {
		return validator.NewFieldError("photo", faceErr)
	}
	for _, sentinel := range submissionErrors {
		if errors.Is(err, sentinel) {
			return &validator.FieldError{Field: "photo", Message: sentinel.Error(), Err: err}
		}
	}
	return err
}

// Submit implements AttendanceHandler. Without attendance_id the caller checks
// in, with it the named open record is checked out.
func (h *attendanceHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	actor, ok := authorize(w, r, user.PermissionAddAttendance)
	if !ok {
		return
	}

	if err := parseMultipart(w, r); err != nil {
		slog.Error("Failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return
	}

	photo, err := formUpload(r, "photo")
	if err != nil {
		slog.Error("Failed to read photo", "error", err)
		response.BadRequest(w, "Invalid file upload", nil)
		return
	}

	req := attendance.SubmitAttendanceRequest{
		UserID: actor.UserID,
		Photo:  photo,
	}
	if id := r.FormValue("attendance_id"); id != "" {
		req.AttendanceID = &id
	}

	result, err := h.attendanceService.Submit(r.Context(), req)
	if err != nil {
		slog.Error("Submit attendance service error", "error", err, "user_id", actor.UserID)
		response.HandleError(w, submissionError(err))
		return
	}

	if req.IsCheckOut() {
		response.SuccessWithMessage(w, "Checked out successfully", result)
		return
	}
	response.Created(w, "Checked in successfully", result)
}

// Current implements AttendanceHandler.
func (h *attendanceHandlerImpl) Current(w http.ResponseWriter, r *http.Request) {
	actor, ok := authorize(w, r, user.PermissionAddAttendance)
	if !ok {
		return
	}

	result, err := h.attendanceService.Current(r.Context(), actor.UserID)
	if err != nil {
		slog.Error("Current attendance service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// List implements AttendanceHandler.
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := authorize(w, r, user.PermissionBrowseAttendances)
	if !ok {
		return
	}

	filter := attendance.AttendanceFilter{
		UserID: &actor.UserID,
		Since:  queryString(r, "since"),
		Until:  queryString(r, "until"),
		Page:   queryInt(r, "page"),
		Limit:  queryInt(r, "limit"),
	}

	results, err := h.attendanceService.ListMyAttendance(r.Context(), filter)
	if err != nil {
		slog.Error("List my attendance service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, results.Attendances, attendanceMeta(results))
}

func attendanceMeta(results attendance.ListAttendanceResponse) *response.Meta {
	return &response.Meta{
		Page:       results.Page,
		Limit:      results.Limit,
		TotalItems: results.TotalCount,
		TotalPages: results.TotalPages,
		Showing:    results.Showing,
	}
}

type UserAttendanceHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Validate(w http.ResponseWriter, r *http.Request)
}

type userAttendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewUserAttendanceHandler(attendanceService attendance.AttendanceService) UserAttendanceHandler {
	return &userAttendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// List implements UserAttendanceHandler.
func (h *userAttendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	if _, ok := authorize(w, r, user.PermissionBrowseUserAttendances); !ok {
		return
	}

	filter := attendance.AttendanceFilter{
		UserID: queryString(r, "user_id"),
		Since:  queryString(r, "since"),
		Until:  queryString(r, "until"),
		Page:   queryInt(r, "page"),
		Limit:  queryInt(r, "limit"),
	}

	results, err := h.attendanceService.ListAttendance(r.Context(), filter)
	if err != nil {
		slog.Error("List attendance service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, results.Attendances, attendanceMeta(results))
}

// Get implements UserAttendanceHandler.
func (h *userAttendanceHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	if _, ok := authorize(w, r, user.PermissionReadUserAttendance); !ok {
		return
	}

	result, err := h.attendanceService.GetAttendance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		slog.Error("Get attendance service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Create implements UserAttendanceHandler.
func (h *userAttendanceHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	if _, ok := authorize(w, r, user.PermissionAddUserAttendance); !ok {
		return
	}

	if err := parseMultipart(w, r); err != nil {
		slog.Error("Failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return
	}

	checkInPhoto, err := formUpload(r, "check_in_photo")
	if err != nil {
		response.BadRequest(w, "Invalid file upload", nil)
		return
	}
	checkOutPhoto, err := formUpload(r, "check_out_photo")
	if err != nil {
		response.BadRequest(w, "Invalid file upload", nil)
		return
	}

	req := attendance.CreateSupervisedAttendanceRequest{
		UserID:        r.FormValue("user_id"),
		Date:          r.FormValue("date"),
		CheckIn:       r.FormValue("check_in"),
		CheckOut:      r.FormValue("check_out"),
		CheckInPhoto:  checkInPhoto,
		CheckOutPhoto: checkOutPhoto,
	}

	result, err := h.attendanceService.CreateSupervised(r.Context(), req)
	if err != nil {
		slog.Error("Create attendance service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Attendance created successfully", result)
}

// Validate implements UserAttendanceHandler.
func (h *userAttendanceHandlerImpl) Validate(w http.ResponseWriter, r *http.Request) {
	if _, ok := authorize(w, r, user.PermissionEditUserAttendance); !ok {
		return
	}

	result, err := h.attendanceService.Validate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		slog.Error("Validate attendance service error", "error", err)
		response.HandleError(w, validationError(err))
		return
	}

	response.SuccessWithMessage(w, "Attendance validated", result)
}

// validationError reports retro-validation failures on the generic error field.
func validationError(err error) error {
	var faceErr *attendance.FaceMatchError
	switch {
	case errors.As(err, &faceErr):
		return validator.NewFieldError("error", faceErr)
	case errors.Is(err, attendance.ErrNoReference):
		return &validator.FieldError{Field: "error", Message: "No face reference found for this user.", Err: err}
	case errors.Is(err, attendance.ErrMissingPhoto):
		return &validator.FieldError{Field: "error", Message: "Check-in or check-out photo not found.", Err: err}
	}
	return err
}
