package attendance

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/presensi-app/attendance-backend-go/internal/domain/attendance"
	"github.com/presensi-app/attendance-backend-go/internal/domain/media"
	"github.com/presensi-app/attendance-backend-go/internal/domain/user"
	"github.com/presensi-app/attendance-backend-go/internal/pkg/facerecognition"
	"github.com/presensi-app/attendance-backend-go/internal/pkg/lock"
	"github.com/presensi-app/attendance-backend-go/internal/pkg/metrics"
	"github.com/presensi-app/attendance-backend-go/internal/pkg/validator"
	"github.com/presensi-app/attendance-backend-go/internal/repository/postgresql"
)

const (
	kindCheckIn  = "check_in"
	kindCheckOut = "check_out"
	kindValidate = "validate"

	photoURLExpiry = time.Hour
	defaultLockTTL = time.Minute
	defaultWindow  = 30 * 24 * time.Hour
)

type AttendanceServiceImpl struct {
	tx postgresql.TxManager
	attendance.AttendanceRepository
	users    user.UserRepository
	media    media.MediaService
	face     facerecognition.Verifier
	locker   lock.Locker
	metrics  *metrics.Metrics
	now      func() time.Time
	location *time.Location
	lockTTL  time.Duration
}

type Option func(*AttendanceServiceImpl)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *AttendanceServiceImpl) { s.now = now }
}

// WithLocation sets the zone used to derive the attendance date.
func WithLocation(loc *time.Location) Option {
	return func(s *AttendanceServiceImpl) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithLockTTL bounds how long a submission holds the per-user lock.
func WithLockTTL(ttl time.Duration) Option {
	return func(s *AttendanceServiceImpl) {
		if ttl > 0 {
			s.lockTTL = ttl
		}
	}
}

func NewAttendanceService(
	tx postgresql.TxManager,
	attendanceRepo attendance.AttendanceRepository,
	userRepo user.UserRepository,
	mediaService media.MediaService,
	face facerecognition.Verifier,
	locker lock.Locker,
	m *metrics.Metrics,
	opts ...Option,
) attendance.AttendanceService {
	s := &AttendanceServiceImpl{
		tx:                   tx,
		AttendanceRepository: attendanceRepo,
		users:                userRepo,
		media:                mediaService,
		face:                 face,
		locker:               locker,
		metrics:              m,
		now:                  time.Now,
		location:             time.UTC,
		lockTTL:              defaultLockTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Submit(ctx context.Context, req attendance.SubmitAttendanceRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	kind, collection := kindCheckIn, media.CollectionCheckInPhoto
	if req.IsCheckOut() {
		kind, collection = kindCheckOut, media.CollectionCheckOutPhoto
	}

	resp, err := s.submit(ctx, req, collection)
	s.metrics.AttendanceEvent(kind, outcomeOf(err))
	return resp, err
}

func (s *AttendanceServiceImpl) submit(ctx context.Context, req attendance.SubmitAttendanceRequest, collection media.Collection) (attendance.AttendanceResponse, error) {
	references, err := s.media.List(ctx, media.OwnerUser, req.UserID, media.CollectionFaceReference)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to load reference photos: %w", err)
	}
	if len(references) == 0 {
		return attendance.AttendanceResponse{}, attendance.ErrNoReferencePhoto
	}

	if err := s.checkTransition(ctx, req); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	release, err := s.locker.Acquire(ctx, "attendance:"+req.UserID, s.lockTTL)
	if err != nil {
		if errors.Is(err, lock.ErrLocked) {
			return attendance.AttendanceResponse{}, attendance.ErrCheckInInProgress
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to acquire attendance lock: %w", err)
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			slog.WarnContext(ctx, "failed to release attendance lock", "user_id", req.UserID, "error", err)
		}
	}()

	// Only retro-validation writes the record's distance columns.
	if _, err := s.verify(ctx, req.Photo.FileName, req.Photo.Data, references); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := s.now().UTC()
	attendanceID := ""
	if req.IsCheckOut() {
		attendanceID = *req.AttendanceID
	} else {
		id, err := uuid.NewV7()
		if err != nil {
			return attendance.AttendanceResponse{}, fmt.Errorf("failed to generate attendance id: %w", err)
		}
		attendanceID = id.String()
	}

	stored, err := s.media.Store(ctx, media.OwnerAttendance, attendanceID, collection, []media.Upload{req.Photo})
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to store attendance photo: %w", err)
	}

	var record attendance.Attendance
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		if req.IsCheckOut() {
			record, err = s.AttendanceRepository.Close(txCtx, attendanceID, req.UserID, now)
		} else {
			local := now.In(s.location)
			record, err = s.AttendanceRepository.Create(txCtx, attendance.Attendance{
				ID:      attendanceID,
				UserID:  req.UserID,
				Date:    time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC),
				CheckIn: &now,
			})
		}
		if err != nil {
			return err
		}
		return s.media.Attach(txCtx, stored)
	})
	if err != nil {
		s.media.Discard(ctx, stored)
		return attendance.AttendanceResponse{}, err
	}

	return s.toResponse(ctx, record, stored, nil), nil
}

// checkTransition rejects a check-in while a record is open and a check-out
// of a record the user does not own or already closed.
func (s *AttendanceServiceImpl) checkTransition(ctx context.Context, req attendance.SubmitAttendanceRequest) error {
	if !req.IsCheckOut() {
		open, err := s.AttendanceRepository.GetOpenByUserID(ctx, req.UserID)
		if err != nil {
			return fmt.Errorf("failed to get open attendance: %w", err)
		}
		if open != nil {
			return attendance.ErrAlreadyCheckedIn
		}
		return nil
	}

	record, err := s.AttendanceRepository.GetByID(ctx, *req.AttendanceID)
	if err != nil {
		return err
	}
	if record.UserID != req.UserID {
		return attendance.ErrAttendanceNotFound
	}
	if !record.IsOpen() {
		return attendance.ErrAlreadyCheckedOut
	}
	return nil
}

// verify matches a probe against the references and returns the reported
// distance. Failures come back as *attendance.FaceMatchError.
func (s *AttendanceServiceImpl) verify(ctx context.Context, filename string, probe []byte, references []media.Media) (*float64, error) {
	images := make([]facerecognition.Image, 0, len(references))
	for _, ref := range references {
		data, err := s.read(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", attendance.ErrPhotoUnreadable, err)
		}
		images = append(images, facerecognition.Image{Filename: ref.FileName, Content: bytes.NewReader(data)})
	}

	result, err := s.face.VerifyFace(ctx, facerecognition.Image{Filename: filename, Content: bytes.NewReader(probe)}, images)
	if err != nil {
		var serviceErr *facerecognition.ServiceError
		if errors.As(err, &serviceErr) {
			return nil, attendance.NewServiceError(serviceErr.Detail)
		}
		slog.ErrorContext(ctx, "face verification failed", "error", err)
		return nil, attendance.NewServiceError("")
	}
	if !result.Verified {
		return result.Distance, attendance.NewNotVerifiedError(result.Detail)
	}
	return result.Distance, nil
}

func (s *AttendanceServiceImpl) read(ctx context.Context, m media.Media) ([]byte, error) {
	rc, err := s.media.Open(ctx, m)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Current implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Current(ctx context.Context, userID string) (*attendance.AttendanceResponse, error) {
	open, err := s.AttendanceRepository.GetOpenByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get open attendance: %w", err)
	}
	if open == nil {
		return nil, nil
	}

	photos, err := s.media.List(ctx, media.OwnerAttendance, open.ID, media.CollectionCheckInPhoto)
	if err != nil {
		return nil, fmt.Errorf("failed to load attendance photos: %w", err)
	}
	resp := s.toResponse(ctx, *open, photos, nil)
	return &resp, nil
}

// ListMyAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListMyAttendance(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if filter.UserID == nil || *filter.UserID == "" {
		return attendance.ListAttendanceResponse{}, user.ErrInsufficientPermissions
	}
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}
	return s.list(ctx, filter)
}

// ListAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListAttendance(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	now := s.now().UTC()
	if filter.UntilTime == nil {
		filter.UntilTime = &now
	}
	if filter.SinceTime == nil {
		since := now.Add(-defaultWindow)
		filter.SinceTime = &since
	}
	return s.list(ctx, filter)
}

func (s *AttendanceServiceImpl) list(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	attendances, total, err := s.AttendanceRepository.List(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendances: %w", err)
	}

	ids := make([]string, 0, len(attendances))
	for _, att := range attendances {
		ids = append(ids, att.ID)
	}
	photos, err := s.media.ListByOwners(ctx, media.OwnerAttendance, ids)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to load attendance photos: %w", err)
	}
	byOwner := make(map[string][]media.Media, len(ids))
	for _, m := range photos {
		byOwner[m.OwnerID] = append(byOwner[m.OwnerID], m)
	}

	// Map to response
	responses := make([]attendance.AttendanceResponse, 0, len(attendances))
	for _, att := range attendances {
		responses = append(responses, s.toResponse(ctx, att, byOwner[att.ID], nil))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", (filter.Page-1)*filter.Limit+1, min(filter.Page*filter.Limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return attendance.ListAttendanceResponse{
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  totalPages,
		Showing:     showing,
		Attendances: responses,
	}, nil
}

// GetAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetAttendance(ctx context.Context, id string) (attendance.AttendanceResponse, error) {
	if !validator.IsValidUUID(id) {
		return attendance.AttendanceResponse{}, attendance.ErrAttendanceNotFound
	}
	record, err := s.AttendanceRepository.GetByID(ctx, id)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	photos, err := s.media.ListByOwners(ctx, media.OwnerAttendance, []string{record.ID})
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to load attendance photos: %w", err)
	}
	references, err := s.media.List(ctx, media.OwnerUser, record.UserID, media.CollectionFaceReference)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to load reference photos: %w", err)
	}

	return s.toResponse(ctx, record, photos, references), nil
}

// CreateSupervised implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CreateSupervised(ctx context.Context, req attendance.CreateSupervisedAttendanceRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	if _, err := s.users.GetByID(ctx, req.UserID); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return attendance.AttendanceResponse{}, validator.ValidationErrors{{
				Field:   "user_id",
				Message: "selected user does not exist",
			}}
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get user: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to generate attendance id: %w", err)
	}
	attendanceID := id.String()

	checkInPhotos, err := s.media.Store(ctx, media.OwnerAttendance, attendanceID, media.CollectionCheckInPhoto, []media.Upload{req.CheckInPhoto})
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to store check-in photo: %w", err)
	}
	checkOutPhotos, err := s.media.Store(ctx, media.OwnerAttendance, attendanceID, media.CollectionCheckOutPhoto, []media.Upload{req.CheckOutPhoto})
	if err != nil {
		s.media.Discard(ctx, checkInPhotos)
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to store check-out photo: %w", err)
	}
	stored := append(checkInPhotos, checkOutPhotos...)

	var record attendance.Attendance
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		record, err = s.AttendanceRepository.Create(txCtx, attendance.Attendance{
			ID:       attendanceID,
			UserID:   req.UserID,
			Date:     req.ParsedDate,
			CheckIn:  &req.ParsedCheckIn,
			CheckOut: &req.ParsedCheckOut,
		})
		if err != nil {
			return err
		}
		return s.media.Attach(txCtx, stored)
	})
	if err != nil {
		s.media.Discard(ctx, stored)
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	return s.toResponse(ctx, record, stored, nil), nil
}

// Validate implements attendance.AttendanceService. Each comparison is
// independent: a distance that was obtained is written even when the other
// call failed.
func (s *AttendanceServiceImpl) Validate(ctx context.Context, id string) (attendance.ValidateAttendanceResponse, error) {
	resp, err := s.validate(ctx, id)
	s.metrics.AttendanceEvent(kindValidate, outcomeOf(err))
	return resp, err
}

func (s *AttendanceServiceImpl) validate(ctx context.Context, id string) (attendance.ValidateAttendanceResponse, error) {
	if !validator.IsValidUUID(id) {
		return attendance.ValidateAttendanceResponse{}, attendance.ErrAttendanceNotFound
	}
	record, err := s.AttendanceRepository.GetByID(ctx, id)
	if err != nil {
		return attendance.ValidateAttendanceResponse{}, err
	}

	references, err := s.media.List(ctx, media.OwnerUser, record.UserID, media.CollectionFaceReference)
	if err != nil {
		return attendance.ValidateAttendanceResponse{}, fmt.Errorf("failed to load reference photos: %w", err)
	}
	if len(references) == 0 {
		return attendance.ValidateAttendanceResponse{}, attendance.ErrNoReference
	}

	checkInPhoto, checkOutPhoto, err := s.eventPhotos(ctx, record.ID)
	if err != nil {
		return attendance.ValidateAttendanceResponse{}, err
	}
	if checkInPhoto == nil || checkOutPhoto == nil {
		return attendance.ValidateAttendanceResponse{}, attendance.ErrMissingPhoto
	}

	checkInDistance, checkInErr := s.compare(ctx, *checkInPhoto, references)
	checkOutDistance, checkOutErr := s.compare(ctx, *checkOutPhoto, references)

	if checkInDistance == nil && checkOutDistance == nil {
		return attendance.ValidateAttendanceResponse{}, checkInErr
	}

	updated, err := s.AttendanceRepository.UpdateDistances(ctx, record.ID, checkInDistance, checkOutDistance)
	if err != nil {
		return attendance.ValidateAttendanceResponse{}, fmt.Errorf("failed to update distances: %w", err)
	}
	updated.UserName, updated.UserEmail = record.UserName, record.UserEmail

	resp := attendance.ValidateAttendanceResponse{
		Attendance: s.toResponse(ctx, updated, []media.Media{*checkInPhoto, *checkOutPhoto}, references),
	}
	if checkInErr != nil {
		msg := checkInErr.Error()
		resp.CheckInError = &msg
	}
	if checkOutErr != nil {
		msg := checkOutErr.Error()
		resp.CheckOutError = &msg
	}
	return resp, nil
}

// compare runs one retro-validation call. A response carrying a distance is
// kept whether or not the face service considered it a match.
func (s *AttendanceServiceImpl) compare(ctx context.Context, photo media.Media, references []media.Media) (*float64, error) {
	data, err := s.read(ctx, photo)
	if err != nil {
		slog.ErrorContext(ctx, "failed to read attendance photo", "media_id", photo.ID, "error", err)
		return nil, attendance.NewServiceError("")
	}

	distance, err := s.verify(ctx, photo.FileName, data, references)
	if distance != nil {
		return distance, nil
	}
	if err == nil {
		err = attendance.NewServiceError(attendance.NoDistanceMessage)
	}
	return nil, err
}

func (s *AttendanceServiceImpl) eventPhotos(ctx context.Context, attendanceID string) (*media.Media, *media.Media, error) {
	photos, err := s.media.ListByOwners(ctx, media.OwnerAttendance, []string{attendanceID})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load attendance photos: %w", err)
	}
	var checkIn, checkOut *media.Media
	for i := range photos {
		switch photos[i].Collection {
		case media.CollectionCheckInPhoto:
			if checkIn == nil {
				checkIn = &photos[i]
			}
		case media.CollectionCheckOutPhoto:
			if checkOut == nil {
				checkOut = &photos[i]
			}
		}
	}
	return checkIn, checkOut, nil
}

// toResponse converts an Attendance entity to AttendanceResponse. photos are
// the record's event photos, references the owner's face references.
func (s *AttendanceServiceImpl) toResponse(ctx context.Context, att attendance.Attendance, photos []media.Media, references []media.Media) attendance.AttendanceResponse {
	resp := attendance.AttendanceResponse{
		ID:                    att.ID,
		UserID:                att.UserID,
		UserName:              att.UserName,
		UserEmail:             att.UserEmail,
		Date:                  att.Date.Format("2006-01-02"),
		CheckIn:               timePtrToString(att.CheckIn),
		CheckOut:              timePtrToString(att.CheckOut),
		CheckInPhotoDistance:  att.CheckInPhotoDistance,
		CheckOutPhotoDistance: att.CheckOutPhotoDistance,
		State:                 string(att.State()),
		CreatedAt:             att.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:             att.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
	if d := att.Duration(); d != nil {
		resp.Time = formatDuration(*d)
	}

	for _, m := range photos {
		url := s.url(ctx, m)
		if url == nil {
			continue
		}
		switch m.Collection {
		case media.CollectionCheckInPhoto:
			resp.CheckInPhotoURL = url
		case media.CollectionCheckOutPhoto:
			resp.CheckOutPhotoURL = url
		}
	}
	for _, m := range references {
		if url := s.url(ctx, m); url != nil {
			resp.UserPhotoURLs = append(resp.UserPhotoURLs, *url)
		}
	}
	return resp
}

func (s *AttendanceServiceImpl) url(ctx context.Context, m media.Media) *string {
	url, err := s.media.URL(ctx, m, photoURLExpiry)
	if err != nil {
		slog.WarnContext(ctx, "failed to build photo url", "media_id", m.ID, "error", err)
		return nil
	}
	return &url
}

// timePtrToString safely converts a *time.Time to a string.
func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	format := t.Format(time.RFC3339)
	return &format
}

// formatDuration renders worked time as HH:MM:SS.
func formatDuration(d time.Duration) *string {
	total := int(d.Seconds())
	out := fmt.Sprintf("%02d:%02d:%02d", total/3600, total%3600/60, total%60)
	return &out
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, attendance.ErrFaceNotVerified):
		return "not_verified"
	case errors.Is(err, attendance.ErrFaceService):
		return "service_error"
	case errors.Is(err, attendance.ErrNoReferencePhoto), errors.Is(err, attendance.ErrNoReference):
		return "no_reference"
	case errors.Is(err, attendance.ErrAlreadyCheckedIn), errors.Is(err, attendance.ErrAlreadyCheckedOut), errors.Is(err, attendance.ErrCheckInInProgress):
		return "conflict"
	default:
		return "error"
	}
}
