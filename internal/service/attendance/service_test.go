package attendance_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/presensi-app/attendance-backend-go/internal/domain/attendance"
	"github.com/presensi-app/attendance-backend-go/internal/domain/media"
	"github.com/presensi-app/attendance-backend-go/internal/domain/user"
	"github.com/presensi-app/attendance-backend-go/internal/pkg/facerecognition"
	"github.com/presensi-app/attendance-backend-go/internal/pkg/lock"
	"github.com/presensi-app/attendance-backend-go/internal/pkg/validator"
	attendancesvc "github.com/presensi-app/attendance-backend-go/internal/service/attendance"
	"github.com/presensi-app/attendance-backend-go/internal/service/fake"
	mediasvc "github.com/presensi-app/attendance-backend-go/internal/service/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 3, 1, 30, 0, 0, time.UTC)

type fixture struct {
	db        *fake.DB
	storage   *fake.Storage
	face      *fake.FaceService
	locker    lock.Locker
	mediaRepo *fake.MediaRepository
	service   attendance.AttendanceService
	user      user.User
}

func newFixture(t *testing.T, opts ...func(*fixture)) *fixture {
	t.Helper()
	f := &fixture{
		db:      fake.NewDB(),
		storage: fake.NewStorage(),
		face:    &fake.FaceService{},
		locker:  lock.NewMemoryLocker(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.mediaRepo = fake.NewMediaRepository(f.db)
	mediaService := mediasvc.NewMediaService(f.mediaRepo, f.storage, f.db)
	f.service = attendancesvc.NewAttendanceService(
		f.db,
		fake.NewAttendanceRepository(f.db),
		fake.NewUserRepository(f.db),
		mediaService,
		f.face,
		f.locker,
		nil,
		attendancesvc.WithClock(func() time.Time { return fixedNow }),
	)
	f.user = f.db.AddUser(user.User{Name: "Siti", Email: "siti@example.com", Role: user.RoleUser})
	return f
}

func (f *fixture) addReferences(n int) {
	for i := 0; i < n; i++ {
		path := "face-reference/" + f.user.ID + "/ref-" + validator.Itoa(i) + ".jpg"
		f.storage.Put(path, []byte("reference-"+validator.Itoa(i)))
		f.db.AddMedia(media.Media{
			OwnerType:  media.OwnerUser,
			OwnerID:    f.user.ID,
			Collection: media.CollectionFaceReference,
			Path:       path,
			FileName:   "ref.jpg",
			Position:   i,
		})
	}
}

func (f *fixture) addEventPhoto(attendanceID string, collection media.Collection) {
	path := string(collection) + "/" + attendanceID + "/photo.jpg"
	f.storage.Put(path, []byte(collection))
	f.db.AddMedia(media.Media{
		OwnerType:  media.OwnerAttendance,
		OwnerID:    attendanceID,
		Collection: collection,
		Path:       path,
		FileName:   "photo.jpg",
	})
}

func probe() media.Upload {
	return media.Upload{FileName: "probe.webp", ContentType: "image/webp", Data: []byte("probe-bytes")}
}

func checkIn(f *fixture) attendance.SubmitAttendanceRequest {
	return attendance.SubmitAttendanceRequest{UserID: f.user.ID, Photo: probe()}
}

func checkOut(f *fixture, id string) attendance.SubmitAttendanceRequest {
	return attendance.SubmitAttendanceRequest{UserID: f.user.ID, AttendanceID: &id, Photo: probe()}
}

func TestSubmit_CheckInCreatesOpenRecord(t *testing.T) {
	f := newFixture(t)
	f.addReferences(3)
	f.face.VerifyFunc = func(call fake.VerifyCall) (*facerecognition.VerifyResult, error) {
		return &facerecognition.VerifyResult{Verified: true, Distance: fake.Distance(0.3)}, nil
	}

	resp, err := f.service.Submit(context.Background(), checkIn(f))
	require.NoError(t, err)

	assert.Equal(t, string(attendance.StateOpen), resp.State)
	require.NotNil(t, resp.CheckIn)
	assert.Equal(t, fixedNow.Format(time.RFC3339), *resp.CheckIn)
	assert.Nil(t, resp.CheckOut)
	assert.Equal(t, "2025-03-03", resp.Date)
	assert.Nil(t, resp.CheckInPhotoDistance)
	assert.NotNil(t, resp.CheckInPhotoURL)

	stored, ok := f.db.GetAttendance(resp.ID)
	require.True(t, ok)
	assert.True(t, stored.IsOpen())
	assert.Len(t, f.db.MediaOf(media.OwnerAttendance, resp.ID, media.CollectionCheckInPhoto), 1)

	require.Len(t, f.face.VerifyCalls, 1)
	assert.Equal(t, []byte("probe-bytes"), f.face.VerifyCalls[0].Probe)
	assert.Len(t, f.face.VerifyCalls[0].References, 3)
}

func TestSubmit_CheckOutClosesOpenRecord(t *testing.T) {
	f := newFixture(t)
	f.addReferences(1)
	in := fixedNow.Add(-8 * time.Hour)
	open := f.db.AddAttendance(attendance.Attendance{UserID: f.user.ID, Date: in, CheckIn: &in})

	resp, err := f.service.Submit(context.Background(), checkOut(f, open.ID))
	require.NoError(t, err)

	assert.Equal(t, open.ID, resp.ID)
	assert.Equal(t, string(attendance.StateClosed), resp.State)
	stored, ok := f.db.GetAttendance(open.ID)
	require.True(t, ok)
	require.NotNil(t, stored.CheckOut)
	assert.Equal(t, fixedNow, *stored.CheckOut)
	assert.Nil(t, stored.CheckOutPhotoDistance)
	require.NotNil(t, resp.Time)
	assert.Equal(t, "08:00:00", *resp.Time)
	assert.Equal(t, 1, f.db.CountAttendances())
	assert.Len(t, f.db.MediaOf(media.OwnerAttendance, open.ID, media.CollectionCheckOutPhoto), 1)
}

func TestSubmit_NoReferencePhoto(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Submit(context.Background(), checkIn(f))
	assert.ErrorIs(t, err, attendance.ErrNoReferencePhoto)
	assert.Zero(t, f.db.CountAttendances())
	assert.Zero(t, f.face.VerifyCount())
	assert.Empty(t, f.storage.Paths())
}

func TestSubmit_FaceServiceFailures(t *testing.T) {
	tests := []struct {
		name    string
		result  *facerecognition.VerifyResult
		err     error
		kind    error
		message string
	}{
		{
			name:    "service detail",
			err:     &facerecognition.ServiceError{Endpoint: "verify-face", StatusCode: 400, Detail: "Face could not be detected in numpy array."},
			kind:    attendance.ErrFaceService,
			message: "Face could not be detected in numpy array.",
		},
		{
			name:    "service without detail",
			err:     &facerecognition.ServiceError{Endpoint: "verify-face", StatusCode: 500},
			kind:    attendance.ErrFaceService,
			message: attendance.FallbackServiceMessage,
		},
		{
			name:    "unreachable",
			err:     &facerecognition.ServiceError{Endpoint: "verify-face", Err: errors.New("connection refused")},
			kind:    attendance.ErrFaceService,
			message: attendance.FallbackServiceMessage,
		},
		{
			name:    "not verified with detail",
			result:  &facerecognition.VerifyResult{Verified: false, Distance: fake.Distance(0.9), Detail: "Wajah tidak cocok."},
			kind:    attendance.ErrFaceNotVerified,
			message: "Wajah tidak cocok.",
		},
		{
			name:    "verified flag missing",
			result:  &facerecognition.VerifyResult{},
			kind:    attendance.ErrFaceNotVerified,
			message: attendance.FallbackNotVerifiedMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.addReferences(2)
			f.face.VerifyFunc = func(call fake.VerifyCall) (*facerecognition.VerifyResult, error) {
				return tt.result, tt.err
			}

			_, err := f.service.Submit(context.Background(), checkIn(f))
			require.ErrorIs(t, err, tt.kind)
			assert.Equal(t, tt.message, err.Error())
			assert.Zero(t, f.db.CountAttendances())
			assert.Len(t, f.storage.Paths(), 2)
		})
	}
}

func TestSubmit_CheckInWhileOpenIsRejected(t *testing.T) {
	f := newFixture(t)
	f.addReferences(1)
	in := fixedNow.Add(-time.Hour)
	f.db.AddAttendance(attendance.Attendance{UserID: f.user.ID, Date: in, CheckIn: &in})

	_, err := f.service.Submit(context.Background(), checkIn(f))
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)
	assert.Equal(t, 1, f.db.CountAttendances())
	assert.Zero(t, f.face.VerifyCount())
}

func TestSubmit_CheckOutOfForeignOrClosedRecord(t *testing.T) {
	f := newFixture(t)
	f.addReferences(1)
	other := f.db.AddUser(user.User{Name: "Budi", Email: "budi@example.com", Role: user.RoleUser})
	in, out := fixedNow.Add(-9*time.Hour), fixedNow.Add(-time.Hour)
	foreign := f.db.AddAttendance(attendance.Attendance{UserID: other.ID, CheckIn: &in})
	closed := f.db.AddAttendance(attendance.Attendance{UserID: f.user.ID, CheckIn: &in, CheckOut: &out})

	_, err := f.service.Submit(context.Background(), checkOut(f, foreign.ID))
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)

	_, err = f.service.Submit(context.Background(), checkOut(f, closed.ID))
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedOut)

	_, err = f.service.Submit(context.Background(), checkOut(f, "0195a0c4-0000-7000-8000-999999999999"))
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)

	assert.Zero(t, f.face.VerifyCount())
}

func TestSubmit_LockHeld(t *testing.T) {
	f := newFixture(t)
	f.addReferences(1)
	release, err := f.locker.Acquire(context.Background(), "attendance:"+f.user.ID, time.Minute)
	require.NoError(t, err)
	defer release(context.Background())

	_, err = f.service.Submit(context.Background(), checkIn(f))
	assert.ErrorIs(t, err, attendance.ErrCheckInInProgress)
	assert.Zero(t, f.face.VerifyCount())
}

func TestSubmit_ConcurrentCheckInsOpenOneRecord(t *testing.T) {
	f := newFixture(t)
	f.addReferences(1)

	var wg sync.WaitGroup
	results := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.Submit(context.Background(), checkIn(f))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, errors.Is(err, attendance.ErrAlreadyCheckedIn) || errors.Is(err, attendance.ErrCheckInInProgress), err.Error())
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, f.db.CountAttendances())
}

func TestSubmit_RecordFailureLeavesNoPhoto(t *testing.T) {
	f := newFixture(t)
	f.addReferences(1)
	f.mediaRepo.CreateErr = errors.New("insert failed")

	_, err := f.service.Submit(context.Background(), checkIn(f))
	require.Error(t, err)
	assert.Zero(t, f.db.CountAttendances())
	assert.Len(t, f.storage.Paths(), 1)
	assert.Equal(t, 1, f.db.Rollbacks)
}

func TestSubmit_InvalidRequest(t *testing.T) {
	f := newFixture(t)
	f.addReferences(1)

	_, err := f.service.Submit(context.Background(), attendance.SubmitAttendanceRequest{
		UserID: f.user.ID,
		Photo:  media.Upload{FileName: "probe.gif", Data: []byte("gif")},
	})
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Contains(t, verrs.ToMap(), "photo")
}

func TestCurrent(t *testing.T) {
	f := newFixture(t)

	current, err := f.service.Current(context.Background(), f.user.ID)
	require.NoError(t, err)
	assert.Nil(t, current)

	in := fixedNow.Add(-time.Hour)
	open := f.db.AddAttendance(attendance.Attendance{UserID: f.user.ID, CheckIn: &in})
	current, err = f.service.Current(context.Background(), f.user.ID)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, open.ID, current.ID)
}

func TestValidate_AnnotatesClosedRecord(t *testing.T) {
	f := newFixture(t)
	f.addReferences(1)
	f.face.VerifyFunc = func(call fake.VerifyCall) (*facerecognition.VerifyResult, error) {
		return &facerecognition.VerifyResult{Verified: true, Distance: fake.Distance(0.3)}, nil
	}
	ctx := context.Background()
	in := fixedNow.Add(-8 * time.Hour)
	opened := f.db.AddAttendance(attendance.Attendance{UserID: f.user.ID, Date: in, CheckIn: &in})
	f.addEventPhoto(opened.ID, media.CollectionCheckInPhoto)
	assert.Equal(t, attendance.StateOpen, opened.State())

	closed, err := f.service.Submit(ctx, checkOut(f, opened.ID))
	require.NoError(t, err)
	assert.Equal(t, string(attendance.StateClosed), closed.State)
	assert.Nil(t, closed.CheckInPhotoDistance)
	assert.Nil(t, closed.CheckOutPhotoDistance)

	validated, err := f.service.Validate(ctx, opened.ID)
	require.NoError(t, err)
	assert.Equal(t, string(attendance.StateAnnotated), validated.Attendance.State)

	stored, _ := f.db.GetAttendance(opened.ID)
	assert.Equal(t, attendance.StateAnnotated, stored.State())
	require.NotNil(t, stored.CheckInPhotoDistance)
	require.NotNil(t, stored.CheckOutPhotoDistance)
	assert.InDelta(t, 0.3, *stored.CheckOutPhotoDistance, 1e-9)
}

func TestValidate_WritesBothDistances(t *testing.T) {
	f := newFixture(t)
	f.addReferences(2)
	in, out := fixedNow.Add(-9*time.Hour), fixedNow.Add(-time.Hour)
	record := f.db.AddAttendance(attendance.Attendance{UserID: f.user.ID, CheckIn: &in, CheckOut: &out})
	f.addEventPhoto(record.ID, media.CollectionCheckInPhoto)
	f.addEventPhoto(record.ID, media.CollectionCheckOutPhoto)

	f.face.VerifyFunc = func(call fake.VerifyCall) (*facerecognition.VerifyResult, error) {
		if string(call.Probe) == string(media.CollectionCheckInPhoto) {
			return &facerecognition.VerifyResult{Verified: true, Distance: fake.Distance(0.21)}, nil
		}
		return &facerecognition.VerifyResult{Verified: false, Distance: fake.Distance(0.74)}, nil
	}

	resp, err := f.service.Validate(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Nil(t, resp.CheckInError)
	assert.Nil(t, resp.CheckOutError)
	assert.Equal(t, string(attendance.StateAnnotated), resp.Attendance.State)
	assert.Len(t, resp.Attendance.UserPhotoURLs, 2)

	stored, _ := f.db.GetAttendance(record.ID)
	assert.InDelta(t, 0.21, *stored.CheckInPhotoDistance, 1e-9)
	assert.InDelta(t, 0.74, *stored.CheckOutPhotoDistance, 1e-9)
	assert.Equal(t, in, *stored.CheckIn)
	assert.Equal(t, out, *stored.CheckOut)
	assert.Equal(t, 2, f.face.VerifyCount())
}

func TestValidate_OneCallFailsKeepsTheOther(t *testing.T) {
	f := newFixture(t)
	f.addReferences(1)
	in, out := fixedNow.Add(-9*time.Hour), fixedNow.Add(-time.Hour)
	record := f.db.AddAttendance(attendance.Attendance{UserID: f.user.ID, CheckIn: &in, CheckOut: &out})
	f.addEventPhoto(record.ID, media.CollectionCheckInPhoto)
	f.addEventPhoto(record.ID, media.CollectionCheckOutPhoto)

	f.face.VerifyFunc = func(call fake.VerifyCall) (*facerecognition.VerifyResult, error) {
		if string(call.Probe) == string(media.CollectionCheckOutPhoto) {
			return nil, &facerecognition.ServiceError{Endpoint: "verify-face", StatusCode: 422, Detail: "No face in image."}
		}
		return &facerecognition.VerifyResult{Verified: true, Distance: fake.Distance(0.33)}, nil
	}

	resp, err := f.service.Validate(context.Background(), record.ID)
	require.NoError(t, err)
	require.NotNil(t, resp.CheckOutError)
	assert.Equal(t, "No face in image.", *resp.CheckOutError)

	stored, _ := f.db.GetAttendance(record.ID)
	assert.InDelta(t, 0.33, *stored.CheckInPhotoDistance, 1e-9)
	assert.Nil(t, stored.CheckOutPhotoDistance)
}

func TestValidate_VerifiedWithoutDistance(t *testing.T) {
	f := newFixture(t)
	f.addReferences(1)
	in, out := fixedNow.Add(-9*time.Hour), fixedNow.Add(-time.Hour)
	record := f.db.AddAttendance(attendance.Attendance{UserID: f.user.ID, CheckIn: &in, CheckOut: &out})
	f.addEventPhoto(record.ID, media.CollectionCheckInPhoto)
	f.addEventPhoto(record.ID, media.CollectionCheckOutPhoto)

	f.face.VerifyFunc = func(call fake.VerifyCall) (*facerecognition.VerifyResult, error) {
		if string(call.Probe) == string(media.CollectionCheckOutPhoto) {
			return &facerecognition.VerifyResult{Verified: true}, nil
		}
		return &facerecognition.VerifyResult{Verified: true, Distance: fake.Distance(0.25)}, nil
	}

	resp, err := f.service.Validate(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Nil(t, resp.CheckInError)
	require.NotNil(t, resp.CheckOutError)
	assert.Equal(t, attendance.NoDistanceMessage, *resp.CheckOutError)

	stored, _ := f.db.GetAttendance(record.ID)
	assert.InDelta(t, 0.25, *stored.CheckInPhotoDistance, 1e-9)
	assert.Nil(t, stored.CheckOutPhotoDistance)

	f.face.VerifyFunc = func(call fake.VerifyCall) (*facerecognition.VerifyResult, error) {
		return &facerecognition.VerifyResult{Verified: true}, nil
	}
	_, err = f.service.Validate(context.Background(), record.ID)
	var faceErr *attendance.FaceMatchError
	require.ErrorAs(t, err, &faceErr)
	assert.Equal(t, attendance.NoDistanceMessage, faceErr.Message)
}

func TestValidate_BothCallsFailWritesNothing(t *testing.T) {
	f := newFixture(t)
	f.addReferences(1)
	in, out := fixedNow.Add(-9*time.Hour), fixedNow.Add(-time.Hour)
	record := f.db.AddAttendance(attendance.Attendance{UserID: f.user.ID, CheckIn: &in, CheckOut: &out})
	f.addEventPhoto(record.ID, media.CollectionCheckInPhoto)
	f.addEventPhoto(record.ID, media.CollectionCheckOutPhoto)
	f.face.VerifyFunc = func(call fake.VerifyCall) (*facerecognition.VerifyResult, error) {
		return nil, &facerecognition.ServiceError{Endpoint: "verify-face", Err: errors.New("timeout")}
	}

	_, err := f.service.Validate(context.Background(), record.ID)
	assert.ErrorIs(t, err, attendance.ErrFaceService)

	stored, _ := f.db.GetAttendance(record.ID)
	assert.Nil(t, stored.CheckInPhotoDistance)
	assert.Nil(t, stored.CheckOutPhotoDistance)
}

func TestValidate_MissingPhotoLeavesDistancesNull(t *testing.T) {
	f := newFixture(t)
	f.addReferences(1)
	in := fixedNow.Add(-time.Hour)
	record := f.db.AddAttendance(attendance.Attendance{UserID: f.user.ID, CheckIn: &in})
	f.addEventPhoto(record.ID, media.CollectionCheckInPhoto)

	_, err := f.service.Validate(context.Background(), record.ID)
	assert.ErrorIs(t, err, attendance.ErrMissingPhoto)

	stored, _ := f.db.GetAttendance(record.ID)
	assert.Nil(t, stored.CheckInPhotoDistance)
	assert.Nil(t, stored.CheckOutPhotoDistance)
	assert.Zero(t, f.face.VerifyCount())
}

func TestValidate_NoReference(t *testing.T) {
	f := newFixture(t)
	in, out := fixedNow.Add(-9*time.Hour), fixedNow.Add(-time.Hour)
	record := f.db.AddAttendance(attendance.Attendance{UserID: f.user.ID, CheckIn: &in, CheckOut: &out})
	f.addEventPhoto(record.ID, media.CollectionCheckInPhoto)
	f.addEventPhoto(record.ID, media.CollectionCheckOutPhoto)

	_, err := f.service.Validate(context.Background(), record.ID)
	assert.ErrorIs(t, err, attendance.ErrNoReference)

	_, err = f.service.Validate(context.Background(), "0195a0c4-0000-7000-8000-999999999999")
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
}

func TestCreateSupervised(t *testing.T) {
	f := newFixture(t)
	photo := media.Upload{FileName: "a.jpg", Data: []byte("jpeg")}

	resp, err := f.service.CreateSupervised(context.Background(), attendance.CreateSupervisedAttendanceRequest{
		UserID:        f.user.ID,
		Date:          "2025-03-01",
		CheckIn:       "2025-03-01 08:00:00",
		CheckOut:      "2025-03-01 17:00:00",
		CheckInPhoto:  photo,
		CheckOutPhoto: photo,
	})
	require.NoError(t, err)
	assert.Equal(t, string(attendance.StateClosed), resp.State)
	assert.Equal(t, "2025-03-01", resp.Date)
	assert.NotNil(t, resp.CheckInPhotoURL)
	assert.NotNil(t, resp.CheckOutPhotoURL)
	assert.Len(t, f.storage.Paths(), 2)

	_, err = f.service.CreateSupervised(context.Background(), attendance.CreateSupervisedAttendanceRequest{
		UserID:        "0195a0c4-0000-7000-8000-999999999999",
		Date:          "2025-03-01",
		CheckIn:       "2025-03-01 08:00:00",
		CheckOut:      "2025-03-01 17:00:00",
		CheckInPhoto:  photo,
		CheckOutPhoto: photo,
	})
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Contains(t, verrs.ToMap(), "user_id")
}

func TestCreateSupervised_RollbackRemovesBlobs(t *testing.T) {
	f := newFixture(t)
	f.mediaRepo.CreateErr = errors.New("insert failed")
	photo := media.Upload{FileName: "a.jpg", Data: []byte("jpeg")}

	_, err := f.service.CreateSupervised(context.Background(), attendance.CreateSupervisedAttendanceRequest{
		UserID:        f.user.ID,
		Date:          "2025-03-01",
		CheckIn:       "2025-03-01 08:00:00",
		CheckOut:      "2025-03-01 17:00:00",
		CheckInPhoto:  photo,
		CheckOutPhoto: photo,
	})
	require.Error(t, err)
	assert.Empty(t, f.storage.Paths())
	assert.Zero(t, f.db.CountAttendances())
}

func TestListAttendance_DefaultWindowAndPaging(t *testing.T) {
	f := newFixture(t)
	for _, ago := range []time.Duration{time.Hour, 48 * time.Hour, 45 * 24 * time.Hour} {
		in := fixedNow.Add(-ago)
		out := in.Add(time.Minute)
		f.db.AddAttendance(attendance.Attendance{UserID: f.user.ID, CheckIn: &in, CheckOut: &out})
	}

	list, err := f.service.ListAttendance(context.Background(), attendance.AttendanceFilter{Limit: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, list.TotalCount)
	assert.Equal(t, 2, list.TotalPages)
	assert.Equal(t, "1-1 of 2", list.Showing)
	require.Len(t, list.Attendances, 1)
	require.NotNil(t, list.Attendances[0].UserName)
	assert.Equal(t, "Siti", *list.Attendances[0].UserName)

	mine, err := f.service.ListMyAttendance(context.Background(), attendance.AttendanceFilter{UserID: &f.user.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 3, mine.TotalCount)

	_, err = f.service.ListMyAttendance(context.Background(), attendance.AttendanceFilter{})
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)
}

func TestGetAttendance(t *testing.T) {
	f := newFixture(t)
	f.addReferences(2)
	in := fixedNow.Add(-time.Hour)
	record := f.db.AddAttendance(attendance.Attendance{UserID: f.user.ID, CheckIn: &in})
	f.addEventPhoto(record.ID, media.CollectionCheckInPhoto)

	resp, err := f.service.GetAttendance(context.Background(), record.ID)
	require.NoError(t, err)
	assert.NotNil(t, resp.CheckInPhotoURL)
	assert.Nil(t, resp.CheckOutPhotoURL)
	assert.Len(t, resp.UserPhotoURLs, 2)
	require.NotNil(t, resp.UserEmail)
	assert.Equal(t, "siti@example.com", *resp.UserEmail)

	_, err = f.service.GetAttendance(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
}
