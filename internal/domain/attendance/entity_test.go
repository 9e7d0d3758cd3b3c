package attendance

import (
	"errors"
	"testing"
	"time"

	"github.com/presensi-app/attendance-backend-go/internal/domain/media"
	"github.com/presensi-app/attendance-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttendance_State(t *testing.T) {
	in := time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC)
	out := in.Add(8 * time.Hour)
	d := 0.31

	open := Attendance{CheckIn: &in}
	assert.Equal(t, StateOpen, open.State())
	assert.True(t, open.IsOpen())
	assert.Nil(t, open.Duration())

	closed := Attendance{CheckIn: &in, CheckOut: &out}
	assert.Equal(t, StateClosed, closed.State())
	assert.False(t, closed.IsOpen())
	require.NotNil(t, closed.Duration())
	assert.Equal(t, 8*time.Hour, *closed.Duration())

	annotated := Attendance{CheckIn: &in, CheckOut: &out, CheckOutPhotoDistance: &d}
	assert.Equal(t, StateAnnotated, annotated.State())
}

func TestFaceMatchError(t *testing.T) {
	err := error(NewServiceError(""))
	assert.ErrorIs(t, err, ErrFaceService)
	assert.Equal(t, FallbackServiceMessage, err.Error())

	err = NewServiceError("Gambar tidak mengandung wajah.")
	assert.Equal(t, "Gambar tidak mengandung wajah.", err.Error())

	err = NewNotVerifiedError("")
	assert.ErrorIs(t, err, ErrFaceNotVerified)
	assert.False(t, errors.Is(err, ErrFaceService))
	assert.Equal(t, FallbackNotVerifiedMessage, err.Error())
}

func TestSubmitAttendanceRequest_Validate(t *testing.T) {
	photo := media.Upload{FileName: "probe.jpg", Data: []byte("jpeg")}

	req := SubmitAttendanceRequest{UserID: "u1", Photo: photo}
	require.NoError(t, req.Validate())
	assert.False(t, req.IsCheckOut())

	id := "0195a0c4-1d2e-7f00-8a00-000000000001"
	req.AttendanceID = &id
	require.NoError(t, req.Validate())
	assert.True(t, req.IsCheckOut())

	bad := "42"
	req.AttendanceID = &bad
	assert.Error(t, req.Validate())

	missing := SubmitAttendanceRequest{UserID: "u1"}
	var verrs validator.ValidationErrors
	require.True(t, errors.As(missing.Validate(), &verrs))
	assert.Contains(t, verrs.ToMap(), "photo")
}

func TestCreateSupervisedAttendanceRequest_Validate(t *testing.T) {
	photo := media.Upload{FileName: "a.png", Data: []byte("png")}
	req := CreateSupervisedAttendanceRequest{
		UserID:        "0195a0c4-1d2e-7f00-8a00-000000000001",
		Date:          "2025-03-03",
		CheckIn:       "2025-03-03 08:00:00",
		CheckOut:      "2025-03-03T17:00:00+07:00",
		CheckInPhoto:  photo,
		CheckOutPhoto: photo,
	}
	require.NoError(t, req.Validate())
	assert.Equal(t, time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC), req.ParsedCheckOut)

	reversed := req
	reversed.CheckOut = "2025-03-03 07:00:00"
	var verrs validator.ValidationErrors
	require.True(t, errors.As(reversed.Validate(), &verrs))
	assert.Equal(t, ErrInvalidTimeRange.Error(), verrs.ToMap()["check_out"])

	webp := req
	webp.CheckOutPhoto = media.Upload{FileName: "a.webp", Data: []byte("x")}
	require.True(t, errors.As(webp.Validate(), &verrs))
	assert.Contains(t, verrs.ToMap(), "check_out_photo")
}

func TestAttendanceFilter_Validate(t *testing.T) {
	since, until := "2025-03-01", "2025-03-31"
	f := AttendanceFilter{Since: &since, Until: &until}
	require.NoError(t, f.Validate())
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 15, f.Limit)
	require.NotNil(t, f.UntilTime)
	assert.Equal(t, time.Date(2025, 3, 31, 23, 59, 59, 999999999, time.UTC), *f.UntilTime)

	backwards := AttendanceFilter{Since: &until, Until: &since}
	assert.Error(t, backwards.Validate())

	garbage := "yesterday"
	assert.Error(t, (&AttendanceFilter{Since: &garbage}).Validate())
}
