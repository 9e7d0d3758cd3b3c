package attendance

import (
	"time"
)

type State string

const (
	StateOpen      State = "open"      // checked in, not yet checked out
	StateClosed    State = "closed"    // checked in and out
	StateAnnotated State = "annotated" // closed, with a retro-validation distance attached
)

type Attendance struct {
	ID                    string
	UserID                string
	Date                  time.Time
	CheckIn               *time.Time
	CheckOut              *time.Time
	CheckInPhotoDistance  *float64
	CheckOutPhotoDistance *float64
	CreatedAt             time.Time
	UpdatedAt             time.Time

	// DTO / Join
	UserName  *string
	UserEmail *string
}

// State derives the lifecycle position from the timestamps and distances.
// Distances are only written by retro-validation, never by check-in/out.
func (a *Attendance) State() State {
	if a.CheckOut == nil {
		return StateOpen
	}
	if a.CheckInPhotoDistance != nil || a.CheckOutPhotoDistance != nil {
		return StateAnnotated
	}
	return StateClosed
}

// IsOpen checks if the record still waits for a check-out
func (a *Attendance) IsOpen() bool {
	return a.CheckIn != nil && a.CheckOut == nil
}

// Duration returns the worked time of a closed record.
func (a *Attendance) Duration() *time.Duration {
	if a.CheckIn == nil || a.CheckOut == nil {
		return nil
	}
	d := a.CheckOut.Sub(*a.CheckIn)
	return &d
}
