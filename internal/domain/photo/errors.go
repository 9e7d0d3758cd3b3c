package photo

import (
	"errors"
	"fmt"
)

var ErrNoFaceDetected = errors.New("no face detected")

// FallbackPresenceMessage is used when the face service gives no detail.
const FallbackPresenceMessage = "Failed to detect face."

// NoFaceDetectedError names the first image of a submission that failed the
// face presence check. Index is zero based.
type NoFaceDetectedError struct {
	Index  int
	Detail string
}

func (e *NoFaceDetectedError) Error() string {
	detail := e.Detail
	if detail == "" {
		detail = FallbackPresenceMessage
	}
	return fmt.Sprintf("Image %d: %s Please resubmit.", e.Index+1, detail)
}

func (e *NoFaceDetectedError) Unwrap() error {
	return ErrNoFaceDetected
}
