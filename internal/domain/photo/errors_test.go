package photo

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoFaceDetectedError(t *testing.T) {
	err := error(&NoFaceDetectedError{Index: 1, Detail: "Gambar tidak mengandung wajah."})
	assert.Equal(t, "Image 2: Gambar tidak mengandung wajah. Please resubmit.", err.Error())
	assert.True(t, errors.Is(err, ErrNoFaceDetected))

	err = &NoFaceDetectedError{Index: 0}
	assert.Equal(t, "Image 1: Failed to detect face. Please resubmit.", err.Error())
}
