package fake

import (
	"context"
	"io"
	"sync"

	"github.com/presensi-app/attendance-backend-go/internal/pkg/facerecognition"
)

// VerifyCall records the payload of one VerifyFace call.
type VerifyCall struct {
	Probe      []byte
	References [][]byte
}

// FaceService is a scripted facerecognition.Verifier. Unset funcs accept
// every request with distance 0.3.
type FaceService struct {
	mu sync.Mutex

	VerifyFunc   func(call VerifyCall) (*facerecognition.VerifyResult, error)
	PresenceFunc func(index int, image []byte) (*facerecognition.PresenceResult, error)

	VerifyCalls   []VerifyCall
	PresenceCalls [][]byte
}

func Distance(d float64) *float64 {
	return &d
}

func (f *FaceService) VerifyFace(ctx context.Context, probe facerecognition.Image, references []facerecognition.Image) (*facerecognition.VerifyResult, error) {
	call := VerifyCall{Probe: readAll(probe.Content)}
	for _, ref := range references {
		call.References = append(call.References, readAll(ref.Content))
	}

	f.mu.Lock()
	f.VerifyCalls = append(f.VerifyCalls, call)
	fn := f.VerifyFunc
	f.mu.Unlock()

	if fn == nil {
		return &facerecognition.VerifyResult{Verified: true, Distance: Distance(0.3)}, nil
	}
	return fn(call)
}

func (f *FaceService) CheckFacePresence(ctx context.Context, image facerecognition.Image) (*facerecognition.PresenceResult, error) {
	data := readAll(image.Content)

	f.mu.Lock()
	index := len(f.PresenceCalls)
	f.PresenceCalls = append(f.PresenceCalls, data)
	fn := f.PresenceFunc
	f.mu.Unlock()

	if fn == nil {
		return &facerecognition.PresenceResult{}, nil
	}
	return fn(index, data)
}

func (f *FaceService) VerifyCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.VerifyCalls)
}

func readAll(r io.Reader) []byte {
	if r == nil {
		return nil
	}
	data, _ := io.ReadAll(r)
	return data
}
