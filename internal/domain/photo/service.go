package photo

import (
	"context"

	"github.com/presensi-app/attendance-backend-go/internal/domain/media"
)

// PhotoService manages a user's face reference photos.
type PhotoService interface {
	// CheckFaces runs the presence check on each image in order and stops at
	// the first failure with a *NoFaceDetectedError.
	CheckFaces(ctx context.Context, photos []media.Upload) error

	// ReplaceReferencePhotos validates and checks 1 to 3 images, then swaps
	// them in as the user's reference set.
	ReplaceReferencePhotos(ctx context.Context, userID string, photos []media.Upload) ([]PhotoResponse, error)

	ListReferencePhotos(ctx context.Context, userID string) ([]PhotoResponse, error)
}
