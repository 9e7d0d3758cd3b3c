package photo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/presensi-app/attendance-backend-go/internal/domain/media"
	"github.com/presensi-app/attendance-backend-go/internal/domain/photo"
	"github.com/presensi-app/attendance-backend-go/internal/domain/user"
	"github.com/presensi-app/attendance-backend-go/internal/pkg/facerecognition"
	"github.com/presensi-app/attendance-backend-go/internal/pkg/metrics"
)

const photoURLExpiry = time.Hour

type PhotoServiceImpl struct {
	face    facerecognition.Verifier
	media   media.MediaService
	metrics *metrics.Metrics
}

func NewPhotoService(face facerecognition.Verifier, mediaService media.MediaService, m *metrics.Metrics) photo.PhotoService {
	return &PhotoServiceImpl{
		face:    face,
		media:   mediaService,
		metrics: m,
	}
}

// CheckFaces implements photo.PhotoService.
func (s *PhotoServiceImpl) CheckFaces(ctx context.Context, photos []media.Upload) error {
	for i, p := range photos {
		_, err := s.face.CheckFacePresence(ctx, facerecognition.Image{
			Filename: p.FileName,
			Content:  bytes.NewReader(p.Data),
		})
		if err == nil {
			continue
		}

		var serviceErr *facerecognition.ServiceError
		detail := ""
		if errors.As(err, &serviceErr) {
			detail = serviceErr.Detail
			if serviceErr.StatusCode == 0 {
				slog.ErrorContext(ctx, "face presence check unreachable", "image", i+1, "error", err)
			}
		} else {
			slog.ErrorContext(ctx, "face presence check failed", "image", i+1, "error", err)
		}
		return &photo.NoFaceDetectedError{Index: i, Detail: detail}
	}
	return nil
}

// ReplaceReferencePhotos implements photo.PhotoService.
func (s *PhotoServiceImpl) ReplaceReferencePhotos(ctx context.Context, userID string, photos []media.Upload) ([]photo.PhotoResponse, error) {
	if errs := user.ValidateReferencePhotos(photos); len(errs) > 0 {
		return nil, errs
	}

	if err := s.CheckFaces(ctx, photos); err != nil {
		return nil, err
	}

	stored, err := s.media.ReplaceCollection(ctx, media.OwnerUser, userID, media.CollectionFaceReference, photos)
	if err != nil {
		return nil, fmt.Errorf("failed to replace reference photos: %w", err)
	}
	s.metrics.ReferenceSetReplaced()

	return s.toResponses(ctx, stored)
}

// ListReferencePhotos implements photo.PhotoService.
func (s *PhotoServiceImpl) ListReferencePhotos(ctx context.Context, userID string) ([]photo.PhotoResponse, error) {
	items, err := s.media.List(ctx, media.OwnerUser, userID, media.CollectionFaceReference)
	if err != nil {
		return nil, fmt.Errorf("failed to list reference photos: %w", err)
	}
	return s.toResponses(ctx, items)
}

func (s *PhotoServiceImpl) toResponses(ctx context.Context, items []media.Media) ([]photo.PhotoResponse, error) {
	responses := make([]photo.PhotoResponse, 0, len(items))
	for _, m := range items {
		url, err := s.media.URL(ctx, m, photoURLExpiry)
		if err != nil {
			return nil, fmt.Errorf("failed to get photo url: %w", err)
		}
		responses = append(responses, photo.PhotoResponse{
			ID:        m.ID,
			URL:       url,
			FileName:  m.FileName,
			Position:  m.Position,
			CreatedAt: m.CreatedAt.Format(time.RFC3339),
		})
	}
	return responses, nil
}
