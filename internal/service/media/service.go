package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // Import for PNG decoding support
	"io"
	"log/slog"
	"math"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/presensi-app/attendance-backend-go/internal/domain/media"
	"github.com/presensi-app/attendance-backend-go/internal/pkg/storage"
	"github.com/presensi-app/attendance-backend-go/internal/repository/postgresql"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Import for WebP decoding support
)

// Event photos are re-encoded as JPEG within this size range.
const (
	eventPhotoMaxSize = 150 * 1024
	eventPhotoMinSize = 50 * 1024
)

type mediaServiceImpl struct {
	repo    media.MediaRepository
	storage storage.FileStorage
	tx      postgresql.TxManager
}

func NewMediaService(repo media.MediaRepository, fileStorage storage.FileStorage, tx postgresql.TxManager) media.MediaService {
	return &mediaServiceImpl{
		repo:    repo,
		storage: fileStorage,
		tx:      tx,
	}
}

// Store implements media.MediaService.
func (s *mediaServiceImpl) Store(ctx context.Context, ownerType media.OwnerType, ownerID string, collection media.Collection, uploads []media.Upload) ([]media.Media, error) {
	if len(uploads) == 0 {
		return nil, media.ErrEmptyUpload
	}
	if collection.IsEventPhoto() && len(uploads) != 1 {
		return nil, media.ErrInvalidCollection
	}

	stored := make([]media.Media, 0, len(uploads))
	for i, upload := range uploads {
		data, contentType, ext := upload.Data, contentTypeOf(upload), strings.ToLower(filepath.Ext(upload.FileName))
		fileName := upload.FileName

		if collection.IsEventPhoto() {
			compressed, err := compressImage(upload.Data, eventPhotoMaxSize, eventPhotoMinSize)
			if err != nil {
				slog.WarnContext(ctx, "storing event photo uncompressed", "owner_id", ownerID, "error", err)
			} else {
				data, contentType, ext = compressed, "image/jpeg", ".jpg"
				fileName = strings.TrimSuffix(fileName, filepath.Ext(fileName)) + ext
			}
		}

		// {collection}/{ownerID}/{uuid}{ext}
		key := path.Join(string(collection), ownerID, uuid.NewString()+ext)
		uploadedPath, err := s.storage.Upload(ctx, bytes.NewReader(data), key, contentType)
		if err != nil {
			s.Discard(ctx, stored)
			return nil, fmt.Errorf("failed to upload %s: %w", collection, err)
		}

		stored = append(stored, media.Media{
			OwnerType:   ownerType,
			OwnerID:     ownerID,
			Collection:  collection,
			Path:        uploadedPath,
			FileName:    fileName,
			ContentType: contentType,
			Size:        int64(len(data)),
			Position:    i,
		})
	}

	return stored, nil
}

// Attach implements media.MediaService.
func (s *mediaServiceImpl) Attach(ctx context.Context, items []media.Media) error {
	for i := range items {
		created, err := s.repo.Create(ctx, items[i])
		if err != nil {
			return err
		}
		items[i] = created
	}
	return nil
}

// Discard implements media.MediaService.
func (s *mediaServiceImpl) Discard(ctx context.Context, items []media.Media) {
	for _, m := range items {
		if err := s.storage.Delete(ctx, m.Path); err != nil {
			slog.WarnContext(ctx, "failed to delete stored file", "path", m.Path, "error", err)
		}
	}
}

// ReplaceCollection implements media.MediaService.
func (s *mediaServiceImpl) ReplaceCollection(ctx context.Context, ownerType media.OwnerType, ownerID string, collection media.Collection, uploads []media.Upload) ([]media.Media, error) {
	stored, err := s.Store(ctx, ownerType, ownerID, collection, uploads)
	if err != nil {
		return nil, err
	}

	var previous []media.Media
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.ListByOwner(txCtx, ownerType, ownerID, collection)
		if err != nil {
			return err
		}
		previous = existing
		if err := s.Attach(txCtx, stored); err != nil {
			return err
		}
		ids := make([]string, 0, len(previous))
		for _, m := range previous {
			ids = append(ids, m.ID)
		}
		return s.repo.DeleteByIDs(txCtx, ids)
	})
	if err != nil {
		s.Discard(ctx, stored)
		return nil, fmt.Errorf("failed to replace %s: %w", collection, err)
	}

	s.Discard(ctx, previous)
	return stored, nil
}

// DetachOwner implements media.MediaService.
func (s *mediaServiceImpl) DetachOwner(ctx context.Context, ownerType media.OwnerType, ownerID string) ([]media.Media, error) {
	return s.repo.DeleteByOwner(ctx, ownerType, ownerID)
}

// List implements media.MediaService.
func (s *mediaServiceImpl) List(ctx context.Context, ownerType media.OwnerType, ownerID string, collection media.Collection) ([]media.Media, error) {
	return s.repo.ListByOwner(ctx, ownerType, ownerID, collection)
}

// ListByOwners implements media.MediaService.
func (s *mediaServiceImpl) ListByOwners(ctx context.Context, ownerType media.OwnerType, ownerIDs []string) ([]media.Media, error) {
	return s.repo.ListByOwners(ctx, ownerType, ownerIDs)
}

// Count implements media.MediaService.
func (s *mediaServiceImpl) Count(ctx context.Context, ownerType media.OwnerType, ownerID string, collection media.Collection) (int, error) {
	return s.repo.CountByOwner(ctx, ownerType, ownerID, collection)
}

// Open implements media.MediaService.
func (s *mediaServiceImpl) Open(ctx context.Context, m media.Media) (io.ReadCloser, error) {
	return s.storage.Download(ctx, m.Path)
}

// URL implements media.MediaService.
func (s *mediaServiceImpl) URL(ctx context.Context, m media.Media, expiry time.Duration) (string, error) {
	return s.storage.GetURL(ctx, m.Path, expiry)
}

func contentTypeOf(upload media.Upload) string {
	if upload.ContentType != "" && upload.ContentType != "application/octet-stream" {
		return upload.ContentType
	}
	switch strings.ToLower(filepath.Ext(upload.FileName)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

// ==================== HELPER FUNCTIONS ====================

// compressImage re-encodes an image as JPEG aiming for a size between
// minSize and maxSize. JPEGs already inside the range are returned as is.
func compressImage(buffer []byte, maxSize int, minSize int) ([]byte, error) {
	if isJPEG(buffer) && len(buffer) <= maxSize && len(buffer) >= minSize {
		return buffer, nil
	}

	img, _, err := image.Decode(bytes.NewReader(buffer))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	originalWidth := bounds.Dx()
	originalHeight := bounds.Dy()

	// Start with quality 85 and reduce progressively
	quality := 85
	var compressed []byte

	for quality >= 50 {
		buf := new(bytes.Buffer)
		if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("failed to encode JPEG: %w", err)
		}
		compressed = buf.Bytes()

		if len(compressed) <= maxSize && len(compressed) >= minSize {
			return compressed, nil
		}
		if len(compressed) > maxSize {
			quality -= 5
			continue
		}
		// Too small: small originals stay small, accept it
		break
	}

	if len(compressed) > maxSize {
		// Scale towards the middle of the range
		targetSize := (maxSize + minSize) / 2
		ratio := math.Sqrt(float64(targetSize) / float64(len(compressed)))
		newWidth := max(int(float64(originalWidth)*ratio), 1)
		newHeight := max(int(float64(originalHeight)*ratio), 1)

		buf := new(bytes.Buffer)
		if err := jpeg.Encode(buf, resizeImage(img, newWidth, newHeight), &jpeg.Options{Quality: 70}); err != nil {
			return nil, fmt.Errorf("failed to encode resized image: %w", err)
		}
		compressed = buf.Bytes()
	}

	return compressed, nil
}

func isJPEG(buffer []byte) bool {
	return len(buffer) > 2 && buffer[0] == 0xFF && buffer[1] == 0xD8
}

// resizeImage resizes an image to the specified dimensions using high-quality interpolation
func resizeImage(src image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}
