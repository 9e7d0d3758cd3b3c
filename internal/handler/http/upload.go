package http

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/presensi-app/attendance-backend-go/internal/domain/media"
)

const (
	// Three 5MB reference photos plus form overhead.
	maxRequestBody  = 20 << 20
	maxUploadMemory = 32 << 20
)

var errInvalidForm = errors.New("failed to parse form data")

func parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		return fmt.Errorf("%w: %v", errInvalidForm, err)
	}
	return nil
}

func readUpload(fh *multipart.FileHeader) (media.Upload, error) {
	file, err := fh.Open()
	if err != nil {
		return media.Upload{}, fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return media.Upload{}, fmt.Errorf("failed to read upload: %w", err)
	}
	return media.Upload{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// formUpload returns the single file in field, or an empty Upload so that DTO
// validation reports the missing file.
func formUpload(r *http.Request, field string) (media.Upload, error) {
	if r.MultipartForm == nil {
		return media.Upload{}, nil
	}
	files := r.MultipartForm.File[field]
	if len(files) == 0 {
		return media.Upload{}, nil
	}
	return readUpload(files[0])
}

// formUploads collects every file sent as field or field[].
func formUploads(r *http.Request, field string) ([]media.Upload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	headers := append([]*multipart.FileHeader{}, r.MultipartForm.File[field]...)
	headers = append(headers, r.MultipartForm.File[field+"[]"]...)

	uploads := make([]media.Upload, 0, len(headers))
	for _, fh := range headers {
		upload, err := readUpload(fh)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, upload)
	}
	return uploads, nil
}
