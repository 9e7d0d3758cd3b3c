package facerecognition

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/presensi-app/attendance-backend-go/internal/pkg/metrics"
)

const (
	endpointVerify   = "verify-face"
	endpointPresence = "check-face-presence"
)

// Image is a named image payload sent as one multipart file part.
type Image struct {
	Filename string
	Content  io.Reader
}

// VerifyResult is the decoded /verify-face response.
type VerifyResult struct {
	Verified bool     `json:"verified"`
	Distance *float64 `json:"distance,omitempty"`
	Detail   string   `json:"detail,omitempty"`
}

// PresenceResult is the decoded /check-face-presence response.
type PresenceResult struct {
	Detail string `json:"detail,omitempty"`
}

// ServiceError is returned for transport failures and non-2xx responses.
// StatusCode is zero when no response was received.
type ServiceError struct {
	Endpoint   string
	StatusCode int
	Detail     string
	Err        error
}

func (e *ServiceError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("face service %s: %v", e.Endpoint, e.Err)
	}
	if e.Detail != "" {
		return fmt.Sprintf("face service %s returned %d: %s", e.Endpoint, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("face service %s returned %d", e.Endpoint, e.StatusCode)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Verifier is the part of the client the attendance workflow depends on.
type Verifier interface {
	VerifyFace(ctx context.Context, probe Image, references []Image) (*VerifyResult, error)
	CheckFacePresence(ctx context.Context, image Image) (*PresenceResult, error)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *metrics.Metrics
}

func NewClient(baseURL string, timeout time.Duration, m *metrics.Metrics) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		metrics:    m,
	}
}

// VerifyFace compares probe against every reference in a single call.
func (c *Client) VerifyFace(ctx context.Context, probe Image, references []Image) (*VerifyResult, error) {
	if len(references) == 0 {
		return nil, errors.New("at least one reference image is required")
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := writeFile(w, "photo", probe); err != nil {
		return nil, err
	}
	for _, ref := range references {
		if err := writeFile(w, "references", ref); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart body: %w", err)
	}

	var result VerifyResult
	if err := c.post(ctx, endpointVerify, w.FormDataContentType(), &buf, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CheckFacePresence asks the service whether image contains a face.
func (c *Client) CheckFacePresence(ctx context.Context, image Image) (*PresenceResult, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := writeFile(w, "image", image); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart body: %w", err)
	}

	var result PresenceResult
	if err := c.post(ctx, endpointPresence, w.FormDataContentType(), &buf, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) post(ctx context.Context, endpoint, contentType string, body io.Reader, out any) error {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to build face service request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveFaceRequest(endpoint, "transport_error", time.Since(start))
		return &ServiceError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		c.metrics.ObserveFaceRequest(endpoint, "transport_error", time.Since(start))
		return &ServiceError{Endpoint: endpoint, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.metrics.ObserveFaceRequest(endpoint, "rejected", time.Since(start))
		return &ServiceError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Detail:     detailOf(raw),
			Err:        fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	c.metrics.ObserveFaceRequest(endpoint, "ok", time.Since(start))
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &ServiceError{Endpoint: endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("invalid response body: %w", err)}
	}
	return nil
}

// detailOf extracts a string "detail" from an error body. FastAPI style
// validation bodies carry a list there, which is ignored.
func detailOf(raw []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || len(body.Detail) == 0 {
		return ""
	}
	var detail string
	if err := json.Unmarshal(body.Detail, &detail); err != nil {
		return ""
	}
	return detail
}

func writeFile(w *multipart.Writer, field string, img Image) error {
	name := img.Filename
	if name == "" {
		name = field + ".jpg"
	}
	fw, err := w.CreateFormFile(field, name)
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(fw, img.Content); err != nil {
		return fmt.Errorf("failed to write form file: %w", err)
	}
	return nil
}
