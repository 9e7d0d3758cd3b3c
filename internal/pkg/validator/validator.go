package validator

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		// keep the first message per field
		if _, exists := result[err.Field]; !exists {
			result[err.Field] = err.Message
		}
	}
	return result
}

// FieldError reports a workflow failure against a single form field.
// The wrapped error stays reachable through errors.Is / errors.As.
type FieldError struct {
	Field   string
	Message string
	Err     error
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// NewFieldError wraps err for field, using err's text as the message.
func NewFieldError(field string, err error) *FieldError {
	return &FieldError{Field: field, Message: err.Error(), Err: err}
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Email validation
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// UUIDv7 regex: version 7 (the 15th character must be '7'), all lowercase hex digits.
var uuidv7Regex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-7[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

// UUIDv7 validation
func IsValidUUID(uuid string) bool {
	return uuidv7Regex.MatchString(strings.ToLower(uuid))
}

// Date validation
func IsValidDate(dateStr string) (time.Time, bool) {
	date, err := time.Parse("2006-01-02", dateStr)
	return date, err == nil
}

// Slice contains check
func IsInSlice(value string, slice []string) bool {
	for _, item := range slice {
		if item == value {
			return true
		}
	}
	return false
}

// Itoa converts an integer to a string.
func Itoa(i int) string {
	return strconv.Itoa(i)
}

// IsValidDateTime checks if a string is a valid ISO8601 timestamp.
// Accepts formats like: "2024-01-15T10:30:00Z" or "2024-01-15T10:30:00+07:00"
// and the form layout "2024-01-15 10:30:00" (interpreted as UTC).
func IsValidDateTime(dateTimeStr string) (time.Time, bool) {
	// Try RFC3339 format (ISO8601 with timezone)
	t, err := time.Parse(time.RFC3339, dateTimeStr)
	if err == nil {
		return t, true
	}

	// Try RFC3339Nano format (with nanoseconds)
	t, err = time.Parse(time.RFC3339Nano, dateTimeStr)
	if err == nil {
		return t, true
	}

	t, err = time.Parse("2006-01-02 15:04:05", dateTimeStr)
	if err == nil {
		return t, true
	}

	return time.Time{}, false
}

// ImageRule constrains uploaded images.
type ImageRule struct {
	AllowedExts []string
	MaxSize     int64
}

var (
	// PhotoRule applies to probe and reference photos.
	PhotoRule = ImageRule{AllowedExts: []string{".jpg", ".jpeg", ".png", ".webp"}, MaxSize: 5 << 20}
	// EventPhotoRule applies to supervised check-in/check-out photos.
	EventPhotoRule = ImageRule{AllowedExts: []string{".jpg", ".jpeg", ".png"}, MaxSize: 2 << 20}
)

// ValidateImage returns a human readable message, or "" when the file satisfies the rule.
func ValidateImage(filename string, size int64, rule ImageRule, label string) string {
	if filename == "" && size == 0 {
		return label + " is required"
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !IsInSlice(ext, rule.AllowedExts) {
		return "invalid file type: only " + strings.Join(trimDots(rule.AllowedExts), ", ") + " allowed"
	}
	if size == 0 {
		return label + " must not be empty"
	}
	if size > rule.MaxSize {
		return label + " size must not exceed " + Itoa(int(rule.MaxSize>>20)) + "MB"
	}
	return ""
}

func trimDots(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		out = append(out, strings.TrimPrefix(ext, "."))
	}
	return out
}
