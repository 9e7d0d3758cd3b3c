package validator

import (
	"errors"
	"testing"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{"test@example.com", "user.name+1@domain.co", "a@b.cd"}
	invalid := []string{"test@", "@example.com", "test@.com", "test@com", "test@domain", " ", ""}
	for _, email := range valid {
		if !IsValidEmail(email) {
			t.Errorf("IsValidEmail(%q) = false, want true", email)
		}
	}
	for _, email := range invalid {
		if IsValidEmail(email) {
			t.Errorf("IsValidEmail(%q) = true, want false", email)
		}
	}
}

func TestIsValidUUID(t *testing.T) {
	valid := []string{
		"0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b", // valid UUIDv7
		"0188D0F2-7B8C-7B4A-8A2B-6B8B8B8B8B8B", // valid UUIDv7 (uppercase)
	}
	invalid := []string{
		"123e4567-e89b-12d3-a456-426614174000", // not v7
		"0188d0f27b8c7b4a8a2b6b8b8b8b8b8b",     // missing dashes
		"g188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b", // invalid hex
		"",                                     // empty
	}
	for _, uuid := range valid {
		if !IsValidUUID(uuid) {
			t.Errorf("IsValidUUID(%q) = false, want true", uuid)
		}
	}
	for _, uuid := range invalid {
		if IsValidUUID(uuid) {
			t.Errorf("IsValidUUID(%q) = true, want false", uuid)
		}
	}
}

func TestIsValidDateTime(t *testing.T) {
	valid := []string{"2024-01-15T10:30:00Z", "2024-01-15T10:30:00+07:00", "2024-01-15 10:30:00"}
	invalid := []string{"2024-01-15", "10:30", "", "yesterday"}
	for _, s := range valid {
		if _, ok := IsValidDateTime(s); !ok {
			t.Errorf("IsValidDateTime(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if _, ok := IsValidDateTime(s); ok {
			t.Errorf("IsValidDateTime(%q) = true, want false", s)
		}
	}
}

func TestValidateImage(t *testing.T) {
	cases := []struct {
		name     string
		filename string
		size     int64
		rule     ImageRule
		ok       bool
	}{
		{"missing", "", 0, PhotoRule, false},
		{"jpeg ok", "me.JPG", 1024, PhotoRule, true},
		{"webp ok", "me.webp", 1024, PhotoRule, true},
		{"webp not an event photo", "me.webp", 1024, EventPhotoRule, false},
		{"gif rejected", "me.gif", 1024, PhotoRule, false},
		{"empty file", "me.png", 0, PhotoRule, false},
		{"too large", "me.png", 6 << 20, PhotoRule, false},
		{"event photo too large", "me.png", 3 << 20, EventPhotoRule, false},
	}
	for _, c := range cases {
		msg := ValidateImage(c.filename, c.size, c.rule, "photo")
		if (msg == "") != c.ok {
			t.Errorf("%s: ValidateImage() = %q, want ok=%v", c.name, msg, c.ok)
		}
	}
}

func TestFieldError_Unwrap(t *testing.T) {
	sentinel := errors.New("face verification failed")
	err := error(NewFieldError("photo", sentinel))

	if !errors.Is(err, sentinel) {
		t.Fatalf("errors.Is(FieldError, sentinel) = false, want true")
	}
	var fe *FieldError
	if !errors.As(err, &fe) || fe.Field != "photo" || fe.Message != "face verification failed" {
		t.Fatalf("unexpected field error: %+v", fe)
	}
}

func TestValidationErrors_ToMapKeepsFirstMessage(t *testing.T) {
	errs := ValidationErrors{
		{Field: "photos", Message: "at least 1 photo is required"},
		{Field: "photos", Message: "second message"},
		{Field: "email", Message: "email is required"},
	}
	m := errs.ToMap()
	if m["photos"] != "at least 1 photo is required" || m["email"] != "email is required" {
		t.Errorf("ToMap() = %v", m)
	}
}
