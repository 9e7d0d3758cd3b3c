package media

import "errors"

var (
	ErrMediaNotFound     = errors.New("media not found")
	ErrEmptyUpload       = errors.New("no files to store")
	ErrInvalidCollection = errors.New("invalid media collection")
)
