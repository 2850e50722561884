package file

import "errors"

var (
	ErrNotFound      = errors.New("file not found")
	ErrInvalidFileID = errors.New("invalid file id")
	ErrEmptyUpload   = errors.New("upload has no slices")
)
