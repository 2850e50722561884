package command

import (
	"errors"

	"wesync/internal/domain/sync"
)

var (
	ErrMalformedRequest = sync.ErrMalformedRequest
	ErrPermissionDenied = sync.ErrPermissionDenied
	ErrInvalidFileID    = errors.New("file id does not belong to user")
)
