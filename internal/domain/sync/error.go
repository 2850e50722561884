package sync

import "errors"

var (
	ErrMalformedRequest = errors.New("malformed sync request")
	ErrPermissionDenied = errors.New("folder access denied")
	ErrFolderNotFound   = errors.New("folder not found")
)
