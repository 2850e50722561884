package folder

import "errors"

var (
	ErrFolderNotFound = errors.New("folder not found")
	ErrInvalidFolder  = errors.New("invalid folder id")
)
