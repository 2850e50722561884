package message

import "errors"

var (
	ErrNotFound    = errors.New("message not found")
	ErrTooLarge    = errors.New("message too large")
	ErrInvalidMeta = errors.New("invalid message")
)
