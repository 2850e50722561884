package mailbox

import "errors"

var (
	ErrNotMember        = errors.New("user is not a group member")
	ErrInvalidGroup     = errors.New("invalid group id")
	ErrInvalidMessage   = errors.New("invalid message")
	ErrUnknownOperation = errors.New("unknown group operation")
)
