package user

import "errors"

var ErrInvalidUsername = errors.New("invalid username")
