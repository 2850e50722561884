package user

import (
	"fmt"
	"unicode"
)

const (
	MinUsernameLen = 1
	MaxUsernameLen = 64
)

// Validator проверяет имя пользователя, пришедшее от шлюза
type Validator interface {
	ValidateUsername(username string) error
}

// NameValidator запрещает символы, которыми размечаются id папок и файлов
type NameValidator struct {
	maxLen int
}

func NewNameValidator() *NameValidator {
	return &NameValidator{maxLen: MaxUsernameLen}
}

func (v *NameValidator) ValidateUsername(username string) error {
	if len(username) < MinUsernameLen {
		return fmt.Errorf("%w: empty", ErrInvalidUsername)
	}
	if len(username) > v.maxLen {
		return fmt.Errorf("%w: must be at most %d bytes", ErrInvalidUsername, v.maxLen)
	}

	for _, r := range username {
		// '-' разделяет части id папки, ':' части id файла
		if r == '-' || r == ':' {
			return fmt.Errorf("%w: %q is reserved", ErrInvalidUsername, r)
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '.' && r != '@' {
			return fmt.Errorf("%w: only letters, digits, '_', '.', '@' are allowed", ErrInvalidUsername)
		}
	}
	return nil
}
