package user

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameValidator_ValidateUsername(t *testing.T) {
	validator := NewNameValidator()

	tests := []struct {
		name        string
		username    string
		wantErr     bool
		expectedErr string
	}{
		{
			name:     "valid username",
			username: "romeo",
			wantErr:  false,
		},
		{
			name:     "email like",
			username: "juliet.capulet@verona",
			wantErr:  false,
		},
		{
			name:     "unicode letters",
			username: "ромео_1",
			wantErr:  false,
		},
		{
			name:        "empty",
			username:    "",
			wantErr:     true,
			expectedErr: "invalid username: empty",
		},
		{
			name:        "too long",
			username:    strings.Repeat("a", 65),
			wantErr:     true,
			expectedErr: "invalid username: must be at most 64 bytes",
		},
		{
			name:        "folder separator",
			username:    "romeo-montague",
			wantErr:     true,
			expectedErr: "invalid username: '-' is reserved",
		},
		{
			name:        "file separator",
			username:    "romeo:juliet",
			wantErr:     true,
			expectedErr: "invalid username: ':' is reserved",
		},
		{
			name:        "space",
			username:    "friar lawrence",
			wantErr:     true,
			expectedErr: "invalid username: only letters, digits, '_', '.', '@' are allowed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateUsername(tt.username)

			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidUsername)
				assert.Equal(t, tt.expectedErr, err.Error())
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
