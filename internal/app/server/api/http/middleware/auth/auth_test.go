package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/slog"

	"wesync/internal/domain/user"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		expected string
		ok       bool
	}{
		{name: "bearer username", header: "Bearer alice", expected: "alice", ok: true},
		{name: "trailing spaces", header: "Bearer bob  ", expected: "bob", ok: true},
		{name: "empty", header: "", ok: false},
		{name: "no username", header: "Bearer ", ok: false},
		{name: "basic scheme", header: "Basic YWxpY2U=", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			username, ok := Parse(tt.header)

			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, username)
		})
	}
}

func TestHandler(t *testing.T) {
	a := New(nil, slog.Default())
	var seen string
	h := a.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = GetUsername(r.Context())
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/notices", nil)
	req.Header.Set("Authorization", "Bearer carol")
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "carol", seen)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/notices", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetUsername(t *testing.T) {
	_, ok := GetUsername(context.Background())
	assert.False(t, ok)

	username, ok := GetUsername(WithUsername(context.Background(), "dave"))
	assert.True(t, ok)
	assert.Equal(t, "dave", username)
}

func TestHandler_Validator(t *testing.T) {
	a := New(nil, slog.Default(), WithValidator(user.NewNameValidator()))
	h := a.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	tests := []struct {
		name     string
		username string
		expected int
	}{
		{name: "plain name", username: "erin", expected: http.StatusOK},
		{name: "folder separator", username: "erin-conv-frank", expected: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/notices", nil)
			req.Header.Set("Authorization", "Bearer "+tt.username)

			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.expected, rec.Code)
		})
	}
}
