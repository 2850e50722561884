package command

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"wesync/internal/app/server/api/http/middleware/auth"
	"wesync/internal/domain/command"
	"wesync/internal/domain/file"
)

type MockProcessor struct {
	mock.Mock
}

func (m *MockProcessor) Handle(ctx context.Context, username string, v command.Version, c command.Command, body []byte) ([]byte, error) {
	args := m.Called(ctx, username, v, c, body)
	resp, _ := args.Get(0).([]byte)
	return resp, args.Error(1)
}

func TestHandler_Handle(t *testing.T) {
	authCtx := auth.WithUsername(context.Background(), "alice")

	t.Run("Success", func(t *testing.T) {
		// Arrange
		p := new(MockProcessor)
		h := NewHandler(p, slog.Default(), nil)
		body := []byte(`{"id":"alice-root-0","key":"0"}`)
		p.On("Handle", authCtx, "alice", command.V20, command.FolderSync, body).
			Return([]byte(`{"id":"alice-root-0"}`), nil)

		// Act
		out, err := h.handle(authCtx, &commandInput{Version: "2.0", Command: "folderSync", RawBody: body})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, out.Status)
		assert.Equal(t, "application/json", out.ContentType)
		assert.JSONEq(t, `{"id":"alice-root-0"}`, string(out.Body))
		p.AssertExpectations(t)
	})

	t.Run("NoResponse", func(t *testing.T) {
		p := new(MockProcessor)
		h := NewHandler(p, slog.Default(), nil)
		p.On("Handle", authCtx, "alice", command.V10, command.Provision, []byte(nil)).Return(nil, nil)

		out, err := h.handle(authCtx, &commandInput{Version: "1.0", Command: "provision"})

		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, out.Status)
		assert.Empty(t, out.Body)
	})

	t.Run("Unauthorized", func(t *testing.T) {
		p := new(MockProcessor)
		h := NewHandler(p, slog.Default(), nil)

		_, err := h.handle(context.Background(), &commandInput{Version: "2.0", Command: "sync"})

		assertStatus(t, err, http.StatusUnauthorized)
		p.AssertNotCalled(t, "Handle")
	})
}

func TestHandler_ErrorMapping(t *testing.T) {
	authCtx := auth.WithUsername(context.Background(), "alice")
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "malformed", err: fmt.Errorf("%w: bad json", command.ErrMalformedRequest), status: http.StatusBadRequest},
		{name: "denied", err: command.ErrPermissionDenied, status: http.StatusForbidden},
		{name: "foreign file id", err: command.ErrInvalidFileID, status: http.StatusForbidden},
		{name: "missing file", err: file.ErrNotFound, status: http.StatusNotFound},
		{name: "storage failure", err: errors.New("connection refused"), status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := new(MockProcessor)
			h := NewHandler(p, slog.Default(), nil)
			p.On("Handle", mock.Anything, "alice", command.V20, command.Sync, mock.Anything).Return(nil, tt.err)

			_, err := h.handle(authCtx, &commandInput{Version: "2.0", Command: "sync", RawBody: []byte(`{}`)})

			assertStatus(t, err, tt.status)
		})
	}
}

func assertStatus(t *testing.T, err error, status int) {
	t.Helper()
	var se huma.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, status, se.GetStatus())
}

func newRouter(p Processor) http.Handler {
	mux := chi.NewMux()
	api := humachi.New(mux, huma.DefaultConfig("test", "1.0.0"))
	mw := auth.New(api, slog.Default())
	NewHandler(p, slog.Default(), huma.Middlewares{mw.Middleware()}).SetupRoutes(api)
	return mux
}

func TestHandler_Router(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		body   string
		cmd    command.Command
		resp   []byte
		status int
	}{
		{
			name:   "json object body reaches processor",
			path:   "/api/wesync/2.0/folderCreate",
			body:   `{"user_chat_with":"juliet"}`,
			cmd:    command.FolderCreate,
			resp:   []byte(`{"folder_id":"romeo-conv-juliet"}`),
			status: http.StatusOK,
		},
		{
			name:   "empty response is 204",
			path:   "/api/wesync/1.0/provision",
			body:   `{}`,
			cmd:    command.Provision,
			status: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			p := new(MockProcessor)
			p.On("Handle", mock.Anything, "romeo", mock.Anything, tt.cmd, []byte(tt.body)).Return(tt.resp, nil)
			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Authorization", "Bearer romeo")
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			// Act
			newRouter(p).ServeHTTP(rec, req)

			// Assert
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.resp != nil {
				assert.JSONEq(t, string(tt.resp), rec.Body.String())
			}
			p.AssertExpectations(t)
		})
	}
}

func TestHandler_RouterUnauthorized(t *testing.T) {
	p := new(MockProcessor)
	req := httptest.NewRequest(http.MethodPost, "/api/wesync/2.0/sync", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	newRouter(p).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	p.AssertNotCalled(t, "Handle")
}
