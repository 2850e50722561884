package health

import (
	"context"
	"errors"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/exp/slog"
)

type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func TestHandler_healthCheck(t *testing.T) {
	tests := []struct {
		name           string
		pingErr        error
		expectedStatus string
		expectedError  string
	}{
		{
			name:           "health check returns OK",
			expectedStatus: "OK",
		},
		{
			name:           "storage down",
			pingErr:        errors.New("connection refused"),
			expectedStatus: "DEGRADED",
			expectedError:  "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			ctx := context.Background()
			storage := new(MockPinger)
			storage.On("Ping", ctx).Return(tt.pingErr)
			handler := NewHandler(storage, "pebble", slog.Default(), huma.Middlewares{})

			// Act
			output, err := handler.healthCheck(ctx, &Input{})

			// Assert
			assert.NoError(t, err)
			assert.NotNil(t, output)
			assert.Equal(t, tt.expectedStatus, output.Body.Status)
			assert.Equal(t, "pebble", output.Body.Storage)
			assert.Equal(t, tt.expectedError, output.Body.Error)
			storage.AssertExpectations(t)
		})
	}
}

func TestNewHandler(t *testing.T) {
	// Arrange
	log := slog.Default()
	middleware := huma.Middlewares{}

	// Act
	handler := NewHandler(nil, "memory", log, middleware)

	// Assert
	assert.NotNil(t, handler)
	assert.NotNil(t, handler.log)
	assert.NotNil(t, handler.middleware)

	output, err := handler.healthCheck(context.Background(), &Input{})
	assert.NoError(t, err)
	assert.Equal(t, "OK", output.Body.Status)
	assert.Positive(t, output.Body.Time)
}
