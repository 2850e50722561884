package file

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/exp/slog"
)

// MockRepository is a mock implementation of the Repository interface for testing
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Save(ctx context.Context, record *Record) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockRepository) Get(ctx context.Context, id string) (*Record, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Record), args.Error(1)
}

func TestService_Ingest(t *testing.T) {
	ctx := context.Background()
	id := ID("juliet", "romeo", "photo-1")

	t.Run("partial upload keeps buffer", func(t *testing.T) {
		// Arrange
		repo := new(MockRepository)
		service := NewService(repo, slog.Default(), nil)

		// Act
		result, err := service.Ingest(ctx, &File{ID: id, Slices: fullSlices(10)[:5]})

		// Assert
		require.NoError(t, err)
		assert.False(t, result.Complete)
		assert.False(t, result.NearComplete)
		assert.Equal(t, []int{6, 7, 8, 9, 10}, result.Missing)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)

		buffered, err := service.ByID(ctx, id)
		require.NoError(t, err)
		assert.Len(t, buffered.Slices, 5)
	})

	t.Run("near complete flag", func(t *testing.T) {
		repo := new(MockRepository)
		service := NewService(repo, slog.Default(), nil)

		result, err := service.Ingest(ctx, &File{ID: id, Slices: fullSlices(10)[:9]})

		require.NoError(t, err)
		assert.True(t, result.NearComplete)
		assert.Equal(t, []int{10}, result.Missing)
	})

	t.Run("completion across calls persists deduplicated file", func(t *testing.T) {
		// Arrange
		repo := new(MockRepository)
		service := NewService(repo, slog.Default(), nil)
		slices := fullSlices(4)
		expectedDigest := blake2b.Sum256([]byte{1, 2, 3, 4})

		repo.On("Save", ctx, mock.MatchedBy(func(r *Record) bool {
			return r.ID == id && r.Limit == 4 && len(r.Slices) == 4 && assert.ObjectsAreEqual(expectedDigest[:], r.Digest)
		})).Return(nil).Once()
		repo.On("Get", ctx, id).Return(&Record{ID: id, Limit: 4, Slices: slices}, nil)

		// Act
		first, err := service.Ingest(ctx, &File{ID: id, Slices: []Slice{slices[3], slices[0], slices[0]}})
		require.NoError(t, err)
		second, err := service.Ingest(ctx, &File{ID: id, Slices: []Slice{slices[1], slices[2]}})
		require.NoError(t, err)

		// Assert
		assert.False(t, first.Complete)
		assert.Equal(t, []int{2, 3}, first.Missing)
		assert.True(t, second.Complete)
		assert.Empty(t, second.Missing)

		stored, err := service.ByIndex(ctx, id, []int{2, 4})
		require.NoError(t, err)
		assert.Len(t, stored.Slices, 2)
		repo.AssertExpectations(t)
	})

	t.Run("stray indices stay out of persisted payload", func(t *testing.T) {
		// Arrange
		repo := new(MockRepository)
		service := NewService(repo, slog.Default(), nil)
		slices := fullSlices(3)
		stray := []Slice{{Index: 0, Limit: 3, Data: []byte{9}}, {Index: -2, Limit: 3, Data: []byte{8}}}
		expectedDigest := blake2b.Sum256([]byte{1, 2, 3})

		repo.On("Save", ctx, mock.MatchedBy(func(r *Record) bool {
			return len(r.Slices) == 3 && r.Slices[0].Index == 1 && assert.ObjectsAreEqual(expectedDigest[:], r.Digest)
		})).Return(nil).Once()

		// Act
		result, err := service.Ingest(ctx, &File{ID: id, Slices: append(stray, slices...)})

		// Assert
		require.NoError(t, err)
		assert.True(t, result.Complete)
		repo.AssertExpectations(t)
	})

	t.Run("save failure keeps slices", func(t *testing.T) {
		repo := new(MockRepository)
		service := NewService(repo, slog.Default(), nil)
		repo.On("Save", ctx, mock.Anything).Return(errors.New("disk full"))

		_, err := service.Ingest(ctx, &File{ID: id, Slices: fullSlices(2)})

		assert.Error(t, err)
		buffered, err := service.ByID(ctx, id)
		require.NoError(t, err)
		assert.Len(t, buffered.Slices, 2)
	})

	t.Run("invalid input", func(t *testing.T) {
		service := NewService(new(MockRepository), slog.Default(), nil)

		_, err := service.Ingest(ctx, &File{Slices: fullSlices(1)})
		assert.ErrorIs(t, err, ErrInvalidFileID)

		_, err = service.Ingest(ctx, &File{ID: id})
		assert.ErrorIs(t, err, ErrEmptyUpload)
	})
}

func TestService_ByID_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	service := NewService(repo, slog.Default(), nil)
	repo.On("Get", ctx, "missing").Return(nil, ErrNotFound)

	_, err := service.ByID(ctx, "missing")

	assert.ErrorIs(t, err, ErrNotFound)
}
