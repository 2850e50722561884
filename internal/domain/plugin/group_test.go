package plugin

import (
	"context"
	"encoding/json"
	"testing"

	"wesync/internal/domain/mailbox"
	"wesync/internal/domain/message"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

const groupID = "G$romeo$1"

// MockMailbox is a mock implementation of the group mailbox for testing
type MockMailbox struct {
	mock.Mock
}

func (m *MockMailbox) IsMember(ctx context.Context, groupID, user string) (bool, error) {
	args := m.Called(ctx, groupID, user)
	return args.Bool(0), args.Error(1)
}

func (m *MockMailbox) AddMember(ctx context.Context, groupID, user string) error {
	return m.Called(ctx, groupID, user).Error(0)
}

func (m *MockMailbox) RemoveMember(ctx context.Context, groupID, user string) error {
	return m.Called(ctx, groupID, user).Error(0)
}

func (m *MockMailbox) BroadcastMemberChange(ctx context.Context, groupID string, op mailbox.GroupOperation, user string) error {
	return m.Called(ctx, groupID, op, user).Error(0)
}

func operation(t *testing.T, op mailbox.GroupOperation, user string) *message.Meta {
	t.Helper()
	content, err := json.Marshal(GroupOperationRequest{Type: byte(op), GroupID: groupID, Username: user})
	require.NoError(t, err)
	return &message.Meta{ID: "op-1", To: GroupName, Type: message.TypeOperation, Content: content}
}

func TestGroup_Handle(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		req      func(t *testing.T) *message.Meta
		setup    func(m *MockMailbox)
		wantErr  error
		expected *message.Meta
	}{
		{
			name: "add member",
			req:  func(t *testing.T) *message.Meta { return operation(t, mailbox.OperationAddMember, "lawrence") },
			setup: func(m *MockMailbox) {
				m.On("IsMember", ctx, groupID, "romeo").Return(true, nil)
				m.On("AddMember", ctx, groupID, "lawrence").Return(nil)
				m.On("BroadcastMemberChange", ctx, groupID, mailbox.OperationAddMember, "lawrence").Return(nil)
			},
			expected: &message.Meta{ID: "op-1", Type: message.TypeOperation},
		},
		{
			name: "remove member",
			req:  func(t *testing.T) *message.Meta { return operation(t, mailbox.OperationRemoveMember, "juliet") },
			setup: func(m *MockMailbox) {
				m.On("IsMember", ctx, groupID, "romeo").Return(true, nil)
				m.On("RemoveMember", ctx, groupID, "juliet").Return(nil)
				m.On("BroadcastMemberChange", ctx, groupID, mailbox.OperationRemoveMember, "juliet").Return(nil)
			},
			expected: &message.Meta{ID: "op-1", Type: message.TypeOperation},
		},
		{
			name: "quit group uses caller",
			req:  func(t *testing.T) *message.Meta { return operation(t, mailbox.OperationQuitGroup, "juliet") },
			setup: func(m *MockMailbox) {
				m.On("IsMember", ctx, groupID, "romeo").Return(true, nil)
				m.On("RemoveMember", ctx, groupID, "romeo").Return(nil)
				m.On("BroadcastMemberChange", ctx, groupID, mailbox.OperationQuitGroup, "romeo").Return(nil)
			},
			expected: &message.Meta{ID: "op-1", Type: message.TypeOperation},
		},
		{
			name: "non member rejected",
			req:  func(t *testing.T) *message.Meta { return operation(t, mailbox.OperationAddMember, "lawrence") },
			setup: func(m *MockMailbox) {
				m.On("IsMember", ctx, groupID, "romeo").Return(false, nil)
			},
			wantErr: ErrNotMember,
		},
		{
			name: "unknown operation",
			req:  func(t *testing.T) *message.Meta { return operation(t, mailbox.OperationUnknown, "lawrence") },
			setup: func(m *MockMailbox) {
				m.On("IsMember", ctx, groupID, "romeo").Return(true, nil)
			},
			wantErr: ErrInvalidOperation,
		},
		{
			name: "garbage content",
			req: func(t *testing.T) *message.Meta {
				return &message.Meta{To: GroupName, Type: message.TypeOperation, Content: []byte("{")}
			},
			setup:   func(m *MockMailbox) {},
			wantErr: ErrInvalidOperation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			mb := new(MockMailbox)
			tt.setup(mb)
			g := NewGroup(mb, slog.Default())

			// Act
			resp, err := g.Handle(ctx, "romeo", tt.req(t))

			// Assert
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, resp)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, resp)
			}
			mb.AssertExpectations(t)
		})
	}
}

func TestManager_Handle(t *testing.T) {
	ctx := context.Background()
	manager := NewManager(slog.Default())

	require.NoError(t, manager.Register(Null{PluginName: "echo"}))
	assert.ErrorIs(t, manager.Register(Null{PluginName: "echo"}), ErrAlreadyRegistered)
	assert.True(t, manager.IsRegistered("echo"))

	mb := new(MockMailbox)
	mb.On("IsMember", ctx, groupID, "romeo").Return(false, nil)
	require.NoError(t, manager.Register(NewGroup(mb, slog.Default())))

	t.Run("unregistered target", func(t *testing.T) {
		resp, err := manager.Handle(ctx, "romeo", &message.Meta{To: "weather"})
		require.NoError(t, err)
		assert.Nil(t, resp)
	})

	t.Run("missing target", func(t *testing.T) {
		resp, err := manager.Handle(ctx, "romeo", &message.Meta{})
		require.NoError(t, err)
		assert.Nil(t, resp)
	})

	t.Run("routes by target", func(t *testing.T) {
		_, err := manager.Handle(ctx, "romeo", operation(t, mailbox.OperationAddMember, "lawrence"))
		assert.ErrorIs(t, err, ErrNotMember)
	})
}
