package memory

import (
	"context"

	"wesync/internal/domain/message"

	"github.com/puzpuzpuz/xsync/v3"
)

// MessageRepository хранилище сообщений в памяти
type MessageRepository struct {
	messages *xsync.MapOf[string, *message.Meta]
}

func NewMessageRepository() *MessageRepository {
	return &MessageRepository{
		messages: xsync.NewMapOf[string, *message.Meta](),
	}
}

func (r *MessageRepository) Get(_ context.Context, id string) (*message.Meta, error) {
	m, ok := r.messages.Load(id)
	if !ok {
		return nil, message.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *MessageRepository) Put(_ context.Context, meta *message.Meta) error {
	cp := *meta
	r.messages.Store(meta.ID, &cp)
	return nil
}

func (r *MessageRepository) Delete(_ context.Context, id string) error {
	r.messages.Delete(id)
	return nil
}
