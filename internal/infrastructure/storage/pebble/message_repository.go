package pebble

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/pebble"

	"wesync/internal/domain/message"
)

// MessageRepository сообщения по id в JSON
type MessageRepository struct {
	s *Storage
}

func NewMessageRepository(s *Storage) *MessageRepository {
	return &MessageRepository{s: s}
}

func (r *MessageRepository) Get(_ context.Context, id string) (*message.Meta, error) {
	val, ok, err := r.s.get(messageKey(id))
	if err != nil {
		return nil, fmt.Errorf("failed to read message: %w", err)
	}
	if !ok {
		return nil, message.ErrNotFound
	}
	var m message.Meta
	if err := json.Unmarshal(val, &m); err != nil {
		return nil, fmt.Errorf("failed to decode message %s: %w", id, err)
	}
	return &m, nil
}

func (r *MessageRepository) Put(_ context.Context, meta *message.Meta) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}
	if err := r.s.db.Set(messageKey(meta.ID), data, pebble.Sync); err != nil {
		return fmt.Errorf("failed to store message: %w", err)
	}
	return nil
}

func (r *MessageRepository) Delete(_ context.Context, id string) error {
	if err := r.s.db.Delete(messageKey(id), pebble.Sync); err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}
