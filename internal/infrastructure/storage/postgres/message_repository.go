package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"wesync/internal/domain/message"
)

// MessageRepository сообщения в таблице messages, тело в JSONB
type MessageRepository struct {
	s *Storage
}

func NewMessageRepository(s *Storage) *MessageRepository {
	return &MessageRepository{s: s}
}

func (r *MessageRepository) Get(ctx context.Context, id string) (*message.Meta, error) {
	var data []byte
	err := r.s.pool.QueryRow(ctx, `SELECT meta FROM messages WHERE id = $1`, id).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, message.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	var m message.Meta
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse message %s: %w", id, err)
	}
	return &m, nil
}

func (r *MessageRepository) Put(ctx context.Context, meta *message.Meta) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	query := `
		INSERT INTO messages (id, meta) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET meta = EXCLUDED.meta
	`
	if _, err := r.s.pool.Exec(ctx, query, meta.ID, data); err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}
	return nil
}

func (r *MessageRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.s.pool.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}
