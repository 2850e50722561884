package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"wesync/internal/domain/file"
)

type FileRepository struct {
	s *Storage
}

func NewFileRepository(s *Storage) *FileRepository {
	return &FileRepository{s: s}
}

func (r *FileRepository) Save(ctx context.Context, record *file.Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal file: %w", err)
	}
	query := `
		INSERT INTO files (id, record) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET record = EXCLUDED.record
	`
	if _, err := r.s.pool.Exec(ctx, query, record.ID, data); err != nil {
		return fmt.Errorf("failed to save file: %w", err)
	}
	return nil
}

func (r *FileRepository) Get(ctx context.Context, id string) (*file.Record, error) {
	var data []byte
	err := r.s.pool.QueryRow(ctx, `SELECT record FROM files WHERE id = $1`, id).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, file.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	var record file.Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to parse file %s: %w", id, err)
	}
	return &record, nil
}
