package pebble

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/pebble"

	"wesync/internal/domain/file"
)

type FileRepository struct {
	s *Storage
}

func NewFileRepository(s *Storage) *FileRepository {
	return &FileRepository{s: s}
}

func (r *FileRepository) Save(_ context.Context, record *file.Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode file: %w", err)
	}
	if err := r.s.db.Set(fileKey(record.ID), data, pebble.Sync); err != nil {
		return fmt.Errorf("failed to store file: %w", err)
	}
	return nil
}

func (r *FileRepository) Get(_ context.Context, id string) (*file.Record, error) {
	val, ok, err := r.s.get(fileKey(id))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if !ok {
		return nil, file.ErrNotFound
	}
	var record file.Record
	if err := json.Unmarshal(val, &record); err != nil {
		return nil, fmt.Errorf("failed to decode file %s: %w", id, err)
	}
	return &record, nil
}
