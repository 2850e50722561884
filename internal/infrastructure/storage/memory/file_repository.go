package memory

import (
	"context"

	"wesync/internal/domain/file"

	"github.com/puzpuzpuz/xsync/v3"
)

// FileRepository хранилище собранных файлов в памяти
type FileRepository struct {
	files *xsync.MapOf[string, *file.Record]
}

func NewFileRepository() *FileRepository {
	return &FileRepository{
		files: xsync.NewMapOf[string, *file.Record](),
	}
}

func (r *FileRepository) Save(_ context.Context, record *file.Record) error {
	r.files.Store(record.ID, record)
	return nil
}

func (r *FileRepository) Get(_ context.Context, id string) (*file.Record, error) {
	record, ok := r.files.Load(id)
	if !ok {
		return nil, file.ErrNotFound
	}
	return record, nil
}
