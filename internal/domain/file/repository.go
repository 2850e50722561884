package file

import "context"

// Repository постоянное хранилище собранных файлов
type Repository interface {
	Save(ctx context.Context, record *Record) error
	Get(ctx context.Context, id string) (*Record, error)
}
