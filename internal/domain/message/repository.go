package message

import "context"

// Repository хранилище сообщений по id
type Repository interface {
	Get(ctx context.Context, id string) (*Meta, error)
	Put(ctx context.Context, meta *Meta) error
	Delete(ctx context.Context, id string) error
}
