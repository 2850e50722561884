package cached

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"

	"wesync/internal/domain/message"
)

var lookups = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "wesync",
	Subsystem: "message_cache",
	Name:      "lookups_total",
	Help:      "Message cache lookups by result",
}, []string{"result"})

func Collectors() []prometheus.Collector {
	return []prometheus.Collector{lookups}
}

// MessageRepository кэш последних сообщений поверх любого хранилища.
// Записи проходят сквозь кэш, чтение из хранилища заполняет его.
type MessageRepository struct {
	next  message.Repository
	cache *lru.Cache[string, message.Meta]
}

func NewMessageRepository(next message.Repository, size int) (*MessageRepository, error) {
	cache, err := lru.New[string, message.Meta](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create message cache: %w", err)
	}
	return &MessageRepository{next: next, cache: cache}, nil
}

func (r *MessageRepository) Get(ctx context.Context, id string) (*message.Meta, error) {
	if m, ok := r.cache.Get(id); ok {
		lookups.WithLabelValues("hit").Inc()
		return &m, nil
	}
	lookups.WithLabelValues("miss").Inc()

	m, err := r.next.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	r.cache.Add(id, *m)
	return m, nil
}

func (r *MessageRepository) Put(ctx context.Context, meta *message.Meta) error {
	if err := r.next.Put(ctx, meta); err != nil {
		r.cache.Remove(meta.ID)
		return err
	}
	r.cache.Add(meta.ID, *meta)
	return nil
}

func (r *MessageRepository) Delete(ctx context.Context, id string) error {
	r.cache.Remove(id)
	return r.next.Delete(ctx, id)
}

func (r *MessageRepository) Len() int {
	return r.cache.Len()
}
