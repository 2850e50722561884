package pebble

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/puzpuzpuz/xsync/v3"
)

var ErrClosed = errors.New("storage is closed")

// Storage встроенное упорядоченное хранилище на pebble. Папки, сообщения и
// файлы живут в одной базе под разными префиксами ключей.
type Storage struct {
	db    *pebble.DB
	locks *xsync.MapOf[string, *sync.Mutex]
}

type options struct {
	fs vfs.FS
}

type Option func(*options)

// WithFS подменяет файловую систему, например vfs.NewMem() в тестах
func WithFS(fs vfs.FS) Option {
	return func(o *options) {
		o.fs = fs
	}
}

func Open(path string, opts ...Option) (*Storage, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	pebbleOpts := &pebble.Options{}
	if o.fs != nil {
		pebbleOpts.FS = o.fs
	}
	db, err := pebble.Open(path, pebbleOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble at %s: %w", path, err)
	}

	return &Storage{
		db:    db,
		locks: xsync.NewMapOf[string, *sync.Mutex](),
	}, nil
}

func (s *Storage) Close() error {
	if s.db == nil {
		return ErrClosed
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// DB нужен коллектору метрик
func (s *Storage) DB() *pebble.DB {
	return s.db
}

// lock сериализует изменения одной папки
func (s *Storage) lock(folderID string) func() {
	mu, _ := s.locks.LoadOrCompute(folderID, func() *sync.Mutex {
		return &sync.Mutex{}
	})
	mu.Lock()
	return mu.Unlock
}

func (s *Storage) get(key []byte) ([]byte, bool, error) {
	val, closer, err := s.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	defer closer.Close()
	out := make([]byte, len(val))
	copy(out, val)
	return out, true, nil
}

// scan обходит ключи с префиксом по возрастанию, fn возвращает false для остановки
func (s *Storage) scan(prefix []byte, fn func(key, val []byte) bool) error {
	it, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixEnd(prefix),
	})
	if err != nil {
		return err
	}
	defer it.Close()

	for valid := it.First(); valid; valid = it.Next() {
		if !fn(it.Key(), it.Value()) {
			break
		}
	}
	return it.Error()
}

// forward до n записей начиная с первого ключа >= start
func (s *Storage) forward(prefix, start []byte, n int, fn func(key, val []byte)) error {
	if n <= 0 {
		return nil
	}
	it, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixEnd(prefix),
	})
	if err != nil {
		return err
	}
	defer it.Close()

	for valid := it.SeekGE(start); valid && n > 0; valid = it.Next() {
		fn(clone(it.Key()), clone(it.Value()))
		n--
	}
	return it.Error()
}

// backward до n записей строго перед end, от ближайшей к дальней
func (s *Storage) backward(prefix, end []byte, n int, fn func(key, val []byte)) error {
	if n <= 0 {
		return nil
	}
	it, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixEnd(prefix),
	})
	if err != nil {
		return err
	}
	defer it.Close()

	for valid := it.SeekLT(end); valid && n > 0; valid = it.Prev() {
		fn(clone(it.Key()), clone(it.Value()))
		n--
	}
	return it.Error()
}

func (s *Storage) count(prefix []byte) (int, error) {
	n := 0
	err := s.scan(prefix, func(_, _ []byte) bool {
		n++
		return true
	})
	return n, err
}

func (s *Storage) firstKeys(prefix []byte, n int) ([][]byte, error) {
	var keys [][]byte
	err := s.forward(prefix, prefix, n, func(key, _ []byte) {
		keys = append(keys, key)
	})
	return keys, err
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func (s *Storage) Ping(context.Context) error {
	if s.db == nil {
		return ErrClosed
	}
	return nil
}
