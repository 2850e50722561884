package pebble

import (
	"context"
	"fmt"

	"github.com/cockroachdb/pebble"

	"wesync/internal/domain/folder"
)

// FolderRepository папки поверх pebble. Чтения идут через итератор и видят
// согласованный срез, изменения одной папки сериализуются и пишутся одним батчем.
type FolderRepository struct {
	s *Storage
}

func NewFolderRepository(s *Storage) *FolderRepository {
	return &FolderRepository{s: s}
}

func (r *FolderRepository) commit(fn func(b *pebble.Batch) error) error {
	b := r.s.db.NewBatch()
	defer b.Close()
	if err := fn(b); err != nil {
		return err
	}
	return b.Commit(pebble.Sync)
}

// ensure добавляет в батч создание папки, если ее еще нет
func (r *FolderRepository) ensure(b *pebble.Batch, folderID string) error {
	_, ok, err := r.s.get(folderKey(folderID))
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	if err := b.Set(folderKey(folderID), nil, nil); err != nil {
		return err
	}
	// счетчик удаленной папки остается на месте
	_, kept, err := r.s.get(counterKey(folderID))
	if err != nil || kept {
		return err
	}
	return b.Set(counterKey(folderID), encodeCounter(0), nil)
}

func (r *FolderRepository) CreateFolder(_ context.Context, folderID string) error {
	defer r.s.lock(folderID)()
	err := r.commit(func(b *pebble.Batch) error {
		return r.ensure(b, folderID)
	})
	if err != nil {
		return fmt.Errorf("failed to create folder: %w", err)
	}
	return nil
}

func (r *FolderRepository) DestroyFolder(_ context.Context, folderID string) error {
	defer r.s.lock(folderID)()
	err := r.commit(func(b *pebble.Batch) error {
		if err := b.Delete(folderKey(folderID), nil); err != nil {
			return err
		}
		for _, prefix := range [][]byte{childPrefix(folderID), indexPrefix(folderID), changePrefix(folderID)} {
			if err := b.DeleteRange(prefix, prefixEnd(prefix), nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to destroy folder: %w", err)
	}
	return nil
}

func (r *FolderRepository) FolderExists(_ context.Context, folderID string) (bool, error) {
	_, ok, err := r.s.get(folderKey(folderID))
	if err != nil {
		return false, fmt.Errorf("failed to check folder: %w", err)
	}
	return ok, nil
}

func (r *FolderRepository) Counter(_ context.Context, folderID string) (int64, error) {
	_, exists, err := r.s.get(folderKey(folderID))
	if err != nil {
		return 0, fmt.Errorf("failed to read counter: %w", err)
	}
	if !exists {
		return -1, nil
	}
	val, _, err := r.s.get(counterKey(folderID))
	if err != nil {
		return 0, fmt.Errorf("failed to read counter: %w", err)
	}
	return decodeCounter(val), nil
}

func (r *FolderRepository) IncrementCounter(_ context.Context, folderID string) (int64, error) {
	defer r.s.lock(folderID)()

	val, _, err := r.s.get(counterKey(folderID))
	if err != nil {
		return 0, fmt.Errorf("failed to read counter: %w", err)
	}
	next := decodeCounter(val) + 1
	err = r.commit(func(b *pebble.Batch) error {
		if err := b.Set(folderKey(folderID), nil, nil); err != nil {
			return err
		}
		return b.Set(counterKey(folderID), encodeCounter(next), nil)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to increment counter: %w", err)
	}
	return next, nil
}

// Журнал изменений

func (r *FolderRepository) loadChanges(folderID string) ([]folder.Change, error) {
	var out []folder.Change
	err := r.s.scan(changePrefix(folderID), func(key, val []byte) bool {
		out = append(out, decodeChange(key, val))
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read changes: %w", err)
	}
	return out, nil
}

func (r *FolderRepository) Changes(_ context.Context, folderID string) ([]folder.Change, error) {
	return r.loadChanges(folderID)
}

func (r *FolderRepository) ChangesRange(_ context.Context, folderID string, begin, end int) ([]folder.Change, error) {
	all, err := r.loadChanges(folderID)
	if err != nil {
		return nil, err
	}
	return folder.Window(all, begin, end), nil
}

func (r *FolderRepository) ChangesAfter(_ context.Context, folderID string, anchor folder.Change, n int) ([]folder.Change, error) {
	var out []folder.Change
	err := r.s.forward(changePrefix(folderID), successor(changeKey(folderID, anchor)), n, func(key, val []byte) {
		out = append(out, decodeChange(key, val))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read changes: %w", err)
	}
	return out, nil
}

func (r *FolderRepository) ChangesBefore(_ context.Context, folderID string, anchor folder.Change, n int) ([]folder.Change, error) {
	var out []folder.Change
	err := r.s.backward(changePrefix(folderID), changeKey(folderID, anchor), n, func(key, val []byte) {
		out = append(out, decodeChange(key, val))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read changes: %w", err)
	}
	reverse(out)
	return out, nil
}

func (r *FolderRepository) CountChanges(_ context.Context, folderID string) (int, error) {
	n, err := r.s.count(changePrefix(folderID))
	if err != nil {
		return 0, fmt.Errorf("failed to count changes: %w", err)
	}
	return n, nil
}

func (r *FolderRepository) AddChange(_ context.Context, folderID string, c folder.Change) error {
	defer r.s.lock(folderID)()

	key := changeKey(folderID, c)
	_, ok, err := r.s.get(key)
	if err != nil {
		return fmt.Errorf("failed to read change: %w", err)
	}
	if ok {
		return nil
	}
	err = r.commit(func(b *pebble.Batch) error {
		if err := r.ensure(b, folderID); err != nil {
			return err
		}
		return b.Set(key, []byte(c.ChildID), nil)
	})
	if err != nil {
		return fmt.Errorf("failed to add change: %w", err)
	}
	return nil
}

func (r *FolderRepository) RemoveChange(_ context.Context, folderID string, c folder.Change) (bool, error) {
	defer r.s.lock(folderID)()

	key := changeKey(folderID, c)
	_, ok, err := r.s.get(key)
	if err != nil || !ok {
		return false, err
	}
	if err := r.s.db.Delete(key, pebble.Sync); err != nil {
		return false, fmt.Errorf("failed to remove change: %w", err)
	}
	return true, nil
}

func (r *FolderRepository) RemoveFirstChanges(_ context.Context, folderID string, n int) error {
	if n <= 0 {
		return nil
	}
	defer r.s.lock(folderID)()

	keys, err := r.s.firstKeys(changePrefix(folderID), n)
	if err != nil {
		return fmt.Errorf("failed to read changes: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	err = r.commit(func(b *pebble.Batch) error {
		return b.DeleteRange(changePrefix(folderID), successor(keys[len(keys)-1]), nil)
	})
	if err != nil {
		return fmt.Errorf("failed to remove changes: %w", err)
	}
	return nil
}

func (r *FolderRepository) RemoveChangesThrough(_ context.Context, folderID string, anchor folder.Change) error {
	defer r.s.lock(folderID)()
	err := r.commit(func(b *pebble.Batch) error {
		return b.DeleteRange(changePrefix(folderID), successor(changeKey(folderID, anchor)), nil)
	})
	if err != nil {
		return fmt.Errorf("failed to remove changes: %w", err)
	}
	return nil
}

func (r *FolderRepository) ClearChanges(_ context.Context, folderID string) ([]folder.Change, error) {
	defer r.s.lock(folderID)()

	removed, err := r.loadChanges(folderID)
	if err != nil || len(removed) == 0 {
		return removed, err
	}
	prefix := changePrefix(folderID)
	err = r.commit(func(b *pebble.Batch) error {
		return b.DeleteRange(prefix, prefixEnd(prefix), nil)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to clear changes: %w", err)
	}
	return removed, nil
}

// Дети

func (r *FolderRepository) loadChildren(folderID string) ([]folder.Child, error) {
	prefix := childPrefix(folderID)
	var out []folder.Child
	err := r.s.scan(prefix, func(key, _ []byte) bool {
		out = append(out, decodeChild(len(prefix), key))
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read children: %w", err)
	}
	return out, nil
}

func (r *FolderRepository) Children(_ context.Context, folderID string) ([]folder.Child, error) {
	return r.loadChildren(folderID)
}

func (r *FolderRepository) ChildrenRange(_ context.Context, folderID string, begin, end int) ([]folder.Child, error) {
	all, err := r.loadChildren(folderID)
	if err != nil {
		return nil, err
	}
	return folder.Window(all, begin, end), nil
}

func (r *FolderRepository) ChildrenAfter(_ context.Context, folderID string, childID string, n int) ([]folder.Child, error) {
	anchor, ok, err := r.locate(folderID, childID)
	if err != nil || !ok {
		return nil, err
	}
	prefix := childPrefix(folderID)
	var out []folder.Child
	err = r.s.forward(prefix, successor(childKey(folderID, anchor)), n, func(key, _ []byte) {
		out = append(out, decodeChild(len(prefix), key))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read children: %w", err)
	}
	return out, nil
}

func (r *FolderRepository) ChildrenBefore(_ context.Context, folderID string, childID string, n int) ([]folder.Child, error) {
	anchor, ok, err := r.locate(folderID, childID)
	if err != nil || !ok {
		return nil, err
	}
	prefix := childPrefix(folderID)
	var out []folder.Child
	err = r.s.backward(prefix, childKey(folderID, anchor), n, func(key, _ []byte) {
		out = append(out, decodeChild(len(prefix), key))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read children: %w", err)
	}
	reverse(out)
	return out, nil
}

func (r *FolderRepository) CountChildren(_ context.Context, folderID string) (int, error) {
	n, err := r.s.count(childPrefix(folderID))
	if err != nil {
		return 0, fmt.Errorf("failed to count children: %w", err)
	}
	return n, nil
}

func (r *FolderRepository) AddChild(_ context.Context, folderID string, c folder.Child) error {
	defer r.s.lock(folderID)()

	old, exists, err := r.score(folderID, c.ID)
	if err != nil {
		return err
	}
	if exists && (folder.TypeOf(folderID) == folder.Root || old == c.Score) {
		return nil
	}
	err = r.commit(func(b *pebble.Batch) error {
		if err := r.ensure(b, folderID); err != nil {
			return err
		}
		if exists {
			if err := b.Delete(childKey(folderID, folder.Child{ID: c.ID, Score: old}), nil); err != nil {
				return err
			}
		}
		if err := b.Set(childKey(folderID, c), nil, nil); err != nil {
			return err
		}
		return b.Set(indexKey(folderID, c.ID), encodeScore(nil, c.Score), nil)
	})
	if err != nil {
		return fmt.Errorf("failed to add child: %w", err)
	}
	return nil
}

func (r *FolderRepository) RemoveChild(_ context.Context, folderID string, childID string) (bool, error) {
	defer r.s.lock(folderID)()

	score, exists, err := r.score(folderID, childID)
	if err != nil || !exists {
		return false, err
	}
	err = r.commit(func(b *pebble.Batch) error {
		if err := b.Delete(childKey(folderID, folder.Child{ID: childID, Score: score}), nil); err != nil {
			return err
		}
		return b.Delete(indexKey(folderID, childID), nil)
	})
	if err != nil {
		return false, fmt.Errorf("failed to remove child: %w", err)
	}
	return true, nil
}

func (r *FolderRepository) RemoveFirstChildren(_ context.Context, folderID string, n int) error {
	if n <= 0 {
		return nil
	}
	defer r.s.lock(folderID)()

	prefix := childPrefix(folderID)
	keys, err := r.s.firstKeys(prefix, n)
	if err != nil {
		return fmt.Errorf("failed to read children: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	err = r.commit(func(b *pebble.Batch) error {
		for _, key := range keys {
			c := decodeChild(len(prefix), key)
			if err := b.Delete(indexKey(folderID, c.ID), nil); err != nil {
				return err
			}
		}
		return b.DeleteRange(prefix, successor(keys[len(keys)-1]), nil)
	})
	if err != nil {
		return fmt.Errorf("failed to remove children: %w", err)
	}
	return nil
}

func (r *FolderRepository) ClearChildren(_ context.Context, folderID string) error {
	defer r.s.lock(folderID)()
	err := r.commit(func(b *pebble.Batch) error {
		for _, prefix := range [][]byte{childPrefix(folderID), indexPrefix(folderID)} {
			if err := b.DeleteRange(prefix, prefixEnd(prefix), nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to clear children: %w", err)
	}
	return nil
}

func (r *FolderRepository) IsChild(_ context.Context, folderID string, childID string) (bool, error) {
	_, ok, err := r.score(folderID, childID)
	return ok, err
}

func (r *FolderRepository) score(folderID, childID string) (int64, bool, error) {
	val, ok, err := r.s.get(indexKey(folderID, childID))
	if err != nil {
		return 0, false, fmt.Errorf("failed to read child index: %w", err)
	}
	if !ok || len(val) < 8 {
		return 0, false, nil
	}
	return decodeScore(val), true, nil
}

// locate якорь по id: известный ребенок или числовой id как score
func (r *FolderRepository) locate(folderID, childID string) (folder.Child, bool, error) {
	score, ok, err := r.score(folderID, childID)
	if err != nil {
		return folder.Child{}, false, err
	}
	if ok {
		return folder.Child{ID: childID, Score: score}, true, nil
	}
	c, ok := folder.AnchorChild(childID)
	return c, ok, nil
}

func reverse[T any](items []T) {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
}
