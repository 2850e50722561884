package memory

import (
	"context"
	"sync"

	"wesync/internal/domain/folder"

	"github.com/puzpuzpuz/xsync/v3"
)

// folderState состояние одной папки. Каждая папка блокируется независимо.
type folderState struct {
	mu       sync.RWMutex
	root     bool
	counter  int64
	children []folder.Child
	scores   map[string]int64
	changes  []folder.Change
}

func newFolderState(folderID string) *folderState {
	return &folderState{
		root:   folder.TypeOf(folderID) == folder.Root,
		scores: make(map[string]int64),
	}
}

// FolderRepository хранилище папок в памяти. Счетчик удаленной папки
// сохраняется, чтобы пересозданная папка не выдала уже занятые id.
type FolderRepository struct {
	folders    *xsync.MapOf[string, *folderState]
	tombstones *xsync.MapOf[string, int64]
}

// NewFolderRepository создает пустое хранилище папок
func NewFolderRepository() *FolderRepository {
	return &FolderRepository{
		folders:    xsync.NewMapOf[string, *folderState](),
		tombstones: xsync.NewMapOf[string, int64](),
	}
}

func (r *FolderRepository) get(folderID string) (*folderState, bool) {
	return r.folders.Load(folderID)
}

func (r *FolderRepository) ensure(folderID string) *folderState {
	st, _ := r.folders.LoadOrCompute(folderID, func() *folderState {
		st := newFolderState(folderID)
		st.counter, _ = r.tombstones.Load(folderID)
		return st
	})
	return st
}

func (r *FolderRepository) CreateFolder(_ context.Context, folderID string) error {
	r.ensure(folderID)
	return nil
}

func (r *FolderRepository) DestroyFolder(_ context.Context, folderID string) error {
	st, ok := r.folders.LoadAndDelete(folderID)
	if !ok {
		return nil
	}
	st.mu.RLock()
	counter := st.counter
	st.mu.RUnlock()
	r.tombstones.Store(folderID, counter)
	return nil
}

func (r *FolderRepository) FolderExists(_ context.Context, folderID string) (bool, error) {
	_, ok := r.get(folderID)
	return ok, nil
}

func (r *FolderRepository) Counter(_ context.Context, folderID string) (int64, error) {
	st, ok := r.get(folderID)
	if !ok {
		return -1, nil
	}
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.counter, nil
}

func (r *FolderRepository) IncrementCounter(_ context.Context, folderID string) (int64, error) {
	st := r.ensure(folderID)
	st.mu.Lock()
	defer st.mu.Unlock()
	st.counter++
	return st.counter, nil
}

// Журнал изменений

func (r *FolderRepository) Changes(_ context.Context, folderID string) ([]folder.Change, error) {
	return r.readChanges(folderID, func(all []folder.Change) []folder.Change {
		return folder.Window(all, 0, -1)
	}), nil
}

func (r *FolderRepository) ChangesRange(_ context.Context, folderID string, begin, end int) ([]folder.Change, error) {
	return r.readChanges(folderID, func(all []folder.Change) []folder.Change {
		return folder.Window(all, begin, end)
	}), nil
}

func (r *FolderRepository) ChangesAfter(_ context.Context, folderID string, anchor folder.Change, n int) ([]folder.Change, error) {
	return r.readChanges(folderID, func(all []folder.Change) []folder.Change {
		return folder.After(all, anchor, n, folder.CompareChanges)
	}), nil
}

func (r *FolderRepository) ChangesBefore(_ context.Context, folderID string, anchor folder.Change, n int) ([]folder.Change, error) {
	return r.readChanges(folderID, func(all []folder.Change) []folder.Change {
		return folder.Before(all, anchor, n, folder.CompareChanges)
	}), nil
}

func (r *FolderRepository) CountChanges(_ context.Context, folderID string) (int, error) {
	st, ok := r.get(folderID)
	if !ok {
		return 0, nil
	}
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.changes), nil
}

func (r *FolderRepository) AddChange(_ context.Context, folderID string, c folder.Change) error {
	st := r.ensure(folderID)
	st.mu.Lock()
	defer st.mu.Unlock()
	st.changes, _ = folder.Insert(st.changes, c, folder.CompareChanges)
	return nil
}

func (r *FolderRepository) RemoveChange(_ context.Context, folderID string, c folder.Change) (bool, error) {
	st, ok := r.get(folderID)
	if !ok {
		return false, nil
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	var removed bool
	st.changes, removed = folder.Delete(st.changes, c, folder.CompareChanges)
	return removed, nil
}

func (r *FolderRepository) RemoveFirstChanges(_ context.Context, folderID string, n int) error {
	st, ok := r.get(folderID)
	if !ok || n <= 0 {
		return nil
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if n > len(st.changes) {
		n = len(st.changes)
	}
	st.changes = append([]folder.Change(nil), st.changes[n:]...)
	return nil
}

func (r *FolderRepository) RemoveChangesThrough(_ context.Context, folderID string, anchor folder.Change) error {
	st, ok := r.get(folderID)
	if !ok {
		return nil
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	n := folder.Through(st.changes, anchor, folder.CompareChanges)
	st.changes = append([]folder.Change(nil), st.changes[n:]...)
	return nil
}

func (r *FolderRepository) ClearChanges(_ context.Context, folderID string) ([]folder.Change, error) {
	st, ok := r.get(folderID)
	if !ok {
		return nil, nil
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	removed := st.changes
	st.changes = nil
	return removed, nil
}

func (r *FolderRepository) readChanges(folderID string, fn func([]folder.Change) []folder.Change) []folder.Change {
	st, ok := r.get(folderID)
	if !ok {
		return nil
	}
	st.mu.RLock()
	defer st.mu.RUnlock()
	return fn(st.changes)
}

// Дети

func (r *FolderRepository) Children(_ context.Context, folderID string) ([]folder.Child, error) {
	return r.readChildren(folderID, func(st *folderState) []folder.Child {
		return folder.Window(st.children, 0, -1)
	}), nil
}

func (r *FolderRepository) ChildrenRange(_ context.Context, folderID string, begin, end int) ([]folder.Child, error) {
	return r.readChildren(folderID, func(st *folderState) []folder.Child {
		return folder.Window(st.children, begin, end)
	}), nil
}

func (r *FolderRepository) ChildrenAfter(_ context.Context, folderID string, childID string, n int) ([]folder.Child, error) {
	return r.readChildren(folderID, func(st *folderState) []folder.Child {
		anchor, ok := st.locate(childID)
		if !ok {
			return nil
		}
		return folder.After(st.children, anchor, n, folder.CompareChildren)
	}), nil
}

func (r *FolderRepository) ChildrenBefore(_ context.Context, folderID string, childID string, n int) ([]folder.Child, error) {
	return r.readChildren(folderID, func(st *folderState) []folder.Child {
		anchor, ok := st.locate(childID)
		if !ok {
			return nil
		}
		return folder.Before(st.children, anchor, n, folder.CompareChildren)
	}), nil
}

func (r *FolderRepository) CountChildren(_ context.Context, folderID string) (int, error) {
	st, ok := r.get(folderID)
	if !ok {
		return 0, nil
	}
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.children), nil
}

func (r *FolderRepository) AddChild(_ context.Context, folderID string, c folder.Child) error {
	st := r.ensure(folderID)
	st.mu.Lock()
	defer st.mu.Unlock()

	if score, ok := st.scores[c.ID]; ok {
		if st.root || score == c.Score {
			return nil
		}
		st.children, _ = folder.Delete(st.children, folder.Child{ID: c.ID, Score: score}, folder.CompareChildren)
	}
	st.children, _ = folder.Insert(st.children, c, folder.CompareChildren)
	st.scores[c.ID] = c.Score
	return nil
}

func (r *FolderRepository) RemoveChild(_ context.Context, folderID string, childID string) (bool, error) {
	st, ok := r.get(folderID)
	if !ok {
		return false, nil
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	score, ok := st.scores[childID]
	if !ok {
		return false, nil
	}
	delete(st.scores, childID)
	st.children, _ = folder.Delete(st.children, folder.Child{ID: childID, Score: score}, folder.CompareChildren)
	return true, nil
}

func (r *FolderRepository) RemoveFirstChildren(_ context.Context, folderID string, n int) error {
	st, ok := r.get(folderID)
	if !ok || n <= 0 {
		return nil
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if n > len(st.children) {
		n = len(st.children)
	}
	for _, c := range st.children[:n] {
		delete(st.scores, c.ID)
	}
	st.children = append([]folder.Child(nil), st.children[n:]...)
	return nil
}

func (r *FolderRepository) ClearChildren(_ context.Context, folderID string) error {
	st, ok := r.get(folderID)
	if !ok {
		return nil
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	st.children = nil
	st.scores = make(map[string]int64)
	return nil
}

func (r *FolderRepository) IsChild(_ context.Context, folderID string, childID string) (bool, error) {
	st, ok := r.get(folderID)
	if !ok {
		return false, nil
	}
	st.mu.RLock()
	defer st.mu.RUnlock()
	_, ok = st.scores[childID]
	return ok, nil
}

func (r *FolderRepository) readChildren(folderID string, fn func(*folderState) []folder.Child) []folder.Child {
	st, ok := r.get(folderID)
	if !ok {
		return nil
	}
	st.mu.RLock()
	defer st.mu.RUnlock()
	return fn(st)
}

func (st *folderState) locate(childID string) (folder.Child, bool) {
	if score, ok := st.scores[childID]; ok {
		return folder.Child{ID: childID, Score: score}, true
	}
	return folder.AnchorChild(childID)
}
