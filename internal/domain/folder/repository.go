package folder

import "context"

// Repository упорядоченное хранилище папок. Запросы к несуществующей папке
// возвращают пустой результат, а не ошибку.
type Repository interface {
	CreateFolder(ctx context.Context, folderID string) error
	DestroyFolder(ctx context.Context, folderID string) error
	FolderExists(ctx context.Context, folderID string) (bool, error)
	// Counter текущее значение счетчика, -1 если папки нет
	Counter(ctx context.Context, folderID string) (int64, error)
	// IncrementCounter атомарно увеличивает счетчик, создавая папку при необходимости
	IncrementCounter(ctx context.Context, folderID string) (int64, error)

	Changes(ctx context.Context, folderID string) ([]Change, error)
	ChangesRange(ctx context.Context, folderID string, begin, end int) ([]Change, error)
	ChangesAfter(ctx context.Context, folderID string, anchor Change, n int) ([]Change, error)
	ChangesBefore(ctx context.Context, folderID string, anchor Change, n int) ([]Change, error)
	CountChanges(ctx context.Context, folderID string) (int, error)
	AddChange(ctx context.Context, folderID string, c Change) error
	RemoveChange(ctx context.Context, folderID string, c Change) (bool, error)
	RemoveFirstChanges(ctx context.Context, folderID string, n int) error
	// RemoveChangesThrough удаляет все изменения до якоря включительно
	RemoveChangesThrough(ctx context.Context, folderID string, anchor Change) error
	ClearChanges(ctx context.Context, folderID string) ([]Change, error)

	Children(ctx context.Context, folderID string) ([]Child, error)
	ChildrenRange(ctx context.Context, folderID string, begin, end int) ([]Child, error)
	ChildrenAfter(ctx context.Context, folderID string, childID string, n int) ([]Child, error)
	ChildrenBefore(ctx context.Context, folderID string, childID string, n int) ([]Child, error)
	CountChildren(ctx context.Context, folderID string) (int, error)
	AddChild(ctx context.Context, folderID string, c Child) error
	RemoveChild(ctx context.Context, folderID string, childID string) (bool, error)
	RemoveFirstChildren(ctx context.Context, folderID string, n int) error
	ClearChildren(ctx context.Context, folderID string) error
	IsChild(ctx context.Context, folderID string, childID string) (bool, error)
}
