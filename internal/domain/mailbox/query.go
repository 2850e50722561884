package mailbox

import (
	"context"
	"fmt"

	"wesync/internal/domain/folder"
	"wesync/internal/domain/message"
	"wesync/internal/domain/notice"
)

func (s *Service) Message(ctx context.Context, id string) (*message.Meta, error) {
	return s.messages.Get(ctx, id)
}

// MessageIn сообщение папки по score
func (s *Service) MessageIn(ctx context.Context, folderID string, score int64) (*message.Meta, error) {
	return s.messages.Get(ctx, folder.ChildID(folderID, score))
}

// GroupMessage сообщение из истории группы
func (s *Service) GroupMessage(ctx context.Context, groupID string, score int64) (*message.Meta, error) {
	return s.MessageIn(ctx, folder.HistoryFolder(groupID), score)
}

// CleanupSynchronizedChanges удаляет из журнала изменения, которые клиент
// уже получил по ключу key. Пустой маркер означает, что получено все.
func (s *Service) CleanupSynchronizedChanges(ctx context.Context, folderID, key string) error {
	if key == folder.BootstrapKey {
		return nil
	}
	marker, ok := folder.Marker(key)
	if !ok {
		return nil
	}
	if marker == "" {
		if _, err := s.folders.ClearChanges(ctx, folderID); err != nil {
			return fmt.Errorf("failed to clear changes of %s: %w", folderID, err)
		}
		return nil
	}
	c, ok := folder.ParseChange(marker)
	if !ok {
		return nil
	}
	if err := s.folders.RemoveChangesThrough(ctx, folderID, c); err != nil {
		return fmt.Errorf("failed to cleanup changes of %s: %w", folderID, err)
	}
	return nil
}

// UnreadNumber число непрочитанных изменений папки
func (s *Service) UnreadNumber(ctx context.Context, folderID string) (int, error) {
	return s.folders.CountChanges(ctx, folderID)
}

func (s *Service) UnreadNumbers(ctx context.Context, folderIDs []string) ([]notice.Unread, error) {
	out := make([]notice.Unread, 0, len(folderIDs))
	for _, id := range folderIDs {
		n, err := s.UnreadNumber(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, notice.Unread{FolderID: id, Num: n})
	}
	return out, nil
}

func (s *Service) Children(ctx context.Context, folderID string) ([]folder.Child, error) {
	return s.folders.Children(ctx, folderID)
}

func (s *Service) ChildrenRange(ctx context.Context, folderID string, begin, end int) ([]folder.Child, error) {
	return s.folders.ChildrenRange(ctx, folderID, begin, end)
}

func (s *Service) ChildrenAfter(ctx context.Context, folderID, childID string, n int) ([]folder.Child, error) {
	return s.folders.ChildrenAfter(ctx, folderID, childID, n)
}

func (s *Service) ChildrenBefore(ctx context.Context, folderID, childID string, n int) ([]folder.Child, error) {
	return s.folders.ChildrenBefore(ctx, folderID, childID, n)
}

func (s *Service) Changes(ctx context.Context, folderID string) ([]folder.Change, error) {
	return s.folders.Changes(ctx, folderID)
}

func (s *Service) ChangesRange(ctx context.Context, folderID string, begin, end int) ([]folder.Change, error) {
	return s.folders.ChangesRange(ctx, folderID, begin, end)
}

func (s *Service) ChangesBefore(ctx context.Context, folderID string, anchor folder.Change, n int) ([]folder.Change, error) {
	return s.folders.ChangesBefore(ctx, folderID, anchor, n)
}

func (s *Service) RemoveChange(ctx context.Context, folderID string, c folder.Change) (bool, error) {
	return s.folders.RemoveChange(ctx, folderID, c)
}

func (s *Service) RemoveChangesThrough(ctx context.Context, folderID string, anchor folder.Change) error {
	return s.folders.RemoveChangesThrough(ctx, folderID, anchor)
}

func (s *Service) ClearChanges(ctx context.Context, folderID string) ([]folder.Change, error) {
	return s.folders.ClearChanges(ctx, folderID)
}
