package sync

import (
	"context"
	"fmt"

	"wesync/internal/domain/folder"
)

// permitted проверяет доступ пользователя к папке
func (s *Service) permitted(ctx context.Context, username string, id folder.ID, folderID string) (bool, error) {
	switch id.Type {
	case folder.Property:
		prop := id.Property()
		if !s.IsPropertySupported(prop) {
			return false, nil
		}
		if folder.IsGroupProperty(prop) {
			return s.isMember(ctx, id.Owner, username)
		}
	case folder.Group:
		if !folder.BelongsTo(folderID, username) {
			return false, nil
		}
		return s.isMember(ctx, id.GroupID(), username)
	case folder.Data:
		if folder.IsGroupID(id.Owner) {
			return s.isMember(ctx, id.Owner, username)
		}
	}
	return folder.BelongsTo(folderID, username), nil
}

func (s *Service) isMember(ctx context.Context, groupID, username string) (bool, error) {
	ok, err := s.mailbox.IsMember(ctx, groupID, username)
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return ok, nil
}
