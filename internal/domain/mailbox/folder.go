package mailbox

import (
	"context"
	"fmt"

	"wesync/internal/domain/folder"
)

// PrepareForNewUser создает корневую папку пользователя
func (s *Service) PrepareForNewUser(ctx context.Context, user string) error {
	if err := s.folders.CreateFolder(ctx, folder.OnRoot(user)); err != nil {
		return fmt.Errorf("failed to prepare user %s: %w", user, err)
	}
	return nil
}

// NewConversation создает диалог from с to и регистрирует его в корне from
func (s *Service) NewConversation(ctx context.Context, from, to string) (string, error) {
	folderID := folder.OnConversation(from, to)
	if err := s.attach(ctx, from, folderID); err != nil {
		return "", err
	}
	return folderID, nil
}

// attach создает папку и добавляет ее в корень владельца
func (s *Service) attach(ctx context.Context, user, folderID string) error {
	if err := s.folders.CreateFolder(ctx, folderID); err != nil {
		return fmt.Errorf("failed to create folder %s: %w", folderID, err)
	}
	root := folder.OnRoot(user)
	if err := s.folders.CreateFolder(ctx, root); err != nil {
		return fmt.Errorf("failed to create root of %s: %w", user, err)
	}
	exists, err := s.folders.IsChild(ctx, root, folderID)
	if err != nil {
		return fmt.Errorf("failed to check root of %s: %w", user, err)
	}
	if exists {
		return nil
	}
	score, err := s.ReserveChildID(ctx, root)
	if err != nil {
		return err
	}
	if err := s.addChild(ctx, root, folder.Child{ID: folderID, Score: score}); err != nil {
		return err
	}
	return s.addChange(ctx, root, folder.Added(folderID))
}

// EnsureFolder создает папку и регистрирует ее в корне владельца, если ее еще нет
func (s *Service) EnsureFolder(ctx context.Context, folderID string) error {
	exists, err := s.folders.FolderExists(ctx, folderID)
	if err != nil {
		return fmt.Errorf("failed to check folder %s: %w", folderID, err)
	}
	if exists {
		return nil
	}
	return s.attach(ctx, folder.Owner(folderID), folderID)
}

// RemoveFolder уничтожает папку и записывает ее удаление в корень пользователя
func (s *Service) RemoveFolder(ctx context.Context, user, folderID string) error {
	if err := s.folders.DestroyFolder(ctx, folderID); err != nil {
		return fmt.Errorf("failed to destroy folder %s: %w", folderID, err)
	}
	root := folder.OnRoot(user)
	if _, err := s.folders.RemoveChild(ctx, root, folderID); err != nil {
		return fmt.Errorf("failed to detach folder %s: %w", folderID, err)
	}
	if _, err := s.folders.RemoveChange(ctx, root, folder.Added(folderID)); err != nil {
		return fmt.Errorf("failed to detach folder %s: %w", folderID, err)
	}
	return s.addChange(ctx, root, folder.Removed(folderID))
}

// CleanupFolder очищает детей и журнал папки, сама папка остается
func (s *Service) CleanupFolder(ctx context.Context, folderID string) error {
	if err := s.folders.ClearChildren(ctx, folderID); err != nil {
		return fmt.Errorf("failed to clear children of %s: %w", folderID, err)
	}
	if _, err := s.folders.ClearChanges(ctx, folderID); err != nil {
		return fmt.Errorf("failed to clear changes of %s: %w", folderID, err)
	}
	return nil
}

func (s *Service) FolderExists(ctx context.Context, folderID string) (bool, error) {
	return s.folders.FolderExists(ctx, folderID)
}
