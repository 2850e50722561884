package client

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/exp/slog"

	"wesync/internal/app/client/config"
	"wesync/internal/domain/command"
	"wesync/internal/domain/folder"
	"wesync/internal/domain/message"
	"wesync/internal/domain/notice"
)

// App клиент WeSync: транспорт к серверу и локальный кэш
type App struct {
	config  *config.Config
	log     *slog.Logger
	http    *httpClient
	storage *SQLiteStorage
}

func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.DataPath), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	storage, err := NewSQLiteStorage(cfg.DataPath)
	if err != nil {
		return nil, err
	}
	return &App{
		config:  cfg,
		log:     log.With("component", "client", "username", cfg.Username),
		http:    newHTTPClient(cfg, log),
		storage: storage,
	}, nil
}

func (a *App) Close() error {
	return a.storage.Close()
}

func (a *App) Username() string {
	return a.config.Username
}

func (a *App) CheckConnection(ctx context.Context) error {
	return a.http.HealthCheck(ctx)
}

// Folders синхронизирует список папок корня и возвращает все известные папки
func (a *App) Folders(ctx context.Context) ([]string, error) {
	root := folder.OnRoot(a.config.Username)
	key, err := a.storage.SyncKey(ctx, root)
	if err != nil {
		return nil, err
	}

	var resp command.FolderSyncResponse
	if err := a.http.Command(ctx, command.FolderSync.String(), command.FolderSyncRequest{ID: root, Key: key}, &resp); err != nil {
		return nil, err
	}
	if err := a.storage.AddFolders(ctx, resp.ChildIDs); err != nil {
		return nil, err
	}
	if err := a.storage.SaveSyncKey(ctx, root, resp.NextKey); err != nil {
		return nil, err
	}
	a.log.Debug("folders synced", "new", len(resp.ChildIDs))
	return a.storage.Folders(ctx)
}

// CreateConversation создает диалог с peer, либо группу если передано несколько участников
func (a *App) CreateConversation(ctx context.Context, peers ...string) (string, error) {
	req := command.FolderCreateRequest{}
	if len(peers) == 1 {
		req.UserChatWith = peers[0]
	} else {
		req.AnotherUsers = peers
	}
	var resp command.FolderCreateResponse
	if err := a.http.Command(ctx, command.FolderCreate.String(), req, &resp); err != nil {
		return "", err
	}
	if err := a.storage.AddFolders(ctx, []string{resp.FolderID}); err != nil {
		return "", err
	}
	return resp.FolderID, nil
}

// DeleteFolder удаляет папку на сервере и в кэше
func (a *App) DeleteFolder(ctx context.Context, folderID string, contentOnly bool) error {
	req := command.FolderDeleteRequest{FolderID: folderID, IsContentOnly: contentOnly}
	if err := a.http.Command(ctx, command.FolderDelete.String(), req, nil); err != nil {
		return err
	}
	if contentOnly {
		return a.storage.SaveSyncKey(ctx, folderID, folder.BootstrapKey)
	}
	return a.storage.RemoveFolder(ctx, folderID)
}

// Unread число непрочитанных в папках и в папках, измененных с прошлого вызова
func (a *App) Unread(ctx context.Context, folderIDs []string) ([]notice.Unread, error) {
	var resp command.GetItemUnreadResponse
	req := command.GetItemUnreadRequest{FolderIDs: folderIDs}
	if err := a.http.Command(ctx, command.GetItemUnread.String(), req, &resp); err != nil {
		return nil, err
	}
	return resp.Unread, nil
}

// Listen передает уведомления в fn до отмены ctx
func (a *App) Listen(ctx context.Context, fn func(*notice.Notice)) error {
	return a.http.Listen(ctx, fn)
}

// Messages последние limit сообщений папки из локального кэша
func (a *App) Messages(ctx context.Context, folderID string, limit int) ([]*message.Meta, error) {
	return a.storage.Messages(ctx, folderID, limit)
}
