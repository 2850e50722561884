package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"wesync/internal/domain/command"
	"wesync/internal/domain/folder"
	"wesync/internal/domain/message"
	"wesync/internal/domain/sync"
)

// maxPages ограничивает число страниц за один вызов SyncFolder
const maxPages = 1000

// SyncResult итог синхронизации папки
type SyncResult struct {
	FolderID string          `json:"folder_id"`
	Pages    int             `json:"pages"`
	Received []*message.Meta `json:"received"`
	NextKey  string          `json:"next_key"`
}

// SyncFolder забирает страницы изменений, пока сервер сообщает о следующей.
// Полученные сообщения и ключ сохраняются после каждой страницы.
func (a *App) SyncFolder(ctx context.Context, folderID string) (*SyncResult, error) {
	key, err := a.storage.SyncKey(ctx, folderID)
	if err != nil {
		return nil, err
	}

	result := &SyncResult{FolderID: folderID}
	for result.Pages < maxPages {
		req := &sync.Request{
			FolderID:   folderID,
			Key:        key,
			IsFullSync: key == folder.BootstrapKey,
			IsForward:  true,
		}
		var resp sync.Response
		if err := a.http.Command(ctx, command.Sync.String(), req, &resp); err != nil {
			return nil, fmt.Errorf("failed to sync %s: %w", folderID, err)
		}
		result.Pages++

		if err := a.storage.SaveMessages(ctx, folderID, resp.ServerChanges); err != nil {
			return nil, err
		}
		result.Received = append(result.Received, resp.ServerChanges...)
		next := resp.NextKey
		if !resp.HasNext && folder.IsEmptyKey(next) {
			next = resumeKey(folderID, key, result.Received)
		}
		if err := a.storage.SaveSyncKey(ctx, folderID, next); err != nil {
			return nil, err
		}
		key = next
		if !resp.HasNext {
			break
		}
	}
	result.NextKey = key
	a.log.Debug("folder synced", "folder", folderID, "pages", result.Pages, "received", len(result.Received))
	return result, nil
}

// resumeKey ключ, с которого продолжится следующая синхронизация после последней страницы.
// Пустой ключ сервера очищает весь журнал или навсегда оставляет папку в полном
// режиме, поэтому сохраняется инкрементальный ключ на самом позднем полученном
// сообщении. Без полученных сообщений позиция берется из прежнего ключа.
func resumeKey(folderID, sent string, received []*message.Meta) string {
	var cursor int64
	if marker, ok := folder.Marker(sent); ok {
		if c, ok := folder.ParseChange(marker); ok {
			cursor, _ = c.Score()
		}
	}

	prefixes := []string{folderID + string(folder.Separator)}
	if id := folder.Parse(folderID); id.Type == folder.Group {
		prefixes = append(prefixes, folder.HistoryFolder(id.GroupID())+string(folder.Separator))
	}
	for _, m := range received {
		if m == nil || !hasAnyPrefix(m.ID, prefixes) {
			continue
		}
		if score := folder.ScoreOf(m.ID); score > cursor {
			cursor = score
		}
	}
	return folder.KeyOnChange(folderID, folder.AddedScore(cursor))
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// Send отправляет текст в диалог с peer. Возвращает серверный id сообщения.
func (a *App) Send(ctx context.Context, peer string, text string) (string, error) {
	return a.sendMeta(ctx, folder.OnConversation(a.config.Username, peer), &message.Meta{
		To:      peer,
		Type:    message.TypeText,
		Content: []byte(text),
	})
}

// SendToGroup отправляет текст в групповую папку folderID
func (a *App) SendToGroup(ctx context.Context, folderID string, text string) (string, error) {
	id := folder.Parse(folderID)
	if id.Type != folder.Group {
		return "", fmt.Errorf("%s is not a group folder", folderID)
	}
	return a.sendMeta(ctx, folderID, &message.Meta{
		To:      id.GroupID(),
		Type:    message.TypeText,
		Content: []byte(text),
	})
}

// sendMeta отправляет одно изменение без приема серверных изменений и ждет индикатор
func (a *App) sendMeta(ctx context.Context, folderID string, meta *message.Meta) (string, error) {
	key, err := a.storage.SyncKey(ctx, folderID)
	if err != nil {
		return "", err
	}
	meta.ID = uuid.NewString()
	meta.From = a.config.Username

	req := &sync.Request{
		FolderID:      folderID,
		Key:           key,
		IsSendOnly:    true,
		ClientChanges: []*message.Meta{meta},
	}
	var resp sync.Response
	if err := a.http.Command(ctx, command.Sync.String(), req, &resp); err != nil {
		return "", err
	}

	for _, ind := range resp.ClientChanges {
		if ind.ID == meta.ID {
			stored := *meta
			stored.ID = string(ind.Content)
			stored.Time = ind.Time
			if err := a.storage.SaveMessages(ctx, folderID, []*message.Meta{&stored}); err != nil {
				return "", err
			}
			return stored.ID, nil
		}
	}
	return "", fmt.Errorf("message %s was rejected by server", meta.ID)
}
