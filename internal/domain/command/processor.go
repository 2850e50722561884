package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/exp/slog"

	"wesync/internal/domain/file"
	"wesync/internal/domain/folder"
	"wesync/internal/domain/mailbox"
	"wesync/internal/domain/message"
	"wesync/internal/domain/sync"
)

// Syncer движок синхронизации папок
type Syncer interface {
	Sync(ctx context.Context, username string, q sync.Quirks, req *sync.Request) (*sync.Response, error)
	IsPropertySupported(prop string) bool
}

// Router маршрутизатор операций плагинов
type Router interface {
	Handle(ctx context.Context, username string, req *message.Meta) (*message.Meta, error)
}

type handlerFunc func(ctx context.Context, username string, v Version, body []byte) (any, error)

// Processor выполняет команды протокола: JSON запрос, доменные сервисы, JSON ответ
type Processor struct {
	sync     Syncer
	mailbox  mailbox.Servicer
	files    file.Servicer
	plugins  Router
	log      *slog.Logger
	handlers map[Behavior]handlerFunc
}

func NewProcessor(syncer Syncer, mb mailbox.Servicer, files file.Servicer, plugins Router, log *slog.Logger) *Processor {
	p := &Processor{
		sync:    syncer,
		mailbox: mb,
		files:   files,
		plugins: plugins,
		log:     log.With("component", "command"),
	}
	p.handlers = map[Behavior]handlerFunc{
		BehaviorSyncLegacy:     p.handleSync,
		BehaviorSync:           p.handleSync,
		BehaviorSendFile:       p.handleSendFile,
		BehaviorFolderSync:     p.handleFolderSync,
		BehaviorFolderCreate:   p.handleFolderCreate,
		BehaviorFolderDelete:   p.handleFolderDelete,
		BehaviorGetItemUnread:  p.handleGetItemUnread,
		BehaviorItemOperations: p.handleItemOperations,
		BehaviorGetFile:        p.handleGetFile,
	}
	return p
}

// Handle выполняет команду. Пустой ответ означает, что отвечать нечего.
func (p *Processor) Handle(ctx context.Context, username string, v Version, c Command, body []byte) ([]byte, error) {
	h, ok := p.handlers[Resolve(c, v)]
	if !ok {
		p.log.Warn("no handler for command", "command", c.String(), "version", v.String(), "username", username)
		Handled.WithLabelValues(c.String(), v.String(), "ignored").Inc()
		return nil, nil
	}

	p.log.Debug("command received", "command", c.String(), "version", v.String(), "username", username)
	resp, err := h(ctx, username, v, body)
	if err != nil {
		Handled.WithLabelValues(c.String(), v.String(), "error").Inc()
		return nil, err
	}
	Handled.WithLabelValues(c.String(), v.String(), "ok").Inc()
	if resp == nil {
		return nil, nil
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s response: %w", c, err)
	}
	return data, nil
}

// decode разбирает тело запроса, пустое тело оставляет dst нетронутым
func decode(body []byte, dst any) error {
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}
	return nil
}

func (p *Processor) handleSync(ctx context.Context, username string, v Version, body []byte) (any, error) {
	var req sync.Request
	if err := decode(body, &req); err != nil {
		return nil, err
	}
	return p.sync.Sync(ctx, username, v.Quirks(), &req)
}

// handleFolderSync первая синхронизация отдает всех детей корня, следующие
// только добавленные папки из журнала
func (p *Processor) handleFolderSync(ctx context.Context, username string, _ Version, body []byte) (any, error) {
	var req FolderSyncRequest
	if err := decode(body, &req); err != nil {
		return nil, err
	}
	if req.ID == "" || req.Key == "" {
		return nil, ErrMalformedRequest
	}
	if !folder.BelongsTo(req.ID, username) {
		p.log.Warn("unpermitted folder access", "username", username, "folder", req.ID)
		return nil, ErrPermissionDenied
	}

	resp := &FolderSyncResponse{ID: req.ID, NextKey: folder.EmptyKey(req.ID, false)}
	if req.Key == folder.BootstrapKey {
		children, err := p.mailbox.Children(ctx, req.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list folders: %w", err)
		}
		for _, c := range children {
			resp.ChildIDs = append(resp.ChildIDs, c.ID)
		}
		return resp, nil
	}

	if err := p.mailbox.CleanupSynchronizedChanges(ctx, req.ID, req.Key); err != nil {
		return nil, err
	}
	changes, err := p.mailbox.Changes(ctx, req.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list folder changes: %w", err)
	}
	if len(changes) > 0 {
		resp.NextKey = folder.KeyOnChange(req.ID, changes[len(changes)-1])
	}
	for _, c := range changes {
		if c.IsAdd {
			resp.ChildIDs = append(resp.ChildIDs, c.ChildID)
		}
	}
	return resp, nil
}

func (p *Processor) handleFolderCreate(ctx context.Context, username string, _ Version, body []byte) (any, error) {
	var req FolderCreateRequest
	if err := decode(body, &req); err != nil {
		return nil, err
	}

	if len(req.AnotherUsers) > 0 {
		groupID, err := p.mailbox.CreateGroup(ctx, username, req.AnotherUsers)
		if err != nil {
			return nil, err
		}
		folderID, err := p.mailbox.NewGroupChat(ctx, username, groupID)
		if err != nil {
			return nil, err
		}
		return &FolderCreateResponse{FolderID: folderID, UserChatWith: req.UserChatWith}, nil
	}

	if req.UserChatWith == "" || req.UserChatWith == username {
		return nil, ErrMalformedRequest
	}
	folderID, err := p.mailbox.NewConversation(ctx, username, req.UserChatWith)
	if err != nil {
		return nil, err
	}
	return &FolderCreateResponse{FolderID: folderID, UserChatWith: req.UserChatWith}, nil
}

func (p *Processor) handleFolderDelete(ctx context.Context, username string, _ Version, body []byte) (any, error) {
	var req FolderDeleteRequest
	if err := decode(body, &req); err != nil {
		return nil, err
	}
	folderID := req.FolderID
	if folderID == "" {
		if req.UserChatWith == "" {
			return nil, ErrMalformedRequest
		}
		folderID = folder.OnConversation(username, req.UserChatWith)
	}
	if !folder.BelongsTo(folderID, username) {
		p.log.Warn("unpermitted folder delete", "username", username, "folder", folderID)
		return nil, ErrPermissionDenied
	}

	if req.IsContentOnly {
		return nil, p.mailbox.CleanupFolder(ctx, folderID)
	}
	return nil, p.mailbox.RemoveFolder(ctx, username, folderID)
}

// handleGetItemUnread счетчики запрошенных папок и папок, измененных с
// прошлого запроса. Журнал корня при этом расходуется.
func (p *Processor) handleGetItemUnread(ctx context.Context, username string, _ Version, body []byte) (any, error) {
	var req GetItemUnreadRequest
	if err := decode(body, &req); err != nil {
		return nil, err
	}

	var folderIDs []string
	seen := make(map[string]struct{})
	add := func(id string) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		folderIDs = append(folderIDs, id)
	}

	for _, id := range req.FolderIDs {
		if !p.unreadPermitted(username, id) {
			p.log.Warn("unpermitted folder access", "username", username, "folder", id)
			return nil, ErrPermissionDenied
		}
		add(id)
	}

	changes, err := p.mailbox.ClearChanges(ctx, folder.OnRoot(username))
	if err != nil {
		return nil, fmt.Errorf("failed to consume root changes: %w", err)
	}
	for _, c := range changes {
		if c.IsAdd {
			add(c.ChildID)
		}
	}

	unread, err := p.mailbox.UnreadNumbers(ctx, folderIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to count unread: %w", err)
	}
	return &GetItemUnreadResponse{Unread: unread}, nil
}

func (p *Processor) unreadPermitted(username, folderID string) bool {
	id := folder.Parse(folderID)
	if id.Type == folder.Property && p.sync.IsPropertySupported(id.Property()) {
		return true
	}
	return folder.BelongsTo(folderID, username)
}

func (p *Processor) handleItemOperations(ctx context.Context, username string, _ Version, body []byte) (any, error) {
	var req MetaSet
	if err := decode(body, &req); err != nil {
		return nil, err
	}

	resp := &MetaSet{Metas: []*message.Meta{}}
	for _, m := range req.Metas {
		if m == nil || (m.From != "" && m.From != username) || m.To == "" || len(m.Content) == 0 || m.Type != message.TypeOperation {
			p.log.Warn("invalid operation", "username", username)
			return nil, ErrMalformedRequest
		}
		out, err := p.plugins.Handle(ctx, username, m)
		if err != nil {
			return nil, err
		}
		if out != nil {
			resp.Metas = append(resp.Metas, out)
		}
	}
	return resp, nil
}

func (p *Processor) handleSendFile(ctx context.Context, username string, _ Version, body []byte) (any, error) {
	var req file.File
	if err := decode(body, &req); err != nil {
		return nil, err
	}
	if !file.IsOwner(username, req.ID) {
		p.log.Warn("invalid file id", "username", username, "file_id", req.ID)
		return nil, ErrInvalidFileID
	}

	result, err := p.files.Ingest(ctx, &req)
	if err != nil {
		if errors.Is(err, file.ErrEmptyUpload) || errors.Is(err, file.ErrInvalidFileID) {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
		}
		return nil, err
	}

	resp := &SendFileResponse{ID: result.ID, Complete: result.Complete}
	if result.NearComplete {
		resp.Missing = result.Missing
	}
	return resp, nil
}

func (p *Processor) handleGetFile(ctx context.Context, username string, _ Version, body []byte) (any, error) {
	var req GetFileRequest
	if err := decode(body, &req); err != nil {
		return nil, err
	}
	if req.ID == "" {
		return nil, ErrMalformedRequest
	}

	ok, err := p.fileReadable(ctx, username, req.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		p.log.Warn("unpermitted file access", "username", username, "file_id", req.ID)
		return nil, ErrPermissionDenied
	}

	var f *file.File
	if len(req.Indices) > 0 {
		f, err = p.files.ByIndex(ctx, req.ID, req.Indices)
	} else {
		f, err = p.files.ByID(ctx, req.ID)
	}
	if errors.Is(err, file.ErrNotFound) {
		p.log.Warn("missing file", "file_id", req.ID)
		return &GetFileResponse{ID: req.ID}, nil
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

// fileReadable читать файл может владелец, получатель или участник группы-получателя
func (p *Processor) fileReadable(ctx context.Context, username, fileID string) (bool, error) {
	if file.IsOwner(username, fileID) {
		return true, nil
	}
	receiver := file.ReceiverOf(fileID)
	if folder.IsGroupID(receiver) {
		ok, err := p.mailbox.IsMember(ctx, receiver, username)
		if err != nil {
			return false, fmt.Errorf("failed to check membership: %w", err)
		}
		return ok, nil
	}
	return username != "" && receiver == username, nil
}
