package sync

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"wesync/internal/domain/folder"
	"wesync/internal/domain/message"
)

func (s *Service) fullSync(ctx context.Context, q Quirks, id folder.ID, req *Request, batch int, resp *Response) error {
	source := req.FolderID
	if q.HistoryRedirect && id.Type == folder.Group {
		source = folder.HistoryFolder(id.GroupID())
	}

	children, err := s.childrenPage(ctx, source, req, batch)
	if err != nil {
		return err
	}
	if len(children) == 0 {
		return nil
	}
	if len(children) >= batch {
		resp.HasNext = true
		anchor := children[0]
		if req.IsForward {
			anchor = children[len(children)-1]
		}
		resp.NextKey = folder.KeyOnChild(req.FolderID, anchor.ID)
	}

	if id.Type == folder.Property {
		for _, c := range children {
			resp.ServerChanges = append(resp.ServerChanges, &message.Meta{ID: c.ID, Type: message.TypeProperty})
		}
		return nil
	}

	for _, c := range children {
		meta, err := s.pageMessage(ctx, q, id, req.FolderID, c.Score)
		if err != nil {
			return err
		}
		meta, err = s.checkSize(ctx, q, req.FolderID, meta, folder.AddedScore(c.Score))
		if err != nil {
			return err
		}
		if meta == nil {
			continue
		}
		resp.ServerChanges = append(resp.ServerChanges, meta)

		if q.ExpandSubfolders && meta.Type == message.TypeSubfolder {
			parts, err := s.expand(ctx, q, id, req.FolderID, string(meta.Content))
			if err != nil {
				return err
			}
			resp.ServerChanges = append(resp.ServerChanges, parts...)
		}
	}
	return nil
}

// childrenPage выбирает страницу детей по позиции из ключа, подсказке или с края
func (s *Service) childrenPage(ctx context.Context, source string, req *Request, batch int) ([]folder.Child, error) {
	var (
		children []folder.Child
		err      error
	)
	anchored := func(childID string) ([]folder.Child, error) {
		if req.IsForward {
			return s.mailbox.ChildrenAfter(ctx, source, childID, batch)
		}
		return s.mailbox.ChildrenBefore(ctx, source, childID, batch)
	}

	switch {
	case !folder.IsEmptyKey(req.Key):
		position, ok := folder.Position(req.Key)
		if !ok {
			return nil, nil
		}
		children, err = anchored(position)
	case req.Key == folder.BootstrapKey && req.HintChildID != "":
		children, err = anchored(strconv.FormatInt(folder.ScoreOf(req.HintChildID), 10))
	case req.Key == folder.BootstrapKey && req.IsForward:
		children, err = s.mailbox.ChildrenRange(ctx, source, 0, batch-1)
	case req.Key == folder.BootstrapKey:
		children, err = s.mailbox.ChildrenRange(ctx, source, -batch, -1)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch children of %s: %w", source, err)
	}
	return children, nil
}

// expand раскрывает подпапку составного сообщения
func (s *Service) expand(ctx context.Context, q Quirks, id folder.ID, folderID, subfolderID string) ([]*message.Meta, error) {
	parts, err := s.mailbox.Children(ctx, subfolderID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch subfolder %s: %w", subfolderID, err)
	}
	out := make([]*message.Meta, 0, len(parts))
	for _, p := range parts {
		meta, err := s.pageMessage(ctx, q, id, folderID, p.Score)
		if err != nil {
			return nil, err
		}
		if meta != nil {
			out = append(out, meta)
		}
	}
	return out, nil
}

func (s *Service) incrementalSync(ctx context.Context, q Quirks, id folder.ID, req *Request, batch int, resp *Response) error {
	if err := s.mailbox.CleanupSynchronizedChanges(ctx, req.FolderID, req.Key); err != nil {
		return err
	}

	truncated := false
	if q.SelectiveAck && req.IsSiblingInHarmony != nil && *req.IsSiblingInHarmony {
		for _, ack := range req.SelectiveAck {
			if err := s.mailbox.RemoveChangesThrough(ctx, req.FolderID, ackChange(ack)); err != nil {
				return fmt.Errorf("failed to apply ack %s: %w", ack, err)
			}
		}
		resp.NextKey = req.Key
		return nil
	}

	changes, err := s.mailbox.ChangesRange(ctx, req.FolderID, 0, batch-1)
	if err != nil {
		return fmt.Errorf("failed to fetch changes of %s: %w", req.FolderID, err)
	}
	if q.SelectiveAck && req.IsSiblingInHarmony != nil && len(req.SelectiveAck) > 0 {
		changes, truncated = truncateBeforeAcks(changes, req.SelectiveAck)
	}

	switch {
	case truncated && len(changes) == 0:
		resp.NextKey = req.Key
		return nil
	case truncated:
		resp.NextKey = folder.KeyOnChange(req.FolderID, changes[len(changes)-1])
	case len(changes) == 0:
		return nil
	case len(changes) >= batch:
		resp.HasNext = true
		resp.NextKey = folder.KeyOnChange(req.FolderID, changes[len(changes)-1])
	}

	for _, c := range changes {
		meta, err := s.changeMessage(ctx, q, id, req.FolderID, c)
		if err != nil {
			return err
		}
		if c.IsAdd {
			meta, err = s.checkSize(ctx, q, req.FolderID, meta, c)
			if err != nil {
				return err
			}
		}
		if meta != nil {
			resp.ServerChanges = append(resp.ServerChanges, meta)
		}
	}
	return nil
}

// ackChange изменение-добавление, соответствующее подтвержденному id сообщения
func ackChange(ack string) folder.Change {
	return folder.AddedScore(folder.ScoreOf(ack))
}

// truncateBeforeAcks оставляет изменения строго до самого раннего подтвержденного
func truncateBeforeAcks(changes []folder.Change, acks []string) ([]folder.Change, bool) {
	cut := ackChange(acks[0])
	for _, ack := range acks[1:] {
		if c := ackChange(ack); folder.CompareChanges(c, cut) < 0 {
			cut = c
		}
	}
	idx := slices.IndexFunc(changes, func(c folder.Change) bool {
		return folder.CompareChanges(c, cut) >= 0
	})
	if idx < 0 {
		return changes, false
	}
	return changes[:idx], true
}

// changeMessage сообщение для записи журнала, nil если отдавать нечего
func (s *Service) changeMessage(ctx context.Context, q Quirks, id folder.ID, folderID string, c folder.Change) (*message.Meta, error) {
	score, numeric := c.Score()
	if !c.IsAdd {
		if !q.DeleteTombstones {
			return nil, nil
		}
		if !numeric {
			return &message.Meta{ID: c.ChildID}, nil
		}
		return &message.Meta{ID: s.messageID(q, id, folderID, score)}, nil
	}
	if !numeric {
		meta, err := s.mailbox.Message(ctx, c.ChildID)
		if errors.Is(err, message.ErrNotFound) {
			return nil, nil
		}
		return meta, err
	}
	return s.pageMessage(ctx, q, id, folderID, score)
}

// messageID id сообщения, которое видит клиент папки
func (s *Service) messageID(q Quirks, id folder.ID, folderID string, score int64) string {
	if id.Type == folder.Group && q.HistoryRedirect {
		return folder.ChildID(folder.HistoryFolder(id.GroupID()), score)
	}
	return folder.ChildID(folderID, score)
}

// pageMessage загружает сообщение ребенка. Сообщения групп берутся из
// истории группы. Отсутствующее сообщение пропускается.
func (s *Service) pageMessage(ctx context.Context, q Quirks, id folder.ID, folderID string, score int64) (*message.Meta, error) {
	var (
		meta *message.Meta
		err  error
	)
	if id.Type == folder.Group {
		meta, err = s.mailbox.GroupMessage(ctx, id.GroupID(), score)
	} else {
		meta, err = s.mailbox.MessageIn(ctx, folderID, score)
	}
	if errors.Is(err, message.ErrNotFound) {
		s.log.Debug("child without message", "folder", folderID, "score", score)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load message: %w", err)
	}
	if id.Type == folder.Group && !q.HistoryRedirect {
		meta = meta.WithID(folder.ChildID(folderID, score))
	}
	return meta, nil
}

// checkSize отбрасывает слишком большое сообщение вместе с его записью в журнале
func (s *Service) checkSize(ctx context.Context, q Quirks, folderID string, meta *message.Meta, c folder.Change) (*message.Meta, error) {
	if meta == nil || !q.SizeCheck {
		return meta, nil
	}
	size := meta.Size()
	if size <= s.config.MaxBodyLength {
		return meta, nil
	}
	s.log.Warn("oversized message discarded", "folder", folderID, "from", meta.From, "to", meta.To, "length", size)
	DroppedItems.Inc()
	if _, err := s.mailbox.RemoveChange(ctx, folderID, c); err != nil {
		return nil, fmt.Errorf("failed to drop change %s: %w", c, err)
	}
	return nil, nil
}
