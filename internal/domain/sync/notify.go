package sync

import (
	"context"

	"wesync/internal/domain/folder"
	"wesync/internal/domain/message"
	"wesync/internal/domain/notice"
)

// notifyGroup уведомляет участников группы о новом сообщении
func (s *Service) notifyGroup(ctx context.Context, q Quirks, groupID string, meta *message.Meta, score int64) {
	members, err := s.mailbox.Members(ctx, groupID)
	if err != nil {
		s.log.Warn("failed to list members for notice", "group", groupID, "error", err)
		return
	}
	for _, m := range members {
		if q.AsyncNotice && m == meta.From {
			continue
		}
		recvFolder := folder.OnGroup(m, groupID)
		id := folder.ChildID(recvFolder, score)
		if q.HistoryRedirect {
			id = folder.ChildID(folder.HistoryFolder(groupID), score)
		}
		s.notifyReceiver(ctx, q, m, recvFolder, meta.WithID(id))
	}
}

// notifyReceiver отправляет получателю число непрочитанных и само сообщение.
// Доставка не гарантируется, ошибки только логируются.
func (s *Service) notifyReceiver(ctx context.Context, q Quirks, username, folderID string, meta *message.Meta) {
	unread, err := s.mailbox.UnreadNumber(ctx, folderID)
	if err != nil {
		s.log.Warn("failed to count unread", "folder", folderID, "error", err)
		return
	}

	if !q.AsyncNotice {
		n := &notice.Notice{Unread: []notice.Unread{{FolderID: folderID, Num: unread, Content: message.Refine(meta)}}}
		if err := s.sender.Send(ctx, username, n); err != nil {
			s.log.Debug("failed to send notice", "username", username, "error", err)
		}
		return
	}

	change := folder.AddedScore(folder.ScoreOf(meta.ID))
	meta, err = s.checkSize(ctx, q, folderID, meta, change)
	if err != nil {
		s.log.Warn("failed to check notice size", "folder", folderID, "error", err)
		return
	}
	if meta == nil {
		return
	}

	n := &notice.Notice{
		Unread:   []notice.Unread{{FolderID: folderID, Num: unread}},
		Messages: []*message.Meta{meta},
	}
	preceding, err := s.mailbox.ChangesBefore(ctx, folderID, change, 1)
	if err != nil {
		s.log.Warn("failed to fetch preceding change", "folder", folderID, "error", err)
	}
	for _, c := range preceding {
		if score, ok := c.Score(); ok {
			n.ExpectAck = append(n.ExpectAck, folder.ChildID(folderID, score))
		}
	}

	if s.pool == nil {
		if err := s.sender.Send(ctx, username, n); err != nil {
			s.log.Debug("failed to send notice", "username", username, "error", err)
		}
		return
	}
	s.pool.Submit(username, n)
}
