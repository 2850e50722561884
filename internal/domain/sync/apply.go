package sync

import (
	"context"

	"wesync/internal/domain/folder"
	"wesync/internal/domain/message"
)

// applyClientChanges сохраняет присланные клиентом сообщения. Отклоненные
// изменения пропускаются, ошибки хранилища прерывают запрос.
func (s *Service) applyClientChanges(ctx context.Context, q Quirks, id folder.ID, req *Request, resp *Response) error {
	for _, meta := range req.ClientChanges {
		if meta == nil {
			continue
		}
		if q.SizeCheck {
			if size := meta.Size(); size > s.config.MaxBodyLength {
				s.log.Warn("oversized client change discarded", "from", meta.From, "to", meta.To, "length", size)
				ClientChanges.WithLabelValues("oversized").Inc()
				continue
			}
		}
		if !validClientChange(id, meta) {
			s.log.Warn("rejected client change", "folder", req.FolderID, "from", meta.From, "to", meta.To)
			ClientChanges.WithLabelValues("invalid").Inc()
			continue
		}
		if !s.privacy.Allowed(meta) {
			s.log.Warn("message not permitted", "from", meta.From, "to", meta.To)
			ClientChanges.WithLabelValues("denied").Inc()
			continue
		}

		stamped := *meta
		stamped.Time = s.config.Now().UTC().Unix()

		var err error
		switch id.Type {
		case folder.Group:
			err = s.applyGroup(ctx, q, id, req.FolderID, &stamped, resp)
		default:
			err = s.applyConversation(ctx, q, id, req.FolderID, &stamped, resp)
		}
		if err != nil {
			return err
		}
		ClientChanges.WithLabelValues("applied").Inc()
	}
	return nil
}

// validClientChange отправитель должен быть владельцем папки, получатель ее адресатом.
// Свойства через sync не пишутся, для них есть плагины.
func validClientChange(id folder.ID, meta *message.Meta) bool {
	if meta.From != id.Owner {
		return false
	}
	switch id.Type {
	case folder.Conversation, folder.ConversationAlt:
		return meta.To == id.Peer()
	case folder.Group:
		return meta.To == id.GroupID()
	}
	return false
}

// receiverFolder папка собеседника того же вида
func receiverFolder(id folder.ID) string {
	if id.Type == folder.ConversationAlt {
		return folder.OnConversationAlt(id.Peer(), id.Owner)
	}
	return folder.OnConversation(id.Peer(), id.Owner)
}

// subfolderMarker запись в именованной папке, указывающая на подпапку частей
func subfolderMarker(meta *message.Meta, subfolderID string) *message.Meta {
	return &message.Meta{
		ID:      meta.ID,
		From:    meta.From,
		To:      meta.To,
		Type:    message.TypeSubfolder,
		SpanID:  meta.SpanID,
		Content: []byte(subfolderID),
		Time:    meta.Time,
	}
}

func (s *Service) applyConversation(ctx context.Context, q Quirks, id folder.ID, folderID string, meta *message.Meta, resp *Response) error {
	recvFolder := receiverFolder(id)

	if q.Spans && meta.HasSpan() {
		return s.applyConversationSpan(ctx, q, folderID, recvFolder, meta, resp)
	}

	var senderID, receiverID string
	if id.Type == folder.Conversation {
		var err error
		senderID, receiverID, err = s.mailbox.StoreConversation(ctx, meta)
		if err != nil {
			return err
		}
	} else {
		var err error
		if senderID, err = s.mailbox.StoreTo(ctx, folderID, meta, false); err != nil {
			return err
		}
		if err = s.mailbox.EnsureFolder(ctx, recvFolder); err != nil {
			return err
		}
		if receiverID, err = s.mailbox.StoreTo(ctx, recvFolder, meta, true); err != nil {
			return err
		}
	}

	resp.ClientChanges = append(resp.ClientChanges, message.Indicator(meta, senderID))
	s.notifyReceiver(ctx, q, meta.To, recvFolder, meta.WithID(receiverID))
	return nil
}

func (s *Service) applyConversationSpan(ctx context.Context, q Quirks, folderID, recvFolder string, meta *message.Meta, resp *Response) error {
	if err := s.mailbox.EnsureFolder(ctx, recvFolder); err != nil {
		return err
	}

	if meta.SpanSequenceNo == 1 {
		marker := subfolderMarker(meta, folder.OnData(meta.From, meta.SpanID))
		markerID, err := s.mailbox.StoreTo(ctx, folderID, marker, false)
		if err != nil {
			return err
		}
		resp.ClientChanges = append(resp.ClientChanges, message.Indicator(marker, markerID))

		recvMarker := subfolderMarker(meta, folder.OnData(meta.To, meta.SpanID))
		recvMarkerID, err := s.mailbox.StoreTo(ctx, recvFolder, recvMarker, true)
		if err != nil {
			return err
		}
		s.notifyReceiver(ctx, q, meta.To, recvFolder, recvMarker.WithID(recvMarkerID))
	}

	partID, err := s.mailbox.StoreSpanPart(ctx, folderID, meta, false)
	if err != nil {
		return err
	}
	resp.ClientChanges = append(resp.ClientChanges, message.Indicator(meta, partID))

	recvPartID, err := s.mailbox.StoreSpanPart(ctx, recvFolder, meta, true)
	if err != nil {
		return err
	}
	s.notifyReceiver(ctx, q, meta.To, recvFolder, meta.WithID(recvPartID))
	return nil
}

func (s *Service) applyGroup(ctx context.Context, q Quirks, id folder.ID, folderID string, meta *message.Meta, resp *Response) error {
	groupID := id.GroupID()

	if q.Spans && meta.HasSpan() {
		if meta.SpanSequenceNo == 1 {
			marker := subfolderMarker(meta, folder.OnData(groupID, meta.SpanID))
			score, err := s.mailbox.StoreToGroup(ctx, marker, groupID)
			if err != nil {
				return err
			}
			if err := s.mailbox.BroadcastNewMessage(ctx, groupID, meta.From, score); err != nil {
				return err
			}
			resp.ClientChanges = append(resp.ClientChanges, message.Indicator(marker, s.messageID(q, id, folderID, score)))
		}

		score, err := s.mailbox.StoreSpanPartToGroup(ctx, meta, groupID)
		if err != nil {
			return err
		}
		resp.ClientChanges = append(resp.ClientChanges, message.Indicator(meta, s.messageID(q, id, folderID, score)))
		s.notifyGroup(ctx, q, groupID, meta, score)
		return nil
	}

	score, err := s.mailbox.StoreToGroup(ctx, meta, groupID)
	if err != nil {
		return err
	}
	if err := s.mailbox.BroadcastNewMessage(ctx, groupID, meta.From, score); err != nil {
		return err
	}
	resp.ClientChanges = append(resp.ClientChanges, message.Indicator(meta, s.messageID(q, id, folderID, score)))
	s.notifyGroup(ctx, q, groupID, meta, score)
	return nil
}
