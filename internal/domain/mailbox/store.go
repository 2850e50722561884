package mailbox

import (
	"context"
	"fmt"

	"wesync/internal/domain/folder"
	"wesync/internal/domain/message"
)

// StoreTo сохраняет сообщение в папку под новым id. Если unread, изменение
// попадает в журнал папки, а сама папка отмечается в корне владельца.
func (s *Service) StoreTo(ctx context.Context, folderID string, meta *message.Meta, unread bool) (string, error) {
	if meta == nil {
		return "", ErrInvalidMessage
	}
	score, err := s.ReserveChildID(ctx, folderID)
	if err != nil {
		return "", err
	}
	id := folder.ChildID(folderID, score)
	if err := s.messages.Put(ctx, meta.WithID(id)); err != nil {
		return "", fmt.Errorf("failed to put message %s: %w", id, err)
	}
	if err := s.addChild(ctx, folderID, folder.ScoreChild(score)); err != nil {
		return "", err
	}
	if unread {
		if err := s.markUnread(ctx, folderID, score); err != nil {
			return "", err
		}
	}
	MessagesStored.WithLabelValues(folder.TypeOf(folderID).String()).Inc()
	return id, nil
}

func (s *Service) markUnread(ctx context.Context, folderID string, score int64) error {
	if err := s.addChange(ctx, folderID, folder.AddedScore(score)); err != nil {
		return err
	}
	return s.addChange(ctx, folder.OnRoot(folder.Owner(folderID)), folder.Added(folderID))
}

// StoreConversation кладет сообщение в ящики отправителя и получателя.
// У получателя сообщение непрочитанное, недостающие диалоги создаются.
func (s *Service) StoreConversation(ctx context.Context, meta *message.Meta) (string, string, error) {
	if meta == nil || meta.From == "" || meta.To == "" {
		return "", "", ErrInvalidMessage
	}
	if meta.Type == message.TypeProperty {
		id, err := s.StoreProperty(ctx, meta)
		return id, "", err
	}

	senderFolder := folder.OnConversation(meta.From, meta.To)
	if err := s.EnsureFolder(ctx, senderFolder); err != nil {
		return "", "", err
	}
	senderID, err := s.StoreTo(ctx, senderFolder, meta, false)
	if err != nil {
		return "", "", err
	}

	receiverFolder := folder.OnConversation(meta.To, meta.From)
	if err := s.EnsureFolder(ctx, receiverFolder); err != nil {
		return "", "", err
	}
	receiverID, err := s.StoreTo(ctx, receiverFolder, meta, true)
	if err != nil {
		return "", "", err
	}
	return senderID, receiverID, nil
}

// StoreProperty записывает значение свойства meta.To пользователя meta.From.
// Ребенком становится сам id сообщения.
func (s *Service) StoreProperty(ctx context.Context, meta *message.Meta) (string, error) {
	if meta == nil || meta.ID == "" || meta.From == "" || meta.To == "" {
		return "", ErrInvalidMessage
	}
	folderID := folder.OnProperty(meta.From, meta.To)
	if err := s.EnsureFolder(ctx, folderID); err != nil {
		return "", err
	}
	score, err := s.ReserveChildID(ctx, folderID)
	if err != nil {
		return "", err
	}
	if err := s.addChild(ctx, folderID, folder.Child{ID: meta.ID, Score: score}); err != nil {
		return "", err
	}
	if err := s.addChange(ctx, folder.OnRoot(meta.From), folder.Added(folderID)); err != nil {
		return "", err
	}
	MessagesStored.WithLabelValues(folder.Property.String()).Inc()
	return meta.ID, nil
}

// StoreSpanPart сохраняет часть составного сообщения. Id выделяется в папке
// folderID, а ребенком часть становится в подпапке данных владельца.
func (s *Service) StoreSpanPart(ctx context.Context, folderID string, meta *message.Meta, unread bool) (string, error) {
	if meta == nil || !meta.HasSpan() {
		return "", ErrInvalidMessage
	}
	score, err := s.ReserveChildID(ctx, folderID)
	if err != nil {
		return "", err
	}
	id := folder.ChildID(folderID, score)
	if err := s.messages.Put(ctx, meta.WithID(id)); err != nil {
		return "", fmt.Errorf("failed to put message %s: %w", id, err)
	}
	sub := folder.OnData(folder.Owner(folderID), meta.SpanID)
	if err := s.addChild(ctx, sub, folder.ScoreChild(score)); err != nil {
		return "", err
	}
	if unread {
		if err := s.markUnread(ctx, folderID, score); err != nil {
			return "", err
		}
	}
	MessagesStored.WithLabelValues(folder.Data.String()).Inc()
	return id, nil
}
