package mailbox

import (
	"context"
	"fmt"

	"wesync/internal/domain/folder"
	"wesync/internal/domain/message"
)

// CreateGroup создает группу из создателя и участников, у каждого появляется
// групповая папка
func (s *Service) CreateGroup(ctx context.Context, creator string, members []string) (string, error) {
	if creator == "" {
		return "", ErrInvalidGroup
	}
	seq, err := s.folders.IncrementCounter(ctx, folder.OnRoot(creator))
	if err != nil {
		return "", fmt.Errorf("failed to allocate group id for %s: %w", creator, err)
	}
	groupID := folder.GroupID(creator, seq)
	if err := s.folders.CreateFolder(ctx, folder.HistoryFolder(groupID)); err != nil {
		return "", fmt.Errorf("failed to create group %s: %w", groupID, err)
	}

	if err := s.AddMember(ctx, groupID, creator); err != nil {
		return "", err
	}
	for _, m := range members {
		if m == creator || m == "" {
			continue
		}
		if err := s.AddMember(ctx, groupID, m); err != nil {
			return "", err
		}
	}
	s.log.Info("group created", "group", groupID, "creator", creator, "members", len(members))
	return groupID, nil
}

// NewGroupChat создает групповую папку пользователя
func (s *Service) NewGroupChat(ctx context.Context, user, groupID string) (string, error) {
	folderID := folder.OnGroup(user, groupID)
	if err := s.attach(ctx, user, folderID); err != nil {
		return "", err
	}
	return folderID, nil
}

// Members участники группы в порядке вступления
func (s *Service) Members(ctx context.Context, groupID string) ([]string, error) {
	children, err := s.folders.Children(ctx, folder.MembersFolder(groupID))
	if err != nil {
		return nil, fmt.Errorf("failed to list members of %s: %w", groupID, err)
	}
	members := make([]string, 0, len(children))
	for _, c := range children {
		members = append(members, c.ID)
	}
	return members, nil
}

func (s *Service) IsMember(ctx context.Context, groupID, user string) (bool, error) {
	return s.folders.IsChild(ctx, folder.MembersFolder(groupID), user)
}

// AddMember добавляет участника и создает ему групповую папку
func (s *Service) AddMember(ctx context.Context, groupID, user string) error {
	if !folder.IsGroupID(groupID) {
		return ErrInvalidGroup
	}
	membersFolder := folder.MembersFolder(groupID)
	exists, err := s.folders.IsChild(ctx, membersFolder, user)
	if err != nil {
		return fmt.Errorf("failed to check member %s: %w", user, err)
	}
	if !exists {
		score, err := s.ReserveChildID(ctx, membersFolder)
		if err != nil {
			return err
		}
		if err := s.folders.AddChild(ctx, membersFolder, folder.Child{ID: user, Score: score}); err != nil {
			return fmt.Errorf("failed to add member %s: %w", user, err)
		}
	}
	_, err = s.NewGroupChat(ctx, user, groupID)
	return err
}

// RemoveMember исключает участника и удаляет его групповую папку
func (s *Service) RemoveMember(ctx context.Context, groupID, user string) error {
	removed, err := s.folders.RemoveChild(ctx, folder.MembersFolder(groupID), user)
	if err != nil {
		return fmt.Errorf("failed to remove member %s: %w", user, err)
	}
	if !removed {
		return ErrNotMember
	}
	return s.RemoveFolder(ctx, user, folder.OnGroup(user, groupID))
}

// StoreToGroup сохраняет сообщение в историю группы и возвращает его score
func (s *Service) StoreToGroup(ctx context.Context, meta *message.Meta, groupID string) (int64, error) {
	if meta == nil {
		return 0, ErrInvalidMessage
	}
	history := folder.HistoryFolder(groupID)
	score, err := s.ReserveChildID(ctx, history)
	if err != nil {
		return 0, err
	}
	id := folder.ChildID(history, score)
	if err := s.messages.Put(ctx, meta.WithID(id)); err != nil {
		return 0, fmt.Errorf("failed to put message %s: %w", id, err)
	}
	if err := s.addChild(ctx, history, folder.ScoreChild(score)); err != nil {
		return 0, err
	}
	MessagesStored.WithLabelValues(folder.Group.String()).Inc()
	return score, nil
}

// BroadcastNewMessage раскладывает сообщение из истории по папкам участников.
// Отправитель получает ребенка без записи в журнал.
func (s *Service) BroadcastNewMessage(ctx context.Context, groupID, from string, score int64) error {
	members, err := s.Members(ctx, groupID)
	if err != nil {
		return err
	}
	for _, m := range members {
		folderID := folder.OnGroup(m, groupID)
		if err := s.addChild(ctx, folderID, folder.ScoreChild(score)); err != nil {
			return err
		}
		if m == from {
			continue
		}
		if err := s.markUnread(ctx, folderID, score); err != nil {
			return err
		}
	}
	return nil
}

// StoreSpanPartToGroup сохраняет часть составного сообщения в историю группы.
// Ребенком часть становится только в подпапке данных группы, участникам
// кроме отправителя достается запись в журнале.
func (s *Service) StoreSpanPartToGroup(ctx context.Context, meta *message.Meta, groupID string) (int64, error) {
	if meta == nil || !meta.HasSpan() {
		return 0, ErrInvalidMessage
	}
	history := folder.HistoryFolder(groupID)
	score, err := s.ReserveChildID(ctx, history)
	if err != nil {
		return 0, err
	}
	id := folder.ChildID(history, score)
	if err := s.messages.Put(ctx, meta.WithID(id)); err != nil {
		return 0, fmt.Errorf("failed to put message %s: %w", id, err)
	}
	if err := s.addChild(ctx, folder.OnData(groupID, meta.SpanID), folder.ScoreChild(score)); err != nil {
		return 0, err
	}

	members, err := s.Members(ctx, groupID)
	if err != nil {
		return 0, err
	}
	for _, m := range members {
		if m == meta.From {
			continue
		}
		if err := s.markUnread(ctx, folder.OnGroup(m, groupID), score); err != nil {
			return 0, err
		}
	}
	MessagesStored.WithLabelValues(folder.Data.String()).Inc()
	return score, nil
}

// BroadcastMemberChange записывает операцию над составом в историю и
// отмечает свойство участников как измененное у каждого участника
func (s *Service) BroadcastMemberChange(ctx context.Context, groupID string, op GroupOperation, user string) error {
	if op == OperationUnknown {
		return ErrUnknownOperation
	}
	record := &message.Meta{
		From:    user,
		To:      groupID,
		Type:    message.TypeOperation,
		Content: []byte(op.String()),
		Time:    s.now().UTC().Unix(),
	}
	score, err := s.StoreToGroup(ctx, record, groupID)
	if err != nil {
		return err
	}
	if err := s.BroadcastNewMessage(ctx, groupID, "", score); err != nil {
		return err
	}

	members, err := s.Members(ctx, groupID)
	if err != nil {
		return err
	}
	membersFolder := folder.MembersFolder(groupID)
	for _, m := range members {
		if err := s.addChange(ctx, folder.OnRoot(m), folder.Added(membersFolder)); err != nil {
			return err
		}
	}
	s.log.Debug("group membership changed", "group", groupID, "op", op.String(), "user", user)
	return nil
}
