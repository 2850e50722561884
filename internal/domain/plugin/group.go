package plugin

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/exp/slog"

	"wesync/internal/domain/mailbox"
	"wesync/internal/domain/message"
)

// GroupName имя плагина управления группами
const GroupName = "group"

// GroupOperationRequest содержимое операции над группой
type GroupOperationRequest struct {
	Type     byte   `json:"type"`
	GroupID  string `json:"group_id"`
	Username string `json:"username,omitempty"`
}

type groupMailbox interface {
	IsMember(ctx context.Context, groupID, user string) (bool, error)
	AddMember(ctx context.Context, groupID, user string) error
	RemoveMember(ctx context.Context, groupID, user string) error
	BroadcastMemberChange(ctx context.Context, groupID string, op mailbox.GroupOperation, user string) error
}

// Group изменяет состав группы по запросу ее участника
type Group struct {
	mailbox groupMailbox
	log     *slog.Logger
}

func NewGroup(mb groupMailbox, log *slog.Logger) *Group {
	return &Group{mailbox: mb, log: log.With("plugin", GroupName)}
}

func (g *Group) Name() string { return GroupName }

func (g *Group) Handle(ctx context.Context, username string, req *message.Meta) (*message.Meta, error) {
	var op GroupOperationRequest
	if err := json.Unmarshal(req.Content, &op); err != nil || op.GroupID == "" {
		g.log.Warn("invalid group operation", "username", username)
		return nil, ErrInvalidOperation
	}

	ok, err := g.mailbox.IsMember(ctx, op.GroupID, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if !ok {
		g.log.Warn("group change by non-member", "group", op.GroupID, "username", username)
		return nil, ErrNotMember
	}

	kind := mailbox.GroupOperationFromCode(op.Type)
	affected := op.Username
	switch kind {
	case mailbox.OperationAddMember, mailbox.OperationRemoveMember:
	case mailbox.OperationQuitGroup:
		affected = username
	default:
		g.log.Error("undefined group operation", "type", op.Type, "username", username)
		return nil, ErrInvalidOperation
	}
	if affected == "" {
		return nil, ErrInvalidOperation
	}

	if kind == mailbox.OperationAddMember {
		err = g.mailbox.AddMember(ctx, op.GroupID, affected)
	} else {
		err = g.mailbox.RemoveMember(ctx, op.GroupID, affected)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", kind, err)
	}

	if err := g.mailbox.BroadcastMemberChange(ctx, op.GroupID, kind, affected); err != nil {
		return nil, fmt.Errorf("failed to broadcast %s: %w", kind, err)
	}
	return &message.Meta{ID: req.ID, Type: message.TypeOperation}, nil
}
