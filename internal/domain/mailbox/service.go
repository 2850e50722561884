package mailbox

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/exp/slog"

	"wesync/internal/domain/folder"
	"wesync/internal/domain/message"
	"wesync/internal/domain/notice"
)

const (
	DefaultIDCShards = 100
	DefaultIDCIndex  = 1

	dateSpace = 1_000_000
)

// Servicer операции над почтовыми ящиками пользователей
type Servicer interface {
	ReserveChildID(ctx context.Context, folderID string) (int64, error)
	SetFolderLimit(childLimit, changeLimit int)

	PrepareForNewUser(ctx context.Context, user string) error
	NewConversation(ctx context.Context, from, to string) (string, error)
	RemoveFolder(ctx context.Context, user, folderID string) error
	CleanupFolder(ctx context.Context, folderID string) error
	FolderExists(ctx context.Context, folderID string) (bool, error)
	EnsureFolder(ctx context.Context, folderID string) error

	StoreTo(ctx context.Context, folderID string, meta *message.Meta, unread bool) (string, error)
	StoreConversation(ctx context.Context, meta *message.Meta) (string, string, error)
	StoreProperty(ctx context.Context, meta *message.Meta) (string, error)
	StoreSpanPart(ctx context.Context, folderID string, meta *message.Meta, unread bool) (string, error)

	CreateGroup(ctx context.Context, creator string, members []string) (string, error)
	NewGroupChat(ctx context.Context, user, groupID string) (string, error)
	Members(ctx context.Context, groupID string) ([]string, error)
	IsMember(ctx context.Context, groupID, user string) (bool, error)
	AddMember(ctx context.Context, groupID, user string) error
	RemoveMember(ctx context.Context, groupID, user string) error
	StoreToGroup(ctx context.Context, meta *message.Meta, groupID string) (int64, error)
	StoreSpanPartToGroup(ctx context.Context, meta *message.Meta, groupID string) (int64, error)
	BroadcastNewMessage(ctx context.Context, groupID, from string, score int64) error
	BroadcastMemberChange(ctx context.Context, groupID string, op GroupOperation, user string) error

	Message(ctx context.Context, id string) (*message.Meta, error)
	MessageIn(ctx context.Context, folderID string, score int64) (*message.Meta, error)
	GroupMessage(ctx context.Context, groupID string, score int64) (*message.Meta, error)

	CleanupSynchronizedChanges(ctx context.Context, folderID, key string) error
	UnreadNumber(ctx context.Context, folderID string) (int, error)
	UnreadNumbers(ctx context.Context, folderIDs []string) ([]notice.Unread, error)

	Children(ctx context.Context, folderID string) ([]folder.Child, error)
	ChildrenRange(ctx context.Context, folderID string, begin, end int) ([]folder.Child, error)
	ChildrenAfter(ctx context.Context, folderID, childID string, n int) ([]folder.Child, error)
	ChildrenBefore(ctx context.Context, folderID, childID string, n int) ([]folder.Child, error)
	Changes(ctx context.Context, folderID string) ([]folder.Change, error)
	ChangesRange(ctx context.Context, folderID string, begin, end int) ([]folder.Change, error)
	ChangesBefore(ctx context.Context, folderID string, anchor folder.Change, n int) ([]folder.Change, error)
	RemoveChange(ctx context.Context, folderID string, c folder.Change) (bool, error)
	RemoveChangesThrough(ctx context.Context, folderID string, anchor folder.Change) error
	ClearChanges(ctx context.Context, folderID string) ([]folder.Change, error)
}

type ServiceConfig struct {
	IDCShards   int64
	IDCIndex    int64
	ChildLimit  int
	ChangeLimit int
	// Now источник времени для даты в id сообщений
	Now func() time.Time
}

// Service хранит сообщения в папках и ведет журналы изменений.
// Все состояние живет в репозиториях, сервис не держит кэшей.
type Service struct {
	folders  folder.Repository
	messages message.Repository
	log      *slog.Logger

	shards int64
	index  int64
	now    func() time.Time

	childLimit  atomic.Int64
	changeLimit atomic.Int64
}

// NewService создает сервис почтовых ящиков
func NewService(folders folder.Repository, messages message.Repository, log *slog.Logger, config *ServiceConfig) *Service {
	if config == nil {
		config = &ServiceConfig{}
	}
	s := &Service{
		folders:  folders,
		messages: messages,
		log:      log.With("component", "mailbox"),
		shards:   config.IDCShards,
		index:    config.IDCIndex,
		now:      config.Now,
	}
	if s.shards <= 0 {
		s.shards = DefaultIDCShards
	}
	if s.index <= 0 {
		s.index = DefaultIDCIndex
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.SetFolderLimit(config.ChildLimit, config.ChangeLimit)
	return s
}

// ReserveChildID выделяет следующий score в папке. Старшие разряды кодируют
// счетчик папки и номер узла, младшие шесть дату UTC в виде YYMMDD.
func (s *Service) ReserveChildID(ctx context.Context, folderID string) (int64, error) {
	counter, err := s.folders.IncrementCounter(ctx, folderID)
	if err != nil {
		return 0, fmt.Errorf("failed to reserve child id in %s: %w", folderID, err)
	}
	return (counter*s.shards+s.index)*dateSpace + s.dateStamp(), nil
}

func (s *Service) dateStamp() int64 {
	d, _ := strconv.ParseInt(s.now().UTC().Format("060102"), 10, 64)
	return d
}

// SetFolderLimit задает максимальный размер папок, 0 без ограничений
func (s *Service) SetFolderLimit(childLimit, changeLimit int) {
	s.childLimit.Store(int64(max(childLimit, 0)))
	s.changeLimit.Store(int64(max(changeLimit, 0)))
}

func (s *Service) addChild(ctx context.Context, folderID string, c folder.Child) error {
	if err := s.folders.AddChild(ctx, folderID, c); err != nil {
		return fmt.Errorf("failed to add child to %s: %w", folderID, err)
	}
	limit := int(s.childLimit.Load())
	if limit == 0 {
		return nil
	}
	n, err := s.folders.CountChildren(ctx, folderID)
	if err != nil {
		return fmt.Errorf("failed to count children of %s: %w", folderID, err)
	}
	if n > limit {
		if err := s.folders.RemoveFirstChildren(ctx, folderID, n-limit); err != nil {
			return fmt.Errorf("failed to evict children of %s: %w", folderID, err)
		}
		FolderEvictions.WithLabelValues("child").Add(float64(n - limit))
	}
	return nil
}

func (s *Service) addChange(ctx context.Context, folderID string, c folder.Change) error {
	if err := s.folders.AddChange(ctx, folderID, c); err != nil {
		return fmt.Errorf("failed to add change to %s: %w", folderID, err)
	}
	limit := int(s.changeLimit.Load())
	if limit == 0 {
		return nil
	}
	n, err := s.folders.CountChanges(ctx, folderID)
	if err != nil {
		return fmt.Errorf("failed to count changes of %s: %w", folderID, err)
	}
	if n > limit {
		if err := s.folders.RemoveFirstChanges(ctx, folderID, n-limit); err != nil {
			return fmt.Errorf("failed to evict changes of %s: %w", folderID, err)
		}
		FolderEvictions.WithLabelValues("change").Add(float64(n - limit))
	}
	return nil
}
