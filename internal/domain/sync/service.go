package sync

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/exp/slog"

	"wesync/internal/domain/folder"
	"wesync/internal/domain/mailbox"
	"wesync/internal/domain/notice"
	"wesync/internal/domain/privacy"
)

const (
	DefaultBatchSize         = 20
	DefaultPropertyBatchSize = 200
	DefaultMaxBodyLength     = 1 << 20
)

// Servicer синхронизация папок
type Servicer interface {
	Sync(ctx context.Context, username string, q Quirks, req *Request) (*Response, error)
}

// Notifier асинхронная доставка уведомлений
type Notifier interface {
	Submit(username string, n *notice.Notice) bool
}

type ServiceConfig struct {
	BatchSize           int
	PropertyBatchSize   int
	MaxBodyLength       int
	SupportedProperties []string
	// Now источник серверного времени для клиентских изменений
	Now func() time.Time
}

// Service движок синхронизации. Состояния между запросами не хранит.
type Service struct {
	mailbox  mailbox.Servicer
	privacy  privacy.Policy
	pool     Notifier
	sender   notice.Sender
	log      *slog.Logger
	config   ServiceConfig
	supports map[string]struct{}
}

// NewService создает движок синхронизации
func NewService(
	mb mailbox.Servicer,
	policy privacy.Policy,
	pool Notifier,
	sender notice.Sender,
	log *slog.Logger,
	config *ServiceConfig,
) *Service {
	cfg := ServiceConfig{}
	if config != nil {
		cfg = *config
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.PropertyBatchSize <= 0 {
		cfg.PropertyBatchSize = DefaultPropertyBatchSize
	}
	if cfg.MaxBodyLength <= 0 {
		cfg.MaxBodyLength = DefaultMaxBodyLength
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if policy == nil {
		policy = privacy.AllowAll{}
	}
	if sender == nil {
		sender = notice.Discard
	}

	supports := make(map[string]struct{}, len(cfg.SupportedProperties))
	for _, p := range cfg.SupportedProperties {
		supports[p] = struct{}{}
	}

	return &Service{
		mailbox:  mb,
		privacy:  policy,
		pool:     pool,
		sender:   sender,
		log:      log.With("component", "sync"),
		config:   cfg,
		supports: supports,
	}
}

// IsPropertySupported true если папки свойства prop доступны для синхронизации
func (s *Service) IsPropertySupported(prop string) bool {
	_, ok := s.supports[prop]
	return ok
}

// Sync выполняет один шаг синхронизации папки: отдает страницу детей или
// изменений и применяет присланные клиентом изменения
func (s *Service) Sync(ctx context.Context, username string, q Quirks, req *Request) (*Response, error) {
	start := time.Now()
	defer func() {
		RequestDuration.WithLabelValues(q.Revision).Observe(time.Since(start).Seconds())
	}()

	if req == nil || req.FolderID == "" || req.Key == "" {
		return nil, ErrMalformedRequest
	}
	id := folder.Parse(req.FolderID)
	if id.Type == folder.Unknown || id.Type == folder.Root {
		return nil, ErrMalformedRequest
	}

	ok, err := s.permitted(ctx, username, id, req.FolderID)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.log.Warn("unpermitted folder access", "username", username, "folder", req.FolderID)
		return nil, ErrPermissionDenied
	}

	if id.Type == folder.Conversation {
		exists, err := s.mailbox.FolderExists(ctx, req.FolderID)
		if err != nil {
			return nil, fmt.Errorf("failed to check folder: %w", err)
		}
		if !exists {
			s.log.Warn("sync on missing folder", "username", username, "folder", req.FolderID)
			return nil, ErrFolderNotFound
		}
	}

	full := req.IsFullSync
	if req.Key == folder.BootstrapKey {
		if full {
			if _, err := s.mailbox.ClearChanges(ctx, req.FolderID); err != nil {
				return nil, fmt.Errorf("failed to reset changes: %w", err)
			}
		}
	} else {
		full = folder.IsFullKey(req.Key)
	}

	batch := s.config.BatchSize
	if id.Type == folder.Property {
		full = true
		batch = s.config.PropertyBatchSize
	}

	resp := &Response{
		FolderID:   req.FolderID,
		IsFullSync: full,
		NextKey:    folder.EmptyKey(req.FolderID, full),
	}

	switch {
	case req.IsSendOnly:
		resp.NextKey = req.Key
		Requests.WithLabelValues(q.Revision, "send_only").Inc()
	case full:
		Requests.WithLabelValues(q.Revision, "full").Inc()
		if err := s.fullSync(ctx, q, id, req, batch, resp); err != nil {
			return nil, err
		}
	default:
		Requests.WithLabelValues(q.Revision, "incremental").Inc()
		if err := s.incrementalSync(ctx, q, id, req, batch, resp); err != nil {
			return nil, err
		}
	}

	if err := s.applyClientChanges(ctx, q, id, req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}
