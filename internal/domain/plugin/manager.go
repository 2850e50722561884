package plugin

import (
	"context"
	"errors"

	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/exp/slog"

	"wesync/internal/domain/message"
)

var (
	ErrAlreadyRegistered = errors.New("plugin already registered")
	ErrInvalidOperation  = errors.New("invalid plugin operation")
	ErrNotMember         = errors.New("operation requires group membership")
)

// Handler обработчик операций, адресованных плагину по имени в meta.To
type Handler interface {
	Name() string
	Handle(ctx context.Context, username string, req *message.Meta) (*message.Meta, error)
}

// Manager маршрутизирует операции к зарегистрированным плагинам
type Manager struct {
	handlers *xsync.MapOf[string, Handler]
	log      *slog.Logger
}

func NewManager(log *slog.Logger) *Manager {
	return &Manager{
		handlers: xsync.NewMapOf[string, Handler](),
		log:      log.With("component", "plugin"),
	}
}

// Register добавляет плагин, повторная регистрация имени запрещена
func (m *Manager) Register(h Handler) error {
	if _, loaded := m.handlers.LoadOrStore(h.Name(), h); loaded {
		m.log.Error("plugin registered twice", "plugin", h.Name())
		return ErrAlreadyRegistered
	}
	m.log.Info("plugin registered", "plugin", h.Name())
	return nil
}

func (m *Manager) IsRegistered(name string) bool {
	_, ok := m.handlers.Load(name)
	return ok
}

// Handle передает операцию плагину. Для неизвестного адресата ответа нет.
func (m *Manager) Handle(ctx context.Context, username string, req *message.Meta) (*message.Meta, error) {
	if req == nil || req.To == "" {
		m.log.Warn("operation without target", "username", username)
		return nil, nil
	}
	h, ok := m.handlers.Load(req.To)
	if !ok {
		m.log.Warn("plugin not registered", "plugin", req.To, "username", username)
		return nil, nil
	}
	return h.Handle(ctx, username, req)
}

// Null плагин, который принимает все и ничего не делает
type Null struct {
	PluginName string
}

func (n Null) Name() string { return n.PluginName }

func (Null) Handle(context.Context, string, *message.Meta) (*message.Meta, error) {
	return nil, nil
}
