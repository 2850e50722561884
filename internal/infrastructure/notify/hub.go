package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/coder/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/exp/slog"

	"wesync/internal/domain/notice"
)

var Connections = prometheus.NewGauge(prometheus.GaugeOpts{
	Namespace: "wesync",
	Subsystem: "notify",
	Name:      "connections",
	Help:      "Open notification websockets",
})

func Collectors() []prometheus.Collector {
	return []prometheus.Collector{Connections}
}

var ErrClosed = errors.New("notification hub is closed")

type client struct {
	conn *websocket.Conn
}

// Hub держит websocket соединения устройств и доставляет им уведомления.
// У одного пользователя может быть несколько устройств.
type Hub struct {
	users  *xsync.MapOf[string, *xsync.MapOf[*client, struct{}]]
	log    *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc
	closed atomic.Bool
}

func NewHub(log *slog.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		users:  xsync.NewMapOf[string, *xsync.MapOf[*client, struct{}]](),
		log:    log.With("component", "notify"),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Send пишет уведомление во все соединения пользователя. Пользователь без
// соединений не ошибка: он заберет изменения следующей синхронизацией.
func (h *Hub) Send(ctx context.Context, username string, n *notice.Notice) error {
	if h.closed.Load() {
		return ErrClosed
	}
	clients, ok := h.users.Load(username)
	if !ok {
		return nil
	}
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to encode notice: %w", err)
	}

	var errs []error
	clients.Range(func(c *client, _ struct{}) bool {
		if err := c.conn.Write(ctx, websocket.MessageText, data); err != nil {
			errs = append(errs, err)
			h.remove(username, c, websocket.StatusInternalError)
		}
		return true
	})
	return errors.Join(errs...)
}

// Serve переводит запрос в websocket и держит его до отключения клиента
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, username string) {
	if h.closed.Load() {
		http.Error(w, ErrClosed.Error(), http.StatusServiceUnavailable)
		return
	}
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "username", username, "error", err)
		return
	}

	c := &client{conn: conn}
	clients, _ := h.users.LoadOrCompute(username, func() *xsync.MapOf[*client, struct{}] {
		return xsync.NewMapOf[*client, struct{}]()
	})
	clients.Store(c, struct{}{})
	Connections.Inc()
	h.log.Debug("device connected", "username", username)

	defer h.remove(username, c, websocket.StatusNormalClosure)
	for {
		// клиент ничего не присылает, чтение нужно только для обнаружения закрытия
		if _, _, err := conn.Read(h.ctx); err != nil {
			return
		}
	}
}

func (h *Hub) remove(username string, c *client, code websocket.StatusCode) {
	clients, ok := h.users.Load(username)
	if !ok {
		return
	}
	if _, loaded := clients.LoadAndDelete(c); !loaded {
		return
	}
	Connections.Dec()
	_ = c.conn.Close(code, "")
	h.log.Debug("device disconnected", "username", username)
}

// Devices число открытых соединений пользователя
func (h *Hub) Devices(username string) int {
	clients, ok := h.users.Load(username)
	if !ok {
		return 0
	}
	return clients.Size()
}

// Close закрывает все соединения
func (h *Hub) Close() {
	if !h.closed.CompareAndSwap(false, true) {
		return
	}
	h.cancel()
	h.users.Range(func(username string, clients *xsync.MapOf[*client, struct{}]) bool {
		clients.Range(func(c *client, _ struct{}) bool {
			h.remove(username, c, websocket.StatusGoingAway)
			return true
		})
		return true
	})
}

var _ notice.Sender = (*Hub)(nil)
