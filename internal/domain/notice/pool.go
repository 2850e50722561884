package notice

import (
	"context"
	"sync"
	"time"

	"golang.org/x/exp/slog"
)

const (
	DefaultWorkers     = 32
	DefaultQueueSize   = 1024
	DefaultSendTimeout = 5 * time.Second
)

type PoolConfig struct {
	Workers     int
	QueueSize   int
	SendTimeout time.Duration
}

type job struct {
	username string
	notice   *Notice
}

// Pool асинхронная рассылка уведомлений фиксированным числом воркеров.
// При переполнении очереди уведомление отбрасывается, повторов нет.
type Pool struct {
	sender  Sender
	log     *slog.Logger
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan job
	wg     sync.WaitGroup
}

// NewPool запускает воркеры рассылки
func NewPool(sender Sender, log *slog.Logger, config *PoolConfig) *Pool {
	if config == nil {
		config = &PoolConfig{}
	}
	workers := config.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	size := config.QueueSize
	if size <= 0 {
		size = DefaultQueueSize
	}
	timeout := config.SendTimeout
	if timeout <= 0 {
		timeout = DefaultSendTimeout
	}

	p := &Pool{
		sender:  sender,
		log:     log.With("component", "notice"),
		timeout: timeout,
		queue:   make(chan job, size),
	}
	p.wg.Add(workers)
	for range workers {
		go p.work()
	}
	return p
}

// Submit ставит уведомление в очередь, false если оно отброшено
func (p *Pool) Submit(username string, n *Notice) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		NoticesDropped.Inc()
		return false
	}
	select {
	case p.queue <- job{username: username, notice: n}:
		QueueDepth.Inc()
		return true
	default:
		NoticesDropped.Inc()
		p.log.Warn("notice queue is full, dropping", "username", username)
		return false
	}
}

func (p *Pool) work() {
	defer p.wg.Done()
	for j := range p.queue {
		QueueDepth.Dec()
		p.deliver(j)
	}
}

func (p *Pool) deliver(j job) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	if err := p.sender.Send(ctx, j.username, j.notice); err != nil {
		NoticesSent.WithLabelValues("error").Inc()
		p.log.Debug("failed to send notice", "username", j.username, "error", err)
		return
	}
	NoticesSent.WithLabelValues("ok").Inc()
}

// Close прекращает прием и ждет доставки оставшихся уведомлений
func (p *Pool) Close(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
