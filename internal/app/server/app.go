package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/exp/slog"

	"wesync/internal/app/server/api"
	healthAPI "wesync/internal/app/server/api/http/health"
	"wesync/internal/app/server/config"
	"wesync/internal/domain/command"
	"wesync/internal/domain/file"
	"wesync/internal/domain/folder"
	"wesync/internal/domain/mailbox"
	"wesync/internal/domain/message"
	"wesync/internal/domain/notice"
	"wesync/internal/domain/plugin"
	"wesync/internal/domain/privacy"
	"wesync/internal/domain/sync"
	"wesync/internal/infrastructure/notify"
	"wesync/internal/infrastructure/storage/cached"
	"wesync/internal/infrastructure/storage/memory"
	"wesync/internal/infrastructure/storage/pebble"
	"wesync/internal/infrastructure/storage/postgres"
)

// repositories набор хранилищ выбранного драйвера
type repositories struct {
	folders  folder.Repository
	messages message.Repository
	files    file.Repository
	pinger   healthAPI.Pinger
	close    func() error
}

// App собранный сервер WeSync
type App struct {
	cfg      *config.Config
	log      *slog.Logger
	repos    *repositories
	mailbox  *mailbox.Service
	privacy  *privacy.Service
	hub      *notify.Hub
	pool     *notice.Pool
	registry *prometheus.Registry
	server   *http.Server
}

func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	repos, err := openStorage(ctx, cfg, registry)
	if err != nil {
		return nil, err
	}

	if cfg.Cache.Messages > 0 {
		messages, err := cached.NewMessageRepository(repos.messages, cfg.Cache.Messages)
		if err != nil {
			_ = repos.close()
			return nil, fmt.Errorf("failed to create message cache: %w", err)
		}
		repos.messages = messages
		registry.MustRegister(cached.Collectors()...)
	}

	mb := mailbox.NewService(repos.folders, repos.messages, log, &mailbox.ServiceConfig{
		IDCShards:   cfg.Mailbox.IDCShards,
		IDCIndex:    cfg.Mailbox.IDCIndex,
		ChildLimit:  cfg.Mailbox.ChildLimit,
		ChangeLimit: cfg.Mailbox.ChangeLimit,
	})

	policy := privacy.NewService()
	policy.Reset(cfg.Privacy.Pairs())

	hub := notify.NewHub(log)
	pool := notice.NewPool(hub, log, &notice.PoolConfig{
		Workers:     cfg.Notice.Workers,
		QueueSize:   cfg.Notice.QueueSize,
		SendTimeout: cfg.Notice.SendTimeout,
	})

	engine := sync.NewService(mb, policy, pool, hub, log, &sync.ServiceConfig{
		BatchSize:           cfg.Sync.BatchSize,
		PropertyBatchSize:   cfg.Sync.PropertyBatchSize,
		MaxBodyLength:       cfg.Sync.MaxBodyLength,
		SupportedProperties: cfg.Sync.SupportedProperties,
	})
	files := file.NewService(repos.files, log, &file.ServiceConfig{
		NearCompleteThreshold: cfg.File.NearCompleteThreshold,
	})

	plugins := plugin.NewManager(log)
	if err := plugins.Register(plugin.NewGroup(mb, log)); err != nil {
		_ = repos.close()
		return nil, fmt.Errorf("failed to register group plugin: %w", err)
	}
	processor := command.NewProcessor(engine, mb, files, plugins, log)

	for _, group := range [][]prometheus.Collector{
		command.Collectors(),
		mailbox.Collectors(),
		sync.Collectors(),
		file.Collectors(),
		notice.Collectors(),
		notify.Collectors(),
	} {
		registry.MustRegister(group...)
	}

	router := api.New(api.Deps{
		Processor: processor,
		Notices:   hub,
		Storage:   repos.pinger,
		Driver:    cfg.Storage.Driver,
		Gatherer:  registry,
	}, log)

	return &App{
		cfg:      cfg,
		log:      log,
		repos:    repos,
		mailbox:  mb,
		privacy:  policy,
		hub:      hub,
		pool:     pool,
		registry: registry,
		server: &http.Server{
			Addr:         cfg.Server.RunAddress,
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
	}, nil
}

func openStorage(ctx context.Context, cfg *config.Config, registry prometheus.Registerer) (*repositories, error) {
	switch cfg.Storage.Driver {
	case config.DriverPebble:
		s, err := pebble.Open(cfg.Storage.Path)
		if err != nil {
			return nil, err
		}
		registry.MustRegister(pebble.NewCollector(s))
		return &repositories{
			folders:  pebble.NewFolderRepository(s),
			messages: pebble.NewMessageRepository(s),
			files:    pebble.NewFileRepository(s),
			pinger:   s,
			close:    s.Close,
		}, nil
	case config.DriverPostgres:
		s, err := postgres.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &repositories{
			folders:  postgres.NewFolderRepository(s),
			messages: postgres.NewMessageRepository(s),
			files:    postgres.NewFileRepository(s),
			pinger:   s,
			close:    s.Close,
		}, nil
	default:
		return &repositories{
			folders:  memory.NewFolderRepository(),
			messages: memory.NewMessageRepository(),
			files:    memory.NewFileRepository(),
			close:    func() error { return nil },
		}, nil
	}
}

// Handler корневой http обработчик, нужен для тестов без сети
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Reload применяет изменяемые на лету настройки
func (a *App) Reload(cfg *config.Config) {
	a.mailbox.SetFolderLimit(cfg.Mailbox.ChildLimit, cfg.Mailbox.ChangeLimit)
	a.privacy.Reset(cfg.Privacy.Pairs())
	a.log.Info("config reloaded",
		"child_limit", cfg.Mailbox.ChildLimit,
		"change_limit", cfg.Mailbox.ChangeLimit,
		"blocked", len(cfg.Privacy.Blocked),
	)
}

// Run обслуживает запросы до отмены ctx, затем останавливает сервер
func (a *App) Run(ctx context.Context) error {
	a.cfg.Watch(a.Reload)

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("server started", "address", a.server.Addr, "storage", a.cfg.Storage.Driver)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return errors.Join(fmt.Errorf("failed to serve: %w", err), a.Close(context.Background()))
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	return a.Close(shutdownCtx)
}

// Close останавливает http сервер, дожидается очереди уведомлений и закрывает хранилище
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if err := a.server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to shutdown server: %w", err))
	}
	if err := a.pool.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to drain notices: %w", err))
	}
	a.hub.Close()
	if err := a.repos.close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close storage: %w", err))
	}
	a.log.Info("server stopped")
	return errors.Join(errs...)
}
