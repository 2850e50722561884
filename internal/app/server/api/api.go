// POST /api/wesync/{version}/{command}  # Команда протокола (auth)
// GET  /api/notices                     # Websocket уведомлений (auth)
// GET  /api/health                      # Состояние сервиса
// GET  /metrics                         # Метрики prometheus

package api

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/exp/slog"

	commandAPI "wesync/internal/app/server/api/http/command"
	healthAPI "wesync/internal/app/server/api/http/health"
	"wesync/internal/app/server/api/http/middleware"
	"wesync/internal/app/server/api/http/middleware/auth"
	"wesync/internal/app/server/api/http/middleware/logger"
	"wesync/internal/domain/user"
)

// NoticeServer держит websocket соединения уведомлений
type NoticeServer interface {
	Serve(w http.ResponseWriter, r *http.Request, username string)
}

type Deps struct {
	Processor commandAPI.Processor
	Notices   NoticeServer
	Storage   healthAPI.Pinger
	Driver    string
	Gatherer  prometheus.Gatherer
}

type Handlers struct {
	Health  *healthAPI.Handler
	Command *commandAPI.Handler
}

// New создает *chi.Mux с операциями huma, websocket уведомлений и /metrics
func New(deps Deps, log *slog.Logger) *chi.Mux {
	mux := chi.NewMux()

	config := huma.DefaultConfig("WeSync API", "2.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {Type: "http", Scheme: "bearer"},
	}

	API := humachi.New(mux, config)
	authMW := auth.New(API, log, auth.WithValidator(user.NewNameValidator()))

	h := handlers(deps, authMW, log)
	h.Health.SetupRoutes(API)
	h.Command.SetupRoutes(API)

	mux.With(authMW.Handler).Get("/api/notices", func(w http.ResponseWriter, r *http.Request) {
		username, _ := auth.GetUsername(r.Context())
		deps.Notices.Serve(w, r, username)
	})
	if deps.Gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	return mux
}

func handlers(deps Deps, authMW *auth.Auth, log *slog.Logger) *Handlers {
	loggerMW := logger.New(log)
	middlewares := middleware.NewContainer()

	middlewares.Add(loggerMW.Middleware())
	healthHandler := healthAPI.NewHandler(deps.Storage, deps.Driver, log, middlewares.GetAllAndClear())

	middlewares.Add(loggerMW.Middleware())
	middlewares.Add(authMW.Middleware())
	commandHandler := commandAPI.NewHandler(deps.Processor, log, middlewares.GetAllAndClear())

	return &Handlers{
		Health:  healthHandler,
		Command: commandHandler,
	}
}
