package health

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

// Pinger проверка доступности хранилища
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	storage    Pinger
	driver     string
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(storage Pinger, driver string, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		storage:    storage,
		driver:     driver,
		log:        log,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.healthCheckOp(), h.healthCheck)
}

func (h *Handler) healthCheck(ctx context.Context, _ *Input) (*Output, error) {
	h.log.Debug("health check request received")

	resp := Response{Status: StatusOK, Storage: h.driver, Time: time.Now().UTC().Unix()}
	if h.storage != nil {
		if err := h.storage.Ping(ctx); err != nil {
			h.log.Warn("storage check failed", "driver", h.driver, "error", err)
			resp.Status = StatusDegraded
			resp.Error = err.Error()
		}
	}
	return &Output{Body: resp}, nil
}
