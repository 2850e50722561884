package command

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"wesync/internal/app/server/api/http/middleware/auth"
	"wesync/internal/domain/command"
	"wesync/internal/domain/file"
	"wesync/internal/domain/folder"
	"wesync/internal/domain/mailbox"
	"wesync/internal/domain/message"
	"wesync/internal/domain/plugin"
	"wesync/internal/domain/sync"
)

// Processor исполнитель команд протокола
type Processor interface {
	Handle(ctx context.Context, username string, v command.Version, c command.Command, body []byte) ([]byte, error)
}

type Handler struct {
	processor  Processor
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(processor Processor, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		processor:  processor,
		log:        log,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.commandOp(), h.handle)
}

func (h *Handler) handle(ctx context.Context, input *commandInput) (*commandOutput, error) {
	username, ok := auth.GetUsername(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	v := command.ParseVersion(input.Version)
	c := command.FromName(input.Command)
	resp, err := h.processor.Handle(ctx, username, v, c, input.RawBody)
	if err != nil {
		return nil, h.toHTTPError(err, username, c)
	}
	if resp == nil {
		return &commandOutput{Status: http.StatusNoContent}, nil
	}
	return &commandOutput{
		Status:      http.StatusOK,
		ContentType: "application/json",
		Body:        resp,
	}, nil
}

// toHTTPError переводит доменные ошибки в коды ответа, остальное считается сбоем сервера
func (h *Handler) toHTTPError(err error, username string, c command.Command) error {
	switch {
	case errors.Is(err, command.ErrMalformedRequest),
		errors.Is(err, folder.ErrInvalidFolder),
		errors.Is(err, mailbox.ErrInvalidGroup),
		errors.Is(err, mailbox.ErrInvalidMessage),
		errors.Is(err, mailbox.ErrUnknownOperation),
		errors.Is(err, message.ErrInvalidMeta),
		errors.Is(err, message.ErrTooLarge),
		errors.Is(err, plugin.ErrInvalidOperation):
		return huma.Error400BadRequest(err.Error())
	case errors.Is(err, command.ErrPermissionDenied),
		errors.Is(err, command.ErrInvalidFileID),
		errors.Is(err, mailbox.ErrNotMember),
		errors.Is(err, plugin.ErrNotMember):
		return huma.Error403Forbidden(err.Error())
	case errors.Is(err, sync.ErrFolderNotFound),
		errors.Is(err, folder.ErrFolderNotFound),
		errors.Is(err, file.ErrNotFound),
		errors.Is(err, message.ErrNotFound):
		return huma.Error404NotFound(err.Error())
	}
	h.log.Error("command failed", "command", c.String(), "username", username, "error", err)
	return huma.Error500InternalServerError("internal error")
}
