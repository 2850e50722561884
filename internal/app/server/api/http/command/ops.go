package command

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) commandOp() huma.Operation {
	return huma.Operation{
		OperationID: "wesync-command",
		Method:      http.MethodPost,
		Path:        "/api/wesync/{version}/{command}",
		Summary:     "Execute protocol command",
		Description: "Runs one mailbox sync command. Unknown commands answer 204 without body.",
		Tags:        []string{"wesync"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}
