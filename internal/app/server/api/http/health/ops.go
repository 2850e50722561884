package health

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) healthCheckOp() huma.Operation {
	return huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/api/health",
		Summary:     "Storage and server state",
		Description: "Pings the configured storage driver. A failed ping reports DEGRADED with status 200 so that load balancers keep routing notices.",
		Tags:        []string{"health"},
		Middlewares: h.middleware,
	}
}
