package health

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	applog "github.com/janisto/pipeline-hello/internal/platform/logging"
)

// StatusHealthy is the only status the endpoint reports: a process that can
// answer is considered healthy.
const StatusHealthy = "healthy"

// Response is the payload for the health endpoint.
type Response struct {
	Status string `json:"status" doc:"Service health" example:"healthy" enum:"healthy"`
}

// Output wraps Response for huma.
type Output struct {
	Body Response
}

// Register wires the health route into the provided API router.
func Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Report service health",
		Description: "Liveness and readiness probe for deployment automation.",
		Tags:        []string{"Health"},
	}, handler)
}

func handler(ctx context.Context, _ *struct{}) (*Output, error) {
	applog.LogDebug(ctx, "health check")
	return &Output{Body: Response{Status: StatusHealthy}}, nil
}
