package routes

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/pipeline-hello/internal/http/health"
	"github.com/janisto/pipeline-hello/internal/http/hello"
)

// Register wires all HTTP routes into the provided API router.
func Register(api huma.API) {
	hello.Register(api)
	health.Register(api)
}
