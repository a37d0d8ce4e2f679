// Package server assembles the router, middleware stack and huma API into an
// http.Server.
package server

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/janisto/pipeline-hello/internal/config"
	"github.com/janisto/pipeline-hello/internal/http/routes"
	applog "github.com/janisto/pipeline-hello/internal/platform/logging"
	"github.com/janisto/pipeline-hello/internal/platform/metrics"
	appmiddleware "github.com/janisto/pipeline-hello/internal/platform/middleware"
	"github.com/janisto/pipeline-hello/internal/platform/respond"
)

const (
	// APITitle is the title of the generated OpenAPI document.
	APITitle = "Pipeline Hello API"

	// MetricsPath serves Prometheus metrics when enabled.
	MetricsPath = "/metrics"

	maxRequestBytes = 1 << 20  // 1 MB
	maxHeaderBytes  = 64 << 10 // 64 KB
)

// NewRouter builds the chi router with every route registered. The returned
// huma.API lets callers add operations behind the same middleware stack.
func NewRouter(cfg config.Config, version string) (*chi.Mux, huma.API) {
	router := chi.NewRouter()
	router.NotFound(respond.NotFoundHandler())
	router.MethodNotAllowed(respond.MethodNotAllowedHandler())

	middlewares := []func(http.Handler) http.Handler{
		appmiddleware.Security(cfg.DocsPath),
		appmiddleware.Vary(),
		appmiddleware.CORS(),
		appmiddleware.RequestID(),
		// RealIP trusts X-Forwarded-For and X-Real-IP. Deploy behind a proxy that sets them.
		chimiddleware.RealIP,
		chimiddleware.RequestSize(maxRequestBytes),
		applog.RequestLogger(),
		applog.AccessLogger(),
	}
	var collector *metrics.Collector
	if cfg.MetricsEnabled {
		collector = metrics.NewCollector()
		middlewares = append(middlewares, collector.Middleware())
	}
	middlewares = append(middlewares, respond.Recoverer(cfg.Testing))
	router.Use(middlewares...)

	if collector != nil {
		router.Method(http.MethodGet, MetricsPath, collector.Handler())
	}

	api := humachi.New(router, apiConfig(cfg, version))
	routes.Register(api)
	return router, api
}

// New returns an http.Server for cfg. The caller owns ListenAndServe and Shutdown.
func New(cfg config.Config, version string) *http.Server {
	router, _ := NewRouter(cfg, version)
	return &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadTimeout:       cfg.Timeouts.Read,
		ReadHeaderTimeout: cfg.Timeouts.ReadHeader,
		WriteTimeout:      cfg.Timeouts.Write,
		IdleTimeout:       cfg.Timeouts.Idle,
		MaxHeaderBytes:    maxHeaderBytes,
	}
}

func apiConfig(cfg config.Config, version string) huma.Config {
	hcfg := huma.DefaultConfig(APITitle, version)
	hcfg.DocsPath = cfg.DocsPath
	// The default create hooks add a "$schema" link to every body. Responses
	// must carry only their documented fields.
	hcfg.CreateHooks = nil
	// Huma falls back to JSON for wildcard or unsupported Accept headers
	// (RFC 9110 section 12.4.1 lets servers disregard Accept).
	hcfg.OnAddOperation = append(hcfg.OnAddOperation, addCBORContent)
	return hcfg
}

// addCBORContent documents application/cbor wherever JSON is documented.
func addCBORContent(_ *huma.OpenAPI, op *huma.Operation) {
	if op.RequestBody != nil && op.RequestBody.Content != nil {
		if jsonContent, ok := op.RequestBody.Content["application/json"]; ok {
			op.RequestBody.Content["application/cbor"] = jsonContent
		}
	}
	for _, resp := range op.Responses {
		if resp.Content == nil {
			continue
		}
		if jsonContent, ok := resp.Content["application/json"]; ok {
			resp.Content["application/cbor"] = jsonContent
		}
	}
}
