package hello

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor"
	"github.com/fxamacker/cbor/v2"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	applog "github.com/janisto/pipeline-hello/internal/platform/logging"
	appmiddleware "github.com/janisto/pipeline-hello/internal/platform/middleware"
	"github.com/janisto/pipeline-hello/internal/platform/respond"
)

func newTestRouter() chi.Router {
	router := chi.NewRouter()
	router.Use(
		appmiddleware.RequestID(),
		chimiddleware.RealIP,
		applog.RequestLogger(),
		respond.Recoverer(false),
	)
	cfg := huma.DefaultConfig("HelloTest", "test")
	cfg.CreateHooks = nil
	Register(humachi.New(router, cfg))
	return router
}

func TestGetJSON(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(chimiddleware.RequestIDHeader, "hello-get-json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %s", ct)
	}

	var hello Data
	if err := json.Unmarshal(resp.Body.Bytes(), &hello); err != nil {
		t.Fatalf("json unmarshal: %v", err)
	}
	if hello.Message != "Hello from Jenkins Pipeline!" {
		t.Errorf("expected 'Hello from Jenkins Pipeline!', got %s", hello.Message)
	}
}

func TestGetBodyHasOnlyMessage(t *testing.T) {
	resp := httptest.NewRecorder()
	newTestRouter().ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))

	var raw map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &raw); err != nil {
		t.Fatalf("json unmarshal: %v", err)
	}
	if len(raw) != 1 {
		t.Fatalf("expected exactly one field, got %v", raw)
	}
	if got := bytes.TrimSpace(resp.Body.Bytes()); string(got) != `{"message":"Hello from Jenkins Pipeline!"}` {
		t.Fatalf("unexpected body %s", got)
	}
}

func TestGetIsIdempotent(t *testing.T) {
	router := newTestRouter()

	var first []byte
	for i := range 5 {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("call %d: expected 200, got %d", i, resp.Code)
		}
		if i == 0 {
			first = resp.Body.Bytes()
			continue
		}
		if !bytes.Equal(first, resp.Body.Bytes()) {
			t.Fatalf("call %d: body %q differs from first %q", i, resp.Body.Bytes(), first)
		}
	}
}

func TestGetCBOR(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept", "application/cbor")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); ct != "application/cbor" {
		t.Errorf("expected application/cbor, got %s", ct)
	}

	var hello Data
	if err := cbor.Unmarshal(resp.Body.Bytes(), &hello); err != nil {
		t.Fatalf("cbor unmarshal: %v", err)
	}
	if hello.Message != Greeting {
		t.Errorf("expected %q, got %s", Greeting, hello.Message)
	}
}

func TestGetLogsGreeting(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	router := chi.NewRouter()
	cfg := huma.DefaultConfig("HelloTest", "test")
	cfg.CreateHooks = nil
	Register(humachi.New(router, cfg))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(applog.WithLogger(req.Context(), zap.New(core)))
	router.ServeHTTP(httptest.NewRecorder(), req)

	entries := recorded.FilterMessage("greeting served").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 'greeting served' entry, got %d", len(entries))
	}
}

func TestRegisterDocumentsOperation(t *testing.T) {
	router := chi.NewRouter()
	api := humachi.New(router, huma.DefaultConfig("HelloTest", "test"))
	Register(api)

	item := api.OpenAPI().Paths["/"]
	if item == nil || item.Get == nil {
		t.Fatal("expected GET / to be documented")
	}
	if item.Get.OperationID != "get-greeting" {
		t.Fatalf("unexpected operation ID %q", item.Get.OperationID)
	}
}
