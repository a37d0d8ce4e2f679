// Package testutil provides an in-process HTTP client for exercising the
// full handler stack without opening a socket.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// Client issues requests directly against an http.Handler.
type Client struct {
	t       testing.TB
	handler http.Handler
}

// NewClient returns a Client bound to handler. Failures are reported on t.
func NewClient(t testing.TB, handler http.Handler) *Client {
	t.Helper()
	if handler == nil {
		t.Fatal("testutil: nil handler")
	}
	return &Client{t: t, handler: handler}
}

// Get sends GET path. headers are key/value pairs, e.g. "Accept", "application/cbor".
func (c *Client) Get(path string, headers ...string) *httptest.ResponseRecorder {
	c.t.Helper()
	return c.Do(c.NewRequest(http.MethodGet, path, headers...))
}

// NewRequest builds a request with the given key/value header pairs.
func (c *Client) NewRequest(method, path string, headers ...string) *http.Request {
	c.t.Helper()
	if len(headers)%2 != 0 {
		c.t.Fatalf("testutil: headers must be key/value pairs, got %d values", len(headers))
	}
	req := httptest.NewRequest(method, path, nil)
	for i := 0; i < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	return req
}

// Do serves req and returns the recorded response.
func (c *Client) Do(req *http.Request) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	c.handler.ServeHTTP(resp, req)
	return resp
}

// DecodeJSON unmarshals the recorded body into T, failing the test on error.
func DecodeJSON[T any](t testing.TB, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(resp.Body.Bytes(), &v); err != nil {
		t.Fatalf("testutil: decode JSON body %q: %v", resp.Body.String(), err)
	}
	return v
}
