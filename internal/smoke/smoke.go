// Package smoke probes a running instance of the service and verifies that
// both endpoints answer with their fixed payloads. It is meant to run as the
// last stage of a deployment pipeline or as a container health check.
package smoke

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"mime"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/janisto/pipeline-hello/internal/http/health"
	"github.com/janisto/pipeline-hello/internal/http/hello"
	applog "github.com/janisto/pipeline-hello/internal/platform/logging"
)

const (
	userAgent       = "pipeline-hello-smoke"
	maxBodyBytes    = 64 << 10
	defaultAttempts = 1
	defaultTimeout  = 5 * time.Second
)

// ErrCheckFailed is wrapped by every failed check.
var ErrCheckFailed = errors.New("smoke check failed")

// Check describes one endpoint and the exact JSON object it must return.
type Check struct {
	Path string
	Want map[string]any
}

// DefaultChecks covers every route the service exposes.
func DefaultChecks() []Check {
	return []Check{
		{Path: "/health", Want: map[string]any{"status": health.StatusHealthy}},
		{Path: "/", Want: map[string]any{"message": hello.Greeting}},
	}
}

// Options configures Run.
type Options struct {
	// BaseURL is the scheme and host of the instance, e.g. http://localhost:8080.
	BaseURL string
	// Attempts is the number of rounds before giving up. Values below 1 mean 1.
	Attempts int
	// Interval is the pause between failed rounds.
	Interval time.Duration
	// Timeout bounds each request. Zero means 5s.
	Timeout time.Duration
	// Checks defaults to DefaultChecks.
	Checks []Check
	// Client defaults to an http.Client with Timeout.
	Client *http.Client
}

// Result is the outcome of a single check.
type Result struct {
	Path     string
	Status   int
	Duration time.Duration
	Err      error
}

// Passed reports whether the check succeeded.
func (r Result) Passed() bool { return r.Err == nil }

// Report summarizes a Run. Results holds the last round.
type Report struct {
	Attempts int
	Results  []Result
}

// OK reports whether every check in the last round passed.
func (r Report) OK() bool {
	if len(r.Results) == 0 {
		return false
	}
	for _, res := range r.Results {
		if !res.Passed() {
			return false
		}
	}
	return true
}

// Run executes the checks until a round passes, Attempts is exhausted or ctx
// is done. The returned error joins the failures of the last round.
func Run(ctx context.Context, opts Options) (Report, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return Report{}, err
	}

	var report Report
	for attempt := 1; attempt <= opts.Attempts; attempt++ {
		report.Attempts = attempt
		report.Results = runRound(ctx, opts)
		if report.OK() {
			applog.LogInfo(ctx, "smoke checks passed",
				zap.String("baseUrl", opts.BaseURL),
				zap.Int("attempt", attempt),
			)
			return report, nil
		}

		roundErr := report.err()
		applog.LogWarn(ctx, "smoke round failed",
			zap.String("baseUrl", opts.BaseURL),
			zap.Int("attempt", attempt),
			zap.Int("attempts", opts.Attempts),
			zap.Error(roundErr),
		)
		if attempt == opts.Attempts {
			return report, fmt.Errorf("smoke checks failed after %d attempts: %w", attempt, roundErr)
		}

		timer := time.NewTimer(opts.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return report, fmt.Errorf("smoke checks interrupted after %d attempts: %w", attempt, ctx.Err())
		case <-timer.C:
		}
	}
	return report, nil
}

func (o Options) withDefaults() (Options, error) {
	o.BaseURL = strings.TrimRight(strings.TrimSpace(o.BaseURL), "/")
	if o.BaseURL == "" {
		return o, errors.New("smoke: base URL is required")
	}
	if !strings.HasPrefix(o.BaseURL, "http://") && !strings.HasPrefix(o.BaseURL, "https://") {
		return o, fmt.Errorf("smoke: base URL must start with http:// or https://: %q", o.BaseURL)
	}
	if o.Attempts < 1 {
		o.Attempts = defaultAttempts
	}
	if o.Interval < 0 {
		o.Interval = 0
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if len(o.Checks) == 0 {
		o.Checks = DefaultChecks()
	}
	if o.Client == nil {
		o.Client = &http.Client{Timeout: o.Timeout}
	}
	return o, nil
}

func runRound(ctx context.Context, opts Options) []Result {
	results := make([]Result, 0, len(opts.Checks))
	for _, check := range opts.Checks {
		results = append(results, runCheck(ctx, opts, check))
	}
	return results
}

func runCheck(ctx context.Context, opts Options, check Check) Result {
	start := time.Now()
	res := Result{Path: check.Path}

	reqCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	resp, err := doRequest(reqCtx, opts.Client, opts.BaseURL+check.Path)
	if err != nil {
		res.Err = fmt.Errorf("%w: GET %s: %w", ErrCheckFailed, check.Path, err)
		res.Duration = time.Since(start)
		return res
	}
	defer func() { _ = resp.Body.Close() }()

	res.Status = resp.StatusCode
	res.Err = verifyResponse(resp, check)
	res.Duration = time.Since(start)
	return res
}

func doRequest(ctx context.Context, client *http.Client, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	return client.Do(req)
}

func verifyResponse(resp *http.Response, check Check) error {
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: GET %s: status %d, want %d", ErrCheckFailed, check.Path, resp.StatusCode, http.StatusOK)
	}

	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return fmt.Errorf("%w: GET %s: content type %q, want application/json", ErrCheckFailed, check.Path, resp.Header.Get("Content-Type"))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: GET %s: reading body: %w", ErrCheckFailed, check.Path, err)
	}
	var got map[string]any
	if err := json.Unmarshal(body, &got); err != nil {
		return fmt.Errorf("%w: GET %s: decoding body: %w", ErrCheckFailed, check.Path, err)
	}
	if !maps.Equal(got, check.Want) {
		return fmt.Errorf("%w: GET %s: body %s, want %v", ErrCheckFailed, check.Path, strings.TrimSpace(string(body)), check.Want)
	}
	return nil
}

func (r Report) err() error {
	var errs []error
	for _, res := range r.Results {
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
	}
	return errors.Join(errs...)
}
