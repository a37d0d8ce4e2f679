// Command smoke checks a deployed instance and exits non-zero on failure.
//
//	smoke -url http://localhost:8080 -attempts 10 -interval 3s
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/janisto/pipeline-hello/internal/smoke"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("smoke", flag.ContinueOnError)
	fs.SetOutput(stderr)
	baseURL := fs.String("url", envOr("SMOKE_URL", "http://localhost:8080"), "base URL of the instance to check")
	attempts := fs.Int("attempts", 1, "rounds to try before failing")
	interval := fs.Duration("interval", 2*time.Second, "pause between failed rounds")
	timeout := fs.Duration("timeout", 5*time.Second, "per-request timeout")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	report, err := smoke.Run(ctx, smoke.Options{
		BaseURL:  *baseURL,
		Attempts: *attempts,
		Interval: *interval,
		Timeout:  *timeout,
	})
	for _, res := range report.Results {
		mark := "ok"
		if !res.Passed() {
			mark = "FAIL"
		}
		_, _ = fmt.Fprintf(stdout, "%-4s GET %-8s %3d %s\n", mark, res.Path, res.Status, res.Duration.Round(time.Millisecond))
	}
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "smoke: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintf(stdout, "all checks passed (attempt %d)\n", report.Attempts)
	return 0
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
