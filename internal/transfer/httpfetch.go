package transfer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/bagtools/bagfetch/internal/logctx"
	"github.com/bagtools/bagfetch/internal/transfer/progress"
	"github.com/dustin/go-humanize"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const progressInterval = 100 * 1024 * 1024 // 100MB

// HTTPTool is a generic fetcher built on net/http, an alternative to
// wget for hosts where it is not installed. It speaks the same exit
// code contract as the external tools: 0 on success, 1 on any failure.
type HTTPTool struct {
	client *http.Client
}

// NewHTTPTool builds a native fetcher with an instrumented transport.
func NewHTTPTool() *HTTPTool {
	return &HTTPTool{
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (t *HTTPTool) Name() string { return "http" }

func (t *HTTPTool) Fetch(ctx context.Context, sourceURL, destPath string) (int, error) {
	logger := logctx.LoggerFromContext(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return 1, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return 1, fmt.Errorf("failed to fetch %s: %w", sourceURL, err)
	}

	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 1, fmt.Errorf("fetch of %s returned status %d", sourceURL, resp.StatusCode)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return 1, fmt.Errorf("failed to create target file: %w", err)
	}

	defer out.Close()

	progressCb := func(written int64, total int64) {
		if total > 0 {
			logger.Debug("fetch progress",
				"url", sourceURL,
				"downloaded", humanize.Bytes(uint64(written)),
				"total", humanize.Bytes(uint64(total)))
		} else {
			logger.Debug("fetch progress", "url", sourceURL, "downloaded", humanize.Bytes(uint64(written)))
		}
	}
	pr := progress.NewReader(resp.Body, resp.ContentLength, progressInterval, progressCb)

	if _, err := io.Copy(out, pr); err != nil {
		return 1, fmt.Errorf("failed to write %s: %w", destPath, err)
	}

	return 0, nil
}
