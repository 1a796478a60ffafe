// Package transfer routes retrieval items to the transfer mechanism
// that matches their URL scheme and runs the actual transfers.
package transfer

import (
	"context"
	"strings"
	"time"

	"github.com/bagtools/bagfetch/internal/fetchorder"
)

// rsync URLs select the archive mirror transfer; everything else goes
// to the generic fetcher.
const rsyncScheme = "rsync"

// Tool performs one transfer from a source URL to a local destination
// path and reports the process-style exit code of the attempt. It does
// not interpret the code beyond passing it through.
type Tool interface {
	Name() string
	Fetch(ctx context.Context, sourceURL, destPath string) (int, error)
}

// Result records one transfer attempt. Never mutated after creation.
type Result struct {
	Item         fetchorder.Item
	ResolvedPath string
	ExitCode     int
	Timestamp    time.Time
}

// Selector decides which Tool handles an item based on its URL scheme.
type Selector struct {
	Mirror  Tool // rsync archive mirror
	Fetcher Tool // generic fetch by URL, the fallback for every other scheme
}

// ToolFor returns the mirror tool for rsync URLs and the generic
// fetcher for anything else (http, https, ftp, ...).
func (s *Selector) ToolFor(sourceURL string) Tool {
	if strings.HasPrefix(sourceURL, rsyncScheme) {
		return s.Mirror
	}

	return s.Fetcher
}
