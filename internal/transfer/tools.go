package transfer

import (
	"context"
)

// RsyncTool mirrors a source URL with rsync in archive mode, which
// recurses and preserves the source structure.
type RsyncTool struct {
	Path   string // rsync executable, usually just "rsync"
	Runner Runner
}

func (t *RsyncTool) Name() string { return "rsync" }

func (t *RsyncTool) Fetch(ctx context.Context, sourceURL, destPath string) (int, error) {
	return t.Runner.Run(ctx, t.Path, "-ar", sourceURL, destPath)
}

// WgetTool fetches a URL with wget, quietly, writing straight to the
// destination path. wget is assumed to handle every non-rsync scheme.
type WgetTool struct {
	Path   string // wget executable, usually just "wget"
	Runner Runner
}

func (t *WgetTool) Name() string { return "wget" }

func (t *WgetTool) Fetch(ctx context.Context, sourceURL, destPath string) (int, error) {
	return t.Runner.Run(ctx, t.Path, "-q", "-O", destPath, sourceURL)
}
