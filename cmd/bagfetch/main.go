package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/bagtools/bagfetch/internal/config"
	"github.com/bagtools/bagfetch/internal/fetchorder"
	"github.com/bagtools/bagfetch/internal/http/rest"
	"github.com/bagtools/bagfetch/internal/logctx"
	"github.com/bagtools/bagfetch/internal/notifier"
	"github.com/bagtools/bagfetch/internal/pkgdir"
	"github.com/bagtools/bagfetch/internal/retriever"
	"github.com/bagtools/bagfetch/internal/storage"
	"github.com/bagtools/bagfetch/internal/storage/sqlite"
	"github.com/bagtools/bagfetch/internal/telemetry"
	"github.com/bagtools/bagfetch/internal/transfer"
	"github.com/go-chi/chi/v5"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, config.ErrUsage) {
			os.Exit(2)
		}

		slog.Error("config error", "err", err)
		os.Exit(1)
	}

	logger := slog.New(logctx.NewTraceHandler(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	slog.Info("bagfetch starting...", "log_level", cfg.LogLevel, "workers", cfg.Workers)

	if err := run(logctx.WithLogger(ctx, logger), cfg); err != nil {
		slog.Error("fatal error", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	logger := logctx.LoggerFromContext(ctx)

	// =========================================================================
	// Start Telemetry
	tel, err := telemetry.New(ctx, telemetry.Config{
		Enabled:     cfg.BindAddress != "",
		ServiceName: "bagfetch",
	})
	if err != nil {
		return fmt.Errorf("failed to setup telemetry: %w", err)
	}

	defer func() {
		if err := tel.Shutdown(context.Background()); err != nil {
			logger.Error("failed to shutdown telemetry", "err", err)
		}
	}()

	// =========================================================================
	// Assemble Package Directory
	identifier := cfg.PackageIdentifier
	if identifier == "" {
		identifier = pkgdir.GenerateIdentifier()
	}

	packageDir, err := pkgdir.Prepare(cfg.DestinationPath, identifier, cfg.FileManifest, cfg.RetrievalOrder)
	if err != nil {
		return err
	}

	// =========================================================================
	// Parse and Partition the Retrieval Order
	items, err := fetchorder.ParseFile(cfg.RetrievalOrder)
	if err != nil {
		return err
	}

	buckets := retriever.Partition(items, cfg.Workers)

	logger.Info("retrieval order partitioned",
		"package_id", identifier,
		"package_dir", packageDir,
		"item_count", len(items),
		"workers", cfg.Workers,
	)

	// =========================================================================
	// Start Attempt History
	var history storage.AttemptWriteRepository

	if cfg.HistoryDBPath != "" {
		database, err := sqlite.InitDB(cfg.HistoryDBPath)
		if err != nil {
			return fmt.Errorf("failed to open history database: %w", err)
		}
		defer database.Close()

		history = sqlite.NewInstrumentedAttemptRepository(database, tel)
	}

	// =========================================================================
	// Start Status Server
	tracker := retriever.NewTracker(len(items))

	server := setupServer(ctx, cfg, identifier, tracker, tel)
	if server != nil {
		go func() {
			logger.Info("initializing status endpoint", "host", cfg.BindAddress)

			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("status server error", "err", err)
			}
		}()
	}

	// =========================================================================
	// Run the Scheduler
	sched := retriever.NewScheduler(identifier, packageDir, buildSelector(cfg), history, tracker, tel)
	outcomes := sched.Run(ctx, buckets)

	failed := 0
	crashed := 0

	for _, o := range outcomes {
		failed += o.Failed

		if o.ExitStatus != retriever.StatusOK {
			crashed++
		}
	}

	logger.Info("retrieval complete",
		"package_id", identifier,
		"package_dir", packageDir,
		"items", len(items),
		"failed_items", failed,
		"crashed_workers", crashed,
	)

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to gracefully shutdown the status server", "err", err)
		}
	}

	notifyCompletion(ctx, cfg, identifier, len(items), failed)

	// Item-level failures live in the retrieval log; the run itself
	// completed, so the process exits 0.
	return nil
}

// buildSelector wires the transfer tools the configuration asks for.
func buildSelector(cfg *config.Config) *transfer.Selector {
	runner := transfer.CommandRunner{}

	var fetcher transfer.Tool
	if cfg.Fetcher == "native" {
		fetcher = transfer.NewHTTPTool()
	} else {
		fetcher = &transfer.WgetTool{Path: cfg.WgetPath, Runner: runner}
	}

	return &transfer.Selector{
		Mirror:  &transfer.RsyncTool{Path: cfg.RsyncPath, Runner: runner},
		Fetcher: fetcher,
	}
}

// setupServer prepares the status server, or nil when no bind address
// is configured.
func setupServer(ctx context.Context, cfg *config.Config, identifier string, tracker *retriever.Tracker, tel *telemetry.Telemetry) *http.Server {
	if cfg.BindAddress == "" {
		return nil
	}

	handler := rest.NewStatusHandler(identifier, cfg.Workers, tracker, tel)

	r := chi.NewRouter()
	r.Mount("/", handler.Routes())

	return &http.Server{
		Addr:    cfg.BindAddress,
		Handler: r,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}
}

func notifyCompletion(ctx context.Context, cfg *config.Config, identifier string, items, failed int) {
	if cfg.WebhookURL == "" {
		return
	}

	logger := logctx.LoggerFromContext(ctx)

	notif := &notifier.WebhookNotifier{WebhookURL: cfg.WebhookURL}

	summary := fmt.Sprintf("package %s retrieved: %d items, %d failed", identifier, items, failed)
	if err := notif.Notify(summary); err != nil {
		logger.Error("failed to send notification", "package_id", identifier, "err", err)
	}
}
