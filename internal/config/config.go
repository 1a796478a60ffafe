package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the full configuration surface for a retrieval run.
// Values come from BAGFETCH_* environment variables first, then from
// command line flags, which win.
type Config struct {
	Workers           int    `envconfig:"WORKERS" default:"16"`
	PackageIdentifier string `envconfig:"PACKAGE_IDENTIFIER"`
	FileManifest      string `envconfig:"FILE_MANIFEST"`
	RetrievalOrder    string `envconfig:"RETRIEVAL_ORDER"`
	DestinationPath   string `envconfig:"DESTINATION_PATH"`

	Fetcher   string `envconfig:"FETCHER" default:"wget"`
	RsyncPath string `envconfig:"RSYNC_PATH" default:"rsync"`
	WgetPath  string `envconfig:"WGET_PATH" default:"wget"`

	LogLevel      string `envconfig:"LOG_LEVEL" default:"INFO"`
	BindAddress   string `envconfig:"BIND_ADDRESS"`
	HistoryDBPath string `envconfig:"HISTORY_DB_PATH"`
	WebhookURL    string `envconfig:"WEBHOOK_URL"`
}

// ErrUsage signals that the command line was invalid and usage has
// already been printed.
var ErrUsage = errors.New("usage error")

// Load reads the environment and then the command line arguments.
func Load(args []string, stderr io.Writer) (*Config, error) {
	var cfg Config
	if err := envconfig.Process("bagfetch", &cfg); err != nil {
		return nil, fmt.Errorf("error processing env: %w", err)
	}

	fs := flag.NewFlagSet("bagfetch", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.IntVar(&cfg.Workers, "n", cfg.Workers, "number of concurrent retrievers to run")
	fs.StringVar(&cfg.PackageIdentifier, "i", cfg.PackageIdentifier,
		"unique identifier for the package (auto-generated if not supplied)")
	fs.StringVar(&cfg.FileManifest, "m", cfg.FileManifest,
		"path to the file manifest that defines this package (required)")
	fs.StringVar(&cfg.RetrievalOrder, "r", cfg.RetrievalOrder,
		"path to the retrieval order (fetch.txt) for this package (required)")
	fs.StringVar(&cfg.DestinationPath, "d", cfg.DestinationPath,
		"path in which to create the package (defaults to the working directory)")
	fs.StringVar(&cfg.Fetcher, "fetcher", cfg.Fetcher, "generic URL fetcher: wget or native")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: DEBUG, INFO, WARN or ERROR")
	fs.StringVar(&cfg.BindAddress, "bind", cfg.BindAddress,
		"address for the status endpoint (disabled when empty)")
	fs.StringVar(&cfg.HistoryDBPath, "history-db", cfg.HistoryDBPath,
		"path to the attempt history database (disabled when empty)")
	fs.StringVar(&cfg.WebhookURL, "webhook", cfg.WebhookURL,
		"webhook to notify when the batch completes (disabled when empty)")

	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: bagfetch -m manifest-md5.txt -r fetch.txt [options]")
		fmt.Fprintln(stderr, "")
		fmt.Fprintln(stderr, "Retrieves the contents of a remotely available BagIt package in parallel.")
		fmt.Fprintln(stderr, "An rsync password, if needed, is supplied via RSYNC_PASSWORD in the environment.")
		fmt.Fprintln(stderr, "")
		fmt.Fprintln(stderr, "Options:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, ErrUsage
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		fs.Usage()

		return nil, ErrUsage
	}

	if cfg.DestinationPath == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve working directory: %w", err)
		}

		cfg.DestinationPath = wd
	}

	return &cfg, nil
}

// Validate checks the required options and value ranges. The package
// identifier is not required here; a fresh one is generated later when
// it is empty.
func (c *Config) Validate() error {
	if c.FileManifest == "" {
		return errors.New("supply a file manifest with -m")
	}

	if c.RetrievalOrder == "" {
		return errors.New("supply a retrieval order with -r")
	}

	if c.Workers < 1 {
		return errors.New("number of retrievers must be at least 1")
	}

	if c.Fetcher != "wget" && c.Fetcher != "native" {
		return fmt.Errorf("unknown fetcher %q", c.Fetcher)
	}

	return nil
}

func (c *Config) SlogLevel() slog.Level {
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
