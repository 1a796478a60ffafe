package config_test

import (
	"bytes"
	"testing"

	"github.com/bagtools/bagfetch/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	var stderr bytes.Buffer

	cfg, err := config.Load([]string{"-m", "manifest-md5.txt", "-r", "fetch.txt"}, &stderr)
	require.NoError(t, err)

	assert.Equal(t, 16, cfg.Workers)
	assert.Equal(t, "manifest-md5.txt", cfg.FileManifest)
	assert.Equal(t, "fetch.txt", cfg.RetrievalOrder)
	assert.Empty(t, cfg.PackageIdentifier)
	assert.NotEmpty(t, cfg.DestinationPath, "destination defaults to the working directory")
	assert.Equal(t, "wget", cfg.Fetcher)
	assert.Equal(t, "rsync", cfg.RsyncPath)
}

func TestLoad_FlagsOverride(t *testing.T) {
	var stderr bytes.Buffer

	cfg, err := config.Load([]string{
		"-m", "m.txt",
		"-r", "r.txt",
		"-n", "4",
		"-i", "my-package",
		"-d", "/srv/packages",
		"-fetcher", "native",
		"-log-level", "DEBUG",
	}, &stderr)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "my-package", cfg.PackageIdentifier)
	assert.Equal(t, "/srv/packages", cfg.DestinationPath)
	assert.Equal(t, "native", cfg.Fetcher)
}

func TestLoad_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no arguments", nil},
		{"missing manifest", []string{"-r", "fetch.txt"}},
		{"missing retrieval order", []string{"-m", "manifest-md5.txt"}},
		{"zero workers", []string{"-m", "m.txt", "-r", "r.txt", "-n", "0"}},
		{"negative workers", []string{"-m", "m.txt", "-r", "r.txt", "-n", "-2"}},
		{"unknown fetcher", []string{"-m", "m.txt", "-r", "r.txt", "-fetcher", "curl"}},
		{"unknown flag", []string{"-m", "m.txt", "-r", "r.txt", "-bogus"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer

			_, err := config.Load(tt.args, &stderr)
			require.ErrorIs(t, err, config.ErrUsage)

			// Usage lands on stderr before the process exits.
			assert.Contains(t, stderr.String(), "Usage: bagfetch")
		})
	}
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  string
	}{
		{"DEBUG", "DEBUG"},
		{"debug", "DEBUG"},
		{"INFO", "INFO"},
		{"WARN", "WARN"},
		{"ERROR", "ERROR"},
		{"nonsense", "INFO"},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := config.Config{LogLevel: tt.level}
			assert.Equal(t, tt.want, cfg.SlogLevel().String())
		})
	}
}
