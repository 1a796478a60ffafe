// Package pkgdir bootstraps the package directory a retrieval run
// assembles its files into.
package pkgdir

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	dirPerm  = 0755
	filePerm = 0644

	// LogName is the per-package transfer log, one line per attempt.
	LogName = "retrieval.log"
)

// GenerateIdentifier returns a fresh package identifier derived from
// the current time, as decimal seconds since the epoch. Assumes no
// more than one package per second.
func GenerateIdentifier() string {
	return strconv.FormatInt(time.Now().Unix(), 10)
}

// Prepare creates the package directory under destPath (idempotent)
// and copies the file manifest and retrieval order into it, so the
// finished package carries the inputs that defined it. Returns the
// package directory path.
func Prepare(destPath, identifier, manifestPath, orderPath string) (string, error) {
	packageDir := filepath.Join(destPath, identifier)

	if err := os.MkdirAll(packageDir, dirPerm); err != nil {
		return "", fmt.Errorf("failed to create package directory: %w", err)
	}

	for _, src := range []string{manifestPath, orderPath} {
		if err := copyInto(src, packageDir); err != nil {
			return "", err
		}
	}

	return packageDir, nil
}

// OpenLog opens the retrieval log for appending. Each worker holds its
// own handle; appends are line-granular.
func OpenLog(packageDir string) (*os.File, error) {
	path := filepath.Join(packageDir, LogName)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePerm)
	if err != nil {
		return nil, fmt.Errorf("failed to open retrieval log: %w", err)
	}

	return f, nil
}

func copyInto(src, dir string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(filepath.Join(dir, filepath.Base(src)))
	if err != nil {
		return fmt.Errorf("failed to create copy of %s: %w", src, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}

	return nil
}
