package transfer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// Runner executes an external command and returns its exit code. It
// exists so tools can be exercised in tests without the real binaries.
type Runner interface {
	Run(ctx context.Context, program string, args ...string) (int, error)
}

// CommandRunner runs commands through os/exec. The child inherits the
// parent environment unmodified, so credentials like RSYNC_PASSWORD
// reach the transfer tool without the core ever reading them.
type CommandRunner struct{}

// Run executes the program and maps its termination to an exit code.
// A non-zero exit is not an error here; the code is the result. Only
// failures to launch at all (program not found, context cancelled)
// surface as errors.
func (CommandRunner) Run(ctx context.Context, program string, args ...string) (int, error) {
	cmd := exec.CommandContext(ctx, program, args...)
	cmd.Env = os.Environ()
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}

	return -1, fmt.Errorf("failed to run %s: %w", program, err)
}
