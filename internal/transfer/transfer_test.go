package transfer_test

import (
	"context"
	"testing"

	"github.com/bagtools/bagfetch/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner records invocations and returns a canned exit code.
type fakeRunner struct {
	exitCode int
	program  string
	args     []string
}

func (r *fakeRunner) Run(_ context.Context, program string, args ...string) (int, error) {
	r.program = program
	r.args = args

	return r.exitCode, nil
}

func TestSelector_ToolFor(t *testing.T) {
	mirror := &transfer.RsyncTool{Path: "rsync", Runner: &fakeRunner{}}
	fetcher := &transfer.WgetTool{Path: "wget", Runner: &fakeRunner{}}
	s := &transfer.Selector{Mirror: mirror, Fetcher: fetcher}

	tests := []struct {
		name string
		url  string
		want transfer.Tool
	}{
		{"rsync url", "rsync://host/module/path", mirror},
		{"http url", "http://host/path", fetcher},
		{"https url", "https://host/path", fetcher},
		{"ftp url", "ftp://host/path", fetcher},
		{"unknown scheme", "gopher://host/path", fetcher},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Same(t, tt.want, s.ToolFor(tt.url))
		})
	}
}

func TestRsyncTool_Fetch(t *testing.T) {
	runner := &fakeRunner{exitCode: 23}
	tool := &transfer.RsyncTool{Path: "rsync", Runner: runner}

	code, err := tool.Fetch(context.Background(), "rsync://host/module/file", "/tmp/pkg/file")
	require.NoError(t, err)

	// Archive mode mirror, source then destination.
	assert.Equal(t, 23, code)
	assert.Equal(t, "rsync", runner.program)
	assert.Equal(t, []string{"-ar", "rsync://host/module/file", "/tmp/pkg/file"}, runner.args)
}

func TestWgetTool_Fetch(t *testing.T) {
	runner := &fakeRunner{}
	tool := &transfer.WgetTool{Path: "wget", Runner: runner}

	code, err := tool.Fetch(context.Background(), "http://host/file", "/tmp/pkg/file")
	require.NoError(t, err)

	// Quiet fetch writing straight to the destination.
	assert.Zero(t, code)
	assert.Equal(t, "wget", runner.program)
	assert.Equal(t, []string{"-q", "-O", "/tmp/pkg/file", "http://host/file"}, runner.args)
}

func TestCommandRunner_ProgramNotFound(t *testing.T) {
	runner := transfer.CommandRunner{}

	code, err := runner.Run(context.Background(), "definitely-not-a-real-program-xyz")
	assert.Error(t, err)
	assert.Equal(t, -1, code)
}
