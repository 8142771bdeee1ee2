package scanner

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// ExecResult is the captured outcome of one external tool invocation.
type ExecResult struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// CommandRunner executes an external tool in dir and captures its output.
// A non-zero exit status is NOT an error here — it is reported via
// ExecResult.ExitCode and interpreted by the per-tool policy table. The
// returned error is reserved for spawn failures (binary missing) and
// context cancellation.
type CommandRunner func(ctx context.Context, dir, name string, args ...string) (ExecResult, error)

// RunCommand is the default CommandRunner, backed by os/exec.
func RunCommand(ctx context.Context, dir, name string, args ...string) (ExecResult, error) {
	// nosemgrep: go.lang.security.audit.dangerous-exec-command.dangerous-exec-command
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := ExecResult{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return res, err
	}
	return res, nil
}

// IsNotFound reports whether err means the tool binary could not be located.
func IsNotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound)
}
