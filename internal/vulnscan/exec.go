package vulnscan

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ExternalToolError reports a package manager or helper command that is
// missing or exited with a failure. It is fatal for the current operation.
type ExternalToolError struct {
	Tool     string
	Args     []string
	Missing  bool
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ExternalToolError) Error() string {
	cmdline := strings.TrimSpace(e.Tool + " " + strings.Join(e.Args, " "))
	if e.Missing {
		return fmt.Sprintf("%s: command not available: %v", cmdline, e.Err)
	}

	msg := fmt.Sprintf("%s: exit status %d", cmdline, e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *ExternalToolError) Unwrap() error {
	return e.Err
}

// Runner executes an external command and returns its standard output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands on the local host. Commands are awaited to
// completion; Timeout bounds each of them when it is positive.
type ExecRunner struct {
	Timeout time.Duration
}

func (r ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if _, err := exec.LookPath(name); err != nil {
		return nil, &ExternalToolError{Tool: name, Args: args, Missing: true, Err: err}
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), nil
	}

	toolErr := &ExternalToolError{
		Tool:     name,
		Args:     args,
		ExitCode: -1,
		Stderr:   strings.TrimSpace(stderr.String()),
		Err:      err,
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		toolErr.ExitCode = exitErr.ExitCode()
	}
	if ctx.Err() == context.DeadlineExceeded {
		toolErr.Err = fmt.Errorf("command timed out: %w", err)
	}

	return stdout.Bytes(), toolErr
}

func run(ctx context.Context, r Runner, command []string) ([]byte, error) {
	if len(command) == 0 {
		return nil, errors.New("empty command")
	}
	return r.Run(ctx, command[0], command[1:]...)
}
