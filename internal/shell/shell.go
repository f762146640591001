package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Result captures the outcome of one external command invocation.
type Result struct {
	OK       bool
	ExitCode int
	Stdout   string
	Stderr   string
}

// Runner executes an external command and reports whether it exited with the
// expected code. A non-nil error means the command could not be run at all
// (binary missing, timeout, context cancelled); an unexpected exit code is
// reported through Result.OK instead.
type Runner interface {
	Run(ctx context.Context, expected int, name string, args ...string) (Result, error)
}

// ExecRunner runs commands with os/exec. A zero Timeout means commands may
// block indefinitely.
type ExecRunner struct {
	Timeout time.Duration
}

var _ Runner = (*ExecRunner)(nil)

const waitDelay = 500 * time.Millisecond

// NewExecRunner returns a runner that applies timeout to each command.
func NewExecRunner(timeout time.Duration) *ExecRunner {
	return &ExecRunner{Timeout: timeout}
}

func (r *ExecRunner) Run(ctx context.Context, expected int, name string, args ...string) (Result, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	if r.Timeout > 0 {
		// Children that inherit our pipes must not keep Wait blocked past the deadline.
		cmd.WaitDelay = waitDelay
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return res, fmt.Errorf("%s: %w", Join(name, args...), err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, fmt.Errorf("%s: %w", Join(name, args...), ctxErr)
		}
		res.ExitCode = exitErr.ExitCode()
	}
	res.OK = res.ExitCode == expected
	return res, nil
}

// Join renders a command line for logs and error messages.
func Join(name string, args ...string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}
