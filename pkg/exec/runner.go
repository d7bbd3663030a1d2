// Package exec provides a bounded runner for external commands such as
// version-control queries and runtime version probes.
package exec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrTimeout is returned when a command does not finish within its timeout.
var ErrTimeout = errors.New("command timed out")

// DefaultTimeout bounds commands when the runner is created without one.
const DefaultTimeout = 10 * time.Second

// Result holds the captured output of a finished command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Combined returns stdout followed by stderr. Some tools, java -version for
// one, print their version to stderr.
func (r Result) Combined() string {
	switch {
	case r.Stdout == "":
		return r.Stderr
	case r.Stderr == "":
		return r.Stdout
	default:
		return r.Stdout + "\n" + r.Stderr
	}
}

// Runner runs a command in a directory and captures its output.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) (Result, error)
}

// CommandRunner runs real processes, each bounded by a timeout.
type CommandRunner struct {
	log     logrus.FieldLogger
	timeout time.Duration
}

// NewRunner creates a runner. A non-positive timeout selects DefaultTimeout.
func NewRunner(log logrus.FieldLogger, timeout time.Duration) *CommandRunner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &CommandRunner{
		log:     log.WithField("component", "exec"),
		timeout: timeout,
	}
}

// Timeout returns the per-command timeout.
func (r *CommandRunner) Timeout() time.Duration {
	return r.timeout
}

// Run executes the command and waits for it to finish or time out.
// A non-zero exit is returned as an error together with the captured output.
func (r *CommandRunner) Run(ctx context.Context, dir, name string, args ...string) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	res := Result{
		Stdout:   strings.TrimSpace(stdout.String()),
		Stderr:   strings.TrimSpace(stderr.String()),
		ExitCode: cmd.ProcessState.ExitCode(),
	}

	if ctx.Err() == context.DeadlineExceeded {
		r.log.WithFields(logrus.Fields{
			"command": name,
			"timeout": r.timeout,
		}).Debug("Command timed out")

		return res, fmt.Errorf("%s: %w after %s", name, ErrTimeout, r.timeout)
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return res, fmt.Errorf("%s %s: exit status %d: %s",
				name, strings.Join(args, " "), res.ExitCode, firstLine(res.Stderr))
		}

		res.ExitCode = -1

		return res, fmt.Errorf("failed to run %s: %w", name, err)
	}

	return res, nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}

	return s
}
