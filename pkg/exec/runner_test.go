package exec

import (
	"context"
	"errors"
	"os/exec"
	"runtime"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRunner(t *testing.T, timeout time.Duration) *CommandRunner {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	log := logrus.New()
	log.SetLevel(logrus.FatalLevel)

	return NewRunner(log, timeout)
}

func TestRunCapturesOutput(t *testing.T) {
	r := newTestRunner(t, time.Second)

	res, err := r.Run(context.Background(), t.TempDir(), "sh", "-c", "echo out; echo err >&2")
	require.NoError(t, err)
	assert.Equal(t, "out", res.Stdout)
	assert.Equal(t, "err", res.Stderr)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "out\nerr", res.Combined())
}

func TestRunNonZeroExit(t *testing.T) {
	r := newTestRunner(t, time.Second)

	res, err := r.Run(context.Background(), "", "sh", "-c", "echo 'fatal: not a git repository' >&2; exit 128")
	require.Error(t, err)
	assert.Equal(t, 128, res.ExitCode)
	assert.Contains(t, err.Error(), "fatal: not a git repository")
	assert.False(t, errors.Is(err, ErrTimeout))
}

func TestRunTimeout(t *testing.T) {
	r := newTestRunner(t, 50*time.Millisecond)

	start := time.Now()
	_, err := r.Run(context.Background(), "", "sleep", "5")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestRunMissingBinary(t *testing.T) {
	r := newTestRunner(t, time.Second)

	res, err := r.Run(context.Background(), "", "errscope-definitely-missing-binary")
	require.Error(t, err)
	assert.ErrorIs(t, err, exec.ErrNotFound)
	assert.Equal(t, -1, res.ExitCode)
}

func TestDefaultTimeout(t *testing.T) {
	r := newTestRunner(t, 0)
	assert.Equal(t, DefaultTimeout, r.Timeout())
}

func TestResultCombined(t *testing.T) {
	assert.Equal(t, "a", Result{Stdout: "a"}.Combined())
	assert.Equal(t, "b", Result{Stderr: "b"}.Combined())
	assert.Empty(t, Result{}.Combined())
}
