package git

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ethpandaops/errscope/pkg/exec"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner answers git invocations from a table keyed by the joined args.
type fakeRunner struct {
	outputs map[string]string
	fail    map[string]error
	calls   []string
}

func (f *fakeRunner) Run(_ context.Context, _ string, name string, args ...string) (exec.Result, error) {
	key := name + " " + strings.Join(args, " ")
	f.calls = append(f.calls, key)

	if err, ok := f.fail[key]; ok {
		return exec.Result{ExitCode: 128}, err
	}

	out, ok := f.outputs[key]
	if !ok {
		return exec.Result{ExitCode: 1}, errors.New("unexpected command: " + key)
	}

	return exec.Result{Stdout: out}, nil
}

func newTestChecker(runner exec.Runner, maxCommits int) *Checker {
	log := logrus.New()
	log.SetLevel(logrus.FatalLevel)

	return NewChecker(log, runner, maxCommits)
}

func TestInspectRepository(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{
		"git status --porcelain":                     "M app.py\n?? notes.txt",
		"git rev-parse --abbrev-ref HEAD":            "feature/retry",
		"git log -n 3 --pretty=format:%h|%an|%ar|%s": "a1b2c3d|Jane Doe|2 hours ago|Fix retry loop\ne4f5a6b|john@example.com|3 days ago|token=abc123 rotate",
		"git diff --name-only HEAD":                  "app.py\nlib/util.py\n",
		"git rev-parse HEAD":                         "a1b2c3d4e5f6a7b8c9d0a1b2c3d4e5f6a7b8c9d0",
		"git describe --tags --abbrev=0":             "v1.4.0",
		"git rev-list --count v1.4.0..HEAD":          "7",
	}}

	status := newTestChecker(runner, 3).Inspect(context.Background(), "/repo")

	require.True(t, status.IsRepo)
	assert.Equal(t, 2, status.UncommittedCount)
	assert.Equal(t, "feature/retry", status.Branch)
	require.Len(t, status.Commits, 2)
	assert.Equal(t, Commit{Hash: "a1b2c3d", Author: "Jane Doe", When: "2 hours ago", Subject: "Fix retry loop"}, status.Commits[0])
	assert.Equal(t, "[email]", status.Commits[1].Author)
	assert.Equal(t, "token=[REDACTED] rotate", status.Commits[1].Subject)
	assert.Equal(t, []string{"app.py", "lib/util.py"}, status.ChangedFiles)
	assert.Equal(t, "a1b2c3d4e5f6a7b8c9d0a1b2c3d4e5f6a7b8c9d0", status.LatestCommit)
	assert.Equal(t, "v1.4.0", status.LatestTag)
	assert.Equal(t, 7, status.CommitsSinceTag)
}

func TestInspectNotARepository(t *testing.T) {
	runner := &fakeRunner{fail: map[string]error{
		"git status --porcelain": errors.New("fatal: not a git repository"),
	}}

	status := newTestChecker(runner, 0).Inspect(context.Background(), "/tmp/x")

	assert.Equal(t, RepoStatus{}, status)
	assert.Equal(t, []string{"git status --porcelain"}, runner.calls)
}

func TestInspectDegradesPerField(t *testing.T) {
	runner := &fakeRunner{
		outputs: map[string]string{
			"git status --porcelain":          "",
			"git rev-parse --abbrev-ref HEAD": "main",
			"git diff --name-only HEAD":       "",
		},
		fail: map[string]error{
			"git log -n 5 --pretty=format:%h|%an|%ar|%s": exec.ErrTimeout,
			"git rev-parse HEAD":                         errors.New("ambiguous argument 'HEAD'"),
			"git describe --tags --abbrev=0":             errors.New("no names found"),
		},
	}

	status := newTestChecker(runner, 0).Inspect(context.Background(), "/repo")

	assert.True(t, status.IsRepo)
	assert.Equal(t, 0, status.UncommittedCount)
	assert.Equal(t, "main", status.Branch)
	assert.Empty(t, status.Commits)
	assert.Empty(t, status.ChangedFiles)
	assert.Empty(t, status.LatestCommit)
	assert.Empty(t, status.LatestTag)
}
