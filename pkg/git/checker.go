// Package git reads repository state (branch, recent commits, changed files)
// through the git command line. Every query is bounded by the runner's
// timeout and a failing query never fails the whole inspection.
package git

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ethpandaops/errscope/pkg/diagnostic"
	"github.com/ethpandaops/errscope/pkg/exec"
	"github.com/sirupsen/logrus"
)

// DefaultMaxCommits bounds the commit log when no limit is given.
const DefaultMaxCommits = 5

// Commit is one entry of the recent commit log.
type Commit struct {
	Hash    string `json:"hash" yaml:"hash"`
	Author  string `json:"author" yaml:"author"`
	When    string `json:"when" yaml:"when"`
	Subject string `json:"subject" yaml:"subject"`
}

// RepoStatus represents the state of a working tree.
type RepoStatus struct {
	IsRepo           bool     `json:"isRepo" yaml:"isRepo"`
	Branch           string   `json:"branch,omitempty" yaml:"branch,omitempty"`
	Commits          []Commit `json:"commits,omitempty" yaml:"commits,omitempty"`
	ChangedFiles     []string `json:"changedFiles,omitempty" yaml:"changedFiles,omitempty"`
	LatestCommit     string   `json:"latestCommit,omitempty" yaml:"latestCommit,omitempty"`
	UncommittedCount int      `json:"uncommittedCount" yaml:"uncommittedCount"`
	LatestTag        string   `json:"latestTag,omitempty" yaml:"latestTag,omitempty"`
	CommitsSinceTag  int      `json:"commitsSinceTag,omitempty" yaml:"commitsSinceTag,omitempty"`
}

// Checker checks git repository status.
type Checker struct {
	log        logrus.FieldLogger
	runner     exec.Runner
	maxCommits int
}

// NewChecker creates a new git checker.
func NewChecker(log logrus.FieldLogger, runner exec.Runner, maxCommits int) *Checker {
	if maxCommits <= 0 {
		maxCommits = DefaultMaxCommits
	}

	return &Checker{
		log:        log.WithField("component", "git-checker"),
		runner:     runner,
		maxCommits: maxCommits,
	}
}

// Inspect reads the status of the repository containing repoPath.
// A directory outside any repository, or a machine without git, yields a
// status with IsRepo false.
func (c *Checker) Inspect(ctx context.Context, repoPath string) RepoStatus {
	var status RepoStatus

	// git status doubles as the repository check.
	uncommitted, err := c.getUncommittedCount(ctx, repoPath)
	if err != nil {
		c.log.WithError(err).WithField("path", repoPath).Debug("not a git repository")

		return status
	}

	status.IsRepo = true
	status.UncommittedCount = uncommitted

	if branch, err := c.getCurrentBranch(ctx, repoPath); err != nil {
		c.log.WithError(err).Debug("failed to get current branch")
	} else {
		status.Branch = branch
	}

	if commits, err := c.getRecentCommits(ctx, repoPath); err != nil {
		c.log.WithError(err).Debug("failed to read commit log (repo may have no commits)")
	} else {
		status.Commits = commits
	}

	if files, err := c.getChangedFiles(ctx, repoPath); err != nil {
		c.log.WithError(err).Debug("failed to list changed files")
	} else {
		status.ChangedFiles = files
	}

	if hash, err := c.getLatestCommit(ctx, repoPath); err != nil {
		c.log.WithError(err).Debug("failed to get latest commit")
	} else {
		status.LatestCommit = hash
	}

	latestTag, err := c.getLatestTag(ctx, repoPath)
	if err != nil {
		c.log.WithError(err).Debug("failed to get latest tag (repo may have no tags)")

		return status
	}

	status.LatestTag = latestTag

	if since, err := c.getCommitsSinceTag(ctx, repoPath, latestTag); err != nil {
		c.log.WithError(err).Debug("failed to count commits since tag")
	} else {
		status.CommitsSinceTag = since
	}

	return status
}

func (c *Checker) git(ctx context.Context, repoPath string, args ...string) (string, error) {
	res, err := c.runner.Run(ctx, repoPath, "git", args...)
	if err != nil {
		return "", err
	}

	return res.Stdout, nil
}

// getUncommittedCount returns the number of uncommitted files (staged + unstaged + untracked).
func (c *Checker) getUncommittedCount(ctx context.Context, repoPath string) (int, error) {
	output, err := c.git(ctx, repoPath, "status", "--porcelain")
	if err != nil {
		return 0, err
	}

	return len(nonEmptyLines(output)), nil
}

// getCurrentBranch returns the current branch name for a repository.
func (c *Checker) getCurrentBranch(ctx context.Context, repoPath string) (string, error) {
	return c.git(ctx, repoPath, "rev-parse", "--abbrev-ref", "HEAD")
}

// getRecentCommits returns up to maxCommits entries, newest first.
func (c *Checker) getRecentCommits(ctx context.Context, repoPath string) ([]Commit, error) {
	output, err := c.git(ctx, repoPath, "log", "-n", strconv.Itoa(c.maxCommits), "--pretty=format:%h|%an|%ar|%s")
	if err != nil {
		return nil, err
	}

	lines := nonEmptyLines(output)
	commits := make([]Commit, 0, len(lines))

	for _, line := range lines {
		parts := strings.SplitN(line, "|", 4)
		if len(parts) != 4 {
			continue
		}

		commits = append(commits, Commit{
			Hash:    parts[0],
			Author:  diagnostic.RedactEmails(parts[1]),
			When:    parts[2],
			Subject: diagnostic.Sanitize(parts[3]),
		})
	}

	return commits, nil
}

// getChangedFiles lists files that differ from HEAD.
func (c *Checker) getChangedFiles(ctx context.Context, repoPath string) ([]string, error) {
	output, err := c.git(ctx, repoPath, "diff", "--name-only", "HEAD")
	if err != nil {
		return nil, err
	}

	return nonEmptyLines(output), nil
}

// getLatestCommit returns the full hash of HEAD.
func (c *Checker) getLatestCommit(ctx context.Context, repoPath string) (string, error) {
	return c.git(ctx, repoPath, "rev-parse", "HEAD")
}

// getLatestTag returns the most recent tag in the repository.
func (c *Checker) getLatestTag(ctx context.Context, repoPath string) (string, error) {
	return c.git(ctx, repoPath, "describe", "--tags", "--abbrev=0")
}

// getCommitsSinceTag returns the number of commits since the given tag.
func (c *Checker) getCommitsSinceTag(ctx context.Context, repoPath string, tag string) (int, error) {
	output, err := c.git(ctx, repoPath, "rev-list", "--count", fmt.Sprintf("%s..HEAD", tag))
	if err != nil {
		return 0, err
	}

	var count int

	if _, err := fmt.Sscanf(output, "%d", &count); err != nil {
		return 0, fmt.Errorf("failed to parse commit count %q: %w", output, err)
	}

	return count, nil
}

func nonEmptyLines(output string) []string {
	lines := make([]string, 0, 8)

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}

	return lines
}
