package devcontext

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ethpandaops/errscope/pkg/diagnostic"
	"github.com/ethpandaops/errscope/pkg/exec"
	"github.com/ethpandaops/errscope/pkg/git"
	"github.com/sirupsen/logrus"
)

// Options bounds what the extractor collects.
type Options struct {
	SnippetRadius   int
	MaxCommits      int
	MaxDependencies int
	MaxEnvVars      int
	// EnvAllowList names the only environment variables ever copied.
	EnvAllowList   []string
	CommandTimeout time.Duration
	ProbeTimeout   time.Duration
}

// DefaultEnvAllowList is used when Options.EnvAllowList is empty.
var DefaultEnvAllowList = []string{
	"PATH",
	"SHELL",
	"LANG",
	"TERM",
	"VIRTUAL_ENV",
	"CONDA_DEFAULT_ENV",
	"PYTHONPATH",
	"NODE_ENV",
	"NODE_OPTIONS",
	"GOPATH",
	"GOFLAGS",
	"JAVA_HOME",
	"CARGO_HOME",
	"RUST_BACKTRACE",
	"CI",
}

// DefaultOptions returns the standard limits.
func DefaultOptions() Options {
	return Options{
		SnippetRadius:   5,
		MaxCommits:      git.DefaultMaxCommits,
		MaxDependencies: 25,
		MaxEnvVars:      15,
		EnvAllowList:    DefaultEnvAllowList,
		CommandTimeout:  exec.DefaultTimeout,
		ProbeTimeout:    5 * time.Second,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()

	if o.SnippetRadius <= 0 {
		o.SnippetRadius = d.SnippetRadius
	}

	if o.MaxCommits <= 0 {
		o.MaxCommits = d.MaxCommits
	}

	if o.MaxDependencies <= 0 {
		o.MaxDependencies = d.MaxDependencies
	}

	if o.MaxEnvVars <= 0 {
		o.MaxEnvVars = d.MaxEnvVars
	}

	if len(o.EnvAllowList) == 0 {
		o.EnvAllowList = d.EnvAllowList
	}

	if o.CommandTimeout <= 0 {
		o.CommandTimeout = d.CommandTimeout
	}

	if o.ProbeTimeout <= 0 {
		o.ProbeTimeout = d.ProbeTimeout
	}

	return o
}

// Option customises an Extractor.
type Option func(*Extractor)

// WithRunner replaces the command runner used for git and runtime probes.
func WithRunner(r exec.Runner) Option {
	return func(e *Extractor) {
		e.runner = r
		e.probeRunner = r
	}
}

// WithGetenv replaces the environment lookup.
func WithGetenv(fn func(string) string) Option {
	return func(e *Extractor) {
		e.getenv = fn
	}
}

// WithWorkingDir replaces the working directory lookup.
func WithWorkingDir(fn func() (string, error)) Option {
	return func(e *Extractor) {
		e.getwd = fn
	}
}

// Extractor collects a DevelopmentContext. It keeps no per-call state and
// may be shared between goroutines.
type Extractor struct {
	log         logrus.FieldLogger
	lib         *diagnostic.Library
	opts        Options
	runner      exec.Runner
	probeRunner exec.Runner
	getenv      func(string) string
	getwd       func() (string, error)
}

// New creates an extractor.
func New(log logrus.FieldLogger, lib *diagnostic.Library, opts Options, options ...Option) *Extractor {
	opts = opts.withDefaults()

	e := &Extractor{
		log:         log.WithField("component", "context-extractor"),
		lib:         lib,
		opts:        opts,
		runner:      exec.NewRunner(log, opts.CommandTimeout),
		probeRunner: exec.NewRunner(log, opts.ProbeTimeout),
		getenv:      os.Getenv,
		getwd:       os.Getwd,
	}

	for _, o := range options {
		o(e)
	}

	return e
}

// ExtractFullContext runs every sub-extractor against root. text is the error
// output used to locate the offending file; filePath, when set, overrides the
// file found in the text. It never panics and never fails as a whole: each
// sub-extractor that finds nothing leaves its field nil and its failure, if
// any, is recorded in Metadata.Failures.
func (e *Extractor) ExtractFullContext(ctx context.Context, root, text, filePath string) (dc *DevelopmentContext) {
	start := time.Now()

	dc = &DevelopmentContext{
		Metadata: Metadata{
			Successful: true,
			Sources:    make([]string, 0, 4),
		},
	}

	defer func() {
		if r := recover(); r != nil {
			e.log.WithField("panic", r).Warn("Context extraction aborted")

			dc.recordFailure("extractor", fmt.Errorf("panic: %v", r))
		}

		dc.Metadata.Duration = time.Since(start)
	}()

	if root == "" {
		if wd, err := e.getwd(); err == nil {
			root = wd
		}
	}

	e.step(dc, SourceFile, func() error {
		fc, err := e.ExtractFile(root, text, filePath)
		if err != nil {
			return err
		}

		dc.File = fc
		dc.addSource(SourceFile, fc != nil)

		return nil
	})

	e.step(dc, SourceRevision, func() error {
		rc := e.ExtractRevision(ctx, root)
		dc.Revision = rc
		dc.addSource(SourceRevision, rc.IsRepo)

		return nil
	})

	e.step(dc, SourceProject, func() error {
		pc, err := e.ExtractProject(root)
		if err != nil {
			return err
		}

		dc.Project = pc
		dc.addSource(SourceProject, pc != nil)

		return nil
	})

	e.step(dc, SourceRuntime, func() error {
		rt := e.ExtractRuntime(ctx)
		dc.Runtime = rt
		dc.addSource(SourceRuntime, rt != nil)

		return nil
	})

	e.log.WithFields(logrus.Fields{
		"root":    root,
		"sources": dc.Metadata.Sources,
	}).Debug("Context extraction complete")

	return dc
}

// step runs one sub-extractor, converting errors and panics into a recorded
// failure so the remaining steps still run.
func (e *Extractor) step(dc *DevelopmentContext, name string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			e.log.WithFields(logrus.Fields{"source": name, "panic": r}).Warn("Sub-extractor panicked")
			dc.recordFailure(name, fmt.Errorf("panic: %v", r))
		}
	}()

	if err := fn(); err != nil {
		e.log.WithError(err).WithField("source", name).Debug("Sub-extractor found nothing")
		dc.recordFailure(name, err)
	}
}

// ExtractRevision reads version-control state. Outside a repository the
// result has IsRepo false and every other field empty.
func (e *Extractor) ExtractRevision(ctx context.Context, root string) *RevisionContext {
	status := git.NewChecker(e.log, e.runner, e.opts.MaxCommits).Inspect(ctx, root)

	return &status
}

func (dc *DevelopmentContext) addSource(name string, found bool) {
	if found {
		dc.Metadata.Sources = append(dc.Metadata.Sources, name)
	}
}

func (dc *DevelopmentContext) recordFailure(name string, err error) {
	dc.Metadata.Successful = false

	if dc.Metadata.Failures == nil {
		dc.Metadata.Failures = make(map[string]string, 1)
	}

	dc.Metadata.Failures[name] = err.Error()
}
