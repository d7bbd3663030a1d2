package devcontext

import (
	"context"
	"runtime"
	"strings"
	"sync"

	"github.com/ethpandaops/errscope/pkg/diagnostic"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// probe is a version command for one runtime.
type probe struct {
	name    string
	command string
	args    []string
}

var probes = []probe{
	{name: "python", command: "python3", args: []string{"--version"}},
	{name: "node", command: "node", args: []string{"--version"}},
	{name: "go", command: "go", args: []string{"version"}},
	{name: "java", command: "java", args: []string{"-version"}},
	{name: "rust", command: "rustc", args: []string{"--version"}},
	{name: "git", command: "git", args: []string{"--version"}},
}

const maxParallelProbes = 4

// ExtractRuntime probes installed runtimes and records the process
// environment. Runtimes that are missing or time out are left out.
func (e *Extractor) ExtractRuntime(ctx context.Context) *RuntimeContext {
	rt := &RuntimeContext{
		Versions: make(map[string]string, len(probes)),
		OS:       runtime.GOOS,
		Arch:     runtime.GOARCH,
	}

	if wd, err := e.getwd(); err == nil {
		rt.WorkingDir = diagnostic.SanitizePath(wd)
	}

	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelProbes)

	for _, p := range probes {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					e.log.WithFields(logrus.Fields{"runtime": p.name, "panic": r}).Warn("Runtime probe panicked")
				}
			}()

			res, err := e.probeRunner.Run(gctx, "", p.command, p.args...)
			if err != nil {
				e.log.WithError(err).WithField("runtime", p.name).Debug("Runtime probe failed")

				return nil
			}

			version := firstNonEmptyLine(res.Combined())
			if version == "" {
				return nil
			}

			mu.Lock()
			rt.Versions[p.name] = version
			mu.Unlock()

			return nil
		})
	}

	_ = g.Wait()

	rt.Env = e.allowListedEnv()

	return rt
}

// allowListedEnv copies only allow-listed variables, sanitising values.
func (e *Extractor) allowListedEnv() map[string]string {
	env := make(map[string]string, len(e.opts.EnvAllowList))

	for _, name := range e.opts.EnvAllowList {
		if len(env) >= e.opts.MaxEnvVars {
			break
		}

		if v := e.getenv(name); v != "" {
			env[name] = diagnostic.SanitizePath(v)
		}
	}

	return env
}

func firstNonEmptyLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}

	return ""
}
