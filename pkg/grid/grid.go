// Package grid wires the scanner, matcher, layout planner and script emitter
// into the single pass the command line runs.
package grid

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"iterm-ssh-grid/pkg/hostmatch"
	"iterm-ssh-grid/pkg/iterm"
	"iterm-ssh-grid/pkg/layout"
	"iterm-ssh-grid/pkg/ui"
)

// ErrNoHosts is a notice, not a failure: nothing matched the patterns.
var ErrNoHosts = errors.New("no hosts matched")

// Options are the parsed command line inputs for one run.
type Options struct {
	Patterns  []string
	SSHConfig string

	// Run executes the script. Debug prints it instead and takes precedence.
	// With neither set the matched hosts are listed.
	Run   bool
	Debug bool

	// Pick asks the user to confirm the hosts before planning.
	Pick bool

	Script iterm.ScriptOptions
}

// EnvironmentChecker verifies the external application can run a script.
type EnvironmentChecker interface {
	CheckEnvironment(ctx context.Context) error
}

// Runner holds the collaborators of a run.
type Runner struct {
	// Scan returns the alias set of an ssh config file.
	Scan func(path string) (map[string]struct{}, error)

	Executor iterm.Executor

	// Env is optional; when set it is checked before executing.
	Env EnvironmentChecker

	// Pick is used when Options.Pick is set.
	Pick func(hosts []string) ([]string, error)

	Out    io.Writer
	Theme  ui.Theme
	Logger *log.Logger
}

// Result describes what a run produced.
type Result struct {
	Hosts  []string
	Plan   layout.Plan
	Script string
	Output string
}

func (r *Runner) logger() *log.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return log.New(io.Discard)
}

func (r *Runner) out() io.Writer {
	if r.Out != nil {
		return r.Out
	}
	return io.Discard
}

// Run performs one invocation: scan, select, sort, optionally pick, plan,
// then list, print or execute.
func (r *Runner) Run(ctx context.Context, opts Options) (Result, error) {
	var res Result
	lg := r.logger()

	if r.Scan == nil {
		return res, errors.New("grid: no config scanner")
	}
	aliases, err := r.Scan(opts.SSHConfig)
	if err != nil {
		return res, err
	}
	lg.Debug("scanned ssh config", "path", opts.SSHConfig, "aliases", len(aliases))

	pred, err := hostmatch.Compile(opts.Patterns)
	if err != nil {
		return res, err
	}
	lg.Debug("compiled host pattern", "expr", pred.String())

	hosts := hostmatch.Sort(hostmatch.Select(aliases, pred))
	if len(hosts) == 0 {
		return res, ErrNoHosts
	}
	lg.Debug("selected hosts", "count", len(hosts))

	if opts.Pick {
		if r.Pick == nil {
			return res, errors.New("grid: interactive picker unavailable")
		}
		if hosts, err = r.Pick(hosts); err != nil {
			return res, err
		}
		if len(hosts) == 0 {
			return res, ErrNoHosts
		}
		lg.Debug("picked hosts", "count", len(hosts))
	}
	res.Hosts = hosts

	if err := ctx.Err(); err != nil {
		return res, err
	}

	plan, err := layout.NewPlan(len(hosts))
	if err != nil {
		return res, err
	}
	res.Plan = plan
	lg.Debug("planned layout", "panes", plan.Panes(), "splits", len(plan))

	if !opts.Run && !opts.Debug {
		r.list(hosts)
		return res, nil
	}

	script, err := iterm.Emit(plan, hosts, opts.Script)
	if err != nil {
		return res, err
	}
	res.Script = script

	if opts.Debug {
		fmt.Fprint(r.out(), script)
		return res, nil
	}

	if r.Env != nil {
		if err := r.Env.CheckEnvironment(ctx); err != nil {
			return res, err
		}
	}
	if r.Executor == nil {
		return res, errors.New("grid: no script executor")
	}
	lg.Debug("executing script", "bytes", len(script))
	output, err := r.Executor.Execute(ctx, script)
	res.Output = output
	if output != "" {
		fmt.Fprint(r.out(), output)
	}
	if err != nil {
		return res, err
	}
	return res, nil
}

func (r *Runner) list(hosts []string) {
	w := r.out()
	th := r.Theme
	fmt.Fprintln(w, th.Header.Render(fmt.Sprintf("%d host(s):", len(hosts))))
	for _, h := range hosts {
		fmt.Fprintln(w, "  "+th.Host.Render(h))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, layout.Preview(hosts, th.PreviewStyle()))
	fmt.Fprintln(w, th.Dim.Render("Re-run with --run to open "+plural(len(hosts), "pane")+" in iTerm2."))
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, strings.TrimSuffix(word, "s"))
}
