package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"iterm-ssh-grid/pkg/grid"
	"iterm-ssh-grid/pkg/iterm"
	"iterm-ssh-grid/pkg/settings"
	"iterm-ssh-grid/pkg/sshconfig"
	"iterm-ssh-grid/pkg/ui"
)

// Set via -ldflags "-X main.version=...".
var version = "0.3.0"

const progName = "iterm-ssh-grid"

var errUsage = errors.New("at least one host pattern is required")

type options struct {
	run        bool
	debug      bool
	pick       bool
	newWindow  bool
	verbose    bool
	sshConfig  string
	configPath string
	profile    string
}

// app carries the process streams and the collaborators tests replace.
type app struct {
	stdout io.Writer
	stderr io.Writer

	// executor and env default to osascript built from settings.
	executor iterm.Executor
	env      grid.EnvironmentChecker
	pick     func(hosts []string) ([]string, error)
	theme    *ui.Theme
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, &app{stdout: os.Stdout, stderr: os.Stderr}, os.Args[1:])
	stop()
	os.Exit(code)
}

func run(ctx context.Context, a *app, args []string) int {
	cmd := a.rootCmd()
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)

	th := ui.AutoTheme(os.Stderr)
	if a.theme != nil {
		th = *a.theme
	}
	switch {
	case err == nil:
	case errors.Is(err, errUsage):
		fmt.Fprintf(a.stderr, "%s: %v\n\n", progName, err)
		cmd.SetOut(a.stderr)
		_ = cmd.Usage()
	case errors.Is(err, grid.ErrNoHosts):
		fmt.Fprintf(a.stderr, "%s: %v\n", progName, err)
	case errors.Is(err, ui.ErrCancelled):
	default:
		fmt.Fprintf(a.stderr, "%s: %s\n", progName, th.Error.Render(err.Error()))
	}
	return exitCode(err)
}

// exitCode maps run errors to the process status. Empty selections and a
// cancelled picker are not failures.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, grid.ErrNoHosts), errors.Is(err, ui.ErrCancelled):
		return 0
	default:
		return 1
	}
}

func (a *app) rootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   progName + " [flags] PATTERN...",
		Short: "Open matching ssh hosts as a grid of iTerm2 panes",
		Long: `iterm-ssh-grid selects ssh config aliases whose names match every PATTERN
in order, sorts them naturally and opens one iTerm2 pane per host.

A trailing numeric PATTERN such as 1-3,5 selects hosts by their numeric
suffix. Commas in other patterns are alternatives.

Examples:
  iterm-ssh-grid web                  # list hosts and preview the grid
  iterm-ssh-grid -r prod web 1-4      # open prod-web1..prod-web4
  iterm-ssh-grid -d db,cache          # print the AppleScript
  iterm-ssh-grid -r -p api            # choose hosts interactively first`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errUsage
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.execute(cmd, opts, args)
		},
	}
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)
	cmd.SetVersionTemplate(progName + " {{.Version}}\n")

	f := cmd.Flags()
	f.BoolVarP(&opts.run, "run", "r", false, "open the panes in iTerm2")
	f.BoolVarP(&opts.debug, "debug", "d", false, "print the generated AppleScript instead of running it")
	f.BoolVarP(&opts.pick, "pick", "p", false, "choose among matched hosts interactively")
	f.BoolVarP(&opts.newWindow, "new-window", "w", false, "open a new window instead of a tab")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log pipeline steps to stderr")
	f.StringVarP(&opts.sshConfig, "ssh-config", "F", "", "ssh config file (default ~/.ssh/config)")
	f.StringVarP(&opts.configPath, "config", "c", "", "settings file (default $"+settings.EnvConfig+" or ~/.config/"+progName+"/config.yaml)")
	f.StringVar(&opts.profile, "profile", "", "iTerm2 profile for the new panes")
	f.BoolP("version", "V", false, "print the version and exit")
	return cmd
}

func (a *app) execute(cmd *cobra.Command, opts options, patterns []string) error {
	logger := log.NewWithOptions(a.stderr, log.Options{Prefix: progName, Level: log.WarnLevel})
	if opts.verbose {
		logger.SetLevel(log.DebugLevel)
	}

	st, stPath, err := settings.Load(opts.configPath)
	if err != nil {
		return err
	}
	if stPath != "" {
		logger.Debug("loaded settings", "path", stPath)
	}

	f := cmd.Flags()
	if f.Changed("profile") {
		st.Profile = opts.profile
	}
	if f.Changed("new-window") {
		st.NewWindow = opts.newWindow
	}
	if f.Changed("ssh-config") {
		st.SSHConfig = opts.sshConfig
	}
	if err := st.Validate(); err != nil {
		return err
	}
	cfgPath, err := st.SSHConfigPath()
	if err != nil {
		return err
	}

	theme := ui.AutoTheme(os.Stdout)
	if a.theme != nil {
		theme = *a.theme
	}

	osa := iterm.Osascript{Path: st.Osascript, MinVersion: st.MinITermVersion}
	r := &grid.Runner{
		Scan:     sshconfig.Aliases,
		Executor: a.executor,
		Env:      a.env,
		Pick:     a.pick,
		Out:      a.stdout,
		Theme:    theme,
		Logger:   logger,
	}
	if r.Executor == nil {
		r.Executor = osa
	}
	if r.Env == nil && a.executor == nil {
		r.Env = osa
	}
	if r.Pick == nil {
		r.Pick = func(hosts []string) ([]string, error) {
			return pickFromTerminal(hosts, theme)
		}
	}

	_, err = r.Run(cmd.Context(), grid.Options{
		Patterns:  patterns,
		SSHConfig: cfgPath,
		Run:       opts.run,
		Debug:     opts.debug,
		Pick:      opts.pick,
		Script: iterm.ScriptOptions{
			Profile:    st.Profile,
			NewWindow:  st.NewWindow,
			SSHCommand: st.SSHCommand,
		},
	})
	return err
}

// pickFromTerminal runs the picker on the controlling terminal. Output goes
// to stderr so stdout stays usable for the script or host list.
func pickFromTerminal(hosts []string, theme ui.Theme) ([]string, error) {
	if !ui.IsTerminal(os.Stdin) || !ui.IsTerminal(os.Stderr) {
		return nil, errors.New("--pick needs an interactive terminal")
	}
	chosen, err := ui.Pick(hosts, theme, os.Stdin, os.Stderr)
	flushTTYInput()
	if err != nil {
		return nil, err
	}
	if len(chosen) > 0 {
		fmt.Fprintf(os.Stderr, "%s: %s\n", progName, theme.Success.Render(strings.Join(chosen, " ")))
	}
	return chosen, nil
}
