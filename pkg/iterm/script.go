// Package iterm renders pane layouts as iTerm2 AppleScript and runs them
// through osascript.
package iterm

import (
	"errors"
	"fmt"
	"strings"

	"iterm-ssh-grid/pkg/layout"
)

// ScriptOptions tune the generated AppleScript.
type ScriptOptions struct {
	// Profile is the iTerm2 profile for new tabs, windows and splits.
	// Empty means the default profile.
	Profile string

	// NewWindow opens a new window instead of a tab in the current one.
	NewWindow bool

	// SSHCommand is the command each pane runs, followed by the alias.
	// Defaults to "ssh".
	SSHCommand string
}

// Emit renders the script that opens a tab, replays plan and connects pane
// i+1 to hosts[i].
func Emit(plan layout.Plan, hosts []string, opts ScriptOptions) (string, error) {
	if len(hosts) == 0 {
		return "", errors.New("emit script: no hosts")
	}
	if err := layout.Validate(plan, len(hosts)); err != nil {
		return "", fmt.Errorf("emit script: %w", err)
	}
	sshCmd := strings.TrimSpace(opts.SSHCommand)
	if sshCmd == "" {
		sshCmd = "ssh"
	}
	profile := "default profile"
	if p := strings.TrimSpace(opts.Profile); p != "" {
		profile = "profile " + Quote(p)
	}

	var b strings.Builder
	w := func(indent int, format string, args ...any) {
		b.WriteString(strings.Repeat("\t", indent))
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	w(0, `tell application "iTerm2"`)
	w(1, "activate")
	if opts.NewWindow {
		w(1, "create window with %s", profile)
	} else {
		w(1, "if (count of windows) = 0 then")
		w(2, "create window with %s", profile)
		w(1, "else")
		w(2, "tell current window to create tab with %s", profile)
		w(1, "end if")
	}
	w(1, "set %s to current session of current window", paneVar(1))

	for _, op := range plan {
		dir := "horizontally"
		if op.Orientation == layout.Vertical {
			dir = "vertically"
		}
		w(1, "tell %s", paneVar(op.Parent))
		w(2, "set %s to (split %s with %s)", paneVar(op.Child), dir, profile)
		w(1, "end tell")
	}

	for i, host := range hosts {
		w(1, "tell %s", paneVar(i+1))
		w(2, "write text %s", Quote(sshCmd+" "+ShellQuote(host)))
		w(2, "set name to %s", Quote(host))
		w(1, "end tell")
	}
	w(0, "end tell")
	return b.String(), nil
}

func paneVar(id int) string { return fmt.Sprintf("pane_%d", id) }

// Quote returns s as an AppleScript string literal.
func Quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}

// ShellQuote quotes s for sh when it contains anything beyond the characters
// ssh aliases normally use.
func ShellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if strings.IndexFunc(s, isShellSpecial) < 0 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

func isShellSpecial(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '"', '\'', '\\', '$', '`', '&', '|', ';', '<', '>', '(', ')', '{', '}', '*', '?', '!', '~', '#':
		return true
	default:
		return false
	}
}
