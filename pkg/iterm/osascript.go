package iterm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Executor runs a generated script and returns whatever it printed.
type Executor interface {
	Execute(ctx context.Context, script string) (string, error)
}

// UnsupportedEnvironmentError reports a missing osascript, a missing iTerm2
// or an iTerm2 older than required.
type UnsupportedEnvironmentError struct {
	Reason string
	Err    error
}

func (e *UnsupportedEnvironmentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unsupported environment: %s: %v", e.Reason, e.Err)
	}
	return "unsupported environment: " + e.Reason
}

func (e *UnsupportedEnvironmentError) Unwrap() error { return e.Err }

// DefaultMinVersion is the first iTerm2 release with the session/split
// AppleScript dictionary.
const DefaultMinVersion = "3.0"

// Osascript runs AppleScript through the osascript binary.
type Osascript struct {
	// Path to osascript; empty means look it up on PATH.
	Path string

	// MinVersion is a semver constraint floor for iTerm2, e.g. "3.0".
	MinVersion string
}

func (o Osascript) binary() string {
	if p := strings.TrimSpace(o.Path); p != "" {
		return p
	}
	return "osascript"
}

// Execute feeds script to `osascript -` and returns combined output. On
// failure the output is still returned and the error carries only the exit
// status; callers surface the output themselves. There is no timeout; only
// ctx cancellation stops it.
func (o Osascript) Execute(ctx context.Context, script string) (string, error) {
	if strings.TrimSpace(script) == "" {
		return "", errors.New("osascript: empty script")
	}
	cmd := exec.CommandContext(ctx, o.binary(), "-")
	cmd.Stdin = strings.NewReader(script)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return out.String(), fmt.Errorf("osascript: %w", err)
	}
	return out.String(), nil
}

var leadingVersionRe = regexp.MustCompile(`^\d+(?:\.\d+){0,2}`)

// CheckEnvironment verifies osascript is available and the installed iTerm2
// satisfies MinVersion.
func (o Osascript) CheckEnvironment(ctx context.Context) error {
	bin, err := exec.LookPath(o.binary())
	if err != nil {
		return &UnsupportedEnvironmentError{Reason: "osascript not found (iTerm2 requires macOS)", Err: err}
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "-e", `version of application "iTerm2"`)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return &UnsupportedEnvironmentError{Reason: "iTerm2 is not installed", Err: errors.New(msg)}
	}
	return CheckVersion(strings.TrimSpace(stdout.String()), o.MinVersion)
}

// CheckVersion compares an iTerm2 version string such as "3.5.0beta3"
// against a minimum.
func CheckVersion(installed, minimum string) error {
	if strings.TrimSpace(minimum) == "" {
		minimum = DefaultMinVersion
	}
	constraint, err := semver.NewConstraint(">= " + minimum)
	if err != nil {
		return fmt.Errorf("minimum iTerm2 version %q: %w", minimum, err)
	}
	raw := leadingVersionRe.FindString(strings.TrimSpace(installed))
	if raw == "" {
		return &UnsupportedEnvironmentError{Reason: fmt.Sprintf("cannot parse iTerm2 version %q", installed)}
	}
	v, err := semver.NewVersion(raw)
	if err != nil {
		return &UnsupportedEnvironmentError{Reason: fmt.Sprintf("cannot parse iTerm2 version %q", installed), Err: err}
	}
	if !constraint.Check(v) {
		return &UnsupportedEnvironmentError{Reason: fmt.Sprintf("iTerm2 %s is too old, need %s or newer", v, minimum)}
	}
	return nil
}
