// Package settings loads the optional YAML settings file for iterm-ssh-grid.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"iterm-ssh-grid/pkg/sshconfig"
)

// EnvConfig names the environment variable holding an explicit settings path.
const EnvConfig = "ITERM_SSH_GRID_CONFIG"

// Settings holds defaults that command line flags may override.
//
// Example YAML:
//
//	ssh_config: ~/.ssh/config
//	ssh_command: ssh -A
//	profile: Production
//	new_window: true
//	min_iterm_version: "3.0"
type Settings struct {
	SSHConfig       string `yaml:"ssh_config,omitempty"`
	SSHCommand      string `yaml:"ssh_command,omitempty"`
	Profile         string `yaml:"profile,omitempty"`
	NewWindow       bool   `yaml:"new_window,omitempty"`
	MinITermVersion string `yaml:"min_iterm_version,omitempty"`

	// Osascript overrides the osascript binary (mostly for testing).
	Osascript string `yaml:"osascript,omitempty"`
}

// Default returns the settings used when no file exists.
func Default() Settings {
	return Settings{
		SSHCommand:      "ssh",
		MinITermVersion: "3.0",
	}
}

// Load reads the first settings file found among PathCandidates. A missing
// file is not an error: defaults are returned with an empty path. An
// explicit path that does not exist is an error.
func Load(explicitPath string) (Settings, string, error) {
	s := Default()
	for i, p := range PathCandidates(explicitPath) {
		p = sshconfig.ExpandPath(p)
		if p == "" {
			continue
		}
		data, err := os.ReadFile(p)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) && !(i == 0 && explicitPath != "") {
				continue
			}
			return s, p, fmt.Errorf("read settings %s: %w", p, err)
		}
		if err := yaml.Unmarshal(data, &s); err != nil {
			return s, p, fmt.Errorf("parse yaml %s: %w", p, err)
		}
		s.applyDefaults()
		if err := s.Validate(); err != nil {
			return s, p, fmt.Errorf("invalid settings %s: %w", p, err)
		}
		return s, p, nil
	}
	return s, "", nil
}

// PathCandidates returns settings paths in priority order:
// explicitPath, $ITERM_SSH_GRID_CONFIG, $XDG_CONFIG_HOME/iterm-ssh-grid/config.yaml,
// ~/.config/iterm-ssh-grid/config.yaml.
func PathCandidates(explicitPath string) []string {
	var out []string
	if explicitPath != "" {
		out = append(out, explicitPath)
	}
	if env := os.Getenv(EnvConfig); env != "" {
		out = append(out, env)
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		out = append(out, filepath.Join(xdg, "iterm-ssh-grid", "config.yaml"))
	}
	if home, _ := os.UserHomeDir(); home != "" {
		out = append(out, filepath.Join(home, ".config", "iterm-ssh-grid", "config.yaml"))
	}
	return out
}

func (s *Settings) applyDefaults() {
	d := Default()
	if strings.TrimSpace(s.SSHCommand) == "" {
		s.SSHCommand = d.SSHCommand
	}
	if strings.TrimSpace(s.MinITermVersion) == "" {
		s.MinITermVersion = d.MinITermVersion
	}
}

// Validate rejects values that cannot work.
func (s Settings) Validate() error {
	if strings.ContainsAny(s.SSHCommand, "\n\r") {
		return errors.New("ssh_command must be a single line")
	}
	if strings.ContainsAny(s.Profile, "\n\r") {
		return errors.New("profile must be a single line")
	}
	if v := strings.TrimSpace(s.MinITermVersion); v != "" {
		if _, err := semver.NewVersion(v); err != nil {
			return fmt.Errorf("min_iterm_version %q: %w", v, err)
		}
	}
	return nil
}

// SSHConfigPath returns the configured ssh config path, or ~/.ssh/config.
func (s Settings) SSHConfigPath() (string, error) {
	if p := strings.TrimSpace(s.SSHConfig); p != "" {
		return sshconfig.ExpandPath(p), nil
	}
	return sshconfig.DefaultPath()
}
