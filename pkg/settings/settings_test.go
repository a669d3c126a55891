package settings

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(EnvConfig, "")
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("HOME", filepath.Join(dir, "home"))
	return dir
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	isolate(t)

	s, path, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if path != "" {
		t.Fatalf("expected no path, got %q", path)
	}
	if s != Default() {
		t.Fatalf("expected defaults, got %#v", s)
	}
}

func TestLoad_ExplicitMissingIsError(t *testing.T) {
	dir := isolate(t)
	if _, _, err := Load(filepath.Join(dir, "nope.yaml")); err == nil {
		t.Fatalf("expected error for explicit missing settings file")
	}
}

func TestLoad_XDGFile(t *testing.T) {
	dir := isolate(t)
	p := filepath.Join(dir, "xdg", "iterm-ssh-grid", "config.yaml")
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		t.Fatal(err)
	}
	content := "ssh_config: /etc/ssh/fleet\nprofile: Ops\nnew_window: true\n"
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	s, path, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if path != p {
		t.Fatalf("expected path %q, got %q", p, path)
	}
	if s.Profile != "Ops" || !s.NewWindow || s.SSHConfig != "/etc/ssh/fleet" {
		t.Fatalf("unexpected settings: %#v", s)
	}
	if s.SSHCommand != "ssh" || s.MinITermVersion != "3.0" {
		t.Fatalf("expected defaults to fill unset fields, got %#v", s)
	}
}

func TestLoad_EnvBeatsXDG(t *testing.T) {
	dir := isolate(t)
	envPath := filepath.Join(dir, "env.yaml")
	if err := os.WriteFile(envPath, []byte("profile: FromEnv\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvConfig, envPath)

	s, path, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if path != envPath || s.Profile != "FromEnv" {
		t.Fatalf("expected env settings, got %q %#v", path, s)
	}
}

func TestLoad_InvalidVersionRejected(t *testing.T) {
	dir := isolate(t)
	p := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(p, []byte("min_iterm_version: banana\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, _, err := Load(p)
	if err == nil || !strings.Contains(err.Error(), "min_iterm_version") {
		t.Fatalf("expected min_iterm_version validation error, got %v", err)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	dir := isolate(t)
	p := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(p, []byte("profile: [unterminated\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, _, err := Load(p); err == nil || !strings.Contains(err.Error(), "parse yaml") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestSSHConfigPath(t *testing.T) {
	dir := isolate(t)
	got, err := Settings{}.SSHConfigPath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "home", ".ssh", "config"); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	got, _ = Settings{SSHConfig: "~/fleet"}.SSHConfigPath()
	if want := filepath.Join(dir, "home", "fleet"); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
