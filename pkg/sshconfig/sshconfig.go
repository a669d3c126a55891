// Package sshconfig scans OpenSSH client configuration files for connectable
// Host aliases.
package sshconfig

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrIncludeCycle is wrapped by ReadError when an Include chain leads back to
// a file that is still being scanned.
var ErrIncludeCycle = errors.New("include cycle")

// ReadError reports a config file that could not be opened, read, or that
// closes an Include cycle.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read ssh config %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// Entry is a literal Host alias that declares a HostName.
type Entry struct {
	Alias    string
	HostName string

	// Source file path and line of the Host directive.
	Source string
	Line   int
}

// DefaultPath returns ~/.ssh/config.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".ssh", "config"), nil
}

// Aliases scans path (and everything it includes) and returns the set of
// connectable aliases.
func Aliases(path string) (map[string]struct{}, error) {
	entries, err := Scan(path)
	if err != nil {
		return nil, err
	}
	out := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		out[e.Alias] = struct{}{}
	}
	return out, nil
}

// Scan parses path and its Include directives recursively. Relative include
// paths resolve against the directory of path, as ssh does for ~/.ssh/config.
// Later blocks override earlier ones for the same alias. The result is sorted
// by alias.
func Scan(path string) ([]Entry, error) {
	path = ExpandPath(path)
	if strings.TrimSpace(path) == "" {
		return nil, &ReadError{Path: path, Err: errors.New("empty path")}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	s := &scanner{
		baseDir: filepath.Dir(abs),
		active:  map[string]struct{}{},
		index:   map[string]int{},
	}
	if err := s.scanFile(abs, true); err != nil {
		return nil, err
	}

	sort.Slice(s.entries, func(i, j int) bool {
		return s.entries[i].Alias < s.entries[j].Alias
	})
	return s.entries, nil
}

type scanner struct {
	baseDir string

	// active holds the files currently on the include stack.
	active map[string]struct{}

	entries []Entry
	index   map[string]int
}

type hostBlock struct {
	patterns []string
	hostName string
	source   string
	line     int
}

func (s *scanner) add(e Entry) {
	if i, ok := s.index[e.Alias]; ok {
		s.entries[i] = e
		return
	}
	s.index[e.Alias] = len(s.entries)
	s.entries = append(s.entries, e)
}

func (s *scanner) flush(hb *hostBlock) {
	if hb == nil || strings.TrimSpace(hb.hostName) == "" {
		return
	}
	for _, pat := range hb.patterns {
		if !isLiteralHostPattern(pat) {
			continue
		}
		s.add(Entry{Alias: pat, HostName: hb.hostName, Source: hb.source, Line: hb.line})
	}
}

func (s *scanner) scanFile(abs string, root bool) error {
	if _, ok := s.active[abs]; ok {
		return &ReadError{Path: abs, Err: ErrIncludeCycle}
	}
	s.active[abs] = struct{}{}
	defer delete(s.active, abs)

	f, err := os.Open(abs)
	if err != nil {
		// Include globs commonly point at files that are not there yet.
		if !root && os.IsNotExist(err) {
			return nil
		}
		return &ReadError{Path: abs, Err: err}
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 2*1024*1024)

	var current *hostBlock
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(stripInlineComment(sc.Text()))
		if line == "" {
			continue
		}
		key, val, ok := splitKeyVal(line)
		if !ok {
			continue
		}

		switch strings.ToLower(key) {
		case "host":
			s.flush(current)
			current = &hostBlock{
				patterns: strings.Fields(unquote(val)),
				source:   abs,
				line:     lineNo,
			}
		case "match":
			// Match conditions are not evaluated; settings below belong to no alias.
			s.flush(current)
			current = nil
		case "hostname":
			if current != nil {
				current.hostName = unquote(val)
			}
		case "include":
			// Includes are processed in place so override order follows the file.
			s.flush(current)
			if current != nil {
				cont := *current
				current = &cont
			}
			for _, inc := range s.expandInclude(val) {
				if err := s.scanFile(inc, false); err != nil {
					return err
				}
			}
		}
	}
	s.flush(current)

	if err := sc.Err(); err != nil {
		return &ReadError{Path: abs, Err: err}
	}
	return nil
}

func (s *scanner) expandInclude(val string) []string {
	var out []string
	for _, pattern := range strings.Fields(val) {
		pattern = ExpandPath(unquote(pattern))
		if pattern == "" {
			continue
		}
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(s.baseDir, pattern)
		}
		matches, err := filepath.Glob(pattern)
		if err != nil {
			continue
		}
		sort.Strings(matches)
		for _, m := range matches {
			fi, err := os.Stat(m)
			if err != nil || fi.IsDir() {
				continue
			}
			if abs, err := filepath.Abs(m); err == nil {
				m = abs
			}
			out = append(out, m)
		}
	}
	return out
}

func stripInlineComment(s string) string {
	// '#' inside single or double quotes is kept.
	inSingle := false
	inDouble := false
	for i, r := range s {
		switch r {
		case '\'':
			if !inDouble {
				inSingle = !inSingle
			}
		case '"':
			if !inSingle {
				inDouble = !inDouble
			}
		case '#':
			if !inSingle && !inDouble {
				return strings.TrimRight(s[:i], " \t")
			}
		}
	}
	return s
}

// splitKeyVal accepts "Key Value", "Key=Value" and "Key = Value".
func splitKeyVal(line string) (key, val string, ok bool) {
	i := strings.IndexAny(line, " \t=")
	if i < 0 {
		return "", "", false
	}
	key = strings.TrimSpace(line[:i])
	val = strings.TrimSpace(line[i:])
	val = strings.TrimSpace(strings.TrimPrefix(val, "="))
	if key == "" {
		return "", "", false
	}
	return key, val, true
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

// ExpandPath expands environment variables and a leading "~".
func ExpandPath(p string) string {
	if p == "" {
		return ""
	}
	p = os.ExpandEnv(p)
	if p == "~" || strings.HasPrefix(p, "~/") {
		if h, _ := os.UserHomeDir(); h != "" {
			return filepath.Join(h, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

func isLiteralHostPattern(p string) bool {
	// OpenSSH patterns use '*', '?', '[]' and '!' for negation.
	if p == "" || strings.HasPrefix(p, "!") {
		return false
	}
	return !strings.ContainsAny(p, "*?[] \t")
}
