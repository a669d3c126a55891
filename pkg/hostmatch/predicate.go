package hostmatch

import (
	"fmt"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// PatternSyntaxError reports tokens that do not form a valid regular
// expression once joined.
type PatternSyntaxError struct {
	Expr string
	Err  error
}

func (e *PatternSyntaxError) Error() string {
	return fmt.Sprintf("invalid host pattern %q: %v", e.Expr, e.Err)
}

func (e *PatternSyntaxError) Unwrap() error { return e.Err }

// Predicate decides whether an alias is selected.
type Predicate interface {
	Matches(alias string) bool
	String() string
}

const joiner = ".*?"

// MatchTimeout bounds a single alias match. User tokens may backtrack
// badly; an alias that times out is not selected.
var MatchTimeout = time.Second

type predicate struct {
	re   *regexp2.Regexp
	expr string
}

// Compile expands tokens and compiles them into one case-insensitive
// expression with search semantics. Tokens use backtracking syntax, so
// look-around and backreferences are available. A numeric suffix set
// becomes a trailing (?<!\d)(?:n1|n2|...)$ group.
func Compile(tokens []string) (Predicate, error) {
	exp, err := Expand(tokens)
	if err != nil {
		return nil, err
	}

	groups := make([]string, 0, len(exp.Fragments)+1)
	for _, f := range exp.Fragments {
		groups = append(groups, "(?:"+f+")")
	}
	if exp.Suffixes != nil {
		groups = append(groups, "(?:"+suffixFragment(exp.Suffixes)+")")
	}
	expr := "(?i)" + strings.Join(groups, joiner)

	re, err := regexp2.Compile(expr, regexp2.None)
	if err != nil {
		return nil, &PatternSyntaxError{Expr: expr, Err: err}
	}
	re.MatchTimeout = MatchTimeout
	return &predicate{re: re, expr: expr}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(tokens ...string) Predicate {
	p, err := Compile(tokens)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *predicate) Matches(alias string) bool {
	ok, err := p.re.MatchString(alias)
	return err == nil && ok
}

func (p *predicate) String() string { return p.expr }

// Select returns every alias matched by p, in no particular order.
func Select(aliases map[string]struct{}, p Predicate) []string {
	var out []string
	for a := range aliases {
		if p.Matches(a) {
			out = append(out, a)
		}
	}
	return out
}
