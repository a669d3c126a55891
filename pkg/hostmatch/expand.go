// Package hostmatch turns command line pattern tokens into a host predicate,
// selects matching aliases and orders them naturally.
//
// Token rules:
//   - When more than one token is given and the last one is a list of numbers
//     and ranges ("1,3-5,9"), it selects hosts whose trailing number is in
//     that set.
//   - Any other token containing commas is an alternation: "web,db" matches
//     either.
//   - Tokens are joined with a lazy wildcard, so "web prod" matches
//     "web-01.prod" but not "prod-web".
package hostmatch

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrNoPatterns is returned when no tokens are supplied.
var ErrNoPatterns = errors.New("no host patterns given")

// InvalidRangeError reports a range whose start is greater than its end.
type InvalidRangeError struct {
	Token string
	Start int
	End   int
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid range %d-%d in %q: start is greater than end", e.Start, e.End, e.Token)
}

var numericListRe = regexp.MustCompile(`^\d+(?:-\d+)?(?:,\d+(?:-\d+)?)*$`)

// Expansion is the result of the macro step, before any regular expression is
// compiled.
type Expansion struct {
	// Fragments are the regular expression fragments for every token that
	// was not converted to a numeric suffix set, in order.
	Fragments []string

	// Suffixes is the ordered, de-duplicated set of numbers named by the
	// last token. Nil when the numeric rule did not apply.
	Suffixes []int
}

// IsNumericList reports whether tok is a comma list of integers and integer
// ranges such as "1,3-5,7-11".
func IsNumericList(tok string) bool {
	return numericListRe.MatchString(tok)
}

// Expand applies the numeric range and comma alternation rules to tokens.
func Expand(tokens []string) (Expansion, error) {
	if len(tokens) == 0 {
		return Expansion{}, ErrNoPatterns
	}

	var exp Expansion
	rest := tokens
	if len(tokens) > 1 && IsNumericList(tokens[len(tokens)-1]) {
		nums, err := ExpandNumericList(tokens[len(tokens)-1])
		if err != nil {
			return Expansion{}, err
		}
		exp.Suffixes = nums
		rest = tokens[:len(tokens)-1]
	}

	exp.Fragments = make([]string, 0, len(rest))
	for _, tok := range rest {
		exp.Fragments = append(exp.Fragments, Alternation(tok))
	}
	return exp, nil
}

// ExpandNumericList expands "1,3-5" into [1 3 4 5]. Duplicates keep their
// first position.
func ExpandNumericList(tok string) ([]int, error) {
	if !IsNumericList(tok) {
		return nil, fmt.Errorf("not a numeric list: %q", tok)
	}

	seen := map[int]struct{}{}
	var out []int
	push := func(n int) {
		if _, ok := seen[n]; ok {
			return
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}

	for _, item := range strings.Split(tok, ",") {
		lo, hi, isRange := strings.Cut(item, "-")
		start, err := strconv.Atoi(lo)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", item, err)
		}
		if !isRange {
			push(start)
			continue
		}
		end, err := strconv.Atoi(hi)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", item, err)
		}
		if start > end {
			return nil, &InvalidRangeError{Token: tok, Start: start, End: end}
		}
		for n := start; n <= end; n++ {
			push(n)
		}
	}
	return out, nil
}

// Alternation rewrites "a,b,c" as "(?:a|b|c)". Tokens without commas are
// returned unchanged.
func Alternation(tok string) string {
	if !strings.Contains(tok, ",") {
		return tok
	}
	return "(?:" + strings.ReplaceAll(tok, ",", "|") + ")"
}

// suffixFragment renders the numeric suffix group. The look-behind keeps 5
// from matching the tail of 15.
func suffixFragment(nums []int) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = strconv.Itoa(n)
	}
	return `(?<!\d)(?:` + strings.Join(parts, "|") + `)$`
}
