package hostmatch

import (
	"cmp"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

var sortKeyRe = regexp.MustCompile(`^(\D+(?:\d+\D+)*)(\d+)$`)

// SortKey orders aliases by their text prefix, then by their trailing number.
type SortKey struct {
	Prefix string
	Suffix uint64
}

// KeyOf splits alias into its prefix and trailing number. Aliases that do not
// start with a non-digit or do not end in digits get the whole alias as
// prefix and a zero suffix. Suffixes beyond uint64 saturate.
func KeyOf(alias string) SortKey {
	m := sortKeyRe.FindStringSubmatch(alias)
	if m == nil {
		return SortKey{Prefix: alias}
	}
	n, err := strconv.ParseUint(m[2], 10, 64)
	if err != nil {
		n = math.MaxUint64
	}
	return SortKey{Prefix: m[1], Suffix: n}
}

// Compare orders keys by prefix then suffix.
func (k SortKey) Compare(o SortKey) int {
	if c := strings.Compare(k.Prefix, o.Prefix); c != 0 {
		return c
	}
	return cmp.Compare(k.Suffix, o.Suffix)
}

// Sort returns hosts in natural order ("web2" before "web10"). Hosts with
// equal keys fall back to plain string order, so the result never depends on
// input order.
func Sort(hosts []string) []string {
	type keyed struct {
		host string
		key  SortKey
	}
	ks := make([]keyed, len(hosts))
	for i, h := range hosts {
		ks[i] = keyed{host: h, key: KeyOf(h)}
	}
	slices.SortStableFunc(ks, func(a, b keyed) int {
		if c := a.key.Compare(b.key); c != 0 {
			return c
		}
		return strings.Compare(a.host, b.host)
	})

	out := make([]string, len(ks))
	for i, k := range ks {
		out[i] = k.host
	}
	return out
}
