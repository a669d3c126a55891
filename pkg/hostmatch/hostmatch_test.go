package hostmatch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func set(aliases ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(aliases))
	for _, a := range aliases {
		out[a] = struct{}{}
	}
	return out
}

func TestExpand_NumericLastToken(t *testing.T) {
	exp, err := Expand([]string{"db", "1-3,5"})
	require.NoError(t, err)
	require.Equal(t, []string{"db"}, exp.Fragments)
	require.Equal(t, []int{1, 2, 3, 5}, exp.Suffixes)
}

func TestExpand_SingleNumericTokenIsLiteral(t *testing.T) {
	exp, err := Expand([]string{"1,2"})
	require.NoError(t, err)
	require.Nil(t, exp.Suffixes)
	require.Equal(t, []string{"(?:1|2)"}, exp.Fragments)
}

func TestExpand_NumericNotLastIsAlternation(t *testing.T) {
	exp, err := Expand([]string{"1,2", "web"})
	require.NoError(t, err)
	require.Nil(t, exp.Suffixes)
	require.Equal(t, []string{"(?:1|2)", "web"}, exp.Fragments)
}

func TestExpandNumericList_DedupesInOrder(t *testing.T) {
	nums, err := ExpandNumericList("7-9,1,8,007")
	require.NoError(t, err)
	require.Equal(t, []int{7, 8, 9, 1}, nums)
}

func TestExpandNumericList_InvalidRange(t *testing.T) {
	_, err := ExpandNumericList("1,5-2")
	var re *InvalidRangeError
	require.ErrorAs(t, err, &re)
	require.Equal(t, 5, re.Start)
	require.Equal(t, 2, re.End)
}

func TestCompile_InvalidRange(t *testing.T) {
	_, err := Compile([]string{"web", "5-2"})
	var re *InvalidRangeError
	require.True(t, errors.As(err, &re), "expected InvalidRangeError, got %v", err)
}

func TestCompile_NoTokens(t *testing.T) {
	_, err := Compile(nil)
	require.ErrorIs(t, err, ErrNoPatterns)
}

func TestCompile_SyntaxError(t *testing.T) {
	_, err := Compile([]string{"web(", "x"})
	var pe *PatternSyntaxError
	require.ErrorAs(t, err, &pe)
	require.Contains(t, pe.Expr, "web(")
}

func TestPredicate_RangeSuffix(t *testing.T) {
	p := MustCompile("db", "1-3,5")
	for _, a := range []string{"db1", "db2", "db3", "db5", "prod-db-5", "DB3"} {
		require.True(t, p.Matches(a), "expected %s to match", a)
	}
	for _, a := range []string{"db4", "db12", "db", "db05", "web1", "db1x"} {
		require.False(t, p.Matches(a), "expected %s not to match", a)
	}
}

func TestPredicate_RangeSuffixRequiresPrecedingTokenBeforeNumber(t *testing.T) {
	p := MustCompile("1", "2")
	require.True(t, p.Matches("a1b2"))
	require.False(t, p.Matches("host12"))
}

func TestPredicate_AnchorsInEarlierTokensSeeWholeAlias(t *testing.T) {
	require.False(t, MustCompile(`web$`, "5").Matches("web5"))
	require.False(t, MustCompile(`web\b`, "5").Matches("web5"))
	require.False(t, MustCompile(`^web$`, "1-3").Matches("web2"))

	require.True(t, MustCompile(`web\B`, "5").Matches("web5"))
	require.True(t, MustCompile(`^web`, "1-3").Matches("web2"))
	require.False(t, MustCompile(`^web`, "1-3").Matches("prod-web2"))
}

func TestPredicate_LookaroundInTokens(t *testing.T) {
	p := MustCompile(`(?<!stage-)web`, "1,2")
	require.True(t, p.Matches("prod-web1"))
	require.False(t, p.Matches("stage-web1"))
	require.False(t, p.Matches("prod-web3"))
}

func TestPredicate_CommaAlternationCaseInsensitive(t *testing.T) {
	p := MustCompile("a,b")
	require.True(t, p.Matches("xAx"))
	require.True(t, p.Matches("b"))
	require.False(t, p.Matches("cd"))
}

func TestPredicate_TokensInOrder(t *testing.T) {
	p := MustCompile("web", "prod")
	require.True(t, p.Matches("web-01.prod"))
	require.False(t, p.Matches("prod-web"))
}

func TestPredicate_String(t *testing.T) {
	require.Equal(t, `(?i)(?:web).*?(?:(?<!\d)(?:1|3|4)$)`, MustCompile("web", "1,3-4").String())
	require.Equal(t, `(?i)(?:(?:a|b)).*?(?:c)`, MustCompile("a,b", "c").String())
}

func TestSelect_NoMatchesIsEmpty(t *testing.T) {
	got := Select(set("web1", "web2"), MustCompile("nothing"))
	require.Empty(t, got)
}

func TestSelect_SearchSemantics(t *testing.T) {
	got := Sort(Select(set("web1", "api-web2", "db1"), MustCompile("web")))
	require.Equal(t, []string{"api-web2", "web1"}, got)
}

func TestKeyOf(t *testing.T) {
	require.Equal(t, SortKey{Prefix: "web", Suffix: 10}, KeyOf("web10"))
	require.Equal(t, SortKey{Prefix: "rack1-node", Suffix: 2}, KeyOf("rack1-node2"))
	require.Equal(t, SortKey{Prefix: "bastion"}, KeyOf("bastion"))
	require.Equal(t, SortKey{Prefix: "123"}, KeyOf("123"))
}

func TestSort_Natural(t *testing.T) {
	require.Equal(t, []string{"host1", "host2", "host10"}, Sort([]string{"host2", "host10", "host1"}))
}

func TestSort_Idempotent(t *testing.T) {
	in := []string{"b2", "a10", "a9", "b", "a", "a09", "c1-x3", "c1-x20"}
	once := Sort(in)
	require.Equal(t, once, Sort(once))
	require.Equal(t, []string{"a", "a09", "a9", "a10", "b", "b2", "c1-x3", "c1-x20"}, once)
}

func TestSort_TiesAreDeterministic(t *testing.T) {
	require.Equal(t, Sort([]string{"web01", "web1"}), Sort([]string{"web1", "web01"}))
	require.Equal(t, []string{"web01", "web1"}, Sort([]string{"web1", "web01"}))
}

func TestSort_DoesNotMutateInput(t *testing.T) {
	in := []string{"b", "a"}
	_ = Sort(in)
	require.Equal(t, []string{"b", "a"}, in)
}
