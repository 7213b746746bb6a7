package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplatedRewriteIsPure(t *testing.T) {
	t.Parallel()

	concrete := Compound("section-2", "trend-metric")
	templated := concrete.Templated()

	assert.Equal(t, Compound(Wildcard, "trend-metric"), templated)
	assert.True(t, templated.IsTemplated())
	// The original must be untouched.
	assert.Equal(t, "section-2", concrete.Section)
	assert.False(t, concrete.IsTemplated())
}

func TestTemplatedFromPlainKeepsNameAsRole(t *testing.T) {
	t.Parallel()

	templated := Plain("trend-metric").Templated()
	assert.Equal(t, Compound(Wildcard, "trend-metric"), templated)
	assert.Equal(t, "trend-metric", templated.RoleName())
}

func TestResolveSubstitutesSectionInstance(t *testing.T) {
	t.Parallel()

	templated := Compound(Wildcard, "trend-metric")
	resolved := templated.Resolve("inst-7")
	assert.Equal(t, Compound("inst-7", "trend-metric"), resolved)

	// Concrete IDs are left alone.
	concrete := Compound("inst-1", "trend-metric")
	assert.Equal(t, concrete, concrete.Resolve("inst-7"))
	plain := Plain("global-filter")
	assert.Equal(t, plain, plain.Resolve("inst-7"))
}

func TestMatches(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		id    ID
		event ID
		want  bool
	}{
		{"plain exact", Plain("control-1"), Plain("control-1"), true},
		{"plain mismatch", Plain("control-1"), Plain("control-2"), false},
		{"concrete compound exact", Compound("a", "x"), Compound("a", "x"), true},
		{"concrete compound other section", Compound("a", "x"), Compound("b", "x"), false},
		{"templated any section", Compound(Wildcard, "x"), Compound("b", "x"), true},
		{"templated role mismatch", Compound(Wildcard, "x"), Compound("b", "y"), false},
		{"templated never matches plain", Compound(Wildcard, "x"), Plain("x"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.id.Matches(tc.event))
		})
	}
}

func TestStringKeysAreDistinct(t *testing.T) {
	t.Parallel()

	seen := map[string]bool{}
	for _, id := range []ID{
		Plain("a"), Plain("b"),
		Compound("a", "b"), Compound("b", "a"), Compound(Wildcard, "b"),
	} {
		key := id.String()
		require.False(t, seen[key], "duplicate key %q", key)
		seen[key] = true
	}
}

func TestTargetTemplatingKeepsProperty(t *testing.T) {
	t.Parallel()

	target := NewTarget(Compound("s0", "chart"), "figure")
	templated := target.Templated()
	assert.Equal(t, "figure", templated.Property)
	assert.True(t, templated.ID.IsTemplated())
	assert.Equal(t, "*:chart.figure", templated.String())
}
