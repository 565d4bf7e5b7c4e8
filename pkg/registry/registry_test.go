package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jihwankim/kinda/pkg/registry"
)

func TestBuild_RegistersEveryConstruct(t *testing.T) {
	r, err := registry.Build()
	require.NoError(t, err)

	for _, name := range []string{
		"kinda_int", "kinda_float", "kinda_bool", "kinda_binary",
		"sometimes", "maybe", "probably", "rarely",
		"sometimes_while", "maybe_for", "kinda_repeat", "eventually_until",
		"ish_comparison", "ish_value", "welp", "drift", "sorta_print",
		"assert_eventually", "assert_probability",
	} {
		_, ok := r.Lookup(name)
		assert.True(t, ok, "expected construct %q to be registered", name)
	}
}

func TestMatch_Sometimes(t *testing.T) {
	r, err := registry.Build()
	require.NoError(t, err)

	d, groups, ok := r.Match(`~sometimes (x > 0) {`)
	require.True(t, ok)
	assert.Equal(t, "sometimes", d.Name)
	assert.Equal(t, "x > 0", groups["cond"])
}

func TestMatch_KindaRepeatPriorityOverSometimes(t *testing.T) {
	r, err := registry.Build()
	require.NoError(t, err)

	d, groups, ok := r.Match(`~kinda_repeat(10) {`)
	require.True(t, ok)
	assert.Equal(t, "kinda_repeat", d.Name)
	assert.Equal(t, "10", groups["n"])
}

func TestMatch_NoMatch(t *testing.T) {
	r, err := registry.Build()
	require.NoError(t, err)

	_, _, ok := r.Match(`x = 1 + 2`)
	assert.False(t, ok)
}

func TestHelpersClosure_TransitiveAndDeterministic(t *testing.T) {
	r, err := registry.Build()
	require.NoError(t, err)

	order1, err := r.HelpersClosure([]string{"assert_eventually"})
	require.NoError(t, err)
	order2, err := r.HelpersClosure([]string{"assert_eventually"})
	require.NoError(t, err)
	assert.Equal(t, order1, order2)

	assert.Contains(t, order1, "assert_eventually_runner")
	assert.Contains(t, order1, "eventually_until_runner")
	assert.Contains(t, order1, "wilson_lower_bound")
	assert.Contains(t, order1, "secure_cond")

	idxWilson := indexOf(order1, "wilson_lower_bound")
	idxRunner := indexOf(order1, "eventually_until_runner")
	idxAssert := indexOf(order1, "assert_eventually_runner")
	assert.Less(t, idxWilson, idxRunner)
	assert.Less(t, idxRunner, idxAssert)
}

func TestHelpersClosure_SharedDependencyAppearsOnce(t *testing.T) {
	r, err := registry.Build()
	require.NoError(t, err)

	order, err := r.HelpersClosure([]string{"sometimes", "maybe", "probably", "rarely"})
	require.NoError(t, err)

	count := 0
	for _, h := range order {
		if h == "chaos_gate" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestHelpersClosure_UnknownConstruct(t *testing.T) {
	r, err := registry.Build()
	require.NoError(t, err)

	_, err = r.HelpersClosure([]string{"not_a_real_construct"})
	assert.Error(t, err)
}

func TestDefineHelper_RejectsCycle(t *testing.T) {
	r := registry.New()
	require.NoError(t, r.DefineHelper("a"))
	require.NoError(t, r.DefineHelper("b", "a"))
	err := r.DefineHelper("a", "b")
	assert.Error(t, err)
}

func indexOf(haystack []string, needle string) int {
	for i, s := range haystack {
		if s == needle {
			return i
		}
	}
	return -1
}
