package emit_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jihwankim/kinda/pkg/emit"
	"github.com/jihwankim/kinda/pkg/registry"
)

func TestFromHelpers_EmptyIsEmpty(t *testing.T) {
	out, err := emit.FromHelpers(nil)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestFromHelpers_UnknownHelperIsError(t *testing.T) {
	_, err := emit.FromHelpers([]string{"not_a_helper"})
	require.Error(t, err)
	var unknown *emit.UnknownHelperError
	assert.ErrorAs(t, err, &unknown)
}

func TestRuntime_DeterministicAndComplete(t *testing.T) {
	reg, err := registry.Build()
	require.NoError(t, err)

	out1, helpers1, err := emit.Runtime(reg, []string{"sometimes", "welp", "ish_comparison"})
	require.NoError(t, err)
	out2, helpers2, err := emit.Runtime(reg, []string{"sometimes", "welp", "ish_comparison"})
	require.NoError(t, err)

	assert.Equal(t, out1, out2, "same construct set must emit byte-identical runtime")
	assert.Equal(t, helpers1, helpers2)

	// Every helper in the closure has a definition in the emitted block.
	text := string(out1)
	for _, h := range helpers1 {
		assert.Contains(t, text, "def "+h+"(", "helper %s must be defined", h)
	}
	assert.Contains(t, text, "from kinda_runtime import")
}

func TestRuntime_DependenciesEmittedBeforeDependents(t *testing.T) {
	reg, err := registry.Build()
	require.NoError(t, err)

	out, _, err := emit.Runtime(reg, []string{"eventually_until"})
	require.NoError(t, err)

	text := string(out)
	idxWilson := strings.Index(text, "def wilson_lower_bound(")
	idxRunner := strings.Index(text, "def eventually_until_runner(")
	require.GreaterOrEqual(t, idxWilson, 0)
	require.GreaterOrEqual(t, idxRunner, 0)
	assert.Less(t, idxWilson, idxRunner, "a helper's dependencies must be defined before it")
}
