package transform

import (
	"strings"
	"testing"

	"github.com/jihwankim/kinda/pkg/registry"
	"github.com/stretchr/testify/require"
)

func newTestBlockTransformer(t *testing.T) *BlockTransformer {
	t.Helper()
	reg, err := registry.Build()
	require.NoError(t, err)
	lt := NewLineTransformer(reg)
	return NewBlockTransformer(lt, 0, 0)
}

func TestBlockTransformer_SimpleSometimesBlock(t *testing.T) {
	bt := newTestBlockTransformer(t)
	lines := []string{
		`~sometimes (x > 0) {`,
		`    do_thing()`,
		`}`,
	}
	res, err := bt.Transform(lines)
	require.NoError(t, err)
	require.Len(t, res.Lines, 3)
	require.Contains(t, res.Lines[0], "chaos_sometimes(\"sometimes\")")
	require.Equal(t, "    do_thing()", res.Lines[1])
	require.Equal(t, "", res.Lines[2])
	require.Contains(t, res.Helpers, "chaos_gate")
	require.Contains(t, res.Helpers, "chaos_sometimes")
	require.Equal(t, 1, res.ConstructUsage["sometimes"])
}

func TestBlockTransformer_SometimesElseIndentation(t *testing.T) {
	bt := newTestBlockTransformer(t)
	lines := []string{
		`~maybe (ready) {`,
		`    go_fast()`,
		`} {`,
		`    go_slow()`,
		`}`,
	}
	res, err := bt.Transform(lines)
	require.NoError(t, err)
	require.Equal(t, []string{
		"if chaos_maybe(\"maybe\") and secure_cond(lambda: (ready)):",
		"    go_fast()",
		"else:",
		"    go_slow()",
		"",
	}, res.Lines)
}

func TestBlockTransformer_NestedBlocksIndentCorrectly(t *testing.T) {
	bt := newTestBlockTransformer(t)
	lines := []string{
		`~kinda_repeat(3) {`,
		`    ~sometimes (flaky()) {`,
		`        retry()`,
		`    }`,
		`}`,
	}
	res, err := bt.Transform(lines)
	require.NoError(t, err)
	require.Equal(t, "for _kinda_i in range(kinda_repeat_count((3))):", res.Lines[0])
	require.Equal(t, "    if chaos_sometimes(\"sometimes\") and secure_cond(lambda: (flaky())):", res.Lines[1])
	require.Equal(t, "        retry()", res.Lines[2])
	require.Equal(t, "", res.Lines[3])
	require.Equal(t, "", res.Lines[4])
}

func TestBlockTransformer_UnmatchedCloseIsSyntaxError(t *testing.T) {
	bt := newTestBlockTransformer(t)
	_, err := bt.Transform([]string{"}"})
	require.Error(t, err)
	var se *SyntaxError
	require.ErrorAs(t, err, &se)
}

func TestBlockTransformer_UnclosedBlockIsSyntaxError(t *testing.T) {
	bt := newTestBlockTransformer(t)
	_, err := bt.Transform([]string{`~sometimes (x) {`, `do_thing()`})
	require.Error(t, err)
	var se *SyntaxError
	require.ErrorAs(t, err, &se)
}

func TestBlockTransformer_NestingLimitExceeded(t *testing.T) {
	reg, err := registry.Build()
	require.NoError(t, err)
	lt := NewLineTransformer(reg)
	bt := NewBlockTransformer(lt, 0, 3)

	var lines []string
	for i := 0; i < 5; i++ {
		lines = append(lines, `~sometimes (true) {`)
	}
	for i := 0; i < 5; i++ {
		lines = append(lines, `}`)
	}

	_, err = bt.Transform(lines)
	require.Error(t, err)
	var ne *NestingLimitError
	require.ErrorAs(t, err, &ne)
}

func TestBlockTransformer_DeepNestingAtBoundaryPasses(t *testing.T) {
	reg, err := registry.Build()
	require.NoError(t, err)
	lt := NewLineTransformer(reg)
	bt := NewBlockTransformer(lt, 10, 1000)

	depth := 1000
	var lines []string
	for i := 0; i < depth; i++ {
		lines = append(lines, `~maybe (x) {`)
	}
	lines = append(lines, `leaf()`)
	for i := 0; i < depth; i++ {
		lines = append(lines, `}`)
	}

	res, err := bt.Transform(lines)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(res.Lines[depth], strings.Repeat("    ", depth)))
}

func TestBlockTransformer_DeepNestingOneOverBoundaryFails(t *testing.T) {
	reg, err := registry.Build()
	require.NoError(t, err)
	lt := NewLineTransformer(reg)
	bt := NewBlockTransformer(lt, 10, 1000)

	depth := 1001
	var lines []string
	for i := 0; i < depth; i++ {
		lines = append(lines, `~maybe (x) {`)
	}
	lines = append(lines, `leaf()`)
	for i := 0; i < depth; i++ {
		lines = append(lines, `}`)
	}

	_, err = bt.Transform(lines)
	require.Error(t, err)
	var ne *NestingLimitError
	require.ErrorAs(t, err, &ne)
}

func TestExpandSingleLineBlock_WithElse(t *testing.T) {
	expanded, ok := expandSingleLineBlock(`~maybe (x) { fast() } { slow() }`)
	require.True(t, ok)
	require.Equal(t, []string{
		`~maybe (x) {`,
		`fast()`,
		`} {`,
		`slow()`,
		`}`,
	}, expanded)
}

func TestExpandSingleLineBlock_NoElse(t *testing.T) {
	expanded, ok := expandSingleLineBlock(`~sometimes (x > 0) { do_thing() }`)
	require.True(t, ok)
	require.Equal(t, []string{
		`~sometimes (x > 0) {`,
		`do_thing()`,
		`}`,
	}, expanded)
}

func TestExpandSingleLineBlock_AlreadyMultiLinePassesThrough(t *testing.T) {
	_, ok := expandSingleLineBlock(`~sometimes (x > 0) {`)
	require.False(t, ok)
}

func TestBlockTransformer_SingleLineFormIntegration(t *testing.T) {
	bt := newTestBlockTransformer(t)
	res, err := bt.Transform([]string{`~maybe (ready) { go_fast() } { go_slow() }`})
	require.NoError(t, err)
	require.Equal(t, []string{
		"if chaos_maybe(\"maybe\") and secure_cond(lambda: (ready)):",
		"    go_fast()",
		"else:",
		"    go_slow()",
		"",
	}, res.Lines)
}

func TestEstimateMaxDepth(t *testing.T) {
	require.Equal(t, 0, estimateMaxDepth([]string{"no braces here"}))
	require.Equal(t, 2, estimateMaxDepth([]string{"{", "{", "}", "}"}))
	require.Equal(t, 1, estimateMaxDepth([]string{`s := "{ not a brace }"`, "{", "}"}))
}
