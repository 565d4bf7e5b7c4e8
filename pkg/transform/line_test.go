package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jihwankim/kinda/pkg/registry"
)

func newTestLineTransformer(t *testing.T) *LineTransformer {
	t.Helper()
	reg, err := registry.Build()
	require.NoError(t, err)
	return NewLineTransformer(reg)
}

// TestLineTransformer_WelpParenClosureRegression is the seed-suite scenario
// 1 case: the closing paren of the left operand must survive into
// welp_fallback's call, never get dropped.
func TestLineTransformer_WelpParenClosureRegression(t *testing.T) {
	lt := newTestLineTransformer(t)
	res, err := lt.Transform("result = (1 / 1) ~welp 0", 1)
	require.NoError(t, err)
	assert.Equal(t, "result = welp_fallback(lambda: (1 / 1), 0)", res.Text)
	assert.Contains(t, res.Helpers, "welp_fallback")
	assert.Equal(t, []string{"welp"}, res.Constructs)
}

func TestLineTransformer_WelpBareIdentifierOperand(t *testing.T) {
	lt := newTestLineTransformer(t)
	res, err := lt.Transform("value ~welp default_value", 1)
	require.NoError(t, err)
	assert.Equal(t, "welp_fallback(lambda: value, default_value)", res.Text)
}

func TestLineTransformer_WelpNestedParens(t *testing.T) {
	lt := newTestLineTransformer(t)
	res, err := lt.Transform("x = (a + (b * c)) ~welp -1", 1)
	require.NoError(t, err)
	assert.Equal(t, "x = welp_fallback(lambda: (a + (b * c)), -1)", res.Text)
}

func TestLineTransformer_WelpUnbalancedParenIsAnError(t *testing.T) {
	lt := newTestLineTransformer(t)
	_, err := lt.Transform("x = a + 1) ~welp 0", 1)
	require.Error(t, err)
}

func TestLineTransformer_IshComparison(t *testing.T) {
	lt := newTestLineTransformer(t)
	res, err := lt.Transform("98 ~ish 100", 1)
	require.NoError(t, err)
	assert.Equal(t, "ish_compare((98), (100))", res.Text)
	assert.Equal(t, []string{"ish_comparison"}, res.Constructs)
}

func TestLineTransformer_IshValue(t *testing.T) {
	lt := newTestLineTransformer(t)
	res, err := lt.Transform("x = ~ish(10)", 1)
	require.NoError(t, err)
	assert.Equal(t, `x = (10) + fuzz_tolerance("ish")`, res.Text)
}

func TestLineTransformer_Drift(t *testing.T) {
	lt := newTestLineTransformer(t)
	res, err := lt.Transform("speed~drift", 1)
	require.NoError(t, err)
	assert.Equal(t, "drift_value(speed)", res.Text)
}

func TestLineTransformer_KindaInt(t *testing.T) {
	lt := newTestLineTransformer(t)
	res, err := lt.Transform("~kinda int health = 100", 1)
	require.NoError(t, err)
	assert.Equal(t, "health = kinda_int_value((100))", res.Text)
}

func TestLineTransformer_KindaFloat(t *testing.T) {
	lt := newTestLineTransformer(t)
	res, err := lt.Transform("~kinda float speed = 1.5", 1)
	require.NoError(t, err)
	assert.Equal(t, "speed = kinda_float_value((1.5))", res.Text)
}

func TestLineTransformer_KindaBool(t *testing.T) {
	lt := newTestLineTransformer(t)
	res, err := lt.Transform("~kinda bool ready = True", 1)
	require.NoError(t, err)
	assert.Equal(t, `ready = kinda_bool_value((True), "kinda_bool_true")`, res.Text)
}

func TestLineTransformer_KindaBinary(t *testing.T) {
	lt := newTestLineTransformer(t)
	res, err := lt.Transform("~kinda binary flag", 1)
	require.NoError(t, err)
	assert.Equal(t, `flag = kinda_binary_value("kinda_binary_positive")`, res.Text)
}

func TestLineTransformer_SortaPrint(t *testing.T) {
	lt := newTestLineTransformer(t)
	res, err := lt.Transform(`~sorta_print(score, streak)`, 1)
	require.NoError(t, err)
	assert.Equal(t, `sorta_print("sorta_print", score, streak)`, res.Text)
}

func TestLineTransformer_AssertProbability(t *testing.T) {
	lt := newTestLineTransformer(t)
	res, err := lt.Transform("~assert_probability(sometimes, 0.5)", 1)
	require.NoError(t, err)
	assert.Equal(t, `assert_probability_check("sometimes", (0.5))`, res.Text)
}

func TestLineTransformer_NoTildeIsFastPathUnchanged(t *testing.T) {
	lt := newTestLineTransformer(t)
	res, err := lt.Transform("plain_python_line = 1 + 2", 1)
	require.NoError(t, err)
	assert.Equal(t, "plain_python_line = 1 + 2", res.Text)
	assert.Empty(t, res.Helpers)
	assert.Empty(t, res.Constructs)
}

func TestLineTransformer_UnknownConstructReturnsSuggestion(t *testing.T) {
	lt := newTestLineTransformer(t)
	_, err := lt.Transform("~sometims (x) {", 1)
	require.Error(t, err)
	var unknown *UnknownConstructError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "~sometims", unknown.Token)
	assert.Equal(t, "sometimes", unknown.Suggest)
}

func TestLineTransformer_TildeInsideStringIsPassthrough(t *testing.T) {
	lt := newTestLineTransformer(t)
	res, err := lt.Transform(`msg = "not a ~sometimes construct"`, 1)
	require.NoError(t, err)
	assert.Equal(t, `msg = "not a ~sometimes construct"`, res.Text)
	assert.Empty(t, res.Constructs)
}

func TestLineTransformer_TildeInsideCommentIsPassthrough(t *testing.T) {
	lt := newTestLineTransformer(t)
	res, err := lt.Transform("x = 1  # uses ~ish somewhere", 1)
	require.NoError(t, err)
	assert.Equal(t, "x = 1  # uses ~ish somewhere", res.Text)
	assert.Empty(t, res.Constructs)
}

func TestLineTransformer_ConstructBeforeStringLiteralStillMatches(t *testing.T) {
	lt := newTestLineTransformer(t)
	res, err := lt.Transform(`label~drift = "fixed text"`, 1)
	require.NoError(t, err)
	assert.Equal(t, `drift_value(label) = "fixed text"`, res.Text)
}

// TestLineTransformer_NestedConstructInBlockCondition checks that a
// construct inside another construct's operand is rewritten too, not left
// as a live '~' in the output.
func TestLineTransformer_NestedConstructInBlockCondition(t *testing.T) {
	lt := newTestLineTransformer(t)
	res, err := lt.Transform("~sometimes (98 ~ish 100) {", 1)
	require.NoError(t, err)
	assert.Equal(t,
		`if chaos_sometimes("sometimes") and secure_cond(lambda: (ish_compare((98), (100)))):`,
		res.Text)
	assert.ElementsMatch(t, []string{"sometimes", "ish_comparison"}, res.Constructs)
}

func TestLineTransformer_MultipleConstructsOnOneLine(t *testing.T) {
	lt := newTestLineTransformer(t)
	res, err := lt.Transform("total = a~drift + b~drift", 1)
	require.NoError(t, err)
	assert.Equal(t, "total = drift_value(a) + drift_value(b)", res.Text)
	assert.Equal(t, []string{"drift", "drift"}, res.Constructs)
}

// TestLineTransformer_TransformedOutputIsIdempotent checks the idempotence
// property: rewriting output that already contains no '~' is the identity.
func TestLineTransformer_TransformedOutputIsIdempotent(t *testing.T) {
	lt := newTestLineTransformer(t)
	first, err := lt.Transform("result = (1 / 1) ~welp 0", 1)
	require.NoError(t, err)

	second, err := lt.Transform(first.Text, 1)
	require.NoError(t, err)
	assert.Equal(t, first.Text, second.Text)
	assert.Empty(t, second.Constructs)
}
