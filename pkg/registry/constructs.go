package registry

import "regexp"

// Build returns the default Registry populated with every construct
// kinda recognises. Patterns are registered most-specific first so Match's
// first-match priority resolves correctly without a separate specificity
// score (e.g. kinda_repeat's literal "repeat" is checked before any bare
// "kinda" prefix would be). Brace-style variants (single-line vs multi-line
// bodies) are not separate registry entries — the Block Transformer (C5)
// handles both from the same block-opener descriptor, since the difference
// is purely about where the closing brace falls, not about detection.
func Build() (*Registry, error) {
	r := New()

	helperDefs := []struct {
		name    string
		depends []string
	}{
		{"secure_cond", nil},
		{"chaos_gate", nil},
		{"fuzz_tolerance", nil},
		{"wilson_lower_bound", nil},
		{"chaos_sometimes", []string{"chaos_gate"}},
		{"chaos_maybe", []string{"chaos_gate"}},
		{"chaos_probably", []string{"chaos_gate"}},
		{"chaos_rarely", []string{"chaos_gate"}},
		{"chaos_sometimes_while", []string{"chaos_gate"}},
		{"chaos_maybe_for", []string{"chaos_gate"}},
		{"kinda_repeat_count", nil},
		{"eventually_until_runner", []string{"wilson_lower_bound"}},
		{"assert_eventually_runner", []string{"eventually_until_runner"}},
		{"ish_compare", []string{"fuzz_tolerance"}},
		{"drift_value", []string{"fuzz_tolerance"}},
		{"kinda_int_value", []string{"fuzz_tolerance"}},
		{"kinda_float_value", []string{"fuzz_tolerance"}},
		{"kinda_bool_value", []string{"chaos_gate"}},
		{"kinda_binary_value", []string{"chaos_gate"}},
		{"sorta_print", []string{"chaos_gate"}},
		{"welp_fallback", nil},
		{"assert_probability_check", nil},
	}
	for _, h := range helperDefs {
		if err := r.DefineHelper(h.name, h.depends...); err != nil {
			return nil, err
		}
	}

	constructs := []Descriptor{
		// --- declarations ---
		{
			Name:     "kinda_int",
			Kind:     KindDeclaration,
			Pattern:  regexp.MustCompile(`~kinda\s+int\s+(?P<name>\w+)\s*=\s*(?P<expr>.+)`),
			Helpers:  []string{"kinda_int_value"},
			Template: `{{.name}} = kinda_int_value(({{.expr}}))`,
		},
		{
			Name:     "kinda_float",
			Kind:     KindDeclaration,
			Pattern:  regexp.MustCompile(`~kinda\s+float\s+(?P<name>\w+)\s*=\s*(?P<expr>.+)`),
			Helpers:  []string{"kinda_float_value"},
			Template: `{{.name}} = kinda_float_value(({{.expr}}))`,
		},
		{
			Name:           "kinda_bool",
			Kind:           KindDeclaration,
			Pattern:        regexp.MustCompile(`~kinda\s+bool\s+(?P<name>\w+)\s*=\s*(?P<expr>.+)`),
			ProbabilityKey: "kinda_bool_true",
			Helpers:        []string{"kinda_bool_value"},
			Template:       `{{.name}} = kinda_bool_value(({{.expr}}), "kinda_bool_true")`,
		},
		{
			Name:           "kinda_binary",
			Kind:           KindDeclaration,
			Pattern:        regexp.MustCompile(`~kinda\s+binary\s+(?P<name>\w+)`),
			ProbabilityKey: "kinda_binary_positive",
			Helpers:        []string{"kinda_binary_value"},
			Template:       `{{.name}} = kinda_binary_value("kinda_binary_positive")`,
		},

		// --- block constructs ---
		{
			Name:           "kinda_repeat",
			Kind:           KindBlock,
			Pattern:        regexp.MustCompile(`^\s*~kinda_repeat\s*\(\s*(?P<n>[^)]+)\s*\)\s*\{\s*$`),
			Helpers:        []string{"kinda_repeat_count"},
			AllowNesting:   true,
			Template:       `for _kinda_i in range(kinda_repeat_count(({{.n}}))):`,
		},
		{
			Name:           "eventually_until",
			Kind:           KindBlock,
			Pattern:        regexp.MustCompile(`^\s*~eventually_until\s*\(\s*(?P<cond>.+)\s*\)\s*\{\s*$`),
			Helpers:        []string{"eventually_until_runner", "secure_cond"},
			AllowNesting:   true,
			Template:       `for _kinda_iter in eventually_until_runner(lambda: secure_cond(lambda: ({{.cond}}))):`,
		},
		{
			Name:           "assert_eventually",
			Kind:           KindAssertion,
			Pattern:        regexp.MustCompile(`^\s*~assert_eventually\s*\(\s*(?P<cond>.+)\s*\)\s*\{\s*$`),
			Helpers:        []string{"assert_eventually_runner", "secure_cond"},
			AllowNesting:   true,
			Template:       `for _kinda_iter in assert_eventually_runner(lambda: secure_cond(lambda: ({{.cond}}))):`,
		},
		{
			Name:           "sometimes_while",
			Kind:           KindBlock,
			Pattern:        regexp.MustCompile(`^\s*~sometimes_while\s*\(\s*(?P<cond>.+)\s*\)\s*\{\s*$`),
			ProbabilityKey: "sometimes_while",
			Helpers:        []string{"chaos_sometimes_while", "secure_cond"},
			AllowNesting:   true,
			Template:       `while secure_cond(lambda: ({{.cond}})) and chaos_sometimes_while("sometimes_while"):`,
		},
		{
			// The per-iteration gate is folded into the iterable itself
			// (chaos_maybe_for wraps iter in a filtering generator) rather
			// than an inner if-statement, so the construct still occupies
			// exactly one output line — line indices must stay 1:1 with
			// the input for stack traces to remain meaningful.
			Name:           "maybe_for",
			Kind:           KindBlock,
			Pattern:        regexp.MustCompile(`^\s*~maybe_for\s*\(\s*(?P<var>\w+)\s+in\s+(?P<iter>.+)\s*\)\s*\{\s*$`),
			ProbabilityKey: "maybe_for",
			Helpers:        []string{"chaos_maybe_for"},
			AllowNesting:   true,
			Template:       `for {{.var}} in chaos_maybe_for(({{.iter}}), "maybe_for"):`,
		},
		{
			Name:           "sometimes",
			Kind:           KindBlock,
			Pattern:        regexp.MustCompile(`^\s*~sometimes\s*\(\s*(?P<cond>.+)\s*\)\s*\{\s*$`),
			ProbabilityKey: "sometimes",
			Helpers:        []string{"chaos_sometimes", "secure_cond"},
			AllowNesting:   true,
			Template:       `if chaos_sometimes("sometimes") and secure_cond(lambda: ({{.cond}})):`,
		},
		{
			Name:           "maybe",
			Kind:           KindBlock,
			Pattern:        regexp.MustCompile(`^\s*~maybe\s*\(\s*(?P<cond>.+)\s*\)\s*\{\s*$`),
			ProbabilityKey: "maybe",
			Helpers:        []string{"chaos_maybe", "secure_cond"},
			AllowNesting:   true,
			Template:       `if chaos_maybe("maybe") and secure_cond(lambda: ({{.cond}})):`,
		},
		{
			Name:           "probably",
			Kind:           KindBlock,
			Pattern:        regexp.MustCompile(`^\s*~probably\s*\(\s*(?P<cond>.+)\s*\)\s*\{\s*$`),
			ProbabilityKey: "probably",
			Helpers:        []string{"chaos_probably", "secure_cond"},
			AllowNesting:   true,
			Template:       `if chaos_probably("probably") and secure_cond(lambda: ({{.cond}})):`,
		},
		{
			Name:           "rarely",
			Kind:           KindBlock,
			Pattern:        regexp.MustCompile(`^\s*~rarely\s*\(\s*(?P<cond>.+)\s*\)\s*\{\s*$`),
			ProbabilityKey: "rarely",
			Helpers:        []string{"chaos_rarely", "secure_cond"},
			AllowNesting:   true,
			Template:       `if chaos_rarely("rarely") and secure_cond(lambda: ({{.cond}})):`,
		},

		// --- inline trailing-modifier duals: "stmt ~sometimes" ---
		// The guarded statement is wrapped as a thunk so the whole construct
		// still fits on its one input line, the same device welp uses for
		// its fallback expression.
		{
			Name:           "sometimes_inline",
			Kind:           KindInlineOperator,
			Pattern:        regexp.MustCompile(`^(?P<stmt>.+?)\s*~sometimes\s*$`),
			ProbabilityKey: "sometimes",
			Helpers:        []string{"chaos_sometimes"},
			Template:       `chaos_sometimes(lambda: ({{.stmt}}), "sometimes")`,
		},
		{
			Name:           "maybe_inline",
			Kind:           KindInlineOperator,
			Pattern:        regexp.MustCompile(`^(?P<stmt>.+?)\s*~maybe\s*$`),
			ProbabilityKey: "maybe",
			Helpers:        []string{"chaos_maybe"},
			Template:       `chaos_maybe(lambda: ({{.stmt}}), "maybe")`,
		},
		{
			Name:           "probably_inline",
			Kind:           KindInlineOperator,
			Pattern:        regexp.MustCompile(`^(?P<stmt>.+?)\s*~probably\s*$`),
			ProbabilityKey: "probably",
			Helpers:        []string{"chaos_probably"},
			Template:       `chaos_probably(lambda: ({{.stmt}}), "probably")`,
		},
		{
			Name:           "rarely_inline",
			Kind:           KindInlineOperator,
			Pattern:        regexp.MustCompile(`^(?P<stmt>.+?)\s*~rarely\s*$`),
			ProbabilityKey: "rarely",
			Helpers:        []string{"chaos_rarely"},
			Template:       `chaos_rarely(lambda: ({{.stmt}}), "rarely")`,
		},

		// --- inline operators and expressions ---
		{
			Name:     "ish_comparison",
			Kind:     KindInlineOperator,
			Pattern:  regexp.MustCompile(`(?P<lhs>[\w.\[\]]+)\s*~ish\s*(?P<rhs>-?[\w.\[\]]+)`),
			Helpers:  []string{"ish_compare"},
			Template: `ish_compare(({{.lhs}}), ({{.rhs}}))`,
		},
		{
			Name:     "ish_value",
			Kind:     KindExpression,
			Pattern:  regexp.MustCompile(`~ish\(\s*(?P<expr>[^)]*)\s*\)`),
			Helpers:  []string{"fuzz_tolerance"},
			Template: `({{.expr}}) + fuzz_tolerance("ish")`,
		},
		{
			Name:     "drift",
			Kind:     KindDrift,
			Pattern:  regexp.MustCompile(`(?P<name>\w+)~drift`),
			Helpers:  []string{"drift_value"},
			Template: `drift_value({{.name}})`,
		},
		{
			// welp's detection pattern is intentionally loose: the exact
			// left-operand span (up to its matching opening parenthesis) is
			// resolved by the Line Transformer's balanced-paren scan, not
			// by this regex — see pkg/transform/line.go. The Template's
			// "expr" key is injected by that scan before execution; it never
			// comes from Pattern's own capture groups.
			Name:     "welp",
			Kind:     KindInlineOperator,
			Pattern:  regexp.MustCompile(`~welp\s+(?P<fallback>.+)$`),
			Helpers:  []string{"welp_fallback"},
			Template: `welp_fallback(lambda: {{.expr}}, {{.fallback}})`,
		},
		{
			Name:     "sorta_print",
			Kind:     KindOutput,
			Pattern:  regexp.MustCompile(`~sorta_print\(\s*(?P<args>.*)\s*\)`),
			ProbabilityKey: "sorta_print",
			Helpers:  []string{"sorta_print"},
			Template: `sorta_print("sorta_print", {{.args}})`,
		},
		{
			Name:     "assert_probability",
			Kind:     KindAssertion,
			Pattern:  regexp.MustCompile(`^\s*~assert_probability\(\s*(?P<key>\w+)\s*,\s*(?P<expected>[^)]+)\s*\)\s*$`),
			Helpers:  []string{"assert_probability_check"},
			Template: `assert_probability_check("{{.key}}", ({{.expected}}))`,
		},
	}

	for _, d := range constructs {
		if err := r.Register(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}
