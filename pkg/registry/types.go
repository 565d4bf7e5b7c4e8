// Package registry implements the Construct Registry (C1): the static table
// mapping each tilde construct to its detection pattern, emission template,
// required runtime helpers, and probability key.
package registry

import "regexp"

// Kind classifies how a construct participates in host syntax.
type Kind string

const (
	KindDeclaration    Kind = "declaration"
	KindExpression     Kind = "expression"
	KindStatement      Kind = "statement"
	KindBlock          Kind = "block"
	KindInlineOperator Kind = "inline-operator"
	KindOutput         Kind = "output"
	KindAssertion      Kind = "assertion"
	KindDrift          Kind = "drift"
)

// Descriptor is the immutable, one-per-construct registry entry.
type Descriptor struct {
	// Name is the construct's stable identifier, e.g. "kinda_int", "welp".
	Name string

	Kind Kind

	// Pattern is pre-compiled at registration time. Named capture groups
	// feed Template.
	Pattern *regexp.Regexp

	// ProbabilityKey is the chaos.ProbabilityKey this construct's emitted
	// code reads at runtime. Empty if the construct never consults
	// probability (e.g. a pure numeric-fuzz declaration).
	ProbabilityKey string

	// Helpers lists the runtime helper names this construct's emitted code
	// calls. The registry computes the transitive closure over these via
	// HelpersClosure.
	Helpers []string

	// Template is a text/template body. Its dot is the regex submatch map
	// (named groups -> matched text) built by the Line/Block Transformer.
	Template string

	// AllowNesting reports whether this construct may legally contain
	// another construct of block kind in its body (true for all block
	// constructs; false for leaf inline operators like
	// ish_comparison, which take plain expressions).
	AllowNesting bool
}
