// Package fuzzgen generates random, syntactically valid kinda source
// snippets for property-based testing of the transform pipeline. It is
// repurposed from sampling a randomized fault parameter set to sampling a
// randomized source snippet: same seeded-rng, weighted-distribution idiom,
// different target domain.
package fuzzgen

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
)

// blockConstruct is one of the block-form tilde constructs the generator
// knows how to emit, paired with the printf verb its opener needs.
type blockConstruct struct {
	name   string
	opener string // %s is the condition/arg placeholder
}

var blockConstructs = []blockConstruct{
	{"sometimes", "~sometimes (%s) {"},
	{"maybe", "~maybe (%s) {"},
	{"probably", "~probably (%s) {"},
	{"rarely", "~rarely (%s) {"},
	{"sometimes_while", "~sometimes_while (%s) {"},
}

var inlineTemplates = []string{
	"%s ~sometimes",
	"%s ~maybe",
	"%s ~probably",
	"%s ~rarely",
}

// Sampler holds a seeded RNG and produces random kinda source text.
type Sampler struct {
	rng     *rand.Rand
	varSeq  int
	nameSeq int
}

// NewSampler creates a Sampler seeded with the given value, for
// reproducible generation across runs of the same seed.
func NewSampler(seed int64) *Sampler {
	return &Sampler{rng: rand.New(rand.NewSource(seed))} //nolint:gosec
}

// triangular samples from a triangular distribution on [lo, hi] with the
// given mode, same derivation as pkg/fuzz's fault-parameter sampler.
func (s *Sampler) triangular(lo, hi, mode float64) float64 {
	u := s.rng.Float64()
	fc := (mode - lo) / (hi - lo)
	if u < fc {
		return lo + math.Sqrt(u*(hi-lo)*(mode-lo))
	}
	return hi - math.Sqrt((1-u)*(hi-lo)*(hi-mode))
}

func (s *Sampler) weightedChoice(choices []string, weights []int) string {
	total := 0
	for _, w := range weights {
		total += w
	}
	r := s.rng.Intn(total)
	for i, w := range weights {
		r -= w
		if r < 0 {
			return choices[i]
		}
	}
	return choices[len(choices)-1]
}

func (s *Sampler) nextVar() string {
	s.varSeq++
	return fmt.Sprintf("v%d", s.varSeq)
}

// randLiteral returns a random integer, float, or boolean literal, biased
// toward small near-zero values the same way pkg/fuzz biases fault
// parameters toward the near-threshold zone.
func (s *Sampler) randLiteral() string {
	switch s.weightedChoice([]string{"int", "float", "bool"}, []int{3, 2, 1}) {
	case "int":
		v := int(s.triangular(-50, 50, 0))
		return fmt.Sprintf("%d", v)
	case "float":
		v := s.triangular(-10, 10, 0)
		return fmt.Sprintf("%.3f", v)
	default:
		if s.rng.Float64() < 0.5 {
			return "True"
		}
		return "False"
	}
}

// randCond builds a random comparison expression, optionally using the
// ~ish fuzzy-comparison operator so generated sources exercise C4's inline
// operators as well as C5's block constructs.
func (s *Sampler) randCond() string {
	lhs := s.randLiteral()
	rhs := s.randLiteral()
	if s.rng.Float64() < 0.3 {
		return fmt.Sprintf("%s ~ish %s", lhs, rhs)
	}
	op := s.weightedChoice([]string{"<", ">", "==", "!="}, []int{1, 1, 1, 1})
	return fmt.Sprintf("%s %s %s", lhs, op, rhs)
}

// Declaration returns a random ~kinda declaration line.
func (s *Sampler) Declaration() string {
	name := s.nextVar()
	kind := s.weightedChoice([]string{"int", "float", "bool", "binary"}, []int{3, 3, 2, 1})
	switch kind {
	case "int", "float":
		return fmt.Sprintf("~kinda %s %s = %s", kind, name, s.randLiteral())
	case "bool":
		return fmt.Sprintf("~kinda bool %s = %s", name, s.randLiteral())
	default:
		return fmt.Sprintf("~kinda binary %s", name)
	}
}

// InlineStatement returns a random trailing-modifier or welp statement.
func (s *Sampler) InlineStatement() string {
	stmt := fmt.Sprintf("sorta_print(%s)", s.randLiteral())
	if s.rng.Float64() < 0.3 {
		return fmt.Sprintf("(%s) ~welp %s", s.randLiteral(), s.randLiteral())
	}
	tmpl := inlineTemplates[s.rng.Intn(len(inlineTemplates))]
	return fmt.Sprintf(tmpl, stmt)
}

// block recursively generates a block construct's opener, body, and
// closing brace, respecting maxDepth. Body lines are a mix of plain
// statements and, while depth remains, nested blocks.
func (s *Sampler) block(depth, maxDepth int, indent string) []string {
	bc := blockConstructs[s.rng.Intn(len(blockConstructs))]
	lines := []string{indent + fmt.Sprintf(bc.opener, s.randCond())}

	bodyIndent := indent + "    "
	nBody := 1 + s.rng.Intn(3)
	for i := 0; i < nBody; i++ {
		if depth < maxDepth && s.rng.Float64() < 0.4 {
			lines = append(lines, s.block(depth+1, maxDepth, bodyIndent)...)
		} else {
			lines = append(lines, bodyIndent+s.InlineStatement())
		}
	}
	lines = append(lines, indent+"}")
	return lines
}

// Source generates nStatements top-level statements (declarations, inline
// statements, and nested block constructs up to maxDepth deep) and joins
// them into one kinda source text, newline-terminated.
func (s *Sampler) Source(nStatements, maxDepth int) string {
	if nStatements < 1 {
		nStatements = 1
	}
	if maxDepth < 0 {
		maxDepth = 0
	}

	var lines []string
	for i := 0; i < nStatements; i++ {
		switch s.weightedChoice([]string{"decl", "inline", "block", "repeat"}, []int{3, 3, 3, 1}) {
		case "decl":
			lines = append(lines, s.Declaration())
		case "inline":
			lines = append(lines, s.InlineStatement())
		case "repeat":
			n := int(s.triangular(1, 20, 3))
			lines = append(lines, fmt.Sprintf("~kinda_repeat(%d) {", n))
			lines = append(lines, "    "+s.InlineStatement())
			lines = append(lines, "}")
		default:
			lines = append(lines, s.block(0, maxDepth, "")...)
		}
	}
	return strings.Join(lines, "\n") + "\n"
}
