package transform

import (
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"github.com/jihwankim/kinda/pkg/registry"
)

// tildeToken matches a leading "~" plus the word it prefixes, e.g. the
// "sometims" in "~sometims (x) {" — used only to name the offending token in
// an UnknownConstructError once Match has already failed.
var tildeToken = regexp.MustCompile(`~([A-Za-z_][A-Za-z0-9_]*)`)

// LineResult is one rewritten physical line plus the bookkeeping the
// pipeline needs: which helpers and constructs it referenced.
type LineResult struct {
	Text       string
	Helpers    []string
	Constructs []string
}

// LineTransformer implements C4: line-by-line recognition and rewriting of
// inline constructs, preserving surrounding host syntax.
type LineTransformer struct {
	reg *registry.Registry
}

// NewLineTransformer returns a LineTransformer bound to reg.
func NewLineTransformer(reg *registry.Registry) *LineTransformer {
	return &LineTransformer{reg: reg}
}

// Registry returns the Construct Registry this transformer rewrites against,
// so the Block Transformer can ask it for the helper-dependency closure over
// a file's used constructs without holding a second reference of its own.
func (lt *LineTransformer) Registry() *registry.Registry {
	return lt.reg
}

// maxRewritesPerLine bounds the rewrite loop below. Every pass consumes at
// least one live '~' and no registered template emits one, so reaching the
// cap means a descriptor broke that contract, not that the input was merely
// construct-dense.
const maxRewritesPerLine = 64

// Transform rewrites one line, repeating until no live '~' remains so a
// line carrying several constructs — or a construct whose operand itself
// contains one, like "~sometimes (x ~ish y) {" — comes out fully rewritten.
// A line containing no '~' is returned unchanged — the fast path — and a
// line whose only '~' occurrences fall inside a string or comment is
// likewise returned unchanged (the mask makes those positions unmatchable).
func (lt *LineTransformer) Transform(line string, lineNo int) (LineResult, error) {
	if !strings.Contains(line, "~") {
		return LineResult{Text: line}, nil
	}

	res := LineResult{Text: line}
	for pass := 0; pass < maxRewritesPerLine; pass++ {
		m := mask(res.Text)
		codeOnly := redactMasked(res.Text, m)
		if !strings.Contains(codeOnly, "~") {
			return res, nil
		}

		d, groups, ok := lt.reg.Match(codeOnly)
		if !ok {
			if tok := tildeToken.FindStringSubmatch(codeOnly); tok != nil {
				return LineResult{}, &UnknownConstructError{
					Line:    lineNo,
					Token:   "~" + tok[1],
					Suggest: closestName(tok[1], lt.reg.Names()),
				}
			}
			return res, nil
		}

		var (
			text string
			err  error
		)
		if d.Name == "welp" {
			text, err = lt.rewriteWelp(res.Text, m, d, groups)
		} else {
			text, err = rewriteMatch(res.Text, codeOnly, d, groups)
		}
		if err != nil {
			return LineResult{}, err
		}
		res.Text = text
		res.Helpers = append(res.Helpers, d.Helpers...)
		res.Constructs = append(res.Constructs, d.Name)
	}
	return LineResult{}, &SyntaxError{
		Line: lineNo,
		Col:  1,
		Hint: "line did not converge while rewriting constructs",
	}
}

// rewriteMatch splices d's rendered template over the span its pattern
// matched. Offsets come from codeOnly but index into line: redactMasked is
// length-preserving, so the two stay aligned byte for byte.
func rewriteMatch(line, codeOnly string, d registry.Descriptor, groups map[string]string) (string, error) {
	loc := d.Pattern.FindStringIndex(codeOnly)
	if loc == nil {
		return line, nil
	}
	rendered, err := renderTemplate(d.Name, d.Template, groups)
	if err != nil {
		return "", err
	}
	return line[:loc[0]] + rendered + line[loc[1]:], nil
}

// rewriteWelp needs argument-level recursion: the left operand is
// whatever balanced expression sits immediately before "~welp", found via
// a string-aware backward paren scan rather than the registry pattern
// (which only captures the fallback operand). A naive scan here once
// dropped the wrapping helper's closing paren; findMatchingOpenParen and
// its caller below exist so that bug has a regression home.
func (lt *LineTransformer) rewriteWelp(line string, m []maskKind, d registry.Descriptor, groups map[string]string) (string, error) {
	codeOnly := redactMasked(line, m)
	loc := d.Pattern.FindStringIndex(codeOnly)
	if loc == nil {
		return line, nil
	}

	exprStart, expr, err := scanWelpLeftOperand(line, m, loc[0])
	if err != nil {
		return "", fmt.Errorf("transform: welp: %w", err)
	}

	data := map[string]string{
		"expr":     expr,
		"fallback": groups["fallback"],
	}
	rendered, err := renderTemplate(d.Name, d.Template, data)
	if err != nil {
		return "", err
	}

	return line[:exprStart] + rendered + line[loc[1]:], nil
}

// redactMasked returns line with every masked (string/comment) byte
// replaced by a space, preserving length and therefore every other byte's
// offset. Registry patterns can then match only in live code.
func redactMasked(line string, m []maskKind) string {
	b := []byte(line)
	for i, k := range m {
		if k != maskCode {
			b[i] = ' '
		}
	}
	return string(b)
}

func renderTemplate(name, body string, data map[string]string) (string, error) {
	tmpl, err := template.New(name).Parse(body)
	if err != nil {
		return "", fmt.Errorf("transform: invalid template for %q: %w", name, err)
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("transform: template execution failed for %q: %w", name, err)
	}
	return sb.String(), nil
}

// findMatchingOpenParen scans line backward from closeIdx (which must hold
// ')') for the matching '(', skipping any positions masked out as string or
// comment content. Returns an error if the parens are unbalanced.
func findMatchingOpenParen(line string, m []maskKind, closeIdx int) (int, error) {
	if closeIdx < 0 || closeIdx >= len(line) || line[closeIdx] != ')' {
		return -1, fmt.Errorf("expected ')' at offset %d", closeIdx)
	}
	depth := 0
	for i := closeIdx; i >= 0; i-- {
		if !inCode(m, i) {
			continue
		}
		switch line[i] {
		case ')':
			depth++
		case '(':
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return -1, fmt.Errorf("unbalanced parentheses before offset %d", closeIdx)
}

// scanWelpLeftOperand finds the left operand of a ~welp construct whose
// match begins at matchStart in line. If the operand is parenthesized, the
// full parenthesized span (including both parens) is returned so the
// closing paren is never silently dropped. Otherwise a bare identifier-like
// token is returned.
func scanWelpLeftOperand(line string, m []maskKind, matchStart int) (int, string, error) {
	i := matchStart - 1
	for i >= 0 && line[i] == ' ' {
		i--
	}
	if i < 0 {
		return 0, "", fmt.Errorf("no left operand before ~welp")
	}

	if line[i] == ')' && inCode(m, i) {
		openIdx, err := findMatchingOpenParen(line, m, i)
		if err != nil {
			return 0, "", err
		}
		return openIdx, line[openIdx : i+1], nil
	}

	end := i + 1
	for i >= 0 && isOperandByte(line[i]) {
		i--
	}
	start := i + 1
	if start >= end {
		return 0, "", fmt.Errorf("no left operand before ~welp")
	}
	return start, line[start:end], nil
}

func isOperandByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '_' || c == '.' || c == '[' || c == ']':
		return true
	}
	return false
}
