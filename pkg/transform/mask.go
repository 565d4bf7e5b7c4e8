// Package transform implements the Line Transformer (C4) and Block
// Transformer (C5): the line-oriented, string/comment-aware scan-and-rewrite
// engine that turns tilde-construct source into plain host code plus a set
// of used runtime helper names.
package transform

// maskKind tags each byte position in a line as either live code or text the
// transformer must leave untouched.
type maskKind byte

const (
	maskCode maskKind = iota
	maskString
	maskComment
)

// mask marks every byte of a line as maskCode, maskString, or maskComment.
// Constructs found in a maskString/maskComment position are passthrough —
// string and comment awareness is where quoting bugs concentrate, so it
// gets its own small file and its own tests rather than being inlined
// into line.go.
func mask(line string) []maskKind {
	m := make([]maskKind, len(line))
	var quote byte // 0 when not inside a string; else the quote byte in effect
	triple := false
	inComment := false

	i := 0
	for i < len(line) {
		c := line[i]

		if inComment {
			m[i] = maskComment
			i++
			continue
		}

		if quote != 0 {
			m[i] = maskString
			if c == '\\' && i+1 < len(line) {
				m[i+1] = maskString
				i += 2
				continue
			}
			if triple {
				if c == quote && i+2 < len(line) && line[i+1] == quote && line[i+2] == quote {
					m[i+1] = maskString
					m[i+2] = maskString
					i += 3
					quote = 0
					triple = false
					continue
				}
			} else if c == quote {
				quote = 0
			}
			i++
			continue
		}

		// Not inside a string or comment.
		if c == '#' {
			inComment = true
			m[i] = maskComment
			i++
			continue
		}
		if c == '"' || c == '\'' {
			if i+2 < len(line) && line[i+1] == c && line[i+2] == c {
				quote = c
				triple = true
				m[i] = maskString
				m[i+1] = maskString
				m[i+2] = maskString
				i += 3
				continue
			}
			quote = c
			m[i] = maskString
			i++
			continue
		}

		m[i] = maskCode
		i++
	}

	return m
}

// inCode reports whether byte offset pos in line falls in a maskCode region.
func inCode(m []maskKind, pos int) bool {
	return pos >= 0 && pos < len(m) && m[pos] == maskCode
}
