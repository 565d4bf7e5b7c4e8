package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertAllKind(t *testing.T, m []maskKind, from, to int, kind maskKind) {
	t.Helper()
	for i := from; i < to; i++ {
		require.Equalf(t, kind, m[i], "position %d", i)
	}
}

func TestMask_PlainCodeHasNoMaskedBytes(t *testing.T) {
	m := mask("x = a + b")
	assertAllKind(t, m, 0, len(m), maskCode)
}

func TestMask_DoubleQuoteStringIsMasked(t *testing.T) {
	line := `x = "a ~sometimes b"`
	m := mask(line)
	assertAllKind(t, m, 0, 4, maskCode) // `x = `
	assertAllKind(t, m, 4, len(line), maskString)
}

func TestMask_SingleQuoteStringIsMasked(t *testing.T) {
	line := `x = 'a ~sometimes b'`
	m := mask(line)
	assertAllKind(t, m, 0, 4, maskCode)
	assertAllKind(t, m, 4, len(line), maskString)
}

func TestMask_TripleQuoteStringIsMasked(t *testing.T) {
	line := `x = """a ~sometimes b"""`
	m := mask(line)
	assertAllKind(t, m, 0, 4, maskCode)
	assertAllKind(t, m, 4, len(line), maskString)
}

func TestMask_HashStartsACommentToEndOfLine(t *testing.T) {
	line := `x = 1  # ~sometimes is not a construct here`
	m := mask(line)
	assertAllKind(t, m, 0, 7, maskCode) // `x = 1  `
	assertAllKind(t, m, 7, len(line), maskComment)
}

func TestMask_EscapedQuoteDoesNotCloseString(t *testing.T) {
	line := `x = "a \" still inside ~welp b"`
	m := mask(line)
	// Every byte from the opening quote to end of line is string content;
	// the escaped quote at offset 8 must not have ended the string early.
	assertAllKind(t, m, 4, len(line), maskString)
}

func TestMask_HashInsideStringIsNotAComment(t *testing.T) {
	line := `x = "value # not a comment ~drift"`
	m := mask(line)
	assertAllKind(t, m, 4, len(line), maskString)
}

func TestMask_StringClosesAndCodeResumes(t *testing.T) {
	line := `a = "str" ~welp 0`
	m := mask(line)
	assertAllKind(t, m, 0, 4, maskCode)  // `a = `
	assertAllKind(t, m, 4, 9, maskString) // `"str"`
	assertAllKind(t, m, 9, len(line), maskCode)
}

func TestMask_PreservesLineLength(t *testing.T) {
	for _, line := range []string{
		``,
		`plain`,
		`"string"`,
		`# comment`,
		`'''triple''' code`,
	} {
		assert.Equal(t, len(line), len(mask(line)), "line %q", line)
	}
}

func TestInCode_BoundsAndKind(t *testing.T) {
	m := mask(`x = "y"`)
	assert.True(t, inCode(m, 0))
	assert.False(t, inCode(m, -1))
	assert.False(t, inCode(m, len(m)))
	assert.False(t, inCode(m, 5)) // inside the string
}

func TestRedactMasked_BlanksNonCodeBytesPreservingLength(t *testing.T) {
	line := `a = "b" ~welp 0`
	m := mask(line)
	out := redactMasked(line, m)
	require.Equal(t, len(line), len(out))
	assert.Equal(t, `a =     ~welp 0`, out)
}
