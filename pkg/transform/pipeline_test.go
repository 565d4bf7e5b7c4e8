package transform

import (
	"context"
	"testing"

	"github.com/jihwankim/kinda/pkg/registry"
	"github.com/stretchr/testify/require"
)

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	reg, err := registry.Build()
	require.NoError(t, err)
	return NewPipeline(reg, PipelineConfig{})
}

func TestPipeline_RunHappyPath(t *testing.T) {
	p := newTestPipeline(t)
	source := []byte("~sometimes (x > 0) {\n    do_thing()\n}\n")

	res, err := p.Run(context.Background(), source)
	require.NoError(t, err)
	require.Contains(t, res.Lines[0], "chaos_sometimes")
	require.Contains(t, res.Helpers, "chaos_sometimes")
	require.NotNil(t, res.Security)
	require.True(t, res.Security.IsSafe)
}

func TestPipeline_RejectsDangerousSource(t *testing.T) {
	p := newTestPipeline(t)
	source := []byte("os.system(\"rm -rf /\")\n")

	_, err := p.Run(context.Background(), source)
	require.Error(t, err)
	var re *RejectedError
	require.ErrorAs(t, err, &re)
	require.Equal(t, "high", string(re.Result.RiskLevel))
}

func TestPipeline_PropagatesSyntaxError(t *testing.T) {
	p := newTestPipeline(t)
	source := []byte("~sometimes (x > 0) {\n    do_thing()\n")

	_, err := p.Run(context.Background(), source)
	require.Error(t, err)
	var se *SyntaxError
	require.ErrorAs(t, err, &se)
}

func TestSplitLines_HandlesCRLFAndTrailingNewline(t *testing.T) {
	lines := splitLines([]byte("a\r\nb\nc"))
	require.Equal(t, []string{"a", "b", "c"}, lines)

	lines = splitLines([]byte("a\nb\n"))
	require.Equal(t, []string{"a", "b"}, lines)
}
