package reporting_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jihwankim/kinda/pkg/reporting"
)

func newBufferLogger(buf *bytes.Buffer, level reporting.LogLevel) *reporting.Logger {
	return reporting.NewLogger(reporting.LoggerConfig{
		Level:  level,
		Format: reporting.LogFormatJSON,
		Output: buf,
	})
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestLogger_StageLogsFailedPhaseAtError(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferLogger(&buf, reporting.LogLevelInfo)

	log.Stage("FAILED", "error", "boom")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "error", lines[0]["level"])
	assert.Equal(t, "FAILED", lines[0]["phase"])
	assert.Equal(t, "boom", lines[0]["error"])
}

func TestLogger_StageLogsDoneAtInfo(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferLogger(&buf, reporting.LogLevelInfo)

	log.Stage("DONE", "lines", 3)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "info", lines[0]["level"])
	assert.Equal(t, "DONE", lines[0]["phase"])
}

func TestLogger_StageUnknownPhaseLogsAtDebugAndIsFiltered(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferLogger(&buf, reporting.LogLevelInfo)

	// SCAN has no PhaseSeverity entry, so it logs at debug and the info-level
	// logger configured above must drop it entirely.
	log.Stage("SCAN")

	assert.Empty(t, buf.String())
}

func TestLogger_WithSourceTagsSubsequentCalls(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferLogger(&buf, reporting.LogLevelInfo)

	log.WithSource("game.kinda").Info("started")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "game.kinda", lines[0]["source"])
}

func TestLogger_SummaryFlattensConstructUsageAndOmitsZeroCounts(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferLogger(&buf, reporting.LogLevelInfo)

	log.Summary("game.kinda", map[string]int{"sometimes": 3, "drift": 0}, 2)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "game.kinda", lines[0]["source"])
	assert.Equal(t, float64(2), lines[0]["helpers"])
	assert.Equal(t, float64(3), lines[0]["construct.sometimes"])
	assert.NotContains(t, lines[0], "construct.drift")
}
