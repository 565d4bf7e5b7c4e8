package reporting_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jihwankim/kinda/pkg/reporting"
)

func newTestStorage(t *testing.T, keepLastN int) *reporting.Storage {
	t.Helper()
	logger := reporting.NewLogger(reporting.LoggerConfig{Level: reporting.LogLevelError})
	storage, err := reporting.NewStorage(t.TempDir(), keepLastN, logger)
	require.NoError(t, err)
	return storage
}

func saveAt(t *testing.T, storage *reporting.Storage, sourcePath string, when time.Time, construct string, count int) {
	t.Helper()
	report := &reporting.TransformReport{
		TransformID:    sourcePath + "-" + when.Format("150405.000000000"),
		SourcePath:     sourcePath,
		StartTime:      when,
		EndTime:        when,
		Status:         reporting.StatusCompleted,
		Success:        true,
		ConstructUsage: map[string]int{construct: count},
	}
	_, err := storage.SaveReport(report)
	require.NoError(t, err)
}

func TestStorage_CleanupIsScopedPerSourcePath(t *testing.T) {
	storage := newTestStorage(t, 2)
	base := time.Now()

	// "noisy.kinda" gets re-run five times; "quiet.kinda" runs once.
	for i := 0; i < 5; i++ {
		saveAt(t, storage, "noisy.kinda", base.Add(time.Duration(i)*time.Second), "sometimes", 1)
	}
	saveAt(t, storage, "quiet.kinda", base.Add(10*time.Second), "ish_value", 1)

	summaries, err := storage.ListReports()
	require.NoError(t, err)

	var noisyCount, quietCount int
	for _, s := range summaries {
		switch s.SourcePath {
		case "noisy.kinda":
			noisyCount++
		case "quiet.kinda":
			quietCount++
		}
	}
	assert.Equal(t, 2, noisyCount, "noisy.kinda should be trimmed to keepLastN regardless of quiet.kinda")
	assert.Equal(t, 1, quietCount, "quiet.kinda's single report must survive noisy.kinda's churn")
}

func TestStorage_AggregateReportsSumsConstructUsageAcrossFiles(t *testing.T) {
	storage := newTestStorage(t, 10)
	now := time.Now()

	saveAt(t, storage, "a.kinda", now, "sometimes", 3)
	saveAt(t, storage, "b.kinda", now.Add(time.Second), "sometimes", 2)
	saveAt(t, storage, "b.kinda", now.Add(2*time.Second), "ish_value", 1)

	batch, err := storage.AggregateReports()
	require.NoError(t, err)

	assert.Equal(t, 3, batch.TotalReports)
	assert.Equal(t, 3, batch.SuccessCount)
	assert.Equal(t, 0, batch.FailureCount)
	assert.Equal(t, 5, batch.ConstructUsage["sometimes"])
	assert.Equal(t, 1, batch.ConstructUsage["ish_value"])
}

func TestStorage_FindReportByTransformID(t *testing.T) {
	storage := newTestStorage(t, 10)
	saveAt(t, storage, "findme.kinda", time.Now(), "drift", 1)

	summaries, err := storage.ListReports()
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	found, err := storage.FindReportByTransformID(summaries[0].TransformID)
	require.NoError(t, err)
	assert.Equal(t, "findme.kinda", found.SourcePath)

	_, err = storage.FindReportByTransformID("does-not-exist")
	assert.Error(t, err)
}
