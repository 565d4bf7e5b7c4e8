package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jihwankim/kinda/pkg/config"
)

func TestDefaultConfig_Validates(t *testing.T) {
	cfg := config.DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, int64(10*1024*1024), cfg.Limits.MaxInputSize)
	assert.Equal(t, 1000, cfg.Limits.MaxNestingDepth)
	assert.Equal(t, 60000, cfg.Limits.TransformTimeoutMs)
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "cautious", cfg.Engine.Mood)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kinda.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine:\n  mood: chaotic\n  chaos_level: 9\n"), 0644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "chaotic", cfg.Engine.Mood)
	assert.Equal(t, 9, cfg.Engine.ChaosLevel)
	// Untouched sections keep their defaults.
	assert.Equal(t, 1000, cfg.Limits.MaxNestingDepth)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kinda.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine:\n  mood: chaotic\n"), 0644))

	t.Setenv("MOOD", "reliable")
	t.Setenv("CHAOS_LEVEL", "2")
	t.Setenv("MAX_NESTING_DEPTH", "77")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "reliable", cfg.Engine.Mood)
	assert.Equal(t, 2, cfg.Engine.ChaosLevel)
	assert.Equal(t, 77, cfg.Limits.MaxNestingDepth)
}

func TestValidate_RejectsBadValues(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Engine.Mood = "mercurial"
	assert.Error(t, cfg.Validate())

	cfg = config.DefaultConfig()
	cfg.Engine.ChaosLevel = 11
	assert.Error(t, cfg.Validate())

	cfg = config.DefaultConfig()
	cfg.Limits.MaxInputSize = 0
	assert.Error(t, cfg.Validate())
}

func TestSave_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kinda.yaml")
	cfg := config.DefaultConfig()
	cfg.Engine.Mood = "playful"
	require.NoError(t, cfg.Save(path))

	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "playful", loaded.Engine.Mood)
	assert.Equal(t, cfg.Limits.MaxInputSize, loaded.Limits.MaxInputSize)
}

func TestLoadPersonality_OverlaysBase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grumpy.yaml")
	body := `name: grumpy
base: cautious
probabilities:
  sometimes: 0.2
fuzz_ranges:
  ish:
    min: 4
    max: 9
confidence_threshold: 0.8
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	p, err := config.LoadPersonality(path)
	require.NoError(t, err)
	assert.Equal(t, "grumpy", p.Name)
	assert.InDelta(t, 0.2, p.BaseProbabilities["sometimes"], 1e-12)
	// Keys the file doesn't override keep the base profile's values.
	assert.InDelta(t, 0.75, p.BaseProbabilities["maybe"], 1e-12)
	assert.InDelta(t, 4.0, p.FuzzRanges["ish"].Min, 1e-12)
	assert.InDelta(t, 9.0, p.FuzzRanges["ish"].Max, 1e-12)
	assert.InDelta(t, 0.8, p.ConfidenceThreshold, 1e-12)
}

func TestLoadPersonality_Rejections(t *testing.T) {
	dir := t.TempDir()

	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0644))
		return path
	}

	_, err := config.LoadPersonality(write("noname.yaml", "base: playful\n"))
	assert.Error(t, err)

	_, err = config.LoadPersonality(write("badbase.yaml", "name: x\nbase: mercurial\n"))
	assert.Error(t, err)

	_, err = config.LoadPersonality(write("badprob.yaml", "name: x\nprobabilities:\n  sometimes: 1.5\n"))
	assert.Error(t, err)

	_, err = config.LoadPersonality(write("badrange.yaml", "name: x\nfuzz_ranges:\n  ish:\n    min: 5\n    max: 1\n"))
	assert.Error(t, err)
}
