package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// Config represents kinda's runtime configuration: the engine defaults and
// limits settable through environment variables, plus the ambient
// reporting/metrics/session settings layered on top.
type Config struct {
	Engine    EngineConfig    `yaml:"engine"`
	Limits    LimitsConfig    `yaml:"limits"`
	Logging   LoggingConfig   `yaml:"logging"`
	Reporting ReportingConfig `yaml:"reporting"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Session   SessionConfig   `yaml:"session"`
}

// EngineConfig holds the engine seed/mood/level from the config file,
// overridden by the SEED, MOOD and CHAOS_LEVEL environment variables. Load
// fills it and Validate checks it; no kinda command reads it when building
// a Chaos Engine (probe and record take their seed from --seed).
type EngineConfig struct {
	Seed       int64  `yaml:"seed"`
	Mood       string `yaml:"mood"`
	ChaosLevel int    `yaml:"chaos_level"`
}

// LimitsConfig holds the size/depth/timeout guards enforced by
// the security scanner and pipeline.
type LimitsConfig struct {
	MaxInputSize       int64         `yaml:"max_input_size"`
	MaxNestingDepth    int           `yaml:"max_nesting_depth"`
	TransformTimeoutMs int           `yaml:"transform_timeout_ms"`
	TransformTimeout   time.Duration `yaml:"-"`
}

// LoggingConfig contains structured-logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ReportingConfig contains report persistence settings.
type ReportingConfig struct {
	OutputDir string   `yaml:"output_dir"`
	KeepLastN int      `yaml:"keep_last_n"`
	Formats   []string `yaml:"formats"`
}

// MetricsConfig contains the promhttp exposition server's settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Path    string `yaml:"path"`
}

// SessionConfig contains record/replay session-file settings.
type SessionConfig struct {
	Dir        string `yaml:"dir"`
	RuntimeTag string `yaml:"runtime_tag"`
}

// DefaultConfig returns kinda's default configuration.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			Seed:       0,
			Mood:       "cautious",
			ChaosLevel: 5,
		},
		Limits: LimitsConfig{
			MaxInputSize:       10 * 1024 * 1024,
			MaxNestingDepth:    1000,
			TransformTimeoutMs: 60000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Reporting: ReportingConfig{
			OutputDir: "./reports",
			KeepLastN: 50,
			Formats:   []string{"json", "html"},
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Addr:    ":9090",
			Path:    "/metrics",
		},
		Session: SessionConfig{
			Dir:        "./sessions",
			RuntimeTag: "0.1.0",
		},
	}
}

// DefaultConfigPath returns the config path kinda looks at when none is
// given explicitly: "./kinda.yaml" in the working directory if present,
// otherwise the XDG config home location (~/.config/kinda/kinda.yaml on
// Linux), matching how per-user CLI state is conventionally located outside
// a project checkout.
func DefaultConfigPath() string {
	if _, err := os.Stat("kinda.yaml"); err == nil {
		return "kinda.yaml"
	}
	if p, err := xdg.ConfigFile(filepath.Join("kinda", "kinda.yaml")); err == nil {
		return p
	}
	return "kinda.yaml"
}

// Load loads configuration from a YAML file, falling back to DefaultConfig
// if path doesn't exist, then overlays the environment variables
// (which always take priority over the file).
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = DefaultConfigPath()
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		applyEnv(cfg)
		cfg.Limits.TransformTimeout = time.Duration(cfg.Limits.TransformTimeoutMs) * time.Millisecond
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := []byte(os.ExpandEnv(string(data)))
	if err := yaml.Unmarshal(expanded, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnv(cfg)
	cfg.Limits.TransformTimeout = time.Duration(cfg.Limits.TransformTimeoutMs) * time.Millisecond
	return cfg, nil
}

// applyEnv overlays the environment variables onto cfg, each
// taking priority over both defaults and any config file.
func applyEnv(cfg *Config) {
	if v := os.Getenv("MAX_INPUT_SIZE"); v != "" {
		if n, err := parseInt64(v); err == nil {
			cfg.Limits.MaxInputSize = n
		}
	}
	if v := os.Getenv("MAX_NESTING_DEPTH"); v != "" {
		if n, err := parseInt64(v); err == nil {
			cfg.Limits.MaxNestingDepth = int(n)
		}
	}
	if v := os.Getenv("SEED"); v != "" {
		if n, err := parseInt64(v); err == nil {
			cfg.Engine.Seed = n
		}
	}
	if v := os.Getenv("MOOD"); v != "" {
		cfg.Engine.Mood = v
	}
	if v := os.Getenv("CHAOS_LEVEL"); v != "" {
		if n, err := parseInt64(v); err == nil {
			cfg.Engine.ChaosLevel = int(n)
		}
	}
	if v := os.Getenv("TRANSFORM_TIMEOUT_MS"); v != "" {
		if n, err := parseInt64(v); err == nil {
			cfg.Limits.TransformTimeoutMs = int(n)
		}
	}
}

func parseInt64(s string) (int64, error) {
	var n int64
	_, err := fmt.Sscanf(s, "%d", &n)
	return n, err
}

// Save writes configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks every field's range and enumerated values.
func (c *Config) Validate() error {
	validMoods := map[string]bool{"reliable": true, "cautious": true, "playful": true, "chaotic": true}
	if !validMoods[c.Engine.Mood] {
		return fmt.Errorf("engine.mood must be one of reliable|cautious|playful|chaotic, got %q", c.Engine.Mood)
	}
	if c.Engine.ChaosLevel < 1 || c.Engine.ChaosLevel > 10 {
		return fmt.Errorf("engine.chaos_level must be in 1..10, got %d", c.Engine.ChaosLevel)
	}
	if c.Limits.MaxInputSize < 1 {
		return fmt.Errorf("limits.max_input_size must be positive")
	}
	if c.Limits.MaxNestingDepth < 1 {
		return fmt.Errorf("limits.max_nesting_depth must be positive")
	}
	if c.Limits.TransformTimeoutMs < 1 {
		return fmt.Errorf("limits.transform_timeout_ms must be positive")
	}
	if c.Reporting.OutputDir == "" {
		return fmt.Errorf("reporting.output_dir is required")
	}
	return nil
}
