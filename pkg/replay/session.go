// Package replay implements the Record/Replay Engine (C7): a chaos.
// CallObserver (Recorder) that captures every Engine-level draw — method,
// arguments, and result — to an ordered, YAML-serialised session, and a
// chaos.Driver/chaos.ReplayDriver (Replayer) that plays one back, validating
// each call's method and arguments against what was recorded
// and falling back to live randomness on mismatch or exhaustion.
//
// Recording never substitutes the Engine's Driver — chaos.Engine.
// SetObserver attaches the Recorder alongside the live driver, so the
// randomness the recorded run actually used is untouched. Replaying does
// substitute the Driver, because a replaying program needs its draws to
// return recorded values rather than fresh ones; Replayer implements
// chaos.ReplayDriver for that validated fast path and chaos.Driver for the
// live-fallback path a mismatch or exhaustion falls through to.
package replay

import (
	"fmt"
	"os"
	"time"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"
)

// InitialState records the Chaos Engine's configuration at the start of the
// recorded run, so replay can warn on a mismatched re-run.
type InitialState struct {
	Mood       string `yaml:"mood"`
	ChaosLevel int    `yaml:"chaos_level"`
	Seed       *int64 `yaml:"seed"`
}

// Header describes the recorded run: who it was, when, and against what
// input and engine configuration.
type Header struct {
	SessionID  string       `yaml:"session_id"`
	StartTime  int64        `yaml:"start_time"`
	InputFile  string       `yaml:"input_file"`
	Initial    InitialState `yaml:"initial"`
	RuntimeTag string       `yaml:"runtime_tag"`
}

// CallEntry is one captured Engine-level draw (random/randint/uniform/
// choice/gauss). Args and Result hold the Engine's float64 values as
// decimal strings, rendered by formatScalar in recorder.go.
type CallEntry struct {
	Seq     int      `yaml:"seq"`
	Method  string   `yaml:"method"`
	Args    []string `yaml:"args,omitempty"`
	Result  string   `yaml:"result"`
	Context *string  `yaml:"context"`
}

// Stats summarizes a session for quick inspection without walking rng_calls.
type Stats struct {
	TotalCalls     int            `yaml:"total_calls"`
	ConstructUsage map[string]int `yaml:"construct_usage,omitempty"`
}

// Session is the complete record of one execution's randomness, sufficient
// to replay it deterministically. Header is inlined so the on-disk
// document is flat (session_id, start_time, ... at the top level) rather
// than nested under a "header" key.
type Session struct {
	Header          `yaml:",inline"`
	RNGCalls        []CallEntry `yaml:"rng_calls"`
	Stats           Stats       `yaml:"stats"`
	DurationSeconds float64     `yaml:"duration_seconds"`
}

// Session IDs are passed to Recording.Stop, which generates one with
// github.com/google/uuid when given an empty ID.

// Save writes session to path as YAML, holding an exclusive file lock for
// the duration of the write so a concurrent recorder and reader never
// observe a half-written session.
func Save(path string, session *Session) error {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("replay: lock session file: %w", err)
	}
	defer lock.Unlock()

	data, err := yaml.Marshal(session)
	if err != nil {
		return fmt.Errorf("replay: marshal session: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("replay: write session: %w", err)
	}
	return nil
}

// Load reads and parses a session file. Unknown fields are ignored by
// yaml.v3's default decode behavior, satisfying the forward-compatibility
// requirement.
func Load(path string) (*Session, error) {
	lock := flock.New(path + ".lock")
	if err := lock.RLock(); err != nil {
		return nil, fmt.Errorf("replay: lock session file: %w", err)
	}
	defer lock.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("replay: read session: %w", err)
	}
	var session Session
	if err := yaml.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("replay: parse session: %w", err)
	}
	return &session, nil
}

// now is a seam for future test injection; kept as a direct call for now
// since the package does not otherwise need to mock time.
func now() time.Time { return time.Now() }
