package replay

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"
	"github.com/jihwankim/kinda/pkg/chaos"
)

// RuntimeTag is the version string recorded into a session's header and
// checked, best-effort, against the running binary's own version at replay
// time. It is intentionally permissive: runtime_tag is advisory metadata,
// not a contract, so an unparsable or mismatched tag is only ever warned
// about, never treated as fatal.
var RuntimeTag = "0.1.0"

// StartRecording installs a Recorder on engine as a CallObserver — engine's
// own Driver is never touched, since recording only needs to see each draw
// after the fact, args included. Call Stop to detach the observer and
// obtain the finished Session.
func StartRecording(engine *chaos.Engine, inputFile string) *Recording {
	rec := NewRecorder()
	engine.SetObserver(rec)
	return &Recording{
		engine:    engine,
		recorder:  rec,
		inputFile: inputFile,
	}
}

// Recording tracks an in-progress recording session so Stop can detach the
// observer and build the final Session.
type Recording struct {
	engine    *chaos.Engine
	recorder  *Recorder
	inputFile string
}

// Stop detaches the recording observer and returns the completed Session,
// stamped with sessionID, the engine's own seed/personality/level, and
// RuntimeTag.
func (r *Recording) Stop(sessionID string) *Session {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	seed := r.engine.Seed()
	header := Header{
		SessionID: sessionID,
		StartTime: now().Unix(),
		InputFile: r.inputFile,
		Initial: InitialState{
			Mood:       r.engine.Personality(),
			ChaosLevel: r.engine.ChaosLevel(),
			Seed:       &seed,
		},
		RuntimeTag: RuntimeTag,
	}
	session := r.recorder.Session(header)
	r.engine.SetObserver(nil)
	return session
}

// StartReplay installs a Replayer on engine in place of its current Driver,
// falling back to original once the session is exhausted, and returns the
// Replayer so callers can inspect ValidateHeader results and, after the
// run, Mismatches/ExhaustionCount.
func StartReplay(engine *chaos.Engine, session *Session, original chaos.Driver) (*Replayer, []string) {
	warnings := ValidateHeader(engine, session)
	rep := NewReplayer(session, original)
	engine.SetDriver(rep)
	return rep, warnings
}

// StopReplay restores engine's original driver.
func StopReplay(engine *chaos.Engine, original chaos.Driver) {
	engine.SetDriver(original)
}

// ValidateHeader compares a session's recorded configuration against
// engine's current configuration, returning a human-readable warning for
// every mismatch. None of these are fatal: replay proceeds regardless,
// logging the warnings for the caller to surface.
func ValidateHeader(engine *chaos.Engine, session *Session) []string {
	var warnings []string

	if got := engine.Personality(); got != session.Initial.Mood {
		warnings = append(warnings, fmt.Sprintf(
			"replay: personality mismatch: session recorded %q, current engine is %q",
			session.Initial.Mood, got))
	}
	if got := engine.ChaosLevel(); got != session.Initial.ChaosLevel {
		warnings = append(warnings, fmt.Sprintf(
			"replay: chaos_level mismatch: session recorded %d, current engine is %d",
			session.Initial.ChaosLevel, got))
	}
	if session.Initial.Seed != nil {
		if got := engine.Seed(); got != *session.Initial.Seed {
			warnings = append(warnings, fmt.Sprintf(
				"replay: seed mismatch: session recorded %d, current engine is %d",
				*session.Initial.Seed, got))
		}
	}

	if session.RuntimeTag != "" {
		if _, err := semver.NewVersion(session.RuntimeTag); err != nil {
			warnings = append(warnings, fmt.Sprintf(
				"replay: session runtime_tag %q is not a parsable semver version: %v",
				session.RuntimeTag, err))
		} else if cur, err := semver.NewVersion(RuntimeTag); err == nil {
			if rec, err2 := semver.NewVersion(session.RuntimeTag); err2 == nil && !rec.Equal(cur) {
				warnings = append(warnings, fmt.Sprintf(
					"replay: runtime_tag mismatch: session recorded %s, current runtime is %s",
					rec, cur))
			}
		}
	}

	return warnings
}
