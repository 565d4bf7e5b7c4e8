package replay

import (
	"fmt"
	"strconv"
	"sync"
)

// MismatchEvent is a non-fatal ReplayMismatch: the i-th draw made by the
// running program didn't match the i-th recorded entry's method or
// arguments, and the Replayer fell back to live randomness for that single
// call.
type MismatchEvent struct {
	Seq      int
	Expected string
	Got      string
	Reason   string
}

// floatTolerance is the comparison tolerance for float64
// arguments/results; integer-valued arguments (randint/choice) compare
// exactly.
const floatTolerance = 1e-9

// Driver is a local alias of chaos.Driver to avoid an import cycle concern
// at the type level; pkg/chaos.Driver satisfies it structurally.
type Driver interface {
	Uint64() uint64
	Float64() float64
}

// Replayer implements both chaos.Driver (as a live fallback once a session
// is exhausted or a call's arguments don't match what was recorded) and
// chaos.ReplayDriver (the validated fast path: hand back the i-th recorded
// Engine-level result directly once its method and arguments are confirmed
// to match). Installed via Engine.SetDriver, it is the only component that
// needs to see both seams: the i-th call must match the i-th recorded
// entry's method and arguments, and on mismatch the engine records a
// diagnostic and falls back to the underlying PRNG while counting the
// mismatch — both halves are enforced here.
type Replayer struct {
	mu         sync.Mutex
	underlying Driver
	calls      []CallEntry
	cursor     int

	mismatches []MismatchEvent
	exhausted  int
}

// NewReplayer loads session's recorded calls against a live fallback
// driver, used once the session is exhausted or a call's arguments diverge
// from what was recorded.
func NewReplayer(session *Session, underlying Driver) *Replayer {
	return &Replayer{
		underlying: underlying,
		calls:      session.RNGCalls,
	}
}

// ReplayCall implements chaos.ReplayDriver. It advances the session cursor
// exactly once per call regardless of outcome — a mismatched or exhausted
// entry is still "consumed" conceptually, so later calls stay aligned with
// the recording's sequence numbers rather than drifting after the first
// divergence.
func (r *Replayer) ReplayCall(method string, args []float64) (float64, bool) {
	entry, ok := r.next()
	if !ok {
		r.mu.Lock()
		r.exhausted++
		r.mu.Unlock()
		return 0, false
	}

	if entry.Method != method {
		r.reportMismatch(entry.Seq, entry.Method, method, "recorded method does not match the call being replayed")
		return 0, false
	}
	if !argsMatch(entry.Args, args) {
		r.reportMismatch(entry.Seq, formatArgs(entry.Args), formatFloatArgs(args), "recorded arguments do not match the call being replayed")
		return 0, false
	}

	result, err := strconv.ParseFloat(entry.Result, 64)
	if err != nil {
		r.reportMismatch(entry.Seq, entry.Result, "<unparsable result>", err.Error())
		return 0, false
	}
	return result, true
}

// argsMatch compares a recorded entry's string-encoded arguments against
// the arguments the live call was made with, float-tolerant to 1e-9.
func argsMatch(recorded []string, live []float64) bool {
	if len(recorded) != len(live) {
		return false
	}
	for i, s := range recorded {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return false
		}
		if diff := v - live[i]; diff > floatTolerance || diff < -floatTolerance {
			return false
		}
	}
	return true
}

func formatArgs(args []string) string {
	return fmt.Sprintf("%v", args)
}

func formatFloatArgs(args []float64) string {
	return fmt.Sprintf("%v", args)
}

// Uint64 is the live-fallback half of chaos.Driver, used when the Engine's
// own ReplayCall declines (mismatch or exhaustion) and falls through to the
// ordinary Uint64/Float64-derived computation.
func (r *Replayer) Uint64() uint64 {
	return r.underlying.Uint64()
}

// Float64 is the live-fallback half of chaos.Driver; see Uint64.
func (r *Replayer) Float64() float64 {
	return r.underlying.Float64()
}

// next returns the next recorded entry and advances the cursor, or
// ok=false if the session is exhausted.
func (r *Replayer) next() (CallEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cursor >= len(r.calls) {
		return CallEntry{}, false
	}
	entry := r.calls[r.cursor]
	r.cursor++
	return entry, true
}

func (r *Replayer) reportMismatch(seq int, expected, got, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mismatches = append(r.mismatches, MismatchEvent{
		Seq:      seq,
		Expected: expected,
		Got:      got,
		Reason:   reason,
	})
}

// Mismatches returns every ReplayMismatch event observed so far.
func (r *Replayer) Mismatches() []MismatchEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]MismatchEvent(nil), r.mismatches...)
}

// ExhaustionCount returns how many draws fell through to the live driver
// because the session ran out of recorded calls.
func (r *Replayer) ExhaustionCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.exhausted
}
