package replay

import (
	"strconv"
	"sync"
	"time"

	"github.com/jihwankim/kinda/pkg/chaos"
)

// Recorder implements chaos.CallObserver: installed via Engine.SetObserver,
// it appends a CallEntry — method, arguments, and result — for every draw
// the Engine completes, without ever substituting the Engine's Driver. This
// is what lets a recorded session support replay-time argument validation:
// the Engine itself hands Recorder the exact arguments a caller
// passed to RandInt/Uniform/Choice/Gauss, something the old Driver-level
// (Uint64/Float64-only) seam could never see.
//
// Construct context rides the same channel: the emitted runtime brackets
// each helper body with Engine.PushContext/PopContext, and the Engine stamps
// every CallRecord with the outermost helper name in effect at draw time.
// A draw made outside any helper carries no context, which is allowed —
// failure to identify a context is not fatal, the entry just stores null.
type Recorder struct {
	mu        sync.Mutex
	seq       int
	calls     []CallEntry
	usage     map[string]int
	startedAt time.Time
}

// NewRecorder returns a Recorder ready to be installed on an Engine via
// SetObserver.
func NewRecorder() *Recorder {
	return &Recorder{
		usage:     map[string]int{},
		startedAt: now(),
	}
}

// Observe implements chaos.CallObserver.
func (r *Recorder) Observe(rec chaos.CallRecord) {
	args := make([]string, len(rec.Args))
	for i, a := range rec.Args {
		args[i] = formatScalar(a)
	}
	var ctx *string
	if rec.Context != "" {
		c := rec.Context
		ctx = &c
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	r.calls = append(r.calls, CallEntry{
		Seq:     r.seq,
		Method:  rec.Method,
		Args:    args,
		Result:  formatScalar(rec.Result),
		Context: ctx,
	})
	if ctx != nil {
		r.usage[*ctx]++
	}
}

// formatScalar renders a float64 the way CallEntry's on-disk fields expect:
// exact decimal for integer-valued results (randint/choice always produce
// one, and it keeps small counts readable), general format otherwise.
func formatScalar(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Session finalizes the recording into a Session ready for Save. meta
// supplies the header fields the Recorder itself has no way to know
// (session id, input file, the engine's configured mood/level/seed).
func (r *Recorder) Session(meta Header) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	return &Session{
		Header:   meta,
		RNGCalls: append([]CallEntry(nil), r.calls...),
		Stats: Stats{
			TotalCalls:     r.seq,
			ConstructUsage: copyUsage(r.usage),
		},
		DurationSeconds: now().Sub(r.startedAt).Seconds(),
	}
}

func copyUsage(m map[string]int) map[string]int {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
