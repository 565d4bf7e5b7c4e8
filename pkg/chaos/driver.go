package chaos

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"fmt"
)

// Driver is the pluggable source of raw randomness the Engine draws through.
// The default driver wraps a PCG64 generator; replay (pkg/replay) installs a
// replaying driver in its place, while recording leaves the Driver alone and
// watches draws through a CallObserver. No component other than a Driver
// implementation may touch a concrete PRNG.
type Driver interface {
	// Uint64 returns a uniformly distributed 64-bit value.
	Uint64() uint64
	// Float64 returns a uniformly distributed value in [0, 1).
	Float64() float64
}

// DeriveSeed samples a fresh seed from OS entropy, for runs that didn't pin
// one explicitly. Callers log the derived value so the run stays
// reproducible after the fact.
func DeriveSeed() (int64, error) {
	var b [8]byte
	if _, err := cryptorand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("chaos: derive seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// pcgDriver adapts a PCG64 generator to the Driver interface.
type pcgDriver struct {
	rng *PCG64
}

// NewPCGDriver returns a Driver backed by a freshly seeded PCG64 generator.
func NewPCGDriver(seed int64) Driver {
	return &pcgDriver{rng: NewPCG64(seed)}
}

func (d *pcgDriver) Uint64() uint64   { return d.rng.Uint64() }
func (d *pcgDriver) Float64() float64 { return d.rng.Float64() }

// CallRecord describes one completed probabilistic draw at the Engine's own
// method granularity: the method name the session schema records
// ("random"/"randint"/"uniform"/"choice"/"gauss"), the positional arguments
// the caller passed (nil for the zero-argument "random"), the resulting
// scalar, and the construct context in effect when the draw was made (empty
// when no helper declared one). The Driver seam alone (Uint64/Float64)
// cannot carry any of this — neither primitive ever sees a caller's
// lo/hi/mean/stddev/option-count — so the Engine assembles CallRecord
// itself, once per draw, after the primitive call returns.
type CallRecord struct {
	Method  string
	Args    []float64
	Result  float64
	Context string
}

// CallObserver receives a CallRecord after every Engine draw completes. The
// Engine notifies its observer after releasing its own mutex (see
// Engine.notify; the underlying Driver call itself runs with the mutex
// held), so an observer that does its own bookkeeping under
// a separate lock can never deadlock against the Engine.
type CallObserver interface {
	Observe(rec CallRecord)
}

// ReplayDriver is an optional capability a Driver may implement to serve a
// pre-recorded Engine-level result directly, instead of the Engine deriving
// one from Uint64/Float64 itself. This is the seam replay-time argument
// validation needs: only a driver built with knowledge of
// the Engine's own method vocabulary can compare "was RandInt called with
// the same (lo, hi) as last time" before deciding whether to hand back the
// recorded value. ReplayCall returns ok=false to tell the Engine to fall
// through to its normal Uint64/Float64-derived computation (e.g. on
// argument mismatch or session exhaustion); the Engine then calls
// Uint64/Float64 on the same Driver value, which a replaying driver is
// expected to implement as a live fallback.
type ReplayDriver interface {
	ReplayCall(method string, args []float64) (result float64, ok bool)
}
