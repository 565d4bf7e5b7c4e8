package chaos

import (
	"math"
	"sync"
)

// minChaosLevel and maxChaosLevel bound the chaos_level dial to its
// integer 1-10 range.
const (
	minChaosLevel = 1
	maxChaosLevel = 10
)

// State is the Engine's mutable, mutex-protected run state: everything that
// changes as random calls accumulate. It is snapshotted by GetState for
// reporting and diagnostics.
type State struct {
	Calls           uint64
	Failures        uint64
	ConsecutiveFail int
	Instability     float64
}

// Engine is the single source of randomness for the system. One Engine
// owns one Driver and one mutex; every exported method is safe for
// concurrent use. Replay (pkg/replay) operates by substituting the Driver
// via SetDriver and recording by attaching a CallObserver via SetObserver,
// never by reaching into Engine internals.
type Engine struct {
	mu sync.Mutex

	seed        int64
	personality Personality
	chaosLevel  int
	driver      Driver
	observer    CallObserver

	// contextStack tracks which emitted runtime helper the current draw is
	// serving. Helpers declare themselves via PushContext/PopContext; the
	// outermost entry is the construct-level helper a CallRecord is tagged
	// with. Empty when no helper is active — tagging is best-effort, never
	// required.
	contextStack []string

	state State
}

// Init constructs an Engine. A nil seed draws an unpredictable seed from the
// default driver's own entropy the way math/rand's top-level functions do;
// kinda instead requires an explicit seed for reproducibility, so seed is a
// plain int64, not a pointer — callers who want a moving seed should derive
// one themselves (e.g. from time.Now().UnixNano()) before calling Init.
func Init(seed int64, personalityName string, chaosLevel int) (*Engine, error) {
	p, ok := Lookup(personalityName)
	if !ok {
		return nil, &UnknownPersonalityError{Name: personalityName}
	}
	return InitWith(seed, p, chaosLevel)
}

// InitWith is Init for a Personality value that isn't one of the four
// built-ins — a custom profile loaded via config.LoadPersonality, or a
// hand-built one in tests.
func InitWith(seed int64, p Personality, chaosLevel int) (*Engine, error) {
	if chaosLevel < minChaosLevel || chaosLevel > maxChaosLevel {
		return nil, &InvalidArgumentError{
			Method: "Init",
			Reason: "chaos_level must be in [1, 10]",
		}
	}
	return &Engine{
		seed:        seed,
		personality: p,
		chaosLevel:  chaosLevel,
		driver:      NewPCGDriver(seed),
	}, nil
}

// SetDriver swaps the Engine's randomness source. Used by pkg/replay to
// interpose a replaying Driver without the Engine ever knowing the
// difference.
func (e *Engine) SetDriver(d Driver) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.driver = d
}

// SetObserver installs (or, passed nil, removes) a CallObserver notified
// after every draw. Used by pkg/replay to record each call at the Engine's
// own method granularity, args included, without substituting the Driver
// recording never needs to touch.
func (e *Engine) SetObserver(o CallObserver) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observer = o
}

// PushContext declares the named runtime helper as the origin of upcoming
// draws, until the matching PopContext. The emitted runtime brackets each
// helper body with this pair so recorded calls carry the construct-level
// helper that made them.
func (e *Engine) PushContext(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.contextStack = append(e.contextStack, name)
}

// PopContext ends the most recent PushContext. Popping an empty stack is a
// no-op, so an unbalanced helper can't panic the engine.
func (e *Engine) PopContext() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if n := len(e.contextStack); n > 0 {
		e.contextStack = e.contextStack[:n-1]
	}
}

// currentContext returns the construct-level (outermost) helper name in
// effect, or "" when none is active. Called with e.mu held.
func (e *Engine) currentContext() string {
	if len(e.contextStack) == 0 {
		return ""
	}
	return e.contextStack[0]
}

// notify hands rec to the installed observer, if any, without holding e.mu.
func (e *Engine) notify(method string, args []float64, result float64, ctx string) {
	e.mu.Lock()
	obs := e.observer
	e.mu.Unlock()
	if obs != nil {
		obs.Observe(CallRecord{Method: method, Args: args, Result: result, Context: ctx})
	}
}

// replayed consults e.driver's ReplayDriver capability, if it has one, for a
// pre-recorded result for (method, args). Called with e.mu held.
func (e *Engine) replayed(method string, args []float64) (float64, bool) {
	rd, ok := e.driver.(ReplayDriver)
	if !ok {
		return 0, false
	}
	return rd.ReplayCall(method, args)
}

// Seed returns the seed the Engine was initialized with.
func (e *Engine) Seed() int64 { return e.seed }

// Personality returns the name of the Engine's active personality.
func (e *Engine) Personality() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.personality.Name
}

// ChaosLevel returns the Engine's chaos-level dial, 1-10.
func (e *Engine) ChaosLevel() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.chaosLevel
}

// chaosScale maps the 1-10 chaos_level dial onto a multiplicative factor
// around 1.0, scaled further by the personality's own ChaosMultiplier. Level
// 5 is the neutral point (factor 1.0); each step away moves the factor
// roughly 15% per level, per the personality's sensitivity. FuzzRange
// applies it differently on each side of the neutral point — see there.
func (e *Engine) chaosScale() float64 {
	delta := float64(e.chaosLevel-5) * 0.15
	factor := 1.0 + delta*e.personality.ChaosMultiplier
	if factor < 0 {
		return 0
	}
	return factor
}

// probabilityDeviationScale maps the 1-10 chaos_level dial onto the factor
// Probability multiplies a key's deviation from 0.5 by. Probability
// scaling runs the opposite direction from fuzz scaling: higher levels
// widen variance and pull central probabilities toward the neutral 0.5,
// lower levels compress toward the personality's own extremes. So above
// level 5 the factor shrinks toward
// 0 (pulling every base probability toward 0.5), and below level 5 it grows
// past 1 (pushing further toward whichever extreme the personality already
// leans). Clamped to [0, 2]: 0 floors out at "every key resolves to 0.5"
// rather than flipping sign past that point, and 2 keeps the low-level push
// bounded (Probability's own final clamp to [0, 1] handles any remaining
// overshoot).
func (e *Engine) probabilityDeviationScale() float64 {
	delta := float64(e.chaosLevel-5) * 0.15
	factor := 1.0 - delta*e.personality.ChaosMultiplier
	if factor < 0 {
		return 0
	}
	if factor > 2 {
		return 2
	}
	return factor
}

// Random returns a uniform float64 in [0, 1). It is the primitive every
// other draw method is built from.
func (e *Engine) Random() float64 {
	e.mu.Lock()
	e.state.Calls++
	ctx := e.currentContext()
	if v, ok := e.replayed("random", nil); ok {
		e.mu.Unlock()
		e.notify("random", nil, v, ctx)
		return v
	}
	v := e.driver.Float64()
	e.mu.Unlock()
	e.notify("random", nil, v, ctx)
	return v
}

// RandInt returns a uniform integer in [lo, hi], inclusive on both ends.
func (e *Engine) RandInt(lo, hi int64) (int64, error) {
	if lo > hi {
		return 0, &InvalidArgumentError{Method: "RandInt", Reason: "lo must be <= hi"}
	}
	args := []float64{float64(lo), float64(hi)}
	e.mu.Lock()
	e.state.Calls++
	ctx := e.currentContext()
	if v, ok := e.replayed("randint", args); ok {
		e.mu.Unlock()
		e.notify("randint", args, v, ctx)
		return int64(v), nil
	}
	span := uint64(hi-lo) + 1
	result := lo + int64(e.driver.Uint64()%span)
	e.mu.Unlock()
	e.notify("randint", args, float64(result), ctx)
	return result, nil
}

// Uniform returns a uniform float64 in [lo, hi).
func (e *Engine) Uniform(lo, hi float64) (float64, error) {
	if math.IsNaN(lo) || math.IsNaN(hi) || lo > hi {
		return 0, &InvalidArgumentError{Method: "Uniform", Reason: "lo must be <= hi and neither may be NaN"}
	}
	args := []float64{lo, hi}
	e.mu.Lock()
	e.state.Calls++
	ctx := e.currentContext()
	if v, ok := e.replayed("uniform", args); ok {
		e.mu.Unlock()
		e.notify("uniform", args, v, ctx)
		return v, nil
	}
	result := lo + e.driver.Float64()*(hi-lo)
	e.mu.Unlock()
	e.notify("uniform", args, result, ctx)
	return result, nil
}

// Choice picks one element uniformly from options by index, returning the
// chosen index. Callers index into their own slice; Choice stays generic
// over element type by dealing only in indices.
func (e *Engine) Choice(n int) (int, error) {
	if n <= 0 {
		return 0, &InvalidArgumentError{Method: "Choice", Reason: "option list must be non-empty"}
	}
	args := []float64{float64(n)}
	e.mu.Lock()
	e.state.Calls++
	ctx := e.currentContext()
	if v, ok := e.replayed("choice", args); ok {
		e.mu.Unlock()
		e.notify("choice", args, v, ctx)
		return int(v), nil
	}
	result := int(e.driver.Uint64() % uint64(n))
	e.mu.Unlock()
	e.notify("choice", args, float64(result), ctx)
	return result, nil
}

// Gauss returns a sample from a normal distribution with the given mean and
// standard deviation, via the driver's Box-Muller transform when available.
func (e *Engine) Gauss(mean, stddev float64) (float64, error) {
	if stddev < 0 {
		return 0, &InvalidArgumentError{Method: "Gauss", Reason: "stddev must be >= 0"}
	}
	args := []float64{mean, stddev}
	e.mu.Lock()
	e.state.Calls++
	ctx := e.currentContext()
	if v, ok := e.replayed("gauss", args); ok {
		e.mu.Unlock()
		e.notify("gauss", args, v, ctx)
		return v, nil
	}
	var result float64
	if g, ok := e.driver.(interface{ NormFloat64() float64 }); ok {
		result = mean + stddev*g.NormFloat64()
	} else {
		// Fallback Box-Muller for drivers that only expose Float64 (e.g. a
		// replaying driver's live fallback reconstructing a draw one
		// Float64 at a time).
		u1, u2 := e.driver.Float64(), e.driver.Float64()
		if u1 == 0 {
			u1 = 1e-300
		}
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
		result = mean + stddev*z
	}
	e.mu.Unlock()
	e.notify("gauss", args, result, ctx)
	return result, nil
}

// Probability returns the chaos-adjusted probability for key: the
// personality's base value for key (or the 0.5 fallback), with its
// deviation from 0.5 bent by the chaos_level scale factor (widened toward
// 0.5 above level 5, compressed toward its extreme below level 5 — see
// probabilityDeviationScale), then damped by the current instability score
// (more unstable means lower success probability for success-flavoured
// keys), and clamped to [0, 1].
func (e *Engine) Probability(key ProbabilityKey) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Calls++
	base := e.personality.probability(key)
	deviation := (base - 0.5) * e.probabilityDeviationScale()
	scaled := 0.5 + deviation
	if scaled < 0 {
		scaled = 0
	} else if scaled > 1 {
		scaled = 1
	}
	scaled *= 1 - e.state.Instability*e.personality.CascadeSensitivity
	if scaled < 0 {
		return 0
	}
	if scaled > 1 {
		return 1
	}
	return scaled
}

// FuzzRange returns the chaos-adjusted [min, max] variance band for kind.
// Above the level-5 identity point both bounds scale multiplicatively, so a
// positive band (ish tolerance) climbs and a symmetric band (int/float
// fuzz) widens. Below it the band narrows around its own centre instead:
// turning chaos down makes a personality's fuzz *more predictable*, it
// never slides the whole band toward zero — a reliable personality keeps
// its full tolerance at level 1, it just stops varying.
func (e *Engine) FuzzRange(kind FuzzKind) (float64, float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	r := e.personality.fuzzRange(kind)
	scale := e.chaosScale()
	if scale >= 1 {
		return r.Min * scale, r.Max * scale
	}
	mid := (r.Min + r.Max) / 2
	half := (r.Max - r.Min) / 2 * scale
	return mid - half, mid + half
}

// ConfidenceThreshold returns the personality's Wilson-bound confidence
// requirement, used by the eventually_until construct's stopping rule.
func (e *Engine) ConfidenceThreshold() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.personality.ConfidenceThreshold
}

// UpdateState records the outcome of one probabilistic decision, updating
// the cascade-failure streak and instability score. A run of consecutive
// failures reaching the personality's CascadeThreshold amplifies the gain
// applied to each further failure, modeling the way real flaky systems
// degrade faster once they start failing. On a success, instability decays
// toward zero by InstabilityDecay whenever the Engine's call counter (one
// per draw or Probability lookup) is a multiple of DecayEvery.
func (e *Engine) UpdateState(failed bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if failed {
		e.state.Failures++
		e.state.ConsecutiveFail++
		cascade := 0
		if e.state.ConsecutiveFail >= e.personality.CascadeThreshold {
			cascade = e.state.ConsecutiveFail - e.personality.CascadeThreshold + 1
		}
		e.state.Instability += e.personality.InstabilityGain * (1 + float64(cascade))
		if e.state.Instability > 1 {
			e.state.Instability = 1
		}
		return
	}

	e.state.ConsecutiveFail = 0
	if e.personality.DecayEvery > 0 && e.state.Calls%uint64(e.personality.DecayEvery) == 0 {
		e.state.Instability -= e.personality.InstabilityDecay
		if e.state.Instability < 0 {
			e.state.Instability = 0
		}
	}
}

// GetState returns a snapshot of the Engine's accumulated run state.
func (e *Engine) GetState() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Instability returns the current instability score in [0, 1].
func (e *Engine) Instability() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Instability
}
