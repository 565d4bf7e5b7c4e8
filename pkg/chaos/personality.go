package chaos

// ProbabilityKey names a construct-specific probability lookup, e.g.
// "sometimes" or "kinda_bool_true". A key absent from a personality's map
// resolves via Probability's documented 0.5 fallback — it never panics.
type ProbabilityKey string

// Well-known probability keys used by the construct registry. Personalities
// may define additional keys; these are simply the ones every built-in
// construct depends on.
const (
	KeySometimes        ProbabilityKey = "sometimes"
	KeyMaybe            ProbabilityKey = "maybe"
	KeyProbably         ProbabilityKey = "probably"
	KeyRarely           ProbabilityKey = "rarely"
	KeySometimesWhile   ProbabilityKey = "sometimes_while"
	KeyMaybeFor         ProbabilityKey = "maybe_for"
	KeySortaPrint       ProbabilityKey = "sorta_print"
	KeyKindaBoolTrue    ProbabilityKey = "kinda_bool_true"
	KeyKindaBinaryTrue  ProbabilityKey = "kinda_binary_positive"
	KeyAssertEventually ProbabilityKey = "assert_eventually"
)

// fallbackProbability is returned for any key missing from a personality's
// map. A missing key is never an error.
const fallbackProbability = 0.5

// FuzzKind selects which numeric-fuzz range a personality scales.
type FuzzKind string

const (
	FuzzInt   FuzzKind = "int"
	FuzzFloat FuzzKind = "float"
	FuzzIsh   FuzzKind = "ish"
)

// FuzzRange is an inclusive [Min, Max] variance band for one FuzzKind.
type FuzzRange struct {
	Min float64
	Max float64
}

// Personality is an immutable bundle of base probabilities and variance
// parameters. Four built-ins ship with kinda; additional ones may be loaded
// from YAML via pkg/config for the statistical-testing helpers that consume
// this package (those helpers live outside this repository — kinda only
// needs to expose the loading seam, not the helpers themselves).
type Personality struct {
	Name string

	BaseProbabilities map[ProbabilityKey]float64

	FuzzRanges map[FuzzKind]FuzzRange

	// ChaosMultiplier scales how aggressively chaos level bends probability
	// and fuzz ranges away from this personality's base values.
	ChaosMultiplier float64

	// CascadeThreshold is the number of consecutive failures that triggers
	// cascade amplification of the instability score.
	CascadeThreshold int

	// InstabilityGain (k) and InstabilityDecay (d) parametrize the
	// instability update rule: on failure, s += k*(1+cascades); on success,
	// s -= d whenever the Engine's call counter is a multiple of DecayEvery.
	InstabilityGain  float64
	InstabilityDecay float64
	DecayEvery       int

	// ConfidenceThreshold is the Wilson lower-bound confidence required for
	// eventually_until to consider its condition "true enough" to stop.
	ConfidenceThreshold float64

	// CascadeSensitivity scales how much the current instability score bends
	// success-flavoured probabilities downward (more unstable means lower
	// success probability). 0 ignores instability entirely; 1 lets a
	// fully unstable engine (instability == 1) zero out every probability.
	CascadeSensitivity float64
}

// probability returns p's base probability for key, or the documented
// fallback if key is unmapped.
func (p Personality) probability(key ProbabilityKey) float64 {
	if v, ok := p.BaseProbabilities[key]; ok {
		return v
	}
	return fallbackProbability
}

// fuzzRange returns p's variance band for kind, defaulting to a zero-width
// band (no fuzz) if the personality doesn't define one.
func (p Personality) fuzzRange(kind FuzzKind) FuzzRange {
	if r, ok := p.FuzzRanges[kind]; ok {
		return r
	}
	return FuzzRange{}
}

// Reliable rarely fails, barely fuzzes, and trusts "sometimes" almost always.
var Reliable = Personality{
	Name: "reliable",
	BaseProbabilities: map[ProbabilityKey]float64{
		KeySometimes:        0.95,
		KeyMaybe:            0.9,
		KeyProbably:         0.92,
		KeyRarely:           0.05,
		KeySometimesWhile:   0.9,
		KeyMaybeFor:         0.9,
		KeySortaPrint:       0.95,
		KeyKindaBoolTrue:    0.95,
		KeyKindaBinaryTrue:  0.9,
		KeyAssertEventually: 0.9,
	},
	FuzzRanges: map[FuzzKind]FuzzRange{
		FuzzInt:   {Min: -1, Max: 1},
		FuzzFloat: {Min: -0.05, Max: 0.05},
		// The ish band floors at 2 so an off-by-two comparison (98 ~ish 100)
		// holds at every chaos level, not just the forgiving ones.
		FuzzIsh: {Min: 2, Max: 3},
	},
	ChaosMultiplier:     0.4,
	CascadeThreshold:    5,
	InstabilityGain:     0.1,
	InstabilityDecay:    0.15,
	DecayEvery:          5,
	ConfidenceThreshold: 0.95,
	CascadeSensitivity:  0.15,
}

// Cautious leans safe but accepts somewhat more variance than Reliable.
var Cautious = Personality{
	Name: "cautious",
	BaseProbabilities: map[ProbabilityKey]float64{
		KeySometimes:        0.85,
		KeyMaybe:            0.75,
		KeyProbably:         0.8,
		KeyRarely:           0.1,
		KeySometimesWhile:   0.75,
		KeyMaybeFor:         0.75,
		KeySortaPrint:       0.85,
		KeyKindaBoolTrue:    0.85,
		KeyKindaBinaryTrue:  0.75,
		KeyAssertEventually: 0.8,
	},
	FuzzRanges: map[FuzzKind]FuzzRange{
		FuzzInt:   {Min: -2, Max: 2},
		FuzzFloat: {Min: -0.1, Max: 0.1},
		FuzzIsh:   {Min: 2, Max: 4},
	},
	ChaosMultiplier:     0.6,
	CascadeThreshold:    4,
	InstabilityGain:     0.15,
	InstabilityDecay:    0.1,
	DecayEvery:          4,
	ConfidenceThreshold: 0.9,
	CascadeSensitivity:  0.3,
}

// Playful sits in the middle — the "default" personality for demos.
var Playful = Personality{
	Name: "playful",
	BaseProbabilities: map[ProbabilityKey]float64{
		KeySometimes:        0.5,
		KeyMaybe:            0.6,
		KeyProbably:         0.7,
		KeyRarely:           0.15,
		KeySometimesWhile:   0.5,
		KeyMaybeFor:         0.5,
		KeySortaPrint:       0.8,
		KeyKindaBoolTrue:    0.8,
		KeyKindaBinaryTrue:  0.6,
		KeyAssertEventually: 0.7,
	},
	FuzzRanges: map[FuzzKind]FuzzRange{
		FuzzInt:   {Min: -3, Max: 3},
		FuzzFloat: {Min: -0.15, Max: 0.15},
		FuzzIsh:   {Min: 3, Max: 6},
	},
	ChaosMultiplier:     1.0,
	CascadeThreshold:    3,
	InstabilityGain:     0.2,
	InstabilityDecay:    0.08,
	DecayEvery:          3,
	ConfidenceThreshold: 0.85,
	CascadeSensitivity:  0.5,
}

// Chaotic wants to break things: low base success, wide fuzz.
var Chaotic = Personality{
	Name: "chaotic",
	BaseProbabilities: map[ProbabilityKey]float64{
		KeySometimes:        0.3,
		KeyMaybe:            0.4,
		KeyProbably:         0.55,
		KeyRarely:           0.25,
		KeySometimesWhile:   0.3,
		KeyMaybeFor:         0.3,
		KeySortaPrint:       0.6,
		KeyKindaBoolTrue:    0.6,
		KeyKindaBinaryTrue:  0.45,
		KeyAssertEventually: 0.55,
	},
	FuzzRanges: map[FuzzKind]FuzzRange{
		FuzzInt:   {Min: -6, Max: 6},
		FuzzFloat: {Min: -0.3, Max: 0.3},
		FuzzIsh:   {Min: 5, Max: 12},
	},
	ChaosMultiplier:     1.6,
	CascadeThreshold:    2,
	InstabilityGain:     0.3,
	InstabilityDecay:    0.05,
	DecayEvery:          2,
	ConfidenceThreshold: 0.75,
	CascadeSensitivity:  0.8,
}

// personalities indexes the four built-ins by name.
var personalities = map[string]Personality{
	Reliable.Name: Reliable,
	Cautious.Name: Cautious,
	Playful.Name:  Playful,
	Chaotic.Name:  Chaotic,
}

// Lookup returns the built-in personality registered under name.
func Lookup(name string) (Personality, bool) {
	p, ok := personalities[name]
	return p, ok
}
