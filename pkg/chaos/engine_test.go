package chaos_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jihwankim/kinda/pkg/chaos"
)

func TestInit_UnknownPersonality(t *testing.T) {
	_, err := chaos.Init(1, "mercurial", 5)
	require.Error(t, err)
	var upErr *chaos.UnknownPersonalityError
	assert.ErrorAs(t, err, &upErr)
}

func TestInit_ChaosLevelBounds(t *testing.T) {
	_, err := chaos.Init(1, "playful", 0)
	assert.Error(t, err)

	_, err = chaos.Init(1, "playful", 11)
	assert.Error(t, err)

	_, err = chaos.Init(1, "playful", 1)
	assert.NoError(t, err)

	_, err = chaos.Init(1, "playful", 10)
	assert.NoError(t, err)
}

func TestEngine_SameSeedSameSequence(t *testing.T) {
	e1, err := chaos.Init(42, "chaotic", 7)
	require.NoError(t, err)
	e2, err := chaos.Init(42, "chaotic", 7)
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		assert.Equal(t, e1.Random(), e2.Random())
	}
}

func TestEngine_DifferentSeedDiverges(t *testing.T) {
	e1, err := chaos.Init(1, "playful", 5)
	require.NoError(t, err)
	e2, err := chaos.Init(2, "playful", 5)
	require.NoError(t, err)

	diverged := false
	for i := 0; i < 20; i++ {
		if e1.Random() != e2.Random() {
			diverged = true
			break
		}
	}
	assert.True(t, diverged, "distinct seeds should diverge within 20 draws")
}

func TestEngine_RandomRange(t *testing.T) {
	e, err := chaos.Init(7, "playful", 5)
	require.NoError(t, err)
	for i := 0; i < 1000; i++ {
		v := e.Random()
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
}

func TestEngine_RandInt(t *testing.T) {
	e, err := chaos.Init(7, "playful", 5)
	require.NoError(t, err)

	for i := 0; i < 500; i++ {
		v, err := e.RandInt(3, 8)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, v, int64(3))
		assert.LessOrEqual(t, v, int64(8))
	}

	_, err = e.RandInt(8, 3)
	assert.Error(t, err)
}

func TestEngine_RandIntSingleton(t *testing.T) {
	e, err := chaos.Init(1, "reliable", 5)
	require.NoError(t, err)
	v, err := e.RandInt(4, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(4), v)
}

func TestEngine_Uniform(t *testing.T) {
	e, err := chaos.Init(1, "reliable", 5)
	require.NoError(t, err)

	for i := 0; i < 500; i++ {
		v, err := e.Uniform(-2.5, 2.5)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, v, -2.5)
		assert.Less(t, v, 2.5)
	}

	_, err = e.Uniform(2.5, -2.5)
	assert.Error(t, err)
}

func TestEngine_Choice(t *testing.T) {
	e, err := chaos.Init(1, "reliable", 5)
	require.NoError(t, err)

	seen := make(map[int]bool)
	for i := 0; i < 200; i++ {
		idx, err := e.Choice(4)
		require.NoError(t, err)
		require.GreaterOrEqual(t, idx, 0)
		require.Less(t, idx, 4)
		seen[idx] = true
	}
	assert.Len(t, seen, 4, "200 draws from 4 options should hit every index")

	_, err = e.Choice(0)
	assert.Error(t, err)
}

func TestEngine_Gauss(t *testing.T) {
	e, err := chaos.Init(1, "reliable", 5)
	require.NoError(t, err)

	sum := 0.0
	const n = 2000
	for i := 0; i < n; i++ {
		v, err := e.Gauss(10, 2)
		require.NoError(t, err)
		sum += v
	}
	mean := sum / n
	assert.InDelta(t, 10, mean, 0.5)

	_, err = e.Gauss(0, -1)
	assert.Error(t, err)
}

func TestEngine_ProbabilityClampedAndFallsBack(t *testing.T) {
	e, err := chaos.Init(1, "reliable", 5)
	require.NoError(t, err)

	p := e.Probability(chaos.ProbabilityKey("unregistered_key"))
	assert.InDelta(t, 0.5, p, 1e-9)

	for level := 1; level <= 10; level++ {
		e, err := chaos.Init(1, "chaotic", level)
		require.NoError(t, err)
		p := e.Probability(chaos.KeySometimes)
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
	}
}

func TestEngine_ProbabilityPullsTowardNeutralAtHighChaos(t *testing.T) {
	low, err := chaos.Init(1, "reliable", 1)
	require.NoError(t, err)
	mid, err := chaos.Init(1, "reliable", 5)
	require.NoError(t, err)
	high, err := chaos.Init(1, "reliable", 10)
	require.NoError(t, err)

	pLow := low.Probability(chaos.KeySometimes)
	pMid := mid.Probability(chaos.KeySometimes)
	pHigh := high.Probability(chaos.KeySometimes)

	// reliable's "sometimes" base (0.95) sits well above the 0.5 midpoint.
	assert.InDelta(t, 0.95, pMid, 1e-9, "level 5 is the identity point")
	assert.GreaterOrEqual(t, pLow, pMid, "low chaos compresses toward reliable's own extreme, never below the base")
	assert.Less(t, pHigh, pMid, "high chaos pulls a high base probability down toward neutral 0.5")
	assert.Greater(t, pHigh, 0.5, "pulled toward 0.5, not past it, at this personality's sensitivity")
}

func TestEngine_ProbabilityMonotoneAcrossLevelsForReliable(t *testing.T) {
	prev := 2.0 // above any valid probability, so level 1's assertion is vacuous
	for level := 1; level <= 10; level++ {
		e, err := chaos.Init(1, "reliable", level)
		require.NoError(t, err)
		p := e.Probability(chaos.KeySometimes)
		assert.LessOrEqual(t, p, prev+1e-9, "probability(sometimes) must be non-increasing in chaos_level for reliable")
		prev = p
	}
}

func TestEngine_ProbabilityDampedByInstability(t *testing.T) {
	e, err := chaos.Init(1, "chaotic", 5)
	require.NoError(t, err)

	before := e.Probability(chaos.KeySometimes)
	for i := 0; i < 10; i++ {
		e.UpdateState(true)
	}
	after := e.Probability(chaos.KeySometimes)

	assert.Less(t, after, before, "accumulated instability should lower a success-flavoured probability")
	assert.GreaterOrEqual(t, after, 0.0)
}

func TestEngine_FuzzRangeScalesWithChaosLevel(t *testing.T) {
	low, err := chaos.Init(1, "playful", 1)
	require.NoError(t, err)
	high, err := chaos.Init(1, "playful", 10)
	require.NoError(t, err)

	minLow, maxLow := low.FuzzRange(chaos.FuzzInt)
	minHigh, maxHigh := high.FuzzRange(chaos.FuzzInt)

	assert.Less(t, maxLow, maxHigh)
	assert.Greater(t, minLow, minHigh)
}

// TestEngine_IshToleranceBoundaries pins the literal tolerance floors the
// ish comparison depends on: an off-by-two comparison (98 vs 100) must hold
// for reliable even at minimum chaos, and chaotic at maximum chaos must be
// loose enough that an off-by-ten comparison (90 vs 100) holds too.
func TestEngine_IshToleranceBoundaries(t *testing.T) {
	reliable, err := chaos.Init(1, "reliable", 1)
	require.NoError(t, err)
	lo, hi := reliable.FuzzRange(chaos.FuzzIsh)
	assert.GreaterOrEqual(t, lo, 2.0, "reliable/level=1 ish tolerance must never dip below 2")
	assert.GreaterOrEqual(t, hi, lo)

	chaotic, err := chaos.Init(1, "chaotic", 10)
	require.NoError(t, err)
	lo, hi = chaotic.FuzzRange(chaos.FuzzIsh)
	assert.GreaterOrEqual(t, lo, 10.0, "chaotic/level=10 ish tolerance must cover an off-by-ten comparison")
	assert.GreaterOrEqual(t, hi, lo)
}

// TestEngine_FuzzRangeNarrowsBelowNeutralWithoutSliding checks the low-end
// scaling direction: under level 5 the band gets narrower around its own
// centre, it does not shift toward zero.
func TestEngine_FuzzRangeNarrowsBelowNeutralWithoutSliding(t *testing.T) {
	low, err := chaos.Init(1, "reliable", 1)
	require.NoError(t, err)
	mid, err := chaos.Init(1, "reliable", 5)
	require.NoError(t, err)

	loLow, hiLow := low.FuzzRange(chaos.FuzzIsh)
	loMid, hiMid := mid.FuzzRange(chaos.FuzzIsh)

	assert.Less(t, hiLow-loLow, hiMid-loMid, "level 1 band must be narrower than the level-5 identity band")
	assert.GreaterOrEqual(t, loLow, loMid, "narrowing must not drop the band's floor")
	assert.LessOrEqual(t, hiLow, hiMid, "narrowing must not raise the band's ceiling")
}

func TestEngine_UpdateStateCascadeAmplifies(t *testing.T) {
	e, err := chaos.Init(1, "chaotic", 5)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		e.UpdateState(true)
	}
	state := e.GetState()
	assert.Equal(t, uint64(10), state.Failures)
	assert.Equal(t, 10, state.ConsecutiveFail)
	assert.Greater(t, state.Instability, 0.0)
	assert.LessOrEqual(t, state.Instability, 1.0)
}

func TestEngine_UpdateStateResetsStreakOnSuccess(t *testing.T) {
	e, err := chaos.Init(1, "playful", 5)
	require.NoError(t, err)

	e.UpdateState(true)
	e.UpdateState(true)
	e.UpdateState(false)

	assert.Equal(t, 0, e.GetState().ConsecutiveFail)
}

func TestEngine_SetDriverSwapsSource(t *testing.T) {
	e, err := chaos.Init(1, "reliable", 5)
	require.NoError(t, err)

	stub := &stubDriver{fixed: 0.25}
	e.SetDriver(stub)

	assert.Equal(t, 0.25, e.Random())
	assert.Equal(t, 0.25, e.Random())
}

type stubDriver struct {
	fixed float64
}

func (s *stubDriver) Uint64() uint64   { return uint64(s.fixed * 1e9) }
func (s *stubDriver) Float64() float64 { return s.fixed }
