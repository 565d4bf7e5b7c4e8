package chaos

import "math"

// PCG64 implements a 64-bit-state, 64-bit-output PCG generator
// (PCG-XSH-RR widened to a 64-bit output word by combining two 32-bit steps).
// The algorithm is small, fixed, and will not change between Go releases —
// the same argument gofortuna makes for carrying its own AES-based generator
// rather than depending on a platform default. This is what gives kinda its
// cross-platform, cross-version reproducibility guarantee: same seed, same
// sequence, forever.
type PCG64 struct {
	state uint64
	inc   uint64
}

const (
	pcgMultiplier uint64 = 6364136223846793005
)

// NewPCG64 creates a PCG64 generator seeded with the given value.
func NewPCG64(seed int64) *PCG64 {
	p := &PCG64{}
	p.Seed(seed)
	return p
}

// Seed re-initializes the generator's state and stream selector.
func (p *PCG64) Seed(seed int64) {
	p.state = 0
	p.inc = (uint64(seed) << 1) | 1 // inc must be odd
	p.step()
	p.state += uint64(seed)
	p.step()
}

func (p *PCG64) step() uint32 {
	oldstate := p.state
	p.state = oldstate*pcgMultiplier + p.inc
	xorshifted := uint32(((oldstate >> 18) ^ oldstate) >> 27)
	rot := uint32(oldstate >> 59)
	return (xorshifted >> rot) | (xorshifted << ((-rot) & 31))
}

// Uint64 returns the next 64-bit value in the sequence, built from two
// successive 32-bit PCG-XSH-RR steps.
func (p *PCG64) Uint64() uint64 {
	hi := uint64(p.step())
	lo := uint64(p.step())
	return (hi << 32) | lo
}

// Float64 returns a uniformly distributed value in [0, 1), using the top
// 53 bits of a draw for full float64 mantissa precision.
func (p *PCG64) Float64() float64 {
	return float64(p.Uint64()>>11) / (1 << 53)
}

// NormFloat64 returns a standard-normal sample via the Box-Muller transform.
func (p *PCG64) NormFloat64() float64 {
	for {
		u1 := p.Float64()
		u2 := p.Float64()
		if u1 > 0 {
			return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
		}
	}
}
