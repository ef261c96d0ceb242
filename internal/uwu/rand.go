package uwu

import "math/bits"

// Seed is the fixed seed every generator starts from ('uwu!' = 75 77 75 21).
const Seed uint64 = 75777521

const (
	wyIncrement  uint64 = 0xA0761D6478BD642F
	wyMultiplier uint64 = 0xE7037ED1A0B428DB
)

// Rand is a deterministic wyrand stream. It is not safe for concurrent use;
// each stage that needs randomness gets its own instance.
type Rand struct {
	state uint64
}

// NewRand returns a generator positioned at seed.
func NewRand(seed uint64) *Rand {
	return &Rand{state: seed}
}

// newStageRand returns a fresh generator at the fixed Seed.
func newStageRand() *Rand {
	return NewRand(Seed)
}

// Uint64 advances the stream and returns the next 64-bit value.
func (r *Rand) Uint64() uint64 {
	r.state += wyIncrement
	hi, lo := bits.Mul64(r.state, r.state^wyMultiplier)
	return hi ^ lo
}

// Uint32 returns the low 32 bits of the next value.
func (r *Rand) Uint32() uint32 {
	return uint32(r.Uint64())
}

// Bounded returns a uniform integer in [0, n). It panics if n is 0.
func (r *Rand) Bounded(n uint8) uint8 {
	if n == 0 {
		panic("uwu: Bounded called with n == 0")
	}
	return uint8(r.mod32(uint32(n)))
}

// mod32 is Lemire's multiply-high reduction with rejection on 32-bit draws.
func (r *Rand) mod32(n uint32) uint32 {
	x := r.Uint32()
	hi, lo := bits.Mul32(x, n)
	if lo < n {
		t := -n % n
		for lo < t {
			x = r.Uint32()
			hi, lo = bits.Mul32(x, n)
		}
	}
	return hi
}

// mod64 is the 64-bit variant of mod32, used for index draws.
func (r *Rand) mod64(n uint64) uint64 {
	x := r.Uint64()
	hi, lo := bits.Mul64(x, n)
	if lo < n {
		t := -n % n
		for lo < t {
			x = r.Uint64()
			hi, lo = bits.Mul64(x, n)
		}
	}
	return hi
}

// Choice returns a uniformly drawn element of pool, or false if pool is empty.
// An empty pool does not advance the generator.
func Choice[T any](r *Rand, pool []T) (T, bool) {
	var zero T
	if len(pool) == 0 {
		return zero, false
	}
	return pool[r.mod64(uint64(len(pool)))], true
}
