package scope

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"math"
	mathrand "math/rand"
	"time"

	"github.com/zannabianca1997/dices/internal/value"
)

// RNG is the PRNG handle carried by a Context (C5). It wraps math/rand, the
// teacher's own choice for its Random()/RandomInt() builtins (see
// internal/interp/evaluator/context.go's *rand.Rand field): no third-party
// PRNG library appears anywhere in the retrieved corpus, so the standard
// library is used here directly (a stdlib fallback, justified in
// DESIGN.md).
//
// math/rand.Rand does not expose its internal generator state, which the
// save_rng/restore_rng intrinsics need to snapshot and resume. RNG works
// around that by drawing every random number through a single primitive,
// nextInt63, and counting how many times it has been called since the last
// reseed. Because the generator is a deterministic function of its seed,
// reseeding and replaying that many primitive calls reproduces the exact
// same position in the stream, whatever higher-level draws (dice of
// differing face counts, rejection-sampling retries) produced it.
type RNG struct {
	r     *mathrand.Rand
	seed  int64
	calls uint64
}

// NewRNG creates an RNG seeded from seed.
func NewRNG(seed int64) *RNG {
	return &RNG{r: mathrand.New(mathrand.NewSource(seed)), seed: seed}
}

// NewRNGFromEntropy seeds an RNG from the operating system's entropy source,
// for seed_rng() called with no arguments.
func NewRNGFromEntropy() *RNG {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand failing is exceptional enough that a time-derived
		// fallback is acceptable here; dice rolls do not need
		// cryptographic randomness.
		return NewRNG(time.Now().UnixNano())
	}
	return NewRNG(int64(binary.LittleEndian.Uint64(buf[:])))
}

func (g *RNG) nextInt63() int64 {
	g.calls++
	return g.r.Int63()
}

// Seed reseeds the generator, discarding all prior state.
func (g *RNG) Seed(seed int64) {
	g.r = mathrand.New(mathrand.NewSource(seed))
	g.seed = seed
	g.calls = 0
}

// UniformN returns a uniform value in [0, n) via rejection sampling,
// avoiding the small modulo bias a plain `% n` would introduce.
func (g *RNG) UniformN(n int64) int64 {
	if n <= 0 {
		panic("scope: UniformN requires a positive bound")
	}
	limit := math.MaxInt64 - math.MaxInt64%n
	for {
		v := g.nextInt63()
		if v < limit {
			return v % n
		}
	}
}

// Roll returns a uniform draw in [1, faces], the unary `d` operator's
// primitive (§4.4). faces must be positive; callers are expected to have
// already checked FacesMustBePositive.
func (g *RNG) Roll(faces int64) int64 {
	return g.UniformN(faces) + 1
}

// rngStateKeySeed and rngStateKeyCalls name the two fields of the Map a
// saved RNG state is encoded as.
const (
	rngStateKeySeed  = "seed"
	rngStateKeyCalls = "calls"
)

// Save serializes the generator's current position as a Value, for the
// save_rng intrinsic.
func (g *RNG) Save() value.Value {
	return value.Map{
		rngStateKeySeed:  value.NumberFromInt64(g.seed),
		rngStateKeyCalls: value.NumberFromInt64(int64(g.calls)),
	}
}

// Restore reconstructs the generator at a previously Saved position, for
// the restore_rng intrinsic: it reseeds from the recorded seed and replays
// the recorded number of primitive draws.
func (g *RNG) Restore(v value.Value) error {
	m, ok := v.(value.Map)
	if !ok {
		return fmt.Errorf("scope: rng state must be a map, got %s", v.Kind())
	}
	seed, err := mapInt64(m, rngStateKeySeed)
	if err != nil {
		return err
	}
	calls, err := mapInt64(m, rngStateKeyCalls)
	if err != nil {
		return err
	}
	if calls < 0 {
		return fmt.Errorf("scope: rng state %q must be non-negative", rngStateKeyCalls)
	}
	g.Seed(seed)
	for i := int64(0); i < calls; i++ {
		g.nextInt63()
	}
	return nil
}

func mapInt64(m value.Map, key string) (int64, error) {
	v, ok := m[key]
	if !ok {
		return 0, fmt.Errorf("scope: rng state missing %q", key)
	}
	n, ok := v.(value.Number)
	if !ok {
		return 0, fmt.Errorf("scope: rng state field %q must be a number", key)
	}
	i, exact := n.Int64()
	if !exact {
		return 0, fmt.Errorf("scope: rng state field %q out of range", key)
	}
	return i, nil
}
