package sequencer

import (
	"math/rand"
	"time"
)

// Jank bounds
const (
	MinJank = 0
	MaxJank = 9
)

const (
	maxJankOffset   = 50 * time.Millisecond // at jank 9
	maxJankVariance = 0.5                   // at jank 9

	minHumanVelocity = 0.01
	maxHumanVelocity = 1.0
)

// RandomSource yields uniform values in [0, 1). *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

// DefaultRandom is the unseeded production source
var DefaultRandom RandomSource = globalRand{}

// NewSeededRandom returns a deterministic source for reproducible runs
func NewSeededRandom(seed int64) RandomSource {
	return rand.New(rand.NewSource(seed))
}

// ClampJank forces j into [MinJank, MaxJank]
func ClampJank(j int) int {
	return clampInt(j, MinJank, MaxJank)
}

// Humanizer perturbs note timing and velocity
type Humanizer struct {
	rng RandomSource
}

// NewHumanizer creates a humanizer; nil uses DefaultRandom
func NewHumanizer(rng RandomSource) *Humanizer {
	if rng == nil {
		rng = DefaultRandom
	}
	return &Humanizer{rng: rng}
}

// Apply returns n perturbed by the given jank. Jank 0 returns n untouched
// and draws nothing from the random source.
func (h *Humanizer) Apply(n Note, jank int) Note {
	jank = ClampJank(jank)
	if jank == 0 {
		return n
	}
	amount := float64(jank) / MaxJank

	maxOffset := float64(maxJankOffset) * amount
	offset := h.rng.Float64()*maxOffset*2 - maxOffset

	variance := maxJankVariance * amount
	mult := 1 + (h.rng.Float64()*variance*2 - variance)

	n.At += time.Duration(offset)
	n.Velocity = clampFloat(n.Velocity*mult, minHumanVelocity, maxHumanVelocity)
	return n
}
