package sequencer

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHumanizerJankZero(t *testing.T) {
	rng := &countingRand{}
	h := NewHumanizer(rng)
	n := Note{TrackID: "a", Velocity: 0.5, At: time.Second}
	assert.Equal(t, n, h.Apply(n, 0))
	assert.Equal(t, n, h.Apply(n, -3))
	assert.Zero(t, rng.n)
}

func TestHumanizerDrawOrder(t *testing.T) {
	h := NewHumanizer(NewSeededRandom(7))
	ref := rand.New(rand.NewSource(7))

	for _, jank := range []int{1, 5, 9} {
		n := Note{TrackID: "a", Velocity: 0.5, At: time.Second}
		got := h.Apply(n, jank)

		amount := float64(jank) / 9
		maxOffset := float64(50*time.Millisecond) * amount
		offset := ref.Float64()*maxOffset*2 - maxOffset
		variance := 0.5 * amount
		mult := 1 + (ref.Float64()*variance*2 - variance)

		assert.Equal(t, time.Second+time.Duration(offset), got.At)
		assert.InDelta(t, 0.5*mult, got.Velocity, 1e-12)
	}
}

func TestHumanizerClampsVelocity(t *testing.T) {
	hi := NewHumanizer(fixedRand(0.999999))
	assert.Equal(t, 1.0, hi.Apply(Note{Velocity: 1}, 9).Velocity)

	lo := NewHumanizer(fixedRand(0))
	assert.Equal(t, 0.01, lo.Apply(Note{Velocity: 0.01}, 9).Velocity)
}

func TestClampJank(t *testing.T) {
	assert.Equal(t, 0, ClampJank(-1))
	assert.Equal(t, 9, ClampJank(12))
	assert.Equal(t, 4, ClampJank(4))
}

type fixedRand float64

func (f fixedRand) Float64() float64 { return float64(f) }
