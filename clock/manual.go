package clock

import (
	"sort"
	"sync"
	"time"

	"go-drummer/sequencer"
)

// Manual is a clock that only moves when told to. Ticks run synchronously
// inside Advance, which makes whole arrangements reproducible.
type Manual struct {
	mu     sync.Mutex
	tempo  int
	swing  float64
	origin time.Time

	n      int
	gridAt time.Duration

	nextHandle int
	fns        map[int]func(at time.Duration)
}

// NewManual creates a stopped manual clock at the default tempo
func NewManual() *Manual {
	return &Manual{
		tempo: sequencer.DefaultTempo,
		fns:   make(map[int]func(at time.Duration)),
	}
}

func (c *Manual) Tempo() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tempo
}

func (c *Manual) SetTempo(bpm int) {
	c.mu.Lock()
	c.tempo = sequencer.ClampTempo(bpm)
	c.mu.Unlock()
}

func (c *Manual) Swing() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.swing
}

func (c *Manual) SetSwing(ratio float64) {
	c.mu.Lock()
	c.swing = min(max(ratio, 0), 1)
	c.mu.Unlock()
}

// SetOrigin sets the wall time of transport time 0 (zero time by default)
func (c *Manual) SetOrigin(t time.Time) {
	c.mu.Lock()
	c.origin = t
	c.mu.Unlock()
}

func (c *Manual) WallTime(at time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.origin.Add(at)
}

// ScheduleRepeatingTick registers fn and restarts transport time at 0
func (c *Manual) ScheduleRepeatingTick(fn func(at time.Duration)) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextHandle++
	c.fns[c.nextHandle] = fn
	c.n = 0
	c.gridAt = 0
	return c.nextHandle
}

func (c *Manual) ClearTick(handle int) {
	c.mu.Lock()
	delete(c.fns, handle)
	c.mu.Unlock()
}

// Running reports whether any tick callback is registered
func (c *Manual) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.fns) > 0
}

// Now returns the transport time of the next tick
func (c *Manual) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gridAt
}

// Advance runs n ticks. Callbacks may stop the clock or change its tempo;
// both apply from the following tick.
func (c *Manual) Advance(ticks int) {
	for i := 0; i < ticks; i++ {
		c.mu.Lock()
		if len(c.fns) == 0 {
			c.mu.Unlock()
			return
		}
		sixteenth := sequencer.SixteenthDuration(c.tempo)
		at := c.gridAt
		if c.n%2 == 1 {
			at += SwingOffset(c.swing, sixteenth)
		}
		handles := make([]int, 0, len(c.fns))
		for h := range c.fns {
			handles = append(handles, h)
		}
		sort.Ints(handles)
		fns := make([]func(time.Duration), len(handles))
		for j, h := range handles {
			fns[j] = c.fns[h]
		}
		c.n++
		c.gridAt += sixteenth
		c.mu.Unlock()

		for _, fn := range fns {
			fn(at)
		}
	}
}

// AdvanceBars runs whole 16-step bars
func (c *Manual) AdvanceBars(bars int) {
	c.Advance(bars * sequencer.NumSteps)
}
