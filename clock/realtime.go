package clock

import (
	"runtime"
	"sync"
	"time"

	"go-drummer/debug"
	"go-drummer/sequencer"
)

// Defaults for the realtime clock
const (
	DefaultLookahead = 100 * time.Millisecond
	DefaultInterval  = 25 * time.Millisecond
)

// SwingOffset returns how far an off-beat sixteenth is pushed late. Full
// swing (1.0) moves it a third of a step, a triplet feel.
func SwingOffset(swing float64, sixteenth time.Duration) time.Duration {
	if swing <= 0 {
		return 0
	}
	if swing > 1 {
		swing = 1
	}
	return time.Duration(swing * float64(sixteenth) / 3)
}

// Realtime runs tick callbacks ahead of wall time. Every interval it
// schedules all ticks that fall inside the lookahead window, handing each
// one its precise offset from transport start.
type Realtime struct {
	mu        sync.Mutex
	tempo     int
	swing     float64
	lookahead time.Duration
	interval  time.Duration
	origin    time.Time

	nextHandle int
	loops      map[int]*loop
}

type loop struct {
	stop chan struct{}
	done chan struct{}
}

// NewRealtime creates a clock at the default tempo. lookahead <= 0 uses
// DefaultLookahead.
func NewRealtime(lookahead time.Duration) *Realtime {
	if lookahead <= 0 {
		lookahead = DefaultLookahead
	}
	return &Realtime{
		tempo:     sequencer.DefaultTempo,
		lookahead: lookahead,
		interval:  DefaultInterval,
		loops:     make(map[int]*loop),
	}
}

func (c *Realtime) Tempo() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tempo
}

// SetTempo takes effect from the next scheduled tick
func (c *Realtime) SetTempo(bpm int) {
	c.mu.Lock()
	c.tempo = sequencer.ClampTempo(bpm)
	c.mu.Unlock()
}

func (c *Realtime) Swing() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.swing
}

func (c *Realtime) SetSwing(ratio float64) {
	c.mu.Lock()
	c.swing = min(max(ratio, 0), 1)
	c.mu.Unlock()
}

// Lookahead returns how far ahead of wall time ticks are produced
func (c *Realtime) Lookahead() time.Duration {
	return c.lookahead
}

// WallTime maps a transport offset to wall time for the most recently
// started schedule
func (c *Realtime) WallTime(at time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.origin.Add(at)
}

// ScheduleRepeatingTick starts a tick loop. Transport time 0 is now.
func (c *Realtime) ScheduleRepeatingTick(fn func(at time.Duration)) int {
	l := &loop{stop: make(chan struct{}), done: make(chan struct{})}

	c.mu.Lock()
	c.nextHandle++
	handle := c.nextHandle
	c.loops[handle] = l
	c.origin = time.Now()
	origin := c.origin
	c.mu.Unlock()

	debug.Log("transport", "clock: start handle=%d", handle)
	go c.run(l, origin, fn)
	return handle
}

// ClearTick stops a tick loop and waits for a running callback to finish.
// It must not be called from inside the callback.
func (c *Realtime) ClearTick(handle int) {
	c.mu.Lock()
	l, ok := c.loops[handle]
	delete(c.loops, handle)
	c.mu.Unlock()
	if !ok {
		return
	}
	close(l.stop)
	<-l.done
	debug.Log("transport", "clock: stop handle=%d", handle)
}

func (c *Realtime) run(l *loop, origin time.Time, fn func(at time.Duration)) {
	defer close(l.done)
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	var (
		n      int
		gridAt time.Duration // unswung time of tick n
	)
	for {
		horizon := time.Since(origin) + c.lookahead
		for gridAt < horizon {
			c.mu.Lock()
			sixteenth := sequencer.SixteenthDuration(c.tempo)
			swing := c.swing
			c.mu.Unlock()

			at := gridAt
			if n%2 == 1 {
				at += SwingOffset(swing, sixteenth)
			}
			fn(at)

			n++
			gridAt += sixteenth

			select {
			case <-l.stop:
				return
			default:
			}
		}

		select {
		case <-l.stop:
			return
		case <-ticker.C:
		}
	}
}
