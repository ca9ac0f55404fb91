package sequencer

import (
	"time"

	"go-drummer/debug"
)

// AutoFill settings: a fill every N bars, 0 = off
var AutoFillCycle = []int{0, 4, 8}

// Metronome click velocities
const (
	clickAccent = 1.0
	clickNormal = 0.5
)

// TickContext is the snapshot the scheduler reads at the top of every tick.
// Hosts build a fresh one per tick (see Store.Snapshot).
type TickContext struct {
	Pattern   PatternID
	Tracks    []Track
	Roles     Roles
	Tempo     int
	Jank      int
	AutoFill  int
	SongMode  bool
	Metronome bool
}

// StepInfo is reported to the UI after each tick
type StepInfo struct {
	Step    int
	Bar     int
	Pattern PatternID
	Fill    bool
	At      time.Duration
}

// ChainAdvancer is told when a bar has finished in song mode
type ChainAdvancer interface {
	AdvanceChain()
}

// Scheduler is the per-tick state machine. It owns the step cursor, the
// bar counter and the fill memory; nothing else writes them. Tick must be
// called from a single goroutine.
type Scheduler struct {
	step       int
	bar        int
	wasFillBar bool

	player    NotePlayer
	metronome Metronome
	chain     ChainAdvancer
	human     *Humanizer
	fill      FillGenerator

	deferred taskQueue

	// OnStep runs after each tick's triggers (UI notification)
	OnStep func(StepInfo)
}

// NewScheduler creates a scheduler in the stopped state. metronome and
// chain may be nil.
func NewScheduler(player NotePlayer, metronome Metronome, chain ChainAdvancer, human *Humanizer) *Scheduler {
	if human == nil {
		human = NewHumanizer(nil)
	}
	s := &Scheduler{
		player:    player,
		metronome: metronome,
		chain:     chain,
		human:     human,
	}
	s.Reset()
	return s
}

// Reset puts the transient state back to (step 0, bar 1, no fill)
func (s *Scheduler) Reset() {
	s.step = 0
	s.bar = 1
	s.wasFillBar = false
	s.deferred = taskQueue{}
}

// Step returns the cursor for the next tick
func (s *Scheduler) Step() int { return s.step }

// Bar returns the current bar number (1-based)
func (s *Scheduler) Bar() int { return s.bar }

// WasFillBar reports whether the previous bar ended with a fill
func (s *Scheduler) WasFillBar() bool { return s.wasFillBar }

// IsFillBar reports whether bar is a fill bar for the given autoFill
func IsFillBar(bar, autoFill int) bool {
	return autoFill > 0 && bar%autoFill == 0
}

// Tick plays one sixteenth at time at. It never panics out: a failure is
// logged and the cursor still advances so later ticks stay in sync.
func (s *Scheduler) Tick(ctx TickContext, at time.Duration) {
	step := s.step
	defer func() {
		if r := recover(); r != nil {
			debug.Log("tick", "step %d bar %d: recovered: %v", step, s.bar, r)
		}
		s.step = (step + 1) % NumSteps
		s.flush()
	}()
	s.play(ctx, step, at)
}

func (s *Scheduler) play(ctx TickContext, step int, at time.Duration) {
	bar := s.bar
	sixteenth := SixteenthDuration(ctx.Tempo)
	fillBar := IsFillBar(bar, ctx.AutoFill)
	fillStep := fillBar && step >= fillFirstStep

	if s.OnStep != nil {
		info := StepInfo{Step: step, Bar: bar, Pattern: ctx.Pattern, Fill: fillBar, At: at}
		s.deferred.Defer(func() { s.OnStep(info) })
	}

	if ctx.Metronome && s.metronome != nil && step%4 == 0 {
		if step == 0 {
			s.metronome.Click(true, clickAccent, at)
		} else {
			s.metronome.Click(false, clickNormal, at)
		}
	}

	if step == 0 && s.wasFillBar {
		if ctx.Roles.Crash >= 0 && ctx.Roles.Crash < len(ctx.Tracks) {
			s.emit(ctx, Note{TrackID: ctx.Tracks[ctx.Roles.Crash].ID, Velocity: crashVelocity, At: at})
		}
		s.wasFillBar = false
	}

	if fillStep {
		for _, n := range s.fill.Generate(step, at, sixteenth, ctx.Tracks, ctx.Roles) {
			s.emit(ctx, n)
		}
	} else {
		for i := range ctx.Tracks {
			s.playStep(ctx, &ctx.Tracks[i], step, at, sixteenth)
		}
	}

	if step == NumSteps-1 {
		if fillBar {
			s.wasFillBar = true
		}
		if ctx.SongMode && s.chain != nil {
			s.deferred.Defer(s.chain.AdvanceChain)
		}
		s.deferred.Defer(func() { s.bar++ })
	}
}

// playStep emits a track's programmed hits. The triplet flag does not
// change the spacing.
func (s *Scheduler) playStep(ctx TickContext, t *Track, step int, at, sixteenth time.Duration) {
	sd := t.Steps[step]
	if !sd.Active {
		return
	}
	vel := sd.Level()
	r := sd.Hits()
	if r == 1 {
		s.emit(ctx, Note{TrackID: t.ID, Velocity: vel, At: at})
		return
	}
	sub := sixteenth / time.Duration(r)
	for i := 0; i < r; i++ {
		s.emit(ctx, Note{TrackID: t.ID, Velocity: vel, At: at + time.Duration(i)*sub})
	}
}

func (s *Scheduler) emit(ctx TickContext, n Note) {
	n = s.human.Apply(n, ctx.Jank)
	s.player.Trigger(n.TrackID, n.Velocity, n.At)
}

func (s *Scheduler) flush() {
	defer func() {
		if r := recover(); r != nil {
			debug.Log("tick", "deferred task: recovered: %v", r)
			s.deferred = taskQueue{}
		}
	}()
	s.deferred.Flush()
}
