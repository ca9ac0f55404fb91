package sequencer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testStep = 125 * time.Millisecond // sixteenth at 120 BPM

func testTrack(id string, cat Category, grid string) Track {
	return Track{ID: id, Name: id, Category: cat, Gain: 0.8, Steps: StepsFromString(grid)}
}

func testContext(tracks ...Track) TickContext {
	return TickContext{Pattern: 1, Tracks: tracks, Roles: BuildRoles(tracks), Tempo: 120}
}

func runTicks(s *Scheduler, ctx TickContext, from, n int) {
	for i := from; i < from+n; i++ {
		s.Tick(ctx, time.Duration(i)*testStep)
	}
}

func notesBetween(notes []Note, from, to time.Duration) []Note {
	var out []Note
	for _, n := range notes {
		if n.At >= from && n.At < to {
			out = append(out, n)
		}
	}
	return out
}

type countingRand struct{ n int }

func (r *countingRand) Float64() float64 {
	r.n++
	return 0.5
}

type chainFunc func()

func (f chainFunc) AdvanceChain() { f() }

type panicPlayer struct {
	log     *NoteLog
	panicAt time.Duration
}

func (p *panicPlayer) Trigger(id string, v float64, at time.Duration) {
	if at == p.panicAt {
		panic("boom")
	}
	p.log.Trigger(id, v, at)
}

func TestSixteenthDuration(t *testing.T) {
	assert.Equal(t, 125*time.Millisecond, SixteenthDuration(120))
	assert.Equal(t, SixteenthDuration(MinTempo), SixteenthDuration(10))
	assert.Equal(t, SixteenthDuration(MaxTempo), SixteenthDuration(1000))
}

func TestSchedulerStepOrder(t *testing.T) {
	log := &NoteLog{}
	s := NewScheduler(log, nil, nil, NewHumanizer(&countingRand{}))
	ctx := testContext(testTrack("kick", CategoryKick, "1...1...1...1..."))

	runTicks(s, ctx, 0, NumSteps)

	notes := log.Notes()
	require.Len(t, notes, 4)
	for i, n := range notes {
		assert.Equal(t, "kick", n.TrackID)
		assert.Equal(t, time.Duration(i*4)*testStep, n.At)
		assert.Equal(t, 0.75, n.Velocity)
	}
	assert.Equal(t, 0, s.Step())
	assert.Equal(t, 2, s.Bar())
}

func TestSchedulerRatchet(t *testing.T) {
	log := &NoteLog{}
	s := NewScheduler(log, nil, nil, nil)
	tr := testTrack("snare", CategorySnare, "1...............")
	tr.Steps[0].Ratchet = 4
	tr.Steps[0].Velocity = 4

	s.Tick(testContext(tr), 0)

	notes := log.Notes()
	require.Len(t, notes, 4)
	for i, n := range notes {
		assert.Equal(t, time.Duration(i)*testStep/4, n.At)
		assert.Equal(t, 1.0, n.Velocity)
	}
}

func TestSchedulerTripletIsInert(t *testing.T) {
	log := &NoteLog{}
	s := NewScheduler(log, nil, nil, nil)
	tr := testTrack("snare", CategorySnare, "1...............")
	tr.Steps[0].Ratchet = 3
	tr.Steps[0].Triplet = true

	s.Tick(testContext(tr), 0)

	notes := log.Notes()
	require.Len(t, notes, 3)
	assert.Equal(t, testStep/3, notes[1].At)
}

func TestSchedulerFillBar(t *testing.T) {
	log := &NoteLog{}
	s := NewScheduler(log, nil, nil, nil)
	ctx := testContext(
		testTrack("kick", CategoryKick, "1...1...1...1..."),
		testTrack("snare", CategorySnare, "....1.......1..."),
		testTrack("crash", CategoryCymbal, "................"),
	)
	ctx.AutoFill = 4

	runTicks(s, ctx, 0, 5*NumSteps)

	bar := func(n int) (time.Duration, time.Duration) {
		return time.Duration((n-1)*NumSteps) * testStep, time.Duration(n*NumSteps) * testStep
	}

	// bars 1-3 play as programmed
	from, to := bar(3)
	assert.Len(t, notesBetween(log.Notes(), from, to), 6)

	from, to = bar(4)
	fill := notesBetween(log.Notes(), from, to)
	var kicks, snares []Note
	for _, n := range fill {
		switch n.TrackID {
		case "kick":
			kicks = append(kicks, n)
		case "snare":
			snares = append(snares, n)
		}
	}
	require.Len(t, kicks, 4)
	assert.Equal(t, 0.75, kicks[1].Velocity)
	assert.Equal(t, from+12*testStep, kicks[2].At)
	assert.Equal(t, 0.8, kicks[2].Velocity)
	assert.Equal(t, from+14*testStep, kicks[3].At)
	assert.Len(t, snares, 13)

	crashes := log.Track("crash")
	require.Len(t, crashes, 1)
	from, _ = bar(5)
	assert.Equal(t, from, crashes[0].At)
	assert.Equal(t, 1.0, crashes[0].Velocity)
	assert.False(t, s.WasFillBar())
}

func TestSchedulerNoCrashWithoutFill(t *testing.T) {
	log := &NoteLog{}
	s := NewScheduler(log, nil, nil, nil)
	ctx := testContext(
		testTrack("kick", CategoryKick, "1..............."),
		testTrack("crash", CategoryCymbal, "................"),
	)

	runTicks(s, ctx, 0, 3*NumSteps)

	assert.Empty(t, log.Track("crash"))
	assert.Len(t, log.Track("kick"), 3)
}

func TestSchedulerFillWithoutCrashTrack(t *testing.T) {
	log := &NoteLog{}
	s := NewScheduler(log, nil, nil, nil)
	ctx := testContext(testTrack("kick", CategoryKick, "1..............."))
	ctx.AutoFill = 4

	assert.NotPanics(t, func() { runTicks(s, ctx, 0, 5*NumSteps) })
	assert.False(t, s.WasFillBar())
}

func TestSchedulerJankZeroIsExact(t *testing.T) {
	rng := &countingRand{}
	log := &NoteLog{}
	s := NewScheduler(log, nil, nil, NewHumanizer(rng))
	ctx := testContext(testTrack("hat", CategoryHihat, "1111111111111111"))

	runTicks(s, ctx, 0, 2*NumSteps)

	assert.Zero(t, rng.n)
	for i, n := range log.Notes() {
		assert.Equal(t, time.Duration(i)*testStep, n.At)
		assert.Equal(t, 0.75, n.Velocity)
	}
}

func TestSchedulerJankBounds(t *testing.T) {
	log := &NoteLog{}
	s := NewScheduler(log, nil, nil, NewHumanizer(NewSeededRandom(42)))
	tr := testTrack("hat", CategoryHihat, "1111111111111111")
	for i := range tr.Steps {
		tr.Steps[i].Velocity = i%4 + 1
	}
	ctx := testContext(tr)
	ctx.Jank = MaxJank

	runTicks(s, ctx, 0, 10000)

	notes := log.Notes()
	require.Len(t, notes, 10000)
	for i, n := range notes {
		grid := time.Duration(i) * testStep
		assert.LessOrEqual(t, n.At-grid, maxJankOffset)
		assert.GreaterOrEqual(t, n.At-grid, -maxJankOffset)
		assert.GreaterOrEqual(t, n.Velocity, 0.01)
		assert.LessOrEqual(t, n.Velocity, 1.0)
	}
}

func TestSchedulerMetronome(t *testing.T) {
	log := &NoteLog{}
	s := NewScheduler(log, log, nil, nil)
	ctx := testContext()
	ctx.Metronome = true
	ctx.Jank = MaxJank

	runTicks(s, ctx, 0, NumSteps)

	clicks := log.Clicks()
	require.Len(t, clicks, 4)
	assert.Equal(t, Click{Accent: true, Velocity: 1.0, At: 0}, clicks[0])
	for i, c := range clicks[1:] {
		assert.False(t, c.Accent)
		assert.Equal(t, 0.5, c.Velocity)
		assert.Equal(t, time.Duration(4*(i+1))*testStep, c.At)
	}
}

func TestSchedulerDeferredOrder(t *testing.T) {
	log := &NoteLog{}
	var s *Scheduler
	var chainBars []int
	s = NewScheduler(log, nil, chainFunc(func() {
		chainBars = append(chainBars, s.Bar())
	}), nil)

	var seenNotes []int
	s.OnStep = func(info StepInfo) {
		seenNotes = append(seenNotes, len(log.Notes()))
	}

	ctx := testContext(testTrack("kick", CategoryKick, "1..............."))
	ctx.SongMode = true
	runTicks(s, ctx, 0, 2*NumSteps)

	// chain advances before the bar counter moves on
	assert.Equal(t, []int{1, 2}, chainBars)
	assert.Equal(t, 3, s.Bar())
	require.Len(t, seenNotes, 2*NumSteps)
	assert.Equal(t, 1, seenNotes[0])
	assert.Equal(t, 2, seenNotes[NumSteps])
}

func TestSchedulerNoChainOutsideSongMode(t *testing.T) {
	calls := 0
	s := NewScheduler(&NoteLog{}, nil, chainFunc(func() { calls++ }), nil)
	runTicks(s, testContext(), 0, 3*NumSteps)
	assert.Zero(t, calls)
}

func TestSchedulerRecoversAndAdvances(t *testing.T) {
	log := &NoteLog{}
	s := NewScheduler(&panicPlayer{log: log, panicAt: 2 * testStep}, nil, nil, nil)
	ctx := testContext(testTrack("hat", CategoryHihat, "1111111111111111"))

	assert.NotPanics(t, func() { runTicks(s, ctx, 0, 4) })
	assert.Equal(t, 4, s.Step())
	assert.Len(t, log.Notes(), 3)
}

func TestSchedulerReset(t *testing.T) {
	s := NewScheduler(&NoteLog{}, nil, nil, nil)
	ctx := testContext()
	ctx.AutoFill = 4
	runTicks(s, ctx, 0, 4*NumSteps)
	require.True(t, s.WasFillBar())

	s.Reset()
	assert.Equal(t, 0, s.Step())
	assert.Equal(t, 1, s.Bar())
	assert.False(t, s.WasFillBar())
}

func TestIsFillBar(t *testing.T) {
	assert.False(t, IsFillBar(4, 0))
	assert.True(t, IsFillBar(4, 4))
	assert.True(t, IsFillBar(8, 4))
	assert.False(t, IsFillBar(4, 8))
	assert.True(t, IsFillBar(8, 8))
}
