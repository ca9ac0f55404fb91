package sequencer_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-drummer/clock"
	"go-drummer/sequencer"
)

const step = 125 * time.Millisecond

func newTransport(t *testing.T) (*sequencer.Manager, *sequencer.Store, *clock.Manual, *sequencer.NoteLog) {
	t.Helper()
	store := sequencer.NewStore(sequencer.NewSeededRandom(3))
	clk := clock.NewManual()
	log := &sequencer.NoteLog{}
	store.SetRegistry(log)
	return sequencer.NewManager(store, clk, log, log, nil), store, clk, log
}

func TestManagerPlaysOnGrid(t *testing.T) {
	m, _, clk, log := newTransport(t)

	m.Play()
	require.True(t, m.Playing())
	clk.AdvanceBars(1)

	kicks := log.Track("track-1")
	require.Len(t, kicks, 4)
	for i, n := range kicks {
		assert.Equal(t, time.Duration(i*4)*step, n.At)
	}
	assert.Len(t, log.Track("track-2"), 2)
	assert.Len(t, log.Track("track-3"), 8)

	pos := m.Position()
	assert.Equal(t, sequencer.NumSteps-1, pos.Step)
	assert.Equal(t, 1, pos.Bar)
	assert.Equal(t, sequencer.PatternID(1), pos.Pattern)
}

func TestManagerSongChain(t *testing.T) {
	m, store, clk, log := newTransport(t)
	store.ToggleStep(2, "track-4", 0, 4, 1, false)
	store.AddToChain(1, 2)
	store.AddToChain(2, 3)
	store.SetSongMode(true)

	m.Play()
	clk.AdvanceBars(2)
	assert.Equal(t, sequencer.PatternID(2), store.ActivePattern())

	clk.AdvanceBars(3)
	assert.Equal(t, sequencer.PatternID(1), store.ActivePattern())

	perc := log.Track("track-4")
	require.Len(t, perc, 3)
	for i, n := range perc {
		assert.Equal(t, time.Duration((i+2)*sequencer.NumSteps)*step, n.At)
		assert.Equal(t, 1.0, n.Velocity)
	}
	// pattern 2 has no kick
	assert.Len(t, log.Track("track-1"), 2*4)
}

func TestManagerStop(t *testing.T) {
	m, _, clk, log := newTransport(t)

	m.Play()
	clk.Advance(4)
	m.Stop()
	played := len(log.Notes())
	clk.AdvanceBars(2)

	assert.False(t, m.Playing())
	assert.False(t, clk.Running())
	assert.Equal(t, played, len(log.Notes()))

	// stopping twice is harmless
	m.Stop()
}

func TestManagerRestartsFromTop(t *testing.T) {
	m, _, clk, log := newTransport(t)

	m.Play()
	clk.Advance(20)
	m.TogglePlay()
	log.Reset()

	m.TogglePlay()
	clk.Advance(1)
	pos := m.Position()
	assert.Equal(t, 0, pos.Step)
	assert.Equal(t, 1, pos.Bar)
	require.NotEmpty(t, log.Notes())
	assert.Equal(t, time.Duration(0), log.Notes()[0].At)
}

func TestManagerTempo(t *testing.T) {
	store := sequencer.NewStore(sequencer.NewSeededRandom(3))
	store.SetTempo(90)
	clk := clock.NewManual()
	m := sequencer.NewManager(store, clk, &sequencer.NoteLog{}, nil, nil)
	assert.Equal(t, 90, clk.Tempo())

	assert.Equal(t, sequencer.MaxTempo, m.SetTempo(500))
	assert.Equal(t, sequencer.MaxTempo, clk.Tempo())
	assert.Equal(t, sequencer.MaxTempo, store.Settings().Tempo)
}

func TestManagerSwing(t *testing.T) {
	m, store, clk, log := newTransport(t)
	store.ToggleStep(1, "track-4", 0, 3, 1, false)
	store.ToggleStep(1, "track-4", 1, 3, 1, false)

	assert.Equal(t, 0.6, m.SetSwing(0.6))
	m.Play()
	clk.Advance(2)

	perc := log.Track("track-4")
	require.Len(t, perc, 2)
	assert.Equal(t, time.Duration(0), perc[0].At)
	assert.Equal(t, step+25*time.Millisecond, perc[1].At)
}

type flushingLog struct {
	*sequencer.NoteLog
	flushes int
}

func (f *flushingLog) Flush() { f.flushes++ }

func TestManagerStopFlushesPlayer(t *testing.T) {
	store := sequencer.NewStore(sequencer.NewSeededRandom(3))
	clk := clock.NewManual()
	player := &flushingLog{NoteLog: &sequencer.NoteLog{}}
	m := sequencer.NewManager(store, clk, player, nil, nil)

	m.Stop()
	assert.Zero(t, player.flushes, "not playing")

	m.Play()
	clk.AdvanceBars(1)
	m.Stop()
	assert.Equal(t, 1, player.flushes)
	assert.NotEmpty(t, player.Track("track-1"))
}
