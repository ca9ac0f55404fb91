package midi

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"

	"go-drummer/clock"
	"go-drummer/sequencer"
)

// pastBase puts transport time 0 an hour ago, so every event is due
type pastBase struct{ origin time.Time }

func newPastBase() pastBase { return pastBase{origin: time.Now().Add(-time.Hour)} }

func (b pastBase) WallTime(at time.Duration) time.Time { return b.origin.Add(at) }

type recorder struct {
	mu   sync.Mutex
	msgs []gomidi.Message
}

func (r *recorder) send(m gomidi.Message) error {
	r.mu.Lock()
	r.msgs = append(r.msgs, m)
	r.mu.Unlock()
	return nil
}

func (r *recorder) messages() []gomidi.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]gomidi.Message(nil), r.msgs...)
}

func (r *recorder) waitFor(t *testing.T, n int) []gomidi.Message {
	t.Helper()
	require.Eventually(t, func() bool {
		return len(r.messages()) >= n
	}, 2*time.Second, 5*time.Millisecond)
	return r.messages()
}

func TestVelocityByte(t *testing.T) {
	assert.Equal(t, uint8(1), velocityByte(0))
	assert.Equal(t, uint8(1), velocityByte(-3))
	assert.Equal(t, uint8(64), velocityByte(0.5))
	assert.Equal(t, uint8(127), velocityByte(1))
	assert.Equal(t, uint8(127), velocityByte(2))
}

func TestEventQueueOrder(t *testing.T) {
	var q eventQueue
	q.push(Event{At: 30, Note: 1, seq: 1})
	q.push(Event{At: 10, Note: 2, seq: 2})
	q.push(Event{At: 20, Note: 3, seq: 3})
	q.push(Event{At: 10, Note: 4, seq: 4})

	var notes []uint8
	for q.Len() > 0 {
		notes = append(notes, q.pop().Note)
	}
	assert.Equal(t, []uint8{2, 4, 3, 1}, notes)

	_, ok := q.peek()
	assert.False(t, ok)
}

func TestOutputTrigger(t *testing.T) {
	rec := &recorder{}
	out := NewOutput(newPastBase(), 10, "gm")
	out.SetSender(rec.send)
	out.UpdateTracks([]sequencer.Track{
		{ID: "k", Name: "Kick", Category: sequencer.CategoryKick, Gain: 1},
	})

	out.Trigger("k", 1, 0)
	assert.Zero(t, out.Pending(), "dropped before Start")

	out.Start()
	out.Trigger("ghost", 1, 0)
	out.Trigger("k", 0.5, 0)

	msgs := rec.waitFor(t, 2)
	var ch, key, vel uint8
	require.True(t, msgs[0].GetNoteOn(&ch, &key, &vel))
	assert.Equal(t, uint8(9), ch)
	assert.Equal(t, uint8(36), key)
	assert.Equal(t, uint8(64), vel)
	require.True(t, msgs[1].GetNoteOff(&ch, &key, &vel))
	assert.Equal(t, uint8(36), key)

	out.Stop()
	msgs = rec.messages()
	require.Len(t, msgs, 3)
	var cc, val uint8
	require.True(t, msgs[2].GetControlChange(&ch, &cc, &val))
	assert.Equal(t, ccAllNotesOff, cc)
	assert.Zero(t, out.Pending())
}

func TestOutputClickAndMaster(t *testing.T) {
	rec := &recorder{}
	out := NewOutput(newPastBase(), 1, "gm")
	out.SetSender(rec.send)
	out.SetMasterVolume(0.5)
	out.Start()
	defer out.Stop()

	out.Click(true, 1, 0)
	msgs := rec.waitFor(t, 2)

	var ch, key, vel uint8
	require.True(t, msgs[0].GetNoteOn(&ch, &key, &vel))
	assert.Equal(t, uint8(0), ch)
	assert.Equal(t, clickAccentNote, key)
	assert.Equal(t, uint8(64), vel)
}

func TestOutputTrackGain(t *testing.T) {
	rec := &recorder{}
	out := NewOutput(newPastBase(), 10, "rd8")
	out.SetSender(rec.send)
	out.UpdateTracks([]sequencer.Track{
		{ID: "s", Name: "Snare", Category: sequencer.CategorySnare, Gain: 0.5},
	})
	out.Start()
	defer out.Stop()

	out.Trigger("s", 1, 0)
	msgs := rec.waitFor(t, 1)

	var ch, key, vel uint8
	require.True(t, msgs[0].GetNoteOn(&ch, &key, &vel))
	assert.Equal(t, uint8(40), key)
	assert.Equal(t, uint8(64), vel)
}

func TestOutputNoSender(t *testing.T) {
	out := NewOutput(newPastBase(), 10, "gm")
	out.UpdateTracks([]sequencer.Track{{ID: "k", Category: sequencer.CategoryKick, Gain: 1}})
	out.Start()
	out.Trigger("k", 1, 0)
	assert.Eventually(t, func() bool { return out.Pending() == 0 }, 2*time.Second, 5*time.Millisecond)
	assert.NotPanics(t, out.Stop)
}

func TestOutputFlush(t *testing.T) {
	rec := &recorder{}
	out := NewOutput(newPastBase(), 10, "gm")
	out.SetSender(rec.send)
	out.UpdateTracks([]sequencer.Track{{ID: "k", Category: sequencer.CategoryKick, Gain: 1}})
	out.Start()
	defer out.Stop()

	out.Trigger("k", 1, 2*time.Hour)
	require.Equal(t, 2, out.Pending())

	out.Flush()
	assert.Zero(t, out.Pending())
	msgs := rec.messages()
	require.Len(t, msgs, 1)
	var ch, cc, val uint8
	require.True(t, msgs[0].GetControlChange(&ch, &cc, &val))
	assert.Equal(t, uint8(9), ch)
	assert.Equal(t, ccAllNotesOff, cc)

	// still dispatching
	out.Trigger("k", 1, 0)
	rec.waitFor(t, 3)
}

func TestRestartDropsOldLookahead(t *testing.T) {
	clk := clock.NewRealtime(300 * time.Millisecond)
	store := sequencer.NewStore(sequencer.NewSeededRandom(3))
	rec := &recorder{}
	out := NewOutput(clk, 10, "gm")
	out.SetSender(rec.send)
	store.SetRegistry(out)
	out.UpdateTracks(store.Snapshot().Tracks)
	out.Start()
	defer out.Stop()

	m := sequencer.NewManager(store, clk, out, nil, nil)
	m.Play()
	time.Sleep(900 * time.Millisecond)
	m.Stop()
	assert.Zero(t, out.Pending())

	silenced := false
	for _, msg := range rec.messages() {
		var ch, cc, val uint8
		if msg.GetControlChange(&ch, &cc, &val) && cc == ccAllNotesOff {
			silenced = true
		}
	}
	assert.True(t, silenced, "all notes off on stop")

	m.Play()
	defer m.Stop()

	out.mu.Lock()
	queued := append(eventQueue(nil), out.queue...)
	out.mu.Unlock()
	for _, e := range queued {
		assert.Less(t, e.At, 600*time.Millisecond, "event from the stopped run")
	}
}
