package midi

import (
	"math"
	"runtime"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"

	"go-drummer/debug"
	"go-drummer/sequencer"
)

// Sender writes one message to a port
type Sender func(gomidi.Message) error

// Timebase maps transport offsets to wall time
type Timebase interface {
	WallTime(at time.Duration) time.Time
}

const (
	// NoteLength is the gap between a hit's NoteOn and NoteOff
	NoteLength = 30 * time.Millisecond

	clickAccentNote uint8 = 76 // hi wood block
	clickNote       uint8 = 77 // low wood block

	ccAllNotesOff uint8 = 123
)

type voice struct {
	note uint8
	gain float64
}

// Output plays the sequencer over a MIDI port. It implements
// sequencer.NotePlayer, sequencer.TrackRegistry, sequencer.Metronome,
// sequencer.Mixer and sequencer.Flusher. Triggers are queued by transport time and sent by a
// dispatch goroutine when their wall time arrives.
type Output struct {
	mu      sync.Mutex
	send    Sender
	base    Timebase
	channel uint8
	kit     DrumKit
	master  float64
	voices  map[string]voice
	order   []string // track ids in row order

	queue   eventQueue
	seq     uint64
	running bool

	interrupt chan struct{}
	stop      chan struct{}
	done      chan struct{}
}

// NewOutput creates a stopped output. channel is 1-16.
func NewOutput(base Timebase, channel int, kitName string) *Output {
	channel = min(max(channel, 1), 16)
	return &Output{
		base:      base,
		channel:   uint8(channel - 1),
		kit:       GetKit(kitName),
		master:    1,
		voices:    make(map[string]voice),
		interrupt: make(chan struct{}, 1),
	}
}

// SetSender swaps the port writer; nil drops messages (port unplugged)
func (o *Output) SetSender(s Sender) {
	o.mu.Lock()
	o.send = s
	o.mu.Unlock()
}

// SetMasterVolume scales every trigger velocity
func (o *Output) SetMasterVolume(v float64) {
	o.mu.Lock()
	o.master = min(max(v, 0), 1)
	o.mu.Unlock()
}

// UpdateTracks binds track ids to kit notes and gains
func (o *Output) UpdateTracks(tracks []sequencer.Track) {
	voices := make(map[string]voice, len(tracks))
	order := make([]string, len(tracks))
	for i, t := range tracks {
		voices[t.ID] = voice{note: o.kit.Note(t), gain: t.Gain}
		order[i] = t.ID
	}
	o.mu.Lock()
	o.voices = voices
	o.order = order
	o.mu.Unlock()
	debug.Log("midi", "bound %d tracks", len(voices))
}

// TrackForNote returns the first track row bound to a kit note
func (o *Output) TrackForNote(note uint8) (string, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, id := range o.order {
		if o.voices[id].note == note {
			return id, true
		}
	}
	return "", false
}

// Start begins dispatching. Triggers before Start are dropped.
func (o *Output) Start() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.running {
		return
	}
	o.running = true
	o.stop = make(chan struct{})
	o.done = make(chan struct{})
	go o.run(o.stop, o.done)
}

// Stop ends dispatching, drops queued events and silences the channel
func (o *Output) Stop() {
	o.mu.Lock()
	if !o.running {
		o.mu.Unlock()
		return
	}
	o.running = false
	stop, done := o.stop, o.done
	o.mu.Unlock()

	close(stop)
	<-done

	o.Flush()
}

// Flush drops queued events and silences the channel. Dispatching keeps
// running.
func (o *Output) Flush() {
	o.mu.Lock()
	dropped := len(o.queue)
	o.queue = o.queue[:0]
	send := o.send
	off := Event{Type: CC, Channel: o.channel, Note: ccAllNotesOff}
	o.mu.Unlock()
	o.wake()

	if dropped > 0 {
		debug.Log("midi", "flushed %d queued events", dropped)
	}
	if send != nil {
		if err := send(off.Message()); err != nil {
			debug.Log("midi", "all notes off failed: %v", err)
		}
	}
}

// Pending returns the number of queued events
func (o *Output) Pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.queue)
}

// Trigger queues a hit. Unknown track ids are ignored.
func (o *Output) Trigger(trackID string, velocity float64, at time.Duration) {
	o.mu.Lock()
	v, ok := o.voices[trackID]
	if !o.running || !ok {
		o.mu.Unlock()
		return
	}
	o.enqueue(v.note, velocityByte(velocity*v.gain*o.master), at)
	o.mu.Unlock()
	o.wake()
}

// Click queues a metronome click on the wood blocks
func (o *Output) Click(accent bool, velocity float64, at time.Duration) {
	note := clickNote
	if accent {
		note = clickAccentNote
	}
	o.mu.Lock()
	if !o.running {
		o.mu.Unlock()
		return
	}
	o.enqueue(note, velocityByte(velocity*o.master), at)
	o.mu.Unlock()
	o.wake()
}

// enqueue adds a NoteOn/NoteOff pair; callers hold the lock
func (o *Output) enqueue(note, vel uint8, at time.Duration) {
	o.seq++
	o.queue.push(Event{At: at, Type: NoteOn, Channel: o.channel, Note: note, Velocity: vel, seq: o.seq})
	o.seq++
	o.queue.push(Event{At: at + NoteLength, Type: NoteOff, Channel: o.channel, Note: note, seq: o.seq})
}

func (o *Output) wake() {
	select {
	case o.interrupt <- struct{}{}:
	default:
	}
}

// velocityByte maps 0-1 to a MIDI velocity of at least 1
func velocityByte(v float64) uint8 {
	b := int(math.Round(v * 127))
	return uint8(min(max(b, 1), 127))
}

// run sends the earliest queued event once its wall time arrives
func (o *Output) run(stop, done chan struct{}) {
	defer close(done)
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	for {
		o.mu.Lock()
		next, ok := o.queue.peek()
		o.mu.Unlock()

		if !ok {
			select {
			case <-stop:
				return
			case <-o.interrupt:
				continue
			}
		}

		if wait := time.Until(o.base.WallTime(next.At)); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-stop:
				timer.Stop()
				return
			case <-o.interrupt:
				// an earlier event may have arrived
				timer.Stop()
				continue
			case <-timer.C:
			}
		}

		o.mu.Lock()
		next, ok = o.queue.peek()
		if !ok || time.Until(o.base.WallTime(next.At)) > 0 {
			o.mu.Unlock()
			continue
		}
		evt := o.queue.pop()
		send := o.send
		o.mu.Unlock()

		if send == nil {
			continue
		}
		if err := send(evt.Message()); err != nil {
			debug.LogEvery(50, "midi", "send failed: %v", err)
		}
	}
}
