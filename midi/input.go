package midi

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"go-drummer/debug"
	"go-drummer/sequencer"
)

// ErrNoInPort is returned when no input port matches
var ErrNoInPort = errors.New("no matching midi input port")

// Hit is a pad strike resolved to a track row
type Hit struct {
	TrackID string
	Level   int // 1-4
}

// NoteResolver maps an incoming kit note back to a track id
type NoteResolver interface {
	TrackForNote(note uint8) (string, bool)
}

// PadInput listens to a pad controller or keyboard and turns its notes
// into hits on the tracks that play them
type PadInput struct {
	name    string
	resolve NoteResolver
	hits    chan Hit

	mu       sync.Mutex
	stopFunc func()
}

func newPadInput(name string, resolve NoteResolver) *PadInput {
	return &PadInput{
		name:    name,
		resolve: resolve,
		hits:    make(chan Hit, 32),
	}
}

// OpenPadInput listens on the first input port whose name contains want
func OpenPadInput(want string, resolve NoteResolver) (*PadInput, error) {
	ports, err := scanInPorts()
	if err != nil {
		return nil, err
	}
	for _, port := range ports {
		if !matchPort(port.String(), want) {
			continue
		}
		in := newPadInput(port.String(), resolve)
		stop, err := gomidi.ListenTo(port, func(msg gomidi.Message, timestampms int32) {
			in.handle(msg)
		})
		if err != nil {
			return nil, fmt.Errorf("open input %s: %w", port.String(), err)
		}
		in.stopFunc = stop
		debug.Log("midi", "pad input: %s", port.String())
		return in, nil
	}
	return nil, ErrNoInPort
}

func scanInPorts() ([]drivers.In, error) {
	ch := make(chan []drivers.In, 1)
	go func() {
		ch <- gomidi.GetInPorts()
	}()
	select {
	case ports := <-ch:
		return ports, nil
	case <-time.After(portScanTimeout):
		return nil, ErrPortScanTimeout
	}
}

// Name returns the input port name
func (in *PadInput) Name() string {
	return in.name
}

// Hits returns resolved pad strikes
func (in *PadInput) Hits() <-chan Hit {
	return in.hits
}

func (in *PadInput) handle(msg gomidi.Message) {
	var channel, note, velocity uint8
	if !msg.GetNoteOn(&channel, &note, &velocity) || velocity == 0 {
		return
	}
	id, ok := in.resolve.TrackForNote(note)
	if !ok {
		debug.LogEvery(10, "midi", "pad note %d has no track", note)
		return
	}
	select {
	case in.hits <- Hit{TrackID: id, Level: levelFor(velocity)}:
	default:
	}
}

// levelFor quantizes a MIDI velocity onto the 1-4 step scale
func levelFor(velocity uint8) int {
	level := int(math.Ceil(float64(velocity) / 127 * sequencer.MaxLevel))
	return min(max(level, sequencer.MinLevel), sequencer.MaxLevel)
}

// Close stops listening
func (in *PadInput) Close() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.stopFunc != nil {
		in.stopFunc()
		in.stopFunc = nil
	}
	return nil
}
