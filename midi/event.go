package midi

import (
	"container/heap"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// MIDI message types
const (
	NoteOn  uint8 = 0x90
	NoteOff uint8 = 0x80
	CC      uint8 = 0xB0
)

// Event is a MIDI message waiting for its transport time
type Event struct {
	At       time.Duration // offset from transport start
	Type     uint8         // NoteOn, NoteOff, CC
	Channel  uint8         // 0-15
	Note     uint8         // note or controller number
	Velocity uint8         // velocity or controller value

	seq uint64
}

// Message converts the event to a gomidi message
func (e Event) Message() gomidi.Message {
	switch e.Type {
	case NoteOn:
		return gomidi.NoteOn(e.Channel, e.Note, e.Velocity)
	case NoteOff:
		return gomidi.NoteOff(e.Channel, e.Note)
	case CC:
		return gomidi.ControlChange(e.Channel, e.Note, e.Velocity)
	}
	return nil
}

// eventQueue is a min-heap on (At, insertion order)
type eventQueue []Event

func (q eventQueue) Len() int { return len(q) }

func (q eventQueue) Less(i, j int) bool {
	if q[i].At == q[j].At {
		return q[i].seq < q[j].seq
	}
	return q[i].At < q[j].At
}

func (q eventQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *eventQueue) Push(x any) { *q = append(*q, x.(Event)) }

func (q *eventQueue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	*q = old[:n-1]
	return e
}

func (q *eventQueue) push(e Event) { heap.Push(q, e) }

func (q *eventQueue) pop() Event { return heap.Pop(q).(Event) }

func (q eventQueue) peek() (Event, bool) {
	if len(q) == 0 {
		return Event{}, false
	}
	return q[0], true
}
