package sequencer

import "time"

// Times handed to collaborators are offsets from transport start.

// NotePlayer fires drum hits. Implementations must not block and must
// ignore unknown track ids.
type NotePlayer interface {
	Trigger(trackID string, velocity float64, at time.Duration)
}

// TrackRegistry keeps sample bindings in line with the active pattern's tracks
type TrackRegistry interface {
	UpdateTracks(tracks []Track)
}

// Metronome plays the click. accent is true on the downbeat.
type Metronome interface {
	Click(accent bool, velocity float64, at time.Duration)
}

// Clock drives the scheduler at sixteenth-note resolution
type Clock interface {
	Tempo() int
	SetTempo(bpm int)
	Swing() float64
	SetSwing(ratio float64)

	// ScheduleRepeatingTick registers fn to run once per sixteenth with the
	// tick's precise time and returns a handle for ClearTick.
	ScheduleRepeatingTick(fn func(at time.Duration)) int
	ClearTick(handle int)
}

// Tempo bounds in BPM
const (
	MinTempo     = 40
	MaxTempo     = 300
	DefaultTempo = 120
)

// ClampTempo forces bpm into [MinTempo, MaxTempo]
func ClampTempo(bpm int) int {
	return clampInt(bpm, MinTempo, MaxTempo)
}

// SixteenthDuration returns the length of one step at the given tempo
func SixteenthDuration(bpm int) time.Duration {
	bpm = ClampTempo(bpm)
	return time.Duration(float64(time.Minute) / float64(bpm) / 4)
}

// Note is a single trigger decided by the scheduler
type Note struct {
	TrackID  string
	Velocity float64
	At       time.Duration
}
