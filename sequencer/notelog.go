package sequencer

import (
	"sort"
	"sync"
	"time"
)

// Click is a recorded metronome click
type Click struct {
	Accent   bool
	Velocity float64
	At       time.Duration
}

// NoteLog records triggers instead of playing them. It implements
// NotePlayer, Metronome and TrackRegistry.
type NoteLog struct {
	mu     sync.Mutex
	notes  []Note
	clicks []Click
	tracks []Track
	syncs  int
}

func (l *NoteLog) Trigger(trackID string, velocity float64, at time.Duration) {
	l.mu.Lock()
	l.notes = append(l.notes, Note{TrackID: trackID, Velocity: velocity, At: at})
	l.mu.Unlock()
}

func (l *NoteLog) Click(accent bool, velocity float64, at time.Duration) {
	l.mu.Lock()
	l.clicks = append(l.clicks, Click{Accent: accent, Velocity: velocity, At: at})
	l.mu.Unlock()
}

func (l *NoteLog) UpdateTracks(tracks []Track) {
	l.mu.Lock()
	l.tracks = append(l.tracks[:0], tracks...)
	l.syncs++
	l.mu.Unlock()
}

// Notes returns the notes in trigger order
func (l *NoteLog) Notes() []Note {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Note, len(l.notes))
	copy(out, l.notes)
	return out
}

// Sorted returns the notes ordered by time, keeping trigger order for ties
func (l *NoteLog) Sorted() []Note {
	out := l.Notes()
	sort.SliceStable(out, func(i, j int) bool { return out[i].At < out[j].At })
	return out
}

// Track returns the notes of one track
func (l *NoteLog) Track(id string) []Note {
	var out []Note
	for _, n := range l.Notes() {
		if n.TrackID == id {
			out = append(out, n)
		}
	}
	return out
}

// Clicks returns the recorded metronome clicks
func (l *NoteLog) Clicks() []Click {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Click, len(l.clicks))
	copy(out, l.clicks)
	return out
}

// Tracks returns the last track list pushed by the store, and how many
// times it was pushed
func (l *NoteLog) Tracks() ([]Track, int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Track, len(l.tracks))
	copy(out, l.tracks)
	return out, l.syncs
}

// Reset forgets everything recorded
func (l *NoteLog) Reset() {
	l.mu.Lock()
	l.notes = nil
	l.clicks = nil
	l.tracks = nil
	l.syncs = 0
	l.mu.Unlock()
}
