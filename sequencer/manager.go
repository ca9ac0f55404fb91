package sequencer

import (
	"sync"
	"time"

	"go-drummer/debug"
)

// Mixer is implemented by players that apply the master volume
type Mixer interface {
	SetMasterVolume(v float64)
}

// Flusher is implemented by players that queue triggers ahead of time.
// Flush drops everything not yet played.
type Flusher interface {
	Flush()
}

// Manager owns the transport: it binds the store and the scheduler to a
// clock and forwards tempo and mix changes to the collaborators.
type Manager struct {
	store  *Store
	clock  Clock
	player NotePlayer
	sched  *Scheduler

	mu      sync.Mutex
	playing bool
	handle  int
	last    StepInfo

	// Notify TUI of updates
	UpdateChan chan struct{}
}

// NewManager wires a scheduler between store and player. metronome and
// human may be nil.
func NewManager(store *Store, clock Clock, player NotePlayer, metronome Metronome, human *Humanizer) *Manager {
	m := &Manager{
		store:      store,
		clock:      clock,
		player:     player,
		UpdateChan: make(chan struct{}, 1),
	}
	m.sched = NewScheduler(player, metronome, store, human)
	m.sched.OnStep = m.onStep

	st := store.Settings()
	clock.SetTempo(st.Tempo)
	clock.SetSwing(st.Swing)
	if mx, ok := player.(Mixer); ok {
		mx.SetMasterVolume(st.MasterVolume)
	}
	return m
}

// Store returns the store the manager plays from
func (m *Manager) Store() *Store {
	return m.store
}

// Play starts the transport from step 0 of bar 1. In song mode the chain
// restarts from its first item.
func (m *Manager) Play() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.playing {
		return
	}

	m.sched.Reset()
	m.store.RewindSong()
	m.clock.SetTempo(m.store.Settings().Tempo)
	m.last = StepInfo{Bar: 1, Pattern: m.store.ActivePattern()}

	m.handle = m.clock.ScheduleRepeatingTick(func(at time.Duration) {
		m.sched.Tick(m.store.Snapshot(), at)
	})
	m.playing = true
	debug.Log("transport", "play tempo=%d pattern=%d", m.clock.Tempo(), m.last.Pattern)
	m.notifyUpdate()
}

// Stop halts the transport. A player that queues ahead is flushed, so a
// quick restart never replays the old run's look-ahead.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.playing {
		m.mu.Unlock()
		return
	}
	handle := m.handle
	m.playing = false
	m.mu.Unlock()

	m.clock.ClearTick(handle)
	if f, ok := m.player.(Flusher); ok {
		f.Flush()
	}
	debug.Log("transport", "stop")
	m.notifyUpdate()
}

// TogglePlay starts or stops the transport
func (m *Manager) TogglePlay() {
	if m.Playing() {
		m.Stop()
	} else {
		m.Play()
	}
}

// Playing reports whether the transport is running
func (m *Manager) Playing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

// Position returns the last played step
func (m *Manager) Position() StepInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

// SetTempo clamps the tempo and applies it to the clock
func (m *Manager) SetTempo(bpm int) int {
	bpm = m.store.SetTempo(bpm)
	m.clock.SetTempo(bpm)
	m.notifyUpdate()
	return bpm
}

// SetSwing stores the swing ratio and applies it to the clock
func (m *Manager) SetSwing(ratio float64) float64 {
	ratio = m.store.SetSwing(ratio)
	m.clock.SetSwing(ratio)
	m.notifyUpdate()
	return ratio
}

// SetMasterVolume stores the volume and passes it to the player
func (m *Manager) SetMasterVolume(v float64) float64 {
	v = m.store.SetMasterVolume(v)
	if mx, ok := m.player.(Mixer); ok {
		mx.SetMasterVolume(v)
	}
	m.notifyUpdate()
	return v
}

// SyncClock pushes the stored tempo and swing to the clock, e.g. after a
// project or preset load
func (m *Manager) SyncClock() {
	st := m.store.Settings()
	m.clock.SetTempo(st.Tempo)
	m.clock.SetSwing(st.Swing)
	if mx, ok := m.player.(Mixer); ok {
		mx.SetMasterVolume(st.MasterVolume)
	}
	m.notifyUpdate()
}

func (m *Manager) onStep(info StepInfo) {
	m.mu.Lock()
	m.last = info
	m.mu.Unlock()
	if info.Step == 0 {
		debug.Log("tick", "bar %d pattern %d fill=%v", info.Bar, info.Pattern, info.Fill)
	}
	m.notifyUpdate()
}

// Notify wakes the TUI after an edit made outside it, e.g. from a grid
// controller
func (m *Manager) Notify() {
	m.notifyUpdate()
}

// notifyUpdate wakes the TUI without blocking
func (m *Manager) notifyUpdate() {
	select {
	case m.UpdateChan <- struct{}{}:
	default:
	}
}
