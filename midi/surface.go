package midi

import (
	"context"
	"sync"
	"time"

	"go-drummer/debug"
	"go-drummer/sequencer"
)

const ledFPS = 30

// Top row buttons
const (
	topPageA     = 0 // steps 1-8
	topPageB     = 1 // steps 9-16
	topMetronome = 6
	topPlay      = 7
)

// LEDSink receives LED changes
type LEDSink interface {
	SetLEDBatch(updates []LEDUpdate) error
}

// StepSurface lays the active pattern out on a grid controller. Each grid
// row is a track, top row first, and the eight columns show one half of the
// bar. The scene column picks patterns 1-6 from the top.
type StepSurface struct {
	manager *sequencer.Manager
	leds    LEDSink

	mu   sync.Mutex
	page int
	prev map[[2]int]LEDUpdate
}

// NewStepSurface binds a transport to a grid's LEDs
func NewStepSurface(manager *sequencer.Manager, leds LEDSink) *StepSurface {
	return &StepSurface{
		manager: manager,
		leds:    leds,
		prev:    make(map[[2]int]LEDUpdate),
	}
}

// Page returns the visible half of the bar, 0 or 1
func (s *StepSurface) Page() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// Run handles pad presses and refreshes the LEDs until ctx is done
func (s *StepSurface) Run(ctx context.Context, pads <-chan PadEvent) {
	ticker := time.NewTicker(time.Second / ledFPS)
	defer ticker.Stop()

	s.Refresh()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-pads:
			s.HandlePad(ev)
			s.Refresh()
		case <-ticker.C:
			s.Refresh()
		}
	}
}

// HandlePad applies one press
func (s *StepSurface) HandlePad(ev PadEvent) {
	store := s.manager.Store()

	switch {
	case ev.Row == TopRow:
		switch ev.Col {
		case topPageA, topPageB:
			s.mu.Lock()
			s.page = ev.Col - topPageA
			s.mu.Unlock()
		case topMetronome:
			store.ToggleMetronome()
		case topPlay:
			s.manager.TogglePlay()
			return
		}

	case ev.Col == SceneCol:
		id := sequencer.PatternID(GridSize - ev.Row)
		if !id.Valid() {
			return
		}
		store.SetActivePattern(id)

	default:
		snap := store.Snapshot()
		i := GridSize - 1 - ev.Row
		if i >= len(snap.Tracks) {
			return
		}
		step := s.Page()*GridSize + ev.Col
		store.ToggleStep(snap.Pattern, snap.Tracks[i].ID, step, levelFor(ev.Velocity), 1, false)
		debug.Log("grid", "toggle %s step %d", snap.Tracks[i].ID, step)
	}
	s.manager.Notify()
}

// Render returns the full LED state for the current pattern and transport
func (s *StepSurface) Render() []LEDUpdate {
	store := s.manager.Store()
	snap := store.Snapshot()
	playing := s.manager.Playing()
	playhead := s.manager.Position().Step
	page := s.Page()

	updates := make([]LEDUpdate, 0, GridSize*GridSize+GridSize+4)
	for row := 0; row < GridSize; row++ {
		i := GridSize - 1 - row
		for col := 0; col < GridSize; col++ {
			step := page*GridSize + col
			u := LEDUpdate{Row: row, Col: col}
			switch {
			case i >= len(snap.Tracks):
			case playing && step == playhead:
				u.Color = ColorWhite
			case snap.Tracks[i].Steps[step].Active:
				u.Color = levelColor(snap.Tracks[i].Steps[step].Velocity)
			case step%4 == 0:
				u.Color = ColorDimBlue
			}
			updates = append(updates, u)
		}
	}

	for _, id := range sequencer.PatternIDs() {
		u := LEDUpdate{Row: GridSize - int(id), Col: SceneCol, Color: ColorDimBlue}
		if id == snap.Pattern {
			u.Color = ColorOrange
		}
		updates = append(updates, u)
	}

	for _, col := range []int{topPageA, topPageB} {
		u := LEDUpdate{Row: TopRow, Col: col, Color: ColorDimBlue}
		if col-topPageA == page {
			u.Color = ColorBlue
		}
		updates = append(updates, u)
	}
	metro := LEDUpdate{Row: TopRow, Col: topMetronome}
	if snap.Metronome {
		metro.Color = ColorYellow
	}
	play := LEDUpdate{Row: TopRow, Col: topPlay, Color: ColorDimGreen}
	if playing {
		play.Color, play.Channel = ColorGreen, ChannelPulse
	}
	return append(updates, metro, play)
}

// Refresh sends the LEDs that changed since the last refresh
func (s *StepSurface) Refresh() {
	next := s.Render()

	s.mu.Lock()
	var changed []LEDUpdate
	for _, u := range next {
		key := [2]int{u.Row, u.Col}
		if prev, ok := s.prev[key]; !ok || prev != u {
			changed = append(changed, u)
			s.prev[key] = u
		}
	}
	s.mu.Unlock()

	if len(changed) == 0 {
		return
	}
	if err := s.leds.SetLEDBatch(changed); err != nil {
		debug.LogEvery(30, "grid", "led send failed: %v", err)
	}
}

// levelColor shades active steps by velocity
func levelColor(level int) uint8 {
	switch {
	case level <= 1:
		return ColorDimGreen
	case level == 2:
		return ColorGreen
	case level == 3:
		return ColorBrightGreen
	default:
		return ColorYellow
	}
}
