package midi

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"

	"go-drummer/debug"
)

// ErrNoGrid is returned when no grid controller port matches
var ErrNoGrid = errors.New("no matching grid controller")

// Launchpad X palette (velocity values 0-127)
const (
	ColorOff         uint8 = 0
	ColorWhite       uint8 = 3
	ColorRed         uint8 = 5
	ColorOrange      uint8 = 9
	ColorYellow      uint8 = 13
	ColorDimGreen    uint8 = 19
	ColorGreen       uint8 = 21
	ColorDimBlue     uint8 = 43
	ColorBlue        uint8 = 45
	ColorBrightGreen uint8 = 87

	// LED modes, sent as the NoteOn channel
	ChannelStatic uint8 = 0
	ChannelFlash  uint8 = 1
	ChannelPulse  uint8 = 2
)

// Grid geometry. Row 0 is the bottom row; row 8 is the top button row and
// column 8 the scene buttons on the right.
const (
	GridSize = 8
	TopRow   = 8
	SceneCol = 8
)

// PadEvent is a press on the grid, the top row or the scene column
type PadEvent struct {
	Row, Col int
	Velocity uint8
}

// LEDUpdate sets one pad's colour
type LEDUpdate struct {
	Row, Col int
	Color    uint8
	Channel  uint8
}

// SysEx bodies, without F0/F7
var (
	sysexProgrammerMode = []byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x00, 0x7F}
	sysexBrightness     = []byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x08, 0x7F}
	sysexExternalLEDs   = []byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x0A, 0x01, 0x01}
)

// GridController handles a Novation Launchpad X in programmer mode: pad
// presses come in as PadEvents, LED colours go out as NoteOns.
type GridController struct {
	name string
	send Sender
	pads chan PadEvent

	mu       sync.Mutex
	stopFunc func()
	sent     uint64
}

func newGridController(name string, send Sender) *GridController {
	g := &GridController{
		name: name,
		send: send,
		pads: make(chan PadEvent, 32),
	}
	if send != nil {
		send(gomidi.SysEx(sysexProgrammerMode))
		send(gomidi.SysEx(sysexBrightness))
		send(gomidi.SysEx(sysexExternalLEDs))
	}
	return g
}

// OpenGrid opens the Launchpad ports whose names contain want. Either
// direction may be missing; a grid without output just has no LEDs.
func OpenGrid(want string) (*GridController, error) {
	outs, err := scanOutPorts()
	if err != nil {
		return nil, err
	}
	ins, err := scanInPorts()
	if err != nil {
		return nil, err
	}

	outNames := make([]string, len(outs))
	for i, p := range outs {
		outNames[i] = p.String()
	}
	inNames := make([]string, len(ins))
	for i, p := range ins {
		inNames[i] = p.String()
	}
	oi, ii := pickGridPort(outNames, want), pickGridPort(inNames, want)
	if oi < 0 && ii < 0 {
		return nil, ErrNoGrid
	}

	var (
		send Sender
		name string
	)
	if oi >= 0 {
		s, err := gomidi.SendTo(outs[oi])
		if err != nil {
			return nil, fmt.Errorf("open grid output: %w", err)
		}
		send, name = s, outNames[oi]
	}
	if ii >= 0 && name == "" {
		name = inNames[ii]
	}

	g := newGridController(name, send)
	if ii >= 0 {
		stop, err := gomidi.ListenTo(ins[ii], func(msg gomidi.Message, timestampms int32) {
			g.handle(msg)
		})
		if err != nil {
			return nil, fmt.Errorf("open grid input: %w", err)
		}
		g.stopFunc = stop
	}
	debug.Log("grid", "opened %s (out=%v in=%v)", name, oi >= 0, ii >= 0)
	return g, nil
}

// pickGridPort returns the index of the port to use. A Launchpad shows up
// as a DAW port and a MIDI port; the MIDI one carries programmer mode.
func pickGridPort(names []string, want string) int {
	first := -1
	for i, n := range names {
		if !matchPort(n, want) {
			continue
		}
		if strings.Contains(strings.ToLower(n), "midi") {
			return i
		}
		if first < 0 {
			first = i
		}
	}
	return first
}

// Name returns the port name
func (g *GridController) Name() string {
	return g.name
}

// Pads returns pad presses
func (g *GridController) Pads() <-chan PadEvent {
	return g.pads
}

func (g *GridController) handle(msg gomidi.Message) {
	var channel, note, velocity uint8
	var cc, value uint8

	row, col := -1, -1
	switch {
	case msg.GetNoteOn(&channel, &note, &velocity) && velocity > 0:
		row, col = noteToRowCol(note)
	case msg.GetControlChange(&channel, &cc, &value) && value > 0:
		row, col = ccToRowCol(cc)
		velocity = value
	}
	if row < 0 {
		return
	}
	select {
	case g.pads <- PadEvent{Row: row, Col: col, Velocity: velocity}:
	default:
		debug.Log("grid", "pad queue full, dropped %d,%d", row, col)
	}
}

// SetLEDBatch sends LED updates as individual NoteOns
func (g *GridController) SetLEDBatch(updates []LEDUpdate) error {
	if g.send == nil || len(updates) == 0 {
		return nil
	}
	var firstErr error
	for _, u := range updates {
		if err := g.send(gomidi.NoteOn(u.Channel, rowColToNote(u.Row, u.Col), u.Color)); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	g.mu.Lock()
	g.sent += uint64(len(updates))
	sent := g.sent
	g.mu.Unlock()
	if sent%100 < uint64(len(updates)) {
		debug.Log("grid", "led batch=%d total=%d", len(updates), sent)
	}
	return firstErr
}

// Close darkens every LED and stops listening
func (g *GridController) Close() error {
	if g.send != nil {
		var updates []LEDUpdate
		for row := 0; row <= TopRow; row++ {
			for col := 0; col <= SceneCol; col++ {
				if row == TopRow && col == SceneCol {
					continue // no LED at 8,8
				}
				updates = append(updates, LEDUpdate{Row: row, Col: col})
			}
		}
		g.SetLEDBatch(updates)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.stopFunc != nil {
		g.stopFunc()
		g.stopFunc = nil
	}
	return nil
}

// Launchpad X programmer-mode layout:
// grid rows 0-7 (bottom to top) are notes 11-18 ... 81-88,
// the scene column is notes 19, 29 ... 89,
// the top row is CC 91-98 (lit with notes 91-98).

func rowColToNote(row, col int) uint8 {
	if row == TopRow {
		return uint8(91 + col)
	}
	return uint8((row+1)*10 + col + 1)
}

func noteToRowCol(note uint8) (row, col int) {
	if note >= 91 && note <= 98 {
		return TopRow, int(note - 91)
	}
	row = int(note/10) - 1
	col = int(note%10) - 1
	if row < 0 || row >= GridSize || col < 0 || col > SceneCol {
		return -1, -1
	}
	return row, col
}

func ccToRowCol(cc uint8) (row, col int) {
	if cc >= 91 && cc <= 98 {
		return TopRow, int(cc - 91)
	}
	return -1, -1
}
