package midi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"
)

func TestGridNoteMapping(t *testing.T) {
	tests := []struct {
		note     uint8
		row, col int
	}{
		{11, 0, 0},
		{18, 0, 7},
		{19, 0, SceneCol},
		{81, 7, 0},
		{89, 7, SceneCol},
		{91, TopRow, 0},
		{98, TopRow, 7},
		{10, -1, -1},
		{99, -1, -1},
		{0, -1, -1},
	}
	for _, tt := range tests {
		row, col := noteToRowCol(tt.note)
		assert.Equal(t, tt.row, row, "note %d", tt.note)
		assert.Equal(t, tt.col, col, "note %d", tt.note)
		if row >= 0 {
			assert.Equal(t, tt.note, rowColToNote(row, col))
		}
	}

	row, col := ccToRowCol(93)
	assert.Equal(t, TopRow, row)
	assert.Equal(t, 2, col)
	row, _ = ccToRowCol(64)
	assert.Equal(t, -1, row)
}

func TestPickGridPort(t *testing.T) {
	names := []string{"IAC Bus 1", "LPX DAW Out", "Launchpad X LPX DAW", "Launchpad X LPX MIDI"}
	assert.Equal(t, 3, pickGridPort(names, "launchpad"))
	assert.Equal(t, 2, pickGridPort(names[:3], "launchpad"))
	assert.Equal(t, -1, pickGridPort(names[:2], "launchpad"))
	assert.Equal(t, 3, pickGridPort(names, ""))
}

func TestGridControllerInput(t *testing.T) {
	g := newGridController("test", nil)

	g.handle(gomidi.NoteOn(0, 23, 100))
	g.handle(gomidi.NoteOn(0, 23, 0))
	g.handle(gomidi.NoteOff(0, 23))
	g.handle(gomidi.ControlChange(0, 98, 127))
	g.handle(gomidi.ControlChange(0, 98, 0))
	g.handle(gomidi.NoteOn(0, 5, 100))

	require.Len(t, g.pads, 2)
	assert.Equal(t, PadEvent{Row: 1, Col: 2, Velocity: 100}, <-g.Pads())
	assert.Equal(t, PadEvent{Row: TopRow, Col: 7, Velocity: 127}, <-g.Pads())
}

func TestGridControllerLEDs(t *testing.T) {
	rec := &recorder{}
	g := newGridController("test", rec.send)

	msgs := rec.messages()
	require.Len(t, msgs, 3, "programmer mode, brightness, led feedback")
	var data []byte
	require.True(t, msgs[0].GetSysEx(&data))
	assert.Equal(t, sysexProgrammerMode, data)

	require.NoError(t, g.SetLEDBatch([]LEDUpdate{
		{Row: 0, Col: 0, Color: ColorGreen},
		{Row: TopRow, Col: 7, Color: ColorGreen, Channel: ChannelPulse},
	}))
	msgs = rec.messages()
	require.Len(t, msgs, 5)
	var ch, key, vel uint8
	require.True(t, msgs[3].GetNoteOn(&ch, &key, &vel))
	assert.Equal(t, uint8(11), key)
	assert.Equal(t, ColorGreen, vel)
	require.True(t, msgs[4].GetNoteOn(&ch, &key, &vel))
	assert.Equal(t, ChannelPulse, ch)
	assert.Equal(t, uint8(98), key)

	require.NoError(t, g.Close())
	assert.Len(t, rec.messages(), 5+80)
}
