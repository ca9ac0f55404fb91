package midi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"

	"go-drummer/sequencer"
)

func TestLevelFor(t *testing.T) {
	assert.Equal(t, 1, levelFor(1))
	assert.Equal(t, 1, levelFor(31))
	assert.Equal(t, 2, levelFor(40))
	assert.Equal(t, 3, levelFor(64))
	assert.Equal(t, 4, levelFor(127))
}

func TestPadInputResolvesHits(t *testing.T) {
	out := NewOutput(newPastBase(), 10, "gm")
	out.UpdateTracks([]sequencer.Track{
		{ID: "kick", Category: sequencer.CategoryKick},
		{ID: "snare", Category: sequencer.CategorySnare},
		{ID: "snare-2", Category: sequencer.CategorySnare},
	})
	in := newPadInput("test", out)

	in.handle(gomidi.NoteOn(9, 38, 127))
	in.handle(gomidi.NoteOn(9, 36, 20))
	in.handle(gomidi.NoteOn(9, 36, 0))  // note off by velocity
	in.handle(gomidi.NoteOn(9, 60, 100)) // unbound
	in.handle(gomidi.NoteOff(9, 38))

	require.Len(t, in.hits, 2)
	assert.Equal(t, Hit{TrackID: "snare", Level: 4}, <-in.Hits())
	assert.Equal(t, Hit{TrackID: "kick", Level: 1}, <-in.Hits())
	assert.NoError(t, in.Close())
}
