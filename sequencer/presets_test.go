package sequencer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresetsParse(t *testing.T) {
	beats, err := PatternPresets()
	require.NoError(t, err)
	assert.Len(t, beats, 20)
	for _, p := range beats {
		assert.NotEmpty(t, p.Name)
		for _, tr := range p.Tracks {
			assert.Len(t, tr.Pattern, NumSteps, p.Name)
			assert.True(t, ValidCategory(tr.Category), p.Name)
		}
	}

	songs, err := SongPresets()
	require.NoError(t, err)
	require.Len(t, songs, 4)
	assert.Equal(t, "The Early Fab Four", songs[0].Name)
	assert.Equal(t, ChainItem{PatternID: 1, Bars: 4}, songs[0].Chain[0])
	assert.Len(t, songs[0].Patterns[4], 4)
	assert.NotContains(t, songs[0].Patterns, PatternID(3))
}

func TestPresetLayout(t *testing.T) {
	rows, index := presetLayout(
		[]PresetTrack{{Category: CategoryKick}, {Category: CategorySnare}, {Category: CategoryTom}},
		[]PresetTrack{{Category: CategoryKick}, {Category: CategoryHihat}, {Category: CategoryKick}},
	)
	assert.Equal(t, []Category{CategoryKick, CategorySnare, CategoryTom, CategoryHihat, CategoryKick}, rows)
	assert.Equal(t, [][]int{{0, 1, 2}, {0, 3, 4}}, index)
}

func TestLoadPreset(t *testing.T) {
	s, reg := newTestStore()
	s.SetActivePattern(2)
	s.ToggleStep(4, "track-1", 5, 3, 1, false)

	s.LoadPreset(PatternPreset{
		Name:  "test",
		Tempo: 90,
		Tracks: []PresetTrack{
			{Category: CategoryKick, Pattern: "1...1..........."},
			{Category: CategorySnare, Pattern: "....1..........."},
		},
	})

	ids := assertAligned(t, s)
	assert.Len(t, ids, 2)
	assert.Equal(t, 90, s.Settings().Tempo)

	p2, _ := s.Pattern(2)
	assert.True(t, p2.Tracks[0].Steps[4].Active)
	assert.True(t, p2.Tracks[1].Steps[4].Active)

	p4, _ := s.Pattern(4)
	assert.True(t, p4.Tracks[0].Steps[5].Active)

	tracks, _ := reg.Tracks()
	assert.Len(t, tracks, 2)
}

func TestLoadSongPreset(t *testing.T) {
	s, _ := newTestStore()
	songs, err := SongPresets()
	require.NoError(t, err)
	song := songs[0]

	s.LoadSongPreset(song)

	ids := assertAligned(t, s)
	assert.Equal(t, song.Tempo, s.Settings().Tempo)
	assert.Equal(t, song.Chain, s.Chain())
	assert.Equal(t, song.Chain[0].PatternID, s.ActivePattern())

	// each pattern's rows keep their categories
	p1, _ := s.Pattern(1)
	assert.Equal(t, CategoryTom, p1.Tracks[2].Category)
	assert.True(t, p1.Tracks[2].Steps[0].Active)
	assert.Len(t, ids, len(p1.Tracks))

	p3, _ := s.Pattern(3)
	for _, tr := range p3.Tracks {
		for _, st := range tr.Steps {
			assert.False(t, st.Active)
		}
	}
}
