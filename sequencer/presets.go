package sequencer

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed presets/*.yml
var presetFS embed.FS

// PresetTrack is one row of a preset: a category and a 16-char grid
type PresetTrack struct {
	Category Category `yaml:"category"`
	Pattern  string   `yaml:"pattern"`
}

// PatternPreset is a named single-pattern beat
type PatternPreset struct {
	Name   string        `yaml:"name"`
	Style  string        `yaml:"style"`
	Tempo  int           `yaml:"tempo"`
	Tracks []PresetTrack `yaml:"tracks"`
}

// SongPreset is a chain plus beats for the patterns it uses. Patterns not
// listed are cleared.
type SongPreset struct {
	Name        string                      `yaml:"name"`
	Style       string                      `yaml:"style"`
	Tempo       int                         `yaml:"tempo"`
	Description string                      `yaml:"description"`
	Chain       []ChainItem                 `yaml:"chain"`
	Patterns    map[PatternID][]PresetTrack `yaml:"patterns"`
}

// PatternLabels are the section names shown for each pattern slot
var PatternLabels = map[PatternID]string{
	1: "INTRO",
	2: "VERSE",
	3: "PRE",
	4: "CHORUS",
	5: "BRIDGE",
	6: "OUTRO",
}

// PatternPresets returns the built-in beats
func PatternPresets() ([]PatternPreset, error) {
	var presets []PatternPreset
	if err := loadPresetFile("presets/patterns.yml", &presets); err != nil {
		return nil, err
	}
	return presets, nil
}

// SongPresets returns the built-in song structures
func SongPresets() ([]SongPreset, error) {
	var presets []SongPreset
	if err := loadPresetFile("presets/songs.yml", &presets); err != nil {
		return nil, err
	}
	return presets, nil
}

func loadPresetFile(name string, v any) error {
	data, err := presetFS.ReadFile(name)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

// rowKey identifies the nth track of a category within a preset
type rowKey struct {
	cat Category
	n   int
}

// presetLayout merges the rows of several presets into one shared track
// list. Rows are matched by category and occurrence, in order of first
// appearance. The returned index maps each preset's rows onto the layout.
func presetLayout(sets ...[]PresetTrack) (rows []Category, index [][]int) {
	pos := make(map[rowKey]int)
	index = make([][]int, len(sets))
	for si, set := range sets {
		seen := make(map[Category]int)
		index[si] = make([]int, len(set))
		for ti, pt := range set {
			key := rowKey{pt.Category, seen[pt.Category]}
			seen[pt.Category]++
			i, ok := pos[key]
			if !ok {
				i = len(rows)
				pos[key] = i
				rows = append(rows, pt.Category)
			}
			index[si][ti] = i
		}
	}
	return rows, index
}

// newRows builds fresh tracks for a layout with random samples
func (s *Store) newRows(cats []Category) []Track {
	tracks := make([]Track, len(cats))
	for i, cat := range cats {
		if !ValidCategory(cat) {
			cat = CategoryPerc
		}
		smp := RandomSample(s.rng, cat)
		tracks[i] = Track{
			ID:        s.newID(),
			Name:      smp.Label,
			Category:  cat,
			SampleURL: smp.URL,
			Gain:      defaultTrackGain,
			Steps:     EmptySteps(),
		}
	}
	return tracks
}

// LoadPreset puts a beat into the active pattern and takes its tempo. The
// preset's rows replace the track list of every pattern; other patterns
// keep the steps of rows at the same position.
func (s *Store) LoadPreset(p PatternPreset) {
	cats, index := presetLayout(p.Tracks)
	s.mutate(func() bool {
		rows := s.newRows(cats)
		for pi := range s.patterns {
			pat := &s.patterns[pi]
			tracks := make([]Track, len(rows))
			copy(tracks, rows)
			if pat.ID != s.active {
				for i := range tracks {
					if i < len(pat.Tracks) {
						tracks[i].Steps = pat.Tracks[i].Steps
					}
				}
			}
			pat.Tracks = tracks
		}
		active := s.pattern(s.active)
		for ti, pt := range p.Tracks {
			active.Tracks[index[0][ti]].Steps = StepsFromString(pt.Pattern)
		}
		if p.Tempo > 0 {
			s.settings.Tempo = ClampTempo(p.Tempo)
		}
		return true
	})
}

// LoadSongPreset replaces every pattern with the song's beats, loads its
// chain and takes its tempo. The first chain pattern becomes active.
func (s *Store) LoadSongPreset(p SongPreset) {
	ids := PatternIDs()
	sets := make([][]PresetTrack, len(ids))
	for i, id := range ids {
		sets[i] = p.Patterns[id]
	}
	cats, index := presetLayout(sets...)

	s.mutate(func() bool {
		rows := s.newRows(cats)
		for pi, id := range ids {
			pat := s.pattern(id)
			pat.Tracks = make([]Track, len(rows))
			copy(pat.Tracks, rows)
			for ti, pt := range sets[pi] {
				pat.Tracks[index[pi][ti]].Steps = StepsFromString(pt.Pattern)
			}
		}
		s.chain.Load(p.Chain)
		if p.Tempo > 0 {
			s.settings.Tempo = ClampTempo(p.Tempo)
		}
		s.jumpToChainStart()
		return true
	})
}
