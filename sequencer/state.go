package sequencer

import (
	"sync"

	"github.com/google/uuid"

	"go-drummer/debug"
)

// Settings are the transport and mix values of a session
type Settings struct {
	Tempo          int     `json:"tempo"`
	MasterVolume   float64 `json:"masterVolume"`
	TapeDistortion float64 `json:"tapeDistortion"`
	Swing          float64 `json:"swing"`
	Jank           int     `json:"jank"`
	AutoFill       int     `json:"autoFill"`
	Metronome      bool    `json:"-"`
}

// DefaultSettings returns the values used when nothing else is known
func DefaultSettings() Settings {
	return Settings{
		Tempo:        DefaultTempo,
		MasterVolume: 0.8,
	}
}

const defaultTrackGain = 0.8

// Store is the single source of truth for patterns, settings and the song
// chain. The control surface mutates it; the scheduler only reads it through
// Snapshot and advances the chain through AdvanceChain.
type Store struct {
	mu sync.RWMutex

	settings Settings
	active   PatternID
	patterns [NumPatterns]Pattern
	roles    Roles // of the active pattern
	chain    ChainController

	rng      RandomSource
	registry TrackRegistry
	newID    func() string
}

// NewStore creates a store with six patterns sharing a default five-track
// kit and a basic beat in pattern 1. rng may be nil.
func NewStore(rng RandomSource) *Store {
	if rng == nil {
		rng = DefaultRandom
	}
	s := &Store{
		settings: DefaultSettings(),
		active:   1,
		rng:      rng,
		newID:    uuid.NewString,
	}

	kit := []Category{CategoryKick, CategorySnare, CategoryHihat, CategoryPerc, CategoryPerc}
	rows := make([]Track, len(kit))
	for i, cat := range kit {
		smp := RandomSample(rng, cat)
		rows[i] = Track{
			ID:        "track-" + string(rune('1'+i)),
			Name:      smp.Label,
			Category:  cat,
			SampleURL: smp.URL,
			Gain:      defaultTrackGain,
			Steps:     EmptySteps(),
		}
	}
	for i, id := range PatternIDs() {
		p := Pattern{ID: id, LoopState: LoopOff, Tracks: make([]Track, len(rows))}
		copy(p.Tracks, rows)
		s.patterns[i] = p
	}

	first := &s.patterns[0]
	for _, i := range []int{0, 4, 8, 12} {
		first.Tracks[0].Steps[i].Active = true
	}
	for _, i := range []int{4, 12} {
		first.Tracks[1].Steps[i].Active = true
	}
	for i := 0; i < NumSteps; i += 2 {
		first.Tracks[2].Steps[i].Active = true
	}

	s.reindex()
	return s
}

// SetRegistry sets the collaborator told about track changes
func (s *Store) SetRegistry(reg TrackRegistry) {
	s.mu.Lock()
	s.registry = reg
	s.mu.Unlock()
}

func (s *Store) pattern(id PatternID) *Pattern {
	return &s.patterns[id-1]
}

// reindex rebuilds the role cache; callers hold the write lock
func (s *Store) reindex() {
	s.roles = BuildRoles(s.pattern(s.active).Tracks)
}

func (s *Store) activeTracksLocked() []Track {
	p := s.pattern(s.active)
	out := make([]Track, len(p.Tracks))
	copy(out, p.Tracks)
	return out
}

// mutate runs fn under the write lock and then tells the registry about
// the active pattern's tracks. fn returns false when nothing changed.
func (s *Store) mutate(fn func() bool) {
	s.mu.Lock()
	if !fn() {
		s.mu.Unlock()
		return
	}
	s.reindex()
	tracks := s.activeTracksLocked()
	reg := s.registry
	s.mu.Unlock()

	if reg != nil {
		reg.UpdateTracks(tracks)
	}
}

// Snapshot returns a consistent copy of everything a tick reads
func (s *Store) Snapshot() TickContext {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return TickContext{
		Pattern:   s.active,
		Tracks:    s.activeTracksLocked(),
		Roles:     s.roles,
		Tempo:     s.settings.Tempo,
		Jank:      s.settings.Jank,
		AutoFill:  s.settings.AutoFill,
		SongMode:  s.chain.Enabled(),
		Metronome: s.settings.Metronome,
	}
}

// Settings

// Settings returns a copy of the current settings
func (s *Store) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// SetTempo clamps and stores the tempo, returning the stored value
func (s *Store) SetTempo(bpm int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.Tempo = ClampTempo(bpm)
	return s.settings.Tempo
}

// SetMasterVolume clamps to 0-1
func (s *Store) SetMasterVolume(v float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.MasterVolume = clampFloat(v, 0, 1)
	return s.settings.MasterVolume
}

// SetTapeDistortion clamps to 0-1
func (s *Store) SetTapeDistortion(v float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.TapeDistortion = clampFloat(v, 0, 1)
	return s.settings.TapeDistortion
}

// SetSwing clamps to 0-1
func (s *Store) SetSwing(v float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.Swing = clampFloat(v, 0, 1)
	return s.settings.Swing
}

// SetJank clamps to 0-9
func (s *Store) SetJank(j int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.Jank = ClampJank(j)
	return s.settings.Jank
}

// NormalizeAutoFill snaps n to one of 0, 4 or 8
func NormalizeAutoFill(n int) int {
	switch {
	case n <= 0:
		return 0
	case n <= 4:
		return 4
	default:
		return 8
	}
}

// SetAutoFill stores a fill interval (0, 4 or 8)
func (s *Store) SetAutoFill(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.AutoFill = NormalizeAutoFill(n)
	return s.settings.AutoFill
}

// CycleAutoFill steps 0 -> 4 -> 8 -> 0
func (s *Store) CycleAutoFill() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := 0
	for i, v := range AutoFillCycle {
		if v == s.settings.AutoFill {
			next = AutoFillCycle[(i+1)%len(AutoFillCycle)]
		}
	}
	s.settings.AutoFill = next
	return next
}

// ToggleMetronome flips the click on or off
func (s *Store) ToggleMetronome() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.Metronome = !s.settings.Metronome
	return s.settings.Metronome
}

// Patterns

// ActivePattern returns the id of the pattern being played
func (s *Store) ActivePattern() PatternID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// SetActivePattern switches the playing pattern
func (s *Store) SetActivePattern(id PatternID) {
	s.mutate(func() bool {
		if !id.Valid() || id == s.active {
			return false
		}
		s.active = id
		return true
	})
}

// Pattern returns a copy of a pattern
func (s *Store) Pattern(id PatternID) (Pattern, bool) {
	if !id.Valid() {
		return Pattern{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pattern(id).Clone(), true
}

// SetLoopState sets the display-only loop tag
func (s *Store) SetLoopState(id PatternID, ls LoopState) {
	if !id.Valid() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pattern(id).LoopState = ls
}

// ToggleStep flips a step. A step that becomes active takes the given
// velocity, ratchet and triplet values (clamped).
func (s *Store) ToggleStep(id PatternID, trackID string, step, velocity, ratchet int, triplet bool) {
	if !id.Valid() || step < 0 || step >= NumSteps {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.pattern(id)
	i := p.TrackIndex(trackID)
	if i < 0 {
		return
	}
	sd := &p.Tracks[i].Steps[step]
	sd.Active = !sd.Active
	if sd.Active {
		sd.Velocity = clampLevel(velocity)
		sd.Ratchet = clampLevel(ratchet)
		sd.Triplet = triplet
	}
}

// SetStep overwrites a step, clamping velocity and ratchet
func (s *Store) SetStep(id PatternID, trackID string, step int, sd StepData) {
	if !id.Valid() || step < 0 || step >= NumSteps {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.pattern(id)
	i := p.TrackIndex(trackID)
	if i < 0 {
		return
	}
	sd.Velocity = clampLevel(sd.Velocity)
	sd.Ratchet = clampLevel(sd.Ratchet)
	p.Tracks[i].Steps[step] = sd
}

// forEachTrack applies fn to the track with the given id in every pattern
func (s *Store) forEachTrack(trackID string, fn func(t *Track)) bool {
	found := false
	for pi := range s.patterns {
		p := &s.patterns[pi]
		if i := p.TrackIndex(trackID); i >= 0 {
			fn(&p.Tracks[i])
			found = true
		}
	}
	return found
}

// SetTrackGain sets a track's gain in all patterns
func (s *Store) SetTrackGain(trackID string, gain float64) {
	gain = clampFloat(gain, 0, 1)
	s.mutate(func() bool {
		return s.forEachTrack(trackID, func(t *Track) { t.Gain = gain })
	})
}

// SetTrackPan sets a track's pan in all patterns
func (s *Store) SetTrackPan(trackID string, pan float64) {
	pan = clampFloat(pan, -1, 1)
	s.mutate(func() bool {
		return s.forEachTrack(trackID, func(t *Track) { t.Pan = pan })
	})
}

// ChangeTrackSample swaps a track's sample in all patterns
func (s *Store) ChangeTrackSample(trackID string, smp Sample) {
	s.mutate(func() bool {
		return s.forEachTrack(trackID, func(t *Track) {
			t.Name = smp.Label
			t.Category = smp.Category
			t.SampleURL = smp.URL
		})
	})
}

// AddTrack appends a perc track with the same new id to every pattern
func (s *Store) AddTrack() string {
	id := s.newID()
	smp := Samples[CategoryPerc][0]
	s.mutate(func() bool {
		for pi := range s.patterns {
			p := &s.patterns[pi]
			p.Tracks = append(p.Tracks, Track{
				ID:        id,
				Name:      smp.Label,
				Category:  CategoryPerc,
				SampleURL: smp.URL,
				Gain:      defaultTrackGain,
				Steps:     EmptySteps(),
			})
		}
		return true
	})
	return id
}

// RemoveTrack deletes the track from every pattern
func (s *Store) RemoveTrack(trackID string) {
	s.mutate(func() bool {
		removed := false
		for pi := range s.patterns {
			p := &s.patterns[pi]
			if i := p.TrackIndex(trackID); i >= 0 {
				p.Tracks = append(p.Tracks[:i:i], p.Tracks[i+1:]...)
				removed = true
			}
		}
		return removed
	})
}

// DuplicatePattern copies the active pattern into the next slot (6 wraps
// to 1) and makes the copy active
func (s *Store) DuplicatePattern() PatternID {
	var next PatternID
	s.mutate(func() bool {
		next = s.active%NumPatterns + 1
		cp := s.pattern(s.active).Clone()
		cp.ID = next
		*s.pattern(next) = cp
		s.active = next
		return true
	})
	return next
}

// GeneratePattern replaces the active pattern's steps with a random beat,
// treating the first three rows as kick, snare and hats
func (s *Store) GeneratePattern() {
	s.mu.Lock()
	defer s.mu.Unlock()
	rnd := s.rng.Float64
	tracks := s.pattern(s.active).Tracks
	for i := range tracks {
		tracks[i].Steps = EmptySteps()
	}
	if len(tracks) > 0 {
		tracks[0].Steps[0].Active = true
		if rnd() > 0.5 {
			tracks[0].Steps[8].Active = true
		} else {
			tracks[0].Steps[10].Active = true
		}
		if rnd() > 0.7 {
			tracks[0].Steps[14].Active = true
		}
	}
	if len(tracks) > 1 {
		tracks[1].Steps[4].Active = true
		tracks[1].Steps[12].Active = true
	}
	if len(tracks) > 2 {
		eighths := rnd() > 0.5
		for i := 0; i < NumSteps; i++ {
			if eighths {
				tracks[2].Steps[i].Active = i%2 == 0
			} else {
				tracks[2].Steps[i].Active = rnd() > 0.3
			}
		}
	}
	for t := 3; t < len(tracks); t++ {
		for i := 0; i < NumSteps; i++ {
			if rnd() > 0.85 {
				tracks[t].Steps[i].Active = true
			}
		}
	}
}

// RandomizeKit picks a new sample of the same category for every track of
// a pattern
func (s *Store) RandomizeKit(id PatternID) {
	if !id.Valid() {
		return
	}
	s.mutate(func() bool {
		tracks := s.pattern(id).Tracks
		for i := range tracks {
			smp := RandomSample(s.rng, tracks[i].Category)
			tracks[i].Name = smp.Label
			tracks[i].SampleURL = smp.URL
		}
		return id == s.active
	})
}

// Song mode

// SongMode reports whether the chain drives the active pattern
func (s *Store) SongMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chain.Enabled()
}

// SetSongMode turns song mode on or off. Turning it on rewinds the chain
// and switches to its first pattern.
func (s *Store) SetSongMode(on bool) {
	s.mutate(func() bool {
		s.chain.SetEnabled(on)
		return on && s.jumpToChainStart()
	})
}

// jumpToChainStart makes chain[0] active; callers hold the write lock
func (s *Store) jumpToChainStart() bool {
	first, ok := s.chain.Current()
	if !ok || first.PatternID == s.active {
		return false
	}
	s.active = first.PatternID
	return true
}

// RewindSong restarts the chain from its first item if song mode is on
func (s *Store) RewindSong() {
	s.mutate(func() bool {
		if !s.chain.Enabled() {
			return false
		}
		s.chain.Rewind()
		return s.jumpToChainStart()
	})
}

// Chain returns a copy of the song chain
func (s *Store) Chain() []ChainItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chain.Items()
}

// ChainPosition returns the current chain index and bars played in it
func (s *Store) ChainPosition() (index, elapsed int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chain.Position()
}

// AddToChain appends a chain item
func (s *Store) AddToChain(id PatternID, bars int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chain.Append(ChainItem{PatternID: id, Bars: bars})
}

// RemoveFromChain deletes the item at index i
func (s *Store) RemoveFromChain(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chain.Remove(i)
}

// ClearChain empties the chain
func (s *Store) ClearChain() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chain.Clear()
}

// LoadSongChain replaces the chain
func (s *Store) LoadSongChain(items []ChainItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chain.Load(items)
}

// AdvanceChain counts a finished bar and switches pattern when the current
// chain item is done. Called by the scheduler after a bar's last triggers.
func (s *Store) AdvanceChain() {
	s.mutate(func() bool {
		next, switched := s.chain.Advance()
		if !switched {
			return false
		}
		debug.Log("chain", "switch pattern %d -> %d", s.active, next)
		s.active = next
		return true
	})
}
