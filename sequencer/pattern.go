package sequencer

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	NumPatterns = 6
	NumSteps    = 16
)

// Velocity and ratchet share the same 1-4 scale
const (
	MinLevel = 1
	MaxLevel = 4

	DefaultVelocity = 3
)

// PatternID identifies one of the six patterns (1-6)
type PatternID int

// Valid reports whether id names one of the six patterns
func (id PatternID) Valid() bool {
	return id >= 1 && id <= NumPatterns
}

// PatternIDs lists all pattern ids in order
func PatternIDs() []PatternID {
	return []PatternID{1, 2, 3, 4, 5, 6}
}

// LoopState is the display-only loop length tag of a pattern
type LoopState string

const (
	LoopOff LoopState = "L"
	Loop2   LoopState = "2"
	Loop4   LoopState = "4"
	Loop8   LoopState = "8"
	Loop16  LoopState = "16"
)

// Category is the kind of drum sound a track plays
type Category string

const (
	CategoryKick   Category = "kick"
	CategorySnare  Category = "snare"
	CategoryHihat  Category = "hihat"
	CategoryPerc   Category = "perc"
	CategoryClap   Category = "clap"
	CategoryCymbal Category = "cymbal"
	CategoryTom    Category = "tom"
)

// Categories lists every category in display order
func Categories() []Category {
	return []Category{
		CategoryKick, CategorySnare, CategoryHihat, CategoryPerc,
		CategoryClap, CategoryCymbal, CategoryTom,
	}
}

// StepData is a single step slot
type StepData struct {
	Active   bool `json:"active"`
	Velocity int  `json:"velocity"` // 1-4
	Ratchet  int  `json:"ratchet"`  // 1-4 sub-triggers
	Triplet  bool `json:"triplet"`  // UI flag, no timing effect
}

// Level returns the velocity normalized to 0-1
func (s StepData) Level() float64 {
	return float64(clampLevel(s.Velocity)) / MaxLevel
}

// Hits returns the number of sub-triggers, defaulting to 1 when unset
func (s StepData) Hits() int {
	if s.Ratchet <= 0 {
		return 1
	}
	return clampLevel(s.Ratchet)
}

// Track is one row of a pattern. The id is shared by the matching row in
// every other pattern.
type Track struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Category  Category           `json:"category"`
	SampleURL string             `json:"sampleUrl"`
	Gain      float64            `json:"gain"` // 0-1
	Pan       float64            `json:"pan"`  // -1 to 1
	Steps     [NumSteps]StepData `json:"steps"`
}

// UnmarshalJSON rejects step lists that are not exactly NumSteps long
func (t *Track) UnmarshalJSON(data []byte) error {
	type plain Track
	var raw struct {
		plain
		Steps []StepData `json:"steps"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw.Steps) != NumSteps {
		return fmt.Errorf("%w: track %q has %d steps, want %d", ErrBadPattern, raw.ID, len(raw.Steps), NumSteps)
	}
	*t = Track(raw.plain)
	copy(t.Steps[:], raw.Steps)
	return nil
}

// IsCrash reports whether the track can serve as the downbeat crash
func (t *Track) IsCrash() bool {
	return t.Category == CategoryCymbal || strings.Contains(strings.ToLower(t.Name), "crash")
}

// normalize clamps every numeric field into range
func (t *Track) normalize() {
	t.Gain = clampFloat(t.Gain, 0, 1)
	t.Pan = clampFloat(t.Pan, -1, 1)
	for i := range t.Steps {
		t.Steps[i].Velocity = clampLevel(t.Steps[i].Velocity)
		t.Steps[i].Ratchet = clampLevel(t.Steps[i].Ratchet)
	}
}

// Pattern holds the tracks of one pattern slot
type Pattern struct {
	ID        PatternID `json:"id"`
	Tracks    []Track   `json:"tracks"`
	LoopState LoopState `json:"loopState"`
}

// Clone returns a deep copy (steps are arrays, so copying the slice is enough)
func (p *Pattern) Clone() Pattern {
	c := *p
	c.Tracks = make([]Track, len(p.Tracks))
	copy(c.Tracks, p.Tracks)
	return c
}

// TrackIndex returns the index of the track with the given id, or -1
func (p *Pattern) TrackIndex(id string) int {
	for i := range p.Tracks {
		if p.Tracks[i].ID == id {
			return i
		}
	}
	return -1
}

// ChainItem is one section of a song chain
type ChainItem struct {
	PatternID PatternID `json:"patternId" yaml:"patternId"`
	Bars      int       `json:"bars" yaml:"bars"`
}

// EmptySteps returns 16 inactive steps with default velocity
func EmptySteps() [NumSteps]StepData {
	var steps [NumSteps]StepData
	for i := range steps {
		steps[i] = StepData{Velocity: DefaultVelocity, Ratchet: 1}
	}
	return steps
}

// StepsFromString builds steps from a 16-char grid string, '1' = hit
func StepsFromString(grid string) [NumSteps]StepData {
	steps := EmptySteps()
	for i := 0; i < NumSteps && i < len(grid); i++ {
		if grid[i] == '1' {
			steps[i].Active = true
		}
	}
	return steps
}

func clampLevel(v int) int {
	if v < MinLevel {
		return MinLevel
	}
	if v > MaxLevel {
		return MaxLevel
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
