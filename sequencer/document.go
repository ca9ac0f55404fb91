package sequencer

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNoPatterns is returned when an imported document has no patterns
	ErrNoPatterns = errors.New("document has no patterns")
	// ErrBadPattern is returned when a pattern slot is missing or malformed
	ErrBadPattern = errors.New("document pattern is invalid")
)

// Document is the persisted form of a session: settings plus all six
// patterns. Optional fields are pointers so missing values can take their
// defaults on import.
type Document struct {
	Tempo          *int                  `json:"tempo,omitempty"`
	MasterVolume   *float64              `json:"masterVolume,omitempty"`
	TapeDistortion *float64              `json:"tapeDistortion,omitempty"`
	Swing          *float64              `json:"swing,omitempty"`
	Jank           *int                  `json:"jank,omitempty"`
	AutoFill       *int                  `json:"autoFill,omitempty"`
	Patterns       map[PatternID]Pattern `json:"patterns"`
}

// Export captures the current settings and patterns
func (s *Store) Export() Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := s.settings
	doc := Document{
		Tempo:          &st.Tempo,
		MasterVolume:   &st.MasterVolume,
		TapeDistortion: &st.TapeDistortion,
		Swing:          &st.Swing,
		Jank:           &st.Jank,
		AutoFill:       &st.AutoFill,
		Patterns:       make(map[PatternID]Pattern, NumPatterns),
	}
	for i := range s.patterns {
		p := s.patterns[i].Clone()
		doc.Patterns[p.ID] = p
	}
	return doc
}

// settings resolves the document's settings against the defaults
func (d *Document) settings() Settings {
	st := DefaultSettings()
	if d.Tempo != nil {
		st.Tempo = ClampTempo(*d.Tempo)
	}
	if d.MasterVolume != nil {
		st.MasterVolume = clampFloat(*d.MasterVolume, 0, 1)
	}
	if d.TapeDistortion != nil {
		st.TapeDistortion = clampFloat(*d.TapeDistortion, 0, 1)
	}
	if d.Swing != nil {
		st.Swing = clampFloat(*d.Swing, 0, 1)
	}
	if d.Jank != nil {
		st.Jank = ClampJank(*d.Jank)
	}
	if d.AutoFill != nil {
		st.AutoFill = NormalizeAutoFill(*d.AutoFill)
	}
	return st
}

// validate checks that all six patterns are present and share one track
// layout
func (d *Document) validate() error {
	if len(d.Patterns) == 0 {
		return ErrNoPatterns
	}
	var layout []string
	for _, id := range PatternIDs() {
		p, ok := d.Patterns[id]
		if !ok {
			return fmt.Errorf("%w: pattern %d missing", ErrBadPattern, id)
		}
		ids := make([]string, len(p.Tracks))
		seen := make(map[string]bool, len(p.Tracks))
		for i, t := range p.Tracks {
			if t.ID == "" {
				return fmt.Errorf("%w: pattern %d track %d has no id", ErrBadPattern, id, i)
			}
			if seen[t.ID] {
				return fmt.Errorf("%w: pattern %d repeats track %s", ErrBadPattern, id, t.ID)
			}
			seen[t.ID] = true
			ids[i] = t.ID
		}
		if layout == nil {
			layout = ids
			continue
		}
		if len(ids) != len(layout) {
			return fmt.Errorf("%w: pattern %d has %d tracks, want %d", ErrBadPattern, id, len(ids), len(layout))
		}
		for i := range ids {
			if ids[i] != layout[i] {
				return fmt.Errorf("%w: pattern %d track %d is %s, want %s", ErrBadPattern, id, i, ids[i], layout[i])
			}
		}
	}
	return nil
}

// Import replaces settings and patterns from a document. A rejected
// document leaves the store untouched.
func (s *Store) Import(doc Document) error {
	if err := doc.validate(); err != nil {
		return err
	}
	st := doc.settings()

	var patterns [NumPatterns]Pattern
	for i, id := range PatternIDs() {
		p := doc.Patterns[id]
		p = p.Clone()
		p.ID = id
		if p.LoopState == "" {
			p.LoopState = LoopOff
		}
		for t := range p.Tracks {
			p.Tracks[t].normalize()
		}
		patterns[i] = p
	}

	s.mutate(func() bool {
		st.Metronome = s.settings.Metronome
		s.settings = st
		s.patterns = patterns
		return true
	})
	return nil
}

// MarshalDocument encodes the store as indented JSON
func (s *Store) MarshalDocument() ([]byte, error) {
	return json.MarshalIndent(s.Export(), "", "  ")
}

// UnmarshalDocument decodes JSON and imports it
func (s *Store) UnmarshalDocument(data []byte) error {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return s.Import(doc)
}
