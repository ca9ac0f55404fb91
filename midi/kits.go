package midi

import (
	"strings"

	"go-drummer/sequencer"
)

// Slot is a drum voice of a hardware or GM kit
type Slot int

const (
	SlotKick Slot = iota
	SlotSnare
	SlotClosedHat
	SlotOpenHat
	SlotLowTom
	SlotMidTom
	SlotHighTom
	SlotCrash
	SlotRide
	SlotClap
	SlotRimshot
	SlotCowbell
	SlotClave
	SlotMaracas
	SlotLowConga
	SlotHighConga
	NumSlots
)

// DrumKit maps the drum slots to MIDI notes
type DrumKit struct {
	Name  string
	Notes [NumSlots]uint8
}

// Kits contains all available drum kit mappings
var Kits = map[string]DrumKit{
	"gm": {
		Name:  "General MIDI",
		Notes: [NumSlots]uint8{36, 38, 42, 46, 41, 43, 45, 49, 51, 39, 37, 56, 75, 70, 64, 63},
	},
	"rd8": {
		Name:  "Behringer RD-8",
		Notes: [NumSlots]uint8{36, 40, 42, 46, 45, 48, 50, 49, 51, 39, 37, 56, 75, 70, 64, 63},
	},
	"tr8s": {
		Name:  "Roland TR-8S",
		Notes: [NumSlots]uint8{36, 38, 42, 46, 41, 43, 45, 49, 51, 39, 37, 56, 75, 70, 62, 63},
	},
}

// DefaultKit is the default kit name
const DefaultKit = "gm"

// KitNames returns the list of available kit names
func KitNames() []string {
	return []string{"gm", "rd8", "tr8s"}
}

// GetKit returns a kit by name, defaulting to GM if not found
func GetKit(name string) DrumKit {
	if kit, ok := Kits[name]; ok {
		return kit
	}
	return Kits[DefaultKit]
}

// SlotFor picks the drum slot a track plays, from its category and the
// words in its sample name
func SlotFor(t sequencer.Track) Slot {
	name := strings.ToLower(t.Name)
	has := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(name, w) {
				return true
			}
		}
		return false
	}

	switch t.Category {
	case sequencer.CategoryKick:
		return SlotKick
	case sequencer.CategorySnare:
		return SlotSnare
	case sequencer.CategoryHihat:
		if has("open") {
			return SlotOpenHat
		}
		return SlotClosedHat
	case sequencer.CategoryTom:
		switch {
		case has("high", "hi "):
			return SlotHighTom
		case has("low", "lo "):
			return SlotLowTom
		}
		return SlotMidTom
	case sequencer.CategoryCymbal:
		if has("ride") {
			return SlotRide
		}
		return SlotCrash
	case sequencer.CategoryClap:
		return SlotClap
	}

	switch {
	case has("rim"):
		return SlotRimshot
	case has("clave"):
		return SlotClave
	case has("maraca", "shaker"):
		return SlotMaracas
	case has("conga"):
		return SlotLowConga
	}
	return SlotCowbell
}

// Note returns the MIDI note a track plays on this kit
func (k DrumKit) Note(t sequencer.Track) uint8 {
	return k.Notes[SlotFor(t)]
}
