package sequencer

// Roles indexes the tracks the fill generator and downbeat crash need.
// Slots are track indices into the pattern they were built from, -1 when
// no track fits.
type Roles struct {
	Kick  int
	Snare int
	Tom   int // first tom, else the second snare
	Crash int // first cymbal or track named "crash"
}

// NoRoles has every slot empty
var NoRoles = Roles{Kick: -1, Snare: -1, Tom: -1, Crash: -1}

// BuildRoles scans tracks once. Rebuild whenever the track list changes.
func BuildRoles(tracks []Track) Roles {
	r := NoRoles
	secondSnare := -1
	for i := range tracks {
		t := &tracks[i]
		switch t.Category {
		case CategoryKick:
			if r.Kick < 0 {
				r.Kick = i
			}
		case CategorySnare:
			if r.Snare < 0 {
				r.Snare = i
			} else if secondSnare < 0 {
				secondSnare = i
			}
		case CategoryTom:
			if r.Tom < 0 {
				r.Tom = i
			}
		}
		if r.Crash < 0 && t.IsCrash() {
			r.Crash = i
		}
	}
	if r.Tom < 0 {
		r.Tom = secondSnare
	}
	return r
}
