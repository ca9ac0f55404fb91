package sequencer

import "time"

// Fill velocities
const (
	fillSnareVelocity  = 0.6
	fillGhostVelocity  = 0.4
	fillRollBase       = 0.8
	fillRollStep       = 0.05
	fillFlamVelocity   = 0.6
	fillKickVelocity   = 0.8
	crashVelocity      = 1.0
	fillFirstStep      = 8
	fillSecondBeatStep = 12
)

// FillGenerator builds the drum break that replaces steps 8-15 of a fill bar
type FillGenerator struct{}

// Generate returns the fill notes for one step. Roles that have no track
// are skipped. sixteenth is the step length at the current tempo.
func (FillGenerator) Generate(step int, at, sixteenth time.Duration, tracks []Track, roles Roles) []Note {
	var notes []Note
	half := sixteenth / 2

	switch {
	case step >= fillFirstStep && step < fillSecondBeatStep:
		// beat 3: snare with ghost notes on the off sixteenths
		if roles.Snare >= 0 {
			id := tracks[roles.Snare].ID
			notes = append(notes, Note{TrackID: id, Velocity: fillSnareVelocity, At: at})
			if step%2 == 1 {
				notes = append(notes, Note{TrackID: id, Velocity: fillGhostVelocity, At: at + half})
			}
		}

	case step >= fillSecondBeatStep && step < NumSteps:
		// beat 4: crescendo roll on toms (or snare), kick on the eighths
		target := roles.Tom
		if target < 0 {
			target = roles.Snare
		}
		if target >= 0 {
			id := tracks[target].ID
			vel := fillRollBase + float64(step-fillSecondBeatStep)*fillRollStep
			notes = append(notes, Note{TrackID: id, Velocity: vel, At: at})
			if step >= 14 {
				notes = append(notes, Note{TrackID: id, Velocity: fillFlamVelocity, At: at + half})
			}
		}
		if roles.Kick >= 0 && step%2 == 0 {
			notes = append(notes, Note{TrackID: tracks[roles.Kick].ID, Velocity: fillKickVelocity, At: at})
		}
	}

	return notes
}
