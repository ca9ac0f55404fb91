package main

import (
	"fmt"
	"io"
	"sort"
	"text/template"
	"time"

	"github.com/Masterminds/sprig"

	"go-drummer/sequencer"
)

// defaultFormat prints one trigger per line. Templates get sprig's
// function map, so e.g. {{.Category | upper}} works.
const defaultFormat = `{{printf "%10.3f" .Ms}}ms  ` +
	`{{if .Click}}{{if .Accent}}CLICK{{else}}click{{end}}` +
	`{{else}}bar {{printf "%3d" .Bar}} step {{printf "%2d" .Step}}  vel {{printf "%.2f" .Velocity}}  {{.Category | upper | printf "%-6s"}} {{.Name}}{{end}}`

// line is the data a format template sees for one trigger
type line struct {
	At       time.Duration
	Ms       float64
	Bar      int // 1-based
	Step     int // 1-16
	Velocity float64
	TrackID  string
	Category string
	Name     string
	Click    bool
	Accent   bool
}

func newLineTemplate(format string) (*template.Template, error) {
	tmpl, err := template.New("line").Funcs(sprig.TxtFuncMap()).Parse(format)
	if err != nil {
		return nil, fmt.Errorf("parse format: %w", err)
	}
	return tmpl, nil
}

// timeline merges notes and clicks in time order, clicks first on a tie. Tracks are looked up in
// every pattern since song mode switches between them.
func timeline(store *sequencer.Store, log *sequencer.NoteLog, sixteenth time.Duration) []line {
	tracks := make(map[string]sequencer.Track)
	for _, id := range sequencer.PatternIDs() {
		p, _ := store.Pattern(id)
		for _, t := range p.Tracks {
			tracks[t.ID] = t
		}
	}

	var lines []line
	for _, c := range log.Clicks() {
		tick := max(int(c.At/sixteenth), 0)
		lines = append(lines, line{
			At:       c.At,
			Bar:      tick/sequencer.NumSteps + 1,
			Step:     tick%sequencer.NumSteps + 1,
			Velocity: c.Velocity,
			Click:    true,
			Accent:   c.Accent,
		})
	}
	for _, n := range log.Sorted() {
		tick := max(int(n.At/sixteenth), 0) // jank can pull the first hit early
		t := tracks[n.TrackID]
		lines = append(lines, line{
			At:       n.At,
			Bar:      tick/sequencer.NumSteps + 1,
			Step:     tick%sequencer.NumSteps + 1,
			Velocity: n.Velocity,
			TrackID:  n.TrackID,
			Category: string(t.Category),
			Name:     t.Name,
		})
	}
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].At < lines[j].At })
	for i := range lines {
		lines[i].Ms = float64(lines[i].At) / float64(time.Millisecond)
	}
	return lines
}

func writeLines(w io.Writer, tmpl *template.Template, lines []line) error {
	for _, l := range lines {
		if err := tmpl.Execute(w, l); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}
