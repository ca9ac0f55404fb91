package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"go-drummer/sequencer"
	"go-drummer/theme"
)

var caser = cases.Title(language.English)

// StepRow describes one track row of the step grid
type StepRow struct {
	Name     string
	Category sequencer.Category
	Steps    [sequencer.NumSteps]sequencer.StepData
	Selected bool
}

// RenderStepGrid renders the tracks as rows of 16 steps. playhead is the
// step being played (-1 when stopped); cursor is the edit column of the
// selected row.
func RenderStepGrid(th *theme.Theme, rows []StepRow, playhead, cursor int) string {
	catStyle := th.Style(theme.RoleMuted).Width(7)
	nameStyle := th.Style(theme.RoleFG).Width(16)
	selStyle := nameStyle.Foreground(th.Color(theme.RoleCursor))
	dim := th.Style(theme.RoleMuted)
	head := th.Style(theme.RoleAccent)
	cur := th.Style(theme.RoleCursor)

	var lines []string
	for _, row := range rows {
		var line strings.Builder
		line.WriteString(catStyle.Render(CategoryLabel(row.Category)))
		name := truncate(row.Name, 15)
		if row.Selected {
			line.WriteString(selStyle.Render(name))
		} else {
			line.WriteString(nameStyle.Render(name))
		}

		for i, sd := range row.Steps {
			if i > 0 && i%4 == 0 {
				line.WriteString(" ")
			}
			line.WriteString(renderStep(th, sd, i == playhead, row.Selected && i == cursor, dim, head, cur))
		}
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

func renderStep(th *theme.Theme, sd sequencer.StepData, playing, cursor bool, dim, head, cur lipgloss.Style) string {
	sym := th.Symbols
	switch {
	case cursor && sd.Active:
		return cur.Render(string(sym.CursorActive))
	case cursor:
		return cur.Render(string(sym.CursorEmpty))
	case sd.Active:
		level := min(max(sd.Velocity, 1), 4)
		style := lipgloss.NewStyle().Foreground(th.Level(level))
		if playing {
			style = head
		}
		mark := string(sym.StepLevels[level-1])
		if sd.Hits() > 1 {
			mark = fmt.Sprint(sd.Hits())
		}
		return style.Render(mark)
	case playing:
		return head.Render(string(sym.StepPlayhead))
	}
	return dim.Render(string(sym.StepEmpty))
}

// CategoryLabel returns the display name of a category ("hihat" -> "Hihat")
func CategoryLabel(cat sequencer.Category) string {
	return caser.String(string(cat))
}

// RenderPatternStrip renders the six pattern slots, marking the active one
func RenderPatternStrip(th *theme.Theme, active sequencer.PatternID) string {
	on := th.Style(theme.RoleActive)
	off := th.Style(theme.RoleMuted)
	var parts []string
	for _, id := range sequencer.PatternIDs() {
		label := fmt.Sprintf("%d %s", id, sequencer.PatternLabels[id])
		if id == active {
			parts = append(parts, on.Render(string(th.Symbols.Solid)+" "+label))
		} else {
			parts = append(parts, off.Render(string(th.Symbols.Empty)+" "+label))
		}
	}
	return strings.Join(parts, "  ")
}

// RenderChain renders the song chain with the current item highlighted
func RenderChain(th *theme.Theme, items []sequencer.ChainItem, index, elapsed int) string {
	if len(items) == 0 {
		return th.Style(theme.RoleMuted).Render("(empty chain)")
	}
	on := th.Style(theme.RoleSuccess)
	off := th.Style(theme.RoleFG)
	var parts []string
	for i, it := range items {
		if i == index {
			parts = append(parts, on.Render(fmt.Sprintf("[%d:%d/%d]", it.PatternID, elapsed+1, it.Bars)))
		} else {
			parts = append(parts, off.Render(fmt.Sprintf("%d:%d", it.PatternID, it.Bars)))
		}
	}
	return strings.Join(parts, " ")
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
