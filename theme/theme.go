package theme

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Role is a position on the palette gradient, 0 (dark) to 1 (bright)
type Role float64

const (
	RoleMuted   Role = 0.2 // purple-magenta
	RoleFG      Role = 0.4 // pink-purple (readable)
	RoleAccent  Role = 0.5 // vivid magenta
	RoleCursor  Role = 0.6 // rose pink
	RoleActive  Role = 0.7 // soft red
	RoleWarning Role = 0.8 // orange
	RoleSuccess Role = 1.0 // bright yellow
)

type Theme struct {
	Palette *Palette
	Symbols Symbols

	mu     sync.Mutex
	colors map[Role]lipgloss.Color
}

type Symbols struct {
	// Step grid (no cursor)
	StepEmpty    rune    // · inactive step
	StepLevels   [4]rune // velocity 1-4 of an active step
	StepPlayhead rune    // ▶ current playing, inactive

	// Step grid (with cursor)
	CursorEmpty  rune // ○ cursor on empty
	CursorActive rune // ◉ cursor on active

	// Pattern strip
	Solid rune // ■ active pattern
	Empty rune // □ other pattern
}

func New(palette *Palette) *Theme {
	return &Theme{
		Palette: palette,
		colors:  make(map[Role]lipgloss.Color),
		Symbols: Symbols{
			StepEmpty:    '·',
			StepLevels:   [4]rune{'░', '▒', '▓', '█'},
			StepPlayhead: '▶',

			CursorEmpty:  '○',
			CursorActive: '◉',

			Solid: '■',
			Empty: '□',
		},
	}
}

// Color returns the palette colour for a role. Lookups are cached since
// the view asks for the same few roles on every frame.
func (t *Theme) Color(r Role) lipgloss.Color {
	t.mu.Lock()
	defer t.mu.Unlock()
	if c, ok := t.colors[r]; ok {
		return c
	}
	c := t.Palette.Lookup(float64(r)).Hex()
	t.colors[r] = lipgloss.Color(c)
	return lipgloss.Color(c)
}

// Style returns a foreground style in the role's colour
func (t *Theme) Style(r Role) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Color(r))
}

// Level returns the colour for a 1-4 velocity level, brighter when louder
func (t *Theme) Level(level int) lipgloss.Color {
	level = min(max(level, 1), 4)
	return t.Color(RoleMuted + Role(level)*(RoleSuccess-RoleMuted)/4)
}

func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}
