package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"go-drummer/config"
	"go-drummer/debug"
	"go-drummer/midi"
	"go-drummer/sequencer"
	"go-drummer/theme"
	"go-drummer/widgets"
)

const chainBars = 4

type Model struct {
	Manager *sequencer.Manager
	Watcher *midi.PortWatcher // may be nil
	Pads    *midi.PadInput    // may be nil
	Theme   *theme.Theme
	Config  *config.Config

	cursor   int // step column
	track    int // selected row
	status   string
	port     string
	showHelp bool
	quitting bool

	patternPresets []sequencer.PatternPreset
	songPresets    []sequencer.SongPreset
	nextPattern    int
	nextSong       int
}

type UpdateMsg struct{}

type PortEventMsg midi.PortEvent

type PadHitMsg midi.Hit

func NewModel(manager *sequencer.Manager, watcher *midi.PortWatcher, pads *midi.PadInput, th *theme.Theme, cfg *config.Config) Model {
	m := Model{
		Manager: manager,
		Watcher: watcher,
		Pads:    pads,
		Theme:   th,
		Config:  cfg,
	}
	var err error
	if m.patternPresets, err = sequencer.PatternPresets(); err != nil {
		debug.Log("config", "pattern presets: %v", err)
	}
	if m.songPresets, err = sequencer.SongPresets(); err != nil {
		debug.Log("config", "song presets: %v", err)
	}
	return m
}

func ListenForUpdates(manager *sequencer.Manager) tea.Cmd {
	return func() tea.Msg {
		<-manager.UpdateChan
		return UpdateMsg{}
	}
}

func ListenForPorts(w *midi.PortWatcher) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-w.Events()
		if !ok {
			return nil
		}
		return PortEventMsg(event)
	}
}

func ListenForPads(in *midi.PadInput) tea.Cmd {
	return func() tea.Msg {
		hit, ok := <-in.Hits()
		if !ok {
			return nil
		}
		return PadHitMsg(hit)
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{ListenForUpdates(m.Manager)}
	if m.Watcher != nil {
		cmds = append(cmds, ListenForPorts(m.Watcher))
	}
	if m.Pads != nil {
		cmds = append(cmds, ListenForPads(m.Pads))
	}
	return tea.Batch(cmds...)
}

func (m Model) store() *sequencer.Store {
	return m.Manager.Store()
}

// selected returns the track under the cursor row
func (m Model) selected() (sequencer.Pattern, *sequencer.Track) {
	p, _ := m.store().Pattern(m.store().ActivePattern())
	if len(p.Tracks) == 0 {
		return p, nil
	}
	idx := min(max(m.track, 0), len(p.Tracks)-1)
	return p, &p.Tracks[idx]
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg.String())

	case UpdateMsg:
		return m, ListenForUpdates(m.Manager)

	case PortEventMsg:
		switch msg.Type {
		case midi.PortConnected:
			m.port = msg.Name
			m.status = "connected " + msg.Name
		case midi.PortDisconnected:
			m.port = ""
			m.status = "disconnected " + msg.Name
		}
		return m, ListenForPorts(m.Watcher)

	case PadHitMsg:
		m.recordHit(midi.Hit(msg))
		return m, ListenForPads(m.Pads)
	}

	return m, nil
}

func (m Model) handleKey(key string) (tea.Model, tea.Cmd) {
	s := m.store()
	m.status = ""

	switch key {
	case "q", "ctrl+c":
		m.quitting = true
		m.Manager.Stop()
		m.saveConfig()
		return m, tea.Quit

	case "?":
		m.showHelp = !m.showHelp

	case "p":
		m.Manager.TogglePlay()

	case "+", "=":
		m.Manager.SetTempo(s.Settings().Tempo + 5)

	case "-", "_":
		m.Manager.SetTempo(s.Settings().Tempo - 5)

	case "1", "2", "3", "4", "5", "6":
		s.SetActivePattern(sequencer.PatternID(key[0] - '0'))

	case "h", "left":
		m.cursor = (m.cursor + sequencer.NumSteps - 1) % sequencer.NumSteps

	case "l", "right":
		m.cursor = (m.cursor + 1) % sequencer.NumSteps

	case "j", "down":
		if p, _ := m.selected(); m.track < len(p.Tracks)-1 {
			m.track++
		}

	case "k", "up":
		if m.track > 0 {
			m.track--
		}

	case " ":
		if p, t := m.selected(); t != nil {
			s.ToggleStep(p.ID, t.ID, m.cursor, sequencer.DefaultVelocity, 1, false)
		}

	case "v":
		if p, t := m.selected(); t != nil && t.Steps[m.cursor].Active {
			sd := t.Steps[m.cursor]
			sd.Velocity = sd.Velocity%sequencer.MaxLevel + 1
			s.SetStep(p.ID, t.ID, m.cursor, sd)
		}

	case "r":
		if p, t := m.selected(); t != nil && t.Steps[m.cursor].Active {
			sd := t.Steps[m.cursor]
			sd.Ratchet = sd.Hits()%sequencer.MaxLevel + 1
			s.SetStep(p.ID, t.ID, m.cursor, sd)
		}

	case "f":
		m.status = fmt.Sprintf("auto fill %s", fillLabel(s.CycleAutoFill()))

	case "m":
		if s.ToggleMetronome() {
			m.status = "metronome on"
		} else {
			m.status = "metronome off"
		}

	case "s":
		s.SetSongMode(!s.SongMode())

	case "c":
		s.AddToChain(s.ActivePattern(), chainBars)

	case "C":
		s.ClearChain()

	case "[":
		s.SetJank(s.Settings().Jank - 1)

	case "]":
		s.SetJank(s.Settings().Jank + 1)

	case "d":
		m.status = fmt.Sprintf("copied to pattern %d", s.DuplicatePattern())

	case "g":
		s.GeneratePattern()

	case "K":
		s.RandomizeKit(s.ActivePattern())

	case "a":
		s.AddTrack()

	case "x":
		if _, t := m.selected(); t != nil {
			s.RemoveTrack(t.ID)
			if m.track > 0 {
				m.track--
			}
		}

	case "n":
		if len(m.patternPresets) > 0 {
			pr := m.patternPresets[m.nextPattern%len(m.patternPresets)]
			m.nextPattern++
			s.LoadPreset(pr)
			m.Manager.SyncClock()
			m.track = 0
			m.status = "preset " + pr.Name
		}

	case "N":
		if len(m.songPresets) > 0 {
			pr := m.songPresets[m.nextSong%len(m.songPresets)]
			m.nextSong++
			s.LoadSongPreset(pr)
			m.Manager.SyncClock()
			m.track = 0
			m.status = "song " + pr.Name
		}

	case "w":
		name, err := sequencer.SaveProject(s, m.projectName(), "")
		if err != nil {
			m.status = "save failed: " + err.Error()
		} else {
			m.status = "saved " + name
		}

	case "o":
		if err := sequencer.LoadProject(s, m.projectName(), ""); err != nil {
			m.status = "load failed: " + err.Error()
		} else {
			m.Manager.SyncClock()
			m.track = 0
			m.status = "loaded " + m.projectName()
		}
	}

	return m, nil
}

// recordHit writes a pad strike into the active pattern, at the playing
// step while the transport runs and at the cursor otherwise
func (m *Model) recordHit(hit midi.Hit) {
	s := m.store()
	step := m.cursor
	if m.Manager.Playing() {
		step = m.Manager.Position().Step
	}
	s.SetStep(s.ActivePattern(), hit.TrackID, step, sequencer.StepData{
		Active:   true,
		Velocity: hit.Level,
		Ratchet:  1,
	})
}

func (m Model) projectName() string {
	if m.Config != nil && m.Config.UI.LastProject != "" {
		return m.Config.UI.LastProject
	}
	return "untitled"
}

func (m Model) saveConfig() {
	if m.Config == nil {
		return
	}
	st := m.store().Settings()
	m.Config.UI.LastTempo = st.Tempo
	m.Config.UI.LastJank = st.Jank
	if err := m.Config.Save(); err != nil {
		debug.Log("config", "save: %v", err)
	}
}

func fillLabel(n int) string {
	if n == 0 {
		return "off"
	}
	return fmt.Sprintf("every %d", n)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	s := m.store()
	st := s.Settings()
	pos := m.Manager.Position()
	playing := m.Manager.Playing()

	headerStyle := m.Theme.Style(theme.RoleAccent)
	dimStyle := m.Theme.Style(theme.RoleMuted)
	warnStyle := m.Theme.Style(theme.RoleWarning)

	playState := "STOP"
	playhead := -1
	if playing {
		playState = "PLAY"
		playhead = pos.Step
	}
	fill := ""
	if pos.Fill && playing {
		fill = " FILL"
	}
	port := "no port"
	if m.port != "" {
		port = m.port
	}

	header := headerStyle.Render(fmt.Sprintf(
		"go-drummer  %s  %3dbpm  bar:%03d step:%02d  fill:%s  jank:%d  swing:%.2f%s",
		playState, st.Tempo, pos.Bar, pos.Step+1, fillLabel(st.AutoFill), st.Jank, st.Swing, fill))

	p, _ := m.selected()
	rows := make([]widgets.StepRow, len(p.Tracks))
	for i, t := range p.Tracks {
		rows[i] = widgets.StepRow{Name: t.Name, Category: t.Category, Steps: t.Steps, Selected: i == m.track}
	}
	// the playhead belongs to whatever pattern is playing
	if pos.Pattern != p.ID {
		playhead = -1
	}

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n")
	out.WriteString(dimStyle.Render(port))
	out.WriteString("\n\n")
	out.WriteString(widgets.RenderPatternStrip(m.Theme, p.ID))
	out.WriteString("\n\n")
	out.WriteString(widgets.RenderStepGrid(m.Theme, rows, playhead, m.cursor))
	out.WriteString("\n\n")

	songLabel := "song: off  "
	if s.SongMode() {
		songLabel = "song: on   "
	}
	idx, elapsed := s.ChainPosition()
	out.WriteString(dimStyle.Render(songLabel))
	out.WriteString(widgets.RenderChain(m.Theme, s.Chain(), idx, elapsed))
	out.WriteString("\n\n")

	if m.showHelp {
		out.WriteString(widgets.RenderKeyHelp(keyHelp))
	} else {
		out.WriteString(dimStyle.Render("p:play  hjkl:move  space:step  v/r:vel/ratchet  1-6:pattern  ?:help  q:quit"))
	}
	if m.status != "" {
		out.WriteString("\n")
		out.WriteString(warnStyle.Render(m.status))
	}
	return out.String()
}

var keyHelp = []widgets.KeySection{
	{Title: "Transport", Keys: []widgets.KeyBinding{
		{Key: "p", Desc: "play / stop"},
		{Key: "+ / -", Desc: "tempo ±5"},
		{Key: "[ / ]", Desc: "jank ±1"},
		{Key: "f", Desc: "auto fill off / 4 / 8"},
		{Key: "m", Desc: "metronome"},
	}},
	{Title: "Edit", Keys: []widgets.KeyBinding{
		{Key: "h j k l", Desc: "move cursor"},
		{Key: "space", Desc: "toggle step"},
		{Key: "v", Desc: "cycle velocity"},
		{Key: "r", Desc: "cycle ratchet"},
		{Key: "a / x", Desc: "add / remove track"},
		{Key: "g", Desc: "random beat"},
		{Key: "K", Desc: "random kit"},
		{Key: "n", Desc: "next beat preset"},
	}},
	{Title: "Patterns", Keys: []widgets.KeyBinding{
		{Key: "1-6", Desc: "select pattern"},
		{Key: "d", Desc: "duplicate into next slot"},
		{Key: "s", Desc: "song mode"},
		{Key: "c / C", Desc: "append to chain / clear chain"},
		{Key: "N", Desc: "next song preset"},
	}},
	{Title: "Project", Keys: []widgets.KeyBinding{
		{Key: "w", Desc: "save"},
		{Key: "o", Desc: "load latest save"},
		{Key: "q", Desc: "quit"},
	}},
}
