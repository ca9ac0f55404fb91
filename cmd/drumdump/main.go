package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"go-drummer/clock"
	"go-drummer/config"
	"go-drummer/debug"
	"go-drummer/midi"
	"go-drummer/sequencer"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	var err error
	switch os.Args[1] {
	case "render":
		err = render(os.Args[2:])
	case "play":
		err = play(os.Args[2:])
	case "ports":
		err = listPorts()
	case "presets":
		err = listPresets()
	default:
		usage()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "drumdump: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("drumdump - run the drum engine without the UI")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  render  - Print every trigger of N bars (manual clock)")
	fmt.Println("  play    - Play N bars on a MIDI port in real time")
	fmt.Println("  ports   - List MIDI output ports")
	fmt.Println("  presets - List built-in beats and songs")
}

type engineFlags struct {
	bars      *int
	tempo     *int
	jank      *int
	autoFill  *int
	seed      *int64
	preset    *string
	song      *string
	metronome *bool
	log       *string
}

func addEngineFlags(fs *flag.FlagSet) engineFlags {
	return engineFlags{
		bars:      fs.Int("bars", 4, "bars to run"),
		tempo:     fs.Int("tempo", 0, "tempo in BPM (0 = preset or default)"),
		jank:      fs.Int("jank", 0, "humanization 0-9"),
		autoFill:  fs.Int("autofill", 0, "fill every N bars (0, 4, 8)"),
		seed:      fs.Int64("seed", 1, "random seed"),
		preset:    fs.String("preset", "", "beat preset name"),
		song:      fs.String("song", "", "song preset name (enables song mode)"),
		metronome: fs.Bool("metronome", false, "play the click"),
		log:       fs.String("log", "", "log these categories to stderr, e.g. tick,chain (\"all\" for every one)"),
	}
}

// buildStore sets up a store from the flags
func (f engineFlags) buildStore() (*sequencer.Store, error) {
	if *f.log != "" {
		debug.SetOutput(os.Stderr)
		if *f.log != "all" {
			debug.Only(*f.log)
		}
	}

	rng := sequencer.NewSeededRandom(*f.seed)
	store := sequencer.NewStore(rng)

	if *f.preset != "" {
		presets, err := sequencer.PatternPresets()
		if err != nil {
			return nil, err
		}
		p, ok := findPreset(presets, *f.preset, func(p sequencer.PatternPreset) string { return p.Name })
		if !ok {
			return nil, fmt.Errorf("no beat preset %q", *f.preset)
		}
		store.LoadPreset(p)
	}
	if *f.song != "" {
		songs, err := sequencer.SongPresets()
		if err != nil {
			return nil, err
		}
		p, ok := findPreset(songs, *f.song, func(p sequencer.SongPreset) string { return p.Name })
		if !ok {
			return nil, fmt.Errorf("no song preset %q", *f.song)
		}
		store.LoadSongPreset(p)
		store.SetSongMode(true)
	}

	if *f.tempo > 0 {
		store.SetTempo(*f.tempo)
	}
	store.SetJank(*f.jank)
	store.SetAutoFill(*f.autoFill)
	if *f.metronome {
		store.ToggleMetronome()
	}
	return store, nil
}

func findPreset[T any](list []T, name string, nameOf func(T) string) (T, bool) {
	for _, p := range list {
		if strings.EqualFold(nameOf(p), name) {
			return p, true
		}
	}
	var zero T
	return zero, false
}

func render(args []string) error {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	ef := addEngineFlags(fs)
	format := fs.String("format", defaultFormat, "Go template for each trigger line (sprig functions available)")
	fs.Parse(args)

	tmpl, err := newLineTemplate(*format)
	if err != nil {
		return err
	}
	store, err := ef.buildStore()
	if err != nil {
		return err
	}

	lines := renderBars(store, *ef.bars, *ef.seed)
	st := store.Settings()
	fmt.Printf("# tempo=%d jank=%d autofill=%d bars=%d\n", st.Tempo, st.Jank, st.AutoFill, *ef.bars)
	return writeLines(os.Stdout, tmpl, lines)
}

// renderBars runs the engine on a manual clock and returns every trigger
func renderBars(store *sequencer.Store, bars int, seed int64) []line {
	clk := clock.NewManual()
	log := &sequencer.NoteLog{}
	store.SetRegistry(log)
	manager := sequencer.NewManager(store, clk, log, log, sequencer.NewHumanizer(sequencer.NewSeededRandom(seed)))

	manager.Play()
	clk.AdvanceBars(bars)
	manager.Stop()

	return timeline(store, log, sequencer.SixteenthDuration(store.Settings().Tempo))
}

func play(args []string) error {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	ef := addEngineFlags(fs)
	port := fs.String("port", "", "output port name (substring, default from config)")
	fs.Parse(args)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if *port != "" {
		cfg.Output.PortName = *port
	}

	store, err := ef.buildStore()
	if err != nil {
		return err
	}

	clk := clock.NewRealtime(time.Duration(cfg.Engine.LookaheadMS) * time.Millisecond)
	out := midi.NewOutput(clk, cfg.Output.Channel, cfg.Output.Kit)
	store.SetRegistry(out)
	out.UpdateTracks(store.Snapshot().Tracks)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	watcher := midi.NewPortWatcher(cfg.Output.PortName, out)
	go watcher.Run(ctx)

	select {
	case ev := <-watcher.Events():
		fmt.Printf("playing on %s\n", ev.Name)
	case <-time.After(5 * time.Second):
		return fmt.Errorf("no output port matching %q", cfg.Output.PortName)
	}

	out.Start()
	defer out.Stop()

	barLen := sequencer.SixteenthDuration(store.Settings().Tempo) * sequencer.NumSteps
	end := time.Duration(*ef.bars) * barLen
	player := boundedPlayer{Output: out, end: end}
	manager := sequencer.NewManager(store, clk, player, player, nil)
	manager.Play()
	time.Sleep(end + midi.NoteLength)
	manager.Stop()
	return nil
}

// boundedPlayer drops triggers at or after end. The clock runs ahead of
// wall time, so the next bar's downbeat is queued before Stop.
type boundedPlayer struct {
	*midi.Output
	end time.Duration
}

func (p boundedPlayer) Trigger(trackID string, velocity float64, at time.Duration) {
	if at < p.end {
		p.Output.Trigger(trackID, velocity, at)
	}
}

func (p boundedPlayer) Click(accent bool, velocity float64, at time.Duration) {
	if at < p.end {
		p.Output.Click(accent, velocity, at)
	}
}

func listPorts() error {
	fmt.Println("=== MIDI Output Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")
	names, err := midi.OutPorts()
	if err != nil {
		return fmt.Errorf("%w (CoreMIDI fix: sudo killall coreaudiod midiserver)", err)
	}
	for i, n := range names {
		fmt.Printf("  %d: %s\n", i, n)
	}
	return nil
}

func listPresets() error {
	beats, err := sequencer.PatternPresets()
	if err != nil {
		return err
	}
	songs, err := sequencer.SongPresets()
	if err != nil {
		return err
	}
	fmt.Println("=== Beats ===")
	for _, p := range beats {
		fmt.Printf("  %-22s %-6s %3d bpm\n", p.Name, p.Style, p.Tempo)
	}
	fmt.Println("\n=== Songs ===")
	for _, s := range songs {
		bars := 0
		for _, it := range s.Chain {
			bars += it.Bars
		}
		fmt.Printf("  %-22s %-14s %3d bpm  %3d bars  %s\n", s.Name, s.Style, s.Tempo, bars, s.Description)
	}
	return nil
}
