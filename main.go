package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"go-drummer/clock"
	"go-drummer/config"
	"go-drummer/debug"
	"go-drummer/midi"
	"go-drummer/sequencer"
	"go-drummer/theme"
	"go-drummer/tui"
)

func main() {
	debugFlag := flag.Bool("debug", false, "write a debug log to ~/.config/go-drummer/debug.log")
	project := flag.String("project", "", "project to load the latest save from")
	flag.Parse()

	if *debugFlag {
		if err := debug.Enable(); err != nil {
			fmt.Fprintf(os.Stderr, "debug log: %v\n", err)
		}
		defer debug.Disable()
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v (using defaults)\n", err)
		cfg = config.DefaultConfig()
	}
	if *project != "" {
		cfg.UI.LastProject = *project
	}

	th := theme.New(theme.MustBuiltin("plasma"))

	store := sequencer.NewStore(nil)
	store.SetTempo(cfg.UI.LastTempo)
	store.SetJank(cfg.UI.LastJank)
	if cfg.UI.LastProject != "" {
		if err := sequencer.LoadProject(store, cfg.UI.LastProject, ""); err != nil {
			debug.Log("project", "startup load: %v", err)
		}
	}

	clk := clock.NewRealtime(time.Duration(cfg.Engine.LookaheadMS) * time.Millisecond)
	out := midi.NewOutput(clk, cfg.Output.Channel, cfg.Output.Kit)
	store.SetRegistry(out)
	out.UpdateTracks(store.Snapshot().Tracks)
	out.Start()
	defer out.Stop()

	manager := sequencer.NewManager(store, clk, out, out, nil)

	// Watch for the output port (handles hot-plug)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var watcher *midi.PortWatcher
	if cfg.Output.AutoConnect {
		watcher = midi.NewPortWatcher(cfg.Output.PortName, out)
		go watcher.Run(ctx)
	}

	var pads *midi.PadInput
	if cfg.Input.Enabled {
		pads, err = midi.OpenPadInput(cfg.Input.PortName, out)
		if err != nil {
			fmt.Fprintf(os.Stderr, "pad input: %v\n", err)
		} else {
			defer pads.Close()
		}
	}

	if cfg.Grid.Enabled {
		grid, err := midi.OpenGrid(cfg.Grid.PortName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "grid: %v\n", err)
		} else {
			surface := midi.NewStepSurface(manager, grid)
			gridDone := make(chan struct{})
			go func() {
				defer close(gridDone)
				surface.Run(ctx, grid.Pads())
			}()
			defer func() {
				cancel()
				<-gridDone
				grid.Close()
			}()
		}
	}

	fmt.Println("go-drummer")
	fmt.Println("Connect a MIDI drum module any time - it will be detected automatically")

	m := tui.NewModel(manager, watcher, pads, th, cfg)
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
