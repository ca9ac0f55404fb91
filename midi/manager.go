package midi

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"go-drummer/debug"
)

// ErrPortScanTimeout is returned when the driver does not answer in time
var ErrPortScanTimeout = errors.New("midi port scan timed out")

const portScanTimeout = 3 * time.Second

// PortEvent is emitted when the watched output port appears or goes away
type PortEvent struct {
	Type PortEventType
	Name string
}

type PortEventType int

const (
	PortConnected PortEventType = iota
	PortDisconnected
)

// OutPorts lists output port names. The scan runs with a timeout because
// some drivers hang (CoreMIDI).
func OutPorts() ([]string, error) {
	ports, err := scanOutPorts()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(ports))
	for i, p := range ports {
		names[i] = p.String()
	}
	return names, nil
}

func scanOutPorts() ([]drivers.Out, error) {
	ch := make(chan []drivers.Out, 1)
	go func() {
		ch <- gomidi.GetOutPorts()
	}()
	select {
	case ports := <-ch:
		return ports, nil
	case <-time.After(portScanTimeout):
		return nil, ErrPortScanTimeout
	}
}

// matchPort reports whether a port name matches the wanted name. An empty
// wanted name takes the first port.
func matchPort(name, want string) bool {
	if want == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(want))
}

// PortWatcher handles hot-plug of the output port: it polls the driver,
// opens the port when it shows up and hands its sender to the Output.
type PortWatcher struct {
	want     string
	out      *Output
	pollRate time.Duration
	events   chan PortEvent

	mu        sync.RWMutex
	connected string
}

// NewPortWatcher creates a watcher for the first port whose name contains
// want (case-insensitive)
func NewPortWatcher(want string, out *Output) *PortWatcher {
	return &PortWatcher{
		want:     want,
		out:      out,
		pollRate: time.Second,
		events:   make(chan PortEvent, 16),
	}
}

// Events returns a channel of connect/disconnect events
func (w *PortWatcher) Events() <-chan PortEvent {
	return w.events
}

// Connected returns the open port name, or "" if none
func (w *PortWatcher) Connected() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.connected
}

// Run starts the polling loop (blocking - run in goroutine)
func (w *PortWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.pollRate)
	defer ticker.Stop()

	w.scan()
	for {
		select {
		case <-ctx.Done():
			w.out.SetSender(nil)
			close(w.events)
			return
		case <-ticker.C:
			w.scan()
		}
	}
}

func (w *PortWatcher) scan() {
	ports, err := scanOutPorts()
	if err != nil {
		debug.LogEvery(10, "midi", "port scan: %v", err)
		return
	}

	w.mu.RLock()
	current := w.connected
	w.mu.RUnlock()

	if current != "" {
		for _, p := range ports {
			if p.String() == current {
				return
			}
		}
		w.setConnected("")
		w.out.SetSender(nil)
		debug.Log("midi", "port gone: %s", current)
		w.emit(PortEvent{Type: PortDisconnected, Name: current})
	}

	for _, p := range ports {
		if !matchPort(p.String(), w.want) {
			continue
		}
		send, err := gomidi.SendTo(p)
		if err != nil {
			debug.Log("midi", "open %s: %v", p.String(), err)
			continue
		}
		w.setConnected(p.String())
		w.out.SetSender(send)
		debug.Log("midi", "port connected: %s", p.String())
		w.emit(PortEvent{Type: PortConnected, Name: p.String()})
		return
	}
}

func (w *PortWatcher) setConnected(name string) {
	w.mu.Lock()
	w.connected = name
	w.mu.Unlock()
}

func (w *PortWatcher) emit(e PortEvent) {
	select {
	case w.events <- e:
	default:
	}
}
