package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"go.uber.org/atomic"

	"github.com/san-kum/pitchloop/internal/control"
	"github.com/san-kum/pitchloop/internal/dynamo"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	green  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	red    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

const historyLen = 60

// Snapshot is one completed tick as seen by the monitor.
type Snapshot struct {
	T       float64
	State   dynamo.State
	Signals control.Signals
}

// Feed carries snapshots from the stepping goroutine to the monitor. It
// never blocks the step: when the monitor falls behind, snapshots are
// dropped and counted.
type Feed struct {
	snapshots chan Snapshot
	done      chan error
	dropped   atomic.Uint64
}

func NewFeed(buffer int) *Feed {
	if buffer < 1 {
		buffer = 1
	}
	return &Feed{
		snapshots: make(chan Snapshot, buffer),
		done:      make(chan error, 1),
	}
}

// OnStep makes a Feed a sim.Observer.
func (f *Feed) OnStep(t float64, x dynamo.State, sig control.Signals) {
	select {
	case f.snapshots <- Snapshot{T: t, State: x, Signals: sig}:
	default:
		f.dropped.Inc()
	}
}

// Finish reports the end of the run; err is nil for a clean stop.
func (f *Feed) Finish(err error) {
	select {
	case f.done <- err:
	default:
	}
}

func (f *Feed) Dropped() uint64 { return f.dropped.Load() }

type snapshotMsg Snapshot

type finishedMsg struct{ err error }

func (f *Feed) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case s := <-f.snapshots:
			return snapshotMsg(s)
		case err := <-f.done:
			return finishedMsg{err}
		}
	}
}

// Monitor is the live view of a realtime run.
type Monitor struct {
	feed   *Feed
	title  string
	onQuit func()

	last     Snapshot
	ticks    int
	history  [dynamo.NumStates][]float64
	finished bool
	err      error
	width    int
}

// NewMonitor builds the view. onQuit is called once when the user quits
// before the run has finished, to stop the driver.
func NewMonitor(feed *Feed, title string, onQuit func()) *Monitor {
	return &Monitor{feed: feed, title: title, onQuit: onQuit, width: 80}
}

func (m *Monitor) Init() tea.Cmd { return m.feed.wait() }

func (m *Monitor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if !m.finished && m.onQuit != nil {
				m.onQuit()
			}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case snapshotMsg:
		m.record(Snapshot(msg))
		return m, m.feed.wait()
	case finishedMsg:
		m.finished = true
		m.err = msg.err
		// Drain what is still buffered so the last frame is current.
		for drained := false; !drained; {
			select {
			case s := <-m.feed.snapshots:
				m.record(s)
			default:
				drained = true
			}
		}
	}
	return m, nil
}

func (m *Monitor) record(s Snapshot) {
	m.last = s
	m.ticks++
	for i, v := range s.State {
		h := append(m.history[i], v)
		if len(h) > historyLen {
			h = h[len(h)-historyLen:]
		}
		m.history[i] = h
	}
}

func (m *Monitor) Err() error { return m.err }

func (m *Monitor) View() string {
	var b strings.Builder

	status := green.Render("running")
	switch {
	case m.finished && m.err != nil:
		status = red.Render("fault: " + m.err.Error())
	case m.finished:
		status = yellow.Render("stopped")
	}
	b.WriteString(cyan.Render(m.title) + "  " + status + "\n")
	b.WriteString(dim.Render(fmt.Sprintf("t=%.2fs  ticks=%d  dropped=%d", m.last.T, m.ticks, m.feed.Dropped())) + "\n\n")

	for _, ch := range dynamo.Channels {
		filter, integrator := m.last.State.Channel(ch)
		b.WriteString(white.Render(fmt.Sprintf("channel %s", ch)))
		b.WriteString(dim.Render(fmt.Sprintf("  filter %10.4f  integrator %10.4f  fc %10.4f  u %10.4f",
			filter, integrator, m.last.Signals.FilterCoefficient[ch], m.last.Signals.Output[ch])))
		b.WriteString("\n")
	}

	if len(m.history[0]) > 1 {
		plotWidth := m.width - 12
		if plotWidth < 20 {
			plotWidth = 20
		}
		graph := asciigraph.PlotMany(
			[][]float64{m.history[dynamo.IntegratorA], m.history[dynamo.IntegratorB]},
			asciigraph.Height(8),
			asciigraph.Width(plotWidth),
			asciigraph.Caption("integrator a / b"),
		)
		b.WriteString("\n" + graph + "\n")
	}

	b.WriteString("\n" + dim.Render("q quit") + "\n")
	return b.String()
}
