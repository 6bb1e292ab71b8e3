package tui

import (
	"fmt"
	"io"
	"math"
	"strings"
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/san-kum/pitchloop/internal/control"
	"github.com/san-kum/pitchloop/internal/dynamo"
)

const (
	width       = 64
	height      = 13
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

var stateLabels = [dynamo.NumStates]string{"filter a", "integ a", "filter b", "integ b"}

// LiveRenderer draws the four states as a bar chart on a plain terminal,
// at most frameRate times a second. It is a sim.Observer: OnStep only
// hands the snapshot to the drawing goroutine started by Start, and
// drops it when a frame is still being written.
type LiveRenderer struct {
	out       io.Writer
	frameRate int
	now       func() time.Time
	lastFrame time.Time
	canvas    [][]rune
	frames    atomic.Int64
	dropped   atomic.Uint64

	snapshots chan Snapshot
	stop      chan struct{}
	done      chan struct{}
	stopOnce  sync.Once
}

func NewLiveRenderer(out io.Writer, frameRate int) *LiveRenderer {
	if frameRate <= 0 {
		frameRate = 10
	}
	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
	}
	return &LiveRenderer{
		out:       out,
		frameRate: frameRate,
		now:       time.Now,
		canvas:    canvas,
		snapshots: make(chan Snapshot, 1),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

func (r *LiveRenderer) OnStep(t float64, x dynamo.State, sig control.Signals) {
	select {
	case r.snapshots <- Snapshot{T: t, State: x, Signals: sig}:
	default:
		r.dropped.Inc()
	}
}

// Start hides the cursor and starts drawing.
func (r *LiveRenderer) Start() {
	fmt.Fprint(r.out, hideCursor)
	go r.loop()
}

// Stop ends drawing, waits for the frame in progress and restores the
// cursor. It must follow Start.
func (r *LiveRenderer) Stop() {
	r.stopOnce.Do(func() {
		close(r.stop)
		<-r.done
		fmt.Fprint(r.out, showCursor)
	})
}

func (r *LiveRenderer) loop() {
	defer close(r.done)
	for {
		select {
		case <-r.stop:
			return
		case s := <-r.snapshots:
			r.draw(s)
		}
	}
}

func (r *LiveRenderer) draw(s Snapshot) {
	now := r.now()
	if !r.lastFrame.IsZero() && now.Sub(r.lastFrame) < time.Second/time.Duration(r.frameRate) {
		return
	}
	r.lastFrame = now

	r.clear()
	r.drawBars(s.State)
	r.render(s.T, s.State, s.Signals)
}

// Frames reports how many frames were drawn.
func (r *LiveRenderer) Frames() int { return int(r.frames.Load()) }

// Dropped reports snapshots skipped while a frame was being written.
func (r *LiveRenderer) Dropped() uint64 { return r.dropped.Load() }

func (r *LiveRenderer) clear() {
	for y := range r.canvas {
		for x := range r.canvas[y] {
			r.canvas[y][x] = ' '
		}
	}
}

func (r *LiveRenderer) set(x, y int, c rune) {
	if x >= 0 && x < width && y >= 0 && y < height {
		r.canvas[y][x] = c
	}
}

func (r *LiveRenderer) drawBars(x dynamo.State) {
	cy := height / 2
	for i := 2; i < width-2; i++ {
		r.set(i, cy, '-')
	}

	bw := (width - 8) / len(x)
	maxVal := 1.0
	for _, v := range x {
		if math.Abs(v) > maxVal {
			maxVal = math.Abs(v)
		}
	}

	for i, v := range x {
		if math.IsNaN(v) {
			continue
		}
		bx := 4 + i*bw + bw/2
		bh := int((v / maxVal) * float64(cy-1))
		if bh > 0 {
			for y := cy - 1; y >= cy-bh && y >= 0; y-- {
				r.set(bx, y, '#')
			}
		} else {
			for y := cy + 1; y <= cy-bh && y < height; y++ {
				r.set(bx, y, '#')
			}
		}
	}
}

func (r *LiveRenderer) render(t float64, x dynamo.State, sig control.Signals) {
	var b strings.Builder
	b.WriteString(clearScreen)
	b.WriteString(fmt.Sprintf("  pitch loop  t=%.2fs\n", t))
	b.WriteString("  " + strings.Repeat("-", width) + "\n")

	for _, row := range r.canvas {
		b.WriteString("  ")
		b.WriteString(string(row))
		b.WriteString("\n")
	}

	b.WriteString("  " + strings.Repeat("-", width) + "\n")

	b.WriteString(" ")
	for i, v := range x {
		b.WriteString(fmt.Sprintf(" %s=%.3f", stateLabels[i], v))
	}
	b.WriteString("\n ")
	for _, ch := range dynamo.Channels {
		b.WriteString(fmt.Sprintf(" fc_%s=%.3f u_%s=%.3f", ch, sig.FilterCoefficient[ch], ch, sig.Output[ch]))
	}
	b.WriteString("\n")

	fmt.Fprint(r.out, b.String())
	r.frames.Inc()
}
