package input

import (
	"sync"
	"time"
)

// PressEvent is one accepted press-release cycle, already classified.
type PressEvent struct {
	Channel  int
	Long     bool
	Duration time.Duration
}

const (
	// DefaultQuiet is the window inside which a second press edge on the
	// same channel is treated as contact bounce.
	DefaultQuiet = 20 * time.Millisecond
	// DefaultLongPress is the hold duration at which a press classifies as
	// long. Exactly at the threshold counts as long.
	DefaultLongPress = 2 * time.Second
)

// Debouncer turns raw, bouncy edges into clean classified PressEvents.
// Edge is safe to call from any goroutine; events are handed to the consumer
// over a buffered channel, so the edge path never blocks. A channel that is
// mid-cycle reports nothing until its release edge arrives: no overlapping
// cycles.
type Debouncer struct {
	quiet     time.Duration
	longPress time.Duration
	events    chan PressEvent

	mu        sync.Mutex
	lastEdge  map[int]time.Time
	pressedAt map[int]time.Time
}

func NewDebouncer(quiet, longPress time.Duration, buffer int) *Debouncer {
	if quiet <= 0 {
		quiet = DefaultQuiet
	}
	if longPress <= 0 {
		longPress = DefaultLongPress
	}
	if buffer <= 0 {
		buffer = 4
	}
	return &Debouncer{
		quiet:     quiet,
		longPress: longPress,
		events:    make(chan PressEvent, buffer),
		lastEdge:  make(map[int]time.Time),
		pressedAt: make(map[int]time.Time),
	}
}

// Events delivers one PressEvent per accepted press-release cycle.
func (d *Debouncer) Events() <-chan PressEvent { return d.events }

// Edge records a raw transition on a channel: pressed=true for the falling
// (press) edge, false for the rising (release) edge.
func (d *Debouncer) Edge(channel int, pressed bool, at time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if pressed {
		if last, ok := d.lastEdge[channel]; ok && at.Sub(last) <= d.quiet {
			return // bounce
		}
		if _, mid := d.pressedAt[channel]; mid {
			return // still inside an unresolved cycle
		}
		d.lastEdge[channel] = at
		d.pressedAt[channel] = at
		return
	}

	start, ok := d.pressedAt[channel]
	if !ok {
		return // release without an accepted press
	}
	delete(d.pressedAt, channel)
	d.lastEdge[channel] = at

	dur := at.Sub(start)
	ev := PressEvent{
		Channel:  channel,
		Long:     dur >= d.longPress,
		Duration: dur,
	}
	select {
	case d.events <- ev:
	default:
		// consumer stalled; dropping beats blocking the edge path
	}
}
