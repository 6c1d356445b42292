package touch

import "time"

// EventKind classifies a debounced touch event.
type EventKind uint8

const (
	Press EventKind = iota
	Move
	Release
	Tap
)

func (k EventKind) String() string {
	switch k {
	case Press:
		return "press"
	case Move:
		return "move"
	case Release:
		return "release"
	case Tap:
		return "tap"
	}
	return "unknown"
}

// Event is one debounced gesture step in calibrated panel coordinates.
// Tap replaces Release when the whole gesture stayed short and still; it
// is the only kind the navigation layer acts on.
type Event struct {
	Kind EventKind
	X, Y int
}

type debPhase uint8

const (
	phaseIdle debPhase = iota
	phaseSettling
	phaseHeld
	phaseLifting
)

// debouncer turns a per-tick contact stream into events: a press needs
// PressSamples consecutive samples within JitterPx of each other, a
// release needs ReleaseSamples idle ticks.
type debouncer struct {
	cfg Config

	phase  debPhase
	streak int

	x, y int

	pressX, pressY int
	pressAt        time.Time
	moved          bool
}

func newDebouncer(cfg Config) debouncer {
	return debouncer{cfg: cfg}
}

func (d *debouncer) idle(now time.Time) (Event, bool) {
	switch d.phase {
	case phaseSettling:
		d.phase = phaseIdle
		d.streak = 0
	case phaseHeld, phaseLifting:
		d.phase = phaseLifting
		d.streak++
		if d.streak >= d.cfg.ReleaseSamples {
			d.phase = phaseIdle
			d.streak = 0
			if !d.moved && now.Sub(d.pressAt) <= d.cfg.TapWindow {
				return Event{Kind: Tap, X: d.x, Y: d.y}, true
			}
			return Event{Kind: Release, X: d.x, Y: d.y}, true
		}
	}
	return Event{}, false
}

func (d *debouncer) contact(now time.Time, x, y int) (Event, bool) {
	switch d.phase {
	case phaseIdle:
		d.phase = phaseSettling
		d.streak = 1
		d.x, d.y = x, y

	case phaseSettling:
		if !near(x, y, d.x, d.y, d.cfg.JitterPx) {
			// Restart the run; the finger is still skating.
			d.streak = 1
			d.x, d.y = x, y
			return Event{}, false
		}
		d.streak++
		d.x, d.y = x, y
		if d.streak >= d.cfg.PressSamples {
			d.phase = phaseHeld
			d.streak = 0
			d.pressX, d.pressY = x, y
			d.pressAt = now
			d.moved = false
			return Event{Kind: Press, X: x, Y: y}, true
		}

	case phaseHeld, phaseLifting:
		d.phase = phaseHeld
		d.streak = 0
		movedNow := !near(x, y, d.x, d.y, d.cfg.JitterPx)
		d.x, d.y = x, y
		if !near(x, y, d.pressX, d.pressY, d.cfg.TapSlopPx) {
			d.moved = true
		}
		if movedNow {
			return Event{Kind: Move, X: x, Y: y}, true
		}
	}
	return Event{}, false
}

func near(x0, y0, x1, y1, tol int) bool {
	dx := x0 - x1
	if dx < 0 {
		dx = -dx
	}
	dy := y0 - y1
	if dy < 0 {
		dy = -dy
	}
	return dx <= tol && dy <= tol
}
