// Package sched runs the frame loop: one cooperative tick services the
// touch sensor first, then whichever panel cadence has come due. There
// is exactly one goroutine touching the bus, so cross-device transfers
// can never interleave at the byte level.
package sched

import (
	"context"
	"errors"
	"fmt"
	"time"

	"anddesk/desk/bus"
	"anddesk/desk/model"
	"anddesk/desk/nav"
	"anddesk/desk/touch"
	"anddesk/hal"
)

// Renderer produces finished frames plus the hit regions drawn into
// them. The scheduler never inspects frame contents.
type Renderer interface {
	Primary(screen nav.Screen, snap model.Snapshot, w, h int) (*hal.Frame, []nav.Region, error)
	Secondary(snap model.Snapshot, w, h int) (*hal.Frame, error)
}

// TouchSource yields at most one debounced event per tick.
type TouchSource interface {
	Poll() (touch.Event, bool, error)
}

// Cadences are the two refresh periods.
type Cadences struct {
	Primary   time.Duration
	Secondary time.Duration
}

// DefaultCadences matches the device targets: 10 frames per second on
// the primary panel, a status refresh every five seconds on the
// secondary.
func DefaultCadences() Cadences {
	return Cadences{Primary: 100 * time.Millisecond, Secondary: 5 * time.Second}
}

// Scheduler interleaves the two panel cadences and touch sampling.
type Scheduler struct {
	primary   hal.FrameSink
	secondary hal.FrameSink
	render    Renderer
	touch     TouchSource
	machine   *nav.Machine
	store     *model.Store
	log       hal.Logger

	cad           Cadences
	lastPrimary   time.Time
	lastSecondary time.Time

	now func() time.Time
}

// New builds a scheduler. Both cadence timers start expired, so the
// first tick paints both panels.
func New(primary, secondary hal.FrameSink, r Renderer, t TouchSource,
	m *nav.Machine, store *model.Store, log hal.Logger, cad Cadences) *Scheduler {
	if cad.Primary <= 0 || cad.Secondary <= 0 {
		cad = DefaultCadences()
	}
	return &Scheduler{
		primary:   primary,
		secondary: secondary,
		render:    r,
		touch:     t,
		machine:   m,
		store:     store,
		log:       log,
		cad:       cad,
		now:       time.Now,
	}
}

// Tick runs one scheduler step. Transfer faults cost at most the frame
// or sample of this tick; the only error returned is an arbitration bug,
// which the caller must treat as fatal.
func (s *Scheduler) Tick() error {
	now := s.now()
	s.store.TickClock(now)
	s.machine.Tick(now)

	// Touch before any blit, so a pending frame can never delay input and
	// the sample's bus hold is released before pixel streaming starts.
	ev, ok, err := s.touch.Poll()
	switch {
	case errors.Is(err, bus.ErrBusy):
		return fmt.Errorf("sched: touch: %w", err)
	case err != nil:
		s.log.WriteLineString("sched: touch sample skipped: " + err.Error())
	case ok && ev.Kind == touch.Tap:
		s.machine.HandleTap(now, ev.X, ev.Y)
	}

	if now.Sub(s.lastPrimary) >= s.cad.Primary {
		if err := s.paintPrimary(now); err != nil {
			return err
		}
	}
	if now.Sub(s.lastSecondary) >= s.cad.Secondary {
		if err := s.paintSecondary(now); err != nil {
			return err
		}
	}
	return nil
}

// paintPrimary renders and blits the active screen. On success the
// cadence timer resets to now rather than last+period, trading drift for
// freedom from backlog after a slow tick. On a transfer fault the timer
// is left alone so the very next tick retries with a fresh frame; the
// panel keeps its last good content meanwhile.
func (s *Scheduler) paintPrimary(now time.Time) error {
	w, h := s.primary.Size()
	f, regions, err := s.render.Primary(s.machine.Screen(), s.store.Snapshot(), w, h)
	if err != nil {
		s.log.WriteLineString("sched: primary render: " + err.Error())
		return nil
	}
	if err := s.primary.Blit(f); err != nil {
		if errors.Is(err, bus.ErrBusy) {
			return fmt.Errorf("sched: primary blit: %w", err)
		}
		s.log.WriteLineString("sched: primary frame dropped: " + err.Error())
		return nil
	}
	// Regions track whatever is actually on the glass, so they are only
	// installed after a complete blit.
	s.machine.SetRegions(regions)
	s.lastPrimary = now
	return nil
}

func (s *Scheduler) paintSecondary(now time.Time) error {
	w, h := s.secondary.Size()
	f, err := s.render.Secondary(s.store.Snapshot(), w, h)
	if err != nil {
		s.log.WriteLineString("sched: secondary render: " + err.Error())
		return nil
	}
	if err := s.secondary.Blit(f); err != nil {
		if errors.Is(err, bus.ErrBusy) {
			return fmt.Errorf("sched: secondary blit: %w", err)
		}
		s.log.WriteLineString("sched: secondary frame dropped: " + err.Error())
		return nil
	}
	s.lastSecondary = now
	return nil
}

// Run ticks at the given interval until the context ends or a fatal
// arbitration error surfaces. The interval should be well below the
// primary cadence so touch stays responsive.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = 20 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.Tick(); err != nil {
				return err
			}
		}
	}
}
