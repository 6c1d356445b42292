// Package app wires the desk together: bus arbitration, panel drivers,
// touch sampling, rendering, navigation and the frame scheduler. A panel
// that fails to come up degrades to a PNG sink instead of stopping the
// device; the loop and navigation behave identically either way.
package app

import (
	"context"
	"fmt"
	"time"

	"anddesk/desk/bus"
	"anddesk/desk/config"
	"anddesk/desk/model"
	"anddesk/desk/nav"
	"anddesk/desk/panel"
	"anddesk/desk/remote"
	"anddesk/desk/render"
	"anddesk/desk/sched"
	"anddesk/desk/touch"
	"anddesk/hal"
)

// Options selects what the desk runs against. A nil IO builds a fully
// headless desk; the sink and touch overrides exist for the host preview
// window and for tests.
type Options struct {
	Config config.Config
	IO     *hal.BusIO
	Log    hal.Logger

	PrimarySink   hal.FrameSink
	SecondarySink hal.FrameSink
	Touch         sched.TouchSource
	Commander     remote.Commander
}

// App is the assembled desk.
type App struct {
	Scheduler *Scheduler
	Machine   *nav.Machine
	Store     *model.Store

	closers []func() error
}

// Scheduler is re-exported so main packages need not import desk/sched.
type Scheduler = sched.Scheduler

// noTouch is the touch source of a desk with no sensor: navigation
// simply stays put.
type noTouch struct{}

func (noTouch) Poll() (touch.Event, bool, error) { return touch.Event{}, false, nil }

// dropSink swallows frames when even the PNG fallback cannot be set up.
type dropSink struct{ w, h int }

func (s dropSink) Size() (int, int)      { return s.w, s.h }
func (s dropSink) Blit(*hal.Frame) error { return nil }

// Build assembles the desk from options.
func Build(opts Options) (*App, error) {
	cfg := opts.Config
	log := opts.Log
	if log == nil {
		log = hal.NewHostLogger()
	}

	store := model.NewStore(cfg.Username, cfg.FocusSessionMins)
	a := &App{Store: store}

	cmd := opts.Commander
	if cmd == nil {
		cmd = remote.Commander(remote.Null{})
		if cfg.Broker != "" {
			m, err := remote.Dial(cfg.Broker, store, log)
			if err != nil {
				log.WriteLineString("app: remote unavailable: " + err.Error())
			} else {
				cmd = m
				a.closers = append(a.closers, m.Close)
			}
		}
	}

	a.Machine = nav.New(store, cmd, log, cfg.FocusSessionMins)

	arb := bus.New()
	primary := a.buildPanel(arb, panel.Primary(), bus.PanelPrimary, panelIO(opts.IO, true), cfg.PreviewDir, "primary", log, opts.PrimarySink)
	secondary := a.buildPanel(arb, panel.Secondary(), bus.PanelSecondary, panelIO(opts.IO, false), cfg.PreviewDir, "secondary", log, opts.SecondarySink)

	var src sched.TouchSource = noTouch{}
	if opts.Touch != nil {
		src = opts.Touch
	} else if opts.IO != nil {
		arb.Register(bus.TouchSensor, opts.IO.Touch.Link, opts.IO.Touch.CS, nil)
		w, h := primary.Size()
		src = touch.NewSampler(arb, opts.IO.Touch.IRQ, cfg.Calibration, touchConfig(cfg.Touch), w, h)
	}

	a.Scheduler = sched.New(primary, secondary, render.New(), src, a.Machine, store, log, sched.Cadences{
		Primary:   time.Duration(cfg.CadencePrimaryMs) * time.Millisecond,
		Secondary: time.Duration(cfg.CadenceSecondaryMs) * time.Millisecond,
	})
	return a, nil
}

// buildPanel initializes one display and returns the sink frames go to.
// Any initialization failure lands on the PNG fallback.
func (a *App) buildPanel(arb *bus.Arbiter, prof panel.Profile, dev bus.Device,
	io *hal.PanelIO, previewDir, name string, log hal.Logger, override hal.FrameSink) hal.FrameSink {
	if override != nil {
		return override
	}
	if io != nil {
		arb.Register(dev, io.Link, io.CS, io.DC)
		d := panel.New(prof, arb, dev, io.RST, io.BL, log)
		if err := d.Initialize(); err == nil {
			if io.BL != nil {
				if err := d.SetBacklight(100); err != nil {
					log.WriteLineString("app: " + name + ": " + err.Error())
				}
			}
			return d
		} else {
			log.WriteLineString(fmt.Sprintf("app: %s init failed, going headless: %v", name, err))
		}
	}
	sink, err := hal.NewPNGSink(previewDir, name, prof.Width, prof.Height)
	if err != nil {
		log.WriteLineString("app: " + name + " preview sink: " + err.Error())
		return dropSink{w: prof.Width, h: prof.Height}
	}
	return sink
}

func panelIO(io *hal.BusIO, primary bool) *hal.PanelIO {
	if io == nil {
		return nil
	}
	if primary {
		return &io.Primary
	}
	return &io.Secondary
}

func touchConfig(t config.Touch) touch.Config {
	return touch.Config{
		PressSamples:   t.PressSamples,
		ReleaseSamples: t.ReleaseSamples,
		JitterPx:       t.JitterPx,
		PressureMin:    t.PressureMin,
		TapWindow:      time.Duration(t.TapWindowMs) * time.Millisecond,
		TapSlopPx:      t.TapSlopPx,
	}
}

// Run drives the scheduler until the context ends.
func (a *App) Run(ctx context.Context, tick time.Duration) error {
	defer a.Close()
	return a.Scheduler.Run(ctx, tick)
}

// Close releases external connections.
func (a *App) Close() {
	for _, fn := range a.closers {
		_ = fn()
	}
}
