//go:build !tinygo

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"anddesk/app"
	"anddesk/desk/config"
	"anddesk/desk/touch"
	"anddesk/hal"
)

func main() {
	var (
		cfgPath  = flag.String("config", "anddesk.json", "Configuration file.")
		headless = flag.Bool("headless", false, "Run without hardware or a window; frames go to the preview directory.")
		window   = flag.Bool("window", false, "Show both panels in a preview window instead of driving hardware.")
		preview  = flag.String("preview-dir", "", "Override the preview directory.")
	)
	flag.Parse()

	if err := run(*cfgPath, *headless, *window, *preview); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfgPath string, headless, window bool, preview string) error {
	log := hal.NewHostLogger()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if preview != "" {
		cfg.PreviewDir = preview
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := app.Options{Config: cfg, Log: log}

	if window {
		return runWindow(ctx, opts)
	}

	if !headless {
		b, err := hal.OpenLinuxBus(busConfig(cfg))
		if err != nil {
			log.WriteLineString("main: no hardware bus, going headless: " + err.Error())
		} else {
			defer b.Close()
			opts.IO = &b.IO
		}
	}

	a, err := app.Build(opts)
	if err != nil {
		return err
	}
	return a.Run(ctx, 20*time.Millisecond)
}

// runWindow previews both panels in one window; mouse clicks on the
// primary panel act as taps.
func runWindow(ctx context.Context, opts app.Options) error {
	primary := hal.NewWindowSink(320, 240)
	secondary := hal.NewWindowSink(160, 128)
	taps := make(chan hal.WindowTap, 8)

	opts.PrimarySink = primary
	opts.SecondarySink = secondary
	opts.Touch = &windowTouch{taps: taps}

	a, err := app.Build(opts)
	if err != nil {
		return err
	}
	defer a.Close()

	last := time.Now()
	return hal.RunWindow(primary, secondary, taps, func() error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		// The window redraws at its own rate; hold the scheduler to the
		// same tick interval the hardware loop uses.
		if time.Since(last) < 20*time.Millisecond {
			return nil
		}
		last = time.Now()
		return a.Scheduler.Tick()
	})
}

// windowTouch turns mouse clicks into tap events.
type windowTouch struct {
	taps <-chan hal.WindowTap
}

func (w *windowTouch) Poll() (touch.Event, bool, error) {
	select {
	case t := <-w.taps:
		return touch.Event{Kind: touch.Tap, X: t.X, Y: t.Y}, true, nil
	default:
		return touch.Event{}, false, nil
	}
}

func busConfig(cfg config.Config) hal.LinuxBusConfig {
	return hal.LinuxBusConfig{
		Port:        cfg.Bus.Port,
		PrimaryHz:   cfg.Bus.PrimaryHz,
		SecondaryHz: cfg.Bus.SecondaryHz,
		TouchHz:     cfg.Bus.TouchHz,

		PrimaryCS:  cfg.Pins.PrimaryCS,
		PrimaryDC:  cfg.Pins.PrimaryDC,
		PrimaryRST: cfg.Pins.PrimaryRST,
		PrimaryBL:  cfg.Pins.PrimaryBL,

		SecondaryCS:  cfg.Pins.SecondaryCS,
		SecondaryDC:  cfg.Pins.SecondaryDC,
		SecondaryRST: cfg.Pins.SecondaryRST,

		TouchCS:  cfg.Pins.TouchCS,
		TouchIRQ: cfg.Pins.TouchIRQ,
	}
}
