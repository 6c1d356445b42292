//go:build !tinygo

// Command calibrate samples raw corner touches and writes the axis
// flags and range bounds into the configuration file. Run it on the
// device with both panels attached.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"anddesk/desk/bus"
	"anddesk/desk/config"
	"anddesk/desk/touch"
	"anddesk/hal"
)

func main() {
	cfgPath := flag.String("config", "anddesk.json", "Configuration file to read and rewrite.")
	flag.Parse()

	if err := run(*cfgPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type corner struct {
	name string
	x, y int // expected panel pixel
}

func run(cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	b, err := hal.OpenLinuxBus(hal.LinuxBusConfig{
		Port:        cfg.Bus.Port,
		PrimaryHz:   cfg.Bus.PrimaryHz,
		SecondaryHz: cfg.Bus.SecondaryHz,
		TouchHz:     cfg.Bus.TouchHz,

		PrimaryCS:  cfg.Pins.PrimaryCS,
		PrimaryDC:  cfg.Pins.PrimaryDC,
		PrimaryRST: cfg.Pins.PrimaryRST,

		SecondaryCS:  cfg.Pins.SecondaryCS,
		SecondaryDC:  cfg.Pins.SecondaryDC,
		SecondaryRST: cfg.Pins.SecondaryRST,

		TouchCS:  cfg.Pins.TouchCS,
		TouchIRQ: cfg.Pins.TouchIRQ,
	})
	if err != nil {
		return fmt.Errorf("calibrate: %w", err)
	}
	defer b.Close()

	arb := bus.New()
	arb.Register(bus.TouchSensor, b.IO.Touch.Link, b.IO.Touch.CS, nil)
	// Wide-open calibration: Sample returns raw ADC readings untouched.
	s := touch.NewSampler(arb, b.IO.Touch.IRQ, touch.Calibration{}, touch.DefaultConfig(), 320, 240)

	corners := []corner{
		{"top-left", 0, 0},
		{"top-right", 319, 0},
		{"bottom-left", 0, 239},
		{"bottom-right", 319, 239},
	}
	raw := make([]touch.Sample, len(corners))
	for i, c := range corners {
		fmt.Printf("hold a stylus on the %s corner...\n", c.name)
		sm, err := waitForContact(s)
		if err != nil {
			return err
		}
		raw[i] = sm
		fmt.Printf("  raw x=%d y=%d z=%d\n", sm.Point.X, sm.Point.Y, sm.Point.Z)
		waitForRelease(s)
	}

	cfg.Calibration = solve(raw[0], raw[1], raw[2], raw[3])
	fmt.Printf("calibration: %+v\n", cfg.Calibration)

	if err := config.Save(cfgPath, cfg); err != nil {
		return err
	}
	fmt.Println("written to", cfgPath)
	return nil
}

// solve derives the axis flags and bounds from the four corner samples
// (top-left, top-right, bottom-left, bottom-right).
func solve(tl, tr, bl, br touch.Sample) touch.Calibration {
	var cal touch.Calibration

	// Horizontal movement should change raw X more than raw Y; if not,
	// the sensor's axes are rotated relative to the panel.
	dxAcross := abs(tr.Point.X - tl.Point.X)
	dyAcross := abs(tr.Point.Y - tl.Point.Y)
	cal.SwapAxes = dyAcross > dxAcross

	rx := func(s touch.Sample) int {
		if cal.SwapAxes {
			return s.Point.Y
		}
		return s.Point.X
	}
	ry := func(s touch.Sample) int {
		if cal.SwapAxes {
			return s.Point.X
		}
		return s.Point.Y
	}

	cal.FlipX = rx(tl) > rx(tr)
	cal.FlipY = ry(tl) > ry(bl)

	cal.XMin, cal.XMax = minMax(rx(tl), rx(tr), rx(bl), rx(br))
	cal.YMin, cal.YMax = minMax(ry(tl), ry(tr), ry(bl), ry(br))
	return cal.Normalized()
}

func waitForContact(s *touch.Sampler) (touch.Sample, error) {
	for {
		sm, ok, err := s.Sample()
		var terr *bus.TransferError
		if errors.As(err, &terr) {
			time.Sleep(50 * time.Millisecond)
			continue
		}
		if err != nil {
			return touch.Sample{}, err
		}
		if ok && sm.Point.Z >= touch.DefaultConfig().PressureMin {
			return sm, nil
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func waitForRelease(s *touch.Sampler) {
	for {
		_, ok, err := s.Sample()
		if err != nil || !ok {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func minMax(vals ...int) (int, int) {
	lo, hi := vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
