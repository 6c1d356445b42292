//go:build tinygo && baremetal

package hal

import (
	"machine"

	"tinygo.org/x/drivers"
)

// Bare-metal wiring for an RP2040-class board: the three devices share
// SPI0 and the arbiter-owned control pins below.
const (
	mcuPrimaryHz   = 40_000_000
	mcuSecondaryHz = 15_000_000
	mcuTouchHz     = 1_000_000
)

// OpenMCUBus configures the shared SPI controller and control pins.
func OpenMCUBus() (*BusIO, error) {
	spi := machine.SPI0
	cur := uint32(0)
	configure := func(hz uint32) error {
		return spi.Configure(machine.SPIConfig{
			SCK:       machine.GP2,
			SDO:       machine.GP3,
			SDI:       machine.GP4,
			Frequency: hz,
		})
	}
	if err := configure(mcuPrimaryHz); err != nil {
		return nil, err
	}
	cur = mcuPrimaryHz

	out := func(p machine.Pin) Pin {
		p.Configure(machine.PinConfig{Mode: machine.PinOutput})
		p.High()
		return mcuPin{p}
	}

	io := &BusIO{
		Primary: PanelIO{
			Link: &mcuLink{spi: spi, configure: configure, hz: mcuPrimaryHz, cur: &cur},
			CS:   out(machine.GP5),
			DC:   out(machine.GP6),
			RST:  out(machine.GP7),
			BL:   &mcuBacklight{pin: out(machine.GP8)},
		},
		Secondary: PanelIO{
			Link: &mcuLink{spi: spi, configure: configure, hz: mcuSecondaryHz, cur: &cur},
			CS:   out(machine.GP9),
			DC:   out(machine.GP10),
			RST:  out(machine.GP11),
		},
		Touch: TouchIO{
			Link: &mcuLink{spi: spi, configure: configure, hz: mcuTouchHz, cur: &cur},
			CS:   out(machine.GP12),
			IRQ:  mcuInputPin{configureInput(machine.GP13)},
		},
	}
	return io, nil
}

func configureInput(p machine.Pin) machine.Pin {
	p.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	return p
}

// mcuLink is one device's view of the shared controller. The controller is
// reconfigured when the active clock rate differs from the device's; the
// drivers.SPI interface carries the actual transfer.
type mcuLink struct {
	spi       drivers.SPI
	configure func(hz uint32) error
	hz        uint32
	cur       *uint32
}

func (l *mcuLink) Tx(w, r []byte) error {
	if *l.cur != l.hz {
		if err := l.configure(l.hz); err != nil {
			return err
		}
		*l.cur = l.hz
	}
	return l.spi.Tx(w, r)
}

type mcuPin struct {
	p machine.Pin
}

func (p mcuPin) High() { p.p.High() }
func (p mcuPin) Low()  { p.p.Low() }

type mcuInputPin struct {
	p machine.Pin
}

func (p mcuInputPin) Read() bool { return p.p.Get() }

type mcuBacklight struct {
	pin Pin
}

func (b *mcuBacklight) SetDuty(percent uint8) error {
	if percent == 0 {
		b.pin.Low()
	} else {
		b.pin.High()
	}
	return nil
}
