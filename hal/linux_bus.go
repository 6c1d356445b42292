//go:build !tinygo

package hal

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// LinuxBusConfig names the SPI port, the per-device clock rates and the
// control lines for a Linux single-board computer. Pin names use the
// host's GPIO registry ("GPIO8" on a Raspberry Pi).
type LinuxBusConfig struct {
	Port string // spidev port name; empty selects the first available

	PrimaryHz   int64
	SecondaryHz int64
	TouchHz     int64

	PrimaryCS, PrimaryDC, PrimaryRST, PrimaryBL string
	SecondaryCS, SecondaryDC, SecondaryRST      string
	TouchCS, TouchIRQ                           string
}

// LinuxBus is the hardware backend for Linux SBCs. Each logical device
// gets its own spidev handle so the kernel applies the device's clock
// rate per transfer; the controller serializes transfers on the wire and
// the transport arbiter serializes them at the device level. Chip-select
// is never delegated to the controller (spi.NoCS): the arbiter owns it.
type LinuxBus struct {
	IO    BusIO
	ports []spi.PortCloser
}

// OpenLinuxBus initializes the periph host drivers and claims the SPI
// port and GPIO lines. Any failure means the machine has no usable bus;
// callers fall back to the null display sink.
func OpenLinuxBus(cfg LinuxBusConfig) (*LinuxBus, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoHardware, err)
	}

	b := &LinuxBus{}
	ok := false
	defer func() {
		if !ok {
			b.Close()
		}
	}()

	primLink, err := b.connect(cfg.Port, cfg.PrimaryHz)
	if err != nil {
		return nil, err
	}
	secLink, err := b.connect(cfg.Port, cfg.SecondaryHz)
	if err != nil {
		return nil, err
	}
	touchLink, err := b.connect(cfg.Port, cfg.TouchHz)
	if err != nil {
		return nil, err
	}

	pins := map[string]gpio.PinIO{}
	outPin := func(name string) (Pin, error) {
		p := gpioreg.ByName(name)
		if p == nil {
			return nil, fmt.Errorf("%w: no pin %q", ErrNoHardware, name)
		}
		if err := p.Out(gpio.High); err != nil {
			return nil, fmt.Errorf("pin %q: %w", name, err)
		}
		pins[name] = p
		return &linuxPin{p: p}, nil
	}

	var io BusIO
	if io.Primary.CS, err = outPin(cfg.PrimaryCS); err != nil {
		return nil, err
	}
	if io.Primary.DC, err = outPin(cfg.PrimaryDC); err != nil {
		return nil, err
	}
	if io.Primary.RST, err = outPin(cfg.PrimaryRST); err != nil {
		return nil, err
	}
	if cfg.PrimaryBL != "" {
		bl, err := outPin(cfg.PrimaryBL)
		if err != nil {
			return nil, err
		}
		io.Primary.BL = &linuxBacklight{pin: bl}
	}
	if io.Secondary.CS, err = outPin(cfg.SecondaryCS); err != nil {
		return nil, err
	}
	if io.Secondary.DC, err = outPin(cfg.SecondaryDC); err != nil {
		return nil, err
	}
	if io.Secondary.RST, err = outPin(cfg.SecondaryRST); err != nil {
		return nil, err
	}
	if io.Touch.CS, err = outPin(cfg.TouchCS); err != nil {
		return nil, err
	}

	irq := gpioreg.ByName(cfg.TouchIRQ)
	if irq == nil {
		return nil, fmt.Errorf("%w: no pin %q", ErrNoHardware, cfg.TouchIRQ)
	}
	if err := irq.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("pin %q: %w", cfg.TouchIRQ, err)
	}
	io.Touch.IRQ = &linuxInputPin{p: irq}

	io.Primary.Link = primLink
	io.Secondary.Link = secLink
	io.Touch.Link = touchLink

	b.IO = io
	ok = true
	return b, nil
}

func (b *LinuxBus) connect(port string, hz int64) (Link, error) {
	p, err := spireg.Open(port)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoHardware, err)
	}
	b.ports = append(b.ports, p)
	conn, err := p.Connect(physic.Frequency(hz)*physic.Hertz, spi.Mode0|spi.NoCS, 8)
	if err != nil {
		return nil, fmt.Errorf("spi connect: %w", err)
	}
	return &linuxLink{conn: conn}, nil
}

// Close releases the SPI handles.
func (b *LinuxBus) Close() error {
	var first error
	for _, p := range b.ports {
		if err := p.Close(); err != nil && first == nil {
			first = err
		}
	}
	b.ports = nil
	return first
}

type linuxLink struct {
	conn spi.Conn
}

func (l *linuxLink) Tx(w, r []byte) error { return l.conn.Tx(w, r) }

type linuxPin struct {
	p gpio.PinIO
}

func (p *linuxPin) High() { _ = p.p.Out(gpio.High) }
func (p *linuxPin) Low()  { _ = p.p.Out(gpio.Low) }

type linuxInputPin struct {
	p gpio.PinIO
}

func (p *linuxInputPin) Read() bool { return p.p.Read() == gpio.High }

// linuxBacklight quantizes duty to on/off; the panel's BL line is driven
// as plain GPIO here, which is all the deployment needs.
type linuxBacklight struct {
	pin Pin
}

func (b *linuxBacklight) SetDuty(percent uint8) error {
	if percent == 0 {
		b.pin.Low()
	} else {
		b.pin.High()
	}
	return nil
}
