// Package bus arbitrates the shared serial link between the two display
// panels and the touch sensor. Every byte on the wire goes through one
// Arbiter; a device must hold the (single) Handle for the duration of a
// transaction, and chip-select is asserted only while that device's own
// transfer is clocking.
package bus

import (
	"errors"
	"fmt"

	"anddesk/hal"
)

// Device identifies one logical device on the shared link.
type Device uint8

const (
	PanelPrimary Device = iota
	PanelSecondary
	TouchSensor

	deviceCount
)

func (d Device) String() string {
	switch d {
	case PanelPrimary:
		return "panel/primary"
	case PanelSecondary:
		return "panel/secondary"
	case TouchSensor:
		return "touch"
	}
	return fmt.Sprintf("device(%d)", uint8(d))
}

var (
	// ErrBusy means a second acquire while a handle is outstanding. This is
	// an arbitration bug, not a hardware condition; callers must treat it
	// as fatal rather than continue with unknown bus state.
	ErrBusy = errors.New("bus: busy")

	// ErrNoHandle means a transfer was attempted with a released, stale or
	// foreign handle.
	ErrNoHandle = errors.New("bus: transfer without valid handle")

	// ErrNotRegistered means the device was never wired to the arbiter.
	ErrNotRegistered = errors.New("bus: device not registered")
)

// TransferError wraps a fault reported by the underlying link. Bus state
// after a fault is indeterminate, so the operation is abandoned, never
// retried mid-transaction.
type TransferError struct {
	Dev Device
	Err error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("bus: %s transfer: %v", e.Dev, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

// Handle is the exclusive-use token for the shared link. At most one is
// valid at a time; it is acquired per transaction and never held across
// scheduler ticks.
type Handle struct {
	arb *Arbiter
	dev Device
	gen uint64
}

// Device reports which logical device holds the handle.
func (h *Handle) Device() Device { return h.dev }

type endpoint struct {
	link       hal.Link
	cs         hal.Pin
	dc         hal.Pin // nil for devices without a data/command line
	registered bool
}

// Arbiter serializes all transactions on the physical link.
type Arbiter struct {
	eps   [deviceCount]endpoint
	held  bool
	owner Device
	gen   uint64
	chunk int
}

// DefaultChunk matches the kernel spidev transfer buffer; one logical
// write is partitioned into pieces of at most this size.
const DefaultChunk = 4096

// New returns an arbiter with the default chunk size.
func New() *Arbiter {
	return &Arbiter{chunk: DefaultChunk}
}

// SetChunk overrides the per-transfer partition size (tests use tiny ones).
func (a *Arbiter) SetChunk(n int) {
	if n > 0 {
		a.chunk = n
	}
}

// Register wires one device's link and control lines. dc may be nil.
func (a *Arbiter) Register(dev Device, link hal.Link, cs, dc hal.Pin) {
	a.eps[dev] = endpoint{link: link, cs: cs, dc: dc, registered: true}
	cs.High()
}

// Acquire takes the bus token for dev. It fails with ErrBusy while another
// handle is outstanding.
func (a *Arbiter) Acquire(dev Device) (*Handle, error) {
	if dev >= deviceCount || !a.eps[dev].registered {
		return nil, ErrNotRegistered
	}
	if a.held {
		return nil, fmt.Errorf("%w: %s holds the bus, %s requested", ErrBusy, a.owner, dev)
	}
	a.held = true
	a.owner = dev
	a.gen++
	return &Handle{arb: a, dev: dev, gen: a.gen}, nil
}

// Release returns the token. Releasing a stale handle is a no-op.
func (a *Arbiter) Release(h *Handle) {
	if h == nil || h.arb != a || !a.held || h.gen != a.gen {
		return
	}
	a.held = false
}

func (a *Arbiter) validate(h *Handle) (*endpoint, error) {
	if h == nil || h.arb != a || !a.held || h.gen != a.gen || h.dev != a.owner {
		return nil, ErrNoHandle
	}
	return &a.eps[h.dev], nil
}

// Transfer clocks one command/data transaction: cmd bytes with the
// data/command line low, then data with it high, chip-select asserted
// around the whole write. data may be arbitrarily long; it is partitioned
// into chunk-sized pieces forming a single logical write.
func (a *Arbiter) Transfer(h *Handle, cmd, data []byte) error {
	ep, err := a.validate(h)
	if err != nil {
		return err
	}
	ep.cs.Low()
	defer ep.cs.High()

	if len(cmd) > 0 {
		if ep.dc != nil {
			ep.dc.Low()
		}
		if err := ep.link.Tx(cmd, nil); err != nil {
			return &TransferError{Dev: h.dev, Err: err}
		}
	}
	if len(data) > 0 {
		if ep.dc != nil {
			ep.dc.High()
		}
		for off := 0; off < len(data); off += a.chunk {
			end := off + a.chunk
			if end > len(data) {
				end = len(data)
			}
			if err := ep.link.Tx(data[off:end], nil); err != nil {
				return &TransferError{Dev: h.dev, Err: err}
			}
		}
	}
	return nil
}

// Exchange clocks a full-duplex transaction (the touch sensor's ADC
// reads): w is written while r fills, chip-select bracketing the exchange.
func (a *Arbiter) Exchange(h *Handle, w, r []byte) error {
	ep, err := a.validate(h)
	if err != nil {
		return err
	}
	ep.cs.Low()
	defer ep.cs.High()
	if err := ep.link.Tx(w, r); err != nil {
		return &TransferError{Dev: h.dev, Err: err}
	}
	return nil
}
