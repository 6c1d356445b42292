package panel

import (
	"errors"
	"fmt"
	"time"

	"anddesk/desk/bus"
	"anddesk/hal"
)

// ErrNoBacklight is returned for panels without a backlight line.
var ErrNoBacklight = errors.New("panel: no backlight")

// ErrNotInitialized is returned when a blit is attempted before a
// successful Initialize.
var ErrNotInitialized = errors.New("panel: not initialized")

// Driver is the protocol state for one panel. It owns the panel's reset
// and backlight lines; the chip-select and data/command lines are owned by
// the arbiter the driver speaks through.
type Driver struct {
	prof Profile
	arb  *bus.Arbiter
	dev  bus.Device
	rst  hal.Pin
	bl   hal.PWM
	log  hal.Logger

	sleep func(time.Duration)
	swap  []byte
	ready bool
}

// New wires a driver. bl may be nil (secondary panel).
func New(prof Profile, arb *bus.Arbiter, dev bus.Device, rst hal.Pin, bl hal.PWM, log hal.Logger) *Driver {
	return &Driver{
		prof:  prof,
		arb:   arb,
		dev:   dev,
		rst:   rst,
		bl:    bl,
		log:   log,
		sleep: time.Sleep,
		swap:  make([]byte, prof.Width*prof.Height*2),
	}
}

// Profile returns the panel's immutable descriptor.
func (d *Driver) Profile() Profile { return d.prof }

// Size implements hal.FrameSink.
func (d *Driver) Size() (int, int) { return d.prof.Width, d.prof.Height }

// Initialize brings the controller up: reset pulse with minimum hold
// times, software reset, sleep-out, vendor prelude, pixel format, the
// orientation register write, finish steps, display-on. One bus
// transaction covers the whole sequence.
func (d *Driver) Initialize() error {
	d.rst.Low()
	d.sleep(d.prof.ResetHold)
	d.rst.High()
	d.sleep(d.prof.ResetSettle)

	h, err := d.arb.Acquire(d.dev)
	if err != nil {
		return fmt.Errorf("panel %s: init: %w", d.prof.Name, err)
	}
	defer d.arb.Release(h)

	steps := []Step{
		{Cmd: cmdSWReset, Delay: 150 * time.Millisecond},
		{Cmd: cmdSleepOut, Delay: d.prof.SleepOutSettle},
	}
	steps = append(steps, d.prof.Prelude...)
	steps = append(steps,
		Step{Cmd: cmdPixelFormat, Data: []byte{d.prof.PixelFormat}},
		Step{Cmd: cmdMadctl, Data: []byte{d.prof.Madctl}},
	)
	steps = append(steps, d.prof.Finish...)
	steps = append(steps, Step{Cmd: cmdDisplayOn, Delay: d.prof.DisplayOnSettle})

	for _, st := range steps {
		if err := d.arb.Transfer(h, []byte{st.Cmd}, st.Data); err != nil {
			return fmt.Errorf("panel %s: init cmd 0x%02X: %w", d.prof.Name, st.Cmd, err)
		}
		if st.Delay > 0 {
			d.sleep(st.Delay)
		}
	}

	d.ready = true
	if d.log != nil {
		d.log.WriteLineString(fmt.Sprintf("panel %s: up, %dx%d madctl 0x%02X",
			d.prof.Name, d.prof.Width, d.prof.Height, d.prof.Madctl))
	}
	return nil
}

// setWindow addresses the rectangle [x0,x1]×[y0,y1] (inclusive) for the
// following memory write. Both controllers take big-endian 16-bit bounds.
func (d *Driver) setWindow(h *bus.Handle, x0, y0, x1, y1 int) error {
	col := []byte{byte(x0 >> 8), byte(x0), byte(x1 >> 8), byte(x1)}
	row := []byte{byte(y0 >> 8), byte(y0), byte(y1 >> 8), byte(y1)}
	if err := d.arb.Transfer(h, []byte{cmdColumnAddr}, col); err != nil {
		return err
	}
	return d.arb.Transfer(h, []byte{cmdRowAddr}, row)
}

// Blit pushes a full frame: one window set covering the panel, then the
// pixel stream as a single logical write. If it fails the window state is
// undefined and the caller must re-issue a full blit; there is no partial
// recovery.
func (d *Driver) Blit(f *hal.Frame) error {
	return d.BlitRegion(f, 0, 0, d.prof.Width, d.prof.Height)
}

// BlitRegion pushes the sub-rectangle [x,y)–[x+w,y+h) of f, which must be
// a full-width frame for this panel. The window set is issued before
// every blit.
func (d *Driver) BlitRegion(f *hal.Frame, x, y, w, h int) error {
	if !d.ready {
		return ErrNotInitialized
	}
	if f == nil || f.W != d.prof.Width || f.H != d.prof.Height {
		return fmt.Errorf("panel %s: frame size mismatch", d.prof.Name)
	}
	if x < 0 || y < 0 || w <= 0 || h <= 0 || x+w > f.W || y+h > f.H {
		return fmt.Errorf("panel %s: blit region out of bounds", d.prof.Name)
	}

	// Frames are little-endian RGB565; the controllers want big-endian.
	n := 0
	stride := f.W * 2
	for row := y; row < y+h; row++ {
		off := row*stride + x*2
		for i := 0; i < w*2; i += 2 {
			d.swap[n] = f.Pix[off+i+1]
			d.swap[n+1] = f.Pix[off+i]
			n += 2
		}
	}

	hd, err := d.arb.Acquire(d.dev)
	if err != nil {
		return fmt.Errorf("panel %s: blit: %w", d.prof.Name, err)
	}
	defer d.arb.Release(hd)

	if err := d.setWindow(hd, x, y, x+w-1, y+h-1); err != nil {
		return fmt.Errorf("panel %s: window: %w", d.prof.Name, err)
	}
	if err := d.arb.Transfer(hd, []byte{cmdMemoryWrite}, d.swap[:n]); err != nil {
		return fmt.Errorf("panel %s: blit: %w", d.prof.Name, err)
	}
	return nil
}

// SetBacklight sets the backlight duty in percent. Only the primary panel
// carries a backlight line.
func (d *Driver) SetBacklight(percent uint8) error {
	if d.bl == nil {
		return ErrNoBacklight
	}
	return d.bl.SetDuty(percent)
}
