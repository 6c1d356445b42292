// Package hal is the only contact point between the desk core and the
// hardware: control pins, the shared serial link, and frame sinks. Every
// platform backend (Linux SBC, bare-metal, host simulation) reduces to the
// small interfaces below.
package hal

import "errors"

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
}

// Pin is a single digital output line (chip-select, data/command, reset).
type Pin interface {
	High()
	Low()
}

// InputPin is a single digital input line (touch interrupt).
type InputPin interface {
	// Read reports the electrical level; the touch IRQ is active-low.
	Read() bool
}

// PWM drives a duty-cycle output. The backlight is the only consumer.
type PWM interface {
	// SetDuty sets the output duty in percent, 0..100. Backends without a
	// PWM block may quantize to on/off.
	SetDuty(percent uint8) error
}

// Link clocks bytes for one logical device on the shared serial bus.
// w and r may each be nil; with both set the exchange is full duplex.
// A Link carries its device's clock rate but never its chip-select:
// chip-select ordering belongs to the transport arbiter.
type Link interface {
	Tx(w, r []byte) error
}

// PanelIO bundles the bus access and control lines for one display panel.
type PanelIO struct {
	Link Link
	CS   Pin
	DC   Pin
	RST  Pin
	BL   PWM // primary panel only; nil elsewhere
}

// TouchIO bundles the bus access and control lines for the touch sensor.
type TouchIO struct {
	Link Link
	CS   Pin
	IRQ  InputPin
}

// BusIO is everything a hardware backend provides for the three logical
// devices sharing the physical link.
type BusIO struct {
	Primary   PanelIO
	Secondary PanelIO
	Touch     TouchIO
}

// FrameSink accepts finished frames for one panel. Implemented by the
// panel driver, the PNG null sink and the preview window.
type FrameSink interface {
	Size() (w, h int)
	Blit(f *Frame) error
}

// ErrNoHardware is returned by backends that cannot reach the physical bus.
var ErrNoHardware = errors.New("hal: no hardware present")
