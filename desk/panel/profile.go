// Package panel drives the two display controllers sharing the bus: the
// ILI9341 primary panel (320×240 landscape) and the ST7735 secondary
// status panel (160×128 landscape). One driver serves both; the per-panel
// differences live entirely in an immutable Profile.
package panel

import "time"

// Controller commands common to both panels.
const (
	cmdSWReset     = 0x01
	cmdSleepOut    = 0x11
	cmdNormalOn    = 0x13
	cmdDisplayOn   = 0x29
	cmdColumnAddr  = 0x2A
	cmdRowAddr     = 0x2B
	cmdMemoryWrite = 0x2C
	cmdMadctl      = 0x36
	cmdPixelFormat = 0x3A
)

// MADCTL orientation bits. A deployment with a mirrored or rotated panel
// XORs these into Profile.Madctl; it is a configuration knob, not an
// error condition.
const (
	MadctlMY  = 0x80 // row-address flip (vertical)
	MadctlMX  = 0x40 // column-address flip (horizontal)
	MadctlMV  = 0x20 // row/column exchange (axis swap)
	MadctlBGR = 0x08 // color order
)

// Step is one init-sequence entry: a command, its parameters and an
// optional settle delay.
type Step struct {
	Cmd   byte
	Data  []byte
	Delay time.Duration
}

// Profile is the immutable descriptor for one panel variant. Two live
// instances exist; they are constructed once at startup and never mutated.
type Profile struct {
	Name          string
	Width, Height int

	Madctl      byte // orientation register value
	PixelFormat byte // COLMOD parameter

	ResetHold   time.Duration // reset line held low
	ResetSettle time.Duration // wait after releasing reset

	SleepOutSettle time.Duration

	// Prelude runs after sleep-out, before pixel format and orientation:
	// vendor power, VCOM and timing setup.
	Prelude []Step
	// Finish runs after the orientation write, before display-on: gamma
	// tables and the like.
	Finish []Step

	DisplayOnSettle time.Duration
}

// Primary returns the ILI9341 320×240 landscape profile. MADCTL 0xE8 is
// MY|MX|MV|BGR: axis swap for landscape, both mirrors to fix the scan
// direction, BGR panel order.
func Primary() Profile {
	return Profile{
		Name:        "primary",
		Width:       320,
		Height:      240,
		Madctl:      MadctlMY | MadctlMX | MadctlMV | MadctlBGR, // 0xE8
		PixelFormat: 0x55,                                       // 16-bit RGB565
		ResetHold:   100 * time.Millisecond,
		ResetSettle: 100 * time.Millisecond,

		SleepOutSettle: 120 * time.Millisecond,
		Prelude: []Step{
			{Cmd: 0xCF, Data: []byte{0x00, 0x83, 0x30}},
			{Cmd: 0xED, Data: []byte{0x64, 0x03, 0x12, 0x81}},
			{Cmd: 0xE8, Data: []byte{0x85, 0x01, 0x79}},
			{Cmd: 0xCB, Data: []byte{0x39, 0x2C, 0x00, 0x34, 0x02}},
			{Cmd: 0xF7, Data: []byte{0x20}},
			{Cmd: 0xEA, Data: []byte{0x00, 0x00}},
			{Cmd: 0xC0, Data: []byte{0x26}},       // power control 1
			{Cmd: 0xC1, Data: []byte{0x11}},       // power control 2
			{Cmd: 0xC5, Data: []byte{0x35, 0x3E}}, // VCOM 1
			{Cmd: 0xC7, Data: []byte{0xBE}},       // VCOM 2
		},
		Finish: []Step{
			{Cmd: 0xB1, Data: []byte{0x00, 0x1B}}, // frame rate
			{Cmd: 0xF2, Data: []byte{0x08}},       // 3-gamma off
			{Cmd: 0x26, Data: []byte{0x01}},       // gamma curve
			{Cmd: 0xE0, Data: []byte{0x1F, 0x1A, 0x18, 0x0A, 0x0F, 0x06, 0x45, 0x87,
				0x32, 0x0A, 0x07, 0x02, 0x07, 0x05, 0x00}},
			{Cmd: 0xE1, Data: []byte{0x00, 0x25, 0x27, 0x05, 0x10, 0x09, 0x3A, 0x78,
				0x4D, 0x05, 0x18, 0x0D, 0x38, 0x3A, 0x1F}},
		},
		DisplayOnSettle: 50 * time.Millisecond,
	}
}

// Secondary returns the ST7735 160×128 landscape profile. MADCTL 0x68 is
// MX|MV|BGR; this panel scans the other way, so no MY.
func Secondary() Profile {
	return Profile{
		Name:        "secondary",
		Width:       160,
		Height:      128,
		Madctl:      MadctlMX | MadctlMV | MadctlBGR, // 0x68
		PixelFormat: 0x05,                            // 16-bit RGB565
		ResetHold:   100 * time.Millisecond,
		ResetSettle: 100 * time.Millisecond,

		// The ST7735 wants a long post-sleep-out settle.
		SleepOutSettle: 500 * time.Millisecond,
		Prelude: []Step{
			{Cmd: 0xB1, Data: []byte{0x01, 0x2C, 0x2D}}, // frame rate, normal mode
			{Cmd: 0xB4, Data: []byte{0x07}},             // inversion control
			{Cmd: 0xC0, Data: []byte{0xA2, 0x02, 0x84}}, // power control 1
			{Cmd: 0xC1, Data: []byte{0xC5}},             // power control 2
			{Cmd: 0xC2, Data: []byte{0x0A, 0x00}},       // power control 3
			{Cmd: 0xC5, Data: []byte{0x8A, 0x2A}},       // VCOM
		},
		Finish: []Step{
			{Cmd: 0xE0, Data: []byte{0x02, 0x1C, 0x07, 0x12, 0x37, 0x32, 0x29, 0x2D,
				0x29, 0x25, 0x2B, 0x39, 0x00, 0x01, 0x03, 0x10}},
			{Cmd: 0xE1, Data: []byte{0x03, 0x1D, 0x07, 0x06, 0x2E, 0x2C, 0x29, 0x2D,
				0x2E, 0x2E, 0x37, 0x3F, 0x00, 0x00, 0x02, 0x10}},
			{Cmd: cmdNormalOn, Delay: 10 * time.Millisecond},
		},
		DisplayOnSettle: 100 * time.Millisecond,
	}
}
