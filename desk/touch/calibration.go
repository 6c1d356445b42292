// Package touch reads the resistive touch sensor sharing the display bus,
// turns raw ADC readings into calibrated panel coordinates and debounces
// them into press/move/release/tap events.
package touch

import "tinygo.org/x/drivers/touch"

// Calibration maps raw sensor readings onto panel pixels. It is built
// once at startup from configuration and read-only during sampling; a
// calibration utility rewrites the stored values out of band.
type Calibration struct {
	SwapAxes bool `json:"swap_axes"`
	FlipX    bool `json:"flip_x"`
	FlipY    bool `json:"flip_y"`

	XMin int `json:"x_min"`
	XMax int `json:"x_max"`
	YMin int `json:"y_min"`
	YMax int `json:"y_max"`
}

// rawFullScale is the sensor's 12-bit ADC range.
const rawFullScale = 4095

// Normalized returns a copy with swapped bounds reordered and empty
// ranges widened to full scale.
func (c Calibration) Normalized() Calibration {
	if c.XMin > c.XMax {
		c.XMin, c.XMax = c.XMax, c.XMin
	}
	if c.YMin > c.YMax {
		c.YMin, c.YMax = c.YMax, c.YMin
	}
	if c.XMin == c.XMax {
		c.XMin, c.XMax = 0, rawFullScale
	}
	if c.YMin == c.YMax {
		c.YMin, c.YMax = 0, rawFullScale
	}
	return c
}

// Map transforms one raw reading into pixel coordinates on a w×h panel.
// The order is fixed: axis swap first, then the linear range map with
// clamping, then the output mirrors.
func (c Calibration) Map(p touch.Point, w, h int) (int, int) {
	rx, ry := p.X, p.Y
	if c.SwapAxes {
		rx, ry = ry, rx
	}

	x := scaleClamped(rx, c.XMin, c.XMax, w)
	y := scaleClamped(ry, c.YMin, c.YMax, h)

	if c.FlipX {
		x = w - 1 - x
	}
	if c.FlipY {
		y = h - 1 - y
	}
	return x, y
}

// scaleClamped maps raw from [min,max] to [0,size), clamping readings
// outside the configured range.
func scaleClamped(raw, min, max, size int) int {
	if raw < min {
		raw = min
	}
	if raw > max {
		raw = max
	}
	v := (raw - min) * size / (max - min)
	if v > size-1 {
		v = size - 1
	}
	if v < 0 {
		v = 0
	}
	return v
}
