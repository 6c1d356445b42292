package render

import (
	"image/color"

	"tinygo.org/x/drivers"

	"anddesk/hal"
)

// fbDisplay adapts a frame to the displayer contract the font renderer
// draws through. Display is a no-op; the scheduler pushes the finished
// frame to the panel.
type fbDisplay struct {
	fb *hal.Frame
}

func newFBDisplay(fb *hal.Frame) *fbDisplay {
	return &fbDisplay{fb: fb}
}

func (d *fbDisplay) Size() (x, y int16) {
	return int16(d.fb.W), int16(d.fb.H)
}

func (d *fbDisplay) SetPixel(x, y int16, c color.RGBA) {
	ix, iy := int(x), int(y)
	if ix < 0 || ix >= d.fb.W || iy < 0 || iy >= d.fb.H {
		return
	}
	d.fb.SetRGB(ix, iy, c.R, c.G, c.B)
}

func (d *fbDisplay) Display() error { return nil }

func (d *fbDisplay) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	x0 := clampInt(int(x), 0, d.fb.W)
	y0 := clampInt(int(y), 0, d.fb.H)
	x1 := clampInt(int(x)+int(width), 0, d.fb.W)
	y1 := clampInt(int(y)+int(height), 0, d.fb.H)
	for py := y0; py < y1; py++ {
		for px := x0; px < x1; px++ {
			d.fb.SetRGB(px, py, c.R, c.G, c.B)
		}
	}
	return nil
}

func (d *fbDisplay) SetRotation(rotation drivers.Rotation) error {
	_ = rotation
	return nil
}

func (d *fbDisplay) hline(x0, x1, y int, c color.RGBA) {
	d.FillRectangle(int16(x0), int16(y), int16(x1-x0), 1, c)
}

func (d *fbDisplay) vline(x, y0, y1 int, c color.RGBA) {
	d.FillRectangle(int16(x), int16(y0), 1, int16(y1-y0), c)
}

// dot draws a small filled square marker (squares read fine at this
// pixel density and avoid per-frame circle rasterizing).
func (d *fbDisplay) dot(x, y, r int, c color.RGBA) {
	d.FillRectangle(int16(x-r), int16(y-r), int16(2*r), int16(2*r), c)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
