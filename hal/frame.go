package hal

import (
	"image"
	"image/color"
	"image/png"
	"io"
)

// Frame is a finished RGB565 frame for one panel. Pixels are stored
// little-endian, two bytes each, row-major. A frame is produced by the
// renderer, handed to exactly one sink, and discarded within the tick.
type Frame struct {
	W, H int
	Pix  []byte
}

// NewFrame allocates a zeroed (black) frame.
func NewFrame(w, h int) *Frame {
	return &Frame{W: w, H: h, Pix: make([]byte, w*h*2)}
}

func (f *Frame) stride() int { return f.W * 2 }

// ClearRGB fills the whole frame with one color.
func (f *Frame) ClearRGB(r, g, b uint8) {
	p := RGB565(r, g, b)
	lo := byte(p)
	hi := byte(p >> 8)
	for i := 0; i < len(f.Pix); i += 2 {
		f.Pix[i] = lo
		f.Pix[i+1] = hi
	}
}

// SetRGB writes one pixel. Out-of-bounds coordinates are discarded.
func (f *Frame) SetRGB(x, y int, r, g, b uint8) {
	if x < 0 || x >= f.W || y < 0 || y >= f.H {
		return
	}
	p := RGB565(r, g, b)
	off := y*f.stride() + x*2
	f.Pix[off] = byte(p)
	f.Pix[off+1] = byte(p >> 8)
}

// At565 reads one packed pixel; out-of-bounds reads return 0.
func (f *Frame) At565(x, y int) uint16 {
	if x < 0 || x >= f.W || y < 0 || y >= f.H {
		return 0
	}
	off := y*f.stride() + x*2
	return uint16(f.Pix[off]) | uint16(f.Pix[off+1])<<8
}

// EncodePNG writes the frame as a PNG image. Used by the null display
// sink so headless frames stay inspectable.
func (f *Frame) EncodePNG(w io.Writer) error {
	img := image.NewRGBA(image.Rect(0, 0, f.W, f.H))
	for y := 0; y < f.H; y++ {
		for x := 0; x < f.W; x++ {
			r, g, b := RGB888From565(f.At565(x, y))
			img.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 0xFF})
		}
	}
	return png.Encode(w, img)
}
