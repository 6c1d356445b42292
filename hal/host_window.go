//go:build !tinygo

package hal

import (
	"image"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"anddesk/internal/buildinfo"
)

// WindowSink is a FrameSink that mirrors one panel into the preview window.
type WindowSink struct {
	mu   sync.Mutex
	w, h int
	pix  []byte
}

// NewWindowSink creates a sink for a panel of the given resolution.
func NewWindowSink(w, h int) *WindowSink {
	return &WindowSink{w: w, h: h, pix: make([]byte, w*h*2)}
}

func (s *WindowSink) Size() (int, int) { return s.w, s.h }

func (s *WindowSink) Blit(f *Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copy(s.pix, f.Pix)
	return nil
}

func (s *WindowSink) snapshot(dst []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copy(dst, s.pix)
}

// WindowTap is a synthetic tap injected by clicking the primary panel area.
type WindowTap struct {
	X, Y int
}

// RunWindow opens a desktop window showing both panels side by side and
// drives one scheduler step per frame. Left clicks inside the primary
// panel area are delivered on taps. Blocks until the window closes.
func RunWindow(primary, secondary *WindowSink, taps chan<- WindowTap, step func() error) error {
	const gap = 8
	g := &previewGame{primary: primary, secondary: secondary, taps: taps, step: step, gap: gap}
	w := primary.w + gap + secondary.w
	h := primary.h
	if secondary.h > h {
		h = secondary.h
	}
	g.w, g.h = w, h
	ebiten.SetWindowTitle(buildinfo.Name + " (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(w*2, h*2)
	ebiten.SetTPS(60)
	return ebiten.RunGame(g)
}

type previewGame struct {
	primary   *WindowSink
	secondary *WindowSink
	taps      chan<- WindowTap
	step      func() error

	w, h, gap int

	primImg *panelImage
	secImg  *panelImage
}

func (g *previewGame) Update() error {
	if g.taps != nil && inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		if x >= 0 && x < g.primary.w && y >= 0 && y < g.primary.h {
			select {
			case g.taps <- WindowTap{X: x, Y: y}:
			default:
			}
		}
	}
	if g.step != nil {
		return g.step()
	}
	return nil
}

func (g *previewGame) Draw(screen *ebiten.Image) {
	if g.primImg == nil {
		g.primImg = newPanelImage(g.primary.w, g.primary.h)
		g.secImg = newPanelImage(g.secondary.w, g.secondary.h)
	}
	g.primImg.refresh(g.primary)
	g.secImg.refresh(g.secondary)

	screen.DrawImage(g.primImg.eb, nil)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(g.primary.w+g.gap), 0)
	screen.DrawImage(g.secImg.eb, op)
}

func (g *previewGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.w, g.h
}

type panelImage struct {
	img     *image.RGBA
	eb      *ebiten.Image
	scratch []byte
}

func newPanelImage(w, h int) *panelImage {
	return &panelImage{
		img:     image.NewRGBA(image.Rect(0, 0, w, h)),
		eb:      ebiten.NewImage(w, h),
		scratch: make([]byte, w*h*2),
	}
}

func (p *panelImage) refresh(s *WindowSink) {
	s.snapshot(p.scratch)
	src := p.scratch
	dst := p.img.Pix
	for i := 0; i+1 < len(src) && i/2*4+3 < len(dst); i += 2 {
		r, g, b := RGB888From565(uint16(src[i]) | uint16(src[i+1])<<8)
		j := (i / 2) * 4
		dst[j+0] = r
		dst[j+1] = g
		dst[j+2] = b
		dst[j+3] = 0xFF
	}
	p.eb.WritePixels(p.img.Pix)
}
