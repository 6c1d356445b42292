package hal

import (
	"fmt"
	"os"
	"path/filepath"
)

// PNGSink is the null display sink used by the headless fallback. It
// accepts frames like a panel driver would and writes the most recent one
// to <dir>/<name>.png so the output stays inspectable without hardware.
type PNGSink struct {
	name  string
	dir   string
	w, h  int
	blits uint64
}

// NewPNGSink creates the sink and its output directory.
func NewPNGSink(dir, name string, w, h int) (*PNGSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("png sink: %w", err)
	}
	return &PNGSink{name: name, dir: dir, w: w, h: h}, nil
}

func (s *PNGSink) Size() (int, int) { return s.w, s.h }

// Blits reports how many frames the sink has accepted.
func (s *PNGSink) Blits() uint64 { return s.blits }

func (s *PNGSink) Blit(f *Frame) error {
	if f == nil || f.W != s.w || f.H != s.h {
		return fmt.Errorf("png sink %s: frame size mismatch", s.name)
	}
	path := filepath.Join(s.dir, s.name+".png")
	tmp := path + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("png sink %s: %w", s.name, err)
	}
	if err := f.EncodePNG(out); err != nil {
		out.Close()
		os.Remove(tmp)
		return fmt.Errorf("png sink %s: %w", s.name, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("png sink %s: %w", s.name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("png sink %s: %w", s.name, err)
	}
	s.blits++
	return nil
}
