package hal

import (
	"fmt"
	"os"
	"sync"
)

// NewHostLogger returns a Logger that writes lines to stdout.
func NewHostLogger() Logger {
	return &hostLogger{w: os.Stdout}
}

type hostLogger struct {
	mu sync.Mutex
	w  *os.File
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

// SimRecorder collects bus-level events in order. Simulated pins and links
// share one recorder so tests can assert cross-device ordering (chip-select
// bracketing, no interleaved transfers).
type SimRecorder struct {
	mu     sync.Mutex
	events []string
}

func (r *SimRecorder) Record(ev string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

// Events returns a copy of everything recorded so far.
func (r *SimRecorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

// SimPin is a virtual output pin. The zero value works; a name plus
// recorder makes level changes visible to tests.
type SimPin struct {
	name  string
	rec   *SimRecorder
	level bool
}

func NewSimPin(name string, rec *SimRecorder) *SimPin {
	// Control lines idle high (chip-select and reset are active-low).
	return &SimPin{name: name, rec: rec, level: true}
}

func (p *SimPin) High() {
	p.level = true
	p.rec.Record(p.name + " high")
}

func (p *SimPin) Low() {
	p.level = false
	p.rec.Record(p.name + " low")
}

// Level reports the last written level.
func (p *SimPin) Level() bool { return p.level }

// SimInputPin is a settable input line. It idles high, matching the
// active-low touch IRQ.
type SimInputPin struct {
	level bool
	set   bool
}

func (p *SimInputPin) Read() bool { return !p.set || p.level }

func (p *SimInputPin) SetLevel(level bool) {
	p.set = true
	p.level = level
}

// SimLink is a virtual serial link. OnTx, when set, inspects the written
// bytes and may fill the read buffer or fail the transfer.
type SimLink struct {
	name string
	rec  *SimRecorder
	OnTx func(w, r []byte) error
}

func NewSimLink(name string, rec *SimRecorder) *SimLink {
	return &SimLink{name: name, rec: rec}
}

func (l *SimLink) Tx(w, r []byte) error {
	l.rec.Record(fmt.Sprintf("%s tx %d", l.name, len(w)))
	if l.OnTx != nil {
		return l.OnTx(w, r)
	}
	return nil
}

// SimPWM records the last duty written to it.
type SimPWM struct {
	duty uint8
}

func (p *SimPWM) SetDuty(percent uint8) error {
	if percent > 100 {
		percent = 100
	}
	p.duty = percent
	return nil
}

// Duty reports the last duty written.
func (p *SimPWM) Duty() uint8 { return p.duty }

// NewSimBus builds a fully simulated BusIO wired to one recorder.
func NewSimBus(rec *SimRecorder) *BusIO {
	return &BusIO{
		Primary: PanelIO{
			Link: NewSimLink("primary", rec),
			CS:   NewSimPin("primary cs", rec),
			DC:   NewSimPin("primary dc", rec),
			RST:  NewSimPin("primary rst", rec),
			BL:   &SimPWM{},
		},
		Secondary: PanelIO{
			Link: NewSimLink("secondary", rec),
			CS:   NewSimPin("secondary cs", rec),
			DC:   NewSimPin("secondary dc", rec),
			RST:  NewSimPin("secondary rst", rec),
		},
		Touch: TouchIO{
			Link: NewSimLink("touch", rec),
			CS:   NewSimPin("touch cs", rec),
			IRQ:  &SimInputPin{},
		},
	}
}
