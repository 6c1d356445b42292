package touch

import (
	"fmt"
	"sort"
	"time"

	"tinygo.org/x/drivers/touch"

	"anddesk/desk/bus"
	"anddesk/hal"
)

// XPT2046 control bytes: 12-bit differential reads per channel.
const (
	chanX  = 0x90
	chanY  = 0xD0
	chanZ1 = 0xB0
)

// readsPerChannel raw conversions are taken per channel; the middle four
// of the sorted readings are averaged to reject outliers.
const readsPerChannel = 8

// Sample is one raw reading from the sensor: ADC position plus pressure
// in Point.Z and the interrupt line's contact flag. It lives for one
// sampling tick.
type Sample struct {
	Point   touch.Point
	Contact bool
}

// Config holds the debounce and gesture thresholds. All of them are
// tunable; the defaults are a starting point, not correctness
// requirements.
type Config struct {
	PressSamples   int           // consecutive consistent samples to emit a press
	ReleaseSamples int           // consecutive idle samples to emit a release
	JitterPx       int           // pixel tolerance between "consistent" samples
	PressureMin    int           // minimum Z to count as contact
	TapWindow      time.Duration // press-to-release window for a tap
	TapSlopPx      int           // movement tolerance for a tap
}

// DefaultConfig returns the stock thresholds.
func DefaultConfig() Config {
	return Config{
		PressSamples:   3,
		ReleaseSamples: 2,
		JitterPx:       8,
		PressureMin:    120,
		TapWindow:      400 * time.Millisecond,
		TapSlopPx:      12,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.PressSamples <= 0 {
		c.PressSamples = d.PressSamples
	}
	if c.ReleaseSamples <= 0 {
		c.ReleaseSamples = d.ReleaseSamples
	}
	if c.JitterPx <= 0 {
		c.JitterPx = d.JitterPx
	}
	if c.PressureMin <= 0 {
		c.PressureMin = d.PressureMin
	}
	if c.TapWindow <= 0 {
		c.TapWindow = d.TapWindow
	}
	if c.TapSlopPx <= 0 {
		c.TapSlopPx = d.TapSlopPx
	}
	return c
}

// Sampler reads the sensor through the arbiter and debounces the stream.
// It is driven once per scheduler tick; the bus is held only for the
// duration of one Sample call, never across ticks.
type Sampler struct {
	arb *bus.Arbiter
	irq hal.InputPin
	cal Calibration
	cfg Config

	w, h int
	now  func() time.Time

	fsm debouncer
}

// NewSampler builds a sampler mapping onto a w×h panel. The calibration
// is normalized before use.
func NewSampler(arb *bus.Arbiter, irq hal.InputPin, cal Calibration, cfg Config, w, h int) *Sampler {
	cfg = cfg.withDefaults()
	return &Sampler{
		arb: arb,
		irq: irq,
		cal: cal.Normalized(),
		cfg: cfg,
		w:   w,
		h:   h,
		now: time.Now,
		fsm: newDebouncer(cfg),
	}
}

// Sample reads the raw channels once. The second return is false while
// nothing touches the panel (the interrupt line idles high). The bus is
// acquired and fully released inside the call so a pending display blit
// is never starved.
func (s *Sampler) Sample() (Sample, bool, error) {
	if s.irq.Read() { // active-low: high means no contact
		return Sample{}, false, nil
	}

	h, err := s.arb.Acquire(bus.TouchSensor)
	if err != nil {
		return Sample{}, false, err
	}
	defer s.arb.Release(h)

	x, err := s.readChannel(h, chanX)
	if err != nil {
		return Sample{}, false, err
	}
	y, err := s.readChannel(h, chanY)
	if err != nil {
		return Sample{}, false, err
	}
	z, err := s.readChannel(h, chanZ1)
	if err != nil {
		return Sample{}, false, err
	}

	return Sample{Point: touch.Point{X: x, Y: y, Z: z}, Contact: true}, true, nil
}

// readChannel performs readsPerChannel conversions and returns the mean
// of the middle four sorted values.
func (s *Sampler) readChannel(h *bus.Handle, cmd byte) (int, error) {
	vals := make([]int, 0, readsPerChannel)
	w := []byte{cmd, 0x00, 0x00}
	r := make([]byte, 3)
	for i := 0; i < readsPerChannel; i++ {
		if err := s.arb.Exchange(h, w, r); err != nil {
			return 0, fmt.Errorf("touch channel 0x%02X: %w", cmd, err)
		}
		vals = append(vals, (int(r[1])<<8|int(r[2]))>>3)
	}
	sort.Ints(vals)
	sum := 0
	for _, v := range vals[2:6] {
		sum += v
	}
	return sum / 4, nil
}

// Poll samples the sensor and advances the debouncer, returning at most
// one event per tick.
func (s *Sampler) Poll() (Event, bool, error) {
	sm, ok, err := s.Sample()
	if err != nil {
		return Event{}, false, err
	}
	ev, has := s.Feed(sm, ok)
	return ev, has, nil
}

// Feed advances the debounce state machine with one sample (ok=false for
// an idle tick) and returns an event when one fires. Split from Poll so
// synthetic streams can drive it.
func (s *Sampler) Feed(sm Sample, ok bool) (Event, bool) {
	contact := ok && sm.Contact && sm.Point.Z >= s.cfg.PressureMin
	if !contact {
		return s.fsm.idle(s.now())
	}
	x, y := s.cal.Map(sm.Point, s.w, s.h)
	return s.fsm.contact(s.now(), x, y)
}
