package touch

import (
	"errors"
	"testing"

	"tinygo.org/x/drivers/touch"

	"anddesk/desk/bus"
	"anddesk/hal"
)

// encodeRaw fills an ADC response frame for a 12-bit value, matching the
// sensor's bit alignment (value in bits 14..3 of the two data bytes).
func encodeRaw(r []byte, v int) {
	u := uint16(v) << 3
	r[1] = byte(u >> 8)
	r[2] = byte(u)
}

func sensorFixture(t *testing.T) (*Sampler, *hal.SimLink, *hal.SimInputPin, *bus.Arbiter) {
	t.Helper()
	rec := &hal.SimRecorder{}
	link := hal.NewSimLink("touch", rec)
	irq := &hal.SimInputPin{}
	arb := bus.New()
	arb.Register(bus.TouchSensor, link, hal.NewSimPin("touch cs", rec), nil)
	cal := Calibration{XMin: 0, XMax: 4095, YMin: 0, YMax: 4095}
	s := NewSampler(arb, irq, cal, DefaultConfig(), 320, 240)
	return s, link, irq, arb
}

func TestSampleIdleWhileIRQHigh(t *testing.T) {
	s, link, irq, _ := sensorFixture(t)
	irq.SetLevel(true)
	link.OnTx = func(w, r []byte) error {
		t.Fatal("bus touched while the interrupt line is idle")
		return nil
	}

	_, ok, err := s.Sample()
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if ok {
		t.Fatal("reported contact with the interrupt line high")
	}
}

func TestSampleAveragesMiddleReadings(t *testing.T) {
	s, link, irq, _ := sensorFixture(t)
	irq.SetLevel(false)

	// Per channel: six readings at the base value plus one low and one
	// high outlier. The sorted-middle-four mean must reject the outliers.
	count := map[byte]int{}
	link.OnTx = func(w, r []byte) error {
		base := map[byte]int{chanX: 2000, chanY: 1000, chanZ1: 300}[w[0]]
		n := count[w[0]]
		count[w[0]]++
		switch n {
		case 0:
			encodeRaw(r, 0)
		case 7:
			encodeRaw(r, 4095)
		default:
			encodeRaw(r, base)
		}
		return nil
	}

	sm, ok, err := s.Sample()
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if !ok || !sm.Contact {
		t.Fatal("no contact reported")
	}
	want := touch.Point{X: 2000, Y: 1000, Z: 300}
	if sm.Point != want {
		t.Fatalf("point = %+v, want %+v", sm.Point, want)
	}
	for _, c := range []byte{chanX, chanY, chanZ1} {
		if count[c] != readsPerChannel {
			t.Fatalf("channel 0x%02X read %d times, want %d", c, count[c], readsPerChannel)
		}
	}
}

func TestSampleReleasesBusOnFault(t *testing.T) {
	s, link, irq, arb := sensorFixture(t)
	irq.SetLevel(false)
	fault := errors.New("clocked garbage")
	link.OnTx = func(w, r []byte) error { return fault }

	_, _, err := s.Sample()
	if !errors.Is(err, fault) {
		t.Fatalf("err = %v, want wrapped fault", err)
	}

	// The handle must be gone: another device can acquire immediately.
	h, err := arb.Acquire(bus.TouchSensor)
	if err != nil {
		t.Fatalf("bus still held after fault: %v", err)
	}
	arb.Release(h)
}

func TestFeedIgnoresLightContact(t *testing.T) {
	s, _, _, _ := sensorFixture(t)

	light := Sample{Point: touch.Point{X: 2000, Y: 2000, Z: 50}, Contact: true}
	for i := 0; i < 10; i++ {
		if ev, ok := s.Feed(light, true); ok {
			t.Fatalf("light contact emitted %v", ev.Kind)
		}
	}
}

func TestPollYieldsTapFromScriptedStream(t *testing.T) {
	s, link, irq, _ := sensorFixture(t)

	firm := func(w, r []byte) error {
		encodeRaw(r, map[byte]int{chanX: 2048, chanY: 2048, chanZ1: 500}[w[0]])
		return nil
	}
	link.OnTx = firm

	var got []Event
	poll := func() {
		t.Helper()
		ev, ok, err := s.Poll()
		if err != nil {
			t.Fatalf("Poll: %v", err)
		}
		if ok {
			got = append(got, ev)
		}
	}

	irq.SetLevel(false)
	for i := 0; i < 3; i++ {
		poll()
	}
	irq.SetLevel(true)
	for i := 0; i < 2; i++ {
		poll()
	}

	if len(got) != 2 || got[0].Kind != Press || got[1].Kind != Tap {
		t.Fatalf("events = %v, want press then tap", got)
	}
	if got[1].X != 160 || got[1].Y != 120 {
		t.Fatalf("tap at (%d,%d), want panel center (160,120)", got[1].X, got[1].Y)
	}
}
