package bus

import (
	"errors"
	"strings"
	"testing"

	"anddesk/hal"
)

func newTestArbiter(rec *hal.SimRecorder) *Arbiter {
	a := New()
	a.Register(PanelPrimary, hal.NewSimLink("primary", rec), hal.NewSimPin("primary cs", rec), hal.NewSimPin("primary dc", rec))
	a.Register(TouchSensor, hal.NewSimLink("touch", rec), hal.NewSimPin("touch cs", rec), nil)
	return a
}

func TestArbiterRejectsSecondAcquire(t *testing.T) {
	a := newTestArbiter(&hal.SimRecorder{})

	h, err := a.Acquire(PanelPrimary)
	if err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	if _, err := a.Acquire(TouchSensor); !errors.Is(err, ErrBusy) {
		t.Fatalf("second acquire: got %v, want ErrBusy", err)
	}

	a.Release(h)
	h2, err := a.Acquire(TouchSensor)
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	a.Release(h2)
}

func TestArbiterRejectsStaleHandle(t *testing.T) {
	a := newTestArbiter(&hal.SimRecorder{})

	h, _ := a.Acquire(PanelPrimary)
	a.Release(h)
	if err := a.Transfer(h, []byte{0x2C}, nil); !errors.Is(err, ErrNoHandle) {
		t.Fatalf("transfer on released handle: got %v, want ErrNoHandle", err)
	}

	h2, _ := a.Acquire(PanelPrimary)
	defer a.Release(h2)
	if err := a.Transfer(h, nil, []byte{0x00}); !errors.Is(err, ErrNoHandle) {
		t.Fatalf("transfer on superseded handle: got %v, want ErrNoHandle", err)
	}
}

func TestArbiterUnregisteredDevice(t *testing.T) {
	a := newTestArbiter(&hal.SimRecorder{})
	if _, err := a.Acquire(PanelSecondary); !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("got %v, want ErrNotRegistered", err)
	}
}

func TestTransferBracketsChipSelect(t *testing.T) {
	rec := &hal.SimRecorder{}
	a := newTestArbiter(rec)

	h, _ := a.Acquire(PanelPrimary)
	if err := a.Transfer(h, []byte{0x36}, []byte{0xE8}); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	a.Release(h)

	want := []string{
		"primary cs low",
		"primary dc low",
		"primary tx 1",
		"primary dc high",
		"primary tx 1",
		"primary cs high",
	}
	got := rec.Events()
	if len(got) != len(want) {
		t.Fatalf("events: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTransferChunksLongWrites(t *testing.T) {
	rec := &hal.SimRecorder{}
	a := newTestArbiter(rec)
	a.SetChunk(4)

	h, _ := a.Acquire(PanelPrimary)
	if err := a.Transfer(h, []byte{0x2C}, make([]byte, 10)); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	a.Release(h)

	var sizes []string
	for _, ev := range rec.Events() {
		if strings.HasPrefix(ev, "primary tx") {
			sizes = append(sizes, ev)
		}
	}
	want := []string{"primary tx 1", "primary tx 4", "primary tx 4", "primary tx 2"}
	if len(sizes) != len(want) {
		t.Fatalf("tx events: got %v, want %v", sizes, want)
	}
	for i := range want {
		if sizes[i] != want[i] {
			t.Fatalf("tx %d: got %q, want %q", i, sizes[i], want[i])
		}
	}
}

func TestTransferFaultDeassertsChipSelect(t *testing.T) {
	rec := &hal.SimRecorder{}
	a := New()
	link := hal.NewSimLink("primary", rec)
	boom := errors.New("link fault")
	link.OnTx = func(w, r []byte) error { return boom }
	cs := hal.NewSimPin("primary cs", rec)
	a.Register(PanelPrimary, link, cs, hal.NewSimPin("primary dc", rec))

	h, _ := a.Acquire(PanelPrimary)
	err := a.Transfer(h, []byte{0x2C}, nil)
	a.Release(h)

	var te *TransferError
	if !errors.As(err, &te) || !errors.Is(err, boom) {
		t.Fatalf("got %v, want TransferError wrapping link fault", err)
	}
	if !cs.Level() {
		t.Fatal("chip-select left asserted after a faulting transfer")
	}
}

func TestExchangeReadsWhileWriting(t *testing.T) {
	rec := &hal.SimRecorder{}
	a := New()
	link := hal.NewSimLink("touch", rec)
	link.OnTx = func(w, r []byte) error {
		if len(w) != 3 || w[0] != 0x90 {
			t.Fatalf("unexpected write %v", w)
		}
		r[1] = 0x40
		r[2] = 0x00
		return nil
	}
	a.Register(TouchSensor, link, hal.NewSimPin("touch cs", rec), nil)

	h, _ := a.Acquire(TouchSensor)
	defer a.Release(h)
	r := make([]byte, 3)
	if err := a.Exchange(h, []byte{0x90, 0, 0}, r); err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if r[1] != 0x40 {
		t.Fatalf("read back %v", r)
	}
}
