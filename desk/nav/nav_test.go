package nav

import (
	"testing"
	"time"

	"anddesk/desk/model"
	"anddesk/desk/remote"
	"anddesk/hal"
)

type intentLog struct {
	sent []remote.Intent
}

func (l *intentLog) Send(in remote.Intent) { l.sent = append(l.sent, in) }

func fixture() (*Machine, *intentLog, *model.Store) {
	store := model.NewStore("tork", 25)
	cmd := &intentLog{}
	m := New(store, cmd, hal.NewHostLogger(), 25)
	return m, cmd, store
}

func t0() time.Time { return time.Unix(1700000000, 0) }

func TestTapInsideRegionTransitions(t *testing.T) {
	m, _, _ := fixture()
	m.SetRegions([]Region{{X0: 14, Y0: 82, X1: 96, Y1: 162, Op: OpNavigate, Target: Apps}})

	if !m.HandleTap(t0(), 50, 120) {
		t.Fatal("tap inside the region did not fire")
	}
	if m.Screen() != Apps {
		t.Fatalf("screen = %v, want apps", m.Screen())
	}
	if m.StackDepth() != 1 {
		t.Fatalf("stack depth = %d, want 1", m.StackDepth())
	}
}

func TestTapOutsideRegionsIsIgnored(t *testing.T) {
	m, _, _ := fixture()
	m.SetRegions([]Region{{X0: 14, Y0: 82, X1: 96, Y1: 162, Op: OpNavigate, Target: Apps}})

	if m.HandleTap(t0(), 200, 200) {
		t.Fatal("miss reported as handled")
	}
	if m.Screen() != Dashboard {
		t.Fatalf("screen = %v, want dashboard", m.Screen())
	}
}

func TestFirstMatchingRegionWins(t *testing.T) {
	m, _, _ := fixture()
	// Overlapping regions: match order is list order, not area.
	m.SetRegions([]Region{
		{X0: 0, Y0: 0, X1: 320, Y1: 240, Op: OpNavigate, Target: Brief},
		{X0: 0, Y0: 0, X1: 10, Y1: 10, Op: OpNavigate, Target: Emails},
	})

	m.HandleTap(t0(), 5, 5)
	if m.Screen() != Brief {
		t.Fatalf("screen = %v, want brief (first region in order)", m.Screen())
	}
}

func TestBackStackRoundTrip(t *testing.T) {
	m, _, _ := fixture()

	m.SetRegions([]Region{{X0: 14, Y0: 82, X1: 96, Y1: 162, Op: OpNavigate, Target: Apps}})
	m.HandleTap(t0(), 50, 120)
	if m.Screen() != Apps || m.StackDepth() != 1 {
		t.Fatalf("after pie tap: screen %v depth %d", m.Screen(), m.StackDepth())
	}

	m.SetRegions([]Region{{X0: 220, Y0: 0, X1: 320, Y1: 30, Op: OpBack}})
	m.HandleTap(t0(), 260, 10)
	if m.Screen() != Dashboard {
		t.Fatalf("back landed on %v, want dashboard", m.Screen())
	}
	if m.StackDepth() != 0 {
		t.Fatalf("stack depth = %d, want 0", m.StackDepth())
	}
}

func TestSubScreenTransitionsDoNotGrowStack(t *testing.T) {
	m, _, _ := fixture()

	m.SetRegions([]Region{{X0: 0, Y0: 0, X1: 320, Y1: 240, Op: OpNavigate, Target: Apps}})
	m.HandleTap(t0(), 10, 10)
	m.SetRegions([]Region{{X0: 0, Y0: 0, X1: 320, Y1: 240, Op: OpNavigate, Target: Emails}})
	m.HandleTap(t0(), 10, 10)

	if m.Screen() != Emails {
		t.Fatalf("screen = %v, want emails", m.Screen())
	}
	if m.StackDepth() != 1 {
		t.Fatalf("stack depth = %d, want 1 (apps entry only)", m.StackDepth())
	}

	// Back from a sub-screen pops to the dashboard entry.
	m.SetRegions([]Region{{X0: 0, Y0: 0, X1: 320, Y1: 240, Op: OpBack}})
	m.HandleTap(t0(), 10, 10)
	if m.Screen() != Dashboard || m.StackDepth() != 0 {
		t.Fatalf("after back: screen %v depth %d", m.Screen(), m.StackDepth())
	}
}

func TestBackWithEmptyStackFallsToDashboard(t *testing.T) {
	m, _, _ := fixture()
	m.SetRegions([]Region{{X0: 0, Y0: 0, X1: 320, Y1: 240, Op: OpNavigate, Target: Brief}})
	m.HandleTap(t0(), 10, 10)

	m.SetRegions([]Region{{X0: 0, Y0: 0, X1: 320, Y1: 240, Op: OpBack}})
	m.HandleTap(t0(), 10, 10)
	if m.Screen() != Dashboard {
		t.Fatalf("screen = %v, want dashboard", m.Screen())
	}
}

func TestFocusEntrySendsIntentAndArmsCountdown(t *testing.T) {
	m, cmd, store := fixture()
	m.SetRegions([]Region{{X0: 0, Y0: 0, X1: 320, Y1: 240, Op: OpNavigate, Target: Focus}})
	m.HandleTap(t0(), 10, 10)

	if len(cmd.sent) != 1 || cmd.sent[0] != remote.IntentFocusStart {
		t.Fatalf("intents = %v, want focus_start", cmd.sent)
	}
	snap := store.Snapshot()
	if !snap.Focus.Active || snap.Focus.SessionMins != 25 {
		t.Fatalf("focus not armed: %+v", snap.Focus)
	}
}

func TestFocusExpiryReturnsToDashboard(t *testing.T) {
	m, cmd, store := fixture()
	m.SetRegions([]Region{{X0: 0, Y0: 0, X1: 320, Y1: 240, Op: OpNavigate, Target: Focus}})
	m.HandleTap(t0(), 10, 10)

	m.Tick(t0().Add(10 * time.Minute))
	if got := store.Snapshot().Focus.ElapsedMins; got != 10 {
		t.Fatalf("elapsed = %d, want 10", got)
	}
	if m.Screen() != Focus {
		t.Fatalf("screen = %v, want focus mid-session", m.Screen())
	}

	m.Tick(t0().Add(25 * time.Minute))
	if m.Screen() != Dashboard {
		t.Fatalf("screen = %v, want dashboard after expiry", m.Screen())
	}
	snap := store.Snapshot()
	if snap.Focus.Active {
		t.Fatal("focus still active after expiry")
	}
	if snap.Focus.Message != "Session complete!" {
		t.Fatalf("message = %q", snap.Focus.Message)
	}
	if len(cmd.sent) != 2 || cmd.sent[1] != remote.IntentFocusEnd {
		t.Fatalf("intents = %v, want focus_start then focus_end", cmd.sent)
	}
}

func TestFocusCancelByBackEndsSession(t *testing.T) {
	m, cmd, store := fixture()
	m.SetRegions([]Region{{X0: 0, Y0: 0, X1: 320, Y1: 240, Op: OpNavigate, Target: Focus}})
	m.HandleTap(t0(), 10, 10)

	m.SetRegions([]Region{{X0: 0, Y0: 222, X1: 100, Y1: 240, Op: OpBack}})
	m.HandleTap(t0().Add(time.Minute), 50, 230)

	if m.Screen() != Dashboard {
		t.Fatalf("screen = %v, want dashboard", m.Screen())
	}
	snap := store.Snapshot()
	if snap.Focus.Active || snap.Focus.Message != "Session ended." {
		t.Fatalf("focus not cancelled cleanly: %+v", snap.Focus)
	}
	if len(cmd.sent) != 2 || cmd.sent[1] != remote.IntentFocusEnd {
		t.Fatalf("intents = %v", cmd.sent)
	}

	// Countdown is disarmed: a later tick past the deadline changes nothing.
	m.Tick(t0().Add(time.Hour))
	if store.Snapshot().Focus.Message != "Session ended." {
		t.Fatal("expiry fired after cancellation")
	}
}

func TestCleanTempFiresOnceAndResetsOnLeave(t *testing.T) {
	m, cmd, store := fixture()
	m.SetRegions([]Region{{X0: 0, Y0: 0, X1: 320, Y1: 240, Op: OpNavigate, Target: SysCare}})
	m.HandleTap(t0(), 10, 10)

	clean := []Region{{X0: 0, Y0: 30, X1: 320, Y1: 220, Op: OpCleanTemp}}
	m.SetRegions(clean)
	m.HandleTap(t0(), 100, 100)
	m.HandleTap(t0(), 100, 100)

	want := []remote.Intent{remote.IntentCleanTemp}
	if len(cmd.sent) != len(want) || cmd.sent[0] != want[0] {
		t.Fatalf("intents = %v, want exactly one clean_temp", cmd.sent)
	}
	if !store.Snapshot().CleanDone {
		t.Fatal("clean flag not set")
	}

	m.SetRegions([]Region{{X0: 0, Y0: 0, X1: 320, Y1: 240, Op: OpBack}})
	m.HandleTap(t0(), 10, 10)
	if store.Snapshot().CleanDone {
		t.Fatal("clean flag survived leaving the screen")
	}
}
