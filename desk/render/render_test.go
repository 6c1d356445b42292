package render

import (
	"testing"

	"anddesk/desk/model"
	"anddesk/desk/nav"
)

func snapshot() model.Snapshot {
	s := model.Snapshot{
		TimeStr:  "14:05",
		DateStr:  "Mon, 09 Mar 2026",
		Username: "tork",
		Unread:   2,
	}
	s.Deck.DiskUsed, s.Deck.DiskTotal = 40, 64
	s.Focus.SessionMins = 25
	return s
}

func TestDashboardExposesAppsRegion(t *testing.T) {
	u := New()
	f, regions, err := u.Primary(nav.Dashboard, snapshot(), 320, 240)
	if err != nil {
		t.Fatalf("Primary: %v", err)
	}
	if f.W != 320 || f.H != 240 {
		t.Fatalf("frame %dx%d", f.W, f.H)
	}
	if len(regions) != 1 {
		t.Fatalf("regions = %d, want 1", len(regions))
	}
	r := regions[0]
	if r.Op != nav.OpNavigate || r.Target != nav.Apps {
		t.Fatalf("region = %+v, want navigate to apps", r)
	}
	if !r.Contains(50, 120) {
		t.Fatalf("pie region %+v does not cover its own center", r)
	}
}

func TestAppsGridCoversAllSubScreens(t *testing.T) {
	u := New()
	_, regions, err := u.Primary(nav.Apps, snapshot(), 320, 240)
	if err != nil {
		t.Fatalf("Primary: %v", err)
	}

	targets := map[nav.Screen]bool{}
	backs := 0
	for _, r := range regions {
		switch r.Op {
		case nav.OpNavigate:
			targets[r.Target] = true
		case nav.OpBack:
			backs++
		}
	}
	for _, want := range []nav.Screen{nav.Emails, nav.Focus, nav.Brief, nav.SysCare} {
		if !targets[want] {
			t.Fatalf("no tile targets %v; regions %+v", want, regions)
		}
	}
	if backs != 1 {
		t.Fatalf("back affordances = %d, want 1", backs)
	}
}

func TestTilesDoNotOverlap(t *testing.T) {
	u := New()
	_, regions, _ := u.Primary(nav.Apps, snapshot(), 320, 240)

	var tiles []nav.Region
	for _, r := range regions {
		if r.Op == nav.OpNavigate {
			tiles = append(tiles, r)
		}
	}
	for i := range tiles {
		for j := i + 1; j < len(tiles); j++ {
			a, b := tiles[i], tiles[j]
			if a.X0 < b.X1 && b.X0 < a.X1 && a.Y0 < b.Y1 && b.Y0 < a.Y1 {
				t.Fatalf("tiles overlap: %+v and %+v", a, b)
			}
		}
	}
}

func TestSysCareCleanRegionDisappearsAfterClean(t *testing.T) {
	u := New()
	snap := snapshot()

	_, regions, _ := u.Primary(nav.SysCare, snap, 320, 240)
	cleanable := false
	for _, r := range regions {
		if r.Op == nav.OpCleanTemp {
			cleanable = true
		}
	}
	if !cleanable {
		t.Fatal("no clean region before cleaning")
	}

	snap.CleanDone = true
	_, regions, _ = u.Primary(nav.SysCare, snap, 320, 240)
	for _, r := range regions {
		if r.Op == nav.OpCleanTemp {
			t.Fatal("clean region still present after cleaning")
		}
	}
}

func TestEverySubScreenHasABackRegion(t *testing.T) {
	u := New()
	for _, s := range []nav.Screen{nav.Brief, nav.Emails, nav.SysCare, nav.Focus} {
		_, regions, err := u.Primary(s, snapshot(), 320, 240)
		if err != nil {
			t.Fatalf("Primary(%v): %v", s, err)
		}
		found := false
		for _, r := range regions {
			if r.Op == nav.OpBack {
				found = true
			}
		}
		if !found {
			t.Fatalf("%v has no back region", s)
		}
	}
}

func TestPrimaryDrawsPixels(t *testing.T) {
	u := New()
	f, _, err := u.Primary(nav.Dashboard, snapshot(), 320, 240)
	if err != nil {
		t.Fatalf("Primary: %v", err)
	}

	bg := f.At565(0, f.H/2)
	changed := 0
	for y := 0; y < f.H; y++ {
		for x := 0; x < f.W; x++ {
			if f.At565(x, y) != bg {
				changed++
			}
		}
	}
	if changed == 0 {
		t.Fatal("dashboard drew nothing")
	}
}

func TestSecondaryRendersAtPanelSize(t *testing.T) {
	u := New()
	f, err := u.Secondary(snapshot(), 160, 128)
	if err != nil {
		t.Fatalf("Secondary: %v", err)
	}
	if f.W != 160 || f.H != 128 {
		t.Fatalf("frame %dx%d, want 160x128", f.W, f.H)
	}
}
