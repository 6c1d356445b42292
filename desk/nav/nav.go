// Package nav owns which screen is active. It consumes debounced tap
// events against the hit regions supplied with the last rendered frame
// and applies at most one transition per scheduler tick.
package nav

import (
	"time"

	"anddesk/desk/model"
	"anddesk/desk/remote"
	"anddesk/hal"
)

// Screen enumerates the primary panel's screens.
type Screen uint8

const (
	Dashboard Screen = iota
	Apps
	Brief
	Emails
	SysCare
	Focus

	screenCount
)

func (s Screen) String() string {
	switch s {
	case Dashboard:
		return "dashboard"
	case Apps:
		return "apps"
	case Brief:
		return "brief"
	case Emails:
		return "emails"
	case SysCare:
		return "syscare"
	case Focus:
		return "focus"
	}
	return "unknown"
}

// Op is what a hit region does when tapped.
type Op uint8

const (
	// OpNavigate transitions to the region's target screen.
	OpNavigate Op = iota
	// OpBack pops the back stack, or falls back to the dashboard.
	OpBack
	// OpCleanTemp fires the clean-temp intent and stays on the screen.
	OpCleanTemp
)

// Region is one tappable rectangle, half-open on the high edges. The
// renderer supplies a fresh list with each frame; the list's order is
// the match order.
type Region struct {
	X0, Y0, X1, Y1 int
	Op             Op
	Target         Screen // used by OpNavigate
}

// Contains reports whether the point falls inside the rectangle.
func (r Region) Contains(x, y int) bool {
	return x >= r.X0 && x < r.X1 && y >= r.Y0 && y < r.Y1
}

// Machine is the navigation state machine. It is driven only from the
// scheduler tick, so it needs no locking.
type Machine struct {
	screen  Screen
	stack   []Screen
	regions []Region

	store *model.Store
	cmd   remote.Commander
	log   hal.Logger

	sessionMins  int
	focusStarted time.Time
	focusArmed   bool
}

// New starts on the dashboard with an empty back stack.
func New(store *model.Store, cmd remote.Commander, log hal.Logger, sessionMins int) *Machine {
	if sessionMins <= 0 {
		sessionMins = 25
	}
	return &Machine{
		screen:      Dashboard,
		store:       store,
		cmd:         cmd,
		log:         log,
		sessionMins: sessionMins,
	}
}

// Screen reports the active screen.
func (m *Machine) Screen() Screen { return m.screen }

// StackDepth reports the back stack size.
func (m *Machine) StackDepth() int { return len(m.stack) }

// SetRegions installs the hit regions belonging to the frame now on the
// panel. Regions from a frame that failed to blit are never installed.
func (m *Machine) SetRegions(rs []Region) {
	m.regions = rs
}

// HandleTap routes one tap. First matching region wins; a miss changes
// nothing. Returns true when a transition or action fired, which tells
// the scheduler the next primary frame is stale.
func (m *Machine) HandleTap(now time.Time, x, y int) bool {
	for _, r := range m.regions {
		if !r.Contains(x, y) {
			continue
		}
		switch r.Op {
		case OpNavigate:
			m.navigate(now, r.Target)
		case OpBack:
			m.back(now)
		case OpCleanTemp:
			m.cleanTemp()
		}
		return true
	}
	return false
}

func (m *Machine) navigate(now time.Time, target Screen) {
	if target >= screenCount || target == m.screen {
		return
	}
	// The apps grid is the only path that grows the stack; every other
	// transition replaces the screen because only one back affordance
	// exists.
	if m.screen == Dashboard && target == Apps {
		m.stack = append(m.stack, m.screen)
	}
	m.leave(m.screen)
	m.screen = target
	m.enter(now, target)
	m.log.WriteLineString("nav: -> " + target.String())
}

func (m *Machine) back(now time.Time) {
	target := Dashboard
	if n := len(m.stack); n > 0 {
		target = m.stack[n-1]
		m.stack = m.stack[:n-1]
	}
	if target == m.screen {
		return
	}
	m.leave(m.screen)
	m.screen = target
	m.enter(now, target)
	m.log.WriteLineString("nav: <- " + target.String())
}

func (m *Machine) enter(now time.Time, s Screen) {
	if s != Focus {
		return
	}
	m.cmd.Send(remote.IntentFocusStart)
	m.focusStarted = now
	m.focusArmed = true
	m.store.Update(func(sn *model.Snapshot) {
		sn.Focus.Active = true
		sn.Focus.SessionMins = m.sessionMins
		sn.Focus.ElapsedMins = 0
		sn.Focus.Message = ""
	})
}

func (m *Machine) leave(s Screen) {
	switch s {
	case Focus:
		if m.focusArmed {
			m.endFocus("Session ended.")
		}
	case SysCare:
		m.store.Update(func(sn *model.Snapshot) { sn.CleanDone = false })
	}
}

func (m *Machine) cleanTemp() {
	done := false
	m.store.Update(func(sn *model.Snapshot) {
		done = sn.CleanDone
		sn.CleanDone = true
	})
	if !done {
		m.cmd.Send(remote.IntentCleanTemp)
	}
}

func (m *Machine) endFocus(msg string) {
	m.focusArmed = false
	m.cmd.Send(remote.IntentFocusEnd)
	m.store.Update(func(sn *model.Snapshot) {
		sn.Focus.Active = false
		sn.Focus.ElapsedMins = 0
		sn.Focus.Message = msg
	})
}

// Tick advances the focus countdown. On expiry the session closes and
// the screen returns to the dashboard.
func (m *Machine) Tick(now time.Time) {
	if !m.focusArmed {
		return
	}
	elapsed := int(now.Sub(m.focusStarted) / time.Minute)
	if elapsed >= m.sessionMins {
		m.endFocus("Session complete!")
		if m.screen == Focus {
			m.stack = m.stack[:0]
			m.screen = Dashboard
			m.log.WriteLineString("nav: focus expired")
		}
		return
	}
	m.store.Update(func(sn *model.Snapshot) {
		if sn.Focus.ElapsedMins != elapsed {
			sn.Focus.ElapsedMins = elapsed
		}
	})
}
