// Package model holds the data snapshot the rendering layer draws from.
// The store is the only mutable shared state between the remote
// subscriber goroutine and the frame loop; everything else in the system
// passes values.
package model

import (
	"sync"
	"time"
)

// Activity is one dashboard row: a recent item from the remote server.
type Activity struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Time     string `json:"time"`
	Online   bool   `json:"online"`
}

// Weather is the secondary panel's strip content.
type Weather struct {
	Icon string `json:"icon"`
	Temp string `json:"temp"`
	Desc string `json:"desc"`
}

// CalendarEvent is one brief-screen row.
type CalendarEvent struct {
	Time  string `json:"time"`
	Title string `json:"title"`
	Tag   string `json:"tag"`
}

// Email is one inbox row.
type Email struct {
	From    string `json:"from"`
	Subject string `json:"subject"`
	Time    string `json:"time"`
}

// HostStats describes one machine on the syscare screen and the
// secondary panel columns. Disk values are gigabytes.
type HostStats struct {
	CPU       int `json:"cpu"`
	GPU       int `json:"gpu"`
	RAM       int `json:"ram"`
	Fan       int `json:"fan"`
	DiskUsed  int `json:"disk_used"`
	DiskTotal int `json:"disk_total"`
}

// TempFiles is the clean-temp target summary.
type TempFiles struct {
	Count  int `json:"count"`
	SizeMB int `json:"size_mb"`
}

// FocusSession tracks the countdown owned by the navigation layer.
type FocusSession struct {
	Active      bool   `json:"active"`
	SessionMins int    `json:"session_mins"`
	ElapsedMins int    `json:"elapsed_mins"`
	App         string `json:"app"`
	Message     string `json:"message"`
}

// Snapshot is one consistent copy of everything drawable. Slices inside
// a snapshot are treated as read-only by consumers; writers replace them
// wholesale via Update.
type Snapshot struct {
	TimeStr  string
	DateStr  string
	Username string

	Activities []Activity
	Weather    Weather
	Events     []CalendarEvent
	Reminders  []string

	Emails       []Email
	Unread       int
	EmailSummary string

	Deck         HostStats
	Server       HostStats
	DeckOnline   bool
	ServerOnline bool

	TempInfo  TempFiles
	CleanDone bool

	Focus FocusSession
}

// Store guards the snapshot. Readers take a copy once per tick; writers
// mutate under the lock through Update.
type Store struct {
	mu   sync.Mutex
	snap Snapshot
}

// NewStore seeds a store with a username and focus session length.
func NewStore(username string, focusMins int) *Store {
	s := &Store{}
	s.snap.Username = username
	s.snap.Focus.SessionMins = focusMins
	s.snap.DeckOnline = true
	s.snap.ServerOnline = true
	return s
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Update applies fn to the state under the lock.
func (s *Store) Update(fn func(*Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.snap)
}

// TickClock refreshes the formatted time and date strings.
func (s *Store) TickClock(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.TimeStr = now.Format("15:04")
	s.snap.DateStr = now.Format("Mon, 02 Jan 2006")
}
