package model

import (
	"sync"
	"testing"
	"time"
)

func TestSnapshotIsACopy(t *testing.T) {
	s := NewStore("tork", 25)
	s.Update(func(sn *Snapshot) {
		sn.Unread = 3
	})

	snap := s.Snapshot()
	snap.Unread = 99

	if got := s.Snapshot().Unread; got != 3 {
		t.Fatalf("store mutated through a snapshot copy: unread = %d", got)
	}
}

func TestTickClockFormats(t *testing.T) {
	s := NewStore("tork", 25)
	s.TickClock(time.Date(2026, time.March, 9, 14, 5, 0, 0, time.UTC))

	snap := s.Snapshot()
	if snap.TimeStr != "14:05" {
		t.Fatalf("TimeStr = %q", snap.TimeStr)
	}
	if snap.DateStr != "Mon, 09 Mar 2026" {
		t.Fatalf("DateStr = %q", snap.DateStr)
	}
}

func TestConcurrentWritersAndReaders(t *testing.T) {
	s := NewStore("tork", 25)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				s.Update(func(sn *Snapshot) { sn.Unread++ })
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				_ = s.Snapshot()
			}
		}()
	}
	wg.Wait()

	if got := s.Snapshot().Unread; got != 8*200 {
		t.Fatalf("unread = %d, want %d", got, 8*200)
	}
}
