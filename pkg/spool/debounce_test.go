package spool

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestSettler_FiresAfterInterval(t *testing.T) {
	s := newSettler(50 * time.Millisecond)
	defer s.Stop()

	fired := make(chan struct{}, 1)
	s.Touch("/spool/a.wav", func() {
		fired <- struct{}{}
	})

	select {
	case <-fired:
		// Success!
	case <-time.After(500 * time.Millisecond):
		t.Error("Callback not fired after settle interval")
	}
}

func TestSettler_TouchResetsTimer(t *testing.T) {
	s := newSettler(100 * time.Millisecond)
	defer s.Stop()

	var callCount atomic.Int32
	callback := func() {
		callCount.Add(1)
	}

	// Touch repeatedly, faster than the settle interval.
	for i := 0; i < 5; i++ {
		s.Touch("/spool/a.wav", callback)
		time.Sleep(20 * time.Millisecond)
	}

	// Wait for settle interval plus buffer
	time.Sleep(200 * time.Millisecond)

	count := callCount.Load()
	if count != 1 {
		t.Errorf("Callback called %d times, want 1", count)
	}
}

func TestSettler_PathsAreIndependent(t *testing.T) {
	s := newSettler(50 * time.Millisecond)
	defer s.Stop()

	var aCount, bCount atomic.Int32

	s.Touch("/spool/a.wav", func() { aCount.Add(1) })
	s.Touch("/spool/b.wav", func() { bCount.Add(1) })

	time.Sleep(200 * time.Millisecond)

	if got := aCount.Load(); got != 1 {
		t.Errorf("Callback for a.wav called %d times, want 1", got)
	}
	if got := bCount.Load(); got != 1 {
		t.Errorf("Callback for b.wav called %d times, want 1", got)
	}
}

func TestSettler_Cancel(t *testing.T) {
	s := newSettler(100 * time.Millisecond)
	defer s.Stop()

	var callCount atomic.Int32
	s.Touch("/spool/a.wav", func() {
		callCount.Add(1)
	})

	s.Cancel("/spool/a.wav")

	time.Sleep(200 * time.Millisecond)

	if count := callCount.Load(); count != 0 {
		t.Errorf("Callback called %d times after Cancel(), want 0", count)
	}
}

func TestSettler_CancelUnknownPath(t *testing.T) {
	s := newSettler(50 * time.Millisecond)
	defer s.Stop()

	// Must not panic.
	s.Cancel("/spool/never-touched.wav")
}

func TestSettler_Pending(t *testing.T) {
	s := newSettler(100 * time.Millisecond)
	defer s.Stop()

	if got := s.Pending(); got != 0 {
		t.Errorf("Pending() = %d, want 0", got)
	}

	s.Touch("/spool/a.wav", func() {})
	s.Touch("/spool/b.wav", func() {})
	s.Touch("/spool/a.wav", func() {}) // re-touch, not a new entry

	if got := s.Pending(); got != 2 {
		t.Errorf("Pending() = %d, want 2", got)
	}

	// Entries drain once the timers fire.
	time.Sleep(250 * time.Millisecond)

	if got := s.Pending(); got != 0 {
		t.Errorf("Pending() after settle = %d, want 0", got)
	}
}

func TestSettler_Stop(t *testing.T) {
	s := newSettler(100 * time.Millisecond)

	var callCount atomic.Int32
	s.Touch("/spool/a.wav", func() {
		callCount.Add(1)
	})

	s.Stop()

	time.Sleep(200 * time.Millisecond)

	if count := callCount.Load(); count != 0 {
		t.Errorf("Callback called %d times after Stop(), want 0", count)
	}
}

func TestSettler_TouchAfterStop(t *testing.T) {
	s := newSettler(50 * time.Millisecond)
	s.Stop()

	var callCount atomic.Int32
	s.Touch("/spool/a.wav", func() {
		callCount.Add(1)
	})

	time.Sleep(150 * time.Millisecond)

	if count := callCount.Load(); count != 0 {
		t.Errorf("Callback called %d times for Touch after Stop(), want 0", count)
	}
	if got := s.Pending(); got != 0 {
		t.Errorf("Pending() = %d after Touch on stopped settler, want 0", got)
	}
}
