package scene

import (
	"testing"
	"time"
)

func TestClockTickPushesElapsed(t *testing.T) {
	c := NewClock()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := base
	c.setNow(func() time.Time { return now })

	var got []time.Duration
	c.Register(func(elapsed time.Duration) { got = append(got, elapsed) })
	c.Register(func(elapsed time.Duration) { got = append(got, elapsed) })

	c.Start()
	now = base.Add(250 * time.Millisecond)
	c.Tick()

	if len(got) != 2 {
		t.Fatalf("expected both updaters called, got %d calls", len(got))
	}
	for _, e := range got {
		if e != 250*time.Millisecond {
			t.Errorf("updater received %v, want 250ms", e)
		}
	}
}

func TestClockTickNoopWhenStopped(t *testing.T) {
	c := NewClock()
	calls := 0
	c.Register(func(time.Duration) { calls++ })
	c.Tick()
	if calls != 0 {
		t.Error("stopped clock must not push ticks")
	}

	c.Start()
	c.Stop()
	c.Tick()
	if calls != 0 {
		t.Error("stopped clock must not push ticks after Stop")
	}
}

func TestClockUnregister(t *testing.T) {
	c := NewClock()
	calls := 0
	unregister := c.Register(func(time.Duration) { calls++ })
	if c.Count() != 1 {
		t.Fatalf("Count = %d, want 1", c.Count())
	}
	unregister()
	if c.Count() != 0 {
		t.Fatalf("Count after unregister = %d, want 0", c.Count())
	}
	c.Start()
	c.Tick()
	if calls != 0 {
		t.Error("unregistered updater must not be called")
	}

	// Double unregister is harmless.
	unregister()
}

func TestClockResetClearsEverything(t *testing.T) {
	c := NewClock()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := base
	c.setNow(func() time.Time { return now })

	calls := 0
	c.Register(func(time.Duration) { calls++ })
	c.Start()
	now = now.Add(time.Second)

	c.Reset()
	if c.Running() {
		t.Error("Reset must stop the clock")
	}
	if c.Count() != 0 {
		t.Error("Reset must clear all registrations")
	}
	if c.Elapsed() != 0 {
		t.Error("Elapsed must be zero after Reset")
	}

	// A fresh mount starts from a clean epoch and registry.
	c.Start()
	c.Tick()
	if calls != 0 {
		t.Error("pre-reset updater leaked into the new epoch")
	}
}

func TestClockRestartResetsEpoch(t *testing.T) {
	c := NewClock()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := base
	c.setNow(func() time.Time { return now })

	c.Start()
	now = now.Add(5 * time.Second)
	if c.Elapsed() != 5*time.Second {
		t.Fatalf("Elapsed = %v, want 5s", c.Elapsed())
	}
	c.Start()
	if c.Elapsed() != 0 {
		t.Errorf("restart must reset the epoch, Elapsed = %v", c.Elapsed())
	}
}
