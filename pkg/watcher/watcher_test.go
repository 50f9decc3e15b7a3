package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerCoalescesRapidTriggers(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var callCount atomic.Int32
	for i := 0; i < 10; i++ {
		d.Trigger(func() {
			callCount.Add(1)
		})
		time.Sleep(10 * time.Millisecond)
	}

	time.Sleep(150 * time.Millisecond)
	if count := callCount.Load(); count != 1 {
		t.Errorf("expected 1 callback invocation, got %d", count)
	}
}

func TestDebouncerCancel(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var called atomic.Bool
	d.Trigger(func() { called.Store(true) })
	d.Cancel()

	time.Sleep(100 * time.Millisecond)
	if called.Load() {
		t.Error("callback ran after Cancel")
	}
}

func TestDebouncerDefaultDuration(t *testing.T) {
	d := NewDebouncer(0)
	if d.Duration() != DefaultDebounceDuration {
		t.Errorf("expected default duration %v, got %v", DefaultDebounceDuration, d.Duration())
	}
}

func writeInitial(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graph.json")
	if err := os.WriteFile(path, []byte(`{"papers":[]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestWatcherDetectsFileChange(t *testing.T) {
	path := writeInitial(t)

	var (
		mu      sync.Mutex
		changed bool
	)
	w, err := New(path,
		WithDebounceDuration(50*time.Millisecond),
		WithOnChange(func() {
			mu.Lock()
			changed = true
			mu.Unlock()
		}),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte(`{"papers":[],"version":2}`), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if !changed {
		t.Error("rewrite of the watched file was not detected")
	}
}

func TestWatcherPollingFallback(t *testing.T) {
	path := writeInitial(t)

	var (
		mu      sync.Mutex
		changed bool
	)
	w, err := New(path,
		WithDebounceDuration(50*time.Millisecond),
		WithPollInterval(50*time.Millisecond),
		WithForcePoll(true),
		WithOnChange(func() {
			mu.Lock()
			changed = true
			mu.Unlock()
		}),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if !w.IsPolling() {
		t.Fatal("forced poll mode not active")
	}

	time.Sleep(60 * time.Millisecond)
	if err := os.WriteFile(path, []byte(`{"papers":[],"version":3}`), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(400 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if !changed {
		t.Error("polling missed the rewrite")
	}
}

func TestWatcherChangedChannel(t *testing.T) {
	path := writeInitial(t)

	w, err := New(path,
		WithDebounceDuration(30*time.Millisecond),
		WithPollInterval(50*time.Millisecond),
		WithForcePoll(true),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	go func() {
		time.Sleep(60 * time.Millisecond)
		os.WriteFile(path, []byte(`{"papers":[],"version":4}`), 0o644)
	}()

	select {
	case <-w.Changed():
	case <-time.After(2 * time.Second):
		t.Error("timeout waiting on the change channel")
	}
}

func TestWatcherEnvForcePolling(t *testing.T) {
	t.Setenv("SG3D_FORCE_POLLING", "1")
	path := writeInitial(t)

	w, err := New(path, WithPollInterval(25*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if !w.IsPolling() {
		t.Fatal("SG3D_FORCE_POLLING must force polling mode")
	}
}

func TestWatcherFileRemoved(t *testing.T) {
	path := writeInitial(t)

	var (
		mu       sync.Mutex
		gotError error
	)
	w, err := New(path,
		WithDebounceDuration(30*time.Millisecond),
		WithPollInterval(50*time.Millisecond),
		WithForcePoll(true),
		WithOnError(func(err error) {
			mu.Lock()
			gotError = err
			mu.Unlock()
		}),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	time.Sleep(60 * time.Millisecond)
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if gotError != ErrFileRemoved {
		t.Errorf("expected ErrFileRemoved, got %v", gotError)
	}
}

func TestWatcherStartStop(t *testing.T) {
	path := writeInitial(t)

	w, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if w.IsStarted() {
		t.Error("watcher should start stopped")
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	if !w.IsStarted() {
		t.Error("Start did not take")
	}
	if err := w.Start(); err != ErrAlreadyStarted {
		t.Errorf("double start: expected ErrAlreadyStarted, got %v", err)
	}

	w.Stop()
	if w.IsStarted() {
		t.Error("Stop did not take")
	}
	w.Stop() // idempotent
}

func TestWatcherPath(t *testing.T) {
	path := writeInitial(t)
	w, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	abs, _ := filepath.Abs(path)
	if w.Path() != abs {
		t.Errorf("Path() = %q, want %q", w.Path(), abs)
	}
}

func TestEnvBool(t *testing.T) {
	cases := []struct {
		value string
		want  bool
	}{
		{"1", true},
		{"true", true},
		{"TRUE", true},
		{"yes", true},
		{"y", true},
		{"on", true},
		{"0", false},
		{"false", false},
		{"no", false},
		{"", false},
		{"invalid", false},
	}
	for _, c := range cases {
		t.Run(c.value, func(t *testing.T) {
			t.Setenv("TEST_ENV_BOOL", c.value)
			if got := envBool("TEST_ENV_BOOL"); got != c.want {
				t.Errorf("envBool(%q) = %v, want %v", c.value, got, c.want)
			}
		})
	}
}
