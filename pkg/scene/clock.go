package scene

import (
	"sync"
	"time"
)

// Updater receives the clock's elapsed time once per animation frame.
type Updater func(elapsed time.Duration)

// Clock is the process-wide animation clock. Every time-varying effect
// (shader time uniforms, pulsing gap markers, orbiting decorations) registers
// an Updater; each frame the clock pushes its elapsed time to all of them.
//
// The clock is owned by the Engine rather than being a true global, but it is
// deliberately a single shared instance per engine: independent effects must
// agree on "now" or phase-locked animations (twinkle, pulse) drift apart.
// Reset exists so repeated mount/unmount cycles (and tests) always start
// from a clean registry and zero elapsed time.
type Clock struct {
	mu       sync.Mutex
	start    time.Time
	running  bool
	nextID   int
	updaters map[int]Updater

	// now is swappable for tests.
	now func() time.Time
}

// NewClock creates a stopped clock.
func NewClock() *Clock {
	return &Clock{
		updaters: make(map[int]Updater),
		now:      time.Now,
	}
}

// Start begins (or restarts) the clock's epoch. Registrations survive a
// restart; elapsed time does not.
func (c *Clock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.start = c.now()
	c.running = true
}

// Stop halts the clock. Tick becomes a no-op until Start is called again.
func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
}

// Running reports whether the clock is started.
func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Register adds an updater and returns an unregister func. Effects must call
// it on teardown; a leaked registration keeps pushing time into a disposed
// object.
func (c *Clock) Register(u Updater) (unregister func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	id := c.nextID
	c.updaters[id] = u
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.updaters, id)
	}
}

// Count returns the number of live registrations.
func (c *Clock) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.updaters)
}

// Elapsed returns time since Start, zero when stopped.
func (c *Clock) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return 0
	}
	return c.now().Sub(c.start)
}

// Tick pushes the current elapsed time to every registered updater. Called
// once per rendered frame by the engine's frame loop; no-op when stopped.
func (c *Clock) Tick() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	elapsed := c.now().Sub(c.start)
	fns := make([]Updater, 0, len(c.updaters))
	for _, u := range c.updaters {
		fns = append(fns, u)
	}
	c.mu.Unlock()

	for _, u := range fns {
		u(elapsed)
	}
}

// Reset stops the clock and clears every registration. The full reset is the
// teardown contract: a remounted engine must never receive ticks meant for a
// previous mount.
func (c *Clock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
	c.start = time.Time{}
	c.updaters = make(map[int]Updater)
}

// setNow swaps the time source; tests use it to make Elapsed deterministic.
func (c *Clock) setNow(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}
