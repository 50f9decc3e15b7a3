package scene

import (
	"time"

	"cogentcore.org/core/math32"

	"github.com/scholargraph/scholargraph3d/pkg/layout"
)

// DefaultExpandDuration is the expansion animation length.
const DefaultExpandDuration = 600 * time.Millisecond

type expansionAnim struct {
	id    string
	from  math32.Vector3
	to    math32.Vector3
	start time.Time
}

// ExpansionController eases newly inserted nodes from their parent's position
// out to their simulation-assigned target. While an animation runs the
// controller pins the node every frame; on completion it releases the pin so
// physics takes over. It sets every pin it releases and releases every pin it
// sets; no other component touches these nodes' pins mid-animation.
type ExpansionController struct {
	layout   layout.Engine
	duration time.Duration
	active   map[string]*expansionAnim
}

// NewExpansionController binds the controller to the layout engine.
func NewExpansionController(lay layout.Engine, duration time.Duration) *ExpansionController {
	if duration <= 0 {
		duration = DefaultExpandDuration
	}
	return &ExpansionController{
		layout:   lay,
		duration: duration,
		active:   make(map[string]*expansionAnim),
	}
}

// Begin starts animating newIDs outward from the parent's current position to
// each node's current simulation position (the layout seeds new nodes before
// this is called, so "current" is the assigned target). Idempotent no-op for
// an empty newIDs. Unknown ids are skipped.
func (e *ExpansionController) Begin(parentID string, newIDs []string, now time.Time) {
	if len(newIDs) == 0 {
		return
	}
	origin, ok := e.layout.Position(parentID)
	if !ok {
		// Parent unknown (snapshot raced the expand): leave the new nodes to
		// default physics rather than animating from a bogus origin.
		return
	}
	for _, id := range newIDs {
		target, ok := e.layout.Position(id)
		if !ok {
			continue
		}
		e.active[id] = &expansionAnim{
			id:    id,
			from:  origin,
			to:    target,
			start: now,
		}
		e.layout.Pin(id, origin)
	}
}

// Step advances all animations; called once per rendered frame. Completed
// nodes get their pin released the same frame they land.
func (e *ExpansionController) Step(now time.Time) {
	for id, a := range e.active {
		t := float32(now.Sub(a.start)) / float32(e.duration)
		if t >= 1 {
			e.layout.Pin(id, a.to)
			e.layout.Unpin(id)
			delete(e.active, id)
			continue
		}
		if t < 0 {
			t = 0
		}
		e.layout.Pin(id, a.from.Lerp(a.to, easeOutCubic(t)))
	}
}

// Animating reports whether the node is mid-expansion. The interaction
// controller refuses drag-pins for animating nodes, so the same node is
// never double-pinned.
func (e *ExpansionController) Animating(id string) bool {
	_, ok := e.active[id]
	return ok
}

// Active returns the number of in-flight animations.
func (e *ExpansionController) Active() int {
	return len(e.active)
}

// Cancel releases every pin and drops all animations. Teardown path; also
// called before a new snapshot replaces the node set.
func (e *ExpansionController) Cancel() {
	for id := range e.active {
		e.layout.Unpin(id)
		delete(e.active, id)
	}
}

// easeOutCubic: fast start, gentle landing.
func easeOutCubic(t float32) float32 {
	u := 1 - t
	return 1 - u*u*u
}
