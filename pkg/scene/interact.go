package scene

import (
	"sync"
	"time"

	"cogentcore.org/core/math32"

	"github.com/scholargraph/scholargraph3d/pkg/layout"
	"github.com/scholargraph/scholargraph3d/pkg/watcher"
)

// Interaction timing. The double-click window and the background-click
// suppression window are deliberate constants of the pointer protocol, not
// tunables surfaced in config (changing them changes event semantics).
const (
	DefaultDoubleClickDelay = 300 * time.Millisecond
	DefaultHoverDebounce    = 50 * time.Millisecond

	// backgroundSuppress swallows background clicks arriving just after a
	// node click. The host scene delivers node-click and background-click
	// through separate handlers with no ordering guarantee; without the
	// window, selecting a node often deselects it in the same gesture.
	backgroundSuppress = 150 * time.Millisecond
)

// Interaction translates low-level pointer events into domain events and
// selection-state changes. One instance per engine. All state is guarded by
// mu, which the engine shares with its own lock: the hover debouncer's timer
// goroutine writes the same Selection the engine's render pass reads, so both
// sides must agree on the lock.
type Interaction struct {
	mu *sync.Mutex

	emitter   *Emitter
	camera    *Camera
	layout    layout.Engine
	expansion *ExpansionController
	selection *Selection

	doubleClickDelay time.Duration
	hoverDebounce    *watcher.Debouncer

	lastClickID   string
	lastClickTime time.Time

	dragging string

	now func() time.Time
}

// NewInteraction wires the controller to the engine's parts. mu is the lock
// guarding sel on the reading side (the engine passes its own); nil gets a
// private lock for standalone use.
func NewInteraction(em *Emitter, cam *Camera, lay layout.Engine, exp *ExpansionController, sel *Selection, mu *sync.Mutex, doubleClick, hoverDebounce time.Duration) *Interaction {
	if mu == nil {
		mu = &sync.Mutex{}
	}
	if doubleClick <= 0 {
		doubleClick = DefaultDoubleClickDelay
	}
	if hoverDebounce <= 0 {
		hoverDebounce = DefaultHoverDebounce
	}
	return &Interaction{
		mu:               mu,
		emitter:          em,
		camera:           cam,
		layout:           lay,
		expansion:        exp,
		selection:        sel,
		doubleClickDelay: doubleClick,
		hoverDebounce:    watcher.NewDebouncer(hoverDebounce),
		now:              time.Now,
	}
}

// ClickNode handles a pointer click on a node. A second click on the same
// node within the double-click window becomes an expand request (plus a
// camera dolly-in) instead of a reselect; a shift-modified click toggles
// multi-select membership and leaves single selection alone.
func (in *Interaction) ClickNode(id string, shift bool) {
	now := in.now()
	in.mu.Lock()

	if shift {
		if in.selection.Multi == nil {
			in.selection.Multi = make(map[string]bool)
		}
		on := !in.selection.Multi[id]
		if on {
			in.selection.Multi[id] = true
		} else {
			delete(in.selection.Multi, id)
		}
		in.lastClickID = id
		in.lastClickTime = now
		in.mu.Unlock()
		in.emitter.Emit(Event{Kind: EventMultiSelectToggled, PaperID: id, Selected: on})
		return
	}

	isDouble := id == in.lastClickID && now.Sub(in.lastClickTime) <= in.doubleClickDelay
	in.lastClickID = id
	in.lastClickTime = now

	if isDouble {
		in.mu.Unlock()
		in.emitter.Emit(Event{Kind: EventExpandRequested, PaperID: id})
		if pos, ok := in.layout.Position(id); ok {
			in.camera.FocusNode(pos, now, func() {
				in.emitter.Emit(Event{Kind: EventCameraMoved, Command: "dolly-in", PaperID: id})
			})
		}
		return
	}

	in.selection.Selected = id
	in.mu.Unlock()
	in.emitter.Emit(Event{Kind: EventPaperSelected, PaperID: id})
}

// ClickBackground clears the selection, unless a node click landed within the
// suppression window; then it is the trailing half of that gesture and is
// swallowed.
func (in *Interaction) ClickBackground() {
	now := in.now()
	in.mu.Lock()
	if now.Sub(in.lastClickTime) < backgroundSuppress {
		in.mu.Unlock()
		return
	}
	had := in.selection.Selected != ""
	in.selection.Selected = ""
	in.selection.Multi = nil
	in.mu.Unlock()
	if had {
		in.emitter.Emit(Event{Kind: EventPaperDeselected})
	}
}

// ClickEdge reports an edge click as a discrete domain event. Edge clicks are
// delivered through their own path so they can never be mistaken for node
// clicks (and never disturb the double-click state).
func (in *Interaction) ClickEdge(l *RenderLink) {
	ref := l.Ref()
	in.emitter.Emit(Event{Kind: EventEdgeClicked, Edge: &ref})
}

// Hover updates the hovered paper after the debounce window, so fast pointer
// sweeps don't flood consumers. An empty id clears the hover.
func (in *Interaction) Hover(id string) {
	in.hoverDebounce.Trigger(func() {
		in.mu.Lock()
		if in.selection.Hovered == id {
			in.mu.Unlock()
			return
		}
		in.selection.Hovered = id
		in.mu.Unlock()
		in.emitter.Emit(Event{Kind: EventPaperHovered, PaperID: id})
	})
}

// BeginDrag pins a node for direct manipulation. Refused while the node is
// mid-expansion-animation: the expansion controller owns that pin, and two
// writers on one pin is undefined behavior we choose not to have.
func (in *Interaction) BeginDrag(id string) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.expansion.Animating(id) || in.dragging != "" {
		return false
	}
	pos, ok := in.layout.Position(id)
	if !ok {
		return false
	}
	in.dragging = id
	in.layout.Pin(id, pos)
	return true
}

// Drag moves the dragged node's pin.
func (in *Interaction) Drag(x, y, z float32) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.dragging == "" {
		return
	}
	in.layout.Pin(in.dragging, math32.Vec3(x, y, z))
}

// EndDrag releases the drag pin.
func (in *Interaction) EndDrag() {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.dragging == "" {
		return
	}
	in.layout.Unpin(in.dragging)
	in.dragging = ""
}

// Teardown cancels the pending hover debounce and any drag pin.
func (in *Interaction) Teardown() {
	in.hoverDebounce.Cancel()
	in.EndDrag()
}

// setNow swaps the time source for tests.
func (in *Interaction) setNow(now func() time.Time) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.now = now
}
