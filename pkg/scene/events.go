// Package scene is the 3D knowledge-graph rendering and interaction engine.
// It turns a GraphData snapshot plus ViewState toggles into render-ready
// records and scene objects, and turns pointer/camera input back into domain
// events. It owns no I/O: snapshots arrive whole from collaborators, and node
// positions belong to the layout engine, which the scene polls.
package scene

import (
	"sync"

	"github.com/scholargraph/scholargraph3d/pkg/model"
)

// EventKind enumerates the discrete domain events the engine emits.
type EventKind int

const (
	EventPaperSelected EventKind = iota
	EventPaperDeselected
	EventPaperHovered // PaperID empty when hover cleared
	EventMultiSelectToggled
	EventExpandRequested
	EventEdgeClicked
	EventCameraMoved
)

func (k EventKind) String() string {
	switch k {
	case EventPaperSelected:
		return "paper-selected"
	case EventPaperDeselected:
		return "paper-deselected"
	case EventPaperHovered:
		return "paper-hovered"
	case EventMultiSelectToggled:
		return "multi-select-toggled"
	case EventExpandRequested:
		return "expand-requested"
	case EventEdgeClicked:
		return "edge-clicked"
	case EventCameraMoved:
		return "camera-moved"
	default:
		return "unknown"
	}
}

// EdgeRef is the resolved identity of a clicked edge: enough for a collaborator
// to look up or display the relationship without re-deriving render state.
type EdgeRef struct {
	Source string
	Target string
	Type   model.EdgeType
	Intent model.CitationIntent
	Weight float64
}

// Event is one discrete domain event. Exactly one of the payload fields is
// meaningful per kind.
type Event struct {
	Kind     EventKind
	PaperID  string
	Selected bool     // multi-select toggle state after the event
	Edge     *EdgeRef // for EventEdgeClicked, nil otherwise
	Command  string   // for EventCameraMoved: which imperative command completed
}

// Emitter fans events out to registered listeners synchronously, in
// registration order. Listeners must be fast; slow consumers should hand off
// to their own goroutine or channel.
type Emitter struct {
	mu        sync.Mutex
	nextID    int
	listeners []listener
}

type listener struct {
	id int
	fn func(Event)
}

// Subscribe registers fn and returns an unsubscribe func. Unsubscribing twice
// is harmless.
func (e *Emitter) Subscribe(fn func(Event)) (unsubscribe func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextID++
	id := e.nextID
	e.listeners = append(e.listeners, listener{id: id, fn: fn})
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for i := range e.listeners {
			if e.listeners[i].id == id {
				e.listeners = append(e.listeners[:i], e.listeners[i+1:]...)
				return
			}
		}
	}
}

// Emit delivers ev to every listener.
func (e *Emitter) Emit(ev Event) {
	e.mu.Lock()
	fns := make([]func(Event), len(e.listeners))
	for i := range e.listeners {
		fns[i] = e.listeners[i].fn
	}
	e.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

// Reset drops all listeners. Engine teardown calls this so a stale listener
// can't observe events from a remounted engine.
func (e *Emitter) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = nil
}
