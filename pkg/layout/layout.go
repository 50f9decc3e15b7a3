// Package layout owns continuous node-position integration. The scene engine
// treats it as a foreign resource: it polls live positions and writes
// temporary pins, but never assumes read-after-write consistency with its own
// render state.
package layout

import "cogentcore.org/core/math32"

// Engine is the narrow surface the scene engine talks to. Implementations own
// the authoritative node positions; the scene engine reads them per frame (for
// rendering) and on an interval (for overlays), and pins them during drag and
// expansion animation.
type Engine interface {
	// Position returns the live position of a node, false if unknown.
	Position(id string) (math32.Vector3, bool)

	// Snapshot copies all live positions. Used by overlay recomputation so a
	// concurrent integration step can't shear a single overlay pass.
	Snapshot() map[string]math32.Vector3

	// Pin overrides physics for a node until Unpin. Pinning an unknown id is
	// a no-op.
	Pin(id string, p math32.Vector3)

	// Unpin releases a pinned node back to the simulation.
	Unpin(id string)

	// Pinned reports whether the node is currently pinned.
	Pinned(id string) bool

	// PinY pins only the Y axis, leaving physics in control of X and Z.
	// Timeline mode uses it to hold nodes on their year line.
	PinY(id string, y float32)

	// UnpinY releases a Y-axis pin.
	UnpinY(id string)
}
