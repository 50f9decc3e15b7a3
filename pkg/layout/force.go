package layout

import (
	"math"
	"math/rand"
	"sync"

	"cogentcore.org/core/math32"

	"github.com/scholargraph/scholargraph3d/pkg/model"
)

// Force tunables. Chosen for graphs in the low hundreds of nodes; the
// simulation is O(n²) in the repulsion term, which is fine at that scale.
const (
	springLength    = 30.0
	springStrength  = 0.02
	repulsion       = 900.0
	centering       = 0.002
	damping         = 0.85
	maxVelocity     = 12.0
	seedJitterSigma = 2.0
)

type body struct {
	pos    math32.Vector3
	vel    math32.Vector3
	pinned bool
	pin    math32.Vector3

	// yPinned holds the Y axis only (timeline mode); X and Z stay live.
	yPinned bool
	yPin    float32
}

type spring struct {
	a, b   string
	weight float32
}

// Force is a simple incremental force-directed simulation implementing
// Engine. It is safe for concurrent use: the scene engine polls positions
// from timers and frame callbacks while the host steps the simulation.
type Force struct {
	mu      sync.RWMutex
	bodies  map[string]*body
	springs []spring
	rng     *rand.Rand
}

// NewForce creates an empty simulation. Seed fixes the RNG used for initial
// placement jitter so tests are reproducible.
func NewForce(seed int64) *Force {
	return &Force{
		bodies: make(map[string]*body),
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// SetGraph rebuilds the simulation for a new snapshot. Existing nodes keep
// their positions so an expand operation doesn't re-scramble the whole scene;
// new nodes are seeded near the weighted centroid of their graph neighbors
// (falling back to a jittered origin) per the incremental-placement scheme.
func (f *Force) SetGraph(g *model.GraphData) {
	f.mu.Lock()
	defer f.mu.Unlock()

	known := make(map[string]bool, len(g.Papers))
	for i := range g.Papers {
		known[g.Papers[i].ID] = true
	}
	for id := range f.bodies {
		if !known[id] {
			delete(f.bodies, id)
		}
	}

	// Springs first so new-node seeding can consult adjacency.
	f.springs = f.springs[:0]
	adj := make(map[string][]string)
	for i := range g.Edges {
		e := &g.Edges[i]
		w := float32(1)
		if e.Type == model.EdgeSimilarity {
			w = float32(e.Weight)
		}
		f.springs = append(f.springs, spring{a: e.Source, b: e.Target, weight: w})
		adj[e.Source] = append(adj[e.Source], e.Target)
		adj[e.Target] = append(adj[e.Target], e.Source)
	}

	for i := range g.Papers {
		id := g.Papers[i].ID
		if _, ok := f.bodies[id]; ok {
			continue
		}
		f.bodies[id] = &body{pos: f.seedPosition(id, adj)}
	}
}

// seedPosition places a new node at the mean of its already-placed neighbors
// plus Gaussian jitter, or scattered around the origin when it has none.
// Caller holds f.mu.
func (f *Force) seedPosition(id string, adj map[string][]string) math32.Vector3 {
	var sum math32.Vector3
	n := 0
	for _, other := range adj[id] {
		if b, ok := f.bodies[other]; ok {
			sum = sum.Add(b.pos)
			n++
		}
	}
	jitter := math32.Vec3(
		float32(f.rng.NormFloat64()*seedJitterSigma),
		float32(f.rng.NormFloat64()*seedJitterSigma),
		float32(f.rng.NormFloat64()*seedJitterSigma),
	)
	if n == 0 {
		// Scatter on a loose sphere so the first layout pass has room to work.
		return jitter.MulScalar(10)
	}
	return sum.MulScalar(1 / float32(n)).Add(jitter)
}

// Step advances the simulation by dt (seconds-ish; the constants absorb the
// unit). Pinned bodies snap to their pin and accumulate no velocity.
func (f *Force) Step(dt float32) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.bodies) == 0 {
		return
	}

	forces := make(map[string]math32.Vector3, len(f.bodies))

	// Pairwise repulsion.
	ids := make([]string, 0, len(f.bodies))
	for id := range f.bodies {
		ids = append(ids, id)
	}
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			a, b := f.bodies[ids[i]], f.bodies[ids[j]]
			d := a.pos.Sub(b.pos)
			distSq := d.LengthSquared()
			if distSq < 0.01 {
				// Coincident nodes (fresh expansion): nudge apart randomly.
				d = math32.Vec3(float32(f.rng.NormFloat64()), float32(f.rng.NormFloat64()), float32(f.rng.NormFloat64()))
				distSq = 1
			}
			push := d.MulScalar(repulsion / distSq / float32(math.Sqrt(float64(distSq))))
			forces[ids[i]] = forces[ids[i]].Add(push)
			forces[ids[j]] = forces[ids[j]].Sub(push)
		}
	}

	// Springs.
	for _, s := range f.springs {
		a, okA := f.bodies[s.a]
		b, okB := f.bodies[s.b]
		if !okA || !okB {
			continue
		}
		d := b.pos.Sub(a.pos)
		dist := d.Length()
		if dist < 1e-6 {
			continue
		}
		stretch := dist - springLength
		pull := d.MulScalar(springStrength * s.weight * stretch / dist)
		forces[s.a] = forces[s.a].Add(pull)
		forces[s.b] = forces[s.b].Sub(pull)
	}

	// Centering + integration.
	for id, b := range f.bodies {
		if b.pinned {
			b.pos = b.pin
			b.vel = math32.Vector3{}
			continue
		}
		fv := forces[id].Sub(b.pos.MulScalar(centering / dt))
		b.vel = b.vel.Add(fv.MulScalar(dt)).MulScalar(damping)
		if v := b.vel.Length(); v > maxVelocity {
			b.vel = b.vel.MulScalar(maxVelocity / v)
		}
		b.pos = b.pos.Add(b.vel.MulScalar(dt))
		if b.yPinned {
			b.pos.Y = b.yPin
			b.vel.Y = 0
		}
	}
}

// PinY implements Engine.
func (f *Force) PinY(id string, y float32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bodies[id]
	if !ok {
		return
	}
	b.yPinned = true
	b.yPin = y
	b.pos.Y = y
	b.vel.Y = 0
}

// UnpinY implements Engine.
func (f *Force) UnpinY(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.bodies[id]; ok {
		b.yPinned = false
	}
}

// Position implements Engine.
func (f *Force) Position(id string) (math32.Vector3, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	b, ok := f.bodies[id]
	if !ok {
		return math32.Vector3{}, false
	}
	return b.pos, true
}

// Snapshot implements Engine.
func (f *Force) Snapshot() map[string]math32.Vector3 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make(map[string]math32.Vector3, len(f.bodies))
	for id, b := range f.bodies {
		out[id] = b.pos
	}
	return out
}

// Pin implements Engine.
func (f *Force) Pin(id string, p math32.Vector3) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bodies[id]
	if !ok {
		return
	}
	b.pinned = true
	b.pin = p
	b.pos = p
	b.vel = math32.Vector3{}
}

// Unpin implements Engine.
func (f *Force) Unpin(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.bodies[id]; ok {
		b.pinned = false
	}
}

// Pinned implements Engine.
func (f *Force) Pinned(id string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	b, ok := f.bodies[id]
	return ok && b.pinned
}

// SetPosition force-writes a live position without pinning. Used when a
// snapshot arrives with authoritative coordinates (e.g. positions computed by
// an upstream embedding reduction).
func (f *Force) SetPosition(id string, p math32.Vector3) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.bodies[id]; ok {
		b.pos = p
		b.vel = math32.Vector3{}
	}
}
