package scene

import (
	"sync"
	"time"

	"cogentcore.org/core/math32"

	"github.com/scholargraph/scholargraph3d/pkg/analysis"
	"github.com/scholargraph/scholargraph3d/pkg/debug"
	"github.com/scholargraph/scholargraph3d/pkg/layout"
	"github.com/scholargraph/scholargraph3d/pkg/model"
	"github.com/scholargraph/scholargraph3d/pkg/scene/overlay"
)

// DefaultOverlayInterval is the hull/nebula/gap recompute cadence. Interval
// polling, not per-frame: the layout engine owns the live positions, the
// derived geometry is comparatively expensive, and one-second staleness is
// invisible.
const DefaultOverlayInterval = time.Second

// Options tune the engine's timers. Zero values take the defaults.
type Options struct {
	OverlayInterval  time.Duration
	ExpandDuration   time.Duration
	CameraDuration   time.Duration
	DoubleClickDelay time.Duration
	HoverDebounce    time.Duration
	Seed             int64 // nebula sampling RNG
}

// Engine is the top-level scene engine instance. One engine per mounted
// view; Mount and Unmount bracket its lifetime, and Unmount fully resets the
// shared clock and every registration so remounts start clean.
type Engine struct {
	mu sync.Mutex

	layout      layout.Engine
	adapter     *Adapter
	nodes       *NodeSynthesizer
	edges       EdgeSynthesizer
	clock       *Clock
	camera      *Camera
	expansion   *ExpansionController
	interaction *Interaction
	emitter     *Emitter
	selection   *Selection

	graph *model.GraphData
	view  model.ViewState
	rg    *RenderGraph

	hulls        []overlay.ClusterHull
	nebulas      *overlay.Nebulas
	gaps         *overlay.GapOverlay
	timeline     *overlay.Timeline
	timelineGrid *overlay.TimelineGrid

	// overlayMu serializes recomputeOverlays: the interval goroutine and
	// SetGraph/SetView can all trigger a rebuild, and the nebula RNG is not
	// safe for concurrent sampling. Never held together with mu; rebuilds
	// run the expensive sampling outside mu and swap the results under it.
	overlayMu sync.Mutex

	overlayInterval time.Duration
	overlayStop     chan struct{}

	unregisterFx []func()
	mounted      bool
}

// New builds an engine over the given layout engine. The engine starts
// unmounted with an empty snapshot.
func New(lay layout.Engine, opts Options) *Engine {
	if opts.OverlayInterval <= 0 {
		opts.OverlayInterval = DefaultOverlayInterval
	}
	clock := NewClock()
	emitter := &Emitter{}
	camera := NewCamera(opts.CameraDuration)
	expansion := NewExpansionController(lay, opts.ExpandDuration)
	selection := &Selection{}

	e := &Engine{
		layout:          lay,
		adapter:         NewAdapter(),
		nodes:           NewNodeSynthesizer(clock),
		clock:           clock,
		camera:          camera,
		expansion:       expansion,
		emitter:         emitter,
		selection:       selection,
		view:            model.DefaultViewState(),
		graph:           &model.GraphData{},
		nebulas:         overlay.NewNebulas(opts.Seed),
		gaps:            overlay.NewGapOverlay(),
		timeline:        overlay.NewTimeline(lay),
		overlayInterval: opts.OverlayInterval,
	}
	e.interaction = NewInteraction(emitter, camera, lay, expansion, selection,
		&e.mu, opts.DoubleClickDelay, opts.HoverDebounce)
	return e
}

// Events exposes the domain-event emitter.
func (e *Engine) Events() *Emitter { return e.emitter }

// Interaction exposes the pointer-event entry points.
func (e *Engine) Interaction() *Interaction { return e.interaction }

// Camera exposes the camera pose (read by hosts for projection).
func (e *Engine) Camera() *Camera { return e.camera }

// Clock exposes the shared animation clock.
func (e *Engine) Clock() *Clock { return e.clock }

// Mount starts the clock, registers the per-frame overlay animations, and
// launches the overlay recompute timer. Mounting a mounted engine is a no-op.
func (e *Engine) Mount() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mounted {
		return
	}
	e.clock.Start()
	// The animations mutate overlay state the recompute goroutine swaps out
	// under mu, so each frame update takes the same lock.
	e.unregisterFx = append(e.unregisterFx,
		e.clock.Register(func(elapsed time.Duration) {
			e.mu.Lock()
			e.nebulas.Advance(elapsed)
			e.mu.Unlock()
		}),
		e.clock.Register(func(elapsed time.Duration) {
			e.mu.Lock()
			e.gaps.Advance(elapsed)
			e.mu.Unlock()
		}),
	)
	e.overlayStop = make(chan struct{})
	go e.overlayLoop(e.overlayStop)
	e.mounted = true
	debug.Log("engine mounted (overlay interval %v)", e.overlayInterval)
}

// Unmount tears the engine down: timer stopped, animations cancelled, pins
// released, clock fully reset, listeners dropped. Safe to call twice and safe
// to call while an overlay recompute is racing teardown.
func (e *Engine) Unmount() {
	e.mu.Lock()
	if !e.mounted {
		e.mu.Unlock()
		return
	}
	close(e.overlayStop)
	e.overlayStop = nil
	for _, fn := range e.unregisterFx {
		fn()
	}
	e.unregisterFx = nil
	e.mounted = false
	e.mu.Unlock()

	e.expansion.Cancel()
	e.interaction.Teardown()
	e.timeline.Disable()
	e.nodes.Dispose()
	e.clock.Reset()
	e.emitter.Reset()
	debug.Log("engine unmounted")
}

// Mounted reports lifecycle state.
func (e *Engine) Mounted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mounted
}

// SetGraph installs a new snapshot (search result). Full recompute: the
// engine never diffs snapshots. In-flight expansion animations are cancelled
// because their nodes may no longer exist.
func (e *Engine) SetGraph(g *model.GraphData) {
	e.expansion.Cancel()
	e.mu.Lock()
	e.graph = g
	e.rg = nil
	e.adapter.Invalidate()
	if e.view.TimelineMode {
		e.timelineGrid = e.timeline.Enable(g)
	}
	e.mu.Unlock()
	e.recomputeOverlays()
}

// ApplyExpansion installs the post-expand snapshot and animates the new
// nodes outward from their parent. newIDs not present in the snapshot are
// ignored; an empty newIDs degenerates to SetGraph.
func (e *Engine) ApplyExpansion(g *model.GraphData, parentID string, newIDs []string) {
	e.SetGraph(g)
	e.expansion.Begin(parentID, newIDs, time.Now())
}

// SetView applies a ViewState change. Timeline pins are applied or released
// on the transition; everything else is handled by the next adapter pass and
// overlay rebuild.
func (e *Engine) SetView(v model.ViewState) {
	e.mu.Lock()
	wasTimeline := e.view.TimelineMode
	e.view = v
	e.rg = nil
	g := e.graph
	e.mu.Unlock()

	if v.TimelineMode && !wasTimeline {
		grid := e.timeline.Enable(g)
		e.mu.Lock()
		e.timelineGrid = grid
		e.mu.Unlock()
	}
	if !v.TimelineMode && wasTimeline {
		e.timeline.Disable()
		e.mu.Lock()
		e.timelineGrid = nil
		e.mu.Unlock()
	}
	e.recomputeOverlays()
}

// View returns the current ViewState.
func (e *Engine) View() model.ViewState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.view
}

// Graph returns the current snapshot.
func (e *Engine) Graph() *model.GraphData {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.graph
}

// RenderGraph returns the current derived records, building them if stale.
func (e *Engine) RenderGraph() *RenderGraph {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.renderGraphLocked()
}

func (e *Engine) renderGraphLocked() *RenderGraph {
	rg := e.adapter.Build(e.graph, e.view)
	if rg != e.rg {
		e.rg = rg
		e.selection.Resolve(rg)
	}
	return rg
}

// RenderPass synthesizes the full visual set for the current state: node
// visuals (with live display-state resolution) and edge visuals (with LOD
// against the current camera distance).
func (e *Engine) RenderPass() ([]*NodeVisual, []*EdgeVisual) {
	e.mu.Lock()
	defer e.mu.Unlock()
	rg := e.renderGraphLocked()
	e.selection.Resolve(rg)
	nodes := e.nodes.Build(rg, e.selection, e.view)
	edges := e.edges.Build(rg, e.selection, e.camera.Distance())
	return nodes, edges
}

// Frame advances one rendered frame: shared clock tick (shader uniforms and
// registered animations), camera transition, expansion pinning.
func (e *Engine) Frame(now time.Time) {
	e.clock.Tick()
	e.camera.Update(now)
	e.expansion.Step(now)
}

// Selection returns a copy of the selection state for hosts to render from.
func (e *Engine) SelectionState() (selected, hovered string, multi []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for id := range e.selection.Multi {
		multi = append(multi, id)
	}
	return e.selection.Selected, e.selection.Hovered, multi
}

// HighlightPanel replaces the externally-driven highlight set (e.g. a search
// results panel hovering entries).
func (e *Engine) HighlightPanel(ids []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selection.Panel = make(map[string]bool, len(ids))
	for _, id := range ids {
		e.selection.Panel[id] = true
	}
}

// Hulls returns the current hull overlay (hull theme only).
func (e *Engine) Hulls() []overlay.ClusterHull {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hulls
}

// NebulaClouds returns the current nebula overlay (nebula theme only).
func (e *Engine) NebulaClouds() []*overlay.ClusterCloud {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.nebulas.Clouds
}

// GapBridges returns the current gap overlay.
func (e *Engine) GapBridges() []*overlay.GapBridge {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.view.GapOverlay {
		return nil
	}
	return e.gaps.Bridges
}

// TimelineGrid returns the timeline axis overlay, nil outside timeline mode.
func (e *Engine) TimelineGrid() *overlay.TimelineGrid {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.timelineGrid
}

// FocusPaper flies the camera to a paper. Unknown ids no-op.
func (e *Engine) FocusPaper(id string) {
	pos, ok := e.layout.Position(id)
	if !ok {
		return
	}
	e.camera.FocusNode(pos, time.Now(), func() {
		e.emitter.Emit(Event{Kind: EventCameraMoved, Command: "focus-paper", PaperID: id})
	})
}

// FocusCluster flies the camera to a cluster's centroid, offset along the
// view axis. Clusters with no positioned members no-op.
func (e *Engine) FocusCluster(clusterID int) {
	e.mu.Lock()
	members := e.graph.ClusterMembers()[clusterID]
	e.mu.Unlock()
	centroid, ok := overlay.Centroid(members, e.layout.Snapshot())
	if !ok {
		return
	}
	e.camera.FocusCluster(centroid, time.Now(), func() {
		e.emitter.Emit(Event{Kind: EventCameraMoved, Command: "focus-cluster"})
	})
}

// ResetCamera flies home.
func (e *Engine) ResetCamera() {
	e.camera.Reset(time.Now(), func() {
		e.emitter.Emit(Event{Kind: EventCameraMoved, Command: "reset"})
	})
}

// overlayLoop recomputes the position-derived overlays on the fixed interval
// until stop closes.
func (e *Engine) overlayLoop(stop chan struct{}) {
	ticker := time.NewTicker(e.overlayInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			e.recomputeOverlays()
		}
	}
}

// recomputeOverlays reads the layout's live positions once, rebuilds the
// theme overlay and gap bridges into fresh slices from that point-in-time
// snapshot, and swaps them in under mu. The frame loop's Advance updaters and
// the getters only ever see a fully built set. There is no consistency
// guarantee with the node render pass; one interval of staleness after a
// topology change is expected and fine.
func (e *Engine) recomputeOverlays() {
	e.overlayMu.Lock()
	defer e.overlayMu.Unlock()

	e.mu.Lock()
	g := e.graph
	view := e.view
	e.mu.Unlock()
	if g == nil {
		return // teardown raced us; nothing to do
	}

	positions := e.layout.Snapshot()

	var hulls []overlay.ClusterHull
	var clouds []*overlay.ClusterCloud
	if view.Theme == model.ThemeHull {
		hulls = overlay.Hulls(g, view, positions)
	} else {
		clouds = e.nebulas.Sample(g, view, positions)
	}
	var gapResult *analysis.GapResult
	var bridges []*overlay.GapBridge
	if view.GapOverlay {
		gapResult, bridges = overlay.BuildBridges(g, view, positions)
	}

	e.mu.Lock()
	e.hulls = hulls
	e.nebulas.Clouds = clouds
	e.gaps.Result = gapResult
	e.gaps.Bridges = bridges
	e.mu.Unlock()
}

// PositionOf reads a node's live position (render-pass convenience).
func (e *Engine) PositionOf(id string) (math32.Vector3, bool) {
	return e.layout.Position(id)
}
