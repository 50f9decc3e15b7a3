package scene_test

import (
	"testing"
	"time"

	"github.com/scholargraph/scholargraph3d/pkg/layout"
	"github.com/scholargraph/scholargraph3d/pkg/model"
	"github.com/scholargraph/scholargraph3d/pkg/scene"
	"github.com/scholargraph/scholargraph3d/pkg/testutil"
)

func newTestEngine(t *testing.T, g *model.GraphData) (*scene.Engine, *layout.Force) {
	t.Helper()
	force := layout.NewForce(1)
	force.SetGraph(g)
	eng := scene.New(force, scene.Options{Seed: 1})
	eng.SetGraph(g)
	return eng, force
}

func papersGraph(size int) *model.GraphData {
	return &model.GraphData{Version: 1, Papers: testutil.NewDefault().Papers(size)}
}

func TestEngineMountLifecycle(t *testing.T) {
	eng, _ := newTestEngine(t, testutil.NewDefault().Clustered(2, 5, 1))

	if eng.Mounted() {
		t.Fatal("engine starts unmounted")
	}
	eng.Mount()
	if !eng.Mounted() {
		t.Fatal("Mount did not take")
	}
	if !eng.Clock().Running() {
		t.Error("Mount must start the shared clock")
	}
	if got := eng.Clock().Count(); got != 2 {
		t.Errorf("overlay animations registered = %d, want 2", got)
	}

	eng.Mount() // idempotent
	if got := eng.Clock().Count(); got != 2 {
		t.Errorf("double Mount stacked registrations: %d", got)
	}

	eng.Unmount()
	if eng.Mounted() {
		t.Error("Unmount did not take")
	}
	if eng.Clock().Running() {
		t.Error("Unmount must stop the clock")
	}
	if got := eng.Clock().Count(); got != 0 {
		t.Errorf("Unmount left %d clock registrations", got)
	}
	eng.Unmount() // safe to repeat
}

func TestEngineRemountStartsClean(t *testing.T) {
	eng, _ := newTestEngine(t, papersGraph(4))
	eng.Mount()
	eng.Unmount()
	eng.Mount()
	defer eng.Unmount()

	if got := eng.Clock().Count(); got != 2 {
		t.Errorf("remount registrations = %d, want a clean 2", got)
	}
	if eng.Clock().Elapsed() > 100*time.Millisecond {
		t.Error("remount must restart from a fresh epoch")
	}
}

func TestEngineSetGraphCancelsExpansion(t *testing.T) {
	g := papersGraph(3)
	eng, force := newTestEngine(t, g)

	childID := g.Papers[1].ID
	eng.ApplyExpansion(g, g.Papers[0].ID, []string{childID})
	if !force.Pinned(childID) {
		t.Fatal("expansion should pin the animating node")
	}

	eng.SetGraph(papersGraph(3))
	if force.Pinned(childID) {
		t.Error("installing a new snapshot must cancel in-flight expansions")
	}
}

func TestEngineTimelineToggle(t *testing.T) {
	eng, _ := newTestEngine(t, papersGraph(6))

	if eng.TimelineGrid() != nil {
		t.Fatal("timeline grid must be nil outside timeline mode")
	}

	view := eng.View()
	view.TimelineMode = true
	eng.SetView(view)
	grid := eng.TimelineGrid()
	if grid == nil {
		t.Fatal("timeline mode must produce a grid")
	}
	if len(grid.Lines) == 0 {
		t.Error("grid has no year lines")
	}

	view.TimelineMode = false
	eng.SetView(view)
	if eng.TimelineGrid() != nil {
		t.Error("leaving timeline mode must drop the grid")
	}
}

func TestEngineRenderGraphMemoized(t *testing.T) {
	eng, _ := newTestEngine(t, papersGraph(5))

	rg1 := eng.RenderGraph()
	rg2 := eng.RenderGraph()
	if rg1 != rg2 {
		t.Fatal("unchanged state must return the cached render graph")
	}

	view := eng.View()
	view.Labels = !view.Labels
	eng.SetView(view)
	if eng.RenderGraph() == rg1 {
		t.Error("view change must invalidate the render graph")
	}
}

func TestEngineRenderPass(t *testing.T) {
	g := testutil.NewDefault().CitationChain(4)
	eng, _ := newTestEngine(t, g)

	nodes, edges := eng.RenderPass()
	if len(nodes) != 4 {
		t.Errorf("node visuals = %d, want 4", len(nodes))
	}
	if len(edges) != 3 {
		t.Errorf("edge visuals = %d, want 3", len(edges))
	}
}

func TestEngineHullsFollowTheme(t *testing.T) {
	eng, _ := newTestEngine(t, testutil.NewDefault().Clustered(2, 6, 1))

	// Default theme is hull and SetGraph recomputes synchronously.
	if len(eng.Hulls()) == 0 {
		t.Fatal("hull theme with positioned clusters must produce hulls")
	}
	if len(eng.NebulaClouds()) != 0 {
		t.Error("nebula clouds must be empty under the hull theme")
	}

	view := eng.View()
	view.Theme = model.ThemeNebula
	eng.SetView(view)
	if len(eng.NebulaClouds()) == 0 {
		t.Error("nebula theme must produce clouds")
	}
	if len(eng.Hulls()) != 0 {
		t.Error("hulls must clear when the theme switches away")
	}
}

func TestEngineGapBridgesGatedByToggle(t *testing.T) {
	eng, _ := newTestEngine(t, testutil.NewDefault().Clustered(3, 6, 0))

	if eng.GapBridges() != nil {
		t.Fatal("gap bridges must be nil while the overlay is off")
	}
	view := eng.View()
	view.GapOverlay = true
	eng.SetView(view)
	if eng.GapBridges() == nil {
		t.Error("sparse clusters with the overlay on should surface bridges")
	}
}

func TestEngineOverlayRecomputeConcurrentWithFrames(t *testing.T) {
	g := testutil.NewDefault().Clustered(3, 6, 0)
	force := layout.NewForce(1)
	force.SetGraph(g)
	eng := scene.New(force, scene.Options{Seed: 1, OverlayInterval: time.Millisecond})

	view := eng.View()
	view.Theme = model.ThemeNebula
	view.GapOverlay = true
	eng.SetView(view)
	eng.SetGraph(g)

	eng.Mount()
	defer eng.Unmount()

	// Frame loop on one goroutine, interval rebuilds on the engine's own,
	// view churn here. Under the race detector this exercises the overlay
	// handoff and the debounced hover write.
	done := make(chan struct{})
	go func() {
		defer close(done)
		deadline := time.Now().Add(50 * time.Millisecond)
		for time.Now().Before(deadline) {
			eng.Frame(time.Now())
			for _, c := range eng.NebulaClouds() {
				_ = c.Shimmer
			}
			for _, b := range eng.GapBridges() {
				_ = b.PulseScale
			}
			eng.Interaction().Hover(g.Papers[0].ID)
			eng.SelectionState()
		}
	}()

	for i := 0; i < 20; i++ {
		eng.SetView(view)
		time.Sleep(time.Millisecond)
	}
	<-done

	if len(eng.NebulaClouds()) == 0 {
		t.Error("nebula theme must keep clouds through concurrent rebuilds")
	}
}

func TestEngineSelectionFlow(t *testing.T) {
	g := papersGraph(3)
	eng, _ := newTestEngine(t, g)

	id := g.Papers[0].ID
	eng.Interaction().ClickNode(id, false)
	selected, _, _ := eng.SelectionState()
	if selected != id {
		t.Errorf("selected = %q, want %q", selected, id)
	}

	eng.HighlightPanel([]string{g.Papers[1].ID})
	nodes, _ := eng.RenderPass()
	var panelLit bool
	for _, v := range nodes {
		if v.Node.ID == g.Papers[1].ID && v.State.Color == scene.ColorHighlight {
			panelLit = true
		}
	}
	if !panelLit {
		t.Error("panel-highlighted node did not resolve to the highlight color")
	}
}

func TestEngineEventsReachSubscribers(t *testing.T) {
	g := papersGraph(2)
	eng, _ := newTestEngine(t, g)

	var got []scene.Event
	eng.Events().Subscribe(func(ev scene.Event) { got = append(got, ev) })
	eng.Interaction().ClickNode(g.Papers[0].ID, false)

	if len(got) != 1 || got[0].Kind != scene.EventPaperSelected {
		t.Fatalf("expected one select event, got %+v", got)
	}
}
