package scene

import (
	"testing"
	"time"

	"github.com/scholargraph/scholargraph3d/pkg/layout"
	"github.com/scholargraph/scholargraph3d/pkg/model"
)

func newTestInteraction(t *testing.T) (*Interaction, *Emitter, *layout.Force, func(time.Duration)) {
	t.Helper()
	g := &model.GraphData{
		Version: 1,
		Papers: []model.Paper{
			{ID: "a", Title: "A", ClusterID: model.UnclusteredID},
			{ID: "b", Title: "B", ClusterID: model.UnclusteredID},
		},
	}
	force := layout.NewForce(1)
	force.SetGraph(g)

	em := &Emitter{}
	cam := NewCamera(0)
	exp := NewExpansionController(force, 0)
	sel := &Selection{}
	in := NewInteraction(em, cam, force, exp, sel, nil, 0, 0)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := base
	in.setNow(func() time.Time { return now })
	advance := func(d time.Duration) { now = now.Add(d) }
	return in, em, force, advance
}

func collectEvents(em *Emitter) *[]Event {
	var events []Event
	em.Subscribe(func(ev Event) { events = append(events, ev) })
	return &events
}

func TestDoubleClickWithinWindowExpands(t *testing.T) {
	in, em, _, advance := newTestInteraction(t)
	events := collectEvents(em)

	in.ClickNode("a", false)
	advance(200 * time.Millisecond)
	in.ClickNode("a", false)

	var kinds []EventKind
	for _, ev := range *events {
		kinds = append(kinds, ev.Kind)
	}
	if len(kinds) < 2 || kinds[0] != EventPaperSelected || kinds[1] != EventExpandRequested {
		t.Fatalf("expected select then expand, got %v", kinds)
	}
}

func TestSlowSecondClickReselects(t *testing.T) {
	in, em, _, advance := newTestInteraction(t)
	events := collectEvents(em)

	in.ClickNode("a", false)
	advance(400 * time.Millisecond)
	in.ClickNode("a", false)

	for _, ev := range *events {
		if ev.Kind == EventExpandRequested {
			t.Fatal("click outside the 300ms window must not expand")
		}
	}
	selected := 0
	for _, ev := range *events {
		if ev.Kind == EventPaperSelected {
			selected++
		}
	}
	if selected != 2 {
		t.Errorf("expected 2 select events, got %d", selected)
	}
}

func TestDoubleClickDifferentNodesDoesNotExpand(t *testing.T) {
	in, em, _, advance := newTestInteraction(t)
	events := collectEvents(em)

	in.ClickNode("a", false)
	advance(100 * time.Millisecond)
	in.ClickNode("b", false)

	for _, ev := range *events {
		if ev.Kind == EventExpandRequested {
			t.Fatal("fast clicks on different nodes are two selects, not a double click")
		}
	}
}

func TestShiftClickTogglesMultiSelect(t *testing.T) {
	in, em, _, advance := newTestInteraction(t)
	events := collectEvents(em)

	in.ClickNode("a", true)
	advance(50 * time.Millisecond)
	in.ClickNode("b", true)
	advance(50 * time.Millisecond)
	in.ClickNode("a", true)

	if len(*events) != 3 {
		t.Fatalf("expected 3 multi-select events, got %d", len(*events))
	}
	last := (*events)[2]
	if last.Kind != EventMultiSelectToggled || last.Selected {
		t.Errorf("second shift-click on a must toggle it off, got %+v", last)
	}
	if in.selection.Multi["a"] {
		t.Error("a should have left the multi-select set")
	}
	if !in.selection.Multi["b"] {
		t.Error("b should remain in the multi-select set")
	}
	if in.selection.Selected != "" {
		t.Error("shift clicks must not touch single selection")
	}
}

func TestBackgroundClickSuppressionWindow(t *testing.T) {
	in, em, _, advance := newTestInteraction(t)
	events := collectEvents(em)

	in.ClickNode("a", false)
	advance(100 * time.Millisecond)
	in.ClickBackground() // within 150ms of the node click: swallowed

	if in.selection.Selected != "a" {
		t.Fatal("background click inside the suppression window must not deselect")
	}

	advance(200 * time.Millisecond)
	in.ClickBackground()
	if in.selection.Selected != "" {
		t.Fatal("background click after the window must clear selection")
	}

	deselects := 0
	for _, ev := range *events {
		if ev.Kind == EventPaperDeselected {
			deselects++
		}
	}
	if deselects != 1 {
		t.Errorf("expected exactly 1 deselect event, got %d", deselects)
	}
}

func TestBackgroundClickWithoutSelectionEmitsNothing(t *testing.T) {
	in, em, _, advance := newTestInteraction(t)
	events := collectEvents(em)
	advance(time.Second)
	in.ClickBackground()
	if len(*events) != 0 {
		t.Errorf("deselect with no selection must be silent, got %v", *events)
	}
}

func TestDragRefusedDuringExpansion(t *testing.T) {
	in, _, force, _ := newTestInteraction(t)

	// Put node b under expansion-controller control.
	in.expansion.Begin("a", []string{"b"}, time.Now())
	if in.expansion.Animating("b") != true {
		t.Fatal("expected b to be animating")
	}
	if in.BeginDrag("b") {
		t.Fatal("drag must be refused while the expansion controller owns the pin")
	}

	if !in.BeginDrag("a") {
		t.Fatal("drag on a non-animating node should start")
	}
	if in.BeginDrag("a") {
		t.Fatal("second concurrent drag must be refused")
	}
	in.Drag(5, 6, 7)
	pos, ok := force.Position("a")
	if !ok || pos.X != 5 || pos.Y != 6 || pos.Z != 7 {
		t.Errorf("drag pin not applied, got %v", pos)
	}
	in.EndDrag()
	if force.Pinned("a") {
		t.Error("EndDrag must release the pin")
	}
}

func TestEdgeClickIsIndependent(t *testing.T) {
	in, em, _, advance := newTestInteraction(t)
	events := collectEvents(em)

	in.ClickNode("a", false)
	advance(100 * time.Millisecond)
	in.ClickEdge(&RenderLink{Source: "a", Target: "b", Type: model.EdgeCitation})
	advance(100 * time.Millisecond)
	in.ClickNode("a", false)

	// The edge click sits between two fast node clicks; the node clicks still
	// form a double click because edge clicks never touch that state.
	sawExpand := false
	sawEdge := false
	for _, ev := range *events {
		if ev.Kind == EventExpandRequested {
			sawExpand = true
		}
		if ev.Kind == EventEdgeClicked && ev.Edge != nil && ev.Edge.Source == "a" {
			sawEdge = true
		}
	}
	if !sawEdge {
		t.Error("edge click event missing")
	}
	if !sawExpand {
		t.Error("edge click must not break the node double-click sequence")
	}
}

func TestHoverDebounce(t *testing.T) {
	in, em, _, _ := newTestInteraction(t)
	events := collectEvents(em)
	var mu = make(chan struct{}, 8)

	em.Subscribe(func(ev Event) {
		if ev.Kind == EventPaperHovered {
			mu <- struct{}{}
		}
	})

	// Rapid sweep: only the last hover survives the 50ms debounce.
	in.Hover("a")
	in.Hover("b")

	select {
	case <-mu:
	case <-time.After(time.Second):
		t.Fatal("debounced hover never fired")
	}

	hovered := ""
	for _, ev := range *events {
		if ev.Kind == EventPaperHovered {
			hovered = ev.PaperID
		}
	}
	if hovered != "b" {
		t.Errorf("hover = %q, want the final target b", hovered)
	}
}
