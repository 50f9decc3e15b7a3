package scene_test

import (
	"testing"

	"github.com/scholargraph/scholargraph3d/pkg/model"
	"github.com/scholargraph/scholargraph3d/pkg/scene"
)

func displayNode(id string, percentile, size float64) *scene.RenderNode {
	return &scene.RenderNode{
		ID:         id,
		Paper:      &model.Paper{ID: id, Title: "Paper " + id},
		Size:       size,
		Opacity:    0.8,
		Color:      "#4488cc",
		Percentile: percentile,
	}
}

func TestDisplayPrecedence(t *testing.T) {
	rg := &scene.RenderGraph{
		Links: []*scene.RenderLink{
			{Source: "sel", Target: "nbr", Type: model.EdgeCitation},
		},
	}
	sel := &scene.Selection{
		Selected: "sel",
		Panel:    map[string]bool{"sel": true, "pan": true},
	}
	sel.Resolve(rg)
	view := model.DefaultViewState()

	st := scene.ResolveDisplay(displayNode("sel", 0.5, 5), sel, view)
	if st.Color != scene.ColorSelection || st.Opacity != 1.0 {
		t.Errorf("selection must beat the panel highlight, got color %q opacity %v", st.Color, st.Opacity)
	}
	if !st.Decorations.Has(scene.DecorSelectionRing) {
		t.Error("selected node missing its ring")
	}

	st = scene.ResolveDisplay(displayNode("pan", 0.5, 5), sel, view)
	if st.Color != scene.ColorHighlight || st.Opacity != 1.0 {
		t.Errorf("panel highlight state wrong: color %q opacity %v", st.Color, st.Opacity)
	}

	st = scene.ResolveDisplay(displayNode("nbr", 0.5, 5), sel, view)
	if st.Color != scene.ColorNeighbor || st.Opacity != 0.9 {
		t.Errorf("neighbor state wrong: color %q opacity %v", st.Color, st.Opacity)
	}

	st = scene.ResolveDisplay(displayNode("other", 0.5, 5), sel, view)
	if st.Opacity != scene.Dimmed {
		t.Errorf("unrelated node opacity = %v, want %v", st.Opacity, scene.Dimmed)
	}
	if st.Color != "#4488cc" {
		t.Error("dimming must not recolor the node")
	}
}

func TestDisplayNoSelectionKeepsBaseState(t *testing.T) {
	sel := &scene.Selection{}
	st := scene.ResolveDisplay(displayNode("a", 0.5, 5), sel, model.DefaultViewState())
	if st.Color != "#4488cc" || st.Opacity != 0.8 {
		t.Errorf("with no selection the base banding survives, got %q/%v", st.Color, st.Opacity)
	}
}

func TestDisplayLabelRule(t *testing.T) {
	sel := &scene.Selection{}
	view := model.DefaultViewState()

	if st := scene.ResolveDisplay(displayNode("lo", 0.5, 5), sel, view); st.ShowLabel {
		t.Error("mid-percentile node should not carry a label")
	}
	if st := scene.ResolveDisplay(displayNode("hi", 0.95, 5), sel, view); !st.ShowLabel {
		t.Error("top-percentile node should carry a label")
	}

	// Selection forces a label regardless of percentile.
	sel = &scene.Selection{Selected: "lo"}
	sel.Resolve(&scene.RenderGraph{})
	if st := scene.ResolveDisplay(displayNode("lo", 0.1, 5), sel, view); !st.ShowLabel {
		t.Error("selected node must always get a label")
	}

	view.Labels = false
	if st := scene.ResolveDisplay(displayNode("lo", 0.1, 5), sel, view); st.ShowLabel {
		t.Error("labels toggle off suppresses everything")
	}
}

func TestDisplayDecorations(t *testing.T) {
	view := model.DefaultViewState()
	sel := &scene.Selection{}

	n := displayNode("a", 0.95, 5)
	n.Paper.IsBridge = true
	n.Paper.IsOpenAccess = true
	st := scene.ResolveDisplay(n, sel, view)
	for _, want := range []scene.Decoration{scene.DecorBridgeGlow, scene.DecorOpenAccessRing, scene.DecorCitationAura} {
		if !st.Decorations.Has(want) {
			t.Errorf("decoration %b missing", want)
		}
	}

	view.OpenAccessRings = false
	view.CitationAura = false
	st = scene.ResolveDisplay(n, sel, view)
	if st.Decorations.Has(scene.DecorOpenAccessRing) || st.Decorations.Has(scene.DecorCitationAura) {
		t.Error("toggled-off decorations still present")
	}
	if !st.Decorations.Has(scene.DecorBridgeGlow) {
		t.Error("bridge glow is not toggleable")
	}

	// Bloom halo only stacks on selected nodes with the toggle on.
	view.Bloom = true
	sel = &scene.Selection{Selected: "a"}
	sel.Resolve(&scene.RenderGraph{})
	st = scene.ResolveDisplay(n, sel, view)
	if !st.Decorations.Has(scene.DecorBloomHalo) {
		t.Error("selected node with bloom on must get the halo")
	}
}

func TestDisplayBadges(t *testing.T) {
	sel := &scene.Selection{}
	view := model.DefaultViewState()

	review := displayNode("r", 0.5, 6)
	review.Paper.Abstract = "A systematic review of graph layout methods."
	if st := scene.ResolveDisplay(review, sel, view); st.Badge != scene.BadgeReview {
		t.Errorf("badge = %q, want R", st.Badge)
	}

	method := displayNode("m", 0.5, 6)
	method.Paper.TLDR = "We propose a new benchmark for citation parsing."
	if st := scene.ResolveDisplay(method, sel, view); st.Badge != scene.BadgeMethodology {
		t.Errorf("badge = %q, want M", st.Badge)
	}

	tiny := displayNode("t", 0.5, 3)
	tiny.Paper.Abstract = "A systematic review of everything."
	if st := scene.ResolveDisplay(tiny, sel, view); st.Badge != scene.BadgeNone {
		t.Error("nodes below the badge size floor must stay bare")
	}

	plain := displayNode("p", 0.5, 6)
	if st := scene.ResolveDisplay(plain, sel, view); st.Badge != scene.BadgeNone {
		t.Errorf("paper with no abstract text got badge %q", st.Badge)
	}
}
