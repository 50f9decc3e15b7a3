package scene

import (
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/scholargraph/scholargraph3d/pkg/model"
)

// Twinkle frequency band for star mode. A paper's publication year maps
// linearly into it: the oldest paper in view twinkles at minTwinkleHz, the
// newest at maxTwinkleHz.
const (
	minTwinkleHz = 0.2
	maxTwinkleHz = 1.0
)

// maxLabelWidth truncates label sprites; long titles blow out the sprite
// atlas and overlap neighbors.
const maxLabelWidth = 42

// NodeVisual is the composite renderable object for one paper: resolved
// display state plus the mode-specific surface.
type NodeVisual struct {
	Node  *RenderNode
	State DisplayState
	Mode  model.NodeStyle

	// Material is non-nil in star mode; its uTime uniform is driven by the
	// shared clock until Dispose.
	Material *Material

	// Label is the text sprite content, "" when the label is suppressed.
	Label string

	unregister func()
}

// Dispose releases the visual's clock registration. Safe to call twice and
// safe when the visual never had one.
func (v *NodeVisual) Dispose() {
	if v.unregister != nil {
		v.unregister()
		v.unregister = nil
	}
}

// NodeSynthesizer builds NodeVisuals and keeps them alive across passes.
// Visuals are rebuilt only when their inputs changed: the adapter keeps
// RenderNode pointers referentially stable, so pointer identity plus
// DisplayState equality is a complete dirty check.
type NodeSynthesizer struct {
	clock   *Clock
	visuals map[string]*NodeVisual
}

// NewNodeSynthesizer creates a synthesizer bound to the engine's clock.
func NewNodeSynthesizer(clock *Clock) *NodeSynthesizer {
	return &NodeSynthesizer{
		clock:   clock,
		visuals: make(map[string]*NodeVisual),
	}
}

// Build synthesizes visuals for every node in the render graph. Visuals for
// nodes that left the graph are disposed so their clock registrations can't
// outlive them.
func (s *NodeSynthesizer) Build(rg *RenderGraph, sel *Selection, view model.ViewState) []*NodeVisual {
	out := make([]*NodeVisual, 0, len(rg.Nodes))
	next := make(map[string]*NodeVisual, len(rg.Nodes))

	for _, n := range rg.Nodes {
		state := ResolveDisplay(n, sel, view)
		prev := s.visuals[n.ID]
		if prev != nil && prev.Node == n && prev.State == state && prev.Mode == view.Style {
			next[n.ID] = prev
			out = append(out, prev)
			continue
		}
		if prev != nil {
			prev.Dispose()
		}
		v := s.synthesize(n, state, view, rg)
		next[n.ID] = v
		out = append(out, v)
	}

	for id, v := range s.visuals {
		if next[id] == nil {
			v.Dispose()
		}
	}
	s.visuals = next
	return out
}

// synthesize builds one visual from its resolved state.
func (s *NodeSynthesizer) synthesize(n *RenderNode, state DisplayState, view model.ViewState, rg *RenderGraph) *NodeVisual {
	v := &NodeVisual{
		Node:  n,
		State: state,
		Mode:  view.Style,
	}

	if state.ShowLabel {
		v.Label = runewidth.Truncate(n.Paper.Title, maxLabelWidth, "…")
	}

	if view.Style == model.StyleStar {
		mat := NewStarMaterial(twinkleHz(n, rg), float32(state.Opacity))
		v.Material = mat
		v.unregister = s.clock.Register(func(elapsed time.Duration) {
			mat.SetTime(float32(elapsed.Seconds()))
		})
	}
	return v
}

// Dispose releases every live visual. Called on engine teardown.
func (s *NodeSynthesizer) Dispose() {
	for _, v := range s.visuals {
		v.Dispose()
	}
	s.visuals = make(map[string]*NodeVisual)
}

// twinkleHz maps publication year into the twinkle band; year-less papers sit
// in the middle.
func twinkleHz(n *RenderNode, rg *RenderGraph) float32 {
	span := rg.MaxYear - rg.MinYear
	if !n.HasYear || span <= 0 {
		return (minTwinkleHz + maxTwinkleHz) / 2
	}
	frac := float32(n.Paper.Year-rg.MinYear) / float32(span)
	return minTwinkleHz + (maxTwinkleHz-minTwinkleHz)*frac
}
