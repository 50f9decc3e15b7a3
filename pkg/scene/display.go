package scene

import (
	"regexp"

	"github.com/scholargraph/scholargraph3d/pkg/model"
)

// Selection is the global selection/highlight state the synthesizers resolve
// against. Owned by the interaction controller; value-copied into each
// synthesis pass.
type Selection struct {
	Selected string          // single-selected paper id, "" when none
	Multi    map[string]bool // shift-click multi-select set
	Panel    map[string]bool // papers explicitly highlighted by an external panel
	Hovered  string

	// Neighbors of the selected paper, derived by Resolve.
	neighbors map[string]bool
}

// Active reports whether any selection-driven focus contrast applies.
func (s *Selection) Active() bool {
	return s.Selected != "" || len(s.Multi) > 0
}

// Resolve recomputes the neighbor set for the current selection from the
// render graph's links. Call after every selection change or adapter pass.
func (s *Selection) Resolve(rg *RenderGraph) {
	s.neighbors = make(map[string]bool)
	if s.Selected == "" {
		return
	}
	for _, l := range rg.Links {
		if l.Source == s.Selected {
			s.neighbors[l.Target] = true
		}
		if l.Target == s.Selected {
			s.neighbors[l.Source] = true
		}
	}
}

// IsNeighbor reports whether id neighbors the selected paper.
func (s *Selection) IsNeighbor(id string) bool {
	return s.neighbors[id]
}

// Highlighted reports whether id is part of the highlight set: selected,
// multi-selected, panel-highlighted, or a neighbor of the selection. Edge
// fading keys off this.
func (s *Selection) Highlighted(id string) bool {
	return id == s.Selected || s.Multi[id] || s.Panel[id] || s.neighbors[id]
}

// Decoration flags, independently toggleable and stackable.
type Decoration uint8

const (
	DecorSelectionRing Decoration = 1 << iota
	DecorBridgeGlow
	DecorOpenAccessRing
	DecorCitationAura
	DecorBloomHalo
)

// Has reports whether the flag is set.
func (d Decoration) Has(flag Decoration) bool { return d&flag != 0 }

// Badge marks review/methodology papers with a small letter badge.
type Badge string

const (
	BadgeNone        Badge = ""
	BadgeReview      Badge = "R"
	BadgeMethodology Badge = "M"
)

// DisplayState is the theme-agnostic resolution of a node's visual state.
// Both render modes (sphere and star) consume the same DisplayState, so the
// precedence rules live in exactly one place.
type DisplayState struct {
	Color       string
	Opacity     float64
	Decorations Decoration
	Badge       Badge
	ShowLabel   bool
}

// Dimmed is the opacity of non-related nodes while a selection exists.
const Dimmed = 0.15

// LabelPercentile: unselected, unhighlighted nodes only get labels above this
// citation percentile, bounding label clutter.
const LabelPercentile = 0.8

// badgeMinSize: nodes smaller than this can't render a legible badge.
const badgeMinSize = 4.5

var (
	reviewPattern      = regexp.MustCompile(`(?i)\b(survey|systematic review|literature review|review of|meta-analysis)\b`)
	methodologyPattern = regexp.MustCompile(`(?i)\b(we propose|novel (method|approach|framework)|methodology|benchmark)\b`)
)

// ResolveDisplay computes a node's DisplayState under the precedence contract:
// selected > panel-highlighted > neighbor-of-selection > default banding.
// When any selection exists, unrelated nodes drop to Dimmed opacity.
func ResolveDisplay(n *RenderNode, sel *Selection, view model.ViewState) DisplayState {
	st := DisplayState{
		Color:   n.Color,
		Opacity: n.Opacity,
	}

	isSelected := n.ID == sel.Selected || sel.Multi[n.ID]
	switch {
	case isSelected:
		st.Color = ColorSelection
		st.Opacity = 1.0
	case sel.Panel[n.ID]:
		st.Color = ColorHighlight
		st.Opacity = 1.0
	case sel.IsNeighbor(n.ID):
		st.Color = ColorNeighbor
		st.Opacity = 0.9
	case sel.Active():
		st.Opacity = Dimmed
	}

	if isSelected {
		st.Decorations |= DecorSelectionRing
		if view.Bloom {
			st.Decorations |= DecorBloomHalo
		}
	}
	if n.Paper.IsBridge {
		st.Decorations |= DecorBridgeGlow
	}
	if view.OpenAccessRings && n.Paper.IsOpenAccess {
		st.Decorations |= DecorOpenAccessRing
	}
	if view.CitationAura && n.Percentile > 0.9 {
		st.Decorations |= DecorCitationAura
	}

	if view.Labels {
		st.ShowLabel = isSelected || sel.Panel[n.ID] || sel.IsNeighbor(n.ID) ||
			n.Percentile > LabelPercentile
	}

	st.Badge = classifyBadge(n)
	return st
}

// classifyBadge matches the abstract/tldr against the review/methodology
// lexical patterns; tiny nodes skip the badge entirely.
func classifyBadge(n *RenderNode) Badge {
	if n.Size < badgeMinSize {
		return BadgeNone
	}
	text := n.Paper.Abstract
	if text == "" {
		text = n.Paper.TLDR
	}
	if text == "" {
		return BadgeNone
	}
	if reviewPattern.MatchString(text) {
		return BadgeReview
	}
	if methodologyPattern.MatchString(text) {
		return BadgeMethodology
	}
	return BadgeNone
}
