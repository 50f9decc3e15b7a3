package model

import (
	"fmt"
	"sort"
	"strings"
)

// ClusterTheme selects the cluster-overlay treatment.
type ClusterTheme string

const (
	ThemeHull   ClusterTheme = "hull"
	ThemeNebula ClusterTheme = "nebula"
)

// NodeStyle selects the per-node render mode.
type NodeStyle string

const (
	StyleSphere NodeStyle = "sphere"
	StyleStar   NodeStyle = "star"
)

// ViewState is the set of user-facing toggles the engine renders under.
// Plain value type: copies are cheap and the scene adapter hashes it for
// memoization.
type ViewState struct {
	ShowCitationEdges   bool         `json:"show_citation_edges" yaml:"show_citation_edges"`
	ShowSimilarityEdges bool         `json:"show_similarity_edges" yaml:"show_similarity_edges"`
	EnhancedIntents     bool         `json:"enhanced_intents" yaml:"enhanced_intents"`
	GhostEdges          bool         `json:"ghost_edges" yaml:"ghost_edges"`
	ConceptualEdges     bool         `json:"conceptual_edges" yaml:"conceptual_edges"`
	GapOverlay          bool         `json:"gap_overlay" yaml:"gap_overlay"`
	Bloom               bool         `json:"bloom" yaml:"bloom"`
	Labels              bool         `json:"labels" yaml:"labels"`
	TimelineMode        bool         `json:"timeline_mode" yaml:"timeline_mode"`
	OpenAccessRings     bool         `json:"open_access_rings" yaml:"open_access_rings"`
	CitationAura        bool         `json:"citation_aura" yaml:"citation_aura"`
	Theme               ClusterTheme `json:"theme" yaml:"theme"`
	Style               NodeStyle    `json:"style" yaml:"style"`

	// HiddenClusters holds cluster ids whose members and overlays are
	// suppressed. nil and empty are equivalent.
	HiddenClusters map[int]bool `json:"hidden_clusters,omitempty" yaml:"hidden_clusters,omitempty"`
}

// DefaultViewState returns the out-of-the-box toggles.
func DefaultViewState() ViewState {
	return ViewState{
		ShowCitationEdges:   true,
		ShowSimilarityEdges: true,
		EnhancedIntents:     true,
		Labels:              true,
		OpenAccessRings:     true,
		CitationAura:        true,
		Theme:               ThemeHull,
		Style:               StyleStar,
	}
}

// EdgeVisible reports whether edges of the given type are currently shown.
func (v ViewState) EdgeVisible(t EdgeType) bool {
	switch t {
	case EdgeCitation:
		return v.ShowCitationEdges
	case EdgeSimilarity:
		return v.ShowSimilarityEdges
	default:
		return false
	}
}

// ClusterHidden reports whether the given cluster id is suppressed.
func (v ViewState) ClusterHidden(id int) bool {
	return v.HiddenClusters[id]
}

// WithClusterHidden returns a copy with the given cluster's hidden flag set.
// The receiver is not mutated; the hidden set is copied on write so ViewState
// values can be shared freely.
func (v ViewState) WithClusterHidden(id int, hidden bool) ViewState {
	next := make(map[int]bool, len(v.HiddenClusters)+1)
	for k, val := range v.HiddenClusters {
		next[k] = val
	}
	if hidden {
		next[id] = true
	} else {
		delete(next, id)
	}
	v.HiddenClusters = next
	return v
}

// Hash returns a stable string key covering every field, used to memoize the
// scene adapter on (snapshot version, view state).
func (v ViewState) Hash() string {
	hidden := make([]int, 0, len(v.HiddenClusters))
	for id, on := range v.HiddenClusters {
		if on {
			hidden = append(hidden, id)
		}
	}
	sort.Ints(hidden)
	var b strings.Builder
	for _, f := range []bool{
		v.ShowCitationEdges, v.ShowSimilarityEdges, v.EnhancedIntents,
		v.GhostEdges, v.ConceptualEdges, v.GapOverlay, v.Bloom, v.Labels,
		v.TimelineMode, v.OpenAccessRings, v.CitationAura,
	} {
		if f {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	fmt.Fprintf(&b, "|%s|%s|%v", v.Theme, v.Style, hidden)
	return b.String()
}
