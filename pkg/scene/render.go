package scene

import (
	"hash/fnv"

	"github.com/scholargraph/scholargraph3d/pkg/model"
)

// Palette. Hex strings end to end; the export renderer parses them once.
const (
	ColorDefaultNode = "#8888aa"
	ColorGhostEdge   = "#fbbf24"
	ColorConceptual  = "#ec4899"
	ColorSelection   = "#fbbf24"
	ColorNeighbor    = "#22d3ee"
	ColorHighlight   = "#a855f7"
	ColorEdgeDefault = "#555577"

	ColorGapStrong = "#ef4444"
	ColorGapMedium = "#f97316"
	ColorGapWeak   = "#eab308"
)

// fieldPalette colors nodes by primary research field. Stable hash so a field
// keeps its color across snapshots.
var fieldPalette = []string{
	"#a855f7", "#22d3ee", "#22c55e", "#f97316",
	"#ec4899", "#eab308", "#6366f1", "#14b8a6",
}

// FieldColor maps a field label to its palette entry, ColorDefaultNode when
// the label is empty.
func FieldColor(field string) string {
	if field == "" {
		return ColorDefaultNode
	}
	h := fnv.New32a()
	h.Write([]byte(field))
	return fieldPalette[h.Sum32()%uint32(len(fieldPalette))]
}

// intentColors color citation edges by classified intent.
var intentColors = map[model.CitationIntent]string{
	model.IntentBackground:  "#8888aa",
	model.IntentMethodology: "#22d3ee",
	model.IntentResult:      "#22c55e",
	model.IntentExtension:   "#a855f7",
	model.IntentContrast:    "#ef4444",
}

// IntentColor returns the edge color for an intent, ColorEdgeDefault for
// untyped edges.
func IntentColor(intent model.CitationIntent) string {
	if c, ok := intentColors[intent]; ok {
		return c
	}
	return ColorEdgeDefault
}

// RenderNode is the engine-internal derived record for one paper. Ephemeral:
// recomputed wholesale on every GraphData/ViewState change and never
// persisted. The Paper pointer aliases the snapshot's backing array.
type RenderNode struct {
	ID         string
	Paper      *model.Paper
	Size       float64 // max(3, ln(citations+1)*3)
	Opacity    float64 // year band: 0.3 + 0.7*(year-minYear)/span
	Color      string  // field-banded base color
	Percentile float64 // citation percentile, ties share a rank
	ClusterID  int
	HasYear    bool
}

// RenderLink is the engine-internal derived record for one edge.
type RenderLink struct {
	Source      string
	Target      string
	Type        model.EdgeType
	Weight      float64
	Intent      model.CitationIntent
	Influential bool
	Color       string
	Dashed      bool
	Ghost       bool   // synthesized from a strong similarity with no citation
	Conceptual  bool   // merged from the conceptual-edge overlay input
	Label       string // explanatory label for ghost/conceptual links
}

// Key returns the link's stable identity for memoization and click reporting.
func (l *RenderLink) Key() string {
	k := l.Source + "\x00" + l.Target + "\x00" + string(l.Type)
	if l.Ghost {
		k += "\x00ghost"
	}
	if l.Conceptual {
		k += "\x00concept"
	}
	return k
}

// Ref resolves the link to the stable tuple reported on edge clicks.
func (l *RenderLink) Ref() EdgeRef {
	return EdgeRef{
		Source: l.Source,
		Target: l.Target,
		Type:   l.Type,
		Intent: l.Intent,
		Weight: l.Weight,
	}
}

// RenderGraph is one adapter pass's output. Node and link pointers are
// referentially stable across passes when their derived values are unchanged,
// so downstream synthesizers can use pointer identity as a dirty check.
type RenderGraph struct {
	Nodes []*RenderNode
	Links []*RenderLink

	// NodeByID indexes Nodes.
	NodeByID map[string]*RenderNode

	// MinYear/MaxYear cover only papers with usable years.
	MinYear, MaxYear int
}
