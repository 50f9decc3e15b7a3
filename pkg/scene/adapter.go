package scene

import (
	"fmt"
	"math"
	"sort"

	"github.com/scholargraph/scholargraph3d/pkg/model"
)

// GhostSimilarityThreshold: similarity edges above this weight with no
// citation edge between the same papers get a synthesized "ghost" link
// suggesting a missed citation.
const GhostSimilarityThreshold = 0.75

// MinNodeSize floors the visual size so low-citation papers stay clickable.
const MinNodeSize = 3.0

// Adapter is the pure GraphData+ViewState -> RenderGraph transform, memoized
// on (snapshot version, view-state hash). Per-record pointers are reused
// across passes when the derived values are unchanged, so synthesizers keyed
// on pointer identity don't rebuild untouched visuals.
type Adapter struct {
	cacheVersion int
	cacheHash    string
	cached       *RenderGraph

	prevNodes map[string]*RenderNode
	prevLinks map[string]*RenderLink
}

// NewAdapter returns an empty adapter.
func NewAdapter() *Adapter {
	return &Adapter{
		prevNodes: make(map[string]*RenderNode),
		prevLinks: make(map[string]*RenderLink),
	}
}

// Build derives the render graph. Safe to call on every state change: a
// repeat call with the same snapshot version and view state returns the
// cached result without recomputation.
func (a *Adapter) Build(g *model.GraphData, view model.ViewState) *RenderGraph {
	hash := view.Hash()
	if a.cached != nil && a.cacheVersion == g.Version && a.cacheHash == hash {
		return a.cached
	}

	out := &RenderGraph{NodeByID: make(map[string]*RenderNode, len(g.Papers))}

	percentiles := citationPercentiles(g.Papers)
	minYear, maxYear := yearRange(g.Papers)
	out.MinYear, out.MaxYear = minYear, maxYear
	span := maxYear - minYear

	nextNodes := make(map[string]*RenderNode, len(g.Papers))
	for i := range g.Papers {
		p := &g.Papers[i]
		if p.ClusterID != model.UnclusteredID && view.ClusterHidden(p.ClusterID) {
			continue
		}
		node := &RenderNode{
			ID:         p.ID,
			Paper:      p,
			Size:       nodeSize(p.CitationCount),
			Opacity:    yearOpacity(p, minYear, span),
			Color:      FieldColor(p.PrimaryField()),
			Percentile: percentiles[p.ID],
			ClusterID:  p.ClusterID,
			HasYear:    p.HasYear(),
		}
		if prev, ok := a.prevNodes[p.ID]; ok && sameNode(prev, node) {
			node = prev
		}
		nextNodes[p.ID] = node
		out.Nodes = append(out.Nodes, node)
		out.NodeByID[p.ID] = node
	}

	intents := g.IntentFor()
	citationPairs := make(map[string]bool)
	linkPairs := make(map[string]bool)
	nextLinks := make(map[string]*RenderLink)

	appendLink := func(l *RenderLink) {
		if prev, ok := a.prevLinks[l.Key()]; ok && sameLink(prev, l) {
			l = prev
		}
		nextLinks[l.Key()] = l
		out.Links = append(out.Links, l)
	}

	for i := range g.Edges {
		e := &g.Edges[i]
		if e.Type == model.EdgeCitation {
			citationPairs[e.PairKey()] = true
		}
	}

	for i := range g.Edges {
		e := &g.Edges[i]
		if !view.EdgeVisible(e.Type) {
			continue
		}
		if out.NodeByID[e.Source] == nil || out.NodeByID[e.Target] == nil {
			continue // endpoint hidden with its cluster
		}
		intent, influential := resolveIntent(e, intents, view)
		link := &RenderLink{
			Source:      e.Source,
			Target:      e.Target,
			Type:        e.Type,
			Weight:      e.Weight,
			Intent:      intent,
			Influential: influential,
			Color:       linkColor(e.Type, intent),
		}
		linkPairs[e.PairKey()] = true
		appendLink(link)
	}

	if view.GhostEdges && view.EdgeVisible(model.EdgeSimilarity) {
		ghostPairs := make(map[string]bool)
		for i := range g.Edges {
			e := &g.Edges[i]
			if e.Type != model.EdgeSimilarity || e.Weight <= GhostSimilarityThreshold {
				continue
			}
			pair := e.PairKey()
			if citationPairs[pair] || ghostPairs[pair] {
				continue
			}
			if out.NodeByID[e.Source] == nil || out.NodeByID[e.Target] == nil {
				continue
			}
			ghostPairs[pair] = true
			linkPairs[pair] = true // a ghost connects the pair; conceptual edges must skip it
			appendLink(&RenderLink{
				Source: e.Source,
				Target: e.Target,
				Type:   model.EdgeSimilarity,
				Weight: e.Weight,
				Color:  ColorGhostEdge,
				Dashed: true,
				Ghost:  true,
				Label:  fmt.Sprintf("possible missed citation (similarity %.2f)", e.Weight),
			})
		}
	}

	if view.ConceptualEdges {
		for i := range g.ConceptualEdges {
			ce := &g.ConceptualEdges[i]
			pair := model.PairKey(ce.Source, ce.Target)
			if linkPairs[pair] {
				continue // an existing link already connects this pair
			}
			if out.NodeByID[ce.Source] == nil || out.NodeByID[ce.Target] == nil {
				continue
			}
			color := ce.Color
			if color == "" {
				color = ColorConceptual
			}
			linkPairs[pair] = true
			appendLink(&RenderLink{
				Source:     ce.Source,
				Target:     ce.Target,
				Type:       model.EdgeSimilarity,
				Weight:     ce.Weight,
				Color:      color,
				Dashed:     true,
				Conceptual: true,
				Label:      ce.RelationType,
			})
		}
	}

	a.cacheVersion = g.Version
	a.cacheHash = hash
	a.cached = out
	a.prevNodes = nextNodes
	a.prevLinks = nextLinks
	return out
}

// Invalidate drops the cache; the next Build recomputes unconditionally.
func (a *Adapter) Invalidate() {
	a.cached = nil
	a.cacheHash = ""
}

// resolveIntent applies the precedence chain: enhanced annotation (when the
// toggle is on), then the batch classifier's annotation, then the edge's own
// inline intent. Influential only ever comes from the enhanced annotation.
func resolveIntent(e *model.Edge, intents map[string]model.CitationIntent, view model.ViewState) (model.CitationIntent, bool) {
	if view.EnhancedIntents && e.Enhanced != nil && e.Enhanced.Intent != "" {
		return e.Enhanced.Intent, e.Enhanced.IsInfluential
	}
	if intent, ok := intents[e.Source+"\x00"+e.Target]; ok && intent != "" {
		return intent, false
	}
	return e.Intent, false
}

func linkColor(t model.EdgeType, intent model.CitationIntent) string {
	if t == model.EdgeCitation {
		return IntentColor(intent)
	}
	return ColorEdgeDefault
}

// nodeSize is logarithmic in citations so outliers don't dominate the scale.
func nodeSize(citations int) float64 {
	return math.Max(MinNodeSize, math.Log(float64(citations)+1)*3)
}

// yearOpacity bands opacity by publication year: older papers fade. Papers
// without a year, and degenerate spans, render at full opacity rather than
// propagating a NaN into the material.
func yearOpacity(p *model.Paper, minYear, span int) float64 {
	if !p.HasYear() || span <= 0 {
		return 1.0
	}
	frac := float64(p.Year-minYear) / float64(span)
	return 0.3 + 0.7*frac
}

// citationPercentiles ranks papers by citation count descending:
// percentile = 1 - rank/N. The sort is stable, and papers with equal counts
// share the rank of their first occurrence, so ties get identical
// percentiles while distinct counts stay strictly monotonic.
func citationPercentiles(papers []model.Paper) map[string]float64 {
	n := len(papers)
	out := make(map[string]float64, n)
	if n == 0 {
		return out
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return papers[idx[a]].CitationCount > papers[idx[b]].CitationCount
	})
	rank := 0
	for i, pi := range idx {
		if i > 0 && papers[pi].CitationCount != papers[idx[i-1]].CitationCount {
			rank = i
		}
		out[papers[pi].ID] = 1 - float64(rank)/float64(n)
	}
	return out
}

// yearRange covers only papers with usable years; both zero when none.
func yearRange(papers []model.Paper) (minYear, maxYear int) {
	for i := range papers {
		if !papers[i].HasYear() {
			continue
		}
		y := papers[i].Year
		if minYear == 0 || y < minYear {
			minYear = y
		}
		if y > maxYear {
			maxYear = y
		}
	}
	return minYear, maxYear
}

func sameNode(a, b *RenderNode) bool {
	return a.ID == b.ID && a.Paper == b.Paper && a.Size == b.Size &&
		a.Opacity == b.Opacity && a.Color == b.Color &&
		a.Percentile == b.Percentile && a.ClusterID == b.ClusterID
}

func sameLink(a, b *RenderLink) bool {
	return a.Source == b.Source && a.Target == b.Target && a.Type == b.Type &&
		a.Weight == b.Weight && a.Intent == b.Intent &&
		a.Influential == b.Influential && a.Color == b.Color &&
		a.Dashed == b.Dashed && a.Ghost == b.Ghost &&
		a.Conceptual == b.Conceptual && a.Label == b.Label
}
