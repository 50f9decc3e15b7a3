package scene

import (
	"github.com/scholargraph/scholargraph3d/pkg/model"
)

// Level-of-detail camera distances. Past lodSimilarityFade all similarity
// edges go transparent; past lodLowWeightFade low-weight edges of any type
// follow. Keeps dense graphs readable at zoom-out without a hard link cap.
const (
	lodSimilarityFade = 400.0
	lodLowWeightFade  = 700.0
	lodLowWeight      = 2.0 // citation weight below this counts as "low"
)

// Edge widths.
const (
	similarityWidth  = 0.6
	citationBase     = 1.0
	citationPerCite  = 0.08
	citationMaxWidth = 4.0
	influentialBoost = 1.6
)

// fadedOpacity is the near-invisible opacity for edges outside the highlight
// set while a selection exists.
const fadedOpacity = 0.04

// EdgeVisual is the renderable state of one link for the current camera and
// selection.
type EdgeVisual struct {
	Link    *RenderLink
	Color   string
	Width   float64
	Dashed  bool
	Opacity float64
}

// EdgeSynthesizer derives edge visuals. Stateless apart from the palette;
// cheap enough to run every pass, so unlike nodes there is no identity cache.
type EdgeSynthesizer struct{}

// Build computes visuals for every link. cameraDist is the camera's distance
// from the scene origin, which drives LOD fading.
func (EdgeSynthesizer) Build(rg *RenderGraph, sel *Selection, cameraDist float64) []*EdgeVisual {
	out := make([]*EdgeVisual, 0, len(rg.Links))
	for _, l := range rg.Links {
		v := &EdgeVisual{
			Link:    l,
			Color:   l.Color,
			Width:   edgeWidth(l),
			Dashed:  l.Dashed,
			Opacity: edgeOpacity(l, sel, cameraDist),
		}
		out = append(out, v)
	}
	return out
}

// edgeWidth: similarity edges are thin and constant; citation edges scale
// with weight, boosted when the intent marks them influential.
func edgeWidth(l *RenderLink) float64 {
	if l.Type == model.EdgeSimilarity {
		return similarityWidth
	}
	w := citationBase + citationPerCite*l.Weight
	if w > citationMaxWidth {
		w = citationMaxWidth
	}
	if l.Influential {
		w *= influentialBoost
	}
	return w
}

// edgeOpacity applies, in order: LOD distance culling, then selection fading.
// Selection wins over LOD for highlighted edges so the focused subgraph stays
// legible at any zoom.
func edgeOpacity(l *RenderLink, sel *Selection, cameraDist float64) float64 {
	if sel.Active() {
		if sel.Highlighted(l.Source) && sel.Highlighted(l.Target) {
			return 1.0
		}
		return fadedOpacity
	}

	if cameraDist > lodSimilarityFade && l.Type == model.EdgeSimilarity && !l.Ghost {
		return 0
	}
	if cameraDist > lodLowWeightFade && lowWeight(l) {
		return 0
	}
	return 0.85
}

func lowWeight(l *RenderLink) bool {
	if l.Type == model.EdgeSimilarity {
		return true // already gone at this distance; kept for clarity
	}
	return l.Weight < lodLowWeight
}
