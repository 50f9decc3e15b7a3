// Package analysis computes the statistical layer under the scene overlays:
// inter-cluster connectivity, research-gap classification, and bridge-paper
// detection. Everything here is pure topology; geometry (centroids, live
// positions) is attached later by pkg/scene/overlay from the layout engine's
// live state.
package analysis

import (
	"fmt"
	"sort"

	"github.com/scholargraph/scholargraph3d/pkg/model"
)

// Gap density bands. A cluster pair is a gap when its edge density is below
// GapThreshold; the bands color the rendered bridge by severity.
const (
	GapThreshold   = 0.15
	GapStrongBelow = 0.05
	GapMediumBelow = 0.10
)

// Severity classifies how under-connected a gap pair is.
type Severity int

const (
	SeverityWeak Severity = iota
	SeverityMedium
	SeverityStrong
)

func (s Severity) String() string {
	switch s {
	case SeverityStrong:
		return "strong"
	case SeverityMedium:
		return "medium"
	default:
		return "weak"
	}
}

// ClassifySeverity maps an inter-cluster density to its band.
func ClassifySeverity(density float64) Severity {
	switch {
	case density < GapStrongBelow:
		return SeverityStrong
	case density < GapMediumBelow:
		return SeverityMedium
	default:
		return SeverityWeak
	}
}

// Gap is one under-connected cluster pair. ClusterA < ClusterB always.
type Gap struct {
	ClusterA   int
	ClusterB   int
	CrossEdges int
	SizeA      int
	SizeB      int
	Density    float64
	Severity   Severity
}

// GapResult is the full inter-cluster analysis for one snapshot.
type GapResult struct {
	Gaps         []Gap          // sorted ascending by density (strongest first)
	Connectivity map[[2]int]int // cross-edge count per unordered cluster pair
	Strongest    *Gap           // nil when no gaps
}

// pairKey canonicalizes an unordered cluster pair.
func pairKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

// DetectGaps computes inter-cluster edge density for every pair of visible
// clusters and flags pairs under GapThreshold. Hidden clusters and the noise
// cluster are excluded; pairs where either side is empty are skipped.
func DetectGaps(g *model.GraphData, view model.ViewState) *GapResult {
	res := &GapResult{Connectivity: make(map[[2]int]int)}

	clusterOf := make(map[string]int, len(g.Papers))
	sizes := make(map[int]int)
	for i := range g.Papers {
		p := &g.Papers[i]
		clusterOf[p.ID] = p.ClusterID
		if p.ClusterID == model.UnclusteredID || view.ClusterHidden(p.ClusterID) {
			continue
		}
		sizes[p.ClusterID]++
	}
	if len(sizes) < 2 {
		return res
	}

	for i := range g.Edges {
		e := &g.Edges[i]
		ca, cb := clusterOf[e.Source], clusterOf[e.Target]
		if ca == cb || ca == model.UnclusteredID || cb == model.UnclusteredID {
			continue
		}
		if view.ClusterHidden(ca) || view.ClusterHidden(cb) {
			continue
		}
		res.Connectivity[pairKey(ca, cb)]++
	}

	ids := make([]int, 0, len(sizes))
	for id := range sizes {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			a, b := ids[i], ids[j]
			sa, sb := sizes[a], sizes[b]
			if sa == 0 || sb == 0 {
				continue
			}
			cross := res.Connectivity[pairKey(a, b)]
			density := float64(cross) / float64(sa*sb)
			if density >= GapThreshold {
				continue
			}
			res.Gaps = append(res.Gaps, Gap{
				ClusterA:   a,
				ClusterB:   b,
				CrossEdges: cross,
				SizeA:      sa,
				SizeB:      sb,
				Density:    density,
				Severity:   ClassifySeverity(density),
			})
		}
	}

	sort.Slice(res.Gaps, func(i, j int) bool {
		if res.Gaps[i].Density != res.Gaps[j].Density {
			return res.Gaps[i].Density < res.Gaps[j].Density
		}
		if res.Gaps[i].ClusterA != res.Gaps[j].ClusterA {
			return res.Gaps[i].ClusterA < res.Gaps[j].ClusterA
		}
		return res.Gaps[i].ClusterB < res.Gaps[j].ClusterB
	})
	if len(res.Gaps) > 0 {
		res.Strongest = &res.Gaps[0]
	}
	return res
}

// Label renders a short description for the UI and exports.
func (g Gap) Label() string {
	return fmt.Sprintf("clusters %d-%d: %d/%d cross-edges (density %.3f, %s)",
		g.ClusterA, g.ClusterB, g.CrossEdges, g.SizeA*g.SizeB, g.Density, g.Severity)
}
