// Package overlay builds the cluster-level visualizations that sit behind the
// node/edge scene: convex hulls or particle "nebula" clouds per cluster, gap
// bridges between under-connected clusters, and the timeline grid.
//
// Overlays read the layout engine's live positions through a point-in-time
// snapshot and are recomputed on a fixed interval (roughly a second), not per
// frame: the positions are externally owned, the derived geometry is
// expensive, and sub-second staleness is imperceptible. Only the cheap
// per-frame animation (pulse, shimmer) runs on the shared clock.
package overlay

import (
	"sort"

	"cogentcore.org/core/math32"

	"github.com/scholargraph/scholargraph3d/pkg/model"
)

// MinHullMembers is the smallest cluster that gets a hull; smaller clusters
// are skipped silently.
const MinHullMembers = 3

// hullSubdivisions controls spline smoothing density per hull segment.
const hullSubdivisions = 6

// hullOpacity is the translucency of the flat hull shape.
const hullOpacity = 0.14

// ClusterHull is the renderable hull for one cluster: a smoothed 2D outline
// positioned at the cluster's average depth.
type ClusterHull struct {
	ClusterID int
	Label     string
	Color     string
	Opacity   float64

	// Outline is the smoothed closed polygon in the XY plane.
	Outline []math32.Vector2

	// Depth is the average Z of member positions.
	Depth float32
}

// Hulls computes hulls for every visible cluster with at least
// MinHullMembers positioned members. positions is a point-in-time snapshot of
// the layout engine's live state.
func Hulls(g *model.GraphData, view model.ViewState, positions map[string]math32.Vector3) []ClusterHull {
	clusters := g.ClusterByID()
	members := g.ClusterMembers()

	ids := make([]int, 0, len(members))
	for id := range members {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var out []ClusterHull
	for _, cid := range ids {
		if view.ClusterHidden(cid) {
			continue
		}
		var pts []math32.Vector2
		var depth float32
		for _, pid := range members[cid] {
			p, ok := positions[pid]
			if !ok {
				continue // not yet placed; excluded rather than poisoning the hull
			}
			pts = append(pts, math32.Vec2(p.X, p.Y))
			depth += p.Z
		}
		if len(pts) < MinHullMembers {
			continue
		}
		depth /= float32(len(pts))

		hull := ConvexHull(pts)
		h := ClusterHull{
			ClusterID: cid,
			Color:     clusterColor(clusters, cid),
			Opacity:   hullOpacity,
			Outline:   SmoothClosed(hull, hullSubdivisions),
			Depth:     depth,
		}
		if c := clusters[cid]; c != nil {
			h.Label = c.Label
		}
		out = append(out, h)
	}
	return out
}

func clusterColor(clusters map[int]*model.Cluster, cid int) string {
	if c := clusters[cid]; c != nil && c.Color != "" {
		return c.Color
	}
	return "#8888aa"
}

// ConvexHull computes the 2D convex hull with the monotone-chain algorithm:
// sort by (x, y), build the lower and upper chains with a cross-product
// orientation test, concatenate. Fewer than 3 points are returned unchanged.
// The result is in counter-clockwise order without a repeated first point.
func ConvexHull(points []math32.Vector2) []math32.Vector2 {
	if len(points) < 3 {
		return points
	}

	pts := make([]math32.Vector2, len(points))
	copy(pts, points)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})

	// cross > 0 means o->a->b turns counter-clockwise.
	cross := func(o, a, b math32.Vector2) float32 {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}

	var lower []math32.Vector2
	for _, p := range pts {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}

	var upper []math32.Vector2
	for i := len(pts) - 1; i >= 0; i-- {
		p := pts[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}

	// Each chain's last point is the other chain's first; drop both.
	return append(lower[:len(lower)-1], upper[:len(upper)-1]...)
}

// SmoothClosed rounds a closed polygon with a centripetal-flavored
// Catmull-Rom pass, subdividing each segment. Inputs with fewer than 3
// vertices come back unchanged.
func SmoothClosed(poly []math32.Vector2, subdivisions int) []math32.Vector2 {
	n := len(poly)
	if n < 3 || subdivisions < 1 {
		return poly
	}
	out := make([]math32.Vector2, 0, n*subdivisions)
	for i := 0; i < n; i++ {
		p0 := poly[(i-1+n)%n]
		p1 := poly[i]
		p2 := poly[(i+1)%n]
		p3 := poly[(i+2)%n]
		for s := 0; s < subdivisions; s++ {
			t := float32(s) / float32(subdivisions)
			out = append(out, catmullRom(p0, p1, p2, p3, t))
		}
	}
	return out
}

func catmullRom(p0, p1, p2, p3 math32.Vector2, t float32) math32.Vector2 {
	t2 := t * t
	t3 := t2 * t
	f := func(a0, a1, a2, a3 float32) float32 {
		return 0.5 * ((2 * a1) +
			(-a0+a2)*t +
			(2*a0-5*a1+4*a2-a3)*t2 +
			(-a0+3*a1-3*a2+a3)*t3)
	}
	return math32.Vec2(f(p0.X, p1.X, p2.X, p3.X), f(p0.Y, p1.Y, p2.Y, p3.Y))
}

// Centroid averages the positioned members of a cluster. ok is false when no
// member has a live position yet.
func Centroid(memberIDs []string, positions map[string]math32.Vector3) (c math32.Vector3, ok bool) {
	n := 0
	for _, id := range memberIDs {
		if p, found := positions[id]; found {
			c = c.Add(p)
			n++
		}
	}
	if n == 0 {
		return math32.Vector3{}, false
	}
	return c.MulScalar(1 / float32(n)), true
}
