package overlay

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"cogentcore.org/core/math32"

	"github.com/scholargraph/scholargraph3d/pkg/model"
)

// Nebula-mode tuning.
const (
	cloudPointsPerMember = 18
	cloudMinPoints       = 60
	cloudMaxPoints       = 600
	cloudRadiusScale     = 1.35 // cloud radius relative to mean member spread
)

// CloudPoint is one particle of a cluster cloud. Alpha fades with distance
// from the centroid.
type CloudPoint struct {
	Pos   math32.Vector3
	Alpha float32
}

// ClusterCloud is the nebula treatment for one cluster: a Gaussian point
// cloud around the centroid with a time-shimmering brightness.
type ClusterCloud struct {
	ClusterID int
	Label     string
	Color     string
	Centroid  math32.Vector3
	Radius    float32
	Points    []CloudPoint

	// Shimmer is the clock-driven brightness phase in seconds, written by
	// Nebulas.Advance each frame (decoupled from interval recomputation).
	Shimmer float32
}

// Nebulas holds the current set of clouds. Rebuild replaces the geometry on
// the overlay interval; Advance runs per frame off the shared clock.
type Nebulas struct {
	Clouds []*ClusterCloud
	rng    *rand.Rand
}

// NewNebulas creates an empty nebula overlay with a seeded RNG so tests can
// reproduce cloud shapes.
func NewNebulas(seed int64) *Nebulas {
	return &Nebulas{rng: rand.New(rand.NewSource(seed))}
}

// Rebuild samples fresh clouds for every visible cluster with live-positioned
// members and installs them as the current set. Single-owner convenience;
// callers sharing Clouds across goroutines use Sample and swap under their
// own lock.
func (n *Nebulas) Rebuild(g *model.GraphData, view model.ViewState, positions map[string]math32.Vector3) {
	n.Clouds = n.Sample(g, view, positions)
}

// Sample builds a cloud set for every visible cluster with live-positioned
// members. Empty clusters are skipped without error. The returned slice and
// its clouds are freshly allocated and share no memory with n.Clouds, so the
// caller can publish them while another goroutine still reads the old set.
func (n *Nebulas) Sample(g *model.GraphData, view model.ViewState, positions map[string]math32.Vector3) []*ClusterCloud {
	clusters := g.ClusterByID()
	members := g.ClusterMembers()

	ids := make([]int, 0, len(members))
	for id := range members {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	clouds := make([]*ClusterCloud, 0, len(ids))
	for _, cid := range ids {
		if view.ClusterHidden(cid) {
			continue
		}
		centroid, ok := Centroid(members[cid], positions)
		if !ok {
			continue
		}

		// Radius from mean member-to-centroid distance.
		var sum float32
		placed := 0
		for _, pid := range members[cid] {
			if p, found := positions[pid]; found {
				sum += p.DistanceTo(centroid)
				placed++
			}
		}
		if placed == 0 {
			continue
		}
		radius := (sum / float32(placed)) * cloudRadiusScale
		if radius < 4 {
			radius = 4
		}

		count := placed * cloudPointsPerMember
		if count < cloudMinPoints {
			count = cloudMinPoints
		}
		if count > cloudMaxPoints {
			count = cloudMaxPoints
		}

		cloud := &ClusterCloud{
			ClusterID: cid,
			Color:     clusterColor(clusters, cid),
			Centroid:  centroid,
			Radius:    radius,
			Points:    make([]CloudPoint, 0, count),
		}
		if c := clusters[cid]; c != nil {
			cloud.Label = c.Label
		}

		sigma := float64(radius) / 2
		for i := 0; i < count; i++ {
			p := math32.Vec3(
				float32(n.gaussian()*sigma),
				float32(n.gaussian()*sigma),
				float32(n.gaussian()*sigma),
			)
			dist := p.Length()
			alpha := 1 - dist/(radius*1.5)
			if alpha <= 0 {
				continue
			}
			cloud.Points = append(cloud.Points, CloudPoint{
				Pos:   centroid.Add(p),
				Alpha: alpha * 0.55,
			})
		}
		clouds = append(clouds, cloud)
	}
	return clouds
}

// Advance writes the shared clock's elapsed time into every cloud's shimmer
// phase. Registered with the engine clock; runs every frame.
func (n *Nebulas) Advance(elapsed time.Duration) {
	t := float32(elapsed.Seconds())
	for _, c := range n.Clouds {
		c.Shimmer = t
	}
}

// gaussian samples a standard normal via the Box–Muller transform.
func (n *Nebulas) gaussian() float64 {
	u1 := n.rng.Float64()
	for u1 == 0 {
		u1 = n.rng.Float64()
	}
	u2 := n.rng.Float64()
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}
