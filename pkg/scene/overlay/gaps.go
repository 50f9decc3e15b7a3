package overlay

import (
	"math"
	"time"

	"cogentcore.org/core/math32"

	"github.com/scholargraph/scholargraph3d/pkg/analysis"
	"github.com/scholargraph/scholargraph3d/pkg/model"
)

// pulseHz is the gap-marker pulse frequency.
const pulseHz = 1.2

// GapBridge is the renderable form of one detected gap: a dashed line
// between cluster centroids with a pulsing marker at the midpoint.
type GapBridge struct {
	Gap  analysis.Gap
	From math32.Vector3
	To   math32.Vector3
	Mid  math32.Vector3

	// Color encodes severity (strong/medium/weak band).
	Color string

	// PulseScale is the marker's current scale factor, driven per frame by
	// GapOverlay.Advance off the shared clock.
	PulseScale float32
}

// GapOverlay owns the current gap bridges. Rebuild runs on the overlay
// interval (it reads live centroids); Advance runs per frame and only touches
// the pulse phase, so the animation stays smooth across the coarse rebuild
// cadence.
type GapOverlay struct {
	Bridges []*GapBridge

	// Result is the statistical analysis behind the bridges, kept for the
	// UI insights panel.
	Result *analysis.GapResult
}

// NewGapOverlay returns an empty overlay.
func NewGapOverlay() *GapOverlay {
	return &GapOverlay{}
}

// Rebuild recomputes gap statistics and re-anchors the bridges at current
// cluster centroids, installing both as the current state. Single-owner
// convenience; callers sharing Bridges across goroutines use BuildBridges and
// swap under their own lock.
func (o *GapOverlay) Rebuild(g *model.GraphData, view model.ViewState, positions map[string]math32.Vector3) {
	o.Result, o.Bridges = BuildBridges(g, view, positions)
}

// BuildBridges runs the gap analysis and anchors a bridge at the current
// centroids of each gap pair. Cluster pairs whose centroids aren't resolvable
// (no positioned members yet) are dropped this cycle and come back on the
// next. The returned bridges are freshly allocated and share no memory with
// any previous set, so the caller can publish them while another goroutine
// still reads the old ones.
func BuildBridges(g *model.GraphData, view model.ViewState, positions map[string]math32.Vector3) (*analysis.GapResult, []*GapBridge) {
	result := analysis.DetectGaps(g, view)
	members := g.ClusterMembers()

	bridges := make([]*GapBridge, 0, len(result.Gaps))
	for i := range result.Gaps {
		gap := result.Gaps[i]
		from, okA := Centroid(members[gap.ClusterA], positions)
		to, okB := Centroid(members[gap.ClusterB], positions)
		if !okA || !okB {
			continue
		}
		bridges = append(bridges, &GapBridge{
			Gap:        gap,
			From:       from,
			To:         to,
			Mid:        from.Add(to).MulScalar(0.5),
			Color:      severityColor(gap.Severity),
			PulseScale: 1,
		})
	}
	return result, bridges
}

// Advance updates every marker's pulse scale from the shared clock's elapsed
// time: a continuous sinusoid, never reset by Rebuild.
func (o *GapOverlay) Advance(elapsed time.Duration) {
	s := 1 + 0.3*float32(math.Sin(2*math.Pi*pulseHz*elapsed.Seconds()))
	for _, b := range o.Bridges {
		b.PulseScale = s
	}
}

func severityColor(s analysis.Severity) string {
	switch s {
	case analysis.SeverityStrong:
		return "#ef4444"
	case analysis.SeverityMedium:
		return "#f97316"
	default:
		return "#eab308"
	}
}
