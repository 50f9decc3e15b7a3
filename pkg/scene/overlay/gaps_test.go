package overlay_test

import (
	"math"
	"testing"
	"time"

	"cogentcore.org/core/math32"

	"github.com/scholargraph/scholargraph3d/pkg/analysis"
	"github.com/scholargraph/scholargraph3d/pkg/model"
	"github.com/scholargraph/scholargraph3d/pkg/scene/overlay"
)

func gapFixture() (*model.GraphData, map[string]math32.Vector3) {
	g := &model.GraphData{
		Version: 1,
		Papers: []model.Paper{
			{ID: "a1", ClusterID: 0}, {ID: "a2", ClusterID: 0}, {ID: "a3", ClusterID: 0},
			{ID: "b1", ClusterID: 1}, {ID: "b2", ClusterID: 1}, {ID: "b3", ClusterID: 1},
		},
	}
	positions := map[string]math32.Vector3{
		"a1": math32.Vec3(0, 0, 0), "a2": math32.Vec3(2, 0, 0), "a3": math32.Vec3(1, 2, 0),
		"b1": math32.Vec3(100, 0, 0), "b2": math32.Vec3(102, 0, 0), "b3": math32.Vec3(101, 2, 0),
	}
	return g, positions
}

func TestGapOverlayRebuild(t *testing.T) {
	g, positions := gapFixture()
	view := model.DefaultViewState()
	view.GapOverlay = true

	o := overlay.NewGapOverlay()
	o.Rebuild(g, view, positions)

	if len(o.Bridges) != 1 {
		t.Fatalf("got %d bridges, want 1 for the disconnected pair", len(o.Bridges))
	}
	b := o.Bridges[0]
	if b.Gap.ClusterA != 0 || b.Gap.ClusterB != 1 {
		t.Errorf("bridge pair = %d-%d", b.Gap.ClusterA, b.Gap.ClusterB)
	}
	if b.Gap.Severity != analysis.SeverityStrong {
		t.Errorf("zero cross-edges must classify strong, got %v", b.Gap.Severity)
	}
	if b.Color != "#ef4444" {
		t.Errorf("strong severity color = %q", b.Color)
	}
	wantMid := b.From.Add(b.To).MulScalar(0.5)
	if b.Mid.DistanceTo(wantMid) > 1e-5 {
		t.Errorf("midpoint %v, want %v", b.Mid, wantMid)
	}
	if o.Result == nil || o.Result.Strongest == nil {
		t.Error("analysis result must ride along for the insights panel")
	}
}

func TestGapOverlayDropsUnplacedClusters(t *testing.T) {
	g, positions := gapFixture()
	delete(positions, "b1")
	delete(positions, "b2")
	delete(positions, "b3")

	o := overlay.NewGapOverlay()
	o.Rebuild(g, model.DefaultViewState(), positions)
	if len(o.Bridges) != 0 {
		t.Errorf("bridge to an unplaced cluster must wait a cycle, got %d", len(o.Bridges))
	}
}

func TestBuildBridgesSharesNoMemoryWithCurrent(t *testing.T) {
	g, positions := gapFixture()
	o := overlay.NewGapOverlay()
	o.Rebuild(g, model.DefaultViewState(), positions)
	old := o.Bridges

	_, fresh := overlay.BuildBridges(g, model.DefaultViewState(), positions)
	if len(old) == 0 || len(fresh) == 0 {
		t.Fatal("fixture should produce a bridge")
	}
	if fresh[0] == old[0] {
		t.Fatal("build returned a bridge from the published set")
	}
	// The published set must be untouched until the caller swaps.
	o.Advance(time.Second / 4)
	if fresh[0].PulseScale != 1 {
		t.Error("advancing the current set leaked into the built one")
	}
}

func TestGapOverlayAdvancePulse(t *testing.T) {
	g, positions := gapFixture()
	o := overlay.NewGapOverlay()
	o.Rebuild(g, model.DefaultViewState(), positions)
	if len(o.Bridges) == 0 {
		t.Fatal("fixture should produce a bridge")
	}

	// Quarter period of the 1.2 Hz pulse: sin peaks, scale hits 1.3.
	period := float64(time.Second) / 1.2
	quarter := time.Duration(period / 4)
	o.Advance(quarter)
	got := float64(o.Bridges[0].PulseScale)
	if math.Abs(got-1.3) > 1e-3 {
		t.Errorf("pulse scale at the crest = %v, want 1.3", got)
	}

	o.Advance(0)
	if o.Bridges[0].PulseScale != 1 {
		t.Errorf("pulse scale at phase 0 = %v, want 1", o.Bridges[0].PulseScale)
	}
}
