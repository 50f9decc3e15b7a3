package layout_test

import (
	"testing"

	"cogentcore.org/core/math32"

	"github.com/scholargraph/scholargraph3d/pkg/layout"
	"github.com/scholargraph/scholargraph3d/pkg/model"
	"github.com/scholargraph/scholargraph3d/pkg/testutil"
)

func settle(f *layout.Force, steps int) {
	for i := 0; i < steps; i++ {
		f.Step(1.0 / 30)
	}
}

func papersGraph(size int) *model.GraphData {
	return &model.GraphData{Version: 1, Papers: testutil.NewDefault().Papers(size)}
}

func TestForcePlacesEveryNode(t *testing.T) {
	g := testutil.NewDefault().CitationChain(5)
	f := layout.NewForce(1)
	f.SetGraph(g)

	for _, p := range g.Papers {
		if _, ok := f.Position(p.ID); !ok {
			t.Errorf("paper %s has no body", p.ID)
		}
	}
	if len(f.Snapshot()) != 5 {
		t.Errorf("snapshot size = %d", len(f.Snapshot()))
	}
}

func TestForceRemovesDepartedNodes(t *testing.T) {
	f := layout.NewForce(1)
	f.SetGraph(papersGraph(4))
	f.SetGraph(papersGraph(2))

	if _, ok := f.Position(testutil.NewDefault().PaperID(3)); ok {
		t.Error("departed node still has a body")
	}
	if len(f.Snapshot()) != 2 {
		t.Errorf("snapshot size = %d, want 2", len(f.Snapshot()))
	}
}

func TestForcePinSnapsAndHolds(t *testing.T) {
	g := papersGraph(3)
	f := layout.NewForce(1)
	f.SetGraph(g)

	id := g.Papers[0].ID
	target := math32.Vec3(42, -7, 13)
	f.Pin(id, target)
	if !f.Pinned(id) {
		t.Fatal("Pin did not register")
	}

	settle(f, 50)
	pos, _ := f.Position(id)
	if pos != target {
		t.Errorf("pinned body drifted to %v", pos)
	}

	f.Unpin(id)
	settle(f, 50)
	pos, _ = f.Position(id)
	if pos == target {
		t.Error("unpinned body never moved")
	}
}

func TestForcePinYHoldsOnlyY(t *testing.T) {
	g := papersGraph(4)
	f := layout.NewForce(1)
	f.SetGraph(g)

	id := g.Papers[0].ID
	f.PinY(id, 77)
	before, _ := f.Position(id)
	if before.Y != 77 {
		t.Fatal("PinY must snap the axis immediately")
	}

	settle(f, 100)
	after, _ := f.Position(id)
	if after.Y != 77 {
		t.Errorf("Y drifted to %v", after.Y)
	}
	if after.X == before.X && after.Z == before.Z {
		t.Error("X/Z must stay live under a Y pin")
	}

	f.UnpinY(id)
	settle(f, 100)
	final, _ := f.Position(id)
	if final.Y == 77 {
		t.Error("released Y axis never moved")
	}
}

func TestForceIncrementalSeeding(t *testing.T) {
	g := testutil.NewDefault().CitationChain(3)
	f := layout.NewForce(1)
	f.SetGraph(g)
	settle(f, 200)

	anchor, _ := f.Position(g.Papers[0].ID)

	// Grow the graph by one paper citing the anchor; it must be seeded near
	// its neighbor, not scattered at the origin.
	grown := *g
	grown.Papers = append(append([]model.Paper{}, g.Papers...), model.Paper{
		ID: "newcomer", Title: "Newcomer", ClusterID: model.UnclusteredID,
	})
	grown.Edges = append(append([]model.Edge{}, g.Edges...), model.Edge{
		Source: "newcomer", Target: g.Papers[0].ID, Type: model.EdgeCitation,
	})
	f.SetGraph(&grown)

	seeded, ok := f.Position("newcomer")
	if !ok {
		t.Fatal("newcomer has no body")
	}
	if seeded.DistanceTo(anchor) > 15 {
		t.Errorf("newcomer seeded %v from its neighbor, want jitter-scale proximity", seeded.DistanceTo(anchor))
	}

	// Existing nodes keep their positions across the snapshot swap.
	kept, _ := f.Position(g.Papers[0].ID)
	if kept != anchor {
		t.Error("snapshot swap scrambled an existing node")
	}
}

func TestForceConnectedPairPullsTogether(t *testing.T) {
	g := &model.GraphData{
		Version: 1,
		Papers: []model.Paper{
			{ID: "a", ClusterID: model.UnclusteredID},
			{ID: "b", ClusterID: model.UnclusteredID},
			{ID: "c", ClusterID: model.UnclusteredID},
			{ID: "d", ClusterID: model.UnclusteredID},
		},
		Edges: []model.Edge{{Source: "a", Target: "b", Type: model.EdgeCitation}},
	}
	f := layout.NewForce(7)
	f.SetGraph(g)
	settle(f, 600)

	pa, _ := f.Position("a")
	pb, _ := f.Position("b")
	pc, _ := f.Position("c")
	pd, _ := f.Position("d")

	if pa.DistanceTo(pb) >= pc.DistanceTo(pd) {
		t.Errorf("spring-linked pair (%v apart) should settle closer than the free pair (%v apart)",
			pa.DistanceTo(pb), pc.DistanceTo(pd))
	}
}

func TestForceSetPositionDoesNotPin(t *testing.T) {
	g := papersGraph(2)
	f := layout.NewForce(1)
	f.SetGraph(g)

	id := g.Papers[0].ID
	f.SetPosition(id, math32.Vec3(5, 5, 5))
	pos, _ := f.Position(id)
	if pos != math32.Vec3(5, 5, 5) {
		t.Fatalf("SetPosition did not take, got %v", pos)
	}
	if f.Pinned(id) {
		t.Error("SetPosition must not pin")
	}

	settle(f, 30)
	after, _ := f.Position(id)
	if after == pos {
		t.Error("unpinned body should move under forces")
	}
}
