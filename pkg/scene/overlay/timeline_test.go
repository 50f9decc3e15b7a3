package overlay_test

import (
	"testing"

	"github.com/scholargraph/scholargraph3d/pkg/layout"
	"github.com/scholargraph/scholargraph3d/pkg/model"
	"github.com/scholargraph/scholargraph3d/pkg/scene/overlay"
)

func timelineGraph() *model.GraphData {
	return &model.GraphData{
		Version: 1,
		Papers: []model.Paper{
			{ID: "old", Year: 2000, ClusterID: model.UnclusteredID},
			{ID: "mid", Year: 2010, ClusterID: model.UnclusteredID},
			{ID: "new", Year: 2020, ClusterID: model.UnclusteredID},
			{ID: "undated", Year: 0, ClusterID: model.UnclusteredID},
		},
	}
}

func TestYearYMapping(t *testing.T) {
	if got := overlay.YearY(2000, 2000, 2020); got != -overlay.TimelineExtent/2 {
		t.Errorf("oldest year Y = %v, want the bottom of the extent", got)
	}
	if got := overlay.YearY(2020, 2000, 2020); got != overlay.TimelineExtent/2 {
		t.Errorf("newest year Y = %v, want the top of the extent", got)
	}
	if got := overlay.YearY(2010, 2000, 2020); got != 0 {
		t.Errorf("middle year Y = %v, want 0", got)
	}
	if got := overlay.YearY(2010, 2010, 2010); got != 0 {
		t.Errorf("degenerate span Y = %v, want 0", got)
	}
}

func TestTimelineEnableDisable(t *testing.T) {
	g := timelineGraph()
	force := layout.NewForce(1)
	force.SetGraph(g)

	tl := overlay.NewTimeline(force)
	grid := tl.Enable(g)
	if grid == nil {
		t.Fatal("dated papers must produce a grid")
	}
	if tl.PinnedCount() != 3 {
		t.Errorf("pinned = %d, want the 3 dated papers", tl.PinnedCount())
	}
	if grid.MinYear != 2000 || grid.MaxYear != 2020 {
		t.Errorf("grid range %d-%d", grid.MinYear, grid.MaxYear)
	}

	// A settled step keeps dated papers on their year line.
	force.Step(1.0 / 30)
	pos, ok := force.Position("old")
	if !ok {
		t.Fatal("paper missing from layout")
	}
	if want := overlay.YearY(2000, 2000, 2020); pos.Y != want {
		t.Errorf("pinned Y = %v, want %v", pos.Y, want)
	}

	tl.Disable()
	if tl.PinnedCount() != 0 {
		t.Errorf("Disable left %d pins", tl.PinnedCount())
	}
}

func TestTimelineNoDatedPapers(t *testing.T) {
	g := &model.GraphData{
		Version: 1,
		Papers:  []model.Paper{{ID: "a", Year: 0, ClusterID: model.UnclusteredID}},
	}
	force := layout.NewForce(1)
	force.SetGraph(g)
	tl := overlay.NewTimeline(force)
	if grid := tl.Enable(g); grid != nil {
		t.Error("no dated papers must render no grid")
	}
	if tl.PinnedCount() != 0 {
		t.Error("nothing should be pinned")
	}
}

func TestGridSteps(t *testing.T) {
	g := timelineGraph()
	force := layout.NewForce(1)
	force.SetGraph(g)
	tl := overlay.NewTimeline(force)

	grid := tl.Enable(g) // 20-year span: 5-year steps
	defer tl.Disable()
	if len(grid.Lines) == 0 {
		t.Fatal("grid has no lines")
	}
	for i := 1; i < len(grid.Lines); i++ {
		if grid.Lines[i].Year-grid.Lines[i-1].Year != 5 {
			t.Errorf("wide span must use 5-year steps, got %d then %d",
				grid.Lines[i-1].Year, grid.Lines[i].Year)
		}
	}
	if grid.EarlierLabel != "earlier" || grid.LaterLabel != "later" {
		t.Errorf("axis labels wrong: %q / %q", grid.EarlierLabel, grid.LaterLabel)
	}

	// Narrow span: 2-year steps.
	narrow := &model.GraphData{
		Version: 1,
		Papers: []model.Paper{
			{ID: "a", Year: 2016, ClusterID: model.UnclusteredID},
			{ID: "b", Year: 2022, ClusterID: model.UnclusteredID},
		},
	}
	force2 := layout.NewForce(1)
	force2.SetGraph(narrow)
	tl2 := overlay.NewTimeline(force2)
	grid2 := tl2.Enable(narrow)
	for i := 1; i < len(grid2.Lines); i++ {
		if grid2.Lines[i].Year-grid2.Lines[i-1].Year != 2 {
			t.Errorf("narrow span must use 2-year steps")
		}
	}
}
