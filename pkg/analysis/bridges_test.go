package analysis_test

import (
	"testing"

	"github.com/scholargraph/scholargraph3d/pkg/analysis"
	"github.com/scholargraph/scholargraph3d/pkg/model"
)

// bridgeFixture: three clusters where "hub" (cluster 0) is the only paper
// with edges into two distinct other clusters.
func bridgeFixture() *model.GraphData {
	papers := []model.Paper{
		{ID: "hub", ClusterID: 0},
		{ID: "a2", ClusterID: 0},
		{ID: "b1", ClusterID: 1},
		{ID: "b2", ClusterID: 1},
		{ID: "c1", ClusterID: 2},
		{ID: "c2", ClusterID: 2},
	}
	edges := []model.Edge{
		{Source: "hub", Target: "a2", Type: model.EdgeCitation},
		{Source: "b1", Target: "b2", Type: model.EdgeCitation},
		{Source: "c1", Target: "c2", Type: model.EdgeCitation},
		{Source: "hub", Target: "b1", Type: model.EdgeCitation},
		{Source: "hub", Target: "c1", Type: model.EdgeCitation},
	}
	return &model.GraphData{Version: 1, Papers: papers, Edges: edges}
}

func TestDetectBridgesFindsHub(t *testing.T) {
	res := analysis.DetectBridges(bridgeFixture())

	if !res.Bridges["hub"] {
		t.Fatal("hub reaches two other clusters and must be a bridge")
	}
	if len(res.Bridges) != 1 {
		t.Errorf("got %d bridges, want only the hub", len(res.Bridges))
	}
	if res.Score["hub"] != 2 {
		t.Errorf("hub distinct-cluster score = %d, want 2", res.Score["hub"])
	}
	// b1 touches only cluster 0 across the boundary.
	if res.Bridges["b1"] {
		t.Error("single-cluster reach must not qualify")
	}
}

func TestDetectBridgesBetweenness(t *testing.T) {
	res := analysis.DetectBridges(bridgeFixture())

	// The hub sits on every shortest path between the three components, so
	// its centrality dominates.
	hub := res.Betweenness["hub"]
	for id, score := range res.Betweenness {
		if id == "hub" {
			continue
		}
		if score > hub {
			t.Errorf("betweenness of %s (%v) exceeds the hub (%v)", id, score, hub)
		}
	}
	if hub == 0 {
		t.Error("hub betweenness should be positive")
	}
}

func TestDetectBridgesIgnoresNoiseCluster(t *testing.T) {
	g := bridgeFixture()
	for i := range g.Papers {
		if g.Papers[i].ID == "hub" {
			g.Papers[i].ClusterID = model.UnclusteredID
		}
	}
	res := analysis.DetectBridges(g)
	if len(res.Bridges) != 0 {
		t.Errorf("noise-cluster papers can't bridge, got %d", len(res.Bridges))
	}
}

func TestDetectBridgesEmptyGraph(t *testing.T) {
	res := analysis.DetectBridges(&model.GraphData{Version: 1})
	if len(res.Bridges) != 0 || len(res.Score) != 0 {
		t.Error("empty graph must yield an empty result")
	}
}

func TestApplyBridgesStampsPapers(t *testing.T) {
	g := bridgeFixture()
	analysis.ApplyBridges(g)

	var hub *model.Paper
	for i := range g.Papers {
		if g.Papers[i].ID == "hub" {
			hub = &g.Papers[i]
		}
	}
	if hub == nil || !hub.IsBridge {
		t.Error("ApplyBridges must set IsBridge on the hub in place")
	}
	for i := range g.Papers {
		if g.Papers[i].ID != "hub" && g.Papers[i].IsBridge {
			t.Errorf("paper %s wrongly stamped", g.Papers[i].ID)
		}
	}
}
