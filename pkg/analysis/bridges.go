package analysis

import (
	"sort"

	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/stat"

	"github.com/scholargraph/scholargraph3d/pkg/model"
)

// BridgeTopFraction is the fraction of candidates labeled as bridges (the
// threshold never drops below 2 distinct clusters).
const BridgeTopFraction = 0.05

// BridgeResult reports which papers bridge research clusters, plus the
// betweenness centrality used to rank them in the UI insights panel.
type BridgeResult struct {
	Bridges     map[string]bool
	Score       map[string]int // distinct other-clusters each paper connects to
	Betweenness map[string]float64
}

// DetectBridges finds papers that act as hubs between clusters: a paper is a
// bridge candidate when its cross-cluster edges reach at least two distinct
// other clusters, and only the top slice of candidates (by distinct-cluster
// count) is labeled. Noise-cluster papers never qualify.
func DetectBridges(g *model.GraphData) *BridgeResult {
	res := &BridgeResult{
		Bridges:     make(map[string]bool),
		Score:       make(map[string]int),
		Betweenness: make(map[string]float64),
	}
	if len(g.Papers) == 0 || len(g.Edges) == 0 {
		return res
	}

	clusterOf := make(map[string]int, len(g.Papers))
	for i := range g.Papers {
		clusterOf[g.Papers[i].ID] = g.Papers[i].ClusterID
	}

	reach := make(map[string]map[int]bool)
	add := func(id string, cluster int) {
		if reach[id] == nil {
			reach[id] = make(map[int]bool)
		}
		reach[id][cluster] = true
	}
	for i := range g.Edges {
		e := &g.Edges[i]
		ca, cb := clusterOf[e.Source], clusterOf[e.Target]
		if ca == cb || ca == model.UnclusteredID || cb == model.UnclusteredID {
			continue
		}
		add(e.Source, cb)
		add(e.Target, ca)
	}

	var candidateScores []float64
	for id, clusters := range reach {
		res.Score[id] = len(clusters)
		if len(clusters) >= 2 {
			candidateScores = append(candidateScores, float64(len(clusters)))
		}
	}
	if len(candidateScores) == 0 {
		return res
	}

	sort.Float64s(candidateScores)
	threshold := stat.Quantile(1-BridgeTopFraction, stat.Empirical, candidateScores, nil)
	if threshold < 2 {
		threshold = 2
	}
	for id, score := range res.Score {
		if score >= 2 && float64(score) >= threshold {
			res.Bridges[id] = true
		}
	}

	res.Betweenness = betweennessByPaper(g)
	return res
}

// ApplyBridges stamps IsBridge onto the snapshot's papers in place. Called by
// the loader path before the snapshot is handed to the engine, for snapshots
// whose upstream didn't precompute the flag.
func ApplyBridges(g *model.GraphData) *BridgeResult {
	res := DetectBridges(g)
	for i := range g.Papers {
		if res.Bridges[g.Papers[i].ID] {
			g.Papers[i].IsBridge = true
		}
	}
	return res
}

// betweennessByPaper computes undirected betweenness centrality over the
// combined citation+similarity graph.
func betweennessByPaper(g *model.GraphData) map[string]float64 {
	u := simple.NewUndirectedGraph()
	idToNode := make(map[string]int64, len(g.Papers))
	nodeToID := make(map[int64]string, len(g.Papers))

	for i := range g.Papers {
		n := u.NewNode()
		u.AddNode(n)
		idToNode[g.Papers[i].ID] = n.ID()
		nodeToID[n.ID()] = g.Papers[i].ID
	}
	for i := range g.Edges {
		e := &g.Edges[i]
		from, okF := idToNode[e.Source]
		to, okT := idToNode[e.Target]
		if !okF || !okT || from == to {
			continue
		}
		u.SetEdge(u.NewEdge(u.Node(from), u.Node(to)))
	}

	out := make(map[string]float64, len(g.Papers))
	for nid, score := range network.Betweenness(u) {
		out[nodeToID[nid]] = score
	}
	return out
}
