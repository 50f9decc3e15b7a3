// Package testutil provides deterministic paper-graph fixtures for tests.
// All generators are seeded so topologies reproduce exactly across runs.
package testutil

import (
	"fmt"
	"math/rand"

	"github.com/scholargraph/scholargraph3d/pkg/model"
)

// GeneratorConfig controls fixture generation.
type GeneratorConfig struct {
	Seed     int64  // random seed, default 42
	IDPrefix string // paper id prefix, default "paper"
	BaseYear int    // earliest publication year, default 2015
	YearSpan int    // spread of years above BaseYear, default 10
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:     42,
		IDPrefix: "paper",
		BaseYear: 2015,
		YearSpan: 10,
	}
}

// Generator creates paper-graph fixtures with various topologies.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}
	if cfg.IDPrefix == "" {
		cfg.IDPrefix = "paper"
	}
	if cfg.BaseYear == 0 {
		cfg.BaseYear = 2015
	}
	if cfg.YearSpan == 0 {
		cfg.YearSpan = 10
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}
}

// NewDefault creates a Generator with default config.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

// PaperID formats the id for the n-th generated paper.
func (g *Generator) PaperID(n int) string {
	return fmt.Sprintf("%s-%d", g.cfg.IDPrefix, n)
}

// Paper builds one paper with deterministic metadata derived from n.
func (g *Generator) Paper(n int) model.Paper {
	return model.Paper{
		ID:            g.PaperID(n),
		Title:         fmt.Sprintf("Paper %d: a study of synthetic graphs", n),
		Authors:       []string{fmt.Sprintf("Author %d", n%7)},
		Year:          g.cfg.BaseYear + n%g.cfg.YearSpan,
		Venue:         "Synth. Conf.",
		CitationCount: g.rng.Intn(500),
		ClusterID:     model.UnclusteredID,
	}
}

// Papers builds size papers, paper-0 through paper-{size-1}.
func (g *Generator) Papers(size int) []model.Paper {
	out := make([]model.Paper, size)
	for i := range out {
		out[i] = g.Paper(i)
	}
	return out
}

// CitationChain builds a linear citation chain: each paper cites the one
// before it. Useful for layout and traversal tests.
func (g *Generator) CitationChain(size int) *model.GraphData {
	data := &model.GraphData{Version: 1, Papers: g.Papers(size)}
	for i := 1; i < size; i++ {
		data.Edges = append(data.Edges, model.Edge{
			Source: g.PaperID(i),
			Target: g.PaperID(i - 1),
			Type:   model.EdgeCitation,
		})
	}
	return data
}

// Clustered builds clusterCount clusters of perCluster papers each, densely
// cited inside a cluster and with crossEdges citations between adjacent
// clusters. Cross edges go from the first papers of cluster c to the first
// papers of cluster c+1.
func (g *Generator) Clustered(clusterCount, perCluster, crossEdges int) *model.GraphData {
	data := &model.GraphData{Version: 1}
	for c := 0; c < clusterCount; c++ {
		data.Clusters = append(data.Clusters, model.Cluster{
			ID:    c,
			Label: fmt.Sprintf("Cluster %d", c),
			Color: fmt.Sprintf("#%02x%02x%02x", 60+c*30, 100, 200-c*20),
		})
		base := c * perCluster
		for i := 0; i < perCluster; i++ {
			p := g.Paper(base + i)
			p.ClusterID = c
			data.Papers = append(data.Papers, p)
			// Dense intra-cluster citations back to every earlier member.
			for j := 0; j < i; j++ {
				data.Edges = append(data.Edges, model.Edge{
					Source: p.ID,
					Target: g.PaperID(base + j),
					Type:   model.EdgeCitation,
				})
			}
		}
	}
	for c := 0; c+1 < clusterCount; c++ {
		for k := 0; k < crossEdges && k < perCluster; k++ {
			data.Edges = append(data.Edges, model.Edge{
				Source: g.PaperID(c*perCluster + k),
				Target: g.PaperID((c+1)*perCluster + k),
				Type:   model.EdgeCitation,
			})
		}
	}
	return data
}

// WithSimilarity adds similarity edges of the given weight between the listed
// paper-index pairs.
func (g *Generator) WithSimilarity(data *model.GraphData, weight float64, pairs ...[2]int) *model.GraphData {
	for _, pr := range pairs {
		data.Edges = append(data.Edges, model.Edge{
			Source: g.PaperID(pr[0]),
			Target: g.PaperID(pr[1]),
			Type:   model.EdgeSimilarity,
			Weight: weight,
		})
	}
	return data
}

// Star builds one hub paper cited by size-1 spokes.
func (g *Generator) Star(size int) *model.GraphData {
	data := &model.GraphData{Version: 1, Papers: g.Papers(size)}
	for i := 1; i < size; i++ {
		data.Edges = append(data.Edges, model.Edge{
			Source: g.PaperID(i),
			Target: g.PaperID(0),
			Type:   model.EdgeCitation,
		})
	}
	return data
}
