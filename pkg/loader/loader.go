// Package loader reads GraphData snapshots from disk. The engine itself never
// performs I/O; everything here runs in the collaborators that hand snapshots
// over (cmd/sg3d, the file watcher reload path, tests).
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	json "github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/scholargraph/scholargraph3d/pkg/model"
)

// GraphEnvVar overrides the snapshot path when set.
const GraphEnvVar = "SG3D_GRAPH"

// PreferredNames is the lookup order when pointing the loader at a directory.
var PreferredNames = []string{"graph.json", "snapshot.json"}

// Warning is a non-fatal data problem surfaced to the user (the snapshot still
// loads; the offending record is dropped).
type Warning struct {
	Path    string
	Message string
}

func (w Warning) String() string {
	if w.Path == "" {
		return w.Message
	}
	return fmt.Sprintf("%s: %s", filepath.Base(w.Path), w.Message)
}

// Result carries a loaded snapshot plus any warnings produced while cleaning
// it up.
type Result struct {
	Graph    model.GraphData
	Warnings []Warning
}

// ResolvePath decides which snapshot file to load: the SG3D_GRAPH env var
// wins, then an explicit file path, then a directory searched for the
// preferred names.
func ResolvePath(arg string) (string, error) {
	if env := os.Getenv(GraphEnvVar); env != "" {
		arg = env
	}
	if arg == "" {
		var err error
		arg, err = os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolving working directory: %w", err)
		}
	}
	info, err := os.Stat(arg)
	if err != nil {
		return "", fmt.Errorf("snapshot path: %w", err)
	}
	if !info.IsDir() {
		return arg, nil
	}
	for _, name := range PreferredNames {
		candidate := filepath.Join(arg, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no graph snapshot (%s) in %s", strings.Join(PreferredNames, ", "), arg)
}

// Load reads and sanitizes a single snapshot file.
func Load(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	var g model.GraphData
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("parsing snapshot %s: %w", filepath.Base(path), err)
	}
	res := &Result{}
	res.Graph = sanitize(g, path, &res.Warnings)
	return res, nil
}

// LoadShards reads several snapshot files concurrently and merges them into
// one GraphData (papers and edges deduplicated by id, later shards win for
// clusters). Used for exports split per search/expand operation.
func LoadShards(paths []string) (*Result, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no shard paths given")
	}
	results := make([]*Result, len(paths))
	var g errgroup.Group
	g.SetLimit(8)
	for i, p := range paths {
		g.Go(func() error {
			r, err := Load(p)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := &Result{}
	seenPapers := make(map[string]bool)
	seenEdges := make(map[string]bool)
	seenClusters := make(map[int]bool)
	version := 0
	for _, r := range results {
		if r.Graph.Version > version {
			version = r.Graph.Version
		}
		merged.Warnings = append(merged.Warnings, r.Warnings...)
		for i := range r.Graph.Papers {
			p := r.Graph.Papers[i]
			if seenPapers[p.ID] {
				continue
			}
			seenPapers[p.ID] = true
			merged.Graph.Papers = append(merged.Graph.Papers, p)
		}
		for i := range r.Graph.Edges {
			e := r.Graph.Edges[i]
			if seenEdges[e.Key()] {
				continue
			}
			seenEdges[e.Key()] = true
			merged.Graph.Edges = append(merged.Graph.Edges, e)
		}
		for i := range r.Graph.Clusters {
			c := r.Graph.Clusters[i]
			if seenClusters[c.ID] {
				continue
			}
			seenClusters[c.ID] = true
			merged.Graph.Clusters = append(merged.Graph.Clusters, c)
		}
		merged.Graph.ConceptualEdges = append(merged.Graph.ConceptualEdges, r.Graph.ConceptualEdges...)
	}
	merged.Graph.Version = version
	// Edges referencing papers from a shard that failed to merge are dropped
	// by a second sanitize pass over the combined graph.
	merged.Graph = sanitize(merged.Graph, "", &merged.Warnings)
	return merged, nil
}

var versionCounter struct {
	mu   sync.Mutex
	last int
}

// NextVersion returns a monotonically increasing snapshot version for
// snapshots that arrive without one (reloads of the same file).
func NextVersion(loaded int) int {
	versionCounter.mu.Lock()
	defer versionCounter.mu.Unlock()
	v := loaded
	if v <= versionCounter.last {
		v = versionCounter.last + 1
	}
	versionCounter.last = v
	return v
}

// sanitize drops malformed records instead of failing the whole snapshot:
// papers with empty ids, duplicate papers, edges with unknown endpoints or
// invalid weights. Clusters referenced by no paper are kept (they simply
// render nothing).
func sanitize(g model.GraphData, path string, warnings *[]Warning) model.GraphData {
	out := model.GraphData{
		Version:         g.Version,
		Clusters:        g.Clusters,
		ConceptualEdges: g.ConceptualEdges,
	}

	seen := make(map[string]bool, len(g.Papers))
	for i := range g.Papers {
		p := g.Papers[i]
		if err := p.Validate(); err != nil {
			*warnings = append(*warnings, Warning{Path: path, Message: err.Error()})
			continue
		}
		if seen[p.ID] {
			*warnings = append(*warnings, Warning{Path: path, Message: fmt.Sprintf("duplicate paper id %s dropped", p.ID)})
			continue
		}
		seen[p.ID] = true
		out.Papers = append(out.Papers, p)
	}

	edgeSeen := make(map[string]bool, len(g.Edges))
	for i := range g.Edges {
		e := g.Edges[i]
		if err := e.Validate(); err != nil {
			*warnings = append(*warnings, Warning{Path: path, Message: err.Error()})
			continue
		}
		if !seen[e.Source] || !seen[e.Target] {
			*warnings = append(*warnings, Warning{Path: path, Message: fmt.Sprintf("edge %s -> %s references unknown paper, dropped", e.Source, e.Target)})
			continue
		}
		if edgeSeen[e.Key()] {
			continue
		}
		edgeSeen[e.Key()] = true
		out.Edges = append(out.Edges, e)
	}

	// Deterministic cluster order regardless of shard arrival.
	sort.Slice(out.Clusters, func(i, j int) bool { return out.Clusters[i].ID < out.Clusters[j].ID })

	return out
}
