// Package model defines the domain entities handed to the rendering engine:
// papers, edges, clusters, and the immutable GraphData snapshot that carries
// them. The engine never mutates these; derived render records live in
// pkg/scene and are recomputed wholesale on every new snapshot.
package model

import (
	"fmt"
	"strings"
)

// EdgeType distinguishes citation links from semantic-similarity links.
type EdgeType string

const (
	EdgeCitation   EdgeType = "citation"
	EdgeSimilarity EdgeType = "similarity"
)

// Valid reports whether t is a known edge type.
func (t EdgeType) Valid() bool {
	return t == EdgeCitation || t == EdgeSimilarity
}

// UnclusteredID is the cluster id assigned to papers that HDBSCAN (or whatever
// upstream clusterer produced the snapshot) left as noise.
const UnclusteredID = -1

// Paper is one node of the knowledge graph. Owned by the data-fetch layer;
// read-only inside the engine except for the position pin fields consumed by
// the layout engine.
type Paper struct {
	ID            string   `json:"id"`
	DOI           string   `json:"doi,omitempty"`
	ArxivID       string   `json:"arxiv_id,omitempty"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors,omitempty"`
	Year          int      `json:"year,omitempty"` // 0 = unknown
	Venue         string   `json:"venue,omitempty"`
	CitationCount int      `json:"citation_count"`
	Fields        []string `json:"fields,omitempty"` // ordered, primary first
	Abstract      string   `json:"abstract,omitempty"`
	TLDR          string   `json:"tldr,omitempty"`
	IsBridge      bool     `json:"is_bridge,omitempty"`
	IsOpenAccess  bool     `json:"is_open_access,omitempty"`
	ClusterID     int      `json:"cluster_id"` // UnclusteredID when noise
}

// PrimaryField returns the first (primary) field label, or "" when none.
func (p *Paper) PrimaryField() string {
	if len(p.Fields) == 0 {
		return ""
	}
	return p.Fields[0]
}

// HasYear reports whether the paper carries a usable publication year.
// Zero and negative values are treated as missing so they never enter
// percentile or timeline-axis computations.
func (p *Paper) HasYear() bool {
	return p.Year > 0
}

// Citation returns a short human-readable citation line for clipboard yanks.
func (p *Paper) Citation() string {
	var b strings.Builder
	if len(p.Authors) > 0 {
		b.WriteString(p.Authors[0])
		if len(p.Authors) > 1 {
			b.WriteString(" et al.")
		}
		b.WriteString(" ")
	}
	if p.HasYear() {
		fmt.Fprintf(&b, "(%d). ", p.Year)
	}
	b.WriteString(p.Title)
	if p.Venue != "" {
		b.WriteString(". ")
		b.WriteString(p.Venue)
	}
	if p.DOI != "" {
		b.WriteString(". https://doi.org/")
		b.WriteString(p.DOI)
	}
	return b.String()
}

// Validate checks the invariants the loader relies on.
func (p *Paper) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("paper has empty id (title %q)", p.Title)
	}
	if p.CitationCount < 0 {
		return fmt.Errorf("paper %s: negative citation count %d", p.ID, p.CitationCount)
	}
	return nil
}

// CitationIntent is the coarse classification of why one paper cites another.
type CitationIntent string

const (
	IntentBackground  CitationIntent = "background"
	IntentMethodology CitationIntent = "methodology"
	IntentResult      CitationIntent = "result"
	IntentExtension   CitationIntent = "extension"
	IntentContrast    CitationIntent = "contrast"
)

// EnhancedIntent is the richer, context-bearing intent annotation attached by
// the upstream intent classifier. Optional per edge.
type EnhancedIntent struct {
	Intent        CitationIntent `json:"intent"`
	Context       string         `json:"context,omitempty"` // snippet around the citation
	IsInfluential bool           `json:"is_influential,omitempty"`
}

// Edge connects two papers. Weight is a raw citation count for citation edges
// and a cosine similarity in [0,1] for similarity edges.
type Edge struct {
	Source   string          `json:"source"`
	Target   string          `json:"target"`
	Type     EdgeType        `json:"type"`
	Weight   float64         `json:"weight"`
	Intent   CitationIntent  `json:"intent,omitempty"`
	Enhanced *EnhancedIntent `json:"enhanced_intent,omitempty"`
}

// Key returns a stable identity for the edge, directional.
func (e *Edge) Key() string {
	return e.Source + "\x00" + e.Target + "\x00" + string(e.Type)
}

// PairKey returns an identity for the unordered endpoint pair, used when
// deduplicating ghost and conceptual edges against existing links.
func (e *Edge) PairKey() string {
	return PairKey(e.Source, e.Target)
}

// PairKey returns a canonical unordered key for two paper ids.
func PairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "\x00" + b
}

// Validate checks edge invariants.
func (e *Edge) Validate() error {
	if e.Source == "" || e.Target == "" {
		return fmt.Errorf("edge with empty endpoint (%q -> %q)", e.Source, e.Target)
	}
	if !e.Type.Valid() {
		return fmt.Errorf("edge %s -> %s: unknown type %q", e.Source, e.Target, e.Type)
	}
	if e.Type == EdgeSimilarity && (e.Weight < 0 || e.Weight > 1) {
		return fmt.Errorf("edge %s -> %s: similarity weight %v outside [0,1]", e.Source, e.Target, e.Weight)
	}
	return nil
}

// Cluster is a topical grouping. Membership is implicit: every paper whose
// ClusterID matches.
type Cluster struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
	Color string `json:"color"` // hex, e.g. "#a855f7"
}

// ConceptualEdge is an optional overlay input produced by the LLM side of the
// system: a named relation between two papers that is not a citation.
type ConceptualEdge struct {
	Source       string  `json:"source"`
	Target       string  `json:"target"`
	RelationType string  `json:"relation_type"`
	Weight       float64 `json:"weight"`
	Color        string  `json:"color,omitempty"`
	Explanation  string  `json:"explanation,omitempty"`
}

// IntentAnnotation is the batch intent-classifier output for one citation
// edge. Lower precedence than an edge's EnhancedIntent, higher than the
// edge's own inline Intent field.
type IntentAnnotation struct {
	Source string         `json:"source"`
	Target string         `json:"target"`
	Intent CitationIntent `json:"intent"`
}

// GraphData is the immutable snapshot the engine consumes. Version increases
// with every new snapshot handed over by the data-fetch layer; the scene
// adapter keys its memoization on it.
type GraphData struct {
	Version         int                `json:"version,omitempty"`
	Papers          []Paper            `json:"papers"`
	Edges           []Edge             `json:"edges"`
	Clusters        []Cluster          `json:"clusters,omitempty"`
	Intents         []IntentAnnotation `json:"intents,omitempty"`
	ConceptualEdges []ConceptualEdge   `json:"conceptual_edges,omitempty"`
}

// IntentFor builds a (source,target) -> intent index over the batch
// annotations.
func (g *GraphData) IntentFor() map[string]CitationIntent {
	m := make(map[string]CitationIntent, len(g.Intents))
	for i := range g.Intents {
		a := &g.Intents[i]
		m[a.Source+"\x00"+a.Target] = a.Intent
	}
	return m
}

// PaperByID builds an id -> *Paper index into the snapshot's backing array.
func (g *GraphData) PaperByID() map[string]*Paper {
	m := make(map[string]*Paper, len(g.Papers))
	for i := range g.Papers {
		m[g.Papers[i].ID] = &g.Papers[i]
	}
	return m
}

// ClusterByID builds an id -> *Cluster index.
func (g *GraphData) ClusterByID() map[int]*Cluster {
	m := make(map[int]*Cluster, len(g.Clusters))
	for i := range g.Clusters {
		m[g.Clusters[i].ID] = &g.Clusters[i]
	}
	return m
}

// ClusterMembers groups paper ids by cluster, skipping noise.
func (g *GraphData) ClusterMembers() map[int][]string {
	m := make(map[int][]string)
	for i := range g.Papers {
		cid := g.Papers[i].ClusterID
		if cid == UnclusteredID {
			continue
		}
		m[cid] = append(m[cid], g.Papers[i].ID)
	}
	return m
}

// Validate checks the whole snapshot: entity invariants, unique paper ids, and
// edge endpoints resolving to papers. Returns the first violation.
func (g *GraphData) Validate() error {
	seen := make(map[string]bool, len(g.Papers))
	for i := range g.Papers {
		if err := g.Papers[i].Validate(); err != nil {
			return err
		}
		if seen[g.Papers[i].ID] {
			return fmt.Errorf("duplicate paper id %s", g.Papers[i].ID)
		}
		seen[g.Papers[i].ID] = true
	}
	for i := range g.Edges {
		e := &g.Edges[i]
		if err := e.Validate(); err != nil {
			return err
		}
		if !seen[e.Source] || !seen[e.Target] {
			return fmt.Errorf("edge %s -> %s references unknown paper", e.Source, e.Target)
		}
	}
	return nil
}
