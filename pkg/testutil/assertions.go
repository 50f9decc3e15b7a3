package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/scholargraph/scholargraph3d/pkg/model"
)

// AssertPaperCount verifies the expected number of papers.
func AssertPaperCount(t *testing.T, papers []model.Paper, expected int) {
	t.Helper()
	if len(papers) != expected {
		t.Errorf("expected %d papers, got %d", expected, len(papers))
	}
}

// AssertNoDuplicateIDs verifies all paper IDs are unique.
func AssertNoDuplicateIDs(t *testing.T, papers []model.Paper) {
	t.Helper()
	seen := make(map[string]bool)
	for _, p := range papers {
		if seen[p.ID] {
			t.Errorf("duplicate paper ID: %s", p.ID)
		}
		seen[p.ID] = true
	}
}

// AssertAllValid verifies all papers pass validation.
func AssertAllValid(t *testing.T, papers []model.Paper) {
	t.Helper()
	for i, p := range papers {
		if err := p.Validate(); err != nil {
			t.Errorf("paper %d (%s) invalid: %v", i, p.ID, err)
		}
	}
}

// AssertEdgeExists verifies that an edge with the given endpoints and type
// exists in the graph.
func AssertEdgeExists(t *testing.T, data *model.GraphData, source, target string, et model.EdgeType) {
	t.Helper()
	for _, e := range data.Edges {
		if e.Source == source && e.Target == target && e.Type == et {
			return
		}
	}
	t.Errorf("expected %s edge from %s to %s not found", et, source, target)
}

// AssertJSONEqual compares two values after JSON round-tripping. Useful for
// comparing structs with equivalent JSON forms.
func AssertJSONEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()

	expectedJSON, err := json.Marshal(expected)
	if err != nil {
		t.Fatalf("failed to marshal expected: %v", err)
	}
	actualJSON, err := json.Marshal(actual)
	if err != nil {
		t.Fatalf("failed to marshal actual: %v", err)
	}
	if string(expectedJSON) != string(actualJSON) {
		t.Errorf("JSON mismatch:\nexpected: %s\nactual:   %s", expectedJSON, actualJSON)
	}
}

// WriteGraphFile marshals a snapshot to a JSON file for loader tests.
func WriteGraphFile(t *testing.T, path string, data *model.GraphData) {
	t.Helper()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		t.Fatalf("failed to marshal graph: %v", err)
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		t.Fatalf("failed to write graph file: %v", err)
	}
}

// Golden file helpers

// GoldenFile handles golden file comparisons.
type GoldenFile struct {
	t      *testing.T
	dir    string
	name   string
	update bool
}

// NewGoldenFile creates a golden file helper. If GENERATE_GOLDEN is set,
// golden files are rewritten instead of compared.
func NewGoldenFile(t *testing.T, dir, name string) *GoldenFile {
	t.Helper()
	return &GoldenFile{
		t:      t,
		dir:    dir,
		name:   name,
		update: os.Getenv("GENERATE_GOLDEN") != "",
	}
}

// Path returns the full path to the golden file.
func (g *GoldenFile) Path() string {
	return filepath.Join(g.dir, g.name)
}

// Assert compares actual content against the golden file, or rewrites it when
// GENERATE_GOLDEN is set.
func (g *GoldenFile) Assert(actual string) {
	g.t.Helper()

	path := g.Path()
	if g.update {
		if err := os.MkdirAll(g.dir, 0755); err != nil {
			g.t.Fatalf("failed to create golden dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(actual), 0644); err != nil {
			g.t.Fatalf("failed to write golden file: %v", err)
		}
		g.t.Logf("updated golden file: %s", path)
		return
	}

	expected, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			g.t.Fatalf("golden file does not exist: %s\nRun with GENERATE_GOLDEN=1 to create it", path)
		}
		g.t.Fatalf("failed to read golden file: %v", err)
	}

	if string(expected) != actual {
		expectedLines := strings.Split(string(expected), "\n")
		actualLines := strings.Split(actual, "\n")
		for i := 0; i < len(expectedLines) || i < len(actualLines); i++ {
			var expLine, actLine string
			if i < len(expectedLines) {
				expLine = expectedLines[i]
			}
			if i < len(actualLines) {
				actLine = actualLines[i]
			}
			if expLine != actLine {
				g.t.Errorf("golden file mismatch at line %d:\nexpected: %s\nactual:   %s",
					i+1, expLine, actLine)
				return
			}
		}
		g.t.Errorf("golden file mismatch (length differs)")
	}
}

// FindPaper returns the paper with the given ID, or nil.
func FindPaper(papers []model.Paper, id string) *model.Paper {
	for i := range papers {
		if papers[i].ID == id {
			return &papers[i]
		}
	}
	return nil
}
