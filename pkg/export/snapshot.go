// Package export renders static snapshots of the 3D scene: a perspective
// projection of the current node/edge/overlay state flattened to SVG or PNG,
// with a small summary block so a snapshot is self-describing.
package export

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"git.sr.ht/~sbinet/gg"
	svg "github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"

	"cogentcore.org/core/math32"

	"github.com/scholargraph/scholargraph3d/pkg/model"
	"github.com/scholargraph/scholargraph3d/pkg/scene"
	"github.com/scholargraph/scholargraph3d/pkg/scene/overlay"
)

// SnapshotOptions controls snapshot export behaviour.
type SnapshotOptions struct {
	Path   string // output path; format inferred from extension when Format empty
	Format string // "svg" or "png" (case-insensitive)
	Title  string // optional title in the summary block

	Width  int // canvas width, default 1280
	Height int // canvas height, default 900

	Graph     *scene.RenderGraph
	Positions map[string]math32.Vector3
	Camera    *scene.Camera

	Hulls    []overlay.ClusterHull
	Bridges  []*overlay.GapBridge
	Timeline *overlay.TimelineGrid
}

// SaveSnapshot projects the scene through the camera and writes a static
// image. The render is a flattening, not a re-simulation: it draws exactly
// the positions and derived records handed in.
func SaveSnapshot(opts SnapshotOptions) error {
	if opts.Graph == nil || len(opts.Graph.Nodes) == 0 {
		return fmt.Errorf("no papers to export")
	}
	if opts.Camera == nil {
		return fmt.Errorf("camera is required for snapshot export")
	}

	format := strings.ToLower(strings.TrimPrefix(opts.Format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(opts.Path)) {
		case ".svg":
			format = "svg"
		case ".png":
			format = "png"
		default:
			format = "svg"
			if opts.Path != "" && filepath.Ext(opts.Path) == "" {
				opts.Path = opts.Path + ".svg"
			}
		}
	}
	if format != "svg" && format != "png" {
		return fmt.Errorf("unsupported format %q (want svg or png)", format)
	}
	if opts.Path == "" {
		return fmt.Errorf("output path is required")
	}
	if opts.Width <= 0 {
		opts.Width = 1280
	}
	if opts.Height <= 0 {
		opts.Height = 900
	}

	if dir := filepath.Dir(opts.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create parent dir: %w", err)
		}
	}

	flat := projectScene(opts)

	switch format {
	case "svg":
		return renderSVG(opts.Path, flat)
	case "png":
		return renderPNG(opts.Path, flat)
	default:
		return fmt.Errorf("unhandled format %q", format)
	}
}

// --- projection ------------------------------------------------------------

// focalLength is the perspective scale at unit depth.
const focalLength = 900.0

type flatNode struct {
	ID      string
	Label   string
	X, Y    float64
	R       float64 // projected radius
	Depth   float64
	Color   string
	Opacity float64
	Badge   string
}

type flatEdge struct {
	X1, Y1, X2, Y2 float64
	Color          string
	Width          float64
	Dashed         bool
	Opacity        float64
}

type flatHull struct {
	Xs, Ys  []float64
	Color   string
	Opacity float64
	Label   string
	LX, LY  float64
}

type flatBridge struct {
	X1, Y1, X2, Y2 float64
	MX, MY         float64
	Color          string
	Label          string
}

type flatScene struct {
	Width, Height int
	Nodes         []flatNode
	Edges         []flatEdge
	Hulls         []flatHull
	Bridges       []flatBridge
	GridYears     []flatGridLine
	Summary       summaryInfo
}

type flatGridLine struct {
	Y     float64
	Label string
}

type summaryInfo struct {
	Title     string
	Papers    int
	Edges     int
	Clusters  int
	YearRange string
}

// projector maps world positions through the camera onto the canvas.
type projector struct {
	eye                math32.Vector3
	right, up, forward math32.Vector3
	cx, cy             float64
}

func newProjector(cam *scene.Camera, width, height int) projector {
	forward := cam.ViewDir()
	worldUp := math32.Vec3(0, 1, 0)
	right := forward.Cross(worldUp).Normal()
	if right.Length() == 0 {
		right = math32.Vec3(1, 0, 0)
	}
	up := right.Cross(forward)
	return projector{
		eye:     cam.Position,
		right:   right,
		up:      up,
		forward: forward,
		cx:      float64(width) / 2,
		cy:      float64(height) / 2,
	}
}

// project returns canvas coordinates, the perspective scale at that depth,
// and ok=false for points at or behind the eye plane.
func (pr projector) project(p math32.Vector3) (x, y, scale float64, ok bool) {
	rel := p.Sub(pr.eye)
	depth := float64(rel.Dot(pr.forward))
	if depth < 1 {
		return 0, 0, 0, false
	}
	scale = focalLength / depth
	x = pr.cx + float64(rel.Dot(pr.right))*scale
	y = pr.cy - float64(rel.Dot(pr.up))*scale
	return x, y, scale, true
}

func projectScene(opts SnapshotOptions) flatScene {
	pr := newProjector(opts.Camera, opts.Width, opts.Height)
	rg := opts.Graph

	flat := flatScene{Width: opts.Width, Height: opts.Height}

	clusterIDs := make(map[int]bool)
	for _, n := range rg.Nodes {
		x, y, scale, ok := pr.project(opts.Positions[n.ID])
		if !ok {
			continue
		}
		fn := flatNode{
			ID:      n.ID,
			X:       x,
			Y:       y,
			R:       n.Size * scale / 40,
			Depth:   scale,
			Color:   n.Color,
			Opacity: n.Opacity,
		}
		if fn.R < 1.5 {
			fn.R = 1.5
		}
		if n.Percentile >= scene.LabelPercentile {
			fn.Label = truncate(n.Paper.Title, 36)
		}
		if n.ClusterID != model.UnclusteredID {
			clusterIDs[n.ClusterID] = true
		}
		flat.Nodes = append(flat.Nodes, fn)
	}
	// Paint far-to-near so close nodes occlude distant ones.
	sort.SliceStable(flat.Nodes, func(i, j int) bool {
		return flat.Nodes[i].Depth < flat.Nodes[j].Depth
	})

	for _, l := range rg.Links {
		x1, y1, _, ok1 := pr.project(opts.Positions[l.Source])
		x2, y2, _, ok2 := pr.project(opts.Positions[l.Target])
		if !ok1 || !ok2 {
			continue
		}
		opacity := 0.55
		if l.Ghost || l.Conceptual {
			opacity = 0.8
		}
		width := 1.0
		if l.Type == model.EdgeCitation {
			width = 1.4
		}
		flat.Edges = append(flat.Edges, flatEdge{
			X1: x1, Y1: y1, X2: x2, Y2: y2,
			Color:   l.Color,
			Width:   width,
			Dashed:  l.Dashed,
			Opacity: opacity,
		})
	}

	for _, h := range opts.Hulls {
		fh := flatHull{Color: h.Color, Opacity: h.Opacity, Label: h.Label}
		var sx, sy float64
		for _, v := range h.Outline {
			x, y, _, ok := pr.project(math32.Vec3(v.X, v.Y, h.Depth))
			if !ok {
				continue
			}
			fh.Xs = append(fh.Xs, x)
			fh.Ys = append(fh.Ys, y)
			sx += x
			sy += y
		}
		if len(fh.Xs) < 3 {
			continue
		}
		fh.LX = sx / float64(len(fh.Xs))
		fh.LY = sy / float64(len(fh.Ys))
		flat.Hulls = append(flat.Hulls, fh)
	}

	for _, b := range opts.Bridges {
		x1, y1, _, ok1 := pr.project(b.From)
		x2, y2, _, ok2 := pr.project(b.To)
		mx, my, _, ok3 := pr.project(b.Mid)
		if !ok1 || !ok2 || !ok3 {
			continue
		}
		flat.Bridges = append(flat.Bridges, flatBridge{
			X1: x1, Y1: y1, X2: x2, Y2: y2,
			MX: mx, MY: my,
			Color: b.Color,
			Label: b.Gap.Label(),
		})
	}

	if opts.Timeline != nil {
		for _, line := range opts.Timeline.Lines {
			// Grid rules are horizontal planes; project their height at the
			// camera target's depth.
			_, y, _, ok := pr.project(math32.Vec3(opts.Camera.Target.X, line.Y, opts.Camera.Target.Z))
			if !ok {
				continue
			}
			flat.GridYears = append(flat.GridYears, flatGridLine{Y: y, Label: line.Label})
		}
	}

	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = "Graph Snapshot"
	}
	yearRange := "n/a"
	if rg.MinYear > 0 {
		yearRange = fmt.Sprintf("%d-%d", rg.MinYear, rg.MaxYear)
	}
	flat.Summary = summaryInfo{
		Title:     title,
		Papers:    len(rg.Nodes),
		Edges:     len(rg.Links),
		Clusters:  len(clusterIDs),
		YearRange: yearRange,
	}
	return flat
}

// --- rendering -------------------------------------------------------------

var (
	colorBackdrop = color.RGBA{0x0b, 0x0d, 0x17, 0xff}
	colorHeaderBG = color.RGBA{0x16, 0x1a, 0x2b, 0xff}
	colorText     = color.RGBA{0xe5, 0xe7, 0xeb, 0xff}
	colorSubtle   = color.RGBA{0x9c, 0xa3, 0xaf, 0xff}
	colorGrid     = color.RGBA{0x33, 0x3a, 0x55, 0xff}
)

const headerHeight = 96.0

func renderPNG(path string, flat flatScene) error {
	dc := gg.NewContext(flat.Width, flat.Height)
	dc.SetColor(colorBackdrop)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	for _, g := range flat.GridYears {
		dc.SetColor(colorGrid)
		dc.SetLineWidth(1)
		dc.DrawLine(0, g.Y, float64(flat.Width), g.Y)
		dc.Stroke()
		dc.SetColor(colorSubtle)
		dc.DrawStringAnchored(g.Label, 8, g.Y-6, 0, 0.5)
	}

	for _, h := range flat.Hulls {
		c := parseHex(h.Color)
		dc.SetRGBA(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255, h.Opacity)
		dc.NewSubPath()
		dc.MoveTo(h.Xs[0], h.Ys[0])
		for i := 1; i < len(h.Xs); i++ {
			dc.LineTo(h.Xs[i], h.Ys[i])
		}
		dc.ClosePath()
		dc.Fill()
		if h.Label != "" {
			dc.SetColor(colorSubtle)
			dc.DrawStringAnchored(h.Label, h.LX, h.LY, 0.5, 0.5)
		}
	}

	for _, e := range flat.Edges {
		c := parseHex(e.Color)
		dc.SetRGBA(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255, e.Opacity)
		dc.SetLineWidth(e.Width)
		if e.Dashed {
			dc.SetDash(4, 4)
		} else {
			dc.SetDash()
		}
		dc.DrawLine(e.X1, e.Y1, e.X2, e.Y2)
		dc.Stroke()
	}
	dc.SetDash()

	for _, b := range flat.Bridges {
		c := parseHex(b.Color)
		dc.SetRGBA(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255, 0.9)
		dc.SetLineWidth(1.6)
		dc.SetDash(6, 5)
		dc.DrawLine(b.X1, b.Y1, b.X2, b.Y2)
		dc.Stroke()
		dc.SetDash()
		dc.DrawCircle(b.MX, b.MY, 5)
		dc.Fill()
		dc.SetColor(colorSubtle)
		dc.DrawStringAnchored(b.Label, b.MX+10, b.MY, 0, 0.5)
	}

	for _, n := range flat.Nodes {
		c := parseHex(n.Color)
		dc.SetRGBA(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255, n.Opacity)
		dc.DrawCircle(n.X, n.Y, n.R)
		dc.Fill()
		if n.Label != "" {
			dc.SetColor(colorText)
			dc.DrawStringAnchored(n.Label, n.X, n.Y-n.R-6, 0.5, 0.5)
		}
	}

	drawSummaryPNG(dc, flat)
	return dc.SavePNG(path)
}

func drawSummaryPNG(dc *gg.Context, flat flatScene) {
	dc.SetColor(colorHeaderBG)
	dc.DrawRoundedRectangle(16, 16, 360, headerHeight-16, 10)
	dc.Fill()
	dc.SetColor(colorText)
	dc.DrawStringAnchored(flat.Summary.Title, 32, 40, 0, 0.5)
	dc.SetColor(colorSubtle)
	dc.DrawStringAnchored(fmt.Sprintf("papers: %d  edges: %d  clusters: %d",
		flat.Summary.Papers, flat.Summary.Edges, flat.Summary.Clusters), 32, 60, 0, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("years: %s", flat.Summary.YearRange), 32, 80, 0, 0.5)
}

func renderSVG(path string, flat flatScene) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return renderSVGToWriter(file, flat)
}

func renderSVGToWriter(w io.Writer, flat flatScene) error {
	canvas := svg.New(w)
	canvas.Start(flat.Width, flat.Height)
	canvas.Rect(0, 0, flat.Width, flat.Height, fmt.Sprintf("fill:%s", css(colorBackdrop)))

	for _, g := range flat.GridYears {
		canvas.Line(0, int(g.Y), flat.Width, int(g.Y),
			fmt.Sprintf("stroke:%s;stroke-width:1", css(colorGrid)))
		canvas.Text(8, int(g.Y)-6, g.Label,
			fmt.Sprintf("fill:%s;font-size:11px;font-family:monospace", css(colorSubtle)))
	}

	for _, h := range flat.Hulls {
		xs := make([]int, len(h.Xs))
		ys := make([]int, len(h.Ys))
		for i := range h.Xs {
			xs[i] = int(h.Xs[i])
			ys[i] = int(h.Ys[i])
		}
		canvas.Polygon(xs, ys, fmt.Sprintf("fill:%s;fill-opacity:%.2f", h.Color, h.Opacity))
		if h.Label != "" {
			canvas.Text(int(h.LX), int(h.LY), h.Label,
				fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace;text-anchor:middle", css(colorSubtle)))
		}
	}

	for _, e := range flat.Edges {
		style := fmt.Sprintf("stroke:%s;stroke-width:%.1f;stroke-opacity:%.2f", e.Color, e.Width, e.Opacity)
		if e.Dashed {
			style += ";stroke-dasharray:4,4"
		}
		canvas.Line(int(e.X1), int(e.Y1), int(e.X2), int(e.Y2), style)
	}

	for _, b := range flat.Bridges {
		canvas.Line(int(b.X1), int(b.Y1), int(b.X2), int(b.Y2),
			fmt.Sprintf("stroke:%s;stroke-width:1.6;stroke-dasharray:6,5", b.Color))
		canvas.Circle(int(b.MX), int(b.MY), 5, fmt.Sprintf("fill:%s", b.Color))
		canvas.Text(int(b.MX)+10, int(b.MY)+4, b.Label,
			fmt.Sprintf("fill:%s;font-size:11px;font-family:monospace", css(colorSubtle)))
	}

	for _, n := range flat.Nodes {
		canvas.Circle(int(n.X), int(n.Y), int(math.Ceil(n.R)),
			fmt.Sprintf("fill:%s;fill-opacity:%.2f", n.Color, n.Opacity))
		if n.Label != "" {
			canvas.Text(int(n.X), int(n.Y-n.R-6), n.Label,
				fmt.Sprintf("fill:%s;font-size:11px;font-family:monospace;text-anchor:middle", css(colorText)))
		}
	}

	canvas.Roundrect(16, 16, 360, int(headerHeight-16), 10, 10, fmt.Sprintf("fill:%s", css(colorHeaderBG)))
	canvas.Text(32, 44, flat.Summary.Title,
		fmt.Sprintf("fill:%s;font-size:15px;font-family:monospace;font-weight:bold", css(colorText)))
	canvas.Text(32, 64, fmt.Sprintf("papers: %d  edges: %d  clusters: %d",
		flat.Summary.Papers, flat.Summary.Edges, flat.Summary.Clusters),
		fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(colorSubtle)))
	canvas.Text(32, 84, fmt.Sprintf("years: %s", flat.Summary.YearRange),
		fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(colorSubtle)))

	canvas.End()
	return nil
}

// --- helpers ---------------------------------------------------------------

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

func parseHex(s string) color.RGBA {
	c := color.RGBA{0x88, 0x88, 0xaa, 0xff}
	if len(s) == 7 && s[0] == '#' {
		fmt.Sscanf(s[1:], "%02x%02x%02x", &c.R, &c.G, &c.B)
	}
	return c
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
