package overlay

import (
	"strconv"

	"github.com/scholargraph/scholargraph3d/pkg/layout"
	"github.com/scholargraph/scholargraph3d/pkg/model"
)

// TimelineExtent is the world-space height the year range maps onto.
const TimelineExtent = 240.0

// GridLine is one horizontal rule of the timeline overlay.
type GridLine struct {
	Year  int
	Y     float32
	Label string
}

// TimelineGrid is the renderable axis overlay for timeline mode.
type TimelineGrid struct {
	Lines        []GridLine
	EarlierLabel string // shown at the bottom end
	LaterLabel   string // shown at the top end
	MinYear      int
	MaxYear      int
}

// Timeline pins each paper's Y axis to its publication year when enabled and
// releases the pins when disabled. Papers without a year are left entirely to
// physics.
type Timeline struct {
	layout layout.Engine
	pinned map[string]bool
}

// NewTimeline binds the mode to the layout engine.
func NewTimeline(lay layout.Engine) *Timeline {
	return &Timeline{layout: lay, pinned: make(map[string]bool)}
}

// YearY maps a year into the timeline's world-space Y range.
func YearY(year, minYear, maxYear int) float32 {
	span := maxYear - minYear
	if span <= 0 {
		return 0
	}
	frac := float32(year-minYear) / float32(span)
	return (frac - 0.5) * TimelineExtent
}

// Enable pins every dated paper to its year line and returns the grid
// overlay. Re-enabling with a new snapshot first releases stale pins.
func (t *Timeline) Enable(g *model.GraphData) *TimelineGrid {
	t.Disable()

	minYear, maxYear := 0, 0
	for i := range g.Papers {
		p := &g.Papers[i]
		if !p.HasYear() {
			continue
		}
		if minYear == 0 || p.Year < minYear {
			minYear = p.Year
		}
		if p.Year > maxYear {
			maxYear = p.Year
		}
	}
	if minYear == 0 {
		// No dated papers at all: nothing to pin, render no grid.
		return nil
	}

	for i := range g.Papers {
		p := &g.Papers[i]
		if !p.HasYear() {
			continue
		}
		t.layout.PinY(p.ID, YearY(p.Year, minYear, maxYear))
		t.pinned[p.ID] = true
	}

	return buildGrid(minYear, maxYear)
}

// Disable releases every year pin so physics resumes control of the axis.
func (t *Timeline) Disable() {
	for id := range t.pinned {
		t.layout.UnpinY(id)
		delete(t.pinned, id)
	}
}

// PinnedCount reports live year pins (test hook).
func (t *Timeline) PinnedCount() int {
	return len(t.pinned)
}

// buildGrid lays out year rules at an adaptive step: 2-year steps when the
// span fits in a decade, 5-year steps otherwise.
func buildGrid(minYear, maxYear int) *TimelineGrid {
	span := maxYear - minYear
	step := 5
	if span <= 10 {
		step = 2
	}

	grid := &TimelineGrid{
		EarlierLabel: "earlier",
		LaterLabel:   "later",
		MinYear:      minYear,
		MaxYear:      maxYear,
	}

	// Start on a step boundary at or above minYear.
	start := minYear
	if rem := start % step; rem != 0 {
		start += step - rem
	}
	for y := start; y <= maxYear; y += step {
		grid.Lines = append(grid.Lines, GridLine{
			Year:  y,
			Y:     YearY(y, minYear, maxYear),
			Label: strconv.Itoa(y),
		})
	}
	return grid
}
