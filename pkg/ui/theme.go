package ui

import (
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
)

// TermProfile holds the detected terminal color profile. Computed once at
// package init so every style helper can branch without re-detecting.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// ThemeFg returns the given hex color for ANSI256+ terminals and a safe
// ANSI white for 16-color or lower terminals.
func ThemeFg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return lipgloss.Color(hex)
}

type Theme struct {
	Renderer *lipgloss.Renderer

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor

	// Node accents
	Bridge     lipgloss.AdaptiveColor
	OpenAccess lipgloss.AdaptiveColor
	Ghost      lipgloss.AdaptiveColor
	Conceptual lipgloss.AdaptiveColor
	GapStrong  lipgloss.AdaptiveColor
	GapMedium  lipgloss.AdaptiveColor
	GapWeak    lipgloss.AdaptiveColor

	Border    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor

	Base     lipgloss.Style
	Selected lipgloss.Style
	Header   lipgloss.Style

	// Pre-computed styles; created once at startup instead of per-frame.
	MutedText     lipgloss.Style
	SecondaryText lipgloss.Style
	PrimaryBold   lipgloss.Style
	BridgeMark    lipgloss.Style
	GhostText     lipgloss.Style
	StatusBar     lipgloss.Style
}

// DefaultTheme returns the standard dark-sky theme (adaptive).
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer: r,

		Primary:   lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"},
		Secondary: lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},
		Subtext:   lipgloss.AdaptiveColor{Light: "#666666", Dark: "#BFBFBF"},

		Bridge:     lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"},
		OpenAccess: lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"},
		Ghost:      lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FBBF24"},
		Conceptual: lipgloss.AdaptiveColor{Light: "#C2186B", Dark: "#EC4899"},
		GapStrong:  lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"},
		GapMedium:  lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#F97316"},
		GapWeak:    lipgloss.AdaptiveColor{Light: "#8A7000", Dark: "#EAB308"},

		Border:    lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#44475A"},
		Highlight: lipgloss.AdaptiveColor{Light: "#E0E0E0", Dark: "#44475A"},
		Muted:     lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},
	}

	t.Base = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#F8F8F2"})

	t.Selected = r.NewStyle().
		Background(t.Highlight).
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(t.Primary).
		PaddingLeft(1).
		Bold(true)

	t.Header = r.NewStyle().
		Background(t.Primary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true).
		Padding(0, 1)

	t.MutedText = r.NewStyle().Foreground(t.Muted)
	t.SecondaryText = r.NewStyle().Foreground(t.Secondary)
	t.PrimaryBold = r.NewStyle().Foreground(t.Primary).Bold(true)
	t.BridgeMark = r.NewStyle().Foreground(t.Bridge).Bold(true)
	t.GhostText = r.NewStyle().Foreground(t.Ghost)
	t.StatusBar = r.NewStyle().Foreground(t.Subtext).Background(t.Highlight).Padding(0, 1)

	return t
}

// TestTheme returns a theme suitable for use in tests.
func TestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(os.Stdout))
}
