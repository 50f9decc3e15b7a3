package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/scholargraph/scholargraph3d/pkg/scene"
)

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.focus == focusSettings && m.settings != nil {
		return m.settings.render()
	}
	if m.focus == focusHelp {
		return m.renderHelp()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	list := m.renderList()
	if m.detailWidth() > 0 {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, list, m.detail.View()))
	} else {
		b.WriteString(list)
	}
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	return b.String()
}

func (m Model) renderHeader() string {
	title := m.theme.Header.Render("ScholarGraph3D")
	info := fmt.Sprintf(" %d papers", len(m.nodes))
	if m.filter != "" {
		info += fmt.Sprintf("  filter: %q", m.filter)
	}
	if m.searching {
		info += "  " + m.searchInput.View()
	}
	return title + m.theme.SecondaryText.Render(info)
}

func (m Model) renderList() string {
	width := m.width - m.detailWidth()
	if width < 20 {
		width = 20
	}
	h := m.listHeight()

	var b strings.Builder
	end := m.scrollOffset + h
	if end > len(m.nodes) {
		end = len(m.nodes)
	}
	for i := m.scrollOffset; i < end; i++ {
		b.WriteString(m.renderRow(i, width))
		b.WriteString("\n")
	}
	for i := end - m.scrollOffset; i < h; i++ {
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderRow(i, width int) string {
	n := m.nodes[i]

	marks := ""
	if n.Paper.IsBridge {
		marks += m.theme.BridgeMark.Render("*")
	}
	if n.Paper.IsOpenAccess {
		marks += m.theme.Renderer.NewStyle().Foreground(m.theme.OpenAccess).Render("o")
	}

	year := "----"
	if n.HasYear {
		year = fmt.Sprintf("%d", n.Paper.Year)
	}
	meta := fmt.Sprintf(" %s  %4d cites ", year, n.Paper.CitationCount)

	avail := width - lipgloss.Width(meta) - lipgloss.Width(marks) - 3
	if avail < 8 {
		avail = 8
	}
	title := runewidth.Truncate(n.Paper.Title, avail, "…")

	line := fmt.Sprintf("%s%s %s%s", title, strings.Repeat(" ", avail-runewidth.StringWidth(title)), m.theme.MutedText.Render(meta), marks)
	if i == m.selectedIdx {
		return m.theme.Selected.Render(line)
	}
	return "  " + line
}

func (m Model) renderStatusBar() string {
	parts := []string{m.statusMsg}

	view := m.engine.View()
	var flags []string
	if view.TimelineMode {
		flags = append(flags, "timeline")
	}
	if view.GapOverlay {
		n := len(m.engine.GapBridges())
		flags = append(flags, fmt.Sprintf("gaps:%d", n))
	}
	if view.GhostEdges {
		flags = append(flags, "ghost")
	}
	flags = append(flags, string(view.Theme))
	parts = append(parts, strings.Join(flags, " "))

	if m.err != nil {
		parts = append(parts, m.theme.GhostText.Render(m.err.Error()))
	}
	return m.theme.StatusBar.Render(strings.Join(parts, "  |  "))
}

// updateDetail re-renders the detail pane for the current selection.
func (m *Model) updateDetail() {
	if m.mdRenderer == nil {
		return
	}
	n := m.currentNode()
	if n == nil {
		m.detail.SetContent(m.theme.MutedText.Render("no paper selected"))
		return
	}

	md := paperMarkdown(n)
	out, err := m.mdRenderer.Render(md)
	if err != nil {
		out = md
	}
	m.detail.SetContent(out)
}

func paperMarkdown(n *scene.RenderNode) string {
	p := n.Paper
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", p.Title)
	if len(p.Authors) > 0 {
		fmt.Fprintf(&b, "**%s**\n\n", strings.Join(p.Authors, ", "))
	}
	if p.Venue != "" || p.Year > 0 {
		fmt.Fprintf(&b, "*%s %d*\n\n", p.Venue, p.Year)
	}
	fmt.Fprintf(&b, "- citations: %d (p%.0f)\n", p.CitationCount, n.Percentile*100)
	if p.DOI != "" {
		fmt.Fprintf(&b, "- doi: %s\n", p.DOI)
	}
	if p.ArxivID != "" {
		fmt.Fprintf(&b, "- arxiv: %s\n", p.ArxivID)
	}
	if p.IsBridge {
		b.WriteString("- bridge paper: connects multiple research areas\n")
	}
	if p.IsOpenAccess {
		b.WriteString("- open access\n")
	}
	b.WriteString("\n")
	if p.TLDR != "" {
		fmt.Fprintf(&b, "**TL;DR** %s\n\n", p.TLDR)
	}
	if p.Abstract != "" {
		fmt.Fprintf(&b, "## Abstract\n\n%s\n", p.Abstract)
	}
	return b.String()
}

func (m Model) renderHelp() string {
	rows := [][2]string{
		{"j/k", "move selection"},
		{"space", "toggle multi-select"},
		{"e", "expand paper (fetch citations)"},
		{"enter", "focus detail pane"},
		{"esc", "clear selection"},
		{"y", "copy citation"},
		{"/", "search titles"},
		{"t", "timeline mode"},
		{"g", "gap overlay"},
		{"G", "ghost edges"},
		{"c", "conceptual edges"},
		{"n", "hull/nebula theme"},
		{"b", "bloom"},
		{"L", "labels"},
		{"f", "focus cluster"},
		{"r", "reset camera"},
		{"s", "settings"},
		{"q", "quit"},
	}
	var b strings.Builder
	b.WriteString(m.theme.Header.Render("Keys"))
	b.WriteString("\n\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "  %s  %s\n",
			m.theme.PrimaryBold.Render(fmt.Sprintf("%-6s", r[0])),
			m.theme.SecondaryText.Render(r[1]))
	}
	b.WriteString("\n")
	b.WriteString(m.theme.MutedText.Render("press ? or esc to close"))
	return b.String()
}
