// Package ui is the terminal front end: a split list/detail browser over the
// scene engine. The engine owns all graph semantics; this package only maps
// key presses to interaction calls and renders the derived records.
package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/scholargraph/scholargraph3d/pkg/config"
	"github.com/scholargraph/scholargraph3d/pkg/debug"
	"github.com/scholargraph/scholargraph3d/pkg/layout"
	"github.com/scholargraph/scholargraph3d/pkg/loader"
	"github.com/scholargraph/scholargraph3d/pkg/model"
	"github.com/scholargraph/scholargraph3d/pkg/scene"
	"github.com/scholargraph/scholargraph3d/pkg/watcher"
)

// View width thresholds for adaptive layout.
const (
	SplitViewThreshold = 100
	MinDetailPaneWidth = 40
)

// frameInterval drives the engine's per-frame work (clock tick, camera and
// expansion updates) at roughly 30fps.
const frameInterval = 33 * time.Millisecond

// focus represents which UI element has keyboard focus.
type focus int

const (
	focusList focus = iota
	focusDetail
	focusSettings
	focusHelp
)

// FrameTickMsg drives one engine frame.
type FrameTickMsg time.Time

// FileChangedMsg is sent when the graph file changes on disk.
type FileChangedMsg struct{}

// EngineEventMsg wraps a domain event from the scene engine.
type EngineEventMsg struct {
	Event scene.Event
}

// ReadyTimeoutMsg ensures the UI becomes ready even if the terminal doesn't
// send WindowSizeMsg promptly (common in tmux and over SSH).
type ReadyTimeoutMsg struct{}

func frameTickCmd() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return FrameTickMsg(t)
	})
}

// ReadyTimeoutCmd returns a command that sends ReadyTimeoutMsg after 100ms.
func ReadyTimeoutCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return ReadyTimeoutMsg{}
	})
}

// WatchFileCmd returns a command that waits for file changes.
func WatchFileCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		<-w.Changed()
		return FileChangedMsg{}
	}
}

// waitEventCmd waits for the next engine event.
func waitEventCmd(ch <-chan scene.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return EngineEventMsg{Event: ev}
	}
}

// Model is the root bubbletea model.
type Model struct {
	cfg    config.Config
	theme  Theme
	engine *scene.Engine
	force  *layout.Force
	watch  *watcher.Watcher
	path   string

	// List state: render nodes sorted by citation percentile, filtered.
	nodes        []*scene.RenderNode
	selectedIdx  int
	scrollOffset int
	filter       string

	detail     viewport.Model
	mdRenderer *glamour.TermRenderer

	searchInput textinput.Model
	searching   bool

	settings *settingsForm

	focus     focus
	width     int
	height    int
	ready     bool
	statusMsg string
	err       error

	events      chan scene.Event
	unsubscribe func()
}

// NewModel wires the TUI to an engine. The watcher may be nil when live
// reload is disabled.
func NewModel(cfg config.Config, eng *scene.Engine, force *layout.Force, w *watcher.Watcher, path string) Model {
	ti := textinput.New()
	ti.Placeholder = "search titles..."
	ti.CharLimit = 80

	m := Model{
		cfg:         cfg,
		theme:       DefaultTheme(lipgloss.DefaultRenderer()),
		engine:      eng,
		force:       force,
		watch:       w,
		path:        path,
		searchInput: ti,
		events:      make(chan scene.Event, 16),
	}
	m.unsubscribe = eng.Events().Subscribe(func(ev scene.Event) {
		select {
		case m.events <- ev:
		default: // UI lagging; drop rather than block the emitter
		}
	})
	m.rebuildList()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{frameTickCmd(), ReadyTimeoutCmd(), waitEventCmd(m.events)}
	if m.watch != nil {
		cmds = append(cmds, WatchFileCmd(m.watch))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// The settings form needs to see all message types.
	if m.focus == focusSettings && m.settings != nil {
		done, cmd := m.settings.update(msg)
		if done {
			if m.settings.accepted {
				m.applySettings()
			}
			m.settings = nil
			m.focus = focusList
			return m, cmd
		}
		if _, isKey := msg.(tea.KeyMsg); isKey {
			return m, cmd
		}
		// Fall through for ticks and resizes.
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		return m, nil

	case ReadyTimeoutMsg:
		if !m.ready {
			m.width = 80
			m.height = 24
			m.ready = true
			m.resize()
		}
		return m, nil

	case FrameTickMsg:
		m.force.Step(float32(frameInterval.Seconds()))
		m.engine.Frame(time.Time(msg))
		return m, frameTickCmd()

	case FileChangedMsg:
		m.reload()
		if m.watch != nil {
			return m, WatchFileCmd(m.watch)
		}
		return m, nil

	case EngineEventMsg:
		m.handleEngineEvent(msg.Event)
		return m, waitEventCmd(m.events)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

func (m *Model) handleEngineEvent(ev scene.Event) {
	switch ev.Kind {
	case scene.EventPaperSelected:
		m.statusMsg = fmt.Sprintf("selected %s", ev.PaperID)
		m.syncSelectionFromEngine(ev.PaperID)
		m.updateDetail()
	case scene.EventPaperDeselected:
		m.statusMsg = "selection cleared"
		m.updateDetail()
	case scene.EventExpandRequested:
		m.statusMsg = fmt.Sprintf("expanding %s...", ev.PaperID)
	case scene.EventEdgeClicked:
		if ev.Edge != nil {
			m.statusMsg = fmt.Sprintf("edge %s -> %s (%s)", ev.Edge.Source, ev.Edge.Target, ev.Edge.Type)
		}
	case scene.EventCameraMoved:
		m.statusMsg = fmt.Sprintf("camera: %s", ev.Command)
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		switch msg.String() {
		case "enter", "esc":
			m.searching = false
			m.searchInput.Blur()
			if msg.String() == "esc" {
				m.filter = ""
				m.searchInput.SetValue("")
				m.engine.HighlightPanel(nil)
			}
			m.rebuildList()
			return m, nil
		default:
			var cmd tea.Cmd
			m.searchInput, cmd = m.searchInput.Update(msg)
			m.filter = m.searchInput.Value()
			m.rebuildList()
			m.highlightMatches()
			return m, cmd
		}
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "j", "down":
		m.moveSelection(1)
	case "k", "up":
		m.moveSelection(-1)
	case "ctrl+d", "pgdown":
		m.moveSelection(m.listHeight() / 2)
	case "ctrl+u", "pgup":
		m.moveSelection(-m.listHeight() / 2)

	case "enter":
		if m.focus == focusList {
			m.focus = focusDetail
		} else {
			m.focus = focusList
		}

	case " ":
		if n := m.currentNode(); n != nil {
			m.engine.Interaction().ClickNode(n.ID, true)
		}

	case "e":
		// Keyboard expand maps to the double-click path.
		if n := m.currentNode(); n != nil {
			m.engine.Interaction().ClickNode(n.ID, false)
			m.engine.Interaction().ClickNode(n.ID, false)
		}

	case "esc":
		if m.focus == focusHelp {
			m.focus = focusList
			return m, nil
		}
		m.engine.Interaction().ClickBackground()

	case "y":
		if n := m.currentNode(); n != nil {
			if err := clipboard.WriteAll(n.Paper.Citation()); err != nil {
				m.statusMsg = fmt.Sprintf("clipboard: %v", err)
			} else {
				m.statusMsg = "citation copied"
			}
		}

	case "t":
		m.toggleView(func(v *model.ViewState) { v.TimelineMode = !v.TimelineMode })
	case "g":
		m.toggleView(func(v *model.ViewState) { v.GapOverlay = !v.GapOverlay })
	case "G":
		m.toggleView(func(v *model.ViewState) { v.GhostEdges = !v.GhostEdges })
	case "c":
		m.toggleView(func(v *model.ViewState) { v.ConceptualEdges = !v.ConceptualEdges })
	case "b":
		m.toggleView(func(v *model.ViewState) { v.Bloom = !v.Bloom })
	case "n":
		m.toggleView(func(v *model.ViewState) {
			if v.Theme == model.ThemeHull {
				v.Theme = model.ThemeNebula
			} else {
				v.Theme = model.ThemeHull
			}
		})
	case "L":
		m.toggleView(func(v *model.ViewState) { v.Labels = !v.Labels })

	case "f":
		if n := m.currentNode(); n != nil && n.ClusterID != model.UnclusteredID {
			m.engine.FocusCluster(n.ClusterID)
		}
	case "r":
		m.engine.ResetCamera()

	case "/":
		m.searching = true
		m.searchInput.Focus()

	case "s":
		m.settings = newSettingsForm(m.engine.View())
		m.focus = focusSettings
		return m, m.settings.init()

	case "?":
		if m.focus == focusHelp {
			m.focus = focusList
		} else {
			m.focus = focusHelp
		}
	}

	if m.focus == focusDetail {
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) toggleView(mutate func(*model.ViewState)) {
	v := m.engine.View()
	mutate(&v)
	m.engine.SetView(v)
	m.cfg.View = v
	if err := config.Save(m.cfg); err != nil {
		debug.Log("saving config: %v", err)
	}
	m.rebuildList()
}

func (m *Model) applySettings() {
	m.engine.SetView(m.settings.view)
	m.cfg.View = m.settings.view
	if err := config.Save(m.cfg); err != nil {
		debug.Log("saving config: %v", err)
	}
	m.rebuildList()
	m.statusMsg = "settings applied"
}

func (m *Model) moveSelection(delta int) {
	if len(m.nodes) == 0 {
		return
	}
	m.selectedIdx += delta
	if m.selectedIdx < 0 {
		m.selectedIdx = 0
	}
	if m.selectedIdx >= len(m.nodes) {
		m.selectedIdx = len(m.nodes) - 1
	}
	m.scrollTo(m.selectedIdx)
	n := m.nodes[m.selectedIdx]
	m.engine.Interaction().ClickNode(n.ID, false)
	m.engine.Interaction().Hover(n.ID)
	m.updateDetail()
}

func (m *Model) scrollTo(idx int) {
	h := m.listHeight()
	if h <= 0 {
		return
	}
	if idx < m.scrollOffset {
		m.scrollOffset = idx
	}
	if idx >= m.scrollOffset+h {
		m.scrollOffset = idx - h + 1
	}
}

func (m *Model) currentNode() *scene.RenderNode {
	if m.selectedIdx < 0 || m.selectedIdx >= len(m.nodes) {
		return nil
	}
	return m.nodes[m.selectedIdx]
}

// rebuildList re-derives the navigable list from the engine's render graph:
// percentile-descending order, filtered by the search string.
func (m *Model) rebuildList() {
	rg := m.engine.RenderGraph()
	nodes := make([]*scene.RenderNode, 0, len(rg.Nodes))
	needle := strings.ToLower(strings.TrimSpace(m.filter))
	for _, n := range rg.Nodes {
		if needle != "" && !strings.Contains(strings.ToLower(n.Paper.Title), needle) {
			continue
		}
		nodes = append(nodes, n)
	}
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].Percentile != nodes[j].Percentile {
			return nodes[i].Percentile > nodes[j].Percentile
		}
		return nodes[i].ID < nodes[j].ID
	})
	m.nodes = nodes
	if m.selectedIdx >= len(nodes) {
		m.selectedIdx = 0
		m.scrollOffset = 0
	}
	m.updateDetail()
}

func (m *Model) highlightMatches() {
	ids := make([]string, len(m.nodes))
	for i, n := range m.nodes {
		ids[i] = n.ID
	}
	m.engine.HighlightPanel(ids)
}

func (m *Model) syncSelectionFromEngine(id string) {
	for i, n := range m.nodes {
		if n.ID == id {
			m.selectedIdx = i
			m.scrollTo(i)
			return
		}
	}
}

func (m *Model) reload() {
	res, err := loader.Load(m.path)
	if err != nil {
		m.err = err
		m.statusMsg = fmt.Sprintf("reload failed: %v", err)
		return
	}
	m.err = nil
	m.force.SetGraph(&res.Graph)
	m.engine.SetGraph(&res.Graph)
	m.rebuildList()
	m.statusMsg = fmt.Sprintf("reloaded %d papers", len(res.Graph.Papers))
	for _, w := range res.Warnings {
		debug.Log("reload warning: %s", w)
	}
}

func (m *Model) resize() {
	detailW := m.detailWidth()
	if detailW < 1 {
		detailW = 1
	}
	m.detail = viewport.New(detailW, m.listHeight())
	wrap := detailW - 2
	if wrap < 20 {
		wrap = 20
	}
	m.mdRenderer, _ = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	m.updateDetail()
}

func (m *Model) listHeight() int {
	h := m.height - 4 // header + status bar + padding
	if h < 1 {
		h = 1
	}
	return h
}

func (m *Model) detailWidth() int {
	if m.width < SplitViewThreshold {
		return 0
	}
	w := m.width * 2 / 5
	if w < MinDetailPaneWidth {
		w = MinDetailPaneWidth
	}
	return w
}

// Teardown releases the engine subscription. Called by the host after the
// program exits.
func (m *Model) Teardown() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}
