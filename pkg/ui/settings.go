package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/scholargraph/scholargraph3d/pkg/model"
)

// settingsForm is the modal huh form over the ViewState toggles. The form
// edits a draft; nothing reaches the engine until the user confirms.
type settingsForm struct {
	form     *huh.Form
	view     model.ViewState
	theme    string
	style    string
	accepted bool
}

func newSettingsForm(view model.ViewState) *settingsForm {
	s := &settingsForm{
		view:  view,
		theme: string(view.Theme),
		style: string(view.Style),
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Citation edges").
				Value(&s.view.ShowCitationEdges),
			huh.NewConfirm().
				Title("Similarity edges").
				Value(&s.view.ShowSimilarityEdges),
			huh.NewConfirm().
				Title("Enhanced citation intents").
				Value(&s.view.EnhancedIntents),
			huh.NewConfirm().
				Title("Ghost edges (possible missed citations)").
				Value(&s.view.GhostEdges),
			huh.NewConfirm().
				Title("Conceptual edges").
				Value(&s.view.ConceptualEdges),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Gap overlay").
				Value(&s.view.GapOverlay),
			huh.NewConfirm().
				Title("Timeline mode").
				Value(&s.view.TimelineMode),
			huh.NewConfirm().
				Title("Bloom").
				Value(&s.view.Bloom),
			huh.NewConfirm().
				Title("Labels").
				Value(&s.view.Labels),
			huh.NewConfirm().
				Title("Open-access rings").
				Value(&s.view.OpenAccessRings),
			huh.NewConfirm().
				Title("Citation aura").
				Value(&s.view.CitationAura),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Cluster theme").
				Options(
					huh.NewOption("Hull (smoothed convex shells)", string(model.ThemeHull)),
					huh.NewOption("Nebula (particle clouds)", string(model.ThemeNebula)),
				).
				Value(&s.theme),
			huh.NewSelect[string]().
				Title("Node style").
				Options(
					huh.NewOption("Sphere", string(model.StyleSphere)),
					huh.NewOption("Star (twinkle shader)", string(model.StyleStar)),
				).
				Value(&s.style),
		),
	).WithTheme(huh.ThemeDracula())

	return s
}

func (s *settingsForm) init() tea.Cmd {
	return s.form.Init()
}

// update feeds a message to the form and reports whether it has finished.
func (s *settingsForm) update(msg tea.Msg) (done bool, cmd tea.Cmd) {
	f, cmd := s.form.Update(msg)
	if form, ok := f.(*huh.Form); ok {
		s.form = form
	}

	switch s.form.State {
	case huh.StateCompleted:
		s.view.Theme = model.ClusterTheme(s.theme)
		s.view.Style = model.NodeStyle(s.style)
		s.accepted = true
		return true, cmd
	case huh.StateAborted:
		return true, cmd
	}
	return false, cmd
}

func (s *settingsForm) render() string {
	return s.form.View()
}
