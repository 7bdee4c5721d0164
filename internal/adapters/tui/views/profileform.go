package views

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"stylebook/internal/application"
	"stylebook/internal/application/commands"
	"stylebook/internal/domain"
)

// form field order
const (
	fieldName = iota
	fieldTitle
	fieldDescription
	fieldPath
	fieldTemplatesURL
	fieldSymbologyURL
)

// ProfileFormModel adds a new profile or edits an existing one
type ProfileFormModel struct {
	ViewState
	ctx     context.Context
	app     *application.App
	form    *InputForm
	editing *domain.Profile
}

// NewProfileFormModel creates the profile form
func NewProfileFormModel(ctx context.Context, app *application.App) *ProfileFormModel {
	return &ProfileFormModel{
		ctx: ctx,
		app: app,
		form: NewInputForm(
			NewInputField("Name", "HOT", 80),
			NewInputField("Title", "Humanitarian OpenStreetMap Team", 200),
			NewInputField("Description", "", 500),
			NewInputField("Path", "https://example.org/styles/ or ~/styles", 0),
			NewInputField("Templates URL", "https://example.org/templates.json", 0),
			NewInputField("Symbology URL", "https://example.org/symbology.json", 0),
		),
	}
}

// Init starts the cursor blinking
func (m *ProfileFormModel) Init() tea.Cmd {
	return textinput.Blink
}

// Edit loads p into the form; nil clears it for a new profile
func (m *ProfileFormModel) Edit(p *domain.Profile) tea.Cmd {
	m.editing = p
	m.ClearMessage()
	if p == nil {
		m.form.Load()
	} else {
		m.form.Load(p.Name, p.Title, p.Description, p.Path, p.TemplatesURL, p.SymbologyURL)
	}
	return textinput.Blink
}

// Update handles messages for the form
func (m *ProfileFormModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case errMsg:
		m.SetError(msg.err)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.form.Keys.Cancel):
			return m, func() tea.Msg { return SwitchToProfilesMsg{} }
		case key.Matches(msg, m.form.Keys.Submit):
			return m, m.submit()
		}
	}

	return m, m.form.Update(msg)
}

// Command builds the save command from the form. New profiles send every
// field; edits only send what changed.
func (m *ProfileFormModel) Command() *commands.SaveProfileCommand {
	value := m.form.Changed
	ref := ""
	if m.editing == nil {
		value = func(i int) domain.Optional[string] { return domain.Some(m.form.Value(i)) }
	} else {
		ref = m.editing.ID.String()
	}

	return commands.NewSaveProfileCommand(m.app.Profiles, ref, commands.ProfileFields{
		Name:         value(fieldName),
		Title:        value(fieldTitle),
		Description:  value(fieldDescription),
		Path:         value(fieldPath),
		TemplatesURL: value(fieldTemplatesURL),
		SymbologyURL: value(fieldSymbologyURL),
	})
}

func (m *ProfileFormModel) submit() tea.Cmd {
	cmd := m.Command()
	if err := cmd.Validate(); err != nil {
		m.SetError(err)
		return nil
	}
	return func() tea.Msg {
		res, err := cmd.Execute(m.ctx)
		if err != nil {
			return errMsg{err}
		}
		return FormDoneMsg{Message: res.Message}
	}
}

// View renders the form
func (m *ProfileFormModel) View() string {
	title := "New profile"
	if m.editing != nil {
		title = "Edit " + m.editing.Name
	}

	v := NewViewBuilder().Title(title)
	for i := range m.form.Fields {
		v.Line(m.form.RenderField(i))
	}
	v.BlankLine()

	return v.Message(m.Message, m.MessageErr).Help(
		m.form.Keys.Next, m.form.Keys.Prev, m.form.Keys.Submit, m.form.Keys.Cancel,
	).String()
}
