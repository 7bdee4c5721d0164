package views

import (
	"context"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"stylebook/internal/adapters/tui/styles"
	"stylebook/internal/application"
	"stylebook/internal/application/commands"
	"stylebook/internal/domain"
	"stylebook/internal/ports"
)

// CatalogKeyMap defines key bindings for the catalog view
type CatalogKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Kind     key.Binding
	Filter   key.Binding
	Copy     key.Binding
	Download key.Binding
	Edit     key.Binding
	Back     key.Binding
	Help     key.Binding
	Quit     key.Binding
}

var CatalogKeys = CatalogKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("pgup"),
		key.WithHelp("pgup", "page up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("pgdown"),
		key.WithHelp("pgdown", "page down"),
	),
	Kind: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "templates/symbology"),
	),
	Filter: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "filter"),
	),
	Copy: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy id"),
	),
	Download: key.NewBinding(
		key.WithKeys("D"),
		key.WithHelp("D", "download"),
	),
	Edit: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "download and edit"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc", "h"),
		key.WithHelp("esc", "back"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// editAssetMsg asks the view to open a freshly downloaded file
type editAssetMsg struct {
	path string
}

type catalogLoadedMsg struct {
	profile *domain.Profile
	kind    domain.CatalogKind
	entries []domain.CatalogEntry
}

// CatalogModel browses one catalog of a profile
type CatalogModel struct {
	ViewState
	ctx    context.Context
	app    *application.App
	editor ports.AssetEditor
	pager  *Paginator
	query  textinput.Model

	// copy writes to the system clipboard; replaced in tests
	copy func(string) error

	profile   *domain.Profile
	kind      domain.CatalogKind
	entries   []domain.CatalogEntry
	visible   []domain.CatalogEntry
	filtering bool
}

// NewCatalogModel creates the catalog view
func NewCatalogModel(ctx context.Context, app *application.App, editor ports.AssetEditor) *CatalogModel {
	q := textinput.New()
	q.Placeholder = "id, name or title"
	q.Prompt = "/ "
	q.CharLimit = 120
	return &CatalogModel{
		ctx:    ctx,
		app:    app,
		editor: editor,
		pager:  NewPaginator(10),
		query:  q,
		copy:   clipboard.WriteAll,
		kind:   domain.KindTemplates,
	}
}

// Init does nothing until a profile is opened
func (m *CatalogModel) Init() tea.Cmd {
	return nil
}

// Open shows the templates catalog of p
func (m *CatalogModel) Open(p *domain.Profile) tea.Cmd {
	m.profile = p
	m.kind = domain.KindTemplates
	m.filtering = false
	m.query.SetValue("")
	m.query.Blur()
	m.ClearMessage()
	m.pager.SetCursor(0)
	return m.Reload()
}

// Profile returns the profile being browsed
func (m *CatalogModel) Profile() *domain.Profile {
	return m.profile
}

// Reload reads the current catalog from the store
func (m *CatalogModel) Reload() tea.Cmd {
	if m.profile == nil {
		return nil
	}
	ref, kind := m.profile.ID.String(), m.kind
	return func() tea.Msg {
		p, entries, err := commands.NewListCatalogCommand(m.app, ref, kind).Execute(m.ctx)
		if err != nil {
			return errMsg{err}
		}
		return catalogLoadedMsg{profile: p, kind: kind, entries: entries}
	}
}

// SetSize updates the view dimensions and the list window
func (m *CatalogModel) SetSize(width, height int) {
	m.ViewState.SetSize(width, height)
	// the detail pane takes a few rows
	m.pager.SetPageSize(m.listHeight() - 6)
}

// Selected returns the entry under the cursor
func (m *CatalogModel) Selected() (domain.CatalogEntry, bool) {
	if len(m.visible) == 0 {
		return domain.CatalogEntry{}, false
	}
	return m.visible[m.pager.Cursor()], true
}

// Update handles messages for the catalog view
func (m *CatalogModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case catalogLoadedMsg:
		if msg.kind != m.kind {
			return m, nil
		}
		m.profile = msg.profile
		m.entries = msg.entries
		m.applyFilter()
		return m, nil

	case errMsg:
		m.SetError(msg.err)
		return m, nil

	case successMsg:
		m.SetMessage(msg.msg, false)
		return m, nil

	case editAssetMsg:
		return m, m.edit(msg.path)

	case tea.KeyMsg:
		if m.filtering {
			return m, m.updateFilter(msg)
		}
		return m, m.handleKey(msg)
	}

	return m, nil
}

func (m *CatalogModel) updateFilter(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		m.filtering = false
		m.query.Blur()
		return nil
	case tea.KeyEsc:
		m.filtering = false
		m.query.Blur()
		m.query.SetValue("")
		m.applyFilter()
		return nil
	}

	var cmd tea.Cmd
	m.query, cmd = m.query.Update(msg)
	m.applyFilter()
	return cmd
}

func (m *CatalogModel) applyFilter() {
	m.visible = commands.FilterEntries(m.entries, m.query.Value())
	m.pager.SetTotal(len(m.visible))
}

func (m *CatalogModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, CatalogKeys.Quit):
		return tea.Quit
	case key.Matches(msg, CatalogKeys.Back):
		return func() tea.Msg { return SwitchToProfilesMsg{} }
	case key.Matches(msg, CatalogKeys.Help):
		return func() tea.Msg { return SwitchToHelpMsg{} }
	case key.Matches(msg, CatalogKeys.Up):
		m.pager.CursorUp()
	case key.Matches(msg, CatalogKeys.Down):
		m.pager.CursorDown()
	case key.Matches(msg, CatalogKeys.PageUp):
		m.pager.PageUp()
	case key.Matches(msg, CatalogKeys.PageDown):
		m.pager.PageDown()
	case key.Matches(msg, CatalogKeys.Kind):
		m.kind = nextKind(m.kind)
		m.entries = nil
		m.applyFilter()
		m.pager.SetCursor(0)
		m.ClearMessage()
		return m.Reload()
	case key.Matches(msg, CatalogKeys.Filter):
		m.filtering = true
		return m.query.Focus()
	case key.Matches(msg, CatalogKeys.Copy):
		m.copyID()
	case key.Matches(msg, CatalogKeys.Download):
		return m.download(false)
	case key.Matches(msg, CatalogKeys.Edit):
		return m.download(true)
	}
	return nil
}

func nextKind(kind domain.CatalogKind) domain.CatalogKind {
	for i, k := range domain.CatalogKinds {
		if k == kind {
			return domain.CatalogKinds[(i+1)%len(domain.CatalogKinds)]
		}
	}
	return domain.KindTemplates
}

func (m *CatalogModel) copyID() {
	e, ok := m.Selected()
	if !ok {
		return
	}
	id := e.ID.Or("")
	if err := m.copy(id); err != nil {
		m.SetMessage(fmt.Sprintf("Copy failed: %v", err), true)
		return
	}
	m.SetMessage(fmt.Sprintf("Copied %s", id), false)
}

// download saves the selected entry; with edit set the saved file is
// then opened in the editor
func (m *CatalogModel) download(edit bool) tea.Cmd {
	e, ok := m.Selected()
	if !ok || m.profile == nil {
		return nil
	}
	if edit && m.editor == nil {
		m.SetMessage("No editor available", true)
		return nil
	}
	ref, kind, id := m.profile.ID.String(), m.kind, e.ID.Or("")
	m.SetMessage("Downloading "+e.DisplayTitle()+"...", false)
	return func() tea.Msg {
		res, err := commands.NewDownloadCommand(m.app, ref, kind, id).Execute(m.ctx)
		if err != nil {
			return errMsg{err}
		}
		if edit {
			return editAssetMsg{path: res.Path}
		}
		return successMsg{fmt.Sprintf("Saved %s (%d bytes)", res.Path, res.Size)}
	}
}

func (m *CatalogModel) edit(path string) tea.Cmd {
	c, err := m.editor.Command(path)
	if err != nil {
		m.SetError(err)
		return nil
	}
	return tea.ExecProcess(c, func(err error) tea.Msg {
		if err != nil {
			return errMsg{err}
		}
		return successMsg{"Edited " + path}
	})
}

// View renders the catalog view
func (m *CatalogModel) View() string {
	name := ""
	if m.profile != nil {
		name = m.profile.Name
	}
	v := NewViewBuilder().Title(name).Line(RenderKindTabs(m.kind)).BlankLine()

	if m.filtering || m.query.Value() != "" {
		v.Line(m.query.View()).BlankLine()
	}

	switch {
	case len(m.entries) == 0:
		v.Muted(fmt.Sprintf("No %s stored. Sync the profile to fetch them.", m.kind))
	case len(m.visible) == 0:
		v.Muted("Nothing matches the filter.")
	default:
		start, end := m.pager.VisibleRange()
		for i := start; i < end; i++ {
			v.Line(m.renderRow(i))
		}
		v.Muted(fmt.Sprintf("%d of %d", len(m.visible), len(m.entries)))
	}
	v.BlankLine()

	if e, ok := m.Selected(); ok {
		v.Block(RenderEntryDetail(e))
	}

	return v.Message(m.Message, m.MessageErr).Help(
		CatalogKeys.Kind, CatalogKeys.Filter, CatalogKeys.Copy,
		CatalogKeys.Download, CatalogKeys.Edit, CatalogKeys.Back, CatalogKeys.Quit,
	).String()
}

func (m *CatalogModel) renderRow(i int) string {
	e := m.visible[i]
	title := e.DisplayTitle()
	id := RenderMuted(e.ID.Or(""))
	if i == m.pager.Cursor() {
		return "  " + styles.RowSelected.Render(title) + " " + id
	}
	return "  " + styles.Row.Render(title) + " " + id
}
