package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"gitlab.com/tozd/go/errors"

	"stylebook/internal/adapters/tui/styles"
	"stylebook/internal/application"
	"stylebook/internal/application/commands"
	"stylebook/internal/domain"
	"stylebook/internal/ports"
)

// ProfilesKeyMap defines key bindings for the profiles view
type ProfilesKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Open     key.Binding
	Use      key.Binding
	Add      key.Binding
	Edit     key.Binding
	Delete   key.Binding
	Sync     key.Binding
	Cancel   key.Binding
	Folder   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

var ProfilesKeys = ProfilesKeyMap{
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
	Open: key.NewBinding(
		key.WithKeys("enter", "l"),
		key.WithHelp("enter", "catalog"),
	),
	Use: key.NewBinding(
		key.WithKeys("u"),
		key.WithHelp("u", "use"),
	),
	Add: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new"),
	),
	Edit: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "edit"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "delete"),
	),
	Sync: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "sync"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "cancel sync"),
	),
	Folder: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "downloads"),
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

type profilesLoadedMsg struct {
	profiles []*domain.Profile
	current  uuid.UUID
}

type errMsg struct{ err error }

type successMsg struct{ msg string }

type syncDoneMsg struct {
	task    ports.Task
	profile string
	kind    domain.CatalogKind
	count   int
	err     error
}

// ProfilesModel lists the stored profiles and runs catalog syncs
type ProfilesModel struct {
	ViewState
	ctx     context.Context
	app     *application.App
	runner  ports.TaskRunner
	opener  ports.FolderOpener
	pager   *Paginator
	confirm ConfirmationModel
	spinner spinner.Model

	profiles []*domain.Profile
	current  uuid.UUID
	syncing  map[string]ports.Task
}

// NewProfilesModel creates the profiles view. ctx carries the logger and
// bounds every store call and background sync.
func NewProfilesModel(ctx context.Context, app *application.App, runner ports.TaskRunner, opener ports.FolderOpener) *ProfilesModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Syncing
	return &ProfilesModel{
		ctx:     ctx,
		app:     app,
		runner:  runner,
		opener:  opener,
		pager:   NewPaginator(10),
		confirm: NewConfirmationModel(),
		spinner: s,
		syncing: make(map[string]ports.Task),
	}
}

// Init loads the profiles
func (m *ProfilesModel) Init() tea.Cmd {
	return m.Reload()
}

// Reload reads the profiles and the current selection from the store
func (m *ProfilesModel) Reload() tea.Cmd {
	return func() tea.Msg {
		profiles, err := m.app.Profiles.List(m.ctx)
		if err != nil {
			return errMsg{err}
		}
		msg := profilesLoadedMsg{profiles: profiles}
		current, err := m.app.Profiles.Current(m.ctx)
		if err != nil {
			return errMsg{err}
		}
		if current != nil {
			msg.current = current.ID
		}
		return msg
	}
}

// SetSize updates the view dimensions and the list window
func (m *ProfilesModel) SetSize(width, height int) {
	m.ViewState.SetSize(width, height)
	m.pager.SetPageSize(m.listHeight())
}

// Selected returns the profile under the cursor
func (m *ProfilesModel) Selected() *domain.Profile {
	if len(m.profiles) == 0 {
		return nil
	}
	return m.profiles[m.pager.Cursor()]
}

// Syncing reports how many syncs are in flight
func (m *ProfilesModel) Syncing() int {
	return len(m.syncing)
}

// OwnsBackground reports whether msg belongs to a background sync
func (m *ProfilesModel) OwnsBackground(msg tea.Msg) bool {
	switch msg.(type) {
	case syncDoneMsg, spinner.TickMsg:
		return true
	}
	return false
}

// Update handles messages for the profiles view
func (m *ProfilesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case profilesLoadedMsg:
		m.profiles = msg.profiles
		m.current = msg.current
		m.pager.SetTotal(len(m.profiles))
		return m, nil

	case errMsg:
		m.SetError(msg.err)
		return m, nil

	case successMsg:
		m.SetMessage(msg.msg, false)
		return m, m.Reload()

	case syncDoneMsg:
		if m.syncing[msg.task.Name()] == msg.task {
			delete(m.syncing, msg.task.Name())
		}
		switch {
		case errors.Is(msg.err, context.Canceled):
			m.SetMessage(fmt.Sprintf("Cancelled %s sync of %s", msg.kind, msg.profile), false)
		case msg.err != nil:
			m.SetMessage(fmt.Sprintf("%s %s: %v", msg.profile, msg.kind, msg.err), true)
		default:
			m.SetMessage(fmt.Sprintf("Synced %d %s entries for %s", msg.count, msg.kind, msg.profile), false)
		}
		return m, m.Reload()

	case spinner.TickMsg:
		if len(m.syncing) == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if handled, cmd := m.confirm.HandleKeyMsg(msg, m.deleteSelected); handled {
			return m, cmd
		}
		return m, m.handleKey(msg)
	}

	return m, nil
}

func (m *ProfilesModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, ProfilesKeys.Quit):
		return tea.Quit
	case key.Matches(msg, ProfilesKeys.Up):
		m.pager.CursorUp()
	case key.Matches(msg, ProfilesKeys.Down):
		m.pager.CursorDown()
	case key.Matches(msg, ProfilesKeys.PageUp):
		m.pager.PageUp()
	case key.Matches(msg, ProfilesKeys.PageDown):
		m.pager.PageDown()
	case key.Matches(msg, ProfilesKeys.Help):
		return func() tea.Msg { return SwitchToHelpMsg{} }
	case key.Matches(msg, ProfilesKeys.Add):
		return func() tea.Msg { return SwitchToFormMsg{} }
	case key.Matches(msg, ProfilesKeys.Folder):
		return m.openFolder()
	}

	p := m.Selected()
	if p == nil {
		return nil
	}

	switch {
	case key.Matches(msg, ProfilesKeys.Open):
		return func() tea.Msg { return SwitchToCatalogMsg{Profile: p} }
	case key.Matches(msg, ProfilesKeys.Edit):
		return func() tea.Msg { return SwitchToFormMsg{Profile: p} }
	case key.Matches(msg, ProfilesKeys.Use):
		return m.use(p)
	case key.Matches(msg, ProfilesKeys.Delete):
		m.confirm.Ask(fmt.Sprintf("Delete profile %q and its catalogs?", p.Name))
	case key.Matches(msg, ProfilesKeys.Sync):
		return m.sync(p)
	case key.Matches(msg, ProfilesKeys.Cancel):
		m.cancelSync(p)
	}
	return nil
}

func (m *ProfilesModel) use(p *domain.Profile) tea.Cmd {
	return func() tea.Msg {
		if _, err := commands.NewUseProfileCommand(m.app.Profiles, p.ID.String()).Execute(m.ctx); err != nil {
			return errMsg{err}
		}
		return successMsg{fmt.Sprintf("Using profile %s", p.Name)}
	}
}

func (m *ProfilesModel) deleteSelected() tea.Cmd {
	p := m.Selected()
	if p == nil {
		return nil
	}
	return func() tea.Msg {
		msg, err := commands.NewDeleteProfileCommand(m.app.Profiles, p.ID.String()).Execute(m.ctx)
		if err != nil {
			return errMsg{err}
		}
		return successMsg{msg}
	}
}

func (m *ProfilesModel) openFolder() tea.Cmd {
	return func() tea.Msg {
		folder, err := m.app.Prefs.OpenDownloadFolder(m.ctx, m.opener)
		if err != nil {
			return errMsg{err}
		}
		return successMsg{"Opened " + folder}
	}
}

// sync starts a background sync for every catalog of p that has a URL
// and is not already syncing
func (m *ProfilesModel) sync(p *domain.Profile) tea.Cmd {
	var cmds []tea.Cmd
	for _, kind := range domain.CatalogKinds {
		if p.CatalogURL(kind) == "" {
			continue
		}
		if _, running := m.syncing[application.SyncTaskName(p.ID, kind)]; running {
			continue
		}
		cmds = append(cmds, m.startSync(p, kind))
	}
	if len(cmds) == 0 {
		if p.TemplatesURL == "" && p.SymbologyURL == "" {
			m.SetMessage(fmt.Sprintf("%s has no catalog URLs", p.Name), true)
		}
		return nil
	}
	m.ClearMessage()
	cmds = append(cmds, m.spinner.Tick)
	return tea.Batch(cmds...)
}

func (m *ProfilesModel) startSync(p *domain.Profile, kind domain.CatalogKind) tea.Cmd {
	var (
		count    int
		syncErr  error
		finished bool
	)
	task := m.app.Catalogs.SyncInBackground(m.ctx, m.runner, p.ID, kind, func(n int, err error) {
		count, syncErr, finished = n, err, true
	})
	m.syncing[task.Name()] = task

	name := p.Name
	return func() tea.Msg {
		waitErr := task.Wait()
		msg := syncDoneMsg{task: task, profile: name, kind: kind, count: count, err: syncErr}
		if !finished {
			msg.err = waitErr
		}
		return msg
	}
}

func (m *ProfilesModel) cancelSync(p *domain.Profile) {
	for _, kind := range domain.CatalogKinds {
		if task, ok := m.syncing[application.SyncTaskName(p.ID, kind)]; ok {
			task.Cancel()
		}
	}
}

// View renders the profiles view
func (m *ProfilesModel) View() string {
	v := NewViewBuilder().Title("Stylebook")

	if len(m.profiles) == 0 {
		v.Muted("No profiles yet. Press n to add one.")
	} else {
		start, end := m.pager.VisibleRange()
		for i := start; i < end; i++ {
			v.Line(m.renderRow(i))
		}
		if end-start < len(m.profiles) {
			v.Muted(fmt.Sprintf("%d-%d of %d", start+1, end, len(m.profiles)))
		}
	}
	v.BlankLine()

	if p := m.Selected(); p != nil {
		v.Block(RenderProfileDetail(p))
	}

	if m.confirm.Active {
		v.Line(m.confirm.View()).BlankLine()
	} else {
		v.Message(m.Message, m.MessageErr)
	}

	return v.Help(
		ProfilesKeys.Open, ProfilesKeys.Use, ProfilesKeys.Add, ProfilesKeys.Edit,
		ProfilesKeys.Delete, ProfilesKeys.Sync, ProfilesKeys.Help, ProfilesKeys.Quit,
	).String()
}

func (m *ProfilesModel) renderRow(i int) string {
	p := m.profiles[i]

	marker := "  "
	if p.ID == m.current {
		marker = styles.CurrentMarker.Render("* ")
	}

	label := p.Name
	if p.Title != "" && p.Title != p.Name {
		label += " " + RenderMuted(p.Title)
	}

	var syncing []string
	for _, kind := range domain.CatalogKinds {
		if _, ok := m.syncing[application.SyncTaskName(p.ID, kind)]; ok {
			syncing = append(syncing, string(kind))
		}
	}
	if len(syncing) > 0 {
		label += " " + m.spinner.View() + styles.Syncing.Render(" syncing "+strings.Join(syncing, ", "))
	}

	if i == m.pager.Cursor() {
		return marker + styles.RowSelected.Render(p.Name) + strings.TrimPrefix(label, p.Name)
	}
	return marker + styles.Row.Render(label)
}
