package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"stylebook/internal/adapters/tui/views"
	"stylebook/internal/application"
	"stylebook/internal/ports"
)

// ViewState represents the current view
type ViewState int

const (
	ViewProfiles ViewState = iota
	ViewCatalog
	ViewForm
	ViewHelp
)

// EventMsg carries a store change into the program
type EventMsg struct {
	Event ports.Event
}

// App is the main TUI application model
type App struct {
	app *application.App

	state    ViewState
	profiles *views.ProfilesModel
	catalog  *views.CatalogModel
	form     *views.ProfileFormModel
	help     *views.HelpModel

	width  int
	height int
}

// NewApp creates a new TUI application
func NewApp(ctx context.Context, app *application.App, runner ports.TaskRunner, opener ports.FolderOpener, editor ports.AssetEditor) *App {
	return &App{
		app:      app,
		state:    ViewProfiles,
		profiles: views.NewProfilesModel(ctx, app, runner, opener),
		catalog:  views.NewCatalogModel(ctx, app, editor),
		form:     views.NewProfileFormModel(ctx, app),
		help:     views.NewHelpModel(),
	}
}

// Watch forwards store events to p so open views refresh when another
// process or a background sync changes the data they show
func Watch(app *application.App, p *tea.Program) {
	app.Events.Subscribe(func(ev ports.Event) {
		go p.Send(EventMsg{Event: ev})
	})
}

// State returns the active view
func (a *App) State() ViewState {
	return a.state
}

// Init initializes the application
func (a *App) Init() tea.Cmd {
	return a.profiles.Init()
}

// Update handles messages for the application
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.profiles.SetSize(msg.Width, msg.Height)
		a.catalog.SetSize(msg.Width, msg.Height)
		a.form.SetSize(msg.Width, msg.Height)
		a.help.SetSize(msg.Width, msg.Height)
		return a, nil

	case EventMsg:
		return a, a.refresh(msg.Event)

	// View switching messages
	case views.SwitchToProfilesMsg:
		a.state = ViewProfiles
		return a, a.profiles.Reload()

	case views.SwitchToCatalogMsg:
		a.state = ViewCatalog
		return a, a.catalog.Open(msg.Profile)

	case views.SwitchToFormMsg:
		a.state = ViewForm
		return a, a.form.Edit(msg.Profile)

	case views.SwitchToHelpMsg:
		a.state = ViewHelp
		return a, nil

	case views.FormDoneMsg:
		a.state = ViewProfiles
		a.profiles.SetMessage(msg.Message, false)
		return a, a.profiles.Reload()
	}

	// Background sync results and spinner ticks belong to the profiles view
	// whichever view is showing
	if a.profiles.OwnsBackground(msg) {
		_, cmd := a.profiles.Update(msg)
		return a, cmd
	}

	// Delegate to current view
	var cmd tea.Cmd
	switch a.state {
	case ViewProfiles:
		_, cmd = a.profiles.Update(msg)
	case ViewCatalog:
		_, cmd = a.catalog.Update(msg)
	case ViewForm:
		_, cmd = a.form.Update(msg)
	case ViewHelp:
		_, cmd = a.help.Update(msg)
	}

	return a, cmd
}

func (a *App) refresh(ev ports.Event) tea.Cmd {
	switch a.state {
	case ViewProfiles:
		return a.profiles.Reload()
	case ViewCatalog:
		p := a.catalog.Profile()
		if ev.Type == ports.EventProfilesChanged || (p != nil && ev.ProfileID == p.ID) {
			return a.catalog.Reload()
		}
	}
	return nil
}

// View renders the current view
func (a *App) View() string {
	switch a.state {
	case ViewCatalog:
		return a.catalog.View()
	case ViewForm:
		return a.form.View()
	case ViewHelp:
		return a.help.View()
	default:
		return a.profiles.View()
	}
}
