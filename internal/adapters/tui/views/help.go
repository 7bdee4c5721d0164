package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"stylebook/internal/adapters/tui/styles"
)

// HelpKeyMap defines key bindings for the help view
type HelpKeyMap struct {
	Close key.Binding
}

var HelpKeys = HelpKeyMap{
	Close: key.NewBinding(
		key.WithKeys("esc", "q", "?"),
		key.WithHelp("esc/q/?", "close"),
	),
}

// HelpModel is the model for the help view
type HelpModel struct {
	ViewState
}

// NewHelpModel creates a new help view model
func NewHelpModel() *HelpModel {
	return &HelpModel{}
}

// Init initializes the help view
func (m *HelpModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the help view
func (m *HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, HelpKeys.Close) {
		return m, func() tea.Msg {
			return SwitchToProfilesMsg{}
		}
	}
	return m, nil
}

// View renders the help view
func (m *HelpModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("Stylebook Help"))
	b.WriteString("\n\n")

	b.WriteString(styles.Subtitle.Render("Map template and symbology profiles"))
	b.WriteString("\n\n")

	section := func(name string, bindings ...key.Binding) {
		b.WriteString(styles.InputLabel.Render(name))
		b.WriteString("\n")
		for _, k := range bindings {
			h := k.Help()
			b.WriteString(helpLine(h.Key, h.Desc))
		}
		b.WriteString("\n")
	}

	section("Profiles",
		ProfilesKeys.Up, ProfilesKeys.Down, ProfilesKeys.Open, ProfilesKeys.Use,
		ProfilesKeys.Add, ProfilesKeys.Edit, ProfilesKeys.Delete,
		ProfilesKeys.Sync, ProfilesKeys.Cancel, ProfilesKeys.Folder,
	)
	section("Catalog",
		CatalogKeys.Kind, CatalogKeys.Filter, CatalogKeys.Copy,
		CatalogKeys.Download, CatalogKeys.Edit, CatalogKeys.Back,
	)
	section("General", ProfilesKeys.Help, ProfilesKeys.Quit)

	b.WriteString(styles.MutedText.Render("  * marks the current profile. Syncing replaces the stored catalog;"))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render("  an empty remote catalog keeps what is stored."))
	b.WriteString("\n\n")

	b.WriteString(styles.HelpDesc.Render("Press "))
	b.WriteString(styles.HelpKey.Render("esc"))
	b.WriteString(styles.HelpDesc.Render(" or "))
	b.WriteString(styles.HelpKey.Render("?"))
	b.WriteString(styles.HelpDesc.Render(" to close"))

	return styles.App.Render(b.String())
}

func helpLine(key, desc string) string {
	return "  " + styles.HelpKey.Render(padRight(key, 20)) + styles.HelpDesc.Render(desc) + "\n"
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}
