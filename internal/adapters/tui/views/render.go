package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"stylebook/internal/adapters/tui/styles"
	"stylebook/internal/domain"
)

// RenderMuted renders secondary text
func RenderMuted(text string) string {
	return styles.MutedText.Render(text)
}

// RenderLabelValue renders a label: value pair
func RenderLabelValue(label, value string) string {
	return styles.InputLabel.Render(label+":") + " " + value
}

func renderHelpLine(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, styles.HelpKey.Render(h.Key)+" "+styles.HelpDesc.Render(h.Desc))
	}
	return strings.Join(parts, styles.HelpSeparator.String())
}

// RenderKindTabs renders one tab per catalog kind with current highlighted
// in its kind color
func RenderKindTabs(current domain.CatalogKind) string {
	tabs := make([]string, 0, len(domain.CatalogKinds))
	for _, k := range domain.CatalogKinds {
		tabs = append(tabs, styles.KindTab(string(k), k == current).Render(string(k)))
	}
	return strings.Join(tabs, "  ")
}

// RenderEntryDetail lists the optional fields an entry carries; unset and
// empty fields are left out
func RenderEntryDetail(e domain.CatalogEntry) string {
	var lines []string
	add := func(label string, o domain.Optional[string]) {
		if v, ok := o.Get(); ok && v != "" {
			lines = append(lines, RenderLabelValue(label, v))
		}
	}
	add("Description", e.Description)
	add("License", e.License)
	add("File", entryFileName(e))
	add("Directory", e.Properties.Directory)
	add("Type", e.Properties.TemplateType)
	add("Thumbnail", e.Properties.Thumbnail)
	return strings.Join(lines, "\n")
}

// RenderProfileDetail shows where a profile's catalogs come from and how
// many entries are stored for each
func RenderProfileDetail(p *domain.Profile) string {
	lines := []string{RenderLabelValue("Path", orDash(p.Path))}
	for _, k := range domain.CatalogKinds {
		label := strings.ToUpper(string(k[:1])) + string(k[1:])
		lines = append(lines, RenderLabelValue(label,
			fmt.Sprintf("%s (%d)", orDash(p.CatalogURL(k)), len(p.Entries(k)))))
	}
	return strings.Join(lines, "\n")
}

func entryFileName(e domain.CatalogEntry) domain.Optional[string] {
	name, ok := e.Name.Get()
	if !ok {
		return domain.None[string]()
	}
	if ext, ok := e.Properties.Extension.Get(); ok && ext != "" {
		return domain.Some(name + "." + strings.TrimPrefix(ext, "."))
	}
	return domain.Some(name)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// ViewBuilder assembles a view line by line
type ViewBuilder struct {
	b strings.Builder
}

// NewViewBuilder creates an empty view builder
func NewViewBuilder() *ViewBuilder {
	return &ViewBuilder{}
}

// Title adds the view title followed by a blank line
func (v *ViewBuilder) Title(title string) *ViewBuilder {
	v.b.WriteString(styles.Title.Render(title))
	v.b.WriteString("\n\n")
	return v
}

// Line adds text and a newline
func (v *ViewBuilder) Line(text string) *ViewBuilder {
	v.b.WriteString(text)
	v.b.WriteString("\n")
	return v
}

// Block adds multi-line text followed by a blank line; empty text adds
// nothing
func (v *ViewBuilder) Block(text string) *ViewBuilder {
	if text == "" {
		return v
	}
	v.b.WriteString(text)
	v.b.WriteString("\n\n")
	return v
}

func (v *ViewBuilder) BlankLine() *ViewBuilder {
	v.b.WriteString("\n")
	return v
}

// Muted adds secondary text and a newline
func (v *ViewBuilder) Muted(text string) *ViewBuilder {
	return v.Line(RenderMuted(text))
}

// Message adds the status message, if any, styled as an error or a success
func (v *ViewBuilder) Message(message string, isError bool) *ViewBuilder {
	if message == "" {
		return v
	}
	style := styles.Success
	if isError {
		style = styles.ErrorMsg
	}
	return v.Block(style.Render(message))
}

// Help adds the key help line
func (v *ViewBuilder) Help(bindings ...key.Binding) *ViewBuilder {
	v.b.WriteString(renderHelpLine(bindings...))
	return v
}

// String returns the view wrapped in the app style
func (v *ViewBuilder) String() string {
	return styles.App.Render(v.b.String())
}
