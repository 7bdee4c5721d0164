package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"stylebook/internal/application"
	"stylebook/internal/application/commands"
	"stylebook/internal/domain"
)

// RegisterReadTools adds all read-only profile and catalog tools to the MCP server.
func RegisterReadTools(s *server.MCPServer, app *application.App) {
	s.AddTool(listProfilesTool(), listProfilesHandler(app))
	s.AddTool(currentProfileTool(), currentProfileHandler(app))
	s.AddTool(findProfileTool(), findProfileHandler(app))
	s.AddTool(listCatalogTool(), listCatalogHandler(app))
	s.AddTool(searchCatalogTool(), searchCatalogHandler(app))
	s.AddTool(customPropertiesTool(), customPropertiesHandler(app))
}

// --- list_profiles ---

func listProfilesTool() mcp.Tool {
	return mcp.NewTool("list_profiles",
		mcp.WithDescription("List all stored profiles with their ids, catalog URLs and entry counts. The current profile is marked with *."),
	)
}

func listProfilesHandler(app *application.App) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		profiles, err := app.Profiles.List(ctx)
		if err != nil {
			return toolError(err)
		}
		current, err := app.Profiles.Current(ctx)
		if err != nil {
			return toolError(err)
		}
		if len(profiles) == 0 {
			return mcp.NewToolResultText("No profiles."), nil
		}

		var sb strings.Builder
		for _, p := range profiles {
			marker := " "
			if current != nil && current.ID == p.ID {
				marker = "*"
			}
			fmt.Fprintf(&sb, "%s %s\n", marker, formatProfile(p))
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- current_profile ---

func currentProfileTool() mcp.Tool {
	return mcp.NewTool("current_profile",
		mcp.WithDescription("Show the currently selected profile."),
	)
}

func currentProfileHandler(app *application.App) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		p, err := app.Profiles.Current(ctx)
		if err != nil {
			return toolError(err)
		}
		if p == nil {
			return mcp.NewToolResultText("No profile selected."), nil
		}
		return mcp.NewToolResultText(formatProfileDetail(p)), nil
	}
}

// --- find_profile ---

func findProfileTool() mcp.Tool {
	return mcp.NewTool("find_profile",
		mcp.WithDescription("Find a profile by UUID, name or title."),
		mcp.WithString("profile",
			mcp.Description("Profile UUID, name or title"),
			mcp.Required(),
		),
	)
}

func findProfileHandler(app *application.App) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ref := req.GetString("profile", "")
		if ref == "" {
			return toolError(fmt.Errorf("profile is required"))
		}

		p, err := app.Profiles.Resolve(ctx, ref)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(formatProfileDetail(p)), nil
	}
}

// --- list_catalog ---

func listCatalogTool() mcp.Tool {
	return mcp.NewTool("list_catalog",
		mcp.WithDescription("List the cached templates or symbology of a profile, sorted by title."),
		mcp.WithString("kind",
			mcp.Description("Catalog kind: templates or symbology"),
			mcp.Required(),
			mcp.Enum("templates", "symbology"),
		),
		mcp.WithString("profile",
			mcp.Description("Profile UUID, name or title. Omit to use the current profile."),
		),
		mcp.WithString("query",
			mcp.Description("Only entries whose id, name or title contains this text"),
		),
	)
}

func listCatalogHandler(app *application.App) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		kind, err := application.ValidateKind(req.GetString("kind", ""))
		if err != nil {
			return toolError(err)
		}

		cmd := commands.NewListCatalogCommand(app, req.GetString("profile", ""), kind)
		cmd.Query = req.GetString("query", "")
		p, entries, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		if len(entries) == 0 {
			return mcp.NewToolResultText(fmt.Sprintf("No %s cached for %s.", kind, p.Name)), nil
		}

		var sb strings.Builder
		for _, e := range entries {
			sb.WriteString(formatEntry(e))
			sb.WriteByte('\n')
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- search_catalog ---

func searchCatalogTool() mcp.Tool {
	return mcp.NewTool("search_catalog",
		mcp.WithDescription("Fuzzy search cached templates and symbology across every profile, best matches first."),
		mcp.WithString("query",
			mcp.Description("Text to match against entry ids, names and titles (at least 2 characters)"),
			mcp.Required(),
		),
		mcp.WithString("kind",
			mcp.Description("Restrict to one catalog kind"),
			mcp.Enum("templates", "symbology"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum results (default 20)"),
		),
	)
}

func searchCatalogHandler(app *application.App) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return toolError(err)
		}

		cmd := commands.NewSearchCatalogCommand(app, query)
		cmd.Limit = req.GetInt("limit", 20)
		if k := req.GetString("kind", ""); k != "" {
			kind, err := application.ValidateKind(k)
			if err != nil {
				return toolError(err)
			}
			cmd.Kinds = []domain.CatalogKind{kind}
		}

		hits, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		if len(hits) == 0 {
			return mcp.NewToolResultText(fmt.Sprintf("No catalog entries match %q.", query)), nil
		}

		var sb strings.Builder
		for _, h := range hits {
			fmt.Fprintf(&sb, "%s/%s  %s\n", h.Profile.Name, h.Kind, formatEntry(h.Entry))
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- custom_properties ---

func customPropertiesTool() mcp.Tool {
	return mcp.NewTool("custom_properties",
		mcp.WithDescription("Show the custom layout properties (heading, subheading, narrative, logos) stored for a template."),
		mcp.WithString("template_id",
			mcp.Description("Template id"),
			mcp.Required(),
		),
		mcp.WithString("profile",
			mcp.Description("Profile UUID, name or title. Omit to use the current profile."),
		),
	)
}

func customPropertiesHandler(app *application.App) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		p, err := profileArg(ctx, app, req)
		if err != nil {
			return toolError(err)
		}

		cp, err := app.Profiles.CustomProperties(ctx, p.ID, req.GetString("template_id", ""))
		if err != nil {
			return toolError(err)
		}

		var sb strings.Builder
		for _, f := range cp.Fields() {
			fmt.Fprintf(&sb, "%s: %s\n", f.Key, f.Value.Or("(unset)"))
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- helpers ---

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

// profileArg resolves the optional "profile" argument, falling back to the
// current profile
func profileArg(ctx context.Context, app *application.App, req mcp.CallToolRequest) (*domain.Profile, error) {
	if ref := req.GetString("profile", ""); ref != "" {
		return app.Profiles.Resolve(ctx, ref)
	}
	p, err := app.Profiles.Current(ctx)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, commands.ErrNoCurrentProfile
	}
	return p, nil
}

func formatProfile(p *domain.Profile) string {
	return fmt.Sprintf("%s  %s  (%d templates, %d symbology)", p.ID, p.Name, len(p.Templates), len(p.Symbology))
}

func formatProfileDetail(p *domain.Profile) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "id: %s\n", p.ID)
	fmt.Fprintf(&sb, "name: %s\n", p.Name)
	for _, kv := range [][2]string{
		{"title", p.Title},
		{"description", p.Description},
		{"path", p.Path},
		{"templates_url", p.TemplatesURL},
		{"symbology_url", p.SymbologyURL},
	} {
		if kv[1] != "" {
			fmt.Fprintf(&sb, "%s: %s\n", kv[0], kv[1])
		}
	}
	if !p.CreatedAt.IsZero() {
		fmt.Fprintf(&sb, "created: %s\n", p.CreatedAt.Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(&sb, "templates: %d\nsymbology: %d\n", len(p.Templates), len(p.Symbology))
	return sb.String()
}

func formatEntry(e domain.CatalogEntry) string {
	line := fmt.Sprintf("%s  %s", e.ID.Or(""), e.DisplayTitle())
	if ext, ok := e.Properties.Extension.Get(); ok {
		line += "  ." + strings.TrimPrefix(ext, ".")
	}
	if lic, ok := e.License.Get(); ok {
		line += "  [" + lic + "]"
	}
	return line
}
