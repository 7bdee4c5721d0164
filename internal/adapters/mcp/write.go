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

// RegisterWriteTools adds all tools that change stored profiles or files.
func RegisterWriteTools(s *server.MCPServer, app *application.App) {
	s.AddTool(saveProfileTool(), saveProfileHandler(app))
	s.AddTool(deleteProfileTool(), deleteProfileHandler(app))
	s.AddTool(useProfileTool(), useProfileHandler(app))
	s.AddTool(syncCatalogTool(), syncCatalogHandler(app))
	s.AddTool(downloadAssetTool(), downloadAssetHandler(app))
	s.AddTool(saveCustomPropertiesTool(), saveCustomPropertiesHandler(app))
	s.AddTool(setDownloadFolderTool(), setDownloadFolderHandler(app))
}

// --- save_profile ---

var profileFieldArgs = []struct {
	key  string
	desc string
}{
	{"name", "Profile name. Required when adding; a taken name gets a (n) suffix."},
	{"title", "Display title"},
	{"description", "Free-form description"},
	{"path", "Base URL or local directory that asset paths are resolved against"},
	{"templates_url", "URL of the templates catalog JSON"},
	{"symbology_url", "URL of the symbology catalog JSON"},
}

func saveProfileTool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Add a profile, or edit one when 'profile' is given. Only the fields passed are changed."),
		mcp.WithString("profile",
			mcp.Description("UUID, name or title of the profile to edit. Omit to add a new profile."),
		),
	}
	for _, f := range profileFieldArgs {
		opts = append(opts, mcp.WithString(f.key, mcp.Description(f.desc)))
	}
	opts = append(opts, mcp.WithBoolean("use", mcp.Description("Make the saved profile current")))
	return mcp.NewTool("save_profile", opts...)
}

func saveProfileHandler(app *application.App) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		fields := commands.ProfileFields{
			Name:         optionalArg(req, "name"),
			Title:        optionalArg(req, "title"),
			Description:  optionalArg(req, "description"),
			Path:         optionalArg(req, "path"),
			TemplatesURL: optionalArg(req, "templates_url"),
			SymbologyURL: optionalArg(req, "symbology_url"),
		}

		cmd := commands.NewSaveProfileCommand(app.Profiles, req.GetString("profile", ""), fields)
		cmd.Use = req.GetBool("use", false)
		result, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(result.Message), nil
	}
}

// --- delete_profile ---

func deleteProfileTool() mcp.Tool {
	return mcp.NewTool("delete_profile",
		mcp.WithDescription("Delete a profile with its cached catalogs and custom properties. Clears the current selection if it pointed at this profile."),
		mcp.WithString("profile",
			mcp.Description("Profile UUID, name or title"),
			mcp.Required(),
		),
	)
}

func deleteProfileHandler(app *application.App) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		msg, err := commands.NewDeleteProfileCommand(app.Profiles, req.GetString("profile", "")).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(msg), nil
	}
}

// --- use_profile ---

func useProfileTool() mcp.Tool {
	return mcp.NewTool("use_profile",
		mcp.WithDescription("Make a profile the current one."),
		mcp.WithString("profile",
			mcp.Description("Profile UUID, name or title"),
			mcp.Required(),
		),
	)
}

func useProfileHandler(app *application.App) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		p, err := commands.NewUseProfileCommand(app.Profiles, req.GetString("profile", "")).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(fmt.Sprintf("Current profile: %s (%s)", p.Name, p.ID)), nil
	}
}

// --- sync_catalog ---

func syncCatalogTool() mcp.Tool {
	return mcp.NewTool("sync_catalog",
		mcp.WithDescription("Fetch catalog documents from the profile's URLs and replace the cached entries. An empty remote catalog keeps the cached entries."),
		mcp.WithString("profile",
			mcp.Description("Profile UUID, name or title. Omit to use the current profile."),
		),
		mcp.WithString("kind",
			mcp.Description("Only sync this kind: templates or symbology. Omit for both."),
			mcp.Enum("templates", "symbology"),
		),
		mcp.WithBoolean("all",
			mcp.Description("Sync every stored profile"),
		),
	)
}

func syncCatalogHandler(app *application.App) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cmd := commands.NewSyncCatalogCommand(app, req.GetString("profile", ""))
		cmd.All = req.GetBool("all", false)
		if k := req.GetString("kind", ""); k != "" {
			kind, err := application.ValidateKind(k)
			if err != nil {
				return toolError(err)
			}
			cmd.Kinds = []domain.CatalogKind{kind}
		}

		outcomes, err := cmd.Execute(ctx)
		if len(outcomes) == 0 && err != nil {
			return toolError(err)
		}

		var sb strings.Builder
		for _, o := range outcomes {
			sb.WriteString(o.String())
			sb.WriteByte('\n')
		}
		if err != nil {
			return mcp.NewToolResultError(sb.String()), nil
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- download_asset ---

func downloadAssetTool() mcp.Tool {
	return mcp.NewTool("download_asset",
		mcp.WithDescription("Download the file of a catalog entry into the configured download folder."),
		mcp.WithString("kind",
			mcp.Description("Catalog kind: templates or symbology"),
			mcp.Required(),
			mcp.Enum("templates", "symbology"),
		),
		mcp.WithString("entry_id",
			mcp.Description("Catalog entry id"),
			mcp.Required(),
		),
		mcp.WithString("profile",
			mcp.Description("Profile UUID, name or title. Omit to use the current profile."),
		),
	)
}

func downloadAssetHandler(app *application.App) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		kind, err := application.ValidateKind(req.GetString("kind", ""))
		if err != nil {
			return toolError(err)
		}

		res, err := commands.NewDownloadCommand(app, req.GetString("profile", ""), kind, req.GetString("entry_id", "")).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(fmt.Sprintf("Downloaded %s (%d bytes) to %s", res.URL, res.Size, res.Path)), nil
	}
}

// --- save_custom_properties ---

func saveCustomPropertiesTool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Set custom layout properties of a template. Fields passed as empty strings are stored empty; omitted fields are cleared."),
		mcp.WithString("template_id",
			mcp.Description("Template id"),
			mcp.Required(),
		),
		mcp.WithString("profile",
			mcp.Description("Profile UUID, name or title. Omit to use the current profile."),
		),
	}
	for _, key := range []string{"heading", "subheading", "narrative", "logo_1", "logo_2", "logo_3"} {
		opts = append(opts, mcp.WithString(key, mcp.Description(strings.ReplaceAll(key, "_", " "))))
	}
	return mcp.NewTool("save_custom_properties", opts...)
}

func saveCustomPropertiesHandler(app *application.App) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		p, err := profileArg(ctx, app, req)
		if err != nil {
			return toolError(err)
		}

		cp := domain.CustomProperties{
			Heading:    optionalArg(req, "heading"),
			Subheading: optionalArg(req, "subheading"),
			Narrative:  optionalArg(req, "narrative"),
			Logo1:      optionalArg(req, "logo_1"),
			Logo2:      optionalArg(req, "logo_2"),
			Logo3:      optionalArg(req, "logo_3"),
		}
		templateID := req.GetString("template_id", "")
		if err := app.Profiles.SaveCustomProperties(ctx, p.ID, templateID, cp); err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(fmt.Sprintf("Saved custom properties of %s in %s", templateID, p.Name)), nil
	}
}

// --- set_download_folder ---

func setDownloadFolderTool() mcp.Tool {
	return mcp.NewTool("set_download_folder",
		mcp.WithDescription("Set the folder assets are downloaded into. An empty value clears it."),
		mcp.WithString("folder",
			mcp.Description("Absolute folder path"),
		),
	)
}

func setDownloadFolderHandler(app *application.App) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		folder := req.GetString("folder", "")
		if err := app.Prefs.SetDownloadFolder(ctx, folder); err != nil {
			return toolError(err)
		}
		if folder == "" {
			return mcp.NewToolResultText("Download folder cleared"), nil
		}
		return mcp.NewToolResultText("Download folder: " + folder), nil
	}
}

// optionalArg returns a string argument that was actually passed
func optionalArg(req mcp.CallToolRequest, key string) domain.Optional[string] {
	v, ok := req.GetArguments()[key]
	if !ok {
		return domain.None[string]()
	}
	s, ok := v.(string)
	if !ok {
		return domain.None[string]()
	}
	return domain.Some(s)
}
