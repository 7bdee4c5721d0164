package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"stylebook/internal/application"
	"stylebook/internal/application/commands"
	"stylebook/internal/domain"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage profiles",
	Long: `Add, edit, delete and select profiles.

Examples:
  stylebook-cli profile list
  stylebook-cli profile add --name HOT --templates-url https://example.org/templates.json --use
  stylebook-cli profile edit HOT --title "Humanitarian OSM Team"
  stylebook-cli profile use HOT`,
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles; the current one is marked with *",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app := GetApp()

		profiles, err := app.Profiles.List(ctx)
		if err != nil {
			return err
		}
		current, err := app.Profiles.Current(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(profiles) == 0 {
			fmt.Fprintln(out, "No profiles")
			return nil
		}
		for _, p := range profiles {
			marker := "  "
			if current != nil && current.ID == p.ID {
				marker = "* "
			}
			fmt.Fprintf(out, "%s%s %s\n", marker, p.ID, p.Name)
		}
		return nil
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show [profile]",
	Short: "Show a profile, the current one by default",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := commands.ResolveProfile(cmd.Context(), GetApp().Profiles, argOrEmpty(args))
		if err != nil {
			return err
		}
		printProfile(cmd.OutOrStdout(), p)
		return nil
	},
}

var profileCurrentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show the current profile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := GetApp().Profiles.Current(cmd.Context())
		if err != nil {
			return err
		}
		if p == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No current profile")
			return nil
		}
		printProfile(cmd.OutOrStdout(), p)
		return nil
	},
}

var profileLatestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Show the most recently created profile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := GetApp().Profiles.Latest(cmd.Context())
		if err != nil {
			return err
		}
		if p == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No profiles")
			return nil
		}
		printProfile(cmd.OutOrStdout(), p)
		return nil
	},
}

var findStoreOrder bool

var profileFindCmd = &cobra.Command{
	Use:   "find <name>",
	Short: "Find a profile by name or title",
	Long: `Find a profile whose name or title equals the argument.

By default an exact name match wins over a title match. With --store-order
the first profile in store order that matches either is returned.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		profiles := GetApp().Profiles
		if findStoreOrder {
			profiles = application.NewProfileManager(env.Store, GetApp().Events,
				application.WithMatchPolicy(application.MatchStoreOrder))
		}
		p, err := profiles.FindByName(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printProfile(cmd.OutOrStdout(), p)
		return nil
	},
}

var profileUse bool

var profileAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a profile",
	Long: `Add a profile. If the name is taken the profile is saved as name(n).

Example:
  stylebook-cli profile add --name HOT \
    --path https://example.org/hot/ \
    --templates-url https://example.org/hot/templates.json \
    --symbology-url https://example.org/hot/symbology.json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := commands.NewSaveProfileCommand(GetApp().Profiles, "", profileFieldsFromFlags(cmd.Flags()))
		c.Use = profileUse
		res, err := c.Execute(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.Message)
		return nil
	},
}

var profileEditCmd = &cobra.Command{
	Use:   "edit <profile>",
	Short: "Edit a profile; only the given flags change",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := commands.NewSaveProfileCommand(GetApp().Profiles, args[0], profileFieldsFromFlags(cmd.Flags()))
		c.Use = profileUse
		res, err := c.Execute(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.Message)
		return nil
	},
}

var profileDeleteCmd = &cobra.Command{
	Use:   "delete <profile>",
	Short: "Delete a profile with its catalogs and template properties",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		msg, err := commands.NewDeleteProfileCommand(GetApp().Profiles, args[0]).Execute(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), msg)
		return nil
	},
}

var profileUseCmd = &cobra.Command{
	Use:   "use <profile>",
	Short: "Make a profile current",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := commands.NewUseProfileCommand(GetApp().Profiles, args[0]).Execute(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Using profile %s (%s)\n", p.Name, p.ID)
		return nil
	},
}

// profile field flags, in flag name order
var profileFieldFlags = []struct {
	name  string
	usage string
	field func(*commands.ProfileFields) *domain.Optional[string]
}{
	{"name", "profile name", func(f *commands.ProfileFields) *domain.Optional[string] { return &f.Name }},
	{"title", "display title", func(f *commands.ProfileFields) *domain.Optional[string] { return &f.Title }},
	{"description", "description", func(f *commands.ProfileFields) *domain.Optional[string] { return &f.Description }},
	{"path", "local directory or base URL the assets are downloaded from", func(f *commands.ProfileFields) *domain.Optional[string] { return &f.Path }},
	{"templates-url", "templates catalog URL or file", func(f *commands.ProfileFields) *domain.Optional[string] { return &f.TemplatesURL }},
	{"symbology-url", "symbology catalog URL or file", func(f *commands.ProfileFields) *domain.Optional[string] { return &f.SymbologyURL }},
}

func addProfileFieldFlags(cmd *cobra.Command) {
	for _, f := range profileFieldFlags {
		cmd.Flags().String(f.name, "", f.usage)
	}
	cmd.Flags().BoolVar(&profileUse, "use", false, "make the profile current")
}

// profileFieldsFromFlags sets the fields whose flags were given. An
// explicit empty value clears the field.
func profileFieldsFromFlags(flags *pflag.FlagSet) commands.ProfileFields {
	var fields commands.ProfileFields
	for _, f := range profileFieldFlags {
		if !flags.Changed(f.name) {
			continue
		}
		v, _ := flags.GetString(f.name)
		*f.field(&fields) = domain.Some(v)
	}
	return fields
}

func printProfile(w io.Writer, p *domain.Profile) {
	fmt.Fprintf(w, "%s (%s)\n", p.Name, p.ID)
	for _, row := range [][2]string{
		{"Title", p.Title},
		{"Description", p.Description},
		{"Path", p.Path},
		{"Templates URL", p.TemplatesURL},
		{"Symbology URL", p.SymbologyURL},
	} {
		if row[1] != "" {
			fmt.Fprintf(w, "  %-14s %s\n", row[0]+":", row[1])
		}
	}
	if !p.CreatedAt.IsZero() {
		fmt.Fprintf(w, "  %-14s %s\n", "Created:", p.CreatedAt.Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(w, "  %-14s %d templates, %d symbology\n", "Catalogs:", len(p.Templates), len(p.Symbology))
}

func argOrEmpty(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func init() {
	addProfileFieldFlags(profileAddCmd)
	addProfileFieldFlags(profileEditCmd)
	profileFindCmd.Flags().BoolVar(&findStoreOrder, "store-order", false, "return the first match in store order")

	profileCmd.AddCommand(profileListCmd, profileShowCmd, profileCurrentCmd, profileLatestCmd,
		profileFindCmd, profileAddCmd, profileEditCmd, profileDeleteCmd, profileUseCmd)
	rootCmd.AddCommand(profileCmd)
}
