package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"stylebook/internal/adapters/editor"
	"stylebook/internal/application/commands"
	"stylebook/internal/domain"
)

var (
	catalogProfile string
	catalogKind    string
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List, sync and import profile catalogs",
	Long: `Work with the templates and symbology catalogs of a profile.

Examples:
  stylebook-cli catalog list --kind symbology --query map
  stylebook-cli catalog search portrait
  stylebook-cli catalog sync --all
  stylebook-cli catalog import --kind templates ./templates.json
  stylebook-cli catalog props a4_portrait --heading "Flood extent"`,
}

var catalogQuery string

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the stored entries of a catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := domain.ParseCatalogKind(catalogKind)
		if err != nil {
			return err
		}

		c := commands.NewListCatalogCommand(GetApp(), catalogProfile, kind)
		c.Query = catalogQuery
		p, entries, err := c.Execute(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(entries) == 0 {
			fmt.Fprintf(out, "No %s stored for %s\n", kind, p.Name)
			return nil
		}
		for _, e := range entries {
			fmt.Fprintf(out, "%s %s\n", e.ID.Or(""), e.DisplayTitle())
		}
		return nil
	},
}

var searchLimit int

var catalogSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Fuzzy search the stored catalogs of every profile",
	Long: `Fuzzy search ids, names and titles across every profile. Every kind is
searched unless --kind is given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := commands.NewSearchCatalogCommand(GetApp(), strings.Join(args, " "))
		c.Limit = searchLimit
		if cmd.Flags().Changed("kind") {
			kind, err := domain.ParseCatalogKind(catalogKind)
			if err != nil {
				return err
			}
			c.Kinds = []domain.CatalogKind{kind}
		}

		hits, err := c.Execute(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(hits) == 0 {
			fmt.Fprintln(out, "No matches")
			return nil
		}
		for _, h := range hits {
			fmt.Fprintf(out, "%s/%s %s %s\n", h.Profile.Name, h.Kind, h.Entry.ID.Or(""), h.Entry.DisplayTitle())
		}
		return nil
	},
}

var (
	syncKinds    []string
	syncAll      bool
	syncParallel int
)

var catalogSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch catalogs and replace the stored entries",
	Long: `Fetch the catalogs of a profile (the current one by default, every
profile with --all) and replace the stored entries. An empty remote
catalog keeps what is stored. A failing catalog does not stop the others.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := commands.NewSyncCatalogCommand(GetApp(), catalogProfile)
		c.All = syncAll
		c.Parallel = syncParallel
		if len(syncKinds) > 0 {
			c.Kinds = nil
			for _, k := range syncKinds {
				kind, err := domain.ParseCatalogKind(k)
				if err != nil {
					return err
				}
				c.Kinds = append(c.Kinds, kind)
			}
		}

		outcomes, err := c.Execute(cmd.Context())
		for _, o := range outcomes {
			fmt.Fprintln(cmd.OutOrStdout(), o.String())
		}
		if err != nil && len(outcomes) > 0 {
			return errors.New("some catalogs failed to sync")
		}
		return err
	},
}

var catalogImportCmd = &cobra.Command{
	Use:   "import <file|->",
	Short: "Reconcile a catalog document read from a file or stdin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := domain.ParseCatalogKind(catalogKind)
		if err != nil {
			return err
		}

		var data []byte
		if args[0] == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			return err
		}

		msg, err := commands.NewImportCatalogCommand(GetApp(), catalogProfile, kind, data).Execute(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), msg)
		return nil
	},
}

var downloadEdit bool

var catalogDownloadCmd = &cobra.Command{
	Use:   "download <entry-id>",
	Short: "Download the asset of an entry into the download folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := domain.ParseCatalogKind(catalogKind)
		if err != nil {
			return err
		}
		res, err := commands.NewDownloadCommand(GetApp(), catalogProfile, kind, args[0]).Execute(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d bytes) from %s\n", res.Path, res.Size, res.URL)
		if downloadEdit {
			return editor.New(env.Config.Editor).Open(res.Path)
		}
		return nil
	},
}

var propsClear []string

var catalogPropsCmd = &cobra.Command{
	Use:   "props <template-id>",
	Short: "Show or edit the custom properties of a template",
	Long: `Show the custom properties of a template, or change them with flags.
Properties survive catalog syncs. --clear removes a property.

Example:
  stylebook-cli catalog props a4_portrait --heading "Flood extent" --logo_1 logos/hot.svg
  stylebook-cli catalog props a4_portrait --clear narrative`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app := GetApp()

		p, err := commands.ResolveProfile(ctx, app.Profiles, catalogProfile)
		if err != nil {
			return err
		}
		props, err := app.Profiles.CustomProperties(ctx, p.ID, args[0])
		if err != nil {
			return err
		}

		changed := false
		fields := propertyPointers(&props)
		for key, field := range fields {
			if cmd.Flags().Changed(key) {
				v, _ := cmd.Flags().GetString(key)
				*field = domain.Some(v)
				changed = true
			}
		}
		for _, key := range propsClear {
			field, ok := fields[key]
			if !ok {
				return errors.Errorf("unknown property %q", key)
			}
			*field = domain.None[string]()
			changed = true
		}

		if changed {
			if err := app.Profiles.SaveCustomProperties(ctx, p.ID, args[0], props); err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		for _, f := range props.Fields() {
			if v, ok := f.Value.Get(); ok {
				fmt.Fprintf(out, "%-11s %s\n", f.Key+":", v)
			}
		}
		return nil
	},
}

func propertyPointers(c *domain.CustomProperties) map[string]*domain.Optional[string] {
	return map[string]*domain.Optional[string]{
		"heading":    &c.Heading,
		"subheading": &c.Subheading,
		"narrative":  &c.Narrative,
		"logo_1":     &c.Logo1,
		"logo_2":     &c.Logo2,
		"logo_3":     &c.Logo3,
	}
}

func init() {
	kinds := make([]string, 0, len(domain.CatalogKinds))
	for _, k := range domain.CatalogKinds {
		kinds = append(kinds, string(k))
	}

	catalogCmd.PersistentFlags().StringVarP(&catalogProfile, "profile", "p", "", "profile id or name (default: current)")
	catalogCmd.PersistentFlags().StringVarP(&catalogKind, "kind", "k", string(domain.KindTemplates),
		"catalog kind: "+strings.Join(kinds, ", "))

	catalogListCmd.Flags().StringVarP(&catalogQuery, "query", "q", "", "keep entries whose id, name or title contains this")

	catalogDownloadCmd.Flags().BoolVarP(&downloadEdit, "edit", "e", false, "open the saved file in the editor")

	catalogSearchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 20, "maximum matches (0 for all)")

	catalogSyncCmd.Flags().StringSliceVar(&syncKinds, "only", nil, "sync only these kinds (default: all)")
	catalogSyncCmd.Flags().BoolVar(&syncAll, "all", false, "sync every profile")
	catalogSyncCmd.Flags().IntVar(&syncParallel, "parallel", 4, "concurrent fetches with --all")

	for _, f := range (domain.CustomProperties{}).Fields() {
		catalogPropsCmd.Flags().String(f.Key, "", "set "+f.Key)
	}
	catalogPropsCmd.Flags().StringSliceVar(&propsClear, "clear", nil, "remove these properties")

	catalogCmd.AddCommand(catalogListCmd, catalogSearchCmd, catalogSyncCmd, catalogImportCmd, catalogDownloadCmd, catalogPropsCmd)
	rootCmd.AddCommand(catalogCmd)
}
