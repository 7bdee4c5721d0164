package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"stylebook/internal/adapters/filesystem"
	"stylebook/internal/adapters/opener"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change application settings",
}

var clearDownloadFolder bool

var downloadFolderCmd = &cobra.Command{
	Use:   "download-folder [path]",
	Short: "Show or set the folder assets are downloaded into",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		prefs := GetApp().Prefs

		switch {
		case clearDownloadFolder:
			if err := prefs.SetDownloadFolder(ctx, ""); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Download folder cleared")
			return nil
		case len(args) == 1:
			folder := filesystem.ExpandHome(args[0])
			if err := prefs.SetDownloadFolder(ctx, folder); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Download folder set to %s\n", folder)
			return nil
		}

		folder, err := prefs.DownloadFolder(ctx)
		if err != nil {
			return err
		}
		if folder == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "No download folder set")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), folder)
		return nil
	},
}

var databaseCmd = &cobra.Command{
	Use:   "database",
	Short: "Print the settings database and config file in use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "database: %s\n", env.Store.Path())
		if p := env.Config.Path(); p != "" {
			fmt.Fprintf(out, "config:   %s\n", p)
		}
		return nil
	},
}

var openCmd = &cobra.Command{
	Use:   "open",
	Short: "Open the download folder in the file manager",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		folder, err := GetApp().Prefs.OpenDownloadFolder(cmd.Context(), opener.NewOpener())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Opened %s\n", folder)
		return nil
	},
}

func init() {
	downloadFolderCmd.Flags().BoolVar(&clearDownloadFolder, "clear", false, "unset the download folder")

	settingsCmd.AddCommand(downloadFolderCmd, databaseCmd)
	rootCmd.AddCommand(settingsCmd, openCmd)
}
