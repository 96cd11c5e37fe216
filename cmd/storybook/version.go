package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/HendryAvila/storybook/internal/convert"
	"github.com/HendryAvila/storybook/internal/server"
	"github.com/HendryAvila/storybook/internal/updater"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and document capabilities",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		check, _ := cmd.Flags().GetBool("check")
		caps := convert.New().Capabilities()

		var latest *updater.Check
		if check {
			res, err := updater.New().Check(cmd.Context(), server.Version)
			if err != nil {
				logger.Warn().Err(err).Msg("update check failed")
			} else {
				latest = &res
			}
		}

		if jsonOutput {
			return printJSON(map[string]any{
				"version":      server.Version,
				"capabilities": caps,
				"update":       latest,
			})
		}
		fmt.Printf("storybook v%s\n", server.Version)
		for _, f := range []convert.Format{convert.FormatDocx, convert.FormatPDF, convert.FormatText} {
			fmt.Printf("  %-8s %v\n", f, caps[f])
		}
		if latest != nil && latest.UpdateAvailable {
			fmt.Printf("\nUpdate available: v%s → v%s\n  Run: storybook update\n  Release: %s\n",
				latest.Current, latest.Latest, latest.ReleaseURL)
		}
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Replace this binary with the latest release",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		exe, err := os.Executable()
		if err != nil {
			return fmt.Errorf("finding current executable: %w", err)
		}
		fmt.Fprintln(os.Stderr, "Checking for updates...")
		version, err := updater.New().Update(cmd.Context(), server.Version, exe)
		if errors.Is(err, updater.ErrUpToDate) {
			fmt.Fprintf(os.Stderr, "Already at the latest version (v%s)\n", server.Version)
			return nil
		}
		if err != nil {
			return fmt.Errorf("update failed: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Updated to v%s. Restart running storybook processes to use it.\n", version)
		return nil
	},
}

func init() {
	versionCmd.Flags().Bool("check", false, "Also check GitHub for a newer release")
	rootCmd.AddCommand(versionCmd, updateCmd)
}
