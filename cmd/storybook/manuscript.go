package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/HendryAvila/storybook/internal/library"
	"github.com/HendryAvila/storybook/internal/manuscript"
)

var manuscriptCmd = &cobra.Command{
	Use:     "manuscript",
	Aliases: []string{"ms"},
	Short:   "Read or replace a project's manuscript",
}

var manuscriptShowCmd = &cobra.Command{
	Use:   "show <project>",
	Short: "Print the manuscript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLibrary(func(lib *library.Library) error {
			p, content, err := lib.Manuscript(args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(map[string]any{"content": content, "word_count": p.Metadata.WordCount})
			}
			fmt.Print(content)
			if content != "" && !strings.HasSuffix(content, "\n") {
				fmt.Println()
			}
			return nil
		})
	},
}

var manuscriptWriteCmd = &cobra.Command{
	Use:   "write <project>",
	Short: "Replace the manuscript from stdin or a document",
	Long: `Replaces the manuscript with standard input, or with the converted text
of --file (.docx, .pdf, .txt, .md). The word count is recomputed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		return withLibrary(func(lib *library.Library) error {
			var (
				p   *manuscript.Project
				err error
			)
			if file != "" {
				p, err = lib.ReplaceManuscript(args[0], file)
			} else {
				var data []byte
				if data, err = io.ReadAll(os.Stdin); err != nil {
					return fmt.Errorf("reading stdin: %w", err)
				}
				p, err = lib.SaveManuscript(args[0], string(data))
			}
			if err != nil {
				return err
			}
			fmt.Printf("Saved manuscript of %s, %d words\n", p.Name, p.Metadata.WordCount)
			return nil
		})
	},
}

// ─── Characters ─────────────────────────────────────────────────────────────

var charactersCmd = &cobra.Command{
	Use:     "characters",
	Aliases: []string{"chars"},
	Short:   "Track the characters of a project",
}

var charactersListCmd = &cobra.Command{
	Use:   "list <project>",
	Short: "List tracked characters",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLibrary(func(lib *library.Library) error {
			p, err := lib.Get(args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(p.Characters)
			}
			if len(p.Characters) == 0 {
				fmt.Println("No characters tracked.")
				return nil
			}
			for _, c := range p.Characters {
				fmt.Printf("• %s", c.Name)
				if len(c.Aliases) > 0 {
					fmt.Printf(" (aka %s)", strings.Join(c.Aliases, ", "))
				}
				fmt.Println()
				if c.Description != "" {
					fmt.Printf("    %s\n", c.Description)
				}
				if len(c.Traits) > 0 {
					fmt.Printf("    traits: %s\n", strings.Join(c.Traits, ", "))
				}
				if c.FirstAppearance != "" {
					fmt.Printf("    first appears: %s\n", c.FirstAppearance)
				}
			}
			return nil
		})
	},
}

var charactersAddCmd = &cobra.Command{
	Use:   "add <project> <name>",
	Short: "Track a character, replacing one with the same name",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		fs := cmd.Flags()
		in := map[string]any{"name": args[1]}
		for _, key := range []string{"description", "first_appearance", "notes"} {
			if v, _ := fs.GetString(strings.ReplaceAll(key, "_", "-")); v != "" {
				in[key] = v
			}
		}
		in["aliases"], _ = fs.GetStringSlice("alias")
		in["traits"], _ = fs.GetStringSlice("trait")

		return withLibrary(func(lib *library.Library) error {
			p, c, err := lib.AddCharacter(args[0], in)
			if err != nil {
				return err
			}
			fmt.Printf("Tracked %s in %s (%d characters)\n", c.Name, p.Name, len(p.Characters))
			return nil
		})
	},
}

var charactersRemoveCmd = &cobra.Command{
	Use:   "remove <project> <name>",
	Short: "Stop tracking a character",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLibrary(func(lib *library.Library) error {
			p, err := lib.RemoveCharacter(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("Removed %s from %s\n", args[1], p.Name)
			return nil
		})
	},
}

// ─── Plot events ────────────────────────────────────────────────────────────

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Track the plot events of a project",
}

var plotListCmd = &cobra.Command{
	Use:   "list <project>",
	Short: "List plot events in insertion order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLibrary(func(lib *library.Library) error {
			p, err := lib.Get(args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(p.PlotEvents)
			}
			if len(p.PlotEvents) == 0 {
				fmt.Println("No plot events tracked.")
				return nil
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tCHAPTER\tWHEN\tIMPORTANCE")
			for _, e := range p.PlotEvents {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					e.ID, e.Title, orDash(e.ChapterReference), orDash(e.TimestampInStory), e.Importance)
			}
			return tw.Flush()
		})
	},
}

var plotAddCmd = &cobra.Command{
	Use:   "add <project> <id> <title>",
	Short: "Track a plot event, replacing one with the same id",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		fs := cmd.Flags()
		in := map[string]any{"id": args[1], "title": args[2]}
		for flag, key := range map[string]string{
			"description": "description",
			"chapter":     "chapter_reference",
			"when":        "timestamp_in_story",
			"importance":  "importance",
			"notes":       "notes",
		} {
			if v, _ := fs.GetString(flag); v != "" {
				in[key] = v
			}
		}
		in["characters_involved"], _ = fs.GetStringSlice("character")

		return withLibrary(func(lib *library.Library) error {
			p, e, err := lib.AddPlotEvent(args[0], in)
			if err != nil {
				return err
			}
			fmt.Printf("Tracked %s %q in %s (%d events)\n", e.ID, e.Title, p.Name, len(p.PlotEvents))
			return nil
		})
	},
}

var plotRemoveCmd = &cobra.Command{
	Use:   "remove <project> <id>",
	Short: "Stop tracking a plot event",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLibrary(func(lib *library.Library) error {
			p, err := lib.RemovePlotEvent(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("Removed %s from %s\n", args[1], p.Name)
			return nil
		})
	},
}

// ─── Export and genres ──────────────────────────────────────────────────────

var exportCmd = &cobra.Command{
	Use:   "export <project>",
	Short: "Export the manuscript as docx, pdf or markdown",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		out, _ := cmd.Flags().GetString("out")
		format, err := library.ParseExportFormat(format)
		if err != nil {
			return err
		}
		return withLibrary(func(lib *library.Library) error {
			path, err := lib.Export(args[0], format, out)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(map[string]string{"format": format, "path": path})
			}
			fmt.Printf("Exported %s to %s\n", format, path)
			return nil
		})
	},
}

var genresCmd = &cobra.Command{
	Use:   "genres",
	Short: "List the suggested genres",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if jsonOutput {
			return printJSON(manuscript.Genres)
		}
		for _, g := range manuscript.Genres {
			fmt.Println(g)
		}
		return nil
	},
}

func init() {
	manuscriptWriteCmd.Flags().String("file", "", "Document to convert instead of reading stdin")
	manuscriptCmd.AddCommand(manuscriptShowCmd, manuscriptWriteCmd)

	charactersAddCmd.Flags().String("description", "", "Who they are")
	charactersAddCmd.Flags().StringSlice("alias", nil, "Other names (repeatable or comma-separated)")
	charactersAddCmd.Flags().StringSlice("trait", nil, "Traits (repeatable or comma-separated)")
	charactersAddCmd.Flags().String("first-appearance", "", "Chapter or scene of first appearance")
	charactersAddCmd.Flags().String("notes", "", "Free-form notes")
	charactersCmd.AddCommand(charactersListCmd, charactersAddCmd, charactersRemoveCmd)

	plotAddCmd.Flags().String("description", "", "What happens")
	plotAddCmd.Flags().String("chapter", "", "Chapter reference")
	plotAddCmd.Flags().String("when", "", "Time in the story, e.g. \"Day 3\"")
	plotAddCmd.Flags().StringSlice("character", nil, "Characters involved (repeatable or comma-separated)")
	plotAddCmd.Flags().String("importance", "", "low, medium, high or critical (default medium)")
	plotAddCmd.Flags().String("notes", "", "Free-form notes")
	plotCmd.AddCommand(plotListCmd, plotAddCmd, plotRemoveCmd)

	exportCmd.Flags().StringP("format", "f", "docx", "docx, pdf or markdown")
	exportCmd.Flags().StringP("out", "o", "", "Destination path (default: next to the manuscript)")

	rootCmd.AddCommand(manuscriptCmd, charactersCmd, plotCmd, exportCmd, genresCmd)
}
