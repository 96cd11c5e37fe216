package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/HendryAvila/storybook/internal/library"
	"github.com/HendryAvila/storybook/internal/manuscript"
)

var projectsCmd = &cobra.Command{
	Use:     "projects",
	Aliases: []string{"project", "p"},
	Short:   "List, create, import and delete projects",
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects, most recently edited first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLibrary(func(lib *library.Library) error {
			list := lib.List()
			if jsonOutput {
				return printJSON(list)
			}
			if len(list) == 0 {
				fmt.Println("No projects yet. Create one with `storybook projects create <name>`.")
				return nil
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tGENRE\tWORDS\tEDITED")
			for _, p := range list {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
					shortID(p.ID), p.Name, p.Metadata.Genre, p.Metadata.WordCount,
					p.Metadata.LastEdited.Local().Format("2006-01-02 15:04"))
			}
			return tw.Flush()
		})
	},
}

// metadataFlags registers the metadata flags shared by create, import
// and settings.
func metadataFlags(fs *pflag.FlagSet) {
	fs.String("title", "", "Title (defaults to the project name)")
	fs.String("author", "", "Author")
	fs.String("genre", "", "Genre, see `storybook genres`")
	fs.Int("chapters", 0, "Chapter count")
	fs.String("notes", "", "Free-form notes")
}

// metadataPatch collects the metadata flags the user set.
func metadataPatch(fs *pflag.FlagSet) library.MetadataPatch {
	var patch library.MetadataPatch
	str := func(name string) *string {
		if !fs.Changed(name) {
			return nil
		}
		v, _ := fs.GetString(name)
		return &v
	}
	patch.Title = str("title")
	patch.Author = str("author")
	patch.Genre = str("genre")
	patch.Notes = str("notes")
	if fs.Changed("chapters") {
		n, _ := fs.GetInt("chapters")
		patch.ChapterCount = &n
	}
	return patch
}

func createProject(cmd *cobra.Command, name, importFile string) error {
	return withLibrary(func(lib *library.Library) error {
		meta, err := metadataPatch(cmd.Flags()).Metadata(name)
		if err != nil {
			return err
		}
		p, err := lib.Create(name, meta, importFile)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(p)
		}
		fmt.Printf("Created %s (%s), %d words\n", p.Name, shortID(p.ID), p.Metadata.WordCount)
		return nil
	})
}

var projectsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a project, optionally from a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		importFile, _ := cmd.Flags().GetString("from")
		return createProject(cmd, args[0], importFile)
	},
}

var projectsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Create a project from a .docx, .pdf, .txt or .md document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		if name == "" {
			base := filepath.Base(args[0])
			name = strings.TrimSuffix(base, filepath.Ext(base))
		}
		return createProject(cmd, name, args[0])
	},
}

var projectsShowCmd = &cobra.Command{
	Use:   "show <project>",
	Short: "Show a project's metadata and tracked entities",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLibrary(func(lib *library.Library) error {
			p, err := lib.Get(args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(p)
			}
			printProject(lib, p)
			return nil
		})
	},
}

func printProject(lib *library.Library, p *manuscript.Project) {
	m := p.Metadata
	fmt.Printf("%s  (%s)\n", p.Name, p.ID)
	fmt.Printf("  Title:      %s\n", m.Title)
	fmt.Printf("  Author:     %s\n", orDash(m.Author))
	fmt.Printf("  Genre:      %s\n", orDash(m.Genre))
	fmt.Printf("  Words:      %d\n", m.WordCount)
	fmt.Printf("  Chapters:   %d\n", m.ChapterCount)
	fmt.Printf("  Created:    %s\n", m.CreatedAt.Local().Format("2006-01-02 15:04"))
	fmt.Printf("  Edited:     %s\n", m.LastEdited.Local().Format("2006-01-02 15:04"))
	fmt.Printf("  Characters: %d\n", len(p.Characters))
	fmt.Printf("  Events:     %d\n", len(p.PlotEvents))
	fmt.Printf("  Manuscript: %s\n", lib.Store().ManuscriptPath(p))
	if m.Notes != "" {
		fmt.Printf("\n%s\n", m.Notes)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

var projectsDeleteCmd = &cobra.Command{
	Use:   "delete <project>",
	Short: "Delete a project and everything in its directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		return withLibrary(func(lib *library.Library) error {
			p, err := lib.Get(args[0])
			if err != nil {
				return err
			}
			if !yes {
				return fmt.Errorf("refusing to delete %q without --yes", p.Name)
			}
			if err := lib.Delete(p.ID); err != nil {
				return err
			}
			fmt.Printf("Deleted %s (%s)\n", p.Name, shortID(p.ID))
			return nil
		})
	},
}

var projectsSettingsCmd = &cobra.Command{
	Use:   "settings <project>",
	Short: "Show or change a project's metadata",
	Long: `Without flags, prints the metadata. With flags, changes only the named
fields. Word count is derived from the manuscript and cannot be set.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		patch := metadataPatch(cmd.Flags())
		return withLibrary(func(lib *library.Library) error {
			p, err := lib.Get(args[0])
			if err != nil {
				return err
			}
			if !patch.Empty() {
				if p, err = lib.UpdateMetadata(p.ID, patch); err != nil {
					return err
				}
			}
			if jsonOutput {
				return printJSON(p.Metadata)
			}
			printProject(lib, p)
			return nil
		})
	},
}

func init() {
	metadataFlags(projectsCreateCmd.Flags())
	projectsCreateCmd.Flags().String("from", "", "Document to import as the manuscript")

	metadataFlags(projectsImportCmd.Flags())
	projectsImportCmd.Flags().String("name", "", "Project name (defaults to the file name)")

	metadataFlags(projectsSettingsCmd.Flags())

	projectsDeleteCmd.Flags().BoolP("yes", "y", false, "Confirm deletion")

	projectsCmd.AddCommand(projectsListCmd, projectsCreateCmd, projectsImportCmd,
		projectsShowCmd, projectsDeleteCmd, projectsSettingsCmd)
	rootCmd.AddCommand(projectsCmd)
}
