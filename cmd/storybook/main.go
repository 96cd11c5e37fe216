// Storybook: a manuscript workbench for fiction writers.
//
// One binary serves every surface: project commands for the terminal, an
// MCP server the editing agent calls back into, the line-oriented bridge
// used by desktop front ends, and the HTTP API used by the web client.
//
// Usage:
//
//	storybook projects list
//	storybook review <project>
//	storybook mcp --project <id>    # MCP server (stdio transport)
//	storybook serve                 # HTTP API
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/HendryAvila/storybook/internal/convert"
	"github.com/HendryAvila/storybook/internal/library"
)

// errReported ends a command whose failure was already written to the
// protocol stream.
var errReported = errors.New("failure already reported")

func main() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errReported) {
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Error: %s\n", userMessage(err))
		os.Exit(1)
	}
}

// userMessage adds a hint for the failures a user can fix.
func userMessage(err error) string {
	switch library.Classify(err) {
	case library.KindNotFound:
		return err.Error() + "\n  Run `storybook projects list` to see your projects."
	case library.KindUnsupported:
		return err.Error() + "\n  Supported documents: .docx, .pdf, .txt, .md"
	case library.KindUnavailable:
		var ce *convert.CapabilityError
		if errors.As(err, &ce) && ce.Op == "export" {
			return err.Error() + "\n  Export to docx or markdown instead."
		}
		return err.Error()
	default:
		return err.Error()
	}
}
