package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// ListCharactersTool handles the list_characters MCP tool.
type ListCharactersTool struct {
	b Binding
}

// NewListCharactersTool creates a ListCharactersTool.
func NewListCharactersTool(b Binding) *ListCharactersTool {
	return &ListCharactersTool{b: b}
}

// Definition returns the MCP tool definition for registration.
func (t *ListCharactersTool) Definition() mcp.Tool {
	return mcp.NewTool(ListCharacters,
		mcp.WithDescription("List all tracked characters in the manuscript with their key attributes."),
		withProjectID(),
	)
}

// Handle processes the list_characters tool call.
func (t *ListCharactersTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := t.b.project(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(p.Characters) == 0 {
		return mcp.NewToolResultText("No characters tracked yet. Use track_character to add characters."), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Characters (%d)\n\n", len(p.Characters))
	for _, c := range p.Characters {
		fmt.Fprintf(&sb, "## %s\n\n", c.Name)
		if len(c.Aliases) > 0 {
			fmt.Fprintf(&sb, "- **Aliases:** %s\n", strings.Join(c.Aliases, ", "))
		}
		fmt.Fprintf(&sb, "- **Description:** %s\n", orDash(c.Description))
		if len(c.Traits) > 0 {
			fmt.Fprintf(&sb, "- **Traits:** %s\n", strings.Join(c.Traits, ", "))
		}
		fmt.Fprintf(&sb, "- **First appearance:** %s\n", orDash(c.FirstAppearance))
		if c.Notes != "" {
			fmt.Fprintf(&sb, "- **Notes:** %s\n", c.Notes)
		}
		sb.WriteString("\n")
	}
	return mcp.NewToolResultText(strings.TrimRight(sb.String(), "\n")), nil
}
