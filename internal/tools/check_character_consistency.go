package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/HendryAvila/storybook/internal/analysis"
	"github.com/mark3labs/mcp-go/mcp"
)

// CheckCharacterConsistencyTool handles the check_character_consistency
// MCP tool. When the character is tracked, its aliases are checked too.
type CheckCharacterConsistencyTool struct {
	b Binding
}

// NewCheckCharacterConsistencyTool creates a CheckCharacterConsistencyTool.
func NewCheckCharacterConsistencyTool(b Binding) *CheckCharacterConsistencyTool {
	return &CheckCharacterConsistencyTool{b: b}
}

// Definition returns the MCP tool definition for registration.
func (t *CheckCharacterConsistencyTool) Definition() mcp.Tool {
	return mcp.NewTool(CheckCharacterConsistency,
		mcp.WithDescription(
			"Check how consistently a character's name is written. Counts whole-word mentions "+
				"and flags capitalization variants.",
		),
		mcp.WithString("character_name",
			mcp.Required(),
			mcp.Description("Name to look for"),
		),
		mcp.WithString("manuscript_text",
			mcp.Description("Text to scan. Defaults to the bound project's manuscript."),
		),
		withProjectID(),
	)
}

// Handle processes the check_character_consistency tool call.
func (t *CheckCharacterConsistencyTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := strings.TrimSpace(req.GetString("character_name", ""))
	text, err := t.b.text(req, "manuscript_text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if name == "" || strings.TrimSpace(text) == "" {
		return mcp.NewToolResultError("Both character_name and manuscript_text are required"), nil
	}

	result := analysis.CharacterConsistency(name, text).String()

	if p, err := t.b.project(req); err == nil {
		if c, ok := p.Character(name); ok {
			for _, alias := range append([]string{c.Name}, c.Aliases...) {
				if strings.EqualFold(alias, name) {
					continue
				}
				r := analysis.CharacterConsistency(alias, text)
				result += fmt.Sprintf("\n\nAlias '%s': %d mentions", alias, r.Mentions)
				for _, issue := range r.Issues {
					result += "\n- " + issue
				}
			}
		}
	}
	return mcp.NewToolResultText(result), nil
}
