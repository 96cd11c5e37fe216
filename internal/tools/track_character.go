package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// TrackCharacterTool handles the track_character MCP tool.
// It records a character on the project, replacing any entry with the
// same name (case-insensitive).
type TrackCharacterTool struct {
	b Binding
}

// NewTrackCharacterTool creates a TrackCharacterTool.
func NewTrackCharacterTool(b Binding) *TrackCharacterTool {
	return &TrackCharacterTool{b: b}
}

// Definition returns the MCP tool definition for registration.
func (t *TrackCharacterTool) Definition() mcp.Tool {
	return mcp.NewTool(TrackCharacter,
		mcp.WithDescription(
			"Track or update a character in the manuscript. Calling it again with the same "+
				"name (any capitalization) replaces the stored entry, so pass every field you want kept.",
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Character's canonical name"),
		),
		mcp.WithArray("aliases",
			mcp.Description("Other names, nicknames or titles used for the character"),
			mcp.WithStringItems(),
		),
		mcp.WithString("description",
			mcp.Description("Physical and background description"),
		),
		mcp.WithArray("traits",
			mcp.Description("Personality traits"),
			mcp.WithStringItems(),
		),
		mcp.WithString("first_appearance",
			mcp.Description("Chapter or scene of first appearance"),
		),
		mcp.WithString("notes",
			mcp.Description("Anything else worth keeping consistent"),
		),
		withProjectID(),
	)
}

// Handle processes the track_character tool call.
func (t *TrackCharacterTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	c, err := CharacterFromArgs(req.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	p, err := t.b.project(req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error tracking character: %v", err)), nil
	}

	existed := false
	for _, prev := range p.Characters {
		if strings.EqualFold(prev.Name, c.Name) {
			existed = true
			break
		}
	}
	p.AddCharacter(c)

	if err := t.b.Store.Save(p); err != nil {
		return nil, fmt.Errorf("saving project: %w", err)
	}

	result := fmt.Sprintf("Character '%s' tracked successfully.", c.Name)
	if existed {
		result = fmt.Sprintf("Character '%s' updated.", c.Name)
	}
	if len(c.Aliases) > 0 {
		result += " Aliases: " + strings.Join(c.Aliases, ", ")
	}
	return mcp.NewToolResultText(result), nil
}
