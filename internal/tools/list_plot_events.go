package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// ListPlotEventsTool handles the list_plot_events MCP tool.
type ListPlotEventsTool struct {
	b Binding
}

// NewListPlotEventsTool creates a ListPlotEventsTool.
func NewListPlotEventsTool(b Binding) *ListPlotEventsTool {
	return &ListPlotEventsTool{b: b}
}

// Definition returns the MCP tool definition for registration.
func (t *ListPlotEventsTool) Definition() mcp.Tool {
	return mcp.NewTool(ListPlotEvents,
		mcp.WithDescription("List all tracked plot events in the order they were added."),
		withProjectID(),
	)
}

// Handle processes the list_plot_events tool call.
func (t *ListPlotEventsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := t.b.project(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(p.PlotEvents) == 0 {
		return mcp.NewToolResultText("No plot events tracked yet. Use track_plot_event to add events."), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Plot Events (%d)\n\n", len(p.PlotEvents))
	sb.WriteString("| ID | Title | Chapter | Story time | Importance | Characters |\n")
	sb.WriteString("|----|-------|---------|------------|------------|------------|\n")
	for _, e := range p.PlotEvents {
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s | %s |\n",
			e.ID, e.Title, orDash(e.ChapterReference), orDash(e.TimestampInStory),
			e.Importance, orDash(strings.Join(e.CharactersInvolved, ", ")))
	}
	return mcp.NewToolResultText(strings.TrimRight(sb.String(), "\n")), nil
}
