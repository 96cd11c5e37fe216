package tools

import (
	"context"

	"github.com/HendryAvila/storybook/internal/analysis"
	"github.com/mark3labs/mcp-go/mcp"
)

// AnalyzePlotTimelineTool handles the analyze_plot_timeline MCP tool.
type AnalyzePlotTimelineTool struct {
	b Binding
}

// NewAnalyzePlotTimelineTool creates an AnalyzePlotTimelineTool.
func NewAnalyzePlotTimelineTool(b Binding) *AnalyzePlotTimelineTool {
	return &AnalyzePlotTimelineTool{b: b}
}

// Definition returns the MCP tool definition for registration.
func (t *AnalyzePlotTimelineTool) Definition() mcp.Tool {
	return mcp.NewTool(AnalyzePlotTimeline,
		mcp.WithDescription(
			"List the time references in the text (weekdays, months, 'day N', 'N days later') "+
				"so the timeline can be checked for consistency.",
		),
		mcp.WithString("manuscript_text",
			mcp.Description("Text to scan. Defaults to the bound project's manuscript."),
		),
		withProjectID(),
	)
}

// Handle processes the analyze_plot_timeline tool call.
func (t *AnalyzePlotTimelineTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := t.b.text(req, "manuscript_text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(analysis.TimeReferences(text).String()), nil
}
