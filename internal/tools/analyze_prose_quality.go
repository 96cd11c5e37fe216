package tools

import (
	"context"
	"strings"

	"github.com/HendryAvila/storybook/internal/analysis"
	"github.com/mark3labs/mcp-go/mcp"
)

// AnalyzeProseQualityTool handles the analyze_prose_quality MCP tool.
type AnalyzeProseQualityTool struct {
	b Binding
}

// NewAnalyzeProseQualityTool creates an AnalyzeProseQualityTool.
func NewAnalyzeProseQualityTool(b Binding) *AnalyzeProseQualityTool {
	return &AnalyzeProseQualityTool{b: b}
}

// Definition returns the MCP tool definition for registration.
func (t *AnalyzeProseQualityTool) Definition() mcp.Tool {
	return mcp.NewTool(AnalyzeProseQuality,
		mcp.WithDescription(
			"Measure sentence length and flag heavy passive voice, adverb overuse and repeated words.",
		),
		mcp.WithString("text_sample",
			mcp.Description("Passage to analyze. Defaults to the bound project's manuscript."),
		),
		withProjectID(),
	)
}

// Handle processes the analyze_prose_quality tool call.
func (t *AnalyzeProseQualityTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := t.b.text(req, "text_sample")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if strings.TrimSpace(text) == "" {
		return mcp.NewToolResultError("text_sample is required"), nil
	}
	return mcp.NewToolResultText(analysis.Prose(text).String()), nil
}
