package tools

import (
	"context"

	"github.com/HendryAvila/storybook/internal/analysis"
	"github.com/mark3labs/mcp-go/mcp"
)

// DetectPacingIssuesTool handles the detect_pacing_issues MCP tool.
type DetectPacingIssuesTool struct {
	b Binding
}

// NewDetectPacingIssuesTool creates a DetectPacingIssuesTool.
func NewDetectPacingIssuesTool(b Binding) *DetectPacingIssuesTool {
	return &DetectPacingIssuesTool{b: b}
}

// Definition returns the MCP tool definition for registration.
func (t *DetectPacingIssuesTool) Definition() mcp.Tool {
	return mcp.NewTool(DetectPacingIssues,
		mcp.WithDescription(
			"Detect potential pacing issues from paragraph length and the share of dialogue paragraphs.",
		),
		mcp.WithString("chapter_text",
			mcp.Description("Chapter to analyze. Defaults to the bound project's manuscript."),
		),
		withProjectID(),
	)
}

// Handle processes the detect_pacing_issues tool call.
func (t *DetectPacingIssuesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := t.b.text(req, "chapter_text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(analysis.Pacing(text).String()), nil
}
