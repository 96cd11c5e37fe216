package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/HendryAvila/storybook/internal/manuscript"
	"github.com/mark3labs/mcp-go/mcp"
)

// TrackPlotEventTool handles the track_plot_event MCP tool.
// Events are keyed by their caller-chosen id.
type TrackPlotEventTool struct {
	b Binding
}

// NewTrackPlotEventTool creates a TrackPlotEventTool.
func NewTrackPlotEventTool(b Binding) *TrackPlotEventTool {
	return &TrackPlotEventTool{b: b}
}

// Definition returns the MCP tool definition for registration.
func (t *TrackPlotEventTool) Definition() mcp.Tool {
	return mcp.NewTool(TrackPlotEvent,
		mcp.WithDescription(
			"Track a plot event or story beat. Reusing an id replaces the stored event.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Stable identifier, e.g. 'inciting-incident' or 'ch3-betrayal'"),
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Short event title"),
		),
		mcp.WithString("description",
			mcp.Description("What happens"),
		),
		mcp.WithString("chapter_reference",
			mcp.Description("Chapter or scene where it happens"),
		),
		mcp.WithString("timestamp_in_story",
			mcp.Description("When it happens in story time, e.g. 'Day 3'"),
		),
		mcp.WithArray("characters_involved",
			mcp.Description("Names of the characters involved"),
			mcp.WithStringItems(),
		),
		mcp.WithString("importance",
			mcp.Description("low, medium, high or critical (default: medium)"),
			mcp.Enum(manuscript.ImportanceLow, manuscript.ImportanceMedium, manuscript.ImportanceHigh, manuscript.ImportanceCritical),
		),
		mcp.WithString("notes",
			mcp.Description("Continuity notes"),
		),
		withProjectID(),
	)
}

// Handle processes the track_plot_event tool call.
func (t *TrackPlotEventTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	e, err := PlotEventFromArgs(req.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	p, err := t.b.project(req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error tracking plot event: %v", err)), nil
	}

	p.AddPlotEvent(e)

	if err := t.b.Store.Save(p); err != nil {
		return nil, fmt.Errorf("saving project: %w", err)
	}

	result := fmt.Sprintf("Plot event '%s' tracked successfully.", e.Title)
	if len(e.CharactersInvolved) > 0 {
		result += " Characters: " + strings.Join(e.CharactersInvolved, ", ")
	}
	return mcp.NewToolResultText(result), nil
}
