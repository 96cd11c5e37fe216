// Package tools implements the MCP tool menu offered to the editing agent.
//
// Each tool is a struct holding its dependencies, with Definition()
// returning the mcp.Tool schema and Handle() processing a call. One file
// per tool. Tools that read or record entities operate on one project,
// the one bound at startup unless the call passes project_id.
//
// Validation failures are returned as tool errors so the agent can recover;
// Go errors are reserved for infrastructure failures.
package tools

import (
	"errors"
	"fmt"
	"strings"

	"github.com/HendryAvila/storybook/internal/manuscript"
	"github.com/HendryAvila/storybook/internal/projects"
	"github.com/mark3labs/mcp-go/mcp"
)

// Tool names. The agent sees them prefixed with the server name, e.g.
// mcp__storybook__track_character.
const (
	TrackCharacter            = "track_character"
	ListCharacters            = "list_characters"
	CheckCharacterConsistency = "check_character_consistency"
	TrackPlotEvent            = "track_plot_event"
	ListPlotEvents            = "list_plot_events"
	AnalyzePlotTimeline       = "analyze_plot_timeline"
	AnalyzeProseQuality       = "analyze_prose_quality"
	DetectPacingIssues        = "detect_pacing_issues"
)

// Names lists every tool in registration order.
var Names = []string{
	TrackCharacter,
	ListCharacters,
	CheckCharacterConsistency,
	TrackPlotEvent,
	ListPlotEvents,
	AnalyzePlotTimeline,
	AnalyzeProseQuality,
	DetectPacingIssues,
}

var errNoProject = errors.New("no project is bound to this server; pass `project_id` or start it with --project")

// Binding ties tools to a project store and, optionally, a default project.
type Binding struct {
	Store     projects.Store
	ProjectID string
}

// project resolves the project a call targets.
func (b Binding) project(req mcp.CallToolRequest) (*manuscript.Project, error) {
	ref := req.GetString("project_id", b.ProjectID)
	if ref == "" {
		return nil, errNoProject
	}
	p, err := b.Store.Resolve(ref)
	if err != nil {
		return nil, fmt.Errorf("project %q: %w", ref, err)
	}
	return p, nil
}

// text returns the named argument, falling back to the bound project's
// manuscript when the argument is empty. A missing project is not an
// error here; the caller decides whether empty text is acceptable.
func (b Binding) text(req mcp.CallToolRequest, key string) (string, error) {
	if v := req.GetString(key, ""); v != "" {
		return v, nil
	}
	p, err := b.project(req)
	if errors.Is(err, errNoProject) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return b.Store.ReadManuscript(p)
}

// withProjectID adds the optional project_id parameter shared by all tools.
func withProjectID() mcp.ToolOption {
	return mcp.WithString("project_id",
		mcp.Description("Project id or unique id prefix. Defaults to the project this server is bound to."),
	)
}

// orDash renders empty values in listings.
func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
