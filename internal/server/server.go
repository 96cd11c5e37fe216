// Package server wires the storybook MCP components and creates the server
// instance.
//
// This is the composition root: it creates the tool, prompt and resource
// handlers around one project store and registers them. No business logic
// lives here, only wiring.
package server

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/HendryAvila/storybook/internal/projects"
	"github.com/HendryAvila/storybook/internal/prompts"
	"github.com/HendryAvila/storybook/internal/resources"
	"github.com/HendryAvila/storybook/internal/templates"
	"github.com/HendryAvila/storybook/internal/tools"
)

// Name is the MCP server name. Agents address our tools as
// mcp__storybook__<tool>.
const Name = "storybook"

// Version is set at build time via ldflags.
var Version = "dev"

// Config holds the server's dependencies.
type Config struct {
	Store     projects.Store
	ProjectID string // bound project, may be empty
	Logger    zerolog.Logger
}

// New creates the MCP server with every tool, prompt and resource
// registered.
func New(cfg Config) (*server.MCPServer, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("mcp server needs a project store")
	}
	logger := cfg.Logger.With().Str("component", "mcp").Logger()

	projectID := cfg.ProjectID
	if projectID != "" {
		p, err := cfg.Store.Resolve(projectID)
		if err != nil {
			return nil, fmt.Errorf("binding project: %w", err)
		}
		projectID = p.ID
	}

	renderer, err := templates.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("creating template renderer: %w", err)
	}

	// ─── Create the MCP server ──────────────────────────────────────────────────

	s := server.NewMCPServer(
		Name,
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// ─── Register tools ─────────────────────────────────────────────────────────

	b := tools.Binding{Store: cfg.Store, ProjectID: projectID}

	trackCharacter := tools.NewTrackCharacterTool(b)
	s.AddTool(trackCharacter.Definition(), trackCharacter.Handle)

	listCharacters := tools.NewListCharactersTool(b)
	s.AddTool(listCharacters.Definition(), listCharacters.Handle)

	consistency := tools.NewCheckCharacterConsistencyTool(b)
	s.AddTool(consistency.Definition(), consistency.Handle)

	trackPlotEvent := tools.NewTrackPlotEventTool(b)
	s.AddTool(trackPlotEvent.Definition(), trackPlotEvent.Handle)

	listPlotEvents := tools.NewListPlotEventsTool(b)
	s.AddTool(listPlotEvents.Definition(), listPlotEvents.Handle)

	timeline := tools.NewAnalyzePlotTimelineTool(b)
	s.AddTool(timeline.Definition(), timeline.Handle)

	prose := tools.NewAnalyzeProseQualityTool(b)
	s.AddTool(prose.Definition(), prose.Handle)

	pacing := tools.NewDetectPacingIssuesTool(b)
	s.AddTool(pacing.Definition(), pacing.Handle)

	// ─── Register prompts ───────────────────────────────────────────────────────

	src := prompts.Source{Store: cfg.Store, ProjectID: projectID}

	reviewPrompt := prompts.NewReviewPrompt(src, renderer)
	s.AddPrompt(reviewPrompt.Definition(), reviewPrompt.Handle)

	chatPrompt := prompts.NewChatPrompt(src, renderer)
	s.AddPrompt(chatPrompt.Definition(), chatPrompt.Handle)

	// ─── Register resources ─────────────────────────────────────────────────────

	resourceHandler := resources.NewHandler(cfg.Store, projectID)
	s.AddResource(resourceHandler.ProjectResource(), resourceHandler.HandleProject)
	s.AddResource(resourceHandler.ManuscriptResource(), resourceHandler.HandleManuscript)

	logger.Info().Str("project_id", projectID).Int("tools", len(tools.Names)).Msg("mcp server ready")
	return s, nil
}

// serverInstructions tells the agent how the tool menu is meant to be used.
func serverInstructions() string {
	return `You have access to Storybook, a manuscript project manager for fiction.

## Tools
Storybook tools record what you learn about the manuscript and compute
simple text statistics. They never edit the manuscript.

- track_character: record a character. Calling it again with the same name
  (case-insensitive) replaces the record.
- track_plot_event: record a story beat under a stable id. Reusing the id
  replaces the event.
- list_characters, list_plot_events: show what is tracked so far.
- check_character_consistency: count mentions of a character and flag
  capitalization variants.
- analyze_plot_timeline: find weekday, month and relative-day references.
- analyze_prose_quality: sentence statistics, passive voice, adverbs and
  repeated words.
- detect_pacing_issues: paragraph length and dialogue balance.

Analysis tools read the project's manuscript when no text is passed.

## Working with the author
Track characters and plot events as you meet them so later sessions can
check continuity. Base feedback on the text, be specific, and respect the
author's voice.`
}
