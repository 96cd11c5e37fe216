// Package prompts implements the MCP prompts offered by the storybook
// server.
//
// Prompts are user-triggered workflows (like slash commands) that start an
// editing conversation about the bound project. Unlike tools, which the
// agent calls, prompts are picked by the user in the host.
package prompts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/HendryAvila/storybook/internal/manuscript"
	"github.com/HendryAvila/storybook/internal/projects"
	"github.com/HendryAvila/storybook/internal/templates"
	"github.com/mark3labs/mcp-go/mcp"
)

// Prompt names.
const (
	ReviewName = "storybook-review"
	ChatName   = "storybook-chat"
)

var errNoProject = errors.New("no project is bound; pass project_id")

// Source locates the project a prompt is about.
type Source struct {
	Store     projects.Store
	ProjectID string
}

func (s Source) project(args map[string]string) (*manuscript.Project, templates.ProjectData, error) {
	ref := s.ProjectID
	if id := strings.TrimSpace(args["project_id"]); id != "" {
		ref = id
	}
	if ref == "" {
		return nil, templates.ProjectData{}, errNoProject
	}
	p, err := s.Store.Resolve(ref)
	if err != nil {
		return nil, templates.ProjectData{}, err
	}
	return p, templates.NewProjectData(p, s.Store.ManuscriptPath(p)), nil
}

// ReviewPrompt handles the storybook-review MCP prompt.
// It asks for a full editorial review of the manuscript.
type ReviewPrompt struct {
	src      Source
	renderer templates.Renderer
}

// NewReviewPrompt creates a ReviewPrompt.
func NewReviewPrompt(src Source, renderer templates.Renderer) *ReviewPrompt {
	return &ReviewPrompt{src: src, renderer: renderer}
}

// Definition returns the MCP prompt definition for registration.
func (p *ReviewPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt(ReviewName,
		mcp.WithPromptDescription(
			"Run a comprehensive editorial review of the manuscript: read it, "+
				"track characters and plot events, check prose and pacing, and "+
				"write up strengths, weaknesses and recommendations.",
		),
		mcp.WithArgument("focus_areas",
			mcp.ArgumentDescription("Comma-separated areas to focus on, e.g. 'plot, pacing, dialogue'"),
		),
		mcp.WithArgument("project_id",
			mcp.ArgumentDescription("Project id or unique prefix. Defaults to the bound project."),
		),
	)
}

// Handle processes the storybook-review prompt request.
func (p *ReviewPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	_, data, err := p.src.project(req.Params.Arguments)
	if err != nil {
		return nil, fmt.Errorf("storybook-review: %w", err)
	}

	var focus []string
	for _, area := range strings.Split(req.Params.Arguments["focus_areas"], ",") {
		if area = strings.TrimSpace(area); area != "" {
			focus = append(focus, area)
		}
	}

	text, err := p.renderer.Render(templates.Review, templates.ReviewData{ProjectData: data, FocusAreas: focus})
	if err != nil {
		return nil, err
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Editorial review: %s", data.Title),
		Messages: []mcp.PromptMessage{
			{
				Role:    mcp.RoleUser,
				Content: mcp.NewTextContent(text),
			},
		},
	}, nil
}
