package prompts

import (
	"context"
	"fmt"

	"github.com/HendryAvila/storybook/internal/templates"
	"github.com/mark3labs/mcp-go/mcp"
)

// ChatPrompt handles the storybook-chat MCP prompt.
// It sets the agent up as a collaborating editor for the manuscript.
type ChatPrompt struct {
	src      Source
	renderer templates.Renderer
}

// NewChatPrompt creates a ChatPrompt.
func NewChatPrompt(src Source, renderer templates.Renderer) *ChatPrompt {
	return &ChatPrompt{src: src, renderer: renderer}
}

// Definition returns the MCP prompt definition for registration.
func (p *ChatPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt(ChatName,
		mcp.WithPromptDescription(
			"Work on the manuscript together with an editor who can read and "+
				"edit the text and keeps track of characters and plot events.",
		),
		mcp.WithArgument("project_id",
			mcp.ArgumentDescription("Project id or unique prefix. Defaults to the bound project."),
		),
	)
}

// Handle processes the storybook-chat prompt request.
func (p *ChatPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	_, data, err := p.src.project(req.Params.Arguments)
	if err != nil {
		return nil, fmt.Errorf("storybook-chat: %w", err)
	}

	text, err := p.renderer.Render(templates.ChatSystem, data)
	if err != nil {
		return nil, err
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Editing session: %s", data.Title),
		Messages: []mcp.PromptMessage{
			{
				Role:    mcp.RoleUser,
				Content: mcp.NewTextContent(text),
			},
		},
	}, nil
}
