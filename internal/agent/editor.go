package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/HendryAvila/storybook/internal/manuscript"
	"github.com/HendryAvila/storybook/internal/projects"
	"github.com/HendryAvila/storybook/internal/templates"
)

// Editor runs one-shot editorial sessions: full reviews and single
// questions. Both use the fixed editor system prompt and may not edit the
// manuscript.
type Editor struct {
	runner   Runner
	store    projects.Store
	renderer templates.Renderer
	system   string
	opts     Options
}

// NewEditor creates an Editor.
func NewEditor(runner Runner, store projects.Store, opts Options) (*Editor, error) {
	r, err := opts.renderer()
	if err != nil {
		return nil, err
	}
	system, err := r.Render(templates.EditorSystem, nil)
	if err != nil {
		return nil, fmt.Errorf("building editor prompt: %w", err)
	}
	return &Editor{runner: runner, store: store, renderer: r, system: system, opts: opts}, nil
}

// Review asks the agent for a comprehensive review of p's manuscript,
// optionally focused on the given areas. The stream opens with a progress
// event before the agent produces anything.
func (e *Editor) Review(ctx context.Context, p *manuscript.Project, focusAreas []string) (<-chan Event, error) {
	prompt, err := e.renderer.Render(templates.Review, templates.ReviewData{
		ProjectData: projectData(e.store, p),
		FocusAreas:  cleanAreas(focusAreas),
	})
	if err != nil {
		return nil, fmt.Errorf("building review prompt: %w", err)
	}

	in, err := e.runner.Run(ctx, e.request(p, prompt, ReviewTools()))
	if err != nil {
		return nil, err
	}

	out := make(chan Event)
	go func() {
		select {
		case out <- Progress("Starting manuscript review...", "Loading manuscript"):
		case <-ctx.Done():
			close(out)
			return
		}
		relay(ctx, in, out, nil)
	}()
	return out, nil
}

// Ask asks the agent a single question about p's manuscript.
func (e *Editor) Ask(ctx context.Context, p *manuscript.Project, question string) (<-chan Event, error) {
	if strings.TrimSpace(question) == "" {
		return nil, errors.New("question is empty")
	}
	prompt, err := e.renderer.Render(templates.QuickFeedback, templates.QuickFeedbackData{
		ProjectData: projectData(e.store, p),
		Question:    question,
	})
	if err != nil {
		return nil, fmt.Errorf("building feedback prompt: %w", err)
	}
	return e.runner.Run(ctx, e.request(p, prompt, FeedbackTools()))
}

func (e *Editor) request(p *manuscript.Project, prompt string, allowed []string) Request {
	return Request{
		Prompt:         prompt,
		SystemPrompt:   e.system,
		WorkDir:        e.store.ProjectDir(p.ID),
		Model:          e.opts.model(),
		AllowedTools:   allowed,
		MCPConfig:      e.opts.MCPConfig,
		MaxTurns:       e.opts.MaxTurns,
		PermissionMode: PermissionBypass,
	}
}

func cleanAreas(areas []string) []string {
	out := make([]string, 0, len(areas))
	for _, a := range areas {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}
