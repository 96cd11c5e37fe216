package agent

import (
	"context"

	"github.com/HendryAvila/storybook/internal/manuscript"
	"github.com/HendryAvila/storybook/internal/projects"
	"github.com/HendryAvila/storybook/internal/templates"
)

// DefaultModel is the agent model used when none is configured.
const DefaultModel = "claude-sonnet-4-5"

// Options configures chat and editor sessions.
type Options struct {
	Model          string
	MaxTurns       int
	PermissionMode string // chat only; reviews never edit
	MCPConfig      string
	Renderer       templates.Renderer // defaults to the embedded templates
}

func (o Options) model() string {
	if o.Model == "" {
		return DefaultModel
	}
	return o.Model
}

func (o Options) renderer() (templates.Renderer, error) {
	if o.Renderer != nil {
		return o.Renderer, nil
	}
	return templates.NewRenderer()
}

func projectData(store projects.Store, p *manuscript.Project) templates.ProjectData {
	return templates.NewProjectData(p, store.ManuscriptPath(p))
}

// relay copies in to out, calling observe on each event first, and closes
// out when in is exhausted or ctx is done.
func relay(ctx context.Context, in <-chan Event, out chan<- Event, observe func(Event)) {
	defer close(out)
	for ev := range in {
		if observe != nil {
			observe(ev)
		}
		select {
		case out <- ev:
		case <-ctx.Done():
			return
		}
	}
}
