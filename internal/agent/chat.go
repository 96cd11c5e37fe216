package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/HendryAvila/storybook/internal/manuscript"
	"github.com/HendryAvila/storybook/internal/projects"
	"github.com/HendryAvila/storybook/internal/templates"
)

// Chat is a conversation with the agent about one project. Each Send is one
// exchange; later exchanges resume the agent session of the previous one.
type Chat struct {
	runner  Runner
	store   projects.Store
	project *manuscript.Project
	system  string
	opts    Options

	mu        sync.Mutex
	sessionID string
}

// NewChat prepares a chat about project. No agent process is started
// until the first Send.
func NewChat(runner Runner, store projects.Store, project *manuscript.Project, opts Options) (*Chat, error) {
	r, err := opts.renderer()
	if err != nil {
		return nil, err
	}
	system, err := r.Render(templates.ChatSystem, projectData(store, project))
	if err != nil {
		return nil, fmt.Errorf("building chat prompt: %w", err)
	}
	if opts.PermissionMode == "" {
		opts.PermissionMode = PermissionDefault
	}
	return &Chat{
		runner:  runner,
		store:   store,
		project: project,
		system:  system,
		opts:    opts,
	}, nil
}

// SessionID returns the agent session the next Send resumes, if any.
func (c *Chat) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

func (c *Chat) setSessionID(id string) {
	c.mu.Lock()
	c.sessionID = id
	c.mu.Unlock()
}

// Send sends one user message and streams the agent's reply.
func (c *Chat) Send(ctx context.Context, message string) (<-chan Event, error) {
	if strings.TrimSpace(message) == "" {
		return nil, errors.New("message is empty")
	}

	in, err := c.runner.Run(ctx, Request{
		Prompt:         message,
		SystemPrompt:   c.system,
		WorkDir:        c.store.ProjectDir(c.project.ID),
		Model:          c.opts.model(),
		AllowedTools:   ChatTools(),
		MCPConfig:      c.opts.MCPConfig,
		ResumeID:       c.SessionID(),
		MaxTurns:       c.opts.MaxTurns,
		PermissionMode: c.opts.PermissionMode,
	})
	if err != nil {
		return nil, err
	}

	out := make(chan Event)
	go relay(ctx, in, out, func(ev Event) {
		if ev.SessionID != "" {
			c.setSessionID(ev.SessionID)
		}
	})
	return out, nil
}
