package prompts

import (
	"context"
	"strings"
	"testing"

	"github.com/HendryAvila/storybook/internal/manuscript"
	"github.com/HendryAvila/storybook/internal/projects"
	"github.com/HendryAvila/storybook/internal/templates"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"
)

func setup(t *testing.T) (Source, *manuscript.Project, templates.Renderer) {
	t.Helper()
	store, err := projects.NewFileStore(t.TempDir(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	p, err := store.Create("Night Train", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	r, err := templates.NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	return Source{Store: store, ProjectID: p.ID}, p, r
}

func request(args map[string]string) mcp.GetPromptRequest {
	var req mcp.GetPromptRequest
	req.Params.Arguments = args
	return req
}

func messageText(t *testing.T, res *mcp.GetPromptResult) string {
	t.Helper()
	if len(res.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(res.Messages))
	}
	tc, ok := res.Messages[0].Content.(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", res.Messages[0].Content)
	}
	return tc.Text
}

func TestReviewPrompt_FocusAreas(t *testing.T) {
	src, _, r := setup(t)
	p := NewReviewPrompt(src, r)

	if p.Definition().Name != ReviewName {
		t.Errorf("name = %q", p.Definition().Name)
	}

	res, err := p.Handle(context.Background(), request(map[string]string{"focus_areas": "plot, ,pacing"}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	text := messageText(t, res)
	if !strings.Contains(text, "Focus particularly on: plot, pacing") {
		t.Errorf("focus areas missing:\n%s", text)
	}
	if !strings.Contains(text, "Title: Night Train") {
		t.Errorf("title missing:\n%s", text)
	}
	if res.Description != "Editorial review: Night Train" {
		t.Errorf("description = %q", res.Description)
	}
}

func TestReviewPrompt_NoFocus(t *testing.T) {
	src, _, r := setup(t)
	res, err := NewReviewPrompt(src, r).Handle(context.Background(), request(nil))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if strings.Contains(messageText(t, res), "Focus particularly") {
		t.Error("unexpected focus line")
	}
}

func TestChatPrompt(t *testing.T) {
	src, p, r := setup(t)
	src.ProjectID = ""

	_, err := NewChatPrompt(src, r).Handle(context.Background(), request(nil))
	if err == nil {
		t.Fatal("expected error without a project")
	}

	res, err := NewChatPrompt(src, r).Handle(context.Background(), request(map[string]string{"project_id": p.ShortID()}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	text := messageText(t, res)
	if !strings.Contains(text, "- Title: Night Train") {
		t.Errorf("chat prompt missing title:\n%s", text)
	}
	if !strings.Contains(text, src.Store.ManuscriptPath(p)) {
		t.Errorf("chat prompt missing manuscript path:\n%s", text)
	}
}
