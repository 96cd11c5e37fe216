package agent

import (
	"context"

	"github.com/HendryAvila/storybook/internal/tools"
)

// ServerName is the name the storybook MCP server is registered under in
// the agent's MCP configuration. The agent sees our tools as
// mcp__<ServerName>__<tool>.
const ServerName = "storybook"

// Permission modes understood by the agent CLI.
const (
	PermissionDefault = "default"
	PermissionBypass  = "bypassPermissions"
)

// Request describes one agent invocation.
type Request struct {
	Prompt         string
	SystemPrompt   string
	WorkDir        string
	Model          string
	AllowedTools   []string
	MCPConfig      string // path to an MCP JSON config
	ResumeID       string // agent session to continue
	MaxTurns       int
	PermissionMode string
}

// Runner starts agent sessions.
//
// Run returns a channel that yields the session's events in order and is
// closed when the session ends. The last event is complete or error unless
// ctx was cancelled first. Callers must drain the channel or cancel ctx.
type Runner interface {
	Run(ctx context.Context, req Request) (<-chan Event, error)
}

// MCPToolName returns the name the agent uses for one of our tools.
func MCPToolName(name string) string {
	return "mcp__" + ServerName + "__" + name
}

// ChatTools is the tool allowance of an interactive chat: file editing
// plus the whole storybook menu.
func ChatTools() []string {
	return withMenu([]string{"Read", "Write", "Edit", "Grep"}, tools.Names)
}

// ReviewTools is the tool allowance of an automated review. The manuscript
// is read but never edited.
func ReviewTools() []string {
	return withMenu([]string{"Read", "Grep"}, tools.Names)
}

// FeedbackTools is the tool allowance of a single question about the
// manuscript.
func FeedbackTools() []string {
	return withMenu([]string{"Read", "Grep"}, []string{
		tools.TrackCharacter,
		tools.CheckCharacterConsistency,
		tools.AnalyzePlotTimeline,
		tools.AnalyzeProseQuality,
		tools.DetectPacingIssues,
	})
}

func withMenu(builtin, menu []string) []string {
	out := make([]string, 0, len(builtin)+len(menu))
	out = append(out, builtin...)
	for _, name := range menu {
		out = append(out, MCPToolName(name))
	}
	return out
}
