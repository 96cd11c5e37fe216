package agent

import (
	"strings"
)

// ReviewResult is what a finished review session produced.
type ReviewResult struct {
	Markdown  string
	Cost      float64
	Turns     int
	SessionID string
	ToolCalls []string // tool names without the MCP prefix, in call order
	Failure   *Event   // the error event, when the session failed
}

// OK reports whether the session completed.
func (r ReviewResult) OK() bool {
	return r.Failure == nil
}

// Collector accumulates a review from its events. Text chunks become
// blocks of the review separated by blank lines.
type Collector struct {
	chunks []string
	result ReviewResult
}

// Add records one event.
func (c *Collector) Add(ev Event) {
	switch ev.Type {
	case EventText:
		if strings.TrimSpace(ev.Content) != "" {
			c.chunks = append(c.chunks, ev.Content)
		}
	case EventToolUse:
		c.result.ToolCalls = append(c.result.ToolCalls, ShortToolName(ev.Tool))
	case EventComplete:
		c.result.Cost = ev.Cost
		c.result.Turns = ev.Turns
		c.result.SessionID = ev.SessionID
	case EventError:
		failure := ev
		c.result.Failure = &failure
		c.result.Cost = ev.Cost
		c.result.Turns = ev.Turns
	}
}

// Result returns the review collected so far.
func (c *Collector) Result() ReviewResult {
	r := c.result
	r.Markdown = strings.Join(c.chunks, "\n\n")
	return r
}

// CollectReview drains events and returns the collected review.
func CollectReview(events <-chan Event) ReviewResult {
	var c Collector
	for ev := range events {
		c.Add(ev)
	}
	return c.Result()
}

// ShortToolName strips the storybook MCP prefix from a tool name.
func ShortToolName(name string) string {
	return strings.TrimPrefix(name, "mcp__"+ServerName+"__")
}
