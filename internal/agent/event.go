// Package agent drives the external editing agent.
//
// The agent is an opaque collaborator: it is started as a subprocess, given
// a prompt plus the storybook MCP tool menu, and its output is consumed as
// an ordered sequence of Events. Nothing in this package writes project
// state; tool calls are persisted by the MCP server the agent talks to,
// and callers may additionally Fold tool_use events into an in-memory
// Project.
package agent

import (
	"encoding/json"
)

// EventType discriminates Events.
type EventType string

const (
	EventText     EventType = "text"
	EventThinking EventType = "thinking"
	EventToolUse  EventType = "tool_use"
	EventProgress EventType = "progress"
	EventComplete EventType = "complete"
	EventError    EventType = "error"
)

// Event is one record of an agent session. Which fields are set depends on
// Type:
//
//	text, thinking  Content
//	tool_use        Tool, Input, ID
//	progress        Message, Detail
//	complete        Cost, Turns, SessionID (Content carries a collected review)
//	error           Message, Detail
//
// The JSON form is the line format of the bridge.
type Event struct {
	Type      EventType      `json:"type"`
	Content   string         `json:"content,omitempty"`
	Tool      string         `json:"tool,omitempty"`
	Input     map[string]any `json:"input,omitempty"`
	ID        string         `json:"id,omitempty"`
	Cost      float64        `json:"cost,omitempty"`
	Turns     int            `json:"turns,omitempty"`
	SessionID string         `json:"session_id,omitempty"`
	Message   string         `json:"message,omitempty"`
	Detail    string         `json:"detail,omitempty"`
}

// UnmarshalJSON accepts the older line shapes as well: "message" and
// "status" records, and tool records naming the tool under "name".
func (e *Event) UnmarshalJSON(data []byte) error {
	type plain Event
	var raw struct {
		plain
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = Event(raw.plain)

	switch e.Type {
	case "message":
		e.Type = EventText
	case "status":
		e.Type = EventProgress
	case "tool":
		e.Type = EventToolUse
	}
	if e.Type == EventToolUse && e.Tool == "" {
		e.Tool = raw.Name
	}
	return nil
}

// Terminal reports whether e ends an exchange.
func (e Event) Terminal() bool {
	return e.Type == EventComplete || e.Type == EventError
}

// Progress returns a progress event.
func Progress(message, detail string) Event {
	return Event{Type: EventProgress, Message: message, Detail: detail}
}

// Failure returns an error event.
func Failure(message, detail string) Event {
	return Event{Type: EventError, Message: message, Detail: detail}
}
