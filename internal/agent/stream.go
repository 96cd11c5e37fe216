package agent

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// streamLine is one line of the agent CLI's stream-json output.
type streamLine struct {
	Type    string `json:"type"`
	Subtype string `json:"subtype,omitempty"`

	// system
	Model      string            `json:"model,omitempty"`
	MCPServers []mcpServerStatus `json:"mcp_servers,omitempty"`

	// assistant
	Message *assistantMessage `json:"message,omitempty"`

	// result
	IsError      bool    `json:"is_error,omitempty"`
	Result       string  `json:"result,omitempty"`
	SessionID    string  `json:"session_id,omitempty"`
	TotalCostUSD float64 `json:"total_cost_usd,omitempty"`
	NumTurns     int     `json:"num_turns,omitempty"`
}

type mcpServerStatus struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

type assistantMessage struct {
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type     string         `json:"type"`
	Text     string         `json:"text,omitempty"`
	Thinking string         `json:"thinking,omitempty"`
	ID       string         `json:"id,omitempty"`
	Name     string         `json:"name,omitempty"`
	Input    map[string]any `json:"input,omitempty"`
}

// ParseStream reads stream-json lines from r and calls emit for every event
// they carry, in order. Blank and malformed lines are skipped. Parsing stops
// early when emit returns false.
func ParseStream(r io.Reader, emit func(Event) bool) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var sl streamLine
		if err := json.Unmarshal([]byte(line), &sl); err != nil {
			continue
		}
		for _, ev := range sl.events() {
			if !emit(ev) {
				return nil
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading agent output: %w", err)
	}
	return nil
}

// events translates one stream line. Lines the session contract has no
// use for (user turns carrying tool results, hooks) yield nothing.
func (sl streamLine) events() []Event {
	switch sl.Type {
	case "system":
		if sl.Subtype != "init" {
			return nil
		}
		return []Event{Progress("Agent session started", sl.mcpSummary())}

	case "assistant":
		if sl.Message == nil {
			return nil
		}
		var out []Event
		for _, b := range sl.Message.Content {
			switch b.Type {
			case "text":
				if b.Text != "" {
					out = append(out, Event{Type: EventText, Content: b.Text})
				}
			case "thinking":
				if b.Thinking != "" {
					out = append(out, Event{Type: EventThinking, Content: b.Thinking})
				}
			case "tool_use":
				out = append(out, Event{Type: EventToolUse, Tool: b.Name, Input: b.Input, ID: b.ID})
			}
		}
		return out

	case "result":
		if sl.IsError || (sl.Subtype != "" && sl.Subtype != "success") {
			msg := sl.Result
			if msg == "" {
				msg = "agent session failed"
			}
			return []Event{{
				Type:      EventError,
				Message:   msg,
				Detail:    sl.Subtype,
				Cost:      sl.TotalCostUSD,
				Turns:     sl.NumTurns,
				SessionID: sl.SessionID,
			}}
		}
		return []Event{{
			Type:      EventComplete,
			Cost:      sl.TotalCostUSD,
			Turns:     sl.NumTurns,
			SessionID: sl.SessionID,
		}}
	}
	return nil
}

func (sl streamLine) mcpSummary() string {
	parts := make([]string, 0, len(sl.MCPServers)+1)
	if sl.Model != "" {
		parts = append(parts, "model "+sl.Model)
	}
	for _, s := range sl.MCPServers {
		parts = append(parts, s.Name+": "+s.Status)
	}
	return strings.Join(parts, ", ")
}
