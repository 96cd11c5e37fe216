package agent

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

type mcpConfig struct {
	MCPServers map[string]mcpServerDef `json:"mcpServers"`
}

type mcpServerDef struct {
	Command string   `json:"command"`
	Args    []string `json:"args"`
	Type    string   `json:"type"`
}

// WriteMCPConfig writes the MCP configuration handed to the agent with
// --mcp-config. It registers binary as a stdio server started as
// `<binary> mcp --root <root> --project <projectID>`, so the tool menu
// operates on the same store and project as the caller. Returns the path
// of the written file.
func WriteMCPConfig(dir, binary, root, projectID string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating MCP config dir: %w", err)
	}

	short := projectID
	if len(short) > 8 {
		short = short[:8]
	}
	path := filepath.Join(dir, fmt.Sprintf("mcp-%s.json", short))

	args := []string{"mcp", "--root", root}
	if projectID != "" {
		args = append(args, "--project", projectID)
	}
	config := mcpConfig{
		MCPServers: map[string]mcpServerDef{
			ServerName: {Command: binary, Args: args, Type: "stdio"},
		},
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling MCP config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing MCP config to %s: %w", path, err)
	}
	return path, nil
}
