// Package config loads storybook settings.
//
// Settings are layered, later layers winning: built-in defaults, the YAML
// file (~/.storybook/config.yaml unless --config names another), STORYBOOK_*
// environment variables, then command-line flags. Keys are dotted paths;
// agent.max_turns reads from STORYBOOK_AGENT_MAX_TURNS.
package config

import (
	"fmt"
	"strings"

	"github.com/HendryAvila/storybook/internal/agent"
)

// Config is the full storybook configuration.
type Config struct {
	Root     string        `mapstructure:"root"`
	LogLevel string        `mapstructure:"log_level"`
	Agent    AgentConfig   `mapstructure:"agent"`
	HTTP     HTTPConfig    `mapstructure:"http"`
	Journal  JournalConfig `mapstructure:"journal"`
}

// AgentConfig selects and tunes the external agent.
type AgentConfig struct {
	Binary         string `mapstructure:"binary"`
	Model          string `mapstructure:"model"`
	MaxTurns       int    `mapstructure:"max_turns"`
	PermissionMode string `mapstructure:"permission_mode"`
}

// HTTPConfig configures storybook serve.
type HTTPConfig struct {
	Addr        string   `mapstructure:"addr"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// JournalConfig switches the session journal.
type JournalConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Root) == "" {
		return fmt.Errorf("root must not be empty")
	}
	if c.Agent.MaxTurns < 0 {
		return fmt.Errorf("agent.max_turns must not be negative, got %d", c.Agent.MaxTurns)
	}
	switch c.Agent.PermissionMode {
	case "", agent.PermissionDefault, "acceptEdits", "plan", agent.PermissionBypass:
	default:
		return fmt.Errorf("agent.permission_mode %q is not one of default, acceptEdits, plan, bypassPermissions", c.Agent.PermissionMode)
	}
	if strings.TrimSpace(c.HTTP.Addr) == "" {
		return fmt.Errorf("http.addr must not be empty")
	}
	return nil
}

// AgentOptions converts the agent settings into session options. mcpConfig
// is the path written by agent.WriteMCPConfig, or "".
func (c *Config) AgentOptions(mcpConfig string) agent.Options {
	return agent.Options{
		Model:          c.Agent.Model,
		MaxTurns:       c.Agent.MaxTurns,
		PermissionMode: c.Agent.PermissionMode,
		MCPConfig:      mcpConfig,
	}
}
