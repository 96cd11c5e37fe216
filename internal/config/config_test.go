package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HendryAvila/storybook/internal/agent"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	orig := userHomeDir
	userHomeDir = func() (string, error) { return home, nil }
	t.Cleanup(func() { userHomeDir = orig })
	return home
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestLoad_Defaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".storybook", "projects"), cfg.Root)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "claude", cfg.Agent.Binary)
	assert.Equal(t, agent.DefaultModel, cfg.Agent.Model)
	assert.Equal(t, agent.PermissionDefault, cfg.Agent.PermissionMode)
	assert.Equal(t, "127.0.0.1:8787", cfg.HTTP.Addr)
	assert.NotEmpty(t, cfg.HTTP.CORSOrigins)
	assert.True(t, cfg.Journal.Enabled)
}

func TestLoad_DefaultFile(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, ".storybook", "config.yaml"), `
log_level: debug
agent:
  model: claude-opus-4
  max_turns: 12
journal:
  enabled: false
`)

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "claude-opus-4", cfg.Agent.Model)
	assert.Equal(t, 12, cfg.Agent.MaxTurns)
	assert.False(t, cfg.Journal.Enabled)
	assert.Equal(t, "claude", cfg.Agent.Binary)
}

func TestLoad_ExplicitFileMustExist(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestLoad_BadYAML(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	writeFile(t, path, "agent: [unclosed")
	_, err := Load(path, nil)
	assert.Error(t, err)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	isolate(t)
	root := t.TempDir()
	path := filepath.Join(t.TempDir(), "storybook.yaml")
	writeFile(t, path, "http:\n  addr: 127.0.0.1:9000\n")
	t.Setenv("STORYBOOK_HTTP_ADDR", "0.0.0.0:7000")
	t.Setenv("STORYBOOK_ROOT", root)
	t.Setenv("STORYBOOK_HTTP_CORS_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:7000", cfg.HTTP.Addr)
	assert.Equal(t, root, cfg.Root)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.HTTP.CORSOrigins)
}

func TestLoad_FlagsWinOnlyWhenSet(t *testing.T) {
	isolate(t)
	root := t.TempDir()
	t.Setenv("STORYBOOK_LOG_LEVEL", "warn")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("root", "", "")
	flags.String("log-level", "error", "")
	flags.Int("max-turns", 0, "")
	require.NoError(t, flags.Parse([]string{"--root", root, "--max-turns", "4"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, root, cfg.Root)
	assert.Equal(t, 4, cfg.Agent.MaxTurns)
	assert.Equal(t, "warn", cfg.LogLevel, "unset flag must not shadow env")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{Root: "/tmp/x", HTTP: HTTPConfig{Addr: ":8787"}, Agent: AgentConfig{PermissionMode: "plan"}}
	}

	cfg := valid()
	assert.NoError(t, cfg.Validate())

	cfg = valid()
	cfg.Agent.MaxTurns = -1
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Agent.PermissionMode = "yolo"
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.HTTP.Addr = " "
	assert.Error(t, cfg.Validate())
}

func TestAgentOptions(t *testing.T) {
	cfg := Config{Agent: AgentConfig{Model: "m", MaxTurns: 3, PermissionMode: agent.PermissionBypass}}
	opts := cfg.AgentOptions("/tmp/mcp.json")
	assert.Equal(t, "m", opts.Model)
	assert.Equal(t, 3, opts.MaxTurns)
	assert.Equal(t, agent.PermissionBypass, opts.PermissionMode)
	assert.Equal(t, "/tmp/mcp.json", opts.MCPConfig)
}
