package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/HendryAvila/storybook/internal/agent"
	"github.com/HendryAvila/storybook/internal/config"
	"github.com/HendryAvila/storybook/internal/convert"
	"github.com/HendryAvila/storybook/internal/journal"
	"github.com/HendryAvila/storybook/internal/library"
	"github.com/HendryAvila/storybook/internal/logging"
	"github.com/HendryAvila/storybook/internal/projects"
)

var (
	configPath string
	jsonOutput bool

	cfg    *config.Config
	logger = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "storybook",
	Short: "Manuscript workbench with an AI editor",
	Long: `Storybook keeps fiction projects on disk (manuscript, characters, plot
events), converts documents in and out, and runs an AI editor over the
manuscript through the claude CLI.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(configPath, cmd.Flags())
		if err != nil {
			return err
		}
		cfg = c
		logger = logging.New(logging.Options{Level: cfg.LogLevel, JSON: jsonOutput})
		logger.Debug().Str("root", cfg.Root).Str("command", cmd.CommandPath()).Msg("config loaded")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("root", "", "Projects directory (default ~/.storybook/projects)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.storybook/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print results and logs as JSON")
}

// openLibrary opens the store and journal under the configured root.
// The returned func closes the journal.
func openLibrary() (*library.Library, func(), error) {
	store, err := projects.NewFileStore(cfg.Root, logger)
	if err != nil {
		return nil, nil, err
	}
	j := journal.OpenOptional(store.Root(), cfg.Journal.Enabled, logger)
	lib := library.New(store, convert.New(), j, logger)
	closer := func() {
		if j != nil {
			_ = j.Close()
		}
	}
	return lib, closer, nil
}

// withLibrary runs fn against an open library.
func withLibrary(fn func(lib *library.Library) error) error {
	lib, closeLib, err := openLibrary()
	if err != nil {
		return err
	}
	defer closeLib()
	return fn(lib)
}

func newRunner() agent.Runner {
	return agent.NewClaudeRunner(cfg.Agent.Binary, logger)
}

// agentOptions writes the MCP config that points the agent back at this
// binary, bound to projectID when it is not empty.
func agentOptions(projectID string) (agent.Options, error) {
	exe, err := os.Executable()
	if err != nil {
		return agent.Options{}, fmt.Errorf("locating storybook binary: %w", err)
	}
	dir := filepath.Join(cfg.Root, journal.DirName, "mcp")
	path, err := agent.WriteMCPConfig(dir, exe, cfg.Root, projectID)
	if err != nil {
		return agent.Options{}, err
	}
	return cfg.AgentOptions(path), nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
