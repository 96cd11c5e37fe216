package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/HendryAvila/storybook/internal/bridge"
	"github.com/HendryAvila/storybook/internal/httpapi"
	"github.com/HendryAvila/storybook/internal/library"
	"github.com/HendryAvila/storybook/internal/projects"
	"github.com/HendryAvila/storybook/internal/server"
)

// ─── MCP ────────────────────────────────────────────────────────────────────

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the storybook tools over MCP on stdio",
	Long: `Runs the MCP server the editing agent talks to. With --project every tool
defaults to that project; without it tools take a project_id argument.

Add to an MCP client config:

  {"mcpServers": {"storybook": {"command": "storybook", "args": ["mcp"]}}}`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		projectID, _ := cmd.Flags().GetString("project")
		store, err := projects.NewFileStore(cfg.Root, logger)
		if err != nil {
			return err
		}
		s, err := server.New(server.Config{Store: store, ProjectID: projectID, Logger: logger})
		if err != nil {
			return fmt.Errorf("creating server: %w", err)
		}
		return mcpserver.ServeStdio(s)
	},
}

// ─── Bridge ─────────────────────────────────────────────────────────────────

func newBridge(lib *library.Library, projectID string) (*bridge.Bridge, error) {
	opts, err := agentOptions(projectID)
	if err != nil {
		return nil, err
	}
	return bridge.New(bridge.Config{
		Library: lib,
		Runner:  newRunner(),
		Agent:   opts,
		Logger:  logger,
	}, os.Stdout)
}

var bridgeCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Answer JSON command lines on stdin for a desktop front end",
	Long: `Reads one JSON request per line from stdin and writes one JSON response per
line to stdout:

  {"id":"1","command":"list_projects"}
  {"id":"1","success":true,"data":[...]}

Logs go to stderr.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()
		return withLibrary(func(lib *library.Library) error {
			b, err := newBridge(lib, "")
			if err != nil {
				return err
			}
			return b.Serve(ctx, os.Stdin)
		})
	},
}

var bridgeChatCmd = &cobra.Command{
	Use:   "chat <project>",
	Short: "Stream a chat as JSON event lines",
	Long: `Reads {"type":"message","content":"..."} lines from stdin and streams the
agent's events as JSON lines. Every exchange ends with a complete or an
error event.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()
		return withLibrary(func(lib *library.Library) error {
			b, err := newBridge(lib, args[0])
			if err != nil {
				return err
			}
			return b.Chat(ctx, args[0], os.Stdin)
		})
	},
}

var bridgeReviewCmd = &cobra.Command{
	Use:   "review <project>",
	Short: "Stream a full review as JSON event lines",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		focus, _ := cmd.Flags().GetStringSlice("focus")
		ctx, stop := signalContext()
		defer stop()
		return withLibrary(func(lib *library.Library) error {
			b, err := newBridge(lib, args[0])
			if err != nil {
				return err
			}
			err = b.Review(ctx, args[0], focus)
			if errors.Is(err, library.ErrReviewFailed) {
				return errReported
			}
			return err
		})
	},
}

// ─── HTTP ───────────────────────────────────────────────────────────────────

const shutdownGrace = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API for the web client",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		debug, _ := cmd.Flags().GetBool("debug")
		ctx, stop := signalContext()
		defer stop()

		return withLibrary(func(lib *library.Library) error {
			opts, err := agentOptions("")
			if err != nil {
				return err
			}
			router, err := httpapi.New(httpapi.Config{
				Library:     lib,
				Runner:      newRunner(),
				Agent:       opts,
				CORSOrigins: cfg.HTTP.CORSOrigins,
				Version:     server.Version,
				Logger:      logger,
				Debug:       debug,
			})
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:              cfg.HTTP.Addr,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				logger.Info().Str("addr", srv.Addr).Str("root", cfg.Root).Msg("http api listening")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
				defer cancel()
				logger.Info().Msg("shutting down http api")
				return srv.Shutdown(shutdownCtx)
			})
			return g.Wait()
		})
	},
}

func init() {
	mcpCmd.Flags().String("project", "", "Project id or prefix the tools default to")

	bridgeReviewCmd.Flags().StringSlice("focus", nil, "Focus areas, e.g. pacing,dialogue")
	bridgeCmd.AddCommand(bridgeChatCmd, bridgeReviewCmd)

	serveCmd.Flags().String("addr", "", "Listen address (default from config, 127.0.0.1:8787)")
	serveCmd.Flags().Bool("debug", false, "Run gin in debug mode")

	rootCmd.AddCommand(mcpCmd, bridgeCmd, serveCmd)
}
