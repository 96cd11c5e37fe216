package agent

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DefaultBinary is the agent CLI looked up on PATH.
const DefaultBinary = "claude"

const (
	stderrLimit = 10 * 1024
	killGrace   = 3 * time.Second
)

// ClaudeRunner runs the claude CLI in print mode with stream-json output.
type ClaudeRunner struct {
	binary string
	logger zerolog.Logger
}

var _ Runner = (*ClaudeRunner)(nil)

// NewClaudeRunner returns a runner for binary, DefaultBinary when empty.
func NewClaudeRunner(binary string, logger zerolog.Logger) *ClaudeRunner {
	if binary == "" {
		binary = DefaultBinary
	}
	return &ClaudeRunner{
		binary: binary,
		logger: logger.With().Str("component", "agent.claude").Logger(),
	}
}

// Args returns the command line for req, without the binary.
func (r *ClaudeRunner) Args(req Request) []string {
	args := []string{
		"-p", req.Prompt,
		"--output-format", "stream-json",
		"--verbose",
	}
	if req.Model != "" {
		args = append(args, "--model", req.Model)
	}
	if req.SystemPrompt != "" {
		args = append(args, "--system-prompt", req.SystemPrompt)
	}
	if req.MaxTurns > 0 {
		args = append(args, "--max-turns", strconv.Itoa(req.MaxTurns))
	}
	if len(req.AllowedTools) > 0 {
		args = append(args, "--allowedTools", strings.Join(req.AllowedTools, ","))
	}
	if req.MCPConfig != "" {
		args = append(args, "--mcp-config", req.MCPConfig)
	}
	if req.PermissionMode != "" {
		args = append(args, "--permission-mode", req.PermissionMode)
	}
	if req.ResumeID != "" {
		args = append(args, "--resume", req.ResumeID)
	}
	return args
}

// Run starts the agent and streams its events. Cancelling ctx terminates
// the process and closes the channel without a terminal event.
func (r *ClaudeRunner) Run(ctx context.Context, req Request) (<-chan Event, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, errors.New("agent prompt is empty")
	}

	cmd := exec.CommandContext(ctx, r.binary, r.Args(req)...)
	cmd.Dir = req.WorkDir
	cmd.Env = filterClaudeEnv(os.Environ())
	cmd.Cancel = func() error { return cmd.Process.Signal(syscall.SIGTERM) }
	cmd.WaitDelay = killGrace

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("agent stdout: %w", err)
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("agent stderr: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", r.binary, err)
	}
	r.logger.Debug().Int("pid", cmd.Process.Pid).Str("dir", req.WorkDir).Bool("resume", req.ResumeID != "").Msg("agent started")

	events := make(chan Event)
	go func() {
		defer close(events)

		stderr := &cappedBuffer{limit: stderrLimit}
		terminal := false
		emit := func(ev Event) bool {
			if ev.Terminal() {
				terminal = true
			}
			select {
			case events <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		var g errgroup.Group
		g.Go(func() error {
			_, err := io.Copy(stderr, stderrPipe)
			return err
		})
		g.Go(func() error {
			err := ParseStream(stdout, emit)
			// Keep the pipe drained so the process can exit.
			_, _ = io.Copy(io.Discard, stdout)
			return err
		})
		streamErr := g.Wait()
		waitErr := cmd.Wait()

		if ctx.Err() != nil {
			r.logger.Debug().Msg("agent cancelled")
			return
		}
		if streamErr != nil && !terminal {
			emit(Failure("Agent output could not be read", streamErr.Error()))
			return
		}
		if waitErr != nil && !terminal {
			r.logger.Warn().Err(waitErr).Int("exit_code", exitCode(waitErr)).Msg("agent exited without a result")
			emit(Failure(fmt.Sprintf("Agent exited with code %d", exitCode(waitErr)), strings.TrimSpace(stderr.String())))
			return
		}
		if !terminal {
			emit(Failure("Agent ended without a result", strings.TrimSpace(stderr.String())))
		}
	}()
	return events, nil
}

func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// filterClaudeEnv drops CLAUDE_CODE_* and CLAUDECODE so an agent started
// from inside another agent session does not think it is nested.
func filterClaudeEnv(env []string) []string {
	filtered := make([]string, 0, len(env))
	for _, e := range env {
		key := e
		if idx := strings.IndexByte(e, '='); idx >= 0 {
			key = e[:idx]
		}
		if strings.HasPrefix(key, "CLAUDE_CODE_") || key == "CLAUDECODE" {
			continue
		}
		filtered = append(filtered, e)
	}
	return filtered
}

// cappedBuffer keeps the first limit bytes written to it and discards the
// rest while still reporting full writes.
type cappedBuffer struct {
	mu    sync.Mutex
	buf   bytes.Buffer
	limit int
}

func (c *cappedBuffer) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	remaining := c.limit - c.buf.Len()
	if remaining <= 0 {
		return len(p), nil
	}
	chunk := p
	if len(chunk) > remaining {
		chunk = chunk[:remaining]
	}
	_, err := c.buf.Write(chunk)
	return len(p), err
}

func (c *cappedBuffer) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.String()
}
