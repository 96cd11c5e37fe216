// Package bridge drives storybook from another process over line-delimited
// JSON on stdin and stdout.
//
// Three modes share one wire discipline, one JSON record per line written
// and flushed as soon as it is produced:
//
//   - Serve answers request lines {"id","command","args"} with response
//     lines {"id","success","data","error"} from a closed command table.
//   - Chat reads {"type":"message","content":...} lines and streams agent
//     events for each exchange.
//   - Review streams progress and agent events and finishes with a
//     complete event carrying the review markdown.
package bridge

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/HendryAvila/storybook/internal/agent"
	"github.com/HendryAvila/storybook/internal/library"
)

// maxLine bounds one input line. Manuscripts travel inline in
// save_manuscript requests.
const maxLine = 32 * 1024 * 1024

// Writer serializes records to one output, one per line. It is safe for
// concurrent use.
type Writer struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewWriter creates a Writer on w. Writes are not buffered.
func NewWriter(w io.Writer) *Writer {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &Writer{enc: enc}
}

// Write encodes v as one line.
func (w *Writer) Write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.enc.Encode(v)
}

// Config holds the bridge's dependencies.
type Config struct {
	Library *library.Library
	Runner  agent.Runner  // needed by Chat and Review only
	Agent   agent.Options // chat and review session options
	Logger  zerolog.Logger
}

// Bridge owns one library for the lifetime of the process.
type Bridge struct {
	lib      *library.Library
	runner   agent.Runner
	opts     agent.Options
	out      *Writer
	commands map[string]handler
	logger   zerolog.Logger
}

// New creates a Bridge writing to out.
func New(cfg Config, out io.Writer) (*Bridge, error) {
	if cfg.Library == nil {
		return nil, fmt.Errorf("bridge needs a library")
	}
	b := &Bridge{
		lib:    cfg.Library,
		runner: cfg.Runner,
		opts:   cfg.Agent,
		out:    NewWriter(out),
		logger: cfg.Logger.With().Str("component", "bridge").Logger(),
	}
	b.commands = b.commandTable()
	return b, nil
}

// newScanner returns a line scanner sized for inline manuscripts.
func newScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	return sc
}

// ─── Command mode ───────────────────────────────────────────────────────────

// Request is one command line.
type Request struct {
	ID      string          `json:"id"`
	Command string          `json:"command"`
	Args    json.RawMessage `json:"args,omitempty"`
}

// Response answers one Request. Code classifies failures for callers
// that map them to statuses.
type Response struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

// Serve answers request lines from r until r is exhausted or ctx is done.
// Malformed lines get an error response and do not stop the loop.
func (b *Bridge) Serve(ctx context.Context, r io.Reader) error {
	sc := newScanner(r)
	for sc.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		var req Request
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			if werr := b.out.Write(Response{Success: false, Error: "invalid request: " + err.Error(), Code: string(library.KindInvalid)}); werr != nil {
				return werr
			}
			continue
		}
		if err := b.out.Write(b.Handle(req)); err != nil {
			return err
		}
	}
	return sc.Err()
}

// Handle runs one request against the command table.
func (b *Bridge) Handle(req Request) Response {
	h, ok := b.commands[req.Command]
	if !ok {
		return Response{
			ID:    req.ID,
			Error: fmt.Sprintf("unknown command %q", req.Command),
			Code:  string(library.KindInvalid),
		}
	}

	data, err := h(req.Args)
	if err != nil {
		kind := library.Classify(err)
		ev := b.logger.Debug()
		if kind == library.KindInternal {
			ev = b.logger.Error()
		}
		ev.Err(err).Str("command", req.Command).Str("id", req.ID).Msg("command failed")
		return Response{ID: req.ID, Error: err.Error(), Code: string(kind)}
	}
	return Response{ID: req.ID, Success: true, Data: data}
}

// Commands returns the names of every command Serve accepts.
func (b *Bridge) Commands() []string {
	names := make([]string, 0, len(b.commands))
	for _, name := range commandNames {
		if _, ok := b.commands[name]; ok {
			names = append(names, name)
		}
	}
	return names
}
