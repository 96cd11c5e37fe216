package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/HendryAvila/storybook/internal/agent"
	"github.com/HendryAvila/storybook/internal/library"
	"github.com/HendryAvila/storybook/internal/manuscript"
)

// inbound is one line read by Chat.
type inbound struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

func (b *Bridge) emit(ev agent.Event) error {
	return b.out.Write(ev)
}

func (b *Bridge) project(ref string) (*manuscript.Project, error) {
	if b.runner == nil {
		return nil, errors.New("no agent runner configured")
	}
	return b.lib.Get(ref)
}

// fail writes a session-level error event and returns err.
func (b *Bridge) fail(message string, err error) error {
	if werr := b.emit(agent.Failure(message, err.Error())); werr != nil {
		return werr
	}
	return err
}

// Chat runs a chat about ref, reading message lines from in until it is
// exhausted or ctx is done. Each exchange ends with a complete event, or
// an error event when the agent failed. Invalid lines produce an error
// event and the loop continues.
func (b *Bridge) Chat(ctx context.Context, ref string, in io.Reader) error {
	p, err := b.project(ref)
	if err != nil {
		return b.fail("Chat session failed", err)
	}
	session, err := b.lib.StartChat(b.runner, b.opts, p)
	if err != nil {
		return b.fail("Chat session failed", err)
	}
	b.logger.Info().Str("project_id", p.ID).Msg("chat started")

	sc := newScanner(in)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var msg inbound
		if err := json.Unmarshal([]byte(line), &msg); err != nil {
			if err := b.emit(agent.Failure("Invalid JSON input", err.Error())); err != nil {
				return err
			}
			continue
		}
		if msg.Type != "message" {
			if err := b.emit(agent.Failure(fmt.Sprintf("Unknown input type %q", msg.Type), "")); err != nil {
				return err
			}
			continue
		}
		if err := session.Send(ctx, msg.Content, b.emit); err != nil {
			return err
		}
	}
	return sc.Err()
}

// Review runs a full editorial review of ref and streams its events. The
// last line is a complete event whose content is the saved review, or an
// error event.
func (b *Bridge) Review(ctx context.Context, ref string, focusAreas []string) error {
	p, err := b.project(ref)
	if err != nil {
		return b.fail("Review failed", err)
	}
	b.logger.Info().Str("project_id", p.ID).Strs("focus", focusAreas).Msg("review started")

	_, err = b.lib.Review(ctx, b.runner, b.opts, p, focusAreas, b.emit)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, library.ErrReviewFailed), errors.Is(err, context.Canceled):
		return err
	default:
		return b.fail("Review failed", err)
	}
}
