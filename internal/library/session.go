package library

import (
	"context"
	"errors"

	"github.com/HendryAvila/storybook/internal/agent"
	"github.com/HendryAvila/storybook/internal/journal"
	"github.com/HendryAvila/storybook/internal/manuscript"
)

// ErrReviewFailed is returned by Review when the agent session ended with
// an error event. The event has already been emitted.
var ErrReviewFailed = errors.New("review failed")

// Emit receives the events of an agent session in order. An error stops
// the relay and is returned to the caller.
type Emit func(agent.Event) error

// exchange follows one agent session as its events are relayed.
type exchange struct {
	calls    []agent.Event
	terminal *agent.Event
}

func (x *exchange) observe(ev agent.Event) {
	switch {
	case ev.Type == agent.EventToolUse:
		x.calls = append(x.calls, ev)
	case ev.Terminal():
		t := ev
		x.terminal = &t
	}
}

func (x *exchange) outcome(ctxErr error) journal.Outcome {
	switch {
	case ctxErr != nil:
		return journal.Outcome{Status: journal.StatusCancelled}
	case x.terminal == nil:
		return journal.Outcome{Status: journal.StatusFailed}
	case x.terminal.Type == agent.EventError:
		return journal.Outcome{Status: journal.StatusFailed, CostUSD: x.terminal.Cost, Turns: x.terminal.Turns}
	default:
		return journal.Outcome{
			Status:         journal.StatusComplete,
			CostUSD:        x.terminal.Cost,
			Turns:          x.terminal.Turns,
			AgentSessionID: x.terminal.SessionID,
		}
	}
}

func (l *Library) applyCalls(projectID string, calls []agent.Event) {
	if len(calls) == 0 {
		return
	}
	if _, n, err := l.ApplyToolCalls(projectID, calls); err != nil {
		l.logger.Warn().Err(err).Str("project_id", projectID).Msg("folding tool calls failed")
	} else if n > 0 {
		l.logger.Debug().Str("project_id", projectID).Int("applied", n).Msg("tool calls folded")
	}
}

// ─── Chat ───────────────────────────────────────────────────────────────────

// ChatSession is a journaled chat about one project.
type ChatSession struct {
	lib     *Library
	chat    *agent.Chat
	project *manuscript.Project
	finish  func(journal.Outcome)
}

// StartChat prepares a chat about p. No agent process runs until the
// first Send.
func (l *Library) StartChat(runner agent.Runner, opts agent.Options, p *manuscript.Project) (*ChatSession, error) {
	chat, err := agent.NewChat(runner, l.store, p, opts)
	if err != nil {
		return nil, err
	}
	return &ChatSession{
		lib:     l,
		chat:    chat,
		project: p,
		finish:  l.TrackSession(p, journal.KindChat),
	}, nil
}

// Project returns the project the chat is about.
func (s *ChatSession) Project() *manuscript.Project { return s.project }

// Send runs one exchange, passing every event to emit. The exchange
// always ends with a terminal event: the agent's own, a complete event
// when the agent sent none, or an error event when the agent could not
// start. Only emit errors and context cancellation are returned.
func (s *ChatSession) Send(ctx context.Context, message string, emit Emit) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	x := &exchange{}
	events, err := s.chat.Send(ctx, message)
	if err != nil {
		failure := agent.Failure(err.Error(), "")
		x.terminal = &failure
		s.finish(x.outcome(nil))
		return emit(failure)
	}

	for ev := range events {
		x.observe(ev)
		if err := emit(ev); err != nil {
			s.finish(journal.Outcome{Status: journal.StatusCancelled})
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		s.finish(x.outcome(err))
		return err
	}
	if x.terminal == nil {
		done := agent.Event{Type: agent.EventComplete}
		x.terminal = &done
		if err := emit(done); err != nil {
			return err
		}
	}

	s.finish(x.outcome(nil))
	s.lib.applyCalls(s.project.ID, x.calls)
	return nil
}

// ─── Review ─────────────────────────────────────────────────────────────────

// Review runs a full editorial review of p and passes its events to emit.
//
// The agent's own complete event is held back. After the review is saved
// to latest_review.md and the journal, a "Saving review..." progress event
// and a complete event whose Content is the whole review are emitted
// instead. Tool calls made during the session are folded into the stored
// project.
func (l *Library) Review(ctx context.Context, runner agent.Runner, opts agent.Options, p *manuscript.Project, focusAreas []string, emit Emit) (agent.ReviewResult, error) {
	editor, err := agent.NewEditor(runner, l.store, opts)
	if err != nil {
		return agent.ReviewResult{}, err
	}
	finish := l.TrackSession(p, journal.KindReview)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	events, err := editor.Review(ctx, p, focusAreas)
	if err != nil {
		finish(journal.Outcome{Status: journal.StatusFailed})
		return agent.ReviewResult{}, err
	}

	var (
		x         exchange
		collector agent.Collector
	)
	for ev := range events {
		x.observe(ev)
		collector.Add(ev)
		if ev.Type == agent.EventComplete {
			continue
		}
		if err := emit(ev); err != nil {
			finish(journal.Outcome{Status: journal.StatusCancelled})
			return collector.Result(), err
		}
	}
	finish(x.outcome(ctx.Err()))
	result := collector.Result()
	if err := ctx.Err(); err != nil {
		return result, err
	}

	if x.terminal == nil {
		failure := agent.Failure("Agent ended without a result", "")
		result.Failure = &failure
		if err := emit(failure); err != nil {
			return result, err
		}
	}
	if !result.OK() {
		return result, ErrReviewFailed
	}

	if err := emit(agent.Progress("Saving review...", "")); err != nil {
		return result, err
	}
	l.applyCalls(p.ID, x.calls)
	if err := l.RecordReview(p, focusAreas, result.Markdown, result.Cost); err != nil {
		return result, err
	}

	return result, emit(agent.Event{
		Type:      agent.EventComplete,
		Content:   result.Markdown,
		Cost:      result.Cost,
		Turns:     result.Turns,
		SessionID: result.SessionID,
	})
}
