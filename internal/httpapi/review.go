package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/HendryAvila/storybook/internal/agent"
	"github.com/HendryAvila/storybook/internal/library"
)

// ReviewRequest is the optional body of POST /api/projects/:id/review.
type ReviewRequest struct {
	FocusAreas []string `json:"focus_areas"`
}

// streamReview runs an editorial review and streams its events as SSE.
// Each event is named after its type and carries the event as JSON data.
func (h *handlers) streamReview(c *gin.Context) {
	if h.runner == nil {
		failStatus(c, http.StatusNotImplemented, "no agent is configured")
		return
	}
	p, err := h.lib.Get(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	var req ReviewRequest
	if c.Request.ContentLength != 0 && !bind(c, &req) {
		return
	}

	ctx := c.Request.Context()
	events := make(chan agent.Event)
	send := func(ev agent.Event) error {
		select {
		case events <- ev:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	go func() {
		defer close(events)
		_, err := h.lib.Review(ctx, h.runner, h.opts, p, req.FocusAreas, send)
		if err == nil || errors.Is(err, library.ErrReviewFailed) || errors.Is(err, context.Canceled) {
			return
		}
		h.logger.Error().Err(err).Str("project_id", p.ID).Msg("review failed")
		_ = send(agent.Failure("Review failed", err.Error()))
	}()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	for ev := range events {
		c.SSEvent(string(ev.Type), ev)
		c.Writer.Flush()
	}
}
