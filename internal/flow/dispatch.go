package flow

import (
	"context"
	"log/slog"
	"strings"

	"github.com/WidgetWorks/ChatFlow/internal/models"
	"github.com/WidgetWorks/ChatFlow/internal/validate"
)

// HandleUtterance is the top-level per-message decision procedure. Exactly one
// action results: the active flow consumes the utterance, a new flow starts,
// the feedback prompt appears, or the message falls through to the generic
// assistant exchange.
//
// Input arriving while a flow-internal request is in flight is rejected with
// ErrFlowBusy rather than queued; it is not echoed into the transcript.
func (c *Controller) HandleUtterance(ctx context.Context, utterance string) error {
	text := strings.TrimSpace(utterance)
	if text == "" {
		return models.ErrEmptyUtterance
	}
	if len(text) > models.MaxUtteranceLength {
		return models.ErrUtteranceTooLong
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.busy {
		slog.Warn("Dispatch rejecting utterance, flow request in flight", "active", c.active)
		return models.ErrFlowBusy
	}

	c.transcript.AddUser(text)
	slog.Debug("Dispatch routing utterance", "active", c.active, "length", len(text))

	// While scheduling is armed and untitled, the next utterance is captured
	// verbatim as the appointment title. It is tagged, not consumed: routing
	// continues and the text still reaches the assistant.
	if c.appt.Scheduling && c.appt.Title == "" {
		c.appt.Title = text
		slog.Debug("Dispatch captured appointment title")
	}

	// 1. An active lead flow consumes every utterance; no trigger matching.
	if c.active == models.FlowLeadCapture {
		return c.handleLeadMessage(ctx, text)
	}

	// 2. Lead-capture trigger phrase, only from idle.
	if c.active == models.FlowIdle && isLeadTrigger(text) {
		c.startLeadFlow()
		return nil
	}

	// 3. Standalone "cancel" starts the cancellation flow, only from idle.
	if c.active == models.FlowIdle && validate.HasCancelTrigger(text) {
		c.startCancellationFlow()
		return nil
	}

	// 4. A cancellation awaiting its id consumes the utterance as the id.
	if c.active == models.FlowCancellation && c.cancelAwaitingID {
		return c.handleCancellationID(ctx, text)
	}

	// 5. Wrong-button / not-helpful complaints invite the feedback prompt
	// once per session; afterwards they close the chat instead.
	if c.active == models.FlowIdle && validate.IsComplaint(text) {
		if !c.feedbackGiven {
			c.showFeedbackPrompt(nil)
		} else {
			slog.Debug("Dispatch complaint after feedback, requesting close")
			c.requestCloseLocked()
		}
		return nil
	}

	// 6. Fall through to the generic assistant exchange.
	return c.assistantExchange(ctx, text)
}
