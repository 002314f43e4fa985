package flow

import (
	"context"
	"log/slog"

	"github.com/WidgetWorks/ChatFlow/internal/models"
	"github.com/WidgetWorks/ChatFlow/internal/util"
)

// feedbackPromptHeading invites the 1-5 rating.
const feedbackPromptHeading = "How was your chat experience?"

// feedbackThanks are the randomized acknowledgement lines.
var feedbackThanks = []string{
	"Thanks for the feedback!",
	"Appreciate your rating!",
	"Got it, thank you!",
}

// showFeedbackPrompt renders the rating prompt. continuation, if non-nil, is
// the action the user originally asked for (close or reset); it runs a fixed
// delay after a rating lands so a comment can still be typed, and is
// abandoned silently if the prompt is dismissed unrated. Callers must hold mu.
func (c *Controller) showFeedbackPrompt(continuation func()) {
	if c.feedback.Pending {
		// Keep the earlier continuation; showing twice must not stack them.
		slog.Debug("Feedback prompt already pending")
		return
	}
	slog.Info("Feedback prompt shown", "continuation_set", continuation != nil)
	c.feedback = feedbackState{Pending: true, Continuation: continuation}
	c.say(feedbackPromptHeading)

	if hook := c.PresentFeedbackPrompt; hook != nil {
		c.mu.Unlock()
		hook()
		c.mu.Lock()
	}
}

// FeedbackPending reports whether the rating prompt is awaiting a rating.
func (c *Controller) FeedbackPending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.feedback.Pending
}

// RateFeedback submits a star rating with an optional free-text reason. The
// POST is best-effort: its failure is swallowed and never shown. A rating
// marks feedback as given for the rest of the session and, when the prompt
// carried a continuation, schedules it after the comment grace period.
func (c *Controller) RateFeedback(ctx context.Context, rating int, reason string) error {
	if rating < 1 || rating > 5 {
		return models.ErrInvalidRating
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.feedback.Pending {
		return models.ErrNoFeedbackPending
	}

	slog.Info("Feedback rating received", "rating", rating)
	c.feedbackGiven = true
	continuation := c.feedback.Continuation
	c.feedback = feedbackState{}

	sess := c.sess.Session()
	req := models.FeedbackRequest{
		Username:  sess.Username,
		SessionID: sess.SessionID,
		Rating:    rating,
		Reason:    reason,
	}
	c.runBlocking(func() {
		if err := c.backend.SubmitFeedback(ctx, req); err != nil {
			slog.Debug("Feedback submission failed, ignoring", "error", err)
		}
	})

	c.say(util.PickRandom(feedbackThanks))

	if continuation != nil {
		if _, err := c.timer.ScheduleAfter(feedbackContinuationDelay, continuation); err != nil {
			slog.Error("Failed to schedule feedback continuation", "error", err)
		}
	}
	return nil
}

// DismissFeedback closes the prompt without a rating. Any pending
// continuation is abandoned silently; the prompt may be shown again on the
// next close or reset attempt.
func (c *Controller) DismissFeedback() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.feedback.Pending {
		return
	}
	slog.Info("Feedback prompt dismissed without rating")
	c.feedback = feedbackState{}
}

// RequestClose asks to close the chat. Before a rating has been given this
// shows the feedback prompt with the close deferred as its continuation;
// afterwards the chat closes immediately.
func (c *Controller) RequestClose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requestCloseLocked()
}

func (c *Controller) requestCloseLocked() {
	if !c.feedbackGiven {
		c.showFeedbackPrompt(c.OnClose)
		return
	}
	if c.OnClose != nil {
		hook := c.OnClose
		c.mu.Unlock()
		hook()
		c.mu.Lock()
	}
}

// RequestReset asks to restart the chat. Before a rating has been given this
// shows the feedback prompt with the reset deferred as its continuation;
// afterwards the chat resets immediately.
func (c *Controller) RequestReset() {
	c.mu.Lock()
	if c.feedbackGiven {
		c.mu.Unlock()
		c.ResetChat()
		return
	}
	c.showFeedbackPrompt(c.ResetChat)
	c.mu.Unlock()
}
