package flow

import (
	"context"
	"errors"
	"testing"

	"github.com/WidgetWorks/ChatFlow/internal/models"
)

func TestComplaintShowsFeedbackPrompt(t *testing.T) {
	be := &fakeBackend{}
	c, log, _ := newTestController(t, be)

	var promptShown bool
	c.PresentFeedbackPrompt = func() { promptShown = true }

	say(t, c, "wrong button")
	if !c.FeedbackPending() {
		t.Fatal("expected feedback prompt pending")
	}
	if !promptShown {
		t.Error("prompt hook not invoked")
	}
	if got := lastBot(t, log); got != feedbackPromptHeading {
		t.Errorf("message = %q, want prompt heading", got)
	}
	// The complaint is terminal: it must not also reach the assistant.
	if len(be.sends) != 0 {
		t.Error("complaint must not be forwarded to the assistant")
	}
}

func TestRateFeedback(t *testing.T) {
	be := &fakeBackend{}
	c, log, _ := newTestController(t, be)

	if err := c.RateFeedback(context.Background(), 4, ""); !errors.Is(err, models.ErrNoFeedbackPending) {
		t.Errorf("err = %v, want ErrNoFeedbackPending", err)
	}

	say(t, c, "not helpful")
	if err := c.RateFeedback(context.Background(), 0, ""); !errors.Is(err, models.ErrInvalidRating) {
		t.Errorf("err = %v, want ErrInvalidRating", err)
	}
	if err := c.RateFeedback(context.Background(), 6, ""); !errors.Is(err, models.ErrInvalidRating) {
		t.Errorf("err = %v, want ErrInvalidRating", err)
	}

	if err := c.RateFeedback(context.Background(), 4, "took too long"); err != nil {
		t.Fatalf("RateFeedback: %v", err)
	}
	if len(be.feedbacks) != 1 {
		t.Fatalf("got %d feedback submissions", len(be.feedbacks))
	}
	req := be.feedbacks[0]
	if req.Rating != 4 || req.Reason != "took too long" || req.Username != "demo_user" {
		t.Errorf("feedback payload = %+v", req)
	}
	if !c.FeedbackGiven() {
		t.Error("rating must mark feedback given")
	}
	if c.FeedbackPending() {
		t.Error("prompt must close after rating")
	}

	thanks := lastBot(t, log)
	found := false
	for _, line := range feedbackThanks {
		if thanks == line {
			found = true
		}
	}
	if !found {
		t.Errorf("thanks = %q, not one of the canned lines", thanks)
	}
}

func TestRateFeedbackSwallowsSubmitError(t *testing.T) {
	be := &fakeBackend{feedbackErr: errors.New("backend down")}
	c, log, _ := newTestController(t, be)

	say(t, c, "didn't help")
	if err := c.RateFeedback(context.Background(), 2, ""); err != nil {
		t.Fatalf("RateFeedback must ignore submission failures: %v", err)
	}
	thanks := lastBot(t, log)
	for _, line := range feedbackThanks {
		if thanks == line {
			return
		}
	}
	t.Errorf("thanks = %q, failure must not surface", thanks)
}

func TestDismissFeedbackAbandonsContinuation(t *testing.T) {
	be := &fakeBackend{}
	c, _, timer := newTestController(t, be)

	var closed bool
	c.OnClose = func() { closed = true }

	c.RequestClose()
	if !c.FeedbackPending() {
		t.Fatal("close before rating must show the prompt")
	}
	if closed {
		t.Fatal("close must be deferred behind the prompt")
	}

	c.DismissFeedback()
	if c.FeedbackPending() {
		t.Error("prompt must close on dismissal")
	}
	timer.fire()
	if closed {
		t.Error("dismissal must abandon the deferred close")
	}
	if c.FeedbackGiven() {
		t.Error("dismissal is not a rating")
	}
}

func TestCloseContinuationRunsAfterRating(t *testing.T) {
	be := &fakeBackend{}
	c, _, timer := newTestController(t, be)

	var closed bool
	c.OnClose = func() { closed = true }

	c.RequestClose()
	if err := c.RateFeedback(context.Background(), 5, ""); err != nil {
		t.Fatalf("RateFeedback: %v", err)
	}

	if len(timer.scheduled) != 1 || timer.scheduled[0].delay != feedbackContinuationDelay {
		t.Fatalf("scheduled = %+v, want continuation at %v", timer.scheduled, feedbackContinuationDelay)
	}
	if closed {
		t.Fatal("close must wait out the comment grace period")
	}
	timer.fire()
	if !closed {
		t.Error("continuation must run the deferred close")
	}
}

func TestCloseAfterFeedbackIsImmediate(t *testing.T) {
	be := &fakeBackend{}
	c, _, timer := newTestController(t, be)

	var closed bool
	c.OnClose = func() { closed = true }

	say(t, c, "wrong button")
	if err := c.RateFeedback(context.Background(), 5, ""); err != nil {
		t.Fatalf("RateFeedback: %v", err)
	}
	timer.fire()

	c.RequestClose()
	if !closed {
		t.Error("close after feedback must be immediate")
	}
}

func TestComplaintAfterFeedbackClosesChat(t *testing.T) {
	be := &fakeBackend{}
	c, _, _ := newTestController(t, be)

	var closed bool
	c.OnClose = func() { closed = true }

	say(t, c, "wrong button")
	if err := c.RateFeedback(context.Background(), 3, ""); err != nil {
		t.Fatalf("RateFeedback: %v", err)
	}

	say(t, c, "wrong button")
	if !closed {
		t.Error("a second complaint must close instead of re-prompting")
	}
	if len(be.sends) != 0 {
		t.Error("complaints must not reach the assistant")
	}
}

func TestResetBeforeFeedbackPromptsFirst(t *testing.T) {
	be := &fakeBackend{}
	c, log, timer := newTestController(t, be)

	c.RequestReset()
	if !c.FeedbackPending() {
		t.Fatal("reset before rating must show the prompt")
	}

	if err := c.RateFeedback(context.Background(), 5, ""); err != nil {
		t.Fatalf("RateFeedback: %v", err)
	}
	timer.fire()

	// The deferred reset replays the welcome into an empty transcript.
	msgs := log.Messages()
	if len(msgs) != 2 || msgs[0].Body != "Welcome!" || msgs[1].Body != GreetingMessage {
		t.Errorf("transcript after deferred reset = %+v", msgs)
	}
	if c.FeedbackGiven() {
		t.Error("reset must clear the feedback flag")
	}
}

func TestShowFeedbackPromptKeepsEarlierContinuation(t *testing.T) {
	be := &fakeBackend{}
	c, _, timer := newTestController(t, be)

	var closed, reset bool
	c.OnClose = func() { closed = true }

	c.RequestClose()
	// A complaint while the prompt is already pending must not replace the
	// deferred close.
	c.mu.Lock()
	c.showFeedbackPrompt(func() { reset = true })
	c.mu.Unlock()

	if err := c.RateFeedback(context.Background(), 5, ""); err != nil {
		t.Fatalf("RateFeedback: %v", err)
	}
	timer.fire()
	if !closed || reset {
		t.Errorf("closed = %v, reset = %v; the first continuation must win", closed, reset)
	}
}
