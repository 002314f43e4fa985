package flow

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/WidgetWorks/ChatFlow/internal/config"
	"github.com/WidgetWorks/ChatFlow/internal/models"
	"github.com/WidgetWorks/ChatFlow/internal/session"
	"github.com/WidgetWorks/ChatFlow/internal/transcript"
)

// fakeBackend records requests and serves canned responses.
type fakeBackend struct {
	sendReplies []string
	sendErr     error
	sends       []models.SendMessageRequest
	onSend      func()

	leadResp models.CreateLeadResponse
	leadErr  error
	leads    []models.CreateLeadRequest
	onLead   func()

	cancelResp models.CancelAppointmentResponse
	cancelErr  error
	cancels    []models.CancelAppointmentRequest

	schedResp models.ScheduleAppointmentResponse
	schedErr  error
	scheds    []models.ScheduleAppointmentRequest

	feedbacks   []models.FeedbackRequest
	feedbackErr error

	locks       map[string]string
	locksErr    error
	onSlotLocks func()
}

func (f *fakeBackend) SendMessage(ctx context.Context, req models.SendMessageRequest) (models.SendMessageResponse, error) {
	f.sends = append(f.sends, req)
	if f.onSend != nil {
		f.onSend()
	}
	if f.sendErr != nil {
		return models.SendMessageResponse{}, f.sendErr
	}
	reply := "ok"
	if len(f.sendReplies) > 0 {
		reply = f.sendReplies[0]
		f.sendReplies = f.sendReplies[1:]
	}
	return models.SendMessageResponse{Response: reply}, nil
}

func (f *fakeBackend) ScheduleAppointment(ctx context.Context, req models.ScheduleAppointmentRequest) (models.ScheduleAppointmentResponse, error) {
	f.scheds = append(f.scheds, req)
	return f.schedResp, f.schedErr
}

func (f *fakeBackend) CancelAppointment(ctx context.Context, req models.CancelAppointmentRequest) (models.CancelAppointmentResponse, error) {
	f.cancels = append(f.cancels, req)
	return f.cancelResp, f.cancelErr
}

func (f *fakeBackend) CreateLead(ctx context.Context, req models.CreateLeadRequest) (models.CreateLeadResponse, error) {
	f.leads = append(f.leads, req)
	if f.onLead != nil {
		f.onLead()
	}
	return f.leadResp, f.leadErr
}

func (f *fakeBackend) SubmitFeedback(ctx context.Context, req models.FeedbackRequest) error {
	f.feedbacks = append(f.feedbacks, req)
	return f.feedbackErr
}

func (f *fakeBackend) GetSlotLocks(ctx context.Context, date, username, botID string) (models.SlotLocksResponse, error) {
	if f.onSlotLocks != nil {
		f.onSlotLocks()
	}
	if f.locksErr != nil {
		return models.SlotLocksResponse{}, f.locksErr
	}
	return models.SlotLocksResponse{Locks: f.locks}, nil
}

// fakeTimer records scheduled functions so tests fire them deterministically.
type fakeTimer struct {
	scheduled []scheduledFn
}

type scheduledFn struct {
	delay time.Duration
	fn    func()
}

func (t *fakeTimer) ScheduleAfter(delay time.Duration, fn func()) (string, error) {
	t.scheduled = append(t.scheduled, scheduledFn{delay: delay, fn: fn})
	return fmt.Sprintf("timer_%d", len(t.scheduled)), nil
}

func (t *fakeTimer) Cancel(id string) error { return nil }

// fire runs every scheduled function in order and clears the queue.
func (t *fakeTimer) fire() {
	pending := t.scheduled
	t.scheduled = nil
	for _, s := range pending {
		s.fn()
	}
}

func newTestController(t *testing.T, be *fakeBackend) (*Controller, *transcript.Log, *fakeTimer) {
	t.Helper()
	sess := session.NewResolver("bot-1", "tok", []session.Source{
		session.StaticSource("config", "demo_user"),
	})
	log := transcript.NewLog()
	timer := &fakeTimer{}
	cfg := &config.Config{}
	cfg.ApplyCompany(models.CompanyConfig{Tone: "Friendly", WelcomeMessage: "Welcome!"})
	c := NewController(sess, be, log, timer, cfg, time.UTC)
	return c, log, timer
}

func lastBot(t *testing.T, log *transcript.Log) string {
	t.Helper()
	msgs := log.Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if !msgs[i].FromUser {
			return msgs[i].Body
		}
	}
	t.Fatal("no bot message in transcript")
	return ""
}

func say(t *testing.T, c *Controller, text string) {
	t.Helper()
	if err := c.HandleUtterance(context.Background(), text); err != nil {
		t.Fatalf("HandleUtterance(%q): %v", text, err)
	}
}

func TestDispatchRejectsEmptyAndOversized(t *testing.T) {
	c, log, _ := newTestController(t, &fakeBackend{})

	if err := c.HandleUtterance(context.Background(), "   "); !errors.Is(err, models.ErrEmptyUtterance) {
		t.Errorf("err = %v, want ErrEmptyUtterance", err)
	}
	long := make([]byte, models.MaxUtteranceLength+1)
	for i := range long {
		long[i] = 'a'
	}
	if err := c.HandleUtterance(context.Background(), string(long)); !errors.Is(err, models.ErrUtteranceTooLong) {
		t.Errorf("err = %v, want ErrUtteranceTooLong", err)
	}
	if len(log.Messages()) != 0 {
		t.Error("rejected input must not be echoed")
	}
}

func TestDispatchRejectsWhileBusy(t *testing.T) {
	be := &fakeBackend{leadResp: models.CreateLeadResponse{Success: true}}
	c, _, _ := newTestController(t, be)

	// Reenter the dispatcher from inside the in-flight lead submission; the
	// busy guard must reject instead of queueing or deadlocking.
	var reentrant error
	be.onLead = func() {
		reentrant = c.HandleUtterance(context.Background(), "hello?")
	}

	say(t, c, "share my details")
	say(t, c, "Asha")
	say(t, c, "asha@example.com")
	say(t, c, "skip")
	say(t, c, "skip")

	if !errors.Is(reentrant, models.ErrFlowBusy) {
		t.Errorf("reentrant err = %v, want ErrFlowBusy", reentrant)
	}
}

func TestAssistantExchangeErrorShowsApology(t *testing.T) {
	be := &fakeBackend{sendErr: errors.New("backend down")}
	c, log, _ := newTestController(t, be)

	say(t, c, "hello")
	if got := lastBot(t, log); got != assistantApology {
		t.Errorf("last message = %q, want apology", got)
	}
	if log.Loading() {
		t.Error("loading placeholder must be cleared on failure")
	}
	if c.ActiveFlow() != models.FlowIdle {
		t.Errorf("active = %v, want idle", c.ActiveFlow())
	}
}

func TestAssistantExchangeCarriesIdentity(t *testing.T) {
	be := &fakeBackend{sendReplies: []string{"hi!"}}
	c, log, _ := newTestController(t, be)

	say(t, c, "hello")
	if len(be.sends) != 1 {
		t.Fatalf("got %d sends, want 1", len(be.sends))
	}
	req := be.sends[0]
	if req.Message != "hello" || req.Username != "demo_user" || req.BotID != "bot-1" || req.SessionID == "" {
		t.Errorf("request = %+v", req)
	}
	if got := lastBot(t, log); got != "hi!" {
		t.Errorf("last message = %q, want reply", got)
	}
}

func TestResetChatRestoresWelcomeAndClearsFeedback(t *testing.T) {
	be := &fakeBackend{sendReplies: []string{"hi!"}}
	c, log, _ := newTestController(t, be)

	say(t, c, "wrong button")
	if err := c.RateFeedback(context.Background(), 4, ""); err != nil {
		t.Fatalf("RateFeedback: %v", err)
	}
	if !c.FeedbackGiven() {
		t.Fatal("expected feedback given")
	}

	c.ResetChat()
	if c.FeedbackGiven() {
		t.Error("reset must clear the feedback flag")
	}
	msgs := log.Messages()
	if len(msgs) != 2 || msgs[0].Body != "Welcome!" || msgs[1].Body != GreetingMessage {
		t.Errorf("transcript after reset = %+v", msgs)
	}
	if c.ActiveFlow() != models.FlowIdle {
		t.Errorf("active = %v, want idle", c.ActiveFlow())
	}
}
