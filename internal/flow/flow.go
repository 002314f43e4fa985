// Package flow implements the conversation-flow engine: the flow controller
// owning the single active guided dialogue, the per-utterance dispatch router,
// and the lead-capture, cancellation, appointment-scheduling, and feedback
// flows layered over the generic assistant exchange.
package flow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/WidgetWorks/ChatFlow/internal/config"
	"github.com/WidgetWorks/ChatFlow/internal/models"
	"github.com/WidgetWorks/ChatFlow/internal/session"
	"github.com/WidgetWorks/ChatFlow/internal/slots"
	"github.com/WidgetWorks/ChatFlow/internal/tone"
	"github.com/WidgetWorks/ChatFlow/internal/transcript"
)

// Backend is the slice of the backend client the engine depends on.
type Backend interface {
	SendMessage(ctx context.Context, req models.SendMessageRequest) (models.SendMessageResponse, error)
	ScheduleAppointment(ctx context.Context, req models.ScheduleAppointmentRequest) (models.ScheduleAppointmentResponse, error)
	CancelAppointment(ctx context.Context, req models.CancelAppointmentRequest) (models.CancelAppointmentResponse, error)
	CreateLead(ctx context.Context, req models.CreateLeadRequest) (models.CreateLeadResponse, error)
	SubmitFeedback(ctx context.Context, req models.FeedbackRequest) error
	GetSlotLocks(ctx context.Context, date, username, botID string) (models.SlotLocksResponse, error)
}

// Timer schedules the staggered follow-up messages and the deferred feedback
// continuation.
type Timer interface {
	// ScheduleAfter schedules a function to run after a delay.
	ScheduleAfter(delay time.Duration, fn func()) (string, error)

	// Cancel cancels a scheduled function by id.
	Cancel(id string) error
}

// Fixed delays for staggered messages, matching the widget's pacing.
const (
	leadFollowupDelay         = 400 * time.Millisecond
	cancelFollowupDelay       = 500 * time.Millisecond
	appointmentFollowupDelay  = 600 * time.Millisecond
	slotPickerDelay           = 300 * time.Millisecond
	feedbackContinuationDelay = 20 * time.Second
)

// GreetingMessage opens a fresh chat after a reset.
const GreetingMessage = "Hi! I'm here to help. How may I assist?"

// leadState tracks the lead-capture flow.
type leadState struct {
	Step int
	Data models.LeadData
}

// appointmentState tracks the implicitly-entered scheduling flow.
type appointmentState struct {
	Scheduling   bool
	Title        string
	SelectedDate time.Time
	SlotStart    time.Time // zero until a slot is picked
	PickerOpen   bool
	pickerGen    int // suppresses stale lock-fetch results
}

// feedbackState tracks the pending feedback prompt widget.
type feedbackState struct {
	Pending      bool
	Continuation func()
}

// Controller owns the conversation state for one widget load: the single
// active flow, the feedback session flag, and the busy guard that keeps a new
// utterance out while a flow-internal request is in flight.
//
// All mutation happens under mu; handlers release it around network calls so
// the dispatcher can observe busy and reject concurrent input instead of
// queueing it.
type Controller struct {
	mu sync.Mutex

	sess       *session.Resolver
	backend    Backend
	transcript transcript.Sink
	timer      Timer
	cfg        *config.Config
	calendar   *slots.Calendar

	active           models.FlowType
	lead             leadState
	cancelAwaitingID bool
	appt             appointmentState
	feedback         feedbackState
	feedbackGiven    bool
	busy             bool

	// PresentSlotPicker is invoked when an assistant reply cues the inline
	// slot picker. Optional; a transcript line is emitted either way.
	PresentSlotPicker func()

	// PresentFeedbackPrompt is invoked when the star-rating prompt should be
	// rendered. Optional.
	PresentFeedbackPrompt func()

	// OnClose is invoked when the chat should actually close: either
	// immediately on a close request after feedback was given, or as the
	// deferred continuation of the feedback prompt.
	OnClose func()
}

// NewController wires the engine together. The slot calendar resolves slots
// in loc; pass nil for the process-local zone.
func NewController(sess *session.Resolver, be Backend, sink transcript.Sink, timer Timer, cfg *config.Config, loc *time.Location) *Controller {
	c := &Controller{
		sess:       sess,
		backend:    be,
		transcript: sink,
		timer:      timer,
		cfg:        cfg,
		active:     models.FlowIdle,
	}
	c.calendar = slots.NewCalendar(&sessionLockFetcher{controller: c}, loc)
	slog.Debug("Flow controller created", "sessionID", sess.SessionID())
	return c
}

// sessionLockFetcher adapts the backend slot-lock call to the calendar's
// date-only interface by attaching the resolved identity.
type sessionLockFetcher struct {
	controller *Controller
}

func (f *sessionLockFetcher) GetSlotLocks(ctx context.Context, date string) (models.SlotLocksResponse, error) {
	sess := f.controller.sess.Session()
	return f.controller.backend.GetSlotLocks(ctx, date, sess.Username, sess.BotID)
}

// ActiveFlow returns the flow that currently owns the input channel.
func (c *Controller) ActiveFlow() models.FlowType {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// FeedbackGiven reports whether a rating was submitted this session.
func (c *Controller) FeedbackGiven() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.feedbackGiven
}

// Busy reports whether a flow-internal request is in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Calendar exposes the slot calendar for hosts that render the picker.
func (c *Controller) Calendar() *slots.Calendar {
	return c.calendar
}

// say appends a bot message. Callers must hold mu.
func (c *Controller) say(body string) {
	c.transcript.AddBot(body)
}

// sayLater schedules a bot message after a fixed delay.
func (c *Controller) sayLater(delay time.Duration, body string) {
	if _, err := c.timer.ScheduleAfter(delay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.transcript.AddBot(body)
	}); err != nil {
		slog.Error("Controller failed to schedule delayed message", "error", err)
	}
}

// followupLater schedules the tone-appropriate follow-up question.
func (c *Controller) followupLater(delay time.Duration) {
	c.sayLater(delay, tone.FollowupMessage(c.cfg.Tone()))
}

// runBlocking releases mu around a network call so the dispatcher can reject
// concurrent input via the busy guard, then re-acquires it. Callers must hold
// mu and must not touch controller state inside fn.
func (c *Controller) runBlocking(fn func()) {
	c.busy = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.busy = false
	}()
	fn()
}

// resetToIdle clears every flow variant. Callers must hold mu.
func (c *Controller) resetToIdle() {
	c.active = models.FlowIdle
	c.lead = leadState{}
	c.cancelAwaitingID = false
	c.appt = appointmentState{}
}

// ResetChat performs the explicit chat-reset action: transcript emptied,
// feedback flag cleared, all flows back to idle, welcome replayed.
func (c *Controller) ResetChat() {
	c.mu.Lock()
	defer c.mu.Unlock()

	slog.Info("Controller resetting chat", "sessionID", c.sess.SessionID())
	c.transcript.Clear()
	c.feedbackGiven = false
	c.feedback = feedbackState{}
	c.resetToIdle()

	if welcome := c.cfg.Company.WelcomeMessage; welcome != "" {
		c.say(welcome)
	}
	c.say(GreetingMessage)
}

// Greet renders the company welcome message, if any, into an empty chat.
func (c *Controller) Greet() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if welcome := c.cfg.Company.WelcomeMessage; welcome != "" {
		c.say(welcome)
	}
}
