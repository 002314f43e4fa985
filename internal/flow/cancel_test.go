package flow

import (
	"errors"
	"testing"

	"github.com/WidgetWorks/ChatFlow/internal/models"
	"github.com/WidgetWorks/ChatFlow/internal/tone"
)

func TestCancellationHappyPath(t *testing.T) {
	be := &fakeBackend{cancelResp: models.CancelAppointmentResponse{Success: true}}
	c, log, timer := newTestController(t, be)

	say(t, c, "I need to cancel my appointment")
	if c.ActiveFlow() != models.FlowCancellation {
		t.Fatalf("active = %v, want cancellation", c.ActiveFlow())
	}
	if got := lastBot(t, log); got != cancelPromptID {
		t.Errorf("prompt = %q, want id prompt", got)
	}

	say(t, c, "Appointment ID: APT-12345")
	if len(be.cancels) != 1 {
		t.Fatalf("got %d cancel requests, want 1", len(be.cancels))
	}
	if got := be.cancels[0].AppointmentID; got != "APT-12345" {
		t.Errorf("appointment id = %q, want the label stripped", got)
	}
	if got := be.cancels[0].Username; got != "demo_user" {
		t.Errorf("username = %q", got)
	}

	if got := lastBot(t, log); got != cancelConfirmed {
		t.Errorf("message = %q, want confirmation", got)
	}
	if c.ActiveFlow() != models.FlowIdle {
		t.Errorf("active = %v, want idle", c.ActiveFlow())
	}
	if len(timer.scheduled) != 1 || timer.scheduled[0].delay != cancelFollowupDelay {
		t.Fatalf("scheduled = %+v, want follow-up at %v", timer.scheduled, cancelFollowupDelay)
	}
	timer.fire()
	if got := lastBot(t, log); got != tone.FollowupMessage("Friendly") {
		t.Errorf("follow-up = %q", got)
	}
}

func TestCancellationEmptyIDReprompts(t *testing.T) {
	be := &fakeBackend{cancelResp: models.CancelAppointmentResponse{Success: true}}
	c, log, _ := newTestController(t, be)

	say(t, c, "cancel")
	// Only the label, no identifier: re-prompt without issuing a request.
	say(t, c, "Appointment ID:")
	if got := lastBot(t, log); got != cancelRepromptID {
		t.Errorf("message = %q, want reprompt", got)
	}
	if len(be.cancels) != 0 {
		t.Error("no request may be issued for an empty id")
	}
	if c.ActiveFlow() != models.FlowCancellation {
		t.Error("flow must keep awaiting the id")
	}

	say(t, c, "APT-777")
	if len(be.cancels) != 1 || be.cancels[0].AppointmentID != "APT-777" {
		t.Errorf("cancels = %+v", be.cancels)
	}
}

func TestCancellationRejected(t *testing.T) {
	be := &fakeBackend{cancelResp: models.CancelAppointmentResponse{
		Success: false,
		Message: "Appointment ID APT-1 not found. Please check your appointment ID and try again.",
	}}
	c, log, timer := newTestController(t, be)

	say(t, c, "cancel")
	say(t, c, "APT-1")
	want := "Error: Appointment ID APT-1 not found. Please check your appointment ID and try again."
	if got := lastBot(t, log); got != want {
		t.Errorf("message = %q, want %q", got, want)
	}
	if c.ActiveFlow() != models.FlowIdle {
		t.Error("flow must return to idle, there is no retry path")
	}
	if len(timer.scheduled) != 0 {
		t.Error("no follow-up on failure")
	}
}

func TestCancellationTransportError(t *testing.T) {
	be := &fakeBackend{cancelErr: errors.New("connection refused")}
	c, log, _ := newTestController(t, be)

	say(t, c, "cancel")
	say(t, c, "APT-1")
	if got := lastBot(t, log); got != cancelNetworkError {
		t.Errorf("message = %q, want network error text", got)
	}
	if c.ActiveFlow() != models.FlowIdle {
		t.Error("flow must return to idle on transport failure")
	}
}

func TestCancellationNotTriggeredInsideWord(t *testing.T) {
	be := &fakeBackend{sendReplies: []string{"our policy is flexible"}}
	c, _, _ := newTestController(t, be)

	say(t, c, "what is your cancellation policy?")
	if c.ActiveFlow() != models.FlowIdle {
		t.Errorf("active = %v, the embedded word must not trigger the flow", c.ActiveFlow())
	}
	if len(be.sends) != 1 {
		t.Error("the utterance should reach the assistant instead")
	}
}
