package flow

import (
	"context"
	"log/slog"

	"github.com/WidgetWorks/ChatFlow/internal/models"
	"github.com/WidgetWorks/ChatFlow/internal/validate"
)

// Cancellation flow copy, carried over from the shipped widget.
const (
	cancelPromptID     = "Sure, please provide your Appointment ID to cancel (e.g., APT-12345)."
	cancelRepromptID   = "Please type your Appointment ID to proceed with cancellation."
	cancelProcessing   = "Processing your cancellation..."
	cancelConfirmed    = "Your appointment has been cancelled successfully."
	cancelGenericError = "Failed to cancel the appointment."
	cancelNetworkError = "Network error while cancelling. Please try again."
)

// startCancellationFlow prompts for an appointment identifier. Callers must
// hold mu; the dispatcher guarantees no other flow is active.
func (c *Controller) startCancellationFlow() {
	slog.Info("CancelFlow starting")
	c.active = models.FlowCancellation
	c.cancelAwaitingID = true
	c.say(cancelPromptID)
}

// handleCancellationID treats the utterance as the appointment identifier,
// stripping an optional "appointment id:" label. An empty identifier
// re-prompts without changing state. Once the request settles, success or
// failure, the flow returns to idle; there is no retry path. Callers must
// hold mu.
func (c *Controller) handleCancellationID(ctx context.Context, text string) error {
	id := validate.StripAppointmentIDLabel(text)
	if id == "" {
		c.say(cancelRepromptID)
		return nil
	}

	c.cancelAwaitingID = false
	c.say(cancelProcessing)

	sess := c.sess.Session()
	var (
		resp models.CancelAppointmentResponse
		err  error
	)
	c.runBlocking(func() {
		resp, err = c.backend.CancelAppointment(ctx, models.CancelAppointmentRequest{
			AppointmentID: id,
			Username:      sess.Username,
		})
	})

	c.resetToIdle()

	switch {
	case err != nil:
		slog.Error("CancelFlow transport failure", "error", err, "appointmentID", id)
		c.say(cancelNetworkError)
	case !resp.Success:
		slog.Warn("CancelFlow rejected", "appointmentID", id)
		failure := resp.FailureText()
		if failure == "" {
			failure = cancelGenericError
		}
		c.say("Error: " + failure)
	default:
		slog.Info("CancelFlow succeeded", "appointmentID", id)
		c.say(cancelConfirmed)
		c.followupLater(cancelFollowupDelay)
	}
	return nil
}
