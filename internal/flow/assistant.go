package flow

import (
	"context"
	"log/slog"

	"github.com/WidgetWorks/ChatFlow/internal/models"
)

// assistantApology is rendered whenever the generic exchange fails.
const assistantApology = "Sorry, I encountered an error. Please try again."

// assistantExchange is the default no-flow path: forward the utterance to the
// conversational endpoint, render the reply, and scan it for scheduling cues.
// Callers must hold mu.
func (c *Controller) assistantExchange(ctx context.Context, text string) error {
	c.transcript.ShowLoading()
	sess := c.sess.Session()

	var (
		reply models.SendMessageResponse
		err   error
	)
	c.runBlocking(func() {
		reply, err = c.backend.SendMessage(ctx, models.SendMessageRequest{
			Message:   text,
			SessionID: sess.SessionID,
			Username:  sess.Username,
			BotID:     sess.BotID,
		})
	})
	if err != nil {
		c.transcript.ClearLoading()
		c.say(assistantApology)
		return nil
	}

	c.say(reply.Response)

	cues := ClassifyAssistantReply(reply.Response)
	if cues.RequestTitle && c.active == models.FlowIdle {
		slog.Info("Assistant reply armed appointment scheduling")
		c.active = models.FlowAppointment
		c.appt.Scheduling = true
	}
	if cues.RequestSlot {
		slog.Info("Assistant reply cued the slot picker")
		c.scheduleSlotPicker()
	}
	return nil
}
