package flow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/WidgetWorks/ChatFlow/internal/models"
	"github.com/WidgetWorks/ChatFlow/internal/validate"
)

// Lead-capture prompts, carried over from the shipped widget.
const (
	leadPromptName          = "Great! I can share your details with our team. What's your name?"
	leadPromptPhone         = "Perfect! What's your phone number? (You can say 'skip' if you prefer not to share it)"
	leadPromptPhoneLenient  = "Got it! What's your phone number? (You can say 'skip' if you prefer not to share it)"
	leadPromptPhoneSkipped  = "No problem! What's your phone number? (You can say 'skip' if you prefer not to share it)"
	leadPromptMessage       = "Almost done! Any additional message for us? (You can say 'skip' to finish)"
	leadPromptEmailInvalid  = "Please enter a valid email address or say 'skip' if you prefer not to share your email."
	leadPromptPhoneInvalid  = "Please enter a valid phone number."
	leadPromptContactNeeded = "Please share at least one way to contact you (email or phone). What would you prefer?"
	leadAborted             = "No problem! Feel free to ask me anything else."
	leadSubmitted           = "Perfect! I've shared your details with our team. We'll reach out to you soon."
	leadSubmitFailed        = "Failed to submit your details. Please try again."
	leadNetworkError        = "Sorry, I couldn't submit your details due to a network error. Please try again later."
)

// startLeadFlow enters lead capture at step 0. Callers must hold mu; the
// dispatcher guarantees no other flow is active.
func (c *Controller) startLeadFlow() {
	slog.Info("LeadFlow starting")
	c.active = models.FlowLeadCapture
	c.lead = leadState{}
	c.say(leadPromptName)
}

// handleLeadMessage advances the lead flow one step. Validation failures
// re-prompt without touching state; the cancel words abort to idle with the
// collected data cleared. Callers must hold mu.
func (c *Controller) handleLeadMessage(ctx context.Context, text string) error {
	if validate.IsAbortWord(text) {
		slog.Info("LeadFlow aborted by user", "step", c.lead.Step)
		c.resetToIdle()
		c.say(leadAborted)
		return nil
	}

	switch c.lead.Step {
	case models.LeadStepName:
		c.lead.Data.Name = text
		c.lead.Step = models.LeadStepEmail
		c.say(fmt.Sprintf("Thanks, %s! What's your email address? (You can say \"skip\" if you prefer not to share it)", text))

	case models.LeadStepEmail:
		if validate.IsSkip(text) {
			c.lead.Step = models.LeadStepPhone
			c.say(leadPromptPhoneSkipped)
			return nil
		}
		switch validate.EmailVerdict(text) {
		case validate.EmailAccept:
			c.lead.Data.Email = text
			c.lead.Step = models.LeadStepPhone
			c.say(leadPromptPhone)
		case validate.EmailReject:
			// Digit-bearing non-address: likely a phone number typed at the
			// email prompt, so re-prompt instead of storing it.
			c.say(leadPromptEmailInvalid)
		case validate.EmailAcceptLenient:
			c.lead.Data.Email = text
			c.lead.Step = models.LeadStepPhone
			c.say(leadPromptPhoneLenient)
		}

	case models.LeadStepPhone:
		if !validate.IsSkip(text) {
			digits, ok := validate.Phone(text)
			if !ok {
				c.say(leadPromptPhoneInvalid)
				return nil
			}
			c.lead.Data.Phone = digits
		}
		// The flow cannot complete with zero contact methods: skipping both
		// email and phone regresses to the email step.
		if c.lead.Data.Email == "" && c.lead.Data.Phone == "" {
			slog.Debug("LeadFlow regressing, no contact method")
			c.lead.Step = models.LeadStepEmail
			c.say(leadPromptContactNeeded)
			return nil
		}
		c.lead.Step = models.LeadStepMessage
		c.say(leadPromptMessage)

	case models.LeadStepMessage:
		if !validate.IsSkip(text) {
			c.lead.Data.Message = text
		}
		return c.submitLead(ctx)
	}
	return nil
}

// submitLead posts the collected fields. Success and failure both return the
// flow to idle with cleared data; there is no automatic retry. Callers must
// hold mu.
func (c *Controller) submitLead(ctx context.Context) error {
	sess := c.sess.Session()
	req := models.CreateLeadRequest{
		Name:      c.lead.Data.Name,
		Email:     c.lead.Data.Email,
		Phone:     c.lead.Data.Phone,
		Message:   c.lead.Data.Message,
		Username:  sess.Username,
		BotID:     sess.BotID,
		SessionID: sess.SessionID,
	}

	var (
		resp models.CreateLeadResponse
		err  error
	)
	c.runBlocking(func() {
		resp, err = c.backend.CreateLead(ctx, req)
	})

	c.resetToIdle()

	switch {
	case err != nil:
		slog.Error("LeadFlow submission transport failure", "error", err)
		c.say(leadNetworkError)
	case !resp.Success:
		slog.Warn("LeadFlow submission rejected", "message", resp.Message)
		if resp.Message != "" {
			c.say(resp.Message)
		} else {
			c.say(leadSubmitFailed)
		}
	default:
		slog.Info("LeadFlow submitted")
		c.say(leadSubmitted)
		c.followupLater(leadFollowupDelay)
	}
	return nil
}
