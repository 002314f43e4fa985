package flow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/WidgetWorks/ChatFlow/internal/models"
	"github.com/WidgetWorks/ChatFlow/internal/slots"
)

// Appointment flow copy, carried over from the shipped widget.
const (
	appointmentDefaultTitle  = "Appointment"
	appointmentPickerHeading = "Select Date and Slot"
	appointmentPickSlotFirst = "Please select a time slot."
	appointmentScheduling    = "Scheduling your appointment..."
	appointmentGenericError  = "Failed to schedule appointment."
)

// confirmedTimeLayout renders the local slot start in the confirmation lines.
const confirmedTimeLayout = "1/2/2006, 3:04:05 PM"

// scheduleSlotPicker renders the inline picker after a short delay. Callers
// must hold mu.
func (c *Controller) scheduleSlotPicker() {
	if _, err := c.timer.ScheduleAfter(slotPickerDelay, c.presentSlotPicker); err != nil {
		slog.Error("Controller failed to schedule slot picker", "error", err)
	}
}

// presentSlotPicker opens the picker and notifies the host.
func (c *Controller) presentSlotPicker() {
	c.mu.Lock()
	if c.active != models.FlowIdle && c.active != models.FlowAppointment {
		// A competing flow took the input channel during the delay.
		slog.Warn("Slot picker suppressed, another flow is active", "active", c.active)
		c.mu.Unlock()
		return
	}
	c.active = models.FlowAppointment
	c.appt.PickerOpen = true
	c.say(appointmentPickerHeading)
	hook := c.PresentSlotPicker
	c.mu.Unlock()

	if hook != nil {
		hook()
	}
}

// PickerDays returns the selectable calendar days: the next ten days starting
// tomorrow, in the calendar's location.
func (c *Controller) PickerDays() []time.Time {
	return slots.BookableDays(time.Now(), c.calendar.Location())
}

// OpenDate resolves the slot options for a picker day. A stale response, one
// that lands after the user has already moved to a different date, is
// discarded: ok is false and the options must not be rendered.
func (c *Controller) OpenDate(ctx context.Context, date time.Time) ([]slots.Option, bool) {
	c.mu.Lock()
	c.appt.SelectedDate = date
	c.appt.pickerGen++
	gen := c.appt.pickerGen
	c.mu.Unlock()

	opts := c.calendar.OptionsFor(ctx, date)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.appt.pickerGen {
		slog.Debug("OpenDate discarding stale slot options", "date", slots.DateParam(date))
		return nil, false
	}
	return opts, true
}

// SelectSlot records an exclusive slot pick. Booked slots are not selectable.
func (c *Controller) SelectSlot(opt slots.Option) error {
	if opt.Booked {
		return models.ErrSlotBooked
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.appt.SlotStart = opt.StartLocal
	slog.Debug("Slot selected", "key", opt.Key)
	return nil
}

// SelectedSlot returns the currently picked slot start, zero if none.
func (c *Controller) SelectedSlot() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.appt.SlotStart
}

// CancelSlotPicker abandons the picker and returns the flow to idle.
func (c *Controller) CancelSlotPicker() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == models.FlowAppointment {
		slog.Info("Slot picker dismissed")
		c.resetToIdle()
	}
}

// ConfirmAppointment submits the booking. Confirming with no slot picked
// warns the user and issues no request. The appointment state is fully
// cleared once the request settles, success or failure.
func (c *Controller) ConfirmAppointment(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.busy {
		return models.ErrFlowBusy
	}
	if c.appt.SlotStart.IsZero() {
		c.say(appointmentPickSlotFirst)
		return models.ErrNoSlotSelected
	}

	title := c.appt.Title
	if title == "" {
		title = appointmentDefaultTitle
	}
	slotStart := c.appt.SlotStart
	sess := c.sess.Session()
	req := models.ScheduleAppointmentRequest{
		Title:       title,
		Time:        slotStart.Format(time.RFC3339),
		Username:    sess.Username,
		BotID:       sess.BotID,
		SessionID:   sess.SessionID,
		ContactName: c.lead.Data.Name,
	}

	c.say(appointmentScheduling)

	var (
		resp models.ScheduleAppointmentResponse
		err  error
	)
	c.runBlocking(func() {
		resp, err = c.backend.ScheduleAppointment(ctx, req)
	})

	c.resetToIdle()

	switch {
	case err != nil:
		// Covers both non-2xx statuses and transport failures; the two carry
		// different messages through the error text.
		slog.Error("Appointment scheduling failed", "error", err)
		c.say(fmt.Sprintf("Failed to schedule appointment: %s. Please try again.", err))
	case !resp.Success:
		slog.Warn("Appointment scheduling rejected", "message", resp.Error)
		failure := resp.Error
		if failure == "" {
			failure = appointmentGenericError
		}
		c.say("Error: " + failure)
	default:
		slog.Info("Appointment scheduled", "appointmentID", resp.AppointmentID)
		when := slotStart.Format(confirmedTimeLayout)
		c.say(fmt.Sprintf(
			"Perfect! I've scheduled your appointment:\n\nTitle: %s\nDate/Time: %s\nAppointment ID: %s\n\nPlease save this appointment ID for future reference.",
			title, when, resp.AppointmentID))
		c.say(fmt.Sprintf("Your selected slot (%s) is now booked.", when))
		c.followupLater(appointmentFollowupDelay)
	}
	return nil
}
