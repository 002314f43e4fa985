// Package models defines the core data structures for ChatFlow.
//
// It includes the conversation session, company configuration, and the wire
// payloads exchanged with the backend, which are shared across modules.
package models

import (
	"errors"
	"time"
)

// Validation constants for input validation
const (
	// PhoneDigitCount is the required number of digits for a mobile number.
	PhoneDigitCount = 10
	// MaxUtteranceLength defines the maximum allowed length for a user utterance.
	MaxUtteranceLength = 4096
)

// Error variables for better error handling and testability
var (
	ErrEmptyUtterance     = errors.New("utterance cannot be empty")
	ErrUtteranceTooLong   = errors.New("utterance exceeds maximum length")
	ErrFlowAlreadyActive  = errors.New("another flow is already active")
	ErrFlowBusy           = errors.New("a flow request is already in flight")
	ErrNoSlotSelected     = errors.New("no time slot selected")
	ErrSlotBooked         = errors.New("slot is already booked")
	ErrEmptyAppointmentID = errors.New("appointment id cannot be empty")
	ErrInvalidRating      = errors.New("rating must be between 1 and 5")
	ErrNoFeedbackPending  = errors.New("no feedback prompt is pending")
)

// ConversationSession identifies one widget load against the backend.
// SessionID and BotID are immutable once set; Username may be refined when a
// more specific source is discovered later.
type ConversationSession struct {
	SessionID string    `json:"session_id"`
	Username  string    `json:"username"`
	BotID     string    `json:"bot_id"`
	AuthToken string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// CompanyConfig carries per-tenant branding and behavior fetched at startup.
type CompanyConfig struct {
	PrimaryColor       string `json:"primaryColor"`
	CompanyName        string `json:"companyName"`
	CompanyDescription string `json:"companyDescription"`
	AvatarURL          string `json:"avatarUrl"`
	WelcomeMessage     string `json:"welcomeMessage"`
	Tone               string `json:"tone"`
}

// LeadData holds the fields collected by the lead-capture flow. Each field is
// set at most once per flow instance and cleared on flow exit.
type LeadData struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// Wire payloads for the backend HTTP contract.

// SendMessageRequest is the payload for the generic assistant exchange.
type SendMessageRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
	Username  string `json:"username"`
	BotID     string `json:"bot_id"`
}

// SendMessageResponse is the assistant reply. Any parseable JSON carrying a
// response field is treated as success; there is no success flag.
type SendMessageResponse struct {
	Response string `json:"response"`
}

// ScheduleAppointmentRequest books a slot.
type ScheduleAppointmentRequest struct {
	Title       string `json:"title"`
	Time        string `json:"time"` // ISO instant of the local slot start
	Username    string `json:"username"`
	BotID       string `json:"bot_id"`
	SessionID   string `json:"session_id"`
	ContactName string `json:"contact_name"`
}

// ScheduleAppointmentResponse reports the booking outcome.
type ScheduleAppointmentResponse struct {
	Success       bool   `json:"success"`
	AppointmentID string `json:"appointment_id,omitempty"`
	Error         string `json:"error,omitempty"`
}

// CancelAppointmentRequest cancels a previously booked appointment.
type CancelAppointmentRequest struct {
	AppointmentID string `json:"appointment_id"`
	Username      string `json:"username"`
}

// CancelAppointmentResponse reports the cancellation outcome. The backend uses
// error or message interchangeably for the failure text.
type CancelAppointmentResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// FailureText returns the server-supplied failure message, preferring error.
func (r CancelAppointmentResponse) FailureText() string {
	if r.Error != "" {
		return r.Error
	}
	return r.Message
}

// CreateLeadRequest submits captured contact details.
type CreateLeadRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Message   string `json:"message"`
	Username  string `json:"username"`
	BotID     string `json:"bot_id"`
	SessionID string `json:"session_id"`
}

// CreateLeadResponse reports the lead submission outcome.
type CreateLeadResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// FeedbackRequest is best-effort telemetry; its response is ignored.
type FeedbackRequest struct {
	Username  string `json:"username"`
	SessionID string `json:"session_id"`
	Rating    int    `json:"rating"`
	Reason    string `json:"reason"`
}

// SlotLocksResponse maps SlotKey -> status string for one calendar date.
// A slot whose status is present and not "cancelled" is booked.
type SlotLocksResponse struct {
	Locks map[string]string `json:"locks"`
}

// SlotStatusCancelled is the lock status that frees a slot for rebooking.
const SlotStatusCancelled = "cancelled"

// CompanyConfigResponse wraps the tenant configuration.
type CompanyConfigResponse struct {
	Success bool          `json:"success"`
	Config  CompanyConfig `json:"config"`
}
