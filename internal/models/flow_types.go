// Package models defines flow type definitions to avoid circular imports.
package models

// FlowType identifies which guided sub-dialogue currently owns the input
// channel. At most one non-idle flow is active at any time.
type FlowType string

// StateType represents a specific state within a flow
type StateType string

// Flow type constants.
const (
	FlowIdle         FlowType = "idle"
	FlowLeadCapture  FlowType = "lead_capture"
	FlowCancellation FlowType = "cancellation"
	FlowAppointment  FlowType = "appointment_scheduling"
	FlowFeedback     FlowType = "feedback_prompt"
)

// State constants for the cancellation flow.
const (
	StateCancelAwaitingID StateType = "AWAITING_ID"
	StateCancelSubmitting StateType = "SUBMITTING"
)

// Lead-capture step constants. Steps advance strictly 0 -> 3 except the
// contact-method regression from step 2 back to step 1.
const (
	LeadStepName    = 0
	LeadStepEmail   = 1
	LeadStepPhone   = 2
	LeadStepMessage = 3
)

// IsValidFlowType checks if the given flow type is supported.
func IsValidFlowType(ft FlowType) bool {
	switch ft {
	case FlowIdle, FlowLeadCapture, FlowCancellation, FlowAppointment, FlowFeedback:
		return true
	default:
		return false
	}
}
