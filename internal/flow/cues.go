package flow

import "strings"

// The backend signals appointment-flow transitions by embedding fixed cue
// substrings in assistant replies. The string coupling is brittle, so the
// classification lives behind this one function until the contract grows a
// structured intent field.
const (
	cueRequestTitle = "first, please tell me the title"
	cueRequestSlot  = "please select the date and time"
)

// ReplyCues captures which scheduling cues an assistant reply carries. Both
// may be present in a single reply.
type ReplyCues struct {
	RequestTitle bool
	RequestSlot  bool
}

// ClassifyAssistantReply scans a reply for the scheduling cue substrings,
// case-insensitively.
func ClassifyAssistantReply(reply string) ReplyCues {
	lower := strings.ToLower(reply)
	return ReplyCues{
		RequestTitle: strings.Contains(lower, cueRequestTitle),
		RequestSlot:  strings.Contains(lower, cueRequestSlot),
	}
}

// leadTriggers are the fixed phrases that start the lead-capture flow when no
// flow is active. Matched case-insensitively as substrings.
var leadTriggers = []string{
	"i want to share my details",
	"share my details",
	"share contact",
	"share contact details",
	"give my details",
	"provide my details",
	"contact details",
	"my contact info",
	"contact information",
	"lead capture",
	"capture lead",
}

// isLeadTrigger reports whether the utterance asks to start lead capture.
func isLeadTrigger(utterance string) bool {
	lower := strings.ToLower(utterance)
	for _, trigger := range leadTriggers {
		if strings.Contains(lower, trigger) {
			return true
		}
	}
	return false
}
