// Package tone provides a fixed whitelist of company tone tags, validation,
// and the tone-appropriate follow-up line appended after a flow completes.
package tone

import "strings"

// DefaultTone is used when the company config carries no tone or an unknown one.
const DefaultTone = "Professional"

// AllTones is the hard-coded set of supported tone tags.
var AllTones = map[string]bool{
	"Professional": true,
	"Friendly":     true,
	"Humorous":     true,
	"Expert":       true,
	"Caring":       true,
	"Enthusiastic": true,
	"Formal":       true,
	"Casual":       true,
}

// followups maps each tone to its post-flow follow-up question.
var followups = map[string]string{
	"Friendly":     "Anything else I can help you with? 😊",
	"Humorous":     "Anything else I can help you with before I power down? 😄",
	"Expert":       "Is there anything else I can assist you with?",
	"Caring":       "Is there anything else I can help you with? I’m here for you.",
	"Enthusiastic": "Anything else I can help you with? 🚀",
	"Formal":       "Is there anything else with which I may assist you?",
	"Casual":       "Need anything else?",
	"Professional": "Is there anything else I can help you with?",
}

// Normalize returns the canonical tone tag for t, falling back to the default
// for empty or unknown values.
func Normalize(t string) string {
	t = strings.TrimSpace(t)
	for tag := range AllTones {
		if strings.EqualFold(tag, t) {
			return tag
		}
	}
	return DefaultTone
}

// FollowupMessage returns the follow-up question for the given tone.
func FollowupMessage(t string) string {
	return followups[Normalize(t)]
}
