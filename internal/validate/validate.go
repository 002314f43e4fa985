// Package validate provides the pure predicate and normalizer functions for
// the field types collected by guided flows: free text, email, phone, and the
// skip/cancel control words.
package validate

import (
	"regexp"
	"strings"

	"github.com/WidgetWorks/ChatFlow/internal/models"
)

var (
	nonDigitRe       = regexp.MustCompile(`\D`)
	cancelWordRe     = regexp.MustCompile(`(?i)\bcancel\b`)
	complaintRe      = regexp.MustCompile(`(?i)clicked wrong|wrong button|not helpful|didn't help|wrong`)
	appointmentIDRe  = regexp.MustCompile(`(?i)^(appointment\s*id\s*:?)\s*`)
	mobileLeadDigits = "6789"
)

// NormalizeDigits strips every non-digit rune from s.
func NormalizeDigits(s string) string {
	return nonDigitRe.ReplaceAllString(s, "")
}

// Phone normalizes s to digits only and reports whether it is an acceptable
// mobile number: exactly ten digits with a leading 6, 7, 8 or 9.
func Phone(s string) (string, bool) {
	digits := NormalizeDigits(s)
	if len(digits) != models.PhoneDigitCount {
		return digits, false
	}
	if !strings.ContainsRune(mobileLeadDigits, rune(digits[0])) {
		return digits, false
	}
	return digits, true
}

// LooksLikeEmail reports whether s contains both "@" and ".". Deliberately
// loose: the email step accepts some non-addresses, see EmailVerdict.
func LooksLikeEmail(s string) bool {
	return strings.Contains(s, "@") && strings.Contains(s, ".")
}

// HasDigit reports whether s contains at least one digit.
func HasDigit(s string) bool {
	return len(NormalizeDigits(s)) > 0
}

// EmailDecision is the three-way outcome of the email step.
type EmailDecision int

const (
	// EmailAccept stores the text as the email address.
	EmailAccept EmailDecision = iota
	// EmailReject re-prompts; the text carries digits but is not an address.
	EmailReject
	// EmailAcceptLenient stores non-address, digit-free text as-is. Matches
	// the shipped widget; see the design notes before changing.
	EmailAcceptLenient
)

// EmailVerdict classifies a non-skip reply to the email prompt.
func EmailVerdict(s string) EmailDecision {
	if LooksLikeEmail(s) {
		return EmailAccept
	}
	if HasDigit(s) {
		return EmailReject
	}
	return EmailAcceptLenient
}

// IsSkip reports whether the trimmed utterance is the skip word.
func IsSkip(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "skip")
}

// IsAbortWord reports whether the utterance asks to leave the current flow
// ("cancel" or "stop" anywhere in the text, case-insensitive).
func IsAbortWord(s string) bool {
	lower := strings.ToLower(s)
	return strings.Contains(lower, "cancel") || strings.Contains(lower, "stop")
}

// HasCancelTrigger reports whether the utterance contains the standalone word
// "cancel" on a word boundary, which starts the cancellation flow.
func HasCancelTrigger(s string) bool {
	return cancelWordRe.MatchString(s)
}

// IsComplaint reports whether the utterance matches the wrong-button /
// not-helpful pattern that invites the feedback prompt.
func IsComplaint(s string) bool {
	return complaintRe.MatchString(s)
}

// StripAppointmentIDLabel removes an optional leading "appointment id:" label
// and surrounding whitespace from an identifier utterance.
func StripAppointmentIDLabel(s string) string {
	return strings.TrimSpace(appointmentIDRe.ReplaceAllString(strings.TrimSpace(s), ""))
}
