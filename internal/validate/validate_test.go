package validate

import "testing"

func TestPhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{name: "valid plain", input: "9876543210", want: "9876543210", ok: true},
		{name: "valid with separators", input: "987-654-3210", want: "9876543210", ok: true},
		{name: "valid with country noise stripped short", input: "98765", want: "98765", ok: false},
		{name: "wrong leading digit", input: "5876543210", want: "5876543210", ok: false},
		{name: "too long", input: "98765432101", want: "98765432101", ok: false},
		{name: "letters only", input: "call me", want: "", ok: false},
		{name: "leading six", input: "6000000000", want: "6000000000", ok: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Phone(tt.input)
			if got != tt.want || ok != tt.ok {
				t.Errorf("Phone(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestEmailVerdict(t *testing.T) {
	tests := []struct {
		input string
		want  EmailDecision
	}{
		{"asha@example.com", EmailAccept},
		{"weird@but.close", EmailAccept},
		{"9876543210", EmailReject},
		{"my number is 42", EmailReject},
		// The digit-free non-address is accepted as-is. Asymmetric on
		// purpose; see the design notes.
		{"no thanks", EmailAcceptLenient},
		{"asha at example dot com", EmailAcceptLenient},
	}
	for _, tt := range tests {
		if got := EmailVerdict(tt.input); got != tt.want {
			t.Errorf("EmailVerdict(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestIsSkip(t *testing.T) {
	for _, s := range []string{"skip", "SKIP", "  Skip  "} {
		if !IsSkip(s) {
			t.Errorf("IsSkip(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"skipped", "please skip", ""} {
		if IsSkip(s) {
			t.Errorf("IsSkip(%q) = true, want false", s)
		}
	}
}

func TestHasCancelTrigger(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"cancel", true},
		{"I want to CANCEL my appointment", true},
		{"cancel.", true},
		// "cancel" inside a longer word must not trigger the flow.
		{"cancellation policy?", false},
		{"cancelled", false},
		{"hello", false},
	}
	for _, tt := range tests {
		if got := HasCancelTrigger(tt.input); got != tt.want {
			t.Errorf("HasCancelTrigger(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestIsAbortWord(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"cancel", true},
		{"please stop", true},
		// Substring match is intentional here, unlike the flow trigger.
		{"cancellation", true},
		{"continue", false},
	}
	for _, tt := range tests {
		if got := IsAbortWord(tt.input); got != tt.want {
			t.Errorf("IsAbortWord(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestIsComplaint(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"I clicked wrong", true},
		{"wrong button", true},
		{"that was not helpful", true},
		{"this didn't help at all", true},
		{"you got it wrong", true},
		{"thanks, that helped", false},
	}
	for _, tt := range tests {
		if got := IsComplaint(tt.input); got != tt.want {
			t.Errorf("IsComplaint(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestStripAppointmentIDLabel(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"APT-12345", "APT-12345"},
		{"Appointment ID: APT-12345", "APT-12345"},
		{"appointment id APT-12345", "APT-12345"},
		{"  Appointment ID:  ", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := StripAppointmentIDLabel(tt.input); got != tt.want {
			t.Errorf("StripAppointmentIDLabel(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
