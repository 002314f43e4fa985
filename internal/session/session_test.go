package session

import (
	"strings"
	"testing"
)

func TestResolverFirstNonEmptyWins(t *testing.T) {
	r := NewResolver("bot-1", "tok", []Source{
		StaticSource("config", ""),
		StaticSource("override", "override_user"),
		StaticSource("persisted", "persisted_user"),
	})

	if got := r.Username(); got != "override_user" {
		t.Errorf("Username = %q, want %q", got, "override_user")
	}
	sess := r.Session()
	if sess.Username != "override_user" {
		t.Errorf("Session().Username = %q, want %q", sess.Username, "override_user")
	}
	if sess.BotID != "bot-1" {
		t.Errorf("Session().BotID = %q, want %q", sess.BotID, "bot-1")
	}
}

func TestResolverSessionIDStable(t *testing.T) {
	r := NewResolver("bot-1", "", nil)
	id := r.SessionID()
	if !strings.HasPrefix(id, "sess_") {
		t.Errorf("SessionID %q missing sess_ prefix", id)
	}
	if r.Session().SessionID != id || r.SessionID() != id {
		t.Error("SessionID must be stable across calls")
	}
}

func TestResolverHigherPrioritySourceRefines(t *testing.T) {
	explicit := ""
	r := NewResolver("bot-1", "", []Source{
		{Name: "config", Lookup: func() string { return explicit }},
		StaticSource("persisted", "persisted_user"),
	})

	if got := r.Username(); got != "persisted_user" {
		t.Fatalf("Username = %q, want persisted fallback", got)
	}

	// The explicit value shows up later; being higher priority, it replaces
	// the cached fallback.
	explicit = "real_user"
	if got := r.Username(); got != "real_user" {
		t.Errorf("Username = %q, want refined %q", got, "real_user")
	}
}

func TestResolverLowerPrioritySourceCannotOverride(t *testing.T) {
	persisted := ""
	r := NewResolver("bot-1", "", []Source{
		StaticSource("config", "real_user"),
		{Name: "persisted", Lookup: func() string { return persisted }},
	})

	if got := r.Username(); got != "real_user" {
		t.Fatalf("Username = %q, want %q", got, "real_user")
	}
	persisted = "stale_user"
	if got := r.Username(); got != "real_user" {
		t.Errorf("Username = %q, lower-priority source must not override", got)
	}
}

func TestResolverTrimsWhitespace(t *testing.T) {
	r := NewResolver("bot-1", "", []Source{
		StaticSource("config", "   "),
		StaticSource("persisted", "  padded  "),
	})
	if got := r.Username(); got != "padded" {
		t.Errorf("Username = %q, want trimmed %q", got, "padded")
	}
}
