// Package session provides the per-load conversation identity: an opaque
// session id generated once, and the end-user username resolved lazily from an
// ordered chain of sources.
package session

import (
	"log/slog"
	"strings"
	"time"

	"github.com/WidgetWorks/ChatFlow/internal/models"
	"github.com/WidgetWorks/ChatFlow/internal/util"
)

// Source is one place a username may come from. Sources are consulted in
// priority order; the first non-empty value wins and is cached.
type Source struct {
	Name   string
	Lookup func() string
}

// Resolver resolves and caches the conversation identity for one page load.
type Resolver struct {
	session models.ConversationSession
	sources []Source
	// sourceRank remembers which source produced the cached username so a
	// later discovery from a more specific source can still refine it.
	sourceRank int
}

// NewResolver creates a Resolver with a fresh session id. The sources slice is
// ordered most-specific first (explicit config, global override, embed
// attribute, dashboard cookie, persisted local value).
func NewResolver(botID, authToken string, sources []Source) *Resolver {
	r := &Resolver{
		session: models.ConversationSession{
			SessionID: util.GenerateSessionID(),
			BotID:     botID,
			AuthToken: authToken,
			CreatedAt: time.Now(),
		},
		sources:    sources,
		sourceRank: len(sources),
	}
	slog.Debug("Session created", "sessionID", r.session.SessionID, "botID", botID, "sources", len(sources))
	return r
}

// Session returns the current session snapshot, resolving the username first.
func (r *Resolver) Session() models.ConversationSession {
	r.ResolveUsername()
	return r.session
}

// SessionID returns the opaque per-load conversation identifier.
func (r *Resolver) SessionID() string {
	return r.session.SessionID
}

// ResolveUsername walks the source chain and returns the first non-empty
// value. The result is cached; a cached value is only replaced when a
// higher-priority source produces a value on a later call.
func (r *Resolver) ResolveUsername() string {
	for rank, src := range r.sources {
		if rank >= r.sourceRank {
			// Nothing below the cached source can override it.
			break
		}
		if src.Lookup == nil {
			continue
		}
		val := strings.TrimSpace(src.Lookup())
		if val == "" {
			continue
		}
		if val != r.session.Username {
			slog.Debug("Session username resolved", "source", src.Name, "previous_set", r.session.Username != "")
		}
		r.session.Username = val
		r.sourceRank = rank
		break
	}
	return r.session.Username
}

// Username returns the cached username, resolving it if not yet set.
func (r *Resolver) Username() string {
	return r.ResolveUsername()
}

// StaticSource builds a Source returning a fixed value; empty values are
// simply skipped by the resolver.
func StaticSource(name, value string) Source {
	return Source{Name: name, Lookup: func() string { return value }}
}
