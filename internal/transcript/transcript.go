// Package transcript provides the conversation transcript abstraction the
// engine writes into: user and bot messages plus the single pending
// "thinking" placeholder.
package transcript

import (
	"log/slog"
	"time"
)

// LoadingText is the placeholder body shown while a reply is pending.
const LoadingText = "Thinking..."

// Message is one rendered transcript entry.
type Message struct {
	Body     string    `json:"body"`
	FromUser bool      `json:"from_user"`
	Time     time.Time `json:"time"`
}

// Sink is the rendering target for engine output. Implementations must keep
// at most one loading placeholder alive: appending any message removes it.
type Sink interface {
	// AddUser echoes a user utterance into the transcript.
	AddUser(body string)

	// AddBot appends an assistant/engine message.
	AddBot(body string)

	// ShowLoading displays the pending placeholder. A second call while one
	// is already pending is a no-op.
	ShowLoading()

	// ClearLoading removes the placeholder without appending a message.
	ClearLoading()

	// Clear empties the transcript (explicit chat reset).
	Clear()
}

// Log is an in-memory Sink. It also keeps the running user-message counter;
// nothing keys off the count yet beyond its upkeep.
type Log struct {
	messages  []Message
	loading   bool
	userCount int
}

// NewLog creates an empty in-memory transcript.
func NewLog() *Log {
	return &Log{}
}

func (l *Log) append(body string, fromUser bool) {
	l.loading = false
	l.messages = append(l.messages, Message{Body: body, FromUser: fromUser, Time: time.Now()})
}

// AddUser echoes a user utterance and bumps the user-message counter.
func (l *Log) AddUser(body string) {
	l.userCount++
	l.append(body, true)
}

// AddBot appends a bot message, dropping any pending loading placeholder.
func (l *Log) AddBot(body string) {
	l.append(body, false)
}

// ShowLoading marks the placeholder pending.
func (l *Log) ShowLoading() {
	if l.loading {
		return
	}
	l.loading = true
	slog.Debug("Transcript showing loading placeholder")
}

// ClearLoading removes the placeholder if pending.
func (l *Log) ClearLoading() {
	l.loading = false
}

// Clear empties the transcript and the pending placeholder. The user counter
// survives a clear; it is scoped to the page load, not the conversation.
func (l *Log) Clear() {
	l.messages = nil
	l.loading = false
	slog.Debug("Transcript cleared")
}

// Messages returns a copy of the transcript entries.
func (l *Log) Messages() []Message {
	out := make([]Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// Loading reports whether the placeholder is currently pending.
func (l *Log) Loading() bool {
	return l.loading
}

// UserMessageCount returns the number of user messages echoed this load.
func (l *Log) UserMessageCount() int {
	return l.userCount
}
