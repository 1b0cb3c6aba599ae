// Package inbox holds the operator's message inbox, which fills up as the
// corruption score crosses inbox thresholds.
package inbox

import (
	"strconv"
	"strings"
	"time"

	"ProjectKiosk/internal/score"
)

// MessageType drives the colour and icon of a message.
type MessageType string

const (
	TypeInfo     MessageType = "info"
	TypeWarning  MessageType = "warning"
	TypeAlert    MessageType = "alert"
	TypeCritical MessageType = "critical"
)

// ParseMessageType accepts the authoring names case-insensitively and falls
// back to warning.
func ParseMessageType(s string) MessageType {
	switch MessageType(strings.ToLower(strings.TrimSpace(s))) {
	case TypeInfo:
		return TypeInfo
	case TypeAlert:
		return TypeAlert
	case TypeCritical:
		return TypeCritical
	}
	return TypeWarning
}

// Message is one inbox entry.
type Message struct {
	Sender    string      `json:"sender"`
	Subject   string      `json:"subject"`
	Content   string      `json:"content"`
	Type      MessageType `json:"type"`
	Read      bool        `json:"read"`
	Timestamp string      `json:"timestamp"` // HH:MM
}

// Inbox is an append-only list of messages with an unread counter.
type Inbox struct {
	messages []Message
	unread   int
	now      func() time.Time
}

// New returns an empty inbox stamped with wall-clock time.
func New() *Inbox {
	return &Inbox{now: time.Now}
}

// Add appends an unread message.
func (b *Inbox) Add(sender, subject, content string, typ MessageType) Message {
	now := time.Now
	if b.now != nil {
		now = b.now
	}
	msg := Message{
		Sender:    sender,
		Subject:   subject,
		Content:   content,
		Type:      typ,
		Timestamp: now().Format("15:04"),
	}
	b.messages = append(b.messages, msg)
	b.unread++
	return msg
}

// AddFromThreshold posts the message configured on an inbox threshold.
func (b *Inbox) AddFromThreshold(t score.InboxThreshold) Message {
	return b.Add(t.Sender, t.Subject, t.Content, ParseMessageType(t.Type))
}

// Messages returns a copy of the inbox, newest first.
func (b *Inbox) Messages() []Message {
	out := make([]Message, 0, len(b.messages))
	for i := len(b.messages) - 1; i >= 0; i-- {
		out = append(out, b.messages[i])
	}
	return out
}

// Len returns the number of messages.
func (b *Inbox) Len() int { return len(b.messages) }

// Unread returns the number of unread messages.
func (b *Inbox) Unread() int { return b.unread }

// Badge returns the notification badge text, or "" when nothing is unread.
func (b *Inbox) Badge() string {
	switch {
	case b.unread <= 0:
		return ""
	case b.unread > 9:
		return "9+"
	}
	return strconv.Itoa(b.unread)
}

// Open marks every message read, as opening the inbox panel does.
func (b *Inbox) Open() {
	for i := range b.messages {
		b.messages[i].Read = true
	}
	b.unread = 0
}

// Clear drops every message for a new game.
func (b *Inbox) Clear() {
	b.messages = nil
	b.unread = 0
}
