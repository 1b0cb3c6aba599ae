package inbox

import (
	"testing"
	"time"

	"ProjectKiosk/internal/score"
)

func fixedInbox() *Inbox {
	b := New()
	b.now = func() time.Time { return time.Date(2026, 1, 2, 9, 5, 0, 0, time.UTC) }
	return b
}

func TestAddAndBadge(t *testing.T) {
	b := fixedInbox()
	if b.Badge() != "" {
		t.Fatalf("empty inbox should have no badge")
	}
	msg := b.Add("NEU", "Hello", "body", TypeInfo)
	if msg.Timestamp != "09:05" {
		t.Errorf("expected timestamp 09:05, got %s", msg.Timestamp)
	}
	if b.Badge() != "1" || b.Unread() != 1 {
		t.Errorf("expected one unread, badge %q", b.Badge())
	}
	for i := 0; i < 10; i++ {
		b.Add("NEU", "spam", "", TypeWarning)
	}
	if b.Badge() != "9+" {
		t.Errorf("expected 9+ badge, got %q", b.Badge())
	}
}

func TestOpenMarksAllRead(t *testing.T) {
	b := fixedInbox()
	b.Add("a", "first", "", TypeInfo)
	b.Add("b", "second", "", TypeAlert)
	b.Open()
	if b.Unread() != 0 || b.Badge() != "" {
		t.Fatalf("open should clear unread")
	}
	msgs := b.Messages()
	if len(msgs) != 2 || msgs[0].Subject != "second" {
		t.Fatalf("expected newest first, got %+v", msgs)
	}
	for _, m := range msgs {
		if !m.Read {
			t.Errorf("message %q not marked read", m.Subject)
		}
	}
	b.Clear()
	if b.Len() != 0 {
		t.Errorf("clear should empty the inbox")
	}
}

func TestAddFromThreshold(t *testing.T) {
	b := fixedInbox()
	msg := b.AddFromThreshold(score.InboxThreshold{Sender: "Larry", Subject: "URGENT", Type: "Critical"})
	got := b.Messages()
	if len(got) != 1 || got[0] != msg || msg.Type != TypeCritical || msg.Sender != "Larry" {
		t.Fatalf("unexpected message %+v in %+v", msg, got)
	}
	if ParseMessageType("nonsense") != TypeWarning {
		t.Errorf("unknown type should fall back to warning")
	}
}
