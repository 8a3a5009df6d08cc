package chat

import (
	"testing"
	"time"
)

func TestNewMessageNormalizes(t *testing.T) {
	msg, err := NewMessage("c1", "u1", "  שלום  ")
	if err != nil {
		t.Fatal(err)
	}
	if msg.Content != "שלום" {
		t.Errorf("content = %q, want trimmed", msg.Content)
	}

	if _, err := NewMessage("c1", "u1", "   "); err != ErrEmptyMessage {
		t.Errorf("blank content err = %v, want ErrEmptyMessage", err)
	}
	if _, err := NewMessage("c1", "", "hi"); err != ErrNotParticipant {
		t.Errorf("missing sender err = %v, want ErrNotParticipant", err)
	}
}

func TestUnreadBy(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name   string
		msg    Message
		viewer string
		want   bool
	}{
		{"incoming unread", Message{SenderID: "other"}, "viewer", true},
		{"own message never unread", Message{SenderID: "viewer"}, "viewer", false},
		{"incoming already read", Message{SenderID: "other", ReadAt: &now}, "viewer", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.msg.UnreadBy(tt.viewer); got != tt.want {
				t.Errorf("UnreadBy() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppendUniqueLeavesSnapshotIntact(t *testing.T) {
	base := []Message{{ID: "m1"}}
	snapshot := base

	got := AppendUnique(base, Message{ID: "m2"})
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if len(snapshot) != 1 {
		t.Fatal("input slice grew")
	}

	// Same ID again is a no-op.
	if again := AppendUnique(got, Message{ID: "m2"}); len(again) != 2 {
		t.Fatalf("duplicate appended: len = %d", len(again))
	}
}

func TestMarkReadIsIdempotent(t *testing.T) {
	first := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	msgs := []Message{
		{ID: "m1", SenderID: "other"},
		{ID: "m2", SenderID: "viewer"},
	}

	once := MarkRead(msgs, "viewer", first)
	if once[0].ReadAt == nil || !once[0].ReadAt.Equal(first) {
		t.Fatalf("incoming message not stamped: %+v", once[0])
	}
	if once[1].ReadAt != nil {
		t.Fatalf("own message stamped: %+v", once[1])
	}
	if msgs[0].ReadAt != nil {
		t.Fatal("input slice mutated")
	}

	twice := MarkRead(once, "viewer", second)
	if !twice[0].ReadAt.Equal(first) {
		t.Fatalf("read timestamp moved on second call: %v", twice[0].ReadAt)
	}
}
