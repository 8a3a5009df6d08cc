package notify

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	chat "github.com/IsraelChiamovich/second-hand-market/internal/pkg/chat/application/domain"
)

type fakeSource struct {
	conv  chat.Conversation
	title string
	err   error
}

func (f *fakeSource) ConversationSummary(context.Context, string) (chat.Conversation, string, error) {
	return f.conv, f.title, f.err
}

type fakePermissions map[string]bool

func (f fakePermissions) NotificationsGranted(userID string) bool { return f[userID] }

type delivery struct {
	kind  string
	user  string
	title string
	body  string
}

type fakeNotifier struct {
	sent []delivery
}

func (f *fakeNotifier) System(userID, title, body string) bool {
	f.sent = append(f.sent, delivery{"system", userID, title, body})
	return true
}

func (f *fakeNotifier) Toast(userID, title, body string) bool {
	f.sent = append(f.sent, delivery{"toast", userID, title, body})
	return true
}

func TestDecide(t *testing.T) {
	conv := chat.Conversation{ID: "c1", BuyerID: "buyer", SellerID: "seller"}
	ev := MessageEvent{MessageID: "m1", ConversationID: "c1", SenderID: "buyer", Content: "שלום, המוצר עדיין זמין?"}

	tests := []struct {
		name      string
		viewer    string
		source    *fakeSource
		granted   bool
		want      Action
		wantTitle string
	}{
		{
			name:   "sender never gets own message",
			viewer: "buyer",
			source: &fakeSource{conv: conv, title: "כיסא עץ"},
			want:   ActionNone,
		},
		{
			name:   "non-participant gets nothing",
			viewer: "stranger",
			source: &fakeSource{conv: conv, title: "כיסא עץ"},
			want:   ActionNone,
		},
		{
			name:      "granted permission gets system notification with product title",
			viewer:    "seller",
			source:    &fakeSource{conv: conv, title: "כיסא עץ"},
			granted:   true,
			want:      ActionSystem,
			wantTitle: "הודעה חדשה: כיסא עץ",
		},
		{
			name:      "missing product title falls back to generic name",
			viewer:    "seller",
			source:    &fakeSource{conv: conv},
			granted:   true,
			want:      ActionSystem,
			wantTitle: "הודעה חדשה: מוצר",
		},
		{
			name:      "no permission gets toast",
			viewer:    "seller",
			source:    &fakeSource{conv: conv, title: "כיסא עץ"},
			want:      ActionToast,
			wantTitle: "הודעה חדשה",
		},
		{
			name:   "lookup failure stays silent",
			viewer: "seller",
			source: &fakeSource{err: errors.New("connection refused")},
			want:   ActionNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &fakeNotifier{}
			d := NewDispatcher(tt.source, fakePermissions{tt.viewer: tt.granted}, n, zap.NewNop())

			got := d.Decide(context.Background(), tt.viewer, ev)
			if got != tt.want {
				t.Fatalf("Decide() = %v, want %v", got, tt.want)
			}
			if tt.want == ActionNone {
				if len(n.sent) != 0 {
					t.Fatalf("unexpected delivery: %+v", n.sent)
				}
				return
			}
			if len(n.sent) != 1 {
				t.Fatalf("deliveries = %d, want 1", len(n.sent))
			}
			if n.sent[0].title != tt.wantTitle {
				t.Errorf("title = %q, want %q", n.sent[0].title, tt.wantTitle)
			}
			if n.sent[0].body != ev.Content {
				t.Errorf("body = %q, want message content", n.sent[0].body)
			}
		})
	}
}

func TestNotifyParticipantsSkipsSender(t *testing.T) {
	conv := chat.Conversation{ID: "c1", BuyerID: "buyer", SellerID: "seller"}
	n := &fakeNotifier{}
	d := NewDispatcher(&fakeSource{conv: conv, title: "אופניים"}, fakePermissions{"seller": true}, n, zap.NewNop())

	d.NotifyParticipants(context.Background(), MessageEvent{
		ConversationID: "c1",
		SenderID:       "buyer",
		Content:        "היי",
	})

	if len(n.sent) != 1 {
		t.Fatalf("deliveries = %d, want 1 (seller only)", len(n.sent))
	}
	if n.sent[0].user != "seller" || n.sent[0].kind != "system" {
		t.Fatalf("delivery = %+v, want system to seller", n.sent[0])
	}
}
