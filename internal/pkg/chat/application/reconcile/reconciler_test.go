package reconcile

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/feed"
	"github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/querycache"
	chat "github.com/IsraelChiamovich/second-hand-market/internal/pkg/chat/application/domain"
)

func seedMessages(t *testing.T, cache *querycache.Cache, convID string, msgs []chat.Message) {
	t.Helper()
	_, err := cache.GetOr(context.Background(), querycache.MessagesKey(convID), func(context.Context) (any, error) {
		return msgs, nil
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func mustMessages(t *testing.T, cache *querycache.Cache, convID string) []chat.Message {
	t.Helper()
	v, ok := cache.Peek(querycache.MessagesKey(convID))
	if !ok {
		t.Fatalf("messages key not populated")
	}
	return v.([]chat.Message)
}

func rowFor(t *testing.T, m chat.Message) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func TestConversationChangeInvalidatesLists(t *testing.T) {
	f := feed.New(zap.NewNop())
	cache := querycache.New()
	r := New(f, cache, zap.NewNop())
	r.Start()
	defer r.Stop()

	calls := 0
	fetch := func(context.Context) (any, error) {
		calls++
		return []chat.View{}, nil
	}
	key := querycache.ConversationsKey("u1")
	if _, err := cache.GetOr(context.Background(), key, fetch); err != nil {
		t.Fatal(err)
	}

	f.Dispatch(feed.Event{Table: "conversations", Op: feed.OpUpdate, Row: json.RawMessage(`{}`)})

	if _, err := cache.GetOr(context.Background(), key, fetch); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Fatalf("fetch calls = %d, want 2 after invalidation", calls)
	}
}

func TestMessageInsertInvalidatesLists(t *testing.T) {
	f := feed.New(zap.NewNop())
	cache := querycache.New()
	r := New(f, cache, zap.NewNop())
	r.Start()
	defer r.Stop()

	calls := 0
	key := querycache.ConversationsKey("u2")
	fetch := func(context.Context) (any, error) {
		calls++
		return []chat.View{}, nil
	}
	if _, err := cache.GetOr(context.Background(), key, fetch); err != nil {
		t.Fatal(err)
	}

	f.Dispatch(feed.Event{Table: "messages", Op: feed.OpInsert, Row: json.RawMessage(`{"conversation_id":"c9"}`)})

	if _, err := cache.GetOr(context.Background(), key, fetch); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Fatalf("fetch calls = %d, want 2", calls)
	}
}

func TestOpenConversationAppendsScopedInserts(t *testing.T) {
	f := feed.New(zap.NewNop())
	cache := querycache.New()
	r := New(f, cache, zap.NewNop())
	r.Start()
	defer r.Stop()

	seedMessages(t, cache, "c1", []chat.Message{{ID: "m1", ConversationID: "c1"}})
	sub := r.OpenConversation("c1")
	defer sub.Close()

	m2 := chat.Message{ID: "m2", ConversationID: "c1", SenderID: "u1", Content: "שלום", CreatedAt: time.Now()}
	f.Dispatch(feed.Event{Table: "messages", Op: feed.OpInsert, Row: rowFor(t, m2)})

	got := mustMessages(t, cache, "c1")
	if len(got) != 2 || got[1].ID != "m2" {
		t.Fatalf("messages = %+v, want [m1 m2]", got)
	}

	// A message for some other conversation must not leak into this thread.
	other := chat.Message{ID: "m3", ConversationID: "c2"}
	f.Dispatch(feed.Event{Table: "messages", Op: feed.OpInsert, Row: rowFor(t, other)})
	if got := mustMessages(t, cache, "c1"); len(got) != 2 {
		t.Fatalf("foreign insert leaked into thread: %+v", got)
	}
}

func TestEchoOfOptimisticAppendIsDeduplicated(t *testing.T) {
	f := feed.New(zap.NewNop())
	cache := querycache.New()
	r := New(f, cache, zap.NewNop())
	r.Start()
	defer r.Stop()

	seedMessages(t, cache, "c1", nil)
	sub := r.OpenConversation("c1")
	defer sub.Close()

	m := chat.Message{ID: "m1", ConversationID: "c1", Content: "hi"}

	// Local optimistic append, then the same row arrives over the feed.
	cache.Patch(querycache.MessagesKey("c1"), func(old any) any {
		return chat.AppendUnique(old.([]chat.Message), m)
	})
	f.Dispatch(feed.Event{Table: "messages", Op: feed.OpInsert, Row: rowFor(t, m)})

	if got := mustMessages(t, cache, "c1"); len(got) != 1 {
		t.Fatalf("duplicate after echo: %+v", got)
	}
}

func TestClosedConversationStopsAppending(t *testing.T) {
	f := feed.New(zap.NewNop())
	cache := querycache.New()
	r := New(f, cache, zap.NewNop())
	r.Start()
	defer r.Stop()

	seedMessages(t, cache, "c1", nil)
	sub := r.OpenConversation("c1")
	sub.Close()

	m := chat.Message{ID: "m1", ConversationID: "c1"}
	f.Dispatch(feed.Event{Table: "messages", Op: feed.OpInsert, Row: rowFor(t, m)})

	if got := mustMessages(t, cache, "c1"); len(got) != 0 {
		t.Fatalf("append after close: %+v", got)
	}
}

func TestOfferEventsInvalidateOffersKeys(t *testing.T) {
	f := feed.New(zap.NewNop())
	cache := querycache.New()
	r := New(f, cache, zap.NewNop())
	r.Start()
	defer r.Stop()

	calls := 0
	key := querycache.OffersKey("p1")
	fetch := func(context.Context) (any, error) {
		calls++
		return nil, nil
	}
	if _, err := cache.GetOr(context.Background(), key, fetch); err != nil {
		t.Fatal(err)
	}

	f.Dispatch(feed.Event{Table: "offers", Op: feed.OpDelete, Row: json.RawMessage(`{}`)})

	if _, err := cache.GetOr(context.Background(), key, fetch); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Fatalf("fetch calls = %d, want 2", calls)
	}
}
