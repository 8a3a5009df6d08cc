package feed

import (
	"encoding/json"
	"testing"
)

func event(table string, op Op, row map[string]any) Event {
	raw, _ := json.Marshal(row)
	return Event{Table: table, Op: op, Row: raw}
}

func TestScopeMatching(t *testing.T) {
	cases := []struct {
		name  string
		scope Scope
		ev    Event
		want  bool
	}{
		{
			name:  "any op on table",
			scope: Scope{Table: "conversations", Op: OpAny},
			ev:    event("conversations", OpUpdate, nil),
			want:  true,
		},
		{
			name:  "op mismatch",
			scope: Scope{Table: "messages", Op: OpInsert},
			ev:    event("messages", OpUpdate, nil),
			want:  false,
		},
		{
			name:  "table mismatch",
			scope: Scope{Table: "messages", Op: OpInsert},
			ev:    event("offers", OpInsert, nil),
			want:  false,
		},
		{
			name:  "column filter hit",
			scope: Scope{Table: "messages", Op: OpInsert, Column: "conversation_id", Equals: "c1"},
			ev:    event("messages", OpInsert, map[string]any{"conversation_id": "c1"}),
			want:  true,
		},
		{
			name:  "column filter miss",
			scope: Scope{Table: "messages", Op: OpInsert, Column: "conversation_id", Equals: "c1"},
			ev:    event("messages", OpInsert, map[string]any{"conversation_id": "c2"}),
			want:  false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.scope.Matches(tc.ev); got != tc.want {
				t.Fatalf("matches = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSubscribeIsIdempotentPerScope(t *testing.T) {
	f := New(nil)
	scope := Scope{Table: "messages", Op: OpInsert}

	hits := 0
	first := f.Subscribe(scope, func(Event) { hits++ })
	second := f.Subscribe(scope, func(Event) { hits += 100 })
	defer first.Close()
	defer second.Close()

	f.Dispatch(event("messages", OpInsert, nil))
	if hits != 1 {
		t.Fatalf("hits = %d, want 1 (first handler only, delivered once)", hits)
	}
}

func TestDoubleCloseReleasesOnlyOwnHold(t *testing.T) {
	f := New(nil)
	scope := Scope{Table: "messages", Op: OpInsert}

	hits := 0
	a := f.Subscribe(scope, func(Event) { hits++ })
	b := f.Subscribe(scope, nil)
	defer b.Close()

	a.Close()
	a.Close()

	f.Dispatch(event("messages", OpInsert, nil))
	if hits != 1 {
		t.Fatalf("hits = %d, want 1 (second holder must survive a double close)", hits)
	}
}

func TestCloseReleasesOnlyAfterLastHolder(t *testing.T) {
	f := New(nil)
	scope := Scope{Table: "conversations", Op: OpAny}

	hits := 0
	a := f.Subscribe(scope, func(Event) { hits++ })
	b := f.Subscribe(scope, nil)

	a.Close()
	f.Dispatch(event("conversations", OpInsert, nil))
	if hits != 1 {
		t.Fatalf("subscription dropped while still held, hits = %d", hits)
	}

	b.Close()
	f.Dispatch(event("conversations", OpInsert, nil))
	if hits != 1 {
		t.Fatalf("closed subscription still receiving events, hits = %d", hits)
	}

	// A fresh acquire after full release installs the new handler.
	c := f.Subscribe(scope, func(Event) { hits += 10 })
	defer c.Close()
	f.Dispatch(event("conversations", OpDelete, nil))
	if hits != 11 {
		t.Fatalf("re-acquired scope not live, hits = %d", hits)
	}
}

func TestCloseIsSafeOnNilAndRepeatedCalls(t *testing.T) {
	var nilSub *Subscription
	nilSub.Close()

	f := New(nil)
	s := f.Subscribe(Scope{Table: "offers", Op: OpAny}, func(Event) {})
	s.Close()
	s.Close()
}

func TestEventField(t *testing.T) {
	ev := event("messages", OpInsert, map[string]any{"sender_id": "u7", "n": 3})
	if got := ev.Field("sender_id"); got != "u7" {
		t.Fatalf("Field(sender_id) = %q", got)
	}
	if got := ev.Field("n"); got != "" {
		t.Fatalf("non-string column should yield empty, got %q", got)
	}
	if got := ev.Field("missing"); got != "" {
		t.Fatalf("missing column should yield empty, got %q", got)
	}
}
