package feed

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Op is the row operation carried by a change event.
type Op string

const (
	OpInsert Op = "INSERT"
	OpUpdate Op = "UPDATE"
	OpDelete Op = "DELETE"
	OpAny    Op = "*"
)

// Event is one row change observed on the store. Row is the raw JSON image of
// the affected row as published by the notifying trigger.
type Event struct {
	Table string          `json:"table"`
	Op    Op              `json:"op"`
	Row   json.RawMessage `json:"row"`
}

// Field extracts a string column from the row image. Missing or non-string
// columns yield "".
func (e Event) Field(name string) string {
	var row map[string]any
	if err := json.Unmarshal(e.Row, &row); err != nil {
		return ""
	}
	if v, ok := row[name].(string); ok {
		return v
	}
	return ""
}

// Scope selects the slice of the change stream a subscriber cares about:
// a table, an operation (OpAny matches all), and an optional column equality
// filter, e.g. {Table: "messages", Op: OpInsert, Column: "conversation_id",
// Equals: "<id>"}.
type Scope struct {
	Table  string
	Op     Op
	Column string
	Equals string
}

// Key is the canonical identity of a scope; subscriptions are keyed by it.
func (s Scope) Key() string {
	op := s.Op
	if op == "" {
		op = OpAny
	}
	k := s.Table + "|" + string(op)
	if s.Column != "" {
		k += "|" + s.Column + "=" + s.Equals
	}
	return k
}

// Matches reports whether the event falls inside this scope.
func (s Scope) Matches(e Event) bool {
	if s.Table != e.Table {
		return false
	}
	if s.Op != "" && s.Op != OpAny && s.Op != e.Op {
		return false
	}
	if s.Column != "" && e.Field(s.Column) != s.Equals {
		return false
	}
	return true
}

// Handler receives matching events. Handlers run on the dispatch goroutine
// and must not block.
type Handler func(Event)

// Feed fans change events out to scope-keyed subscriptions. Exactly one
// routing entry exists per scope key: acquiring an already-held scope bumps
// its reference count and shares the first acquirer's handler, and every
// acquire must be paired with a Close on the returned handle. Delivery is
// at-most-once in dispatch order; there is no replay or gap detection, so a
// missed event is repaired by the next coarse cache invalidation.
type Feed struct {
	mu   sync.RWMutex
	subs map[string]*entry
	log  *zap.Logger
}

func New(log *zap.Logger) *Feed {
	if log == nil {
		log = zap.NewNop()
	}
	return &Feed{subs: make(map[string]*entry), log: log}
}

// entry is the shared routing state behind every handle on the same scope.
type entry struct {
	scope   Scope
	handler Handler
	refs    int
}

// Subscription is one holder's handle on a scope. Handles are per acquirer:
// Close releases this holder's reference at most once, and the routing entry
// is removed when the last holder closes.
type Subscription struct {
	feed     *Feed
	entry    *entry
	released bool
}

// Subscribe acquires a handle on the subscription for scope. The handler
// provided by the first acquirer is the one that runs; later acquirers share
// it.
func (f *Feed) Subscribe(scope Scope, h Handler) *Subscription {
	key := scope.Key()
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.subs[key]; ok {
		e.refs++
		return &Subscription{feed: f, entry: e}
	}
	e := &entry{scope: scope, handler: h, refs: 1}
	f.subs[key] = e
	return &Subscription{feed: f, entry: e}
}

// Close releases this holder's reference. Safe on a nil subscription;
// repeated calls on the same handle release nothing further, so a deferred
// Close after an explicit one cannot drop another holder's subscription.
func (s *Subscription) Close() {
	if s == nil {
		return
	}
	f := s.feed
	f.mu.Lock()
	defer f.mu.Unlock()
	if s.released {
		return
	}
	s.released = true
	s.entry.refs--
	if s.entry.refs <= 0 {
		delete(f.subs, s.entry.scope.Key())
	}
}

// Dispatch routes one event to every subscription whose scope matches.
func (f *Feed) Dispatch(e Event) {
	f.mu.RLock()
	matched := make([]Handler, 0, 4)
	for _, sub := range f.subs {
		if sub.scope.Matches(e) {
			matched = append(matched, sub.handler)
		}
	}
	f.mu.RUnlock()

	for _, h := range matched {
		h(e)
	}
}

// Decode parses a raw notification payload into an Event.
func Decode(payload []byte) (Event, error) {
	var e Event
	err := json.Unmarshal(payload, &e)
	return e, err
}
