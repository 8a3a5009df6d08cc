package reconcile

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/feed"
	"github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/querycache"
	chat "github.com/IsraelChiamovich/second-hand-market/internal/pkg/chat/application/domain"
)

// Reconciler wires change-feed events into the query cache. The policy is a
// declared table, not ad hoc branching:
//
//	conversations  any op   -> invalidate every conversation-list key
//	messages       INSERT   -> invalidate every conversation-list key
//	messages       INSERT, conversation_id = X (open thread)
//	                        -> patch-append into "messages:X", de-duplicated by id
//	offers         any op   -> invalidate every offers key
//
// Invalidation is coarse on purpose: a full re-fetch plus re-aggregation is
// always safe under event reordering or loss, while the single incremental
// path (the open-thread append) is guarded by identifier de-duplication.
type Reconciler struct {
	Feed  *feed.Feed
	Cache *querycache.Cache
	Log   *zap.Logger

	mu       sync.Mutex
	listSubs []*feed.Subscription
}

func New(f *feed.Feed, cache *querycache.Cache, log *zap.Logger) *Reconciler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reconciler{Feed: f, Cache: cache, Log: log}
}

// Start acquires the list-scope subscriptions. Safe to call once per process;
// Stop releases them.
func (r *Reconciler) Start() {
	invalidateLists := func(feed.Event) {
		r.Cache.InvalidatePrefix(querycache.ConversationsPrefix)
	}
	invalidateOffers := func(feed.Event) {
		r.Cache.InvalidatePrefix(querycache.OffersPrefix)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.listSubs = append(r.listSubs,
		r.Feed.Subscribe(feed.Scope{Table: "conversations", Op: feed.OpAny}, invalidateLists),
		r.Feed.Subscribe(feed.Scope{Table: "messages", Op: feed.OpInsert}, invalidateLists),
		r.Feed.Subscribe(feed.Scope{Table: "offers", Op: feed.OpAny}, invalidateOffers),
	)
}

// Stop releases every subscription Start acquired.
func (r *Reconciler) Stop() {
	r.mu.Lock()
	subs := r.listSubs
	r.listSubs = nil
	r.mu.Unlock()
	for _, s := range subs {
		s.Close()
	}
}

// OpenConversation acquires the incremental-append subscription for one open
// thread. The returned handle must be closed when the thread view goes away;
// re-opening the same conversation is a no-op on the feed side.
func (r *Reconciler) OpenConversation(conversationID string) *feed.Subscription {
	scope := feed.Scope{
		Table:  "messages",
		Op:     feed.OpInsert,
		Column: "conversation_id",
		Equals: conversationID,
	}
	key := querycache.MessagesKey(conversationID)

	return r.Feed.Subscribe(scope, func(e feed.Event) {
		var msg chat.Message
		if err := json.Unmarshal(e.Row, &msg); err != nil {
			r.Log.Debug("reconcile: dropping undecodable message row", zap.Error(err))
			return
		}
		r.Cache.Patch(key, func(old any) any {
			msgs, _ := old.([]chat.Message)
			return chat.AppendUnique(msgs, msg)
		})
	})
}
