package querycache

import (
	"context"
	"strings"
	"sync"
)

// Key names one cached query result. Keys are composite and human-readable,
// e.g. "conversations:<userID>" or "messages:<conversationID>", so the
// invalidate-vs-patch policy can be declared per key family.
type Key string

func ConversationsKey(userID string) Key { return Key("conversations:" + userID) }
func MessagesKey(conversationID string) Key {
	return Key("messages:" + conversationID)
}
func OffersKey(productID string) Key {
	if productID == "" {
		return Key("offers")
	}
	return Key("offers:" + productID)
}
func ViewerOffersKey(viewerID string) Key {
	return Key("offers:viewer:" + viewerID)
}

const (
	ConversationsPrefix = "conversations:"
	OffersPrefix        = "offers"
)

// Cache is the local query cache. It is the only shared mutable resource of
// the live-view core: fetch completions, mutation completions and feed
// reconciliation all write through Invalidate/Patch/GetOr, never by mutating
// returned values in place.
//
// Each key carries a generation counter. A fetch that completes after its key
// was invalidated belongs to a stale generation and is handed to the caller
// but not stored, so a late response can never resurrect dropped state.
type Cache struct {
	mu      sync.Mutex
	entries map[Key]*entry
}

type entry struct {
	value any
	valid bool
	gen   uint64
}

func New() *Cache {
	return &Cache{entries: make(map[Key]*entry)}
}

// GetOr returns the cached value for key if present, otherwise runs fetch and
// stores the result under the generation observed before the fetch started.
func (c *Cache) GetOr(ctx context.Context, key Key, fetch func(context.Context) (any, error)) (any, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	if e.valid {
		v := e.value
		c.mu.Unlock()
		return v, nil
	}
	gen := e.gen
	c.mu.Unlock()

	v, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if cur, ok := c.entries[key]; ok && cur.gen == gen && !cur.valid {
		cur.value = v
		cur.valid = true
	}
	c.mu.Unlock()
	return v, nil
}

// Peek returns the cached value without triggering a fetch.
func (c *Cache) Peek(key Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || !e.valid {
		return nil, false
	}
	return e.value, true
}

// Invalidate drops the cached values for the given keys. The next GetOr
// re-fetches; in-flight fetches for the old generation are discarded.
func (c *Cache) Invalidate(keys ...Key) {
	c.mu.Lock()
	for _, k := range keys {
		if e, ok := c.entries[k]; ok {
			e.valid = false
			e.value = nil
			e.gen++
		}
	}
	c.mu.Unlock()
}

// InvalidatePrefix drops every key that starts with prefix. Used for coarse
// policies like "any conversation change drops every user's conversation list".
func (c *Cache) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	for k, e := range c.entries {
		if strings.HasPrefix(string(k), prefix) {
			e.valid = false
			e.value = nil
			e.gen++
		}
	}
	c.mu.Unlock()
}

// Patch applies fn to the cached value if the key is currently populated and
// stores the result in place. Absent or invalidated keys are left untouched
// (the next read re-fetches anyway). Returns whether a patch was applied.
func (c *Cache) Patch(key Key, fn func(old any) any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || !e.valid {
		return false
	}
	e.value = fn(e.value)
	return true
}
