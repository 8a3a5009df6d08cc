package querycache

import (
	"context"
	"errors"
	"testing"
)

func TestGetOrFetchesOnceThenServesCached(t *testing.T) {
	c := New()
	calls := 0
	fetch := func(ctx context.Context) (any, error) {
		calls++
		return []string{"a", "b"}, nil
	}

	for i := 0; i < 3; i++ {
		v, err := c.GetOr(context.Background(), MessagesKey("c1"), fetch)
		if err != nil {
			t.Fatalf("GetOr: %v", err)
		}
		if got := v.([]string); len(got) != 2 {
			t.Fatalf("unexpected value %v", got)
		}
	}
	if calls != 1 {
		t.Fatalf("fetch ran %d times, want 1", calls)
	}
}

func TestInvalidateForcesRefetch(t *testing.T) {
	c := New()
	calls := 0
	fetch := func(ctx context.Context) (any, error) {
		calls++
		return calls, nil
	}

	key := ConversationsKey("u1")
	if _, err := c.GetOr(context.Background(), key, fetch); err != nil {
		t.Fatal(err)
	}
	c.Invalidate(key)
	v, err := c.GetOr(context.Background(), key, fetch)
	if err != nil {
		t.Fatal(err)
	}
	if v.(int) != 2 || calls != 2 {
		t.Fatalf("got %v after %d calls, want refetch", v, calls)
	}
}

func TestInvalidatePrefixDropsAllMatchingKeys(t *testing.T) {
	c := New()
	seed := func(k Key, v any) {
		_, _ = c.GetOr(context.Background(), k, func(context.Context) (any, error) { return v, nil })
	}
	seed(ConversationsKey("u1"), 1)
	seed(ConversationsKey("u2"), 2)
	seed(MessagesKey("c1"), 3)

	c.InvalidatePrefix(ConversationsPrefix)

	if _, ok := c.Peek(ConversationsKey("u1")); ok {
		t.Fatal("u1 conversations survived prefix invalidation")
	}
	if _, ok := c.Peek(ConversationsKey("u2")); ok {
		t.Fatal("u2 conversations survived prefix invalidation")
	}
	if _, ok := c.Peek(MessagesKey("c1")); !ok {
		t.Fatal("messages key was dropped by an unrelated prefix")
	}
}

func TestLateFetchForInvalidatedGenerationIsDiscarded(t *testing.T) {
	c := New()
	key := MessagesKey("c1")

	// Invalidate while the fetch is "in flight": the fetch closure runs the
	// invalidation itself before returning, simulating a feed event landing
	// between fetch start and completion.
	v, err := c.GetOr(context.Background(), key, func(ctx context.Context) (any, error) {
		c.Invalidate(key)
		return "stale", nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if v.(string) != "stale" {
		t.Fatalf("caller should still receive the fetched value, got %v", v)
	}
	if _, ok := c.Peek(key); ok {
		t.Fatal("stale generation was stored")
	}
}

func TestPatchOnlyTouchesPopulatedKeys(t *testing.T) {
	c := New()
	key := MessagesKey("c9")

	if applied := c.Patch(key, func(old any) any { return "x" }); applied {
		t.Fatal("patch applied to an absent key")
	}

	_, _ = c.GetOr(context.Background(), key, func(context.Context) (any, error) {
		return []int{1}, nil
	})
	applied := c.Patch(key, func(old any) any {
		return append(old.([]int), 2)
	})
	if !applied {
		t.Fatal("patch skipped a populated key")
	}
	v, _ := c.Peek(key)
	if got := v.([]int); len(got) != 2 || got[1] != 2 {
		t.Fatalf("patched value = %v", got)
	}

	c.Invalidate(key)
	if applied := c.Patch(key, func(old any) any { return "x" }); applied {
		t.Fatal("patch applied to an invalidated key")
	}
}

func TestGetOrPropagatesFetchErrorWithoutCaching(t *testing.T) {
	c := New()
	boom := errors.New("network down")
	key := ConversationsKey("u1")

	_, err := c.GetOr(context.Background(), key, func(context.Context) (any, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if _, ok := c.Peek(key); ok {
		t.Fatal("error result was cached")
	}

	v, err := c.GetOr(context.Background(), key, func(context.Context) (any, error) {
		return "ok", nil
	})
	if err != nil || v.(string) != "ok" {
		t.Fatalf("recovery fetch: v=%v err=%v", v, err)
	}
}
