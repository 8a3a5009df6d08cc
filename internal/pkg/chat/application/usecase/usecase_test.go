package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/querycache"
	chat "github.com/IsraelChiamovich/second-hand-market/internal/pkg/chat/application/domain"
	identity "github.com/IsraelChiamovich/second-hand-market/internal/pkg/identity/domain"
)

type fakeChatRepo struct {
	mu            sync.Mutex
	conversations map[string]chat.Conversation
	titles        map[string]string
	messages      map[string][]chat.Message
	nextID        int
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{
		conversations: make(map[string]chat.Conversation),
		titles:        make(map[string]string),
		messages:      make(map[string][]chat.Message),
	}
}

func (r *fakeChatRepo) addConversation(id, buyerID, sellerID, title string) chat.Conversation {
	r.mu.Lock()
	defer r.mu.Unlock()
	conv := chat.Conversation{ID: id, BuyerID: buyerID, SellerID: sellerID, CreatedAt: time.Now()}
	r.conversations[id] = conv
	r.titles[id] = title
	return conv
}

func (r *fakeChatRepo) GetOrCreateConversation(_ context.Context, productID *string, buyerID, sellerID string) (chat.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.conversations {
		if c.BuyerID == buyerID && c.SellerID == sellerID {
			return c, nil
		}
	}
	r.nextID++
	conv := chat.Conversation{
		ID:        fmt.Sprintf("c%d", r.nextID),
		ProductID: productID,
		BuyerID:   buyerID,
		SellerID:  sellerID,
		CreatedAt: time.Now(),
	}
	r.conversations[conv.ID] = conv
	return conv, nil
}

func (r *fakeChatRepo) GetConversation(_ context.Context, id string) (chat.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conv, ok := r.conversations[id]
	if !ok {
		return chat.Conversation{}, fmt.Errorf("no such conversation")
	}
	return conv, nil
}

func (r *fakeChatRepo) ConversationSummary(ctx context.Context, id string) (chat.Conversation, string, error) {
	conv, err := r.GetConversation(ctx, id)
	if err != nil {
		return chat.Conversation{}, "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return conv, r.titles[id], nil
}

func (r *fakeChatRepo) ListHeadersForUser(_ context.Context, userID string) ([]chat.Header, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []chat.Header
	for _, c := range r.conversations {
		if c.HasParticipant(userID) {
			out = append(out, chat.Header{Conversation: c})
		}
	}
	return out, nil
}

func (r *fakeChatRepo) MessagesByConversation(_ context.Context, conversationID string) ([]chat.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]chat.Message(nil), r.messages[conversationID]...), nil
}

func (r *fakeChatRepo) LatestMessage(_ context.Context, conversationID string) (*chat.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	msgs := r.messages[conversationID]
	if len(msgs) == 0 {
		return nil, nil
	}
	last := msgs[len(msgs)-1]
	return &last, nil
}

func (r *fakeChatRepo) CountUnread(_ context.Context, conversationID, viewerID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.messages[conversationID] {
		if m.UnreadBy(viewerID) {
			n++
		}
	}
	return n, nil
}

func (r *fakeChatRepo) InsertMessage(_ context.Context, m chat.Message) (chat.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	m.ID = fmt.Sprintf("m%d", r.nextID)
	r.messages[m.ConversationID] = append(r.messages[m.ConversationID], m)
	return m, nil
}

func (r *fakeChatRepo) TouchConversation(_ context.Context, conversationID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.conversations[conversationID]; ok {
		c.LastMessageAt = at
		r.conversations[conversationID] = c
	}
	return nil
}

func (r *fakeChatRepo) MarkConversationRead(_ context.Context, conversationID, viewerID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	msgs := r.messages[conversationID]
	for i, m := range msgs {
		if m.UnreadBy(viewerID) {
			t := at
			msgs[i].ReadAt = &t
		}
	}
	return nil
}

type fakeProfiles struct {
	profiles map[string]identity.Profile
}

func (f *fakeProfiles) GetProfile(_ context.Context, userID string) (identity.Profile, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return identity.Profile{}, fmt.Errorf("no profile")
	}
	return p, nil
}

func strptr(s string) *string { return &s }

func TestListConversationsAggregatesEachRow(t *testing.T) {
	repo := newFakeChatRepo()
	repo.addConversation("c1", "buyer", "seller", "כיסא עץ")
	_, _ = repo.InsertMessage(context.Background(), chat.Message{
		ConversationID: "c1", SenderID: "buyer", Content: "שלום", CreatedAt: time.Now(),
	})

	profiles := &fakeProfiles{profiles: map[string]identity.Profile{
		"buyer": {UserID: "buyer", FullName: strptr("דנה לוי")},
	}}
	uc := NewListConversationsUseCase(repo, profiles, querycache.New(), zap.NewNop())

	views, err := uc.Execute(context.Background(), "seller")
	if err != nil {
		t.Fatal(err)
	}
	if len(views) != 1 {
		t.Fatalf("views = %d, want 1", len(views))
	}
	v := views[0]
	if v.Counterpart == nil || v.Counterpart.DisplayName() != "דנה לוי" {
		t.Errorf("counterpart = %+v, want buyer profile", v.Counterpart)
	}
	if v.LastMessage == nil || v.LastMessage.Content != "שלום" {
		t.Errorf("last message = %+v", v.LastMessage)
	}
	if v.UnreadCount != 1 {
		t.Errorf("unread = %d, want 1", v.UnreadCount)
	}
}

func TestListConversationsDegradesFailedLookups(t *testing.T) {
	repo := newFakeChatRepo()
	repo.addConversation("c1", "buyer", "seller", "")

	// No profile for the counterpart and an empty thread: the row still
	// appears, with zero-value enrichments.
	uc := NewListConversationsUseCase(repo, &fakeProfiles{profiles: map[string]identity.Profile{}}, querycache.New(), zap.NewNop())

	views, err := uc.Execute(context.Background(), "seller")
	if err != nil {
		t.Fatal(err)
	}
	if len(views) != 1 {
		t.Fatalf("views = %d, want 1", len(views))
	}
	if views[0].Counterpart != nil || views[0].LastMessage != nil || views[0].UnreadCount != 0 {
		t.Errorf("expected zero-value enrichments, got %+v", views[0])
	}
}

func TestListConversationsServesFromCacheUntilInvalidated(t *testing.T) {
	repo := newFakeChatRepo()
	repo.addConversation("c1", "buyer", "seller", "")
	cache := querycache.New()
	uc := NewListConversationsUseCase(repo, &fakeProfiles{profiles: map[string]identity.Profile{}}, cache, zap.NewNop())

	if _, err := uc.Execute(context.Background(), "seller"); err != nil {
		t.Fatal(err)
	}
	repo.addConversation("c2", "other", "seller", "")

	views, err := uc.Execute(context.Background(), "seller")
	if err != nil {
		t.Fatal(err)
	}
	if len(views) != 1 {
		t.Fatalf("cached views = %d, want 1 (stale until invalidated)", len(views))
	}

	cache.Invalidate(querycache.ConversationsKey("seller"))
	views, err = uc.Execute(context.Background(), "seller")
	if err != nil {
		t.Fatal(err)
	}
	if len(views) != 2 {
		t.Fatalf("views after invalidation = %d, want 2", len(views))
	}
}

func TestSendThenMarkReadScenario(t *testing.T) {
	repo := newFakeChatRepo()
	repo.addConversation("c1", "buyer", "seller", "שולחן סלון")
	cache := querycache.New()

	sendUC := NewSendMessageUseCase(repo, cache, nil, nil, zap.NewNop())
	markUC := NewMarkReadUseCase(repo, cache)

	msg, err := sendUC.Execute(context.Background(), SendMessageInput{
		ConversationID: "c1",
		SenderID:       "buyer",
		Content:        "שלום, המוצר עדיין זמין?",
	})
	if err != nil {
		t.Fatal(err)
	}
	if msg.Content != "שלום, המוצר עדיין זמין?" {
		t.Fatalf("content = %q", msg.Content)
	}

	// The sender never counts their own message as unread.
	if n, _ := repo.CountUnread(context.Background(), "c1", "buyer"); n != 0 {
		t.Fatalf("sender unread = %d, want 0", n)
	}
	if n, _ := repo.CountUnread(context.Background(), "c1", "seller"); n != 1 {
		t.Fatalf("seller unread = %d, want 1", n)
	}

	if err := markUC.Execute(context.Background(), "c1", "seller"); err != nil {
		t.Fatal(err)
	}
	if n, _ := repo.CountUnread(context.Background(), "c1", "seller"); n != 0 {
		t.Fatalf("seller unread after read = %d, want 0", n)
	}

	// Marking again is a no-op and the count stays at zero.
	if err := markUC.Execute(context.Background(), "c1", "seller"); err != nil {
		t.Fatal(err)
	}
	if n, _ := repo.CountUnread(context.Background(), "c1", "seller"); n != 0 {
		t.Fatalf("seller unread after second read = %d, want 0", n)
	}
}

func TestSendRejectsOutsiders(t *testing.T) {
	repo := newFakeChatRepo()
	repo.addConversation("c1", "buyer", "seller", "")
	uc := NewSendMessageUseCase(repo, querycache.New(), nil, nil, zap.NewNop())

	if _, err := uc.Execute(context.Background(), SendMessageInput{
		ConversationID: "c1", SenderID: "stranger", Content: "hi",
	}); err != chat.ErrNotParticipant {
		t.Fatalf("err = %v, want ErrNotParticipant", err)
	}
}

func TestStartConversationIsIdempotent(t *testing.T) {
	repo := newFakeChatRepo()
	uc := NewStartConversationUseCase(repo, querycache.New())

	first, err := uc.Execute(context.Background(), StartConversationInput{BuyerID: "buyer", SellerID: "seller"})
	if err != nil {
		t.Fatal(err)
	}
	second, err := uc.Execute(context.Background(), StartConversationInput{BuyerID: "buyer", SellerID: "seller"})
	if err != nil {
		t.Fatal(err)
	}
	if first.ID != second.ID {
		t.Fatalf("conversation duplicated: %s vs %s", first.ID, second.ID)
	}

	if _, err := uc.Execute(context.Background(), StartConversationInput{BuyerID: "u1", SellerID: "u1"}); err != chat.ErrSelfContact {
		t.Fatalf("err = %v, want ErrSelfContact", err)
	}
}
