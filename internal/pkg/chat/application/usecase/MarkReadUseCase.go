package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/querycache"
	chat "github.com/IsraelChiamovich/second-hand-market/internal/pkg/chat/application/domain"
	repository "github.com/IsraelChiamovich/second-hand-market/internal/pkg/chat/persistence/repository/port"
)

// MarkReadUseCase stamps read_at on every unread incoming message of a
// conversation. Idempotent: a second call finds nothing unread and changes
// nothing; the viewer's unread count is zero after each call.
type MarkReadUseCase struct {
	Repo  repository.ChatRepository
	Cache *querycache.Cache
}

func NewMarkReadUseCase(repo repository.ChatRepository, cache *querycache.Cache) *MarkReadUseCase {
	return &MarkReadUseCase{Repo: repo, Cache: cache}
}

func (uc *MarkReadUseCase) Execute(ctx context.Context, conversationID, viewerID string) error {
	if conversationID == "" || viewerID == "" {
		return fmt.Errorf("conversation id and viewer id are required")
	}

	conv, err := uc.Repo.GetConversation(ctx, conversationID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !conv.HasParticipant(viewerID) {
		return chat.ErrNotParticipant
	}

	now := time.Now().UTC()
	if err := uc.Repo.MarkConversationRead(ctx, conversationID, viewerID, now); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if uc.Cache != nil {
		uc.Cache.Patch(querycache.MessagesKey(conversationID), func(old any) any {
			msgs, _ := old.([]chat.Message)
			return chat.MarkRead(msgs, viewerID, now)
		})
		uc.Cache.Invalidate(querycache.ConversationsKey(viewerID))
	}
	return nil
}
