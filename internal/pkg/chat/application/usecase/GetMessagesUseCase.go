package usecase

import (
	"context"
	"fmt"

	"github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/querycache"
	chat "github.com/IsraelChiamovich/second-hand-market/internal/pkg/chat/application/domain"
	repository "github.com/IsraelChiamovich/second-hand-market/internal/pkg/chat/persistence/repository/port"
)

// GetMessagesUseCase returns the full thread of an open conversation, oldest
// first, through the "messages:<conversation>" cache key. Realtime inserts
// for the open conversation are patched into that key by the reconciler, so
// repeated reads do not re-query.
type GetMessagesUseCase struct {
	Repo  repository.ChatRepository
	Cache *querycache.Cache
}

func NewGetMessagesUseCase(repo repository.ChatRepository, cache *querycache.Cache) *GetMessagesUseCase {
	return &GetMessagesUseCase{Repo: repo, Cache: cache}
}

func (uc *GetMessagesUseCase) Execute(ctx context.Context, conversationID, viewerID string) ([]chat.Message, error) {
	if conversationID == "" || viewerID == "" {
		return nil, fmt.Errorf("conversation id and viewer id are required")
	}

	conv, err := uc.Repo.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !conv.HasParticipant(viewerID) {
		return nil, chat.ErrNotParticipant
	}

	v, err := uc.Cache.GetOr(ctx, querycache.MessagesKey(conversationID), func(ctx context.Context) (any, error) {
		msgs, err := uc.Repo.MessagesByConversation(ctx, conversationID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		return msgs, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]chat.Message), nil
}
