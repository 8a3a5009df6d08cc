package usecase

import (
	"context"
	"fmt"

	"github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/querycache"
	chat "github.com/IsraelChiamovich/second-hand-market/internal/pkg/chat/application/domain"
	repository "github.com/IsraelChiamovich/second-hand-market/internal/pkg/chat/persistence/repository/port"
)

// StartConversationInput carries the first-contact parameters: the buyer is
// always the caller, the seller and product come from the product page.
type StartConversationInput struct {
	ProductID *string
	BuyerID   string
	SellerID  string
}

// StartConversationUseCase opens (or re-opens) the conversation for a
// product between a buyer and a seller. Idempotent: an existing conversation
// is returned, never duplicated.
type StartConversationUseCase struct {
	Repo  repository.ChatRepository
	Cache *querycache.Cache
}

func NewStartConversationUseCase(repo repository.ChatRepository, cache *querycache.Cache) *StartConversationUseCase {
	return &StartConversationUseCase{Repo: repo, Cache: cache}
}

func (uc *StartConversationUseCase) Execute(ctx context.Context, in StartConversationInput) (*chat.Conversation, error) {
	if in.BuyerID == "" || in.SellerID == "" {
		return nil, fmt.Errorf("buyer_id and seller_id are required")
	}
	if in.BuyerID == in.SellerID {
		return nil, chat.ErrSelfContact
	}

	conv, err := uc.Repo.GetOrCreateConversation(ctx, in.ProductID, in.BuyerID, in.SellerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if uc.Cache != nil {
		uc.Cache.Invalidate(
			querycache.ConversationsKey(conv.BuyerID),
			querycache.ConversationsKey(conv.SellerID),
		)
	}
	return &conv, nil
}
