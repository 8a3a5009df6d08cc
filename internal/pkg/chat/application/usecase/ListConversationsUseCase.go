package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/querycache"
	chat "github.com/IsraelChiamovich/second-hand-market/internal/pkg/chat/application/domain"
	repository "github.com/IsraelChiamovich/second-hand-market/internal/pkg/chat/persistence/repository/port"
	identityrepo "github.com/IsraelChiamovich/second-hand-market/internal/pkg/identity/persistence/repository/port"
)

// aggregateWorkers caps the fan-out of per-conversation lookups so an
// unbounded conversation list cannot open an unbounded number of concurrent
// queries.
const aggregateWorkers = 8

// ListConversationsUseCase builds the conversation list view for a viewer:
// every conversation they participate in, newest activity first, each row
// enriched with the counterpart's profile, the latest message and a snapshot
// unread count. Results are served through the query cache under
// "conversations:<viewer>"; the reconciler invalidates that key on any
// conversation change or message insert.
type ListConversationsUseCase struct {
	Repo     repository.ChatRepository
	Profiles identityrepo.ProfileReader
	Cache    *querycache.Cache
	Log      *zap.Logger
}

func NewListConversationsUseCase(repo repository.ChatRepository, profiles identityrepo.ProfileReader, cache *querycache.Cache, log *zap.Logger) *ListConversationsUseCase {
	if log == nil {
		log = zap.NewNop()
	}
	return &ListConversationsUseCase{Repo: repo, Profiles: profiles, Cache: cache, Log: log}
}

func (uc *ListConversationsUseCase) Execute(ctx context.Context, viewerID string) ([]chat.View, error) {
	if viewerID == "" {
		return nil, fmt.Errorf("viewer id is required")
	}

	v, err := uc.Cache.GetOr(ctx, querycache.ConversationsKey(viewerID), func(ctx context.Context) (any, error) {
		return uc.aggregate(ctx, viewerID)
	})
	if err != nil {
		return nil, err
	}
	return v.([]chat.View), nil
}

// aggregate performs the fan-out/fan-in: for each conversation, three
// independent lookups (counterpart profile, latest message, unread count) run
// concurrently under the worker cap, and the full set is joined before
// anything is returned. A failed lookup degrades its own field to a zero
// value rather than failing the whole list, matching read-path error
// handling elsewhere: the next invalidation repairs it.
func (uc *ListConversationsUseCase) aggregate(ctx context.Context, viewerID string) ([]chat.View, error) {
	headers, err := uc.Repo.ListHeadersForUser(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	views := make([]chat.View, len(headers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(aggregateWorkers)

	for i, h := range headers {
		i, h := i, h
		views[i].Header = h
		counterpartID := h.Counterpart(viewerID)

		g.Go(func() error {
			profile, err := uc.Profiles.GetProfile(gctx, counterpartID)
			if err != nil {
				uc.Log.Debug("aggregate: counterpart profile lookup failed",
					zap.String("conversation_id", h.ID), zap.Error(err))
				return nil
			}
			views[i].Counterpart = &profile
			return nil
		})
		g.Go(func() error {
			last, err := uc.Repo.LatestMessage(gctx, h.ID)
			if err != nil {
				uc.Log.Debug("aggregate: latest message lookup failed",
					zap.String("conversation_id", h.ID), zap.Error(err))
				return nil
			}
			views[i].LastMessage = last
			return nil
		})
		g.Go(func() error {
			count, err := uc.Repo.CountUnread(gctx, h.ID, viewerID)
			if err != nil {
				uc.Log.Debug("aggregate: unread count lookup failed",
					zap.String("conversation_id", h.ID), zap.Error(err))
				return nil
			}
			views[i].UnreadCount = count
			return nil
		})
	}

	// Workers only return nil; Wait is the fan-in barrier.
	_ = g.Wait()
	return views, nil
}
