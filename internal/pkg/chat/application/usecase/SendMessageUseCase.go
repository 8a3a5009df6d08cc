package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/feed"
	qport "github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/queue/port"
	"github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/querycache"
	chat "github.com/IsraelChiamovich/second-hand-market/internal/pkg/chat/application/domain"
	repository "github.com/IsraelChiamovich/second-hand-market/internal/pkg/chat/persistence/repository/port"
)

// NewMessageTaskType is the queue task that fans a sent message out to
// notification targets. Declared here to keep payload and producer together;
// the handler lives in the task package.
const NewMessageTaskType = "notify:new_message"

// NewMessageTaskPayload is the JSON payload transported via the queue.
type NewMessageTaskPayload struct {
	MessageID      string `json:"message_id"`
	ConversationID string `json:"conversation_id"`
	SenderID       string `json:"sender_id"`
	Content        string `json:"content"`
}

// SendMessageInput carries the data needed to send a message.
type SendMessageInput struct {
	ConversationID string
	SenderID       string
	Content        string
}

// SendMessageUseCase persists a message and propagates it: optimistic append
// to the sender's cached thread, conversation-list invalidation for both
// participants, a local change event for watchers, and a fire-and-forget
// notification task. The write itself is synchronous; everything after the
// insert is best-effort and never fails the send.
type SendMessageUseCase struct {
	Repo   repository.ChatRepository
	Cache  *querycache.Cache
	Events *feed.Feed   // optional: local dispatch so watchers see the insert without waiting for the store echo
	Queue  qport.Client // optional: notification fan-out
	Log    *zap.Logger
}

func NewSendMessageUseCase(repo repository.ChatRepository, cache *querycache.Cache, events *feed.Feed, queue qport.Client, log *zap.Logger) *SendMessageUseCase {
	if log == nil {
		log = zap.NewNop()
	}
	return &SendMessageUseCase{Repo: repo, Cache: cache, Events: events, Queue: queue, Log: log}
}

func (uc *SendMessageUseCase) Execute(ctx context.Context, in SendMessageInput) (*chat.Message, error) {
	conv, err := uc.Repo.GetConversation(ctx, in.ConversationID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !conv.HasParticipant(in.SenderID) {
		return nil, chat.ErrNotParticipant
	}

	msg, err := chat.NewMessage(in.ConversationID, in.SenderID, in.Content)
	if err != nil {
		return nil, err
	}

	msg, err = uc.Repo.InsertMessage(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if err := uc.Repo.TouchConversation(ctx, conv.ID, msg.CreatedAt); err != nil {
		uc.Log.Warn("send: touch conversation failed", zap.String("conversation_id", conv.ID), zap.Error(err))
	}

	// Optimistic local append. The realtime echo of this row is de-duplicated
	// by message ID, so this and the feed path can both run in either order.
	if uc.Cache != nil {
		uc.Cache.Patch(querycache.MessagesKey(conv.ID), func(old any) any {
			msgs, _ := old.([]chat.Message)
			return chat.AppendUnique(msgs, msg)
		})
		uc.Cache.Invalidate(
			querycache.ConversationsKey(conv.BuyerID),
			querycache.ConversationsKey(conv.SellerID),
		)
	}

	if uc.Events != nil {
		if row, err := json.Marshal(msg); err == nil {
			uc.Events.Dispatch(feed.Event{Table: "messages", Op: feed.OpInsert, Row: row})
		}
	}

	if uc.Queue != nil {
		payload, err := json.Marshal(NewMessageTaskPayload{
			MessageID:      msg.ID,
			ConversationID: msg.ConversationID,
			SenderID:       msg.SenderID,
			Content:        msg.Content,
		})
		if err == nil {
			_, err = uc.Queue.Enqueue(ctx,
				qport.Task{Type: NewMessageTaskType, Payload: payload},
				qport.EnqueueOption{Queue: "notify", NoRetry: true},
			)
		}
		if err != nil {
			// At-most-once: a lost notification is an accepted degradation.
			uc.Log.Debug("send: notify enqueue failed", zap.String("message_id", msg.ID), zap.Error(err))
		}
	}

	return &msg, nil
}
