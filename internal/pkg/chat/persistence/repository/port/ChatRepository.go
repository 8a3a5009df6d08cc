package repository

import (
	"context"
	"time"

	chat "github.com/IsraelChiamovich/second-hand-market/internal/pkg/chat/application/domain"
)

// ChatRepository defines persistence operations for marketplace messaging.
// Row-level authorization (a viewer only reading conversations it belongs to)
// is enforced by the store's policies plus the participant checks in the use
// cases; the adapter does not re-implement it per query.
type ChatRepository interface {
	// GetOrCreateConversation returns the conversation for the (product,
	// buyer, seller) triple, creating it on first contact. Idempotent:
	// an existing row is returned, never duplicated.
	GetOrCreateConversation(ctx context.Context, productID *string, buyerID, sellerID string) (chat.Conversation, error)

	GetConversation(ctx context.Context, id string) (chat.Conversation, error)

	// ConversationSummary fetches the conversation plus its product title
	// ("" when no product is attached) in one round trip; used by the
	// notification path.
	ConversationSummary(ctx context.Context, id string) (chat.Conversation, string, error)

	// ListHeadersForUser returns every conversation where the user is buyer
	// or seller, newest activity first.
	ListHeadersForUser(ctx context.Context, userID string) ([]chat.Header, error)

	// MessagesByConversation returns the full thread, oldest first.
	MessagesByConversation(ctx context.Context, conversationID string) ([]chat.Message, error)

	// LatestMessage returns the single most recent message or nil for an
	// empty thread.
	LatestMessage(ctx context.Context, conversationID string) (*chat.Message, error)

	// CountUnread counts messages in the conversation not sent by viewerID
	// and with a null read timestamp.
	CountUnread(ctx context.Context, conversationID, viewerID string) (int, error)

	// InsertMessage persists the message and returns it with its store-assigned ID.
	InsertMessage(ctx context.Context, m chat.Message) (chat.Message, error)

	// TouchConversation advances last_message_at.
	TouchConversation(ctx context.Context, conversationID string, at time.Time) error

	// MarkConversationRead stamps read_at on every unread message in the
	// conversation not sent by viewerID. Idempotent: already-read rows are
	// untouched and a second call affects zero rows.
	MarkConversationRead(ctx context.Context, conversationID, viewerID string, at time.Time) error
}
