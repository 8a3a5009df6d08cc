package chat

import (
	"errors"
	"time"
)

// Domain-level errors for marketplace messaging.
var (
	ErrNotParticipant = errors.New("chat: user is not a participant in the conversation")
	ErrEmptyMessage   = errors.New("chat: message content is empty")
	ErrSelfContact    = errors.New("chat: buyer and seller are the same user")
)

// Conversation is a buyer/seller thread, optionally anchored to a product.
// One conversation exists per (product, buyer, seller) triple; creation is
// idempotent and conversations are never deleted. LastMessageAt orders the
// conversation list and is bumped on every send.
type Conversation struct {
	ID            string    `db:"id" json:"id"`
	ProductID     *string   `db:"product_id" json:"product_id"`
	BuyerID       string    `db:"buyer_id" json:"buyer_id"`
	SellerID      string    `db:"seller_id" json:"seller_id"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	LastMessageAt time.Time `db:"last_message_at" json:"last_message_at"`
}

// HasParticipant tells whether userID is the buyer or the seller.
func (c Conversation) HasParticipant(userID string) bool {
	return userID != "" && (userID == c.BuyerID || userID == c.SellerID)
}

// Counterpart resolves "the other participant": the seller when the viewer is
// the buyer, otherwise the buyer.
func (c Conversation) Counterpart(viewerID string) string {
	if viewerID == c.BuyerID {
		return c.SellerID
	}
	return c.BuyerID
}
