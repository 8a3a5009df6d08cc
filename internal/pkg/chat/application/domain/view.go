package chat

import (
	identity "github.com/IsraelChiamovich/second-hand-market/internal/pkg/identity/domain"
)

// ProductCard is the slice of a product shown on a conversation row.
type ProductCard struct {
	ID     string   `db:"id" json:"id"`
	Title  string   `db:"title" json:"title"`
	Price  float64  `db:"price" json:"price"`
	Images []string `db:"images" json:"images"`
}

// Header is a conversation plus its product card, as returned by the list
// query before per-conversation enrichment.
type Header struct {
	Conversation
	Product *ProductCard `json:"product"`
}

// View is the derived, non-persisted conversation row the UI renders: the
// conversation enriched with the counterpart's profile, the most recent
// message and a snapshot unread count. It is recomputed on demand, never
// incrementally maintained, so it can go stale between invalidation triggers.
type View struct {
	Header
	Counterpart *identity.Profile `json:"counterpart"`
	LastMessage *Message          `json:"last_message"`
	UnreadCount int               `json:"unread_count"`
}

// TotalUnread sums the unread snapshots of a list of views. Never negative:
// each count is a row count at computation time.
func TotalUnread(views []View) int {
	total := 0
	for _, v := range views {
		total += v.UnreadCount
	}
	return total
}
