package product

import (
	"errors"
	"time"

	identity "github.com/IsraelChiamovich/second-hand-market/internal/pkg/identity/domain"
)

var (
	ErrSelfOffer    = errors.New("product: cannot make an offer on your own listing")
	ErrOfferDecided = errors.New("product: offer already decided")
)

// OfferStatus is the offer lifecycle.
type OfferStatus string

const (
	OfferPending  OfferStatus = "pending"
	OfferAccepted OfferStatus = "accepted"
	OfferRejected OfferStatus = "rejected"
)

// Offer is a buyer's price proposal on a listing.
type Offer struct {
	ID        string      `db:"id" json:"id"`
	ProductID string      `db:"product_id" json:"product_id"`
	BuyerID   string      `db:"buyer_id" json:"buyer_id"`
	SellerID  string      `db:"seller_id" json:"seller_id"`
	Amount    float64     `db:"amount" json:"amount"`
	Message   string      `db:"message" json:"message"`
	Status    OfferStatus `db:"status" json:"status"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
}

// OfferView is an offer joined with its buyer's profile and product card, the
// shape seller-facing lists render.
type OfferView struct {
	Offer
	Buyer        *identity.Profile `json:"buyer,omitempty"`
	ProductTitle string            `json:"product_title"`
}

// Decidable reports whether the offer can still be accepted or rejected.
func (o Offer) Decidable() bool {
	return o.Status == OfferPending
}
