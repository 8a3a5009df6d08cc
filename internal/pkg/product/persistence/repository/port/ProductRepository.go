package repository

import (
	"context"
	"errors"

	product "github.com/IsraelChiamovich/second-hand-market/internal/pkg/product/application/domain"
)

// ErrNotFound is returned when a product or offer does not exist.
var ErrNotFound = errors.New("product: not found")

// ProductRepository defines persistence operations for listings.
type ProductRepository interface {
	ListActive(ctx context.Context, f product.Filter) ([]product.Product, error)
	GetByID(ctx context.Context, id string) (product.Product, error)
	ListBySeller(ctx context.Context, sellerID string) ([]product.Product, error)
	Create(ctx context.Context, p product.Product) (product.Product, error)
	Update(ctx context.Context, p product.Product) (product.Product, error)
	SetStatus(ctx context.Context, id string, status product.Status) error
	CountByCategory(ctx context.Context) (map[product.Category]int, error)
}

// FavoriteRepository defines persistence operations for saved listings.
type FavoriteRepository interface {
	ListFavorites(ctx context.Context, userID string) ([]product.Product, error)
	IsFavorite(ctx context.Context, userID, productID string) (bool, error)
	AddFavorite(ctx context.Context, userID, productID string) error
	RemoveFavorite(ctx context.Context, userID, productID string) error
}

// OfferRepository defines persistence operations for offers.
type OfferRepository interface {
	CreateOffer(ctx context.Context, o product.Offer) (product.Offer, error)
	GetOffer(ctx context.Context, id string) (product.Offer, error)
	ListOffersByProduct(ctx context.Context, productID string) ([]product.OfferView, error)
	ListOffersForViewer(ctx context.Context, viewerID string) ([]product.OfferView, error)
	SetOfferStatus(ctx context.Context, id string, status product.OfferStatus) error
}
