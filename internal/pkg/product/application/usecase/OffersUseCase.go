package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/feed"
	"github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/querycache"
	product "github.com/IsraelChiamovich/second-hand-market/internal/pkg/product/application/domain"
	repository "github.com/IsraelChiamovich/second-hand-market/internal/pkg/product/persistence/repository/port"
)

// OffersUseCase covers the offer lifecycle. Every mutation dispatches a
// change event and drops the affected offer cache keys so open lists refresh.
type OffersUseCase struct {
	Offers   repository.OfferRepository
	Products repository.ProductRepository
	Cache    *querycache.Cache
	Events   *feed.Feed
}

func NewOffersUseCase(offers repository.OfferRepository, products repository.ProductRepository, cache *querycache.Cache, events *feed.Feed) *OffersUseCase {
	return &OffersUseCase{Offers: offers, Products: products, Cache: cache, Events: events}
}

type CreateOfferInput struct {
	ProductID string
	BuyerID   string
	Amount    float64
	Message   string
}

func (uc *OffersUseCase) Create(ctx context.Context, in CreateOfferInput) (*product.Offer, error) {
	listing, err := uc.Products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if listing.SellerID == in.BuyerID {
		return nil, product.ErrSelfOffer
	}

	created, err := uc.Offers.CreateOffer(ctx, product.Offer{
		ProductID: in.ProductID,
		BuyerID:   in.BuyerID,
		SellerID:  listing.SellerID,
		Amount:    in.Amount,
		Message:   in.Message,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	uc.propagate(feed.OpInsert, created)
	return &created, nil
}

func (uc *OffersUseCase) ListByProduct(ctx context.Context, callerID, productID string) ([]product.OfferView, error) {
	listing, err := uc.Products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if listing.SellerID != callerID {
		return nil, product.ErrNotOwner
	}
	return uc.cachedViews(ctx, querycache.OffersKey(productID), func(ctx context.Context) ([]product.OfferView, error) {
		return uc.Offers.ListOffersByProduct(ctx, productID)
	})
}

func (uc *OffersUseCase) ListForViewer(ctx context.Context, viewerID string) ([]product.OfferView, error) {
	return uc.cachedViews(ctx, querycache.ViewerOffersKey(viewerID), func(ctx context.Context) ([]product.OfferView, error) {
		return uc.Offers.ListOffersForViewer(ctx, viewerID)
	})
}

// cachedViews reads an offer list through the query cache so mutations and
// feed events refresh open lists by dropping the "offers" key family.
func (uc *OffersUseCase) cachedViews(ctx context.Context, key querycache.Key, fetch func(context.Context) ([]product.OfferView, error)) ([]product.OfferView, error) {
	if uc.Cache == nil {
		out, err := fetch(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		return out, nil
	}
	v, err := uc.Cache.GetOr(ctx, key, func(ctx context.Context) (any, error) {
		out, err := fetch(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]product.OfferView), nil
}

// Decide accepts or rejects a pending offer. Only the seller may decide, and
// a decided offer never changes again.
func (uc *OffersUseCase) Decide(ctx context.Context, callerID, offerID string, status product.OfferStatus) error {
	if status != product.OfferAccepted && status != product.OfferRejected {
		return fmt.Errorf("product: invalid offer decision %q", status)
	}

	offer, err := uc.Offers.GetOffer(ctx, offerID)
	if err != nil {
		return err
	}
	if offer.SellerID != callerID {
		return product.ErrNotOwner
	}
	if !offer.Decidable() {
		return product.ErrOfferDecided
	}

	if err := uc.Offers.SetOfferStatus(ctx, offerID, status); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	offer.Status = status
	uc.propagate(feed.OpUpdate, offer)
	return nil
}

func (uc *OffersUseCase) propagate(op feed.Op, o product.Offer) {
	if uc.Cache != nil {
		uc.Cache.InvalidatePrefix(querycache.OffersPrefix)
	}
	if uc.Events != nil {
		if row, err := json.Marshal(o); err == nil {
			uc.Events.Dispatch(feed.Event{Table: "offers", Op: op, Row: row})
		}
	}
}
