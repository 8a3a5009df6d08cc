package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/feed"
	"github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/querycache"
	product "github.com/IsraelChiamovich/second-hand-market/internal/pkg/product/application/domain"
	repository "github.com/IsraelChiamovich/second-hand-market/internal/pkg/product/persistence/repository/port"
)

type fakeProductRepo struct {
	products map[string]product.Product
}

func (f *fakeProductRepo) ListActive(context.Context, product.Filter) ([]product.Product, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeProductRepo) GetByID(_ context.Context, id string) (product.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return product.Product{}, repository.ErrNotFound
	}
	return p, nil
}

func (f *fakeProductRepo) ListBySeller(context.Context, string) ([]product.Product, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeProductRepo) Create(context.Context, product.Product) (product.Product, error) {
	return product.Product{}, errors.New("not implemented")
}

func (f *fakeProductRepo) Update(context.Context, product.Product) (product.Product, error) {
	return product.Product{}, errors.New("not implemented")
}

func (f *fakeProductRepo) SetStatus(context.Context, string, product.Status) error {
	return errors.New("not implemented")
}

func (f *fakeProductRepo) CountByCategory(context.Context) (map[product.Category]int, error) {
	return nil, errors.New("not implemented")
}

type fakeOfferRepo struct {
	offers      map[string]product.Offer
	nextID      int
	listQueries int
}

func (f *fakeOfferRepo) CreateOffer(_ context.Context, o product.Offer) (product.Offer, error) {
	f.nextID++
	o.ID = fmt.Sprintf("o%d", f.nextID)
	o.Status = product.OfferPending
	f.offers[o.ID] = o
	return o, nil
}

func (f *fakeOfferRepo) GetOffer(_ context.Context, id string) (product.Offer, error) {
	o, ok := f.offers[id]
	if !ok {
		return product.Offer{}, repository.ErrNotFound
	}
	return o, nil
}

func (f *fakeOfferRepo) ListOffersByProduct(_ context.Context, productID string) ([]product.OfferView, error) {
	f.listQueries++
	var out []product.OfferView
	for _, o := range f.offers {
		if o.ProductID == productID {
			out = append(out, product.OfferView{Offer: o})
		}
	}
	return out, nil
}

func (f *fakeOfferRepo) ListOffersForViewer(_ context.Context, viewerID string) ([]product.OfferView, error) {
	f.listQueries++
	var out []product.OfferView
	for _, o := range f.offers {
		if o.BuyerID == viewerID || o.SellerID == viewerID {
			out = append(out, product.OfferView{Offer: o})
		}
	}
	return out, nil
}

func (f *fakeOfferRepo) SetOfferStatus(_ context.Context, id string, status product.OfferStatus) error {
	o, ok := f.offers[id]
	if !ok {
		return repository.ErrNotFound
	}
	o.Status = status
	f.offers[id] = o
	return nil
}

func newOffersFixture(t *testing.T) (*OffersUseCase, *fakeOfferRepo) {
	t.Helper()
	products := &fakeProductRepo{products: map[string]product.Product{
		"p1": {ID: "p1", SellerID: "seller"},
	}}
	offers := &fakeOfferRepo{offers: make(map[string]product.Offer)}
	return NewOffersUseCase(offers, products, querycache.New(), feed.New(nil)), offers
}

func TestListOffersByProductServedFromCache(t *testing.T) {
	ctx := context.Background()
	uc, repo := newOffersFixture(t)

	if _, err := uc.Create(ctx, CreateOfferInput{ProductID: "p1", BuyerID: "buyer", Amount: 50}); err != nil {
		t.Fatalf("create offer: %v", err)
	}

	for i := 0; i < 3; i++ {
		views, err := uc.ListByProduct(ctx, "seller", "p1")
		if err != nil {
			t.Fatalf("list offers: %v", err)
		}
		if len(views) != 1 {
			t.Fatalf("got %d offers, want 1", len(views))
		}
	}
	if repo.listQueries != 1 {
		t.Fatalf("repository queried %d times, want 1 (cached reads)", repo.listQueries)
	}
}

func TestOfferMutationRefreshesCachedLists(t *testing.T) {
	ctx := context.Background()
	uc, repo := newOffersFixture(t)

	created, err := uc.Create(ctx, CreateOfferInput{ProductID: "p1", BuyerID: "buyer", Amount: 50})
	if err != nil {
		t.Fatalf("create offer: %v", err)
	}
	if _, err := uc.ListByProduct(ctx, "seller", "p1"); err != nil {
		t.Fatalf("list offers: %v", err)
	}
	if _, err := uc.ListForViewer(ctx, "buyer"); err != nil {
		t.Fatalf("list viewer offers: %v", err)
	}

	if err := uc.Decide(ctx, "seller", created.ID, product.OfferAccepted); err != nil {
		t.Fatalf("decide offer: %v", err)
	}

	views, err := uc.ListByProduct(ctx, "seller", "p1")
	if err != nil {
		t.Fatalf("list offers after decision: %v", err)
	}
	if len(views) != 1 || views[0].Status != product.OfferAccepted {
		t.Fatalf("decision not visible after invalidation: %+v", views)
	}

	mine, err := uc.ListForViewer(ctx, "buyer")
	if err != nil {
		t.Fatalf("list viewer offers after decision: %v", err)
	}
	if len(mine) != 1 || mine[0].Status != product.OfferAccepted {
		t.Fatalf("viewer list not refreshed: %+v", mine)
	}

	if repo.listQueries != 4 {
		t.Fatalf("repository queried %d times, want 4 (both keys dropped by the decision)", repo.listQueries)
	}
}

func TestListOffersByProductRequiresOwner(t *testing.T) {
	ctx := context.Background()
	uc, _ := newOffersFixture(t)

	if _, err := uc.ListByProduct(ctx, "buyer", "p1"); !errors.Is(err, product.ErrNotOwner) {
		t.Fatalf("err = %v, want ErrNotOwner", err)
	}
}
