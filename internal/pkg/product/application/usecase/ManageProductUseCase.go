package usecase

import (
	"context"
	"fmt"

	product "github.com/IsraelChiamovich/second-hand-market/internal/pkg/product/application/domain"
	repository "github.com/IsraelChiamovich/second-hand-market/internal/pkg/product/persistence/repository/port"
)

// ManageProductUseCase covers the seller's own lifecycle: create, update,
// mark sold and soft delete. Every mutation checks ownership first.
type ManageProductUseCase struct {
	Repo repository.ProductRepository
}

func NewManageProductUseCase(repo repository.ProductRepository) *ManageProductUseCase {
	return &ManageProductUseCase{Repo: repo}
}

func (uc *ManageProductUseCase) Get(ctx context.Context, id string) (product.Product, error) {
	return uc.Repo.GetByID(ctx, id)
}

func (uc *ManageProductUseCase) Mine(ctx context.Context, sellerID string) ([]product.Product, error) {
	out, err := uc.Repo.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return out, nil
}

func (uc *ManageProductUseCase) Create(ctx context.Context, p product.Product) (product.Product, error) {
	if err := p.Validate(); err != nil {
		return product.Product{}, err
	}
	created, err := uc.Repo.Create(ctx, p)
	if err != nil {
		return product.Product{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return created, nil
}

func (uc *ManageProductUseCase) Update(ctx context.Context, callerID string, p product.Product) (product.Product, error) {
	if err := p.Validate(); err != nil {
		return product.Product{}, err
	}
	if err := uc.requireOwner(ctx, callerID, p.ID); err != nil {
		return product.Product{}, err
	}
	updated, err := uc.Repo.Update(ctx, p)
	if err != nil {
		return product.Product{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return updated, nil
}

// Delete is a soft delete: the row stays so conversations keep their product
// context.
func (uc *ManageProductUseCase) Delete(ctx context.Context, callerID, id string) error {
	if err := uc.requireOwner(ctx, callerID, id); err != nil {
		return err
	}
	return uc.Repo.SetStatus(ctx, id, product.StatusDeleted)
}

func (uc *ManageProductUseCase) MarkSold(ctx context.Context, callerID, id string) error {
	if err := uc.requireOwner(ctx, callerID, id); err != nil {
		return err
	}
	return uc.Repo.SetStatus(ctx, id, product.StatusSold)
}

func (uc *ManageProductUseCase) requireOwner(ctx context.Context, callerID, id string) error {
	existing, err := uc.Repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.SellerID != callerID {
		return product.ErrNotOwner
	}
	return nil
}
