package usecase

import (
	"context"
	"fmt"

	product "github.com/IsraelChiamovich/second-hand-market/internal/pkg/product/application/domain"
	repository "github.com/IsraelChiamovich/second-hand-market/internal/pkg/product/persistence/repository/port"
)

// ListProductsUseCase serves the browse surface: active listings narrowed by
// keyword, category and location.
type ListProductsUseCase struct {
	Repo repository.ProductRepository
}

func NewListProductsUseCase(repo repository.ProductRepository) *ListProductsUseCase {
	return &ListProductsUseCase{Repo: repo}
}

func (uc *ListProductsUseCase) Execute(ctx context.Context, f product.Filter) ([]product.Product, error) {
	out, err := uc.Repo.ListActive(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return out, nil
}
