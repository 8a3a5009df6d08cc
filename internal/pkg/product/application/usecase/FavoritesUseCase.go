package usecase

import (
	"context"
	"fmt"

	product "github.com/IsraelChiamovich/second-hand-market/internal/pkg/product/application/domain"
	repository "github.com/IsraelChiamovich/second-hand-market/internal/pkg/product/persistence/repository/port"
)

// FavoritesUseCase covers saved listings.
type FavoritesUseCase struct {
	Repo repository.FavoriteRepository
}

func NewFavoritesUseCase(repo repository.FavoriteRepository) *FavoritesUseCase {
	return &FavoritesUseCase{Repo: repo}
}

func (uc *FavoritesUseCase) List(ctx context.Context, userID string) ([]product.Product, error) {
	out, err := uc.Repo.ListFavorites(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return out, nil
}

func (uc *FavoritesUseCase) IsFavorite(ctx context.Context, userID, productID string) (bool, error) {
	return uc.Repo.IsFavorite(ctx, userID, productID)
}

// Toggle flips the saved state and reports the new one.
func (uc *FavoritesUseCase) Toggle(ctx context.Context, userID, productID string) (bool, error) {
	saved, err := uc.Repo.IsFavorite(ctx, userID, productID)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if saved {
		if err := uc.Repo.RemoveFavorite(ctx, userID, productID); err != nil {
			return false, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		return false, nil
	}
	if err := uc.Repo.AddFavorite(ctx, userID, productID); err != nil {
		return false, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return true, nil
}
