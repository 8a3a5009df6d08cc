package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	cacheport "github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/cache/port"
	product "github.com/IsraelChiamovich/second-hand-market/internal/pkg/product/application/domain"
	repository "github.com/IsraelChiamovich/second-hand-market/internal/pkg/product/persistence/repository/port"
)

const (
	categoryCountsKey = "product:category_counts"
	categoryCountsTTL = 30 * time.Second
)

// CategoryCountsUseCase serves the homepage category chips. Counts are read
// through a short-lived cache since every visitor asks the same question.
type CategoryCountsUseCase struct {
	Repo  repository.ProductRepository
	Cache cacheport.Cache
	Log   *zap.Logger
}

func NewCategoryCountsUseCase(repo repository.ProductRepository, cache cacheport.Cache, log *zap.Logger) *CategoryCountsUseCase {
	if log == nil {
		log = zap.NewNop()
	}
	return &CategoryCountsUseCase{Repo: repo, Cache: cache, Log: log}
}

func (uc *CategoryCountsUseCase) Execute(ctx context.Context) (map[product.Category]int, error) {
	if uc.Cache != nil {
		cached, err := uc.Cache.Get(ctx, categoryCountsKey)
		if err == nil {
			var counts map[product.Category]int
			if json.Unmarshal([]byte(cached), &counts) == nil {
				return counts, nil
			}
		} else if !errors.Is(err, cacheport.ErrMiss) {
			uc.Log.Debug("category counts: cache read failed", zap.Error(err))
		}
	}

	counts, err := uc.Repo.CountByCategory(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if uc.Cache != nil {
		if encoded, err := json.Marshal(counts); err == nil {
			if err := uc.Cache.Set(ctx, categoryCountsKey, string(encoded), categoryCountsTTL); err != nil {
				uc.Log.Debug("category counts: cache write failed", zap.Error(err))
			}
		}
	}
	return counts, nil
}
