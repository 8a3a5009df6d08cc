package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	cacheport "github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/cache/port"
	repository "github.com/IsraelChiamovich/second-hand-market/internal/pkg/admin/persistence/repository/port"
)

var (
	ErrForbidden   = errors.New("admin: caller is not an admin")
	ErrPersistence = errors.New("admin: persistence failure")
)

const (
	statsKey = "admin:stats"
	statsTTL = 60 * time.Second
)

// AdminUseCase gates every moderation operation behind a role check.
type AdminUseCase struct {
	Repo  repository.AdminRepository
	Cache cacheport.Cache
	Log   *zap.Logger
}

func NewAdminUseCase(repo repository.AdminRepository, cache cacheport.Cache, log *zap.Logger) *AdminUseCase {
	if log == nil {
		log = zap.NewNop()
	}
	return &AdminUseCase{Repo: repo, Cache: cache, Log: log}
}

func (uc *AdminUseCase) IsAdmin(ctx context.Context, userID string) (bool, error) {
	return uc.Repo.IsAdmin(ctx, userID)
}

func (uc *AdminUseCase) requireAdmin(ctx context.Context, callerID string) error {
	ok, err := uc.Repo.IsAdmin(ctx, callerID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

func (uc *AdminUseCase) Stats(ctx context.Context, callerID string) (repository.Stats, error) {
	if err := uc.requireAdmin(ctx, callerID); err != nil {
		return repository.Stats{}, err
	}

	if uc.Cache != nil {
		if cached, err := uc.Cache.Get(ctx, statsKey); err == nil {
			var s repository.Stats
			if json.Unmarshal([]byte(cached), &s) == nil {
				return s, nil
			}
		} else if !errors.Is(err, cacheport.ErrMiss) {
			uc.Log.Debug("admin stats: cache read failed", zap.Error(err))
		}
	}

	s, err := uc.Repo.Stats(ctx)
	if err != nil {
		return repository.Stats{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if uc.Cache != nil {
		if encoded, err := json.Marshal(s); err == nil {
			if err := uc.Cache.Set(ctx, statsKey, string(encoded), statsTTL); err != nil {
				uc.Log.Debug("admin stats: cache write failed", zap.Error(err))
			}
		}
	}
	return s, nil
}

func (uc *AdminUseCase) ProductsPerDay(ctx context.Context, callerID string, days int) ([]repository.DayCount, error) {
	if err := uc.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}
	out, err := uc.Repo.ProductsPerDay(ctx, days)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return out, nil
}

func (uc *AdminUseCase) ProductsByCategory(ctx context.Context, callerID string) (map[string]int, error) {
	if err := uc.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}
	out, err := uc.Repo.ProductsByCategory(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return out, nil
}

func (uc *AdminUseCase) AllProducts(ctx context.Context, callerID string) ([]repository.OwnedProduct, error) {
	if err := uc.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}
	out, err := uc.Repo.AllProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return out, nil
}

func (uc *AdminUseCase) SetFeatured(ctx context.Context, callerID, productID string, featured bool) error {
	if err := uc.requireAdmin(ctx, callerID); err != nil {
		return err
	}
	return uc.Repo.SetFeatured(ctx, productID, featured)
}

func (uc *AdminUseCase) RemoveProduct(ctx context.Context, callerID, productID string) error {
	if err := uc.requireAdmin(ctx, callerID); err != nil {
		return err
	}
	return uc.Repo.RemoveProduct(ctx, productID)
}
