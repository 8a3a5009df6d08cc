package usecase

import (
	"context"
	"errors"
	"fmt"

	storage "github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/storage/port"
)

var ErrImageTooLarge = errors.New("product: image exceeds size limit")

const maxImageBytes = 5 << 20

// ProductImagesUseCase uploads and removes listing photos through the object
// store. Uploaded objects are namespaced per user, so a caller can only ever
// shadow their own files.
type ProductImagesUseCase struct {
	Store storage.ObjectStore
}

func NewProductImagesUseCase(store storage.ObjectStore) *ProductImagesUseCase {
	return &ProductImagesUseCase{Store: store}
}

func (uc *ProductImagesUseCase) Upload(ctx context.Context, userID, filename, contentType string, data []byte) (string, error) {
	if len(data) > maxImageBytes {
		return "", ErrImageTooLarge
	}
	url, err := uc.Store.Upload(ctx, userID, filename, contentType, data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return url, nil
}

func (uc *ProductImagesUseCase) Delete(ctx context.Context, url string) error {
	if err := uc.Store.Delete(ctx, url); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}
