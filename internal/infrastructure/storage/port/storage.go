package port

import "context"

// ObjectStore is the product-image storage contract: upload bytes, get back a
// public URL; delete by that URL. Authorization and retention are the
// backend's concern.
type ObjectStore interface {
	// Upload stores data under a caller-scoped object name derived from
	// userID and filename, returning the public URL.
	Upload(ctx context.Context, userID string, filename string, contentType string, data []byte) (string, error)

	// Delete removes the object a previous Upload returned url for. Unknown
	// URLs are a no-op.
	Delete(ctx context.Context, url string) error
}
