package repository

import (
	"context"
	"errors"

	identity "github.com/IsraelChiamovich/second-hand-market/internal/pkg/identity/domain"
)

// ErrNotFound is returned when a user or profile does not exist.
var ErrNotFound = errors.New("identity: not found")

// UserRepository defines persistence operations for accounts and profiles.
type UserRepository interface {
	CreateUser(ctx context.Context, email, passwordHash string) (identity.User, error)
	GetUserByEmail(ctx context.Context, email string) (identity.User, error)
	GetProfile(ctx context.Context, userID string) (identity.Profile, error)
	UpsertProfile(ctx context.Context, p identity.Profile) error
}

// ProfileReader is the narrow read side other packages consume (e.g. the
// conversation aggregator resolving counterpart profiles).
type ProfileReader interface {
	GetProfile(ctx context.Context, userID string) (identity.Profile, error)
}
