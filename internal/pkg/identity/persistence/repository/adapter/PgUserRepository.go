package adapter

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	identity "github.com/IsraelChiamovich/second-hand-market/internal/pkg/identity/domain"
	repository "github.com/IsraelChiamovich/second-hand-market/internal/pkg/identity/persistence/repository/port"
)

// PgUserRepository is the Postgres adapter for accounts and profiles.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

var _ repository.UserRepository = (*PgUserRepository)(nil)

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

func (r *PgUserRepository) CreateUser(ctx context.Context, email, passwordHash string) (identity.User, error) {
	const q = `
		INSERT INTO users (email, password_hash)
		VALUES ($1, $2)
		RETURNING id, email, password_hash, created_at`

	var u identity.User
	err := r.pool.QueryRow(ctx, q, email, passwordHash).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	return u, err
}

func (r *PgUserRepository) GetUserByEmail(ctx context.Context, email string) (identity.User, error) {
	const q = `
		SELECT id, email, password_hash, created_at
		FROM users
		WHERE email = $1`

	var u identity.User
	err := r.pool.QueryRow(ctx, q, email).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return identity.User{}, repository.ErrNotFound
	}
	return u, err
}

func (r *PgUserRepository) GetProfile(ctx context.Context, userID string) (identity.Profile, error) {
	const q = `
		SELECT user_id, full_name, phone, avatar_url
		FROM profiles
		WHERE user_id = $1`

	var p identity.Profile
	err := r.pool.QueryRow(ctx, q, userID).
		Scan(&p.UserID, &p.FullName, &p.Phone, &p.AvatarURL)
	if errors.Is(err, pgx.ErrNoRows) {
		return identity.Profile{}, repository.ErrNotFound
	}
	return p, err
}

func (r *PgUserRepository) UpsertProfile(ctx context.Context, p identity.Profile) error {
	const q = `
		INSERT INTO profiles (user_id, full_name, phone, avatar_url)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			full_name  = EXCLUDED.full_name,
			phone      = EXCLUDED.phone,
			avatar_url = EXCLUDED.avatar_url`

	_, err := r.pool.Exec(ctx, q, p.UserID, p.FullName, p.Phone, p.AvatarURL)
	return err
}
