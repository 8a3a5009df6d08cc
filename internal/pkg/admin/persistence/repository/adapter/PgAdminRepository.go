package adapter

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	repository "github.com/IsraelChiamovich/second-hand-market/internal/pkg/admin/persistence/repository/port"
)

var ErrNotFound = errors.New("admin: not found")

// PgAdminRepository is the Postgres adapter for moderation and dashboard
// queries.
type PgAdminRepository struct {
	pool *pgxpool.Pool
}

var _ repository.AdminRepository = (*PgAdminRepository)(nil)

func NewPgAdminRepository(pool *pgxpool.Pool) *PgAdminRepository {
	return &PgAdminRepository{pool: pool}
}

func (r *PgAdminRepository) IsAdmin(ctx context.Context, userID string) (bool, error) {
	var isAdmin bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM user_roles WHERE user_id = $1 AND role = 'admin')`,
		userID).Scan(&isAdmin)
	return isAdmin, err
}

func (r *PgAdminRepository) Stats(ctx context.Context) (repository.Stats, error) {
	const q = `
		SELECT
			(SELECT count(*) FROM users),
			(SELECT count(*) FROM products),
			(SELECT count(*) FROM products WHERE status = 'active'),
			(SELECT count(*) FROM products WHERE status = 'sold'),
			(SELECT count(*) FROM products WHERE created_at >= now() - interval '7 days'),
			(SELECT count(*) FROM products WHERE created_at >= now() - interval '30 days'),
			(SELECT count(*) FROM messages)`

	var s repository.Stats
	err := r.pool.QueryRow(ctx, q).Scan(
		&s.TotalUsers, &s.TotalProducts, &s.ActiveProducts, &s.SoldProducts,
		&s.ProductsLast7d, &s.ProductsLast30d, &s.TotalMessages)
	return s, err
}

func (r *PgAdminRepository) ProductsPerDay(ctx context.Context, days int) ([]repository.DayCount, error) {
	if days <= 0 {
		days = 30
	}
	const q = `
		SELECT date_trunc('day', created_at) AS day, count(*)
		FROM products
		WHERE created_at >= now() - ($1 || ' days')::interval
		GROUP BY day
		ORDER BY day`

	rows, err := r.pool.Query(ctx, q, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.DayCount
	for rows.Next() {
		var dc repository.DayCount
		if err := rows.Scan(&dc.Day, &dc.Count); err != nil {
			return nil, err
		}
		out = append(out, dc)
	}
	return out, rows.Err()
}

func (r *PgAdminRepository) ProductsByCategory(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT category, count(*) FROM products GROUP BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var cat string
		var n int
		if err := rows.Scan(&cat, &n); err != nil {
			return nil, err
		}
		counts[cat] = n
	}
	return counts, rows.Err()
}

func (r *PgAdminRepository) AllProducts(ctx context.Context) ([]repository.OwnedProduct, error) {
	const q = `
		SELECT p.id, p.title, p.price, p.category, p.status, p.featured, p.created_at,
		       p.seller_id, pr.full_name
		FROM products p
		LEFT JOIN profiles pr ON pr.user_id = p.seller_id
		ORDER BY p.created_at DESC, p.id`

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.OwnedProduct
	for rows.Next() {
		var p repository.OwnedProduct
		err := rows.Scan(&p.ID, &p.Title, &p.Price, &p.Category, &p.Status,
			&p.Featured, &p.CreatedAt, &p.SellerID, &p.SellerName)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PgAdminRepository) SetFeatured(ctx context.Context, productID string, featured bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE products SET featured = $2 WHERE id = $1`, productID, featured)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveProduct is the moderation hard-removal path, unlike the seller's soft
// delete.
func (r *PgAdminRepository) RemoveProduct(ctx context.Context, productID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, productID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
