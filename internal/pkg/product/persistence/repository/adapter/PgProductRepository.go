package adapter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	product "github.com/IsraelChiamovich/second-hand-market/internal/pkg/product/application/domain"
	repository "github.com/IsraelChiamovich/second-hand-market/internal/pkg/product/persistence/repository/port"
)

// PgProductRepository is the Postgres adapter for listings, favorites and
// offers.
type PgProductRepository struct {
	pool *pgxpool.Pool
}

var _ repository.ProductRepository = (*PgProductRepository)(nil)
var _ repository.FavoriteRepository = (*PgProductRepository)(nil)
var _ repository.OfferRepository = (*PgProductRepository)(nil)

func NewPgProductRepository(pool *pgxpool.Pool) *PgProductRepository {
	return &PgProductRepository{pool: pool}
}

const productColumns = `id, seller_id, title, description, price, category, location, status, images, featured, created_at`

func scanProduct(row pgx.Row) (product.Product, error) {
	var p product.Product
	err := row.Scan(&p.ID, &p.SellerID, &p.Title, &p.Description, &p.Price,
		&p.Category, &p.Location, &p.Status, &p.Images, &p.Featured, &p.CreatedAt)
	return p, err
}

func (r *PgProductRepository) ListActive(ctx context.Context, f product.Filter) ([]product.Product, error) {
	var (
		where = []string{"status = 'active'"}
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Keyword != "" {
		ph := arg("%" + f.Keyword + "%")
		where = append(where, fmt.Sprintf("(title ILIKE %s OR description ILIKE %s)", ph, ph))
	}
	if f.Category != "" {
		where = append(where, "category = "+arg(string(f.Category)))
	}
	if f.Location != "" {
		where = append(where, "location ILIKE "+arg("%"+f.Location+"%"))
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	q := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE %s
		ORDER BY featured DESC, created_at DESC, id
		LIMIT %s OFFSET %s`,
		productColumns, strings.Join(where, " AND "), arg(limit), arg(f.Offset))

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []product.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PgProductRepository) GetByID(ctx context.Context, id string) (product.Product, error) {
	q := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)
	p, err := scanProduct(r.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return product.Product{}, repository.ErrNotFound
	}
	return p, err
}

func (r *PgProductRepository) ListBySeller(ctx context.Context, sellerID string) ([]product.Product, error) {
	q := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE seller_id = $1 AND status <> 'deleted'
		ORDER BY created_at DESC, id`, productColumns)

	rows, err := r.pool.Query(ctx, q, sellerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []product.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PgProductRepository) Create(ctx context.Context, p product.Product) (product.Product, error) {
	q := fmt.Sprintf(`
		INSERT INTO products (seller_id, title, description, price, category, location, status, images)
		VALUES ($1, $2, $3, $4, $5, $6, 'active', $7)
		RETURNING %s`, productColumns)

	return scanProduct(r.pool.QueryRow(ctx, q,
		p.SellerID, p.Title, p.Description, p.Price, p.Category, p.Location, p.Images))
}

func (r *PgProductRepository) Update(ctx context.Context, p product.Product) (product.Product, error) {
	q := fmt.Sprintf(`
		UPDATE products
		SET title = $2, description = $3, price = $4, category = $5, location = $6, images = $7
		WHERE id = $1
		RETURNING %s`, productColumns)

	updated, err := scanProduct(r.pool.QueryRow(ctx, q,
		p.ID, p.Title, p.Description, p.Price, p.Category, p.Location, p.Images))
	if errors.Is(err, pgx.ErrNoRows) {
		return product.Product{}, repository.ErrNotFound
	}
	return updated, err
}

func (r *PgProductRepository) SetStatus(ctx context.Context, id string, status product.Status) error {
	tag, err := r.pool.Exec(ctx, `UPDATE products SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PgProductRepository) CountByCategory(ctx context.Context) (map[product.Category]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT category, count(*)
		FROM products
		WHERE status = 'active'
		GROUP BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[product.Category]int)
	for rows.Next() {
		var cat product.Category
		var n int
		if err := rows.Scan(&cat, &n); err != nil {
			return nil, err
		}
		counts[cat] = n
	}
	return counts, rows.Err()
}
