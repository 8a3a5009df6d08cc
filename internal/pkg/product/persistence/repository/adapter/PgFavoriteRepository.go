package adapter

import (
	"context"
	"fmt"
	"strings"

	product "github.com/IsraelChiamovich/second-hand-market/internal/pkg/product/application/domain"
)

// prefixedProductColumns qualifies the shared column list for joins.
func prefixedProductColumns(alias string) string {
	cols := strings.Split(productColumns, ", ")
	for i, c := range cols {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

func (r *PgProductRepository) ListFavorites(ctx context.Context, userID string) ([]product.Product, error) {
	q := fmt.Sprintf(`
		SELECT %s
		FROM favorites f
		JOIN products p ON p.id = f.product_id
		WHERE f.user_id = $1 AND p.status <> 'deleted'
		ORDER BY f.created_at DESC`, prefixedProductColumns("p"))

	rows, err := r.pool.Query(ctx, q, userID)
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

func (r *PgProductRepository) IsFavorite(ctx context.Context, userID, productID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM favorites WHERE user_id = $1 AND product_id = $2)`,
		userID, productID).Scan(&exists)
	return exists, err
}

func (r *PgProductRepository) AddFavorite(ctx context.Context, userID, productID string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO favorites (user_id, product_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, product_id) DO NOTHING`,
		userID, productID)
	return err
}

func (r *PgProductRepository) RemoveFavorite(ctx context.Context, userID, productID string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM favorites WHERE user_id = $1 AND product_id = $2`,
		userID, productID)
	return err
}
