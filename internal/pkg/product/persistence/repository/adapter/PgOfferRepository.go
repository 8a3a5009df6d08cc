package adapter

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	identity "github.com/IsraelChiamovich/second-hand-market/internal/pkg/identity/domain"
	product "github.com/IsraelChiamovich/second-hand-market/internal/pkg/product/application/domain"
	repository "github.com/IsraelChiamovich/second-hand-market/internal/pkg/product/persistence/repository/port"
)

const offerColumns = `o.id, o.product_id, o.buyer_id, o.seller_id, o.amount, o.message, o.status, o.created_at`

func (r *PgProductRepository) CreateOffer(ctx context.Context, o product.Offer) (product.Offer, error) {
	const q = `
		INSERT INTO offers (product_id, buyer_id, seller_id, amount, message, status)
		VALUES ($1, $2, $3, $4, $5, 'pending')
		RETURNING id, product_id, buyer_id, seller_id, amount, message, status, created_at`

	var created product.Offer
	err := r.pool.QueryRow(ctx, q, o.ProductID, o.BuyerID, o.SellerID, o.Amount, o.Message).
		Scan(&created.ID, &created.ProductID, &created.BuyerID, &created.SellerID,
			&created.Amount, &created.Message, &created.Status, &created.CreatedAt)
	return created, err
}

func (r *PgProductRepository) GetOffer(ctx context.Context, id string) (product.Offer, error) {
	const q = `
		SELECT id, product_id, buyer_id, seller_id, amount, message, status, created_at
		FROM offers
		WHERE id = $1`

	var o product.Offer
	err := r.pool.QueryRow(ctx, q, id).
		Scan(&o.ID, &o.ProductID, &o.BuyerID, &o.SellerID, &o.Amount, &o.Message, &o.Status, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return product.Offer{}, repository.ErrNotFound
	}
	return o, err
}

func (r *PgProductRepository) ListOffersByProduct(ctx context.Context, productID string) ([]product.OfferView, error) {
	q := `
		SELECT ` + offerColumns + `,
		       pr.user_id, pr.full_name, pr.phone, pr.avatar_url,
		       p.title
		FROM offers o
		JOIN products p ON p.id = o.product_id
		LEFT JOIN profiles pr ON pr.user_id = o.buyer_id
		WHERE o.product_id = $1
		ORDER BY o.created_at DESC, o.id`

	return r.queryOfferViews(ctx, q, productID)
}

func (r *PgProductRepository) ListOffersForViewer(ctx context.Context, viewerID string) ([]product.OfferView, error) {
	q := `
		SELECT ` + offerColumns + `,
		       pr.user_id, pr.full_name, pr.phone, pr.avatar_url,
		       p.title
		FROM offers o
		JOIN products p ON p.id = o.product_id
		LEFT JOIN profiles pr ON pr.user_id = o.buyer_id
		WHERE o.buyer_id = $1 OR o.seller_id = $1
		ORDER BY o.created_at DESC, o.id`

	return r.queryOfferViews(ctx, q, viewerID)
}

func (r *PgProductRepository) queryOfferViews(ctx context.Context, q string, args ...any) ([]product.OfferView, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []product.OfferView
	for rows.Next() {
		var (
			v         product.OfferView
			buyerID   *string
			fullName  *string
			phone     *string
			avatarURL *string
		)
		err := rows.Scan(&v.ID, &v.ProductID, &v.BuyerID, &v.SellerID,
			&v.Amount, &v.Message, &v.Status, &v.CreatedAt,
			&buyerID, &fullName, &phone, &avatarURL,
			&v.ProductTitle)
		if err != nil {
			return nil, err
		}
		if buyerID != nil {
			v.Buyer = &identity.Profile{UserID: *buyerID, FullName: fullName, Phone: phone, AvatarURL: avatarURL}
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *PgProductRepository) SetOfferStatus(ctx context.Context, id string, status product.OfferStatus) error {
	tag, err := r.pool.Exec(ctx, `UPDATE offers SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
