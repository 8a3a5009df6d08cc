package repository

import (
	"context"
	"time"
)

// Stats is the dashboard headline block.
type Stats struct {
	TotalUsers      int `json:"total_users"`
	TotalProducts   int `json:"total_products"`
	ActiveProducts  int `json:"active_products"`
	SoldProducts    int `json:"sold_products"`
	ProductsLast7d  int `json:"products_last_7d"`
	ProductsLast30d int `json:"products_last_30d"`
	TotalMessages   int `json:"total_messages"`
}

// DayCount is one point of the products-per-day chart.
type DayCount struct {
	Day   time.Time `json:"day"`
	Count int       `json:"count"`
}

// OwnedProduct is a listing joined with its seller for the moderation table.
type OwnedProduct struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Price      float64   `json:"price"`
	Category   string    `json:"category"`
	Status     string    `json:"status"`
	Featured   bool      `json:"featured"`
	CreatedAt  time.Time `json:"created_at"`
	SellerID   string    `json:"seller_id"`
	SellerName *string   `json:"seller_name"`
}

// AdminRepository defines the moderation and dashboard queries.
type AdminRepository interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
	Stats(ctx context.Context) (Stats, error)
	ProductsPerDay(ctx context.Context, days int) ([]DayCount, error)
	ProductsByCategory(ctx context.Context) (map[string]int, error)
	AllProducts(ctx context.Context) ([]OwnedProduct, error)
	SetFeatured(ctx context.Context, productID string, featured bool) error
	RemoveProduct(ctx context.Context, productID string) error
}
