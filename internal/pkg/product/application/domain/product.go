package product

import (
	"errors"
	"time"
)

var (
	ErrNotOwner       = errors.New("product: caller does not own this product")
	ErrInvalidListing = errors.New("product: invalid listing")
)

// Category enumerates the marketplace's listing categories.
type Category string

const (
	CategoryFurniture   Category = "furniture"
	CategoryElectronics Category = "electronics"
	CategoryHome        Category = "home"
	CategoryBooks       Category = "books"
)

// Categories lists every valid category, in display order.
var Categories = []Category{CategoryFurniture, CategoryElectronics, CategoryHome, CategoryBooks}

func (c Category) Valid() bool {
	switch c {
	case CategoryFurniture, CategoryElectronics, CategoryHome, CategoryBooks:
		return true
	}
	return false
}

// Status is the listing lifecycle. Deleted listings stay in storage so that
// conversations referencing them keep their product context.
type Status string

const (
	StatusActive  Status = "active"
	StatusSold    Status = "sold"
	StatusDeleted Status = "deleted"
)

// Product is one listing.
type Product struct {
	ID          string    `db:"id" json:"id"`
	SellerID    string    `db:"seller_id" json:"seller_id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Price       float64   `db:"price" json:"price"`
	Category    Category  `db:"category" json:"category"`
	Location    string    `db:"location" json:"location"`
	Status      Status    `db:"status" json:"status"`
	Images      []string  `db:"images" json:"images"`
	Featured    bool      `db:"featured" json:"featured"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Validate checks the fields a seller controls.
func (p Product) Validate() error {
	if p.Title == "" || p.Price < 0 || !p.Category.Valid() {
		return ErrInvalidListing
	}
	return nil
}

// Filter narrows a listing search. Zero values mean "any".
type Filter struct {
	Keyword  string
	Category Category
	Location string
	Limit    int
	Offset   int
}

// Favorite marks a product saved by a user.
type Favorite struct {
	UserID    string    `db:"user_id" json:"user_id"`
	ProductID string    `db:"product_id" json:"product_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
