package product

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/freshcart/storefront/internal/domain/pricing"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// StockUnknown marks a product whose stock count was absent in the record
// store. Unknown stock is treated as unlimited for ordering purposes.
const StockUnknown = -1

// Product is a catalog item as consumed by pricing and the cart. Everything
// except PriceTiers is display data the core never interprets.
type Product struct {
	ID                   string
	Name                 string
	Category             string
	Images               []string
	Description          string
	InStock              bool
	StockCount           int
	PriceTiers           []pricing.Tier
	Featured             bool
	FeaturedOrder        int
	Trending             bool
	DealID               string
	DietaryTags          []string
	FrequentlyBoughtWith []string
}

// BaseTier returns the reference tier (MinQuantity == 1) for display prices.
func (p Product) BaseTier() pricing.Tier {
	return pricing.Base(p.PriceTiers)
}

// Repository defines read operations for the product catalog.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
	GetByCategory(ctx context.Context, category string) ([]Product, error)
	Search(ctx context.Context, query, category string) ([]Product, error)
	Featured(ctx context.Context) ([]Product, error)
	Trending(ctx context.Context) ([]Product, error)
	Recommended(ctx context.Context, id string, limit int) ([]Product, error)
	FrequentlyBoughtWith(ctx context.Context, id string, limit int) ([]Product, error)
}

// Writer defines the admin-side mutations of the catalog.
type Writer interface {
	Create(ctx context.Context, p Product) (Product, error)
	Update(ctx context.Context, p Product) (Product, error)
	Delete(ctx context.Context, id string) error
	SetFeaturedOrder(ctx context.Context, ids []string) error
	DecrementStock(ctx context.Context, id string, quantity int) error
}
