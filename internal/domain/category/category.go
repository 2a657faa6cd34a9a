package category

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/freshcart/storefront/internal/domain/product"
)

// ErrNotFound is returned when a requested category does not exist.
var ErrNotFound = errors.New("category not found")

// Category is a navigation grouping for products.
type Category struct {
	ID    string
	Name  string
	Icon  string
	Image string
}

// WithProducts pairs a category with a capped selection of its products,
// used by the categories overview page.
type WithProducts struct {
	Category
	Products []product.Product
}

// Repository defines read operations for categories.
type Repository interface {
	List(ctx context.Context) ([]Category, error)
	GetByID(ctx context.Context, id string) (*Category, error)
}

// Service layers product lookups on top of the category repository.
type Service struct {
	categories Repository
	products   product.Repository
}

// NewService creates a category Service.
func NewService(categories Repository, products product.Repository) *Service {
	return &Service{categories: categories, products: products}
}

// List returns all categories.
func (s *Service) List(ctx context.Context) ([]Category, error) {
	return s.categories.List(ctx)
}

// GetByID returns a single category.
func (s *Service) GetByID(ctx context.Context, id string) (*Category, error) {
	return s.categories.GetByID(ctx, id)
}

// WithTopProducts returns every category together with up to limit of its
// products. A failed product lookup for one category degrades to an empty
// product list rather than failing the whole listing.
func (s *Service) WithTopProducts(ctx context.Context, limit int) ([]WithProducts, error) {
	cats, err := s.categories.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list categories")
	}

	out := make([]WithProducts, 0, len(cats))
	for _, c := range cats {
		products, err := s.products.GetByCategory(ctx, c.Name)
		if err != nil {
			products = nil
		}
		if len(products) > limit {
			products = products[:limit]
		}
		out = append(out, WithProducts{Category: c, Products: products})
	}
	return out, nil
}
