package recordstore

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/freshcart/storefront/internal/domain/pricing"
	"github.com/freshcart/storefront/internal/domain/product"
	"github.com/freshcart/storefront/internal/recordstore"
)

var (
	_ product.Repository = (*ProductRepository)(nil)
	_ product.Writer     = (*ProductRepository)(nil)
)

// ProductRepository serves catalog reads and admin writes from the product
// table of the record store.
type ProductRepository struct {
	client *recordstore.Client
}

func NewProductRepository(client *recordstore.Client) *ProductRepository {
	return &ProductRepository{client: client}
}

func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	records, err := r.client.FetchRecords(ctx, tableProduct, recordstore.Query{
		Fields:  productFields,
		OrderBy: []recordstore.Order{{Field: "Name"}},
	})
	if err != nil {
		return nil, errors.Wrap(err, "fetch products")
	}
	return mapProducts(records)
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (product.Product, error) {
	rec, err := r.client.GetRecordByID(ctx, tableProduct, id)
	if err != nil {
		if errors.Is(err, recordstore.ErrNotFound) {
			return product.Product{}, product.ErrNotFound
		}
		return product.Product{}, errors.Wrap(err, "get product")
	}
	return mapProduct(rec)
}

func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) ([]product.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	records, err := r.client.FetchRecords(ctx, tableProduct, recordstore.Query{
		Fields: productFields,
		Where: []recordstore.Condition{
			{Field: "Id", Operator: recordstore.OpExactMatch, Values: ids},
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "fetch products by ids")
	}
	return mapProducts(records)
}

func (r *ProductRepository) GetByCategory(ctx context.Context, categoryName string) ([]product.Product, error) {
	records, err := r.client.FetchRecords(ctx, tableProduct, recordstore.Query{
		Fields: productFields,
		Where: []recordstore.Condition{
			{Field: "category", Operator: recordstore.OpEqualTo, Values: []string{categoryName}},
		},
		OrderBy: []recordstore.Order{{Field: "Name"}},
	})
	if err != nil {
		return nil, errors.Wrap(err, "fetch products by category")
	}
	return mapProducts(records)
}

// Search matches the query against name, description and category. An empty
// category matches everything.
func (r *ProductRepository) Search(ctx context.Context, query, categoryName string) ([]product.Product, error) {
	q := recordstore.Query{
		Fields: productFields,
		AnyOf: []recordstore.Condition{
			{Field: "Name", Operator: recordstore.OpContains, Values: []string{query}},
			{Field: "description", Operator: recordstore.OpContains, Values: []string{query}},
			{Field: "category", Operator: recordstore.OpContains, Values: []string{query}},
		},
	}
	if categoryName != "" {
		q.Where = []recordstore.Condition{
			{Field: "category", Operator: recordstore.OpEqualTo, Values: []string{categoryName}},
		}
	}
	records, err := r.client.FetchRecords(ctx, tableProduct, q)
	if err != nil {
		return nil, errors.Wrap(err, "search products")
	}
	return mapProducts(records)
}

func (r *ProductRepository) Featured(ctx context.Context) ([]product.Product, error) {
	records, err := r.client.FetchRecords(ctx, tableProduct, recordstore.Query{
		Fields: productFields,
		Where: []recordstore.Condition{
			{Field: "featured", Operator: recordstore.OpEqualTo, Values: []string{"true"}},
		},
		OrderBy: []recordstore.Order{{Field: "featuredOrder"}},
	})
	if err != nil {
		return nil, errors.Wrap(err, "fetch featured products")
	}
	return mapProducts(records)
}

func (r *ProductRepository) Trending(ctx context.Context) ([]product.Product, error) {
	records, err := r.client.FetchRecords(ctx, tableProduct, recordstore.Query{
		Fields: productFields,
		Where: []recordstore.Condition{
			{Field: "trending", Operator: recordstore.OpEqualTo, Values: []string{"true"}},
		},
		OrderBy: []recordstore.Order{{Field: "Name"}},
	})
	if err != nil {
		return nil, errors.Wrap(err, "fetch trending products")
	}
	return mapProducts(records)
}

// Recommended returns other products from the same category as the given
// product, excluding the product itself.
func (r *ProductRepository) Recommended(ctx context.Context, id string, limit int) ([]product.Product, error) {
	p, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	records, err := r.client.FetchRecords(ctx, tableProduct, recordstore.Query{
		Fields: productFields,
		Where: []recordstore.Condition{
			{Field: "category", Operator: recordstore.OpEqualTo, Values: []string{p.Category}},
			{Field: "Id", Operator: recordstore.OpNotEqualTo, Values: []string{id}},
		},
		Limit: limit,
	})
	if err != nil {
		return nil, errors.Wrap(err, "fetch recommended products")
	}
	return mapProducts(records)
}

func (r *ProductRepository) FrequentlyBoughtWith(ctx context.Context, id string, limit int) ([]product.Product, error) {
	p, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ids := p.FrequentlyBoughtWith
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return r.GetByIDs(ctx, ids)
}

// Create validates the tier schedule, derives discount percentages from the
// base tier and persists the product. The stored record is read back so the
// caller sees the server-assigned id.
func (r *ProductRepository) Create(ctx context.Context, p product.Product) (product.Product, error) {
	if err := pricing.Validate(p.PriceTiers); err != nil {
		return product.Product{}, err
	}
	p.PriceTiers = pricing.DeriveDiscounts(p.PriceTiers)

	rec, err := r.client.CreateRecord(ctx, tableProduct, productFieldValues(p))
	if err != nil {
		return product.Product{}, errors.Wrap(err, "create product")
	}
	return mapProduct(rec)
}

func (r *ProductRepository) Update(ctx context.Context, p product.Product) (product.Product, error) {
	if err := pricing.Validate(p.PriceTiers); err != nil {
		return product.Product{}, err
	}
	p.PriceTiers = pricing.DeriveDiscounts(p.PriceTiers)

	rec, err := r.client.UpdateRecord(ctx, tableProduct, p.ID, productFieldValues(p))
	if err != nil {
		if errors.Is(err, recordstore.ErrNotFound) {
			return product.Product{}, product.ErrNotFound
		}
		return product.Product{}, errors.Wrap(err, "update product")
	}
	return mapProduct(rec)
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.DeleteRecord(ctx, tableProduct, id); err != nil {
		if errors.Is(err, recordstore.ErrNotFound) {
			return product.ErrNotFound
		}
		return errors.Wrap(err, "delete product")
	}
	return nil
}

// SetFeaturedOrder assigns ascending display positions to the given products,
// starting at 1.
func (r *ProductRepository) SetFeaturedOrder(ctx context.Context, ids []string) error {
	for i, id := range ids {
		_, err := r.client.UpdateRecord(ctx, tableProduct, id, map[string]any{
			"featured":      true,
			"featuredOrder": i + 1,
		})
		if err != nil {
			if errors.Is(err, recordstore.ErrNotFound) {
				return product.ErrNotFound
			}
			return errors.Wrapf(err, "set featured order for %s", id)
		}
	}
	return nil
}

// DecrementStock lowers the stock count by qty, flooring at zero, and
// recomputes availability. Products with unknown stock are left untouched.
func (r *ProductRepository) DecrementStock(ctx context.Context, id string, qty int) error {
	p, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p.StockCount < 0 {
		return nil
	}

	remaining := p.StockCount - qty
	if remaining < 0 {
		remaining = 0
	}
	_, err = r.client.UpdateRecord(ctx, tableProduct, id, map[string]any{
		"stockCount": remaining,
		"inStock":    remaining > 0,
	})
	if err != nil {
		return errors.Wrap(err, "decrement stock")
	}
	return nil
}
