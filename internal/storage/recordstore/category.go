package recordstore

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/freshcart/storefront/internal/domain/category"
	"github.com/freshcart/storefront/internal/recordstore"
)

var _ category.Repository = (*CategoryRepository)(nil)

type CategoryRepository struct {
	client *recordstore.Client
}

func NewCategoryRepository(client *recordstore.Client) *CategoryRepository {
	return &CategoryRepository{client: client}
}

func (r *CategoryRepository) List(ctx context.Context) ([]category.Category, error) {
	records, err := r.client.FetchRecords(ctx, tableCategory, recordstore.Query{
		Fields:  categoryFields,
		OrderBy: []recordstore.Order{{Field: "Name"}},
	})
	if err != nil {
		return nil, errors.Wrap(err, "fetch categories")
	}
	out := make([]category.Category, len(records))
	for i, rec := range records {
		out[i] = mapCategory(rec)
	}
	return out, nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*category.Category, error) {
	rec, err := r.client.GetRecordByID(ctx, tableCategory, id)
	if err != nil {
		if errors.Is(err, recordstore.ErrNotFound) {
			return nil, category.ErrNotFound
		}
		return nil, errors.Wrap(err, "get category")
	}
	c := mapCategory(rec)
	return &c, nil
}
