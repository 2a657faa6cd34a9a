package recordstore

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/freshcart/storefront/internal/domain/deal"
	"github.com/freshcart/storefront/internal/recordstore"
)

var _ deal.Repository = (*DealRepository)(nil)

type DealRepository struct {
	client *recordstore.Client
}

func NewDealRepository(client *recordstore.Client) *DealRepository {
	return &DealRepository{client: client}
}

func (r *DealRepository) List(ctx context.Context) ([]deal.Deal, error) {
	records, err := r.client.FetchRecords(ctx, tableDeal, recordstore.Query{
		Fields:  dealFields,
		OrderBy: []recordstore.Order{{Field: "position"}},
	})
	if err != nil {
		return nil, errors.Wrap(err, "fetch deals")
	}
	out := make([]deal.Deal, len(records))
	for i, rec := range records {
		out[i] = mapDeal(rec)
	}
	return out, nil
}

func (r *DealRepository) GetByID(ctx context.Context, id string) (*deal.Deal, error) {
	rec, err := r.client.GetRecordByID(ctx, tableDeal, id)
	if err != nil {
		if errors.Is(err, recordstore.ErrNotFound) {
			return nil, deal.ErrNotFound
		}
		return nil, errors.Wrap(err, "get deal")
	}
	d := mapDeal(rec)
	return &d, nil
}

// Active returns deals that have not expired at the given instant. Expiry is
// filtered server-side so stale deals never cross the wire.
func (r *DealRepository) Active(ctx context.Context, now time.Time) ([]deal.Deal, error) {
	records, err := r.client.FetchRecords(ctx, tableDeal, recordstore.Query{
		Fields: dealFields,
		Where: []recordstore.Condition{
			{Field: "expiresAt", Operator: recordstore.OpGreaterThan, Values: []string{now.UTC().Format(time.RFC3339)}},
		},
		OrderBy: []recordstore.Order{{Field: "position"}},
	})
	if err != nil {
		return nil, errors.Wrap(err, "fetch active deals")
	}
	out := make([]deal.Deal, len(records))
	for i, rec := range records {
		out[i] = mapDeal(rec)
	}
	return out, nil
}
