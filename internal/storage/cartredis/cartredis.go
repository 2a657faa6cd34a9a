// Package cartredis persists cart contents in Redis, for deployments where
// the storefront runs more than one replica behind a balancer.
package cartredis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"

	"github.com/freshcart/storefront/internal/domain/cart"
)

const cartKey = "freshcart:cart"

var _ cart.Persister = (*Persister)(nil)

type Persister struct {
	client *redis.Client
	ttl    time.Duration
}

// New wraps an existing Redis client. A zero ttl keeps carts forever.
func New(client *redis.Client, ttl time.Duration) *Persister {
	return &Persister{client: client, ttl: ttl}
}

func (p *Persister) Load(ctx context.Context) ([]cart.LineItem, error) {
	data, err := p.client.Get(ctx, cartKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "load cart")
	}

	var items []cart.LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, errors.Wrap(err, "decode cart")
	}
	return items, nil
}

func (p *Persister) Save(ctx context.Context, items []cart.LineItem) error {
	if items == nil {
		items = []cart.LineItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return errors.Wrap(err, "encode cart")
	}
	if err := p.client.Set(ctx, cartKey, data, p.ttl).Err(); err != nil {
		return errors.Wrap(err, "save cart")
	}
	return nil
}
