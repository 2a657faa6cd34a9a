// Package cart owns the process-wide shopping cart: an insertion-ordered set
// of line items keyed by product, persisted after every mutation. All reads
// and writes go through the Store; nothing else mutates line items.
package cart

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/freshcart/storefront/internal/domain/pricing"
	"github.com/freshcart/storefront/internal/domain/product"
)

// ErrInvalidQuantity is returned when Add is called with a non-positive
// quantity. Removal by zero is expressed through UpdateQuantity instead.
var ErrInvalidQuantity = errors.New("quantity must be greater than 0")

// LineItem is one product's entry in the cart. SelectedTier is recomputed by
// the Store on every quantity change and is never stale. Product is a
// snapshot taken at the time of the last update, kept for display.
type LineItem struct {
	ProductID    string          `json:"productId"`
	Quantity     int             `json:"quantity"`
	SelectedTier pricing.Tier    `json:"selectedTier"`
	Product      product.Product `json:"product"`
}

// Persister stores the cart between process restarts. Implementations are
// best-effort: Save failures are logged by the Store and never undo the
// in-memory mutation, and a Load that cannot parse the stored data must
// return an empty cart rather than an error.
type Persister interface {
	Load(ctx context.Context) ([]LineItem, error)
	Save(ctx context.Context, items []LineItem) error
}

// Notifier receives a short user-facing message for every mutating cart
// operation. It carries no data contract beyond "an event occurred".
type Notifier interface {
	Success(ctx context.Context, message string)
	Info(ctx context.Context, message string)
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) Success(context.Context, string) {}
func (NopNotifier) Info(context.Context, string)    {}
