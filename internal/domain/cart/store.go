package cart

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/freshcart/storefront/internal/domain/pricing"
	"github.com/freshcart/storefront/internal/domain/product"
)

// Store is the authoritative in-memory cart, persisted through a Persister
// after every mutation. One Store is constructed at application start and
// shared by every consumer. The original UI mutated the cart from a single
// event loop; HTTP handlers are concurrent, so mutations are serialized
// under a mutex instead.
type Store struct {
	persister Persister
	notifier  Notifier

	mu    sync.Mutex
	items []LineItem
}

// NewStore creates a Store and restores any persisted cart. Corrupted or
// unreadable persisted data is discarded and logged: the store always comes
// up, at worst empty.
func NewStore(ctx context.Context, persister Persister, notifier Notifier) *Store {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	s := &Store{persister: persister, notifier: notifier}

	if persister != nil {
		items, err := persister.Load(ctx)
		if err != nil {
			zctx.From(ctx).Warn("Discarding persisted cart", zap.Error(err))
		} else {
			s.items = items
		}
	}
	return s
}

// Add puts quantity units of p into the cart. If the product already has a
// line item the quantities merge into one line, and the tier is resolved
// against the combined quantity. The product snapshot is refreshed on merge.
func (s *Store) Add(ctx context.Context, p product.Product, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	if i := s.indexOf(p.ID); i >= 0 {
		combined := s.items[i].Quantity + quantity
		s.items[i] = LineItem{
			ProductID:    p.ID,
			Quantity:     combined,
			SelectedTier: pricing.Resolve(p.PriceTiers, combined),
			Product:      p,
		}
	} else {
		s.items = append(s.items, LineItem{
			ProductID:    p.ID,
			Quantity:     quantity,
			SelectedTier: pricing.Resolve(p.PriceTiers, quantity),
			Product:      p,
		})
	}
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.notifier.Success(ctx, fmt.Sprintf("Added %s to cart!", p.Name))
	return nil
}

// UpdateQuantity sets the quantity of an existing line item, re-resolving
// its tier from the snapshot's tier list. A quantity of zero or less behaves
// exactly like Remove. An unknown productID is a no-op, not an error.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) {
	if quantity <= 0 {
		s.Remove(ctx, productID)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(productID)
	if i < 0 {
		return
	}
	s.items[i].Quantity = quantity
	s.items[i].SelectedTier = pricing.Resolve(s.items[i].Product.PriceTiers, quantity)
	s.persistLocked(ctx)
}

// Remove deletes the line item for productID if present.
func (s *Store) Remove(ctx context.Context, productID string) {
	s.mu.Lock()
	i := s.indexOf(productID)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.items = slices.Delete(s.items, i, i+1)
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.notifier.Info(ctx, "Item removed from cart")
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.items = nil
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.notifier.Info(ctx, "Cart cleared")
}

// Items returns the line items in insertion order. The slice is a copy.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

// Total returns the sum of selectedTier.price * quantity over all items.
// Stored tiers are used as-is; they were resolved at the last mutation.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.SelectedTier.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// ItemCount returns the sum of quantities, used for the cart badge.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, item := range s.items {
		count += item.Quantity
	}
	return count
}

// TotalSavings returns how much the cart saves versus base-tier pricing:
// the sum of (basePrice - selectedTier.price) * quantity over all items.
func (s *Store) TotalSavings() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	savings := decimal.Zero
	for _, item := range s.items {
		base := pricing.Base(item.Product.PriceTiers)
		diff := base.Price.Sub(item.SelectedTier.Price)
		if diff.IsPositive() {
			savings = savings.Add(diff.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
	}
	return savings
}

// indexOf returns the position of productID, or -1. Caller holds s.mu.
func (s *Store) indexOf(productID string) int {
	return slices.IndexFunc(s.items, func(item LineItem) bool {
		return item.ProductID == productID
	})
}

// persistLocked writes the current items through the Persister. Durability
// is best-effort: a failed write is logged and the in-memory state stands.
// Caller holds s.mu.
func (s *Store) persistLocked(ctx context.Context) {
	if s.persister == nil {
		return
	}
	if err := s.persister.Save(ctx, slices.Clone(s.items)); err != nil {
		zctx.From(ctx).Error("Persist cart", zap.Error(err))
	}
}
