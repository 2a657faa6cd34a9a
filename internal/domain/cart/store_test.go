package cart

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshcart/storefront/internal/domain/pricing"
	"github.com/freshcart/storefront/internal/domain/product"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

// --- Mock implementations ---

type mockPersister struct {
	loaded  []LineItem
	loadErr error
	saved   [][]LineItem
	saveErr error
	saveCnt int
	loadCnt int
}

func (m *mockPersister) Load(context.Context) ([]LineItem, error) {
	m.loadCnt++
	return m.loaded, m.loadErr
}

func (m *mockPersister) Save(_ context.Context, items []LineItem) error {
	m.saveCnt++
	m.saved = append(m.saved, items)
	return m.saveErr
}

type mockNotifier struct {
	successes []string
	infos     []string
}

func (m *mockNotifier) Success(_ context.Context, msg string) { m.successes = append(m.successes, msg) }
func (m *mockNotifier) Info(_ context.Context, msg string)    { m.infos = append(m.infos, msg) }

// --- Helpers ---

func newTestProduct(id, name string, tiers ...pricing.Tier) product.Product {
	if len(tiers) == 0 {
		tiers = []pricing.Tier{
			{MinQuantity: 1, Price: d("100"), DiscountPercentage: 0},
			{MinQuantity: 5, Price: d("90"), DiscountPercentage: 10},
			{MinQuantity: 10, Price: d("80"), DiscountPercentage: 20},
		}
	}
	return product.Product{
		ID:         id,
		Name:       name,
		Category:   "test",
		InStock:    true,
		StockCount: 50,
		PriceTiers: tiers,
	}
}

func newStore(t *testing.T) (*Store, *mockPersister, *mockNotifier) {
	t.Helper()
	p := &mockPersister{}
	n := &mockNotifier{}
	return NewStore(context.Background(), p, n), p, n
}

// --- Tests ---

func TestStore_EmptyCart(t *testing.T) {
	s, _, _ := newStore(t)

	assert.True(t, s.Total().IsZero())
	assert.Equal(t, 0, s.ItemCount())
	assert.Empty(t, s.Items())
}

func TestStore_AddResolvesTier(t *testing.T) {
	s, _, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, newTestProduct("p1", "Apples"), 3))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].SelectedTier.MinQuantity)
	assert.True(t, s.Total().Equal(d("300")))
	assert.Equal(t, 3, s.ItemCount())
}

// Concrete scenario from the pricing contract: 3 then 7 more of the same
// product merge into one line at the 10+ tier, total 800.
func TestStore_AddMergesAndReresolvesTier(t *testing.T) {
	s, _, _ := newStore(t)
	ctx := context.Background()
	p := newTestProduct("p1", "Apples")

	require.NoError(t, s.Add(ctx, p, 3))
	require.NoError(t, s.Add(ctx, p, 7))

	items := s.Items()
	require.Len(t, items, 1, "same product must never create a second line")
	assert.Equal(t, 10, items[0].Quantity)
	assert.Equal(t, 10, items[0].SelectedTier.MinQuantity)
	assert.True(t, items[0].SelectedTier.Price.Equal(d("80")))
	assert.True(t, s.Total().Equal(d("800")))
}

func TestStore_AddRejectsNonPositiveQuantity(t *testing.T) {
	s, p, _ := newStore(t)
	ctx := context.Background()

	require.ErrorIs(t, s.Add(ctx, newTestProduct("p1", "Apples"), 0), ErrInvalidQuantity)
	require.ErrorIs(t, s.Add(ctx, newTestProduct("p1", "Apples"), -2), ErrInvalidQuantity)
	assert.Empty(t, s.Items())
	assert.Zero(t, p.saveCnt, "rejected add must not persist")
}

func TestStore_UpdateQuantityReresolves(t *testing.T) {
	s, _, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, newTestProduct("p1", "Apples"), 2))
	s.UpdateQuantity(ctx, "p1", 6)

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 6, items[0].Quantity)
	assert.Equal(t, 5, items[0].SelectedTier.MinQuantity)
	assert.True(t, s.Total().Equal(d("540")))
}

func TestStore_UpdateQuantityIdempotent(t *testing.T) {
	s, _, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, newTestProduct("p1", "Apples"), 2))
	s.UpdateQuantity(ctx, "p1", 7)
	first := s.Items()
	s.UpdateQuantity(ctx, "p1", 7)
	second := s.Items()

	assert.Equal(t, first, second)
}

func TestStore_UpdateQuantityZeroOrNegativeRemoves(t *testing.T) {
	for _, qty := range []int{0, -5} {
		s, _, _ := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.Add(ctx, newTestProduct("p1", "Apples"), 3))
		s.UpdateQuantity(ctx, "p1", qty)

		assert.Empty(t, s.Items(), "quantity %d must behave as remove", qty)
		assert.True(t, s.Total().IsZero())
	}
}

func TestStore_UpdateQuantityUnknownProductIsNoop(t *testing.T) {
	s, p, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, newTestProduct("p1", "Apples"), 3))
	before := p.saveCnt

	s.UpdateQuantity(ctx, "missing", 4)

	require.Len(t, s.Items(), 1)
	assert.Equal(t, 3, s.Items()[0].Quantity)
	assert.Equal(t, before, p.saveCnt)
}

func TestStore_RemoveUnknownProductIsNoop(t *testing.T) {
	s, _, n := newStore(t)

	s.Remove(context.Background(), "missing")

	assert.Empty(t, s.Items())
	assert.Empty(t, n.infos, "no notification for a no-op remove")
}

func TestStore_Clear(t *testing.T) {
	s, _, n := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, newTestProduct("p1", "Apples"), 3))
	require.NoError(t, s.Add(ctx, newTestProduct("p2", "Bananas"), 1))
	s.Clear(ctx)

	assert.Empty(t, s.Items())
	assert.True(t, s.Total().IsZero())
	assert.Equal(t, 0, s.ItemCount())
	assert.Contains(t, n.infos, "Cart cleared")
}

// Cart total consistency: after an arbitrary mutation sequence, Total equals
// the sum over current items of selectedTier.price * quantity.
func TestStore_TotalConsistency(t *testing.T) {
	s, _, _ := newStore(t)
	ctx := context.Background()

	apples := newTestProduct("p1", "Apples")
	bananas := newTestProduct("p2", "Bananas", pricing.Tier{MinQuantity: 1, Price: d("2.50")})

	require.NoError(t, s.Add(ctx, apples, 4))
	require.NoError(t, s.Add(ctx, bananas, 12))
	s.UpdateQuantity(ctx, "p1", 11)
	require.NoError(t, s.Add(ctx, bananas, 1))
	s.Remove(ctx, "does-not-exist")
	s.UpdateQuantity(ctx, "p2", 3)

	want := decimal.Zero
	count := 0
	for _, item := range s.Items() {
		want = want.Add(item.SelectedTier.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		count += item.Quantity
	}
	assert.True(t, s.Total().Equal(want))
	assert.Equal(t, count, s.ItemCount())
}

func TestStore_TotalSavings(t *testing.T) {
	s, _, _ := newStore(t)
	ctx := context.Background()

	// 11 units at the 10+ tier: (100-80)*11 = 220 saved.
	require.NoError(t, s.Add(ctx, newTestProduct("p1", "Apples"), 11))

	assert.True(t, s.TotalSavings().Equal(d("220")))
}

func TestStore_InsertionOrderPreserved(t *testing.T) {
	s, _, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, newTestProduct("p2", "Bananas"), 1))
	require.NoError(t, s.Add(ctx, newTestProduct("p1", "Apples"), 1))
	require.NoError(t, s.Add(ctx, newTestProduct("p3", "Cherries"), 1))
	// Merging must not move the line.
	require.NoError(t, s.Add(ctx, newTestProduct("p1", "Apples"), 1))

	ids := make([]string, 0, 3)
	for _, item := range s.Items() {
		ids = append(ids, item.ProductID)
	}
	assert.Equal(t, []string{"p2", "p1", "p3"}, ids)
}

func TestStore_PersistsAfterEveryMutation(t *testing.T) {
	s, p, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, newTestProduct("p1", "Apples"), 3))
	s.UpdateQuantity(ctx, "p1", 5)
	s.Remove(ctx, "p1")
	s.Clear(ctx)

	assert.Equal(t, 4, p.saveCnt)
	assert.Empty(t, p.saved[len(p.saved)-1])
}

func TestStore_SaveFailureKeepsInMemoryState(t *testing.T) {
	p := &mockPersister{saveErr: errors.New("disk full")}
	s := NewStore(context.Background(), p, nil)

	require.NoError(t, s.Add(context.Background(), newTestProduct("p1", "Apples"), 3))

	require.Len(t, s.Items(), 1, "failed persistence must not roll back the mutation")
	assert.True(t, s.Total().Equal(d("300")))
}

func TestStore_CorruptPersistedDataStartsEmpty(t *testing.T) {
	p := &mockPersister{loadErr: errors.New("unexpected end of JSON input")}

	s := NewStore(context.Background(), p, nil)

	assert.Empty(t, s.Items())
	assert.True(t, s.Total().IsZero())
}

func TestStore_RestoresPersistedItems(t *testing.T) {
	saved := []LineItem{{
		ProductID:    "p1",
		Quantity:     5,
		SelectedTier: pricing.Tier{MinQuantity: 5, Price: d("90"), DiscountPercentage: 10},
		Product:      newTestProduct("p1", "Apples"),
	}}
	s := NewStore(context.Background(), &mockPersister{loaded: saved}, nil)

	require.Len(t, s.Items(), 1)
	assert.True(t, s.Total().Equal(d("450")))
	assert.Equal(t, 5, s.ItemCount())
}

func TestStore_Notifications(t *testing.T) {
	s, _, n := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, newTestProduct("p1", "Apples"), 1))
	s.Remove(ctx, "p1")

	require.Len(t, n.successes, 1)
	assert.Equal(t, "Added Apples to cart!", n.successes[0])
	assert.Contains(t, n.infos, "Item removed from cart")
}
