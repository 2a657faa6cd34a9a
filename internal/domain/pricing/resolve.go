package pricing

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Quote is the priced outcome of resolving a tier for a quantity. All fields
// are derived; nothing here is stored.
type Quote struct {
	Tier           Tier
	Quantity       int
	BasePrice      decimal.Decimal
	LineTotal      decimal.Decimal
	SavingsPerUnit decimal.Decimal
	LineSavings    decimal.Decimal
}

// Incentive describes the next quantity break above the current quantity,
// used for "add N more to save" upsell messaging.
type Incentive struct {
	NextTier        Tier
	AdditionalUnits int
	PerUnitSavings  decimal.Decimal
}

// Resolve picks the tier that applies to the given quantity: the tier with
// the largest MinQuantity not exceeding quantity. The input order of tiers
// does not matter. When no tier qualifies (or quantity < 1) it falls back to
// the base tier, and an empty list resolves to the zero tier.
func Resolve(tiers []Tier, quantity int) Tier {
	if len(tiers) == 0 {
		return zeroTier
	}

	sorted := make([]Tier, len(tiers))
	copy(sorted, tiers)
	slices.SortStableFunc(sorted, func(a, b Tier) int {
		return b.MinQuantity - a.MinQuantity
	})

	for _, t := range sorted {
		if quantity >= t.MinQuantity {
			return t
		}
	}

	return Base(tiers)
}

// QuoteFor resolves the tier for quantity and derives the line total and
// savings against the base tier.
func QuoteFor(tiers []Tier, quantity int) Quote {
	tier := Resolve(tiers, quantity)
	base := Base(tiers)
	qty := decimal.NewFromInt(int64(quantity))

	perUnit := base.Price.Sub(tier.Price)
	if perUnit.IsNegative() {
		perUnit = decimal.Zero
	}

	return Quote{
		Tier:           tier,
		Quantity:       quantity,
		BasePrice:      base.Price,
		LineTotal:      tier.Price.Mul(qty),
		SavingsPerUnit: perUnit,
		LineSavings:    perUnit.Mul(qty),
	}
}

// NextIncentive finds the tier with the smallest MinQuantity strictly greater
// than quantity. It reports false when the quantity already sits at or above
// every break point.
func NextIncentive(tiers []Tier, quantity int) (Incentive, bool) {
	var next *Tier
	for i := range tiers {
		t := tiers[i]
		if t.MinQuantity <= quantity {
			continue
		}
		if next == nil || t.MinQuantity < next.MinQuantity {
			next = &tiers[i]
		}
	}
	if next == nil {
		return Incentive{}, false
	}

	current := Resolve(tiers, quantity)
	savings := current.Price.Sub(next.Price)
	if savings.IsNegative() {
		savings = decimal.Zero
	}

	return Incentive{
		NextTier:        *next,
		AdditionalUnits: next.MinQuantity - quantity,
		PerUnitSavings:  savings,
	}, true
}
