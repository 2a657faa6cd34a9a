// Package pricing implements tiered quantity pricing: given a product's
// price tiers, it resolves the tier that applies to a requested quantity
// and derives line totals, savings, and discount badge metadata.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Tier is a single quantity price break: buying at least MinQuantity units
// prices every unit at Price.
type Tier struct {
	MinQuantity        int             `json:"minQuantity"`
	Price              decimal.Decimal `json:"price"`
	DiscountPercentage int             `json:"discountPercentage"`
}

// TierDataError indicates a product's tier list is malformed. Tier data that
// cannot be defaulted safely fails fast instead of silently pricing wrong.
type TierDataError struct {
	Index  int
	Reason string
}

func (e *TierDataError) Error() string {
	return fmt.Sprintf("invalid price tier at index %d: %s", e.Index, e.Reason)
}

// zeroTier is the fallback for products without any price tiers.
var zeroTier = Tier{MinQuantity: 1, Price: decimal.Zero, DiscountPercentage: 0}

var hundred = decimal.NewFromInt(100)

// Base returns the reference tier: the one with MinQuantity == 1. If no such
// tier exists it returns the first tier, and for an empty list the zero tier.
func Base(tiers []Tier) Tier {
	for _, t := range tiers {
		if t.MinQuantity == 1 {
			return t
		}
	}
	if len(tiers) > 0 {
		return tiers[0]
	}
	return zeroTier
}

// HasDiscount reports whether any tier carries a non-zero discount. Used for
// the "up to N% off" badge, never for pricing.
func HasDiscount(tiers []Tier) bool {
	for _, t := range tiers {
		if t.DiscountPercentage > 0 {
			return true
		}
	}
	return false
}

// MaxDiscount returns the largest discount percentage across all tiers,
// or 0 for an empty list.
func MaxDiscount(tiers []Tier) int {
	maxPct := 0
	for _, t := range tiers {
		if t.DiscountPercentage > maxPct {
			maxPct = t.DiscountPercentage
		}
	}
	return maxPct
}

// Validate checks the invariants required of an admin-supplied tier list:
// a non-empty list sorted by strictly increasing MinQuantity, exactly one
// base tier (MinQuantity == 1) with a positive price, no tier priced above
// the base price, and discount percentages within 0..100.
func Validate(tiers []Tier) error {
	if len(tiers) == 0 {
		return &TierDataError{Index: 0, Reason: "at least one price tier is required"}
	}

	var basePrice decimal.Decimal
	baseSeen := false
	for i, t := range tiers {
		if t.MinQuantity < 1 {
			return &TierDataError{Index: i, Reason: "minQuantity must be a positive integer"}
		}
		if t.Price.IsNegative() {
			return &TierDataError{Index: i, Reason: "price must not be negative"}
		}
		if t.DiscountPercentage < 0 || t.DiscountPercentage > 100 {
			return &TierDataError{Index: i, Reason: "discountPercentage must be between 0 and 100"}
		}
		if i > 0 && tiers[i].MinQuantity <= tiers[i-1].MinQuantity {
			return &TierDataError{Index: i, Reason: "minQuantity must be strictly increasing"}
		}
		if t.MinQuantity == 1 {
			if baseSeen {
				return &TierDataError{Index: i, Reason: "duplicate base tier (minQuantity == 1)"}
			}
			baseSeen = true
			basePrice = t.Price
		}
	}

	if !baseSeen {
		return &TierDataError{Index: 0, Reason: "a base tier with minQuantity == 1 is required"}
	}
	if !basePrice.IsPositive() {
		return &TierDataError{Index: 0, Reason: "base tier price must be greater than zero"}
	}

	for i, t := range tiers {
		if t.Price.GreaterThan(basePrice) {
			return &TierDataError{Index: i, Reason: "tier price must not exceed the base price"}
		}
	}

	return nil
}

// DeriveDiscounts returns a copy of tiers with every DiscountPercentage
// recomputed from the price delta against the base tier, rounded to the
// nearest whole percent and clamped at zero. The stored percentage is always
// derived at write time, so reads can treat it as authoritative.
func DeriveDiscounts(tiers []Tier) []Tier {
	base := Base(tiers)
	out := make([]Tier, len(tiers))
	copy(out, tiers)

	if !base.Price.IsPositive() {
		for i := range out {
			out[i].DiscountPercentage = 0
		}
		return out
	}

	for i, t := range out {
		pct := base.Price.Sub(t.Price).Div(base.Price).Mul(hundred).Round(0).IntPart()
		if pct < 0 {
			pct = 0
		}
		out[i].DiscountPercentage = int(pct)
	}
	return out
}
