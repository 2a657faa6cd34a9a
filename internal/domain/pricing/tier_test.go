package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBase(t *testing.T) {
	assert.Equal(t, 1, Base(bulkTiers()).MinQuantity)

	// No MinQuantity==1: first tier is the reference.
	noBase := []Tier{
		{MinQuantity: 5, Price: d("90")},
		{MinQuantity: 10, Price: d("80")},
	}
	assert.Equal(t, 5, Base(noBase).MinQuantity)

	// Empty list: zero tier.
	got := Base(nil)
	assert.Equal(t, 1, got.MinQuantity)
	assert.True(t, got.Price.IsZero())
}

func TestBadgeDerivation(t *testing.T) {
	assert.True(t, HasDiscount(bulkTiers()))
	assert.Equal(t, 20, MaxDiscount(bulkTiers()))

	flat := []Tier{{MinQuantity: 1, Price: d("12.50")}}
	assert.False(t, HasDiscount(flat))
	assert.Equal(t, 0, MaxDiscount(flat))

	assert.False(t, HasDiscount(nil))
	assert.Equal(t, 0, MaxDiscount(nil))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		tiers      []Tier
		wantReason string
	}{
		{
			name:  "valid three tier list",
			tiers: bulkTiers(),
		},
		{
			name:       "empty list",
			tiers:      nil,
			wantReason: "at least one price tier is required",
		},
		{
			name: "zero minQuantity",
			tiers: []Tier{
				{MinQuantity: 0, Price: d("10")},
			},
			wantReason: "minQuantity must be a positive integer",
		},
		{
			name: "negative price",
			tiers: []Tier{
				{MinQuantity: 1, Price: d("-1")},
			},
			wantReason: "price must not be negative",
		},
		{
			name: "discount above 100",
			tiers: []Tier{
				{MinQuantity: 1, Price: d("10"), DiscountPercentage: 120},
			},
			wantReason: "discountPercentage must be between 0 and 100",
		},
		{
			name: "non increasing minQuantity",
			tiers: []Tier{
				{MinQuantity: 1, Price: d("10")},
				{MinQuantity: 5, Price: d("9")},
				{MinQuantity: 5, Price: d("8")},
			},
			wantReason: "minQuantity must be strictly increasing",
		},
		{
			name: "missing base tier",
			tiers: []Tier{
				{MinQuantity: 5, Price: d("9")},
			},
			wantReason: "a base tier with minQuantity == 1 is required",
		},
		{
			name: "zero base price",
			tiers: []Tier{
				{MinQuantity: 1, Price: d("0")},
			},
			wantReason: "base tier price must be greater than zero",
		},
		{
			name: "tier priced above base",
			tiers: []Tier{
				{MinQuantity: 1, Price: d("10")},
				{MinQuantity: 5, Price: d("11")},
			},
			wantReason: "tier price must not exceed the base price",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.tiers)
			if tt.wantReason == "" {
				require.NoError(t, err)
				return
			}
			var tde *TierDataError
			require.ErrorAs(t, err, &tde)
			assert.Equal(t, tt.wantReason, tde.Reason)
		})
	}
}

func TestDeriveDiscounts(t *testing.T) {
	tiers := []Tier{
		{MinQuantity: 1, Price: d("100"), DiscountPercentage: 99}, // stale input value
		{MinQuantity: 5, Price: d("90")},
		{MinQuantity: 10, Price: d("80")},
		{MinQuantity: 20, Price: d("66.67")},
	}

	got := DeriveDiscounts(tiers)

	require.Len(t, got, 4)
	assert.Equal(t, 0, got[0].DiscountPercentage)
	assert.Equal(t, 10, got[1].DiscountPercentage)
	assert.Equal(t, 20, got[2].DiscountPercentage)
	assert.Equal(t, 33, got[3].DiscountPercentage)

	// Input untouched.
	assert.Equal(t, 99, tiers[0].DiscountPercentage)
}

func TestDeriveDiscounts_ZeroBasePrice(t *testing.T) {
	tiers := []Tier{
		{MinQuantity: 1, Price: d("0"), DiscountPercentage: 50},
		{MinQuantity: 5, Price: d("0"), DiscountPercentage: 50},
	}

	for _, tier := range DeriveDiscounts(tiers) {
		assert.Equal(t, 0, tier.DiscountPercentage)
	}
}
