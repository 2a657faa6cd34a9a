package deal

import (
	"context"
	"slices"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/freshcart/storefront/internal/domain/pricing"
	"github.com/freshcart/storefront/internal/domain/product"
)

// BulkBand labels a tier by the size of its quantity break.
type BulkBand string

const (
	BandSingle BulkBand = "single"
	BandMedium BulkBand = "medium" // break at 5+ units
	BandBulk   BulkBand = "bulk"   // break at 10+ units
)

// TierHighlight annotates one price tier with its display metadata.
type TierHighlight struct {
	pricing.Tier
	Savings decimal.Decimal
	Band    BulkBand
}

// ScoredProduct is a product prepared for deal display: tier highlights,
// stock level, and a deterministic recommendation score in 0..100.
type ScoredProduct struct {
	product.Product
	TierHighlights      []TierHighlight
	StockLevel          int
	RecommendationScore int
}

// Service resolves deals together with their product sets.
type Service struct {
	deals    Repository
	products product.Repository
	now      func() time.Time
}

// NewService creates a deal Service.
func NewService(deals Repository, products product.Repository) *Service {
	return &Service{deals: deals, products: products, now: time.Now}
}

// List returns all deals enriched with their products.
func (s *Service) List(ctx context.Context) ([]Enriched, error) {
	deals, err := s.deals.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list deals")
	}
	return s.enrichAll(ctx, deals)
}

// Active returns unexpired deals ordered by position, enriched.
func (s *Service) Active(ctx context.Context) ([]Enriched, error) {
	deals, err := s.deals.Active(ctx, s.now())
	if err != nil {
		return nil, errors.Wrap(err, "list active deals")
	}
	return s.enrichAll(ctx, deals)
}

// GetByID returns a single enriched deal.
func (s *Service) GetByID(ctx context.Context, id string) (*Enriched, error) {
	d, err := s.deals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	e, err := s.enrich(ctx, *d)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Service) enrichAll(ctx context.Context, deals []Deal) ([]Enriched, error) {
	out := make([]Enriched, 0, len(deals))
	for _, d := range deals {
		e, err := s.enrich(ctx, d)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *Service) enrich(ctx context.Context, d Deal) (Enriched, error) {
	var products []product.Product
	if len(d.ProductIDs) > 0 {
		fetched, err := s.products.GetByIDs(ctx, d.ProductIDs)
		if err != nil {
			return Enriched{}, errors.Wrapf(err, "fetch products for deal %q", d.ID)
		}
		products = fetched
	}

	scored := make([]ScoredProduct, len(products))
	for i, p := range products {
		scored[i] = Score(p)
	}

	return Enriched{
		Deal:     d,
		Urgency:  d.UrgencyAt(s.now()),
		Products: scored,
	}, nil
}

// Score computes the display metadata for one product. The score is
// deterministic: featured +30, any tier discounted above 20% +25, the
// Organic dietary tag +15, in stock +20, capped at 100.
func Score(p product.Product) ScoredProduct {
	score := 0
	if p.Featured {
		score += 30
	}
	for _, t := range p.PriceTiers {
		if t.DiscountPercentage > 20 {
			score += 25
			break
		}
	}
	if slices.Contains(p.DietaryTags, "Organic") {
		score += 15
	}
	if p.InStock {
		score += 20
	}
	if score > 100 {
		score = 100
	}

	return ScoredProduct{
		Product:             p,
		TierHighlights:      highlightTiers(p.PriceTiers),
		StockLevel:          p.StockCount,
		RecommendationScore: score,
	}
}

// highlightTiers derives per-tier savings against the implied undiscounted
// price and labels the quantity band of each break.
func highlightTiers(tiers []pricing.Tier) []TierHighlight {
	out := make([]TierHighlight, len(tiers))
	for i, t := range tiers {
		out[i] = TierHighlight{
			Tier:    t,
			Savings: tierSavings(t),
			Band:    band(t.MinQuantity),
		}
	}
	return out
}

// tierSavings reconstructs the undiscounted unit price from the discount
// percentage and returns the per-unit amount saved, rounded to a whole unit.
func tierSavings(t pricing.Tier) decimal.Decimal {
	if t.DiscountPercentage <= 0 || t.DiscountPercentage >= 100 {
		return decimal.Zero
	}
	keep := decimal.NewFromInt(100 - int64(t.DiscountPercentage)).Div(decimal.NewFromInt(100))
	implied := t.Price.Div(keep)
	return implied.Round(0).Sub(t.Price)
}

func band(minQuantity int) BulkBand {
	switch {
	case minQuantity >= 10:
		return BandBulk
	case minQuantity >= 5:
		return BandMedium
	default:
		return BandSingle
	}
}
