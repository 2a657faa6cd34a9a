// Package recordstore implements the catalog repositories on top of the
// remote record-store client, mapping its loosely typed records to and from
// the domain types.
package recordstore

import (
	"strings"
	"time"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/freshcart/storefront/internal/domain/category"
	"github.com/freshcart/storefront/internal/domain/deal"
	"github.com/freshcart/storefront/internal/domain/pricing"
	"github.com/freshcart/storefront/internal/domain/product"
	"github.com/freshcart/storefront/internal/recordstore"
)

// Table names in the record store.
const (
	tableProduct  = "product"
	tableCategory = "category"
	tableDeal     = "deal"
)

// productFields is the full projection requested for product reads.
var productFields = []string{
	"Id", "Name", "category", "images", "description", "priceTiers",
	"inStock", "stockCount", "featured", "featuredOrder", "trending",
	"dealId", "dietaryTags", "frequentlyBoughtWith",
}

var categoryFields = []string{"Id", "Name", "icon", "image"}

var dealFields = []string{"Id", "title", "productIds", "expiresAt", "position"}

func mapProduct(rec recordstore.Record) (product.Product, error) {
	tiers, err := decodeTiers(rec.JSONValue("priceTiers"))
	if err != nil {
		return product.Product{}, err
	}

	stock, ok := rec.Int("stockCount")
	if !ok {
		// Absent stock is unknown, never a fabricated count.
		stock = product.StockUnknown
	}

	order, _ := rec.Int("featuredOrder")

	return product.Product{
		ID:                   rec.String("Id"),
		Name:                 rec.String("Name"),
		Category:             rec.String("category"),
		Images:               rec.StringList("images"),
		Description:          rec.String("description"),
		InStock:              rec.Bool("inStock"),
		StockCount:           stock,
		PriceTiers:           tiers,
		Featured:             rec.Bool("featured"),
		FeaturedOrder:        order,
		Trending:             rec.Bool("trending"),
		DealID:               rec.String("dealId"),
		DietaryTags:          rec.StringList("dietaryTags"),
		FrequentlyBoughtWith: rec.StringList("frequentlyBoughtWith"),
	}, nil
}

func mapProducts(records []recordstore.Record) ([]product.Product, error) {
	out := make([]product.Product, len(records))
	for i, rec := range records {
		p, err := mapProduct(rec)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

func mapCategory(rec recordstore.Record) category.Category {
	return category.Category{
		ID:    rec.String("Id"),
		Name:  rec.String("Name"),
		Icon:  rec.String("icon"),
		Image: rec.String("image"),
	}
}

func mapDeal(rec recordstore.Record) deal.Deal {
	expires, _ := time.Parse(time.RFC3339, rec.String("expiresAt"))
	position, _ := rec.Int("position")
	return deal.Deal{
		ID:         rec.String("Id"),
		Title:      rec.String("title"),
		ProductIDs: rec.StringList("productIds"),
		ExpiresAt:  expires,
		Position:   position,
	}
}

// decodeTiers parses a tier list from its canonical JSON bytes (JSONValue
// has already unwrapped string-serialized lists). Empty input is a valid
// empty tier list; malformed tier values fail fast with a TierDataError.
func decodeTiers(raw []byte) ([]pricing.Tier, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var (
		tiers   []pricing.Tier
		badTier *pricing.TierDataError
	)
	d := jx.DecodeBytes(raw)
	err := d.Arr(func(d *jx.Decoder) error {
		idx := len(tiers)
		var t pricing.Tier
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			switch key {
			case "minQuantity":
				v, err := d.Int()
				if err != nil {
					badTier = &pricing.TierDataError{Index: idx, Reason: "minQuantity is not numeric"}
					return err
				}
				t.MinQuantity = v
				return nil
			case "price":
				raw, err := d.Raw()
				if err != nil {
					return err
				}
				price, perr := decodePrice(raw)
				if perr != nil {
					badTier = &pricing.TierDataError{Index: idx, Reason: "price is not numeric"}
					return perr
				}
				t.Price = price
				return nil
			case "discountPercentage":
				v, err := d.Int()
				if err != nil {
					badTier = &pricing.TierDataError{Index: idx, Reason: "discountPercentage is not numeric"}
					return err
				}
				t.DiscountPercentage = v
				return nil
			default:
				return d.Skip()
			}
		}); err != nil {
			return err
		}
		tiers = append(tiers, t)
		return nil
	})
	if err != nil {
		if badTier != nil {
			return nil, badTier
		}
		return nil, &pricing.TierDataError{Index: len(tiers), Reason: "malformed tier list"}
	}
	return tiers, nil
}

// decodePrice accepts a JSON number or a numeric string.
func decodePrice(raw jx.Raw) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw.String())
	if strings.HasPrefix(s, `"`) {
		unquoted, err := jx.DecodeBytes(raw).Str()
		if err != nil {
			return decimal.Zero, err
		}
		s = strings.TrimSpace(unquoted)
	}
	return decimal.NewFromString(s)
}

// encodeTiers serializes a tier list the way the record store expects it:
// a JSON string containing the tier array.
func encodeTiers(tiers []pricing.Tier) string {
	var e jx.Encoder
	e.ArrStart()
	for _, t := range tiers {
		e.ObjStart()
		e.FieldStart("minQuantity")
		e.Int(t.MinQuantity)
		e.FieldStart("price")
		e.Raw(jx.Raw(t.Price.String()))
		e.FieldStart("discountPercentage")
		e.Int(t.DiscountPercentage)
		e.ObjEnd()
	}
	e.ArrEnd()
	return string(e.Bytes())
}

// productFieldValues builds the write payload for a product. List fields are
// stored comma-joined and tiers as a serialized JSON string, matching how
// the record store persists them.
func productFieldValues(p product.Product) map[string]any {
	stock := p.StockCount
	inStock := p.InStock
	if stock >= 0 {
		inStock = stock > 0
	}

	fields := map[string]any{
		"Name":                 p.Name,
		"category":             p.Category,
		"images":               strings.Join(p.Images, ","),
		"description":          p.Description,
		"priceTiers":           encodeTiers(p.PriceTiers),
		"inStock":              inStock,
		"featured":             p.Featured,
		"trending":             p.Trending,
		"dealId":               p.DealID,
		"dietaryTags":          strings.Join(p.DietaryTags, ","),
		"frequentlyBoughtWith": strings.Join(p.FrequentlyBoughtWith, ","),
	}
	if stock >= 0 {
		fields["stockCount"] = stock
	}
	if p.FeaturedOrder > 0 {
		fields["featuredOrder"] = p.FeaturedOrder
	}
	return fields
}
