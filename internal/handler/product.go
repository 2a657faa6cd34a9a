package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/freshcart/storefront/internal/domain/pricing"
	"github.com/freshcart/storefront/internal/domain/product"
)

type tierView struct {
	MinQuantity        int             `json:"minQuantity"`
	Price              decimal.Decimal `json:"price"`
	DiscountPercentage int             `json:"discountPercentage"`
}

type quoteView struct {
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unitPrice"`
	LineTotal      decimal.Decimal `json:"lineTotal"`
	SavingsPerUnit decimal.Decimal `json:"savingsPerUnit"`
	LineSavings    decimal.Decimal `json:"lineSavings"`
	Tier           tierView        `json:"tier"`
}

type incentiveView struct {
	MinQuantity     int             `json:"minQuantity"`
	AdditionalUnits int             `json:"additionalUnits"`
	PerUnitSavings  decimal.Decimal `json:"perUnitSavings"`
}

type productView struct {
	ID                   string          `json:"id"`
	Name                 string          `json:"name"`
	Category             string          `json:"category"`
	Images               []string        `json:"images"`
	Description          string          `json:"description,omitempty"`
	InStock              bool            `json:"inStock"`
	StockCount           *int            `json:"stockCount,omitempty"`
	PriceTiers           []tierView      `json:"priceTiers"`
	BasePrice            decimal.Decimal `json:"basePrice"`
	HasDiscount          bool            `json:"hasDiscount"`
	MaxDiscount          int             `json:"maxDiscount"`
	Featured             bool            `json:"featured"`
	Trending             bool            `json:"trending"`
	DealID               string          `json:"dealId,omitempty"`
	DietaryTags          []string        `json:"dietaryTags,omitempty"`
	FrequentlyBoughtWith []string        `json:"frequentlyBoughtWith,omitempty"`
	Quote                *quoteView      `json:"quote,omitempty"`
	NextTier             *incentiveView  `json:"nextTier,omitempty"`
}

func (h *Handler) productView(p product.Product) productView {
	tiers := make([]tierView, len(p.PriceTiers))
	for i, t := range p.PriceTiers {
		tiers[i] = tierView(t)
	}

	v := productView{
		ID:                   p.ID,
		Name:                 p.Name,
		Category:             p.Category,
		Images:               h.imageURLs(p.Images),
		Description:          p.Description,
		InStock:              p.InStock,
		PriceTiers:           tiers,
		BasePrice:            p.BaseTier().Price,
		HasDiscount:          pricing.HasDiscount(p.PriceTiers),
		MaxDiscount:          pricing.MaxDiscount(p.PriceTiers),
		Featured:             p.Featured,
		Trending:             p.Trending,
		DealID:               p.DealID,
		DietaryTags:          p.DietaryTags,
		FrequentlyBoughtWith: p.FrequentlyBoughtWith,
	}
	if p.StockCount != product.StockUnknown {
		count := p.StockCount
		v.StockCount = &count
	}
	return v
}

// quoteProduct attaches a priced quote and the next quantity break for the
// requested quantity.
func quoteProduct(v *productView, p product.Product, quantity int) {
	q := pricing.QuoteFor(p.PriceTiers, quantity)
	v.Quote = &quoteView{
		Quantity:       q.Quantity,
		UnitPrice:      q.Tier.Price,
		LineTotal:      q.LineTotal,
		SavingsPerUnit: q.SavingsPerUnit,
		LineSavings:    q.LineSavings,
		Tier:           tierView(q.Tier),
	}
	if inc, ok := pricing.NextIncentive(p.PriceTiers, quantity); ok {
		v.NextTier = &incentiveView{
			MinQuantity:     inc.NextTier.MinQuantity,
			AdditionalUnits: inc.AdditionalUnits,
			PerUnitSavings:  inc.PerUnitSavings,
		}
	}
}

func (h *Handler) imageURLs(images []string) []string {
	if h.cfg.ImageBaseURL == "" || len(images) == 0 {
		return images
	}
	out := make([]string, len(images))
	for i, img := range images {
		if strings.HasPrefix(img, "http://") || strings.HasPrefix(img, "https://") {
			out[i] = img
			continue
		}
		out[i] = strings.TrimSuffix(h.cfg.ImageBaseURL, "/") + "/" + strings.TrimPrefix(img, "/")
	}
	return out
}

func (h *Handler) productViews(products []product.Product) []productView {
	views := make([]productView, len(products))
	for i, p := range products {
		views[i] = h.productView(p)
	}
	return views
}

// listProducts serves the catalog. Optional filters: ?category= narrows by
// category, ?search= matches name, description and category.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	var (
		products []product.Product
		err      error
	)
	search := r.URL.Query().Get("search")
	categoryName := r.URL.Query().Get("category")
	switch {
	case search != "":
		products, err = h.products.Search(r.Context(), search, categoryName)
	case categoryName != "":
		products, err = h.products.GetByCategory(r.Context(), categoryName)
	default:
		products, err = h.products.List(r.Context())
	}
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.productViews(products))
}

// getProduct serves one product. With ?quantity=N the response carries a
// priced quote for that quantity and the next quantity break.
func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	v := h.productView(p)
	if raw := r.URL.Query().Get("quantity"); raw != "" {
		quantity, err := strconv.Atoi(raw)
		if err != nil || quantity < 1 {
			respondError(w, http.StatusBadRequest, "quantity must be a positive integer")
			return
		}
		quoteProduct(&v, p, quantity)
	}
	respondJSON(w, http.StatusOK, v)
}

func (h *Handler) featuredProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.Featured(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.productViews(products))
}

func (h *Handler) trendingProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.Trending(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.productViews(products))
}

func (h *Handler) recommendedProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.Recommended(r.Context(), chi.URLParam(r, "id"), h.cfg.RecommendedLimit)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.productViews(products))
}

func (h *Handler) boughtTogether(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.FrequentlyBoughtWith(r.Context(), chi.URLParam(r, "id"), h.cfg.RecommendedLimit)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.productViews(products))
}
