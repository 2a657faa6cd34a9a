package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/freshcart/storefront/internal/domain/pricing"
	"github.com/freshcart/storefront/internal/domain/product"
)

type tierPayload struct {
	MinQuantity int             `json:"minQuantity" validate:"required,gt=0"`
	Price       decimal.Decimal `json:"price" validate:"required"`
}

type productPayload struct {
	Name                 string        `json:"name" validate:"required"`
	Category             string        `json:"category" validate:"required"`
	Images               []string      `json:"images"`
	Description          string        `json:"description"`
	PriceTiers           []tierPayload `json:"priceTiers" validate:"required,min=1,dive"`
	StockCount           *int          `json:"stockCount"`
	InStock              *bool         `json:"inStock"`
	Featured             bool          `json:"featured"`
	Trending             bool          `json:"trending"`
	DealID               string        `json:"dealId"`
	DietaryTags          []string      `json:"dietaryTags"`
	FrequentlyBoughtWith []string      `json:"frequentlyBoughtWith"`
}

// toProduct builds the domain product. Discount percentages are not accepted
// from clients; they are derived from the base tier on write.
func (p productPayload) toProduct(id string) product.Product {
	tiers := make([]pricing.Tier, len(p.PriceTiers))
	for i, t := range p.PriceTiers {
		tiers[i] = pricing.Tier{MinQuantity: t.MinQuantity, Price: t.Price}
	}

	stock := product.StockUnknown
	if p.StockCount != nil {
		stock = *p.StockCount
	}
	inStock := stock > 0
	if p.InStock != nil {
		inStock = *p.InStock
	}

	return product.Product{
		ID:                   id,
		Name:                 p.Name,
		Category:             p.Category,
		Images:               p.Images,
		Description:          p.Description,
		InStock:              inStock,
		StockCount:           stock,
		PriceTiers:           tiers,
		Featured:             p.Featured,
		Trending:             p.Trending,
		DealID:               p.DealID,
		DietaryTags:          p.DietaryTags,
		FrequentlyBoughtWith: p.FrequentlyBoughtWith,
	}
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var payload productPayload
	if err := decodeJSONBody(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.writer.Create(r.Context(), payload.toProduct(""))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, h.productView(created))
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var payload productPayload
	if err := decodeJSONBody(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.writer.Update(r.Context(), payload.toProduct(chi.URLParam(r, "id")))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.productView(updated))
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.writer.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type featuredOrderRequest struct {
	ProductIDs []string `json:"productIds" validate:"required,min=1"`
}

func (h *Handler) setFeaturedOrder(w http.ResponseWriter, r *http.Request) {
	var req featuredOrderRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.writer.SetFeaturedOrder(r.Context(), req.ProductIDs); err != nil {
		respondDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type decrementStockRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

func (h *Handler) decrementStock(w http.ResponseWriter, r *http.Request) {
	var req decrementStockRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.writer.DecrementStock(r.Context(), chi.URLParam(r, "id"), req.Quantity); err != nil {
		respondDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
