package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/freshcart/storefront/internal/domain/deal"
)

type tierHighlightView struct {
	MinQuantity        int             `json:"minQuantity"`
	Price              decimal.Decimal `json:"price"`
	DiscountPercentage int             `json:"discountPercentage"`
	Savings            decimal.Decimal `json:"savings"`
	Band               deal.BulkBand   `json:"band"`
}

type dealProductView struct {
	productView
	TierHighlights      []tierHighlightView `json:"tierHighlights"`
	RecommendationScore int                 `json:"recommendationScore"`
}

type dealView struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	ExpiresAt time.Time         `json:"expiresAt"`
	Position  int               `json:"position"`
	Urgency   deal.Urgency      `json:"urgency"`
	Products  []dealProductView `json:"products"`
}

func (h *Handler) dealView(e deal.Enriched) dealView {
	products := make([]dealProductView, len(e.Products))
	for i, sp := range e.Products {
		highlights := make([]tierHighlightView, len(sp.TierHighlights))
		for j, th := range sp.TierHighlights {
			highlights[j] = tierHighlightView{
				MinQuantity:        th.MinQuantity,
				Price:              th.Price,
				DiscountPercentage: th.DiscountPercentage,
				Savings:            th.Savings,
				Band:               th.Band,
			}
		}
		products[i] = dealProductView{
			productView:         h.productView(sp.Product),
			TierHighlights:      highlights,
			RecommendationScore: sp.RecommendationScore,
		}
	}

	return dealView{
		ID:        e.ID,
		Title:     e.Title,
		ExpiresAt: e.ExpiresAt,
		Position:  e.Position,
		Urgency:   e.Urgency,
		Products:  products,
	}
}

func (h *Handler) dealViews(enriched []deal.Enriched) []dealView {
	views := make([]dealView, len(enriched))
	for i, e := range enriched {
		views[i] = h.dealView(e)
	}
	return views
}

func (h *Handler) listDeals(w http.ResponseWriter, r *http.Request) {
	enriched, err := h.deals.List(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.dealViews(enriched))
}

func (h *Handler) activeDeals(w http.ResponseWriter, r *http.Request) {
	enriched, err := h.deals.Active(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.dealViews(enriched))
}

func (h *Handler) getDeal(w http.ResponseWriter, r *http.Request) {
	enriched, err := h.deals.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.dealView(*enriched))
}
