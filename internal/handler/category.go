package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/freshcart/storefront/internal/domain/category"
)

type categoryView struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Icon     string        `json:"icon,omitempty"`
	Image    string        `json:"image,omitempty"`
	Products []productView `json:"products,omitempty"`
}

func (h *Handler) categoryView(c category.Category) categoryView {
	return categoryView{
		ID:    c.ID,
		Name:  c.Name,
		Icon:  c.Icon,
		Image: c.Image,
	}
}

// listCategories serves all categories. With ?withProducts=true each category
// carries a capped preview of its products.
func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("withProducts") == "true" {
		withProducts, err := h.categories.WithTopProducts(r.Context(), h.cfg.RecommendedLimit)
		if err != nil {
			respondDomainError(w, r, err)
			return
		}
		views := make([]categoryView, len(withProducts))
		for i, c := range withProducts {
			views[i] = h.categoryView(c.Category)
			views[i].Products = h.productViews(c.Products)
		}
		respondJSON(w, http.StatusOK, views)
		return
	}

	categories, err := h.categories.List(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	views := make([]categoryView, len(categories))
	for i, c := range categories {
		views[i] = h.categoryView(c)
	}
	respondJSON(w, http.StatusOK, views)
}

func (h *Handler) getCategory(w http.ResponseWriter, r *http.Request) {
	c, err := h.categories.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.categoryView(*c))
}
