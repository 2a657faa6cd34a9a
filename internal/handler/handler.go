// Package handler exposes the storefront HTTP API.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/freshcart/storefront/internal/domain/cart"
	"github.com/freshcart/storefront/internal/domain/category"
	"github.com/freshcart/storefront/internal/domain/deal"
	"github.com/freshcart/storefront/internal/domain/pricing"
	"github.com/freshcart/storefront/internal/domain/product"
	"github.com/freshcart/storefront/internal/recordstore"
)

// Config holds non-dependency settings for the Handler.
type Config struct {
	// ImageBaseURL is prepended to relative image paths in product responses.
	// When empty, image paths are returned as stored.
	ImageBaseURL string
	// RecommendedLimit caps recommendation and bought-together lists.
	RecommendedLimit int
}

// Handler routes the storefront API, delegating business logic to the domain
// services and repositories.
type Handler struct {
	cfg        Config
	products   product.Repository
	writer     product.Writer
	categories *category.Service
	deals      *deal.Service
	cart       *cart.Store
	security   *Security
}

func New(
	cfg Config,
	products product.Repository,
	writer product.Writer,
	categories *category.Service,
	deals *deal.Service,
	cartStore *cart.Store,
	security *Security,
) *Handler {
	if cfg.RecommendedLimit <= 0 {
		cfg.RecommendedLimit = 4
	}
	return &Handler{
		cfg:        cfg,
		products:   products,
		writer:     writer,
		categories: categories,
		deals:      deals,
		cart:       cartStore,
		security:   security,
	}
}

// Routes mounts the API under /api.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.listProducts)
			r.Get("/featured", h.featuredProducts)
			r.Get("/trending", h.trendingProducts)
			r.Get("/{id}", h.getProduct)
			r.Get("/{id}/recommended", h.recommendedProducts)
			r.Get("/{id}/bought-together", h.boughtTogether)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.listCategories)
			r.Get("/{id}", h.getCategory)
		})

		r.Route("/deals", func(r chi.Router) {
			r.Get("/", h.listDeals)
			r.Get("/active", h.activeDeals)
			r.Get("/{id}", h.getDeal)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.getCart)
			r.Delete("/", h.clearCart)
			r.Post("/items", h.addCartItem)
			r.Put("/items/{productId}", h.updateCartItem)
			r.Delete("/items/{productId}", h.removeCartItem)
			r.Post("/checkout", h.checkout)
		})

		r.Route("/admin/products", func(r chi.Router) {
			r.Use(h.security.RequireAPIKey)
			r.Post("/", h.createProduct)
			r.Put("/featured-order", h.setFeaturedOrder)
			r.Put("/{id}", h.updateProduct)
			r.Delete("/{id}", h.deleteProduct)
			r.Post("/{id}/decrement-stock", h.decrementStock)
		})
	})

	return r
}

type errorResponse struct {
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Message: message})
}

// respondDomainError maps domain and upstream failures onto HTTP statuses.
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var tierErr *pricing.TierDataError
	switch {
	case errors.Is(err, product.ErrNotFound),
		errors.Is(err, category.ErrNotFound),
		errors.Is(err, deal.ErrNotFound),
		errors.Is(err, recordstore.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, cart.ErrInvalidQuantity):
		respondError(w, http.StatusUnprocessableEntity, "quantity must be positive")
	case errors.As(err, &tierErr):
		respondError(w, http.StatusUnprocessableEntity, tierErr.Error())
	default:
		zctx.From(r.Context()).Error("Request failed", zap.Error(err))
		respondError(w, http.StatusBadGateway, "catalog temporarily unavailable")
	}
}
