package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type cartItemView struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
	Tier      tierView        `json:"tier"`
}

type cartView struct {
	Items        []cartItemView  `json:"items"`
	ItemCount    int             `json:"itemCount"`
	Total        decimal.Decimal `json:"total"`
	TotalSavings decimal.Decimal `json:"totalSavings"`
	Message      string          `json:"message,omitempty"`
}

func (h *Handler) cartView(message string) cartView {
	items := h.cart.Items()
	views := make([]cartItemView, len(items))
	for i, item := range items {
		qty := decimal.NewFromInt(int64(item.Quantity))
		views[i] = cartItemView{
			ProductID: item.ProductID,
			Name:      item.Product.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.SelectedTier.Price,
			LineTotal: item.SelectedTier.Price.Mul(qty),
			Tier:      tierView(item.SelectedTier),
		}
	}
	return cartView{
		Items:        views,
		ItemCount:    h.cart.ItemCount(),
		Total:        h.cart.Total(),
		TotalSavings: h.cart.TotalSavings(),
		Message:      message,
	}
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.cartView(""))
}

type addItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.products.GetByID(r.Context(), req.ProductID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	ctx, message := withMessageCapture(r.Context())
	if err := h.cart.Add(ctx, p, req.Quantity); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.cartView(*message))
}

type updateItemRequest struct {
	// Zero or negative removes the item.
	Quantity int `json:"quantity"`
}

func (h *Handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, message := withMessageCapture(r.Context())
	h.cart.UpdateQuantity(ctx, chi.URLParam(r, "productId"), req.Quantity)
	respondJSON(w, http.StatusOK, h.cartView(*message))
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	ctx, message := withMessageCapture(r.Context())
	h.cart.Remove(ctx, chi.URLParam(r, "productId"))
	respondJSON(w, http.StatusOK, h.cartView(*message))
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	ctx, message := withMessageCapture(r.Context())
	h.cart.Clear(ctx)
	respondJSON(w, http.StatusOK, h.cartView(*message))
}

type checkoutView struct {
	OrderID string          `json:"orderId"`
	Total   decimal.Decimal `json:"total"`
	Items   []cartItemView  `json:"items"`
}

// checkout simulates order placement: it rejects an empty cart, decrements
// stock best-effort, clears the cart and returns a receipt. No payment or
// order persistence happens here.
func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	items := h.cart.Items()
	if len(items) == 0 {
		respondError(w, http.StatusUnprocessableEntity, "cart is empty")
		return
	}

	receipt := h.cartView("")

	for _, item := range items {
		if err := h.writer.DecrementStock(r.Context(), item.ProductID, item.Quantity); err != nil {
			// Stock reconciliation must not block the checkout itself.
			zctx.From(r.Context()).Warn("Stock decrement failed",
				zap.String("product_id", item.ProductID), zap.Error(err))
		}
	}
	h.cart.Clear(r.Context())

	respondJSON(w, http.StatusOK, checkoutView{
		OrderID: uuid.NewString(),
		Total:   receipt.Total,
		Items:   receipt.Items,
	})
}
