package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Keiter0309/EcomGrove/internal/cart"
	"github.com/Keiter0309/EcomGrove/internal/domain"
)

type CartHandler struct {
	Svc *cart.Service
	Log *zap.Logger
}

type addToCartReq struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type updateCartReq struct {
	CartItemID int64 `json:"cart_item_id"`
	Quantity   int   `json:"quantity"`
}

func (h *CartHandler) Register(r chi.Router) {
	r.Post("/cart", h.addToCart)
	r.Get("/cart", h.getCart)
	r.Patch("/cart", h.updateCartItem)
	r.Delete("/cart/{id}", h.removeProduct)
	r.Delete("/cart", h.clearCart)
}

func (h *CartHandler) addToCart(w http.ResponseWriter, r *http.Request) {
	var req addToCartReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.Log, domain.Errorf(domain.EINVALID, "invalid json"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	line, err := h.Svc.AddToCart(ctx, userFrom(r), req.ProductID, req.Quantity)
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	respond(w, http.StatusCreated, "Product added to cart successfully", line)
}

func (h *CartHandler) getCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	entries, err := h.Svc.GetCart(ctx, userFrom(r))
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	respond(w, http.StatusOK, "Fetched all cart successfully", entries)
}

func (h *CartHandler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	var req updateCartReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.Log, domain.Errorf(domain.EINVALID, "invalid json"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	line, err := h.Svc.UpdateCartItem(ctx, userFrom(r), req.CartItemID, req.Quantity)
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	if line == nil {
		respond(w, http.StatusOK, "Cart item removed due to zero quantity", nil)
		return
	}
	respond(w, http.StatusOK, "Cart item quantity updated successfully", line)
}

func (h *CartHandler) removeProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, h.Log, domain.Errorf(domain.EINVALID, "invalid cart item id"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Svc.RemoveProductFromCart(ctx, userFrom(r), id); err != nil {
		respondError(w, h.Log, err)
		return
	}
	respond(w, http.StatusOK, "Cart item deleted successfully", nil)
}

func (h *CartHandler) clearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Svc.ClearCart(ctx, userFrom(r)); err != nil {
		respondError(w, h.Log, err)
		return
	}
	respond(w, http.StatusOK, "Cart cleared successfully", nil)
}
