package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-food-orders/internal/cart"
)

type CartHandler struct {
	Store *cart.Store
}

func (h *CartHandler) Register(r *chi.Mux) {
	r.Get("/cart", h.getCart)
	r.Post("/cart/items", h.addItem)
	r.Patch("/cart/items/{id}", h.updateItem)
	r.Delete("/cart/items/{id}", h.removeItem)
}

type addItemReq struct {
	ShopID string `json:"shop_id"`
	FoodID string `json:"food_id"`
	Qty    int    `json:"qty"`
	Note   string `json:"note"`
}

func (h *CartHandler) addItem(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		unauthorized(w)
		return
	}
	var req addItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid json")
		return
	}
	if req.ShopID == "" || req.FoodID == "" || req.Qty < 1 {
		badRequest(w, "shop_id, food_id and qty >= 1 are required")
		return
	}

	it, err := h.Store.AddItem(r.Context(), uid, req.ShopID, req.FoodID, req.Qty, req.Note)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

func (h *CartHandler) getCart(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		unauthorized(w)
		return
	}
	view, err := h.Store.ActiveCart(r.Context(), uid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type updateItemReq struct {
	Qty  *int    `json:"qty,omitempty"`
	Note *string `json:"note,omitempty"`
}

func (h *CartHandler) updateItem(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		unauthorized(w)
		return
	}
	var req updateItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid json")
		return
	}
	if req.Qty == nil && req.Note == nil {
		badRequest(w, "nothing to update")
		return
	}

	it, err := h.Store.UpdateItem(r.Context(), uid, chi.URLParam(r, "id"), req.Qty, req.Note)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (h *CartHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		unauthorized(w)
		return
	}
	if err := h.Store.RemoveItem(r.Context(), uid, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
