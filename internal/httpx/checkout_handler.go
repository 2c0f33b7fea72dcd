package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-food-orders/internal/checkout"
	"github.com/ariefcatur/go-food-orders/internal/orders"
)

type CheckoutHandler struct {
	Service *checkout.Service
}

func (h *CheckoutHandler) Register(r *chi.Mux) {
	r.Post("/checkout", h.checkout)
}

type checkoutReq struct {
	ShopID          string `json:"shop_id"`
	VoucherCode     string `json:"voucher_code,omitempty"`
	DeliveryAddress string `json:"delivery_address"`
	Note            string `json:"note,omitempty"`
	PaymentMethod   string `json:"payment_method"`
	FastDelivery    bool   `json:"fast_delivery,omitempty"`
}

func (h *CheckoutHandler) checkout(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		unauthorized(w)
		return
	}
	var req checkoutReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid json")
		return
	}
	if req.ShopID == "" || req.DeliveryAddress == "" || req.PaymentMethod == "" {
		badRequest(w, "shop_id, delivery_address and payment_method are required")
		return
	}

	res, err := h.Service.Checkout(r.Context(), checkout.Request{
		UserID:          uid,
		ShopID:          req.ShopID,
		VoucherCode:     req.VoucherCode,
		DeliveryAddress: req.DeliveryAddress,
		Note:            req.Note,
		PaymentMethod:   orders.PaymentMethod(req.PaymentMethod),
		FastDelivery:    req.FastDelivery,
	})
	if err != nil {
		// the order may already be persisted when only the payment session
		// failed; hand the code back so the client can poll and retry payment
		if res.Order.Code != "" {
			slog.ErrorContext(r.Context(), "payment session failed after checkout",
				"order_code", res.Order.Code, "err", err)
			writeJSON(w, http.StatusCreated, map[string]any{
				"order":         res.Order,
				"details":       res.Details,
				"payment_error": "payment session could not be created",
			})
			return
		}
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}
