package httpx

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-food-orders/internal/apperr"
	"github.com/ariefcatur/go-food-orders/internal/orders"
	"github.com/ariefcatur/go-food-orders/internal/payment"
)

type WebhookHandler struct {
	Service *orders.Service
	Secret  string
}

func (h *WebhookHandler) Register(r *chi.Mux) {
	r.Post("/webhooks/payment", h.paymentWebhook)
}

func (h *WebhookHandler) paymentWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<16))
	if err != nil {
		badRequest(w, "cannot read body")
		return
	}
	if !payment.VerifySignature(body, r.Header.Get("X-Gateway-Signature"), h.Secret) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "UNAUTHORIZED", "message": "bad signature"})
		return
	}

	var ev payment.WebhookEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		badRequest(w, "invalid json")
		return
	}
	if ev.OrderCode == "" || ev.Status == "" {
		badRequest(w, "order_code and status are required")
		return
	}

	o, err := h.Service.ApplyPaymentUpdate(r.Context(), ev.OrderCode, ev.Status)
	if apperr.Is(err, apperr.CodeNotFound) {
		// logged, not retried here; redelivery is the gateway's job
		slog.WarnContext(r.Context(), "webhook for unknown order", "order_code", ev.OrderCode, "status", ev.Status)
		writeError(w, r, err)
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}
