package httpx

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-food-orders/internal/apperr"
	"github.com/ariefcatur/go-food-orders/internal/catalog"
	"github.com/ariefcatur/go-food-orders/internal/orders"
)

// StatusCache is the read model behind the status polling endpoint,
// maintained by the projector. Backed by redisx.StatusStore in production.
type StatusCache interface {
	GetStatus(ctx context.Context, code string) (string, bool)
	SetStatus(ctx context.Context, code string, doc []byte)
}

type OrdersHandler struct {
	Service   *orders.Service
	Directory catalog.Directory
	Status    StatusCache
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Get("/orders/{code}", h.getOrder)
	r.Get("/orders/{code}/status", h.getOrderStatus)
	r.Post("/orders/{code}/cancel", h.cancelByCustomer)

	r.Get("/staff/orders", h.listOpenOrders)
	r.Post("/staff/orders/{code}/accept", h.accept)
	r.Post("/staff/orders/{code}/advance", h.advance)
	r.Post("/staff/orders/{code}/cancel", h.cancelByStaff)
}

type orderResp struct {
	Order   orders.Order    `json:"order"`
	Details []orders.Detail `json:"details"`
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	uid, sid := userID(r), staffID(r)
	if uid == "" && sid == "" {
		unauthorized(w)
		return
	}

	o, details, err := h.Service.Get(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.authorize(r.Context(), uid, sid, o.UserID, o.ShopID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orderResp{Order: o, Details: details})
}

// authorize admits the order's customer or a manager of its shop, the same
// rule for every order read.
func (h *OrdersHandler) authorize(ctx context.Context, uid, sid, ownerID, shopID string) error {
	if uid != "" {
		if ownerID != uid {
			return apperr.Forbidden("order belongs to another customer")
		}
		return nil
	}
	ok, err := h.Directory.IsManager(ctx, shopID, sid)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Forbidden("staff does not manage this shop")
	}
	return nil
}

// getOrderStatus serves the projector's Redis read model first and falls back
// to the database when the cache is cold. The cached doc carries owner and
// shop ids so the hot path authorizes without touching the database.
func (h *OrdersHandler) getOrderStatus(w http.ResponseWriter, r *http.Request) {
	uid, sid := userID(r), staffID(r)
	if uid == "" && sid == "" {
		unauthorized(w)
		return
	}
	code := chi.URLParam(r, "code")

	if s, ok := h.Status.GetStatus(r.Context(), code); ok {
		var doc orders.StatusDoc
		if err := json.Unmarshal([]byte(s), &doc); err == nil {
			if err := h.authorize(r.Context(), uid, sid, doc.UserID, doc.ShopID); err != nil {
				writeError(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, doc)
			return
		}
	}

	o, _, err := h.Service.Get(r.Context(), code)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.authorize(r.Context(), uid, sid, o.UserID, o.ShopID); err != nil {
		writeError(w, r, err)
		return
	}
	doc := orders.StatusDoc{
		UserID: o.UserID, ShopID: o.ShopID,
		Status: o.Status, PaymentStatus: o.PaymentStatus, UpdatedAt: o.UpdatedAt,
	}
	if b, err := json.Marshal(doc); err == nil {
		h.Status.SetStatus(r.Context(), code, b)
	}
	writeJSON(w, http.StatusOK, doc)
}

type cancelReq struct {
	Reason string `json:"reason"`
}

func (h *OrdersHandler) cancelByCustomer(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		unauthorized(w)
		return
	}
	var req cancelReq
	_ = json.NewDecoder(r.Body).Decode(&req)

	o, err := h.Service.CancelByCustomer(r.Context(), uid, chi.URLParam(r, "code"), req.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) listOpenOrders(w http.ResponseWriter, r *http.Request) {
	sid := staffID(r)
	if sid == "" {
		unauthorized(w)
		return
	}
	shops, err := h.Directory.StaffShops(r.Context(), sid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	open, err := h.Service.Repo.OpenByShops(r.Context(), shops)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": open})
}

func (h *OrdersHandler) accept(w http.ResponseWriter, r *http.Request) {
	h.staffOp(w, r, func(sid, code string) (orders.Order, error) {
		return h.Service.Accept(r.Context(), sid, code)
	})
}

func (h *OrdersHandler) advance(w http.ResponseWriter, r *http.Request) {
	h.staffOp(w, r, func(sid, code string) (orders.Order, error) {
		return h.Service.Advance(r.Context(), sid, code)
	})
}

func (h *OrdersHandler) cancelByStaff(w http.ResponseWriter, r *http.Request) {
	var req cancelReq
	_ = json.NewDecoder(r.Body).Decode(&req)
	h.staffOp(w, r, func(sid, code string) (orders.Order, error) {
		return h.Service.CancelByStaff(r.Context(), sid, code, req.Reason)
	})
}

func (h *OrdersHandler) staffOp(w http.ResponseWriter, r *http.Request, op func(sid, code string) (orders.Order, error)) {
	sid := staffID(r)
	if sid == "" {
		unauthorized(w)
		return
	}
	o, err := op(sid, chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}
