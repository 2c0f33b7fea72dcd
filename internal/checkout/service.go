package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ariefcatur/go-food-orders/internal/apperr"
	"github.com/ariefcatur/go-food-orders/internal/cart"
	"github.com/ariefcatur/go-food-orders/internal/catalog"
	"github.com/ariefcatur/go-food-orders/internal/orders"
	"github.com/ariefcatur/go-food-orders/internal/payment"
	"github.com/ariefcatur/go-food-orders/internal/voucher"
)

// Ports owned by the orchestrator. Defined here so tests can fake each
// collaborator without a database.

type Carts interface {
	ActiveCart(ctx context.Context, userID string) (cart.View, error)
}

type Vouchers interface {
	ByCode(ctx context.Context, shopID, code string) (voucher.Voucher, error)
}

type OrderWriter interface {
	Create(ctx context.Context, o orders.Order, details []orders.Detail, cartItemIDs []string) error
}

type Request struct {
	UserID          string
	ShopID          string
	VoucherCode     string
	DeliveryAddress string
	Note            string
	PaymentMethod   orders.PaymentMethod
	FastDelivery    bool
}

type Result struct {
	Order    orders.Order      `json:"order"`
	Details  []orders.Detail   `json:"details"`
	Redirect *payment.Redirect `json:"payment,omitempty"`
}

const maxCodeRetries = 3

// Service converts an active cart into a persisted order. Steps 1-6 are pure
// validation and computation; nothing is written until the single atomic
// Create at the end.
type Service struct {
	Carts    Carts
	Catalog  catalog.Provider
	Vouchers Vouchers
	Orders   OrderWriter
	Gateway  payment.Gateway
	Events   orders.EventSink

	ShippingFee           int64
	FastDeliverySurcharge int64

	// Now is swappable in tests; defaults to time.Now.
	Now func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) Checkout(ctx context.Context, req Request) (Result, error) {
	if req.DeliveryAddress == "" {
		return Result{}, apperr.InvalidState("delivery address is required")
	}
	if req.PaymentMethod != orders.MethodCOD && req.PaymentMethod != orders.MethodOnline {
		return Result{}, apperr.InvalidState("unknown payment method %q", req.PaymentMethod)
	}

	// 1. Active cart, restricted to the requested shop.
	view, err := s.Carts.ActiveCart(ctx, req.UserID)
	if err != nil {
		return Result{}, err
	}
	if len(view.Items) == 0 || view.ShopID != req.ShopID {
		return Result{}, apperr.EmptyCart()
	}

	// 2-3. Re-resolve every food and snapshot the line items. All-or-nothing:
	// one unavailable food fails the whole checkout.
	var subtotal int64
	details := make([]orders.Detail, 0, len(view.Items))
	itemIDs := make([]string, 0, len(view.Items))
	for _, it := range view.Items {
		food, err := s.Catalog.Food(ctx, it.FoodID)
		if err != nil {
			return Result{}, err
		}
		if !food.IsAvailable {
			return Result{}, apperr.Unavailable("%s is no longer available", food.Name)
		}
		line := orders.LineSubtotal(food.Price, it.Qty, food.DiscountPercent)
		details = append(details, orders.Detail{
			ID:              uuid.NewString(),
			FoodID:          food.ID,
			FoodName:        food.Name,
			FoodImage:       food.ImageURL,
			UnitPrice:       food.Price,
			DiscountPercent: food.DiscountPercent,
			Qty:             it.Qty,
			Subtotal:        line,
		})
		subtotal += line
		itemIDs = append(itemIDs, it.ID)
	}

	// 4. Voucher, scoped to the shop.
	var discount int64
	var voucherID *string
	if req.VoucherCode != "" {
		v, err := s.Vouchers.ByCode(ctx, req.ShopID, req.VoucherCode)
		if apperr.Is(err, apperr.CodeNotFound) {
			return Result{}, apperr.InvalidVoucher("voucher not found for this shop")
		}
		if err != nil {
			return Result{}, err
		}
		res := voucher.Evaluate(v, subtotal, s.now())
		if !res.Applicable {
			return Result{}, apperr.InvalidVoucher(res.Reasons...)
		}
		discount = res.Discount
		voucherID = &v.ID
	}

	// 5. Shipping fee and total. The discount never touches shipping.
	shipping := s.ShippingFee
	if req.FastDelivery {
		shipping += s.FastDeliverySurcharge
	}
	total := subtotal - discount + shipping

	status := orders.StatusPending
	payStatus := orders.PayCODPending
	if req.PaymentMethod == orders.MethodOnline {
		status = orders.StatusPendingPayment
		payStatus = orders.PayUnpaid
	}

	order := orders.Order{
		ID:              uuid.NewString(),
		UserID:          req.UserID,
		ShopID:          req.ShopID,
		DeliveryAddress: req.DeliveryAddress,
		Note:            req.Note,
		Subtotal:        subtotal,
		Discount:        discount,
		ShippingFee:     shipping,
		Total:           total,
		VoucherID:       voucherID,
		Status:          status,
		PaymentMethod:   req.PaymentMethod,
		PaymentStatus:   payStatus,
		CreatedAt:       s.now(),
	}
	for i := range details {
		details[i].OrderID = order.ID
	}

	// 6-7. Generate the code and persist atomically, retrying only on a code
	// collision.
	for attempt := 0; ; attempt++ {
		order.Code = orders.NewCode(s.now())
		err = s.Orders.Create(ctx, order, details, itemIDs)
		if err == nil {
			break
		}
		if errors.Is(err, orders.ErrCodeTaken) && attempt < maxCodeRetries {
			continue
		}
		return Result{}, err
	}

	// 8. Notify the shop, fire-and-forget.
	s.Events.OrderCreated(ctx, order, details)

	res := Result{Order: order, Details: details}

	// 9. Online payments get a redirect handle from the gateway. The order is
	// already persisted; a gateway hiccup leaves it PENDING_PAYMENT for the
	// webhook or reconciliation to move. The result still carries the order
	// on that path so the caller keeps the code to poll with.
	if req.PaymentMethod == orders.MethodOnline {
		redirect, err := s.Gateway.CreateRedirect(ctx, payment.SessionRequest{
			OrderCode: order.Code,
			Amount:    order.Total,
			Customer:  order.UserID,
		})
		if err != nil {
			return res, err
		}
		res.Redirect = &redirect
	}
	return res, nil
}
