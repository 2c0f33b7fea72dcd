package orders

import (
	"context"

	"github.com/ariefcatur/go-food-orders/internal/apperr"
	"github.com/ariefcatur/go-food-orders/internal/catalog"
)

// Repository is the persistence port of the state machine.
type Repository interface {
	ByCode(ctx context.Context, code string) (Order, error)
	Details(ctx context.Context, orderID string) ([]Detail, error)
	Transition(ctx context.Context, code string, apply func(o *Order) (releaseVoucher bool, err error)) (Order, error)
	OpenByShops(ctx context.Context, shopIDs []string) ([]Order, error)
}

// EventSink receives a notification after every successful mutation.
// Delivery is fire-and-forget; implementations must never block or fail the
// business operation.
type EventSink interface {
	OrderCreated(ctx context.Context, o Order, details []Detail)
	OrderUpdated(ctx context.Context, o Order, actorStaffID string)
}

const (
	ActorCustomer = "customer"
	ActorStaff    = "staff"
	ActorGateway  = "gateway"
)

// Service enforces the order state machine and its authorization rules.
type Service struct {
	Repo      Repository
	Directory catalog.Directory
	Events    EventSink
}

func (s *Service) Get(ctx context.Context, code string) (Order, []Detail, error) {
	o, err := s.Repo.ByCode(ctx, code)
	if err != nil {
		return Order{}, nil, err
	}
	details, err := s.Repo.Details(ctx, o.ID)
	if err != nil {
		return Order{}, nil, err
	}
	return o, details, nil
}

// CancelByCustomer is allowed only while the order is PENDING. It marks the
// payment cancelled, records reason and actor, and releases an attached
// voucher.
func (s *Service) CancelByCustomer(ctx context.Context, userID, code, reason string) (Order, error) {
	o, err := s.Repo.Transition(ctx, code, func(o *Order) (bool, error) {
		if o.UserID != userID {
			return false, apperr.Forbidden("order belongs to another customer")
		}
		if o.Status != StatusPending {
			return false, apperr.InvalidTransition("cannot cancel order in status %s", o.Status)
		}
		o.Status = StatusCancelled
		o.PaymentStatus = PayCancelled
		o.CancelReason = reason
		o.CancelledBy = ActorCustomer
		return true, nil
	})
	if err != nil {
		return Order{}, err
	}
	s.Events.OrderUpdated(ctx, o, "")
	return o, nil
}

// Accept moves a PENDING order to CONFIRMED. Restricted to managers of the
// order's shop.
func (s *Service) Accept(ctx context.Context, staffID, code string) (Order, error) {
	return s.staffTransition(ctx, staffID, code, func(o *Order) error {
		if o.Status != StatusPending {
			return apperr.InvalidTransition("cannot accept order in status %s", o.Status)
		}
		o.Status = StatusConfirmed
		return nil
	}, false)
}

// Advance steps the fulfillment chain CONFIRMED -> PREPARING -> SHIPPING ->
// DELIVERED. A COD order is considered paid once delivered.
func (s *Service) Advance(ctx context.Context, staffID, code string) (Order, error) {
	return s.staffTransition(ctx, staffID, code, func(o *Order) error {
		next, ok := NextFulfillment(o.Status)
		if !ok {
			return apperr.InvalidTransition("cannot advance order in status %s", o.Status)
		}
		o.Status = next
		if next == StatusDelivered && o.PaymentMethod == MethodCOD {
			o.PaymentStatus = PayPaid
		}
		return nil
	}, false)
}

// CancelByStaff cancels an order on behalf of the shop. Permitted from any
// status that may still transition to CANCELLED.
func (s *Service) CancelByStaff(ctx context.Context, staffID, code, reason string) (Order, error) {
	return s.staffTransition(ctx, staffID, code, func(o *Order) error {
		if !CanTransition(o.Status, StatusCancelled) {
			return apperr.InvalidTransition("cannot cancel order in status %s", o.Status)
		}
		o.Status = StatusCancelled
		if o.PaymentStatus != PayPaid {
			// a paid order keeps PAID until the gateway reports the refund
			o.PaymentStatus = PayCancelled
		}
		o.CancelReason = reason
		o.CancelledBy = ActorStaff
		return nil
	}, true)
}

func (s *Service) staffTransition(ctx context.Context, staffID, code string, mutate func(o *Order) error, release bool) (Order, error) {
	o, err := s.Repo.Transition(ctx, code, func(o *Order) (bool, error) {
		ok, err := s.Directory.IsManager(ctx, o.ShopID, staffID)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, apperr.Forbidden("staff does not manage this shop")
		}
		if err := mutate(o); err != nil {
			return false, err
		}
		return release && o.Status == StatusCancelled, nil
	})
	if err != nil {
		return Order{}, err
	}
	s.Events.OrderUpdated(ctx, o, staffID)
	return o, nil
}

// Gateway webhook statuses.
const (
	WebhookPaid      = "PAID"
	WebhookCancelled = "CANCELLED"
	WebhookRefunded  = "REFUNDED"
)

// ApplyPaymentUpdate handles an asynchronous gateway notification. Unknown
// order codes come back as NOT_FOUND; the gateway owns retries.
func (s *Service) ApplyPaymentUpdate(ctx context.Context, code, status string) (Order, error) {
	o, err := s.Repo.Transition(ctx, code, func(o *Order) (bool, error) {
		switch status {
		case WebhookPaid:
			if o.Status != StatusPendingPayment {
				return false, apperr.InvalidTransition("payment confirmation for order in status %s", o.Status)
			}
			o.Status = StatusConfirmed
			o.PaymentStatus = PayPaid
			return false, nil
		case WebhookCancelled:
			if !CanTransition(o.Status, StatusCancelled) {
				return false, apperr.InvalidTransition("payment cancellation for order in status %s", o.Status)
			}
			o.Status = StatusCancelled
			o.PaymentStatus = PayCancelled
			o.CancelReason = "payment cancelled by gateway"
			o.CancelledBy = ActorGateway
			return true, nil
		case WebhookRefunded:
			if o.Status != StatusCancelled || o.PaymentStatus != PayPaid {
				return false, apperr.InvalidTransition("refund for order in status %s/%s", o.Status, o.PaymentStatus)
			}
			o.Status = StatusRefunded
			o.PaymentStatus = PayRefunded
			return false, nil
		default:
			return false, apperr.InvalidState("unknown payment status %q", status)
		}
	})
	if err != nil {
		return Order{}, err
	}
	s.Events.OrderUpdated(ctx, o, "")
	return o, nil
}
