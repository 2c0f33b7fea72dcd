package orders

type Status string

const (
	StatusPendingPayment Status = "PENDING_PAYMENT"
	StatusPending        Status = "PENDING"
	StatusConfirmed      Status = "CONFIRMED"
	StatusPreparing      Status = "PREPARING"
	StatusShipping       Status = "SHIPPING"
	StatusDelivered      Status = "DELIVERED"
	StatusCancelled      Status = "CANCELLED"
	StatusRefunded       Status = "REFUNDED"
)

type PaymentStatus string

const (
	PayUnpaid     PaymentStatus = "UNPAID"
	PayCODPending PaymentStatus = "COD_PENDING"
	PayPaid       PaymentStatus = "PAID"
	PayCancelled  PaymentStatus = "CANCELLED"
	PayRefunded   PaymentStatus = "REFUNDED"
)

type PaymentMethod string

const (
	MethodCOD    PaymentMethod = "CASH_ON_DELIVERY"
	MethodOnline PaymentMethod = "ONLINE_GATEWAY"
)

var validNext = map[Status]map[Status]bool{
	StatusPendingPayment: {StatusConfirmed: true, StatusCancelled: true},
	StatusPending:        {StatusConfirmed: true, StatusCancelled: true},
	StatusConfirmed:      {StatusPreparing: true, StatusCancelled: true},
	StatusPreparing:      {StatusShipping: true, StatusCancelled: true},
	StatusShipping:       {StatusDelivered: true},
	StatusDelivered:      {},
	StatusCancelled:      {StatusRefunded: true},
	StatusRefunded:       {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// NextFulfillment returns the staff progression step from the given status.
func NextFulfillment(from Status) (Status, bool) {
	switch from {
	case StatusConfirmed:
		return StatusPreparing, true
	case StatusPreparing:
		return StatusShipping, true
	case StatusShipping:
		return StatusDelivered, true
	default:
		return "", false
	}
}

// Open reports whether the order still needs staff attention. Used for the
// snapshot sent to a staff connection on register.
func (s Status) Open() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusPreparing, StatusShipping:
		return true
	default:
		return false
	}
}

func ValidStatus(s Status) bool {
	_, ok := validNext[s]
	return ok
}
